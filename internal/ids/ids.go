// Package ids generates the opaque, immutable identifiers assigned to
// notes at creation time.
package ids

import "github.com/google/uuid"

// New returns a fresh opaque note identifier. It is the file stem used in
// the vault (<id>.md) and is never reassigned once issued.
func New() string {
	return uuid.NewString()
}
