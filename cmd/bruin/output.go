package main

import (
	"encoding/json"
	"fmt"
	"os"
)

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "bruin: encoding JSON output: %v\n", err)
		os.Exit(1)
	}
}
