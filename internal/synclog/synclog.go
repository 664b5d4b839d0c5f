// Package synclog is the daemon's log sink: a rotating file the
// daemon writes its watcher and sweep activity to, in the same
// printf-style one-liner a foreground command would print to stderr.
package synclog

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes timestamped lines to a rotating log file and, unless
// Quiet is set, echoes them to stderr as well.
type Logger struct {
	file  *lumberjack.Logger
	std   *log.Logger
	Quiet bool
}

// New opens (or creates) path and starts a logger that rotates it once
// it passes maxSizeMB, keeping maxBackups old copies compressed.
func New(path string, maxSizeMB, maxBackups int) *Logger {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	return &Logger{
		file: lj,
		std:  log.New(lj, "", log.LstdFlags),
	}
}

// Logf writes a formatted line to the rotating file and, unless Quiet,
// to stderr.
func (l *Logger) Logf(format string, args ...any) {
	l.std.Printf(format, args...)
	if !l.Quiet {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// Errorf is Logf with an "ERROR: " prefix, used for failures the daemon
// recovers from rather than exits on.
func (l *Logger) Errorf(format string, args ...any) {
	l.Logf("ERROR: "+format, args...)
}

// Close flushes and closes the underlying rotating file.
func (l *Logger) Close() error {
	return l.file.Close()
}
