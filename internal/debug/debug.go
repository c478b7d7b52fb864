// Package debug provides opt-in diagnostic logging. Output goes to a
// size-rotated log file in the workspace data dir when FLOW_DEBUG is set,
// and to stderr when FLOW_DEBUG=stderr. Disabled entirely otherwise.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.Mutex
	logger *log.Logger
)

// Enabled reports whether debug logging is active.
func Enabled() bool {
	return os.Getenv("FLOW_DEBUG") != ""
}

// SetFile directs debug output to a rotating log file at path. Call once
// at startup, after the data dir is known. No-op when FLOW_DEBUG is unset
// or set to "stderr".
func SetFile(path string) {
	mu.Lock()
	defer mu.Unlock()
	mode := os.Getenv("FLOW_DEBUG")
	if mode == "" || mode == "stderr" {
		return
	}
	logger = log.New(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}, "", log.LstdFlags)
}

// Logf writes a formatted debug message. Cheap no-op when disabled.
func Logf(format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	mu.Lock()
	l := logger
	mu.Unlock()
	if l != nil {
		l.Output(2, fmt.Sprintf(format, args...))
		return
	}
	fmt.Fprintf(os.Stderr, "Debug: "+format, args...)
}

// Writer returns the active debug sink, or io.Discard when disabled.
func Writer() io.Writer {
	if !Enabled() {
		return io.Discard
	}
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		return logger.Writer()
	}
	return os.Stderr
}
