// Package logger provides verbose logging for lexisync.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow a sync run. Warnings are
// always printed. When a log file is configured, every message is also
// appended to it with a timestamp, whatever the verbosity.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	file    io.WriteCloser
	now     = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetFile starts mirroring every message to a size-rotated log file.
// An empty path disables file logging.
func SetFile(path string, maxSizeMB int) error {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		if err := file.Close(); err != nil {
			return fmt.Errorf("close log file: %w", err)
		}
		file = nil
	}
	if path == "" {
		return nil
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
		MaxAge:     30,
	}
	return nil
}

// Close releases the log file, if any.
func Close() error {
	return SetFile("", 0)
}

// emit writes one line to the console when shown and to the log file.
func emit(shown bool, line string) {
	mu.Lock()
	defer mu.Unlock()
	if shown {
		fmt.Fprint(output, line)
	}
	if file != nil {
		fmt.Fprintf(file, "%s %s", now().Format(time.RFC3339), line)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit(IsVerbose(), fmt.Sprintf("[DEBUG] "+format+"\n", args...))
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	emit(IsVerbose(), fmt.Sprintf("\n=== %s ===\n", name))
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	emit(IsVerbose(), fmt.Sprintf("[INFO] "+format+"\n", args...))
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	emit(true, fmt.Sprintf("[WARN] "+format+"\n", args...))
}
