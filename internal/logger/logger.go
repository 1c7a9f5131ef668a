// Package logger provides leveled diagnostic logging for the Canopy CLI.
// When verbose mode is enabled via the --verbose flag, debug and info
// messages are printed to stderr to help users follow the vectorisation
// pipeline. Warnings always print.
//
// The package-level functions share one default Logger for CLI
// convenience. Core services never reach for them; they receive a
// *Logger (or any driven.Logger) at construction.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger is a mutex-guarded leveled writer with a verbose gate.
type Logger struct {
	mu      sync.RWMutex
	verbose bool
	output  io.Writer
}

// New creates a Logger writing to w, falling back to stderr when w is
// nil. Debug and Info stay silent unless verbose is true; Warn always
// writes.
func New(verbose bool, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{verbose: verbose, output: w}
}

// SetVerbose enables or disables verbose logging.
func (l *Logger) SetVerbose(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func (l *Logger) IsVerbose() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// Debug prints a message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.verbose {
		fmt.Fprintf(l.output, "[DEBUG] "+format+"\n", args...)
	}
}

// Info prints an informational message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.verbose {
		fmt.Fprintf(l.output, "[INFO] "+format+"\n", args...)
	}
}

// Warn prints a warning message. Warnings are not gated by verbose mode.
func (l *Logger) Warn(format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fmt.Fprintf(l.output, "[WARN] "+format+"\n", args...)
}

// Section prints a section header if verbose mode is enabled.
func (l *Logger) Section(name string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.verbose {
		fmt.Fprintf(l.output, "\n=== %s ===\n", name)
	}
}

// std is the process-wide Logger behind the package-level functions.
var std = New(false, os.Stderr)

// Default returns the shared Logger used by the package-level functions.
func Default() *Logger {
	return std
}

// SetVerbose enables or disables verbose logging on the default Logger.
func SetVerbose(v bool) {
	std.SetVerbose(v)
}

// IsVerbose returns true if the default Logger is verbose.
func IsVerbose() bool {
	return std.IsVerbose()
}

// SetOutput sets the output writer of the default Logger.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// Debug prints a message via the default Logger.
func Debug(format string, args ...any) {
	std.Debug(format, args...)
}

// Info prints an informational message via the default Logger.
func Info(format string, args ...any) {
	std.Info(format, args...)
}

// Warn prints a warning message via the default Logger.
func Warn(format string, args ...any) {
	std.Warn(format, args...)
}

// Section prints a section header via the default Logger.
func Section(name string) {
	std.Section(name)
}
