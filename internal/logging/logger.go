// Package logging is a thin, subsystem-tagged wrapper over the standard
// log package.
package logging

import (
	"log"
	"os"
	"strings"
	"time"
)

var (
	debugEnabled   = os.Getenv("DEBUG") == "true"
	l3DebugEnabled = os.Getenv("L3_DEBUG") == "true"
	l4DebugEnabled = os.Getenv("L4_DEBUG") == "true"
)

// Info logs an informational message (always shown)
func Info(subsystem, format string, args ...any) {
	log.Printf("[%s] "+format, append([]any{subsystem}, args...)...)
}

// Debug logs a debug message (only shown if DEBUG=true)
func Debug(subsystem, format string, args ...any) {
	if debugEnabled {
		log.Printf("[%s] "+format, append([]any{subsystem}, args...)...)
	}
}

// Layer3Debug logs only when L3_DEBUG=true (relation-quality-filter tracing).
func Layer3Debug(subsystem, format string, args ...any) {
	if l3DebugEnabled {
		log.Printf("[%s] "+format, append([]any{subsystem}, args...)...)
	}
}

// Layer4Debug logs only when L4_DEBUG=true (dedup/finalizer tracing).
func Layer4Debug(subsystem, format string, args ...any) {
	if l4DebugEnabled {
		log.Printf("[%s] "+format, append([]any{subsystem}, args...)...)
	}
}

// Truncate truncates a string to maxLen and adds ellipsis
func Truncate(s string, maxLen int) string {
	// Replace newlines with spaces for one-line logs
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// StageEntry logs a stage's entry with its input size and returns a start
// time for StageExit to compute duration from.
func StageEntry(stage string, inputSize int) time.Time {
	Debug(stage, "enter: input_size=%d", inputSize)
	return time.Now()
}

// StageExit logs a stage's exit with duration and output size.
func StageExit(stage string, start time.Time, outputSize int) {
	Debug(stage, "exit: duration=%s output_size=%d", time.Since(start), outputSize)
}
