package partyhistory

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Transcript records every prompt and response exchanged with a provider.
// A nil *Transcript is valid and discards everything.
type Transcript struct {
	w      io.Writer
	file   *os.File
	mu     sync.Mutex
	runID  string
	closed bool
}

// NewTranscript creates <dir>/<runID>.log and writes the run header.
func NewTranscript(dir, runID, provider string) (*Transcript, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", runID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript file: %w", err)
	}

	t := NewTranscriptWriter(file, runID, provider)
	t.file = file
	return t, nil
}

// NewTranscriptWriter writes the transcript to w instead of a file.
func NewTranscriptWriter(w io.Writer, runID, provider string) *Transcript {
	t := &Transcript{w: w, runID: runID}

	t.Logf("=== Content Provider Transcript ===\n")
	t.Logf("Run ID: %s\n", runID)
	t.Logf("Provider: %s\n", provider)
	t.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	t.Logf("===================================\n\n")
	return t
}

// Logf writes a formatted entry with timestamp
func (t *Transcript) Logf(format string, args ...interface{}) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logf(format, args...)
}

func (t *Transcript) logf(format string, args ...interface{}) {
	if t.closed {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(t.w, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	if t.file != nil {
		t.file.Sync()
	}
}

// LogRequest logs a prompt sent for the given operation
func (t *Transcript) LogRequest(operation, prompt string) {
	t.Logf("=== REQUEST (%s) ===\n", operation)
	t.Logf("Prompt:\n%s\n", prompt)
	t.Logf("=====================\n\n")
}

// LogResponse logs the raw provider response for the given operation
func (t *Transcript) LogResponse(operation, response string) {
	t.Logf("=== RESPONSE (%s) ===\n", operation)
	t.Logf("Response:\n%s\n", response)
	t.Logf("======================\n\n")
}

// LogFailure logs a failed call
func (t *Transcript) LogFailure(operation string, err error) {
	t.Logf("=== FAILURE (%s) === %v\n\n", operation, err)
}

// Close writes the footer and closes the underlying file, if any.
func (t *Transcript) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.logf("=== Transcript Complete ===\n")
	t.logf("Completed: %s\n", time.Now().Format(time.RFC3339))
	t.closed = true

	if t.file != nil {
		return t.file.Close()
	}
	return nil
}
