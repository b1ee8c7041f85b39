package aiquiz

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// GenerationLogger captures the full diagnostic trail of one generation call
// (prompts, raw responses, filter decisions) in a per-quiz file. User-facing
// errors only carry a truncated excerpt; this log holds the rest.
type GenerationLogger struct {
	file *os.File
	mu   sync.Mutex
	id   string
}

// NewGenerationLogger creates a logger writing to log/<id>.log.
func NewGenerationLogger(id string, req GenerationRequest) (*GenerationLogger, error) {
	if err := os.MkdirAll("log", 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.Create(filepath.Join("log", fmt.Sprintf("%s.log", id)))
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	gl := &GenerationLogger{file: file, id: id}

	gl.Logf("=== Quiz Generation Log ===\n")
	gl.Logf("Quiz ID: %s\n", id)
	gl.Logf("Topic: %s\n", req.Topic)
	gl.Logf("Number of Questions: %d\n", req.NumQuestions)
	gl.Logf("Difficulty: %s\n", req.Difficulty)
	gl.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	gl.Logf("========================\n\n")

	return gl, nil
}

// Logf writes a formatted log entry with timestamp. Safe on a nil receiver
// so callers can skip logger setup.
func (gl *GenerationLogger) Logf(format string, args ...interface{}) {
	if gl == nil {
		return
	}
	gl.mu.Lock()
	defer gl.mu.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(gl.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	gl.file.Sync()
}

// LogPrompt records the prompt sent on an attempt.
func (gl *GenerationLogger) LogPrompt(attempt int, prompt string) {
	gl.Logf("=== PROMPT (attempt %d) ===\n%s\n===================\n\n", attempt, prompt)
}

// LogResponse records the raw model output for an attempt.
func (gl *GenerationLogger) LogResponse(attempt int, response string) {
	gl.Logf("=== RESPONSE (attempt %d) ===\n%s\n=====================\n\n", attempt, response)
}

// LogAttempt records the validate/filter tally for an attempt.
func (gl *GenerationLogger) LogAttempt(attempt, validated, kept, needed int) {
	gl.Logf("Attempt %d: %d validated, %d after filtering, %d needed\n", attempt, validated, kept, needed)
}

// LogRotation records a credential switch after a quota failure.
func (gl *GenerationLogger) LogRotation(failedSuffix, nextSuffix string) {
	gl.Logf("Quota hit on key ...%s, rotating to ...%s\n", failedSuffix, nextSuffix)
}

// Close finalizes and closes the log file. Safe on a nil receiver.
func (gl *GenerationLogger) Close() error {
	if gl == nil {
		return nil
	}
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if gl.file != nil {
		fmt.Fprintf(gl.file, "[%s] === Quiz Generation Complete ===\n", time.Now().Format("15:04:05.000"))
		return gl.file.Close()
	}
	return nil
}
