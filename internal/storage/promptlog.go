package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"studio/internal/domain"
)

// SavedPromptsFile is the append-only log of manually saved prompts.
const SavedPromptsFile = "saved_prompts.txt"

// PromptLog appends prompts to {dir}/saved_prompts.txt, one entry per
// blank-line terminated block.
type PromptLog struct {
	dir string
	mu  sync.Mutex
}

func NewPromptLog(dir string) (*PromptLog, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage: prompts directory is required")
	}
	return &PromptLog{dir: filepath.Clean(dir)}, nil
}

// Path returns the log file location.
func (l *PromptLog) Path() string {
	return filepath.Join(l.dir, SavedPromptsFile)
}

// Append writes prompt followed by a blank line.
func (l *PromptLog) Append(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return domain.ErrEmptyPrompt
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("storage: ensure prompts directory: %w: %v", domain.ErrIO, err)
	}
	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("storage: open prompt log: %w: %v", domain.ErrIO, err)
	}
	defer f.Close()
	if _, err := f.WriteString(prompt + "\n\n"); err != nil {
		return fmt.Errorf("storage: append prompt: %w: %v", domain.ErrIO, err)
	}
	return nil
}
