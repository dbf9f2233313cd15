package session

import (
	"sync"

	"studio/internal/domain"
)

// History is the in-memory list of prompts submitted during a session.
// The most recent prompt is at index 0. Duplicates are kept.
type History struct {
	mu      sync.RWMutex
	prompts []string
}

// Record prepends prompt unconditionally. Callers validate the prompt first.
func (h *History) Record(prompt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.prompts = append(h.prompts, "")
	copy(h.prompts[1:], h.prompts)
	h.prompts[0] = prompt
}

// List returns a snapshot, most recent first.
func (h *History) List() []domain.PromptHistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.PromptHistoryEntry, len(h.prompts))
	for i, p := range h.prompts {
		out[i] = domain.PromptHistoryEntry{Index: i, Prompt: p}
	}
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.prompts)
}

// Latest returns the most recently recorded prompt.
func (h *History) Latest() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.prompts) == 0 {
		return "", false
	}
	return h.prompts[0], true
}
