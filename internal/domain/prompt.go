package domain

// PromptHistoryEntry is one submitted prompt. Index 0 is the most recent.
type PromptHistoryEntry struct {
	Index  int    `json:"index"`
	Prompt string `json:"prompt"`
}
