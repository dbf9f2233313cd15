package storage

import (
	"strconv"
	"strings"
	"time"
)

// maxPromptChars bounds the prompt fragment embedded in a filename.
const maxPromptChars = 30

// SanitizePrompt keeps only [A-Za-z0-9 ], truncates to 30 characters, trims
// surrounding whitespace and joins words with underscores.
func SanitizePrompt(prompt string) string {
	var b strings.Builder
	for _, r := range prompt {
		if isFilenameRune(r) {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if len(clean) > maxPromptChars {
		clean = clean[:maxPromptChars]
	}
	clean = strings.TrimSpace(clean)
	return strings.ReplaceAll(clean, " ", "_")
}

// DeriveFilename returns "{unix seconds}_{sanitized prompt}{ext}".
func DeriveFilename(ts time.Time, prompt, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strconv.FormatInt(ts.Unix(), 10) + "_" + SanitizePrompt(prompt) + ext
}

func isFilenameRune(r rune) bool {
	return r == ' ' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
