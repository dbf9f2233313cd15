package storage

import (
	"regexp"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"punctuation dropped", "A red fox in snow!!", "A_red_fox_in_snow"},
		{"non ascii dropped", "café über straße", "caf_ber_strae"},
		{"truncated to thirty", "abcdefghij abcdefghij abcdefghij abcdefghij", "abcdefghij_abcdefghij_abcdefgh"},
		{"whitespace stripped after truncation", "abcdefghijklmnopqrstuvwxyz123 tail", "abcdefghijklmnopqrstuvwxyz123"},
		{"leading spaces", "   hello world", "hello_world"},
		{"nothing left", "!!!???", ""},
		{"tabs and newlines removed", "line\tone\nline two", "lineoneline_two"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizePrompt(tc.prompt))
		})
	}
}

func TestDeriveFilename(t *testing.T) {
	ts := time.Unix(1723456789, 0)
	assert.Equal(t, "1723456789_A_red_fox_in_snow.png", DeriveFilename(ts, "A red fox in snow!!", ".png"))
	assert.Equal(t, "1723456789_clip.mp4", DeriveFilename(ts, "clip", "mp4"))
	assert.Equal(t, "1723456789_.webp", DeriveFilename(ts, "", ".webp"))
	assert.Regexp(t, `^\d+_A_red_fox_in_snow\.png$`, DeriveFilename(time.Now(), "A red fox in snow!!", ".png"))
}

func TestDeriveFilenameCharset(t *testing.T) {
	allowed := regexp.MustCompile(`^[A-Za-z0-9_.]+$`)
	property := func(prompt string, secs uint32) bool {
		name := DeriveFilename(time.Unix(int64(secs), 0), prompt, ".png")
		if !allowed.MatchString(name) {
			return false
		}
		return len(SanitizePrompt(prompt)) <= maxPromptChars
	}
	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 500}))
}
