package storage

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/domain"
)

func TestPromptLogAppend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	log, err := NewPromptLog(dir)
	require.NoError(t, err)

	require.NoError(t, log.Append("A red fox in snow"))
	require.NoError(t, log.Append("second\nprompt"))

	content, err := os.ReadFile(filepath.Join(dir, SavedPromptsFile))
	require.NoError(t, err)
	assert.Equal(t, "A red fox in snow\n\nsecond\nprompt\n\n", string(content))
}

func TestPromptLogRejectsEmpty(t *testing.T) {
	log, err := NewPromptLog(t.TempDir())
	require.NoError(t, err)
	require.ErrorIs(t, log.Append("  "), domain.ErrEmptyPrompt)
	_, statErr := os.Stat(log.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestArchive(t *testing.T) {
	data, err := Archive([]ArchiveEntry{
		{Filename: "1_fox.png", Data: []byte("png")},
		{Filename: "prompt.txt", Data: []byte("fox")},
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	got := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		got[f.Name] = string(b)
	}
	assert.Equal(t, map[string]string{"1_fox.png": "png", "prompt.txt": "fox"}, got)
}
