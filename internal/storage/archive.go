package storage

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// ArchiveEntry is one file inside a download bundle.
type ArchiveEntry struct {
	Filename string
	Data     []byte
}

// Archive bundles entries into an in-memory zip.
func Archive(entries []ArchiveEntry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		w, err := zw.Create(entry.Filename)
		if err != nil {
			return nil, fmt.Errorf("storage: archive %s: %w", entry.Filename, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("storage: archive %s: %w", entry.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("storage: close archive: %w", err)
	}
	return buf.Bytes(), nil
}
