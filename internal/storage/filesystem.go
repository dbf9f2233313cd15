package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"studio/internal/domain"
	"studio/internal/infra"
)

// OutputStore persists generated media under a directory and remembers the
// most recently saved file so it can be deleted again. One store belongs to
// one session and owns its directory; files outlive the session.
type OutputStore struct {
	dir    string
	now    func() time.Time
	logger *infra.Logger

	mu   sync.Mutex
	last *domain.StoredOutput
}

// Option customizes an OutputStore.
type Option func(*OutputStore)

// WithClock overrides the timestamp source used for filenames.
func WithClock(now func() time.Time) Option {
	return func(s *OutputStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *infra.Logger) Option {
	return func(s *OutputStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewOutputStore initializes a store rooted at dir. The directory is created
// lazily on the first Persist.
func NewOutputStore(dir string, opts ...Option) (*OutputStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage: output directory is required")
	}
	s := &OutputStore{dir: filepath.Clean(dir), now: time.Now, logger: infra.NopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the configured output directory.
func (s *OutputStore) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// Persist writes data to {dir}/{timestamp}_{prompt}{ext} and records it as the
// last saved output. The write is not atomic; a failed write may leave a
// partial file behind.
func (s *OutputStore) Persist(ctx context.Context, data []byte, prompt, ext string) (domain.StoredOutput, error) {
	if s == nil {
		return domain.StoredOutput{}, errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return domain.StoredOutput{}, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return domain.StoredOutput{}, fmt.Errorf("storage: ensure directory: %w: %v", domain.ErrIO, err)
	}
	created := s.now()
	name := DeriveFilename(created, prompt, ext)
	fullPath := filepath.Join(s.dir, name)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return domain.StoredOutput{}, fmt.Errorf("storage: write file: %w: %v", domain.ErrIO, err)
	}
	out := domain.StoredOutput{
		Path:      fullPath,
		Filename:  name,
		Bytes:     int64(len(data)),
		MIME:      http.DetectContentType(data),
		Prompt:    prompt,
		CreatedAt: created,
	}
	s.mu.Lock()
	s.last = &out
	s.mu.Unlock()
	s.logger.Debug().Str("path", fullPath).Int64("bytes", out.Bytes).Msg("storage: persisted output")
	return out, nil
}

// LastSaved returns the most recently persisted output, if any.
func (s *OutputStore) LastSaved() (domain.StoredOutput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return domain.StoredOutput{}, false
	}
	return *s.last, true
}

// DeleteLast removes the last saved file and clears the pointer. With nothing
// recorded it returns domain.ErrNothingToDelete and leaves state unchanged.
// A file already removed out of band still clears the pointer.
func (s *OutputStore) DeleteLast() (domain.StoredOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return domain.StoredOutput{}, domain.ErrNothingToDelete
	}
	removed := *s.last
	if err := os.Remove(removed.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.StoredOutput{}, fmt.Errorf("storage: remove file: %w: %v", domain.ErrIO, err)
	}
	s.last = nil
	s.logger.Debug().Str("path", removed.Path).Msg("storage: deleted last output")
	return removed, nil
}

// ReadOutput loads the bytes of a previously persisted output.
func ReadOutput(out domain.StoredOutput) ([]byte, error) {
	data, err := os.ReadFile(out.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("storage: %s: %w", out.Filename, domain.ErrNoOutput)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w: %v", out.Filename, domain.ErrIO, err)
	}
	return data, nil
}
