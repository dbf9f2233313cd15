package session

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studio/internal/infra"
	"studio/internal/storage"
)

// Options configures a Manager.
type Options struct {
	OutputDir string
	TTL       time.Duration
	Logger    *infra.Logger
	Clock     func() time.Time
}

// Manager owns the live sessions keyed by an opaque identifier.
type Manager struct {
	outputDir string
	ttl       time.Duration
	logger    *infra.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(opts Options) (*Manager, error) {
	dir := strings.TrimSpace(opts.OutputDir)
	if dir == "" {
		return nil, errors.New("session: output directory is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Manager{
		outputDir: dir,
		ttl:       ttl,
		logger:    logger,
		now:       now,
		sessions:  make(map[string]*Session),
	}, nil
}

// Start opens a new session with empty history and no last-saved output.
// Its files go under {OutputDir}/{session id}.
func (m *Manager) Start() (*Session, error) {
	id := uuid.NewString()
	store, err := storage.NewOutputStore(filepath.Join(m.outputDir, id), storage.WithClock(m.now), storage.WithLogger(m.logger))
	if err != nil {
		return nil, err
	}
	created := m.now()
	s := &Session{
		ID:        id,
		CreatedAt: created,
		History:   &History{},
		Outputs:   store,
	}
	s.Touch(created)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.logger.Debug().Str("session_id", s.ID).Msg("session: started")
	return s, nil
}

// Get returns the live session for id and marks it as used.
func (m *Manager) Get(id string) (*Session, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	if m.expired(s) {
		m.End(id)
		return nil, false
	}
	s.Touch(m.now())
	return s, true
}

// Resolve returns the session for id, starting a fresh one when id is
// unknown or expired. created reports whether a new session was opened.
func (m *Manager) Resolve(id string) (s *Session, created bool, err error) {
	if s, ok := m.Get(id); ok {
		return s, false, nil
	}
	s, err = m.Start()
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// End discards the session. Saved files stay on disk.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		m.logger.Debug().Str("session_id", id).Msg("session: ended")
	}
	return ok
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info().Int("removed", removed).Msg("session: evicted idle sessions")
	}
	return removed
}

// Run sweeps on every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) expired(s *Session) bool {
	return m.now().Sub(s.LastSeen()) > m.ttl
}
