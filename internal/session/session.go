package session

import (
	"sync"
	"sync/atomic"
	"time"

	"studio/internal/storage"
)

// Session is the per-user state of the form: prompt history and the
// last-saved pointer. Lock serializes submissions so the remote call, the
// readiness wait and the save for one request finish before the next starts.
type Session struct {
	ID        string
	CreatedAt time.Time
	History   *History
	Outputs   *storage.OutputStore

	mu       sync.Mutex
	lastSeen atomic.Int64
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch marks the session as used at t.
func (s *Session) Touch(t time.Time) {
	s.lastSeen.Store(t.UnixNano())
}

// LastSeen reports the time of the most recent Touch.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}
