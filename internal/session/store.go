package session

import (
	"sync"
	"time"

	"statdash/domain/core"
)

// Store keeps sessions in process memory
type Store struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*Session
	now      func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		sessions: make(map[core.SessionID]*Session),
		now:      time.Now,
	}
}

// Create registers a new idle session under a fresh ID
func (st *Store) Create() *Session {
	s := newSession(core.NewSessionID(), st.now)

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with the given ID
func (st *Store) Get(id core.SessionID) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return s, nil
}

// GetOrCreate returns the session for a client-supplied ID, creating a new one when
// the ID is malformed or unknown. created reports whether a new session was made.
func (st *Store) GetOrCreate(raw string) (s *Session, created bool) {
	if id, err := core.ParseSessionID(raw); err == nil {
		if s, err := st.Get(id); err == nil {
			return s, false
		}
	}
	return st.Create(), true
}

// Delete removes a session
func (st *Store) Delete(id core.SessionID) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than maxIdle and returns how many it removed.
// Session activity is read without holding the store's write lock, so a long
// computation in one session never blocks lookups of the others.
func (st *Store) Sweep(maxIdle time.Duration) int {
	cutoff := st.now().Add(-maxIdle)

	st.mu.RLock()
	candidates := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		candidates = append(candidates, s)
	}
	st.mu.RUnlock()

	var stale []*Session
	for _, s := range candidates {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, s)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for _, s := range stale {
		// the session may have been replaced or deleted meanwhile
		if cur, ok := st.sessions[s.ID]; ok && cur == s {
			delete(st.sessions, s.ID)
			removed++
		}
	}
	return removed
}
