// Package memory provides in-process repository implementations used when no
// database is configured.
package memory

import (
	"context"
	"sync"

	"statdash/models"
	"statdash/ports"
)

// RunRepository keeps the most recent run records in a ring buffer
type RunRepository struct {
	mu    sync.RWMutex
	buf   []*models.RunRecord
	next  int
	count int
}

// NewRunRepository creates a repository holding at most capacity records
func NewRunRepository(capacity int) ports.RunRepository {
	if capacity <= 0 {
		capacity = 200
	}
	return &RunRepository{buf: make([]*models.RunRecord, capacity)}
}

// Save appends a record, overwriting the oldest when full
func (r *RunRepository) Save(_ context.Context, rec *models.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.next] = rec
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
	return nil
}

// ListRecent returns records newest first
func (r *RunRepository) ListRecent(_ context.Context, sessionID string, limit int) ([]*models.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > r.count {
		limit = r.count
	}
	out := make([]*models.RunRecord, 0, limit)
	for i := 1; i <= r.count && len(out) < limit; i++ {
		rec := r.buf[(r.next-i+len(r.buf))%len(r.buf)]
		if sessionID != "" && rec.SessionID != sessionID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
