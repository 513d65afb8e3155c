// Package session tracks each dashboard user's uploaded table, column selection and
// last computed analysis as an explicit state machine.
package session

import (
	"sync"
	"time"

	"statdash/domain/core"
	"statdash/domain/table"
	"statdash/internal/analysis"
)

// State is the position of a session in the dashboard workflow
type State string

const (
	StateIdle            State = "idle"
	StateDataLoaded      State = "data_loaded"
	StateColumnsSelected State = "columns_selected"
	StateComputed        State = "computed"
)

// ComputeFunc produces an analysis for a request against a table
type ComputeFunc func(*table.Table, analysis.Request) (*analysis.Analysis, error)

// Session is one user's workspace. All methods are safe for concurrent use.
type Session struct {
	ID core.SessionID

	mu        sync.RWMutex
	state     State
	table     *table.Table
	fileName  string
	encoding  string
	request   analysis.Request
	analysis  *analysis.Analysis
	createdAt time.Time
	updatedAt time.Time
	now       func() time.Time
}

// New creates an idle session
func New(id core.SessionID) *Session {
	return newSession(id, time.Now)
}

func newSession(id core.SessionID, now func() time.Time) *Session {
	t := now()
	return &Session{
		ID:        id,
		state:     StateIdle,
		createdAt: t,
		updatedAt: t,
		now:       now,
	}
}

// LoadTable replaces the session's data, discarding any selection and result
func (s *Session) LoadTable(t *table.Table, fileName, encoding string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.table = t
	s.fileName = fileName
	s.encoding = encoding
	s.request = analysis.Request{}
	s.analysis = nil
	s.state = StateDataLoaded
	s.touch()
}

// SelectColumns records the user's procedure and columns, discarding any result
func (s *Session) SelectColumns(req analysis.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return core.ErrNoData
	}
	s.request = req
	s.analysis = nil
	s.state = StateColumnsSelected
	s.touch()
	return nil
}

// Compute runs fn for req and moves to Computed. When the session already holds
// the result of an identical request, that result is returned and fn is not called.
// If fn fails the session keeps its previous state and result.
func (s *Session) Compute(req analysis.Request, fn ComputeFunc) (a *analysis.Analysis, cached bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil, false, core.ErrNoData
	}
	if s.state == StateComputed && s.analysis != nil && s.request.Equal(req) {
		return s.analysis, true, nil
	}

	a, err = fn(s.table, req)
	if err != nil {
		return nil, false, err
	}
	s.request = req
	s.analysis = a
	s.state = StateComputed
	s.touch()
	return a, false, nil
}

// Reset returns the session to Idle, dropping the table
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateIdle
	s.table = nil
	s.fileName = ""
	s.encoding = ""
	s.request = analysis.Request{}
	s.analysis = nil
	s.touch()
}

// State returns the current state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Table returns the loaded table, nil when idle
func (s *Session) Table() *table.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Result returns the last computed analysis
func (s *Session) Result() (*analysis.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.analysis == nil {
		return nil, core.ErrNoResult
	}
	return s.analysis, nil
}

// Request returns the current selection
func (s *Session) Request() analysis.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.request
}

// LastActive returns when the session last changed
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

func (s *Session) touch() {
	s.updatedAt = s.now()
}

// View is a read-only snapshot for the UI and JSON API
type View struct {
	ID             string           `json:"id"`
	State          State            `json:"state"`
	FileName       string           `json:"file_name,omitempty"`
	Encoding       string           `json:"encoding,omitempty"`
	Rows           int              `json:"rows"`
	Columns        []string         `json:"columns"`
	NumericColumns []string         `json:"numeric_columns"`
	Request        analysis.Request `json:"request"`
	HasResult      bool             `json:"has_result"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Snapshot returns the session's current view
func (s *Session) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		ID:        s.ID.String(),
		State:     s.state,
		FileName:  s.fileName,
		Encoding:  s.encoding,
		Request:   s.request,
		HasResult: s.analysis != nil,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	if s.table != nil {
		v.Rows = s.table.Rows()
		v.Columns = s.table.Names()
		v.NumericColumns = s.table.NumericNames()
	}
	return v
}
