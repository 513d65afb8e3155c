package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JSONBMap is a custom type for PostgreSQL JSONB columns that maps to map[string]interface{}
type JSONBMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONBMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONBMap)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*j = make(JSONBMap)
		return nil
	}

	if len(bytes) == 0 {
		*j = make(JSONBMap)
		return nil
	}

	result := make(JSONBMap)
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// Run outcomes
const (
	RunOK     = "ok"
	RunCached = "cached"
	RunFailed = "error"
)

// RunRecord is one entry of the analysis history
type RunRecord struct {
	ID           uuid.UUID `json:"id" db:"id"`
	SessionID    string    `json:"session_id" db:"session_id"`
	Procedure    string    `json:"procedure" db:"procedure"`
	Columns      []string  `json:"columns" db:"-"`
	Outcome      string    `json:"outcome" db:"outcome"`
	ErrorCode    string    `json:"error_code,omitempty" db:"error_code"`
	ErrorMessage string    `json:"error_message,omitempty" db:"error_message"`
	DurationMS   float64   `json:"duration_ms" db:"duration_ms"`
	Summary      JSONBMap  `json:"summary,omitempty" db:"summary"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// NewRunRecord creates a record stamped with a time-ordered ID
func NewRunRecord(sessionID, procedure string, columns []string) *RunRecord {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &RunRecord{
		ID:        id,
		SessionID: sessionID,
		Procedure: procedure,
		Columns:   append([]string(nil), columns...),
		Summary:   make(JSONBMap),
		CreatedAt: time.Now(),
	}
}
