package postgres

import (
	"context"
	"time"

	"statdash/internal/errors"
	"statdash/models"
	"statdash/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// runRow mirrors analysis_runs; columns is a text[]
type runRow struct {
	ID           uuid.UUID       `db:"id"`
	SessionID    string          `db:"session_id"`
	Procedure    string          `db:"procedure"`
	Columns      pq.StringArray  `db:"columns"`
	Outcome      string          `db:"outcome"`
	ErrorCode    string          `db:"error_code"`
	ErrorMessage string          `db:"error_message"`
	DurationMS   float64         `db:"duration_ms"`
	Summary      models.JSONBMap `db:"summary"`
	CreatedAt    time.Time       `db:"created_at"`
}

// Save inserts a run record
func (r *RunRepositoryImpl) Save(ctx context.Context, rec *models.RunRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, session_id, procedure, columns, outcome, error_code, error_message, duration_ms, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rec.ID, rec.SessionID, rec.Procedure, pq.Array(rec.Columns), rec.Outcome, rec.ErrorCode, rec.ErrorMessage,
		rec.DurationMS, rec.Summary, rec.CreatedAt)
	if err != nil {
		return errors.DatabaseError(err, "failed to save run "+rec.ID.String())
	}
	return nil
}

// ListRecent returns the newest records, optionally for one session
func (r *RunRepositoryImpl) ListRecent(ctx context.Context, sessionID string, limit int) ([]*models.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []runRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, session_id, procedure, columns, outcome, error_code, error_message, duration_ms, summary, created_at
		FROM analysis_runs
		WHERE ($1 = '' OR session_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, errors.DatabaseError(err, "failed to list runs")
	}

	out := make([]*models.RunRecord, len(rows))
	for i, row := range rows {
		out[i] = &models.RunRecord{
			ID:           row.ID,
			SessionID:    row.SessionID,
			Procedure:    row.Procedure,
			Columns:      []string(row.Columns),
			Outcome:      row.Outcome,
			ErrorCode:    row.ErrorCode,
			ErrorMessage: row.ErrorMessage,
			DurationMS:   row.DurationMS,
			Summary:      row.Summary,
			CreatedAt:    row.CreatedAt,
		}
	}
	return out, nil
}
