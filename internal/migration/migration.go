package migration

import (
	"context"

	"statdash/internal"
	"statdash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createAnalysisRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create analysis_runs table")
	}

	if err := r.addAnalysisRunsColumns(ctx, db); err != nil {
		return errors.Wrap(err, "failed to add analysis_runs columns")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createAnalysisRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id UUID PRIMARY KEY,
			session_id VARCHAR(64) NOT NULL,
			procedure VARCHAR(50) NOT NULL,
			columns TEXT[] NOT NULL DEFAULT '{}',
			outcome VARCHAR(20) NOT NULL,
			error_code VARCHAR(50) NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT '',
			duration_ms DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) addAnalysisRunsColumns(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_name = 'analysis_runs' AND column_name = 'summary'
			) THEN
				ALTER TABLE analysis_runs ADD COLUMN summary JSONB;
			END IF;
		END $$;
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_session_id ON analysis_runs(session_id)",
		"CREATE INDEX IF NOT EXISTS idx_runs_procedure ON analysis_runs(procedure)",
		"CREATE INDEX IF NOT EXISTS idx_runs_created_at ON analysis_runs(created_at DESC)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			internal.DefaultLogger.Warn("[Migration] failed to create index: %v", err)
		}
	}

	return nil
}
