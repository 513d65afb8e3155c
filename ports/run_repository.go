package ports

import (
	"context"

	"statdash/models"
)

// RunRepository stores the history of analysis runs
type RunRepository interface {
	// Save appends one run record
	Save(ctx context.Context, rec *models.RunRecord) error

	// ListRecent returns up to limit records, newest first. An empty sessionID lists all sessions.
	ListRecent(ctx context.Context, sessionID string, limit int) ([]*models.RunRecord, error)
}
