package store

import (
	"context"

	"github.com/copylab/adlens/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for batch run history.
type Store interface {
	CreateRun(ctx context.Context, source, contextLabel string, records int) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, result *model.BatchResult) error
	FailRun(ctx context.Context, runID, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
