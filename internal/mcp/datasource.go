package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/holographix/ridepro/internal/models"
	"github.com/holographix/ridepro/internal/storage"
)

// DataSource abstracts the workout library for MCP tools. Both
// *storage.DB (local) and HTTPClient (remote via REST API) satisfy
// this interface.
type DataSource interface {
	ListWorkouts(ctx context.Context, userID int, opts storage.ListOptions) ([]models.ConvertedWorkout, error)
	GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.ConvertedWorkout, error)
	GetWorkoutBySlug(ctx context.Context, slug string, userID int) (*models.ConvertedWorkout, error)
	GetLibraryStats(ctx context.Context, userID int) (*storage.LibraryStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
