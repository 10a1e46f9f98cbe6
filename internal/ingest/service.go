package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/holographix/ridepro/internal/convert"
	"github.com/holographix/ridepro/internal/models"
	"github.com/holographix/ridepro/internal/storage"
)

// Result holds the outcome of ingesting one workout file.
type Result struct {
	WorkoutID       uuid.UUID           `json:"workout_id"`
	Slug            string              `json:"slug"`
	Name            string              `json:"name"`
	SourceFormat    models.SourceFormat `json:"source_format"`
	DurationSeconds int                 `json:"duration_seconds"`
	SegmentCount    int                 `json:"segment_count"`
	TSSPlanned      int                 `json:"tss_planned"`
	IFPlanned       float64             `json:"if_planned"`
	Intensity       models.Intensity    `json:"intensity"`
}

// Service runs the full pipeline for one uploaded file: route to a
// parser, convert to the stored shape, persist. Parsing and conversion
// are pure; only the final insert touches the database.
type Service struct {
	registry *Registry
	db       *storage.DB
	log      *slog.Logger
}

// NewService creates an ingest service.
func NewService(registry *Registry, db *storage.DB, log *slog.Logger) *Service {
	return &Service{registry: registry, db: db, log: log}
}

// Registry exposes the underlying parser registry, for surfaces that
// only need routing (preview endpoints, format listing).
func (s *Service) Registry() *Registry {
	return s.registry
}

// Ingest converts and stores one workout file for the given user.
func (s *Service) Ingest(ctx context.Context, filename string, data []byte, userID int) (*Result, error) {
	parsed, err := s.registry.Parse(filename, data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	workout, err := convert.Workout(parsed, userID)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", filename, err)
	}

	if err := s.db.InsertWorkout(ctx, workout); err != nil {
		return nil, fmt.Errorf("storing %s: %w", filename, err)
	}

	s.log.Info("workout ingested",
		"file", filename,
		"slug", workout.Slug,
		"format", workout.SourceFormat,
		"duration_sec", workout.DurationSeconds,
		"tss", workout.TSSPlanned,
		"if", workout.IFPlanned,
	)

	return &Result{
		WorkoutID:       workout.ID,
		Slug:            workout.Slug,
		Name:            workout.Name,
		SourceFormat:    workout.SourceFormat,
		DurationSeconds: workout.DurationSeconds,
		SegmentCount:    len(parsed.Segments),
		TSSPlanned:      workout.TSSPlanned,
		IFPlanned:       workout.IFPlanned,
		Intensity:       workout.Intensity,
	}, nil
}
