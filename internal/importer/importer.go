// Package importer bulk-loads workout files from a local directory
// straight into the database, bypassing the HTTP server. Used for
// seeding a library from an existing collection of files.
package importer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/holographix/ridepro/internal/convert"
	"github.com/holographix/ridepro/internal/ingest"
	"github.com/holographix/ridepro/internal/storage"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	WorkoutsInserted int
	SegmentsParsed   int
	TotalTSSPlanned  int
}

// Importer reads workout files from a directory and inserts converted
// workouts into the DB.
type Importer struct {
	db       *storage.DB
	registry *ingest.Registry
	userID   int
	log      *slog.Logger
	dryRun   bool
	stats    Stats
}

// New creates a new Importer. Imported workouts are owned by userID.
func New(db *storage.DB, registry *ingest.Registry, userID int, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, registry: registry, userID: userID, log: log, dryRun: dryRun}
}

// Import processes every supported workout file under dir. One bad
// file is logged and counted, never aborting the rest of the batch.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if !imp.registry.Supports(d.Name()) {
			imp.stats.FilesSkipped++
			return nil
		}
		imp.importFile(ctx, path)
		return nil
	})
	if err != nil {
		return &imp.stats, fmt.Errorf("walking %s: %w", dir, err)
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		imp.log.Warn("read failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return
	}

	parsed, err := imp.registry.Parse(filepath.Base(path), data)
	if err != nil {
		imp.log.Warn("parse failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return
	}

	workout, err := convert.Workout(parsed, imp.userID)
	if err != nil {
		imp.log.Warn("convert failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return
	}

	imp.stats.FilesProcessed++
	imp.stats.SegmentsParsed += len(parsed.Segments)
	imp.stats.TotalTSSPlanned += workout.TSSPlanned

	if imp.dryRun {
		imp.log.Info("dry-run: would insert",
			"file", filepath.Base(path),
			"slug", workout.Slug,
			"duration_sec", workout.DurationSeconds,
			"tss", workout.TSSPlanned,
		)
		imp.stats.WorkoutsInserted++
		return
	}

	if err := imp.db.InsertWorkout(ctx, workout); err != nil {
		imp.log.Warn("insert failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return
	}
	imp.stats.WorkoutsInserted++
	imp.log.Info("imported workout",
		"file", filepath.Base(path),
		"slug", workout.Slug,
		"segments", len(parsed.Segments),
		"tss", workout.TSSPlanned,
	)
}
