package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/holographix/ridepro/internal/config"
	"github.com/holographix/ridepro/internal/importer"
	"github.com/holographix/ridepro/internal/ingest"
	"github.com/holographix/ridepro/internal/ingest/ergmrc"
	"github.com/holographix/ridepro/internal/ingest/fitfile"
	"github.com/holographix/ridepro/internal/ingest/zwo"
	"github.com/holographix/ridepro/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dir := flag.String("path", "", "directory containing workout files (required)")
	userID := flag.Int("user", 1, "user ID that owns the imported workouts")
	dryRun := flag.Bool("dry-run", false, "parse and convert without inserting into the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: ridepro-import -config config.yaml -path /path/to/workouts [-user N] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*dir)
	if err != nil || !info.IsDir() {
		log.Error("workout path does not exist or is not a directory", "path", *dir)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	registry := ingest.NewRegistry(
		zwo.NewParser(),
		ergmrc.NewParser(),
		fitfile.NewParser(cfg.Ingest.DefaultFTP),
	)

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
		imp := importer.New(nil, registry, *userID, log, true)
		stats, err := imp.Import(ctx, *dir)
		if err != nil {
			log.Error("import failed", "error", err)
			printStats(log, stats)
			os.Exit(1)
		}
		printStats(log, stats)
		return
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	imp := importer.New(db, registry, *userID, log, false)
	stats, err := imp.Import(ctx, *dir)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"workouts_inserted", stats.WorkoutsInserted,
		"segments_parsed", stats.SegmentsParsed,
		"total_tss_planned", stats.TotalTSSPlanned,
	)
}
