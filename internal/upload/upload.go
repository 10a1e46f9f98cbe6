package upload

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/holographix/ridepro/internal/ingest"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesRejected int
	FilesErrored  int
}

// Uploader walks a directory of workout files and POSTs the ones not
// yet seen to the RidePro server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader rooted at dir.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run walks the directory tree and uploads every supported workout
// file that the state database has not recorded yet. A file that fails
// never stops the walk.
func (u *Uploader) Run() (*Stats, error) {
	err := filepath.WalkDir(u.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !ingest.HasExtension(d.Name(), ingest.SupportedExtensions...) {
			return nil
		}
		u.processFile(path)
		return nil
	})
	if err != nil {
		return &u.stats, fmt.Errorf("walking %s: %w", u.dir, err)
	}
	return &u.stats, nil
}

func (u *Uploader) processFile(path string) {
	u.stats.FilesTotal++

	relPath, _ := filepath.Rel(u.dir, path)
	info, err := os.Stat(path)
	if err != nil {
		u.log.Warn("stat failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}

	hash, err := hashFile(path)
	if err != nil {
		u.log.Warn("hash failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}

	seen, err := u.state.Seen(relPath, info.Size(), hash)
	if err != nil {
		u.log.Warn("state check failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}
	if seen {
		u.stats.FilesSkipped++
		return
	}

	if u.dryRun {
		u.log.Info("dry-run: would upload", "file", relPath, "size", info.Size())
		u.stats.FilesUploaded++
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		u.log.Warn("read failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}

	result, err := u.client.SendFile(filepath.Base(path), data)
	if err != nil {
		var rejected *ErrRejected
		if errors.As(err, &rejected) {
			// Remember the rejection so reruns don't resend bad input.
			u.log.Warn("file rejected", "file", relPath, "status", rejected.Status)
			_ = u.state.Record(relPath, info.Size(), hash, OutcomeRejected, "")
			u.stats.FilesRejected++
			return
		}
		u.log.Warn("upload failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return
	}

	if err := u.state.Record(relPath, info.Size(), hash, OutcomeUploaded, result.Slug); err != nil {
		u.log.Warn("failed to record upload", "file", relPath, "error", err)
	}
	u.stats.FilesUploaded++
	u.log.Info("uploaded workout",
		"file", relPath,
		"slug", result.Slug,
		"tss", result.TSSPlanned,
	)
}
