package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/holographix/ridepro/internal/models"
)

// ErrNotFound is returned when a requested workout does not exist.
var ErrNotFound = errors.New("workout not found")

// InsertWorkout stores a converted workout. The structure tree and the
// archived segment list land in jsonb columns.
func (db *DB) InsertWorkout(ctx context.Context, w *models.ConvertedWorkout) error {
	structure, err := json.Marshal(w.Structure)
	if err != nil {
		return fmt.Errorf("encoding structure: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, name, slug, description, workout_type, source_format,
		 duration_sec, tss_planned, if_planned, environment, intensity, structure, raw_json)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		w.ID, w.UserID, w.Name, w.Slug, w.Description, w.WorkoutType, w.SourceFormat,
		w.DurationSeconds, w.TSSPlanned, w.IFPlanned, w.Environment, w.Intensity,
		structure, w.RawJSON)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	return nil
}

// ListOptions filters and bounds a workout listing.
type ListOptions struct {
	Sport     string
	Intensity string
	Limit     int
}

const workoutColumns = `id, user_id, name, slug, description, workout_type, source_format,
	duration_sec, tss_planned, if_planned, environment, intensity, structure, raw_json, created_at`

// ListWorkouts returns a user's workouts, newest first.
func (db *DB) ListWorkouts(ctx context.Context, userID int, opts ListOptions) ([]models.ConvertedWorkout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id = $1`
	args := []any{userID}
	if opts.Sport != "" {
		args = append(args, strings.ToLower(opts.Sport))
		query += fmt.Sprintf(" AND workout_type = $%d", len(args))
	}
	if opts.Intensity != "" {
		args = append(args, strings.ToUpper(opts.Intensity))
		query += fmt.Sprintf(" AND intensity = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	limit := opts.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()
	return scanWorkouts(rows)
}

// GetWorkout retrieves one workout by ID.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.ConvertedWorkout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1 AND user_id = $2`, id, userID)
	w, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying workout %s: %w", id, err)
	}
	return w, nil
}

// GetWorkoutBySlug retrieves one workout by its slug.
func (db *DB) GetWorkoutBySlug(ctx context.Context, slug string, userID int) (*models.ConvertedWorkout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE slug = $1 AND user_id = $2`, slug, userID)
	w, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying workout %q: %w", slug, err)
	}
	return w, nil
}

// DeleteWorkout removes a workout. Returns ErrNotFound when nothing
// matched.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting workout %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LibraryStats summarizes a user's workout library.
type LibraryStats struct {
	TotalWorkouts   int            `json:"total_workouts"`
	TotalTSSPlanned int            `json:"total_tss_planned"`
	TotalDurationS  int            `json:"total_duration_sec"`
	BySport         map[string]int `json:"by_sport"`
	ByIntensity     map[string]int `json:"by_intensity"`
	BySourceFormat  map[string]int `json:"by_source_format"`
}

// GetLibraryStats aggregates counts and planned load across the
// library.
func (db *DB) GetLibraryStats(ctx context.Context, userID int) (*LibraryStats, error) {
	stats := &LibraryStats{
		BySport:        map[string]int{},
		ByIntensity:    map[string]int{},
		BySourceFormat: map[string]int{},
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT workout_type, intensity, source_format, COUNT(*),
		 COALESCE(SUM(tss_planned), 0), COALESCE(SUM(duration_sec), 0)
		 FROM workouts WHERE user_id = $1
		 GROUP BY workout_type, intensity, source_format`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying library stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sport, intensity, format string
		var count, tss, duration int
		if err := rows.Scan(&sport, &intensity, &format, &count, &tss, &duration); err != nil {
			return nil, fmt.Errorf("scanning library stats: %w", err)
		}
		stats.TotalWorkouts += count
		stats.TotalTSSPlanned += tss
		stats.TotalDurationS += duration
		stats.BySport[sport] += count
		stats.ByIntensity[intensity] += count
		stats.BySourceFormat[format] += count
	}
	return stats, rows.Err()
}

func scanWorkouts(rows pgx.Rows) ([]models.ConvertedWorkout, error) {
	var out []models.ConvertedWorkout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func scanWorkout(row pgx.Row) (*models.ConvertedWorkout, error) {
	var w models.ConvertedWorkout
	var structure []byte
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Slug, &w.Description, &w.WorkoutType,
		&w.SourceFormat, &w.DurationSeconds, &w.TSSPlanned, &w.IFPlanned,
		&w.Environment, &w.Intensity, &structure, &w.RawJSON, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(structure, &w.Structure); err != nil {
		return nil, fmt.Errorf("decoding structure: %w", err)
	}
	return &w, nil
}
