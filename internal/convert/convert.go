// Package convert maps the flat parsed timeline into the nested
// structure consumed by calendar features and assembles the persistable
// ConvertedWorkout.
package convert

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/holographix/ridepro/internal/metrics"
	"github.com/holographix/ridepro/internal/models"
)

// ToStructure wraps every segment in a single-repetition step carrying
// one power target band and an optional cadence band. Repeats were
// already expanded by the parsers; the wrapper keeps the schema
// downstream edit features expect without re-inferring grouping.
func ToStructure(segments []models.Segment) models.Structure {
	st := models.Structure{Reps: make([]models.Repetition, 0, len(segments))}
	for _, s := range segments {
		step := models.Step{
			Name:           s.Name,
			LengthSeconds:  s.Duration,
			IntensityClass: s.IntensityClass,
			Power:          models.Target{MinValue: s.PowerMin, MaxValue: s.PowerMax},
		}
		if s.CadenceMin > 0 || s.CadenceMax > 0 {
			step.Cadence = &models.Target{MinValue: s.CadenceMin, MaxValue: s.CadenceMax}
		}
		st.Reps = append(st.Reps, models.Repetition{
			Repetitions: 1,
			Steps:       []models.Step{step},
		})
	}
	return st
}

// Workout builds the full ConvertedWorkout from a parse result: derived
// metrics, the structure tree, and the original segment list archived
// verbatim so the transformation stays auditable.
func Workout(p *models.ParsedWorkout, userID int) (*models.ConvertedWorkout, error) {
	raw, err := json.Marshal(p.Segments)
	if err != nil {
		return nil, fmt.Errorf("archiving segments: %w", err)
	}

	est := metrics.ForWorkout(p)
	return &models.ConvertedWorkout{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            p.Name,
		Slug:            Slug(p.Name),
		Description:     p.Description,
		WorkoutType:     p.Sport,
		SourceFormat:    p.SourceFormat,
		DurationSeconds: p.TotalDuration,
		TSSPlanned:      est.TSS,
		IFPlanned:       est.IntensityFactor,
		Environment:     environmentFor(p.SourceFormat),
		Intensity:       est.Intensity,
		Structure:       ToStructure(p.Segments),
		RawJSON:         raw,
	}, nil
}

// Slug lowercases the name, collapses runs of non-alphanumerics to
// single dashes, and appends a short random suffix so re-imports of the
// same file never collide.
func Slug(name string) string {
	var b strings.Builder
	dash := true // suppress a leading dash
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "workout"
	}
	return slug + "-" + uuid.NewString()[:8]
}

// environmentFor maps source formats to a riding environment. Trainer
// course formats are indoor by definition; FIT plans ride anywhere.
func environmentFor(format models.SourceFormat) models.Environment {
	if format == models.FormatFIT {
		return models.EnvAny
	}
	return models.EnvIndoor
}
