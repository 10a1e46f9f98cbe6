// Package fitfile maps planned-workout FIT files onto the normalized
// segment representation. Binary decoding is delegated to
// github.com/tormoder/fit; this package only interprets the decoded
// workout and workout_step messages.
package fitfile

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/tormoder/fit"

	"github.com/holographix/ridepro/internal/ingest"
	"github.com/holographix/ridepro/internal/models"
)

// Parser converts planned-workout FIT files. FTP is the rider baseline
// used when a step declares its power target in absolute watts; zero
// means the 200 W default.
type Parser struct {
	FTP int
}

// NewParser creates a FIT workout parser with the given FTP baseline.
func NewParser(ftp int) *Parser {
	return &Parser{FTP: ftp}
}

// Supports reports whether the filename looks like a FIT file.
func (p *Parser) Supports(filename string) bool {
	return ingest.HasExtension(filename, ".fit")
}

// Parse decodes the file and expands its step list, including
// repeat-until-steps-complete blocks, into contiguous segments.
func (p *Parser) Parse(filename string, data []byte) (*models.ParsedWorkout, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding FIT file: %v", ingest.ErrInvalidInput, err)
	}
	wf, err := decoded.Workout()
	if err != nil {
		return nil, fmt.Errorf("%w: planned-workout FIT expected: %v", ingest.ErrInvalidInput, err)
	}
	if len(wf.WorkoutSteps) == 0 {
		return nil, fmt.Errorf("%w: workout file has no steps", ingest.ErrInvalidInput)
	}

	result := &models.ParsedWorkout{
		Sport:        models.SportOther,
		SourceFormat: models.FormatFIT,
	}
	if wf.Workout != nil {
		result.Name = strings.TrimSpace(wf.Workout.WktName)
		result.Sport = sportFor(wf.Workout.Sport)
	}
	if result.Name == "" {
		base := filepath.Base(filename)
		result.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	for _, step := range expandRepeats(wf.WorkoutSteps) {
		p.appendStep(result, step)
	}
	if len(result.Segments) == 0 {
		return nil, fmt.Errorf("%w: workout file has no timed power steps", ingest.ErrInvalidInput)
	}
	return result, nil
}

// expandRepeats flattens repeat_until_steps_cmplt markers: a repeat
// step's duration value is the message index to loop back to, and its
// target value is the total iteration count.
func expandRepeats(steps []*fit.WorkoutStepMsg) []*fit.WorkoutStepMsg {
	byIndex := map[uint16]int{}
	for i, s := range steps {
		byIndex[uint16(s.MessageIndex)] = i
	}

	var out []*fit.WorkoutStepMsg
	var walk func(from, to int, iterations int)
	walk = func(from, to int, iterations int) {
		for iter := 0; iter < iterations; iter++ {
			for i := from; i < to; i++ {
				s := steps[i]
				if s.DurationType == fit.WktStepDurationRepeatUntilStepsCmplt {
					start, ok := byIndex[uint16(s.DurationValue)]
					count := int(s.TargetValue)
					// First pass through the block already happened.
					if ok && count > 1 && start < i {
						walk(start, i, count-1)
					}
					continue
				}
				out = append(out, s)
			}
		}
	}
	walk(0, len(steps), 1)
	return out
}

// appendStep converts one timed step into a segment. Steps without a
// time duration (distance, HR, open) have no fixed place on a planned
// power timeline and are skipped.
func (p *Parser) appendStep(w *models.ParsedWorkout, step *fit.WorkoutStepMsg) {
	if step.DurationType != fit.WktStepDurationTime {
		return
	}
	duration := int(step.DurationValue / 1000) // milliseconds
	if duration <= 0 {
		return
	}

	lo, hi := p.powerBand(step)
	class := classFor(step.Intensity, (lo+hi)/2)
	name := strings.TrimSpace(step.WktStepName)
	if name == "" {
		name = models.ZoneName((lo + hi) / 2)
	}
	w.AppendSegment(duration, lo, hi, class, name)
}

// powerBand extracts the step's power target as percent of FTP. FIT
// encodes power target values <= 1000 as percent FTP and values above
// as watts offset by 1000.
func (p *Parser) powerBand(step *fit.WorkoutStepMsg) (int, int) {
	if step.TargetType != fit.WktStepTargetPower {
		// No power target: mirror the FreeRide placeholder band.
		return 40, 80
	}
	lo := p.toPercent(step.CustomTargetValueLow)
	hi := p.toPercent(step.CustomTargetValueHigh)
	if lo == 0 && hi == 0 {
		// Zone-indexed target rather than a custom band.
		return 40, 80
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

func (p *Parser) toPercent(value uint32) int {
	if value == 0 {
		return 0
	}
	if value > 1000 {
		ftp := p.FTP
		if ftp <= 0 {
			ftp = models.DefaultFTP
		}
		watts := float64(value - 1000)
		return int(math.Round(watts / float64(ftp) * 100))
	}
	return int(value)
}

func classFor(intensity fit.Intensity, midPercent int) models.IntensityClass {
	switch intensity {
	case fit.IntensityWarmup:
		return models.ClassWarmup
	case fit.IntensityCooldown:
		return models.ClassCooldown
	case fit.IntensityRest:
		return models.ClassRest
	case fit.IntensityActive:
		return models.ClassActive
	default:
		return models.ClassForPower(midPercent)
	}
}

func sportFor(sport fit.Sport) models.SportType {
	switch sport {
	case fit.SportCycling:
		return models.SportBike
	case fit.SportRunning:
		return models.SportRun
	case fit.SportSwimming:
		return models.SportSwim
	default:
		return models.SportOther
	}
}
