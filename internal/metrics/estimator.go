// Package metrics derives training-load numbers from a planned segment
// list. All functions are pure; identical input yields identical output.
package metrics

import (
	"math"

	"github.com/holographix/ridepro/internal/models"
)

// Estimate holds the derived training-load metrics for one workout.
type Estimate struct {
	NormalizedPower float64          `json:"normalized_power"`
	IntensityFactor float64          `json:"intensity_factor"`
	TSS             int              `json:"tss"`
	Intensity       models.Intensity `json:"intensity"`
}

// NormalizedPower approximates NP for a planned segment list: each
// segment contributes its band midpoint (as a fraction of FTP) raised
// to the 4th power, weighted by duration; the result is the 4th root of
// the duration-weighted mean. Returned as a fraction of FTP.
func NormalizedPower(segments []models.Segment) float64 {
	var weighted float64
	var total int
	for _, s := range segments {
		frac := s.MidPercent() / 100
		weighted += math.Pow(frac, 4) * float64(s.Duration)
		total += s.Duration
	}
	if total == 0 {
		return 0
	}
	return math.Pow(weighted/float64(total), 0.25)
}

// IntensityFactor is NP (already FTP-normalized) rounded to 2 decimals.
func IntensityFactor(segments []models.Segment) float64 {
	return math.Round(NormalizedPower(segments)*100) / 100
}

// TrainingStressScore computes TSS = hours x IF^2 x 100, rounded to the
// nearest integer. The rounded IF feeds the formula so the stored IF
// and TSS stay consistent with each other.
func TrainingStressScore(totalDuration int, intensityFactor float64) int {
	hours := float64(totalDuration) / 3600
	return int(math.Round(hours * intensityFactor * intensityFactor * 100))
}

// IntensityFor buckets an IF value into the planned-intensity category.
// The same table is used for manually entered workouts elsewhere in the
// system, so keep it here rather than inlining the thresholds.
func IntensityFor(intensityFactor float64) models.Intensity {
	switch {
	case intensityFactor < 0.65:
		return models.IntensityEasy
	case intensityFactor < 0.80:
		return models.IntensityModerate
	case intensityFactor < 0.95:
		return models.IntensityHard
	default:
		return models.IntensityVeryHard
	}
}

// ForWorkout computes the full estimate for a parsed workout.
func ForWorkout(p *models.ParsedWorkout) Estimate {
	np := NormalizedPower(p.Segments)
	ifPlanned := math.Round(np*100) / 100
	return Estimate{
		NormalizedPower: np,
		IntensityFactor: ifPlanned,
		TSS:             TrainingStressScore(p.TotalDuration, ifPlanned),
		Intensity:       IntensityFor(ifPlanned),
	}
}
