package metrics

import (
	"math"
	"testing"

	"github.com/holographix/ridepro/internal/models"
)

func steady(duration, percent int) models.Segment {
	return models.Segment{
		Duration: duration,
		PowerMin: percent,
		PowerMax: percent,
	}
}

// TestConstantHourAtNinety covers the canonical check: one hour held at
// 90% FTP must come out as IF 0.90 and TSS 81.
func TestConstantHourAtNinety(t *testing.T) {
	p := &models.ParsedWorkout{
		Segments:      []models.Segment{steady(3600, 90)},
		TotalDuration: 3600,
	}
	est := ForWorkout(p)
	if est.IntensityFactor != 0.90 {
		t.Errorf("IF = %v, want 0.90", est.IntensityFactor)
	}
	if est.TSS != 81 {
		t.Errorf("TSS = %d, want 81", est.TSS)
	}
	if est.Intensity != models.IntensityHard {
		t.Errorf("intensity = %s, want HARD", est.Intensity)
	}
}

// TestNormalizedPowerWeighting verifies the 4th-power weighting: hard
// intervals pull NP above the simple time-weighted average.
func TestNormalizedPowerWeighting(t *testing.T) {
	segments := []models.Segment{
		steady(600, 120),
		steady(600, 40),
	}
	np := NormalizedPower(segments)
	avg := (1.20 + 0.40) / 2
	if np <= avg {
		t.Errorf("NP = %v, want > linear average %v", np, avg)
	}
	// Exact value: ((1.2^4 + 0.4^4) / 2)^0.25
	want := math.Pow((math.Pow(1.2, 4)+math.Pow(0.4, 4))/2, 0.25)
	if math.Abs(np-want) > 1e-12 {
		t.Errorf("NP = %v, want %v", np, want)
	}
}

// TestNormalizedPowerUsesBandMidpoint checks a ramp segment counts at
// the midpoint of its band.
func TestNormalizedPowerUsesBandMidpoint(t *testing.T) {
	segments := []models.Segment{{Duration: 300, PowerMin: 50, PowerMax: 100}}
	np := NormalizedPower(segments)
	if math.Abs(np-0.75) > 1e-12 {
		t.Errorf("NP = %v, want 0.75", np)
	}
}

func TestZeroDuration(t *testing.T) {
	if np := NormalizedPower(nil); np != 0 {
		t.Errorf("NP of empty list = %v, want 0", np)
	}
}

// TestEstimateDeterministic asserts repeated calls produce bit-identical
// results: the estimator must stay a pure function of its input.
func TestEstimateDeterministic(t *testing.T) {
	p := &models.ParsedWorkout{
		Segments: []models.Segment{
			steady(1200, 73),
			steady(300, 45),
			steady(900, 107),
		},
		TotalDuration: 2400,
	}
	first := ForWorkout(p)
	for i := 0; i < 10; i++ {
		if got := ForWorkout(p); got != first {
			t.Fatalf("call %d: estimate %+v != first %+v", i, got, first)
		}
	}
}

func TestIntensityBuckets(t *testing.T) {
	cases := []struct {
		ifVal float64
		want  models.Intensity
	}{
		{0.50, models.IntensityEasy},
		{0.64, models.IntensityEasy},
		{0.65, models.IntensityModerate},
		{0.79, models.IntensityModerate},
		{0.80, models.IntensityHard},
		{0.94, models.IntensityHard},
		{0.95, models.IntensityVeryHard},
		{1.20, models.IntensityVeryHard},
	}
	for _, c := range cases {
		if got := IntensityFor(c.ifVal); got != c.want {
			t.Errorf("IntensityFor(%v) = %s, want %s", c.ifVal, got, c.want)
		}
	}
}
