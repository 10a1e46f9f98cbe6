package fitfile

import (
	"testing"

	"github.com/tormoder/fit"

	"github.com/holographix/ridepro/internal/models"
)

func timeStep(index uint16, seconds int, pctLo, pctHi uint32, intensity fit.Intensity) *fit.WorkoutStepMsg {
	return &fit.WorkoutStepMsg{
		MessageIndex:          fit.MessageIndex(index),
		DurationType:          fit.WktStepDurationTime,
		DurationValue:         uint32(seconds * 1000),
		TargetType:            fit.WktStepTargetPower,
		CustomTargetValueLow:  pctLo,
		CustomTargetValueHigh: pctHi,
		Intensity:             intensity,
	}
}

// TestExpandRepeats verifies repeat_until_steps_cmplt flattening: the
// repeat marker points back at a message index and carries the total
// iteration count.
func TestExpandRepeats(t *testing.T) {
	steps := []*fit.WorkoutStepMsg{
		timeStep(0, 600, 50, 50, fit.IntensityWarmup),
		timeStep(1, 180, 110, 120, fit.IntensityActive),
		timeStep(2, 120, 40, 50, fit.IntensityRest),
		{
			MessageIndex:  fit.MessageIndex(3),
			DurationType:  fit.WktStepDurationRepeatUntilStepsCmplt,
			DurationValue: 1, // loop back to step 1
			TargetValue:   4, // 4 total passes
		},
		timeStep(4, 600, 45, 45, fit.IntensityCooldown),
	}

	out := expandRepeats(steps)
	// warmup + 4x(on+off) + cooldown
	if len(out) != 10 {
		t.Fatalf("expanded steps = %d, want 10", len(out))
	}
	if out[0].Intensity != fit.IntensityWarmup {
		t.Errorf("first step intensity = %v", out[0].Intensity)
	}
	if out[7].CustomTargetValueHigh != 120 {
		t.Errorf("step 7 should be a repeated ON step, got high=%d", out[7].CustomTargetValueHigh)
	}
	if out[9].Intensity != fit.IntensityCooldown {
		t.Errorf("last step intensity = %v", out[9].Intensity)
	}
}

// TestAppendStepBuildsContiguousTimeline feeds expanded steps through
// the segment builder and checks the timeline invariants.
func TestAppendStepBuildsContiguousTimeline(t *testing.T) {
	p := NewParser(250)
	w := &models.ParsedWorkout{SourceFormat: models.FormatFIT}

	p.appendStep(w, timeStep(0, 600, 55, 60, fit.IntensityWarmup))
	p.appendStep(w, timeStep(1, 1200, 95, 100, fit.IntensityActive))
	// Distance-duration steps have no place on a time axis.
	p.appendStep(w, &fit.WorkoutStepMsg{
		DurationType:  fit.WktStepDurationDistance,
		DurationValue: 5000,
		TargetType:    fit.WktStepTargetPower,
	})
	p.appendStep(w, timeStep(2, 300, 40, 45, fit.IntensityRest))

	if len(w.Segments) != 3 {
		t.Fatalf("segments = %d, want 3 (distance step skipped)", len(w.Segments))
	}
	if w.TotalDuration != 2100 {
		t.Errorf("total duration = %d, want 2100", w.TotalDuration)
	}
	if w.Segments[0].StartTime != 0 {
		t.Errorf("first segment starts at %d", w.Segments[0].StartTime)
	}
	for i := 1; i < len(w.Segments); i++ {
		if w.Segments[i-1].EndTime != w.Segments[i].StartTime {
			t.Errorf("gap at segment %d", i)
		}
	}
	if w.Segments[0].IntensityClass != models.ClassWarmup {
		t.Errorf("warmup class = %s", w.Segments[0].IntensityClass)
	}
	if w.Segments[2].IntensityClass != models.ClassRest {
		t.Errorf("rest class = %s", w.Segments[2].IntensityClass)
	}
}

// TestPowerTargetEncoding covers the FIT convention: values <= 1000 are
// percent FTP, values above are watts + 1000.
func TestPowerTargetEncoding(t *testing.T) {
	p := NewParser(250)

	lo, hi := p.powerBand(timeStep(0, 60, 75, 85, fit.IntensityActive))
	if lo != 75 || hi != 85 {
		t.Errorf("percent band = %d-%d, want 75-85", lo, hi)
	}

	// 1250 encodes 250 W = 100% of a 250 W FTP.
	lo, hi = p.powerBand(timeStep(0, 60, 1200, 1250, fit.IntensityActive))
	if lo != 80 || hi != 100 {
		t.Errorf("watt band = %d-%d, want 80-100", lo, hi)
	}

	// No FTP configured: 200 W baseline.
	base := NewParser(0)
	lo, hi = base.powerBand(timeStep(0, 60, 1100, 1300, fit.IntensityActive))
	if lo != 50 || hi != 150 {
		t.Errorf("baseline watt band = %d-%d, want 50-150", lo, hi)
	}

	// Non-power targets fall back to the open-riding placeholder.
	lo, hi = p.powerBand(&fit.WorkoutStepMsg{
		DurationType:  fit.WktStepDurationTime,
		DurationValue: 60000,
		TargetType:    fit.WktStepTargetHeartRate,
	})
	if lo != 40 || hi != 80 {
		t.Errorf("placeholder band = %d-%d, want 40-80", lo, hi)
	}
}

func TestSupports(t *testing.T) {
	p := NewParser(0)
	if !p.Supports("plans/Tuesday.FIT") {
		t.Error("fit extension should match")
	}
	if p.Supports("plans/Tuesday.zwo") {
		t.Error("zwo should not match")
	}
}
