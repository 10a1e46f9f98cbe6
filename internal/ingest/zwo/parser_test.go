package zwo

import (
	"errors"
	"strings"
	"testing"

	"github.com/holographix/ridepro/internal/ingest"
	"github.com/holographix/ridepro/internal/models"
)

const sweetSpotBase = `<?xml version="1.0" encoding="UTF-8"?>
<workout_file>
    <author>RidePro</author>
    <name>Sweet Spot Base</name>
    <description>Classic endurance builder.</description>
    <sportType>bike</sportType>
    <workout>
        <Warmup Duration="2700" PowerLow="0.35" PowerHigh="0.55"/>
        <SteadyState Duration="3600" Power="0.75" Cadence="90"/>
        <SteadyState Duration="2700" Power="0.55"/>
        <Cooldown Duration="1800" PowerLow="0.35" PowerHigh="0.55"/>
    </workout>
</workout_file>`

// TestParseEnduranceWorkout is the end-to-end happy path: a warmup
// ramp, two steady blocks, and a cooldown must cover [0, 10800) with no
// gaps or overlaps.
func TestParseEnduranceWorkout(t *testing.T) {
	p := NewParser()
	w, err := p.Parse("sweetspot.zwo", []byte(sweetSpotBase))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if w.Name != "Sweet Spot Base" {
		t.Errorf("name = %q", w.Name)
	}
	if w.Author != "RidePro" {
		t.Errorf("author = %q", w.Author)
	}
	if w.Sport != models.SportBike {
		t.Errorf("sport = %s", w.Sport)
	}
	if w.TotalDuration != 10800 {
		t.Errorf("total duration = %d, want 10800", w.TotalDuration)
	}

	// 5 warmup + 1 + 1 + 5 cooldown
	if len(w.Segments) != 12 {
		t.Fatalf("segments = %d, want 12", len(w.Segments))
	}
	assertContiguous(t, w)

	// Warmup sub-segments ramp 35 -> 55 in equal slices.
	first := w.Segments[0]
	if first.StartTime != 0 || first.Duration != 540 {
		t.Errorf("warmup[0] = [%d,%d)", first.StartTime, first.EndTime)
	}
	if first.PowerMin != 35 || first.PowerMax != 39 {
		t.Errorf("warmup[0] band = %d-%d, want 35-39", first.PowerMin, first.PowerMax)
	}
	if first.IntensityClass != models.ClassWarmup {
		t.Errorf("warmup[0] class = %s", first.IntensityClass)
	}

	// Steady block at 75% is Endurance / active with the cadence band.
	steady := w.Segments[5]
	if steady.PowerMin != 75 || steady.PowerMax != 75 {
		t.Errorf("steady band = %d-%d, want 75-75", steady.PowerMin, steady.PowerMax)
	}
	if steady.IntensityClass != models.ClassActive {
		t.Errorf("steady class = %s", steady.IntensityClass)
	}
	if steady.Name != "Endurance" {
		t.Errorf("steady name = %q", steady.Name)
	}
	if steady.CadenceMin != 90 || steady.CadenceMax != 90 {
		t.Errorf("steady cadence = %d-%d", steady.CadenceMin, steady.CadenceMax)
	}

	// 55% sits under the rest threshold.
	recovery := w.Segments[6]
	if recovery.IntensityClass != models.ClassRest {
		t.Errorf("recovery class = %s", recovery.IntensityClass)
	}
	if recovery.Name != "Recovery" {
		t.Errorf("recovery name = %q", recovery.Name)
	}

	// Cooldown ramps downward: first sub-segment holds the high bound.
	cool := w.Segments[7]
	if cool.IntensityClass != models.ClassCooldown {
		t.Errorf("cooldown class = %s", cool.IntensityClass)
	}
	if cool.PowerMax != 55 {
		t.Errorf("cooldown[0] powerMax = %d, want 55", cool.PowerMax)
	}
	last := w.Segments[11]
	if last.PowerMin != 35 {
		t.Errorf("cooldown[4] powerMin = %d, want 35", last.PowerMin)
	}
}

func TestParseIntervals(t *testing.T) {
	const doc = `<workout_file>
  <name>VO2 Repeats</name>
  <workout>
    <IntervalsT Repeat="3" OnDuration="180" OffDuration="120" OnPower="1.15" OffPower="0.45" Cadence="100" CadenceResting="85"/>
  </workout>
</workout_file>`

	w, err := NewParser().Parse("vo2.zwo", []byte(doc))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(w.Segments) != 6 {
		t.Fatalf("segments = %d, want 6", len(w.Segments))
	}
	if w.TotalDuration != 3*(180+120) {
		t.Errorf("total duration = %d", w.TotalDuration)
	}
	assertContiguous(t, w)

	on := w.Segments[2]
	if on.Name != "Interval 2 - ON" {
		t.Errorf("on name = %q", on.Name)
	}
	if on.PowerMin != 115 || on.IntensityClass != models.ClassActive {
		t.Errorf("on = %d%% %s", on.PowerMin, on.IntensityClass)
	}
	if on.CadenceMin != 100 {
		t.Errorf("on cadence = %d", on.CadenceMin)
	}

	off := w.Segments[3]
	if off.Name != "Interval 2 - Recovery" {
		t.Errorf("off name = %q", off.Name)
	}
	if off.IntensityClass != models.ClassRest {
		t.Errorf("off class = %s", off.IntensityClass)
	}
	if off.CadenceMin != 85 {
		t.Errorf("off cadence = %d", off.CadenceMin)
	}
}

func TestParseFreeRideAndUnknownElements(t *testing.T) {
	const doc = `<workout_file>
  <name>Openers</name>
  <workout>
    <SteadyState Duration="600" Power="0.5"/>
    <textevent timeoffset="30" message="have fun"/>
    <FreeRide Duration="1200" FlatRoad="1"/>
  </workout>
</workout_file>`

	w, err := NewParser().Parse("openers.zwo", []byte(doc))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(w.Segments) != 2 {
		t.Fatalf("segments = %d, want 2 (textevent skipped)", len(w.Segments))
	}
	free := w.Segments[1]
	if free.Name != "Free Ride" {
		t.Errorf("name = %q", free.Name)
	}
	if free.PowerMin != 40 || free.PowerMax != 80 {
		t.Errorf("placeholder band = %d-%d, want 40-80", free.PowerMin, free.PowerMax)
	}
	if free.Duration != 1200 {
		t.Errorf("duration = %d", free.Duration)
	}
}

func TestParsePlainRampDerivesClass(t *testing.T) {
	const doc = `<workout_file>
  <name>Ramp Test</name>
  <workout>
    <Ramp Duration="1000" PowerLow="0.40" PowerHigh="1.00"/>
  </workout>
</workout_file>`

	w, err := NewParser().Parse("ramp.zwo", []byte(doc))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(w.Segments) != 5 {
		t.Fatalf("segments = %d, want 5", len(w.Segments))
	}
	assertContiguous(t, w)
	if w.Segments[0].IntensityClass != models.ClassRest {
		t.Errorf("low ramp slice class = %s, want rest", w.Segments[0].IntensityClass)
	}
	if w.Segments[4].IntensityClass != models.ClassActive {
		t.Errorf("high ramp slice class = %s, want active", w.Segments[4].IntensityClass)
	}
}

// TestShortRampClampsSliceCount: a ramp shorter than the usual slice
// count gets one slice per second instead of zero-length slices.
func TestShortRampClampsSliceCount(t *testing.T) {
	const doc = `<workout_file>
  <name>Blip</name>
  <workout>
    <Warmup Duration="3" PowerLow="0.4" PowerHigh="0.6"/>
  </workout>
</workout_file>`

	w, err := NewParser().Parse("blip.zwo", []byte(doc))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(w.Segments) != 3 {
		t.Fatalf("segments = %d, want 3", len(w.Segments))
	}
	assertContiguous(t, w)
	for i, s := range w.Segments {
		if s.Duration <= 0 {
			t.Errorf("segment %d has duration %d (start=%d end=%d)",
				i, s.Duration, s.StartTime, s.EndTime)
		}
	}
	if w.TotalDuration != 3 {
		t.Errorf("total duration = %d, want 3", w.TotalDuration)
	}
}

func TestMissingWorkoutElement(t *testing.T) {
	const doc = `<workout_file><name>Empty</name></workout_file>`
	_, err := NewParser().Parse("empty.zwo", []byte(doc))
	if err == nil {
		t.Fatal("expected error for document without <workout>")
	}
	if !errors.Is(err, ingest.ErrInvalidInput) {
		t.Errorf("error does not wrap ErrInvalidInput: %v", err)
	}
	if !strings.Contains(err.Error(), "workout") {
		t.Errorf("error %q should mention the workout element", err)
	}
}

func TestMissingRootElement(t *testing.T) {
	_, err := NewParser().Parse("broken.zwo", []byte(`<nope></nope>`))
	if err == nil {
		t.Fatal("expected error for wrong root element")
	}
	if !errors.Is(err, ingest.ErrInvalidInput) {
		t.Errorf("error does not wrap ErrInvalidInput: %v", err)
	}
}

func TestSupports(t *testing.T) {
	p := NewParser()
	if !p.Supports("Workouts/FTP_Builder.ZWO") {
		t.Error("uppercase extension should match")
	}
	if p.Supports("course.erg") {
		t.Error("erg should not match")
	}
}

func assertContiguous(t *testing.T, w *models.ParsedWorkout) {
	t.Helper()
	if len(w.Segments) == 0 {
		t.Fatal("no segments")
	}
	if w.Segments[0].StartTime != 0 {
		t.Errorf("first segment starts at %d, want 0", w.Segments[0].StartTime)
	}
	for i := 1; i < len(w.Segments); i++ {
		prev, cur := w.Segments[i-1], w.Segments[i]
		if prev.EndTime != cur.StartTime {
			t.Errorf("gap between segment %d (end %d) and %d (start %d)",
				i-1, prev.EndTime, i, cur.StartTime)
		}
	}
	if last := w.Segments[len(w.Segments)-1]; last.EndTime != w.TotalDuration {
		t.Errorf("total duration %d != last end %d", w.TotalDuration, last.EndTime)
	}
}
