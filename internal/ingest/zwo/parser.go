// Package zwo parses Zwift .zwo workout files into the normalized
// segment representation.
package zwo

import (
	"encoding/xml"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/holographix/ridepro/internal/ingest"
	"github.com/holographix/ridepro/internal/models"
)

// rampSteps is how many equal sub-segments a Warmup/Cooldown/Ramp
// element is discretized into. Inherited visualization granularity;
// downstream rendering assumes it, so don't change it casually.
const rampSteps = 5

// workoutFile mirrors the ZWO document shape. The schema is simple and
// well-formed in practice, so a plain struct unmarshal is tolerant
// enough: unknown elements and attributes are ignored by encoding/xml.
type workoutFile struct {
	XMLName     xml.Name      `xml:"workout_file"`
	Name        string        `xml:"name"`
	Author      string        `xml:"author"`
	Description string        `xml:"description"`
	SportType   string        `xml:"sportType"`
	Workout     *workoutBlock `xml:"workout"`
}

// workoutBlock captures every child element of <workout> in document
// order; unrecognized element names are skipped during the walk.
type workoutBlock struct {
	Elements []element `xml:",any"`
}

type element struct {
	XMLName        xml.Name
	Duration       int     `xml:"Duration,attr"`
	Power          float64 `xml:"Power,attr"`
	PowerLow       float64 `xml:"PowerLow,attr"`
	PowerHigh      float64 `xml:"PowerHigh,attr"`
	Repeat         int     `xml:"Repeat,attr"`
	OnDuration     int     `xml:"OnDuration,attr"`
	OffDuration    int     `xml:"OffDuration,attr"`
	OnPower        float64 `xml:"OnPower,attr"`
	OffPower       float64 `xml:"OffPower,attr"`
	Cadence        int     `xml:"Cadence,attr"`
	CadenceResting int     `xml:"CadenceResting,attr"`
}

// Parser converts Zwift workout markup.
type Parser struct{}

// NewParser creates a ZWO parser.
func NewParser() *Parser {
	return &Parser{}
}

// Supports reports whether the filename looks like a ZWO file.
func (p *Parser) Supports(filename string) bool {
	return ingest.HasExtension(filename, ".zwo")
}

// Parse converts ZWO markup into a ParsedWorkout. Elements contribute
// segments in document order from a time cursor starting at 0, so the
// output is contiguous by construction.
func (p *Parser) Parse(filename string, data []byte) (*models.ParsedWorkout, error) {
	var doc workoutFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing workout markup: %v", ingest.ErrInvalidInput, err)
	}
	if doc.Workout == nil {
		return nil, fmt.Errorf("%w: missing <workout> element", ingest.ErrInvalidInput)
	}

	result := &models.ParsedWorkout{
		Name:         strings.TrimSpace(doc.Name),
		Author:       strings.TrimSpace(doc.Author),
		Description:  strings.TrimSpace(doc.Description),
		Sport:        sportFor(doc.SportType),
		SourceFormat: models.FormatZWO,
	}
	if result.Name == "" {
		base := filepath.Base(filename)
		result.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	for _, el := range doc.Workout.Elements {
		switch el.XMLName.Local {
		case "Warmup":
			appendRamp(result, el, el.PowerLow, el.PowerHigh, models.ClassWarmup, "Warm Up")
		case "Cooldown":
			// Cooldown ramps the other way: high bound down to low.
			appendRamp(result, el, el.PowerHigh, el.PowerLow, models.ClassCooldown, "Cool Down")
		case "Ramp":
			appendRamp(result, el, el.PowerLow, el.PowerHigh, "", "")
		case "SteadyState":
			appendSteady(result, el)
		case "IntervalsT":
			appendIntervals(result, el)
		case "FreeRide":
			appendFreeRide(result, el)
		default:
			// Unrecognized element (textevent markers etc.) — skip.
		}
	}

	if len(result.Segments) == 0 {
		return nil, fmt.Errorf("%w: workout contains no rideable elements", ingest.ErrInvalidInput)
	}
	return result, nil
}

// appendRamp discretizes a ramping element into rampSteps equal
// sub-segments linearly interpolating from startFrac to endFrac. An
// empty class means derive it per sub-segment from its midpoint power.
func appendRamp(w *models.ParsedWorkout, el element, startFrac, endFrac float64, class models.IntensityClass, name string) {
	if el.Duration <= 0 {
		return
	}
	// Very short ramps get fewer slices so none comes out zero-length.
	steps := rampSteps
	if el.Duration < steps {
		steps = el.Duration
	}
	step := el.Duration / steps
	for i := 0; i < steps; i++ {
		dur := step
		if i == steps-1 {
			dur = el.Duration - step*(steps-1) // remainder keeps the total exact
		}
		a := percent(lerp(startFrac, endFrac, float64(i)/float64(steps)))
		b := percent(lerp(startFrac, endFrac, float64(i+1)/float64(steps)))
		lo, hi := a, b
		if lo > hi {
			lo, hi = hi, lo
		}
		segClass := class
		segName := name
		if segClass == "" {
			mid := (lo + hi) / 2
			segClass = models.ClassForPower(mid)
			segName = models.ZoneName(mid) + " Ramp"
		}
		w.AppendSegment(dur, lo, hi, segClass, segName)
		applyCadence(w.LastSegment(), el.Cadence)
	}
}

func appendSteady(w *models.ParsedWorkout, el element) {
	if el.Duration <= 0 {
		return
	}
	pct := percent(el.Power)
	w.AppendSegment(el.Duration, pct, pct, models.ClassForPower(pct), models.ZoneName(pct))
	applyCadence(w.LastSegment(), el.Cadence)
}

func appendIntervals(w *models.ParsedWorkout, el element) {
	repeat := el.Repeat
	if repeat <= 0 {
		repeat = 1
	}
	onPct := percent(el.OnPower)
	offPct := percent(el.OffPower)
	for n := 1; n <= repeat; n++ {
		if el.OnDuration > 0 {
			w.AppendSegment(el.OnDuration, onPct, onPct, models.ClassForPower(onPct),
				fmt.Sprintf("Interval %d - ON", n))
			applyCadence(w.LastSegment(), el.Cadence)
		}
		if el.OffDuration > 0 {
			// Recovery halves are rest regardless of their power.
			w.AppendSegment(el.OffDuration, offPct, offPct, models.ClassRest,
				fmt.Sprintf("Interval %d - Recovery", n))
			applyCadence(w.LastSegment(), el.CadenceResting)
		}
	}
}

// appendFreeRide emits an open-ended block with a placeholder band so
// the timeline stays contiguous even though the rider picks the power.
func appendFreeRide(w *models.ParsedWorkout, el element) {
	if el.Duration <= 0 {
		return
	}
	w.AppendSegment(el.Duration, 40, 80, models.ClassActive, "Free Ride")
	applyCadence(w.LastSegment(), el.Cadence)
}

func applyCadence(s *models.Segment, cadence int) {
	if s != nil && cadence > 0 {
		s.CadenceMin = cadence
		s.CadenceMax = cadence
	}
}

// percent converts a fraction-of-FTP attribute (0.75) to integer
// percent (75).
func percent(frac float64) int {
	return int(math.Round(frac * 100))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func sportFor(s string) models.SportType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "run":
		return models.SportRun
	case "swim":
		return models.SportSwim
	case "", "bike", "ride":
		return models.SportBike
	default:
		return models.SportOther
	}
}
