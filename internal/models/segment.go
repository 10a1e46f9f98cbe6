package models

// IntensityClass categorizes what a segment asks of the rider.
type IntensityClass string

const (
	ClassWarmup   IntensityClass = "warmup"
	ClassActive   IntensityClass = "active"
	ClassRest     IntensityClass = "rest"
	ClassCooldown IntensityClass = "cooldown"
)

// RestThreshold is the percent-of-FTP boundary below which steady work
// counts as recovery rather than active riding.
const RestThreshold = 56

// Segment is a constant-or-ramping power band over a contiguous time
// interval. Power values are integer percent of FTP and may exceed 100.
// Within a ParsedWorkout, segments are time-ordered and contiguous:
// each segment starts exactly where the previous one ended.
type Segment struct {
	StartTime      int            `json:"start_time"`
	EndTime        int            `json:"end_time"`
	Duration       int            `json:"duration"`
	PowerMin       int            `json:"power_min"`
	PowerMax       int            `json:"power_max"`
	IntensityClass IntensityClass `json:"intensity_class"`
	Name           string         `json:"name"`
	CadenceMin     int            `json:"cadence_min,omitempty"`
	CadenceMax     int            `json:"cadence_max,omitempty"`
}

// MidPercent returns the midpoint of the segment's power band.
func (s Segment) MidPercent() float64 {
	return float64(s.PowerMin+s.PowerMax) / 2
}

// ClassForPower maps a percent-of-FTP value to an intensity class.
func ClassForPower(percent int) IntensityClass {
	if percent < RestThreshold {
		return ClassRest
	}
	return ClassActive
}

// ZoneName returns the human label for a percent-of-FTP value. The
// boundaries follow the classic Coggan zone table. Naming only; it never
// affects the intensity class.
func ZoneName(percent int) string {
	switch {
	case percent < 56:
		return "Recovery"
	case percent < 76:
		return "Endurance"
	case percent < 90:
		return "Tempo"
	case percent < 105:
		return "Threshold"
	case percent < 120:
		return "VO2max"
	default:
		return "Anaerobic"
	}
}
