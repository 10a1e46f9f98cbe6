package models

// SportType is the discipline a workout targets.
type SportType string

const (
	SportBike  SportType = "bike"
	SportRun   SportType = "run"
	SportSwim  SportType = "swim"
	SportOther SportType = "other"
)

// SourceFormat identifies which file format a workout was parsed from.
type SourceFormat string

const (
	FormatZWO SourceFormat = "zwo"
	FormatERG SourceFormat = "erg"
	FormatMRC SourceFormat = "mrc"
	FormatFIT SourceFormat = "fit"
)

// DefaultFTP is the watts baseline used to convert absolute-watt courses
// when the file does not declare the rider's FTP.
const DefaultFTP = 200

// ParsedWorkout is the normalized result of parsing one workout file:
// metadata plus a time-ordered, contiguous segment list starting at 0.
// It is transient; persistence happens only after conversion.
type ParsedWorkout struct {
	Name          string       `json:"name"`
	Author        string       `json:"author,omitempty"`
	Description   string       `json:"description,omitempty"`
	Sport         SportType    `json:"sport"`
	Segments      []Segment    `json:"segments"`
	TotalDuration int          `json:"total_duration"`
	SourceFormat  SourceFormat `json:"source_format"`
	// FTP is only set when the source declared one (ERG courses); zero
	// means the file carried no FTP and watt conversion used DefaultFTP.
	FTP int `json:"ftp,omitempty"`
}

// AppendSegment adds a segment starting at the current end of the
// workout and advances TotalDuration.
func (p *ParsedWorkout) AppendSegment(duration, powerMin, powerMax int, class IntensityClass, name string) {
	p.Segments = append(p.Segments, Segment{
		StartTime:      p.TotalDuration,
		EndTime:        p.TotalDuration + duration,
		Duration:       duration,
		PowerMin:       powerMin,
		PowerMax:       powerMax,
		IntensityClass: class,
		Name:           name,
	})
	p.TotalDuration += duration
}

// LastSegment returns a pointer to the most recently appended segment,
// or nil if there are none.
func (p *ParsedWorkout) LastSegment() *Segment {
	if len(p.Segments) == 0 {
		return nil
	}
	return &p.Segments[len(p.Segments)-1]
}
