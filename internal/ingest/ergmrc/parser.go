// Package ergmrc parses ERG (absolute watts) and MRC (percent FTP)
// vertex-list course files into the normalized segment representation.
package ergmrc

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/holographix/ridepro/internal/ingest"
	"github.com/holographix/ridepro/internal/models"
)

// rampThreshold is the raw-unit jump between segment endpoints above
// which a segment is labeled a ramp. Cosmetic only: it drives the name,
// never the numeric band or metrics.
const rampThreshold = 5.0

// vertex is one (minutes, value) course point. Two consecutive vertices
// sharing the same minutes mark an instantaneous step, not a ramp.
type vertex struct {
	minutes float64
	value   float64
}

type courseUnits int

const (
	unitsUnknown courseUnits = iota
	unitsWatts
	unitsPercent
)

// Parser converts ERG/MRC course files.
type Parser struct{}

// NewParser creates an ERG/MRC parser.
func NewParser() *Parser {
	return &Parser{}
}

// Supports reports whether the filename looks like an ERG or MRC course.
func (p *Parser) Supports(filename string) bool {
	return ingest.HasExtension(filename, ".erg", ".mrc")
}

// Parse reads the course header and vertex list and segments the
// piecewise-linear power profile at each vertical step.
func (p *Parser) Parse(filename string, data []byte) (*models.ParsedWorkout, error) {
	header, vertices, units, err := scan(data)
	if err != nil {
		return nil, err
	}
	if len(vertices) < 2 {
		return nil, fmt.Errorf("%w: course needs at least 2 data points, got %d",
			ingest.ErrInvalidInput, len(vertices))
	}

	// Format detection: explicit units marker wins, then extension,
	// then the value-range heuristic (percent courses stay under 200).
	if units == unitsUnknown {
		switch {
		case ingest.HasExtension(filename, ".erg"):
			units = unitsWatts
		case ingest.HasExtension(filename, ".mrc"):
			units = unitsPercent
		case maxValue(vertices) <= 200:
			units = unitsPercent
		default:
			units = unitsWatts
		}
	}

	// Some exporters start the course at a nonzero minute; shift the
	// whole timeline so the first vertex maps to second 0.
	if base := vertices[0].minutes; base != 0 {
		for i := range vertices {
			vertices[i].minutes -= base
		}
	}

	ftp := 0
	if v, ok := header["FTP"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			ftp = int(math.Round(f))
		}
	}

	result := &models.ParsedWorkout{
		Name:         header["DESCRIPTION"],
		Sport:        models.SportBike,
		SourceFormat: models.FormatERG,
	}
	if units == unitsPercent {
		result.SourceFormat = models.FormatMRC
	} else {
		result.FTP = ftp
	}
	if result.Name == "" {
		base := filepath.Base(filename)
		result.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	result.Segments = merge(segment(vertices, units, ftp))
	if len(result.Segments) == 0 {
		return nil, fmt.Errorf("%w: course data defines no segments", ingest.ErrInvalidInput)
	}
	result.TotalDuration = result.Segments[len(result.Segments)-1].EndTime
	return result, nil
}

// scan splits the file into header key/values, data vertices, and the
// declared units marker.
func scan(data []byte) (map[string]string, []vertex, courseUnits, error) {
	header := map[string]string{}
	var vertices []vertex
	units := unitsUnknown

	const (
		sectionNone = iota
		sectionHeader
		sectionData
	)
	section := sectionNone

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.EqualFold(line, "[COURSE HEADER]"):
			section = sectionHeader
			continue
		case strings.EqualFold(line, "[END COURSE HEADER]"):
			section = sectionNone
			continue
		case strings.EqualFold(line, "[COURSE DATA]"):
			section = sectionData
			continue
		case strings.EqualFold(line, "[END COURSE DATA]"):
			section = sectionNone
			continue
		}

		switch section {
		case sectionHeader:
			fields := strings.Fields(strings.ToUpper(line))
			if len(fields) == 2 && fields[0] == "MINUTES" {
				if fields[1] == "WATTS" {
					units = unitsWatts
				} else if fields[1] == "PERCENT" {
					units = unitsPercent
				}
				continue
			}
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				return nil, nil, units, fmt.Errorf("%w: malformed header line %q",
					ingest.ErrInvalidInput, line)
			}
			header[strings.ToUpper(strings.TrimSpace(key))] = strings.TrimSpace(value)

		case sectionData:
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return nil, nil, units, fmt.Errorf("%w: malformed course data line %q",
					ingest.ErrInvalidInput, line)
			}
			minutes, err1 := strconv.ParseFloat(fields[0], 64)
			value, err2 := strconv.ParseFloat(fields[1], 64)
			if err1 != nil || err2 != nil {
				return nil, nil, units, fmt.Errorf("%w: malformed course data line %q",
					ingest.ErrInvalidInput, line)
			}
			vertices = append(vertices, vertex{minutes: minutes, value: value})
		}
	}
	return header, vertices, units, scanner.Err()
}

// segment walks the vertex list, starting a new segment at each
// vertical step (two vertices with equal time) and otherwise extending
// the current one. The band comes from the segment's endpoint values.
func segment(vertices []vertex, units courseUnits, ftp int) []models.Segment {
	var out []models.Segment
	start := 0
	flush := func(end int) {
		vs, ve := vertices[start], vertices[end]
		startSec := int(math.Round(vs.minutes * 60))
		endSec := int(math.Round(ve.minutes * 60))
		if endSec <= startSec {
			return
		}
		lo, hi := vs.value, ve.value
		if lo > hi {
			lo, hi = hi, lo
		}
		pctLo := toPercent(lo, units, ftp)
		pctHi := toPercent(hi, units, ftp)
		mid := (pctLo + pctHi) / 2

		isRamp := math.Abs(ve.value-vs.value) > rampThreshold
		name := models.ZoneName(mid)
		if isRamp {
			if mid < models.RestThreshold {
				name = "Warm Up"
			} else {
				name = "Ramp"
			}
		}
		out = append(out, models.Segment{
			StartTime:      startSec,
			EndTime:        endSec,
			Duration:       endSec - startSec,
			PowerMin:       pctLo,
			PowerMax:       pctHi,
			IntensityClass: models.ClassForPower(mid),
			Name:           name,
		})
	}

	for i := 0; i < len(vertices)-1; i++ {
		if vertices[i].minutes == vertices[i+1].minutes {
			flush(i)
			start = i + 1
		}
	}
	flush(len(vertices) - 1)
	return out
}

// merge coalesces adjacent segments with identical bands and touching
// time ranges, so redundant vertices don't fragment the timeline. The
// pass is idempotent: running it twice changes nothing.
func merge(segments []models.Segment) []models.Segment {
	var out []models.Segment
	for _, s := range segments {
		if n := len(out); n > 0 {
			prev := &out[n-1]
			if prev.EndTime == s.StartTime && prev.PowerMin == s.PowerMin && prev.PowerMax == s.PowerMax {
				prev.EndTime = s.EndTime
				prev.Duration = prev.EndTime - prev.StartTime
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// toPercent converts a raw course value to integer percent of FTP.
// Percent values pass through; watt values divide by FTP, falling back
// to the 200 W baseline when the course declared none.
func toPercent(value float64, units courseUnits, ftp int) int {
	if units == unitsPercent {
		return int(math.Round(value))
	}
	if ftp <= 0 {
		ftp = models.DefaultFTP
	}
	return int(math.Round(value / float64(ftp) * 100))
}

func maxValue(vertices []vertex) float64 {
	max := 0.0
	for _, v := range vertices {
		if v.value > max {
			max = v.value
		}
	}
	return max
}
