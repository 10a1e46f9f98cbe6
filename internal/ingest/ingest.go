// Package ingest routes uploaded workout files to the parser that
// understands their format and turns the result into a stored workout.
package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holographix/ridepro/internal/models"
)

// ErrInvalidInput marks fatal per-file parse failures: unsupported
// extension, missing workout element, too few course points, malformed
// header or data lines. Callers match it with errors.Is; a failed file
// never affects any other file in a batch.
var ErrInvalidInput = errors.New("invalid input")

// Parser converts one file format into the normalized workout shape.
type Parser interface {
	// Supports reports whether this parser handles the given filename.
	Supports(filename string) bool
	// Parse converts raw file content into a ParsedWorkout. Parsing is
	// pure and deterministic; failures wrap ErrInvalidInput.
	Parse(filename string, data []byte) (*models.ParsedWorkout, error)
}

// Registry is an ordered list of parsers. The first parser whose
// Supports predicate matches the filename wins.
type Registry struct {
	parsers []Parser
}

// NewRegistry creates a registry with the given parsers, tried in order.
func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// Parse routes the file to the first matching parser.
func (r *Registry) Parse(filename string, data []byte) (*models.ParsedWorkout, error) {
	for _, p := range r.parsers {
		if p.Supports(filename) {
			return p.Parse(filename, data)
		}
	}
	return nil, fmt.Errorf("%w: unsupported format %q (supported: %s)",
		ErrInvalidInput, filename, strings.Join(SupportedExtensions, ", "))
}

// Supports reports whether any registered parser handles the filename.
func (r *Registry) Supports(filename string) bool {
	for _, p := range r.parsers {
		if p.Supports(filename) {
			return true
		}
	}
	return false
}

// SupportedExtensions lists the file extensions the service accepts.
var SupportedExtensions = []string{".zwo", ".erg", ".mrc", ".fit"}

// HasExtension reports whether filename ends in one of the given
// extensions, case-insensitively. Shared by parser Supports methods.
func HasExtension(filename string, exts ...string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
