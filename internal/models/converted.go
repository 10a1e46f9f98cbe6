package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Environment says where a workout is meant to be ridden.
type Environment string

const (
	EnvIndoor  Environment = "INDOOR"
	EnvOutdoor Environment = "OUTDOOR"
	EnvAny     Environment = "ANY"
)

// Intensity is the coarse planned-intensity bucket derived from IF.
type Intensity string

const (
	IntensityEasy     Intensity = "EASY"
	IntensityModerate Intensity = "MODERATE"
	IntensityHard     Intensity = "HARD"
	IntensityVeryHard Intensity = "VERY_HARD"
)

// Target is a min/max band for one metric of a structure step.
type Target struct {
	MinValue int `json:"min_value"`
	MaxValue int `json:"max_value"`
}

// Step is a single timed block inside the structure tree, carrying
// exactly one power target band and an optional cadence band.
type Step struct {
	Name           string         `json:"name"`
	LengthSeconds  int            `json:"length_seconds"`
	IntensityClass IntensityClass `json:"intensity_class"`
	Power          Target         `json:"power"`
	Cadence        *Target        `json:"cadence,omitempty"`
}

// Repetition wraps steps with a repeat count. Parsers pre-expand
// repeats into the flat segment list, so converted workouts carry
// single-repetition wrappers; the type exists so downstream edit
// features can regroup steps without a schema change.
type Repetition struct {
	Repetitions int    `json:"repetitions"`
	Steps       []Step `json:"steps"`
}

// Structure is the nested step/repetition tree consumed by calendar
// and edit features.
type Structure struct {
	Reps []Repetition `json:"reps"`
}

// ConvertedWorkout is the persistable form of a parsed workout: summary
// metrics, the structure tree, and the original segment list archived
// as RawJSON so the flat-to-nested transformation stays auditable.
type ConvertedWorkout struct {
	ID              uuid.UUID       `json:"id"`
	UserID          int             `json:"user_id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description,omitempty"`
	WorkoutType     SportType       `json:"workout_type"`
	SourceFormat    SourceFormat    `json:"source_format"`
	DurationSeconds int             `json:"duration_seconds"`
	TSSPlanned      int             `json:"tss_planned"`
	IFPlanned       float64         `json:"if_planned"`
	Environment     Environment     `json:"environment"`
	Intensity       Intensity       `json:"intensity"`
	Structure       Structure       `json:"structure"`
	RawJSON         json.RawMessage `json:"raw_json,omitempty"`
	CreatedAt       time.Time       `json:"created_at,omitempty"`
}
