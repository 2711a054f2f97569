package workouts

import (
	"time"
)

// DateLayout is the calendar date format used as the scheduling key.
// Dates are kept as plain YYYY-MM-DD strings so they compare and sort
// lexicographically, the same way they are stored and sent on the wire.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusPlanned     Status = "planned"
	StatusCompleted   Status = "completed"
	StatusSkipped     Status = "skipped"
	StatusRescheduled Status = "rescheduled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusCompleted, StatusSkipped, StatusRescheduled:
		return true
	}
	return false
}

type Intensity string

const (
	IntensityEasy     Intensity = "E"
	IntensitySteady   Intensity = "S"
	IntensityTempo    Intensity = "T"
	IntensityInterval Intensity = "I"
	IntensityRest     Intensity = "Rest"
	IntensityStrength Intensity = "Strength"
)

func (i Intensity) Valid() bool {
	switch i {
	case IntensityEasy, IntensitySteady, IntensityTempo, IntensityInterval, IntensityRest, IntensityStrength:
		return true
	}
	return false
}

// WorkoutDay is a single scheduled or ad-hoc activity. A Rest entry is a
// placeholder day: excluded from all statistics and from the occupied-date
// invariant, and silently superseded when a real workout is moved onto its date.
type WorkoutDay struct {
	ID                 string     `json:"id"`
	Date               string     `json:"date"`
	Title              string     `json:"title"`
	Details            string     `json:"details"`
	Phase              string     `json:"phase"`
	Week               int        `json:"week"`
	Tags               []string   `json:"tags"`
	PlannedDistanceKm  *float64   `json:"planned_distance_km"`
	PlannedDurationMin *int       `json:"planned_duration_min"`
	ActualDistanceKm   *float64   `json:"actual_distance_km"`
	ActualDurationMin  *int       `json:"actual_duration_min"`
	Intensity          Intensity  `json:"intensity"`
	Status             Status     `json:"status"`
	CompletedAt        *time.Time `json:"completed_at"`
	MovedFromDate      *string    `json:"moved_from_date"`
	Notes              *string    `json:"notes"`
	ActivityType       string     `json:"activity_type,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (w *WorkoutDay) IsRest() bool {
	return w.Intensity == IntensityRest
}

// WorkoutDayInput carries the user (or plan generator) provided fields
// for creating a workout day; id and timestamps are assigned by the manager.
type WorkoutDayInput struct {
	Date               string    `json:"date"`
	Title              string    `json:"title"`
	Details            string    `json:"details"`
	Phase              string    `json:"phase"`
	Week               int       `json:"week"`
	Tags               []string  `json:"tags"`
	PlannedDistanceKm  *float64  `json:"planned_distance_km"`
	PlannedDurationMin *int      `json:"planned_duration_min"`
	ActualDistanceKm   *float64  `json:"actual_distance_km"`
	ActualDurationMin  *int      `json:"actual_duration_min"`
	Intensity          Intensity `json:"intensity"`
	Status             Status    `json:"status"`
	Notes              *string   `json:"notes"`
	ActivityType       string    `json:"activity_type,omitempty"`
}

// WorkoutUpdate is a partial edit: nil fields stay untouched.
type WorkoutUpdate struct {
	Title              *string    `json:"title"`
	Details            *string    `json:"details"`
	Date               *string    `json:"date"`
	Tags               []string   `json:"tags"`
	PlannedDistanceKm  *float64   `json:"planned_distance_km"`
	PlannedDurationMin *int       `json:"planned_duration_min"`
	ActualDistanceKm   *float64   `json:"actual_distance_km"`
	ActualDurationMin  *int       `json:"actual_duration_min"`
	Intensity          *Intensity `json:"intensity"`
	Notes              *string    `json:"notes"`
	ActivityType       *string    `json:"activity_type"`
}

type HistoryAction string

const (
	HistoryActionMoved         HistoryAction = "moved"
	HistoryActionStatusChanged HistoryAction = "status_changed"
	HistoryActionEdited        HistoryAction = "edited"
)

// HistoryEntry records a single mutation of a workout day, newest first on listing.
type HistoryEntry struct {
	ID         string        `json:"id"`
	WorkoutID  string        `json:"workout_id"`
	Action     HistoryAction `json:"action"`
	FromDate   *string       `json:"from_date"`
	ToDate     *string       `json:"to_date"`
	FromStatus *Status       `json:"from_status"`
	ToStatus   *Status       `json:"to_status"`
	Details    *string       `json:"details"`
	CreatedAt  time.Time     `json:"created_at"`
}

func ValidDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}
