// Package checkins tracks daily wellbeing entries (weight, sleep, energy,
// pain), one per calendar date.
package checkins

import (
	"errors"
	"time"
)

var ErrCheckInNotFound = errors.New("check-in not found")

// CheckIn is a daily self-report, keyed by date: writing to an already
// checked-in date overwrites the measured values.
type CheckIn struct {
	ID           string    `json:"id"`
	Date         string    `json:"date"`
	WeightKg     *float64  `json:"weight_kg"`
	SleepHours   *float64  `json:"sleep_hours"`
	Steps        *int      `json:"steps"`
	Energy       *int      `json:"energy_1_10"`
	Pain         *int      `json:"pain_0_10"`
	PainLocation *string   `json:"pain_location"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CheckInInput struct {
	Date         string   `json:"date"`
	WeightKg     *float64 `json:"weight_kg"`
	SleepHours   *float64 `json:"sleep_hours"`
	Steps        *int     `json:"steps"`
	Energy       *int     `json:"energy_1_10"`
	Pain         *int     `json:"pain_0_10"`
	PainLocation *string  `json:"pain_location"`
	Notes        *string  `json:"notes"`
}

func (input CheckInInput) Validate() error {
	if input.Energy != nil && (*input.Energy < 1 || *input.Energy > 10) {
		return errors.New("energy must be between 1 and 10")
	}
	if input.Pain != nil && (*input.Pain < 0 || *input.Pain > 10) {
		return errors.New("pain must be between 0 and 10")
	}
	return nil
}
