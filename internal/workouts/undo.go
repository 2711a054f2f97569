package workouts

import (
	"time"
)

const undoStackMaxSize = 10

type UndoActionKind string

const (
	UndoActionMove         UndoActionKind = "move"
	UndoActionStatusChange UndoActionKind = "status_change"
)

// UndoAction holds the fields of a workout as they were right before
// a reversible mutation, so undo can put them back exactly.
type UndoAction struct {
	Kind      UndoActionKind `json:"kind"`
	WorkoutID string         `json:"workout_id"`
	Timestamp time.Time      `json:"timestamp"`

	// prior values for a move
	PrevDate          string  `json:"prev_date,omitempty"`
	PrevMovedFromDate *string `json:"prev_moved_from_date,omitempty"`

	// prior values for a status change; PrevStatus is set for moves too,
	// a move forces the status to rescheduled
	PrevStatus      Status     `json:"prev_status"`
	PrevCompletedAt *time.Time `json:"prev_completed_at,omitempty"`
}

// undoStack is a bounded stack of reversible mutations, newest first.
// Oldest entries get evicted beyond the max size. Not safe for concurrent
// use by itself - the manager serializes access.
type undoStack struct {
	actions []UndoAction
}

func (s *undoStack) push(action UndoAction) {
	s.actions = append([]UndoAction{action}, s.actions...)
	if len(s.actions) > undoStackMaxSize {
		s.actions = s.actions[:undoStackMaxSize]
	}
}

func (s *undoStack) pop() (UndoAction, bool) {
	if len(s.actions) == 0 {
		return UndoAction{}, false
	}
	action := s.actions[0]
	s.actions = s.actions[1:]
	return action, true
}

func (s *undoStack) size() int {
	return len(s.actions)
}
