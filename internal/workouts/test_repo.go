package workouts

import (
	"context"
	"fmt"
	"sort"
)

// TestRepo is an in-memory repo used in tests. It mirrors the store
// semantics of the real repos, including the occupied-date check and the
// rest placeholder cleanup on move. Error fields inject failures.
type TestRepo struct {
	workoutDays map[string]*WorkoutDay
	history     []HistoryEntry

	CreateErr error
	UpdateErr error
	MoveErr   error
}

func NewTestRepo() *TestRepo {
	return &TestRepo{
		workoutDays: make(map[string]*WorkoutDay),
	}
}

func (r *TestRepo) Create(_ context.Context, workout WorkoutDay) (*WorkoutDay, error) {
	if r.CreateErr != nil {
		return nil, r.CreateErr
	}
	w := workout
	r.workoutDays[w.ID] = &w
	return &w, nil
}

func (r *TestRepo) CreateMany(ctx context.Context, workouts []WorkoutDay) error {
	for _, w := range workouts {
		if _, err := r.Create(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

func (r *TestRepo) Get(_ context.Context, id string) (*WorkoutDay, error) {
	w, ok := r.workoutDays[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}
	workout := *w
	return &workout, nil
}

func (r *TestRepo) GetAll(_ context.Context) ([]WorkoutDay, error) {
	all := make([]WorkoutDay, 0, len(r.workoutDays))
	for _, w := range r.workoutDays {
		all = append(all, *w)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Date != all[j].Date {
			return all[i].Date < all[j].Date
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all, nil
}

func (r *TestRepo) GetNonRestByDate(_ context.Context, date string) (*WorkoutDay, error) {
	for _, w := range r.workoutDays {
		if w.Date == date && !w.IsRest() {
			workout := *w
			return &workout, nil
		}
	}
	return nil, ErrWorkoutNotFound
}

func (r *TestRepo) Update(_ context.Context, workout *WorkoutDay) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	if _, ok := r.workoutDays[workout.ID]; !ok {
		return ErrWorkoutNotFound
	}
	w := *workout
	r.workoutDays[w.ID] = &w
	return nil
}

func (r *TestRepo) Move(ctx context.Context, id, newDate, oldDate string) (*WorkoutDay, error) {
	if r.MoveErr != nil {
		return nil, r.MoveErr
	}

	workout, ok := r.workoutDays[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}

	for _, w := range r.workoutDays {
		if w.ID != id && w.Date == newDate && !w.IsRest() {
			return nil, fmt.Errorf("%w: %s", ErrDateOccupied, newDate)
		}
	}

	// a rest placeholder on the target date gets superseded
	for wid, w := range r.workoutDays {
		if wid != id && w.Date == newDate && w.IsRest() {
			delete(r.workoutDays, wid)
		}
	}

	priorStatus := workout.Status
	workout.MovedFromDate = &oldDate
	workout.Date = newDate
	workout.Status = StatusRescheduled

	r.history = append(r.history, HistoryEntry{
		WorkoutID:  id,
		Action:     HistoryActionMoved,
		FromDate:   &oldDate,
		ToDate:     &newDate,
		FromStatus: &priorStatus,
	})

	moved := *workout
	return &moved, nil
}

func (r *TestRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.workoutDays[id]; !ok {
		return ErrWorkoutNotFound
	}
	delete(r.workoutDays, id)
	return nil
}

func (r *TestRepo) DeleteAll(_ context.Context) error {
	r.workoutDays = make(map[string]*WorkoutDay)
	return nil
}

func (r *TestRepo) Count(_ context.Context) (int, error) {
	return len(r.workoutDays), nil
}

func (r *TestRepo) AddHistory(_ context.Context, entry HistoryEntry) error {
	r.history = append(r.history, entry)
	return nil
}

func (r *TestRepo) ListHistory(_ context.Context, limit int) ([]HistoryEntry, error) {
	entries := make([]HistoryEntry, len(r.history))
	copy(entries, r.history)
	// newest first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
