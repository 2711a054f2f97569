package workouts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/raceplan/internal/telemetry/metrics"
	"github.com/2beens/raceplan/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type repo interface {
	Create(ctx context.Context, workout WorkoutDay) (*WorkoutDay, error)
	CreateMany(ctx context.Context, workouts []WorkoutDay) error
	Get(ctx context.Context, id string) (*WorkoutDay, error)
	GetAll(ctx context.Context) ([]WorkoutDay, error)
	GetNonRestByDate(ctx context.Context, date string) (*WorkoutDay, error)
	Update(ctx context.Context, workout *WorkoutDay) error
	Move(ctx context.Context, id, newDate, oldDate string) (*WorkoutDay, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	AddHistory(ctx context.Context, entry HistoryEntry) error
	ListHistory(ctx context.Context, limit int) ([]HistoryEntry, error)
}

// PlanGenerator produces the full plan template for a given start date.
type PlanGenerator func(start time.Time) []WorkoutDayInput

// Manager is the sole mutation authority for the workout collection.
// The repo holds the authoritative state; the mutex serializes mutations
// so undo records always reflect true prior state, and nothing is applied
// unless persistence succeeds.
type Manager struct {
	mutex         sync.Mutex
	repo          repo
	generatePlan  PlanGenerator
	planStartDate time.Time
	undoStack     undoStack
	metrics       *metrics.Manager
}

func NewManager(
	repo repo,
	generatePlan PlanGenerator,
	planStartDate time.Time,
	metricsManager *metrics.Manager,
) *Manager {
	return &Manager{
		repo:          repo,
		generatePlan:  generatePlan,
		planStartDate: planStartDate,
		metrics:       metricsManager,
	}
}

// PlanStartDate is the default anchor date for plan initialization.
func (m *Manager) PlanStartDate() time.Time {
	return m.planStartDate
}

// ListAll returns all workout days, date ascending.
func (m *Manager) ListAll(ctx context.Context) ([]WorkoutDay, error) {
	return m.repo.GetAll(ctx)
}

func (m *Manager) Get(ctx context.Context, id string) (*WorkoutDay, error) {
	return m.repo.Get(ctx, id)
}

func (m *Manager) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	return m.repo.ListHistory(ctx, limit)
}

// InitializePlan generates and persists the full plan template in one batch.
// Rejected when the collection is not empty - a full reset must come first.
func (m *Manager) InitializePlan(ctx context.Context, start time.Time) (_ []WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "manager.workouts.initializePlan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	count, err := m.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count workouts: %w", err)
	}
	if count > 0 {
		return nil, ErrPlanNotEmpty
	}

	inputs := m.generatePlan(start)
	now := time.Now()
	workouts := make([]WorkoutDay, 0, len(inputs))
	for _, input := range inputs {
		workouts = append(workouts, newWorkoutDay(input, now))
	}

	if err := m.repo.CreateMany(ctx, workouts); err != nil {
		return nil, fmt.Errorf("persist plan: %w", err)
	}

	span.SetAttributes(attribute.Int("plan.size", len(workouts)))
	log.Debugf("plan initialized with %d workout days, start %s", len(workouts), start.Format(DateLayout))

	return workouts, nil
}

// Create adds an ad-hoc activity. Multiple activities may share a date via
// this path - only Move enforces the single-non-rest-per-date invariant.
func (m *Manager) Create(ctx context.Context, input WorkoutDayInput) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "manager.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !ValidDate(input.Date) {
		return nil, fmt.Errorf("invalid date: %s", input.Date)
	}
	if !input.Intensity.Valid() {
		return nil, fmt.Errorf("invalid intensity: %s", input.Intensity)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	workout := newWorkoutDay(input, time.Now())
	created, err := m.repo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.CounterWorkoutsCreated.Inc()
	}

	return created, nil
}

// Update merges the partial edit onto the stored workout and persists it.
func (m *Manager) Update(ctx context.Context, id string, update WorkoutUpdate) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "manager.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	if update.Date != nil && !ValidDate(*update.Date) {
		return nil, fmt.Errorf("invalid date: %s", *update.Date)
	}
	if update.Intensity != nil && !update.Intensity.Valid() {
		return nil, fmt.Errorf("invalid intensity: %s", *update.Intensity)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	workout, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(workout, update)
	workout.UpdatedAt = time.Now()

	if err := m.repo.Update(ctx, workout); err != nil {
		return nil, err
	}

	if err := m.repo.AddHistory(ctx, HistoryEntry{
		ID:        uuid.NewString(),
		WorkoutID: workout.ID,
		Action:    HistoryActionEdited,
		CreatedAt: workout.UpdatedAt,
	}); err != nil {
		// the edit itself succeeded, history is best effort
		log.Errorf("add history entry for workout %s edit: %s", workout.ID, err)
	}

	return workout, nil
}

// Move reschedules a workout to a new date. The undo record is pushed
// BEFORE persistence and popped back off when persistence fails, so the
// stack never holds entries for mutations that did not happen.
func (m *Manager) Move(ctx context.Context, id, newDate string) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "manager.workouts.move")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))
	span.SetAttributes(attribute.String("new_date", newDate))

	if !ValidDate(newDate) {
		return nil, fmt.Errorf("invalid date: %s", newDate)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	workout, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if occupant, err := m.repo.GetNonRestByDate(ctx, newDate); err == nil && occupant.ID != id {
		return nil, fmt.Errorf("%w: %s", ErrDateOccupied, newDate)
	} else if err != nil && !errors.Is(err, ErrWorkoutNotFound) {
		return nil, fmt.Errorf("check target date: %w", err)
	}

	m.undoStack.push(UndoAction{
		Kind:              UndoActionMove,
		WorkoutID:         id,
		Timestamp:         time.Now(),
		PrevDate:          workout.Date,
		PrevMovedFromDate: workout.MovedFromDate,
		PrevStatus:        workout.Status,
		PrevCompletedAt:   workout.CompletedAt,
	})

	moved, err := m.repo.Move(ctx, id, newDate, workout.Date)
	if err != nil {
		// no orphaned undo entries for failed operations
		m.undoStack.pop()
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.CounterWorkoutsMoved.Inc()
	}
	log.Debugf("workout %s moved: %s -> %s", id, workout.Date, newDate)

	return moved, nil
}

// MarkStatus transitions the workout's status. Completing sets completed_at;
// leaving completed clears it, a stale completion timestamp on a planned
// workout would mislead the statistics.
func (m *Manager) MarkStatus(ctx context.Context, id string, status Status) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "manager.workouts.markStatus")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))
	span.SetAttributes(attribute.String("status", string(status)))

	if !status.Valid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	workout, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	m.undoStack.push(UndoAction{
		Kind:            UndoActionStatusChange,
		WorkoutID:       id,
		Timestamp:       time.Now(),
		PrevStatus:      workout.Status,
		PrevCompletedAt: workout.CompletedAt,
	})

	priorStatus := workout.Status
	now := time.Now()

	workout.Status = status
	switch {
	case status == StatusCompleted:
		workout.CompletedAt = &now
	case priorStatus == StatusCompleted:
		workout.CompletedAt = nil
	}
	workout.UpdatedAt = now

	if err := m.repo.Update(ctx, workout); err != nil {
		m.undoStack.pop()
		return nil, err
	}

	if err := m.repo.AddHistory(ctx, HistoryEntry{
		ID:         uuid.NewString(),
		WorkoutID:  workout.ID,
		Action:     HistoryActionStatusChanged,
		FromStatus: &priorStatus,
		ToStatus:   &status,
		CreatedAt:  now,
	}); err != nil {
		log.Errorf("add history entry for workout %s status change: %s", workout.ID, err)
	}

	if m.metrics != nil && status == StatusCompleted {
		m.metrics.CounterWorkoutsCompleted.Inc()
	}

	return workout, nil
}

// Delete removes a workout. Not undoable.
func (m *Manager) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "manager.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.repo.Delete(ctx, id)
}

// DeleteAll wipes the whole workout collection (full plan reset).
func (m *Manager) DeleteAll(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "manager.workouts.deleteAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.repo.DeleteAll(ctx); err != nil {
		return err
	}

	// undo records reference workouts that no longer exist
	m.undoStack = undoStack{}
	return nil
}

// Undo pops the most recent reversible mutation and restores its prior
// field values. The record is discarded regardless of the restore outcome,
// there is no redo. An empty stack is a no-op.
func (m *Manager) Undo(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "manager.workouts.undo")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	action, ok := m.undoStack.pop()
	if !ok {
		return nil
	}

	span.SetAttributes(attribute.String("kind", string(action.Kind)))
	span.SetAttributes(attribute.String("workout.id", action.WorkoutID))

	workout, err := m.repo.Get(ctx, action.WorkoutID)
	if err != nil {
		return fmt.Errorf("get workout %s: %w", action.WorkoutID, err)
	}

	switch action.Kind {
	case UndoActionMove:
		workout.Date = action.PrevDate
		workout.MovedFromDate = action.PrevMovedFromDate
		workout.Status = action.PrevStatus
		workout.CompletedAt = action.PrevCompletedAt
	case UndoActionStatusChange:
		workout.Status = action.PrevStatus
		workout.CompletedAt = action.PrevCompletedAt
	default:
		return fmt.Errorf("unknown undo action kind: %s", action.Kind)
	}
	workout.UpdatedAt = time.Now()

	if err := m.repo.Update(ctx, workout); err != nil {
		return fmt.Errorf("restore workout %s: %w", action.WorkoutID, err)
	}

	if m.metrics != nil {
		m.metrics.CounterUndoneActions.Inc()
	}
	log.Debugf("undone %s for workout %s", action.Kind, action.WorkoutID)

	return nil
}

// UndoStackSize reports how many reversible mutations are held.
func (m *Manager) UndoStackSize() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.undoStack.size()
}

func newWorkoutDay(input WorkoutDayInput, now time.Time) WorkoutDay {
	status := input.Status
	if status == "" {
		status = StatusPlanned
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	return WorkoutDay{
		ID:                 uuid.NewString(),
		Date:               input.Date,
		Title:              input.Title,
		Details:            input.Details,
		Phase:              input.Phase,
		Week:               input.Week,
		Tags:               tags,
		PlannedDistanceKm:  input.PlannedDistanceKm,
		PlannedDurationMin: input.PlannedDurationMin,
		ActualDistanceKm:   input.ActualDistanceKm,
		ActualDurationMin:  input.ActualDurationMin,
		Intensity:          input.Intensity,
		Status:             status,
		Notes:              input.Notes,
		ActivityType:       input.ActivityType,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func applyUpdate(workout *WorkoutDay, update WorkoutUpdate) {
	if update.Title != nil {
		workout.Title = *update.Title
	}
	if update.Details != nil {
		workout.Details = *update.Details
	}
	if update.Date != nil {
		workout.Date = *update.Date
	}
	if update.Tags != nil {
		workout.Tags = update.Tags
	}
	if update.PlannedDistanceKm != nil {
		workout.PlannedDistanceKm = update.PlannedDistanceKm
	}
	if update.PlannedDurationMin != nil {
		workout.PlannedDurationMin = update.PlannedDurationMin
	}
	if update.ActualDistanceKm != nil {
		workout.ActualDistanceKm = update.ActualDistanceKm
	}
	if update.ActualDurationMin != nil {
		workout.ActualDurationMin = update.ActualDurationMin
	}
	if update.Intensity != nil {
		workout.Intensity = *update.Intensity
	}
	if update.Notes != nil {
		workout.Notes = update.Notes
	}
	if update.ActivityType != nil {
		workout.ActivityType = *update.ActivityType
	}
}
