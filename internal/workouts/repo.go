package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/raceplan/internal/telemetry/tracing"
	"github.com/2beens/raceplan/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrDateOccupied - the move target date already holds a non-rest workout
	ErrDateOccupied = errors.New("date already occupied by another workout")
	ErrPlanNotEmpty = errors.New("workout collection is not empty")
)

const workoutColumns = `
	id, date, title, details, phase, week, tags,
	planned_distance_km, planned_duration_min,
	actual_distance_km, actual_duration_min,
	intensity, status, completed_at, moved_from_date,
	notes, activity_type, created_at, updated_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, workout WorkoutDay) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tagsJson, err := json.Marshal(workout.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO workout_day (`+workoutColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);`,
		workout.ID, workout.Date, workout.Title, workout.Details, workout.Phase, workout.Week, tagsJson,
		workout.PlannedDistanceKm, workout.PlannedDurationMin,
		workout.ActualDistanceKm, workout.ActualDurationMin,
		workout.Intensity, workout.Status, workout.CompletedAt, workout.MovedFromDate,
		workout.Notes, workout.ActivityType, workout.CreatedAt, workout.UpdatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, fmt.Errorf("workout id %s already exists: %w", workout.ID, err)
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("workout.id", workout.ID))
	return &workout, nil
}

func (r *Repo) CreateMany(ctx context.Context, workouts []WorkoutDay) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.createMany")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("count", len(workouts)))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, workout := range workouts {
		tagsJson, err := json.Marshal(workout.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags: %w", err)
		}
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO workout_day (`+workoutColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);`,
			workout.ID, workout.Date, workout.Title, workout.Details, workout.Phase, workout.Week, tagsJson,
			workout.PlannedDistanceKm, workout.PlannedDurationMin,
			workout.ActualDistanceKm, workout.ActualDurationMin,
			workout.Intensity, workout.Status, workout.CompletedAt, workout.MovedFromDate,
			workout.Notes, workout.ActivityType, workout.CreatedAt, workout.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert workout for %s: %w", workout.Date, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *Repo) Get(ctx context.Context, id string) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+workoutColumns+` FROM workout_day WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	workouts, err := rows2workouts(rows)
	if err != nil {
		return nil, err
	}

	if len(workouts) != 1 {
		return nil, ErrWorkoutNotFound
	}

	return &workouts[0], nil
}

// GetAll returns all workout days, ordered by date ascending.
func (r *Repo) GetAll(ctx context.Context) (_ []WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+workoutColumns+` FROM workout_day ORDER BY date ASC, created_at ASC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return rows2workouts(rows)
}

// GetNonRestByDate returns the non-rest workout occupying the given date, if any.
func (r *Repo) GetNonRestByDate(ctx context.Context, date string) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getNonRestByDate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", date))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+workoutColumns+` FROM workout_day WHERE date = $1 AND intensity != $2 LIMIT 1;`,
		date, IntensityRest,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	workouts, err := rows2workouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, ErrWorkoutNotFound
	}

	return &workouts[0], nil
}

func (r *Repo) Update(ctx context.Context, workout *WorkoutDay) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", workout.ID))

	tagsJson, err := json.Marshal(workout.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_day SET
			date = $1, title = $2, details = $3, phase = $4, week = $5, tags = $6,
			planned_distance_km = $7, planned_duration_min = $8,
			actual_distance_km = $9, actual_duration_min = $10,
			intensity = $11, status = $12, completed_at = $13, moved_from_date = $14,
			notes = $15, activity_type = $16, updated_at = $17
		WHERE id = $18;`,
		workout.Date, workout.Title, workout.Details, workout.Phase, workout.Week, tagsJson,
		workout.PlannedDistanceKm, workout.PlannedDurationMin,
		workout.ActualDistanceKm, workout.ActualDurationMin,
		workout.Intensity, workout.Status, workout.CompletedAt, workout.MovedFromDate,
		workout.Notes, workout.ActivityType, workout.UpdatedAt,
		workout.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}

// Move reschedules a workout in one transaction: re-checks the occupied-date
// invariant server-side, removes a rest placeholder from the target date,
// and records a history entry. The status is forced to rescheduled.
func (r *Repo) Move(ctx context.Context, id, newDate, oldDate string) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.move")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))
	span.SetAttributes(attribute.String("new_date", newDate))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var priorStatus Status
	err = tx.QueryRow(ctx, `SELECT status FROM workout_day WHERE id = $1;`, id).Scan(&priorStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prior status: %w", err)
	}

	// re-check the occupied-date invariant, client state can be stale
	var occupiedBy string
	err = tx.QueryRow(
		ctx,
		`SELECT id FROM workout_day WHERE date = $1 AND intensity != $2 AND id != $3 LIMIT 1;`,
		newDate, IntensityRest, id,
	).Scan(&occupiedBy)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDateOccupied, newDate)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check occupied date: %w", err)
	}

	// a rest placeholder on the target date is superseded by the real workout
	if _, err := tx.Exec(
		ctx,
		`DELETE FROM workout_day WHERE date = $1 AND intensity = $2;`,
		newDate, IntensityRest,
	); err != nil {
		return nil, fmt.Errorf("remove rest placeholder: %w", err)
	}

	now := time.Now()
	tag, err := tx.Exec(
		ctx,
		`UPDATE workout_day SET date = $1, moved_from_date = $2, status = $3, updated_at = $4 WHERE id = $5;`,
		newDate, oldDate, StatusRescheduled, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrWorkoutNotFound
	}

	if _, err := tx.Exec(
		ctx,
		`INSERT INTO workout_history
			(id, workout_id, action, from_date, to_date, from_status, to_status, details, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		uuid.NewString(), id, HistoryActionMoved, oldDate, newDate, priorStatus, StatusRescheduled, nil, now,
	); err != nil {
		return nil, fmt.Errorf("insert history entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return r.Get(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workout_day WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *Repo) DeleteAll(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := r.db.Exec(ctx, `DELETE FROM workout_day;`); err != nil {
		return err
	}
	return nil
}

func (r *Repo) Count(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM workout_day;`).Scan(&count); err != nil {
		return -1, err
	}
	return count, nil
}

func (r *Repo) AddHistory(ctx context.Context, entry HistoryEntry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addHistory")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO workout_history
			(id, workout_id, action, from_date, to_date, from_status, to_status, details, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		entry.ID, entry.WorkoutID, entry.Action, entry.FromDate, entry.ToDate,
		entry.FromStatus, entry.ToStatus, entry.Details, entry.CreatedAt,
	)
	return err
}

// ListHistory returns the most recent history entries, newest first.
func (r *Repo) ListHistory(ctx context.Context, limit int) (_ []HistoryEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listHistory")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, workout_id, action, from_date, to_date, from_status, to_status, details, created_at
			FROM workout_history ORDER BY created_at DESC LIMIT $1;`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.WorkoutID, &e.Action, &e.FromDate, &e.ToDate,
			&e.FromStatus, &e.ToStatus, &e.Details, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func rows2workouts(rows pgx.Rows) ([]WorkoutDay, error) {
	var workouts []WorkoutDay
	for rows.Next() {
		var w WorkoutDay
		var tagsBytes []byte
		if err := rows.Scan(
			&w.ID, &w.Date, &w.Title, &w.Details, &w.Phase, &w.Week, &tagsBytes,
			&w.PlannedDistanceKm, &w.PlannedDurationMin,
			&w.ActualDistanceKm, &w.ActualDurationMin,
			&w.Intensity, &w.Status, &w.CompletedAt, &w.MovedFromDate,
			&w.Notes, &w.ActivityType, &w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, err
		}

		if len(tagsBytes) > 0 {
			if err := json.Unmarshal(tagsBytes, &w.Tags); err != nil {
				return nil, fmt.Errorf("unmarshal tags for workout %s: %w", w.ID, err)
			}
		}
		if w.Tags == nil {
			w.Tags = []string{}
		}

		workouts = append(workouts, w)
	}

	if workouts == nil {
		workouts = make([]WorkoutDay, 0)
	}

	return workouts, nil
}
