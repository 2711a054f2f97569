package workouts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/raceplan/internal/telemetry/tracing"

	"github.com/google/uuid"
)

// SQLiteRepo is the local fallback store, used when no postgres
// backend is configured. Same contract as Repo.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{
		db: db,
	}
}

func (r *SQLiteRepo) Create(ctx context.Context, workout WorkoutDay) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sqlite.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tagsJson, err := json.Marshal(workout.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO workout_day (`+workoutColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		workout.ID, workout.Date, workout.Title, workout.Details, workout.Phase, workout.Week, tagsJson,
		workout.PlannedDistanceKm, workout.PlannedDurationMin,
		workout.ActualDistanceKm, workout.ActualDurationMin,
		workout.Intensity, workout.Status, workout.CompletedAt, workout.MovedFromDate,
		workout.Notes, workout.ActivityType, workout.CreatedAt, workout.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &workout, nil
}

func (r *SQLiteRepo) CreateMany(ctx context.Context, workouts []WorkoutDay) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sqlite.createMany")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, workout := range workouts {
		tagsJson, err := json.Marshal(workout.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO workout_day (`+workoutColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			workout.ID, workout.Date, workout.Title, workout.Details, workout.Phase, workout.Week, tagsJson,
			workout.PlannedDistanceKm, workout.PlannedDurationMin,
			workout.ActualDistanceKm, workout.ActualDurationMin,
			workout.Intensity, workout.Status, workout.CompletedAt, workout.MovedFromDate,
			workout.Notes, workout.ActivityType, workout.CreatedAt, workout.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert workout for %s: %w", workout.Date, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepo) Get(ctx context.Context, id string) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sqlite.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+workoutColumns+` FROM workout_day WHERE id = ?;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts, err := sqlRows2workouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workouts) != 1 {
		return nil, ErrWorkoutNotFound
	}

	return &workouts[0], nil
}

func (r *SQLiteRepo) GetAll(ctx context.Context) (_ []WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sqlite.getAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+workoutColumns+` FROM workout_day ORDER BY date ASC, created_at ASC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return sqlRows2workouts(rows)
}

func (r *SQLiteRepo) GetNonRestByDate(ctx context.Context, date string) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sqlite.getNonRestByDate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+workoutColumns+` FROM workout_day WHERE date = ? AND intensity != ? LIMIT 1;`,
		date, IntensityRest,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts, err := sqlRows2workouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, ErrWorkoutNotFound
	}

	return &workouts[0], nil
}

func (r *SQLiteRepo) Update(ctx context.Context, workout *WorkoutDay) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sqlite.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tagsJson, err := json.Marshal(workout.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	res, err := r.db.ExecContext(
		ctx,
		`UPDATE workout_day SET
			date = ?, title = ?, details = ?, phase = ?, week = ?, tags = ?,
			planned_distance_km = ?, planned_duration_min = ?,
			actual_distance_km = ?, actual_duration_min = ?,
			intensity = ?, status = ?, completed_at = ?, moved_from_date = ?,
			notes = ?, activity_type = ?, updated_at = ?
		WHERE id = ?;`,
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

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}

func (r *SQLiteRepo) Move(ctx context.Context, id, newDate, oldDate string) (_ *WorkoutDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sqlite.move")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var priorStatus Status
	err = tx.QueryRowContext(ctx, `SELECT status FROM workout_day WHERE id = ?;`, id).Scan(&priorStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prior status: %w", err)
	}

	// re-check the occupied-date invariant, client state can be stale
	var occupiedBy string
	err = tx.QueryRowContext(
		ctx,
		`SELECT id FROM workout_day WHERE date = ? AND intensity != ? AND id != ? LIMIT 1;`,
		newDate, IntensityRest, id,
	).Scan(&occupiedBy)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDateOccupied, newDate)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check occupied date: %w", err)
	}

	// a rest placeholder on the target date is superseded by the real workout
	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM workout_day WHERE date = ? AND intensity = ?;`,
		newDate, IntensityRest,
	); err != nil {
		return nil, fmt.Errorf("remove rest placeholder: %w", err)
	}

	now := time.Now()
	res, err := tx.ExecContext(
		ctx,
		`UPDATE workout_day SET date = ?, moved_from_date = ?, status = ?, updated_at = ? WHERE id = ?;`,
		newDate, oldDate, StatusRescheduled, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update workout: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrWorkoutNotFound
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO workout_history
			(id, workout_id, action, from_date, to_date, from_status, to_status, details, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		uuid.NewString(), id, HistoryActionMoved, oldDate, newDate, priorStatus, StatusRescheduled, nil, now,
	); err != nil {
		return nil, fmt.Errorf("insert history entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return r.Get(ctx, id)
}

func (r *SQLiteRepo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sqlite.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	res, err := r.db.ExecContext(ctx, `DELETE FROM workout_day WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *SQLiteRepo) DeleteAll(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sqlite.deleteAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.ExecContext(ctx, `DELETE FROM workout_day;`)
	return err
}

func (r *SQLiteRepo) Count(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sqlite.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workout_day;`).Scan(&count); err != nil {
		return -1, err
	}
	return count, nil
}

func (r *SQLiteRepo) AddHistory(ctx context.Context, entry HistoryEntry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sqlite.addHistory")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO workout_history
			(id, workout_id, action, from_date, to_date, from_status, to_status, details, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		entry.ID, entry.WorkoutID, entry.Action, entry.FromDate, entry.ToDate,
		entry.FromStatus, entry.ToStatus, entry.Details, entry.CreatedAt,
	)
	return err
}

func (r *SQLiteRepo) ListHistory(ctx context.Context, limit int) (_ []HistoryEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sqlite.listHistory")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, workout_id, action, from_date, to_date, from_status, to_status, details, created_at
			FROM workout_history ORDER BY created_at DESC LIMIT ?;`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func sqlRows2workouts(rows *sql.Rows) ([]WorkoutDay, error) {
	workouts := make([]WorkoutDay, 0)
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

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workouts, nil
}
