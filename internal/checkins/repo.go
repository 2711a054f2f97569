package checkins

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/raceplan/internal/telemetry/tracing"
)

const checkinColumns = `
	id, date, weight_kg, sleep_hours, steps,
	energy_1_10, pain_0_10, pain_location, notes,
	created_at, updated_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Upsert inserts the check-in, or overwrites the measured values when the
// date already holds one. The original id and created_at survive an overwrite.
func (r *Repo) Upsert(ctx context.Context, checkIn CheckIn) (_ *CheckIn, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.checkins.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", checkIn.Date))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO checkin (`+checkinColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (date) DO UPDATE SET
				weight_kg = EXCLUDED.weight_kg,
				sleep_hours = EXCLUDED.sleep_hours,
				steps = EXCLUDED.steps,
				energy_1_10 = EXCLUDED.energy_1_10,
				pain_0_10 = EXCLUDED.pain_0_10,
				pain_location = EXCLUDED.pain_location,
				notes = EXCLUDED.notes,
				updated_at = EXCLUDED.updated_at;`,
		checkIn.ID, checkIn.Date, checkIn.WeightKg, checkIn.SleepHours, checkIn.Steps,
		checkIn.Energy, checkIn.Pain, checkIn.PainLocation, checkIn.Notes,
		checkIn.CreatedAt, checkIn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return r.GetByDate(ctx, checkIn.Date)
}

func (r *Repo) CreateMany(ctx context.Context, checkIns []CheckIn) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.checkins.createMany")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("count", len(checkIns)))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, checkIn := range checkIns {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO checkin (`+checkinColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
			checkIn.ID, checkIn.Date, checkIn.WeightKg, checkIn.SleepHours, checkIn.Steps,
			checkIn.Energy, checkIn.Pain, checkIn.PainLocation, checkIn.Notes,
			checkIn.CreatedAt, checkIn.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert check-in for %s: %w", checkIn.Date, err)
		}
	}

	return tx.Commit(ctx)
}

// GetAll returns all check-ins, newest date first.
func (r *Repo) GetAll(ctx context.Context) (_ []CheckIn, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.checkins.getAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+checkinColumns+` FROM checkin ORDER BY date DESC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return rows2checkins(rows)
}

func (r *Repo) GetByDate(ctx context.Context, date string) (_ *CheckIn, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.checkins.getByDate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", date))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+checkinColumns+` FROM checkin WHERE date = $1;`,
		date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	checkIns, err := rows2checkins(rows)
	if err != nil {
		return nil, err
	}
	if len(checkIns) != 1 {
		return nil, ErrCheckInNotFound
	}

	return &checkIns[0], nil
}

func (r *Repo) Delete(ctx context.Context, date string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.checkins.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", date))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM checkin WHERE date = $1;`,
		date,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCheckInNotFound
	}
	return nil
}

func (r *Repo) DeleteAll(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.checkins.deleteAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := r.db.Exec(ctx, `DELETE FROM checkin;`); err != nil {
		return err
	}
	return nil
}

func rows2checkins(rows pgx.Rows) ([]CheckIn, error) {
	var checkIns []CheckIn
	for rows.Next() {
		var c CheckIn
		if err := rows.Scan(
			&c.ID, &c.Date, &c.WeightKg, &c.SleepHours, &c.Steps,
			&c.Energy, &c.Pain, &c.PainLocation, &c.Notes,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		checkIns = append(checkIns, c)
	}

	if checkIns == nil {
		checkIns = make([]CheckIn, 0)
	}

	return checkIns, nil
}
