package checkins

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/raceplan/internal/telemetry/tracing"
)

// SQLiteRepo mirrors Repo over the local sqlite store.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{
		db: db,
	}
}

func (r *SQLiteRepo) Upsert(ctx context.Context, checkIn CheckIn) (_ *CheckIn, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sqliterepo.checkins.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", checkIn.Date))

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO checkin (`+checkinColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (date) DO UPDATE SET
				weight_kg = excluded.weight_kg,
				sleep_hours = excluded.sleep_hours,
				steps = excluded.steps,
				energy_1_10 = excluded.energy_1_10,
				pain_0_10 = excluded.pain_0_10,
				pain_location = excluded.pain_location,
				notes = excluded.notes,
				updated_at = excluded.updated_at;`,
		checkIn.ID, checkIn.Date, checkIn.WeightKg, checkIn.SleepHours, checkIn.Steps,
		checkIn.Energy, checkIn.Pain, checkIn.PainLocation, checkIn.Notes,
		checkIn.CreatedAt, checkIn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return r.GetByDate(ctx, checkIn.Date)
}

func (r *SQLiteRepo) CreateMany(ctx context.Context, checkIns []CheckIn) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sqliterepo.checkins.createMany")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("count", len(checkIns)))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, checkIn := range checkIns {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO checkin (`+checkinColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			checkIn.ID, checkIn.Date, checkIn.WeightKg, checkIn.SleepHours, checkIn.Steps,
			checkIn.Energy, checkIn.Pain, checkIn.PainLocation, checkIn.Notes,
			checkIn.CreatedAt, checkIn.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert check-in for %s: %w", checkIn.Date, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepo) GetAll(ctx context.Context) (_ []CheckIn, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sqliterepo.checkins.getAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+checkinColumns+` FROM checkin ORDER BY date DESC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return sqlRows2checkins(rows)
}

func (r *SQLiteRepo) GetByDate(ctx context.Context, date string) (_ *CheckIn, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sqliterepo.checkins.getByDate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", date))

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+checkinColumns+` FROM checkin WHERE date = ?;`,
		date,
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	checkIns, err := sqlRows2checkins(rows)
	if err != nil {
		return nil, err
	}
	if len(checkIns) != 1 {
		return nil, ErrCheckInNotFound
	}

	return &checkIns[0], nil
}

func (r *SQLiteRepo) Delete(ctx context.Context, date string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sqliterepo.checkins.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", date))

	res, err := r.db.ExecContext(
		ctx,
		`DELETE FROM checkin WHERE date = ?;`,
		date,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCheckInNotFound
	}
	return nil
}

func (r *SQLiteRepo) DeleteAll(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sqliterepo.checkins.deleteAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM checkin;`); err != nil {
		return err
	}
	return nil
}

func sqlRows2checkins(rows *sql.Rows) ([]CheckIn, error) {
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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if checkIns == nil {
		checkIns = make([]CheckIn, 0)
	}

	return checkIns, nil
}
