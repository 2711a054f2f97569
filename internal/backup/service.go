// Package backup implements full data export/import (JSON archives) and
// the iCal rendering of the training plan.
package backup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/raceplan/internal/checkins"
	"github.com/2beens/raceplan/internal/telemetry/tracing"
	"github.com/2beens/raceplan/internal/workouts"
)

// historyExportLimit caps how many history entries go into an archive.
const historyExportLimit = 1000

var ErrInvalidArchive = errors.New("invalid archive")

type workoutsStore interface {
	GetAll(ctx context.Context) ([]workouts.WorkoutDay, error)
	CreateMany(ctx context.Context, workoutDays []workouts.WorkoutDay) error
	DeleteAll(ctx context.Context) error
	AddHistory(ctx context.Context, entry workouts.HistoryEntry) error
	ListHistory(ctx context.Context, limit int) ([]workouts.HistoryEntry, error)
}

type checkinsStore interface {
	GetAll(ctx context.Context) ([]checkins.CheckIn, error)
	CreateMany(ctx context.Context, checkIns []checkins.CheckIn) error
	DeleteAll(ctx context.Context) error
}

// Archive is the full-state JSON snapshot written on export and consumed
// on import.
type Archive struct {
	ExportedAt time.Time               `json:"exportedAt"`
	Workouts   []workouts.WorkoutDay   `json:"workouts"`
	CheckIns   []checkins.CheckIn      `json:"checkIns"`
	History    []workouts.HistoryEntry `json:"history"`
}

type Service struct {
	workouts workoutsStore
	checkins checkinsStore
}

func NewService(workoutsStore workoutsStore, checkinsStore checkinsStore) *Service {
	return &Service{
		workouts: workoutsStore,
		checkins: checkinsStore,
	}
}

func (s *Service) Export(ctx context.Context) (_ *Archive, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backup.export")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workoutDays, err := s.workouts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get workouts: %w", err)
	}
	checkIns, err := s.checkins.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get check-ins: %w", err)
	}
	history, err := s.workouts.ListHistory(ctx, historyExportLimit)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	if workoutDays == nil {
		workoutDays = []workouts.WorkoutDay{}
	}
	if checkIns == nil {
		checkIns = []checkins.CheckIn{}
	}
	if history == nil {
		history = []workouts.HistoryEntry{}
	}

	span.SetAttributes(attribute.Int("workouts", len(workoutDays)))
	span.SetAttributes(attribute.Int("checkins", len(checkIns)))

	return &Archive{
		ExportedAt: time.Now(),
		Workouts:   workoutDays,
		CheckIns:   checkIns,
		History:    history,
	}, nil
}

// Import replaces the whole state with the archive content. The archive is
// validated up front - nothing is wiped unless the data can go in.
func (s *Service) Import(ctx context.Context, archive Archive) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backup.import")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workouts", len(archive.Workouts)))
	span.SetAttributes(attribute.Int("checkins", len(archive.CheckIns)))

	if err := validateArchive(archive); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArchive, err)
	}

	if err := s.workouts.DeleteAll(ctx); err != nil {
		return fmt.Errorf("wipe workouts: %w", err)
	}
	if err := s.checkins.DeleteAll(ctx); err != nil {
		return fmt.Errorf("wipe check-ins: %w", err)
	}

	if err := s.workouts.CreateMany(ctx, archive.Workouts); err != nil {
		return fmt.Errorf("import workouts: %w", err)
	}
	if err := s.checkins.CreateMany(ctx, archive.CheckIns); err != nil {
		return fmt.Errorf("import check-ins: %w", err)
	}
	for _, entry := range archive.History {
		if err := s.workouts.AddHistory(ctx, entry); err != nil {
			return fmt.Errorf("import history entry %s: %w", entry.ID, err)
		}
	}

	return nil
}

func validateArchive(archive Archive) error {
	seenIDs := make(map[string]struct{}, len(archive.Workouts))
	for i, w := range archive.Workouts {
		if w.ID == "" {
			return fmt.Errorf("workout %d: empty id", i)
		}
		if _, ok := seenIDs[w.ID]; ok {
			return fmt.Errorf("workout %d: duplicate id %s", i, w.ID)
		}
		seenIDs[w.ID] = struct{}{}
		if !workouts.ValidDate(w.Date) {
			return fmt.Errorf("workout %s: invalid date %q", w.ID, w.Date)
		}
		if !w.Intensity.Valid() {
			return fmt.Errorf("workout %s: invalid intensity %q", w.ID, w.Intensity)
		}
		if !w.Status.Valid() {
			return fmt.Errorf("workout %s: invalid status %q", w.ID, w.Status)
		}
	}

	seenDates := make(map[string]struct{}, len(archive.CheckIns))
	for i, c := range archive.CheckIns {
		if c.ID == "" {
			return fmt.Errorf("check-in %d: empty id", i)
		}
		if !workouts.ValidDate(c.Date) {
			return fmt.Errorf("check-in %s: invalid date %q", c.ID, c.Date)
		}
		if _, ok := seenDates[c.Date]; ok {
			return fmt.Errorf("check-in %s: duplicate date %s", c.ID, c.Date)
		}
		seenDates[c.Date] = struct{}{}
	}

	return nil
}

// GenerateICal renders the non-rest workouts as all-day calendar events.
// Completed workouts get STATUS:CONFIRMED, everything else TENTATIVE.
func GenerateICal(workoutDays []workouts.WorkoutDay) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//RacePlan//Training Plan//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}

	for _, w := range workoutDays {
		if w.IsRest() {
			continue
		}

		dateStr := strings.ReplaceAll(w.Date, "-", "")
		status := "TENTATIVE"
		if w.Status == workouts.StatusCompleted {
			status = "CONFIRMED"
		}

		lines = append(lines,
			"BEGIN:VEVENT",
			fmt.Sprintf("UID:%s@raceplan", w.ID),
			fmt.Sprintf("DTSTART;VALUE=DATE:%s", dateStr),
			fmt.Sprintf("DTEND;VALUE=DATE:%s", dateStr),
			fmt.Sprintf("SUMMARY:%s", w.Title),
			fmt.Sprintf("DESCRIPTION:%s", strings.ReplaceAll(w.Details, "\n", "\\n")),
			fmt.Sprintf("STATUS:%s", status),
			"END:VEVENT",
		)
	}

	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n")
}
