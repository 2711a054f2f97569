package workouts

import (
	"context"
	"sort"
	"time"

	"github.com/2beens/raceplan/internal/telemetry/tracing"
	"go.opentelemetry.io/otel/attribute"
)

type OverallStats struct {
	TotalWorkouts        int         `json:"totalWorkouts"`
	CompletedWorkouts    int         `json:"completedWorkouts"`
	SkippedWorkouts      int         `json:"skippedWorkouts"`
	RescheduledWorkouts  int         `json:"rescheduledWorkouts"`
	CompletionRate       float64     `json:"completionRate"`
	CurrentStreak        int         `json:"currentStreak"`
	LongestStreak        int         `json:"longestStreak"`
	TotalPlannedDistance float64     `json:"totalPlannedDistance"`
	TotalPlannedDuration int         `json:"totalPlannedDuration"`
	NextWorkout          *WorkoutDay `json:"nextWorkout"`
}

type WeeklyStats struct {
	Week                 int     `json:"week"`
	StartDate            string  `json:"startDate"`
	EndDate              string  `json:"endDate"`
	PlannedRuns          int     `json:"plannedRuns"`
	CompletedRuns        int     `json:"completedRuns"`
	SkippedRuns          int     `json:"skippedRuns"`
	TotalPlannedDistance float64 `json:"totalPlannedDistance"`
	TotalPlannedDuration int     `json:"totalPlannedDuration"`
	CompletionRate       float64 `json:"completionRate"`
}

type workoutsLister interface {
	GetAll(ctx context.Context) ([]WorkoutDay, error)
}

// Analyzer computes derived statistics over the current workout collection.
// It only reads; all math lives in pure functions below so it can be
// exercised without a store.
type Analyzer struct {
	repo workoutsLister
}

func NewAnalyzer(repo workoutsLister) *Analyzer {
	return &Analyzer{
		repo: repo,
	}
}

func (a *Analyzer) OverallStats(ctx context.Context) (_ *OverallStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.workouts.overallStats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workouts, err := a.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := CalculateOverallStats(workouts, time.Now().Format(DateLayout))
	span.SetAttributes(attribute.Int("total", stats.TotalWorkouts))
	return &stats, nil
}

func (a *Analyzer) WeeklyStats(ctx context.Context, week int) (_ *WeeklyStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.workouts.weeklyStats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("week", week))

	workouts, err := a.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return CalculateWeeklyStats(workouts, week), nil
}

// CalculateOverallStats computes the overall aggregates for the given
// collection, with "today" passed in as a YYYY-MM-DD date. Rest entries
// are excluded from every count, sum and streak.
func CalculateOverallStats(workouts []WorkoutDay, today string) OverallStats {
	var stats OverallStats

	nonRest := make([]WorkoutDay, 0, len(workouts))
	for _, w := range workouts {
		if w.IsRest() {
			continue
		}
		nonRest = append(nonRest, w)
	}

	stats.TotalWorkouts = len(nonRest)

	var pastCount int
	for _, w := range nonRest {
		switch w.Status {
		case StatusCompleted:
			stats.CompletedWorkouts++
		case StatusSkipped:
			stats.SkippedWorkouts++
		case StatusRescheduled:
			stats.RescheduledWorkouts++
		}
		if w.Date <= today {
			pastCount++
		}
		if w.PlannedDistanceKm != nil {
			stats.TotalPlannedDistance += *w.PlannedDistanceKm
		}
		if w.PlannedDurationMin != nil {
			stats.TotalPlannedDuration += *w.PlannedDurationMin
		}
	}

	// guard the zero denominator, an empty (or all-future) plan has rate 0
	if pastCount > 0 {
		stats.CompletionRate = float64(stats.CompletedWorkouts) / float64(pastCount) * 100
	}

	stats.CurrentStreak, stats.LongestStreak = calculateStreaks(nonRest, today)

	// earliest upcoming non-rest workout that is not done yet
	for i := range nonRest {
		w := nonRest[i]
		if w.Date < today || w.Status == StatusCompleted {
			continue
		}
		if stats.NextWorkout == nil || w.Date < stats.NextWorkout.Date {
			next := w
			stats.NextWorkout = &next
		}
	}

	return stats
}

// calculateStreaks walks non-rest workouts with date <= today in descending
// date order. The current streak is the trailing run of completed entries
// from the most recent date backwards; a skipped (or otherwise non-completed)
// entry breaks it. Date gaps between scheduled workouts do not break a
// streak - only scheduled-but-not-completed entries do.
func calculateStreaks(nonRest []WorkoutDay, today string) (current, longest int) {
	past := make([]WorkoutDay, 0, len(nonRest))
	for _, w := range nonRest {
		if w.Date <= today {
			past = append(past, w)
		}
	}
	sort.Slice(past, func(i, j int) bool {
		return past[i].Date > past[j].Date
	})

	currentSet := false
	streak := 0
	for _, w := range past {
		if w.Status == StatusCompleted {
			streak++
			if streak > longest {
				longest = streak
			}
			continue
		}
		if !currentSet {
			current = streak
			currentSet = true
		}
		streak = 0
	}
	if !currentSet {
		current = streak
	}

	return current, longest
}

// CalculateWeeklyStats computes the aggregates for one plan week. Rest
// entries count for the week's date bounds but not for the run counts.
// Returns nil when no workout carries that week number.
func CalculateWeeklyStats(workouts []WorkoutDay, week int) *WeeklyStats {
	var weekWorkouts []WorkoutDay
	for _, w := range workouts {
		if w.Week == week {
			weekWorkouts = append(weekWorkouts, w)
		}
	}
	if len(weekWorkouts) == 0 {
		return nil
	}

	stats := WeeklyStats{
		Week: week,
	}

	for _, w := range weekWorkouts {
		if stats.StartDate == "" || w.Date < stats.StartDate {
			stats.StartDate = w.Date
		}
		if w.Date > stats.EndDate {
			stats.EndDate = w.Date
		}

		if w.IsRest() {
			continue
		}

		stats.PlannedRuns++
		switch w.Status {
		case StatusCompleted:
			stats.CompletedRuns++
		case StatusSkipped:
			stats.SkippedRuns++
		}
		if w.PlannedDistanceKm != nil {
			stats.TotalPlannedDistance += *w.PlannedDistanceKm
		}
		if w.PlannedDurationMin != nil {
			stats.TotalPlannedDuration += *w.PlannedDurationMin
		}
	}

	if stats.PlannedRuns > 0 {
		stats.CompletionRate = float64(stats.CompletedRuns) / float64(stats.PlannedRuns) * 100
	}

	return &stats
}
