package backup

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/2beens/raceplan/internal/checkins"
	"github.com/2beens/raceplan/internal/workouts"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testWorkout(id, date string, intensity workouts.Intensity, status workouts.Status) workouts.WorkoutDay {
	return workouts.WorkoutDay{
		ID:        id,
		Date:      date,
		Title:     "workout " + id,
		Details:   "warm up\nmain set\ncool down",
		Tags:      []string{"easy"},
		Intensity: intensity,
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestService_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	workoutsRepo := workouts.NewTestRepo()
	checkinsRepo := checkins.NewTestRepo()
	service := NewService(workoutsRepo, checkinsRepo)

	_, err := workoutsRepo.Create(ctx, testWorkout("w1", "2026-02-10", workouts.IntensityEasy, workouts.StatusCompleted))
	require.NoError(t, err)
	_, err = workoutsRepo.Create(ctx, testWorkout("w2", "2026-02-12", workouts.IntensityRest, workouts.StatusPlanned))
	require.NoError(t, err)
	weight := 82.5
	_, err = checkinsRepo.Upsert(ctx, checkins.CheckIn{
		ID:        "c1",
		Date:      "2026-02-10",
		WeightKg:  &weight,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
	fromStatus := workouts.StatusPlanned
	require.NoError(t, workoutsRepo.AddHistory(ctx, workouts.HistoryEntry{
		ID:         "h1",
		WorkoutID:  "w1",
		Action:     workouts.HistoryActionStatusChanged,
		FromStatus: &fromStatus,
		CreatedAt:  time.Now(),
	}))

	archive, err := service.Export(ctx)
	require.NoError(t, err)
	require.Len(t, archive.Workouts, 2)
	require.Len(t, archive.CheckIns, 1)
	require.Len(t, archive.History, 1)
	assert.False(t, archive.ExportedAt.IsZero())

	// import into fresh stores: same state comes out again
	freshWorkouts := workouts.NewTestRepo()
	freshCheckins := checkins.NewTestRepo()
	freshService := NewService(freshWorkouts, freshCheckins)
	require.NoError(t, freshService.Import(ctx, *archive))

	reExported, err := freshService.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, archive.Workouts, reExported.Workouts)
	assert.Equal(t, archive.CheckIns, reExported.CheckIns)
	assert.Equal(t, archive.History, reExported.History)
}

func TestService_Import_replacesExistingState(t *testing.T) {
	ctx := context.Background()
	workoutsRepo := workouts.NewTestRepo()
	checkinsRepo := checkins.NewTestRepo()
	service := NewService(workoutsRepo, checkinsRepo)

	_, err := workoutsRepo.Create(ctx, testWorkout("old", "2026-01-05", workouts.IntensityEasy, workouts.StatusPlanned))
	require.NoError(t, err)

	require.NoError(t, service.Import(ctx, Archive{
		Workouts: []workouts.WorkoutDay{
			testWorkout("new", "2026-02-10", workouts.IntensityEasy, workouts.StatusPlanned),
		},
	}))

	all, err := workoutsRepo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "new", all[0].ID)
}

func TestService_Import_invalidArchive(t *testing.T) {
	ctx := context.Background()
	workoutsRepo := workouts.NewTestRepo()
	service := NewService(workoutsRepo, checkins.NewTestRepo())

	_, err := workoutsRepo.Create(ctx, testWorkout("keep", "2026-01-05", workouts.IntensityEasy, workouts.StatusPlanned))
	require.NoError(t, err)

	testCases := []struct {
		name    string
		archive Archive
	}{
		{
			name: "empty workout id",
			archive: Archive{Workouts: []workouts.WorkoutDay{
				testWorkout("", "2026-02-10", workouts.IntensityEasy, workouts.StatusPlanned),
			}},
		},
		{
			name: "duplicate workout id",
			archive: Archive{Workouts: []workouts.WorkoutDay{
				testWorkout("w1", "2026-02-10", workouts.IntensityEasy, workouts.StatusPlanned),
				testWorkout("w1", "2026-02-11", workouts.IntensityEasy, workouts.StatusPlanned),
			}},
		},
		{
			name: "bad workout date",
			archive: Archive{Workouts: []workouts.WorkoutDay{
				testWorkout("w1", "10.02.2026", workouts.IntensityEasy, workouts.StatusPlanned),
			}},
		},
		{
			name: "bad intensity",
			archive: Archive{Workouts: []workouts.WorkoutDay{
				testWorkout("w1", "2026-02-10", "XXL", workouts.StatusPlanned),
			}},
		},
		{
			name: "bad status",
			archive: Archive{Workouts: []workouts.WorkoutDay{
				testWorkout("w1", "2026-02-10", workouts.IntensityEasy, "torn"),
			}},
		},
		{
			name: "duplicate check-in date",
			archive: Archive{CheckIns: []checkins.CheckIn{
				{ID: "c1", Date: "2026-02-10"},
				{ID: "c2", Date: "2026-02-10"},
			}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := service.Import(ctx, tc.archive)
			require.ErrorIs(t, err, ErrInvalidArchive)
		})
	}

	// nothing was wiped by the rejected imports
	all, err := workoutsRepo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "keep", all[0].ID)
}

func TestGenerateICal(t *testing.T) {
	workoutDays := []workouts.WorkoutDay{
		testWorkout("w1", "2026-02-10", workouts.IntensityEasy, workouts.StatusCompleted),
		testWorkout("r1", "2026-02-11", workouts.IntensityRest, workouts.StatusPlanned),
		testWorkout("w2", "2026-02-12", workouts.IntensityTempo, workouts.StatusPlanned),
	}

	ical := GenerateICal(workoutDays)
	lines := strings.Split(ical, "\r\n")

	assert.Equal(t, "BEGIN:VCALENDAR", lines[0])
	assert.Equal(t, "END:VCALENDAR", lines[len(lines)-1])
	assert.Contains(t, lines, "PRODID:-//RacePlan//Training Plan//EN")

	// rest days stay out of the calendar
	assert.NotContains(t, ical, "r1@raceplan")
	assert.Contains(t, lines, "UID:w1@raceplan")
	assert.Contains(t, lines, "UID:w2@raceplan")

	assert.Contains(t, lines, "DTSTART;VALUE=DATE:20260210")
	assert.Contains(t, lines, "STATUS:CONFIRMED")
	assert.Contains(t, lines, "STATUS:TENTATIVE")

	// newlines in details are escaped, not emitted raw
	assert.Contains(t, ical, `DESCRIPTION:warm up\nmain set\ncool down`)
}

func TestGenerateICal_empty(t *testing.T) {
	ical := GenerateICal(nil)
	assert.Equal(t,
		"BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//RacePlan//Training Plan//EN\r\nCALSCALE:GREGORIAN\r\nMETHOD:PUBLISH\r\nEND:VCALENDAR",
		ical,
	)
}
