// Package plan holds the built-in 17 week training plan template,
// building up from run-walk intervals to a 15 km race.
package plan

import (
	"time"

	"github.com/2beens/raceplan/internal/workouts"
)

// DefaultStartDate is the first day of the original plan edition.
var DefaultStartDate = time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)

const (
	TotalWeeks     = 17
	GoalDistanceKm = 15
	GoalEvent      = "Bosbeekse 15"

	// raceDayOffset is the last day of the plan, relative to the start date.
	raceDayOffset = 120
)

type PhaseInfo struct {
	Name  string `json:"name"`
	Weeks string `json:"weeks"`
	Focus string `json:"focus"`
}

type Metadata struct {
	StartDate      string      `json:"startDate"`
	EndDate        string      `json:"endDate"`
	TotalWeeks     int         `json:"totalWeeks"`
	GoalDistanceKm float64     `json:"goalDistance"`
	GoalEvent      string      `json:"goalEvent"`
	Phases         []PhaseInfo `json:"phases"`
}

// MetadataFor describes the plan as anchored on the given start date.
func MetadataFor(start time.Time) Metadata {
	return Metadata{
		StartDate:      start.Format(workouts.DateLayout),
		EndDate:        start.AddDate(0, 0, raceDayOffset).Format(workouts.DateLayout),
		TotalWeeks:     TotalWeeks,
		GoalDistanceKm: GoalDistanceKm,
		GoalEvent:      GoalEvent,
		Phases: []PhaseInfo{
			{Name: "Phase 1", Weeks: "1-4", Focus: "Habit + impact adaptation"},
			{Name: "Phase 2", Weeks: "5-8", Focus: "More continuous running + longer easy work"},
			{Name: "Phase 3", Weeks: "9-13", Focus: "Base fitness + gentle quality sessions"},
			{Name: "Phase 4", Weeks: "14-16", Focus: "Specific build to 15 km"},
			{Name: "Phase 5", Weeks: "17", Focus: "Taper - arrive fresh"},
		},
	}
}

func minutes(m int) *int {
	return &m
}

func km(d float64) *float64 {
	return &d
}

type builder struct {
	start time.Time
	plan  []workouts.WorkoutDayInput
}

func (b *builder) date(dayOffset int) string {
	return b.start.AddDate(0, 0, dayOffset).Format(workouts.DateLayout)
}

func (b *builder) workout(
	dayOffset int,
	title, details, phase string,
	week int,
	intensity workouts.Intensity,
	tags []string,
	durationMin *int,
	distanceKm *float64,
) {
	b.plan = append(b.plan, workouts.WorkoutDayInput{
		Date:               b.date(dayOffset),
		Title:              title,
		Details:            details,
		Phase:              phase,
		Week:               week,
		Tags:               tags,
		PlannedDurationMin: durationMin,
		PlannedDistanceKm:  distanceKm,
		Intensity:          intensity,
		Status:             workouts.StatusPlanned,
	})
}

func (b *builder) rest(dayOffset, week int, phase string) {
	b.workout(dayOffset,
		"Rest Day",
		"Rest or light walking. Recovery is when your body adapts and gets stronger.",
		phase, week, workouts.IntensityRest, []string{"rest"}, nil, nil)
}

func (b *builder) strength(dayOffset, week int, phase string) {
	b.workout(dayOffset,
		"Strength Training",
		`20-35 min strength session. Pick 5-7 exercises, 2-3 sets of 8-12 reps:
• Box squat (sit to bench/chair)
• Romanian deadlift (light) or hip hinge
• Step-ups (low step)
• Glute bridge / hip thrust
• Calf raises (slow)
• Side plank
• Dead bug (core)
• Band walks (hip stability)

Keep it "easy-medium" at first. Consistency beats intensity.`,
		phase, week, workouts.IntensityStrength, []string{"strength"}, minutes(30), nil)
}

// Generate produces the full plan template anchored on the given start date,
// one entry per day, in date order. 121 days: 16 full weeks plus the 9 day
// taper week ending with race day.
func Generate(start time.Time) []workouts.WorkoutDayInput {
	b := &builder{start: start}

	// Phase 1 (weeks 1-4): habit + impact adaptation.
	// Easy run-walk, no speed, build consistency.

	// week 1
	b.workout(0, "Run A (Easy)",
		"25 min total → 1 min run / 1 min walk\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Alternate 1 min running / 1 min walking\nCool-down: 5 min walk\n\nPace should feel almost too easy - you should be able to talk in full sentences.",
		"Phase 1", 1, workouts.IntensityEasy, []string{"easy"}, minutes(25), nil)
	b.rest(1, 1, "Phase 1")
	b.strength(2, 1, "Phase 1")
	b.workout(3, "Run B (Easy)",
		"25 min total → 1 min run / 1 min walk\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Alternate 1 min running / 1 min walking\nCool-down: 5 min walk\n\nKeep the same comfortable pace as Run A.",
		"Phase 1", 1, workouts.IntensityEasy, []string{"easy"}, minutes(25), nil)
	b.rest(4, 1, "Phase 1")
	b.strength(5, 1, "Phase 1")
	b.workout(6, "Long Run (Easy)",
		"35 min total → 1/1 (or 2/1 if it feels easy)\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Run-walk at your chosen ratio. If 1/1 feels too easy, try 2 min run / 1 min walk.\nCool-down: 5 min walk\n\nThis is your first \"long\" run. Keep it conversational!",
		"Phase 1", 1, workouts.IntensityEasy, []string{"easy", "longrun"}, minutes(35), nil)

	// week 2
	b.rest(7, 2, "Phase 1")
	b.workout(8, "Run A (Easy)",
		"28 min → 2/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 2 min run / 1 min walk\nCool-down: 5 min walk\n\nSlightly longer than last week. You're building the habit!",
		"Phase 1", 2, workouts.IntensityEasy, []string{"easy"}, minutes(28), nil)
	b.strength(9, 2, "Phase 1")
	b.workout(10, "Run B (Easy)",
		"28 min → 2/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 2 min run / 1 min walk\nCool-down: 5 min walk",
		"Phase 1", 2, workouts.IntensityEasy, []string{"easy"}, minutes(28), nil)
	b.rest(11, 2, "Phase 1")
	b.strength(12, 2, "Phase 1")
	b.workout(13, "Long Run (Easy)",
		"40 min → 2/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 2 min run / 1 min walk throughout\nCool-down: 5 min walk\n\nYour body is adapting. Keep it easy!",
		"Phase 1", 2, workouts.IntensityEasy, []string{"easy", "longrun"}, minutes(40), nil)

	// week 3
	b.rest(14, 3, "Phase 1")
	b.workout(15, "Run A (Easy)",
		"30 min → 3/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 3 min run / 1 min walk\nCool-down: 5 min walk\n\nLonger run intervals now. Still conversational pace!",
		"Phase 1", 3, workouts.IntensityEasy, []string{"easy"}, minutes(30), nil)
	b.strength(16, 3, "Phase 1")
	b.workout(17, "Run B (Easy)",
		"30 min → 3/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 3 min run / 1 min walk\nCool-down: 5 min walk",
		"Phase 1", 3, workouts.IntensityEasy, []string{"easy"}, minutes(30), nil)
	b.rest(18, 3, "Phase 1")
	b.strength(19, 3, "Phase 1")
	b.workout(20, "Long Run (Easy)",
		"45 min → 3/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 3 min run / 1 min walk\nCool-down: 5 min walk\n\nGood progress! This is building your aerobic base.",
		"Phase 1", 3, workouts.IntensityEasy, []string{"easy", "longrun"}, minutes(45), nil)

	// week 4, deload
	b.rest(21, 4, "Phase 1")
	b.workout(22, "Run A (Easy) - Deload",
		"25-28 min → 3/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 3 min run / 1 min walk\nCool-down: 5 min walk\n\nDeload week - slightly shorter to let your body recover and adapt.",
		"Phase 1", 4, workouts.IntensityEasy, []string{"easy", "deload"}, minutes(26), nil)
	b.strength(23, 4, "Phase 1")
	b.workout(24, "Run B (Easy) - Deload",
		"25-28 min → 3/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 3 min run / 1 min walk\nCool-down: 5 min walk",
		"Phase 1", 4, workouts.IntensityEasy, []string{"easy", "deload"}, minutes(26), nil)
	b.rest(25, 4, "Phase 1")
	b.strength(26, 4, "Phase 1")
	b.workout(27, "Long Run (Easy) - Deload",
		"40 min → 3/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 3 min run / 1 min walk\nCool-down: 5 min walk\n\nRecovery week complete! You should feel fresh for Phase 2.",
		"Phase 1", 4, workouts.IntensityEasy, []string{"easy", "longrun", "deload"}, minutes(40), nil)

	// Phase 2 (weeks 5-8): more continuous running + longer easy work.
	// Gradually longer, still mostly easy, tiny technique stimulus.

	// week 5
	b.rest(28, 5, "Phase 2")
	b.workout(29, "Run A (Easy)",
		"32 min → 4/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 4 min run / 1 min walk\nCool-down: 5 min walk\n\nPhase 2 begins! Longer continuous running intervals.",
		"Phase 2", 5, workouts.IntensityEasy, []string{"easy"}, minutes(32), nil)
	b.strength(30, 5, "Phase 2")
	b.workout(31, "Run B (Easy + Strides)",
		"32 min easy + 4×15 sec slightly faster\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 4/1 run-walk ratio for about 25 min\nStrides: 4×15 sec slightly faster (not sprinting!) with easy jog/walk recovery between\nCool-down: 5 min walk\n\nFirst introduction of faster leg turnover!",
		"Phase 2", 5, workouts.IntensityEasy, []string{"easy"}, minutes(32), nil)
	b.rest(32, 5, "Phase 2")
	b.strength(33, 5, "Phase 2")
	b.workout(34, "Long Run (Easy)",
		"50 min → 4/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 4 min run / 1 min walk\nCool-down: 5 min walk\n\nBiggest long run yet! Stay patient and conversational.",
		"Phase 2", 5, workouts.IntensityEasy, []string{"easy", "longrun"}, minutes(50), nil)

	// week 6
	b.rest(35, 6, "Phase 2")
	b.workout(36, "Run A (Easy)",
		"35 min → 5/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 5 min run / 1 min walk\nCool-down: 5 min walk\n\n5 minutes of continuous running at a time now!",
		"Phase 2", 6, workouts.IntensityEasy, []string{"easy"}, minutes(35), nil)
	b.strength(37, 6, "Phase 2")
	b.workout(38, "Run B (Easy + Strides)",
		"35 min easy + 4×20 sec slightly faster\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 5/1 run-walk ratio\nStrides: 4×20 sec slightly faster with easy recovery\nCool-down: 5 min walk",
		"Phase 2", 6, workouts.IntensityEasy, []string{"easy"}, minutes(35), nil)
	b.rest(39, 6, "Phase 2")
	b.strength(40, 6, "Phase 2")
	b.workout(41, "Long Run (Easy)",
		"55 min → 5/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 5 min run / 1 min walk\nCool-down: 5 min walk\n\nGreat endurance building here!",
		"Phase 2", 6, workouts.IntensityEasy, []string{"easy", "longrun"}, minutes(55), nil)

	// week 7
	b.rest(42, 7, "Phase 2")
	b.workout(43, "Run A (Easy)",
		"38 min → 6/1 (or stay at 5/1 if needed)\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 6 min run / 1 min walk (or 5/1 if that feels better)\nCool-down: 5 min walk\n\nListen to your body on the ratio choice.",
		"Phase 2", 7, workouts.IntensityEasy, []string{"easy"}, minutes(38), nil)
	b.strength(44, 7, "Phase 2")
	b.workout(45, "Run B (Easy)",
		"35-38 min easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Your chosen run-walk ratio\nCool-down: 5 min walk",
		"Phase 2", 7, workouts.IntensityEasy, []string{"easy"}, minutes(36), nil)
	b.rest(46, 7, "Phase 2")
	b.strength(47, 7, "Phase 2")
	b.workout(48, "Long Run (Easy)",
		"60 min → 6/1 ratio\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 6 min run / 1 min walk\nCool-down: 5 min walk\n\nYour first hour-long run! This is a milestone.",
		"Phase 2", 7, workouts.IntensityEasy, []string{"easy", "longrun"}, minutes(60), nil)

	// week 8, deload
	b.rest(49, 8, "Phase 2")
	b.workout(50, "Run A (Easy) - Deload",
		"30-32 min easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Easy run-walk at comfortable ratio\nCool-down: 5 min walk\n\nDeload week - recovery before Phase 3.",
		"Phase 2", 8, workouts.IntensityEasy, []string{"easy", "deload"}, minutes(31), nil)
	b.strength(51, 8, "Phase 2")
	b.workout(52, "Run B (Easy) - Deload",
		"30-32 min easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Easy run-walk\nCool-down: 5 min walk",
		"Phase 2", 8, workouts.IntensityEasy, []string{"easy", "deload"}, minutes(31), nil)
	b.rest(53, 8, "Phase 2")
	b.strength(54, 8, "Phase 2")
	b.workout(55, "Long Run (Easy) - Deload",
		"50-55 min easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Easy run-walk\nCool-down: 5 min walk\n\nPhase 2 complete! Great foundation built.",
		"Phase 2", 8, workouts.IntensityEasy, []string{"easy", "longrun", "deload"}, minutes(52), nil)

	// Phase 3 (weeks 9-13): base fitness + gentle quality sessions.
	// One light quality session per week, long run grows toward 12-14 km.

	// week 9
	b.rest(56, 9, "Phase 3")
	b.workout(57, "Run A (Easy)",
		"40 min easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Continuous or run-walk as needed\nCool-down: 5 min walk\n\nPhase 3 - now we add some quality!",
		"Phase 3", 9, workouts.IntensityEasy, []string{"easy"}, minutes(40), nil)
	b.strength(58, 9, "Phase 3")
	b.workout(59, "Run B (Steady Blocks)",
		"10 min easy + 3×(4 min steady / 2 min easy) + 5 min easy\n\nWarm-up: 10 min easy running\nMain: 3 blocks of 4 min at steady effort (RPE 6/10, short sentences) with 2 min easy between\nCool-down: 5 min easy\n\nFirst quality session! Steady means \"comfortably challenging\".",
		"Phase 3", 9, workouts.IntensitySteady, []string{"steady"}, minutes(33), nil)
	b.rest(60, 9, "Phase 3")
	b.strength(61, 9, "Phase 3")
	b.workout(62, "Long Run (Easy)",
		"8 km easy (run-walk ok)\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 8 km at conversational pace. Use run-walk if needed.\nCool-down: 5 min walk\n\nFirst distance-based long run!",
		"Phase 3", 9, workouts.IntensityEasy, []string{"easy", "longrun"}, nil, km(8))

	// week 10
	b.rest(63, 10, "Phase 3")
	b.workout(64, "Run A (Easy)",
		"42 min easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Easy continuous running or run-walk\nCool-down: 5 min walk",
		"Phase 3", 10, workouts.IntensityEasy, []string{"easy"}, minutes(42), nil)
	b.strength(65, 10, "Phase 3")
	b.workout(66, "Run B (Steady Blocks)",
		"10 min easy + 4×(3 min steady / 2 min easy) + 5 min easy\n\nWarm-up: 10 min easy\nMain: 4 blocks of 3 min steady (RPE 6/10) with 2 min easy\nCool-down: 5 min easy",
		"Phase 3", 10, workouts.IntensitySteady, []string{"steady"}, minutes(35), nil)
	b.rest(67, 10, "Phase 3")
	b.strength(68, 10, "Phase 3")
	b.workout(69, "Long Run (Easy)",
		"9 km easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 9 km at easy, conversational pace\nCool-down: 5 min walk",
		"Phase 3", 10, workouts.IntensityEasy, []string{"easy", "longrun"}, nil, km(9))

	// week 11
	b.rest(70, 11, "Phase 3")
	b.workout(71, "Run A (Easy)",
		"45 min easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Easy running\nCool-down: 5 min walk",
		"Phase 3", 11, workouts.IntensityEasy, []string{"easy"}, minutes(45), nil)
	b.strength(72, 11, "Phase 3")
	b.workout(73, "Run B (Steady Blocks)",
		"10 min easy + 2×(8 min steady / 3 min easy) + 5 min easy\n\nWarm-up: 10 min easy\nMain: 2 longer blocks of 8 min steady with 3 min easy recovery\nCool-down: 5 min easy\n\nLonger steady blocks now - building race fitness!",
		"Phase 3", 11, workouts.IntensitySteady, []string{"steady"}, minutes(37), nil)
	b.rest(74, 11, "Phase 3")
	b.strength(75, 11, "Phase 3")
	b.workout(76, "Long Run (Easy)",
		"10 km easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 10 km easy - double digits!\nCool-down: 5 min walk\n\nCongratulations on hitting 10k in training!",
		"Phase 3", 11, workouts.IntensityEasy, []string{"easy", "longrun"}, nil, km(10))

	// week 12, deload
	b.rest(77, 12, "Phase 3")
	b.workout(78, "Run A (Easy) - Deload",
		"35-40 min easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Easy running\nCool-down: 5 min walk\n\nDeload week before the final push.",
		"Phase 3", 12, workouts.IntensityEasy, []string{"easy", "deload"}, minutes(37), nil)
	b.strength(79, 12, "Phase 3")
	b.workout(80, "Run B (Easy + Strides) - Deload",
		"30-35 min easy + 4×20 sec relaxed faster strides\n\nWarm-up: 5-8 min easy\nMain: Easy running\nStrides: 4×20 sec at a relaxed faster pace (not sprinting)\nCool-down: 5 min walk",
		"Phase 3", 12, workouts.IntensityEasy, []string{"easy", "deload"}, minutes(32), nil)
	b.rest(81, 12, "Phase 3")
	b.strength(82, 12, "Phase 3")
	b.workout(83, "Long Run (Easy) - Deload",
		"8-9 km easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 8-9 km easy\nCool-down: 5 min walk",
		"Phase 3", 12, workouts.IntensityEasy, []string{"easy", "longrun", "deload"}, nil, km(8.5))

	// week 13
	b.rest(84, 13, "Phase 3")
	b.workout(85, "Run A (Easy)",
		"45 min easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Easy running\nCool-down: 5 min walk",
		"Phase 3", 13, workouts.IntensityEasy, []string{"easy"}, minutes(45), nil)
	b.strength(86, 13, "Phase 3")
	b.workout(87, "Run B (Tempo)",
		"Option 1: 10 min easy + 15 min tempo + 10 min easy\nOption 2 (easier): 3×5 min tempo with 2 min easy between\n\nWarm-up: 10 min easy\nMain: Choose your option. Tempo = RPE 7/10, controlled hard, 20-30 min sustainable\nCool-down: 10 min easy\n\nFirst real tempo work! This builds race confidence.",
		"Phase 3", 13, workouts.IntensityTempo, []string{"tempo"}, minutes(35), nil)
	b.rest(88, 13, "Phase 3")
	b.strength(89, 13, "Phase 3")
	b.workout(90, "Long Run (Easy)",
		"12 km easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 12 km at easy pace\nCool-down: 5 min walk\n\n12k - you're really building toward 15k now!",
		"Phase 3", 13, workouts.IntensityEasy, []string{"easy", "longrun"}, nil, km(12))

	// Phase 4 (weeks 14-16): specific build to 15 km.
	// Long run grows to 15-17 km, quality stays controlled.

	// week 14
	b.rest(91, 14, "Phase 4")
	b.workout(92, "Run A (Easy)",
		"45-50 min easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Easy running\nCool-down: 5 min walk\n\nPhase 4 - final build phase!",
		"Phase 4", 14, workouts.IntensityEasy, []string{"easy"}, minutes(47), nil)
	b.strength(93, 14, "Phase 4")
	b.workout(94, "Run B (Steady Blocks)",
		"10 min easy + 4×(5 min steady / 2 min easy) + 5 min easy\n\nWarm-up: 10 min easy\nMain: 4 blocks of 5 min steady with 2 min recovery\nCool-down: 5 min easy",
		"Phase 4", 14, workouts.IntensitySteady, []string{"steady"}, minutes(43), nil)
	b.rest(95, 14, "Phase 4")
	b.strength(96, 14, "Phase 4")
	b.workout(97, "Long Run (Easy)",
		"13 km easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 13 km at easy pace\nCool-down: 5 min walk\n\n13k long run - so close to your goal!",
		"Phase 4", 14, workouts.IntensityEasy, []string{"easy", "longrun"}, nil, km(13))

	// week 15
	b.rest(98, 15, "Phase 4")
	b.workout(99, "Run A (Easy)",
		"50 min easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Easy running\nCool-down: 5 min walk",
		"Phase 4", 15, workouts.IntensityEasy, []string{"easy"}, minutes(50), nil)
	b.strength(100, 15, "Phase 4")
	b.workout(101, "Run B (Tempo)",
		"Option 1: 10 min easy + 20 min tempo + 10 min easy\nOption 2: 4×5 min tempo with 2 min easy\n\nWarm-up: 10 min easy\nMain: Tempo at RPE 7/10\nCool-down: 10 min easy\n\n20 minutes of tempo builds serious race readiness!",
		"Phase 4", 15, workouts.IntensityTempo, []string{"tempo"}, minutes(40), nil)
	b.rest(102, 15, "Phase 4")
	b.strength(103, 15, "Phase 4")
	b.workout(104, "Long Run (Easy)",
		"14-15 km easy (run-walk is fine)\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 14-15 km at easy pace. Use run-walk if needed!\nCool-down: 5 min walk\n\nThis is race distance! You CAN do 15k.",
		"Phase 4", 15, workouts.IntensityEasy, []string{"easy", "longrun"}, nil, km(14.5))

	// week 16, peak week
	b.rest(105, 16, "Phase 4")
	b.workout(106, "Run A (Easy)",
		"45 min easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Easy running\nCool-down: 5 min walk\n\nPeak week - controlled workload.",
		"Phase 4", 16, workouts.IntensityEasy, []string{"easy"}, minutes(45), nil)
	b.strength(107, 16, "Phase 4")
	b.workout(108, "Run B (Steady Blocks)",
		"10 min easy + 6×(2 min steady / 2 min easy) + 5 min easy\n\nWarm-up: 10 min easy\nMain: 6 short steady blocks to keep legs sharp\nCool-down: 5 min easy",
		"Phase 4", 16, workouts.IntensitySteady, []string{"steady"}, minutes(39), nil)
	b.rest(109, 16, "Phase 4")
	b.strength(110, 16, "Phase 4")
	b.workout(111, "Long Run (Easy)",
		"16-17 km easy (only if recovery is good; otherwise cap at 15 km)\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Your longest run! Only go to 17k if you feel great. 15-16k is perfectly fine.\nCool-down: 5 min walk\n\nPEAK LONG RUN! After this, we taper.",
		"Phase 4", 16, workouts.IntensityEasy, []string{"easy", "longrun"}, nil, km(16))

	// Phase 5 (week 17): taper, arrive fresh.
	// Reduce volume, keep legs awake.

	b.rest(112, 17, "Phase 5")
	b.workout(113, "Run A (Easy) - Taper",
		"35-40 min easy\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: Easy running - enjoy this!\nCool-down: 5 min walk\n\nTaper week! Volume drops, freshness increases.",
		"Phase 5", 17, workouts.IntensityEasy, []string{"easy", "deload"}, minutes(37), nil)
	b.rest(114, 17, "Phase 5")
	b.workout(115, "Run B (Easy + Strides) - Taper",
		"25-30 min easy + 4×20 sec relaxed faster strides\n\nWarm-up: 5-8 min easy\nMain: Short, easy running\nStrides: 4×20 sec relaxed fast to keep legs sharp\nCool-down: 5 min walk",
		"Phase 5", 17, workouts.IntensityEasy, []string{"easy", "deload"}, minutes(27), nil)
	b.rest(116, 17, "Phase 5")
	b.workout(117, "Last Long Run - Taper",
		"10-12 km easy (~7 days before race)\n\nWarm-up: 5-8 min brisk walk + very easy jog\nMain: 10-12 km nice and easy\nCool-down: 5 min walk\n\nLast longer effort before race day. Keep it controlled and confident.",
		"Phase 5", 17, workouts.IntensityEasy, []string{"easy", "longrun", "deload"}, nil, km(11))
	b.rest(118, 17, "Phase 5")
	b.workout(119, "Easy Shakeout",
		"20-25 min very easy\n\nJust a short, easy jog to keep legs loose. Maybe include 4×15 sec strides.\n\nDay before race - stay relaxed!",
		"Phase 5", 17, workouts.IntensityEasy, []string{"easy", "deload"}, minutes(22), nil)
	b.workout(raceDayOffset, "🏃 RACE DAY - Bosbeekse 15",
		"RACE DAY - Bosbeekse 15!\n\nPacing strategy:\n• Km 1-3: VERY easy (slower than you think)\n• Km 4-12: Steady, controlled\n• Last 3 km: Only push if you still feel good\n\nRun-walk on race day is totally acceptable:\n• Example: 8-10 min run / 1 min walk from the start can feel amazing at 15 km\n\nYou've done the work. Trust your training. ENJOY IT! 🎉",
		"Phase 5", 17, workouts.IntensitySteady, []string{"race"}, nil, km(15))

	return b.plan
}
