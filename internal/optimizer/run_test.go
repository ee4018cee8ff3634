package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioSingleSectionOneTheoryCourse(t *testing.T) {
	input := SnapshotInput{
		Teachers: []Teacher{{ID: 1, FullName: "A"}},
		Rooms:    []Room{{ID: 1, LHNumber: "R"}},
		Timings:  []TimeSlot{{ID: 1, Day: Monday, TimeLabel: "09:00-10:00"}},
		Sections: []Section{{ID: 1, SectionID: "S", Year: 1, PeriodsPerDay: [6]int{1, 0, 0, 0, 0, 0}}},
		Courses:  []Course{{ID: 1, CourseCode: "C", CourseName: "C", TeacherID: 1, SectionID: 1, CourseType: Theory, ContinuousPeriods: 1}},
	}

	result := Run(context.Background(), input, RunConfig{RNGSeed: 1}, nil)
	require.Equal(t, StatusOk, result.Status, "failure: %+v", result.Failure)
	require.Len(t, result.Genes, 1)
	assert.Equal(t, Gene{CourseID: 1, TeacherID: 1, RoomID: 1, TimingID: 1, SectionID: 1}, result.Genes[0])
	assert.GreaterOrEqual(t, result.Fitness, 0.5)
}

func TestScenarioLabNeedsConsecutivePair(t *testing.T) {
	input := SnapshotInput{
		Teachers: []Teacher{{ID: 1, FullName: "A"}},
		Rooms:    []Room{{ID: 1, LHNumber: "R"}},
		Timings: []TimeSlot{
			{ID: 1, Day: Monday, TimeLabel: "08:30-09:15"},
			{ID: 2, Day: Monday, TimeLabel: "09:15-10:00"},
		},
		Sections: []Section{{ID: 1, SectionID: "S", Year: 1, PeriodsPerDay: [6]int{2, 0, 0, 0, 0, 0}}},
		Courses:  []Course{{ID: 1, CourseCode: "L", CourseName: "Lab", TeacherID: 1, SectionID: 1, CourseType: Laboratory, ContinuousPeriods: 2}},
	}

	result := Run(context.Background(), input, RunConfig{RNGSeed: 7}, nil)
	require.Equal(t, StatusOk, result.Status, "failure: %+v", result.Failure)
	require.Len(t, result.Genes, 2)
	a, b := result.Genes[0], result.Genes[1]
	assert.Equal(t, a.CourseID, b.CourseID)
	assert.Equal(t, a.TeacherID, b.TeacherID)
	assert.Equal(t, a.RoomID, b.RoomID)
	assert.ElementsMatch(t, []int{1, 2}, []int{a.TimingID, b.TimingID})
}

func TestScenarioTeacherClashForcedBySingleRoom(t *testing.T) {
	input := SnapshotInput{
		Teachers: []Teacher{{ID: 1, FullName: "A"}},
		Rooms:    []Room{{ID: 1, LHNumber: "R"}},
		Timings:  []TimeSlot{{ID: 1, Day: Monday, TimeLabel: "09:00-10:00"}},
		Sections: []Section{
			{ID: 1, SectionID: "S1", Year: 1, PeriodsPerDay: [6]int{1, 0, 0, 0, 0, 0}},
			{ID: 2, SectionID: "S2", Year: 1, PeriodsPerDay: [6]int{1, 0, 0, 0, 0, 0}},
		},
		Courses: []Course{
			{ID: 1, CourseCode: "C1", CourseName: "C1", TeacherID: 1, SectionID: 1, CourseType: Theory, ContinuousPeriods: 1},
			{ID: 2, CourseCode: "C2", CourseName: "C2", TeacherID: 1, SectionID: 2, CourseType: Theory, ContinuousPeriods: 1},
		},
	}

	result := Run(context.Background(), input, RunConfig{RNGSeed: 3}, nil)
	require.Equal(t, StatusOk, result.Status, "failure: %+v", result.Failure)
	count := 0
	for _, g := range result.Genes {
		if g.TeacherID == 1 && g.TimingID == 1 {
			count++
		}
	}
	assert.LessOrEqual(t, count, 1, "at most one class may touch (teacher 1, timing 1)")
	assert.Less(t, len(result.Genes), 2, "one section's demand must stay uncovered")
}

func TestScenarioDailyCourse(t *testing.T) {
	var timings []TimeSlot
	days := []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
	for i, d := range days {
		timings = append(timings, TimeSlot{ID: i + 1, Day: d, TimeLabel: "09:00-10:00"})
	}
	input := SnapshotInput{
		Teachers: []Teacher{{ID: 1, FullName: "A"}},
		Rooms:    []Room{{ID: 1, LHNumber: "R"}},
		Timings:  timings,
		Sections: []Section{{ID: 1, SectionID: "S", Year: 1, PeriodsPerDay: [6]int{1, 1, 1, 1, 1, 1}}},
		Courses:  []Course{{ID: 1, CourseCode: "D", CourseName: "Daily", TeacherID: 1, SectionID: 1, CourseType: Theory, IsDaily: true, ContinuousPeriods: 1}},
	}

	result := Run(context.Background(), input, RunConfig{RNGSeed: 11}, nil)
	require.Equal(t, StatusOk, result.Status, "failure: %+v", result.Failure)

	daysUsed := make(map[Weekday]bool)
	count := 0
	for _, g := range result.Genes {
		if g.CourseID != 1 {
			continue
		}
		count++
		daysUsed[input.Timings[g.TimingID-1].Day] = true
	}
	assert.Equal(t, 5, count, "a daily course schedules five periods")
	assert.Len(t, daysUsed, count, "each period lands on a distinct day")
}

func TestScenarioCancellation(t *testing.T) {
	teachers := []Teacher{{ID: 1, FullName: "A"}, {ID: 2, FullName: "B"}}
	rooms := []Room{{ID: 1, LHNumber: "R1"}, {ID: 2, LHNumber: "R2"}}
	var timings []TimeSlot
	id := 1
	for _, d := range []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday} {
		for h := 1; h <= 4; h++ {
			timings = append(timings, TimeSlot{ID: id, Day: d, TimeLabel: "09:00-10:00"})
			id++
		}
	}
	sections := []Section{{ID: 1, SectionID: "S", Year: 1, PeriodsPerDay: [6]int{4, 4, 4, 4, 4, 4}}}
	var courses []Course
	for i := 1; i <= 8; i++ {
		courses = append(courses, Course{
			ID: i, CourseCode: "C", CourseName: "C", TeacherID: 1, SectionID: 1,
			CourseType: Theory, ContinuousPeriods: 1,
		})
	}
	input := SnapshotInput{Teachers: teachers, Rooms: rooms, Timings: timings, Sections: sections, Courses: courses}

	ctx, cancel := context.WithCancel(context.Background())
	generationsSeen := 0
	sink := ProgressFunc(func(e GenerationEvent) {
		generationsSeen++
		if generationsSeen == 3 {
			cancel()
		}
	})

	// EarlyStopFitness above 1 disables the threshold so cancellation, not
	// convergence, ends the run.
	result := Run(ctx, input, RunConfig{RNGSeed: 5, Generations: 50, EarlyStopFitness: 2, ProgressSink: sink}, nil)
	require.Equal(t, StatusCancelled, result.Status)
	require.GreaterOrEqual(t, len(result.History), 3)
	assert.Equal(t, result.History[2].BestFitness, result.Fitness, "best-so-far matches the last completed generation")
}

func TestScenarioInfeasibleSeed(t *testing.T) {
	input := SnapshotInput{
		Teachers: []Teacher{{ID: 1, FullName: "A"}},
		Rooms:    []Room{{ID: 1, LHNumber: "R"}},
		Timings:  nil,
		Sections: []Section{{ID: 1, SectionID: "S", Year: 1, PeriodsPerDay: [6]int{1, 0, 0, 0, 0, 0}}},
		Courses:  []Course{{ID: 1, CourseCode: "C", CourseName: "C", TeacherID: 1, SectionID: 1, CourseType: Theory, ContinuousPeriods: 1}},
	}

	result := Run(context.Background(), input, RunConfig{}, nil)
	require.Equal(t, StatusFailed, result.Status)
	require.NotNil(t, result.Failure)
	assert.Equal(t, InfeasibleSeed, result.Failure.Kind)
}

func TestRunMissingTeachersIsMissingInputs(t *testing.T) {
	input := SnapshotInput{
		Rooms:    []Room{{ID: 1, LHNumber: "R"}},
		Timings:  []TimeSlot{{ID: 1, Day: Monday, TimeLabel: "09:00-10:00"}},
		Sections: []Section{{ID: 1, SectionID: "S", Year: 1, PeriodsPerDay: [6]int{1, 0, 0, 0, 0, 0}}},
		Courses:  []Course{{ID: 1, CourseCode: "C", CourseName: "C", TeacherID: 1, SectionID: 1, CourseType: Theory, ContinuousPeriods: 1}},
	}

	result := Run(context.Background(), input, RunConfig{}, nil)
	require.Equal(t, StatusFailed, result.Status)
	require.NotNil(t, result.Failure)
	assert.Equal(t, MissingInputs, result.Failure.Kind)
}

func TestRunIsDeterministicForAFixedSeed(t *testing.T) {
	input := SnapshotInput{
		Teachers: []Teacher{{ID: 1, FullName: "A"}, {ID: 2, FullName: "B"}},
		Rooms:    []Room{{ID: 1, LHNumber: "R1"}, {ID: 2, LHNumber: "R2"}},
		Timings: []TimeSlot{
			{ID: 1, Day: Monday, TimeLabel: "09:00-10:00"},
			{ID: 2, Day: Monday, TimeLabel: "10:00-11:00"},
			{ID: 3, Day: Tuesday, TimeLabel: "09:00-10:00"},
		},
		Sections: []Section{{ID: 1, SectionID: "S", Year: 1, PeriodsPerDay: [6]int{2, 1, 0, 0, 0, 0}}},
		Courses: []Course{
			{ID: 1, CourseCode: "C1", CourseName: "C1", TeacherID: 1, SectionID: 1, CourseType: Theory, ContinuousPeriods: 1},
			{ID: 2, CourseCode: "C2", CourseName: "C2", TeacherID: 2, SectionID: 1, CourseType: Theory, ContinuousPeriods: 1},
		},
	}

	a := Run(context.Background(), input, RunConfig{RNGSeed: 77}, nil)
	b := Run(context.Background(), input, RunConfig{RNGSeed: 77}, nil)
	require.Equal(t, StatusOk, a.Status)
	assert.Equal(t, a.Genes, b.Genes)
	assert.Equal(t, a.Fitness, b.Fitness)
	assert.Equal(t, a.History, b.History)
}

func TestRunHistoryIsMonotoneUnderElitism(t *testing.T) {
	input := SnapshotInput{
		Teachers: []Teacher{{ID: 1, FullName: "A"}, {ID: 2, FullName: "B"}},
		Rooms:    []Room{{ID: 1, LHNumber: "R1"}, {ID: 2, LHNumber: "R2"}},
		Timings: []TimeSlot{
			{ID: 1, Day: Monday, TimeLabel: "09:00-10:00"},
			{ID: 2, Day: Monday, TimeLabel: "10:00-11:00"},
		},
		Sections: []Section{{ID: 1, SectionID: "S", Year: 1, PeriodsPerDay: [6]int{2, 0, 0, 0, 0, 0}}},
		Courses: []Course{
			{ID: 1, CourseCode: "C1", CourseName: "C1", TeacherID: 1, SectionID: 1, CourseType: Theory, ContinuousPeriods: 1},
			{ID: 2, CourseCode: "C2", CourseName: "C2", TeacherID: 2, SectionID: 1, CourseType: Theory, ContinuousPeriods: 1},
		},
	}

	result := Run(context.Background(), input, RunConfig{RNGSeed: 21, Generations: 10, EarlyStopFitness: 2}, nil)
	require.Equal(t, StatusOk, result.Status)
	for i := 1; i < len(result.History); i++ {
		assert.GreaterOrEqual(t, result.History[i].BestFitness, result.History[i-1].BestFitness)
	}
}

func TestRunRespectsOverallTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	input := SnapshotInput{
		Teachers: []Teacher{{ID: 1, FullName: "A"}},
		Rooms:    []Room{{ID: 1, LHNumber: "R"}},
		Timings:  []TimeSlot{{ID: 1, Day: Monday, TimeLabel: "09:00-10:00"}},
		Sections: []Section{{ID: 1, SectionID: "S", Year: 1, PeriodsPerDay: [6]int{1, 0, 0, 0, 0, 0}}},
		Courses:  []Course{{ID: 1, CourseCode: "C", CourseName: "C", TeacherID: 1, SectionID: 1, CourseType: Theory, ContinuousPeriods: 1}},
	}

	time.Sleep(15 * time.Millisecond)
	result := Run(ctx, input, RunConfig{RNGSeed: 2, Generations: 20}, nil)
	assert.Equal(t, StatusCancelled, result.Status)
}
