package optimizer

import (
	"regexp"
	"sort"
)

// Snapshot is the indexed, read-only academic dataset one optimization run
// operates over. It is built once from a SnapshotInput and never mutated
// afterward; every chromosome shares it by reference.
type Snapshot struct {
	Teachers []Teacher
	Rooms    []Room
	Timings  []TimeSlot
	Sections []Section
	Courses  []Course

	TeacherByID map[int]Teacher
	RoomByID    map[int]Room
	TimingByID  map[int]TimeSlot
	SectionByID map[int]Section
	CourseByID  map[int]Course

	TimingsByDay map[Weekday][]TimeSlot

	// AbsentTeacherSlots pre-marks every timing busy for each absent teacher,
	// so the Seeder and Gap-Filler treat them as booked everywhere rather
	// than invent a substitute-teacher reassignment the data model has no
	// room for.
	AbsentTeacherSlots map[[2]int]bool
}

var mathsPattern = regexp.MustCompile(`(?i)math(s|ematics)?`)

// RequiredPeriods computes the weekly occurrence count a course must appear
// in the seeded/gap-filled schedule.
func RequiredPeriods(c Course) int {
	switch {
	case c.IsDaily || mathsPattern.MatchString(c.CourseName):
		return 5
	case c.CourseType == Laboratory || c.CourseType == Workshop:
		return 1
	default:
		return 4
	}
}

// Build validates and indexes a SnapshotInput into a Snapshot. An empty
// required table (no teachers, rooms, sections, or courses) is a
// MissingInputs failure the caller surfaces as Failed before any seeding runs.
func Build(input SnapshotInput) (*Snapshot, error) {
	// Timings is deliberately excluded from this check: a campus snapshot
	// with zero configured timings is structurally complete but seeds no
	// genes, which surfaces downstream as InfeasibleSeed rather than as a
	// missing-table input error.
	if len(input.Teachers) == 0 || len(input.Rooms) == 0 ||
		len(input.Sections) == 0 || len(input.Courses) == 0 {
		return nil, errMissingInputs("snapshot is missing one or more required tables")
	}

	snap := &Snapshot{
		Teachers:           input.Teachers,
		Rooms:              input.Rooms,
		Sections:           input.Sections,
		Courses:            input.Courses,
		TeacherByID:        make(map[int]Teacher, len(input.Teachers)),
		RoomByID:           make(map[int]Room, len(input.Rooms)),
		TimingByID:         make(map[int]TimeSlot, len(input.Timings)),
		SectionByID:        make(map[int]Section, len(input.Sections)),
		CourseByID:         make(map[int]Course, len(input.Courses)),
		AbsentTeacherSlots: make(map[[2]int]bool),
	}

	timings := make([]TimeSlot, len(input.Timings))
	copy(timings, input.Timings)
	for i := range timings {
		timings[i].Ordinal = ParseSlotOrdinal(timings[i].TimeLabel)
	}
	snap.Timings = timings

	for _, t := range input.Teachers {
		snap.TeacherByID[t.ID] = t
	}
	for _, r := range input.Rooms {
		snap.RoomByID[r.ID] = r
	}
	for _, t := range timings {
		snap.TimingByID[t.ID] = t
	}
	for _, s := range input.Sections {
		snap.SectionByID[s.ID] = s
	}
	for _, c := range input.Courses {
		snap.CourseByID[c.ID] = c
	}

	snap.TimingsByDay = GroupByDay(timings)

	absent := make(map[int]bool, len(input.AbsentTeachers))
	for _, id := range input.AbsentTeachers {
		absent[id] = true
	}
	for _, t := range timings {
		for teacherID := range absent {
			snap.AbsentTeacherSlots[[2]int{teacherID, t.ID}] = true
		}
	}

	return snap, nil
}

// orderedTimingIDs returns every timing ID in ascending ID order, used by the
// Gap-Filler's deterministic "search in iteration order of slots" rule.
func (s *Snapshot) orderedTimingIDs() []int {
	ids := make([]int, 0, len(s.Timings))
	for _, t := range s.Timings {
		ids = append(ids, t.ID)
	}
	sort.Ints(ids)
	return ids
}

// TotalRequired sums required weekly periods across every section-day slot,
// the denominator the Fitness Evaluator's coverage ratio divides by.
func (s *Snapshot) TotalRequired() int {
	total := 0
	for _, sec := range s.Sections {
		for _, n := range sec.PeriodsPerDay {
			total += n
		}
	}
	return total
}
