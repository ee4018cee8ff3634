// Package snapshot assembles an optimizer.SnapshotInput from the read-only
// academic data store. The store itself is an external collaborator; this
// package is the thin client the optimizer core trusts to produce a
// well-formed input.
package snapshot

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-timetable-api/internal/optimizer"
)

// PostgresLoader materializes a Snapshot input from Postgres tables
// (teachers, rooms, timings, sections, courses, absent_teachers).
type PostgresLoader struct {
	db *sqlx.DB
}

// NewPostgresLoader constructs a loader over an existing connection.
func NewPostgresLoader(db *sqlx.DB) *PostgresLoader {
	return &PostgresLoader{db: db}
}

type teacherRow struct {
	ID       int    `db:"id"`
	TUID     string `db:"tuid"`
	FullName string `db:"full_name"`
}

type roomRow struct {
	ID        int    `db:"id"`
	LHNumber  string `db:"lh_number"`
	Capacity  int    `db:"capacity"`
	Year      *int   `db:"year"`
	SectionID *int   `db:"section_id"`
}

type timingRow struct {
	ID        int    `db:"id"`
	Day       string `db:"day_of_week"`
	TimeLabel string `db:"time_label"`
}

type sectionRow struct {
	ID           int    `db:"id"`
	SectionID    string `db:"section_id"`
	DepartmentID int    `db:"department_id"`
	Year         int    `db:"year"`
	Monday       int    `db:"periods_monday"`
	Tuesday      int    `db:"periods_tuesday"`
	Wednesday    int    `db:"periods_wednesday"`
	Thursday     int    `db:"periods_thursday"`
	Friday       int    `db:"periods_friday"`
	Saturday     int    `db:"periods_saturday"`
}

type courseRow struct {
	ID                int    `db:"id"`
	CourseCode        string `db:"course_code"`
	CourseName        string `db:"course_name"`
	TeacherID         int    `db:"teacher_id"`
	SectionID         int    `db:"section_id"`
	CourseType        string `db:"course_type"`
	IsDaily           bool   `db:"is_daily"`
	ContinuousPeriods int    `db:"continuous_periods"`
}

// Load queries every table a Snapshot needs for the given term/institution
// and assembles an optimizer.SnapshotInput.
func (l *PostgresLoader) Load(ctx context.Context, termID string) (optimizer.SnapshotInput, error) {
	var input optimizer.SnapshotInput

	var teachers []teacherRow
	if err := l.db.SelectContext(ctx, &teachers, `SELECT id, tuid, full_name FROM teachers WHERE term_id = $1`, termID); err != nil {
		return input, fmt.Errorf("load teachers: %w", err)
	}
	for _, t := range teachers {
		input.Teachers = append(input.Teachers, optimizer.Teacher{ID: t.ID, TUID: t.TUID, FullName: t.FullName})
	}

	var rooms []roomRow
	if err := l.db.SelectContext(ctx, &rooms, `SELECT id, lh_number, capacity, year, section_id FROM rooms WHERE term_id = $1`, termID); err != nil {
		return input, fmt.Errorf("load rooms: %w", err)
	}
	for _, r := range rooms {
		input.Rooms = append(input.Rooms, optimizer.Room{ID: r.ID, LHNumber: r.LHNumber, Capacity: r.Capacity, Year: r.Year, SectionID: r.SectionID})
	}

	var timings []timingRow
	if err := l.db.SelectContext(ctx, &timings, `SELECT id, day_of_week, time_label FROM timings WHERE term_id = $1`, termID); err != nil {
		return input, fmt.Errorf("load timings: %w", err)
	}
	for _, t := range timings {
		day, _ := optimizer.ParseWeekday(t.Day)
		input.Timings = append(input.Timings, optimizer.TimeSlot{ID: t.ID, Day: day, TimeLabel: t.TimeLabel})
	}

	var sections []sectionRow
	const sectionQuery = `
SELECT s.id, s.section_id, s.department_id, s.year,
       s.periods_monday, s.periods_tuesday, s.periods_wednesday,
       s.periods_thursday, s.periods_friday, s.periods_saturday
FROM sections s
JOIN departments d ON d.id = s.department_id
WHERE s.term_id = $1`
	if err := l.db.SelectContext(ctx, &sections, sectionQuery, termID); err != nil {
		return input, fmt.Errorf("load sections: %w", err)
	}
	for _, s := range sections {
		input.Sections = append(input.Sections, optimizer.Section{
			ID:           s.ID,
			SectionID:    s.SectionID,
			DepartmentID: s.DepartmentID,
			Year:         s.Year,
			PeriodsPerDay: [6]int{
				s.Monday, s.Tuesday, s.Wednesday, s.Thursday, s.Friday, s.Saturday,
			},
		})
	}

	var courses []courseRow
	const courseQuery = `
SELECT c.id, c.course_code, c.course_name, c.teacher_id, c.section_id,
       c.course_type, c.is_daily, c.continuous_periods
FROM courses c
JOIN teachers t ON t.id = c.teacher_id
JOIN sections s ON s.id = c.section_id
WHERE c.term_id = $1`
	if err := l.db.SelectContext(ctx, &courses, courseQuery, termID); err != nil {
		return input, fmt.Errorf("load courses: %w", err)
	}
	for _, c := range courses {
		input.Courses = append(input.Courses, optimizer.Course{
			ID:                c.ID,
			CourseCode:        c.CourseCode,
			CourseName:        c.CourseName,
			TeacherID:         c.TeacherID,
			SectionID:         c.SectionID,
			CourseType:        optimizer.CourseType(c.CourseType),
			IsDaily:           c.IsDaily,
			ContinuousPeriods: c.ContinuousPeriods,
		})
	}

	var absentIDs []int
	const absentQuery = `SELECT teacher_id FROM absent_teachers WHERE term_id = $1`
	if err := l.db.SelectContext(ctx, &absentIDs, absentQuery, termID); err != nil {
		return input, fmt.Errorf("load absent teachers: %w", err)
	}
	input.AbsentTeachers = absentIDs

	return input, nil
}
