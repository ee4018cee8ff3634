// Package schedule turns a winning chromosome into the final Schedule
// artifact: the genes plus a section-indexed weekly grid, grouped by day
// and sorted by parsed slot ordinal within the day.
package schedule

import (
	"sort"

	"github.com/noah-isme/uni-timetable-api/internal/optimizer"
	"github.com/noah-isme/uni-timetable-api/pkg/export"
)

// Entry is one resolved, human-readable cell in a section's weekly grid.
type Entry struct {
	Day         optimizer.Weekday
	TimeLabel   string
	Ordinal     float64
	CourseCode  string
	CourseName  string
	TeacherName string
	RoomLabel   string
}

// Schedule is the final artifact: the raw genes a run produced, plus each
// section's entries grouped by day and sorted by ordinal within the day.
type Schedule struct {
	Genes     []optimizer.Gene
	BySection map[int][]Entry
}

// Build resolves a chromosome's genes against the snapshot into a Schedule.
// Genes referencing an ID absent from the snapshot (should not happen for a
// repaired chromosome) are skipped rather than panicking.
func Build(snap *optimizer.Snapshot, genes []optimizer.Gene) *Schedule {
	bySection := make(map[int][]Entry)

	for _, g := range genes {
		timing, ok := snap.TimingByID[g.TimingID]
		if !ok {
			continue
		}
		course, ok := snap.CourseByID[g.CourseID]
		if !ok {
			continue
		}
		teacher := snap.TeacherByID[g.TeacherID]
		room := snap.RoomByID[g.RoomID]

		bySection[g.SectionID] = append(bySection[g.SectionID], Entry{
			Day:         timing.Day,
			TimeLabel:   timing.TimeLabel,
			Ordinal:     timing.Ordinal,
			CourseCode:  course.CourseCode,
			CourseName:  course.CourseName,
			TeacherName: teacher.FullName,
			RoomLabel:   room.LHNumber,
		})
	}

	for sectionID, entries := range bySection {
		sorted := make([]Entry, len(entries))
		copy(sorted, entries)
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Day != sorted[j].Day {
				return sorted[i].Day < sorted[j].Day
			}
			return sorted[i].Ordinal < sorted[j].Ordinal
		})
		bySection[sectionID] = sorted
	}

	genesCopy := make([]optimizer.Gene, len(genes))
	copy(genesCopy, genes)

	return &Schedule{Genes: genesCopy, BySection: bySection}
}

// ToCSV renders one section's weekly grid as CSV rows
// (day,time,course,teacher,room). PDF/ZIP export stays with downstream
// consumers; this is an inspection aid.
func (s *Schedule) ToCSV(exporter *export.CSVExporter, sectionID int) ([]byte, error) {
	dataset := export.Dataset{
		Headers: []string{"day", "time", "course", "teacher", "room"},
	}
	for _, e := range s.BySection[sectionID] {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"day":     e.Day.String(),
			"time":    e.TimeLabel,
			"course":  e.CourseCode,
			"teacher": e.TeacherName,
			"room":    e.RoomLabel,
		})
	}
	return exporter.Render(dataset)
}
