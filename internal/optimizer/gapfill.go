package optimizer

// GapFill is the aggressive coverage pass: for each (course, section) pair
// it computes how many required periods are still missing and, for each one,
// searches timings in deterministic iteration order (ascending timing ID)
// for a slot where the course's teacher and section are both free and some
// room is free. It never revisits a slot it
// has already booked, so it can only ever add genes, never duplicate a
// (teacher|room|section, timing) triple.
func GapFill(snap *Snapshot, c Chromosome) Chromosome {
	bs := NewBusySet(snap)
	for _, g := range c.Genes {
		bs.Reserve(g)
	}

	scheduled := make(map[[2]int]int, len(c.Genes))
	for _, g := range c.Genes {
		scheduled[[2]int{g.CourseID, g.SectionID}]++
	}

	genes := make([]Gene, len(c.Genes))
	copy(genes, c.Genes)

	orderedTimingIDs := snap.orderedTimingIDs()

	for _, course := range snap.Courses {
		key := [2]int{course.ID, course.SectionID}
		needed := RequiredPeriods(course) - scheduled[key]

		for needed > 0 {
			placed := false
			for _, timingID := range orderedTimingIDs {
				if bs.TeacherBusy(course.TeacherID, timingID) || bs.SectionBusy(course.SectionID, timingID) {
					continue
				}
				roomID, ok := FreeRoom(snap, bs, timingID)
				if !ok {
					continue
				}
				g := Gene{
					CourseID:  course.ID,
					TeacherID: course.TeacherID,
					RoomID:    roomID,
					TimingID:  timingID,
					SectionID: course.SectionID,
				}
				bs.Reserve(g)
				genes = append(genes, g)
				needed--
				placed = true
				break
			}
			if !placed {
				break
			}
		}
	}

	result := Chromosome{Genes: genes}
	result.Fitness = Fitness(snap, result)
	return result
}
