package optimizer

import "math/rand"

// buildOccurrenceList expands every course into RequiredPeriods(course)
// copies, the required-occurrence list B the Seeder walks.
func buildOccurrenceList(snap *Snapshot) []Course {
	var list []Course
	for _, c := range snap.Courses {
		n := RequiredPeriods(c)
		for i := 0; i < n; i++ {
			list = append(list, c)
		}
	}
	return list
}

func shuffleCourses(rng *rand.Rand, list []Course) {
	rng.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
}

func shuffleDays(rng *rand.Rand) []Weekday {
	days := []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
	rng.Shuffle(len(days), func(i, j int) { days[i], days[j] = days[j], days[i] })
	return days
}

func shuffleSlots(rng *rand.Rand, slots []TimeSlot) []TimeSlot {
	shuffled := make([]TimeSlot, len(slots))
	copy(shuffled, slots)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled
}

func shufflePairs(rng *rand.Rand, pairs [][]TimeSlot) [][]TimeSlot {
	shuffled := make([][]TimeSlot, len(pairs))
	copy(shuffled, pairs)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled
}

// isChunkCourse reports whether a course asks for a consecutive two-period
// placement (labs and workshops) rather than single, independently picked
// periods.
func isChunkCourse(c Course) bool {
	return c.CourseType == Laboratory || c.CourseType == Workshop
}

// Seed builds one chromosome by greedy placement: shuffle the
// required-occurrence list, then for each entry try a random day order,
// placing a consecutive pair for labs/workshops or a single free slot
// otherwise. The seeder is allowed to under-fill; GapFill repairs coverage
// afterward.
func Seed(snap *Snapshot, rng *rand.Rand) Chromosome {
	occurrences := buildOccurrenceList(snap)
	shuffleCourses(rng, occurrences)

	bs := NewBusySet(snap)
	dayCount := make(map[int]*[6]int, len(snap.Sections))
	for _, s := range snap.Sections {
		dayCount[s.ID] = &[6]int{}
	}

	var genes []Gene

	for _, course := range occurrences {
		section, ok := snap.SectionByID[course.SectionID]
		if !ok {
			continue
		}
		counts := dayCount[section.ID]
		chunk := 1
		if isChunkCourse(course) {
			chunk = 2
		}

		placed := false
		for _, day := range shuffleDays(rng) {
			if int(day) >= len(section.PeriodsPerDay) {
				continue
			}
			if counts[day]+chunk-1 > section.PeriodsPerDay[day] {
				continue
			}

			if chunk == 2 {
				pairs := shufflePairs(rng, FindConsecutiveRuns(snap.TimingsByDay[day], 2))
				for _, pair := range pairs {
					slotA, slotB := pair[0], pair[1]
					if bs.TeacherBusy(course.TeacherID, slotA.ID) || bs.TeacherBusy(course.TeacherID, slotB.ID) {
						continue
					}
					if bs.SectionBusy(section.ID, slotA.ID) || bs.SectionBusy(section.ID, slotB.ID) {
						continue
					}
					roomID, ok := freeRoomInBoth(snap, bs, slotA.ID, slotB.ID)
					if !ok {
						continue
					}
					g1 := Gene{CourseID: course.ID, TeacherID: course.TeacherID, RoomID: roomID, TimingID: slotA.ID, SectionID: section.ID}
					g2 := Gene{CourseID: course.ID, TeacherID: course.TeacherID, RoomID: roomID, TimingID: slotB.ID, SectionID: section.ID}
					bs.Reserve(g1)
					bs.Reserve(g2)
					genes = append(genes, g1, g2)
					counts[day] += 2
					placed = true
					break
				}
			} else {
				slots := shuffleSlots(rng, snap.TimingsByDay[day])
				for _, slot := range slots {
					if bs.TeacherBusy(course.TeacherID, slot.ID) || bs.SectionBusy(section.ID, slot.ID) {
						continue
					}
					roomID, ok := FreeRoom(snap, bs, slot.ID)
					if !ok {
						continue
					}
					g := Gene{CourseID: course.ID, TeacherID: course.TeacherID, RoomID: roomID, TimingID: slot.ID, SectionID: section.ID}
					bs.Reserve(g)
					genes = append(genes, g)
					counts[day]++
					placed = true
					break
				}
			}

			if placed {
				break
			}
		}
		// Lab/workshop with no available consecutive pair on any day is
		// skipped this seed; GapFill may still place it as single periods
		// later, an accepted coverage degradation.
	}

	c := Chromosome{Genes: genes}
	c.Fitness = Fitness(snap, c)
	return c
}

func freeRoomInBoth(snap *Snapshot, bs *BusySet, slotA, slotB int) (int, bool) {
	for _, r := range snap.Rooms {
		if !bs.RoomBusy(r.ID, slotA) && !bs.RoomBusy(r.ID, slotB) {
			return r.ID, true
		}
	}
	return 0, false
}

// SeedPopulation builds size independent chromosomes, consuming rng
// sequentially so a fixed rng_seed reproduces the same population.
func SeedPopulation(snap *Snapshot, rng *rand.Rand, size int) []Chromosome {
	population := make([]Chromosome, 0, size)
	for i := 0; i < size; i++ {
		population = append(population, Seed(snap, rng))
	}
	return population
}
