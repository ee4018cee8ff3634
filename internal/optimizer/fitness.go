package optimizer

// countClashes tallies resource conflicts within a chromosome: duplicate
// (teacher_id, timing_id) and (room_id, timing_id) pairs count once each,
// duplicate (section_id, timing_id) pairs count five times because they
// block an entire student cohort.
func countClashes(c Chromosome) int {
	teacherSeen := make(map[busyKey]int)
	roomSeen := make(map[busyKey]int)
	sectionSeen := make(map[busyKey]int)

	for _, g := range c.Genes {
		teacherSeen[busyKey{g.TeacherID, g.TimingID}]++
		roomSeen[busyKey{g.RoomID, g.TimingID}]++
		sectionSeen[busyKey{g.SectionID, g.TimingID}]++
	}

	clashes := 0
	for _, n := range teacherSeen {
		if n > 1 {
			clashes += n - 1
		}
	}
	for _, n := range roomSeen {
		if n > 1 {
			clashes += n - 1
		}
	}
	for _, n := range sectionSeen {
		if n > 1 {
			clashes += 5 * (n - 1)
		}
	}
	return clashes
}

// CoverageRatio is |genes| / total_required, clamped to 1.
func CoverageRatio(snap *Snapshot, c Chromosome) float64 {
	total := snap.TotalRequired()
	if total <= 0 {
		return 1
	}
	ratio := float64(len(c.Genes)) / float64(total)
	if ratio > 1 {
		return 1
	}
	return ratio
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Fitness is the enhanced fitness function the main loop selects on:
// clamp(0, 1 - 0.01*clashes + 0.5*coverage_ratio, 1), with an empty gene
// list scoring 0 outright. The legacy workload-penalized form is kept only
// as the WorkloadBalance diagnostic (see workload.go).
//
// Note the clamp saturates: any clash-free, non-empty chromosome scores
// exactly 1, so a repaired population's best fitness hits any threshold <= 1
// immediately. Callers who need the loop to keep running (to observe
// cancellation, for instance) set EarlyStopFitness above 1.
func Fitness(snap *Snapshot, c Chromosome) float64 {
	if len(c.Genes) == 0 {
		return 0
	}
	clashes := countClashes(c)
	coverage := CoverageRatio(snap, c)
	return clamp01(1 - 0.01*float64(clashes) + 0.5*coverage)
}
