package optimizer

import "sort"

// teacherWorkload aggregates one teacher's load across the genes of a single
// chromosome: periods per day, total weekly periods, and the longest
// consecutive run on any one day.
type teacherWorkload struct {
	dailyLoad      [6]int
	totalLoad      int
	maxConsecutive int
}

// maxConsecutiveRun sorts slot ordinals, walks the sequence, extends the run
// while adjacent ordinals differ by less than 1.1 (same or back-to-back
// period), and resets otherwise.
func maxConsecutiveRun(ordinals []float64) int {
	if len(ordinals) == 0 {
		return 0
	}
	sorted := make([]float64, len(ordinals))
	copy(sorted, ordinals)
	sort.Float64s(sorted)

	run, best := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] < 1.1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

func computeTeacherWorkloads(snap *Snapshot, c Chromosome) map[int]*teacherWorkload {
	ordinalsByTeacherDay := make(map[int]map[Weekday][]float64)
	workloads := make(map[int]*teacherWorkload)

	for _, g := range c.Genes {
		slot, ok := snap.TimingByID[g.TimingID]
		if !ok {
			continue
		}
		w, exists := workloads[g.TeacherID]
		if !exists {
			w = &teacherWorkload{}
			workloads[g.TeacherID] = w
		}
		if int(slot.Day) < len(w.dailyLoad) {
			w.dailyLoad[slot.Day]++
		}
		w.totalLoad++

		if ordinalsByTeacherDay[g.TeacherID] == nil {
			ordinalsByTeacherDay[g.TeacherID] = make(map[Weekday][]float64)
		}
		ordinalsByTeacherDay[g.TeacherID][slot.Day] = append(ordinalsByTeacherDay[g.TeacherID][slot.Day], slot.Ordinal)
	}

	for teacherID, perDay := range ordinalsByTeacherDay {
		w := workloads[teacherID]
		for _, ordinals := range perDay {
			if run := maxConsecutiveRun(ordinals); run > w.maxConsecutive {
				w.maxConsecutive = run
			}
		}
	}

	return workloads
}

func sumOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sumOf(values) / float64(len(values))
}

func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

// dailyLoadVariance computes the variance of a teacher's daily load across
// the days they are actually scheduled on (inactive days don't drag the
// spread toward zero).
func dailyLoadVariance(daily [6]int) float64 {
	var active []float64
	for _, n := range daily {
		if n > 0 {
			active = append(active, float64(n))
		}
	}
	if len(active) < 2 {
		return 0
	}
	return varianceOf(active, meanOf(active))
}

// WorkloadBalance is a diagnostic balance score: not part of the main loop's
// selection pressure, but available for reporting and future weighting.
// balance = clamp(0,
// 1 - (load_variance/mean² + consecutive_excess_penalty + spread_variance/10), 1).
func WorkloadBalance(snap *Snapshot, c Chromosome) float64 {
	workloads := computeTeacherWorkloads(snap, c)
	if len(workloads) == 0 {
		return 1
	}

	totals := make([]float64, 0, len(workloads))
	spreadVariances := make([]float64, 0, len(workloads))
	consecutivePenalty := 0.0

	for _, w := range workloads {
		totals = append(totals, float64(w.totalLoad))
		spreadVariances = append(spreadVariances, dailyLoadVariance(w.dailyLoad))
		if w.maxConsecutive > 4 {
			consecutivePenalty += float64(w.maxConsecutive-4) * 0.2
		}
	}

	// mean divides by every teacher in the snapshot, not just the ones with
	// at least one gene in this chromosome: idle teachers still count toward
	// the denominator.
	mean := 0.0
	if len(snap.Teachers) > 0 {
		mean = sumOf(totals) / float64(len(snap.Teachers))
	}
	loadVariance := varianceOf(totals, mean)
	spreadVariance := meanOf(spreadVariances)

	loadTerm := 0.0
	if mean != 0 {
		loadTerm = loadVariance / (mean * mean)
	}

	return clamp01(1 - (loadTerm + consecutivePenalty + spreadVariance/10))
}
