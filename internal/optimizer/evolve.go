package optimizer

import "math/rand"

// Crossover produces a child via uniform crossover between two parents: for
// each gene index in the shorter parent, the gene is taken from either
// parent with equal probability. The child's length is the shorter parent's
// length.
func Crossover(rng *rand.Rand, a, b Chromosome) Chromosome {
	n := len(a.Genes)
	if len(b.Genes) < n {
		n = len(b.Genes)
	}
	genes := make([]Gene, n)
	for i := 0; i < n; i++ {
		if rng.Intn(2) == 0 {
			genes[i] = a.Genes[i]
		} else {
			genes[i] = b.Genes[i]
		}
	}
	return Chromosome{Genes: genes}
}

// MutationRate is the adaptive schedule
// p = min(1, base + generation/100*growth).
func MutationRate(generation int, base, growth float64) float64 {
	p := base + float64(generation)/100*growth
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// Mutate replaces one random gene's timing and room with uniform-random
// picks from the snapshot when the roll succeeds, then always repairs the
// chromosome, since mutation may introduce invariant violations and gap-filling
// later expects a clean slate to compute needed counts against.
func Mutate(rng *rand.Rand, snap *Snapshot, c Chromosome, rate float64) Chromosome {
	mutated := c.Clone()
	if len(mutated.Genes) > 0 && rng.Float64() < rate {
		idx := rng.Intn(len(mutated.Genes))
		timing := snap.Timings[rng.Intn(len(snap.Timings))]
		room := snap.Rooms[rng.Intn(len(snap.Rooms))]
		mutated.Genes[idx].TimingID = timing.ID
		mutated.Genes[idx].RoomID = room.ID
	}
	return Repair(snap, mutated)
}

// sortByFitnessDesc sorts a population descending by fitness in place.
func sortByFitnessDesc(population []Chromosome) {
	for i := 1; i < len(population); i++ {
		j := i
		for j > 0 && population[j-1].Fitness < population[j].Fitness {
			population[j-1], population[j] = population[j], population[j-1]
			j--
		}
	}
}
