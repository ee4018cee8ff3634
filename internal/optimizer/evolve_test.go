package optimizer

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossoverChildLengthIsShorterParent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := Chromosome{Genes: []Gene{{CourseID: 1}, {CourseID: 2}, {CourseID: 3}}}
	b := Chromosome{Genes: []Gene{{CourseID: 4}, {CourseID: 5}}}
	assert.Len(t, Crossover(rng, a, b).Genes, 2)
}

func TestCrossoverGenesComeFromEitherParent(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	a := Chromosome{Genes: []Gene{{CourseID: 1}, {CourseID: 1}}}
	b := Chromosome{Genes: []Gene{{CourseID: 2}, {CourseID: 2}}}
	for _, g := range Crossover(rng, a, b).Genes {
		assert.Contains(t, []int{1, 2}, g.CourseID)
	}
}

func TestMutationRateIsMonotoneInGeneration(t *testing.T) {
	assert.Greater(t, MutationRate(50, 0.1, 0.3), MutationRate(0, 0.1, 0.3))
}

func TestMutationRateClampsAtOne(t *testing.T) {
	assert.Equal(t, 1.0, MutationRate(10000, 0.9, 5))
}

func TestMutateAlwaysRepairs(t *testing.T) {
	snap := fixtureSnapshot(t)
	rng := rand.New(rand.NewSource(3))
	dirty := Chromosome{Genes: []Gene{
		{CourseID: 1, TeacherID: 1, RoomID: 1, TimingID: 1, SectionID: 1},
		{CourseID: 1, TeacherID: 1, RoomID: 2, TimingID: 1, SectionID: 1},
	}}
	mutated := Mutate(rng, snap, dirty, 0)
	seen := make(map[[2]int]bool)
	for _, g := range mutated.Genes {
		key := [2]int{g.TeacherID, g.TimingID}
		require.False(t, seen[key], "a teacher/timing duplicate survived mutation repair")
		seen[key] = true
	}
}

func TestMutateDoesNotAliasTheParent(t *testing.T) {
	snap := fixtureSnapshot(t)
	rng := rand.New(rand.NewSource(9))
	parent := Chromosome{Genes: []Gene{
		{CourseID: 1, TeacherID: 1, RoomID: 1, TimingID: 1, SectionID: 1},
	}}
	before := parent.Genes[0]
	for i := 0; i < 10; i++ {
		Mutate(rng, snap, parent, 1)
	}
	assert.Equal(t, before, parent.Genes[0], "mutation must operate on a clone")
}

func TestSortByFitnessDescOrdersDescending(t *testing.T) {
	pop := []Chromosome{{Fitness: 0.2}, {Fitness: 0.9}, {Fitness: 0.5}}
	sortByFitnessDesc(pop)
	for i := 1; i < len(pop); i++ {
		assert.GreaterOrEqual(t, pop[i-1].Fitness, pop[i].Fitness)
	}
}

func TestEvolveElitismNeverLowersTheBestFitnessAcrossGenerations(t *testing.T) {
	snap := fixtureSnapshot(t)
	rng := rand.New(rand.NewSource(4))
	population := SeedPopulation(snap, rng, 6)

	// EarlyStopFitness above 1 keeps the loop running the full 8 generations.
	cfg := engineConfig{PopulationSize: 6, Generations: 8, Elitism: 2, EarlyStopFitness: 2, MutationBase: 0.1, MutationGrowth: 0.3}
	result := evolve(context.Background(), snap, rng, population, cfg, nil)

	require.Len(t, result.History, 8)
	for i := 1; i < len(result.History); i++ {
		assert.GreaterOrEqual(t, result.History[i].BestFitness, result.History[i-1].BestFitness,
			"best fitness regressed at generation %d", i)
	}
}

func TestEvolveStopsEarlyOnFitnessThreshold(t *testing.T) {
	snap := fixtureSnapshot(t)
	rng := rand.New(rand.NewSource(6))
	population := SeedPopulation(snap, rng, 4)

	cfg := engineConfig{PopulationSize: 4, Generations: 10, Elitism: 1, EarlyStopFitness: 0.98, MutationBase: 0.1, MutationGrowth: 0.3}
	result := evolve(context.Background(), snap, rng, population, cfg, nil)

	require.NotEmpty(t, result.History)
	assert.GreaterOrEqual(t, result.History[len(result.History)-1].BestFitness, 0.98)
	assert.Less(t, len(result.History), 10, "a clash-free population crosses the threshold before the cap")
}

func TestEvolveStopsImmediatelyOnCancelledContext(t *testing.T) {
	snap := fixtureSnapshot(t)
	rng := rand.New(rand.NewSource(5))
	population := SeedPopulation(snap, rng, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := engineConfig{PopulationSize: 4, Generations: 10, Elitism: 1, EarlyStopFitness: 2, MutationBase: 0.1, MutationGrowth: 0.3}
	result := evolve(ctx, snap, rng, population, cfg, nil)

	require.True(t, result.Cancelled)
	assert.Empty(t, result.History)
}

func TestEvolvePublishesOneEventPerGeneration(t *testing.T) {
	snap := fixtureSnapshot(t)
	rng := rand.New(rand.NewSource(8))
	population := SeedPopulation(snap, rng, 4)

	var events []GenerationEvent
	sink := ProgressFunc(func(e GenerationEvent) { events = append(events, e) })

	cfg := engineConfig{PopulationSize: 4, Generations: 5, Elitism: 1, EarlyStopFitness: 2, MutationBase: 0.1, MutationGrowth: 0.3}
	result := evolve(context.Background(), snap, rng, population, cfg, sink)

	require.Len(t, events, 5)
	assert.Equal(t, result.History, events)
	for i, e := range events {
		assert.Equal(t, i, e.Generation)
	}
}

func TestBestOfPicksHighestFitness(t *testing.T) {
	pop := []Chromosome{{Fitness: 0.1}, {Fitness: 0.8}, {Fitness: 0.4}}
	assert.Equal(t, 0.8, bestOf(pop).Fitness)
}
