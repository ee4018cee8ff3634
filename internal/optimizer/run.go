package optimizer

import (
	"context"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunConfig is the caller-facing, partially-specified tuning contract.
// Zero-valued fields fall back to the documented defaults; RNGSeed of zero
// auto-seeds from the current time instead of meaning "seed zero", so
// callers who don't care about determinism don't need to special-case it.
// EarlyStopFitness above 1 disables early stopping outright, since fitness
// is clamped to [0, 1].
type RunConfig struct {
	PopulationSize   int          `json:"population_size" validate:"omitempty,gte=1"`
	Generations      int          `json:"generations" validate:"omitempty,gte=1"`
	Elitism          int          `json:"elitism" validate:"omitempty,gte=0"`
	EarlyStopFitness float64      `json:"early_stop_fitness" validate:"omitempty,gte=0"`
	MutationBase     float64      `json:"mutation_base" validate:"omitempty,gte=0,lte=1"`
	MutationGrowth   float64      `json:"mutation_growth" validate:"omitempty,gte=0"`
	RNGSeed          int64        `json:"rng_seed"`
	ProgressSink     ProgressSink `json:"-"`
}

// defaultConfig holds the tuning the engine ships with.
func defaultConfig() RunConfig {
	return RunConfig{
		PopulationSize:   10,
		Generations:      20,
		Elitism:          2,
		EarlyStopFitness: 0.98,
		MutationBase:     0.1,
		MutationGrowth:   0.3,
	}
}

func (rc RunConfig) withDefaults() RunConfig {
	d := defaultConfig()
	if rc.PopulationSize <= 0 {
		rc.PopulationSize = d.PopulationSize
	}
	if rc.Generations <= 0 {
		rc.Generations = d.Generations
	}
	if rc.EarlyStopFitness <= 0 {
		rc.EarlyStopFitness = d.EarlyStopFitness
	}
	if rc.MutationBase <= 0 {
		rc.MutationBase = d.MutationBase
	}
	if rc.MutationGrowth <= 0 {
		rc.MutationGrowth = d.MutationGrowth
	}
	// 0 and "unset" are indistinguishable on an int field, and RunConfig
	// carries no separate "was set" flag, so the documented default of 2
	// wins over an explicit 0 as well.
	if rc.Elitism == 0 {
		rc.Elitism = d.Elitism
	}
	return rc
}

// Status discriminates the three shapes of RunResult.
type Status string

const (
	StatusOk        Status = "ok"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// RunResult is the optimizer's single return type.
type RunResult struct {
	RunID   string            `json:"run_id"`
	Status  Status            `json:"status"`
	Genes   []Gene            `json:"genes,omitempty"`
	Fitness float64           `json:"fitness,omitempty"`
	History []GenerationEvent `json:"history,omitempty"`
	Failure *FailureInfo      `json:"failure,omitempty"`
}

func okResult(runID string, best Chromosome, history []GenerationEvent) RunResult {
	return RunResult{RunID: runID, Status: StatusOk, Genes: best.Genes, Fitness: best.Fitness, History: history}
}

func cancelledResult(runID string, best Chromosome, history []GenerationEvent) RunResult {
	return RunResult{RunID: runID, Status: StatusCancelled, Genes: best.Genes, Fitness: best.Fitness, History: history}
}

func failedResult(runID string, kind FailureKind, message string) RunResult {
	return RunResult{RunID: runID, Status: StatusFailed, Failure: &FailureInfo{Kind: kind, Message: message}}
}

var structValidator = validator.New()

// Run is the optimizer's top-level entrypoint: validate inputs, build the
// Snapshot, seed a population, run the generation loop, and return exactly
// one of Ok, Cancelled, or Failed. A nil logger falls back to zap.NewNop().
func Run(ctx context.Context, input SnapshotInput, cfg RunConfig, logger *zap.Logger) RunResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	log := logger.With(zap.String("run_id", runID))

	if err := structValidator.Struct(input); err != nil {
		log.Warn("snapshot failed validation", zap.Error(err))
		return failedResult(runID, MissingInputs, err.Error())
	}
	if err := structValidator.Struct(cfg); err != nil {
		log.Warn("run config failed validation", zap.Error(err))
		return failedResult(runID, MissingInputs, err.Error())
	}

	snap, err := Build(input)
	if err != nil {
		log.Warn("snapshot build failed", zap.Error(err))
		return failedResult(runID, MissingInputs, err.Error())
	}

	cfg = cfg.withDefaults()
	seed := cfg.RNGSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	log.Info("seeding population",
		zap.Int("population_size", cfg.PopulationSize),
		zap.Int("generations", cfg.Generations),
	)
	population := SeedPopulation(snap, rng, cfg.PopulationSize)

	if allEmpty(population) {
		log.Error("infeasible seed: no gene could be placed")
		return failedResult(runID, InfeasibleSeed, "no chromosome in the initial population contains any gene")
	}

	eng := engineConfig{
		PopulationSize:   cfg.PopulationSize,
		Generations:      cfg.Generations,
		Elitism:          cfg.Elitism,
		EarlyStopFitness: cfg.EarlyStopFitness,
		MutationBase:     cfg.MutationBase,
		MutationGrowth:   cfg.MutationGrowth,
	}

	result := evolve(ctx, snap, rng, population, eng, cfg.ProgressSink)

	if result.Cancelled {
		log.Info("run cancelled", zap.Float64("best_so_far", result.Best.Fitness))
		return cancelledResult(runID, result.Best, result.History)
	}

	log.Info("run complete", zap.Float64("fitness", result.Best.Fitness), zap.Int("generations_run", len(result.History)))
	return okResult(runID, result.Best, result.History)
}

func allEmpty(population []Chromosome) bool {
	for _, c := range population {
		if len(c.Genes) > 0 {
			return false
		}
	}
	return true
}
