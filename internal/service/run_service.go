package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/optimizer"
	"github.com/noah-isme/uni-timetable-api/internal/optimizer/telemetry"
	"github.com/noah-isme/uni-timetable-api/internal/schedule"
	"github.com/noah-isme/uni-timetable-api/internal/snapshot"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/jobs"
)

// runJob is the payload handed to the jobs.Queue worker pool for one
// submitted optimization run.
type runJob struct {
	runID  string
	input  optimizer.SnapshotInput
	config optimizer.RunConfig
}

// RunService is the optimizer's transport-facing façade: it loads a
// snapshot, queues the (potentially slow) evolution off the request
// goroutine via pkg/jobs.Queue, and makes progress and results observable
// through a RunStore the handlers poll.
type RunService struct {
	snapshots  *snapshot.Cache
	store      *RunStore
	queue      *jobs.Queue
	telemetry  *telemetry.Recorder
	logger     *zap.Logger
	defaultCfg optimizer.RunConfig
	runTimeout time.Duration
}

// NewRunService wires a RunService and starts its backing job queue.
// A nil telemetry Recorder is skipped on each call; a nil logger falls back
// to zap.NewNop().
// runTimeout bounds each run's wall clock; zero means no deadline.
func NewRunService(ctx context.Context, snapshots *snapshot.Cache, store *RunStore, rec *telemetry.Recorder, defaultCfg optimizer.RunConfig, runTimeout time.Duration, queueCfg jobs.QueueConfig, logger *zap.Logger) *RunService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewRunStore()
	}
	queueCfg.Logger = logger

	svc := &RunService{
		snapshots:  snapshots,
		store:      store,
		telemetry:  rec,
		logger:     logger,
		defaultCfg: defaultCfg,
		runTimeout: runTimeout,
	}
	svc.queue = jobs.NewQueue("optimizer-runs", svc.process, queueCfg)
	svc.queue.Start(ctx)
	return svc
}

// Stop drains the backing job queue, used by cmd/server's shutdown path.
func (s *RunService) Stop() {
	s.queue.Stop()
}

// Submit loads the term's snapshot, registers a pending RunRecord, and
// enqueues the evolution to run asynchronously. It returns the run ID the
// caller polls via Status.
func (s *RunService) Submit(ctx context.Context, termID string, overrides optimizer.RunConfig) (string, error) {
	input, err := s.snapshots.Load(ctx, termID)
	if err != nil {
		return "", fmt.Errorf("load snapshot for term %s: %w", termID, err)
	}

	runID := uuid.NewString()
	s.store.Create(runID, termID)

	cfg := s.mergeConfig(overrides)

	if err := s.queue.Enqueue(jobs.Job{
		ID:      runID,
		Type:    "optimizer.run",
		Payload: runJob{runID: runID, input: input, config: cfg},
	}); err != nil {
		return "", fmt.Errorf("enqueue run %s: %w", runID, err)
	}

	return runID, nil
}

// Status returns the current RunRecord for runID.
func (s *RunService) Status(runID string) (*RunRecord, error) {
	record, ok := s.store.Get(runID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "run not found")
	}
	return record, nil
}

func (s *RunService) mergeConfig(overrides optimizer.RunConfig) optimizer.RunConfig {
	cfg := s.defaultCfg
	if overrides.PopulationSize > 0 {
		cfg.PopulationSize = overrides.PopulationSize
	}
	if overrides.Generations > 0 {
		cfg.Generations = overrides.Generations
	}
	if overrides.Elitism > 0 {
		cfg.Elitism = overrides.Elitism
	}
	if overrides.EarlyStopFitness > 0 {
		cfg.EarlyStopFitness = overrides.EarlyStopFitness
	}
	if overrides.MutationBase > 0 {
		cfg.MutationBase = overrides.MutationBase
	}
	if overrides.MutationGrowth > 0 {
		cfg.MutationGrowth = overrides.MutationGrowth
	}
	cfg.RNGSeed = overrides.RNGSeed
	return cfg
}

// process is the jobs.Queue handler: it runs one optimization end to end
// and records the result, regardless of status.
func (s *RunService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(runJob)
	if !ok {
		return fmt.Errorf("optimizer job %s: unexpected payload type %T", job.ID, job.Payload)
	}

	s.store.MarkRunning(payload.runID)
	log := s.logger.With(zap.String("run_id", payload.runID))
	log.Info("optimizer run starting")

	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	started := time.Now()
	if s.telemetry != nil {
		payload.config.ProgressSink = s.telemetry.Sink()
	}

	result := optimizer.Run(ctx, payload.input, payload.config, log)
	duration := time.Since(started)

	if s.telemetry != nil {
		s.telemetry.ObserveRun(string(result.Status), duration)
	}

	var sched *schedule.Schedule
	if result.Status == optimizer.StatusOk || result.Status == optimizer.StatusCancelled {
		if snap, buildErr := optimizer.Build(payload.input); buildErr == nil {
			sched = schedule.Build(snap, result.Genes)
		}
	}

	s.store.Complete(payload.runID, result, sched)
	log.Info("optimizer run finished", zap.String("status", string(result.Status)), zap.Duration("duration", duration))
	return nil
}
