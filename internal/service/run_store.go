package service

import (
	"sync"
	"time"

	"github.com/noah-isme/uni-timetable-api/internal/optimizer"
	"github.com/noah-isme/uni-timetable-api/internal/schedule"
)

// RunState tracks an asynchronous optimization job's lifecycle, distinct
// from optimizer.Status which only describes a run that has actually
// finished evolving.
type RunState string

const (
	RunPending RunState = "pending"
	RunRunning RunState = "running"
	RunDone    RunState = "done"
)

// RunRecord is what the HTTP API observes for a submitted run: its
// lifecycle state, and once State is RunDone, the optimizer's terminal
// result plus the resolved Schedule it produced.
type RunRecord struct {
	RunID     string
	TermID    string
	State     RunState
	Result    *optimizer.RunResult
	Schedule  *schedule.Schedule
	QueuedAt  time.Time
	UpdatedAt time.Time
}

// RunStore is an in-memory, mutex-guarded registry of run records. Runs are
// not persisted across process restarts; a restarted server loses in-flight
// and historical run state, acceptable for a computation this cheap to
// resubmit.
type RunStore struct {
	mu      sync.RWMutex
	records map[string]*RunRecord
}

// NewRunStore builds an empty store.
func NewRunStore() *RunStore {
	return &RunStore{records: make(map[string]*RunRecord)}
}

// Create registers a new pending record for runID.
func (s *RunStore) Create(runID, termID string) *RunRecord {
	now := time.Now().UTC()
	record := &RunRecord{RunID: runID, TermID: termID, State: RunPending, QueuedAt: now, UpdatedAt: now}
	s.mu.Lock()
	s.records[runID] = record
	s.mu.Unlock()
	return record
}

// MarkRunning transitions a record to RunRunning.
func (s *RunStore) MarkRunning(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[runID]; ok {
		r.State = RunRunning
		r.UpdatedAt = time.Now().UTC()
	}
}

// Complete stores the terminal result and, when available, the resolved
// Schedule for runID.
func (s *RunStore) Complete(runID string, result optimizer.RunResult, sched *schedule.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[runID]; ok {
		r.State = RunDone
		r.Result = &result
		r.Schedule = sched
		r.UpdatedAt = time.Now().UTC()
	}
}

// Get returns the record for runID, if any.
func (s *RunStore) Get(runID string) (*RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[runID]
	return r, ok
}
