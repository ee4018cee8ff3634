package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/optimizer"
)

func TestRunStoreLifecycle(t *testing.T) {
	store := NewRunStore()

	record := store.Create("run-1", "2026-odd")
	require.Equal(t, RunPending, record.State)
	require.Equal(t, "2026-odd", record.TermID)

	store.MarkRunning("run-1")
	got, ok := store.Get("run-1")
	require.True(t, ok)
	assert.Equal(t, RunRunning, got.State)

	result := optimizer.RunResult{Status: optimizer.StatusOk, Fitness: 1}
	store.Complete("run-1", result, nil)
	got, ok = store.Get("run-1")
	require.True(t, ok)
	assert.Equal(t, RunDone, got.State)
	require.NotNil(t, got.Result)
	assert.Equal(t, optimizer.StatusOk, got.Result.Status)
	assert.False(t, got.UpdatedAt.Before(got.QueuedAt))
}

func TestRunStoreGetUnknownID(t *testing.T) {
	store := NewRunStore()
	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestRunStoreUpdatesToUnknownIDAreNoOps(t *testing.T) {
	store := NewRunStore()
	store.MarkRunning("missing")
	store.Complete("missing", optimizer.RunResult{}, nil)
	_, ok := store.Get("missing")
	assert.False(t, ok)
}
