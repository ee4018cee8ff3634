package optimizer

import "testing"

// buildSnapshot is a small test helper that fails the test via t.Fatalf on a
// Build error so scenario tests can stay terse; input validation is exercised
// through Run in run_test.go.
func buildSnapshot(t *testing.T, input SnapshotInput) *Snapshot {
	t.Helper()
	snap, err := Build(input)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return snap
}
