package optimizer

import "fmt"

// FailureKind classifies why a run did not produce an Ok result, mirroring
// pkg/errors.Kind so a transport can map it straight onto an HTTP status.
type FailureKind string

const (
	MissingInputs  FailureKind = "missing_inputs"
	InfeasibleSeed FailureKind = "infeasible_seed"
	Internal       FailureKind = "internal"
)

// FailureInfo carries the kind plus an optional human message for a Failed result.
type FailureInfo struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f FailureInfo) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func errMissingInputs(msg string) error {
	return FailureInfo{Kind: MissingInputs, Message: msg}
}
