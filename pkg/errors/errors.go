package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Kind classifies a run failure the way RunResult.Failed reports it to callers,
// independent of the HTTP status a given transport chooses to map it to.
type Kind string

const (
	// KindMissingInputs means the Snapshot or RunConfig failed validation
	// before any generation ran (e.g. an empty teachers or courses table).
	KindMissingInputs Kind = "missing_inputs"
	// KindInfeasibleSeed means seeding placed no gene in any chromosome of
	// the initial population (e.g. a snapshot with no timings).
	KindInfeasibleSeed Kind = "infeasible_seed"
	// KindInternal covers anything unexpected, such as a bug or a
	// collaborator (loader, cache) error.
	KindInternal Kind = "internal"
)

// errKindStatus maps a Kind to the HTTP status cmd/server should report.
var errKindStatus = map[Kind]int{
	KindMissingInputs:  http.StatusBadRequest,
	KindInfeasibleSeed: http.StatusUnprocessableEntity,
	KindInternal:       http.StatusInternalServerError,
}

// NewKind builds an *Error carrying the given run-failure Kind as its Code,
// so appErrors.FromError on a transport boundary sees the same shape it
// already expects from request-level validation errors.
func NewKind(kind Kind, message string) *Error {
	status, ok := errKindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return New(string(kind), status, message)
}

// WrapKind attaches a Kind and underlying cause to an existing error.
func WrapKind(err error, kind Kind, message string) *Error {
	status, ok := errKindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return Wrap(err, string(kind), status, message)
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
