package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the queue, the façade and the CLI.
// Packages wrap these so callers can branch with errors.Is:
//
//	return fmt.Errorf("offline: submit %s: %w", t, domain.ErrNoExecutor)
var (
	// ErrNoExecutor indicates no executor is registered for an action type.
	ErrNoExecutor = errors.New("no executor registered")

	// ErrStorageUnavailable indicates the durable action store could not
	// be opened and the process is running without durability.
	ErrStorageUnavailable = errors.New("durable storage unavailable")

	// ErrUnknownActionType indicates a type outside the closed ActionType set.
	ErrUnknownActionType = errors.New("unknown action type")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the server throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrConflict indicates the server rejected a state transition.
	ErrConflict = errors.New("conflict")
)

// ExecError is the structured failure returned by executors. Retryable
// is set explicitly by the executor, so the queue never has to guess
// from error text whether a failure is worth another attempt.
type ExecError struct {
	Retryable bool
	Err       error
}

func (e *ExecError) Error() string {
	kind := "terminal"
	if e.Retryable {
		kind = "retryable"
	}
	if e.Err == nil {
		return kind + " failure"
	}
	return fmt.Sprintf("%s failure: %v", kind, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Retryable marks err as a transient failure. A nil err yields nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &ExecError{Retryable: true, Err: err}
}

// Terminal marks err as a domain rejection that must not be retried.
// A nil err yields nil.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &ExecError{Retryable: false, Err: err}
}
