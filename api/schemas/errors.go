// File: api/schemas/errors.go
package schemas

import (
	"errors"
	"fmt"
)

var (
	// ErrHealingDisabled is returned when healing is invoked while the
	// project's healing configuration disables it. No attempt is recorded.
	ErrHealingDisabled = errors.New("locator self-healing is disabled in the project configuration")

	// ErrObjectNotFound is returned by an ObjectRepository when the named
	// test object does not exist.
	ErrObjectNotFound = errors.New("test object not found in repository")
)

// ValidationError reports malformed or nonexistent input. It is surfaced
// before any subprocess is started and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SpawnError reports that the external runner process could not start.
type SpawnError struct {
	Executable string
	Cause      error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start runner %q: %v", e.Executable, e.Cause)
}

func (e *SpawnError) Unwrap() error { return e.Cause }

// TimeoutError reports that a run exceeded its wall-clock bound. The process
// has been killed and the run removed from the live table by the time the
// caller sees this error.
type TimeoutError struct {
	RunID   string
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("run %s exceeded the %s execution timeout and was killed", e.RunID, e.Timeout)
}
