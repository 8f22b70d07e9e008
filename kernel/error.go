package kernel

import (
	"errors"
	"fmt"
)

// ErrUnitNotFound indicates that the target of an operation has terminated,
// or never existed.
var ErrUnitNotFound = errors.New("execution unit not found")

// ErrKernelStopped indicates that the kernel is shutting down and refuses
// new work.
var ErrKernelStopped = errors.New("kernel stopped")

// SpawnError indicates that the hosting environment refused to allocate a
// new execution unit.
type SpawnError struct {
	// ID is the partially allocated handle of the unit, retained for
	// diagnostic purposes. The unit it names was never started.
	ID UnitID

	// Cause is the reason the allocation was refused.
	Cause error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("unable to spawn unit #%d: %s", e.ID, e.Cause)
}

func (e *SpawnError) Unwrap() error {
	return e.Cause
}
