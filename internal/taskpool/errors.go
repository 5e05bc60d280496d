package taskpool

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolStopped is returned by Submit once Shutdown has begun.
	ErrPoolStopped = errors.New("taskpool: pool stopped")

	// ErrInvalidWorkers indicates a worker count below one.
	ErrInvalidWorkers = errors.New("taskpool: worker count must be at least 1")
)

// PanicError carries a value recovered from a panicking job.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("taskpool: job panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
