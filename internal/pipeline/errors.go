package pipeline

import (
	"errors"
	"fmt"
)

var ErrNoTimesteps = errors.New("pipeline: field has no timesteps")

// InputError is a problem with a variable's input data: unknown alias,
// missing field, or an unreadable timestep. It is fatal for that variable
// only.
type InputError struct {
	Alias string
	Field string
	Err   error
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("pipeline: %s: %v", e.Alias, e.Err)
	}
	return fmt.Sprintf("pipeline: %s (%s): %v", e.Alias, e.Field, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
