package booking

import (
	"errors"
	"fmt"
)

var (
	ErrBusy              = errors.New("a booking step is already in progress")
	ErrWrongStep         = errors.New("action is not available on the current step")
	ErrForwardNavigation = errors.New("only visited steps can be opened")
	ErrNoModelSelected   = errors.New("select a model to continue")
	ErrUnknownModel      = errors.New("model is not among the recommendations")
	ErrNoPackageSelected = errors.New("select a package to continue")
	ErrCompleted         = errors.New("booking is already paid")
)

// ValidationError is raised before any request is made and belongs next to Field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) UserMessage() string {
	return e.Message
}

// StepError is an upstream failure that left the wizard on Step with the error modal open.
type StepError struct {
	Step    Step
	Message string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("booking step %d: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (e *StepError) UserMessage() string {
	return e.Message
}
