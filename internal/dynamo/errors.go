package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for scene and parameter operations.
var (
	// ErrUnknownParam indicates a parameter name the scene does not expose.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownScene indicates a scene name missing from the registry.
	ErrUnknownScene = errors.New("dynamo: unknown scene")

	// ErrInvalidState indicates a snapshot carrying NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// ParamError wraps a parameter failure with the offending name and value.
type ParamError struct {
	Scene   string
	Name    string
	Value   float64
	Wrapped error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s.%s=%g: %v", e.Scene, e.Name, e.Value, e.Wrapped)
}

func (e *ParamError) Unwrap() error {
	return e.Wrapped
}

// SimError records a failure observed at a given simulation time.
type SimError struct {
	Time    float64
	Step    int
	Message string
	Err     error
}

func (e SimError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, msg)
}

func (e SimError) Unwrap() error {
	return e.Err
}
