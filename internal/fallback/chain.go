// Package fallback runs an ordered list of alternatives and keeps the first
// one that succeeds.
package fallback

import (
	"errors"
	"fmt"
)

// ErrExhausted is returned when every attempt failed.
var ErrExhausted = errors.New("fallback: all attempts failed")

// Attempt is one named alternative.
type Attempt[T any] struct {
	Name string
	Run  func() (T, error)
}

// Outcome is the value produced by the winning attempt.
type Outcome[T any] struct {
	Value T
	// Name of the attempt that produced Value.
	Name string
	// Failures of the attempts tried before the winner, in order.
	Failures []Failure
}

type Failure struct {
	Name string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Name, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// First tries attempts in order and returns the first success. A panicking
// attempt counts as a failure of that attempt. When all attempts fail the
// returned error wraps ErrExhausted and every individual failure.
func First[T any](attempts ...Attempt[T]) (Outcome[T], error) {
	var outcome Outcome[T]
	for _, attempt := range attempts {
		value, err := run(attempt)
		if err == nil {
			outcome.Value = value
			outcome.Name = attempt.Name
			return outcome, nil
		}
		outcome.Failures = append(outcome.Failures, Failure{Name: attempt.Name, Err: err})
	}

	errs := make([]error, 0, len(outcome.Failures)+1)
	errs = append(errs, ErrExhausted)
	for _, f := range outcome.Failures {
		errs = append(errs, f)
	}
	return outcome, errors.Join(errs...)
}

func run[T any](attempt Attempt[T]) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if attempt.Run == nil {
		return value, errors.New("no run function")
	}
	return attempt.Run()
}
