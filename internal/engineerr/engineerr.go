// Package engineerr marks the non-recoverable programming-error class of
// spec §7a (invariant violations such as non-monotone chart curves, a zero
// stage count, or a stream-rate vector whose length disagrees with the
// stream count). These are returned as ordinary Go errors — never swallowed
// into a per-point failure status — so a caller can tell a caller bug apart
// from an out-of-envelope operating point with errors.As.
package engineerr

import "fmt"

// InvariantError wraps an invariant violation discovered while constructing
// or evaluating an engine component.
type InvariantError struct {
	Component string
	Err       error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: invariant violated: %v", e.Component, e.Err)
}

func (e *InvariantError) Unwrap() error { return e.Err }

// New wraps err as an InvariantError attributed to component.
func New(component string, err error) error {
	return &InvariantError{Component: component, Err: err}
}

// Newf is the fmt.Errorf-style constructor.
func Newf(component, format string, args ...any) error {
	return &InvariantError{Component: component, Err: fmt.Errorf(format, args...)}
}
