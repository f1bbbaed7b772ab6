package fluid

import "fmt"

// ComputationError wraps a failure reported by the Thermodynamics backend.
// The train solver (package train) returns it to its caller as an error; it
// does not turn it into an invalid Result. It is never retried (spec §4.1,
// §7).
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("fluid: %s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
