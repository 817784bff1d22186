package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// ErrMissingEnvironment is returned when an agent is constructed without a
// required environment.
var ErrMissingEnvironment = errors.New("missing required environment")

// InvariantViolation is the panic value raised by Invariant. It carries the
// location of the failed assertion.
type InvariantViolation struct {
	Message string
	File    string
	Line    int
}

// Error implements error.
func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated at %s:%d: %s", v.File, v.Line, v.Message)
}

// Invariant panics with an *InvariantViolation when cond is false. It guards
// divisors and other values that are structurally guaranteed and must never
// silently turn into NaN or Inf.
func Invariant(cond bool, format string, args ...any) {
	if cond {
		return
	}
	v := &InvariantViolation{Message: fmt.Sprintf(format, args...)}
	if _, file, line, ok := runtime.Caller(1); ok {
		v.File = filepath.Base(file)
		v.Line = line
	}
	panic(v)
}

// AsInvariantViolation reports whether a recovered panic value is an invariant
// violation.
func AsInvariantViolation(r any) (*InvariantViolation, bool) {
	v, ok := r.(*InvariantViolation)
	return v, ok
}
