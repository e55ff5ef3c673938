package primitives

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry and compiler misuse.
var (
	// ErrUnknownPrimitive is returned when an AST references a name the
	// registry has never seen. Fatal to one candidate only.
	ErrUnknownPrimitive = errors.New("unknown primitive")

	// ErrDuplicatePrimitive is returned when a name is registered twice.
	// The registry is append-only; names are never replaced.
	ErrDuplicatePrimitive = errors.New("primitive already registered")

	// ErrArityMismatch is returned when an Apply node's child count does
	// not match the registered arity of its operator.
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrArgRange is returned when a Var node indexes past the supplied
	// inputs. An explicit evaluation error, never a silent nil.
	ErrArgRange = errors.New("argument index out of range")
)

// EvalError is a runtime fault during interpretation. Search loops treat it
// as "this candidate does not match this example" and continue.
type EvalError struct {
	Op  string
	Err error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("eval %s: %v", e.Op, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

func evalErr(op string, err error) error {
	return &EvalError{Op: op, Err: err}
}

func evalErrf(op, format string, args ...interface{}) error {
	return &EvalError{Op: op, Err: fmt.Errorf(format, args...)}
}
