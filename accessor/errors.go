package accessor

import (
	"errors"
	"fmt"
)

// Resolution errors returned by ReflectResolver.
var (
	// ErrNilTarget is returned when a member is read from a nil value.
	ErrNilTarget = errors.New("accessor: nil target")
	// ErrMemberNotFound indicates neither a field, a getter method nor a map entry matched.
	ErrMemberNotFound = errors.New("accessor: member not found")
	// ErrNotIndexable indicates the target is not an ordered container or map.
	ErrNotIndexable = errors.New("accessor: target is not indexable")
	// ErrIndexOutOfRange indicates an index outside the container bounds.
	ErrIndexOutOfRange = errors.New("accessor: index out of range")
	// ErrKeyNotFound indicates a keyed lookup for a key that is not present.
	ErrKeyNotFound = errors.New("accessor: key not found")
	// ErrMethodNotFound indicates the receiver has no method of that name.
	ErrMethodNotFound = errors.New("accessor: method not found")
	// ErrArgumentMismatch indicates the literal arguments do not fit the method signature.
	ErrArgumentMismatch = errors.New("accessor: argument mismatch")
	// ErrPanic wraps a panic raised while resolving a step.
	ErrPanic = errors.New("accessor: panic while resolving step")
)

// Evaluation errors.
var (
	// ErrIndexNotInteger indicates an index argument that is not an integer.
	ErrIndexNotInteger = errors.New("accessor: index argument is not an integer")
	// ErrNotLiteral indicates an argument that was not frozen into a literal.
	ErrNotLiteral = errors.New("accessor: argument is not a literal")
	// ErrNotNillable is returned by Get for result types that cannot represent absence.
	ErrNotNillable = errors.New("accessor: result type is not nillable; use GetValue")
	// ErrNotValueType is returned by GetValue for nillable result types.
	ErrNotValueType = errors.New("accessor: result type is nillable; use Get")
	// ErrResultType indicates the leaf value cannot be converted to the requested type.
	ErrResultType = errors.New("accessor: unexpected result type")
	// ErrNotAChain is returned by Describe for a path without steps.
	ErrNotAChain = errors.New("accessor: expression is not a chain")
)

// StepError reports a failure of the target operation of one step.
// Captured faults are attached to ChainPart.Fault and never returned;
// Member failures are returned with Captured unset.
type StepError struct {
	Step     string
	Err      error
	Captured bool
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ArgumentError reports an index or call argument whose own value could not
// be used. It always propagates to the caller.
type ArgumentError struct {
	Expr string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %s: %v", e.Expr, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}
