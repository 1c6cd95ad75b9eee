package interp

import (
	"fmt"

	"github.com/cwbudde/go-oberon/pkg/token"
)

// RuntimeError aborts evaluation. Division by zero, subscripts outside
// [0, dim), missing storage, and internal invariant violations (an AST
// shape that should not have survived analysis) all surface as one of
// these rather than as silent misbehavior.
type RuntimeError struct {
	Message string
	Pos     token.Position
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Message, e.Pos.Line, e.Pos.Column)
}

// newRuntimeError creates a RuntimeError at the given position.
func newRuntimeError(pos token.Position, format string, args ...any) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Pos: pos}
}

// returnSignal unwinds a procedure body when a RETURN statement executes.
// It travels as an error value and is absorbed at the call boundary.
type returnSignal struct {
	value Value // nil for a bare RETURN
}

// Error implements the error interface; a returnSignal escaping past a
// call boundary is a bug.
func (r *returnSignal) Error() string {
	return "RETURN outside of a procedure"
}
