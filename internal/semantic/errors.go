package semantic

import (
	"fmt"

	"github.com/cwbudde/go-oberon/pkg/token"
)

// SemanticError is a single diagnostic with its source position. The
// analyzer accumulates these and reports them all; it is the only stage
// that continues past errors.
type SemanticError struct {
	Message string
	Pos     token.Position
}

// Error implements the error interface.
func (e *SemanticError) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Message, e.Pos.Line, e.Pos.Column)
}

// addError appends a diagnostic to the analyzer's list.
func (a *Analyzer) addError(pos token.Position, format string, args ...any) {
	a.errors = append(a.errors, &SemanticError{
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	})
}
