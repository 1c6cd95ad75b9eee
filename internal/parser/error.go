package parser

import (
	"fmt"

	"github.com/cwbudde/go-oberon/pkg/token"
)

// ParseError is a syntax error with the offending token's position and a
// description of what was expected.
type ParseError struct {
	Message string
	Pos     token.Position
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Message, e.Pos.Line, e.Pos.Column)
}

// addError records the first syntax error. The parser halts at the first
// error; later calls are ignored.
func (p *Parser) addError(pos token.Position, format string, args ...any) {
	if len(p.errors) == 0 {
		p.errors = append(p.errors, &ParseError{
			Message: fmt.Sprintf(format, args...),
			Pos:     pos,
		})
	}
}

// peekError adds an error about an unexpected peek token.
func (p *Parser) peekError(t token.TokenType) {
	p.addError(p.peekToken.Pos, "expected next token to be %s, got %s instead",
		t, p.peekToken.Type)
}

// failed reports whether parsing has already hit an error.
func (p *Parser) failed() bool {
	return len(p.errors) > 0
}
