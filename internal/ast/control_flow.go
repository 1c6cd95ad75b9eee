package ast

import (
	"bytes"

	"github.com/cwbudde/go-oberon/pkg/token"
)

// IfStatement represents `IF cond THEN stmt [ELSE stmt] END;`.
// Each branch holds a single statement.
type IfStatement struct {
	Token     token.Token // The IF token
	Condition Expression
	Then      Statement
	Else      Statement // nil when there is no ELSE branch
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Pos() token.Position  { return is.Token.Pos }
func (is *IfStatement) String() string {
	var out bytes.Buffer

	out.WriteString("IF " + is.Condition.String() + " THEN\n")
	out.WriteString(is.Then.String())
	out.WriteString("\n")
	if is.Else != nil {
		out.WriteString("ELSE\n")
		out.WriteString(is.Else.String())
		out.WriteString("\n")
	}
	out.WriteString("END;")

	return out.String()
}

// WhileStatement represents `WHILE cond DO stmts END;`.
// The parser always wraps the body in a CompoundStatement.
type WhileStatement struct {
	Token     token.Token // The WHILE token
	Condition Expression
	Body      *CompoundStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Pos() token.Position  { return ws.Token.Pos }
func (ws *WhileStatement) String() string {
	var out bytes.Buffer

	out.WriteString("WHILE " + ws.Condition.String() + " DO\n")
	for _, stmt := range ws.Body.Statements {
		out.WriteString(stmt.String())
		out.WriteString("\n")
	}
	out.WriteString("END;")

	return out.String()
}

// ForStatement represents `FOR i := start TO end DO stmts END;`.
// The loop counts upward by one and the body executes max(0, end-start+1)
// times. The parser always wraps the body in a CompoundStatement.
type ForStatement struct {
	Token    token.Token // The FOR token
	Variable string
	Start    Expression
	End      Expression
	Body     *CompoundStatement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Pos() token.Position  { return fs.Token.Pos }
func (fs *ForStatement) String() string {
	var out bytes.Buffer

	out.WriteString("FOR " + fs.Variable + " := " + fs.Start.String())
	out.WriteString(" TO " + fs.End.String() + " DO\n")
	for _, stmt := range fs.Body.Statements {
		out.WriteString(stmt.String())
		out.WriteString("\n")
	}
	out.WriteString("END;")

	return out.String()
}
