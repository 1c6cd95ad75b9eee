package ast

import (
	"bytes"
	"strings"

	"github.com/cwbudde/go-oberon/pkg/token"
)

// AssignmentStatement represents `x := expr;` or `a[i, j] := expr;`.
// Target is an *Identifier or an *IndexExpression.
type AssignmentStatement struct {
	Token  token.Token // The := token
	Target Expression
	Value  Expression
}

func (as *AssignmentStatement) statementNode()       {}
func (as *AssignmentStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignmentStatement) Pos() token.Position  { return as.Token.Pos }
func (as *AssignmentStatement) String() string {
	return as.Target.String() + " := " + as.Value.String() + ";"
}

// ProcCallStatement represents a procedure call in statement position.
type ProcCallStatement struct {
	Token     token.Token // The IDENT token of the callee
	Name      string
	Arguments []Expression
}

func (pc *ProcCallStatement) statementNode()       {}
func (pc *ProcCallStatement) TokenLiteral() string { return pc.Token.Literal }
func (pc *ProcCallStatement) Pos() token.Position  { return pc.Token.Pos }
func (pc *ProcCallStatement) String() string {
	args := make([]string, len(pc.Arguments))
	for i, a := range pc.Arguments {
		args[i] = a.String()
	}
	return pc.Name + "(" + strings.Join(args, ", ") + ");"
}

// CompoundStatement represents an explicit BEGIN ... END block.
type CompoundStatement struct {
	Token      token.Token // The BEGIN token
	Statements []Statement
}

func (cs *CompoundStatement) statementNode()       {}
func (cs *CompoundStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *CompoundStatement) Pos() token.Position  { return cs.Token.Pos }
func (cs *CompoundStatement) String() string {
	var out bytes.Buffer

	out.WriteString("BEGIN\n")
	for _, stmt := range cs.Statements {
		out.WriteString(stmt.String())
		out.WriteString("\n")
	}
	out.WriteString("END")

	return out.String()
}

// ReturnStatement represents `RETURN;` or `RETURN expr;`.
type ReturnStatement struct {
	Token token.Token // The RETURN token
	Value Expression  // nil for a bare RETURN
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Pos() token.Position  { return rs.Token.Pos }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "RETURN;"
	}
	return "RETURN " + rs.Value.String() + ";"
}
