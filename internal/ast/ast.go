// Package ast defines the Abstract Syntax Tree node types for Oberon.
//
// The String methods print valid Oberon source: re-lexing and re-parsing a
// printed tree yields a structurally identical tree.
package ast

import (
	"bytes"
	"strings"

	"github.com/cwbudde/go-oberon/internal/types"
	"github.com/cwbudde/go-oberon/pkg/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	// TokenLiteral returns the literal value of the token this node is associated with.
	TokenLiteral() string

	// String returns the Oberon source form of the node.
	String() string

	// Pos returns the position of the node in the source code for error reporting.
	Pos() token.Position
}

// Expression represents any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement represents a node that performs an action but doesn't produce a value.
type Statement interface {
	Node
	statementNode()
}

// Declaration represents a CONST, VAR or PROCEDURE declaration.
type Declaration interface {
	Node
	declarationNode()
}

// Program is the root node: a single module with its declarations and body.
type Program struct {
	Token        token.Token // The MODULE token
	Name         string
	Declarations []Declaration
	Statements   []Statement
}

func (p *Program) TokenLiteral() string { return p.Token.Literal }
func (p *Program) Pos() token.Position  { return p.Token.Pos }
func (p *Program) String() string {
	var out bytes.Buffer

	out.WriteString("MODULE " + p.Name + ";\n")
	for _, decl := range p.Declarations {
		out.WriteString(decl.String())
		out.WriteString("\n")
	}
	out.WriteString("BEGIN\n")
	for _, stmt := range p.Statements {
		out.WriteString(stmt.String())
		out.WriteString("\n")
	}
	out.WriteString("END " + p.Name + ".\n")

	return out.String()
}

// Identifier represents a variable reference in an expression.
type Identifier struct {
	Token token.Token // The IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }
func (i *Identifier) Pos() token.Position  { return i.Token.Pos }

// IntegerLiteral represents an integer literal value.
type IntegerLiteral struct {
	Token token.Token // The INT_LIT token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }
func (il *IntegerLiteral) Pos() token.Position  { return il.Token.Pos }

// RealLiteral represents a real literal value.
type RealLiteral struct {
	Token token.Token // The REAL_LIT token
	Value float64
}

func (rl *RealLiteral) expressionNode()      {}
func (rl *RealLiteral) TokenLiteral() string { return rl.Token.Literal }
func (rl *RealLiteral) String() string       { return rl.Token.Literal }
func (rl *RealLiteral) Pos() token.Position  { return rl.Token.Pos }

// StringLiteral represents a double-quoted string literal.
type StringLiteral struct {
	Token token.Token // The STRING_LIT token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return "\"" + sl.Value + "\"" }
func (sl *StringLiteral) Pos() token.Position  { return sl.Token.Pos }

// BinaryExpression represents a binary operation (e.g., a + b, x < y).
type BinaryExpression struct {
	Token    token.Token // The operator token
	Left     Expression
	Operator string // +, -, *, /, DIV, MOD, =, #, <, <=, >, >=, AND, OR
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) Pos() token.Position  { return be.Token.Pos }
func (be *BinaryExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(be.Left.String())
	out.WriteString(" " + be.Operator + " ")
	out.WriteString(be.Right.String())
	out.WriteString(")")

	return out.String()
}

// UnaryExpression represents a unary sign operation (+x, -x).
type UnaryExpression struct {
	Token    token.Token // The operator token
	Operator string      // + or -
	Operand  Expression
}

func (ue *UnaryExpression) expressionNode()      {}
func (ue *UnaryExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UnaryExpression) Pos() token.Position  { return ue.Token.Pos }
func (ue *UnaryExpression) String() string {
	return "(" + ue.Operator + ue.Operand.String() + ")"
}

// IndexExpression represents array element access: a[i] or a[i, j].
type IndexExpression struct {
	Token   token.Token // The IDENT token of the array
	Name    string
	Indices []Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) Pos() token.Position  { return ie.Token.Pos }
func (ie *IndexExpression) String() string {
	indices := make([]string, len(ie.Indices))
	for i, idx := range ie.Indices {
		indices[i] = idx.String()
	}
	return ie.Name + "[" + strings.Join(indices, ", ") + "]"
}

// CallExpression represents a function call in expression position.
type CallExpression struct {
	Token     token.Token // The IDENT token of the callee
	Name      string
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Pos() token.Position  { return ce.Token.Pos }
func (ce *CallExpression) String() string {
	args := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = a.String()
	}
	return ce.Name + "(" + strings.Join(args, ", ") + ")"
}

// typeName returns the Oberon spelling of a scalar type.
func typeName(t types.DataType) string {
	return t.String()
}
