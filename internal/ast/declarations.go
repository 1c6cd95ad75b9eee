package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/cwbudde/go-oberon/internal/types"
	"github.com/cwbudde/go-oberon/pkg/token"
)

// ConstDecl represents a constant declaration:
//
//	CONST limit := 100;
type ConstDecl struct {
	Token token.Token // The CONST token
	Name  string
	Value Expression
}

func (cd *ConstDecl) declarationNode()     {}
func (cd *ConstDecl) TokenLiteral() string { return cd.Token.Literal }
func (cd *ConstDecl) Pos() token.Position  { return cd.Token.Pos }
func (cd *ConstDecl) String() string {
	return "CONST " + cd.Name + " := " + cd.Value.String() + ";"
}

// VarDecl represents a variable declaration:
//
//	VAR x: INTEGER;
//	VAR a: ARRAY [10, 20] OF REAL;
//
// Dimensions is nil for scalars; for arrays it holds one size per axis
// and Type is the element type.
type VarDecl struct {
	Token      token.Token // The VAR token (or the name token inside a VAR block)
	Name       string
	Type       types.DataType
	Dimensions []int
}

func (vd *VarDecl) declarationNode()     {}
func (vd *VarDecl) TokenLiteral() string { return vd.Token.Literal }
func (vd *VarDecl) Pos() token.Position  { return vd.Token.Pos }
func (vd *VarDecl) IsArray() bool        { return len(vd.Dimensions) > 0 }
func (vd *VarDecl) String() string {
	var out bytes.Buffer

	out.WriteString("VAR " + vd.Name + ": ")
	if vd.IsArray() {
		dims := make([]string, len(vd.Dimensions))
		for i, d := range vd.Dimensions {
			dims[i] = strconv.Itoa(d)
		}
		out.WriteString("ARRAY [" + strings.Join(dims, ", ") + "] OF ")
	}
	out.WriteString(typeName(vd.Type))
	out.WriteString(";")

	return out.String()
}

// Parameter represents a single procedure parameter. ByRef parameters are
// declared with a leading VAR and share the caller's storage.
type Parameter struct {
	Token      token.Token // The name token
	Name       string
	Type       types.DataType
	ByRef      bool
	Dimensions []int // full dimension list for array parameters, nil otherwise
}

func (p *Parameter) TokenLiteral() string { return p.Token.Literal }
func (p *Parameter) Pos() token.Position  { return p.Token.Pos }
func (p *Parameter) String() string {
	var out bytes.Buffer

	if p.ByRef {
		out.WriteString("VAR ")
	}
	out.WriteString(p.Name + ": ")
	if len(p.Dimensions) > 0 {
		dims := make([]string, len(p.Dimensions))
		for i, d := range p.Dimensions {
			dims[i] = strconv.Itoa(d)
		}
		out.WriteString("ARRAY [" + strings.Join(dims, ", ") + "] OF ")
	}
	out.WriteString(typeName(p.Type))

	return out.String()
}

// ProcDecl represents a procedure declaration. A procedure with a declared
// ReturnType is a function and may be called in expression position.
type ProcDecl struct {
	Token         token.Token // The PROCEDURE token
	Name          string
	Parameters    []*Parameter
	ReturnType    *types.DataType // nil for proper procedures
	Declarations  []Declaration
	Statements    []Statement
}

func (pd *ProcDecl) declarationNode()     {}
func (pd *ProcDecl) TokenLiteral() string { return pd.Token.Literal }
func (pd *ProcDecl) Pos() token.Position  { return pd.Token.Pos }
func (pd *ProcDecl) String() string {
	var out bytes.Buffer

	out.WriteString("PROCEDURE " + pd.Name)
	if len(pd.Parameters) > 0 {
		params := make([]string, len(pd.Parameters))
		for i, p := range pd.Parameters {
			params[i] = p.String()
		}
		out.WriteString("(" + strings.Join(params, "; ") + ")")
	}
	if pd.ReturnType != nil {
		out.WriteString(": " + typeName(*pd.ReturnType))
	}
	out.WriteString(";\n")
	for _, decl := range pd.Declarations {
		out.WriteString(decl.String())
		out.WriteString("\n")
	}
	out.WriteString("BEGIN\n")
	for _, stmt := range pd.Statements {
		out.WriteString(stmt.String())
		out.WriteString("\n")
	}
	out.WriteString("END " + pd.Name + ";")

	return out.String()
}
