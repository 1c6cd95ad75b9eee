package ast

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-oberon/internal/types"
	"github.com/cwbudde/go-oberon/pkg/token"
)

func TestProgramString(t *testing.T) {
	rt := types.INTEGER
	program := &Program{
		Token: token.NewToken(token.MODULE, "MODULE", token.Position{Line: 1, Column: 1}),
		Name:  "Demo",
		Declarations: []Declaration{
			&VarDecl{Name: "x", Type: types.INTEGER},
			&VarDecl{Name: "a", Type: types.REAL, Dimensions: []int{4, 2}},
			&ConstDecl{Name: "limit", Value: &IntegerLiteral{
				Token: token.NewToken(token.INT_LIT, "10", token.Position{}), Value: 10}},
			&ProcDecl{
				Name: "F",
				Parameters: []*Parameter{
					{Name: "n", Type: types.INTEGER},
					{Name: "r", Type: types.REAL, ByRef: true},
				},
				ReturnType: &rt,
			},
		},
		Statements: []Statement{
			&AssignmentStatement{
				Target: &Identifier{Value: "x"},
				Value:  &IntegerLiteral{Token: token.NewToken(token.INT_LIT, "1", token.Position{}), Value: 1},
			},
		},
	}

	out := program.String()
	for _, fragment := range []string{
		"MODULE Demo;",
		"VAR x: INTEGER;",
		"VAR a: ARRAY [4, 2] OF REAL;",
		"CONST limit := 10;",
		"PROCEDURE F(n: INTEGER; VAR r: REAL): INTEGER;",
		"x := 1;",
		"END Demo.",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("expected program string to contain %q, got:\n%s", fragment, out)
		}
	}
}

func TestExpressionStrings(t *testing.T) {
	expr := &BinaryExpression{
		Left: &UnaryExpression{
			Operator: "-",
			Operand:  &Identifier{Value: "x"},
		},
		Operator: "*",
		Right: &IndexExpression{
			Name: "a",
			Indices: []Expression{
				&Identifier{Value: "i"},
				&IntegerLiteral{Token: token.NewToken(token.INT_LIT, "2", token.Position{}), Value: 2},
			},
		},
	}
	if got := expr.String(); got != "((-x) * a[i, 2])" {
		t.Errorf("expected ((-x) * a[i, 2]), got %s", got)
	}

	call := &CallExpression{Name: "F", Arguments: []Expression{
		&StringLiteral{Token: token.NewToken(token.STRING_LIT, "hi", token.Position{}), Value: "hi"},
	}}
	if got := call.String(); got != `F("hi")` {
		t.Errorf("expected F(\"hi\"), got %s", got)
	}
}
