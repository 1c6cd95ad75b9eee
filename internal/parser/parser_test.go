package parser

import (
	"testing"

	"github.com/cwbudde/go-oberon/internal/ast"
	"github.com/cwbudde/go-oberon/internal/lexer"
	"github.com/cwbudde/go-oberon/internal/types"
)

// parseProgram is a test helper that parses source and fails the test on
// any lexical or syntax error.
func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input))
	program := p.ParseProgram()
	if err := p.LexError(); err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser error: %v", errs[0])
	}
	if program == nil {
		t.Fatal("ParseProgram returned nil")
	}
	return program
}

func TestParseModuleHeader(t *testing.T) {
	program := parseProgram(t, `MODULE Hello; BEGIN END Hello.`)
	if program.Name != "Hello" {
		t.Errorf("expected module name Hello, got %q", program.Name)
	}
	if len(program.Declarations) != 0 || len(program.Statements) != 0 {
		t.Errorf("expected empty module, got %d decls, %d stmts",
			len(program.Declarations), len(program.Statements))
	}
}

func TestModuleNameMismatch(t *testing.T) {
	p := New(lexer.New(`MODULE A; BEGIN END B.`))
	if program := p.ParseProgram(); program != nil {
		t.Fatal("expected nil program on module name mismatch")
	}
	if len(p.Errors()) == 0 {
		t.Fatal("expected a parse error")
	}
}

func TestParseVarDeclarations(t *testing.T) {
	program := parseProgram(t, `MODULE T;
VAR x, y: INTEGER;
    r: REAL;
    s: STRING;
VAR a: ARRAY [10] OF INTEGER;
    m: ARRAY [3, 4] OF REAL;
BEGIN
END T.`)

	if len(program.Declarations) != 6 {
		t.Fatalf("expected 6 declarations, got %d", len(program.Declarations))
	}

	tests := []struct {
		name string
		typ  types.DataType
		dims []int
	}{
		{"x", types.INTEGER, nil},
		{"y", types.INTEGER, nil},
		{"r", types.REAL, nil},
		{"s", types.STRING, nil},
		{"a", types.INTEGER, []int{10}},
		{"m", types.REAL, []int{3, 4}},
	}
	for i, tt := range tests {
		decl, ok := program.Declarations[i].(*ast.VarDecl)
		if !ok {
			t.Fatalf("declaration %d is %T, want *ast.VarDecl", i, program.Declarations[i])
		}
		if decl.Name != tt.name {
			t.Errorf("declaration %d: expected name %q, got %q", i, tt.name, decl.Name)
		}
		if decl.Type != tt.typ {
			t.Errorf("%s: expected type %s, got %s", tt.name, tt.typ, decl.Type)
		}
		if len(decl.Dimensions) != len(tt.dims) {
			t.Errorf("%s: expected %d dims, got %d", tt.name, len(tt.dims), len(decl.Dimensions))
			continue
		}
		for d, size := range tt.dims {
			if decl.Dimensions[d] != size {
				t.Errorf("%s: dim %d expected %d, got %d", tt.name, d, size, decl.Dimensions[d])
			}
		}
	}
}

func TestParseConstDeclaration(t *testing.T) {
	program := parseProgram(t, `MODULE T;
CONST limit := 100;
BEGIN
END T.`)

	decl, ok := program.Declarations[0].(*ast.ConstDecl)
	if !ok {
		t.Fatalf("expected *ast.ConstDecl, got %T", program.Declarations[0])
	}
	if decl.Name != "limit" {
		t.Errorf("expected name limit, got %q", decl.Name)
	}
	lit, ok := decl.Value.(*ast.IntegerLiteral)
	if !ok || lit.Value != 100 {
		t.Errorf("expected integer literal 100, got %v", decl.Value)
	}
}

func TestParseProcedureDeclaration(t *testing.T) {
	program := parseProgram(t, `MODULE T;
PROCEDURE Add(a: INTEGER; b: INTEGER): INTEGER;
BEGIN
result := a + b;
END Add;
PROCEDURE Swap(VAR x, y: INTEGER);
VAR tmp: INTEGER;
BEGIN
tmp := x;
x := y;
y := tmp;
END Swap;
BEGIN
END T.`)

	add, ok := program.Declarations[0].(*ast.ProcDecl)
	if !ok {
		t.Fatalf("expected *ast.ProcDecl, got %T", program.Declarations[0])
	}
	if add.Name != "Add" || len(add.Parameters) != 2 {
		t.Fatalf("Add: bad name/params: %s/%d", add.Name, len(add.Parameters))
	}
	if add.ReturnType == nil || *add.ReturnType != types.INTEGER {
		t.Errorf("Add: expected INTEGER return type")
	}
	if add.Parameters[0].ByRef {
		t.Errorf("Add: parameter a should be by value")
	}

	swap, ok := program.Declarations[1].(*ast.ProcDecl)
	if !ok {
		t.Fatalf("expected *ast.ProcDecl, got %T", program.Declarations[1])
	}
	if swap.ReturnType != nil {
		t.Errorf("Swap: expected no return type")
	}
	if len(swap.Parameters) != 2 || !swap.Parameters[0].ByRef || !swap.Parameters[1].ByRef {
		t.Errorf("Swap: both parameters should be VAR")
	}
	if len(swap.Declarations) != 1 {
		t.Errorf("Swap: expected 1 local declaration, got %d", len(swap.Declarations))
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"1 + 2 - 3", "((1 + 2) - 3)"},
		{"a DIV b MOD c", "((a DIV b) MOD c)"},
		{"1 < 2 = 3 > 4", "((1 < 2) = (3 > 4))"},
		{"a AND b OR c AND d", "((a AND b) OR (c AND d))"},
		{"a = b AND c # d", "((a = b) AND (c # d))"},
		{"-1 + 2", "((-1) + 2)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"x + f(y) * a[1]", "(x + (f(y) * a[1]))"},
		{"1 / 2 / 3", "((1 / 2) / 3)"},
	}

	for _, tt := range tests {
		program := parseProgram(t, "MODULE T; VAR q: INTEGER; BEGIN q := "+tt.input+"; END T.")
		stmt := program.Statements[0].(*ast.AssignmentStatement)
		if got := stmt.Value.String(); got != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestParseStatements(t *testing.T) {
	program := parseProgram(t, `MODULE T;
VAR i, s: INTEGER;
VAR a: ARRAY [10] OF INTEGER;
BEGIN
s := 0;
a[3] := 7;
IF s < 1 THEN
s := 1;
ELSE
s := 2;
END;
WHILE s > 0 DO
s := s - 1;
END;
FOR i := 1 TO 10 DO
s := s + i;
END;
WriteLn();
Write(s);
END T.`)

	wantTypes := []string{
		"*ast.AssignmentStatement",
		"*ast.AssignmentStatement",
		"*ast.IfStatement",
		"*ast.WhileStatement",
		"*ast.ForStatement",
		"*ast.ProcCallStatement",
		"*ast.ProcCallStatement",
	}
	if len(program.Statements) != len(wantTypes) {
		t.Fatalf("expected %d statements, got %d", len(wantTypes), len(program.Statements))
	}

	ifStmt := program.Statements[2].(*ast.IfStatement)
	if ifStmt.Else == nil {
		t.Error("IF: else branch missing")
	}
	forStmt := program.Statements[4].(*ast.ForStatement)
	if forStmt.Variable != "i" {
		t.Errorf("FOR: expected loop variable i, got %q", forStmt.Variable)
	}
	if len(forStmt.Body.Statements) != 1 {
		t.Errorf("FOR: expected 1 body statement, got %d", len(forStmt.Body.Statements))
	}
	call := program.Statements[5].(*ast.ProcCallStatement)
	if call.Name != "WriteLn" || len(call.Arguments) != 0 {
		t.Errorf("expected WriteLn(), got %s with %d args", call.Name, len(call.Arguments))
	}
}

func TestParseMultiDimensionalAccess(t *testing.T) {
	program := parseProgram(t, `MODULE T;
VAR a: ARRAY [10, 10] OF INTEGER;
VAR i, j: INTEGER;
BEGIN
a[i, j] := a[j, i] + 1;
END T.`)

	stmt := program.Statements[0].(*ast.AssignmentStatement)
	target := stmt.Target.(*ast.IndexExpression)
	if target.Name != "a" || len(target.Indices) != 2 {
		t.Fatalf("expected a[i, j] target, got %s with %d indices",
			target.Name, len(target.Indices))
	}
}

func TestParseReturnStatement(t *testing.T) {
	program := parseProgram(t, `MODULE T;
PROCEDURE F(x: INTEGER): INTEGER;
BEGIN
RETURN x * 2;
END F;
BEGIN
END T.`)

	proc := program.Declarations[0].(*ast.ProcDecl)
	ret, ok := proc.Statements[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("expected *ast.ReturnStatement, got %T", proc.Statements[0])
	}
	if ret.Value == nil {
		t.Error("RETURN: expected a value expression")
	}
}

func TestParseErrorsHaltAtFirst(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing semicolon", `MODULE T BEGIN END T.`},
		{"missing THEN", `MODULE T; BEGIN IF 1 x := 2; END; END T.`},
		{"missing module dot", `MODULE T; BEGIN END T`},
		{"bad declaration type", `MODULE T; VAR x: BOGUS; BEGIN END T.`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(lexer.New(tt.input))
			if program := p.ParseProgram(); program != nil {
				t.Fatal("expected nil program")
			}
			if len(p.Errors()) != 1 {
				t.Fatalf("parser should halt at the first error, got %d", len(p.Errors()))
			}
		})
	}
}

// TestRoundTrip checks the syntactic round-trip property: printing an
// accepted tree and re-parsing the output yields the same printed form.
func TestRoundTrip(t *testing.T) {
	sources := []string{
		`MODULE H; VAR m: STRING; BEGIN m := "Hello, World!"; Write(m); WriteLn(); END H.`,
		`MODULE A;
CONST limit := 10;
VAR x, y: INTEGER;
VAR a: ARRAY [5, 5] OF REAL;
PROCEDURE Fill(v: REAL);
VAR i, j: INTEGER;
BEGIN
FOR i := 0 TO 4 DO FOR j := 0 TO 4 DO a[i, j] := v; END; END;
END Fill;
BEGIN
x := limit DIV 2;
IF x > 3 THEN y := 1; ELSE y := 0 - 1; END;
WHILE y < x DO y := y + 1; END;
Fill(3.5);
Write(a[1, 2]);
END A.`,
		`MODULE R;
PROCEDURE F(n: INTEGER): INTEGER;
BEGIN
IF n <= 1 THEN RETURN 1; END;
RETURN n * F(n - 1);
END F;
BEGIN
Write(F(5));
END R.`,
	}

	for _, src := range sources {
		first := parseProgram(t, src)
		printed := first.String()
		second := parseProgram(t, printed)
		if second.String() != printed {
			t.Errorf("round-trip mismatch.\nfirst:\n%s\nsecond:\n%s", printed, second.String())
		}
	}
}
