package codegen

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-oberon/internal/ast"
	"github.com/cwbudde/go-oberon/internal/lexer"
	"github.com/cwbudde/go-oberon/internal/parser"
	"github.com/cwbudde/go-oberon/internal/semantic"
)

// lower parses and analyzes a program, then returns the program and the
// shared procedure table.
func lower(t *testing.T, input string) (*ast.Program, *semantic.Analyzer) {
	t.Helper()
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser error: %v", errs[0])
	}
	if program == nil {
		t.Fatal("ParseProgram returned nil")
	}
	analyzer := semantic.NewAnalyzer()
	if diags := analyzer.Analyze(program); len(diags) > 0 {
		t.Fatalf("semantic error: %v", diags[0])
	}
	return program, analyzer
}

func emitIR(t *testing.T, input string) string {
	t.Helper()
	program, analyzer := lower(t, input)
	ir, err := NewEmitter(analyzer.Procedures()).EmitProgram(program)
	if err != nil {
		t.Fatalf("emit error: %v", err)
	}
	return ir
}

// mustContain checks each fragment appears in the IR, in order.
func mustContain(t *testing.T, output string, fragments ...string) {
	t.Helper()
	rest := output
	for _, frag := range fragments {
		idx := strings.Index(rest, frag)
		if idx < 0 {
			t.Fatalf("expected output to contain %q (in order).\noutput:\n%s", frag, output)
		}
		rest = rest[idx+len(frag):]
	}
}

func TestEmitHeaderAndMain(t *testing.T) {
	ir := emitIR(t, `MODULE Hello; VAR x: INTEGER; BEGIN x := 1; END Hello.`)
	mustContain(t, ir,
		`; ModuleID = "Hello"`,
		"declare i32 @printf(i8*, ...)",
		"define i32 @main() {",
		"entry:",
		"%x = alloca i32",
		"store i32 1, i32* %x",
		"ret i32 0",
	)
}

func TestEmitWriteFormats(t *testing.T) {
	ir := emitIR(t, `MODULE W;
VAR i: INTEGER;
VAR r: REAL;
VAR s: STRING;
BEGIN
Write(i);
Write(r);
Write(s);
WriteLn();
END W.`)
	mustContain(t, ir,
		"call i32 (i8*, ...) @printf",
	)
	for _, fragment := range []string{`c"%d\00"`, `c"%f\00"`, `c"%s\00"`, `c"\0A\00"`} {
		if !strings.Contains(ir, fragment) {
			t.Errorf("expected format constant %q in IR", fragment)
		}
	}
}

func TestStringLiteralsAreInternedOnce(t *testing.T) {
	ir := emitIR(t, `MODULE S;
BEGIN
Write("hi");
Write("hi");
Write("hi");
END S.`)
	if got := strings.Count(ir, `c"hi\00"`); got != 1 {
		t.Errorf("string literal should be emitted once, found %d copies", got)
	}
}

func TestEmitIfLabels(t *testing.T) {
	ir := emitIR(t, `MODULE I;
VAR x: INTEGER;
BEGIN
IF x > 0 THEN
x := 1;
ELSE
x := 2;
END;
END I.`)
	mustContain(t, ir,
		"icmp sgt i32",
		"zext i1",
		"icmp ne i32",
		"br i1",
		"then1:",
		"br label %endif",
		"else2:",
		"endif3:",
	)
}

func TestEmitWhileLabels(t *testing.T) {
	ir := emitIR(t, `MODULE W;
VAR n: INTEGER;
BEGIN
WHILE n > 0 DO
n := n - 1;
END;
END W.`)
	mustContain(t, ir,
		"while_start1:",
		"while_body2:",
		"br label %while_start1",
		"while_end3:",
	)
}

func TestEmitForLoop(t *testing.T) {
	ir := emitIR(t, `MODULE F;
VAR i, s: INTEGER;
BEGIN
FOR i := 1 TO 10 DO
s := s + i;
END;
END F.`)
	mustContain(t, ir,
		"store i32 1, i32* %i",
		"for_start1:",
		"icmp sle i32",
		"for_body2:",
		"add i32",
		"store i32",
		"br label %for_start1",
		"for_end3:",
	)
}

func TestEmitRealDivisionWidens(t *testing.T) {
	ir := emitIR(t, `MODULE D;
VAR x, y: INTEGER;
VAR r: REAL;
BEGIN
x := 7;
y := 2;
r := x / y;
END D.`)
	mustContain(t, ir,
		"sitofp i32",
		"fdiv double",
		"store double",
	)
}

func TestEmitIntegerOps(t *testing.T) {
	ir := emitIR(t, `MODULE O;
VAR a, b, c: INTEGER;
BEGIN
c := a + b;
c := a - b;
c := a * b;
c := a DIV b;
c := a MOD b;
c := a AND b;
c := a OR b;
END O.`)
	for _, inst := range []string{"add i32", "sub i32", "mul i32", "sdiv i32", "srem i32", "and i32", "or i32"} {
		if !strings.Contains(ir, inst) {
			t.Errorf("expected instruction %q in IR", inst)
		}
	}
}

func TestEmitProcedureAndCall(t *testing.T) {
	ir := emitIR(t, `MODULE P;
PROCEDURE Add(a: INTEGER; b: INTEGER): INTEGER;
BEGIN
result := a + b;
END Add;
PROCEDURE Greet;
BEGIN
Write("hi");
END Greet;
VAR n: INTEGER;
BEGIN
n := Add(2, 3);
Greet();
END P.`)
	mustContain(t, ir,
		"define i32 @Add(i32 %a, i32 %b) {",
		"%a.addr = alloca i32",
		"store i32 %a, i32* %a.addr",
		"%result = alloca i32",
		"ret i32",
		"define void @Greet() {",
		"ret void",
		"define i32 @main() {",
		"call i32 @Add(i32 2, i32 3)",
		"call void @Greet()",
	)
}

func TestEmitVarParameterAsPointer(t *testing.T) {
	ir := emitIR(t, `MODULE V;
PROCEDURE Bump(VAR x: INTEGER);
BEGIN
x := x + 1;
END Bump;
VAR k: INTEGER;
BEGIN
Bump(k);
END V.`)
	mustContain(t, ir,
		"define void @Bump(i32* %x) {",
		"call void @Bump(i32* %k)",
	)
}

func TestEmitArrayAccess(t *testing.T) {
	ir := emitIR(t, `MODULE A;
VAR a: ARRAY [10, 10] OF INTEGER;
VAR i, j: INTEGER;
BEGIN
a[i, j] := 5;
Write(a[3, 4]);
END A.`)
	mustContain(t, ir,
		"%a = alloca [100 x i32]",
		"mul i32",
		"add i32",
		"getelementptr inbounds [100 x i32], [100 x i32]* %a, i32 0, i32",
		"store i32 5",
	)
}

func TestEmitStringGlobalsTrailTheModule(t *testing.T) {
	ir := emitIR(t, `MODULE S;
VAR m: STRING;
BEGIN
m := "Hello, World!";
Write(m);
END S.`)
	mainIdx := strings.Index(ir, "define i32 @main()")
	strIdx := strings.Index(ir, `@.str1 = private constant [14 x i8] c"Hello, World!\00"`)
	if strIdx < 0 {
		t.Fatalf("expected interned hello constant, got:\n%s", ir)
	}
	if strIdx < mainIdx {
		t.Error("string constants must trail the function definitions")
	}
}

// TestEmissionIsDeterministic verifies that two independent emitter
// instances produce byte-identical artifacts for the same tree.
func TestEmissionIsDeterministic(t *testing.T) {
	input := `MODULE D;
VAR i, s: INTEGER;
VAR m: STRING;
BEGIN
m := "x";
FOR i := 1 TO 3 DO
s := s + i;
IF s > 2 THEN Write(s); ELSE Write(m); END;
END;
WriteLn();
END D.`

	program, analyzer := lower(t, input)
	first, err := NewEmitter(analyzer.Procedures()).EmitProgram(program)
	if err != nil {
		t.Fatalf("emit error: %v", err)
	}
	second, err := NewEmitter(analyzer.Procedures()).EmitProgram(program)
	if err != nil {
		t.Fatalf("emit error: %v", err)
	}
	if first != second {
		t.Error("repeated emission must produce identical artifacts")
	}
}

func TestEmitRejectsStringConcat(t *testing.T) {
	program, analyzer := lower(t, `MODULE S;
VAR m: STRING;
BEGIN
m := "a" + "b";
END S.`)
	if _, err := NewEmitter(analyzer.Procedures()).EmitProgram(program); err == nil {
		t.Error("expected the IR backend to reject string concatenation")
	}
}
