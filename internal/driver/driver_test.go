package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInterpretPipeline(t *testing.T) {
	var out, errs bytes.Buffer
	err := CompileSource(
		`MODULE H; VAR m: STRING; BEGIN m := "Hello, World!"; Write(m); WriteLn(); END H.`,
		"hello.ob", "hello",
		Options{Interpret: true, Stdout: &out, Stderr: &errs},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v (stderr: %s)", err, errs.String())
	}
	if out.String() != "Hello, World!\n" {
		t.Errorf("expected hello output, got %q", out.String())
	}
}

func TestSemanticDiagnosticsAreAllReported(t *testing.T) {
	var out, errs bytes.Buffer
	err := CompileSource(`MODULE Bad;
VAR x: INTEGER;
VAR x: INTEGER;
VAR s: INTEGER;
BEGIN
s := "oops";
Foo(1);
END Bad.`, "bad.ob", "bad",
		Options{Interpret: true, Stdout: &out, Stderr: &errs})

	if err == nil {
		t.Fatal("expected the pipeline to fail")
	}
	if got := strings.Count(errs.String(), "Semantic error:"); got != 3 {
		t.Errorf("expected 3 semantic diagnostics, got %d:\n%s", got, errs.String())
	}
	if out.Len() != 0 {
		t.Errorf("the evaluator must not run after diagnostics, got output %q", out.String())
	}
}

func TestParseErrorStopsPipeline(t *testing.T) {
	var out, errs bytes.Buffer
	err := CompileSource(`MODULE A; BEGIN x := ; END A.`, "a.ob", "a",
		Options{Interpret: true, Stdout: &out, Stderr: &errs})
	if err == nil {
		t.Fatal("expected a parse failure")
	}
	if !strings.Contains(errs.String(), "Compilation error:") {
		t.Errorf("expected a Compilation error line, got:\n%s", errs.String())
	}
}

func TestRuntimeErrorSurfaces(t *testing.T) {
	var out, errs bytes.Buffer
	err := CompileSource(`MODULE D; VAR x, z: INTEGER; BEGIN z := 0; x := 1 DIV z; END D.`,
		"d.ob", "d", Options{Interpret: true, Stdout: &out, Stderr: &errs})
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	if !strings.Contains(errs.String(), "Error: division by zero") {
		t.Errorf("expected division-by-zero diagnostic, got:\n%s", errs.String())
	}
}

func TestCompileOnlyWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "prog")

	var out, errs bytes.Buffer
	err := CompileSource(`MODULE P; VAR x: INTEGER; BEGIN x := 1; Write(x); END P.`,
		"prog.ob", stem, Options{CompileOnly: true, Stdout: &out, Stderr: &errs})
	if err != nil {
		t.Fatalf("unexpected error: %v (stderr: %s)", err, errs.String())
	}

	ir, err := os.ReadFile(stem + ".ll")
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if !strings.Contains(string(ir), "define i32 @main()") {
		t.Error("artifact does not look like the expected IR")
	}
}

func TestCompileOnlyEmitC(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "prog")

	var out, errs bytes.Buffer
	err := CompileSource(`MODULE P; VAR x: INTEGER; BEGIN x := 1; Write(x); END P.`,
		"prog.ob", stem, Options{CompileOnly: true, EmitC: true, Stdout: &out, Stderr: &errs})
	if err != nil {
		t.Fatalf("unexpected error: %v (stderr: %s)", err, errs.String())
	}

	src, err := os.ReadFile(stem + ".c")
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if !strings.Contains(string(src), "#include <stdio.h>") {
		t.Error("artifact does not look like C source")
	}
}

// TestRepeatedCompilationIsStable guards the re-entrancy property: the
// same source compiled twice in one process yields identical artifacts.
func TestRepeatedCompilationIsStable(t *testing.T) {
	dir := t.TempDir()
	source := `MODULE R;
VAR i, s: INTEGER;
VAR m: STRING;
BEGIN
m := "x";
FOR i := 1 TO 3 DO
s := s + i;
END;
Write(s);
END R.`

	read := func(stem string) string {
		t.Helper()
		var out, errs bytes.Buffer
		if err := CompileSource(source, "r.ob", stem,
			Options{CompileOnly: true, Stdout: &out, Stderr: &errs}); err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		data, err := os.ReadFile(stem + ".ll")
		if err != nil {
			t.Fatalf("artifact missing: %v", err)
		}
		return string(data)
	}

	first := read(filepath.Join(dir, "one"))
	second := read(filepath.Join(dir, "two"))
	if first != second {
		t.Error("repeated compilation must produce identical artifacts")
	}
}
