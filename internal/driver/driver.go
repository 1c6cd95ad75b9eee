// Package driver wires the compilation pipeline: read source, lex, parse,
// analyze, then either run the evaluator or lower to an artifact and
// optionally hand it to an external toolchain.
//
// The driver is the only stage that touches the filesystem. Each
// invocation builds fresh lexer, parser, analyzer, evaluator and emitter
// instances, so repeated compilations in one process never share state.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cwbudde/go-oberon/internal/ast"
	"github.com/cwbudde/go-oberon/internal/codegen"
	"github.com/cwbudde/go-oberon/internal/interp"
	"github.com/cwbudde/go-oberon/internal/parser"
	"github.com/cwbudde/go-oberon/internal/semantic"

	oberrors "github.com/cwbudde/go-oberon/internal/errors"
	oblexer "github.com/cwbudde/go-oberon/internal/lexer"
)

// executeTimeout bounds the wall-clock time of an externally executed
// compiled binary.
const executeTimeout = 10 * time.Second

// Options selects the pipeline backend and output handling.
type Options struct {
	Interpret   bool      // run the evaluator instead of building
	CompileOnly bool      // emit the artifact only; skip the external toolchain
	EmitC       bool      // emit C source instead of the IR
	Execute     bool      // run the built binary; without Output it is built in a temp dir that is removed afterwards
	Output      string    // rename the produced executable
	Stdout      io.Writer // program output and progress messages
	Stderr      io.Writer // diagnostics
}

func (o *Options) stdout() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}
	return os.Stdout
}

func (o *Options) stderr() io.Writer {
	if o.Stderr != nil {
		return o.Stderr
	}
	return os.Stderr
}

// CompileFile runs the pipeline on a source file. Diagnostics go to
// Stderr one per line; a non-nil return means the process should exit
// non-zero.
func CompileFile(filename string, opts Options) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(opts.stderr(), "Error: cannot read file %s: %v\n", filename, err)
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	return CompileSource(string(content), filename, stem, opts)
}

// CompileSource runs the pipeline on in-memory source. stem is the
// artifact path without extension.
func CompileSource(source, filename, stem string, opts Options) error {
	program, analyzer, err := Analyze(source, filename, opts.stderr())
	if err != nil {
		return err
	}

	if opts.Interpret {
		return runInterpreter(program, analyzer, opts)
	}
	return compile(program, analyzer, stem, opts)
}

// Analyze runs the front half of the pipeline (lex, parse, analyze) and
// reports diagnostics to errout. The analyzer is the only stage that
// accumulates: lex and parse failures halt immediately.
func Analyze(source, filename string, errout io.Writer) (*ast.Program, *semantic.Analyzer, error) {
	l := oblexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	if lexErr := p.LexError(); lexErr != nil {
		fmt.Fprintf(errout, "Compilation error: %s\n", lexErr.Error())
		fmt.Fprintln(errout, oberrors.NewCompilerError(lexErr.Pos, lexErr.Message, source, filename).Format(false))
		return nil, nil, fmt.Errorf("lexing failed: %s", lexErr.Message)
	}
	if errs := p.Errors(); len(errs) > 0 {
		first := errs[0]
		fmt.Fprintf(errout, "Compilation error: %s\n", first.Error())
		fmt.Fprintln(errout, oberrors.NewCompilerError(first.Pos, first.Message, source, filename).Format(false))
		return nil, nil, fmt.Errorf("parsing failed: %s", first.Message)
	}
	if program == nil {
		fmt.Fprintln(errout, "Compilation error: no program")
		return nil, nil, fmt.Errorf("parsing failed")
	}

	analyzer := semantic.NewAnalyzer()
	if diags := analyzer.Analyze(program); len(diags) > 0 {
		for _, diag := range diags {
			fmt.Fprintf(errout, "Semantic error: %s\n", diag.Error())
		}
		return nil, nil, fmt.Errorf("semantic analysis failed with %d error(s)", len(diags))
	}
	return program, analyzer, nil
}

// runInterpreter executes the program with the tree-walking evaluator.
func runInterpreter(program *ast.Program, analyzer *semantic.Analyzer, opts Options) error {
	interpreter := interp.New(opts.stdout())
	if err := interpreter.Run(program, analyzer.Procedures()); err != nil {
		fmt.Fprintf(opts.stderr(), "Error: %s\n", err.Error())
		return err
	}
	return nil
}

// compile lowers the program, writes the artifact, and unless
// CompileOnly is set hands it to clang. When the toolchain is missing or
// fails, the driver falls back to the evaluator and says so.
func compile(program *ast.Program, analyzer *semantic.Analyzer, stem string, opts Options) error {
	artifact := stem + ".ll"
	var code string
	var err error
	if opts.EmitC {
		artifact = stem + ".c"
		code, err = codegen.NewCEmitter(analyzer.Procedures()).EmitProgram(program)
	} else {
		code, err = codegen.NewEmitter(analyzer.Procedures()).EmitProgram(program)
	}
	if err != nil {
		fmt.Fprintf(opts.stderr(), "Compilation error: %s\n", err.Error())
		return err
	}

	if err := os.WriteFile(artifact, []byte(code), 0o644); err != nil {
		fmt.Fprintf(opts.stderr(), "Error: cannot write %s: %v\n", artifact, err)
		return err
	}
	fmt.Fprintf(opts.stdout(), "Wrote %s\n", artifact)

	if opts.CompileOnly {
		return nil
	}

	clang, err := exec.LookPath("clang")
	if err != nil {
		fmt.Fprintf(opts.stdout(), "'clang' not found in PATH.\nFalling back to interpreter mode.\n")
		return runInterpreter(program, analyzer, opts)
	}

	exePath := opts.Output
	var tempDir string
	if opts.Execute && exePath == "" {
		// Compile-and-run builds into a temp dir so the binary never
		// outlives the run.
		tempDir, err = os.MkdirTemp("", "oberon-run-")
		if err != nil {
			fmt.Fprintf(opts.stderr(), "Error: %v\n", err)
			return err
		}
		defer os.RemoveAll(tempDir)
		exePath = filepath.Join(tempDir, filepath.Base(stem))
	}
	if exePath == "" {
		exePath = stem
	}
	if runtime.GOOS == "windows" && !strings.HasSuffix(exePath, ".exe") {
		exePath += ".exe"
	}

	build := exec.Command(clang, artifact, "-o", exePath)
	output, err := build.CombinedOutput()
	if err != nil {
		fmt.Fprintf(opts.stderr(), "Error: clang failed: %s\n", strings.TrimSpace(string(output)))
		fmt.Fprintln(opts.stdout(), "Falling back to interpreter mode.")
		return runInterpreter(program, analyzer, opts)
	}
	fmt.Fprintf(opts.stdout(), "Successfully created executable: %s\n", exePath)

	if opts.Execute {
		return ExecuteBinary(exePath, opts.stdout(), opts.stderr())
	}
	return nil
}

// ExecuteBinary runs a compiled program with the 10-second wall-clock
// ceiling, streaming its output to stdout.
func ExecuteBinary(path string, stdout, stderr io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), executeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		fmt.Fprintf(stderr, "Error: program timed out after %s\n", executeTimeout)
		return ctx.Err()
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: program failed: %v\n", err)
		return err
	}
	return nil
}
