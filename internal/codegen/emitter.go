// Package codegen lowers a validated Oberon program to target code: a
// textual LLVM-style typed IR, or an equivalent C translation unit.
//
// Fresh value and label names come from counters owned by the emitter
// instance, so repeated compilations in one process produce identical,
// non-colliding artifacts.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/go-oberon/internal/ast"
	"github.com/cwbudde/go-oberon/internal/semantic"
	"github.com/cwbudde/go-oberon/internal/types"
)

// local describes one addressable name in the function being emitted:
// the IR pointer that backs it, the LLVM element type, the array
// dimensions (nil for scalars), and whether the pointer came in as a
// parameter (element pointer) rather than an alloca'd aggregate.
type local struct {
	ptr      string
	typ      string
	dims     []int
	indirect bool
}

// Emitter lowers a program to the textual IR. One instance per
// compilation; the name counters are instance state.
type Emitter struct {
	lines        []string
	globals      []string
	stringNames  map[string]string
	procedures   map[string]*semantic.ProcedureInfo
	locals       map[string]local
	err          error
	regCounter   int
	labelCounter int
}

// NewEmitter creates an Emitter using the analyzer's procedure table for
// call return types.
func NewEmitter(procedures map[string]*semantic.ProcedureInfo) *Emitter {
	return &Emitter{
		stringNames: make(map[string]string),
		procedures:  procedures,
		locals:      make(map[string]local),
	}
}

// newReg mints a fresh SSA value name (%t1, %t2, ...).
func (e *Emitter) newReg() string {
	e.regCounter++
	return fmt.Sprintf("%%t%d", e.regCounter)
}

// newLabel mints a fresh label with the given prefix. Every label takes
// the next counter value, so one IF yields then1, else2, endif3.
func (e *Emitter) newLabel(prefix string) string {
	e.labelCounter++
	return fmt.Sprintf("%s%d", prefix, e.labelCounter)
}

// emit appends one line to the output.
func (e *Emitter) emit(line string) {
	e.lines = append(e.lines, line)
}

func (e *Emitter) emitf(format string, args ...any) {
	e.emit(fmt.Sprintf(format, args...))
}

// fail records the first lowering error; emission continues but the
// result is discarded.
func (e *Emitter) fail(format string, args ...any) {
	if e.err == nil {
		e.err = fmt.Errorf(format, args...)
	}
}

// llvmType maps a scalar Oberon type to its IR type.
func llvmType(t types.DataType) string {
	switch t {
	case types.REAL:
		return "double"
	case types.STRING:
		return "i8*"
	default:
		return "i32"
	}
}

// internString returns the global name backing a string literal,
// creating the private constant on first use.
func (e *Emitter) internString(s string) string {
	if name, ok := e.stringNames[s]; ok {
		return name
	}
	name := fmt.Sprintf(".str%d", len(e.stringNames)+1)
	e.stringNames[s] = name
	data := append([]byte(s), 0)
	e.globals = append(e.globals, fmt.Sprintf("@%s = private constant [%d x i8] c\"%s\"",
		name, len(data), escapeBytes(data)))
	return name
}

// escapeBytes renders a byte string as a C-style escaped LLVM literal.
func escapeBytes(data []byte) string {
	var out strings.Builder
	for _, b := range data {
		if b >= 32 && b <= 126 && b != '"' && b != '\\' {
			out.WriteByte(b)
		} else {
			out.WriteString(fmt.Sprintf("\\%02X", b))
		}
	}
	return out.String()
}

// stringPointer emits the element-zero address computation for an
// interned string and returns the i8* register.
func (e *Emitter) stringPointer(s string) string {
	name := e.internString(s)
	size := len(s) + 1
	ptr := e.newReg()
	e.emitf("  %s = getelementptr inbounds [%d x i8], [%d x i8]* @%s, i32 0, i32 0",
		ptr, size, size, name)
	return ptr
}

// formatReal renders a float as an IR double constant (always with a
// decimal point or exponent).
func formatReal(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// EmitProgram lowers the whole module and returns the IR text: header,
// one function per procedure in source order, the main function, and the
// trailing interned string constants.
func (e *Emitter) EmitProgram(program *ast.Program) (string, error) {
	e.emitf("; ModuleID = %q", program.Name)
	e.emit("declare i32 @printf(i8*, ...)")
	e.emit("")

	for _, decl := range program.Declarations {
		if proc, ok := decl.(*ast.ProcDecl); ok {
			e.emitFunction(proc)
		}
	}

	e.emit("define i32 @main() {")
	e.emit("entry:")
	for _, decl := range program.Declarations {
		switch d := decl.(type) {
		case *ast.VarDecl:
			e.allocateVar(d)
		case *ast.ConstDecl:
			e.allocateConst(d)
		}
	}
	for _, stmt := range program.Statements {
		e.emitStatement(stmt)
	}
	e.emit("  ret i32 0")
	e.emit("}")

	e.emit("")
	e.lines = append(e.lines, e.globals...)

	if e.err != nil {
		return "", e.err
	}
	return strings.Join(e.lines, "\n") + "\n", nil
}

// allocateVar emits the stack slot for a variable declaration. Arrays
// flatten to a single row-major aggregate.
func (e *Emitter) allocateVar(decl *ast.VarDecl) {
	ty := llvmType(decl.Type)
	ptr := "%" + decl.Name
	if decl.IsArray() {
		total := 1
		for _, d := range decl.Dimensions {
			total *= d
		}
		e.emitf("  %s = alloca [%d x %s]", ptr, total, ty)
		e.locals[decl.Name] = local{ptr: ptr, typ: ty, dims: decl.Dimensions}
		return
	}
	e.emitf("  %s = alloca %s", ptr, ty)
	e.locals[decl.Name] = local{ptr: ptr, typ: ty}
}

// allocateConst emits a slot for a constant and stores its initializer.
// Constness is a front-end property; by now assignments to it have been
// rejected.
func (e *Emitter) allocateConst(decl *ast.ConstDecl) {
	val, ty := e.emitExpression(decl.Value)
	ptr := "%" + decl.Name
	e.emitf("  %s = alloca %s", ptr, ty)
	e.emitf("  store %s %s, %s* %s", ty, val, ty, ptr)
	e.locals[decl.Name] = local{ptr: ptr, typ: ty}
}

// paramType returns the IR type a parameter is passed as: arrays and VAR
// parameters travel as element pointers, everything else by value.
func paramType(p *ast.Parameter) string {
	ty := llvmType(p.Type)
	if len(p.Dimensions) > 0 || p.ByRef {
		return ty + "*"
	}
	return ty
}

// emitFunction lowers one procedure to an IR function definition.
func (e *Emitter) emitFunction(proc *ast.ProcDecl) {
	ret := "void"
	if proc.ReturnType != nil {
		ret = llvmType(*proc.ReturnType)
	}
	sig := make([]string, len(proc.Parameters))
	for i, p := range proc.Parameters {
		sig[i] = fmt.Sprintf("%s %%%s", paramType(p), p.Name)
	}
	e.emitf("define %s @%s(%s) {", ret, proc.Name, strings.Join(sig, ", "))
	e.emit("entry:")

	outerLocals := e.locals
	e.locals = make(map[string]local)

	for _, p := range proc.Parameters {
		ty := llvmType(p.Type)
		if len(p.Dimensions) > 0 || p.ByRef {
			// The incoming pointer already addresses the caller's
			// storage; loads and stores go straight through it.
			e.locals[p.Name] = local{ptr: "%" + p.Name, typ: ty, dims: p.Dimensions, indirect: true}
			continue
		}
		slot := fmt.Sprintf("%%%s.addr", p.Name)
		e.emitf("  %s = alloca %s", slot, ty)
		e.emitf("  store %s %%%s, %s* %s", ty, p.Name, ty, slot)
		e.locals[p.Name] = local{ptr: slot, typ: ty}
	}

	if proc.ReturnType != nil {
		ty := llvmType(*proc.ReturnType)
		e.emitf("  %%result = alloca %s", ty)
		e.emitf("  store %s %s, %s* %%result", ty, zeroValue(ty), ty)
		e.locals["result"] = local{ptr: "%result", typ: ty}
	}

	for _, decl := range proc.Declarations {
		switch d := decl.(type) {
		case *ast.VarDecl:
			e.allocateVar(d)
		case *ast.ConstDecl:
			e.allocateConst(d)
		case *ast.ProcDecl:
			e.fail("nested procedure '%s' is not supported by the IR backend", d.Name)
		}
	}

	for _, stmt := range proc.Statements {
		e.emitStatement(stmt)
	}

	if proc.ReturnType == nil {
		e.emit("  ret void")
	} else {
		ty := llvmType(*proc.ReturnType)
		reg := e.newReg()
		e.emitf("  %s = load %s, %s* %%result", reg, ty, ty)
		e.emitf("  ret %s %s", ty, reg)
	}
	e.emit("}")
	e.emit("")

	e.locals = outerLocals
}

// zeroValue returns the zero constant for an IR type.
func zeroValue(ty string) string {
	switch ty {
	case "double":
		return "0.0"
	case "i8*":
		return "null"
	default:
		return "0"
	}
}
