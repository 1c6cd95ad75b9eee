package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/go-oberon/internal/ast"
	"github.com/cwbudde/go-oberon/internal/semantic"
	"github.com/cwbudde/go-oberon/internal/types"
)

// cVar describes one name visible to the C emitter: its Oberon type, the
// array dimensions (nil for scalars), and whether the name is a pointer
// in the emitted C (VAR parameters and array parameters).
type cVar struct {
	typ     types.DataType
	dims    []int
	pointer bool
}

// CEmitter lowers a validated program to a self-contained C translation
// unit that prints the same output as the evaluator.
type CEmitter struct {
	lines      []string
	variables  map[string]cVar
	procedures map[string]*semantic.ProcedureInfo
	err        error
	indent     int
}

// NewCEmitter creates a CEmitter using the analyzer's procedure table for
// call return types.
func NewCEmitter(procedures map[string]*semantic.ProcedureInfo) *CEmitter {
	return &CEmitter{
		variables:  make(map[string]cVar),
		procedures: procedures,
	}
}

func (c *CEmitter) emit(line string) {
	if line == "" {
		c.lines = append(c.lines, "")
		return
	}
	c.lines = append(c.lines, strings.Repeat("    ", c.indent)+line)
}

func (c *CEmitter) emitf(format string, args ...any) {
	c.emit(fmt.Sprintf(format, args...))
}

func (c *CEmitter) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf(format, args...)
	}
}

// cType maps a scalar Oberon type to its C type.
func cType(t types.DataType) string {
	switch t {
	case types.REAL:
		return "double"
	case types.STRING:
		return "char *"
	default:
		return "int"
	}
}

// EmitProgram lowers the whole module to C source.
func (c *CEmitter) EmitProgram(program *ast.Program) (string, error) {
	c.emit("#include <stdio.h>")
	c.emit("#include <stdlib.h>")
	c.emit("#include <string.h>")
	c.emit("")

	var procs []*ast.ProcDecl
	for _, decl := range program.Declarations {
		if proc, ok := decl.(*ast.ProcDecl); ok {
			procs = append(procs, proc)
		}
	}

	for _, proc := range procs {
		c.emitf("%s;", c.prototype(proc))
	}
	if len(procs) > 0 {
		c.emit("")
	}

	for _, decl := range program.Declarations {
		switch d := decl.(type) {
		case *ast.VarDecl:
			c.emitVarDecl(d)
		case *ast.ConstDecl:
			c.emitConstDecl(d)
		}
	}
	c.emit("")

	for _, proc := range procs {
		c.emitProcedure(proc)
		c.emit("")
	}

	c.emit("int main() {")
	c.indent++
	for _, stmt := range program.Statements {
		c.emitCStatement(stmt)
	}
	c.emit("return 0;")
	c.indent--
	c.emit("}")

	if c.err != nil {
		return "", c.err
	}
	return strings.Join(c.lines, "\n") + "\n", nil
}

// prototype builds the C signature of a procedure.
func (c *CEmitter) prototype(proc *ast.ProcDecl) string {
	ret := "void"
	if proc.ReturnType != nil {
		ret = strings.TrimSpace(cType(*proc.ReturnType))
	}
	params := make([]string, len(proc.Parameters))
	for i, p := range proc.Parameters {
		base := cType(p.Type)
		if len(p.Dimensions) > 0 || p.ByRef {
			params[i] = fmt.Sprintf("%s*%s", ensureSpace(base), p.Name)
		} else {
			params[i] = fmt.Sprintf("%s%s", ensureSpace(base), p.Name)
		}
	}
	return fmt.Sprintf("%s %s(%s)", ret, proc.Name, strings.Join(params, ", "))
}

// ensureSpace guarantees a separator between the type and the name
// ("char *" already carries one).
func ensureSpace(t string) string {
	if strings.HasSuffix(t, " ") || strings.HasSuffix(t, "*") {
		return t
	}
	return t + " "
}

func (c *CEmitter) emitVarDecl(decl *ast.VarDecl) {
	if decl.IsArray() {
		dims := make([]string, len(decl.Dimensions))
		for i, d := range decl.Dimensions {
			dims[i] = "[" + strconv.Itoa(d) + "]"
		}
		c.emitf("%s%s%s;", ensureSpace(cType(decl.Type)), decl.Name, strings.Join(dims, ""))
		c.variables[decl.Name] = cVar{typ: decl.Type, dims: decl.Dimensions}
		return
	}
	c.emitf("%s%s;", ensureSpace(cType(decl.Type)), decl.Name)
	c.variables[decl.Name] = cVar{typ: decl.Type}
}

func (c *CEmitter) emitConstDecl(decl *ast.ConstDecl) {
	t := c.exprType(decl.Value)
	c.emitf("%s%s = %s;", ensureSpace(cType(t)), decl.Name, c.emitCExpression(decl.Value))
	c.variables[decl.Name] = cVar{typ: t}
}

func (c *CEmitter) emitProcedure(proc *ast.ProcDecl) {
	outer := c.variables
	c.variables = make(map[string]cVar)
	for name, v := range outer {
		c.variables[name] = v
	}

	for _, p := range proc.Parameters {
		c.variables[p.Name] = cVar{
			typ:     p.Type,
			dims:    p.Dimensions,
			pointer: len(p.Dimensions) > 0 || p.ByRef,
		}
	}

	c.emitf("%s {", c.prototype(proc))
	c.indent++

	if proc.ReturnType != nil {
		c.emitf("%sresult = %s;", ensureSpace(cType(*proc.ReturnType)), cZero(*proc.ReturnType))
		c.variables["result"] = cVar{typ: *proc.ReturnType}
	}
	for _, decl := range proc.Declarations {
		switch d := decl.(type) {
		case *ast.VarDecl:
			c.emitVarDecl(d)
		case *ast.ConstDecl:
			c.emitConstDecl(d)
		case *ast.ProcDecl:
			c.fail("nested procedure '%s' is not supported by the C backend", d.Name)
		}
	}

	for _, stmt := range proc.Statements {
		c.emitCStatement(stmt)
	}

	if proc.ReturnType != nil {
		c.emit("return result;")
	}
	c.indent--
	c.emit("}")

	c.variables = outer
}

// cZero returns the C zero value for a scalar type.
func cZero(t types.DataType) string {
	switch t {
	case types.REAL:
		return "0.0"
	case types.STRING:
		return "\"\""
	default:
		return "0"
	}
}

func (c *CEmitter) emitCStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.AssignmentStatement:
		c.emitf("%s = %s;", c.lvalue(s.Target), c.emitCExpression(s.Value))

	case *ast.ProcCallStatement:
		if s.Name == "Write" || s.Name == "WriteLn" {
			c.emitCWrite(s)
			return
		}
		proc, ok := c.procedures[s.Name]
		if !ok || proc.Decl == nil {
			c.fail("procedure '%s' not defined", s.Name)
			return
		}
		c.emitf("%s(%s);", s.Name, c.callArguments(proc.Decl, s.Arguments))

	case *ast.IfStatement:
		c.emitf("if (%s) {", c.emitCExpression(s.Condition))
		c.indent++
		c.emitCStatement(s.Then)
		c.indent--
		if s.Else != nil {
			c.emit("} else {")
			c.indent++
			c.emitCStatement(s.Else)
			c.indent--
		}
		c.emit("}")

	case *ast.WhileStatement:
		c.emitf("while (%s) {", c.emitCExpression(s.Condition))
		c.indent++
		for _, inner := range s.Body.Statements {
			c.emitCStatement(inner)
		}
		c.indent--
		c.emit("}")

	case *ast.ForStatement:
		loopVar := s.Variable
		if v, ok := c.variables[loopVar]; ok && v.pointer {
			loopVar = "(*" + loopVar + ")"
		}
		c.emitf("for (%s = %s; %s <= %s; %s++) {",
			loopVar, c.emitCExpression(s.Start), loopVar, c.emitCExpression(s.End), loopVar)
		c.indent++
		for _, inner := range s.Body.Statements {
			c.emitCStatement(inner)
		}
		c.indent--
		c.emit("}")

	case *ast.CompoundStatement:
		for _, inner := range s.Statements {
			c.emitCStatement(inner)
		}

	case *ast.ReturnStatement:
		if s.Value != nil {
			c.emitf("return %s;", c.emitCExpression(s.Value))
		} else if _, isFunc := c.variables["result"]; isFunc {
			c.emit("return result;")
		} else {
			c.emit("return;")
		}

	default:
		c.fail("statement lowering not implemented for %T", stmt)
	}
}

// emitCWrite lowers Write/WriteLn to printf calls, one per argument.
func (c *CEmitter) emitCWrite(stmt *ast.ProcCallStatement) {
	for _, arg := range stmt.Arguments {
		var format string
		switch c.exprType(arg) {
		case types.INTEGER:
			format = "%d"
		case types.REAL:
			format = "%f"
		default:
			format = "%s"
		}
		c.emitf("printf(\"%s\", %s);", format, c.emitCExpression(arg))
	}
	if stmt.Name == "WriteLn" {
		c.emit("printf(\"\\n\");")
	}
}

// lvalue renders an assignment target.
func (c *CEmitter) lvalue(target ast.Expression) string {
	switch t := target.(type) {
	case *ast.Identifier:
		if v, ok := c.variables[t.Value]; ok && v.pointer && len(v.dims) == 0 {
			return "(*" + t.Value + ")"
		}
		return t.Value
	case *ast.IndexExpression:
		return c.indexedAccess(t)
	}
	c.fail("invalid assignment target %T", target)
	return ""
}

// indexedAccess renders an array element access. Declared arrays use
// bracketed dimensions; flat pointer parameters use a row-major linear
// index computed from the recorded dimensions.
func (c *CEmitter) indexedAccess(expr *ast.IndexExpression) string {
	v, ok := c.variables[expr.Name]
	if !ok {
		c.fail("variable '%s' not declared", expr.Name)
		return expr.Name
	}
	if v.pointer {
		linear := c.emitCExpression(expr.Indices[0])
		for axis := 1; axis < len(expr.Indices) && axis < len(v.dims); axis++ {
			linear = fmt.Sprintf("(%s) * %d + %s", linear, v.dims[axis],
				c.emitCExpression(expr.Indices[axis]))
		}
		return fmt.Sprintf("%s[%s]", expr.Name, linear)
	}
	var out strings.Builder
	out.WriteString(expr.Name)
	for _, idx := range expr.Indices {
		out.WriteString("[" + c.emitCExpression(idx) + "]")
	}
	return out.String()
}

// callArguments renders a call argument list: VAR and array parameters
// receive addresses, scalars pass by value.
func (c *CEmitter) callArguments(decl *ast.ProcDecl, args []ast.Expression) string {
	parts := make([]string, 0, len(args))
	for i, arg := range args {
		var param *ast.Parameter
		if i < len(decl.Parameters) {
			param = decl.Parameters[i]
		}
		if param != nil && (param.ByRef || len(param.Dimensions) > 0) {
			parts = append(parts, c.addressOf(arg, param))
			continue
		}
		parts = append(parts, c.emitCExpression(arg))
	}
	return strings.Join(parts, ", ")
}

func (c *CEmitter) addressOf(arg ast.Expression, param *ast.Parameter) string {
	ident, ok := arg.(*ast.Identifier)
	if !ok {
		c.fail("VAR argument must be a variable")
		return ""
	}
	v, exists := c.variables[ident.Value]
	if !exists {
		c.fail("variable '%s' not declared", ident.Value)
		return ident.Value
	}
	if v.pointer {
		return ident.Value
	}
	if len(v.dims) > 0 {
		// Multi-dimensional arrays decay to a flat element pointer.
		return fmt.Sprintf("(%s*)%s", strings.TrimSpace(cType(v.typ)), ident.Value)
	}
	return "&" + ident.Value
}

// cOperators maps Oberon operators to their C spelling. AND and OR use
// the bitwise forms on the 0/1 encoding so that both operands are always
// evaluated, matching the evaluator and the IR backend.
var cOperators = map[string]string{
	"+": "+", "-": "-", "*": "*",
	"DIV": "/", "MOD": "%",
	"=": "==", "#": "!=", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
	"AND": "&", "OR": "|",
}

func (c *CEmitter) emitCExpression(expr ast.Expression) string {
	switch ex := expr.(type) {
	case *ast.IntegerLiteral:
		return strconv.FormatInt(ex.Value, 10)
	case *ast.RealLiteral:
		return formatReal(ex.Value)
	case *ast.StringLiteral:
		return strconv.Quote(ex.Value)

	case *ast.Identifier:
		if v, ok := c.variables[ex.Value]; ok && v.pointer && len(v.dims) == 0 {
			return "(*" + ex.Value + ")"
		}
		return ex.Value

	case *ast.IndexExpression:
		return c.indexedAccess(ex)

	case *ast.CallExpression:
		proc, ok := c.procedures[ex.Name]
		if !ok || proc.Decl == nil {
			c.fail("function '%s' not defined", ex.Name)
			return "0"
		}
		return fmt.Sprintf("%s(%s)", ex.Name, c.callArguments(proc.Decl, ex.Arguments))

	case *ast.BinaryExpression:
		left := c.emitCExpression(ex.Left)
		right := c.emitCExpression(ex.Right)
		if ex.Operator == "/" {
			return fmt.Sprintf("((double)(%s) / (double)(%s))", left, right)
		}
		if ex.Operator == "+" &&
			(c.exprType(ex.Left) == types.STRING || c.exprType(ex.Right) == types.STRING) {
			c.fail("string concatenation is not supported by the C backend")
			return "0"
		}
		op, ok := cOperators[ex.Operator]
		if !ok {
			c.fail("binary operator '%s' not supported", ex.Operator)
			return "0"
		}
		return fmt.Sprintf("(%s %s %s)", left, op, right)

	case *ast.UnaryExpression:
		return "(" + ex.Operator + c.emitCExpression(ex.Operand) + ")"
	}

	c.fail("expression lowering not implemented for %T", expr)
	return "0"
}

// exprType infers the Oberon type of an expression from the declared
// variables and the procedure table.
func (c *CEmitter) exprType(expr ast.Expression) types.DataType {
	switch ex := expr.(type) {
	case *ast.IntegerLiteral:
		return types.INTEGER
	case *ast.RealLiteral:
		return types.REAL
	case *ast.StringLiteral:
		return types.STRING
	case *ast.Identifier:
		if v, ok := c.variables[ex.Value]; ok {
			if len(v.dims) > 0 {
				return types.ARRAY
			}
			return v.typ
		}
		return types.INTEGER
	case *ast.IndexExpression:
		if v, ok := c.variables[ex.Name]; ok {
			return v.typ
		}
		return types.INTEGER
	case *ast.CallExpression:
		if proc, ok := c.procedures[ex.Name]; ok && proc.Decl != nil && proc.Decl.ReturnType != nil {
			return *proc.Decl.ReturnType
		}
		return types.INTEGER
	case *ast.BinaryExpression:
		switch ex.Operator {
		case "=", "#", "<", "<=", ">", ">=", "AND", "OR":
			return types.INTEGER
		}
		return types.ArithmeticResult(ex.Operator, c.exprType(ex.Left), c.exprType(ex.Right))
	case *ast.UnaryExpression:
		return c.exprType(ex.Operand)
	}
	return types.INTEGER
}
