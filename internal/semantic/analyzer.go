// Package semantic implements the semantic analyzer: symbol tables with
// lexical scoping, the flat procedure table, and type checking.
//
// Unlike the other pipeline stages the analyzer accumulates diagnostics
// and keeps going, so a single run reports every problem it can find.
package semantic

import (
	"github.com/cwbudde/go-oberon/internal/ast"
	"github.com/cwbudde/go-oberon/internal/types"
	"github.com/cwbudde/go-oberon/pkg/token"
)

// Analyzer performs semantic analysis on an Oberon program. It validates
// types, checks for undefined names, and ensures type compatibility in
// expressions and statements.
type Analyzer struct {
	globals     *SymbolTable
	current     *SymbolTable
	procedures  map[string]*ProcedureInfo
	currentProc *ast.ProcDecl
	errors      []*SemanticError
	undefined   map[string]bool // names already reported as undefined
}

// NewAnalyzer creates a new semantic analyzer with the two built-in
// output procedures pre-registered.
func NewAnalyzer() *Analyzer {
	a := &Analyzer{
		globals:    NewSymbolTable(),
		procedures: make(map[string]*ProcedureInfo),
		undefined:  make(map[string]bool),
	}
	a.current = a.globals
	a.procedures["Write"] = &ProcedureInfo{Name: "Write", Builtin: true}
	a.procedures["WriteLn"] = &ProcedureInfo{Name: "WriteLn", Builtin: true}
	return a
}

// Errors returns the accumulated diagnostics in source order.
func (a *Analyzer) Errors() []*SemanticError {
	return a.errors
}

// Procedures returns the procedure table for use by the evaluator and the
// code generators.
func (a *Analyzer) Procedures() map[string]*ProcedureInfo {
	return a.procedures
}

// Globals returns the global symbol table.
func (a *Analyzer) Globals() *SymbolTable {
	return a.globals
}

// Analyze checks the whole program and returns the diagnostics. An empty
// slice means the program is well-typed.
func (a *Analyzer) Analyze(program *ast.Program) []*SemanticError {
	for _, decl := range program.Declarations {
		a.analyzeDeclaration(decl)
	}
	for _, stmt := range program.Statements {
		a.analyzeStatement(stmt)
	}
	return a.errors
}

func (a *Analyzer) analyzeDeclaration(decl ast.Declaration) {
	switch d := decl.(type) {
	case *ast.ConstDecl:
		a.analyzeConstDecl(d)
	case *ast.VarDecl:
		a.analyzeVarDecl(d)
	case *ast.ProcDecl:
		a.analyzeProcDecl(d)
	}
}

func (a *Analyzer) analyzeConstDecl(decl *ast.ConstDecl) {
	valueType, _ := a.analyzeExpression(decl.Value)
	sym := &Symbol{Name: decl.Name, Type: valueType, IsConst: true}
	sym.Value = literalValue(decl.Value)
	if err := a.current.Define(sym); err != nil {
		a.addError(decl.Pos(), "%s", err.Error())
	}
}

// literalValue extracts the compile-time value of a literal expression,
// or nil when the initializer is not a plain literal.
func literalValue(expr ast.Expression) any {
	switch lit := expr.(type) {
	case *ast.IntegerLiteral:
		return lit.Value
	case *ast.RealLiteral:
		return lit.Value
	case *ast.StringLiteral:
		return lit.Value
	}
	return nil
}

func (a *Analyzer) analyzeVarDecl(decl *ast.VarDecl) {
	sym := &Symbol{Name: decl.Name, Type: decl.Type}
	if decl.IsArray() {
		sym.Type = types.ARRAY
		sym.ElemType = decl.Type
		sym.Dims = decl.Dimensions
	}
	if err := a.current.Define(sym); err != nil {
		a.addError(decl.Pos(), "%s", err.Error())
	}
}

func (a *Analyzer) analyzeProcDecl(decl *ast.ProcDecl) {
	if _, exists := a.procedures[decl.Name]; exists {
		a.addError(decl.Pos(), "procedure '%s' already defined", decl.Name)
	} else {
		a.procedures[decl.Name] = &ProcedureInfo{Name: decl.Name, Decl: decl}
	}

	// The enclosing scope becomes the parent, so globals and the locals
	// of enclosing procedures stay visible.
	outer := a.current
	a.current = NewEnclosedSymbolTable(outer)
	prevProc := a.currentProc
	a.currentProc = decl

	for _, param := range decl.Parameters {
		sym := &Symbol{Name: param.Name, Type: param.Type}
		if len(param.Dimensions) > 0 {
			sym.Type = types.ARRAY
			sym.ElemType = param.Type
			sym.Dims = param.Dimensions
		}
		if err := a.current.Define(sym); err != nil {
			a.addError(param.Pos(), "%s", err.Error())
		}
	}

	// A declared return type introduces the result variable: assigning to
	// it is how a function yields its value.
	if decl.ReturnType != nil {
		if err := a.current.Define(&Symbol{Name: "result", Type: *decl.ReturnType}); err != nil {
			a.addError(decl.Pos(), "%s", err.Error())
		}
	}

	for _, local := range decl.Declarations {
		a.analyzeDeclaration(local)
	}
	for _, stmt := range decl.Statements {
		a.analyzeStatement(stmt)
	}

	a.currentProc = prevProc
	a.current = outer
}

func (a *Analyzer) analyzeStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.AssignmentStatement:
		a.analyzeAssignment(s)
	case *ast.ProcCallStatement:
		a.analyzeProcCall(s)
	case *ast.IfStatement:
		a.analyzeCondition(s.Condition, "IF")
		a.analyzeStatement(s.Then)
		if s.Else != nil {
			a.analyzeStatement(s.Else)
		}
	case *ast.WhileStatement:
		a.analyzeCondition(s.Condition, "WHILE")
		for _, inner := range s.Body.Statements {
			a.analyzeStatement(inner)
		}
	case *ast.ForStatement:
		a.analyzeFor(s)
	case *ast.CompoundStatement:
		for _, inner := range s.Statements {
			a.analyzeStatement(inner)
		}
	case *ast.ReturnStatement:
		a.analyzeReturn(s)
	}
}

func (a *Analyzer) analyzeCondition(cond ast.Expression, keyword string) {
	condType, ok := a.analyzeExpression(cond)
	if ok && condType != types.INTEGER {
		a.addError(cond.Pos(), "%s condition must be INTEGER, got %s", keyword, condType)
	}
}

func (a *Analyzer) analyzeAssignment(stmt *ast.AssignmentStatement) {
	switch target := stmt.Target.(type) {
	case *ast.Identifier:
		sym, ok := a.resolve(target.Value, target.Pos())
		if !ok {
			a.analyzeExpression(stmt.Value)
			return
		}
		if sym.IsConst {
			a.addError(target.Pos(), "cannot assign to constant '%s'", target.Value)
			return
		}
		valueType, ok := a.analyzeExpression(stmt.Value)
		if ok && !types.AssignableTo(sym.Type, valueType) {
			a.addError(stmt.Pos(), "cannot assign %s to %s variable '%s'",
				valueType, sym.Type, target.Value)
		}

	case *ast.IndexExpression:
		sym, ok := a.resolve(target.Name, target.Pos())
		if !ok {
			a.analyzeExpression(stmt.Value)
			return
		}
		if sym.IsConst {
			a.addError(target.Pos(), "cannot assign to constant '%s'", target.Name)
			return
		}
		if !a.checkIndexing(sym, target) {
			a.analyzeExpression(stmt.Value)
			return
		}
		valueType, ok := a.analyzeExpression(stmt.Value)
		if ok && !types.AssignableTo(sym.ElemType, valueType) {
			a.addError(stmt.Pos(), "cannot assign %s to %s array element of '%s'",
				valueType, sym.ElemType, target.Name)
		}

	default:
		a.addError(stmt.Pos(), "invalid assignment target")
	}
}

// checkIndexing validates that sym is an array, that the subscript arity
// matches the declared dimensions, and that every index is INTEGER.
func (a *Analyzer) checkIndexing(sym *Symbol, expr *ast.IndexExpression) bool {
	if sym.Type != types.ARRAY {
		a.addError(expr.Pos(), "'%s' is not an array", expr.Name)
		return false
	}
	if len(expr.Indices) != len(sym.Dims) {
		a.addError(expr.Pos(), "array '%s' has %d dimension(s), got %d subscript(s)",
			expr.Name, len(sym.Dims), len(expr.Indices))
		return false
	}
	ok := true
	for _, idx := range expr.Indices {
		idxType, idxOK := a.analyzeExpression(idx)
		if idxOK && idxType != types.INTEGER {
			a.addError(idx.Pos(), "array index must be INTEGER, got %s", idxType)
			ok = false
		}
	}
	return ok
}

func (a *Analyzer) analyzeProcCall(stmt *ast.ProcCallStatement) {
	proc, exists := a.procedures[stmt.Name]
	if !exists {
		a.addError(stmt.Pos(), "procedure '%s' not defined", stmt.Name)
		for _, arg := range stmt.Arguments {
			a.analyzeExpression(arg)
		}
		return
	}

	// The built-ins are variadic and type-agnostic: analyze the argument
	// expressions but skip the signature check.
	if proc.Builtin {
		for _, arg := range stmt.Arguments {
			a.analyzeExpression(arg)
		}
		return
	}
	a.checkArguments(proc, stmt.Arguments, stmt.Pos())
}

// checkArguments validates arity and per-argument compatibility against a
// user procedure's parameter list.
func (a *Analyzer) checkArguments(proc *ProcedureInfo, args []ast.Expression, pos token.Position) {
	params := proc.Decl.Parameters
	if len(args) != len(params) {
		a.addError(pos, "procedure '%s' expects %d argument(s), got %d",
			proc.Name, len(params), len(args))
		return
	}
	for i, arg := range args {
		argType, ok := a.analyzeExpression(arg)
		if !ok {
			continue
		}
		param := params[i]
		expected := param.Type
		if len(param.Dimensions) > 0 {
			expected = types.ARRAY
		}
		if !types.AssignableTo(expected, argType) {
			a.addError(arg.Pos(), "argument %d of '%s' expects %s, got %s",
				i+1, proc.Name, expected, argType)
		}
	}
}

func (a *Analyzer) analyzeFor(stmt *ast.ForStatement) {
	sym, ok := a.resolve(stmt.Variable, stmt.Pos())
	if ok && sym.Type != types.INTEGER {
		a.addError(stmt.Pos(), "FOR loop variable '%s' must be INTEGER, got %s",
			stmt.Variable, sym.Type)
	}
	startType, startOK := a.analyzeExpression(stmt.Start)
	if startOK && startType != types.INTEGER {
		a.addError(stmt.Start.Pos(), "FOR loop bounds must be INTEGER, got %s", startType)
	}
	endType, endOK := a.analyzeExpression(stmt.End)
	if endOK && endType != types.INTEGER {
		a.addError(stmt.End.Pos(), "FOR loop bounds must be INTEGER, got %s", endType)
	}
	for _, inner := range stmt.Body.Statements {
		a.analyzeStatement(inner)
	}
}

func (a *Analyzer) analyzeReturn(stmt *ast.ReturnStatement) {
	if a.currentProc == nil {
		a.addError(stmt.Pos(), "RETURN outside of a procedure")
		if stmt.Value != nil {
			a.analyzeExpression(stmt.Value)
		}
		return
	}
	if stmt.Value == nil {
		return
	}
	if a.currentProc.ReturnType == nil {
		a.addError(stmt.Pos(), "procedure '%s' has no return type", a.currentProc.Name)
		a.analyzeExpression(stmt.Value)
		return
	}
	valueType, ok := a.analyzeExpression(stmt.Value)
	if ok && !types.AssignableTo(*a.currentProc.ReturnType, valueType) {
		a.addError(stmt.Pos(), "cannot return %s from function '%s' returning %s",
			valueType, a.currentProc.Name, *a.currentProc.ReturnType)
	}
}

// resolve looks a name up in the scope chain; an undefined name is
// reported once across the whole analysis.
func (a *Analyzer) resolve(name string, pos token.Position) (*Symbol, bool) {
	if sym, ok := a.current.Resolve(name); ok {
		return sym, true
	}
	if !a.undefined[name] {
		a.undefined[name] = true
		a.addError(pos, "variable '%s' not defined", name)
	}
	return nil, false
}

// analyzeExpression determines the type of an expression. The boolean is
// false when the type could not be determined because of an error; the
// caller should then skip dependent checks.
func (a *Analyzer) analyzeExpression(expr ast.Expression) (types.DataType, bool) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return types.INTEGER, true
	case *ast.RealLiteral:
		return types.REAL, true
	case *ast.StringLiteral:
		return types.STRING, true

	case *ast.Identifier:
		sym, ok := a.resolve(e.Value, e.Pos())
		if !ok {
			return types.INTEGER, false
		}
		return sym.Type, true

	case *ast.IndexExpression:
		sym, ok := a.resolve(e.Name, e.Pos())
		if !ok {
			return types.INTEGER, false
		}
		if !a.checkIndexing(sym, e) {
			return types.INTEGER, false
		}
		return sym.ElemType, true

	case *ast.CallExpression:
		return a.analyzeCallExpression(e)

	case *ast.BinaryExpression:
		return a.analyzeBinaryExpression(e)

	case *ast.UnaryExpression:
		operandType, ok := a.analyzeExpression(e.Operand)
		if !ok {
			return types.INTEGER, false
		}
		if !types.IsNumeric(operandType) {
			a.addError(e.Pos(), "unary '%s' requires a numeric operand, got %s",
				e.Operator, operandType)
			return types.INTEGER, false
		}
		return operandType, true
	}

	a.addError(expr.Pos(), "unknown expression")
	return types.INTEGER, false
}

func (a *Analyzer) analyzeCallExpression(expr *ast.CallExpression) (types.DataType, bool) {
	proc, exists := a.procedures[expr.Name]
	if !exists {
		a.addError(expr.Pos(), "function '%s' not defined", expr.Name)
		for _, arg := range expr.Arguments {
			a.analyzeExpression(arg)
		}
		return types.INTEGER, false
	}
	if proc.Builtin || !proc.IsFunction() {
		a.addError(expr.Pos(), "'%s' is a procedure, not a function", expr.Name)
		for _, arg := range expr.Arguments {
			a.analyzeExpression(arg)
		}
		return types.INTEGER, false
	}
	a.checkArguments(proc, expr.Arguments, expr.Pos())
	return *proc.Decl.ReturnType, true
}

func (a *Analyzer) analyzeBinaryExpression(expr *ast.BinaryExpression) (types.DataType, bool) {
	leftType, leftOK := a.analyzeExpression(expr.Left)
	rightType, rightOK := a.analyzeExpression(expr.Right)
	if !leftOK || !rightOK {
		return types.INTEGER, false
	}

	switch expr.Operator {
	case "DIV", "MOD":
		if leftType != types.INTEGER || rightType != types.INTEGER {
			a.addError(expr.Pos(), "'%s' requires INTEGER operands, got %s and %s",
				expr.Operator, leftType, rightType)
			return types.INTEGER, false
		}
		return types.INTEGER, true

	case "+":
		// String concatenation when either operand is a string; the other
		// side is coerced by textual formatting.
		if leftType == types.STRING || rightType == types.STRING {
			return types.STRING, true
		}
		fallthrough
	case "-", "*", "/":
		if !types.IsNumeric(leftType) || !types.IsNumeric(rightType) {
			a.addError(expr.Pos(), "type mismatch in binary operation: %s %s %s",
				leftType, expr.Operator, rightType)
			return types.INTEGER, false
		}
		return types.ArithmeticResult(expr.Operator, leftType, rightType), true

	case "=", "#", "<", "<=", ">", ">=":
		if !types.AssignableTo(leftType, rightType) && !types.AssignableTo(rightType, leftType) {
			a.addError(expr.Pos(), "type mismatch in comparison: %s %s %s",
				leftType, expr.Operator, rightType)
			return types.INTEGER, false
		}
		return types.INTEGER, true

	case "AND", "OR":
		if leftType != types.INTEGER || rightType != types.INTEGER {
			a.addError(expr.Pos(), "'%s' requires INTEGER operands, got %s and %s",
				expr.Operator, leftType, rightType)
			return types.INTEGER, false
		}
		return types.INTEGER, true
	}

	a.addError(expr.Pos(), "unknown binary operator '%s'", expr.Operator)
	return types.INTEGER, false
}
