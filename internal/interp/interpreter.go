package interp

import (
	"fmt"
	"io"

	"github.com/cwbudde/go-oberon/internal/ast"
	"github.com/cwbudde/go-oberon/internal/semantic"
	"github.com/cwbudde/go-oberon/internal/types"
	"github.com/cwbudde/go-oberon/pkg/token"
)

// Interpreter executes a validated program by walking its tree. Output
// from Write/WriteLn goes to the writer passed to New. A fresh instance
// is constructed per run; no state survives across programs.
type Interpreter struct {
	out        io.Writer
	globals    *Environment
	env        *Environment
	procedures map[string]*semantic.ProcedureInfo
}

// New creates a new Interpreter writing program output to out.
func New(out io.Writer) *Interpreter {
	return &Interpreter{out: out}
}

// Run executes the program. The procedure table normally comes from the
// semantic analyzer; passing nil rebuilds it from the declarations.
func (i *Interpreter) Run(program *ast.Program, procedures map[string]*semantic.ProcedureInfo) error {
	if procedures == nil {
		procedures = map[string]*semantic.ProcedureInfo{
			"Write":   {Name: "Write", Builtin: true},
			"WriteLn": {Name: "WriteLn", Builtin: true},
		}
		registerProcedures(procedures, program.Declarations)
	}
	i.procedures = procedures
	i.globals = NewEnvironment()
	i.env = i.globals

	if err := i.declareAll(program.Declarations); err != nil {
		return err
	}
	for _, stmt := range program.Statements {
		if err := i.execStatement(stmt); err != nil {
			if _, isReturn := err.(*returnSignal); isReturn {
				return newRuntimeError(program.Pos(), "RETURN outside of a procedure")
			}
			return err
		}
	}
	return nil
}

// registerProcedures walks a declaration list (and nested procedure
// bodies) and records every procedure in the flat table.
func registerProcedures(table map[string]*semantic.ProcedureInfo, decls []ast.Declaration) {
	for _, decl := range decls {
		if proc, ok := decl.(*ast.ProcDecl); ok {
			table[proc.Name] = &semantic.ProcedureInfo{Name: proc.Name, Decl: proc}
			registerProcedures(table, proc.Declarations)
		}
	}
}

// declareAll installs variable and constant declarations into the current
// scope. Variables receive their type defaults; constants evaluate their
// initializer once and become read-only cells.
func (i *Interpreter) declareAll(decls []ast.Declaration) error {
	for _, decl := range decls {
		switch d := decl.(type) {
		case *ast.VarDecl:
			if d.IsArray() {
				i.env.Define(d.Name, NewArrayValue(d.Type, d.Dimensions))
			} else {
				i.env.Define(d.Name, defaultValue(d.Type))
			}
		case *ast.ConstDecl:
			val, err := i.evalExpression(d.Value)
			if err != nil {
				return err
			}
			i.env.DefineConst(d.Name, val)
		case *ast.ProcDecl:
			// Procedure bodies live in the procedure table.
		}
	}
	return nil
}

func (i *Interpreter) execStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.AssignmentStatement:
		return i.execAssignment(s)
	case *ast.ProcCallStatement:
		return i.execProcCall(s)
	case *ast.IfStatement:
		return i.execIf(s)
	case *ast.WhileStatement:
		return i.execWhile(s)
	case *ast.ForStatement:
		return i.execFor(s)
	case *ast.CompoundStatement:
		for _, inner := range s.Statements {
			if err := i.execStatement(inner); err != nil {
				return err
			}
		}
		return nil
	case *ast.ReturnStatement:
		if s.Value == nil {
			return &returnSignal{}
		}
		val, err := i.evalExpression(s.Value)
		if err != nil {
			return err
		}
		return &returnSignal{value: val}
	}
	return newRuntimeError(stmt.Pos(), "unknown statement")
}

func (i *Interpreter) execAssignment(stmt *ast.AssignmentStatement) error {
	val, err := i.evalExpression(stmt.Value)
	if err != nil {
		return err
	}

	switch target := stmt.Target.(type) {
	case *ast.Identifier:
		cell, ok := i.env.getCell(target.Value)
		if !ok {
			return newRuntimeError(target.Pos(), "variable '%s' not defined", target.Value)
		}
		if cell.ReadOnly {
			return newRuntimeError(target.Pos(), "cannot assign to constant '%s'", target.Value)
		}
		cell.Value = coerce(dynamicType(cell.Value), val)
		return nil

	case *ast.IndexExpression:
		arr, indices, err := i.evalIndexTarget(target)
		if err != nil {
			return err
		}
		off, ok := arr.offset(indices)
		if !ok {
			return newRuntimeError(target.Pos(), "array index out of bounds for '%s'", target.Name)
		}
		arr.Elements[off] = coerce(arr.ElemType, val)
		return nil
	}
	return newRuntimeError(stmt.Pos(), "invalid assignment target")
}

// evalIndexTarget resolves the array value and the subscript values of an
// index expression.
func (i *Interpreter) evalIndexTarget(expr *ast.IndexExpression) (*ArrayValue, []int64, error) {
	val, ok := i.env.Get(expr.Name)
	if !ok {
		return nil, nil, newRuntimeError(expr.Pos(), "variable '%s' not defined", expr.Name)
	}
	arr, ok := val.(*ArrayValue)
	if !ok {
		return nil, nil, newRuntimeError(expr.Pos(), "'%s' is not an array", expr.Name)
	}
	indices := make([]int64, len(expr.Indices))
	for n, idxExpr := range expr.Indices {
		idxVal, err := i.evalExpression(idxExpr)
		if err != nil {
			return nil, nil, err
		}
		iv, ok := idxVal.(*IntegerValue)
		if !ok {
			return nil, nil, newRuntimeError(idxExpr.Pos(), "array index must be INTEGER")
		}
		indices[n] = iv.Value
	}
	if len(indices) != len(arr.Dims) {
		return nil, nil, newRuntimeError(expr.Pos(),
			"array '%s' has %d dimension(s), got %d subscript(s)",
			expr.Name, len(arr.Dims), len(indices))
	}
	return arr, indices, nil
}

func (i *Interpreter) execProcCall(stmt *ast.ProcCallStatement) error {
	proc, ok := i.procedures[stmt.Name]
	if !ok {
		return newRuntimeError(stmt.Pos(), "procedure '%s' not defined", stmt.Name)
	}
	if proc.Builtin {
		return i.execBuiltin(proc.Name, stmt.Arguments, stmt.Pos())
	}
	_, err := i.callProcedure(proc, stmt.Arguments, stmt.Pos())
	return err
}

// execBuiltin realizes Write and WriteLn: each argument is formatted and
// appended to the output stream; WriteLn appends a newline afterwards.
func (i *Interpreter) execBuiltin(name string, args []ast.Expression, pos token.Position) error {
	if name == "Write" && len(args) == 0 {
		return newRuntimeError(pos, "Write requires at least one argument")
	}
	for _, arg := range args {
		val, err := i.evalExpression(arg)
		if err != nil {
			return err
		}
		fmt.Fprint(i.out, val.String())
	}
	if name == "WriteLn" {
		fmt.Fprint(i.out, "\n")
	}
	return nil
}

// callProcedure invokes a user procedure: push a fresh scope, bind
// parameters (by value, or aliasing the caller's cell for VAR
// parameters), run the body, and collect the function result from the
// RETURN value or the result cell.
func (i *Interpreter) callProcedure(proc *semantic.ProcedureInfo, args []ast.Expression, pos token.Position) (Value, error) {
	decl := proc.Decl
	if len(args) != len(decl.Parameters) {
		return nil, newRuntimeError(pos, "procedure '%s' expects %d argument(s), got %d",
			proc.Name, len(decl.Parameters), len(args))
	}

	callerEnv := i.env
	callEnv := NewEnclosedEnvironment(callerEnv)

	for n, param := range decl.Parameters {
		if param.ByRef {
			ident, ok := args[n].(*ast.Identifier)
			if !ok {
				return nil, newRuntimeError(args[n].Pos(),
					"VAR parameter '%s' requires a variable argument", param.Name)
			}
			cell, ok := callerEnv.getCell(ident.Value)
			if !ok {
				return nil, newRuntimeError(ident.Pos(), "variable '%s' not defined", ident.Value)
			}
			callEnv.DefineCell(param.Name, cell)
			continue
		}

		val, err := i.evalExpression(args[n])
		if err != nil {
			return nil, err
		}
		if arr, ok := val.(*ArrayValue); ok {
			val = arr.Copy()
		} else {
			val = coerce(param.Type, val)
		}
		callEnv.Define(param.Name, val)
	}

	if decl.ReturnType != nil {
		callEnv.Define("result", defaultValue(*decl.ReturnType))
	}

	i.env = callEnv
	defer func() { i.env = callerEnv }()

	if err := i.declareAll(decl.Declarations); err != nil {
		return nil, err
	}

	var returned Value
	for _, stmt := range decl.Statements {
		err := i.execStatement(stmt)
		if err == nil {
			continue
		}
		if sig, ok := err.(*returnSignal); ok {
			returned = sig.value
			break
		}
		return nil, err
	}

	if decl.ReturnType == nil {
		return nil, nil
	}
	if returned == nil {
		// The result-by-assignment protocol: read the result cell the
		// body wrote into.
		returned, _ = callEnv.Get("result")
	}
	return coerce(*decl.ReturnType, returned), nil
}

func (i *Interpreter) execIf(stmt *ast.IfStatement) error {
	cond, err := i.evalCondition(stmt.Condition)
	if err != nil {
		return err
	}
	if cond {
		return i.execStatement(stmt.Then)
	}
	if stmt.Else != nil {
		return i.execStatement(stmt.Else)
	}
	return nil
}

func (i *Interpreter) execWhile(stmt *ast.WhileStatement) error {
	for {
		cond, err := i.evalCondition(stmt.Condition)
		if err != nil {
			return err
		}
		if !cond {
			return nil
		}
		if err := i.execStatement(stmt.Body); err != nil {
			return err
		}
	}
}

// execFor runs the counting loop: the variable walks start..end inclusive
// with step +1; a start above end skips the body entirely.
func (i *Interpreter) execFor(stmt *ast.ForStatement) error {
	startVal, err := i.evalExpression(stmt.Start)
	if err != nil {
		return err
	}
	endVal, err := i.evalExpression(stmt.End)
	if err != nil {
		return err
	}
	start, ok := startVal.(*IntegerValue)
	if !ok {
		return newRuntimeError(stmt.Start.Pos(), "FOR loop bounds must be INTEGER")
	}
	end, ok := endVal.(*IntegerValue)
	if !ok {
		return newRuntimeError(stmt.End.Pos(), "FOR loop bounds must be INTEGER")
	}

	cell, ok := i.env.getCell(stmt.Variable)
	if !ok {
		return newRuntimeError(stmt.Pos(), "variable '%s' not defined", stmt.Variable)
	}
	if cell.ReadOnly {
		return newRuntimeError(stmt.Pos(), "cannot assign to constant '%s'", stmt.Variable)
	}

	cell.Value = &IntegerValue{Value: start.Value}
	for {
		current, ok := cell.Value.(*IntegerValue)
		if !ok {
			return newRuntimeError(stmt.Pos(), "FOR loop variable '%s' must be INTEGER", stmt.Variable)
		}
		if current.Value > end.Value {
			return nil
		}
		if err := i.execStatement(stmt.Body); err != nil {
			return err
		}
		current, ok = cell.Value.(*IntegerValue)
		if !ok {
			return newRuntimeError(stmt.Pos(), "FOR loop variable '%s' must be INTEGER", stmt.Variable)
		}
		cell.Value = &IntegerValue{Value: current.Value + 1}
	}
}

// evalCondition evaluates an IF/WHILE condition; any nonzero integer is
// true.
func (i *Interpreter) evalCondition(expr ast.Expression) (bool, error) {
	val, err := i.evalExpression(expr)
	if err != nil {
		return false, err
	}
	iv, ok := val.(*IntegerValue)
	if !ok {
		return false, newRuntimeError(expr.Pos(), "condition must be INTEGER, got %s", val.Type())
	}
	return iv.Value != 0, nil
}

func (i *Interpreter) evalExpression(expr ast.Expression) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return &IntegerValue{Value: e.Value}, nil
	case *ast.RealLiteral:
		return &RealValue{Value: e.Value}, nil
	case *ast.StringLiteral:
		return &StringValue{Value: e.Value}, nil

	case *ast.Identifier:
		val, ok := i.env.Get(e.Value)
		if !ok {
			return nil, newRuntimeError(e.Pos(), "variable '%s' not defined", e.Value)
		}
		return val, nil

	case *ast.IndexExpression:
		arr, indices, err := i.evalIndexTarget(e)
		if err != nil {
			return nil, err
		}
		off, ok := arr.offset(indices)
		if !ok {
			return nil, newRuntimeError(e.Pos(), "array index out of bounds for '%s'", e.Name)
		}
		return arr.Elements[off], nil

	case *ast.CallExpression:
		proc, ok := i.procedures[e.Name]
		if !ok {
			return nil, newRuntimeError(e.Pos(), "function '%s' not defined", e.Name)
		}
		if proc.Builtin || !proc.IsFunction() {
			return nil, newRuntimeError(e.Pos(), "'%s' is a procedure, not a function", e.Name)
		}
		return i.callProcedure(proc, e.Arguments, e.Pos())

	case *ast.BinaryExpression:
		// Both operands are always evaluated; AND/OR do not short-circuit.
		left, err := i.evalExpression(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := i.evalExpression(e.Right)
		if err != nil {
			return nil, err
		}
		return i.evalBinary(e, left, right)

	case *ast.UnaryExpression:
		operand, err := i.evalExpression(e.Operand)
		if err != nil {
			return nil, err
		}
		return i.evalUnary(e, operand)
	}
	return nil, newRuntimeError(expr.Pos(), "unknown expression")
}

func (i *Interpreter) evalUnary(expr *ast.UnaryExpression, operand Value) (Value, error) {
	if expr.Operator == "+" {
		return operand, nil
	}
	switch v := operand.(type) {
	case *IntegerValue:
		return &IntegerValue{Value: -v.Value}, nil
	case *RealValue:
		return &RealValue{Value: -v.Value}, nil
	}
	return nil, newRuntimeError(expr.Pos(), "unary '%s' requires a numeric operand, got %s",
		expr.Operator, operand.Type())
}

func (i *Interpreter) evalBinary(expr *ast.BinaryExpression, left, right Value) (Value, error) {
	op := expr.Operator

	// String concatenation: either operand being a string coerces the
	// other by textual formatting.
	if op == "+" {
		if isString(left) || isString(right) {
			return &StringValue{Value: left.String() + right.String()}, nil
		}
	}

	switch op {
	case "+", "-", "*":
		return i.evalArithmetic(expr, left, right)
	case "/":
		lf, lok := asFloat(left)
		rf, rok := asFloat(right)
		if !lok || !rok {
			return nil, i.operandError(expr, left, right)
		}
		if rf == 0 {
			return nil, newRuntimeError(expr.Pos(), "division by zero")
		}
		return &RealValue{Value: lf / rf}, nil
	case "DIV", "MOD":
		li, lok := left.(*IntegerValue)
		ri, rok := right.(*IntegerValue)
		if !lok || !rok {
			return nil, i.operandError(expr, left, right)
		}
		if ri.Value == 0 {
			return nil, newRuntimeError(expr.Pos(), "division by zero")
		}
		if op == "DIV" {
			return &IntegerValue{Value: li.Value / ri.Value}, nil
		}
		return &IntegerValue{Value: li.Value % ri.Value}, nil
	case "=", "#", "<", "<=", ">", ">=":
		return i.evalComparison(expr, left, right)
	case "AND", "OR":
		li, lok := left.(*IntegerValue)
		ri, rok := right.(*IntegerValue)
		if !lok || !rok {
			return nil, i.operandError(expr, left, right)
		}
		var result bool
		if op == "AND" {
			result = li.Value != 0 && ri.Value != 0
		} else {
			result = li.Value != 0 || ri.Value != 0
		}
		return boolToInteger(result), nil
	}
	return nil, newRuntimeError(expr.Pos(), "unknown binary operator '%s'", op)
}

// evalArithmetic handles + - * with the widening rule: the result is REAL
// when either operand is REAL, INTEGER otherwise.
func (i *Interpreter) evalArithmetic(expr *ast.BinaryExpression, left, right Value) (Value, error) {
	if li, ok := left.(*IntegerValue); ok {
		if ri, ok := right.(*IntegerValue); ok {
			switch expr.Operator {
			case "+":
				return &IntegerValue{Value: li.Value + ri.Value}, nil
			case "-":
				return &IntegerValue{Value: li.Value - ri.Value}, nil
			case "*":
				return &IntegerValue{Value: li.Value * ri.Value}, nil
			}
		}
	}
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, i.operandError(expr, left, right)
	}
	switch expr.Operator {
	case "+":
		return &RealValue{Value: lf + rf}, nil
	case "-":
		return &RealValue{Value: lf - rf}, nil
	case "*":
		return &RealValue{Value: lf * rf}, nil
	}
	return nil, newRuntimeError(expr.Pos(), "unknown binary operator '%s'", expr.Operator)
}

func (i *Interpreter) evalComparison(expr *ast.BinaryExpression, left, right Value) (Value, error) {
	if ls, ok := left.(*StringValue); ok {
		if rs, ok := right.(*StringValue); ok {
			return boolToInteger(compareStrings(expr.Operator, ls.Value, rs.Value)), nil
		}
	}
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, i.operandError(expr, left, right)
	}
	var result bool
	switch expr.Operator {
	case "=":
		result = lf == rf
	case "#":
		result = lf != rf
	case "<":
		result = lf < rf
	case "<=":
		result = lf <= rf
	case ">":
		result = lf > rf
	case ">=":
		result = lf >= rf
	}
	return boolToInteger(result), nil
}

func compareStrings(op, left, right string) bool {
	switch op {
	case "=":
		return left == right
	case "#":
		return left != right
	case "<":
		return left < right
	case "<=":
		return left <= right
	case ">":
		return left > right
	case ">=":
		return left >= right
	}
	return false
}

func (i *Interpreter) operandError(expr *ast.BinaryExpression, left, right Value) error {
	return newRuntimeError(expr.Pos(), "invalid operands for '%s': %s and %s",
		expr.Operator, left.Type(), right.Type())
}

// asFloat converts a numeric value to float64.
func asFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case *IntegerValue:
		return float64(n.Value), true
	case *RealValue:
		return n.Value, true
	}
	return 0, false
}

func isString(v Value) bool {
	_, ok := v.(*StringValue)
	return ok
}

func boolToInteger(b bool) *IntegerValue {
	if b {
		return &IntegerValue{Value: 1}
	}
	return &IntegerValue{Value: 0}
}

// dynamicType reports the DataType tag of a runtime value.
func dynamicType(v Value) types.DataType {
	switch v.(type) {
	case *RealValue:
		return types.REAL
	case *StringValue:
		return types.STRING
	case *ArrayValue:
		return types.ARRAY
	default:
		return types.INTEGER
	}
}
