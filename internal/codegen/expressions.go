package codegen

import (
	"strconv"

	"github.com/cwbudde/go-oberon/internal/ast"
)

// emitExpression lowers an expression and returns its value (a register
// name or an immediate constant) together with its IR type.
func (e *Emitter) emitExpression(expr ast.Expression) (string, string) {
	switch ex := expr.(type) {
	case *ast.IntegerLiteral:
		return strconv.FormatInt(ex.Value, 10), "i32"

	case *ast.RealLiteral:
		return formatReal(ex.Value), "double"

	case *ast.StringLiteral:
		return e.stringPointer(ex.Value), "i8*"

	case *ast.Identifier:
		slot, ok := e.locals[ex.Value]
		if !ok {
			e.fail("variable '%s' not allocated", ex.Value)
			return "0", "i32"
		}
		if len(slot.dims) > 0 {
			e.fail("array '%s' cannot be used as a scalar value", ex.Value)
			return "0", "i32"
		}
		reg := e.newReg()
		e.emitf("  %s = load %s, %s* %s", reg, slot.typ, slot.typ, slot.ptr)
		return reg, slot.typ

	case *ast.IndexExpression:
		elemPtr, elemType := e.emitElementAddress(ex)
		if elemPtr == "" {
			return "0", "i32"
		}
		reg := e.newReg()
		e.emitf("  %s = load %s, %s* %s", reg, elemType, elemType, elemPtr)
		return reg, elemType

	case *ast.CallExpression:
		return e.emitCallExpression(ex)

	case *ast.BinaryExpression:
		return e.emitBinaryExpression(ex)

	case *ast.UnaryExpression:
		return e.emitUnaryExpression(ex)
	}

	e.fail("expression lowering not implemented for %T", expr)
	return "0", "i32"
}

// emitCallExpression lowers a function call in expression position; the
// return type comes from the procedure table.
func (e *Emitter) emitCallExpression(expr *ast.CallExpression) (string, string) {
	proc, ok := e.procedures[expr.Name]
	if !ok || proc.Decl == nil || proc.Decl.ReturnType == nil {
		e.fail("'%s' is not a function", expr.Name)
		return "0", "i32"
	}
	args := e.emitCallArguments(proc.Decl, expr.Arguments)
	retType := llvmType(*proc.Decl.ReturnType)
	reg := e.newReg()
	e.emitf("  %s = call %s @%s(%s)", reg, retType, expr.Name, args)
	return reg, retType
}

// widen converts an i32 value to double when the expected type is double.
// All other combinations pass through unchanged.
func (e *Emitter) widen(expected, val, valType string) (string, string) {
	if expected == "double" && valType == "i32" {
		reg := e.newReg()
		e.emitf("  %s = sitofp i32 %s to double", reg, val)
		return reg, "double"
	}
	return val, valType
}

// integer compare predicates per operator (signed).
var intPredicates = map[string]string{
	"=": "eq", "#": "ne", "<": "slt", "<=": "sle", ">": "sgt", ">=": "sge",
}

// float compare predicates per operator (ordered).
var floatPredicates = map[string]string{
	"=": "oeq", "#": "one", "<": "olt", "<=": "ole", ">": "ogt", ">=": "oge",
}

func (e *Emitter) emitBinaryExpression(expr *ast.BinaryExpression) (string, string) {
	left, leftType := e.emitExpression(expr.Left)
	right, rightType := e.emitExpression(expr.Right)
	op := expr.Operator

	if leftType == "i8*" || rightType == "i8*" {
		e.fail("string operands for '%s' are not supported by the IR backend", op)
		return "0", "i32"
	}

	// Real arithmetic when either operand is REAL, and always for '/':
	// widen the integer side and use the floating-point instructions.
	if op == "/" || leftType == "double" || rightType == "double" {
		left, _ = e.widen("double", left, leftType)
		right, _ = e.widen("double", right, rightType)

		if pred, ok := floatPredicates[op]; ok {
			cmp := e.newReg()
			e.emitf("  %s = fcmp %s double %s, %s", cmp, pred, left, right)
			out := e.newReg()
			e.emitf("  %s = zext i1 %s to i32", out, cmp)
			return out, "i32"
		}

		var inst string
		switch op {
		case "+":
			inst = "fadd"
		case "-":
			inst = "fsub"
		case "*":
			inst = "fmul"
		case "/":
			inst = "fdiv"
		default:
			e.fail("'%s' requires INTEGER operands", op)
			return "0", "i32"
		}
		out := e.newReg()
		e.emitf("  %s = %s double %s, %s", out, inst, left, right)
		return out, "double"
	}

	if pred, ok := intPredicates[op]; ok {
		cmp := e.newReg()
		e.emitf("  %s = icmp %s i32 %s, %s", cmp, pred, left, right)
		out := e.newReg()
		e.emitf("  %s = zext i1 %s to i32", out, cmp)
		return out, "i32"
	}

	var inst string
	switch op {
	case "+":
		inst = "add"
	case "-":
		inst = "sub"
	case "*":
		inst = "mul"
	case "DIV":
		inst = "sdiv"
	case "MOD":
		inst = "srem"
	// Bitwise and/or on the 0/1 encoding keeps the evaluator's
	// non-short-circuit semantics.
	case "AND":
		inst = "and"
	case "OR":
		inst = "or"
	default:
		e.fail("binary operator '%s' not supported", op)
		return "0", "i32"
	}
	out := e.newReg()
	e.emitf("  %s = %s i32 %s, %s", out, inst, left, right)
	return out, "i32"
}

func (e *Emitter) emitUnaryExpression(expr *ast.UnaryExpression) (string, string) {
	val, valType := e.emitExpression(expr.Operand)
	if expr.Operator == "+" {
		return val, valType
	}
	out := e.newReg()
	if valType == "double" {
		e.emitf("  %s = fneg double %s", out, val)
		return out, "double"
	}
	e.emitf("  %s = sub i32 0, %s", out, val)
	return out, "i32"
}
