package codegen

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-oberon/internal/ast"
)

func (e *Emitter) emitStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.AssignmentStatement:
		e.emitAssignment(s)
	case *ast.ProcCallStatement:
		e.emitProcCall(s)
	case *ast.IfStatement:
		e.emitIf(s)
	case *ast.WhileStatement:
		e.emitWhile(s)
	case *ast.ForStatement:
		e.emitFor(s)
	case *ast.CompoundStatement:
		for _, inner := range s.Statements {
			e.emitStatement(inner)
		}
	case *ast.ReturnStatement:
		e.emitReturn(s)
	default:
		e.fail("statement lowering not implemented for %T", stmt)
	}
}

func (e *Emitter) emitAssignment(stmt *ast.AssignmentStatement) {
	val, valType := e.emitExpression(stmt.Value)

	switch target := stmt.Target.(type) {
	case *ast.Identifier:
		slot, ok := e.locals[target.Value]
		if !ok {
			e.fail("variable '%s' not allocated", target.Value)
			return
		}
		val, valType = e.widen(slot.typ, val, valType)
		e.emitf("  store %s %s, %s* %s", valType, val, valType, slot.ptr)

	case *ast.IndexExpression:
		elemPtr, elemType := e.emitElementAddress(target)
		if elemPtr == "" {
			return
		}
		val, valType = e.widen(elemType, val, valType)
		e.emitf("  store %s %s, %s* %s", valType, val, valType, elemPtr)

	default:
		e.fail("invalid assignment target %T", stmt.Target)
	}
}

// emitElementAddress computes the address of an array element: the
// subscripts collapse to a row-major linear index, then one
// getelementptr yields the element pointer.
func (e *Emitter) emitElementAddress(expr *ast.IndexExpression) (string, string) {
	slot, ok := e.locals[expr.Name]
	if !ok {
		e.fail("array '%s' not allocated", expr.Name)
		return "", ""
	}
	if len(slot.dims) == 0 {
		e.fail("'%s' is not an array", expr.Name)
		return "", ""
	}
	if len(expr.Indices) != len(slot.dims) {
		e.fail("array '%s' has %d dimension(s), got %d subscript(s)",
			expr.Name, len(slot.dims), len(expr.Indices))
		return "", ""
	}

	// off = ((i0 * d1) + i1) * d2 + i2 ...
	off, _ := e.emitExpression(expr.Indices[0])
	for axis := 1; axis < len(expr.Indices); axis++ {
		scaled := e.newReg()
		e.emitf("  %s = mul i32 %s, %d", scaled, off, slot.dims[axis])
		idx, _ := e.emitExpression(expr.Indices[axis])
		sum := e.newReg()
		e.emitf("  %s = add i32 %s, %s", sum, scaled, idx)
		off = sum
	}

	elemPtr := e.newReg()
	if slot.indirect {
		e.emitf("  %s = getelementptr inbounds %s, %s* %s, i32 %s",
			elemPtr, slot.typ, slot.typ, slot.ptr, off)
	} else {
		total := 1
		for _, d := range slot.dims {
			total *= d
		}
		e.emitf("  %s = getelementptr inbounds [%d x %s], [%d x %s]* %s, i32 0, i32 %s",
			elemPtr, total, slot.typ, total, slot.typ, slot.ptr, off)
	}
	return elemPtr, slot.typ
}

func (e *Emitter) emitProcCall(stmt *ast.ProcCallStatement) {
	if stmt.Name == "Write" || stmt.Name == "WriteLn" {
		e.emitWriteCall(stmt)
		return
	}

	proc, ok := e.procedures[stmt.Name]
	if !ok || proc.Decl == nil {
		e.fail("procedure '%s' not defined", stmt.Name)
		return
	}
	args := e.emitCallArguments(proc.Decl, stmt.Arguments)
	if proc.Decl.ReturnType == nil {
		e.emitf("  call void @%s(%s)", stmt.Name, args)
		return
	}
	// A function called in statement position: typed call, value dropped.
	reg := e.newReg()
	e.emitf("  %s = call %s @%s(%s)", reg, llvmType(*proc.Decl.ReturnType), stmt.Name, args)
}

// emitCallArguments lowers an argument list against the callee's
// parameters: arrays and VAR parameters pass element pointers, scalars
// pass by value with integer-to-double widening as needed.
func (e *Emitter) emitCallArguments(decl *ast.ProcDecl, args []ast.Expression) string {
	parts := make([]string, 0, len(args))
	for i, arg := range args {
		var param *ast.Parameter
		if i < len(decl.Parameters) {
			param = decl.Parameters[i]
		}
		if param != nil && (len(param.Dimensions) > 0 || param.ByRef) {
			ptr, ty := e.emitAddressOf(arg)
			if ptr == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s* %s", ty, ptr))
			continue
		}
		val, ty := e.emitExpression(arg)
		if param != nil {
			val, ty = e.widen(llvmType(param.Type), val, ty)
		}
		parts = append(parts, fmt.Sprintf("%s %s", ty, val))
	}
	return strings.Join(parts, ", ")
}

// emitAddressOf produces a pointer to the storage behind an argument
// passed by reference: a scalar slot, an array (element zero), or an
// array element.
func (e *Emitter) emitAddressOf(arg ast.Expression) (string, string) {
	switch a := arg.(type) {
	case *ast.Identifier:
		slot, ok := e.locals[a.Value]
		if !ok {
			e.fail("variable '%s' not allocated", a.Value)
			return "", ""
		}
		if len(slot.dims) == 0 || slot.indirect {
			return slot.ptr, slot.typ
		}
		total := 1
		for _, d := range slot.dims {
			total *= d
		}
		ptr := e.newReg()
		e.emitf("  %s = getelementptr inbounds [%d x %s], [%d x %s]* %s, i32 0, i32 0",
			ptr, total, slot.typ, total, slot.typ, slot.ptr)
		return ptr, slot.typ
	case *ast.IndexExpression:
		return e.emitElementAddress(a)
	}
	e.fail("VAR argument must be a variable")
	return "", ""
}

// emitWriteCall lowers Write/WriteLn to one printf call per argument with
// the format fragment matching the argument type; WriteLn appends a
// newline.
func (e *Emitter) emitWriteCall(stmt *ast.ProcCallStatement) {
	for _, arg := range stmt.Arguments {
		val, ty := e.emitExpression(arg)
		var format string
		switch ty {
		case "i32":
			format = "%d"
		case "double":
			format = "%f"
		default:
			format = "%s"
		}
		fmtPtr := e.stringPointer(format)
		e.emitf("  call i32 (i8*, ...) @printf(i8* %s, %s %s)", fmtPtr, ty, val)
	}
	if stmt.Name == "WriteLn" {
		nlPtr := e.stringPointer("\n")
		e.emitf("  call i32 (i8*, ...) @printf(i8* %s)", nlPtr)
	}
}

// emitCondition lowers an INTEGER condition to the i1 feeding a branch.
func (e *Emitter) emitCondition(cond ast.Expression) string {
	reg, ty := e.emitExpression(cond)
	if ty != "i32" {
		e.fail("condition must lower to i32, got %s", ty)
		return "false"
	}
	cmp := e.newReg()
	e.emitf("  %s = icmp ne i32 %s, 0", cmp, reg)
	return cmp
}

func (e *Emitter) emitIf(stmt *ast.IfStatement) {
	cmp := e.emitCondition(stmt.Condition)
	thenLabel := e.newLabel("then")
	elseLabel := e.newLabel("else")
	endLabel := e.newLabel("endif")

	e.emitf("  br i1 %s, label %%%s, label %%%s", cmp, thenLabel, elseLabel)
	e.emitf("%s:", thenLabel)
	e.emitStatement(stmt.Then)
	e.emitf("  br label %%%s", endLabel)
	e.emitf("%s:", elseLabel)
	if stmt.Else != nil {
		e.emitStatement(stmt.Else)
	}
	e.emitf("  br label %%%s", endLabel)
	e.emitf("%s:", endLabel)
}

// emitWhile lowers the loop with the condition recomputed at the start
// label on every iteration.
func (e *Emitter) emitWhile(stmt *ast.WhileStatement) {
	startLabel := e.newLabel("while_start")
	bodyLabel := e.newLabel("while_body")
	endLabel := e.newLabel("while_end")

	e.emitf("  br label %%%s", startLabel)
	e.emitf("%s:", startLabel)
	cmp := e.emitCondition(stmt.Condition)
	e.emitf("  br i1 %s, label %%%s, label %%%s", cmp, bodyLabel, endLabel)
	e.emitf("%s:", bodyLabel)
	e.emitStatement(stmt.Body)
	e.emitf("  br label %%%s", startLabel)
	e.emitf("%s:", endLabel)
}

// emitFor lowers the counting loop: the bound is evaluated once, the
// iteration condition is current <= end, and the increment stores
// current + 1 before the back edge.
func (e *Emitter) emitFor(stmt *ast.ForStatement) {
	startVal, _ := e.emitExpression(stmt.Start)
	endVal, _ := e.emitExpression(stmt.End)

	slot, ok := e.locals[stmt.Variable]
	if !ok {
		e.fail("variable '%s' not allocated", stmt.Variable)
		return
	}
	e.emitf("  store i32 %s, i32* %s", startVal, slot.ptr)

	startLabel := e.newLabel("for_start")
	bodyLabel := e.newLabel("for_body")
	endLabel := e.newLabel("for_end")

	e.emitf("  br label %%%s", startLabel)
	e.emitf("%s:", startLabel)
	current := e.newReg()
	e.emitf("  %s = load i32, i32* %s", current, slot.ptr)
	cond := e.newReg()
	e.emitf("  %s = icmp sle i32 %s, %s", cond, current, endVal)
	e.emitf("  br i1 %s, label %%%s, label %%%s", cond, bodyLabel, endLabel)
	e.emitf("%s:", bodyLabel)
	e.emitStatement(stmt.Body)
	latest := e.newReg()
	e.emitf("  %s = load i32, i32* %s", latest, slot.ptr)
	next := e.newReg()
	e.emitf("  %s = add i32 %s, 1", next, latest)
	e.emitf("  store i32 %s, i32* %s", next, slot.ptr)
	e.emitf("  br label %%%s", startLabel)
	e.emitf("%s:", endLabel)
}

// emitReturn lowers RETURN: the value (if any) goes through the result
// slot, the block terminates, and emission continues in an unreachable
// block so later statements still land in a labeled block.
func (e *Emitter) emitReturn(stmt *ast.ReturnStatement) {
	result, hasResult := e.locals["result"]
	if stmt.Value != nil {
		if !hasResult {
			e.fail("RETURN with a value outside of a function")
			return
		}
		val, valType := e.emitExpression(stmt.Value)
		val, valType = e.widen(result.typ, val, valType)
		e.emitf("  store %s %s, %s* %s", valType, val, valType, result.ptr)
	}
	if hasResult {
		reg := e.newReg()
		e.emitf("  %s = load %s, %s* %s", reg, result.typ, result.typ, result.ptr)
		e.emitf("  ret %s %s", result.typ, reg)
	} else {
		e.emit("  ret void")
	}
	e.emitf("%s:", e.newLabel("afterreturn"))
}
