// Package interp provides the tree-walking evaluator for Oberon.
package interp

import (
	"strconv"
	"strings"

	"github.com/cwbudde/go-oberon/internal/types"
)

// Value represents a runtime value in the Oberon evaluator.
type Value interface {
	// Type returns the type name of the value (e.g., "INTEGER", "STRING")
	Type() string
	// String returns the string representation of the value
	String() string
}

// IntegerValue represents an integer value.
type IntegerValue struct {
	Value int64
}

// Type returns "INTEGER".
func (i *IntegerValue) Type() string {
	return "INTEGER"
}

// String returns the decimal representation of the integer.
func (i *IntegerValue) String() string {
	return strconv.FormatInt(i.Value, 10)
}

// RealValue represents a floating-point value.
type RealValue struct {
	Value float64
}

// Type returns "REAL".
func (r *RealValue) Type() string {
	return "REAL"
}

// String returns the string representation of the real.
func (r *RealValue) String() string {
	return strconv.FormatFloat(r.Value, 'g', -1, 64)
}

// StringValue represents a string value.
type StringValue struct {
	Value string
}

// Type returns "STRING".
func (s *StringValue) Type() string {
	return "STRING"
}

// String returns the string value itself.
func (s *StringValue) String() string {
	return s.Value
}

// ArrayValue represents an array value. Elements are stored row-major in
// a flat slice; Dims holds the size of each axis and ElemType the element
// type from the declaration that introduced the array.
type ArrayValue struct {
	Elements []Value
	ElemType types.DataType
	Dims     []int
}

// Type returns "ARRAY".
func (a *ArrayValue) Type() string {
	return "ARRAY"
}

// String returns a bracketed listing of the elements.
func (a *ArrayValue) String() string {
	parts := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// NewArrayValue creates an array with every element set to the type
// default (0, 0.0 or "").
func NewArrayValue(elemType types.DataType, dims []int) *ArrayValue {
	size := 1
	for _, d := range dims {
		size *= d
	}
	elements := make([]Value, size)
	for i := range elements {
		elements[i] = defaultValue(elemType)
	}
	return &ArrayValue{Elements: elements, ElemType: elemType, Dims: dims}
}

// Copy returns a deep copy sharing no storage with the receiver. Scalars
// are immutable, so copying the element slice is enough.
func (a *ArrayValue) Copy() *ArrayValue {
	elements := make([]Value, len(a.Elements))
	copy(elements, a.Elements)
	return &ArrayValue{Elements: elements, ElemType: a.ElemType, Dims: a.Dims}
}

// offset converts a multi-dimensional subscript into the row-major flat
// index, checking every axis against [0, dim).
func (a *ArrayValue) offset(indices []int64) (int, bool) {
	if len(indices) != len(a.Dims) {
		return 0, false
	}
	off := 0
	for axis, idx := range indices {
		if idx < 0 || idx >= int64(a.Dims[axis]) {
			return 0, false
		}
		off = off*a.Dims[axis] + int(idx)
	}
	return off, true
}

// defaultValue returns the initial value for a variable of type t.
func defaultValue(t types.DataType) Value {
	switch t {
	case types.REAL:
		return &RealValue{Value: 0.0}
	case types.STRING:
		return &StringValue{Value: ""}
	default:
		return &IntegerValue{Value: 0}
	}
}

// coerce widens an INTEGER value where a REAL is expected; all other
// values pass through unchanged.
func coerce(target types.DataType, v Value) Value {
	if target == types.REAL {
		if iv, ok := v.(*IntegerValue); ok {
			return &RealValue{Value: float64(iv.Value)}
		}
	}
	return v
}
