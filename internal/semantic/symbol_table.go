package semantic

import (
	"fmt"

	"github.com/cwbudde/go-oberon/internal/ast"
	"github.com/cwbudde/go-oberon/internal/types"
)

// Symbol binds a name to its compile-time information: the data type, the
// constness flag, an optional literal value for constants, and the element
// type plus dimension list for arrays.
type Symbol struct {
	Name     string
	Type     types.DataType
	IsConst  bool
	Value    any            // compile-time constant value (nil for non-constants)
	ElemType types.DataType // element type when Type == ARRAY
	Dims     []int          // dimension sizes when Type == ARRAY
}

// SymbolTable manages the symbols of one lexical scope. Scopes chain
// through the outer link; the parent reference is a lookup edge only.
type SymbolTable struct {
	symbols map[string]*Symbol
	outer   *SymbolTable
}

// NewSymbolTable creates a new root-level symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// NewEnclosedSymbolTable creates a symbol table enclosed by an outer scope.
func NewEnclosedSymbolTable(outer *SymbolTable) *SymbolTable {
	st := NewSymbolTable()
	st.outer = outer
	return st
}

// Define adds a symbol to the current scope. Defining the same name twice
// in one scope is an error.
func (st *SymbolTable) Define(sym *Symbol) error {
	if _, exists := st.symbols[sym.Name]; exists {
		return fmt.Errorf("symbol '%s' already defined in this scope", sym.Name)
	}
	st.symbols[sym.Name] = sym
	return nil
}

// Resolve looks a name up in this scope and its parents.
func (st *SymbolTable) Resolve(name string) (*Symbol, bool) {
	if sym, ok := st.symbols[name]; ok {
		return sym, true
	}
	if st.outer != nil {
		return st.outer.Resolve(name)
	}
	return nil, false
}

// ResolveLocal looks a name up in this scope only.
func (st *SymbolTable) ResolveLocal(name string) (*Symbol, bool) {
	sym, ok := st.symbols[name]
	return sym, ok
}

// ProcedureInfo describes an entry in the flat procedure table: either a
// user procedure with its declaration, or a built-in marked by the Builtin
// flag. Built-ins are variadic and type-agnostic; they never go through
// the normal signature check.
type ProcedureInfo struct {
	Name    string
	Decl    *ast.ProcDecl // nil for built-ins
	Builtin bool
}

// IsFunction reports whether the procedure declares a return type.
func (pi *ProcedureInfo) IsFunction() bool {
	return pi.Decl != nil && pi.Decl.ReturnType != nil
}
