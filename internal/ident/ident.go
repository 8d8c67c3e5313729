// Package ident implements the identifier table: component D. It maintains
// a stack of lexical scopes and the global/local/parameter lookup and
// shadowing rules of spec §4.4.
package ident

import "fmt"

// Type is the closed set of identifier types.
type Type string

// The closed set of identifier types.
const (
	TypeInt      Type = "int"
	TypeFloat    Type = "float"
	TypeBool     Type = "bool"
	TypeStr      Type = "str"
	TypeProgram  Type = "program"
	TypeFunction Type = "function"
)

// IsScalarType reports whether t names one of the four variable types
// (as opposed to "program" or "function").
func IsScalarType(t Type) bool {
	switch t {
	case TypeInt, TypeFloat, TypeBool, TypeStr:
		return true
	}
	return false
}

// Direction is a parameter's passing mode.
type Direction string

// The closed set of parameter directions.
const (
	DirIn  Direction = "in"
	DirOut Direction = "out"
)

// Location classifies where on the runtime stack an identifier lives.
type Location string

// The closed set of identifier locations.
const (
	LocGlobal Location = "global"
	LocParam  Location = "param"
	LocLocal  Location = "local"
)

// Parameter pairs a parameter's identifier with its passing direction.
type Parameter struct {
	Ident     *Identifier
	Direction Direction
}

// Identifier is a named, typed entry in the table: a variable, a function,
// or the enclosing program.
type Identifier struct {
	Name    string
	Type    Type
	Size    *int // nil for a scalar, array length otherwise
	Params  []Parameter
	Address int
}

// NameError reports a failed Add or Find.
type NameError struct {
	Msg string
}

func (e *NameError) Error() string { return e.Msg }

func newNameError(format string, args ...interface{}) error {
	return &NameError{Msg: fmt.Sprintf(format, args...)}
}

// scope is one lexical level: a name-to-identifier map, plus the owner
// that introduced it (nil for the global scope, otherwise the enclosing
// procedure/program).
type scope struct {
	names map[string]*Identifier
	owner *Identifier // nil at the global scope
}

// Table is a non-empty stack of scopes; scope 0 is always global.
type Table struct {
	scopes []*scope
}

// New creates a table with only the global scope present.
func New() *Table {
	return &Table{scopes: []*scope{{names: make(map[string]*Identifier)}}}
}

// PushScope opens a new innermost scope owned by owner (a function or
// program identifier).
func (t *Table) PushScope(owner *Identifier) {
	t.scopes = append(t.scopes, &scope{names: make(map[string]*Identifier), owner: owner})
}

// PopScope closes the innermost scope.
func (t *Table) PopScope() {
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth returns the number of scopes currently open (1 means only global).
func (t *Table) Depth() int { return len(t.scopes) }

// Add inserts id into the innermost scope, or into the global scope if
// isGlobal is set. isGlobal additions are only legal while at most two
// scopes exist (the program hasn't descended into a nested procedure) and
// must not already exist in scope 0 or scope 1.
func (t *Table) Add(id *Identifier, isGlobal bool) error {
	if isGlobal {
		if len(t.scopes) > 2 {
			return newNameError("global name must be defined in program scope")
		}
		if _, ok := t.scopes[0].names[id.Name]; ok {
			return newNameError("name already declared at this scope")
		}
		if len(t.scopes) > 1 {
			if _, ok := t.scopes[1].names[id.Name]; ok {
				return newNameError("name already declared at this scope")
			}
		}
		t.scopes[0].names[id.Name] = id
		return nil
	}

	inner := t.scopes[len(t.scopes)-1]
	if _, ok := inner.names[id.Name]; ok {
		return newNameError("name already declared at this scope")
	}
	inner.names[id.Name] = id
	return nil
}

// Find looks up name in the innermost scope, falling back to global.
// Intermediate scopes are never searched: the language has no nested-scope
// capture.
func (t *Table) Find(name string) (*Identifier, error) {
	inner := t.scopes[len(t.scopes)-1]
	if id, ok := inner.names[name]; ok {
		return id, nil
	}
	if id, ok := t.scopes[0].names[name]; ok {
		return id, nil
	}
	return nil, newNameError("not declared in this scope")
}

// Location reports whether name resolves as global, a parameter of the
// current procedure, or a plain local.
func (t *Table) Location(name string) Location {
	if _, ok := t.scopes[0].names[name]; ok {
		return LocGlobal
	}
	if t.isParam(name) {
		return LocParam
	}
	return LocLocal
}

func (t *Table) isParam(name string) bool {
	owner := t.CurrentOwner()
	if owner == nil {
		return false
	}
	for _, p := range owner.Params {
		if p.Ident.Name == name {
			return true
		}
	}
	return false
}

// ParamDirection returns the direction of name as a parameter of the
// current procedure, if it is one.
func (t *Table) ParamDirection(name string) (Direction, bool) {
	owner := t.CurrentOwner()
	if owner == nil {
		return "", false
	}
	for _, p := range owner.Params {
		if p.Ident.Name == name {
			return p.Direction, true
		}
	}
	return "", false
}

// CurrentOwner returns the identifier of the innermost non-global owner,
// or nil at global scope.
func (t *Table) CurrentOwner() *Identifier {
	return t.scopes[len(t.scopes)-1].owner
}
