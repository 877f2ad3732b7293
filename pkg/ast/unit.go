package ast

import "strings"

// Unit is one compiled module after parsing and reduction: its top-level
// functions, classes and the require mapping from bare type names to fully
// qualified host type names.
type Unit struct {
	Module    string
	Functions []*FunctionDecl
	Classes   []*ClassDecl
	Requires  map[string]string
}

func NewUnit(module string) *Unit {
	return &Unit{Module: module, Requires: make(map[string]string)}
}

// Declare appends a top-level function.
func (u *Unit) Declare(fn *FunctionDecl) *Unit {
	if fn != nil {
		u.Functions = append(u.Functions, fn)
	}
	return u
}

// DeclareClass appends a class declaration.
func (u *Unit) DeclareClass(class *ClassDecl) *Unit {
	if class != nil {
		u.Classes = append(u.Classes, class)
	}
	return u
}

// Require records a require clause such as "java.util.HashMap", binding the
// last dotted segment ("HashMap") to the full name. An explicit alias
// overrides the derived short name.
func (u *Unit) Require(fqn string, alias ...string) *Unit {
	fqn = strings.TrimSpace(fqn)
	if fqn == "" {
		return u
	}
	short := fqn
	if idx := strings.LastIndex(fqn, "."); idx >= 0 {
		short = fqn[idx+1:]
	}
	if len(alias) > 0 && strings.TrimSpace(alias[0]) != "" {
		short = strings.TrimSpace(alias[0])
	}
	if u.Requires == nil {
		u.Requires = make(map[string]string)
	}
	u.Requires[short] = fqn
	return u
}

// Function returns the top-level function with the given name.
func (u *Unit) Function(name string) *FunctionDecl {
	if u == nil {
		return nil
	}
	for _, fn := range u.Functions {
		if fn != nil && fn.Name == name {
			return fn
		}
	}
	return nil
}

// Class returns the class declared in this unit with the given name.
func (u *Unit) Class(name string) *ClassDecl {
	if u == nil {
		return nil
	}
	for _, class := range u.Classes {
		if class != nil && class.Name == name {
			return class
		}
	}
	return nil
}

// ResolveHostType maps a bare name through the require clauses.
func (u *Unit) ResolveHostType(name string) (string, bool) {
	if u == nil || u.Requires == nil {
		return "", false
	}
	fqn, ok := u.Requires[name]
	return fqn, ok
}
