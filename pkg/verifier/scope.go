package verifier

import "loop/frontend-go/pkg/ast"

// DeclID is a stable index of a function declaration within one
// verification pass. Zero is the sentinel for "no declaration".
type DeclID uint32

const NoDeclID DeclID = 0

func (id DeclID) IsValid() bool { return id != NoDeclID }

// declArena numbers every function declaration of a unit, nested
// where-block declarations included.
type declArena struct {
	decls []*ast.FunctionDecl
	ids   map[*ast.FunctionDecl]DeclID
}

func newDeclArena(unit *ast.Unit) *declArena {
	arena := &declArena{
		decls: []*ast.FunctionDecl{nil},
		ids:   make(map[*ast.FunctionDecl]DeclID),
	}
	if unit == nil {
		return arena
	}
	for _, fn := range unit.Functions {
		arena.add(fn)
	}
	return arena
}

func (a *declArena) add(fn *ast.FunctionDecl) DeclID {
	if fn == nil {
		return NoDeclID
	}
	if id, ok := a.ids[fn]; ok {
		return id
	}
	id := DeclID(len(a.decls))
	a.decls = append(a.decls, fn)
	a.ids[fn] = id
	for _, inner := range fn.WhereBlock {
		if nested, ok := inner.(*ast.FunctionDecl); ok {
			a.add(nested)
		}
	}
	return id
}

func (a *declArena) decl(id DeclID) *ast.FunctionDecl {
	if !id.IsValid() || int(id) >= len(a.decls) {
		return nil
	}
	return a.decls[id]
}

func (a *declArena) id(fn *ast.FunctionDecl) DeclID {
	if fn == nil {
		return NoDeclID
	}
	return a.ids[fn]
}

// ScopeChain lists the enclosing declarations of the current position,
// innermost last.
type ScopeChain []DeclID

func (c ScopeChain) push(id DeclID) ScopeChain { return append(c, id) }

func (c ScopeChain) pop() ScopeChain {
	if len(c) == 0 {
		return c
	}
	return c[:len(c)-1]
}

// resolveCall walks the chain innermost-first. A declaration matches its own
// name, which covers direct recursion; otherwise its where-block is scanned
// for a nested function. Module-level functions are consulted last.
func (a *declArena) resolveCall(chain ScopeChain, unit *ast.Unit, name string) DeclID {
	for i := len(chain) - 1; i >= 0; i-- {
		fn := a.decl(chain[i])
		if fn == nil {
			continue
		}
		if fn.Name == name {
			return chain[i]
		}
		for _, inner := range fn.WhereBlock {
			if nested, ok := inner.(*ast.FunctionDecl); ok && nested != nil && nested.Name == name {
				return a.id(nested)
			}
		}
	}
	if target := unit.Function(name); target != nil {
		return a.id(target)
	}
	// TODO: resolve through functions exported by required loop modules once
	// units carry their module imports.
	return NoDeclID
}

// resolveVar looks for a where-block assignment binding name along the
// chain. Only used when strict variable checking is requested.
func (a *declArena) resolveVar(chain ScopeChain, name string) bool {
	for i := len(chain) - 1; i >= 0; i-- {
		fn := a.decl(chain[i])
		if fn == nil {
			continue
		}
		for _, inner := range fn.WhereBlock {
			assignment, ok := inner.(*ast.Assignment)
			if !ok || assignment == nil || assignment.LHS == nil {
				continue
			}
			if assignment.LHS.Name == name {
				return true
			}
		}
	}
	return false
}
