package verifier

import "loop/frontend-go/pkg/ast"

// TypeResolver answers whether a fully qualified host type exists and which
// constructor arities it exposes publicly.
type TypeResolver interface {
	LookupType(fqn string) (arities []int, found bool)
}

// TypeResolverFunc adapts a function to TypeResolver.
type TypeResolverFunc func(fqn string) ([]int, bool)

func (f TypeResolverFunc) LookupType(fqn string) ([]int, bool) {
	return f(fqn)
}

type noHostTypes struct{}

func (noHostTypes) LookupType(string) ([]int, bool) { return nil, false }

// resolveType accepts classes declared in the unit outright. Other names
// are qualified (explicit prefix, else the require mapping) and looked up
// in the host. A host type only counts when some constructor takes exactly
// as many arguments as the call supplies; parameter types are not compared,
// and a type with no matching constructor fails like a missing type.
func (v *Verifier) resolveType(call *ast.ConstructorCall) bool {
	if v.unit.Class(call.Name) != nil {
		return true
	}

	var fqn string
	if call.ModulePart != "" {
		fqn = call.ModulePart + call.Name
	} else {
		mapped, ok := v.unit.ResolveHostType(call.Name)
		if !ok {
			return false
		}
		fqn = mapped
	}

	arities, found := v.types.LookupType(fqn)
	if !found {
		return false
	}
	supplied := len(call.Args)
	for _, arity := range arities {
		if arity == supplied {
			return true
		}
	}
	return false
}
