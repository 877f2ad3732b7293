package verifier

import (
	"github.com/pterm/pterm"

	"loop/frontend-go/pkg/ast"
	"loop/frontend-go/pkg/logging"
)

// globals are always bound at runtime and never need a declaration.
var globals = map[string]struct{}{
	"ARGV": {},
	"ENV":  {},
}

// Option configures a verification pass.
type Option func(*Verifier)

// WithTypeResolver installs the host type oracle used for constructor calls.
func WithTypeResolver(types TypeResolver) Option {
	return func(v *Verifier) {
		if types != nil {
			v.types = types
		}
	}
}

// WithStrictVariables turns on variable resolution against where-block
// assignments. It is off by default: the lookup ignores parameters, pattern
// bindings and closures, so it over-reports on valid programs.
func WithStrictVariables() Option {
	return func(v *Verifier) { v.strictVariables = true }
}

// WithLogger sets the logger used for debug output. A nil logger keeps the
// default, which discards everything.
func WithLogger(logger *pterm.Logger) Option {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Verifier walks a reduced unit looking for calls, constructor references
// and arities that cannot be resolved statically. It never alters the unit
// and never stops early; skipping it has no effect on a correct program.
type Verifier struct {
	unit            *ast.Unit
	types           TypeResolver
	strictVariables bool
	logger          *pterm.Logger

	arena       *declArena
	chain       ScopeChain
	diagnostics []Diagnostic
}

// New prepares a verifier for one unit.
func New(unit *ast.Unit, opts ...Option) *Verifier {
	if unit == nil {
		unit = ast.NewUnit("")
	}
	v := &Verifier{
		unit:   unit,
		types:  noHostTypes{},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify is shorthand for New(unit, opts...).Verify().
func Verify(unit *ast.Unit, opts ...Option) []Diagnostic {
	return New(unit, opts...).Verify()
}

// Verify returns every finding in traversal order, or nil when there are none.
func (v *Verifier) Verify() []Diagnostic {
	v.arena = newDeclArena(v.unit)
	v.chain = nil
	v.diagnostics = nil

	for _, fn := range v.unit.Functions {
		v.verifyFunction(v.arena.id(fn))
	}

	v.logger.Debug("verified unit", v.logger.Args(
		"module", v.unit.Module,
		"functions", len(v.arena.decls)-1,
		"diagnostics", len(v.diagnostics),
	))
	return v.diagnostics
}

func (v *Verifier) verifyFunction(id DeclID) {
	fn := v.arena.decl(id)
	if fn == nil {
		return
	}
	v.chain = v.chain.push(id)
	for _, node := range fn.Body {
		v.verifyNode(node)
	}
	for _, inner := range fn.WhereBlock {
		if nested, ok := inner.(*ast.FunctionDecl); ok {
			v.verifyFunction(v.arena.id(nested))
			continue
		}
		v.verifyNode(inner)
	}
	v.chain = v.chain.pop()
}

// verifyNode checks sub-nodes before the node itself so errors nested in
// arguments are reported on their own. Calls, pattern rules and guards
// choose which sub-nodes to visit.
func (v *Verifier) verifyNode(node ast.Node) {
	if node == nil {
		return
	}
	switch n := node.(type) {
	case *ast.Call:
		v.verifyCall(n)
	case *ast.PatternRule:
		v.verifyNode(n.RHS)
	case *ast.Guard:
		v.verifyNode(n.Expression)
		v.verifyNode(n.Line)
	case *ast.Variable:
		v.verifyVariable(n)
	case *ast.ConstructorCall:
		v.verifyChildren(n)
		if !v.resolveType(n) {
			v.report(unresolvedType(n))
		}
	case *ast.Assignment:
		v.verifyChildren(n)
	case *ast.FunctionDecl:
		v.verifyChildren(n)
	case *ast.ClassDecl:
	case *ast.Other:
		v.verifyChildren(n)
	default:
		v.verifyChildren(n)
	}
}

func (v *Verifier) verifyChildren(node ast.Node) {
	for _, child := range node.Children() {
		v.verifyNode(child)
	}
}

// verifyCall trusts host static calls and postfix dereferences as written;
// neither their target nor their arguments are examined.
func (v *Verifier) verifyCall(call *ast.Call) {
	if !call.IsFunction || call.IsHostStatic || call.IsPostfix {
		return
	}
	for _, arg := range call.Args {
		v.verifyNode(arg)
	}

	target := v.arena.decl(v.arena.resolveCall(v.chain, v.unit, call.Name))
	if target == nil {
		v.report(unresolvedFunction(call))
		return
	}
	if target.Arity() != len(call.Args) {
		v.report(arityMismatch(call, target))
	}
}

func (v *Verifier) verifyVariable(variable *ast.Variable) {
	if !v.strictVariables {
		return
	}
	if _, ok := globals[variable.Name]; ok {
		return
	}
	if !v.arena.resolveVar(v.chain, variable.Name) {
		v.report(unresolvedVariable(variable))
	}
}

func (v *Verifier) report(diag Diagnostic) {
	v.diagnostics = append(v.diagnostics, diag)
}
