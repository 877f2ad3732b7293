package ast

// Call invokes a named target. Only function-style calls are resolved
// statically; host static calls and postfix property dereferences are
// trusted as written.
type Call struct {
	nodeImpl

	Name         string `json:"name"`
	Args         []Node `json:"args"`
	IsFunction   bool   `json:"isFunction"`
	IsHostStatic bool   `json:"isHostStatic"`
	IsPostfix    bool   `json:"isPostfix"`
}

func NewCall(name string, args []Node, isFunction, isHostStatic, isPostfix bool) *Call {
	return &Call{
		nodeImpl:     newNodeImpl(NodeCall),
		Name:         name,
		Args:         args,
		IsFunction:   isFunction,
		IsHostStatic: isHostStatic,
		IsPostfix:    isPostfix,
	}
}

func (c *Call) Children() []Node { return compactNodes(c.Args...) }

// ConstructorCall instantiates a local class or a host type. ModulePart is
// the qualifying prefix (for example "java.util.") when written in full.
type ConstructorCall struct {
	nodeImpl

	ModulePart string `json:"modulePart,omitempty"`
	Name       string `json:"name"`
	Args       []Node `json:"args"`
}

func NewConstructorCall(modulePart, name string, args []Node) *ConstructorCall {
	return &ConstructorCall{
		nodeImpl:   newNodeImpl(NodeConstructorCall),
		ModulePart: modulePart,
		Name:       name,
		Args:       args,
	}
}

func (c *ConstructorCall) Children() []Node { return compactNodes(c.Args...) }

// QualifiedName is the name as written in source, prefix included.
func (c *ConstructorCall) QualifiedName() string {
	return c.ModulePart + c.Name
}

// PatternRule is one arm of a pattern-matching function.
type PatternRule struct {
	nodeImpl

	Patterns []Node `json:"patterns"`
	RHS      Node   `json:"rhs"`
}

func NewPatternRule(patterns []Node, rhs Node) *PatternRule {
	return &PatternRule{nodeImpl: newNodeImpl(NodePatternRule), Patterns: patterns, RHS: rhs}
}

func (p *PatternRule) Children() []Node {
	return compactNodes(append(append([]Node{}, p.Patterns...), p.RHS)...)
}

// Guard wraps a condition and the line evaluated when it holds.
type Guard struct {
	nodeImpl

	Expression Node `json:"expression"`
	Line       Node `json:"line"`
}

func NewGuard(expression, line Node) *Guard {
	return &Guard{nodeImpl: newNodeImpl(NodeGuard), Expression: expression, Line: line}
}

func (g *Guard) Children() []Node { return compactNodes(g.Expression, g.Line) }

type Variable struct {
	nodeImpl

	Name string `json:"name"`
}

func NewVariable(name string) *Variable {
	return &Variable{nodeImpl: newNodeImpl(NodeVariable), Name: name}
}

func (v *Variable) Children() []Node { return nil }

type Assignment struct {
	nodeImpl

	LHS *Variable `json:"lhs"`
	RHS Node      `json:"rhs"`
}

func NewAssignment(lhs *Variable, rhs Node) *Assignment {
	return &Assignment{nodeImpl: newNodeImpl(NodeAssignment), LHS: lhs, RHS: rhs}
}

func (a *Assignment) Children() []Node {
	if a.LHS == nil {
		return compactNodes(a.RHS)
	}
	return compactNodes(a.LHS, a.RHS)
}

// Other stands in for every node kind the verifier has no rule for
// (literals, operators, lists, ...). Only its children are visited.
type Other struct {
	nodeImpl

	Label string `json:"label,omitempty"`
	Nodes []Node `json:"nodes,omitempty"`
}

func NewOther(label string, children []Node) *Other {
	return &Other{nodeImpl: newNodeImpl(NodeOther), Label: label, Nodes: children}
}

func (o *Other) Children() []Node { return compactNodes(o.Nodes...) }

// FunctionDecl is a top-level or where-block function.
type FunctionDecl struct {
	nodeImpl

	Name       string   `json:"name"`
	Params     []string `json:"params"`
	Body       []Node   `json:"body"`
	WhereBlock []Node   `json:"whereBlock,omitempty"`
}

func NewFunctionDecl(name string, params []string, body []Node, whereBlock []Node) *FunctionDecl {
	return &FunctionDecl{
		nodeImpl:   newNodeImpl(NodeFunctionDecl),
		Name:       name,
		Params:     params,
		Body:       body,
		WhereBlock: whereBlock,
	}
}

func (f *FunctionDecl) Children() []Node { return compactNodes(f.Body...) }

// Arity is the number of declared parameters.
func (f *FunctionDecl) Arity() int { return len(f.Params) }

type ClassDecl struct {
	nodeImpl

	Name   string   `json:"name"`
	Fields []string `json:"fields,omitempty"`
}

func NewClassDecl(name string, fields []string) *ClassDecl {
	return &ClassDecl{nodeImpl: newNodeImpl(NodeClassDecl), Name: name, Fields: fields}
}

func (c *ClassDecl) Children() []Node { return nil }
