package ast

// Fn builds a function declaration with an optional where-block.
func Fn(name string, params []string, body []Node, where ...Node) *FunctionDecl {
	return NewFunctionDecl(name, params, body, where)
}

// Invoke builds a plain function-style call.
func Invoke(name string, args ...Node) *Call {
	return NewCall(name, args, true, false, false)
}

// HostStatic builds a call into host static code.
func HostStatic(name string, args ...Node) *Call {
	return NewCall(name, args, true, true, false)
}

// Postfix builds a property dereference or method-style call.
func Postfix(name string, args ...Node) *Call {
	return NewCall(name, args, true, false, true)
}

func New(name string, args ...Node) *ConstructorCall {
	return NewConstructorCall("", name, args)
}

func NewQualified(modulePart, name string, args ...Node) *ConstructorCall {
	return NewConstructorCall(modulePart, name, args)
}

func Var(name string) *Variable {
	return NewVariable(name)
}

func Assign(name string, rhs Node) *Assignment {
	return NewAssignment(NewVariable(name), rhs)
}

func Rule(rhs Node, patterns ...Node) *PatternRule {
	return NewPatternRule(patterns, rhs)
}

func When(expression, line Node) *Guard {
	return NewGuard(expression, line)
}

func Lit(label string) *Other {
	return NewOther(label, nil)
}

func Group(label string, children ...Node) *Other {
	return NewOther(label, children)
}

func Class(name string, fields ...string) *ClassDecl {
	return NewClassDecl(name, fields)
}

// At stamps a source position on the node and returns it.
func At[T Node](node T, line, column int) T {
	SetSpan(node, Span{Start: Position{Line: line, Column: column}, End: Position{Line: line, Column: column}})
	return node
}
