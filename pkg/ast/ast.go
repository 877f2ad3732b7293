package ast

type NodeType string

const (
	NodeCall            NodeType = "Call"
	NodeConstructorCall NodeType = "ConstructorCall"
	NodePatternRule     NodeType = "PatternRule"
	NodeGuard           NodeType = "Guard"
	NodeVariable        NodeType = "Variable"
	NodeAssignment      NodeType = "Assignment"
	NodeFunctionDecl    NodeType = "FunctionDecl"
	NodeClassDecl       NodeType = "ClassDecl"
	NodeOther           NodeType = "Other"
)

// Node is implemented by every reduced program node. The set of
// implementations is closed to this package.
type Node interface {
	NodeType() NodeType
	Span() Span
	Children() []Node
	isNode()
}

type Position struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

type Span struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// Line returns the 1-based line the node starts on, or 0 when unknown.
func Line(node Node) int {
	if node == nil {
		return 0
	}
	return node.Span().Start.Line
}

// Column returns the column the node starts on, or 0 when unknown.
func Column(node Node) int {
	if node == nil {
		return 0
	}
	return node.Span().Start.Column
}

func compactNodes(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, node := range nodes {
		if node == nil {
			continue
		}
		out = append(out, node)
	}
	return out
}
