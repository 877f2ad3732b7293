package ast

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Unit fixtures are YAML documents describing a reduced program unit:
//
//	module: reverse
//	requires: {HashMap: java.util.HashMap}
//	classes: [{name: Point, fields: [x, y]}]
//	functions:
//	  - name: reverse
//	    params: [ls]
//	    body:
//	      - {type: Call, name: reverse, args: [{type: Variable, name: ls}], at: {line: 2, column: 3}}
//	    where: []
//
// They stand in for the parser when driving the verifier from the CLI and tests.

type fixtureUnit struct {
	Module    string            `yaml:"module"`
	Requires  map[string]string `yaml:"requires"`
	Classes   []fixtureClass    `yaml:"classes"`
	Functions []map[string]any  `yaml:"functions"`
}

type fixtureClass struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
	At     Position `yaml:"at"`
}

// fixtureKeys lists the keys each node mapping may carry besides "type" and
// "at". Anything else is rejected, so a misspelt flag cannot silently fall
// back to its default.
var fixtureKeys = map[NodeType][]string{
	NodeCall:            {"name", "args", "function", "hostStatic", "postfix"},
	NodeConstructorCall: {"name", "args", "module"},
	NodePatternRule:     {"patterns", "rhs"},
	NodeGuard:           {"expression", "then"},
	NodeOther:           {"label", "nodes"},
	NodeVariable:        {"name"},
	NodeAssignment:      {"name", "rhs"},
	NodeFunctionDecl:    {"name", "params", "body", "where"},
}

func checkFixtureKeys(node map[string]any, typ NodeType) error {
	allowed, ok := fixtureKeys[typ]
	if !ok {
		return nil
	}
	for key := range node {
		if key == "type" || key == "at" || slices.Contains(allowed, key) {
			continue
		}
		return fmt.Errorf("unknown field %q in %s", key, typ)
	}
	return nil
}

type nodeCategoryDecoder func(map[string]any, string) (Node, bool, error)

var nodeDecoders []nodeCategoryDecoder

func init() {
	nodeDecoders = []nodeCategoryDecoder{
		decodeCallNodes,
		decodeStructureNodes,
		decodeBindingNodes,
	}
}

// LoadUnitFile decodes a unit fixture from disk.
func LoadUnitFile(path string) (*Unit, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: open %s: %w", path, err)
	}
	defer file.Close()
	unit, err := DecodeUnit(file)
	if err != nil {
		return nil, fmt.Errorf("fixture: %s: %w", path, err)
	}
	return unit, nil
}

// DecodeUnit reads a unit fixture.
func DecodeUnit(r io.Reader) (*Unit, error) {
	var raw fixtureUnit
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode unit: %w", err)
	}
	unit := NewUnit(strings.TrimSpace(raw.Module))
	for short, fqn := range raw.Requires {
		unit.Require(fqn, short)
	}
	for _, class := range raw.Classes {
		if class.Name == "" {
			return nil, fmt.Errorf("decode unit: class without name")
		}
		decl := NewClassDecl(class.Name, class.Fields)
		SetSpan(decl, Span{Start: class.At, End: class.At})
		unit.DeclareClass(decl)
	}
	for _, rawFn := range raw.Functions {
		fn, err := decodeFunction(rawFn)
		if err != nil {
			return nil, err
		}
		unit.Declare(fn)
	}
	return unit, nil
}

func decodeNode(node map[string]any) (Node, error) {
	typ, _ := node["type"].(string)
	kind := NodeType(typ)
	if kind == "" {
		kind = NodeOther
	}
	if err := checkFixtureKeys(node, kind); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	for _, decoder := range nodeDecoders {
		decoded, handled, err := decoder(node, typ)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		if handled {
			applyPosition(decoded, node)
			return decoded, nil
		}
	}
	return nil, fmt.Errorf("decode %q: %w", typ, fs.ErrInvalid)
}

func decodeCallNodes(node map[string]any, typ string) (Node, bool, error) {
	switch NodeType(typ) {
	case NodeCall:
		name, err := requireString(node, "name")
		if err != nil {
			return nil, true, err
		}
		args, err := decodeNodeList(node["args"])
		if err != nil {
			return nil, true, err
		}
		return NewCall(
			name,
			args,
			boolField(node, "function", true),
			boolField(node, "hostStatic", false),
			boolField(node, "postfix", false),
		), true, nil
	case NodeConstructorCall:
		name, err := requireString(node, "name")
		if err != nil {
			return nil, true, err
		}
		args, err := decodeNodeList(node["args"])
		if err != nil {
			return nil, true, err
		}
		module, _ := node["module"].(string)
		return NewConstructorCall(module, name, args), true, nil
	}
	return nil, false, nil
}

func decodeStructureNodes(node map[string]any, typ string) (Node, bool, error) {
	switch NodeType(typ) {
	case NodePatternRule:
		patterns, err := decodeNodeList(node["patterns"])
		if err != nil {
			return nil, true, err
		}
		rhs, err := decodeOptionalNode(node["rhs"])
		if err != nil {
			return nil, true, err
		}
		return NewPatternRule(patterns, rhs), true, nil
	case NodeGuard:
		expr, err := decodeOptionalNode(node["expression"])
		if err != nil {
			return nil, true, err
		}
		line, err := decodeOptionalNode(node["then"])
		if err != nil {
			return nil, true, err
		}
		return NewGuard(expr, line), true, nil
	case NodeOther, "":
		children, err := decodeNodeList(node["nodes"])
		if err != nil {
			return nil, true, err
		}
		label, _ := node["label"].(string)
		return NewOther(label, children), true, nil
	}
	return nil, false, nil
}

func decodeBindingNodes(node map[string]any, typ string) (Node, bool, error) {
	switch NodeType(typ) {
	case NodeVariable:
		name, err := requireString(node, "name")
		if err != nil {
			return nil, true, err
		}
		return NewVariable(name), true, nil
	case NodeAssignment:
		name, err := requireString(node, "name")
		if err != nil {
			return nil, true, err
		}
		rhs, err := decodeOptionalNode(node["rhs"])
		if err != nil {
			return nil, true, err
		}
		return NewAssignment(NewVariable(name), rhs), true, nil
	case NodeFunctionDecl:
		fn, err := decodeFunction(node)
		return fn, true, err
	}
	return nil, false, nil
}

func decodeFunction(node map[string]any) (*FunctionDecl, error) {
	if err := checkFixtureKeys(node, NodeFunctionDecl); err != nil {
		return nil, fmt.Errorf("decode function: %w", err)
	}
	name, err := requireString(node, "name")
	if err != nil {
		return nil, fmt.Errorf("decode function: %w", err)
	}
	params, err := stringList(node["params"])
	if err != nil {
		return nil, fmt.Errorf("decode function %s: params: %w", name, err)
	}
	body, err := decodeNodeList(node["body"])
	if err != nil {
		return nil, fmt.Errorf("decode function %s: %w", name, err)
	}
	where, err := decodeNodeList(node["where"])
	if err != nil {
		return nil, fmt.Errorf("decode function %s: where: %w", name, err)
	}
	fn := NewFunctionDecl(name, params, body, where)
	applyPosition(fn, node)
	return fn, nil
}

func decodeOptionalNode(value any) (Node, error) {
	if value == nil {
		return nil, nil
	}
	raw, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected node mapping, got %T", value)
	}
	return decodeNode(raw)
}

func decodeNodeList(value any) ([]Node, error) {
	if value == nil {
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected node list, got %T", value)
	}
	out := make([]Node, 0, len(items))
	for _, item := range items {
		decoded, err := decodeOptionalNode(item)
		if err != nil {
			return nil, err
		}
		if decoded != nil {
			out = append(out, decoded)
		}
	}
	return out, nil
}

func applyPosition(target Node, node map[string]any) {
	raw, ok := node["at"].(map[string]any)
	if !ok {
		return
	}
	pos := Position{Line: intField(raw, "line"), Column: intField(raw, "column")}
	SetSpan(target, Span{Start: pos, End: pos})
}

func requireString(node map[string]any, key string) (string, error) {
	value, _ := node[key].(string)
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("missing %q", key)
	}
	return value, nil
}

func boolField(node map[string]any, key string, fallback bool) bool {
	if value, ok := node[key].(bool); ok {
		return value
	}
	return fallback
}

func intField(node map[string]any, key string) int {
	switch v := node[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func stringList(value any) ([]string, error) {
	if value == nil {
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", value)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", item)
		}
		out = append(out, str)
	}
	return out, nil
}
