package ast

import "testing"

func TestUnitRequireDerivesShortName(t *testing.T) {
	unit := NewUnit("m").
		Require("java.util.HashMap").
		Require("java.util.concurrent.ConcurrentHashMap", "CMap").
		Require("  ")

	if fqn, ok := unit.ResolveHostType("HashMap"); !ok || fqn != "java.util.HashMap" {
		t.Fatalf("HashMap = %q, %v", fqn, ok)
	}
	if fqn, ok := unit.ResolveHostType("CMap"); !ok || fqn != "java.util.concurrent.ConcurrentHashMap" {
		t.Fatalf("CMap = %q, %v", fqn, ok)
	}
	if _, ok := unit.ResolveHostType("ConcurrentHashMap"); ok {
		t.Fatalf("alias should replace the derived name")
	}
	if len(unit.Requires) != 2 {
		t.Fatalf("Requires = %#v", unit.Requires)
	}
}

func TestUnitLookupsAreNilSafe(t *testing.T) {
	var unit *Unit
	if unit.Function("f") != nil || unit.Class("C") != nil {
		t.Fatalf("nil unit lookups should return nil")
	}
	if _, ok := unit.ResolveHostType("X"); ok {
		t.Fatalf("nil unit resolved a host type")
	}
}

func TestChildrenExposeSubNodes(t *testing.T) {
	rhs := Invoke("f")
	pattern := Lit("[]")
	rule := Rule(rhs, pattern)
	if got := rule.Children(); len(got) != 2 || got[0] != Node(pattern) || got[1] != Node(rhs) {
		t.Fatalf("PatternRule children = %#v", got)
	}

	guard := When(Var("x"), nil)
	if got := guard.Children(); len(got) != 1 {
		t.Fatalf("Guard children should skip nil: %#v", got)
	}

	fn := Fn("f", []string{"a", "b"}, []Node{rhs}, Fn("inner", nil, nil))
	if fn.Arity() != 2 || len(fn.Children()) != 1 {
		t.Fatalf("FunctionDecl children = %#v", fn.Children())
	}
}

func TestAtSetsPosition(t *testing.T) {
	call := At(Invoke("f"), 7, 3)
	if Line(call) != 7 || Column(call) != 3 {
		t.Fatalf("position = %d:%d", Line(call), Column(call))
	}
	if Line(nil) != 0 {
		t.Fatalf("Line(nil) should be 0")
	}
}
