package hosttypes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"loop/frontend-go/pkg/ast"
	"loop/frontend-go/pkg/verifier"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func TestDefaultRegistryKnowsCommonTypes(t *testing.T) {
	reg := Default()
	require.Greater(t, reg.Len(), 5)

	arities, ok := reg.LookupType("java.util.HashMap")
	require.True(t, ok)
	require.Equal(t, []int{0, 1, 2}, arities)

	_, ok = reg.LookupType("java.util.Nope")
	require.False(t, ok)
}

func TestRegisterMergesAndDeduplicates(t *testing.T) {
	reg := NewRegistry()
	reg.Register("demo.Widget", 2, 0)
	reg.Register("demo.Widget", 0, 3, -1)
	reg.Register("demo.Sealed")

	arities, ok := reg.LookupType("demo.Widget")
	require.True(t, ok)
	require.Equal(t, []int{0, 2, 3}, arities)

	arities, ok = reg.LookupType("demo.Sealed")
	require.True(t, ok)
	require.Empty(t, arities)
}

func TestLoadFileYAMLAndTOML(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "bindings.yml")
	writeFile(t, yamlPath, `
types:
  - name: acme.Rocket
    constructors: [1]
`)
	tomlPath := filepath.Join(dir, "bindings.toml")
	writeFile(t, tomlPath, `
[[types]]
name = "acme.Anvil"
constructors = [0, 2]
`)

	reg := NewRegistry()
	require.NoError(t, reg.LoadFile(yamlPath))
	require.NoError(t, reg.LoadFile(tomlPath))

	arities, ok := reg.LookupType("acme.Rocket")
	require.True(t, ok)
	require.Equal(t, []int{1}, arities)
	arities, ok = reg.LookupType("acme.Anvil")
	require.True(t, ok)
	require.Equal(t, []int{0, 2}, arities)

	require.Error(t, reg.LoadFile(filepath.Join(dir, "bindings.json")))
}

func TestLoadFileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.yml")
	writeFile(t, path, `
types:
  - name: acme.Rocket
    ctors: [1]
`)
	require.Error(t, NewRegistry().LoadFile(path))
}

func TestRegistryAsVerifierOracle(t *testing.T) {
	unit := ast.NewUnit("m").
		Require("java.util.ArrayList").
		Require("java.util.Date").
		Declare(ast.Fn("main", nil, []ast.Node{
			ast.New("ArrayList"),
			ast.New("Date", ast.Lit("1"), ast.Lit("2")),
		}))

	diags := verifier.Verify(unit, verifier.WithTypeResolver(Default()))
	require.Len(t, diags, 1)
	require.Equal(t, "Cannot resolve type (either as local or host): Date", diags[0].Message())
}
