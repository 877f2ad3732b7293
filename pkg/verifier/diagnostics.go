package verifier

import (
	"fmt"
	"strings"

	"loop/frontend-go/pkg/ast"
)

// Diagnostic is one verification finding. It is a value type with no
// exported fields, so a record cannot change once it has been reported.
type Diagnostic struct {
	message string
	line    int
	column  int
}

// NewDiagnostic builds a record. Line is 1-based; column follows the
// parser's convention.
func NewDiagnostic(message string, line, column int) Diagnostic {
	return Diagnostic{message: message, line: line, column: column}
}

func diagnosticAt(node ast.Node, message string) Diagnostic {
	return NewDiagnostic(message, ast.Line(node), ast.Column(node))
}

func (d Diagnostic) Message() string { return d.message }
func (d Diagnostic) Line() int       { return d.line }
func (d Diagnostic) Column() int     { return d.column }

func (d Diagnostic) String() string {
	return Describe("", d)
}

// Describe formats a diagnostic for CLI output, prefixing the source path
// when one is known.
func Describe(path string, diag Diagnostic) string {
	message := strings.TrimSpace(diag.message)
	location := formatLocation(path, diag.line, diag.column)
	if location == "" {
		return message
	}
	return fmt.Sprintf("%s %s", location, message)
}

func formatLocation(path string, line, column int) string {
	path = strings.TrimSpace(path)
	switch {
	case path != "" && line > 0 && column > 0:
		return fmt.Sprintf("%s:%d:%d:", path, line, column)
	case path != "" && line > 0:
		return fmt.Sprintf("%s:%d:", path, line)
	case path != "":
		return path + ":"
	case line > 0 && column > 0:
		return fmt.Sprintf("line %d, column %d:", line, column)
	case line > 0:
		return fmt.Sprintf("line %d:", line)
	default:
		return ""
	}
}

func unresolvedFunction(call *ast.Call) Diagnostic {
	return diagnosticAt(call, "Cannot resolve function: "+call.Name)
}

func arityMismatch(call *ast.Call, target *ast.FunctionDecl) Diagnostic {
	return diagnosticAt(call, fmt.Sprintf("Incorrect number of arguments to: %s (expected %d, found %d)",
		target.Name, target.Arity(), len(call.Args)))
}

func unresolvedType(call *ast.ConstructorCall) Diagnostic {
	return diagnosticAt(call, "Cannot resolve type (either as local or host): "+call.QualifiedName())
}

func unresolvedVariable(variable *ast.Variable) Diagnostic {
	return diagnosticAt(variable, "Cannot resolve variable: "+variable.Name)
}
