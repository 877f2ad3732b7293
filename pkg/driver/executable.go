package driver

import (
	"fmt"
	"io"

	"loop/frontend-go/pkg/ast"
)

// Executable is one source unit of a module, ready for compilation.
type Executable struct {
	Module string
	File   string
	Source string
	// Unit is filled in by the compiler.
	Unit *ast.Unit
}

func newExecutable(r io.Reader, module, file string) (*Executable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("driver: read %s: %w", file, err)
	}
	return &Executable{Module: module, File: file, Source: string(data)}, nil
}
