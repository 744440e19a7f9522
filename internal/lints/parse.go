package lints

import (
	"go/ast"
	"go/parser"
	"go/token"
)

// ParseFile parses a Go or Gno source file. When content is nil the file is
// read from disk.
func ParseFile(filename string, content []byte) (*ast.File, *token.FileSet, error) {
	fset := token.NewFileSet()
	var node *ast.File
	var err error
	if content == nil {
		node, err = parser.ParseFile(fset, filename, nil, parser.ParseComments)
	} else {
		node, err = parser.ParseFile(fset, filename, content, parser.ParseComments)
	}
	if err != nil {
		return nil, nil, err
	}

	return node, fset, nil
}
