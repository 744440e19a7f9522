package semantic

import (
	"go/ast"
	"go/token"
	"go/types"
)

// Unit is one parsed source file together with the warnings earlier passes
// attached to it.
type Unit struct {
	Filename string
	File     *ast.File
	Fset     *token.FileSet
	// Info is the type information the warnings were derived from, once
	// Prepare ran.
	Info *types.Info

	warnings []Warning
}

func NewUnit(filename string, file *ast.File, fset *token.FileSet) *Unit {
	return &Unit{Filename: filename, File: file, Fset: fset}
}

// AddWarnings attaches warnings to the unit.
func (u *Unit) AddWarnings(ws ...Warning) {
	u.warnings = append(u.warnings, ws...)
}

// Warnings returns a copy of the attached warnings of the given kind.
func (u *Unit) Warnings(kind WarningKind) []Warning {
	var out []Warning
	for _, w := range u.warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

// Prepare runs the semantic pass over the unit and attaches its warnings.
// A nil info type-checks the file on its own first.
func Prepare(u *Unit, info *types.Info) {
	if info == nil {
		info = TypeCheck(u.Fset, u.File)
	}
	u.Info = info
	u.AddWarnings(Analyze(u.Fset, u.File, info)...)
}
