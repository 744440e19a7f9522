package lints

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/gnolang/selfassign/internal/semantic"
)

// RemovableAssignments indexes, by operator position, the `x = y` statements
// that can be deleted outright without changing what the file does or whether
// it compiles. A statement qualifies when it
//   - sits directly in a statement list,
//   - contains no call and no channel receive, and
//   - is not the last read of a local variable or of an import.
//
// A nil info type-checks the file on its own.
func RemovableAssignments(fset *token.FileSet, file *ast.File, info *types.Info) map[token.Pos]*ast.AssignStmt {
	if info == nil {
		info = semantic.TypeCheck(fset, file)
	}
	reads := collectReads(file, info)
	params := paramRanges(file)

	out := make(map[token.Pos]*ast.AssignStmt)
	collect := func(list []ast.Stmt) {
		for _, stmt := range list {
			as, ok := stmt.(*ast.AssignStmt)
			if !ok || as.Tok != token.ASSIGN || len(as.Lhs) != 1 || len(as.Rhs) != 1 {
				continue
			}
			if hasSideEffects(as) || !readElsewhere(as, info, reads, params) {
				continue
			}
			out[as.TokPos] = as
		}
	}
	ast.Inspect(file, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.BlockStmt:
			collect(n.List)
		case *ast.CaseClause:
			collect(n.Body)
		case *ast.CommClause:
			collect(n.Body)
		}
		return true
	})
	return out
}

func hasSideEffects(stmt *ast.AssignStmt) bool {
	found := false
	ast.Inspect(stmt, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.CallExpr:
			found = true
		case *ast.UnaryExpr:
			if n.Op == token.ARROW {
				found = true
			}
		case *ast.FuncLit:
			// a literal is only a value until it is called
			return false
		}
		return !found
	})
	return found
}

// collectReads maps every object to the positions it is read at. Identifiers
// assigned to as a whole by `=` or `:=` are writes, not reads.
func collectReads(file *ast.File, info *types.Info) map[types.Object][]token.Pos {
	writes := make(map[*ast.Ident]bool)
	ast.Inspect(file, func(n ast.Node) bool {
		if as, ok := n.(*ast.AssignStmt); ok && (as.Tok == token.ASSIGN || as.Tok == token.DEFINE) {
			for _, lhs := range as.Lhs {
				if id, ok := astutil.Unparen(lhs).(*ast.Ident); ok {
					writes[id] = true
				}
			}
		}
		return true
	})

	reads := make(map[types.Object][]token.Pos)
	for id, obj := range info.Uses {
		if !writes[id] {
			reads[obj] = append(reads[obj], id.Pos())
		}
	}
	return reads
}

type posRange struct{ pos, end token.Pos }

// paramRanges lists the signatures of the functions of file. Variables
// declared there are parameters, which may go unused.
func paramRanges(file *ast.File) []posRange {
	var ranges []posRange
	ast.Inspect(file, func(n ast.Node) bool {
		if ft, ok := n.(*ast.FuncType); ok {
			ranges = append(ranges, posRange{ft.Pos(), ft.End()})
		}
		return true
	})
	return ranges
}

// readElsewhere reports whether every local variable and import the statement
// refers to is also read outside of it. An identifier that does not resolve
// makes the statement unsafe to delete.
func readElsewhere(stmt *ast.AssignStmt, info *types.Info, reads map[types.Object][]token.Pos, params []posRange) bool {
	ok := true
	ast.Inspect(stmt, func(n ast.Node) bool {
		if !ok {
			return false
		}
		if sel, isSel := n.(*ast.SelectorExpr); isSel {
			// the field or method name is not a variable
			ast.Inspect(sel.X, func(n ast.Node) bool {
				if id, isIdent := n.(*ast.Ident); isIdent && !identReadElsewhere(id, stmt, info, reads, params) {
					ok = false
				}
				return ok
			})
			return false
		}
		if id, isIdent := n.(*ast.Ident); isIdent && !identReadElsewhere(id, stmt, info, reads, params) {
			ok = false
		}
		return ok
	})
	return ok
}

func identReadElsewhere(id *ast.Ident, stmt *ast.AssignStmt, info *types.Info, reads map[types.Object][]token.Pos, params []posRange) bool {
	if id.Name == "_" {
		return true
	}
	obj := info.ObjectOf(id)
	switch obj := obj.(type) {
	case nil:
		return false
	case *types.PkgName:
	case *types.Var:
		if obj.IsField() || obj.Pkg() == nil || obj.Parent() == obj.Pkg().Scope() {
			return true
		}
		for _, r := range params {
			if r.pos <= obj.Pos() && obj.Pos() < r.end {
				return true
			}
		}
	default:
		return true
	}
	for _, pos := range reads[obj] {
		if pos < stmt.Pos() || pos >= stmt.End() {
			return true
		}
	}
	return false
}
