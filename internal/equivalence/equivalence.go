// Package equivalence decides whether two Go expressions are syntactically
// equivalent.
//
// Two expressions are equivalent when their parsed trees have the same shape:
// the same node kinds, the same operators and the same leaves, compared child by
// child in order. Positions, comments and formatting never matter, and neither do
// surrounding parentheses. No name resolution or type information is used, so
// equivalence is a purely structural notion: `a + b` and `b + a` differ, and two
// calls `f()` are equivalent even though each call may do something different.
package equivalence

import (
	"go/ast"
	"go/constant"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"
)

// AreEquivalent reports whether a and b are syntactically equivalent.
// Two nil expressions are equivalent; a nil and a non-nil one are not.
func AreEquivalent(a, b ast.Expr) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	a, b = astutil.Unparen(a), astutil.Unparen(b)
	if a == b {
		return true
	}

	switch x := a.(type) {
	case *ast.Ident:
		y, ok := b.(*ast.Ident)
		return ok && x.Name == y.Name

	case *ast.BasicLit:
		y, ok := b.(*ast.BasicLit)
		return ok && sameLiteral(x, y)

	case *ast.SelectorExpr:
		y, ok := b.(*ast.SelectorExpr)
		return ok && x.Sel.Name == y.Sel.Name && AreEquivalent(x.X, y.X)

	case *ast.IndexExpr:
		y, ok := b.(*ast.IndexExpr)
		return ok && AreEquivalent(x.X, y.X) && AreEquivalent(x.Index, y.Index)

	case *ast.IndexListExpr:
		y, ok := b.(*ast.IndexListExpr)
		return ok && AreEquivalent(x.X, y.X) && equivalentLists(x.Indices, y.Indices)

	case *ast.SliceExpr:
		y, ok := b.(*ast.SliceExpr)
		return ok &&
			x.Slice3 == y.Slice3 &&
			AreEquivalent(x.X, y.X) &&
			AreEquivalent(x.Low, y.Low) &&
			AreEquivalent(x.High, y.High) &&
			AreEquivalent(x.Max, y.Max)

	case *ast.StarExpr:
		y, ok := b.(*ast.StarExpr)
		return ok && AreEquivalent(x.X, y.X)

	case *ast.UnaryExpr:
		y, ok := b.(*ast.UnaryExpr)
		return ok && x.Op == y.Op && AreEquivalent(x.X, y.X)

	case *ast.BinaryExpr:
		// operand order matters: a + b and b + a are different expressions.
		y, ok := b.(*ast.BinaryExpr)
		return ok && x.Op == y.Op && AreEquivalent(x.X, y.X) && AreEquivalent(x.Y, y.Y)

	case *ast.CallExpr:
		y, ok := b.(*ast.CallExpr)
		return ok &&
			x.Ellipsis.IsValid() == y.Ellipsis.IsValid() &&
			AreEquivalent(x.Fun, y.Fun) &&
			equivalentLists(x.Args, y.Args)

	case *ast.TypeAssertExpr:
		// x.(type) has a nil Type and only appears in type switches.
		y, ok := b.(*ast.TypeAssertExpr)
		return ok && AreEquivalent(x.X, y.X) && AreEquivalent(x.Type, y.Type)

	case *ast.CompositeLit:
		y, ok := b.(*ast.CompositeLit)
		return ok && AreEquivalent(x.Type, y.Type) && equivalentLists(x.Elts, y.Elts)

	case *ast.KeyValueExpr:
		y, ok := b.(*ast.KeyValueExpr)
		return ok && AreEquivalent(x.Key, y.Key) && AreEquivalent(x.Value, y.Value)

	case *ast.ArrayType:
		y, ok := b.(*ast.ArrayType)
		return ok && AreEquivalent(x.Len, y.Len) && AreEquivalent(x.Elt, y.Elt)

	case *ast.MapType:
		y, ok := b.(*ast.MapType)
		return ok && AreEquivalent(x.Key, y.Key) && AreEquivalent(x.Value, y.Value)

	case *ast.ChanType:
		y, ok := b.(*ast.ChanType)
		return ok && x.Dir == y.Dir && AreEquivalent(x.Value, y.Value)

	case *ast.Ellipsis:
		y, ok := b.(*ast.Ellipsis)
		return ok && AreEquivalent(x.Elt, y.Elt)
	}

	// func literals, struct, interface and func types, bad expressions:
	// only the identical node is equivalent, which was handled above.
	return false
}

func equivalentLists(xs, ys []ast.Expr) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !AreEquivalent(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

// sameLiteral compares two basic literals of the same kind by value, so that
// "a" and `a`, or 0x10 and 16, are the same literal. 1 and 1.0 are not.
func sameLiteral(x, y *ast.BasicLit) bool {
	if x.Kind != y.Kind {
		return false
	}
	if x.Value == y.Value {
		return true
	}

	xv := constant.MakeFromLiteral(x.Value, x.Kind, 0)
	yv := constant.MakeFromLiteral(y.Value, y.Kind, 0)
	if xv.Kind() == constant.Unknown || yv.Kind() == constant.Unknown {
		return false
	}
	return constant.Compare(xv, token.EQL, yv)
}
