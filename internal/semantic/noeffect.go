package semantic

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ast/astutil"
)

// compoundOps maps an assignment operator to its binary operator.
var compoundOps = map[token.Token]token.Token{
	token.ADD_ASSIGN:     token.ADD,
	token.SUB_ASSIGN:     token.SUB,
	token.MUL_ASSIGN:     token.MUL,
	token.QUO_ASSIGN:     token.QUO,
	token.OR_ASSIGN:      token.OR,
	token.XOR_ASSIGN:     token.XOR,
	token.SHL_ASSIGN:     token.SHL,
	token.SHR_ASSIGN:     token.SHR,
	token.AND_NOT_ASSIGN: token.AND_NOT,
	token.AND_ASSIGN:     token.AND,
}

// identities holds the right identity element of each integer operator
// (x op k == x). AND has none among constants of unknown width.
var identities = map[token.Token]int64{
	token.ADD:     0,
	token.SUB:     0,
	token.OR:      0,
	token.XOR:     0,
	token.SHL:     0,
	token.SHR:     0,
	token.AND_NOT: 0,
	token.MUL:     1,
	token.QUO:     1,
}

// commutative operators also have k as a left identity (k op x == x).
var commutative = map[token.Token]bool{
	token.ADD: true,
	token.OR:  true,
	token.XOR: true,
	token.MUL: true,
}

// Analyze reports the assignments of file that leave their target unchanged.
// Unlike a purely syntactic check it resolves names through info, folds
// constants and looks through *&x, so it finds cases such as `x += 0` or
// `x = *&x` and ignores shadowing such as `x = x` between distinct variables.
func Analyze(fset *token.FileSet, file *ast.File, info *types.Info) []Warning {
	a := &noEffectAnalyzer{info: info}

	var warnings []Warning
	ast.Inspect(file, func(n ast.Node) bool {
		stmt, ok := n.(*ast.AssignStmt)
		if !ok {
			return true
		}
		if detail, found := a.check(stmt); found {
			warnings = append(warnings, Warning{
				Kind:   AssignmentHasNoEffect,
				Spans:  []Span{SpanOf(stmt)},
				Detail: detail,
			})
		}
		return true
	})

	SortWarnings(warnings)
	return warnings
}

type noEffectAnalyzer struct {
	info *types.Info
}

func (a *noEffectAnalyzer) check(stmt *ast.AssignStmt) (string, bool) {
	if stmt.Tok == token.ASSIGN {
		if len(stmt.Lhs) != len(stmt.Rhs) {
			return "", false
		}
		for i := range stmt.Lhs {
			if detail, found := a.checkPlain(stmt.Lhs[i], stmt.Rhs[i]); found {
				return detail, true
			}
		}
		return "", false
	}

	op, ok := compoundOps[stmt.Tok]
	if !ok || len(stmt.Lhs) != 1 || len(stmt.Rhs) != 1 {
		return "", false
	}
	return a.checkCompound(stmt.Lhs[0], stmt.Tok, op, stmt.Rhs[0])
}

// checkPlain handles `lhs = rhs`.
func (a *noEffectAnalyzer) checkPlain(lhs, rhs ast.Expr) (string, bool) {
	if a.sameStorage(lhs, rhs) {
		return fmt.Sprintf("%s is assigned to itself", types.ExprString(lhs)), true
	}

	bin, ok := astutil.Unparen(rhs).(*ast.BinaryExpr)
	if !ok || !a.isInteger(lhs) {
		return "", false
	}
	if a.sameStorage(lhs, bin.X) && a.isIdentity(bin.Op, bin.Y) {
		return fmt.Sprintf("%s leaves %s unchanged", types.ExprString(bin), types.ExprString(lhs)), true
	}
	if commutative[bin.Op] && a.sameStorage(lhs, bin.Y) && a.isIdentity(bin.Op, bin.X) {
		return fmt.Sprintf("%s leaves %s unchanged", types.ExprString(bin), types.ExprString(lhs)), true
	}
	return "", false
}

// checkCompound handles `lhs tok rhs` where tok is the compound form of op.
func (a *noEffectAnalyzer) checkCompound(lhs ast.Expr, tok, op token.Token, rhs ast.Expr) (string, bool) {
	target := types.ExprString(lhs)

	switch {
	case a.isInteger(lhs) && a.isIdentity(op, rhs):
		return fmt.Sprintf("%s %s %s leaves %s unchanged", target, tok, types.ExprString(rhs), target), true
	case (op == token.AND || op == token.OR) && a.isInteger(lhs) && a.sameStorage(lhs, rhs):
		return fmt.Sprintf("%s %s %s leaves %s unchanged", target, tok, target, target), true
	case op == token.ADD && a.isString(lhs) && a.isEmptyString(rhs):
		return fmt.Sprintf("appending an empty string leaves %s unchanged", target), true
	}
	return "", false
}

// sameStorage reports whether x and y provably denote the same variable.
func (a *noEffectAnalyzer) sameStorage(x, y ast.Expr) bool {
	x, y = fold(x), fold(y)

	switch xv := x.(type) {
	case *ast.Ident:
		yv, ok := y.(*ast.Ident)
		if !ok {
			return false
		}
		obj := a.info.ObjectOf(xv)
		if _, isVar := obj.(*types.Var); !isVar {
			return false
		}
		return obj == a.info.ObjectOf(yv)

	case *ast.SelectorExpr:
		yv, ok := y.(*ast.SelectorExpr)
		if !ok {
			return false
		}
		xs, ys := a.info.Selections[xv], a.info.Selections[yv]
		if xs == nil || ys == nil {
			// qualified identifier: pkg.Var
			obj := a.info.ObjectOf(xv.Sel)
			if _, isVar := obj.(*types.Var); !isVar {
				return false
			}
			return obj == a.info.ObjectOf(yv.Sel) && a.samePackage(xv.X, yv.X)
		}
		if xs.Kind() != types.FieldVal || ys.Kind() != types.FieldVal || xs.Obj() != ys.Obj() {
			return false
		}
		return a.sameStorage(xv.X, yv.X)

	case *ast.IndexExpr:
		yv, ok := y.(*ast.IndexExpr)
		if !ok || !a.isSequence(xv.X) {
			// m[k] = m[k] inserts a missing key, so maps never qualify.
			return false
		}
		return a.sameStorage(xv.X, yv.X) && a.sameIndex(xv.Index, yv.Index)

	case *ast.StarExpr:
		yv, ok := y.(*ast.StarExpr)
		return ok && a.sameStorage(xv.X, yv.X)
	}
	return false
}

func (a *noEffectAnalyzer) samePackage(x, y ast.Expr) bool {
	xi, ok1 := x.(*ast.Ident)
	yi, ok2 := y.(*ast.Ident)
	if !ok1 || !ok2 {
		return false
	}
	obj := a.info.ObjectOf(xi)
	_, isPkg := obj.(*types.PkgName)
	return isPkg && obj == a.info.ObjectOf(yi)
}

func (a *noEffectAnalyzer) sameIndex(x, y ast.Expr) bool {
	xv, yv := a.constValue(x), a.constValue(y)
	if xv != nil && yv != nil {
		return constant.Compare(xv, token.EQL, yv)
	}
	return a.sameStorage(x, y)
}

// isSequence reports whether indexing e addresses an array or slice element.
func (a *noEffectAnalyzer) isSequence(e ast.Expr) bool {
	t := a.info.TypeOf(e)
	if t == nil {
		return false
	}
	if ptr, ok := t.Underlying().(*types.Pointer); ok {
		t = ptr.Elem()
	}
	switch t.Underlying().(type) {
	case *types.Array, *types.Slice:
		return true
	}
	return false
}

func (a *noEffectAnalyzer) isIdentity(op token.Token, e ast.Expr) bool {
	id, ok := identities[op]
	if !ok {
		return false
	}
	v := a.constValue(e)
	if v == nil || (v.Kind() != constant.Int && v.Kind() != constant.Float) {
		return false
	}
	return constant.Compare(v, token.EQL, constant.MakeInt64(id))
}

func (a *noEffectAnalyzer) isEmptyString(e ast.Expr) bool {
	v := a.constValue(e)
	return v != nil && v.Kind() == constant.String && constant.StringVal(v) == ""
}

func (a *noEffectAnalyzer) constValue(e ast.Expr) constant.Value {
	tv, ok := a.info.Types[astutil.Unparen(e)]
	if !ok {
		return nil
	}
	return tv.Value
}

func (a *noEffectAnalyzer) isInteger(e ast.Expr) bool {
	return a.basicInfo(e)&types.IsInteger != 0
}

func (a *noEffectAnalyzer) isString(e ast.Expr) bool {
	return a.basicInfo(e)&types.IsString != 0
}

func (a *noEffectAnalyzer) basicInfo(e ast.Expr) types.BasicInfo {
	t := a.info.TypeOf(e)
	if t == nil {
		return 0
	}
	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return 0
	}
	return basic.Info()
}

// fold strips parentheses and *& pairs: (*(&x)) -> x.
func fold(e ast.Expr) ast.Expr {
	for {
		e = astutil.Unparen(e)
		star, ok := e.(*ast.StarExpr)
		if !ok {
			return e
		}
		addr, ok := astutil.Unparen(star.X).(*ast.UnaryExpr)
		if !ok || addr.Op != token.AND {
			return e
		}
		e = addr.X
	}
}
