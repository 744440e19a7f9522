package visitor

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/gnolang/selfassign/internal/semantic"
	tt "github.com/gnolang/selfassign/internal/types"
)

// recorder logs every callback it receives.
type recorder struct {
	kinds  []Kind
	events []string
}

func (r *recorder) NodesToVisit() []Kind { return r.kinds }

func (r *recorder) VisitNode(n ast.Node) { r.events = append(r.events, "visit "+describe(n)) }

func (r *recorder) LeaveNode(n ast.Node) { r.events = append(r.events, "leave "+describe(n)) }

func describe(n ast.Node) string {
	switch x := n.(type) {
	case *ast.File:
		return "file"
	case *ast.AssignStmt:
		return fmt.Sprintf("assign %s", x.Lhs[0].(*ast.Ident).Name)
	}
	return "?"
}

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "test.go", src, 0)
	require.NoError(t, err)
	return f
}

func TestWalk_DocumentOrder(t *testing.T) {
	t.Parallel()
	f := parse(t, `package main

func main() {
	a := 1
	b := func() int {
		c := 2
		return c
	}()
	a = b
}
`)

	r := &recorder{kinds: []Kind{KindFile, KindAssign}}
	Walk(f, r)

	assert.Equal(t, []string{
		"visit file",
		"visit assign a",
		"leave assign a",
		"visit assign b",
		"visit assign c",
		"leave assign c",
		"leave assign b",
		"visit assign a",
		"leave assign a",
		"leave file",
	}, r.events)
}

func TestWalk_OnlySubscribedKinds(t *testing.T) {
	t.Parallel()
	f := parse(t, `package main

func main() {
	x := 0
	x++
	println(x)
}
`)

	assigns := &recorder{kinds: []Kind{KindAssign, KindAssign}}
	files := &recorder{kinds: []Kind{KindFile}}
	none := &recorder{}
	Walk(f, assigns, files, none)

	assert.Equal(t, []string{"visit assign x", "leave assign x"}, assigns.events, "duplicate subscriptions dispatch once")
	assert.Equal(t, []string{"visit file", "leave file"}, files.events)
	assert.Empty(t, none.events)
}

func TestWalk_RegistrationOrder(t *testing.T) {
	t.Parallel()
	f := parse(t, "package main\n")

	var order []string
	first := &orderedVisitor{name: "first", log: &order}
	second := &orderedVisitor{name: "second", log: &order}
	Walk(f, first, second)

	assert.Equal(t, []string{"first visit", "second visit", "first leave", "second leave"}, order)
}

type orderedVisitor struct {
	name string
	log  *[]string
}

func (v *orderedVisitor) NodesToVisit() []Kind { return []Kind{KindFile} }
func (v *orderedVisitor) VisitNode(ast.Node)   { *v.log = append(*v.log, v.name+" visit") }
func (v *orderedVisitor) LeaveNode(ast.Node)   { *v.log = append(*v.log, v.name+" leave") }

func TestDispatch_SeveralFiles(t *testing.T) {
	t.Parallel()
	first := parse(t, "package a\n\nfunc f() { x = y }\n")
	second := parse(t, "package b\n\nfunc g() { z = w }\n")

	r := &recorder{kinds: []Kind{KindFile, KindAssign}}
	Dispatch(inspector.New([]*ast.File{first, second}), r)

	assert.Equal(t, []string{
		"visit file",
		"visit assign x",
		"leave assign x",
		"leave file",
		"visit file",
		"visit assign z",
		"leave assign z",
		"leave file",
	}, r.events)
}

func TestWalk_NilFilePanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { Walk(nil, &recorder{kinds: []Kind{KindFile}}) })
}

func TestKindOf(t *testing.T) {
	t.Parallel()
	k, ok := KindOf(&ast.AssignStmt{})
	assert.True(t, ok)
	assert.Equal(t, KindAssign, k)

	_, ok = KindOf(&ast.Ident{})
	assert.False(t, ok)
	assert.Equal(t, "assignment", KindAssign.String())
}

func TestCollector(t *testing.T) {
	t.Parallel()
	fset := token.NewFileSet()
	src := "package main\n\nvar x = 1\n"
	f, err := parser.ParseFile(fset, "test.go", src, 0)
	require.NoError(t, err)

	unit := semantic.NewUnit("", f, fset)
	c := NewCollector("rule", unit, tt.SeverityWarning)

	spec := f.Decls[0].(*ast.GenDecl).Specs[0].(*ast.ValueSpec)
	c.Report(Diagnostic{Anchor: semantic.SpanOf(spec.Values[0]), Message: "second"})
	c.Report(Diagnostic{Anchor: semantic.SpanOf(spec.Names[0]), Message: "first", Note: "n", Category: "cat"})

	issues := c.Issues()
	require.Len(t, issues, 2)
	assert.Equal(t, "first", issues[0].Message)
	assert.Equal(t, "n", issues[0].Note)
	assert.Equal(t, "cat", issues[0].Category)
	assert.Equal(t, "test.go", issues[0].Filename)
	assert.Equal(t, 3, issues[0].Start.Line)
	assert.Equal(t, 5, issues[0].Start.Column)
	assert.Equal(t, tt.SeverityWarning, issues[0].Severity)
	assert.Equal(t, "rule", issues[1].Rule)
}

func TestCollector_Suggestion(t *testing.T) {
	t.Parallel()
	fset := token.NewFileSet()
	src := "package main\n\nfunc main() {\n\tx := 1\n\tx = (x)\n\tprintln(x)\n}\n"
	f, err := parser.ParseFile(fset, "test.go", src, 0)
	require.NoError(t, err)

	unit := semantic.NewUnit("test.go", f, fset)
	c := NewCollector("rule", unit, tt.SeverityError)

	stmt := f.Decls[0].(*ast.FuncDecl).Body.List[1].(*ast.AssignStmt)
	c.Report(Diagnostic{Anchor: semantic.TokenSpan(stmt.TokPos, stmt.Tok), Message: "fixable", Remove: stmt})
	c.Report(Diagnostic{Anchor: semantic.SpanOf(stmt), Message: "not fixable"})

	issues := c.Issues()
	require.Len(t, issues, 2)
	assert.Equal(t, "not fixable", issues[0].Message)
	assert.Empty(t, issues[0].Suggestion)
	assert.Equal(t, "remove the statement `x = (x)`", issues[1].Suggestion)
}
