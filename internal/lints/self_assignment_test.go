package lints

import (
	"go/ast"
	"go/token"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/selfassign/internal/semantic"
	tt "github.com/gnolang/selfassign/internal/types"
	"github.com/gnolang/selfassign/internal/visitor"
)

func wrapMain(body string) string {
	return "package main\n\nfunc main() {\n" + body + "\n}\n"
}

func detect(t *testing.T, src string) []tt.Issue {
	t.Helper()
	node, fset, err := ParseFile("test.go", []byte(src))
	require.NoError(t, err)

	issues, err := DetectSelfAssignment("test.go", node, fset, tt.SeverityError)
	require.NoError(t, err)
	return issues
}

func TestDetectSelfAssignment(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		body       string
		expected   int
		categories []string
	}{
		{
			name:       "plain self-assignment",
			body:       "\ta := 1\n\ta = a",
			expected:   1,
			categories: []string{CategorySelfAssignment},
		},
		{
			name:       "parenthesized right-hand side",
			body:       "\ta := 1\n\ta = (a)",
			expected:   1,
			categories: []string{CategorySelfAssignment},
		},
		{
			name:     "distinct variables",
			body:     "\ta, b := 1, 2\n\ta = b\n\t_ = a",
			expected: 0,
		},
		{
			name:       "field access",
			body:       "\tvar obj struct{ field int }\n\tobj.field = obj.field",
			expected:   1,
			categories: []string{CategorySelfAssignment},
		},
		{
			name:       "unresolved operands are still compared",
			body:       "\ta.b.c = a.b.c",
			expected:   1,
			categories: []string{CategorySelfAssignment},
		},
		{
			name:       "call expressions are compared structurally",
			body:       "\tm := map[int]int{}\n\tm[f()] = m[f()]",
			expected:   1,
			categories: []string{CategorySelfAssignment},
		},
		{
			name:     "compound assignment doubling",
			body:     "\ta := 1\n\ta += a\n\t_ = a",
			expected: 0,
		},
		{
			name:       "compound assignment with identity",
			body:       "\ta := 1\n\ta += 0\n\t_ = a",
			expected:   1,
			categories: []string{CategoryNoEffect},
		},
		{
			name:       "dereferenced address is only found semantically",
			body:       "\tx := 1\n\tx = *&x\n\t_ = x",
			expected:   1,
			categories: []string{CategoryNoEffect},
		},
		{
			name:       "multi-assignment reports once",
			body:       "\ta, b, c := 1, 2, 3\n\ta, b = a, b\n\t_, _ = c, c",
			expected:   1,
			categories: []string{CategorySelfAssignment},
		},
		{
			name:     "swap",
			body:     "\ta, b := 1, 2\n\ta, b = b, a",
			expected: 0,
		},
		{
			name:     "short variable declaration shadowing",
			body:     "\tx := 1\n\tfunc() {\n\t\tx := x\n\t\t_ = x\n\t}()",
			expected: 0,
		},
		{
			name:     "multi-value call",
			body:     "\tvar a, b int\n\ta, b = f()\n\t_, _ = a, b",
			expected: 0,
		},
		{
			name:       "both subsystems and semantic only",
			body:       "\tx, y := 1, 2\n\tx = x\n\ty -= 0\n\t_, _ = x, y",
			expected:   2,
			categories: []string{CategorySelfAssignment, CategoryNoEffect},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			issues := detect(t, wrapMain(tc.body))
			require.Len(t, issues, tc.expected)

			for i, issue := range issues {
				assert.Equal(t, SelfAssignmentRule, issue.Rule)
				assert.Equal(t, SelfAssignmentMessage, issue.Message)
				assert.Equal(t, "test.go", issue.Filename)
				if tc.categories != nil {
					assert.Equal(t, tc.categories[i], issue.Category)
				}
			}
		})
	}
}

func TestDetectSelfAssignment_AnchoredAtOperator(t *testing.T) {
	t.Parallel()
	issues := detect(t, wrapMain("\ta := 1\n\ta = a"))
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, "Remove or correct this useless self-assignment.", issue.Message)
	assert.Equal(t, 5, issue.Start.Line)
	assert.Equal(t, 4, issue.Start.Column)
	assert.Equal(t, 5, issue.End.Column)
	assert.Equal(t, tt.SeverityError, issue.Severity)
	assert.Empty(t, issue.Note)
}

func TestDetectSelfAssignment_CompoundIdentityAnchoredAtStatement(t *testing.T) {
	t.Parallel()
	issues := detect(t, wrapMain("\ta := 1\n\ta += 0\n\t_ = a"))
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, CategoryNoEffect, issue.Category)
	assert.Equal(t, 5, issue.Start.Line)
	assert.Equal(t, 2, issue.Start.Column)
	assert.Equal(t, "a += 0 leaves a unchanged", issue.Note)
}

func TestDetectSelfAssignment_Idempotent(t *testing.T) {
	t.Parallel()
	src := wrapMain("\tx, y := 1, 2\n\tx = x\n\ty = *&y\n\tx ^= 0\n\t_, _ = x, y")
	node, fset, err := ParseFile("test.go", []byte(src))
	require.NoError(t, err)

	first, err := DetectSelfAssignment("test.go", node, fset, tt.SeverityError)
	require.NoError(t, err)
	second, err := DetectSelfAssignment("test.go", node, fset, tt.SeverityError)
	require.NoError(t, err)

	assert.Len(t, first, 3)
	assert.Equal(t, first, second)
}

// unitWithWarnings parses src and attaches the given warnings as if an earlier
// pass had produced them. The semantic pass itself is not run.
func unitWithWarnings(t *testing.T, src string, spans func(f *ast.File) []semantic.Span) *semantic.Unit {
	t.Helper()
	node, fset, err := ParseFile("test.go", []byte(src))
	require.NoError(t, err)

	unit := semantic.NewUnit("test.go", node, fset)
	for _, s := range spans(node) {
		unit.AddWarnings(semantic.Warning{
			Kind:   semantic.AssignmentHasNoEffect,
			Spans:  []semantic.Span{s},
			Detail: "flagged upstream",
		})
	}
	return unit
}

func firstStmt(f *ast.File) ast.Stmt {
	fn := f.Decls[0].(*ast.FuncDecl)
	return fn.Body.List[0]
}

type mockReporter struct {
	mock.Mock
}

func (m *mockReporter) Report(d visitor.Diagnostic) {
	m.Called(d)
}

func TestSelfAssignmentCheck_NoDuplicateReport(t *testing.T) {
	t.Parallel()
	unit := unitWithWarnings(t, wrapMain("\tx = x"), func(f *ast.File) []semantic.Span {
		return []semantic.Span{semantic.SpanOf(firstStmt(f))}
	})
	stmt := firstStmt(unit.File).(*ast.AssignStmt)

	reporter := new(mockReporter)
	reporter.On("Report", visitor.Diagnostic{
		Anchor:   semantic.TokenSpan(stmt.TokPos, stmt.Tok),
		Message:  SelfAssignmentMessage,
		Category: CategorySelfAssignment,
	}).Once()

	CheckSelfAssignment(unit, reporter)
	reporter.AssertExpectations(t)
	reporter.AssertNumberOfCalls(t, "Report", 1)
}

func TestSelfAssignmentCheck_ResidualWarningFlush(t *testing.T) {
	t.Parallel()
	unit := unitWithWarnings(t, wrapMain("\tfoo()"), func(f *ast.File) []semantic.Span {
		call := firstStmt(f).(*ast.ExprStmt).X
		return []semantic.Span{semantic.SpanOf(call)}
	})
	call := firstStmt(unit.File).(*ast.ExprStmt).X

	reporter := new(mockReporter)
	reporter.On("Report", visitor.Diagnostic{
		Anchor:   semantic.SpanOf(call),
		Message:  SelfAssignmentMessage,
		Note:     "flagged upstream",
		Category: CategoryNoEffect,
	}).Once()

	check := NewSelfAssignmentCheck(unit, reporter)
	check.VisitNode(unit.File)
	reporter.AssertNotCalled(t, "Report", mock.Anything)

	check.LeaveNode(unit.File)
	reporter.AssertExpectations(t)
}

func TestSelfAssignmentCheck_SnapshotAtUnitEntry(t *testing.T) {
	t.Parallel()
	unit := unitWithWarnings(t, wrapMain("\tfoo()"), func(*ast.File) []semantic.Span { return nil })
	collector := visitor.NewCollector(SelfAssignmentRule, unit, tt.SeverityError)

	check := NewSelfAssignmentCheck(unit, collector)
	check.VisitNode(unit.File)
	unit.AddWarnings(semantic.Warning{
		Kind:  semantic.AssignmentHasNoEffect,
		Spans: []semantic.Span{semantic.SpanOf(firstStmt(unit.File))},
	})
	check.LeaveNode(unit.File)

	assert.Empty(t, collector.Issues(), "warnings added after entering the unit are ignored")
}

func TestSelfAssignmentCheck_IgnoresOtherWarningKinds(t *testing.T) {
	t.Parallel()
	unit := unitWithWarnings(t, wrapMain("\tfoo()"), func(*ast.File) []semantic.Span { return nil })
	unit.AddWarnings(semantic.Warning{
		Kind:  semantic.WarningKind(42),
		Spans: []semantic.Span{semantic.SpanOf(firstStmt(unit.File))},
	})
	collector := visitor.NewCollector(SelfAssignmentRule, unit, tt.SeverityError)

	CheckSelfAssignment(unit, collector)
	assert.Empty(t, collector.Issues())
}

func TestSelfAssignmentCheck_Reuse(t *testing.T) {
	t.Parallel()
	unit := unitWithWarnings(t, wrapMain("\tx = x"), func(*ast.File) []semantic.Span { return nil })
	check := NewSelfAssignmentCheck(unit, visitor.NewCollector(SelfAssignmentRule, unit, tt.SeverityError))

	visitor.Walk(unit.File, check)
	assert.Panics(t, func() { visitor.Walk(unit.File, check) })
	assert.Panics(t, func() { check.VisitNode(firstStmt(unit.File).(*ast.AssignStmt)) })
}

func TestSelfAssignmentCheck_AssignmentBeforeUnit(t *testing.T) {
	t.Parallel()
	unit := unitWithWarnings(t, wrapMain("\tx = x"), func(*ast.File) []semantic.Span { return nil })
	check := NewSelfAssignmentCheck(unit, visitor.NewCollector(SelfAssignmentRule, unit, tt.SeverityError))

	assert.Panics(t, func() { check.VisitNode(firstStmt(unit.File)) })
}

func TestSelfAssignmentCheck_UnitsAreIsolated(t *testing.T) {
	t.Parallel()
	// both units place an assignment at the same offsets; a warning of one
	// unit must never suppress or leak into the other.
	srcA := wrapMain("\tx = x")
	srcB := wrapMain("\tx = y")

	var wg sync.WaitGroup
	results := make([][]tt.Issue, 2)
	for i, src := range []string{srcA, srcB} {
		wg.Add(1)
		go func(i int, src string) {
			defer wg.Done()
			node, fset, err := ParseFile("test.go", []byte(src))
			if err != nil {
				return
			}
			unit := semantic.NewUnit("test.go", node, fset)
			if i == 0 {
				unit.AddWarnings(semantic.Warning{
					Kind:  semantic.AssignmentHasNoEffect,
					Spans: []semantic.Span{semantic.SpanOf(firstStmt(node))},
				})
			}
			collector := visitor.NewCollector(SelfAssignmentRule, unit, tt.SeverityError)
			CheckSelfAssignment(unit, collector)
			results[i] = collector.Issues()
		}(i, src)
	}
	wg.Wait()

	require.Len(t, results[0], 1)
	assert.Equal(t, CategorySelfAssignment, results[0][0].Category)
	assert.Empty(t, results[1])
}

func TestReconciliationSet(t *testing.T) {
	t.Parallel()
	w1 := semantic.Warning{Kind: semantic.AssignmentHasNoEffect, Spans: []semantic.Span{{Pos: 10, End: 20}}}
	w2 := semantic.Warning{Kind: semantic.AssignmentHasNoEffect, Spans: []semantic.Span{{Pos: 30, End: 40}}}
	dup := semantic.Warning{Kind: semantic.AssignmentHasNoEffect, Spans: []semantic.Span{{Pos: 10, End: 20}}, Detail: "again"}

	s := newReconciliationSet()
	s.load([]semantic.Warning{w2, w1, dup})
	assert.Equal(t, 2, s.len(), "warnings are identified by kind and spans")

	assert.True(t, s.covers(semantic.Span{Pos: 12, End: 13}))
	assert.False(t, s.covers(semantic.Span{Pos: 25, End: 26}))

	assert.Equal(t, 0, s.removeCovering(semantic.Span{Pos: 25, End: 26}))
	assert.Equal(t, 1, s.removeCovering(semantic.Span{Pos: 12, End: 13}))
	assert.False(t, s.covers(semantic.Span{Pos: 12, End: 13}))

	remaining := s.remaining()
	require.Len(t, remaining, 1)
	assert.Equal(t, token.Pos(30), remaining[0].Anchor().Pos)

	s.reset()
	assert.Equal(t, 0, s.len())
	assert.Empty(t, s.remaining())
}

func TestRemovableAssignments(t *testing.T) {
	t.Parallel()
	src := `package main

import "os"

var global int

func f() int { return 0 }

func main() {
	a, b := 1, 2
	a = a
	a, b = b, a
	for i := 0; i < 1; i = i {
	}
	switch {
	case a > 0:
		b = b
	}
	a += 0
	m := map[int]int{}
	m[f()] = m[f()]
	ch := make(chan int)
	m[<-ch] = m[<-ch]
	c := 1
	c = c
	os.Args = os.Args
	global = global
	g := func() int { return 1 }
	g = g
	g()
}

func param(p int) {
	p = p
}
`
	node, fset, err := ParseFile("test.go", []byte(src))
	require.NoError(t, err)

	var lines []int
	for pos := range RemovableAssignments(fset, node, nil) {
		lines = append(lines, fset.Position(pos).Line)
	}
	assert.ElementsMatch(t, []int{11, 17, 27, 29, 34}, lines)
}

func TestDetectSelfAssignment_Suggestion(t *testing.T) {
	t.Parallel()
	issues := detect(t, wrapMain(`	a := 1
	a = a
	c := 1
	c = c
	m := map[int]int{}
	m[len(m)] = m[len(m)]
	a += 0
	println(a)`))
	require.Len(t, issues, 4)

	assert.Equal(t, "remove the statement `a = a`", issues[0].Suggestion)
	for _, issue := range issues[1:] {
		assert.Empty(t, issue.Suggestion, "line %d", issue.Start.Line)
	}
}
