// Package analyzer exposes the self-assignment check as a go/analysis
// analyzer, so it can run under go vet, gopls or any analysis driver.
package analyzer

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/gnolang/selfassign/internal/lints"
	"github.com/gnolang/selfassign/internal/semantic"
	"github.com/gnolang/selfassign/internal/visitor"
)

const doc = `report useless self-assignments

The analyzer reports assignments whose left and right operands are the same
expression, such as x = x or p.f = (p.f), and assignments the type checker
shows to have no effect, such as x += 0 or x = *&x. Generated files are
skipped.`

var Analyzer = &analysis.Analyzer{
	Name:     "selfassign",
	Doc:      doc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	in := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	visitor.Dispatch(in, &fileScope{pass: pass})
	return nil, nil
}

// subscribed lists the kinds the per-file checks need.
var subscribed = lints.NewSelfAssignmentCheck(nil, nil).NodesToVisit()

// fileScope starts a fresh check for every file of the package and forwards
// the nodes of that file to it.
type fileScope struct {
	pass    *analysis.Pass
	current *lints.SelfAssignmentCheck
}

func (s *fileScope) NodesToVisit() []visitor.Kind {
	return subscribed
}

func (s *fileScope) VisitNode(n ast.Node) {
	if file, ok := n.(*ast.File); ok {
		s.current = nil
		if ast.IsGenerated(file) {
			return
		}
		tf := s.pass.Fset.File(file.Pos())
		if tf == nil {
			return
		}
		unit := semantic.NewUnit(tf.Name(), file, s.pass.Fset)
		semantic.Prepare(unit, s.pass.TypesInfo)
		s.current = lints.NewSelfAssignmentCheck(unit, &reporter{pass: s.pass})
	}
	if s.current != nil {
		s.current.VisitNode(n)
	}
}

func (s *fileScope) LeaveNode(n ast.Node) {
	if s.current == nil {
		return
	}
	s.current.LeaveNode(n)
	if _, ok := n.(*ast.File); ok {
		s.current = nil
	}
}

// reporter turns diagnostics into analysis diagnostics. Findings whose
// statement can be deleted safely get a fix removing it.
type reporter struct {
	pass *analysis.Pass
}

func (r *reporter) Report(d visitor.Diagnostic) {
	diag := analysis.Diagnostic{
		Pos:      d.Anchor.Pos,
		End:      d.Anchor.End,
		Category: d.Category,
		Message:  d.Message,
	}
	if d.Note != "" {
		diag.Related = []analysis.RelatedInformation{{
			Pos:     d.Anchor.Pos,
			End:     d.Anchor.End,
			Message: d.Note,
		}}
	}
	if stmt := d.Remove; stmt != nil {
		diag.SuggestedFixes = []analysis.SuggestedFix{{
			Message: "Remove the self-assignment",
			TextEdits: []analysis.TextEdit{{
				Pos: stmt.Pos(),
				End: stmt.End(),
			}},
		}}
	}
	r.pass.Report(diag)
}
