package lints

import (
	"go/ast"
	"go/token"

	"github.com/gnolang/selfassign/internal/equivalence"
	"github.com/gnolang/selfassign/internal/semantic"
	tt "github.com/gnolang/selfassign/internal/types"
	"github.com/gnolang/selfassign/internal/visitor"
)

const (
	SelfAssignmentRule    = "self-assignment"
	SelfAssignmentMessage = "Remove or correct this useless self-assignment."

	// CategorySelfAssignment marks issues found by comparing both sides of an assignment.
	CategorySelfAssignment = "self-assignment"
	// CategoryNoEffect marks issues carried over from the semantic no-effect warnings.
	CategoryNoEffect = "no-effect"
)

type checkState int

const (
	stateInit checkState = iota
	stateScanning
	stateDone
)

// SelfAssignmentCheck reports assignments whose both sides are syntactically
// equivalent, together with the no-effect warnings the semantic pass attached
// to the unit. A warning covering an assignment the check already reported is
// dropped, so each defect is reported once.
//
// A check covers exactly one traversal of one unit; create a new one per unit.
type SelfAssignmentCheck struct {
	unit     *semantic.Unit
	reporter visitor.IssueReporter
	warnings *reconciliationSet
	state    checkState

	// removable holds the statements a fix may delete, by operator position.
	removable map[token.Pos]*ast.AssignStmt
}

func NewSelfAssignmentCheck(unit *semantic.Unit, reporter visitor.IssueReporter) *SelfAssignmentCheck {
	return &SelfAssignmentCheck{
		unit:     unit,
		reporter: reporter,
		warnings: newReconciliationSet(),
	}
}

func (c *SelfAssignmentCheck) NodesToVisit() []visitor.Kind {
	return []visitor.Kind{visitor.KindFile, visitor.KindAssign}
}

func (c *SelfAssignmentCheck) VisitNode(n ast.Node) {
	switch n := n.(type) {
	case *ast.File:
		if c.state != stateInit {
			panic("self-assignment: check reused for another unit")
		}
		c.warnings.reset()
		c.warnings.load(c.unit.Warnings(semantic.AssignmentHasNoEffect))
		c.removable = RemovableAssignments(c.unit.Fset, n, c.unit.Info)
		c.state = stateScanning
	case *ast.AssignStmt:
		c.mustScan()
		c.visitAssignment(n)
	}
}

func (c *SelfAssignmentCheck) LeaveNode(n ast.Node) {
	if _, ok := n.(*ast.File); !ok {
		return
	}
	c.mustScan()

	for _, w := range c.warnings.remaining() {
		c.reporter.Report(visitor.Diagnostic{
			Anchor:   w.Anchor(),
			Message:  SelfAssignmentMessage,
			Note:     w.Detail,
			Category: CategoryNoEffect,
		})
	}
	c.warnings = nil
	c.removable = nil
	c.state = stateDone
}

func (c *SelfAssignmentCheck) mustScan() {
	if c.state != stateScanning {
		panic("self-assignment: node visited outside of a unit traversal")
	}
}

// visitAssignment checks a plain `=` assignment. Compound assignments such as
// `a += a` change their target and are left to the semantic pass, as are
// declarations with `:=`. Pairs are only compared when both sides have the
// same length; `a, b = f()` has nothing to compare.
func (c *SelfAssignmentCheck) visitAssignment(stmt *ast.AssignStmt) {
	if stmt.Tok != token.ASSIGN || len(stmt.Lhs) != len(stmt.Rhs) {
		return
	}

	for i := range stmt.Lhs {
		if !equivalence.AreEquivalent(stmt.Lhs[i], stmt.Rhs[i]) {
			continue
		}
		operator := semantic.TokenSpan(stmt.TokPos, stmt.Tok)
		d := visitor.Diagnostic{
			Anchor:   operator,
			Message:  SelfAssignmentMessage,
			Category: CategorySelfAssignment,
		}
		if removable, ok := c.removable[stmt.TokPos]; ok {
			d.Remove = removable
		}
		c.reporter.Report(d)
		if c.warnings.covers(operator) {
			c.warnings.removeCovering(operator)
		}
		// one issue per statement, even for a, b = a, b
		return
	}
}

// CheckSelfAssignment runs a fresh check over unit, reporting to reporter.
// The unit's warnings must already be attached.
func CheckSelfAssignment(unit *semantic.Unit, reporter visitor.IssueReporter) {
	visitor.Walk(unit.File, NewSelfAssignmentCheck(unit, reporter))
}

// DetectSelfAssignment detects useless self-assignments such as `x = x`,
// including the no-effect assignments found by the semantic pass.
func DetectSelfAssignment(filename string, node *ast.File, fset *token.FileSet, severity tt.Severity) ([]tt.Issue, error) {
	unit := semantic.NewUnit(filename, node, fset)
	semantic.Prepare(unit, nil)
	return DetectSelfAssignmentInUnit(unit, severity), nil
}

// DetectSelfAssignmentInUnit is DetectSelfAssignment for a unit whose
// warnings are already attached, e.g. from a fully type-checked package.
func DetectSelfAssignmentInUnit(unit *semantic.Unit, severity tt.Severity) []tt.Issue {
	collector := visitor.NewCollector(SelfAssignmentRule, unit, severity)
	CheckSelfAssignment(unit, collector)
	return collector.Issues()
}
