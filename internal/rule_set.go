package internal

import (
	"go/ast"
	"go/token"

	"github.com/gnolang/selfassign/internal/lints"
	"github.com/gnolang/selfassign/internal/semantic"
	tt "github.com/gnolang/selfassign/internal/types"
)

// LintRule defines the interface for all lint rules.
type LintRule interface {
	// Check runs the lint rule on the given file and returns a slice of Issues.
	Check(filename string, node *ast.File, fset *token.FileSet) ([]tt.Issue, error)

	// Name returns the name of the lint rule.
	Name() string

	// Severity returns the severity issues of the rule are reported with.
	Severity() tt.Severity

	// SetSeverity changes the severity of the rule.
	SetSeverity(tt.Severity)
}

// UnitRule is implemented by rules that can reuse the type information of an
// already prepared unit instead of checking the file on their own.
type UnitRule interface {
	LintRule
	CheckUnit(unit *semantic.Unit) ([]tt.Issue, error)
}

type SelfAssignmentRule struct {
	severity tt.Severity
}

func NewSelfAssignmentRule() LintRule {
	return &SelfAssignmentRule{
		severity: tt.SeverityError,
	}
}

func (r *SelfAssignmentRule) Check(filename string, node *ast.File, fset *token.FileSet) ([]tt.Issue, error) {
	return lints.DetectSelfAssignment(filename, node, fset, r.severity)
}

func (r *SelfAssignmentRule) CheckUnit(unit *semantic.Unit) ([]tt.Issue, error) {
	return lints.DetectSelfAssignmentInUnit(unit, r.severity), nil
}

func (r *SelfAssignmentRule) Name() string {
	return lints.SelfAssignmentRule
}

func (r *SelfAssignmentRule) Severity() tt.Severity {
	return r.severity
}

func (r *SelfAssignmentRule) SetSeverity(severity tt.Severity) {
	r.severity = severity
}
