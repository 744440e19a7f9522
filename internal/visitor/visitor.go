// Package visitor dispatches the nodes of a parsed file to subscribed rules.
//
// A rule declares the node kinds it is interested in; Walk visits the file in
// document order (pre-order) and calls VisitNode when a subscribed node is
// entered and LeaveNode once all of its descendants have been visited.
package visitor

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"sort"
	"strings"

	"golang.org/x/tools/go/ast/inspector"

	"github.com/gnolang/selfassign/internal/semantic"
	tt "github.com/gnolang/selfassign/internal/types"
)

// Kind is a node kind a rule can subscribe to.
type Kind int

const (
	KindFile Kind = iota
	KindAssign
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindAssign:
		return "assignment"
	default:
		return "unknown"
	}
}

// prototype returns the typed nil the inspector filters on.
func (k Kind) prototype() ast.Node {
	switch k {
	case KindFile:
		return (*ast.File)(nil)
	case KindAssign:
		return (*ast.AssignStmt)(nil)
	}
	return nil
}

// KindOf returns the kind of n, if n is of a kind rules can subscribe to.
func KindOf(n ast.Node) (Kind, bool) {
	switch n.(type) {
	case *ast.File:
		return KindFile, true
	case *ast.AssignStmt:
		return KindAssign, true
	}
	return 0, false
}

// SubscriptionVisitor is implemented by rules that are driven by Walk.
type SubscriptionVisitor interface {
	// NodesToVisit lists the node kinds the visitor is called for.
	NodesToVisit() []Kind
	// VisitNode is called when a subscribed node is entered.
	VisitNode(n ast.Node)
	// LeaveNode is called after all descendants of a subscribed node.
	LeaveNode(n ast.Node)
}

// Diagnostic is a single finding handed to an IssueReporter.
type Diagnostic struct {
	Anchor   semantic.Span
	Message  string
	Note     string
	Category string
	// Remove is the statement whose deletion fixes the finding, if any.
	Remove ast.Stmt
}

// IssueReporter receives the findings of a rule.
type IssueReporter interface {
	Report(d Diagnostic)
}

// Walk traverses file once and dispatches subscribed nodes to visitors.
// Visitors subscribed to the same kind are called in the order given.
func Walk(file *ast.File, visitors ...SubscriptionVisitor) {
	if file == nil {
		panic("visitor: Walk called with a nil file")
	}
	Dispatch(inspector.New([]*ast.File{file}), visitors...)
}

// Dispatch is Walk over an existing inspector, which may span several files.
// Each file is entered and left as a KindFile node.
func Dispatch(in *inspector.Inspector, visitors ...SubscriptionVisitor) {
	subscribers := make(map[Kind][]SubscriptionVisitor)
	var filter []ast.Node
	for _, v := range visitors {
		for _, kind := range dedupKinds(v.NodesToVisit()) {
			proto := kind.prototype()
			if proto == nil {
				continue
			}
			if _, seen := subscribers[kind]; !seen {
				filter = append(filter, proto)
			}
			subscribers[kind] = append(subscribers[kind], v)
		}
	}
	if len(filter) == 0 {
		return
	}

	in.Nodes(filter, func(n ast.Node, push bool) bool {
		kind, ok := KindOf(n)
		if !ok {
			return true
		}
		for _, v := range subscribers[kind] {
			if push {
				v.VisitNode(n)
			} else {
				v.LeaveNode(n)
			}
		}
		return true
	})
}

func dedupKinds(kinds []Kind) []Kind {
	seen := make(map[Kind]bool, len(kinds))
	out := kinds[:0:0]
	for _, k := range kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Collector is an IssueReporter that turns diagnostics into issues of one rule.
type Collector struct {
	Rule     string
	Filename string
	Severity tt.Severity

	unit   *semantic.Unit
	issues []tt.Issue
}

func NewCollector(rule string, unit *semantic.Unit, severity tt.Severity) *Collector {
	return &Collector{
		Rule:     rule,
		Filename: unit.Filename,
		Severity: severity,
		unit:     unit,
	}
}

func (c *Collector) Report(d Diagnostic) {
	start := c.unit.Fset.Position(d.Anchor.Pos)
	end := c.unit.Fset.Position(d.Anchor.End)

	filename := c.Filename
	if filename == "" {
		filename = start.Filename
	}

	c.issues = append(c.issues, tt.Issue{
		Rule:       c.Rule,
		Category:   d.Category,
		Filename:   filename,
		Message:    d.Message,
		Note:       d.Note,
		Suggestion: c.suggestion(d),
		Start:      start,
		End:        end,
		Severity:   c.Severity,
	})
}

func (c *Collector) suggestion(d Diagnostic) string {
	if d.Remove == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := format.Node(&buf, c.unit.Fset, d.Remove); err != nil {
		return ""
	}
	return fmt.Sprintf("remove the statement `%s`", strings.TrimSpace(buf.String()))
}

// Issues returns the collected issues ordered by position.
func (c *Collector) Issues() []tt.Issue {
	sort.SliceStable(c.issues, func(i, j int) bool {
		return c.issues[i].Start.Offset < c.issues[j].Start.Offset
	})
	return c.issues
}
