// Package fixer rewrites files to drop the self-assignments the linter found.
package fixer

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/gnolang/selfassign/internal/lints"
	tt "github.com/gnolang/selfassign/internal/types"
)

type Fixer struct {
	DryRun bool
	Out    io.Writer
}

func New(dryRun bool, out io.Writer) *Fixer {
	if out == nil {
		out = io.Discard
	}
	return &Fixer{
		DryRun: dryRun,
		Out:    out,
	}
}

// Fix removes from filename the statements reported by issues that can be
// deleted outright, and returns how many were removed (or would be, on a dry
// run). Issues of other rules, no-effect issues, and assignments that are not
// a standalone `x = y` statement free of calls and receives are left for the
// user to correct, as are those holding the last read of a variable or import.
func (f *Fixer) Fix(filename string, issues []tt.Issue) (int, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, content, parser.ParseComments)
	if err != nil {
		return 0, fmt.Errorf("failed to parse file: %w", err)
	}
	tf := fset.File(file.Pos())

	removable := lints.RemovableAssignments(fset, file, nil)
	targets := make(map[*ast.AssignStmt]bool)
	for _, issue := range issues {
		if issue.Rule != lints.SelfAssignmentRule || issue.Category != lints.CategorySelfAssignment {
			continue
		}
		if issue.Start.Offset < 0 || issue.Start.Offset >= tf.Size() {
			continue
		}
		if stmt, ok := removable[tf.Pos(issue.Start.Offset)]; ok {
			targets[stmt] = true
		}
	}
	if len(targets) == 0 {
		return 0, nil
	}

	if f.DryRun {
		for _, stmt := range sortedStmts(targets) {
			fmt.Fprintf(f.Out, "Would remove %q from %s at line %d\n",
				nodeString(fset, stmt), filename, fset.Position(stmt.Pos()).Line)
		}
		return len(targets), nil
	}

	stmts := sortedStmts(targets)
	for i := len(stmts) - 1; i >= 0; i-- {
		start, end := statementLines(content, tf.Offset(stmts[i].Pos()), tf.Offset(stmts[i].End()))
		content = append(content[:start:start], content[end:]...)
	}

	fset = token.NewFileSet()
	file, err = parser.ParseFile(fset, filename, content, parser.ParseComments)
	if err != nil {
		return 0, fmt.Errorf("failed to parse fixed file: %w", err)
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return 0, fmt.Errorf("failed to format file: %w", err)
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Fprintf(f.Out, "Fixed %d self-assignment(s) in %s\n", len(targets), filename)
	return len(targets), nil
}

// statementLines widens the byte range [start, end) of a statement to the
// whole lines it occupies when nothing but blanks and a trailing comment share
// them.
func statementLines(content []byte, start, end int) (int, int) {
	lineStart := bytes.LastIndexByte(content[:start], '\n') + 1
	if len(bytes.TrimSpace(content[lineStart:start])) != 0 {
		return start, end
	}

	lineEnd := len(content)
	if i := bytes.IndexByte(content[end:], '\n'); i >= 0 {
		lineEnd = end + i + 1
	}
	rest := bytes.TrimSpace(content[end:lineEnd])
	if len(rest) != 0 && !bytes.HasPrefix(rest, []byte("//")) {
		return start, end
	}
	return lineStart, lineEnd
}

func sortedStmts(set map[*ast.AssignStmt]bool) []*ast.AssignStmt {
	stmts := make([]*ast.AssignStmt, 0, len(set))
	for stmt := range set {
		stmts = append(stmts, stmt)
	}
	sort.Slice(stmts, func(i, j int) bool { return stmts[i].Pos() < stmts[j].Pos() })
	return stmts
}

func nodeString(fset *token.FileSet, n ast.Node) string {
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, n); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}
