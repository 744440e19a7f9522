// Package nolint resolves //nolint directives to the lines they silence.
//
//	//nolint                        all rules
//	//nolint:self-assignment        only the listed rules (comma separated)
//
// A directive placed before the package clause silences the whole file. A
// directive trailing a statement silences that statement. A directive on its
// own line silences the statement or declaration that starts on the next line.
package nolint

import (
	"errors"
	"go/ast"
	"go/token"
	"strings"
)

const directive = "//nolint"

var errNotDirective = errors.New("not a nolint directive")

// Manager answers whether an issue at a position is silenced.
type Manager struct {
	scopes map[string][]scope
}

// scope is an inclusive line range; an empty rule set matches every rule.
type scope struct {
	rules     map[string]struct{}
	startLine int
	endLine   int
}

func (s scope) matches(line int, rule string) bool {
	if line < s.startLine || line > s.endLine {
		return false
	}
	if len(s.rules) == 0 {
		return true
	}
	_, ok := s.rules[rule]
	return ok
}

// ParseComments collects the nolint directives of f.
func ParseComments(f *ast.File, fset *token.FileSet) *Manager {
	m := &Manager{scopes: make(map[string][]scope)}
	if f == nil {
		return m
	}

	idx := indexNodes(f, fset)
	packageLine := fset.Position(f.Package).Line

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			rules, err := parseDirective(c.Text)
			if err != nil {
				continue
			}
			pos := fset.Position(c.Slash)
			s := idx.scopeFor(pos, packageLine, fset, f)
			s.rules = rules
			m.scopes[pos.Filename] = append(m.scopes[pos.Filename], s)
		}
	}
	return m
}

// parseDirective returns the rules named by a nolint comment. An empty map
// means every rule.
func parseDirective(text string) (map[string]struct{}, error) {
	rest, ok := strings.CutPrefix(text, directive)
	if !ok {
		return nil, errNotDirective
	}
	rules := make(map[string]struct{})
	if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
		return rules, nil
	}
	if rest[0] != ':' {
		// e.g. //nolintfoo
		return nil, errNotDirective
	}

	list := rest[1:]
	// trailing explanation: //nolint:rule // reason
	if i := strings.Index(list, "//"); i >= 0 {
		list = list[:i]
	}
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			rules[name] = struct{}{}
		}
	}
	if len(rules) == 0 {
		return nil, errors.New("nolint directive lists no rules")
	}
	return rules, nil
}

// nodeIndex maps a line to the first statement or top-level declaration
// starting on it.
type nodeIndex map[int]ast.Node

func indexNodes(f *ast.File, fset *token.FileSet) nodeIndex {
	idx := make(nodeIndex)
	record := func(n ast.Node) {
		line := fset.Position(n.Pos()).Line
		if _, ok := idx[line]; !ok {
			idx[line] = n
		}
	}
	for _, decl := range f.Decls {
		record(decl)
	}
	ast.Inspect(f, func(n ast.Node) bool {
		if stmt, ok := n.(ast.Stmt); ok {
			record(stmt)
		}
		return true
	})
	return idx
}

func (idx nodeIndex) scopeFor(pos token.Position, packageLine int, fset *token.FileSet, f *ast.File) scope {
	if pos.Line < packageLine {
		return scope{startLine: 1, endLine: fset.Position(f.End()).Line}
	}
	if n, ok := idx[pos.Line]; ok && fset.Position(n.Pos()).Offset < pos.Offset {
		return scope{startLine: pos.Line, endLine: fset.Position(n.End()).Line}
	}
	if n, ok := idx[pos.Line+1]; ok {
		return scope{startLine: pos.Line, endLine: fset.Position(n.End()).Line}
	}
	return scope{startLine: pos.Line, endLine: pos.Line}
}

// IsNolint reports whether an issue of rule at pos is silenced.
func (m *Manager) IsNolint(pos token.Position, rule string) bool {
	for _, s := range m.scopes[pos.Filename] {
		if s.matches(pos.Line, rule) {
			return true
		}
	}
	return false
}
