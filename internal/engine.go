package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"go/ast"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"

	"github.com/gnolang/selfassign/internal/lints"
	"github.com/gnolang/selfassign/internal/nolint"
	"github.com/gnolang/selfassign/internal/semantic"
	tt "github.com/gnolang/selfassign/internal/types"
)

// Engine manages the linting process.
//
// The engine keeps no per-file state, so a single engine may lint several
// files concurrently once it is configured.
type Engine struct {
	rootDir      string
	ignoredRules map[string]bool
	ignoredPaths []string
	rules        map[string]LintRule
	cache        *Cache
}

// NewEngine creates a new lint engine.
func NewEngine(rootDir string, rules map[string]tt.ConfigRule) (*Engine, error) {
	engine := &Engine{rootDir: rootDir}
	engine.applyRules(rules)

	return engine, nil
}

type ruleConstructor func() LintRule

type ruleMap map[string]ruleConstructor

var allRuleConstructors = ruleMap{
	lints.SelfAssignmentRule: NewSelfAssignmentRule,
}

// RuleNames returns the names of every known rule, sorted.
func RuleNames() []string {
	names := make([]string, 0, len(allRuleConstructors))
	for name := range allRuleConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRules returns the configuration of every known rule at its default severity.
func DefaultRules() map[string]tt.ConfigRule {
	rules := make(map[string]tt.ConfigRule, len(allRuleConstructors))
	for name, newRule := range allRuleConstructors {
		rules[name] = tt.ConfigRule{Severity: newRule().Severity()}
	}
	return rules
}

func (e *Engine) applyRules(rules map[string]tt.ConfigRule) {
	e.rules = make(map[string]LintRule)
	e.registerDefaultRules()

	for key, rule := range rules {
		r := e.findRule(key)
		if r == nil {
			newRuleCstr := allRuleConstructors[key]
			if newRuleCstr == nil {
				// unknown rule
				continue
			}
			if rule.Severity == tt.SeverityOff {
				continue
			}
			newRule := newRuleCstr()
			newRule.SetSeverity(rule.Severity)
			e.rules[key] = newRule
			continue
		}
		if rule.Severity == tt.SeverityOff {
			delete(e.rules, key)
			continue
		}
		r.SetSeverity(rule.Severity)
	}
}

func (e *Engine) registerDefaultRules() {
	for key, newRuleCstr := range allRuleConstructors {
		newRule := newRuleCstr()
		if newRule.Severity() != tt.SeverityOff {
			e.rules[key] = newRule
		}
	}
}

func (e *Engine) findRule(name string) LintRule {
	if rule, ok := e.rules[name]; ok {
		return rule
	}
	return nil
}

// IgnoreRule disables the named rule.
func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// IgnorePath skips files matching pattern. Patterns use doublestar syntax and
// are matched against slash-separated paths relative to the engine's root
// directory, as well as against the path as given.
func (e *Engine) IgnorePath(pattern string) error {
	pattern = filepath.ToSlash(strings.TrimSpace(pattern))
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid ignore pattern %q", pattern)
	}
	e.ignoredPaths = append(e.ignoredPaths, pattern)
	return nil
}

// IsIgnoredPath reports whether path matches one of the ignore patterns.
func (e *Engine) IsIgnoredPath(path string) bool {
	if len(e.ignoredPaths) == 0 {
		return false
	}
	candidates := []string{filepath.ToSlash(filepath.Clean(path))}
	if e.rootDir != "" {
		if rel, err := filepath.Rel(e.rootDir, path); err == nil && !strings.HasPrefix(rel, "..") {
			candidates = append(candidates, filepath.ToSlash(rel))
		}
	}
	for _, p := range e.ignoredPaths {
		for _, c := range candidates {
			if ok, err := doublestar.Match(p, c); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// SetCache makes Run serve and store results through c.
func (e *Engine) SetCache(c *Cache) {
	e.cache = c
}

// Run applies all lint rules to the given file and returns a slice of Issues.
// Gno files are parsed as Go; issues keep the original file name.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	if e.IsIgnoredPath(filename) {
		return nil, nil
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	fingerprint := e.fingerprint()
	if issues, ok := e.cache.Get(filename, content, fingerprint); ok {
		return issues, nil
	}

	node, fset, err := lints.ParseFile(filename, content)
	if err != nil {
		return nil, fmt.Errorf("error parsing file: %w", err)
	}

	issues, err := e.runRules(filename, node, fset)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Set(filename, content, fingerprint, issues); err != nil {
		return issues, fmt.Errorf("error caching issues: %w", err)
	}
	return issues, nil
}

// RunSource applies all lint rules to the given source and returns a slice of Issues.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	node, fset, err := lints.ParseFile("", source)
	if err != nil {
		return nil, fmt.Errorf("error parsing content: %w", err)
	}
	return e.runRules("", node, fset)
}

// RunUnit lints a unit that was prepared from a type-checked package. Rules
// able to use its warnings do so; the others check the file as Run would.
// The cache is not consulted since the unit's types depend on other files.
func (e *Engine) RunUnit(unit *semantic.Unit) ([]tt.Issue, error) {
	if e.IsIgnoredPath(unit.Filename) {
		return nil, nil
	}
	return e.checkRules(unit.File, unit.Fset, func(r LintRule) ([]tt.Issue, error) {
		if ur, ok := r.(UnitRule); ok {
			return ur.CheckUnit(unit)
		}
		return r.Check(unit.Filename, unit.File, unit.Fset)
	})
}

func (e *Engine) runRules(filename string, node *ast.File, fset *token.FileSet) ([]tt.Issue, error) {
	return e.checkRules(node, fset, func(r LintRule) ([]tt.Issue, error) {
		return r.Check(filename, node, fset)
	})
}

// checkRules runs check for every active rule concurrently and drops the
// issues silenced by nolint comments.
func (e *Engine) checkRules(node *ast.File, fset *token.FileSet, check func(LintRule) ([]tt.Issue, error)) ([]tt.Issue, error) {
	nolintMgr := nolint.ParseComments(node, fset)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		allIssues []tt.Issue
		errs      error
	)
	for _, rule := range e.rules {
		if e.ignoredRules[rule.Name()] {
			continue
		}
		wg.Add(1)
		go func(r LintRule) {
			defer wg.Done()
			issues, err := check(r)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.Name(), err))
				return
			}
			allIssues = append(allIssues, filterNolintIssues(nolintMgr, issues)...)
		}(rule)
	}
	wg.Wait()

	if errs != nil {
		return nil, errs
	}

	sort.SliceStable(allIssues, func(i, j int) bool {
		if allIssues[i].Start.Offset != allIssues[j].Start.Offset {
			return allIssues[i].Start.Offset < allIssues[j].Start.Offset
		}
		return allIssues[i].Rule < allIssues[j].Rule
	})
	return allIssues, nil
}

// fingerprint identifies the active rule configuration for the cache.
func (e *Engine) fingerprint() string {
	parts := make([]string, 0, len(e.rules))
	for name, rule := range e.rules {
		if e.ignoredRules[name] {
			continue
		}
		parts = append(parts, name+"="+rule.Severity().String())
	}
	sort.Strings(parts)

	sum := sha256.Sum256([]byte(strings.Join(parts, ";")))
	return hex.EncodeToString(sum[:])
}

// filterNolintIssues filters issues based on nolint comments.
func filterNolintIssues(mgr *nolint.Manager, issues []tt.Issue) []tt.Issue {
	if mgr == nil {
		return issues
	}
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		pos := token.Position{
			Filename: issue.Start.Filename,
			Line:     issue.Start.Line,
		}
		if !mgr.IsNolint(pos, issue.Rule) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}

func NewSourceCode(content []byte) *SourceCode {
	return &SourceCode{Lines: strings.Split(string(content), "\n")}
}
