package lints

import "github.com/gnolang/selfassign/internal/semantic"

// reconciliationSet holds the semantic warnings of one unit that no rule has
// claimed yet. It belongs to a single traversal and is never shared.
type reconciliationSet struct {
	warnings map[semantic.WarningKey]semantic.Warning
}

func newReconciliationSet() *reconciliationSet {
	return &reconciliationSet{warnings: make(map[semantic.WarningKey]semantic.Warning)}
}

func (s *reconciliationSet) reset() {
	clear(s.warnings)
}

func (s *reconciliationSet) load(ws []semantic.Warning) {
	for _, w := range ws {
		s.warnings[w.Key()] = w
	}
}

func (s *reconciliationSet) len() int {
	return len(s.warnings)
}

// covers reports whether any warning in the set covers span.
func (s *reconciliationSet) covers(span semantic.Span) bool {
	for _, w := range s.warnings {
		if w.Covers(span) {
			return true
		}
	}
	return false
}

// removeCovering drops every warning covering span and returns how many were dropped.
func (s *reconciliationSet) removeCovering(span semantic.Span) int {
	removed := 0
	for key, w := range s.warnings {
		if w.Covers(span) {
			delete(s.warnings, key)
			removed++
		}
	}
	return removed
}

// remaining returns the unclaimed warnings in source order.
func (s *reconciliationSet) remaining() []semantic.Warning {
	out := make([]semantic.Warning, 0, len(s.warnings))
	for _, w := range s.warnings {
		out = append(out, w)
	}
	semantic.SortWarnings(out)
	return out
}
