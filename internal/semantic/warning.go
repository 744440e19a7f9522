package semantic

import (
	"go/token"
	"sort"
)

// Span is a half-open range [Pos, End) of source positions.
type Span struct {
	Pos token.Pos
	End token.Pos
}

// SpanOf returns the span of a node, or anything else with Pos and End.
func SpanOf(n interface {
	Pos() token.Pos
	End() token.Pos
}) Span {
	return Span{Pos: n.Pos(), End: n.End()}
}

// TokenSpan returns the span of the operator token tok starting at pos.
func TokenSpan(pos token.Pos, tok token.Token) Span {
	return Span{Pos: pos, End: pos + token.Pos(len(tok.String()))}
}

func (s Span) IsValid() bool {
	return s.Pos.IsValid() && s.End >= s.Pos
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.IsValid() && other.IsValid() && s.Pos <= other.Pos && other.End <= s.End
}

// WarningKind classifies the warnings attached to a compilation unit.
type WarningKind int

const (
	// AssignmentHasNoEffect marks assignments that leave their target unchanged.
	AssignmentHasNoEffect WarningKind = iota + 1
)

func (k WarningKind) String() string {
	switch k {
	case AssignmentHasNoEffect:
		return "assignment-has-no-effect"
	default:
		return "unknown"
	}
}

// Warning is a diagnostic produced by the semantic pass. Two warnings are the
// same warning when they have the same kind and cover the same spans; Detail
// is informational only.
type Warning struct {
	Kind   WarningKind
	Spans  []Span
	Detail string
}

// WarningKey is the comparable identity of a Warning.
type WarningKey struct {
	Kind  WarningKind
	Spans string
}

func (w Warning) Key() WarningKey {
	// spans are encoded as a string so the key stays comparable.
	buf := make([]byte, 0, len(w.Spans)*16)
	for _, s := range w.Spans {
		buf = appendPos(buf, s.Pos)
		buf = appendPos(buf, s.End)
	}
	return WarningKey{Kind: w.Kind, Spans: string(buf)}
}

func appendPos(buf []byte, p token.Pos) []byte {
	v := uint64(p)
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(v>>(8*i)))
	}
	return buf
}

// Covers reports whether any span of the warning contains s.
func (w Warning) Covers(s Span) bool {
	for _, span := range w.Spans {
		if span.Contains(s) {
			return true
		}
	}
	return false
}

// Anchor is the span an issue for this warning is reported at.
func (w Warning) Anchor() Span {
	if len(w.Spans) == 0 {
		return Span{}
	}
	return w.Spans[0]
}

// SortWarnings orders warnings by the position of their anchor.
func SortWarnings(ws []Warning) {
	sort.SliceStable(ws, func(i, j int) bool {
		a, b := ws[i].Anchor(), ws[j].Anchor()
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		return a.End < b.End
	})
}
