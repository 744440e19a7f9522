package nolint

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text    string
		rules   []string
		wantErr bool
	}{
		{text: "//nolint", rules: []string{}},
		{text: "//nolint // generated", rules: []string{}},
		{text: "//nolint:self-assignment", rules: []string{"self-assignment"}},
		{text: "//nolint:rule1, rule2,rule3", rules: []string{"rule1", "rule2", "rule3"}},
		{text: "//nolint:rule1 // why", rules: []string{"rule1"}},
		{text: "//nolint:", wantErr: true},
		{text: "//nolint: , ", wantErr: true},
		{text: "//nolintfoo", wantErr: true},
		{text: "// nolint", wantErr: true},
		{text: "/* nolint */", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.text, func(t *testing.T) {
			t.Parallel()
			rules, err := parseDirective(tc.text)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rules, len(tc.rules))
			for _, r := range tc.rules {
				assert.Contains(t, rules, r)
			}
		})
	}
}

func TestParseComments_Declarations(t *testing.T) {
	t.Parallel()
	src := `package main

//nolint:rule1,rule2
func foo() {
	// some code
}

//nolint
var x int
`

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", src, parser.ParseComments)
	require.NoError(t, err)

	manager := ParseComments(f, fset)
	require.NotNil(t, manager)

	assert.True(t, manager.IsNolint(positionAtLine(5), "rule1"))
	assert.False(t, manager.IsNolint(positionAtLine(5), "rule3"))
	assert.True(t, manager.IsNolint(positionAtLine(9), "anyrule"))
	assert.False(t, manager.IsNolint(positionAtLine(7), "anyrule"))
}

func TestIsNolint(t *testing.T) {
	t.Parallel()
	source := `package main

func main() {
	//nolint
	x = x
	y = y
	z = z //nolint:rule1
	//nolint:rule2
	w = w
}
`

	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, "test.go", source, parser.ParseComments)
	require.NoError(t, err)

	manager := ParseComments(node, fset)

	tests := []struct {
		rule     string
		line     int
		expected bool
	}{
		{"anyrule", 5, true},
		{"anyrule", 6, false},
		{"rule1", 7, true},
		{"rule2", 7, false},
		{"rule2", 9, true},
		{"rule3", 9, false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, manager.IsNolint(positionAtLine(tc.line), tc.rule),
			"line %d rule %s", tc.line, tc.rule)
	}
}

func TestIsNolint_WholeFile(t *testing.T) {
	t.Parallel()
	source := `//nolint:self-assignment
package main

func main() {
	x = x
}
`
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, "test.go", source, parser.ParseComments)
	require.NoError(t, err)

	manager := ParseComments(node, fset)
	assert.True(t, manager.IsNolint(positionAtLine(5), "self-assignment"))
	assert.False(t, manager.IsNolint(positionAtLine(5), "other"))
	assert.False(t, manager.IsNolint(token.Position{Filename: "other.go", Line: 5}, "self-assignment"))
}

func positionAtLine(line int) token.Position {
	return token.Position{
		Filename: "test.go",
		Line:     line,
		Column:   1,
	}
}
