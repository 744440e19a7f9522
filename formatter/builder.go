package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/gnolang/selfassign/internal"
	tt "github.com/gnolang/selfassign/internal/types"
)

const tabWidth = 8

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	infoStyle       = color.New(color.FgHiCyan, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

const issueTemplate = `{{header .Rule .Category .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding}}
{{- underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .CommonIndent}}
{{- suggestion .Suggestion .Padding}}
{{- note .Note .Padding}}
`

var issueTmpl = template.Must(template.New("issue").Funcs(template.FuncMap{
	"header":              header,
	"snippet":             codeSnippet,
	"underlineAndMessage": underlineAndMessage,
	"suggestion":          suggestion,
	"note":                note,
}).Parse(issueTemplate))

// GenerateFormattedIssue formats a slice of issues into a human-readable string.
// snippet holds the lines of the file the issues belong to.
func GenerateFormattedIssue(issues []tt.Issue, snippet *internal.SourceCode) string {
	var builder strings.Builder
	for _, issue := range issues {
		builder.WriteString(buildIssue(issue, snippet))
	}
	return builder.String()
}

type IssueData struct {
	Category        string
	Severity        string
	Rule            string
	Filename        string
	Padding         string
	StartLine       int
	StartColumn     int
	EndLine         int
	EndColumn       int
	MaxLineNumWidth int
	Message         string
	Suggestion      string
	Note            string
	SnippetLines    []string
	CommonIndent    string
}

func buildIssue(issue tt.Issue, snippet *internal.SourceCode) string {
	if snippet == nil {
		snippet = &internal.SourceCode{}
	}
	startLine := issue.Start.Line
	endLine := issue.End.Line
	maxLineNumWidth := calculateMaxLineNumWidth(endLine)
	padding := strings.Repeat(" ", maxLineNumWidth+1)

	var commonIndent string
	if isValidLineRange(startLine, endLine, snippet.Lines) {
		commonIndent = findCommonIndent(snippet.Lines[startLine-1 : endLine])
	}

	data := IssueData{
		Severity:        issue.Severity.String(),
		Category:        issue.Category,
		Rule:            issue.Rule,
		Filename:        issue.Filename,
		StartLine:       startLine,
		StartColumn:     issue.Start.Column,
		EndLine:         endLine,
		EndColumn:       issue.End.Column,
		Message:         issue.Message,
		Suggestion:      issue.Suggestion,
		Note:            issue.Note,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         padding,
		CommonIndent:    commonIndent,
		SnippetLines:    snippet.Lines,
	}

	var buf bytes.Buffer
	if err := issueTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting issue: %v", err)
	}
	return buf.String()
}

// utils functions used in the text template

func header(rule, category, severity string, maxLineNumWidth int, filename string, startLine, startColumn int) string {
	var out string
	switch severity {
	case "WARNING":
		out = warningStyle.Sprint("warning: ")
	case "INFO":
		out = infoStyle.Sprint("info: ")
	default:
		out = errorStyle.Sprint("error: ")
	}

	out += ruleStyle.Sprint(rule)
	if category != "" && category != rule {
		out += ruleStyle.Sprintf(" (%s)", category)
	}
	out += "\n"

	padding := strings.Repeat(" ", maxLineNumWidth)
	out += lineStyle.Sprintf("%s--> ", padding)
	if filename == "" {
		filename = "<source>"
	}
	out += fileStyle.Sprintf("%s:%d:%d", filename, startLine, startColumn)
	return out
}

func codeSnippet(snippetLines []string, startLine, endLine, maxLineNumWidth int, commonIndent, padding string) string {
	out := lineStyle.Sprintf("%s|\n", padding)

	for i := startLine; i <= endLine; i++ {
		if i-1 < 0 || i-1 >= len(snippetLines) {
			continue
		}
		line := strings.TrimPrefix(snippetLines[i-1], commonIndent)
		lineNum := fmt.Sprintf("%*d", maxLineNumWidth, i)
		out += lineStyle.Sprintf("%s | ", lineNum) + line + "\n"
	}
	return out
}

func underlineAndMessage(message, padding string, startLine, endLine, startColumn, endColumn int, snippetLines []string, commonIndent string) string {
	out := lineStyle.Sprintf("%s| ", padding)

	if !isValidLineRange(startLine, endLine, snippetLines) {
		return out + messageStyle.Sprintf("%s\n", message)
	}

	commonIndentWidth := calculateVisualColumn(commonIndent, len(commonIndent)+1)

	underlineStart := calculateVisualColumn(snippetLines[startLine-1], startColumn) - commonIndentWidth
	if underlineStart < 0 {
		underlineStart = 0
	}
	// End columns point one past the last character.
	underlineEnd := calculateVisualColumn(snippetLines[endLine-1], endColumn) - commonIndentWidth
	underlineLength := underlineEnd - underlineStart
	if underlineLength < 1 {
		underlineLength = 1
	}

	out += strings.Repeat(" ", underlineStart)
	out += messageStyle.Sprintf("%s\n", strings.Repeat("^", underlineLength))

	out += lineStyle.Sprintf("%s= ", padding)
	out += messageStyle.Sprintf("%s\n", message)
	return out
}

func suggestion(suggestion, padding string) string {
	if suggestion == "" {
		return ""
	}
	return lineStyle.Sprintf("%s= ", padding) + suggestionStyle.Sprint("help: ") + suggestion + "\n"
}

func note(note, padding string) string {
	if note == "" {
		return ""
	}
	return lineStyle.Sprintf("%s= ", padding) + suggestionStyle.Sprint("note: ") + note + "\n"
}

func isValidLineRange(startLine, endLine int, snippetLines []string) bool {
	return startLine > 0 &&
		endLine > 0 &&
		startLine <= endLine &&
		startLine <= len(snippetLines) &&
		endLine <= len(snippetLines)
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}

// calculateVisualColumn returns the terminal column of the 1-based byte column
// in line. Tabs advance to the next tab stop and wide runes take two cells.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visualColumn := 0
	for i, ch := range line {
		if i+1 >= column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn += runewidth.RuneWidth(ch)
		}
	}
	return visualColumn
}

// findCommonIndent finds the common indent in the code snippet.
func findCommonIndent(lines []string) string {
	var indent []rune
	found := false
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		current := []rune(line[:len(line)-len(trimmed)])
		if !found {
			indent, found = current, true
			continue
		}
		indent = commonPrefix(indent, current)
		if len(indent) == 0 {
			break
		}
	}
	return string(indent)
}

// commonPrefix finds the common prefix of two rune slices.
func commonPrefix(a, b []rune) []rune {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
