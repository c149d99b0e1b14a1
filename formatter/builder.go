package formatter

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	tt "github.com/gnolang/scopelint/internal/types"
)

const tabWidth = 8

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	infoStyle    = color.New(color.FgHiCyan, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
)

// SourceCode holds the lines of a unit, used to print snippets.
type SourceCode struct {
	Lines []string
}

// ReadSource loads the lines of filename.
func ReadSource(filename string) (*SourceCode, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return &SourceCode{Lines: strings.Split(text, "\n")}, nil
}

const findingTemplate = `{{header .Rule .Severity .MaxLineNumWidth .Filename .Line .Column}}
{{- if .HasSnippet}}
{{snippet .SnippetLines .Line .MaxLineNumWidth .CommonIndent .Padding}}
{{caret .Padding .Line .Column .SnippetLines .CommonIndent}}
{{- end}}
{{message .Message .Padding}}
`

var tmpl = template.Must(template.New("finding").Funcs(template.FuncMap{
	"header":  header,
	"snippet": codeSnippet,
	"caret":   caret,
	"message": message,
}).Parse(findingTemplate))

type findingData struct {
	Severity        string
	Rule            string
	Filename        string
	Padding         string
	Line            int
	Column          int
	MaxLineNumWidth int
	Message         string
	HasSnippet      bool
	SnippetLines    []string
	CommonIndent    string
}

// GenerateFormattedFindings renders findings of one unit in a human-readable
// form. snippet may be nil, in which case no source lines are shown.
func GenerateFormattedFindings(findings []tt.Finding, snippet *SourceCode) string {
	var builder strings.Builder
	for _, f := range findings {
		builder.WriteString(buildFinding(f, snippet))
		builder.WriteString("\n")
	}
	return builder.String()
}

func buildFinding(f tt.Finding, snippet *SourceCode) string {
	maxLineNumWidth := calculateMaxLineNumWidth(f.Line)
	data := findingData{
		Severity:        f.Severity.String(),
		Rule:            f.Rule,
		Filename:        f.Unit,
		Line:            f.Line,
		Column:          f.Column,
		Message:         f.Message,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
	}
	if snippet != nil && f.Line > 0 && f.Line <= len(snippet.Lines) {
		data.HasSnippet = true
		data.SnippetLines = snippet.Lines
		data.CommonIndent = findCommonIndent(snippet.Lines[f.Line-1 : f.Line])
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting finding: %v\n", err)
	}
	return buf.String()
}

// utils functions used in the text template

func header(rule string, severity string, maxLineNumWidth int, filename string, line int, column int) string {
	var endString string
	switch severity {
	case "ERROR":
		endString = errorStyle.Sprint("error: ")
	case "WARNING":
		endString = warningStyle.Sprint("warning: ")
	case "INFO":
		endString = infoStyle.Sprint("info: ")
	}

	endString += ruleStyle.Sprintf("%s\n", rule)

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s:%d:%d", filename, line, column)

	return endString
}

func codeSnippet(snippetLines []string, line int, maxLineNumWidth int, commonIndent string, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)
	text := strings.TrimPrefix(snippetLines[line-1], commonIndent)
	lineNum := fmt.Sprintf("%*d", maxLineNumWidth, line)
	endString += lineStyle.Sprintf("%s | ", lineNum) + text
	return endString
}

func caret(padding string, line int, column int, snippetLines []string, commonIndent string) string {
	endString := lineStyle.Sprintf("%s| ", padding)

	commonIndentWidth := calculateVisualColumn(commonIndent, len(commonIndent)+1)
	start := calculateVisualColumn(snippetLines[line-1], column) - commonIndentWidth
	if start < 0 {
		start = 0
	}
	endString += strings.Repeat(" ", start)
	endString += messageStyle.Sprint("^")
	return endString
}

func message(msg string, padding string) string {
	return lineStyle.Sprintf("%s= ", padding) + messageStyle.Sprint(msg)
}

func calculateMaxLineNumWidth(line int) int {
	return len(fmt.Sprintf("%d", line))
}

// calculateVisualColumn calculates the visual column position
// in a string. taking into account tab characters.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visualColumn := 0
	for i, ch := range line {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}
	return visualColumn
}

// findCommonIndent finds the common indent in the code snippet.
func findCommonIndent(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	// find first non-empty line's indent
	firstIndent := make([]rune, 0)
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed != "" {
			firstIndent = []rune(line[:len(line)-len(trimmed)])
			break
		}
	}

	if len(firstIndent) == 0 {
		return ""
	}

	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}

		currentIndent := []rune(line[:len(line)-len(trimmed)])
		firstIndent = commonPrefix(firstIndent, currentIndent)

		if len(firstIndent) == 0 {
			break
		}
	}

	return string(firstIndent)
}

// commonPrefix finds the common prefix of two strings.
func commonPrefix(a, b []rune) []rune {
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:minLen]
}
