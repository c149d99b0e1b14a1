// Package report turns the raw findings of one unit into the final,
// suppression-filtered and ordered list.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gnolang/scopelint/internal/suppress"
	tt "github.com/gnolang/scopelint/internal/types"
)

// UnmatchedSuppressionID is the rule id of the warning emitted in strict
// mode for a suppression marker that silenced nothing.
const UnmatchedSuppressionID = "UnmatchedSuppression"

// Options controls Collect.
type Options struct {
	// Strict reports suppression markers that did not match any finding.
	Strict bool

	// Severities overrides the severity per rule id. Rules mapped to
	// SeverityOff are dropped.
	Severities map[string]tt.Severity

	// DefaultSeverity applies to rules missing from Severities.
	DefaultSeverity tt.Severity

	// Disabled lists rules that did not run. Their markers are never
	// reported as unmatched.
	Disabled map[string]bool
}

// Collect removes duplicate findings, filters the rest through the
// suppression index, assigns severities and orders the result by position.
// Each suppression entry silences at most one finding.
// idx may be nil.
func Collect(unit string, findings []tt.Finding, idx *suppress.Index, opts Options) []tt.Finding {
	type key struct {
		rule         string
		line, column int
	}
	seen := make(map[key]bool, len(findings))
	found := make(map[int][]string)

	unique := make([]tt.Finding, 0, len(findings))
	for _, f := range findings {
		if unit != "" {
			f.Unit = unit
		}
		found[f.Line] = append(found[f.Line], f.Rule)
		k := key{rule: f.Rule, line: f.Line, column: f.Column}
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, f)
	}
	// markers are consumed in position order
	Sort(unique)

	out := make([]tt.Finding, 0, len(unique))
	for _, f := range unique {
		if idx != nil && idx.Match(f.Line, f.Rule) {
			continue
		}
		f.Severity = opts.severityOf(f.Rule)
		if f.Severity == tt.SeverityOff {
			continue
		}
		out = append(out, f)
	}

	if opts.Strict && idx != nil {
		for _, e := range idx.Unmatched() {
			if opts.Disabled[e.Rule] {
				continue
			}
			f := tt.Finding{
				Rule:     UnmatchedSuppressionID,
				Unit:     unit,
				Line:     e.MarkerLine,
				Column:   e.MarkerColumn,
				Message:  unmatchedMessage(e, found[e.Line]),
				Severity: tt.SeverityWarning,
			}
			if s, ok := opts.Severities[UnmatchedSuppressionID]; ok {
				f.Severity = s
			}
			if f.Severity != tt.SeverityOff {
				out = append(out, f)
			}
		}
	}

	Sort(out)
	return out
}

func (o Options) severityOf(rule string) tt.Severity {
	if s, ok := o.Severities[rule]; ok {
		return s
	}
	return o.DefaultSeverity
}

func unmatchedMessage(e *suppress.Entry, rulesOnLine []string) string {
	if len(rulesOnLine) == 0 {
		return fmt.Sprintf("suppression of %s matches no finding on line %d", e.Rule, e.Line)
	}
	others := uniqueSorted(rulesOnLine)
	return fmt.Sprintf("suppression of %s matches no finding on line %d; found %s",
		e.Rule, e.Line, strings.Join(others, ", "))
}

func uniqueSorted(in []string) []string {
	set := make(map[string]struct{}, len(in))
	for _, s := range in {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Sort orders findings by unit, line, column, rule id and message.
func Sort(findings []tt.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})
}
