// Package formatter renders findings as colored text, JSON or SARIF.
package formatter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/gnolang/scopelint/internal/rules"
	tt "github.com/gnolang/scopelint/internal/types"
)

// Format names an output format.
type Format string

const (
	Text  Format = "text"
	JSON  Format = "json"
	SARIF Format = "sarif"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case Text, JSON, SARIF:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", name)
}

// Options carries what the writers need beyond the findings.
type Options struct {
	// Rules describes the rules in SARIF output.
	Rules []rules.Rule

	// Source returns the lines of a unit for text snippets. It may be nil,
	// and may return nil for units without source.
	Source func(unit string) *SourceCode

	// Version is reported as the SARIF tool version.
	Version string
}

// Write renders findings, which must already be ordered, in the given format.
func Write(w io.Writer, format Format, findings []tt.Finding, opts Options) error {
	switch format {
	case Text:
		return WriteText(w, findings, opts.Source)
	case JSON:
		return WriteJSON(w, findings)
	case SARIF:
		return WriteSARIF(w, findings, opts.Rules, opts.Version)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteText prints each finding with a source snippet when available.
func WriteText(w io.Writer, findings []tt.Finding, source func(unit string) *SourceCode) error {
	cache := make(map[string]*SourceCode)
	for start := 0; start < len(findings); {
		unit := findings[start].Unit
		end := start
		for end < len(findings) && findings[end].Unit == unit {
			end++
		}

		src, ok := cache[unit]
		if !ok && source != nil {
			src = source(unit)
			cache[unit] = src
		}
		if _, err := io.WriteString(w, GenerateFormattedFindings(findings[start:end], src)); err != nil {
			return err
		}
		start = end
	}
	return nil
}

type jsonReport struct {
	Findings []tt.Finding `json:"findings"`
	Count    int          `json:"count"`
}

// WriteJSON writes the findings as an indented JSON document.
func WriteJSON(w io.Writer, findings []tt.Finding) error {
	if findings == nil {
		findings = []tt.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{Findings: findings, Count: len(findings)})
}

const informationURI = "https://github.com/gnolang/scopelint"

// WriteSARIF writes a SARIF 2.1.0 log with one run.
func WriteSARIF(w io.Writer, findings []tt.Finding, ruleList []rules.Rule, version string) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("error creating SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("scopelint", informationURI)
	if version != "" {
		run.Tool.Driver.Version = &version
	}

	known := make(map[string]bool)
	for _, r := range ruleList {
		run.AddRule(r.ID).
			WithDescription(r.Doc).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: sarifLevel(r.Severity)})
		known[r.ID] = true
	}

	for _, f := range findings {
		if !known[f.Rule] {
			run.AddRule(f.Rule)
			known[f.Rule] = true
		}
		region := sarif.NewRegion().WithStartLine(f.Line)
		if f.Column > 0 {
			region = region.WithStartColumn(f.Column)
		}
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.Unit)).
				WithRegion(region),
		)
		result := sarif.NewRuleResult(f.Rule).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel(sarifLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}

	report.AddRun(run)
	return report.PrettyWrite(w)
}

func sarifLevel(s tt.Severity) string {
	switch s {
	case tt.SeverityError:
		return "error"
	case tt.SeverityWarning:
		return "warning"
	case tt.SeverityInfo:
		return "note"
	default:
		return "none"
	}
}
