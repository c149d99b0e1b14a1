// Package suppress indexes the suppression markers of a source unit.
//
// A marker is a line holding nothing but a comment of the form
//
//	// suppress <RuleId>
//	/* suppress <RuleId> */
//
// and it silences one finding of exactly that rule on the following line.
// Consecutive marker lines all apply to the first line after them, so a
// line with two findings of one rule needs the marker twice.
package suppress

import (
	"bytes"
	"strings"
)

const markerKeyword = "suppress"

// Entry is one suppression: the rule it names and the line it applies to.
type Entry struct {
	Line         int
	Rule         string
	MarkerLine   int
	MarkerColumn int

	matched bool
}

// Matched reports whether the entry suppressed a finding.
func (e *Entry) Matched() bool { return e.matched }

type key struct {
	line int
	rule string
}

// Index maps (line, rule) pairs to suppression entries. An Index belongs to
// one analysis of one unit; matching mutates it.
type Index struct {
	lines   int
	entries []*Entry
	byKey   map[key][]*Entry
	byLine  map[int][]*Entry
}

// New returns an empty index for a unit with the given number of lines.
// A non-positive count disables the range check.
func New(lines int) *Index {
	return &Index{
		lines:  lines,
		byKey:  make(map[key][]*Entry),
		byLine: make(map[int][]*Entry),
	}
}

// Add records a suppression of rule at line. Lines outside the unit are ignored.
func (idx *Index) Add(line int, rule string) {
	idx.add(&Entry{Line: line, Rule: rule, MarkerLine: line - 1, MarkerColumn: 1})
}

func (idx *Index) add(e *Entry) {
	if e.Line < 1 || (idx.lines > 0 && e.Line > idx.lines) || e.Rule == "" {
		return
	}
	k := key{line: e.Line, rule: e.Rule}
	idx.entries = append(idx.entries, e)
	idx.byKey[k] = append(idx.byKey[k], e)
	idx.byLine[e.Line] = append(idx.byLine[e.Line], e)
}

// Scan builds an index from source text.
func Scan(src []byte) *Index {
	lines := bytes.Split(src, []byte("\n"))
	if n := len(lines); n > 0 && len(lines[n-1]) == 0 {
		lines = lines[:n-1]
	}
	idx := New(len(lines))

	var pending []*Entry
	for i, raw := range lines {
		line := strings.TrimRight(string(raw), "\r")
		rule, col, ok := parseMarker(line)
		if ok {
			pending = append(pending, &Entry{Rule: rule, MarkerLine: i + 1, MarkerColumn: col})
			continue
		}
		for _, e := range pending {
			e.Line = i + 1
			idx.add(e)
		}
		pending = pending[:0]
	}
	// markers on the last lines point past the end of the unit and are dropped
	return idx
}

// parseMarker reports the rule named by a marker line and the column where
// the comment starts.
func parseMarker(line string) (string, int, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	col := len(line) - len(trimmed) + 1
	trimmed = strings.TrimRight(trimmed, " \t")

	var body string
	switch {
	case strings.HasPrefix(trimmed, "//"):
		body = trimmed[2:]
	case strings.HasPrefix(trimmed, "/*") && strings.HasSuffix(trimmed, "*/") && len(trimmed) >= 4:
		body = trimmed[2 : len(trimmed)-2]
		if strings.Contains(body, "*/") {
			return "", 0, false
		}
	default:
		return "", 0, false
	}

	fields := strings.Fields(body)
	if len(fields) != 2 || fields[0] != markerKeyword {
		return "", 0, false
	}
	return fields[1], col, true
}

// Match reports whether a suppression covers rule at line. Each entry
// silences a single finding: the first entry not yet used is marked as
// matched, and once all entries for the pair are used Match returns false.
func (idx *Index) Match(line int, rule string) bool {
	for _, e := range idx.byKey[key{line: line, rule: rule}] {
		if !e.matched {
			e.matched = true
			return true
		}
	}
	return false
}

// AtLine returns the entries that apply to line.
func (idx *Index) AtLine(line int) []*Entry {
	return idx.byLine[line]
}

// Entries returns all entries in marker order.
func (idx *Index) Entries() []*Entry {
	return idx.entries
}

// Unmatched returns the entries that have not suppressed anything.
func (idx *Index) Unmatched() []*Entry {
	var out []*Entry
	for _, e := range idx.entries {
		if !e.matched {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (idx *Index) Len() int { return len(idx.entries) }
