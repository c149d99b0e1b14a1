package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/scopelint/internal/suppress"
	tt "github.com/gnolang/scopelint/internal/types"
)

func TestCollectOrdersAndDeduplicates(t *testing.T) {
	t.Parallel()
	raw := []tt.Finding{
		{Rule: "NestedBlocks", Line: 9, Column: 5},
		{Rule: "B", Line: 3, Column: 7},
		{Rule: "A", Line: 3, Column: 7},
		{Rule: "NestedBlocks", Line: 9, Column: 5},
		{Rule: "A", Line: 3, Column: 2},
	}

	got := Collect("f.cpp", raw, nil, Options{})
	require.Len(t, got, 4)
	assert.Equal(t, []string{"A", "A", "B", "NestedBlocks"}, rulesOf(got))
	assert.Equal(t, 2, got[0].Column)
	for _, f := range got {
		assert.Equal(t, "f.cpp", f.Unit)
		assert.Equal(t, tt.SeverityError, f.Severity)
	}
}

func TestCollectSuppression(t *testing.T) {
	t.Parallel()
	src := "x\n// suppress UnnecessaryEmptyCondition\nif (v.empty()) {}\n"

	raw := []tt.Finding{
		{Rule: "UnnecessaryEmptyCondition", Line: 3, Column: 1},
		{Rule: "CollapsibleIfStatements", Line: 3, Column: 1},
		{Rule: "UnnecessaryEmptyCondition", Line: 1, Column: 1},
	}
	idx := suppress.Scan([]byte(src))

	got := Collect("f.cpp", raw, idx, Options{})
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, "CollapsibleIfStatements", got[1].Rule)
	assert.Equal(t, 3, got[1].Line)
	assert.Empty(t, idx.Unmatched())
}

func TestCollectSuppressesOneFindingPerMarker(t *testing.T) {
	t.Parallel()
	raw := []tt.Finding{
		{Rule: "NestedBlocks", Line: 2, Column: 4},
		{Rule: "NestedBlocks", Line: 2, Column: 1},
		{Rule: "NestedBlocks", Line: 2, Column: 1},
	}

	got := Collect("f.cpp", raw, suppress.Scan([]byte("// suppress NestedBlocks\n{} {}\n")), Options{})
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Column)

	twice := suppress.Scan([]byte("// suppress NestedBlocks\n// suppress NestedBlocks\n{} {}\n"))
	got = Collect("f.cpp", []tt.Finding{
		{Rule: "NestedBlocks", Line: 3, Column: 1},
		{Rule: "NestedBlocks", Line: 3, Column: 4},
	}, twice, Options{Strict: true})
	assert.Empty(t, got)
}

func TestCollectStrictReportsUnmatched(t *testing.T) {
	t.Parallel()
	src := "// suppress NestedBlocks\nfoo();\n// suppress NestedBlocks\nif (a) { if (b) {} }\n"

	raw := []tt.Finding{
		{Rule: "CollapsibleIfStatements", Line: 4, Column: 1},
	}

	got := Collect("f.cpp", raw, suppress.Scan([]byte(src)), Options{Strict: true})
	require.Len(t, got, 3)

	assert.Equal(t, UnmatchedSuppressionID, got[0].Rule)
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, tt.SeverityWarning, got[0].Severity)
	assert.Equal(t, "suppression of NestedBlocks matches no finding on line 2", got[0].Message)

	assert.Equal(t, UnmatchedSuppressionID, got[1].Rule)
	assert.Equal(t, 3, got[1].Line)
	assert.Equal(t, "suppression of NestedBlocks matches no finding on line 4; found CollapsibleIfStatements", got[1].Message)

	assert.Equal(t, "CollapsibleIfStatements", got[2].Rule)
}

func TestCollectNonStrictIgnoresUnmatched(t *testing.T) {
	t.Parallel()
	got := Collect("f.cpp", nil, suppress.Scan([]byte("// suppress NestedBlocks\n{}\n")), Options{})
	assert.Empty(t, got)
}

func TestCollectStrictSkipsDisabledRules(t *testing.T) {
	t.Parallel()
	idx := suppress.Scan([]byte("// suppress NestedBlocks\n{}\n"))
	got := Collect("f.cpp", nil, idx, Options{Strict: true, Disabled: map[string]bool{"NestedBlocks": true}})
	assert.Empty(t, got)
}

func TestCollectSeverities(t *testing.T) {
	t.Parallel()
	raw := []tt.Finding{
		{Rule: "A", Line: 1},
		{Rule: "B", Line: 2},
		{Rule: "C", Line: 3},
	}
	got := Collect("", raw, nil, Options{
		Severities: map[string]tt.Severity{
			"A": tt.SeverityInfo,
			"B": tt.SeverityOff,
		},
		DefaultSeverity: tt.SeverityWarning,
	})
	require.Len(t, got, 2)
	assert.Equal(t, tt.SeverityInfo, got[0].Severity)
	assert.Equal(t, "C", got[1].Rule)
	assert.Equal(t, tt.SeverityWarning, got[1].Severity)
}

func TestCollectIsIdempotent(t *testing.T) {
	t.Parallel()
	raw := []tt.Finding{
		{Rule: "B", Line: 2, Column: 1},
		{Rule: "A", Line: 2, Column: 1},
		{Rule: "A", Line: 1, Column: 9},
	}
	first := Collect("u", raw, nil, Options{})
	second := Collect("u", raw, nil, Options{})
	assert.Equal(t, first, second)
}

func rulesOf(findings []tt.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Rule
	}
	return out
}
