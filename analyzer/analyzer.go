// Package analyzer runs the scopelint rules as a go/analysis pass, so the
// Go frontend can be used from go vet, singlechecker or golangci-lint.
package analyzer

import (
	"flag"
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/analysis"

	"github.com/gnolang/scopelint/internal/engine"
	"github.com/gnolang/scopelint/internal/frontend"
	"github.com/gnolang/scopelint/internal/frontend/golang"
	"github.com/gnolang/scopelint/internal/rules"
	"github.com/gnolang/scopelint/internal/suppress"
	tt "github.com/gnolang/scopelint/internal/types"
)

const (
	name = "scopelint"
	doc  = `scopelint reports redundant scopes and confusing control flow

It flags braces that add no scope, branches in tail position of a loop
after a guarded branch, emptiness checks around a range over the same
container, and nested ifs that can be collapsed. A line preceded by
"// suppress <Rule>" is exempt from that rule.`
	url = "https://pkg.go.dev/github.com/gnolang/scopelint/analyzer"
)

// New creates a scopelint analyzer configured by opts.
func New(opts ...Option) *analysis.Analyzer {
	r := &runOptions{disabled: make(map[string]bool)}
	Options(opts).apply(r)

	a := &analysis.Analyzer{
		Name: name,
		Doc:  doc,
		URL:  url,
		Run:  r.run,
	}
	registerFlags(&a.Flags, r)

	return a
}

// Analyzer is a scopelint analyzer with every rule enabled.
var Analyzer = New()

type runOptions struct {
	disabled  map[string]bool
	strict    bool
	generated bool
}

func registerFlags(flags *flag.FlagSet, r *runOptions) {
	flags.BoolVar(&r.strict, "strict", r.strict, "report suppression markers that silence nothing")
	flags.BoolVar(&r.generated, "generated", r.generated, "check generated files")
	flags.Func("disable", "comma-separated list of rules to disable", func(s string) error {
		for _, id := range strings.Split(s, ",") {
			if id = strings.TrimSpace(id); id != "" {
				r.disabled[id] = true
			}
		}
		return nil
	})
}

func (r *runOptions) engine() *engine.Engine {
	cfg := make(map[string]tt.ConfigRule, len(r.disabled))
	for id := range r.disabled {
		cfg[id] = tt.ConfigRule{Severity: tt.SeverityOff}
	}
	return engine.New(rules.Default(), engine.Options{Rules: cfg, Strict: r.strict})
}

func (r *runOptions) run(pass *analysis.Pass) (any, error) {
	eng := r.engine()
	for _, file := range pass.Files {
		if !r.generated && ast.IsGenerated(file) {
			continue
		}
		tf := pass.Fset.File(file.Pos())
		if tf == nil {
			continue
		}

		tree, err := golang.FromFile(pass.Fset, file)
		if err != nil {
			return nil, err
		}
		res := eng.Analyze(&frontend.Unit{
			Name:  tf.Name(),
			Tree:  tree,
			Index: suppressions(pass, tf),
		})
		if res.Err != nil {
			return nil, res.Err
		}
		for _, f := range res.Findings {
			pass.Report(analysis.Diagnostic{
				Pos:      position(tf, f.Line, f.Column),
				Category: f.Rule,
				Message:  f.Rule + ": " + f.Message,
			})
		}
	}
	return nil, nil
}

// suppressions scans the file's source for markers, which sit alone on
// their line.
func suppressions(pass *analysis.Pass, tf *token.File) *suppress.Index {
	if pass.ReadFile != nil {
		if src, err := pass.ReadFile(tf.Name()); err == nil {
			return suppress.Scan(src)
		}
	}
	return suppress.New(tf.LineCount())
}

func position(tf *token.File, line, column int) token.Pos {
	if line < 1 || line > tf.LineCount() {
		return tf.Pos(0)
	}
	pos := tf.LineStart(line)
	if column > 1 && int(pos)-tf.Base()+column-1 <= tf.Size() {
		pos += token.Pos(column - 1)
	}
	return pos
}
