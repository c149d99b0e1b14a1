// Package engine drives the rules over analyzable units: it walks each tree,
// dispatches nodes to the rules registered for their kind and hands the raw
// findings to the reporter.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/scopelint/internal/frontend"
	"github.com/gnolang/scopelint/internal/report"
	"github.com/gnolang/scopelint/internal/rules"
	"github.com/gnolang/scopelint/internal/scopetree"
	tt "github.com/gnolang/scopelint/internal/types"
)

// ErrRulePanic marks a unit that failed because a rule panicked.
var ErrRulePanic = errors.New("rule panicked")

// Result is the outcome of one unit: either its findings or the error that
// failed it, never both.
type Result struct {
	Unit     string
	Findings []tt.Finding
	Err      error
}

// Options configures an Engine.
type Options struct {
	// Rules overrides rule severities. A rule set to OFF does not run.
	Rules map[string]tt.ConfigRule

	// Strict reports suppression markers that silenced nothing.
	Strict bool

	// Jobs bounds the number of units analyzed at once. Zero means one per CPU.
	Jobs int

	Logger *zap.Logger
}

// Engine manages the linting process.
type Engine struct {
	registry *rules.Registry
	logger   *zap.Logger
	strict   bool
	jobs     int

	mu         sync.RWMutex
	ignored    map[string]bool
	severities map[string]tt.Severity
}

// New creates an engine running the rules of registry. A nil registry means
// the built-in rules.
func New(registry *rules.Registry, opts Options) *Engine {
	if registry == nil {
		registry = rules.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		registry:   registry,
		logger:     logger,
		strict:     opts.Strict,
		jobs:       opts.Jobs,
		ignored:    make(map[string]bool),
		severities: make(map[string]tt.Severity),
	}
	for _, r := range registry.All() {
		sev := r.Severity
		if cfg, ok := opts.Rules[r.ID]; ok {
			sev = cfg.Severity
		}
		e.severities[r.ID] = sev
		if sev == tt.SeverityOff {
			e.ignored[r.ID] = true
		}
	}
	for id := range opts.Rules {
		if _, ok := registry.Lookup(id); !ok {
			logger.Warn("unknown rule in configuration", zap.String("rule", id))
		}
	}
	return e
}

// IgnoreRule disables a rule for every later analysis.
func (e *Engine) IgnoreRule(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ignored[id] = true
}

// Rules returns the enabled rules ordered by id.
func (e *Engine) Rules() []rules.Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []rules.Rule
	for _, r := range e.registry.All() {
		if !e.ignored[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// Run parses and analyzes one file.
func (e *Engine) Run(filename string) Result {
	return e.run(context.Background(), filename)
}

// RunSource analyzes source text; name selects the frontend and labels the findings.
func (e *Engine) RunSource(name string, src []byte) Result {
	u, err := frontend.Parse(context.Background(), name, src)
	if err != nil {
		return e.fail(name, err)
	}
	return e.Analyze(u)
}

func (e *Engine) run(ctx context.Context, filename string) Result {
	u, err := frontend.Load(ctx, filename)
	if err != nil {
		return e.fail(filename, err)
	}
	return e.Analyze(u)
}

func (e *Engine) fail(unit string, err error) Result {
	e.logger.Error("unit failed", zap.String("unit", unit), zap.Error(err))
	return Result{Unit: unit, Err: err}
}

// Analyze runs the enabled rules over a unit and returns its reported findings.
// The unit's suppression index records which markers matched.
func (e *Engine) Analyze(u *frontend.Unit) Result {
	ignored, opts := e.snapshot()

	findings, err := e.check(u.Tree, ignored)
	if err != nil {
		return e.fail(u.Name, err)
	}
	findings = report.Collect(u.Name, findings, u.Index, opts)
	e.logger.Debug("unit analyzed", zap.String("unit", u.Name), zap.Int("findings", len(findings)))
	return Result{Unit: u.Name, Findings: findings}
}

func (e *Engine) snapshot() (map[string]bool, report.Options) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ignored := make(map[string]bool, len(e.ignored))
	for id, v := range e.ignored {
		ignored[id] = v
	}
	severities := make(map[string]tt.Severity, len(e.severities))
	for id, s := range e.severities {
		severities[id] = s
	}
	return ignored, report.Options{
		Strict:     e.strict,
		Severities: severities,
		Disabled:   ignored,
	}
}

// check walks the tree in pre-order. Subtrees of unknown kind are skipped.
func (e *Engine) check(tree *scopetree.Tree, ignored map[string]bool) (findings []tt.Finding, err error) {
	var current string
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = fmt.Errorf("%s: %w: %s: %v", tree.Unit(), ErrRulePanic, current, r)
		}
	}()

	tree.Walk(func(h scopetree.Handle) bool {
		kind := tree.Kind(h)
		if kind == scopetree.KindUnknown {
			return false
		}
		for _, r := range e.registry.ForKind(kind) {
			if ignored[r.ID] {
				continue
			}
			current = r.ID
			findings = append(findings, r.Check(tree, h)...)
		}
		return true
	})
	return findings, nil
}

func (e *Engine) workers() int {
	if e.jobs > 0 {
		return e.jobs
	}
	return runtime.NumCPU()
}

// RunFiles analyzes files concurrently. Results are returned in input order.
// onDone, when set, is called once per finished unit, never concurrently.
// Once ctx is done no new unit starts; the skipped ones carry ctx's error,
// which is also returned.
func (e *Engine) RunFiles(ctx context.Context, files []string, onDone func(Result)) ([]Result, error) {
	results := make([]Result, len(files))
	started := make([]bool, len(files))

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(e.workers())
	for i, f := range files {
		if ctx.Err() != nil {
			break
		}
		started[i] = true
		g.Go(func() error {
			res := e.run(ctx, f)
			results[i] = res
			if onDone != nil {
				mu.Lock()
				onDone(res)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	err := ctx.Err()
	for i, ok := range started {
		if !ok {
			results[i] = Result{Unit: files[i], Err: err}
		}
	}
	return results, err
}
