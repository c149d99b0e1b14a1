// Package rules holds the structural rules and the registry the engine
// dispatches them from.
package rules

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gnolang/scopelint/internal/scopetree"
	tt "github.com/gnolang/scopelint/internal/types"
)

// CheckFunc inspects one node and returns the findings anchored there.
// It must not retain or modify the tree.
type CheckFunc func(tree *scopetree.Tree, h scopetree.Handle) []tt.Finding

// Rule describes a registered rule.
type Rule struct {
	ID  string
	Doc string

	// Kinds are the node kinds the engine dispatches to Check.
	Kinds []scopetree.Kind
	Check CheckFunc

	// Severity is used when the configuration does not set one.
	Severity tt.Severity
}

// Registry maps rule ids to rules. Registration happens before analysis
// starts; afterwards the registry is only read.
type Registry struct {
	mu     sync.RWMutex
	rules  map[string]Rule
	byKind map[scopetree.Kind][]Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rules:  make(map[string]Rule),
		byKind: make(map[scopetree.Kind][]Rule),
	}
}

// Register adds a rule. Ids must be unique.
func (r *Registry) Register(rule Rule) error {
	if rule.ID == "" || rule.Check == nil || len(rule.Kinds) == 0 {
		return fmt.Errorf("rule %q: id, kinds and check are required", rule.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rules[rule.ID]; exists {
		return fmt.Errorf("rule %q is already registered", rule.ID)
	}
	r.rules[rule.ID] = rule
	for _, k := range rule.Kinds {
		r.byKind[k] = append(r.byKind[k], rule)
		sort.Slice(r.byKind[k], func(i, j int) bool { return r.byKind[k][i].ID < r.byKind[k][j].ID })
	}
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(rule Rule) {
	if err := r.Register(rule); err != nil {
		panic(err)
	}
}

// Lookup returns the rule with the given id.
func (r *Registry) Lookup(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	return rule, ok
}

// ForKind returns the rules dispatched for nodes of kind k, ordered by id.
func (r *Registry) ForKind(k scopetree.Kind) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKind[k]
}

// All returns every rule ordered by id.
func (r *Registry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		all = append(all, rule)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// IDs returns every rule id in order.
func (r *Registry) IDs() []string {
	all := r.All()
	ids := make([]string, len(all))
	for i, rule := range all {
		ids[i] = rule.ID
	}
	return ids
}

// Default returns a registry holding the built-in rules.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(BranchAsLastInLoop)
	r.MustRegister(NestedBlocks)
	r.MustRegister(UnnecessaryEmptyCondition)
	r.MustRegister(CollapsibleIf)
	return r
}

// finding builds a finding anchored at h.
func finding(tree *scopetree.Tree, h scopetree.Handle, rule, message string) tt.Finding {
	pos := tree.Position(h)
	return tt.Finding{
		Rule:    rule,
		Unit:    tree.Unit(),
		Line:    pos.Line,
		Column:  pos.Column,
		Message: message,
	}
}

// body returns the flattened statements of a mandatory slot of h, which may
// hold a block or a single statement.
func body(tree *scopetree.Tree, h scopetree.Handle, role scopetree.Role) []scopetree.Handle {
	slot := tree.Child(h, role)
	if !slot.Valid() {
		return nil
	}
	return tree.Flatten(slot)
}

// hasNontrivialElse reports whether an if carries an else branch with at least
// one statement. An else-if always counts.
func hasNontrivialElse(tree *scopetree.Tree, ifStmt scopetree.Handle) bool {
	return len(body(tree, ifStmt, scopetree.RoleElse)) > 0
}
