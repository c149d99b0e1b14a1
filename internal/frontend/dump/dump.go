// Package dump reads and writes serialized node tables. A dump is a flat list
// of nodes linked by id, plus the suppressions that apply to the unit. JSON
// dumps are read through the same decoder, since YAML is a superset of JSON.
package dump

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/scopelint/internal/scopetree"
	"github.com/gnolang/scopelint/internal/suppress"
)

// Dump is one unit's node table.
type Dump struct {
	Unit string `yaml:"unit"`

	// Lines is the number of source lines. Suppressions beyond it are dropped;
	// zero disables the check.
	Lines int `yaml:"lines,omitempty"`

	Nodes        []Node        `yaml:"nodes"`
	Suppressions []Suppression `yaml:"suppressions,omitempty"`
}

// Node is one entry of the table. Parent may be omitted, in which case it is
// derived from the node listing this one among its children.
type Node struct {
	ID       int    `yaml:"id"`
	Kind     string `yaml:"kind"`
	Role     string `yaml:"role,omitempty"`
	Parent   *int   `yaml:"parent,omitempty"`
	Children []int  `yaml:"children,omitempty,flow"`
	Line     int    `yaml:"line"`
	Column   int    `yaml:"column"`
	Branch   string `yaml:"branch,omitempty"`
	Loop     string `yaml:"loop,omitempty"`
	Op       string `yaml:"op,omitempty"`
	Name     string `yaml:"name,omitempty"`
	Text     string `yaml:"text,omitempty"`
}

type Suppression struct {
	Line int    `yaml:"line"`
	Rule string `yaml:"rule"`
}

// Decode parses a YAML or JSON dump.
func Decode(src []byte) (*Dump, error) {
	var d Dump
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("error decoding dump: %w", err)
	}
	return &d, nil
}

// Tree converts the table into a validated tree named name.
func (d *Dump) Tree(name string) (*scopetree.Tree, error) {
	handles := make(map[int]scopetree.Handle, len(d.Nodes))
	for i, n := range d.Nodes {
		if _, dup := handles[n.ID]; dup {
			return nil, fmt.Errorf("%s: %w: duplicate node id %d", name, scopetree.ErrMalformedTree, n.ID)
		}
		handles[n.ID] = scopetree.Handle(i)
	}
	resolve := func(id int) (scopetree.Handle, error) {
		h, ok := handles[id]
		if !ok {
			return scopetree.NoHandle, fmt.Errorf("%s: %w: unknown node id %d", name, scopetree.ErrMalformedTree, id)
		}
		return h, nil
	}

	nodes := make([]scopetree.Node, len(d.Nodes))
	listedBy := make(map[scopetree.Handle]scopetree.Handle)
	for i, n := range d.Nodes {
		node := scopetree.Node{
			Kind:   scopetree.ParseKind(n.Kind),
			Role:   scopetree.ParseRole(n.Role),
			Pos:    scopetree.Position{Line: n.Line, Column: n.Column},
			Parent: scopetree.NoHandle,
			Branch: scopetree.ParseBranchKind(n.Branch),
			Loop:   scopetree.ParseLoopKind(n.Loop),
			Op:     scopetree.ParseExprOp(n.Op),
			Name:   n.Name,
			Text:   n.Text,
		}
		for _, id := range n.Children {
			c, err := resolve(id)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, c)
			if _, seen := listedBy[c]; !seen {
				listedBy[c] = scopetree.Handle(i)
			}
		}
		if n.Parent != nil {
			p, err := resolve(*n.Parent)
			if err != nil {
				return nil, err
			}
			node.Parent = p
		}
		nodes[i] = node
	}
	for i := range nodes {
		if d.Nodes[i].Parent != nil {
			continue
		}
		if p, ok := listedBy[scopetree.Handle(i)]; ok {
			nodes[i].Parent = p
		}
	}
	return scopetree.FromTable(name, nodes)
}

// Index returns the suppressions of the dump.
func (d *Dump) Index() *suppress.Index {
	idx := suppress.New(d.Lines)
	for _, s := range d.Suppressions {
		idx.Add(s.Line, s.Rule)
	}
	return idx
}

// FromTree serializes a tree and its suppressions. Node ids are handles.
func FromTree(tree *scopetree.Tree, idx *suppress.Index) *Dump {
	d := &Dump{Unit: tree.Unit()}
	for h := scopetree.Handle(0); int(h) < tree.Len(); h++ {
		n := tree.Node(h)
		out := Node{
			ID:     int(h),
			Kind:   n.Kind.String(),
			Line:   n.Pos.Line,
			Column: n.Pos.Column,
			Branch: n.Branch.String(),
			Loop:   n.Loop.String(),
			Name:   n.Name,
			Text:   n.Text,
		}
		if n.Parent.Valid() {
			parent := int(n.Parent)
			out.Parent = &parent
			out.Role = n.Role.String()
		}
		if n.Kind == scopetree.KindExpression {
			out.Op = n.Op.String()
		}
		for _, c := range n.Children {
			out.Children = append(out.Children, int(c))
		}
		d.Nodes = append(d.Nodes, out)
	}
	if idx != nil {
		for _, e := range idx.Entries() {
			d.Suppressions = append(d.Suppressions, Suppression{Line: e.Line, Rule: e.Rule})
		}
	}
	return d
}

// Encode writes d as YAML.
func (d *Dump) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("error encoding dump: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
