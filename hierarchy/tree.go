package hierarchy

import "fmt"

// Node is a named entry linked to its declared children.
type Node struct {
	Name     string
	Parent   string
	Children []string
}

// Tree is a hierarchy table with children linked.
type Tree struct {
	Nodes map[string]*Node
	// Order lists names in the order they were first declared.
	Order []string
	// Roots lists the names declared without a parent.
	Roots []string
	// Orphans lists the names whose parent is never declared. They are not
	// linked as anyone's child.
	Orphans []string
}

// BuildOption configures Build.
type BuildOption func(*buildOpts)

type buildOpts struct {
	strict bool
}

// Strict makes Build reject entries whose parent is never declared.
func Strict(v bool) BuildOption {
	return func(o *buildOpts) { o.strict = v }
}

// Build links entries into a tree. A name declared twice keeps its first
// position and takes the parent of its last declaration.
func Build(entries []Entry, opts ...BuildOption) (*Tree, error) {
	o := &buildOpts{}
	for _, opt := range opts {
		opt(o)
	}
	t := &Tree{Nodes: map[string]*Node{}}
	for _, e := range entries {
		n := t.Nodes[e.Name]
		if n == nil {
			n = &Node{Name: e.Name}
			t.Nodes[e.Name] = n
			t.Order = append(t.Order, e.Name)
		}
		n.Parent = e.Parent
	}
	for _, name := range t.Order {
		n := t.Nodes[name]
		switch {
		case n.Parent == "":
			t.Roots = append(t.Roots, name)
		case n.Parent == name:
			return nil, fmt.Errorf("%w: %q is its own parent", ErrCycle, name)
		default:
			p := t.Nodes[n.Parent]
			if p == nil {
				if o.strict {
					return nil, fmt.Errorf("%w: %q (parent of %q)", ErrUndeclaredParent, n.Parent, name)
				}
				t.Orphans = append(t.Orphans, name)
				continue
			}
			p.Children = append(p.Children, name)
		}
	}
	return t, nil
}

// Children returns the declared children of name.
func (t *Tree) Children(name string) []string {
	if n := t.Nodes[name]; n != nil {
		return n.Children
	}
	return nil
}

// HasChildren reports whether name has declared children.
func (t *Tree) HasChildren(name string) bool {
	return len(t.Children(name)) != 0
}

// Has reports whether name is declared.
func (t *Tree) Has(name string) bool {
	_, ok := t.Nodes[name]
	return ok
}

// Unreachable returns the declared names that cannot be reached from a root,
// in declaration order. Orphans and their descendants are unreachable, as
// are entries whose parents form a cycle.
func (t *Tree) Unreachable() []string {
	seen := map[string]bool{}
	var visit func(string)
	visit = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		for _, c := range t.Children(name) {
			visit(c)
		}
	}
	for _, r := range t.Roots {
		visit(r)
	}
	var res []string
	for _, name := range t.Order {
		if !seen[name] {
			res = append(res, name)
		}
	}
	return res
}

// Len returns the number of declared names.
func (t *Tree) Len() int { return len(t.Order) }
