package scene

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Document is a scene layer: a pseudo-root holding the root nodes plus layer
// metadata.
type Document struct {
	DefaultPrim        string
	UpAxis             string
	MetersPerUnit      *float64
	FramesPerSecond    *float64
	TimeCodesPerSecond *float64
	StartTimeCode      *float64
	EndTimeCode        *float64
	Doc                string
	CustomLayerData    map[string]any

	root *Node
}

func NewDocument() *Document {
	return &Document{root: &Node{}}
}

// Root returns the pseudo-root.
func (d *Document) Root() *Node { return d.root }

// RootNodes returns the root-level nodes in order.
func (d *Document) RootNodes() []*Node { return d.root.children }

// Lookup finds the node at prim path p. At each level authored children win,
// then the selected variant of each variant set is searched in set order.
func (d *Document) Lookup(p Path) *Node {
	if !p.IsAbsolute() {
		return nil
	}
	n := d.root
	for _, elt := range p.PrimPath().Elements() {
		n = childOrSelected(n, elt)
		if n == nil {
			return nil
		}
	}
	return n
}

func childOrSelected(n *Node, name string) *Node {
	if c := n.Child(name); c != nil {
		return c
	}
	for _, vs := range n.VariantSets {
		if v := vs.Selected(); v != nil {
			if c := childOrSelected(v.Scope, name); c != nil {
				return c
			}
		}
	}
	return nil
}

// lookupAuthored is Lookup without variant resolution. Namespace edits only
// apply to authored children.
func (d *Document) lookupAuthored(p Path) *Node {
	n := d.root
	for _, elt := range p.PrimPath().Elements() {
		n = n.Child(elt)
		if n == nil {
			return nil
		}
	}
	return n
}

// Exists reports whether p resolves to a node, or, for a property path, to a
// node with that attribute or relationship.
func (d *Document) Exists(p Path) bool {
	n := d.Lookup(p)
	if n == nil {
		return false
	}
	if prop := p.Property(); prop != "" {
		return n.Attr(prop) != nil || n.Rel(prop) != nil
	}
	return true
}

// Define returns the node at p, creating it and any missing ancestors as def
// nodes. A non-empty typeName is set on the node at p.
func (d *Document) Define(p Path, typeName string) (*Node, error) {
	if !p.IsAbsolute() || p.HasProperty() {
		return nil, fmt.Errorf("%w: %q", ErrBadPath, p)
	}
	n := d.root
	for _, elt := range p.Elements() {
		c := n.Child(elt)
		if c == nil {
			c = NewNode(elt, "")
			if err := n.AddChild(c); err != nil {
				return nil, err
			}
		}
		n = c
	}
	if typeName != "" {
		n.TypeName = typeName
	}
	return n, nil
}

// Remove deletes the subtree at p.
func (d *Document) Remove(p Path) error {
	if p.IsRoot() {
		return fmt.Errorf("%w: cannot remove the root", ErrBadPath)
	}
	n := d.lookupAuthored(p)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	n.detach()
	return nil
}

// DefaultNode returns the node named by DefaultPrim, or nil.
func (d *Document) DefaultNode() *Node {
	if d.DefaultPrim == "" {
		return nil
	}
	return d.root.Child(d.DefaultPrim)
}

// SetDefaultPrim designates the root-level node name as the default entry.
func (d *Document) SetDefaultPrim(name string) error {
	if d.root.Child(name) == nil {
		return fmt.Errorf("%w: root node %q", ErrNotFound, name)
	}
	d.DefaultPrim = name
	return nil
}

// Move is one relocation of a batch.
type Move struct {
	From Path
	To   Path
}

// Move relocates subtrees as a single edit. Moves are validated in order
// against the namespace as the earlier moves of the batch leave it; if any
// move is invalid, nothing is changed and a *MoveError is returned.
//
// Moved nodes keep their identity.
func (d *Document) Move(moves ...Move) error {
	live := map[Path]bool{}
	d.walkAuthored(d.root, func(n *Node) { live[n.Path()] = true })
	for i, m := range moves {
		if err := checkMove(live, m); err != nil {
			return &MoveError{Index: i, Move: m, Err: err}
		}
		for _, p := range slices.Collect(maps.Keys(live)) {
			if np, ok := p.ReplacePrefix(m.From, m.To); ok {
				delete(live, p)
				live[np] = true
			}
		}
	}
	for i, m := range moves {
		n := d.lookupAuthored(m.From)
		parent := d.lookupAuthored(m.To.Parent())
		if n == nil || parent == nil {
			return &MoveError{Index: i, Move: m, Err: errors.New("namespace changed during apply")}
		}
		n.detach()
		n.Name = m.To.Name()
		if err := parent.AddChild(n); err != nil {
			return &MoveError{Index: i, Move: m, Err: err}
		}
	}
	return nil
}

func checkMove(live map[Path]bool, m Move) error {
	switch {
	case m.From.IsRoot() || m.To.IsRoot():
		return fmt.Errorf("%w: the root cannot be moved", ErrBadPath)
	case m.From.HasProperty() || m.To.HasProperty():
		return fmt.Errorf("%w: property paths cannot be moved", ErrBadPath)
	case !ValidName(m.To.Name()):
		return fmt.Errorf("%w: %q", ErrBadName, m.To.Name())
	case !live[m.From]:
		return fmt.Errorf("%w: source %s", ErrNotFound, m.From)
	case live[m.To]:
		return fmt.Errorf("%w: destination %s", ErrExists, m.To)
	case m.To.HasPrefix(m.From):
		return fmt.Errorf("%w: %s is inside %s", ErrMoveConflict, m.To, m.From)
	case !m.To.Parent().IsRoot() && !live[m.To.Parent()]:
		return fmt.Errorf("%w: destination parent %s", ErrNotFound, m.To.Parent())
	}
	return nil
}

func (d *Document) walkAuthored(n *Node, f func(*Node)) {
	for _, c := range n.children {
		f(c)
		d.walkAuthored(c, f)
	}
}

// Copy deep-copies the subtree at src to dst, replacing anything already at
// dst. The parent of dst must exist. Copies are new nodes.
func (d *Document) Copy(src, dst Path) (*Node, error) {
	if src.IsRoot() || dst.IsRoot() {
		return nil, fmt.Errorf("%w: cannot copy the root", ErrBadPath)
	}
	if !ValidName(dst.Name()) {
		return nil, fmt.Errorf("%w: %q", ErrBadName, dst.Name())
	}
	n := d.Lookup(src)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, src)
	}
	parent := d.lookupAuthored(dst.Parent())
	if parent == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dst.Parent())
	}
	cp := n.Clone()
	cp.Name = dst.Name()
	parent.RemoveChild(cp.Name)
	if err := parent.AddChild(cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// Clone deep-copies the document.
func (d *Document) Clone() *Document {
	res := *d
	res.MetersPerUnit = clonePtr(d.MetersPerUnit)
	res.FramesPerSecond = clonePtr(d.FramesPerSecond)
	res.TimeCodesPerSecond = clonePtr(d.TimeCodesPerSecond)
	res.StartTimeCode = clonePtr(d.StartTimeCode)
	res.EndTimeCode = clonePtr(d.EndTimeCode)
	res.CustomLayerData = CloneMap(d.CustomLayerData)
	res.root = d.root.Clone()
	return &res
}
