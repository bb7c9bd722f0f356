package scene

import "errors"

// SkipChildren is returned by a WalkFunc to skip the children and variant
// scopes of the current node.
var SkipChildren = errors.New("skip children")

type WalkFunc func(n *Node) error

// Walk visits every node of d depth first in authored order, not including
// the pseudo-root. After a node's children, the scopes of every variant of
// every variant set are visited, then their contents.
func (d *Document) Walk(f WalkFunc) error {
	for _, c := range d.root.children {
		if err := walk(c, f); err != nil {
			return err
		}
	}
	return nil
}

// WalkNode is like Document.Walk but starts at n, which is visited.
func WalkNode(n *Node, f WalkFunc) error {
	return walk(n, f)
}

func walk(n *Node, f WalkFunc) error {
	if err := f(n); err != nil {
		if err == SkipChildren {
			return nil
		}
		return err
	}
	for _, c := range n.children {
		if err := walk(c, f); err != nil {
			return err
		}
	}
	for _, vs := range n.VariantSets {
		for _, v := range vs.Variants {
			if err := walk(v.Scope, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Nodes returns every node Walk would visit.
func (d *Document) Nodes() []*Node {
	var res []*Node
	_ = d.Walk(func(n *Node) error {
		res = append(res, n)
		return nil
	})
	return res
}
