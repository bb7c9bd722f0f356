package remap

import (
	"slices"

	"github.com/cl0nazepamm/P-USDExporter/debug"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// DefaultJointAttributes are the attribute names holding joint tokens.
var DefaultJointAttributes = []string{"skel:joints", "joints"}

// Stats counts what Apply rewrote.
type Stats struct {
	Relationships int `json:"relationships"`
	Connections   int `json:"connections"`
	// ListOps counts nodes whose inherits or specializes changed.
	ListOps     int `json:"listOps"`
	Arcs        int `json:"arcs"`
	JointAttrs  int `json:"jointAttrs"`
	JointTokens int `json:"jointTokens"`
	// Paths counts every rewritten path entry.
	Paths int `json:"paths"`
}

// Total returns the number of rewritten properties and nodes.
func (s Stats) Total() int {
	return s.Relationships + s.Connections + s.ListOps + s.Arcs + s.JointAttrs
}

// Add adds the counts of o to s.
func (s *Stats) Add(o Stats) {
	s.Relationships += o.Relationships
	s.Connections += o.Connections
	s.ListOps += o.ListOps
	s.Arcs += o.Arcs
	s.JointAttrs += o.JointAttrs
	s.JointTokens += o.JointTokens
	s.Paths += o.Paths
}

// ApplyOption configures Apply.
type ApplyOption func(*applyOpts)

type applyOpts struct {
	jointAttrs []string
}

// JointAttributes sets the names of the token arrays rewritten as joint
// names. The default is DefaultJointAttributes.
func JointAttributes(names ...string) ApplyOption {
	return func(o *applyOpts) { o.jointAttrs = names }
}

// Apply rewrites every path in doc affected by r, on every node including
// classes and variant scopes.
func (r *Rule) Apply(doc *scene.Document, opts ...ApplyOption) Stats {
	o := &applyOpts{jointAttrs: DefaultJointAttributes}
	for _, opt := range opts {
		opt(o)
	}
	exists := func(p scene.Path) bool { return doc.Lookup(p) != nil }
	res := Stats{}
	_ = doc.Walk(func(n *scene.Node) error {
		res.Add(r.applyNode(n, o, exists))
		return nil
	})
	if debug.Remap() {
		debug.Logf("remap %s -> %s nest=%q: %+v\n", r.StripPrefix, r.replacement(), r.NestTarget, res)
	}
	return res
}

func (r *Rule) applyNode(n *scene.Node, o *applyOpts, exists func(scene.Path) bool) Stats {
	res := Stats{}
	for _, rel := range n.Relationships {
		if ts, k := r.remapList(rel.Targets); k != 0 {
			rel.Targets = ts
			res.Relationships++
			res.Paths += k
		}
	}
	for _, a := range n.Attributes {
		if cs, k := r.remapList(a.Connections); k != 0 {
			a.Connections = cs
			res.Connections++
			res.Paths += k
		}
	}
	changed := false
	for _, l := range []*scene.ListOp{n.Inherits, n.Specializes} {
		if l == nil {
			continue
		}
		for _, f := range l.Fields() {
			if ps, k := r.remapList(*f); k != 0 {
				*f = ps
				changed = true
				res.Paths += k
			}
		}
	}
	if changed {
		res.ListOps++
	}
	for i, arc := range n.Arcs {
		if arc.AssetPath != "" || arc.PrimPath == "" {
			continue
		}
		if p, ok := r.Remap(arc.PrimPath); ok && p != arc.PrimPath {
			n.Arcs[i].PrimPath = p
			res.Arcs++
			res.Paths++
		}
	}
	for _, a := range n.Attributes {
		if a.TypeName != "token[]" || !slices.Contains(o.jointAttrs, a.Name) {
			continue
		}
		toks, ok := scene.Strings(a.Value)
		if !ok || len(toks) == 0 {
			continue
		}
		k := 0
		for i, tok := range toks {
			if nt := r.RemapToken(tok, exists); nt != tok {
				toks[i] = nt
				k++
			}
		}
		if k != 0 {
			a.Value = scene.FromStrings(toks)
			res.JointAttrs++
			res.JointTokens += k
		}
	}
	return res
}

// LiveTargets counts the relationship targets and attribute connections in
// doc whose prim exists.
func LiveTargets(doc *scene.Document) int {
	res := 0
	_ = doc.Walk(func(n *scene.Node) error {
		count := func(ps []scene.Path) {
			for _, p := range ps {
				if doc.Lookup(p.PrimPath()) != nil {
					res++
				}
			}
		}
		for _, rel := range n.Relationships {
			count(rel.Targets)
		}
		for _, a := range n.Attributes {
			count(a.Connections)
		}
		return nil
	})
	return res
}
