package assemble

import (
	"github.com/cl0nazepamm/P-USDExporter/suffix"
)

// DefaultBucket names the purpose bucket of unsuffixed members, and the
// variant of an unsuffixed member of a variant set.
const DefaultBucket = "default"

// Group is the set of siblings sharing a base name.
type Group struct {
	Base    string
	Members []suffix.Parts
}

// HasPurposes reports whether any member carries a purpose marker.
func (g *Group) HasPurposes() bool {
	for _, m := range g.Members {
		if m.Purpose != suffix.NoPurpose {
			return true
		}
	}
	return false
}

// Tagged returns the members carrying a variant marker.
func (g *Group) Tagged() []suffix.Parts {
	return tagged(g.Members)
}

// Single reports whether g is one member without purpose or variant
// markers, which is referenced as is.
func (g *Group) Single() bool {
	return len(g.Members) == 1 && g.Members[0].Purpose == suffix.NoPurpose && !g.Members[0].HasVariant()
}

// Bucket is the members of a group sharing a purpose.
type Bucket struct {
	// Name is the purpose, or DefaultBucket.
	Name    string
	Members []suffix.Parts
}

// Purpose returns the purpose stamped on the bucket's node.
func (b *Bucket) Purpose() suffix.Purpose {
	p := suffix.Purpose(b.Name)
	if p.Valid() {
		return p
	}
	return suffix.NoPurpose
}

// NeedsVariants reports whether the bucket is assembled as a variant set:
// it holds several tagged members, or one tagged member next to others.
func (b *Bucket) NeedsVariants() bool {
	n := len(tagged(b.Members))
	return n > 1 || (n == 1 && len(b.Members) > 1)
}

// Groups groups names by base name, in order of first appearance.
func Groups(names []string) []*Group {
	var res []*Group
	index := map[string]*Group{}
	for _, name := range names {
		p := suffix.Parse(name)
		g := index[p.Base]
		if g == nil {
			g = &Group{Base: p.Base}
			index[p.Base] = g
			res = append(res, g)
		}
		g.Members = append(g.Members, p)
	}
	return res
}

// Buckets splits g by purpose, in order of first appearance. Unsuffixed
// members form the DefaultBucket, which folds into the render bucket when
// a proxy or guide member exists; a render member alone does not fold it.
func (g *Group) Buckets() []*Bucket {
	var res []*Bucket
	index := map[string]*Bucket{}
	for _, m := range g.Members {
		name := DefaultBucket
		if m.Purpose != suffix.NoPurpose {
			name = string(m.Purpose)
		}
		b := index[name]
		if b == nil {
			b = &Bucket{Name: name}
			index[name] = b
			res = append(res, b)
		}
		b.Members = append(b.Members, m)
	}
	def := index[DefaultBucket]
	if def == nil || (index[string(suffix.Proxy)] == nil && index[string(suffix.Guide)] == nil) {
		return res
	}
	render := index[string(suffix.Render)]
	if render == nil {
		def.Name = string(suffix.Render)
		return res
	}
	render.Members = append(render.Members, def.Members...)
	for i, b := range res {
		if b == def {
			return append(res[:i], res[i+1:]...)
		}
	}
	return res
}

// VariantName returns the name of the variant m is assembled into.
func VariantName(m suffix.Parts) string {
	if m.HasVariant() {
		return m.Variant
	}
	return DefaultBucket
}

// Selection returns the variant selected by default among members: the
// unsuffixed member if any, else the first tagged one.
func Selection(members []suffix.Parts) string {
	for _, m := range members {
		if !m.HasVariant() {
			return DefaultBucket
		}
	}
	if t := tagged(members); len(t) != 0 {
		return t[0].Variant
	}
	return ""
}

func tagged(ms []suffix.Parts) []suffix.Parts {
	var res []suffix.Parts
	for _, m := range ms {
		if m.HasVariant() {
			res = append(res, m)
		}
	}
	return res
}
