package variants

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/cl0nazepamm/P-USDExporter/debug"
	"github.com/cl0nazepamm/P-USDExporter/diag"
	"github.com/cl0nazepamm/P-USDExporter/remap"
	"github.com/cl0nazepamm/P-USDExporter/scene"
	"github.com/cl0nazepamm/P-USDExporter/suffix"
)

// DefaultSetName is the name of the variant sets Restructure creates.
const DefaultSetName = "modelVariant"

// GroupSetSuffix names the set of a group whose parent's default set belongs
// to another group: the set is called base + GroupSetSuffix.
const GroupSetSuffix = "Variant"

// Member is a node carrying a variant marker.
type Member struct {
	Name string
	Tag  string
	node *scene.Node
}

// Group is the set of variant members sharing a parent and base name.
type Group struct {
	Parent  scene.Path
	Base    string
	Members []Member
	parent  *scene.Node
}

// Tags returns the member tags in discovery order.
func (g *Group) Tags() []string {
	res := make([]string, len(g.Members))
	for i, m := range g.Members {
		res[i] = m.Tag
	}
	return res
}

// Result is the outcome of restructuring one group.
type Result struct {
	Group *Group
	// Set is the name of the variant set the group was built into.
	Set      string
	Selected string
	// Remap counts the paths rewritten to follow members into their
	// variants.
	Remap remap.Stats
	// Err is a *diag.ValidationError when the group was malformed.
	Err error
}

// Restructurer builds variant sets from marked siblings.
type Restructurer struct {
	setName string
	logger  *slog.Logger
}

type Option func(*Restructurer)

// WithSetName sets the name of the created variant sets.
func WithSetName(name string) Option {
	return func(r *Restructurer) {
		if name != "" {
			r.setName = name
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Restructurer) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(opts ...Option) *Restructurer {
	r := &Restructurer{setName: DefaultSetName, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Groups finds the variant groups of doc in discovery order. Only names
// whose sole marker is a variant marker take part. Root level nodes,
// classes, inactive subtrees and variant content are not scanned.
func Groups(doc *scene.Document) []*Group {
	var res []*Group
	index := map[scene.Path]map[string]*Group{}
	_ = doc.Walk(func(n *scene.Node) error {
		if n.IsVariantScope() || n.Specifier == scene.SpecClass || (n.Active != nil && !*n.Active) {
			return scene.SkipChildren
		}
		parent := n.Parent()
		if parent == nil || parent == doc.Root() {
			return nil
		}
		parts := suffix.Parse(n.Name)
		if !parts.HasVariant() || parts.Purpose != suffix.NoPurpose || parts.Payload {
			return nil
		}
		pp := parent.Path()
		byBase := index[pp]
		if byBase == nil {
			byBase = map[string]*Group{}
			index[pp] = byBase
		}
		g := byBase[parts.Base]
		if g == nil {
			g = &Group{Parent: pp, Base: parts.Base, parent: parent}
			byBase[parts.Base] = g
			res = append(res, g)
		}
		g.Members = append(g.Members, Member{Name: n.Name, Tag: parts.Variant, node: n})
		return nil
	})
	return res
}

// Restructure converts every group of at least two members. Smaller groups
// are left alone and not reported. Inner groups are converted before the
// groups containing them so that their variant sets are copied along.
func (r *Restructurer) Restructure(doc *scene.Document) []*Result {
	groups := Groups(doc)
	sets := map[*Group]string{}
	owners := map[scene.Path]string{}
	for _, g := range groups {
		if len(g.Members) >= 2 {
			sets[g] = r.setFor(g, owners)
		}
	}
	var res []*Result
	for _, g := range slices.Backward(groups) {
		if len(g.Members) < 2 {
			if debug.Variants() {
				debug.Logf("variants: %s/%s has %d member(s), skipped\n", g.Parent, g.Base, len(g.Members))
			}
			continue
		}
		gr := r.restructure(doc, g, sets[g])
		if gr.Err != nil {
			r.logger.Warn("variant group skipped", "parent", g.Parent, "base", g.Base, "error", gr.Err)
		} else {
			r.logger.Info("variant set built", "parent", g.Parent, "base", g.Base, "set", gr.Set,
				"variants", len(g.Members), "selected", gr.Selected)
		}
		res = append(res, gr)
	}
	slices.Reverse(res)
	return res
}

// setFor returns the set g is built into. The first group under a parent,
// in discovery order, gets the configured set unless the parent already
// has that set holding another base. Every other group gets a set of its
// own. owners records which base claimed the configured set of a parent.
func (r *Restructurer) setFor(g *Group, owners map[scene.Path]string) string {
	own := g.Base + GroupSetSuffix
	if base, ok := owners[g.Parent]; ok && base != g.Base {
		return own
	}
	if vs := g.parent.VariantSet(r.setName); vs != nil && !holdsOnly(vs, g.Base) {
		return own
	}
	owners[g.Parent] = g.Base
	return r.setName
}

// holdsOnly reports whether every variant of vs holds nothing but base.
func holdsOnly(vs *scene.VariantSet, base string) bool {
	for _, v := range vs.Variants {
		for _, c := range v.Scope.Children() {
			if c.Name != base {
				return false
			}
		}
	}
	return true
}

func (r *Restructurer) restructure(doc *scene.Document, g *Group, set string) *Result {
	res := &Result{Group: g, Set: set}
	if err := r.check(g, set); err != nil {
		res.Err = err
		return res
	}
	vs := g.parent.AddVariantSet(set)
	for _, m := range g.Members {
		old := m.node.Path()
		cp := m.node.Clone()
		cp.Name = g.Base
		v := vs.AddVariant(m.Tag)
		if err := v.Scope.AddChild(cp); err != nil {
			res.Err = err
			return res
		}
		g.parent.RemoveChild(m.Name)
		rule := &remap.Rule{StripPrefix: old, Replacement: g.Parent.Child(g.Base)}
		res.Remap.Add(rule.Apply(doc))
		if debug.Variants() {
			debug.Logf("variants: {%s=%s} <- %s\n", set, m.Tag, old)
		}
	}
	res.Selected = g.Members[0].Tag
	vs.Selection = res.Selected
	return res
}

func (r *Restructurer) check(g *Group, set string) error {
	where := string(g.Parent.Child(g.Base))
	if !scene.ValidName(g.Base) {
		return diag.Invalid(where, diag.ErrMalformed, "bad base name %q", g.Base)
	}
	seen := map[string]string{}
	vs := g.parent.VariantSet(set)
	if vs != nil && !holdsOnly(vs, g.Base) {
		return diag.Invalid(where, diag.ErrMalformed, "variant set %s of %s holds other nodes", set, g.Parent)
	}
	for _, m := range g.Members {
		if prev, ok := seen[m.Tag]; ok {
			return diag.Invalid(where, diag.ErrMalformed, "%s and %s both have variant tag %q", prev, m.Name, m.Tag)
		}
		seen[m.Tag] = m.Name
		if vs == nil {
			continue
		}
		if v := vs.Variant(m.Tag); v != nil && v.Scope.Child(g.Base) != nil {
			return diag.Invalid(where, diag.ErrMalformed, "variant %q of %s already holds %s", m.Tag, set, g.Base)
		}
	}
	if c := g.parent.Child(g.Base); c != nil {
		return diag.Invalid(where, diag.ErrMalformed, "%s already exists beside its variants", g.Base)
	}
	return nil
}

// String describes g.
func (g *Group) String() string {
	return fmt.Sprintf("%s/%s%v", g.Parent, g.Base, g.Tags())
}
