package scene

import (
	"fmt"
	"slices"
)

type Specifier int

const (
	SpecDef Specifier = iota
	SpecOver
	SpecClass
)

func (s Specifier) String() string {
	switch s {
	case SpecDef:
		return "def"
	case SpecOver:
		return "over"
	case SpecClass:
		return "class"
	default:
		return fmt.Sprintf("Specifier(%d)", int(s))
	}
}

func ParseSpecifier(s string) (Specifier, error) {
	switch s {
	case "def":
		return SpecDef, nil
	case "over":
		return SpecOver, nil
	case "class":
		return SpecClass, nil
	}
	return 0, fmt.Errorf("unknown specifier %q", s)
}

type ArcKind int

const (
	ArcReference ArcKind = iota
	ArcPayload
	ArcInherit
	ArcSpecialize
)

func (k ArcKind) String() string {
	switch k {
	case ArcReference:
		return "reference"
	case ArcPayload:
		return "payload"
	case ArcInherit:
		return "inherit"
	case ArcSpecialize:
		return "specialize"
	default:
		return fmt.Sprintf("ArcKind(%d)", int(k))
	}
}

// Arc is a composition arc. References and payloads name an asset and an
// optional prim inside it; inherits and specializes only name a prim of the
// same document.
type Arc struct {
	Kind      ArcKind
	AssetPath string
	PrimPath  Path
}

type Attribute struct {
	Name        string
	TypeName    string
	Uniform     bool
	Custom      bool
	Value       any
	Connections []Path
	TimeSamples map[float64]any
	Metadata    map[string]any
}

func (a *Attribute) Clone() *Attribute {
	res := *a
	res.Value = CloneValue(a.Value)
	res.Connections = slices.Clone(a.Connections)
	if a.TimeSamples != nil {
		res.TimeSamples = make(map[float64]any, len(a.TimeSamples))
		for t, v := range a.TimeSamples {
			res.TimeSamples[t] = CloneValue(v)
		}
	}
	res.Metadata = CloneMap(a.Metadata)
	return &res
}

type Relationship struct {
	Name    string
	Custom  bool
	Uniform bool
	Targets []Path
}

func (r *Relationship) Clone() *Relationship {
	res := *r
	res.Targets = slices.Clone(r.Targets)
	return &res
}

type Node struct {
	Name         string
	Specifier    Specifier
	TypeName     string
	Kind         string
	Instanceable *bool
	Active       *bool
	AssetInfo    map[string]any
	CustomData   map[string]any
	// Metadata holds prim metadata without a dedicated field.
	Metadata   map[string]any
	APISchemas []string

	Arcs        []Arc
	Inherits    *ListOp
	Specializes *ListOp

	Attributes    []*Attribute
	Relationships []*Relationship
	VariantSets   []*VariantSet

	parent   *Node
	children []*Node
	// owner is set on variant edit scopes.
	owner *Node
}

// NewNode returns a detached def node.
func NewNode(name, typeName string) *Node {
	return &Node{Name: name, TypeName: typeName}
}

// Path returns the namespace path of n. A variant scope has the path of the
// node owning its variant set.
func (n *Node) Path() Path {
	if n.owner != nil {
		return n.owner.Path()
	}
	if n.parent == nil {
		if n.Name == "" {
			return RootPath
		}
		return RootPath.Child(n.Name)
	}
	return n.parent.Path().Child(n.Name)
}

// Parent returns the namespace parent. For children of a variant scope it is
// the scope's owner.
func (n *Node) Parent() *Node {
	if n.parent != nil && n.parent.owner != nil {
		return n.parent.owner
	}
	return n.parent
}

// IsVariantScope reports whether n is the edit scope of a variant.
func (n *Node) IsVariantScope() bool { return n.owner != nil }

// Owner returns the node owning the variant set of a scope.
func (n *Node) Owner() *Node { return n.owner }

// InVariant reports whether n is authored inside some variant edit scope.
func (n *Node) InVariant() bool {
	for p := n; p != nil; p = p.parent {
		if p.owner != nil {
			return true
		}
	}
	return false
}

// Children returns the authored children in order. The slice must not be
// modified.
func (n *Node) Children() []*Node { return n.children }

func (n *Node) HasChildren() bool { return len(n.children) != 0 }

func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AddChild appends the detached node c.
func (n *Node) AddChild(c *Node) error {
	if !ValidName(c.Name) {
		return fmt.Errorf("%w: %q", ErrBadName, c.Name)
	}
	if c.parent != nil || c.owner != nil {
		return fmt.Errorf("node %q is attached", c.Name)
	}
	if n.Child(c.Name) != nil {
		return fmt.Errorf("%w: %s", ErrExists, n.Path().Child(c.Name))
	}
	c.parent = n
	n.children = append(n.children, c)
	return nil
}

// RemoveChild detaches the child called name and returns it, or nil.
func (n *Node) RemoveChild(name string) *Node {
	i := slices.IndexFunc(n.children, func(c *Node) bool { return c.Name == name })
	if i < 0 {
		return nil
	}
	c := n.children[i]
	n.children = slices.Delete(n.children, i, i+1)
	c.parent = nil
	return c
}

func (n *Node) detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n.Name)
	}
}

func (n *Node) Attr(name string) *Attribute {
	for _, a := range n.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// SetAttr adds a or replaces the attribute with the same name.
func (n *Node) SetAttr(a *Attribute) {
	for i := range n.Attributes {
		if n.Attributes[i].Name == a.Name {
			n.Attributes[i] = a
			return
		}
	}
	n.Attributes = append(n.Attributes, a)
}

func (n *Node) Rel(name string) *Relationship {
	for _, r := range n.Relationships {
		if r.Name == name {
			return r
		}
	}
	return nil
}

func (n *Node) SetRel(r *Relationship) {
	for i := range n.Relationships {
		if n.Relationships[i].Name == r.Name {
			n.Relationships[i] = r
			return
		}
	}
	n.Relationships = append(n.Relationships, r)
}

// Purpose returns the value of the purpose attribute, or "".
func (n *Node) Purpose() string {
	a := n.Attr("purpose")
	if a == nil {
		return ""
	}
	s, _ := a.Value.(string)
	return s
}

func (n *Node) SetPurpose(purpose string) {
	n.SetAttr(&Attribute{Name: "purpose", TypeName: "token", Uniform: true, Value: purpose})
}

func (n *Node) IsInstanceable() bool { return n.Instanceable != nil && *n.Instanceable }

func (n *Node) SetInstanceable(v bool) { n.Instanceable = &v }

func (n *Node) SetActive(v bool) { n.Active = &v }

// SetCustomData sets a custom data key, allocating the map on first use.
func (n *Node) SetCustomData(key string, v any) {
	if n.CustomData == nil {
		n.CustomData = map[string]any{}
	}
	n.CustomData[key] = v
}

func (n *Node) SetAssetInfo(key string, v any) {
	if n.AssetInfo == nil {
		n.AssetInfo = map[string]any{}
	}
	n.AssetInfo[key] = v
}

// AddArc appends a reference or payload arc.
func (n *Node) AddArc(a Arc) {
	n.Arcs = append(n.Arcs, a)
}

// CompositionArcs lists every arc of n: references and payloads in authored
// order followed by the effective inherits and specializes.
func (n *Node) CompositionArcs() []Arc {
	res := slices.Clone(n.Arcs)
	for _, p := range n.Inherits.Effective() {
		res = append(res, Arc{Kind: ArcInherit, PrimPath: p})
	}
	for _, p := range n.Specializes.Effective() {
		res = append(res, Arc{Kind: ArcSpecialize, PrimPath: p})
	}
	return res
}

func (n *Node) VariantSet(name string) *VariantSet {
	for _, vs := range n.VariantSets {
		if vs.Name == name {
			return vs
		}
	}
	return nil
}

// AddVariantSet returns the variant set called name, creating it if needed.
func (n *Node) AddVariantSet(name string) *VariantSet {
	if vs := n.VariantSet(name); vs != nil {
		return vs
	}
	vs := &VariantSet{Name: name, owner: n}
	n.VariantSets = append(n.VariantSets, vs)
	return vs
}

// Clone deep-copies n and its subtree, variant scopes included. The result is
// detached.
func (n *Node) Clone() *Node {
	res := &Node{}
	n.CloneTo(res)
	return res
}

// CloneTo copies n into dst, keeping dst's place in the namespace.
func (n *Node) CloneTo(dst *Node) *Node {
	dst.Name = n.Name
	dst.Specifier = n.Specifier
	dst.TypeName = n.TypeName
	dst.Kind = n.Kind
	dst.Instanceable = clonePtr(n.Instanceable)
	dst.Active = clonePtr(n.Active)
	dst.AssetInfo = CloneMap(n.AssetInfo)
	dst.CustomData = CloneMap(n.CustomData)
	dst.Metadata = CloneMap(n.Metadata)
	dst.APISchemas = slices.Clone(n.APISchemas)
	dst.Arcs = slices.Clone(n.Arcs)
	dst.Inherits = n.Inherits.Clone()
	dst.Specializes = n.Specializes.Clone()
	dst.Attributes = nil
	for _, a := range n.Attributes {
		dst.Attributes = append(dst.Attributes, a.Clone())
	}
	dst.Relationships = nil
	for _, r := range n.Relationships {
		dst.Relationships = append(dst.Relationships, r.Clone())
	}
	dst.VariantSets = nil
	for _, vs := range n.VariantSets {
		dvs := dst.AddVariantSet(vs.Name)
		dvs.Selection = vs.Selection
		for _, v := range vs.Variants {
			v.Scope.CloneTo(dvs.AddVariant(v.Name).Scope)
		}
	}
	for _, c := range dst.children {
		c.parent = nil
	}
	dst.children = nil
	for _, c := range n.children {
		cc := c.Clone()
		cc.parent = dst
		dst.children = append(dst.children, cc)
	}
	return dst
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// VariantSet is a named set of alternatives on a node.
type VariantSet struct {
	Name      string
	Selection string
	Variants  []*Variant

	owner *Node
}

// Variant is one alternative. Its Scope holds the content that composes onto
// the owning node when the variant is selected.
type Variant struct {
	Name  string
	Scope *Node
}

// Owner returns the node the set is authored on.
func (vs *VariantSet) Owner() *Node { return vs.owner }

func (vs *VariantSet) Variant(name string) *Variant {
	for _, v := range vs.Variants {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// AddVariant returns the variant called name, creating it with an empty
// scope if needed.
func (vs *VariantSet) AddVariant(name string) *Variant {
	if v := vs.Variant(name); v != nil {
		return v
	}
	v := &Variant{Name: name, Scope: &Node{Name: name, Specifier: SpecOver, owner: vs.owner}}
	vs.Variants = append(vs.Variants, v)
	return v
}

// Select sets the selection. It fails if no variant is called name.
func (vs *VariantSet) Select(name string) error {
	if vs.Variant(name) == nil {
		return fmt.Errorf("%w: variant %q in set %q", ErrNotFound, name, vs.Name)
	}
	vs.Selection = name
	return nil
}

// Selected returns the selected variant, or nil.
func (vs *VariantSet) Selected() *Variant {
	if vs.Selection == "" {
		return nil
	}
	return vs.Variant(vs.Selection)
}
