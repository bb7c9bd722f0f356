package docio

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// Tree is the YAML and JSON form of a document.
type Tree struct {
	DefaultPrim        string         `json:"defaultPrim,omitempty"`
	UpAxis             string         `json:"upAxis,omitempty"`
	MetersPerUnit      *float64       `json:"metersPerUnit,omitempty"`
	FramesPerSecond    *float64       `json:"framesPerSecond,omitempty"`
	TimeCodesPerSecond *float64       `json:"timeCodesPerSecond,omitempty"`
	StartTimeCode      *float64       `json:"startTimeCode,omitempty"`
	EndTimeCode        *float64       `json:"endTimeCode,omitempty"`
	Doc                string         `json:"doc,omitempty"`
	CustomLayerData    map[string]any `json:"customLayerData,omitempty"`
	Prims              []*Prim        `json:"prims,omitempty"`
}

type Prim struct {
	Name          string         `json:"name"`
	Specifier     string         `json:"specifier,omitempty"`
	Type          string         `json:"type,omitempty"`
	Kind          string         `json:"kind,omitempty"`
	Instanceable  *bool          `json:"instanceable,omitempty"`
	Active        *bool          `json:"active,omitempty"`
	AssetInfo     map[string]any `json:"assetInfo,omitempty"`
	CustomData    map[string]any `json:"customData,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	APISchemas    []string       `json:"apiSchemas,omitempty"`
	References    []ArcRef       `json:"references,omitempty"`
	Payloads      []ArcRef       `json:"payloads,omitempty"`
	Inherits      *PathListOp    `json:"inherits,omitempty"`
	Specializes   *PathListOp    `json:"specializes,omitempty"`
	Attributes    []*Attr        `json:"attributes,omitempty"`
	Relationships []*Rel         `json:"relationships,omitempty"`
	VariantSets   []*VariantSet  `json:"variantSets,omitempty"`
	Children      []*Prim        `json:"children,omitempty"`
}

type ArcRef struct {
	Asset string `json:"asset,omitempty"`
	Prim  string `json:"prim,omitempty"`
}

type PathListOp struct {
	Explicit  bool     `json:"explicit,omitempty"`
	Items     []string `json:"items,omitempty"`
	Added     []string `json:"added,omitempty"`
	Prepended []string `json:"prepended,omitempty"`
	Appended  []string `json:"appended,omitempty"`
	Deleted   []string `json:"deleted,omitempty"`
}

type Attr struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Uniform     bool           `json:"uniform,omitempty"`
	Custom      bool           `json:"custom,omitempty"`
	Value       any            `json:"value,omitempty"`
	Connections []string       `json:"connections,omitempty"`
	TimeSamples map[string]any `json:"timeSamples,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type Rel struct {
	Name    string   `json:"name"`
	Custom  bool     `json:"custom,omitempty"`
	Uniform bool     `json:"uniform,omitempty"`
	Targets []string `json:"targets,omitempty"`
}

type VariantSet struct {
	Name      string     `json:"name"`
	Selection string     `json:"selection,omitempty"`
	Variants  []*Variant `json:"variants,omitempty"`
}

// Variant holds the content of a variant edit scope. Its Prim has no name.
type Variant struct {
	Name string `json:"name"`
	Prim *Prim  `json:"prim,omitempty"`
}

// ToTree converts doc to its tree form.
func ToTree(doc *scene.Document) *Tree {
	t := &Tree{
		DefaultPrim:        doc.DefaultPrim,
		UpAxis:             doc.UpAxis,
		MetersPerUnit:      doc.MetersPerUnit,
		FramesPerSecond:    doc.FramesPerSecond,
		TimeCodesPerSecond: doc.TimeCodesPerSecond,
		StartTimeCode:      doc.StartTimeCode,
		EndTimeCode:        doc.EndTimeCode,
		Doc:                doc.Doc,
		CustomLayerData:    plainMap(doc.CustomLayerData),
	}
	for _, n := range doc.RootNodes() {
		t.Prims = append(t.Prims, toPrim(n))
	}
	return t
}

func toPrim(n *scene.Node) *Prim {
	p := &Prim{
		Name:         n.Name,
		Type:         n.TypeName,
		Kind:         n.Kind,
		Instanceable: n.Instanceable,
		Active:       n.Active,
		AssetInfo:    plainMap(n.AssetInfo),
		CustomData:   plainMap(n.CustomData),
		Metadata:     plainMap(n.Metadata),
		APISchemas:   n.APISchemas,
		Inherits:     toListOp(n.Inherits),
		Specializes:  toListOp(n.Specializes),
	}
	if n.Specifier != scene.SpecDef {
		p.Specifier = n.Specifier.String()
	}
	for _, a := range n.Arcs {
		ref := ArcRef{Asset: a.AssetPath, Prim: string(a.PrimPath)}
		if a.Kind == scene.ArcPayload {
			p.Payloads = append(p.Payloads, ref)
		} else {
			p.References = append(p.References, ref)
		}
	}
	for _, a := range n.Attributes {
		da := &Attr{
			Name:        a.Name,
			Type:        a.TypeName,
			Uniform:     a.Uniform,
			Custom:      a.Custom,
			Value:       plain(a.Value),
			Connections: pathStrings(a.Connections),
			Metadata:    plainMap(a.Metadata),
		}
		if a.TimeSamples != nil {
			da.TimeSamples = map[string]any{}
			for tc, v := range a.TimeSamples {
				da.TimeSamples[strconv.FormatFloat(tc, 'g', -1, 64)] = plain(v)
			}
		}
		p.Attributes = append(p.Attributes, da)
	}
	for _, r := range n.Relationships {
		p.Relationships = append(p.Relationships, &Rel{
			Name:    r.Name,
			Custom:  r.Custom,
			Uniform: r.Uniform,
			Targets: pathStrings(r.Targets),
		})
	}
	for _, vs := range n.VariantSets {
		dvs := &VariantSet{Name: vs.Name, Selection: vs.Selection}
		for _, v := range vs.Variants {
			scope := toPrim(v.Scope)
			scope.Name = ""
			scope.Specifier = ""
			dvs.Variants = append(dvs.Variants, &Variant{Name: v.Name, Prim: scope})
		}
		p.VariantSets = append(p.VariantSets, dvs)
	}
	for _, c := range n.Children() {
		p.Children = append(p.Children, toPrim(c))
	}
	return p
}

func toListOp(l *scene.ListOp) *PathListOp {
	if l == nil {
		return nil
	}
	return &PathListOp{
		Explicit:  l.Explicit,
		Items:     pathStrings(l.Items),
		Added:     pathStrings(l.Added),
		Prepended: pathStrings(l.Prepended),
		Appended:  pathStrings(l.Appended),
		Deleted:   pathStrings(l.Deleted),
	}
}

func pathStrings(ps []scene.Path) []string {
	if ps == nil {
		return nil
	}
	res := make([]string, len(ps))
	for i, p := range ps {
		res[i] = string(p)
	}
	return res
}

// plain converts scene values to generic values.
func plain(v any) any {
	switch x := v.(type) {
	case scene.Asset:
		return string(x)
	case scene.Path:
		return string(x)
	case scene.Arc:
		return "@" + x.AssetPath + "@" + string(x.PrimPath)
	case scene.Tuple:
		return plainSlice(x)
	case []any:
		return plainSlice(x)
	case map[string]any:
		return plainMap(x)
	}
	return v
}

func plainSlice(xs []any) []any {
	res := make([]any, len(xs))
	for i := range xs {
		res[i] = plain(xs[i])
	}
	return res
}

func plainMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	res := make(map[string]any, len(m))
	for k, v := range m {
		res[k] = plain(v)
	}
	return res
}

// FromTree builds a document from its tree form.
func FromTree(t *Tree) (*scene.Document, error) {
	doc := scene.NewDocument()
	doc.DefaultPrim = t.DefaultPrim
	doc.UpAxis = t.UpAxis
	doc.MetersPerUnit = t.MetersPerUnit
	doc.FramesPerSecond = t.FramesPerSecond
	doc.TimeCodesPerSecond = t.TimeCodesPerSecond
	doc.StartTimeCode = t.StartTimeCode
	doc.EndTimeCode = t.EndTimeCode
	doc.Doc = t.Doc
	var err error
	if doc.CustomLayerData, err = normMap(t.CustomLayerData); err != nil {
		return nil, fmt.Errorf("%w: customLayerData: %w", ErrBadDocument, err)
	}
	for _, p := range t.Prims {
		n, err := fromPrim(p, scene.RootPath)
		if err != nil {
			return nil, err
		}
		if err := doc.Root().AddChild(n); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadDocument, err)
		}
	}
	return doc, nil
}

func fromPrim(p *Prim, parent scene.Path) (*scene.Node, error) {
	at := parent.Child(p.Name)
	n := scene.NewNode(p.Name, p.Type)
	if err := fillNode(n, p, at); err != nil {
		return nil, err
	}
	for _, c := range p.Children {
		cn, err := fromPrim(c, at)
		if err != nil {
			return nil, err
		}
		if err := n.AddChild(cn); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadDocument, err)
		}
	}
	return n, nil
}

func fillNode(n *scene.Node, p *Prim, at scene.Path) error {
	bad := func(what string, err error) error {
		return fmt.Errorf("%w: %s %s: %w", ErrBadDocument, at, what, err)
	}
	if p.Specifier != "" {
		spec, err := scene.ParseSpecifier(p.Specifier)
		if err != nil {
			return bad("specifier", err)
		}
		n.Specifier = spec
	}
	n.Kind = p.Kind
	n.Instanceable = p.Instanceable
	n.Active = p.Active
	n.APISchemas = p.APISchemas
	var err error
	if n.AssetInfo, err = normMap(p.AssetInfo); err != nil {
		return bad("assetInfo", err)
	}
	if n.CustomData, err = normMap(p.CustomData); err != nil {
		return bad("customData", err)
	}
	if n.Metadata, err = normMap(p.Metadata); err != nil {
		return bad("metadata", err)
	}
	for _, r := range p.References {
		n.AddArc(scene.Arc{Kind: scene.ArcReference, AssetPath: r.Asset, PrimPath: scene.Path(r.Prim)})
	}
	for _, r := range p.Payloads {
		n.AddArc(scene.Arc{Kind: scene.ArcPayload, AssetPath: r.Asset, PrimPath: scene.Path(r.Prim)})
	}
	n.Inherits = fromListOp(p.Inherits)
	n.Specializes = fromListOp(p.Specializes)
	for _, a := range p.Attributes {
		sa := &scene.Attribute{
			Name:        a.Name,
			TypeName:    a.Type,
			Uniform:     a.Uniform,
			Custom:      a.Custom,
			Connections: toPaths(a.Connections),
		}
		v, err := scene.Normalize(a.Value)
		if err != nil {
			return bad("attribute "+a.Name, err)
		}
		sa.Value = scene.Coerce(a.Type, v)
		if sa.Metadata, err = normMap(a.Metadata); err != nil {
			return bad("attribute "+a.Name, err)
		}
		if a.TimeSamples != nil {
			sa.TimeSamples = map[float64]any{}
			for _, k := range slices.Sorted(maps.Keys(a.TimeSamples)) {
				tc, err := strconv.ParseFloat(k, 64)
				if err != nil {
					return bad("attribute "+a.Name+" time sample", err)
				}
				v, err := scene.Normalize(a.TimeSamples[k])
				if err != nil {
					return bad("attribute "+a.Name+" time sample", err)
				}
				sa.TimeSamples[tc] = scene.Coerce(a.Type, v)
			}
		}
		n.SetAttr(sa)
	}
	for _, r := range p.Relationships {
		n.SetRel(&scene.Relationship{Name: r.Name, Custom: r.Custom, Uniform: r.Uniform, Targets: toPaths(r.Targets)})
	}
	for _, vs := range p.VariantSets {
		svs := n.AddVariantSet(vs.Name)
		for _, v := range vs.Variants {
			sv := svs.AddVariant(v.Name)
			if v.Prim == nil {
				continue
			}
			if err := fillNode(sv.Scope, v.Prim, at); err != nil {
				return err
			}
			sv.Scope.Specifier = scene.SpecOver
			for _, c := range v.Prim.Children {
				cn, err := fromPrim(c, at)
				if err != nil {
					return err
				}
				if err := sv.Scope.AddChild(cn); err != nil {
					return fmt.Errorf("%w: %w", ErrBadDocument, err)
				}
			}
		}
		svs.Selection = vs.Selection
	}
	return nil
}

func fromListOp(l *PathListOp) *scene.ListOp {
	if l == nil {
		return nil
	}
	return &scene.ListOp{
		Explicit:  l.Explicit,
		Items:     toPaths(l.Items),
		Added:     toPaths(l.Added),
		Prepended: toPaths(l.Prepended),
		Appended:  toPaths(l.Appended),
		Deleted:   toPaths(l.Deleted),
	}
}

func toPaths(ss []string) []scene.Path {
	if ss == nil {
		return nil
	}
	res := make([]scene.Path, len(ss))
	for i, s := range ss {
		res[i] = scene.Path(s)
	}
	return res
}

func normMap(m map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}
	v, err := scene.Normalize(m)
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}
