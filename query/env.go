package query

import (
	"strings"

	"github.com/cl0nazepamm/P-USDExporter/scene"
	"github.com/cl0nazepamm/P-USDExporter/suffix"
)

type Env struct {
	Path         string `expr:"path"`
	Name         string `expr:"name"`
	Type         string `expr:"type"`
	Specifier    string `expr:"specifier"`
	Kind         string `expr:"kind"`
	Purpose      string `expr:"purpose"`
	Instanceable bool   `expr:"instanceable"`
	Active       bool   `expr:"active"`
	InVariant    bool   `expr:"inVariant"`
	Depth        int    `expr:"depth"`
	Children     int    `expr:"children"`

	Attributes    []string       `expr:"attributes"`
	Relationships []string       `expr:"relationships"`
	References    []string       `expr:"references"`
	Payloads      []string       `expr:"payloads"`
	Inherits      []string       `expr:"inherits"`
	VariantSets   []string       `expr:"variantSets"`
	APISchemas    []string       `expr:"apiSchemas"`
	CustomData    map[string]any `expr:"customData"`
	AssetInfo     map[string]any `expr:"assetInfo"`

	Suffix Suffix `expr:"suffix"`

	node *scene.Node
}

// Suffix is the decoded name suffix of a node.
type Suffix struct {
	Base    string `expr:"base"`
	Purpose string `expr:"purpose"`
	Variant string `expr:"variant"`
	Payload bool   `expr:"payload"`
}

func NewEnv(n *scene.Node) *Env {
	p := n.Path()
	parts := suffix.Parse(n.Name)
	env := &Env{
		Path:         p.String(),
		Name:         n.Name,
		Type:         n.TypeName,
		Specifier:    n.Specifier.String(),
		Kind:         n.Kind,
		Purpose:      n.Purpose(),
		Instanceable: n.IsInstanceable(),
		Active:       n.Active == nil || *n.Active,
		InVariant:    n.InVariant(),
		Depth:        strings.Count(p.String(), "/"),
		Children:     len(n.Children()),
		APISchemas:   n.APISchemas,
		CustomData:   n.CustomData,
		AssetInfo:    n.AssetInfo,
		Suffix: Suffix{
			Base:    parts.Base,
			Purpose: string(parts.Purpose),
			Variant: parts.Variant,
			Payload: parts.Payload,
		},
		node: n,
	}
	for _, a := range n.Attributes {
		env.Attributes = append(env.Attributes, a.Name)
	}
	for _, r := range n.Relationships {
		env.Relationships = append(env.Relationships, r.Name)
	}
	for _, arc := range n.CompositionArcs() {
		switch arc.Kind {
		case scene.ArcReference:
			env.References = append(env.References, arc.AssetPath)
		case scene.ArcPayload:
			env.Payloads = append(env.Payloads, arc.AssetPath)
		case scene.ArcInherit:
			env.Inherits = append(env.Inherits, arc.PrimPath.String())
		}
	}
	for _, vs := range n.VariantSets {
		env.VariantSets = append(env.VariantSets, vs.Name)
	}
	return env
}

// Attr returns the default value of the named attribute, or nil.
func (e *Env) Attr(name string) any {
	a := e.node.Attr(name)
	if a == nil {
		return nil
	}
	return a.Value
}

// Selection returns the selected variant of the named set, or "".
func (e *Env) Selection(set string) string {
	vs := e.node.VariantSet(set)
	if vs == nil {
		return ""
	}
	return vs.Selection
}
