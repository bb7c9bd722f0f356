package usda

import (
	"bytes"
	"io"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/cl0nazepamm/P-USDExporter/scene"
)

type encState struct {
	buf    *bytes.Buffer
	colors *Colors
	indent int
	depth  int
}

// Encode writes doc as a text layer.
func Encode(doc *scene.Document, w io.Writer, opts ...EncodeOption) error {
	es := &encState{buf: &bytes.Buffer{}, indent: 4}
	for _, opt := range opts {
		opt(es)
	}
	es.layer(doc)
	_, err := w.Write(es.buf.Bytes())
	return err
}

// Marshal returns the text layer for doc.
func Marshal(doc *scene.Document, opts ...EncodeOption) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := Encode(doc, buf, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (es *encState) c(a ColorAttr, s string) string {
	if es.colors == nil {
		return s
	}
	return es.colors.Color(a, s)
}

func (es *encState) raw(s string) { es.buf.WriteString(s) }

func (es *encState) ind() {
	es.buf.WriteString(strings.Repeat(" ", es.depth*es.indent))
}

func (es *encState) nl() { es.buf.WriteByte('\n') }

// sub returns a state writing to its own buffer one level deeper.
func (es *encState) sub() *encState {
	return &encState{buf: &bytes.Buffer{}, colors: es.colors, indent: es.indent, depth: es.depth + 1}
}

// block writes " (\n<meta>)" when the metadata written by f is not empty.
func (es *encState) block(f func(*encState)) {
	meta := es.sub()
	f(meta)
	if meta.buf.Len() == 0 {
		return
	}
	es.raw(" " + es.c(SepColor, "("))
	es.nl()
	es.buf.Write(meta.buf.Bytes())
	es.ind()
	es.raw(es.c(SepColor, ")"))
}

func (es *encState) layer(doc *scene.Document) {
	es.raw(es.c(CommentColor, "#usda 1.0"))
	es.nl()
	m := es.sub()
	if doc.Doc != "" {
		m.ind()
		m.raw(m.c(StringColor, quote(doc.Doc)))
		m.nl()
	}
	if doc.CustomLayerData != nil {
		m.entry("customLayerData", func() { m.dict(doc.CustomLayerData) })
	}
	if doc.DefaultPrim != "" {
		m.entryValue("defaultPrim", doc.DefaultPrim)
	}
	m.floatEntry("endTimeCode", doc.EndTimeCode)
	m.floatEntry("framesPerSecond", doc.FramesPerSecond)
	m.floatEntry("metersPerUnit", doc.MetersPerUnit)
	m.floatEntry("startTimeCode", doc.StartTimeCode)
	m.floatEntry("timeCodesPerSecond", doc.TimeCodesPerSecond)
	if doc.UpAxis != "" {
		m.entryValue("upAxis", doc.UpAxis)
	}
	if m.buf.Len() != 0 {
		es.raw(es.c(SepColor, "("))
		es.nl()
		es.buf.Write(m.buf.Bytes())
		es.raw(es.c(SepColor, ")"))
		es.nl()
	}
	for _, n := range doc.RootNodes() {
		es.nl()
		es.prim(n)
	}
}

func (es *encState) floatEntry(key string, f *float64) {
	if f != nil {
		es.entryValue(key, *f)
	}
}

// entry writes "key = " then calls f for the value.
func (es *encState) entry(key string, f func()) {
	es.opEntry("", key, f)
}

func (es *encState) opEntry(op, key string, f func()) {
	es.ind()
	if op != "" {
		es.raw(es.c(KeywordColor, op) + " ")
	}
	es.raw(es.c(MetadataColor, key) + " " + es.c(SepColor, "=") + " ")
	f()
	es.nl()
}

func (es *encState) entryValue(key string, v any) {
	es.entry(key, func() { es.value(v) })
}

func (es *encState) prim(n *scene.Node) {
	es.ind()
	es.raw(es.c(KeywordColor, n.Specifier.String()) + " ")
	if n.TypeName != "" {
		es.raw(es.c(TypeColor, n.TypeName) + " ")
	}
	es.raw(es.c(NameColor, quote(n.Name)))
	es.block(func(m *encState) { m.primMetadata(n) })
	es.nl()
	es.ind()
	es.raw("{")
	es.nl()
	es.depth++
	es.primBody(n)
	es.depth--
	es.ind()
	es.raw("}")
	es.nl()
}

func (es *encState) primBody(n *scene.Node) {
	wrote := false
	for _, a := range n.Attributes {
		es.attribute(a)
		wrote = true
	}
	for _, r := range n.Relationships {
		es.relationship(r)
		wrote = true
	}
	for _, c := range n.Children() {
		if wrote {
			es.nl()
		}
		es.prim(c)
		wrote = true
	}
	for _, vs := range n.VariantSets {
		if wrote {
			es.nl()
		}
		es.variantSet(vs)
		wrote = true
	}
}

func (es *encState) variantSet(vs *scene.VariantSet) {
	es.ind()
	es.raw(es.c(KeywordColor, "variantSet") + " " + es.c(NameColor, quote(vs.Name)) + " " + es.c(SepColor, "=") + " {")
	es.nl()
	es.depth++
	for _, v := range vs.Variants {
		es.ind()
		es.raw(es.c(NameColor, quote(v.Name)))
		es.block(func(m *encState) { m.primMetadata(v.Scope) })
		es.raw(" {")
		es.nl()
		es.depth++
		es.primBody(v.Scope)
		es.depth--
		es.ind()
		es.raw("}")
		es.nl()
	}
	es.depth--
	es.ind()
	es.raw("}")
	es.nl()
}

func (es *encState) primMetadata(n *scene.Node) {
	if n.Active != nil {
		es.entryValue("active", *n.Active)
	}
	if len(n.APISchemas) != 0 {
		es.opEntry("prepend", "apiSchemas", func() { es.value(scene.FromStrings(n.APISchemas)) })
	}
	if n.AssetInfo != nil {
		es.entry("assetInfo", func() { es.dict(n.AssetInfo) })
	}
	if n.CustomData != nil {
		es.entry("customData", func() { es.dict(n.CustomData) })
	}
	for _, k := range slices.Sorted(maps.Keys(n.Metadata)) {
		es.entryValue(k, n.Metadata[k])
	}
	es.listOp("inherits", n.Inherits)
	if n.Instanceable != nil {
		es.entryValue("instanceable", *n.Instanceable)
	}
	if n.Kind != "" {
		es.entryValue("kind", n.Kind)
	}
	es.arcs("payload", scene.ArcPayload, n.Arcs)
	es.arcs("references", scene.ArcReference, n.Arcs)
	es.listOp("specializes", n.Specializes)
	sel := map[string]any{}
	var names []any
	for _, vs := range n.VariantSets {
		names = append(names, vs.Name)
		if vs.Selection != "" {
			sel[vs.Name] = vs.Selection
		}
	}
	if len(sel) != 0 {
		es.entry("variants", func() { es.dict(sel) })
	}
	if len(names) != 0 {
		es.opEntry("prepend", "variantSets", func() { es.list(names) })
	}
}

func (es *encState) arcs(key string, kind scene.ArcKind, arcs []scene.Arc) {
	var vs []any
	for _, a := range arcs {
		if a.Kind != kind {
			continue
		}
		switch {
		case a.AssetPath == "":
			vs = append(vs, a.PrimPath)
		case a.PrimPath == "":
			vs = append(vs, scene.Asset(a.AssetPath))
		default:
			vs = append(vs, a)
		}
	}
	switch len(vs) {
	case 0:
	case 1:
		es.opEntry("prepend", key, func() { es.value(vs[0]) })
	default:
		es.opEntry("prepend", key, func() { es.list(vs) })
	}
}

func (es *encState) listOp(key string, l *scene.ListOp) {
	if l == nil {
		return
	}
	if l.Explicit {
		es.entry(key, func() { es.paths(l.Items, true) })
	}
	for _, f := range []struct {
		op string
		ps []scene.Path
	}{
		{"add", l.Added},
		{"prepend", l.Prepended},
		{"append", l.Appended},
		{"delete", l.Deleted},
	} {
		if len(f.ps) != 0 {
			es.opEntry(f.op, key, func() { es.paths(f.ps, false) })
		}
	}
}

// paths writes a single path bare and several as a list. none selects None
// for an empty list.
func (es *encState) paths(ps []scene.Path, none bool) {
	switch {
	case len(ps) == 0 && none:
		es.raw(es.c(KeywordColor, "None"))
	case len(ps) == 1:
		es.value(ps[0])
	default:
		vs := make([]any, len(ps))
		for i, p := range ps {
			vs[i] = p
		}
		es.list(vs)
	}
}

func (es *encState) qualifiers(custom, uniform bool) {
	if custom {
		es.raw(es.c(KeywordColor, "custom") + " ")
	}
	if uniform {
		es.raw(es.c(KeywordColor, "uniform") + " ")
	}
}

func (es *encState) attribute(a *scene.Attribute) {
	decl := a.Value != nil || a.Metadata != nil || (len(a.Connections) == 0 && a.TimeSamples == nil)
	if decl {
		es.ind()
		es.qualifiers(a.Custom, a.Uniform)
		es.raw(es.c(TypeColor, a.TypeName) + " " + es.c(PropertyColor, a.Name))
		if a.Value != nil {
			es.raw(" " + es.c(SepColor, "=") + " ")
			es.typedValue(a.TypeName, a.Value)
		}
		if a.Metadata != nil {
			es.block(func(m *encState) {
				for _, k := range slices.Sorted(maps.Keys(a.Metadata)) {
					m.entryValue(k, a.Metadata[k])
				}
			})
		}
		es.nl()
	}
	if len(a.Connections) != 0 {
		es.ind()
		es.qualifiers(a.Custom, a.Uniform)
		es.raw(es.c(TypeColor, a.TypeName) + " " + es.c(PropertyColor, a.Name+".connect") + " " + es.c(SepColor, "=") + " ")
		es.paths(a.Connections, false)
		es.nl()
	}
	if a.TimeSamples != nil {
		es.ind()
		es.qualifiers(a.Custom, a.Uniform)
		es.raw(es.c(TypeColor, a.TypeName) + " " + es.c(PropertyColor, a.Name+".timeSamples") + " " + es.c(SepColor, "=") + " {")
		es.nl()
		es.depth++
		for _, t := range slices.Sorted(maps.Keys(a.TimeSamples)) {
			es.ind()
			es.raw(es.c(NumberColor, formatFloat(t)) + es.c(SepColor, ":") + " ")
			es.typedValue(a.TypeName, a.TimeSamples[t])
			es.raw(es.c(SepColor, ","))
			es.nl()
		}
		es.depth--
		es.ind()
		es.raw("}")
		es.nl()
	}
}

func (es *encState) relationship(r *scene.Relationship) {
	es.ind()
	es.qualifiers(r.Custom, r.Uniform)
	es.raw(es.c(KeywordColor, "rel") + " " + es.c(PropertyColor, r.Name))
	if len(r.Targets) != 0 {
		es.raw(" " + es.c(SepColor, "=") + " ")
		es.paths(r.Targets, false)
	}
	es.nl()
}

func (es *encState) typedValue(typ string, v any) {
	if strings.TrimSuffix(typ, "[]") == "bool" {
		v = boolsToInts(v)
	}
	es.value(v)
}

func boolsToInts(v any) any {
	switch x := v.(type) {
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case []any:
		res := make([]any, len(x))
		for i := range x {
			res[i] = boolsToInts(x[i])
		}
		return res
	}
	return v
}

func (es *encState) value(v any) {
	switch x := v.(type) {
	case nil:
		es.raw(es.c(KeywordColor, "None"))
	case bool:
		es.raw(es.c(KeywordColor, strconv.FormatBool(x)))
	case int64:
		es.raw(es.c(NumberColor, strconv.FormatInt(x, 10)))
	case float64:
		es.raw(es.c(NumberColor, formatFloat(x)))
	case string:
		es.raw(es.c(StringColor, quote(x)))
	case scene.Asset:
		es.raw(es.c(AssetColor, "@"+string(x)+"@"))
	case scene.Path:
		es.raw(es.c(PathColor, "<"+string(x)+">"))
	case scene.Arc:
		if x.AssetPath != "" {
			es.raw(es.c(AssetColor, "@"+x.AssetPath+"@"))
		}
		if x.PrimPath != "" {
			es.raw(es.c(PathColor, "<"+string(x.PrimPath)+">"))
		}
	case scene.Tuple:
		es.raw("(")
		for i, e := range x {
			if i > 0 {
				es.raw(", ")
			}
			es.value(e)
		}
		es.raw(")")
	case []any:
		es.list(x)
	case map[string]any:
		es.dict(x)
	default:
		n, _ := scene.Normalize(v)
		if n == nil {
			es.raw(es.c(KeywordColor, "None"))
			return
		}
		es.value(n)
	}
}

func (es *encState) list(vs []any) {
	es.raw("[")
	for i, e := range vs {
		if i > 0 {
			es.raw(", ")
		}
		es.value(e)
	}
	es.raw("]")
}

func (es *encState) dict(m map[string]any) {
	es.raw("{")
	es.nl()
	es.depth++
	for _, k := range slices.Sorted(maps.Keys(m)) {
		v := m[k]
		typ := typeOf(v)
		es.ind()
		name := k
		if !scene.ValidName(k) {
			name = quote(k)
		}
		es.raw(es.c(TypeColor, typ) + " " + es.c(MetadataColor, name) + " " + es.c(SepColor, "=") + " ")
		es.typedValue(typ, v)
		es.nl()
	}
	es.depth--
	es.ind()
	es.raw("}")
}

// typeOf names the value type used when a dictionary entry is written.
func typeOf(v any) string {
	switch x := v.(type) {
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "double"
	case scene.Asset:
		return "asset"
	case map[string]any:
		return "dictionary"
	case scene.Tuple:
		if len(x) >= 2 && len(x) <= 4 {
			return "double" + strconv.Itoa(len(x))
		}
	case []any:
		if len(x) != 0 {
			return typeOf(x[0]) + "[]"
		}
	}
	return "string"
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func quote(s string) string {
	return strconv.Quote(s)
}
