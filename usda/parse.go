package usda

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/cl0nazepamm/P-USDExporter/debug"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

type parser struct {
	toks []Token
	i    int
}

// Parse reads a text layer.
func Parse(data []byte, opts ...ParseOption) (*scene.Document, error) {
	o := &parseOpts{}
	for _, f := range opts {
		f(o)
	}
	toks, err := Tokenize(data)
	if err != nil {
		return nil, withFile(err, o.file)
	}
	p := &parser{toks: toks}
	doc, err := p.document()
	if err != nil {
		return nil, withFile(err, o.file)
	}
	return doc, nil
}

func withFile(err error, file string) error {
	var se *SyntaxError
	if errors.As(err, &se) && se.File == "" {
		se.File = file
	}
	return err
}

func errAt(t *Token, err error) error {
	return &SyntaxError{Pos: t.Pos, Err: err}
}

func (p *parser) peek() *Token { return &p.toks[p.i] }

func (p *parser) peekAt(k int) *Token {
	if p.i+k >= len(p.toks) {
		return &p.toks[len(p.toks)-1]
	}
	return &p.toks[p.i+k]
}

func (p *parser) next() *Token {
	t := &p.toks[p.i]
	if t.Type != TEOF {
		p.i++
	}
	return t
}

func (p *parser) expect(tt TokenType, what string) (*Token, error) {
	t := p.next()
	if t.Type != tt {
		return nil, expectedErr(what, t)
	}
	return t, nil
}

func (p *parser) accept(tt TokenType) bool {
	if p.peek().Type == tt {
		p.i++
		return true
	}
	return false
}

func (p *parser) document() (*scene.Document, error) {
	doc := scene.NewDocument()
	if p.peek().Type == TLParen {
		entries, err := p.metadataBlock()
		if err != nil {
			return nil, err
		}
		if err := applyLayerMetadata(doc, entries); err != nil {
			return nil, err
		}
	}
	for p.peek().Type != TEOF {
		t := p.peek()
		n, err := p.prim()
		if err != nil {
			return nil, err
		}
		if err := doc.Root().AddChild(n); err != nil {
			return nil, errAt(t, err)
		}
	}
	return doc, nil
}

type metaEntry struct {
	op  string
	key string
	val any
	tok *Token
}

var listOps = map[string]bool{
	"add":     true,
	"prepend": true,
	"append":  true,
	"delete":  true,
	"reorder": true,
}

func (p *parser) metadataBlock() ([]metaEntry, error) {
	if _, err := p.expect(TLParen, "("); err != nil {
		return nil, err
	}
	var res []metaEntry
	for {
		t := p.next()
		switch t.Type {
		case TRParen:
			return res, nil
		case TSemicolon:
			continue
		case TString:
			res = append(res, metaEntry{key: "doc", val: t.Text, tok: t})
			continue
		case TIdent:
		default:
			return nil, unexpectedErr(t)
		}
		e := metaEntry{key: t.Text, tok: t}
		if listOps[t.Text] && p.peek().Type == TIdent {
			e.op = t.Text
			e.key = p.next().Text
		}
		if _, err := p.expect(TEquals, "="); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		e.val = v
		res = append(res, e)
	}
}

func (p *parser) value() (any, error) {
	t := p.next()
	switch t.Type {
	case TNumber:
		return parseNumber(t)
	case TString:
		return t.Text, nil
	case TAsset:
		if p.peek().Type == TPath {
			pt := p.next()
			return scene.Arc{AssetPath: t.Text, PrimPath: scene.Path(pt.Text)}, nil
		}
		return scene.Asset(t.Text), nil
	case TPath:
		return scene.Path(t.Text), nil
	case TIdent:
		switch t.Text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "None":
			return nil, nil
		}
		return t.Text, nil
	case TLParen:
		var res scene.Tuple
		for !p.accept(TRParen) {
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			res = append(res, v)
			if !p.accept(TComma) && p.peek().Type != TRParen {
				return nil, expectedErr(", or )", p.peek())
			}
		}
		return res, nil
	case TLSquare:
		res := []any{}
		for !p.accept(TRSquare) {
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			res = append(res, v)
			if !p.accept(TComma) && p.peek().Type != TRSquare {
				return nil, expectedErr(", or ]", p.peek())
			}
		}
		return res, nil
	case TLCurl:
		p.i--
		return p.dictionary()
	}
	return nil, unexpectedErr(t)
}

func parseNumber(t *Token) (any, error) {
	s := t.Text
	if !strings.ContainsAny(s, ".eEin") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errAt(t, fmt.Errorf("%w: bad number %q", ErrSyntax, s))
	}
	return f, nil
}

func (p *parser) typeName() (string, error) {
	t, err := p.expect(TIdent, "type name")
	if err != nil {
		return "", err
	}
	if p.peek().Type == TLSquare && p.peekAt(1).Type == TRSquare {
		p.i += 2
		return t.Text + "[]", nil
	}
	return t.Text, nil
}

func (p *parser) dictionary() (map[string]any, error) {
	if _, err := p.expect(TLCurl, "{"); err != nil {
		return nil, err
	}
	res := map[string]any{}
	for {
		switch p.peek().Type {
		case TRCurl:
			p.next()
			return res, nil
		case TSemicolon, TComma:
			p.next()
			continue
		}
		typ, err := p.typeName()
		if err != nil {
			return nil, err
		}
		k := p.next()
		if k.Type != TIdent && k.Type != TString {
			return nil, expectedErr("dictionary key", k)
		}
		if _, err := p.expect(TEquals, "="); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		res[k.Text] = scene.Coerce(typ, v)
	}
}

func (p *parser) prim() (*scene.Node, error) {
	t, err := p.expect(TIdent, "def, over or class")
	if err != nil {
		return nil, err
	}
	spec, err := scene.ParseSpecifier(t.Text)
	if err != nil {
		return nil, errAt(t, fmt.Errorf("%w: %w", ErrSyntax, err))
	}
	n := &scene.Node{Specifier: spec}
	if p.peek().Type == TIdent {
		n.TypeName = p.next().Text
	}
	nt, err := p.expect(TString, "prim name")
	if err != nil {
		return nil, err
	}
	if !scene.ValidName(nt.Text) {
		return nil, errAt(nt, fmt.Errorf("%w: %q", scene.ErrBadName, nt.Text))
	}
	n.Name = nt.Text
	var sel map[string]string
	if p.peek().Type == TLParen {
		entries, err := p.metadataBlock()
		if err != nil {
			return nil, err
		}
		if sel, err = applyPrimMetadata(n, entries); err != nil {
			return nil, err
		}
	}
	if err := p.primBody(n); err != nil {
		return nil, err
	}
	applySelections(n, sel)
	return n, nil
}

func applySelections(n *scene.Node, sel map[string]string) {
	for _, name := range slices.Sorted(maps.Keys(sel)) {
		n.AddVariantSet(name).Selection = sel[name]
	}
}

func (p *parser) primBody(n *scene.Node) error {
	if _, err := p.expect(TLCurl, "{"); err != nil {
		return err
	}
	for {
		t := p.peek()
		switch {
		case t.Type == TRCurl:
			p.next()
			return nil
		case t.Type == TSemicolon:
			p.next()
		case t.Type != TIdent:
			return unexpectedErr(t)
		case t.Text == "def" || t.Text == "over" || t.Text == "class":
			c, err := p.prim()
			if err != nil {
				return err
			}
			if err := n.AddChild(c); err != nil {
				return errAt(t, err)
			}
		case t.Text == "variantSet":
			if err := p.variantSet(n); err != nil {
				return err
			}
		case t.Text == "reorder" && p.peekAt(1).Type == TIdent &&
			(p.peekAt(1).Text == "nameChildren" || p.peekAt(1).Text == "properties"):
			p.i += 2
			if _, err := p.expect(TEquals, "="); err != nil {
				return err
			}
			if _, err := p.value(); err != nil {
				return err
			}
		default:
			if err := p.property(n); err != nil {
				return err
			}
		}
	}
}

func (p *parser) variantSet(n *scene.Node) error {
	p.next()
	name, err := p.expect(TString, "variant set name")
	if err != nil {
		return err
	}
	if _, err := p.expect(TEquals, "="); err != nil {
		return err
	}
	if _, err := p.expect(TLCurl, "{"); err != nil {
		return err
	}
	vs := n.AddVariantSet(name.Text)
	for !p.accept(TRCurl) {
		vt, err := p.expect(TString, "variant name")
		if err != nil {
			return err
		}
		v := vs.AddVariant(vt.Text)
		var sel map[string]string
		if p.peek().Type == TLParen {
			entries, err := p.metadataBlock()
			if err != nil {
				return err
			}
			if sel, err = applyPrimMetadata(v.Scope, entries); err != nil {
				return err
			}
		}
		if err := p.primBody(v.Scope); err != nil {
			return err
		}
		applySelections(v.Scope, sel)
	}
	return nil
}

func (p *parser) property(n *scene.Node) error {
	var custom, uniform bool
qualifiers:
	for {
		t := p.peek()
		if t.Type != TIdent {
			return unexpectedErr(t)
		}
		switch t.Text {
		case "custom":
			custom = true
		case "uniform":
			uniform = true
		case "varying", "config", "add", "prepend", "append", "delete":
		default:
			break qualifiers
		}
		p.next()
	}
	if p.peek().is(TIdent, "rel") {
		p.next()
		return p.relationship(n, custom, uniform)
	}
	typ, err := p.typeName()
	if err != nil {
		return err
	}
	nt, err := p.expect(TIdent, "attribute name")
	if err != nil {
		return err
	}
	name, field := nt.Text, ""
	for _, suffix := range []string{".connect", ".timeSamples"} {
		if base, ok := strings.CutSuffix(name, suffix); ok {
			name, field = base, suffix[1:]
		}
	}
	a := n.Attr(name)
	if a == nil {
		a = &scene.Attribute{Name: name, TypeName: typ, Custom: custom, Uniform: uniform}
		n.SetAttr(a)
	}
	if p.accept(TEquals) {
		switch field {
		case "connect":
			v, err := p.value()
			if err != nil {
				return err
			}
			if a.Connections, err = pathList(v); err != nil {
				return errAt(nt, err)
			}
		case "timeSamples":
			if a.TimeSamples, err = p.timeSamples(typ); err != nil {
				return err
			}
		default:
			v, err := p.value()
			if err != nil {
				return err
			}
			a.Value = scene.Coerce(typ, v)
		}
	}
	if p.peek().Type == TLParen {
		entries, err := p.metadataBlock()
		if err != nil {
			return err
		}
		a.Metadata = genericMetadata(a.Metadata, entries)
	}
	return nil
}

func (p *parser) relationship(n *scene.Node, custom, uniform bool) error {
	nt, err := p.expect(TIdent, "relationship name")
	if err != nil {
		return err
	}
	r := n.Rel(nt.Text)
	if r == nil {
		r = &scene.Relationship{Name: nt.Text, Custom: custom, Uniform: uniform}
		n.SetRel(r)
	}
	if p.accept(TEquals) {
		v, err := p.value()
		if err != nil {
			return err
		}
		ts, err := pathList(v)
		if err != nil {
			return errAt(nt, err)
		}
		r.Targets = append(r.Targets, ts...)
	}
	if p.peek().Type == TLParen {
		// relationship metadata is not modelled
		if _, err := p.metadataBlock(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) timeSamples(typ string) (map[float64]any, error) {
	if _, err := p.expect(TLCurl, "{"); err != nil {
		return nil, err
	}
	res := map[float64]any{}
	for !p.accept(TRCurl) {
		t, err := p.expect(TNumber, "time code")
		if err != nil {
			return nil, err
		}
		tv, err := parseNumber(t)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TColon, ":"); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		f, _ := toFloat(tv)
		res[f] = scene.Coerce(typ, v)
		if !p.accept(TComma) && p.peek().Type != TRCurl {
			return nil, expectedErr(", or }", p.peek())
		}
	}
	return res, nil
}

func pathList(v any) ([]scene.Path, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case scene.Path:
		return []scene.Path{x}, nil
	case []any:
		if len(x) == 0 {
			return nil, nil
		}
		res := make([]scene.Path, 0, len(x))
		for _, e := range x {
			p, ok := e.(scene.Path)
			if !ok {
				return nil, fmt.Errorf("%w: expected path, got %T", ErrSyntax, e)
			}
			res = append(res, p)
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: expected path list, got %T", ErrSyntax, v)
}

func arcList(kind scene.ArcKind, v any) ([]scene.Arc, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case scene.Asset:
		return []scene.Arc{{Kind: kind, AssetPath: string(x)}}, nil
	case scene.Path:
		return []scene.Arc{{Kind: kind, PrimPath: x}}, nil
	case scene.Arc:
		x.Kind = kind
		return []scene.Arc{x}, nil
	case []any:
		var res []scene.Arc
		for _, e := range x {
			arcs, err := arcList(kind, e)
			if err != nil {
				return nil, err
			}
			res = append(res, arcs...)
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: expected %s, got %T", ErrSyntax, kind, v)
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	}
	return false, fmt.Errorf("%w: expected bool, got %T", ErrSyntax, v)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	}
	return 0, fmt.Errorf("%w: expected number, got %T", ErrSyntax, v)
}

func toFloatPtr(v any) (*float64, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func toString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: expected string, got %T", ErrSyntax, v)
}

func toDict(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: expected dictionary, got %T", ErrSyntax, v)
}

func applyLayerMetadata(doc *scene.Document, entries []metaEntry) error {
	for _, e := range entries {
		var err error
		switch e.key {
		case "doc":
			doc.Doc, err = toString(e.val)
		case "defaultPrim":
			doc.DefaultPrim, err = toString(e.val)
		case "upAxis":
			doc.UpAxis, err = toString(e.val)
		case "metersPerUnit":
			doc.MetersPerUnit, err = toFloatPtr(e.val)
		case "framesPerSecond":
			doc.FramesPerSecond, err = toFloatPtr(e.val)
		case "timeCodesPerSecond":
			doc.TimeCodesPerSecond, err = toFloatPtr(e.val)
		case "startTimeCode":
			doc.StartTimeCode, err = toFloatPtr(e.val)
		case "endTimeCode":
			doc.EndTimeCode, err = toFloatPtr(e.val)
		case "customLayerData":
			doc.CustomLayerData, err = toDict(e.val)
		default:
			if debug.Parse() {
				debug.Logf("usda: dropping layer metadata %q at %s\n", e.key, e.tok.Pos)
			}
		}
		if err != nil {
			return errAt(e.tok, fmt.Errorf("%s: %w", e.key, err))
		}
	}
	return nil
}

func applyPrimMetadata(n *scene.Node, entries []metaEntry) (map[string]string, error) {
	var sel map[string]string
	for _, e := range entries {
		var err error
		switch e.key {
		case "kind":
			n.Kind, err = toString(e.val)
		case "instanceable":
			var b bool
			if b, err = toBool(e.val); err == nil {
				n.SetInstanceable(b)
			}
		case "active":
			var b bool
			if b, err = toBool(e.val); err == nil {
				n.SetActive(b)
			}
		case "customData":
			n.CustomData, err = toDict(e.val)
		case "assetInfo":
			n.AssetInfo, err = toDict(e.val)
		case "apiSchemas":
			ss, ok := scene.Strings(e.val)
			if !ok {
				if s, isStr := e.val.(string); isStr {
					ss, ok = []string{s}, true
				}
			}
			if !ok {
				err = fmt.Errorf("%w: expected token list", ErrSyntax)
			}
			n.APISchemas = ss
		case "references", "payload":
			kind := scene.ArcReference
			if e.key == "payload" {
				kind = scene.ArcPayload
			}
			if e.op == "delete" || e.op == "reorder" {
				if debug.Parse() {
					debug.Logf("usda: dropping %s %s at %s\n", e.op, e.key, e.tok.Pos)
				}
				continue
			}
			var arcs []scene.Arc
			if arcs, err = arcList(kind, e.val); err == nil {
				n.Arcs = append(n.Arcs, arcs...)
			}
		case "inherits":
			n.Inherits, err = applyListOp(n.Inherits, e)
		case "specializes":
			n.Specializes, err = applyListOp(n.Specializes, e)
		case "variants":
			var m map[string]any
			if m, err = toDict(e.val); err == nil {
				sel = map[string]string{}
				for k, v := range m {
					s, ok := v.(string)
					if !ok {
						err = fmt.Errorf("%w: variant selection %q is %T", ErrSyntax, k, v)
						break
					}
					sel[k] = s
				}
			}
		case "variantSets":
			names, ok := scene.Strings(e.val)
			if !ok {
				if s, isStr := e.val.(string); isStr {
					names, ok = []string{s}, true
				}
			}
			if !ok {
				err = fmt.Errorf("%w: expected variant set names", ErrSyntax)
			}
			for _, name := range names {
				n.AddVariantSet(name)
			}
		default:
			if n.Metadata == nil {
				n.Metadata = map[string]any{}
			}
			n.Metadata[e.key] = e.val
		}
		if err != nil {
			return nil, errAt(e.tok, fmt.Errorf("%s: %w", e.key, err))
		}
	}
	return sel, nil
}

func applyListOp(l *scene.ListOp, e metaEntry) (*scene.ListOp, error) {
	ps, err := pathList(e.val)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = &scene.ListOp{}
	}
	switch e.op {
	case "":
		l.Explicit = true
		l.Items = ps
	case "add":
		l.Added = ps
	case "prepend":
		l.Prepended = ps
	case "append":
		l.Appended = ps
	case "delete":
		l.Deleted = ps
	}
	return l, nil
}

func genericMetadata(m map[string]any, entries []metaEntry) map[string]any {
	for _, e := range entries {
		if m == nil {
			m = map[string]any{}
		}
		m[e.key] = e.val
	}
	return m
}
