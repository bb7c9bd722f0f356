package props

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/scene"
)

func TestHolderApply(t *testing.T) {
	no := false
	h := &Holder{
		GeomType:     3,
		Kind:         4,
		Purpose:      3,
		Instanceable: true,
		Hidden:       true,
		Active:       &no,
		AssetVersion: " v012 ",
		DrawMode:     4,
		Payload:      true,
	}
	n := scene.NewNode("Hero", "Xform")
	set := h.Apply(n)
	want := []string{
		"geomType=Scope", "kind=component", "purpose=proxy", "instanceable",
		"hidden", "inactive", "version=v012", "drawMode=cards", "payload",
	}
	if diff := cmp.Diff(want, set); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"geomType": "Scope", "usePayload": true}, n.CustomData); diff != "" {
		t.Errorf("custom data (-want +got):\n%s", diff)
	}
	if n.Kind != "component" || n.Purpose() != "proxy" || !n.IsInstanceable() || *n.Active {
		t.Errorf("bad node %+v", n)
	}
	if v := n.Attr("visibility"); v == nil || v.Value != "invisible" {
		t.Errorf("visibility %+v", v)
	}
	if v := n.Attr("model:drawMode"); v == nil || v.Value != "cards" || !v.Uniform {
		t.Errorf("draw mode %+v", v)
	}
	if n.AssetInfo["version"] != "v012" || !cmp.Equal(n.APISchemas, []string{"GeomModelAPI"}) {
		t.Errorf("asset info %v schemas %v", n.AssetInfo, n.APISchemas)
	}
}

func TestHolderUnsetCodes(t *testing.T) {
	yes := true
	h := &Holder{GeomType: 1, Kind: 0, Purpose: 1, DrawMode: 1, Active: &yes}
	n := scene.NewNode("Hero", "Xform")
	if set := h.Apply(n); len(set) != 0 {
		t.Errorf("unset codes applied %v", set)
	}
	if n.Active != nil || n.CustomData != nil || len(n.Attributes) != 0 {
		t.Errorf("node changed: %+v", n)
	}
}

func TestApplySidecar(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/props.yaml", []byte(`
/Hero:
  kind: 4
  payload: true
/Hero/Body:
  hidden: true
/Gone:
  kind: 2
/Light: null
`), 0o644)
	s, err := ReadSidecar(fs, "/props.yaml")
	if err != nil {
		t.Fatal(err)
	}
	handles, host, err := s.Host()
	if err != nil {
		t.Fatal(err)
	}
	doc := scene.NewDocument()
	doc.Define("/Hero/Body", "Mesh")
	doc.Define("/Light", "Xform")
	res := Apply(doc, handles, host)
	if res.Processed != 2 || res.NoHolder != 1 {
		t.Errorf("got %s", res)
	}
	if diff := cmp.Diff([]scene.Path{"/Gone"}, res.Missing); diff != "" {
		t.Errorf("missing (-want +got):\n%s", diff)
	}
	if doc.Lookup("/Hero").Kind != "component" || doc.Lookup("/Hero/Body").Attr("visibility") == nil {
		t.Error("holders not applied")
	}
}

func TestApplyGoneHostNode(t *testing.T) {
	doc := scene.NewDocument()
	doc.Define("/Hero", "Xform")
	res := Apply(doc, Handles{"/Hero": 7}, Table{})
	if diff := cmp.Diff([]scene.Path{"/Hero"}, res.Missing); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestDecodeUnknownField(t *testing.T) {
	if _, err := Decode([]byte("/Hero:\n  colour: red\n")); err == nil {
		t.Error("unknown field accepted")
	}
}
