package remap

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// relocated builds the document a wrapper strip leaves behind: nodes have
// moved out of /root but every authored path still points inside it.
func relocated(t *testing.T) *scene.Document {
	t.Helper()
	doc := scene.NewDocument()
	hero := define(t, doc, "/Hero", "Xform")
	define(t, doc, "/Hero/Hips", "Xform")
	define(t, doc, "/Hero/mtl", "Scope")
	define(t, doc, "/Hero/mtl/Skin", "Material")
	define(t, doc, "/Hero/mtl/Skin/Tex", "Shader")
	cls := define(t, doc, "/_class_Hero", "")
	cls.Specifier = scene.SpecClass

	hero.SetRel(&scene.Relationship{Name: "material:binding", Targets: []scene.Path{"/root/mtl/Skin"}})
	hero.SetRel(&scene.Relationship{Name: "proxyPrim", Targets: []scene.Path{"/Hero/Hips"}})
	hero.SetAttr(&scene.Attribute{
		Name:        "inputs:diffuseColor",
		TypeName:    "color3f",
		Connections: []scene.Path{"/root/mtl/Skin/Tex.outputs:rgb"},
	})
	hero.SetAttr(&scene.Attribute{
		Name:     "skel:joints",
		TypeName: "token[]",
		Uniform:  true,
		Value:    scene.FromStrings([]string{"root/Hero/Hips", "Hips", "Missing"}),
	})
	hero.Inherits = &scene.ListOp{Prepended: []scene.Path{"/root/_class_Hero"}}
	hero.AddArc(scene.Arc{Kind: scene.ArcReference, PrimPath: "/root/_class_Hero"})
	hero.AddArc(scene.Arc{Kind: scene.ArcReference, AssetPath: "./a.usda", PrimPath: "/root/A"})
	cls.Specializes = &scene.ListOp{Deleted: []scene.Path{"/root/Hero"}}
	return doc
}

func define(t *testing.T, doc *scene.Document, p scene.Path, typ string) *scene.Node {
	t.Helper()
	n, err := doc.Define(p, typ)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestApply(t *testing.T) {
	doc := relocated(t)
	before := LiveTargets(doc)
	r := &Rule{StripPrefix: "/root", NestTarget: "Hero", MaterialNames: []string{"mtl"}, ContentRoot: "Hero"}
	got := r.Apply(doc)
	want := Stats{Relationships: 1, Connections: 1, ListOps: 2, Arcs: 1, JointAttrs: 1, JointTokens: 2, Paths: 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
	hero := doc.Lookup("/Hero")
	if diff := cmp.Diff([]scene.Path{"/Hero/mtl/Skin"}, hero.Rel("material:binding").Targets); diff != "" {
		t.Errorf("binding (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]scene.Path{"/Hero/mtl/Skin/Tex.outputs:rgb"}, hero.Attr("inputs:diffuseColor").Connections); diff != "" {
		t.Errorf("connection (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]scene.Path{"/_class_Hero"}, hero.Inherits.Prepended); diff != "" {
		t.Errorf("inherits (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]scene.Path{"/Hero"}, doc.Lookup("/_class_Hero").Specializes.Deleted); diff != "" {
		t.Errorf("class specializes (-want +got):\n%s", diff)
	}
	if hero.Arcs[0].PrimPath != "/_class_Hero" || hero.Arcs[1].PrimPath != "/root/A" {
		t.Errorf("arcs %+v", hero.Arcs)
	}
	joints, _ := scene.Strings(hero.Attr("skel:joints").Value)
	if diff := cmp.Diff([]string{"Hero/Hips", "Hero/Hips", "Missing"}, joints); diff != "" {
		t.Errorf("joints (-want +got):\n%s", diff)
	}
	if after := LiveTargets(doc); after < before || after != 3 {
		t.Errorf("live targets %d -> %d", before, after)
	}
}

func TestApplyNoOp(t *testing.T) {
	doc := relocated(t)
	rel := doc.Lookup("/Hero").Rel("proxyPrim")
	orig := rel.Targets
	r := &Rule{StripPrefix: "/elsewhere"}
	if got := r.Apply(doc); got != (Stats{}) {
		t.Errorf("got %+v", got)
	}
	if &rel.Targets[0] != &orig[0] {
		t.Error("unchanged list was re-authored")
	}
}

func TestApplyVariantScopes(t *testing.T) {
	doc := scene.NewDocument()
	lamp := define(t, doc, "/Lamp", "Xform")
	define(t, doc, "/Looks", "Scope")
	define(t, doc, "/Looks/Glass", "Material")
	v := lamp.AddVariantSet("modelVariant").AddVariant("A")
	bulb := scene.NewNode("Bulb", "Mesh")
	bulb.SetRel(&scene.Relationship{Name: "material:binding", Targets: []scene.Path{"/root/Looks/Glass"}})
	if err := v.Scope.AddChild(bulb); err != nil {
		t.Fatal(err)
	}
	r := &Rule{StripPrefix: "/root"}
	if got := r.Apply(doc, JointAttributes()); got.Relationships != 1 {
		t.Errorf("got %+v", got)
	}
	if bulb.Rel("material:binding").Targets[0] != "/Looks/Glass" {
		t.Errorf("got %v", bulb.Rel("material:binding").Targets)
	}
}
