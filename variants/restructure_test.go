package variants

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cl0nazepamm/P-USDExporter/diag"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

func testRestructurer() *Restructurer {
	return New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func define(t *testing.T, doc *scene.Document, p scene.Path, typ string) *scene.Node {
	t.Helper()
	n, err := doc.Define(p, typ)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestRestructure(t *testing.T) {
	doc := scene.NewDocument()
	set := define(t, doc, "/Set", "Xform")
	define(t, doc, "/Set/Lamp_VARIANTA", "Xform")
	define(t, doc, "/Set/Lamp_VARIANTB/Bulb", "Mesh")
	define(t, doc, "/Set/Lamp_VARIANTC", "Xform")
	other := define(t, doc, "/Set/Desk", "Xform")
	other.SetRel(&scene.Relationship{Name: "lookAt", Targets: []scene.Path{"/Set/Lamp_VARIANTB/Bulb"}})

	res := testRestructurer().Restructure(doc)
	if len(res) != 1 || res[0].Err != nil {
		t.Fatalf("got %+v", res)
	}
	vs := set.VariantSet(DefaultSetName)
	if vs == nil {
		t.Fatal("no variant set")
	}
	var names []string
	for _, v := range vs.Variants {
		names = append(names, v.Name)
		if v.Scope.Child("Lamp") == nil {
			t.Errorf("variant %s does not hold Lamp", v.Name)
		}
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, names); diff != "" {
		t.Errorf("variants (-want +got):\n%s", diff)
	}
	if vs.Selection != "A" || res[0].Selected != "A" {
		t.Errorf("selection %q", vs.Selection)
	}
	var children []string
	for _, c := range set.Children() {
		children = append(children, c.Name)
	}
	if diff := cmp.Diff([]string{"Desk"}, children); diff != "" {
		t.Errorf("children (-want +got):\n%s", diff)
	}
	if got := other.Rel("lookAt").Targets[0]; got != "/Set/Lamp/Bulb" {
		t.Errorf("lookAt %s", got)
	}
	if doc.Lookup("/Set/Lamp") != vs.Variant("A").Scope.Child("Lamp") {
		t.Error("selected variant does not resolve")
	}
	if err := vs.Select("B"); err != nil {
		t.Fatal(err)
	}
	if doc.Lookup("/Set/Lamp/Bulb") == nil {
		t.Error("variant B content does not resolve")
	}
}

func TestRestructureSkips(t *testing.T) {
	doc := scene.NewDocument()
	define(t, doc, "/Lamp_VARIANTA", "Xform")
	define(t, doc, "/Lamp_VARIANTB", "Xform")
	define(t, doc, "/Set/Chair_VARIANTA", "Xform")
	define(t, doc, "/Set/Rock_VARIANTA_RENDER", "Xform")
	define(t, doc, "/Set/Rock_VARIANTB_RENDER", "Xform")
	cls := define(t, doc, "/Set/_class_Tree", "")
	cls.Specifier = scene.SpecClass
	define(t, doc, "/Set/_class_Tree/Leaf_VARIANT1", "Mesh")
	define(t, doc, "/Set/_class_Tree/Leaf_VARIANT2", "Mesh")

	groups := Groups(doc)
	if len(groups) != 1 || groups[0].Base != "Chair" {
		t.Errorf("groups %v", groups)
	}
	if res := testRestructurer().Restructure(doc); len(res) != 0 {
		t.Errorf("got %+v", res)
	}
	if doc.Lookup("/Set/Chair_VARIANTA") == nil || doc.Lookup("/Lamp_VARIANTB") == nil {
		t.Error("ungrouped nodes changed")
	}
}

func TestRestructureMalformed(t *testing.T) {
	tests := []struct {
		name  string
		paths []scene.Path
	}{
		{"duplicate tag", []scene.Path{"/Set/Lamp_VARIANT", "/Set/Lamp_VARIANT1"}},
		{"base beside variants", []scene.Path{"/Set/Lamp", "/Set/Lamp_VARIANTA", "/Set/Lamp_VARIANTB"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := scene.NewDocument()
			for _, p := range tt.paths {
				define(t, doc, p, "Xform")
			}
			res := testRestructurer().Restructure(doc)
			if len(res) != 1 {
				t.Fatalf("got %d results", len(res))
			}
			var ve *diag.ValidationError
			if !errors.As(res[0].Err, &ve) || !errors.Is(ve, diag.ErrMalformed) || ve.Path != "/Set/Lamp" {
				t.Errorf("got %v", res[0].Err)
			}
			for _, p := range tt.paths {
				if doc.Lookup(p) == nil {
					t.Errorf("%s removed", p)
				}
			}
			if doc.Lookup("/Set").VariantSets != nil {
				t.Error("variant set created")
			}
		})
	}
}

func TestRestructureNested(t *testing.T) {
	doc := scene.NewDocument()
	define(t, doc, "/Set/Car_VARIANTA/Wheel_VARIANT1", "Mesh")
	define(t, doc, "/Set/Car_VARIANTA/Wheel_VARIANT2", "Mesh")
	define(t, doc, "/Set/Car_VARIANTB", "Xform")

	res := New(WithSetName("look"), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))).Restructure(doc)
	if len(res) != 2 {
		t.Fatalf("got %d results", len(res))
	}
	if res[0].Group.Base != "Car" || res[1].Group.Base != "Wheel" {
		t.Errorf("results out of discovery order: %v %v", res[0].Group, res[1].Group)
	}
	car := doc.Lookup("/Set/Car")
	if car == nil {
		t.Fatal("no car")
	}
	wheels := car.VariantSet("look")
	if wheels == nil || len(wheels.Variants) != 2 || wheels.Selection != "1" {
		t.Fatalf("inner set not carried into the variant: %+v", wheels)
	}
	if doc.Lookup("/Set/Car/Wheel") == nil {
		t.Error("nested selection does not resolve")
	}
}

func TestRestructureSiblingGroups(t *testing.T) {
	doc := scene.NewDocument()
	set := define(t, doc, "/Set", "Xform")
	define(t, doc, "/Set/Lamp_VARIANTA", "Xform")
	define(t, doc, "/Set/Lamp_VARIANTB", "Xform")
	define(t, doc, "/Set/Desk_VARIANTX", "Xform")
	define(t, doc, "/Set/Desk_VARIANTY/Drawer", "Mesh")

	res := testRestructurer().Restructure(doc)
	if len(res) != 2 || res[0].Err != nil || res[1].Err != nil {
		t.Fatalf("got %+v", res)
	}
	if res[0].Set != DefaultSetName || res[1].Set != "DeskVariant" {
		t.Errorf("sets %q %q", res[0].Set, res[1].Set)
	}
	tests := []struct {
		set      string
		variants []string
		selected string
	}{
		{DefaultSetName, []string{"A", "B"}, "A"},
		{"DeskVariant", []string{"X", "Y"}, "X"},
	}
	for _, tt := range tests {
		vs := set.VariantSet(tt.set)
		if vs == nil {
			t.Fatalf("no set %s", tt.set)
		}
		var names []string
		for _, v := range vs.Variants {
			names = append(names, v.Name)
		}
		if diff := cmp.Diff(tt.variants, names); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tt.set, diff)
		}
		if vs.Selection != tt.selected {
			t.Errorf("%s selection %q", tt.set, vs.Selection)
		}
	}
	if doc.Lookup("/Set/Lamp") == nil || doc.Lookup("/Set/Desk") == nil {
		t.Error("selected variants do not resolve")
	}
	if err := set.VariantSet("DeskVariant").Select("Y"); err != nil {
		t.Fatal(err)
	}
	if doc.Lookup("/Set/Desk/Drawer") == nil {
		t.Error("variant Y content does not resolve")
	}
}

func TestRestructureForeignSet(t *testing.T) {
	doc := scene.NewDocument()
	set := define(t, doc, "/Set", "Xform")
	v := set.AddVariantSet(DefaultSetName).AddVariant("old")
	if err := v.Scope.AddChild(scene.NewNode("Chair", "Xform")); err != nil {
		t.Fatal(err)
	}
	define(t, doc, "/Set/Lamp_VARIANTA", "Xform")
	define(t, doc, "/Set/Lamp_VARIANTB", "Xform")

	res := testRestructurer().Restructure(doc)
	if len(res) != 1 || res[0].Err != nil || res[0].Set != "LampVariant" {
		t.Fatalf("got %+v", res)
	}
	if n := len(set.VariantSet(DefaultSetName).Variants); n != 1 {
		t.Errorf("existing set has %d variants", n)
	}
}
