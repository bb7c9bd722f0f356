package usda

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cl0nazepamm/P-USDExporter/scene"
)

const heroLayer = `#usda 1.0
(
    defaultPrim = "root"
    metersPerUnit = 0.01
    upAxis = "Z"
)

def Xform "root"
{
    def Xform "Hero" (
        kind = "component"
        customData = {
            string geomType = "Scope"
            bool usePayload = 1
        }
        prepend references = @./parts/Hero_body.usda@</Body>
        prepend inherits = </root/_class_Hero>
    )
    {
        uniform token purpose = "render"
        float3 xformOp:translate = (1, 2, 3.5)
        uniform token[] skel:joints = ["Hips", "Hips/Spine"]
        rel material:binding = </root/mtl/Skin>

        def Mesh "Body"
        {
            color3f inputs:diffuseColor.connect = </root/mtl/Skin/Tex.outputs:rgb>
            float visibility.timeSamples = {
                1: 0,
                10: 1.5,
            }
        }
    }

    class "_class_Hero"
    {
    }

    def Scope "mtl"
    {
        def Material "Skin"
        {
        }
    }
}
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(heroLayer))
	if err != nil {
		t.Fatal(err)
	}
	if doc.DefaultPrim != "root" || doc.UpAxis != "Z" || *doc.MetersPerUnit != 0.01 {
		t.Errorf("bad layer metadata %+v", doc)
	}
	hero := doc.Lookup("/root/Hero")
	if hero == nil {
		t.Fatal("no hero")
	}
	if hero.Kind != "component" || hero.TypeName != "Xform" || hero.Purpose() != "render" {
		t.Errorf("bad hero %+v", hero)
	}
	if diff := cmp.Diff(map[string]any{"geomType": "Scope", "usePayload": true}, hero.CustomData); diff != "" {
		t.Errorf("custom data (-want +got):\n%s", diff)
	}
	wantArcs := []scene.Arc{
		{Kind: scene.ArcReference, AssetPath: "./parts/Hero_body.usda", PrimPath: "/Body"},
		{Kind: scene.ArcInherit, PrimPath: "/root/_class_Hero"},
	}
	if diff := cmp.Diff(wantArcs, hero.CompositionArcs()); diff != "" {
		t.Errorf("arcs (-want +got):\n%s", diff)
	}
	if got := hero.Attr("xformOp:translate").Value; !cmp.Equal(got, scene.Tuple{1.0, 2.0, 3.5}) {
		t.Errorf("translate coerced to %#v", got)
	}
	joints, ok := scene.Strings(hero.Attr("skel:joints").Value)
	if !ok || !cmp.Equal(joints, []string{"Hips", "Hips/Spine"}) {
		t.Errorf("joints %v", joints)
	}
	if diff := cmp.Diff([]scene.Path{"/root/mtl/Skin"}, hero.Rel("material:binding").Targets); diff != "" {
		t.Errorf("binding (-want +got):\n%s", diff)
	}
	body := doc.Lookup("/root/Hero/Body")
	diffuse := body.Attr("inputs:diffuseColor")
	if diffuse == nil || diffuse.Value != nil || !cmp.Equal(diffuse.Connections, []scene.Path{"/root/mtl/Skin/Tex.outputs:rgb"}) {
		t.Errorf("bad connection %+v", diffuse)
	}
	vis := body.Attr("visibility")
	if diff := cmp.Diff(map[float64]any{1: 0.0, 10: 1.5}, vis.TimeSamples); diff != "" {
		t.Errorf("time samples (-want +got):\n%s", diff)
	}
	if cls := doc.Lookup("/root/_class_Hero"); cls == nil || cls.Specifier != scene.SpecClass {
		t.Errorf("bad class %v", cls)
	}
}

func TestParseVariants(t *testing.T) {
	src := `#usda 1.0
def Xform "Lamp" (
    variants = {
        string modelVariant = "B"
    }
    prepend variantSets = "modelVariant"
)
{
    variantSet "modelVariant" = {
        "A" (
            prepend references = @./Lamp_VARIANTA.usda@
        ) {
            def Xform "Lamp_VARIANTA"
            {
            }
        }
        "B" {
        }
    }
}
`
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	lamp := doc.Lookup("/Lamp")
	vs := lamp.VariantSet("modelVariant")
	if vs == nil || len(vs.Variants) != 2 || vs.Selection != "B" {
		t.Fatalf("bad variant set %+v", vs)
	}
	a := vs.Variant("A").Scope
	if diff := cmp.Diff([]scene.Arc{{Kind: scene.ArcReference, AssetPath: "./Lamp_VARIANTA.usda"}}, a.Arcs); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if c := a.Child("Lamp_VARIANTA"); c == nil || c.Path() != "/Lamp/Lamp_VARIANTA" {
		t.Errorf("bad variant child %v", c)
	}
	if doc.Lookup("/Lamp/Lamp_VARIANTA") != nil {
		t.Error("unselected variant content resolved")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{"no header", `def "a" {}`, ErrBadHeader},
		{"bad specifier", "#usda 1.0\nmake \"a\" {}", ErrSyntax},
		{"unterminated string", "#usda 1.0\ndef \"a {}", ErrSyntax},
		{"missing brace", "#usda 1.0\ndef \"a\" {", ErrSyntax},
		{"bad name", "#usda 1.0\ndef \"a-b\" {}", scene.ErrBadName},
		{"duplicate", "#usda 1.0\ndef \"a\" {}\ndef \"a\" {}", scene.ErrExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), ParseFile("x.usda"))
			if !errors.Is(err, tt.err) {
				t.Fatalf("got %v, want %v", err, tt.err)
			}
			var se *SyntaxError
			if !errors.As(err, &se) || se.File != "x.usda" {
				t.Errorf("got %v, want a SyntaxError in x.usda", err)
			}
		})
	}
}

func TestEncodeStable(t *testing.T) {
	doc, err := Parse([]byte(heroLayer))
	if err != nil {
		t.Fatal(err)
	}
	first, err := Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Parse(first)
	if err != nil {
		t.Fatalf("re-parse: %v\n%s", err, first)
	}
	second, err := Marshal(again)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("encoding is not stable (-first +second):\n%s", diff)
	}
}

func TestEncodeShape(t *testing.T) {
	doc := scene.NewDocument()
	chair, _ := doc.Define("/Chair", "Xform")
	chair.Kind = "assembly"
	render, _ := doc.Define("/Chair/render", "Xform")
	render.SetPurpose("render")
	render.AddArc(scene.Arc{Kind: scene.ArcReference, AssetPath: "./Chair_RENDER.usda"})
	doc.DefaultPrim = "Chair"
	got, err := Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	want := `#usda 1.0
(
    defaultPrim = "Chair"
)

def Xform "Chair" (
    kind = "assembly"
)
{
    def Xform "render" (
        prepend references = @./Chair_RENDER.usda@
    )
    {
        uniform token purpose = "render"
    }
}
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
