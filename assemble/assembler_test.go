package assemble

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/diag"
	"github.com/cl0nazepamm/P-USDExporter/docio"
	"github.com/cl0nazepamm/P-USDExporter/hierarchy"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// layer returns an exported document whose default prim is name, with the
// given prim metadata lines.
func layer(name string, meta ...string) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "#usda 1.0\n(\n    defaultPrim = %q\n)\n\ndef Xform %q", name, name)
	if len(meta) != 0 {
		b.WriteString(" (\n")
		for _, m := range meta {
			b.WriteString("    " + m + "\n")
		}
		b.WriteString(")")
	}
	b.WriteString("\n{\n}\n")
	return b.String()
}

// exportDir writes files under /export. Keys without an extension are
// written as usda layers with the given metadata.
func exportDir(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, d := range files {
		p := path.Join("/export", name)
		if path.Ext(name) == "" {
			p += ".usda"
			var meta []string
			if d != "" {
				meta = strings.Split(d, "\n")
			}
			d = layer(path.Base(name), meta...)
		}
		if err := afero.WriteFile(fs, p, []byte(d), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func assemble(t *testing.T, fs afero.Fs, opts ...Option) *Result {
	t.Helper()
	res := New(fs, opts...).Assemble("/export")
	if res.Phase.Status == diag.StatusFailed {
		t.Fatalf("assembly failed: %v", res.Phase.Err)
	}
	return res
}

func childNames(n *scene.Node) []string {
	var res []string
	for _, c := range n.Children() {
		res = append(res, c.Name)
	}
	return res
}

func checkInstanceable(t *testing.T, doc *scene.Document) {
	t.Helper()
	doc.Walk(func(n *scene.Node) error {
		if n.IsInstanceable() && n.HasChildren() {
			t.Errorf("%s is instanceable with children", n.Path())
		}
		return nil
	})
}

func TestAssemblePurposeGroup(t *testing.T) {
	fs := exportDir(t, map[string]string{
		"Chair_RENDER": `kind = "component"`,
		"Chair_PROXY":  "",
	})
	res := assemble(t, fs)
	doc := res.Doc
	if res.Output != "/export/export_stage.usda" || !docio.Exists(fs, res.Output) {
		t.Fatalf("output %s not written", res.Output)
	}
	chair := doc.Lookup("/Chair")
	if chair == nil || chair.TypeName != "Xform" || len(chair.VariantSets) != 0 {
		t.Fatalf("bad container %+v", chair)
	}
	if diff := cmp.Diff([]string{"proxy", "render"}, childNames(chair)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	render := doc.Lookup("/Chair/render")
	if render.Purpose() != "render" || render.Kind != "component" {
		t.Errorf("bad render bucket %+v", render)
	}
	if diff := cmp.Diff([]scene.Arc{{Kind: scene.ArcReference, AssetPath: "./Chair_RENDER.usda"}}, render.Arcs); diff != "" {
		t.Errorf("render arcs (-want +got):\n%s", diff)
	}
	if p := doc.Lookup("/Chair/proxy").Purpose(); p != "proxy" {
		t.Errorf("proxy purpose %q", p)
	}
	if doc.DefaultPrim != "Chair" || doc.UpAxis != "Z" || *doc.MetersPerUnit != 0.01 {
		t.Errorf("bad layer metadata %+v", doc)
	}
	if res.Phase.Status != diag.StatusOK {
		t.Errorf("status %s: %v", res.Phase.Status, res.Phase.Problems)
	}

	written, err := docio.ReadFile(fs, res.Output)
	if err != nil {
		t.Fatal(err)
	}
	if written.Lookup("/Chair/proxy") == nil {
		t.Error("written output lacks /Chair/proxy")
	}
}

func TestAssembleVariantGroup(t *testing.T) {
	fs := exportDir(t, map[string]string{
		"Lamp_VARIANTA": "",
		"Lamp_VARIANTB": "instanceable = true",
	})
	doc := assemble(t, fs).Doc
	lamp := doc.Lookup("/Lamp")
	if lamp == nil {
		t.Fatal("no /Lamp")
	}
	vs := lamp.VariantSet("modelVariant")
	if vs == nil {
		t.Fatal("no variant set")
	}
	var names []string
	for _, v := range vs.Variants {
		names = append(names, v.Name)
	}
	if diff := cmp.Diff([]string{"A", "B"}, names); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if vs.Selection != "A" {
		t.Errorf("selected %q", vs.Selection)
	}
	b := vs.Variant("B").Scope
	if diff := cmp.Diff([]scene.Arc{{Kind: scene.ArcReference, AssetPath: "./Lamp_VARIANTB.usda"}}, b.Arcs); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if !b.IsInstanceable() {
		t.Error("variant B lost instanceable")
	}
	checkInstanceable(t, doc)
}

func TestAssemblePurposeVariants(t *testing.T) {
	fs := exportDir(t, map[string]string{
		"Tree_VARIANTA_RENDER": "",
		"Tree_VARIANTB_RENDER": "",
		"Tree_PROXY":           "",
	})
	doc := assemble(t, fs).Doc
	render := doc.Lookup("/Tree/render")
	if render == nil || render.Purpose() != "render" {
		t.Fatalf("bad render bucket %+v", render)
	}
	vs := render.VariantSet("modelVariant")
	if vs == nil || len(vs.Variants) != 2 || vs.Selection != "A" {
		t.Fatalf("bad variant set %+v", vs)
	}
	proxy := doc.Lookup("/Tree/proxy")
	if proxy == nil || len(proxy.VariantSets) != 0 || len(proxy.Arcs) != 1 {
		t.Errorf("bad proxy bucket %+v", proxy)
	}
}

func TestAssemblePayloads(t *testing.T) {
	fs := exportDir(t, map[string]string{
		"Tree_PAYLOAD": "",
		"Rock": `customData = {
        string geomType = "Scope"
        bool usePayload = 1
    }`,
		"Sky": `customData = {
        string geomType = "Mesh"
    }`,
	})
	doc := assemble(t, fs).Doc
	tests := []struct {
		path     scene.Path
		typeName string
		kind     scene.ArcKind
	}{
		{"/Tree_PAYLOAD", "", scene.ArcPayload},
		{"/Rock", "Scope", scene.ArcPayload},
		{"/Sky", "", scene.ArcReference},
	}
	for _, tt := range tests {
		n := doc.Lookup(tt.path)
		if n == nil {
			t.Errorf("no %s", tt.path)
			continue
		}
		if n.TypeName != tt.typeName || len(n.Arcs) != 1 || n.Arcs[0].Kind != tt.kind {
			t.Errorf("%s: got type %q arcs %v", tt.path, n.TypeName, n.Arcs)
		}
	}
}

const sceneTable = `# exported hierarchy
Scene|
Table|Scene
Leg|Table
Chair_RENDER|Scene
Chair_PROXY|Scene
Ghost|Scene
Props|Scene
Cup|Props
Stray|Nowhere
`

func TestAssembleHierarchy(t *testing.T) {
	fs := exportDir(t, map[string]string{
		"_hierarchy.txt":     sceneTable,
		"Table":              "instanceable = true",
		"parts/Leg":          "",
		"Chair_RENDER":       "",
		"Chair_PROXY":        "",
		"Cup":                `instanceable = true
    kind = "component"`,
		"Stray": "",
	})
	fps, start, end := 24.0, 1.0, 48.0
	res := assemble(t, fs, WithTime(&fps, &start, &end))
	doc := res.Doc

	if diff := cmp.Diff([]string{"Scene"}, childNames(doc.Root())); diff != "" {
		t.Errorf("roots (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Table", "Chair", "Ghost", "Props"}, childNames(doc.Lookup("/Scene"))); diff != "" {
		t.Errorf("scene children (-want +got):\n%s", diff)
	}
	if s := doc.Lookup("/Scene"); s.TypeName != "Xform" || len(s.Arcs) != 0 {
		t.Errorf("Scene is not a container: %+v", s)
	}
	table := doc.Lookup("/Scene/Table")
	if table.IsInstanceable() {
		t.Error("Table made instanceable despite its children")
	}
	leg := doc.Lookup("/Scene/Table/Leg")
	if leg == nil || leg.Arcs[0].AssetPath != "./parts/Leg.usda" {
		t.Errorf("bad leg %+v", leg)
	}
	cup := doc.Lookup("/Scene/Props/Cup")
	if cup == nil || !cup.IsInstanceable() || cup.Kind != "component" {
		t.Errorf("bad cup %+v", cup)
	}
	if doc.Lookup("/Scene/Chair/proxy") == nil {
		t.Error("no chair proxy")
	}
	if doc.Lookup("/Stray") != nil {
		t.Error("orphan was assembled")
	}
	if doc.DefaultPrim != "Scene" || *doc.FramesPerSecond != 24 || *doc.TimeCodesPerSecond != 24 || *doc.EndTimeCode != 48 {
		t.Errorf("bad layer metadata %+v", doc)
	}
	checkInstanceable(t, doc)

	if res.Phase.Status != diag.StatusDegraded || len(res.Phase.Problems) != 1 {
		t.Fatalf("status %s problems %v", res.Phase.Status, res.Phase.Problems)
	}
	var re *diag.ReferenceError
	if !errors.As(res.Phase.Problems[0], &re) || re.Name != "Ghost" {
		t.Errorf("got %v, want a reference error for Ghost", res.Phase.Problems[0])
	}
	if doc.Lookup("/Scene/Ghost").TypeName != "Xform" {
		t.Error("Ghost is not an organizational container")
	}
	if res.Created["Chair_PROXY"] != "/Scene/Chair/proxy" || res.Created["Props"] != "/Scene/Props" {
		t.Errorf("bad created map %v", res.Created)
	}
}

func TestAssembleStrictHierarchy(t *testing.T) {
	fs := exportDir(t, map[string]string{
		"_hierarchy.txt": sceneTable,
	})
	res := New(fs, Strict(true)).Assemble("/export")
	if res.Phase.Status != diag.StatusFailed || !errors.Is(res.Phase.Err, hierarchy.ErrUndeclaredParent) {
		t.Fatalf("got %s %v", res.Phase.Status, res.Phase.Err)
	}
	if docio.Exists(fs, res.Output) {
		t.Error("output written after a failed assembly")
	}
}

func TestAssembleBadGroups(t *testing.T) {
	fs := exportDir(t, map[string]string{
		"_hierarchy.txt": `Lamp_VARIANTA|
Lamp_VARIANTB|
Lamp_VARIANTC|Lamp_VARIANTA
Rock|
Rock_RENDER|
Rock_PROXY|
Vase_VARIANTA|
Vase_variantA|
Desk|
`,
		"Lamp_VARIANTA": "",
		"Lamp_VARIANTB": "",
		"Lamp_VARIANTC": "",
		"Rock":          "",
		"Rock_RENDER":   "",
		"Rock_PROXY":    "",
		"Vase_VARIANTA": "",
		"Vase_variantA": "",
		"Desk":          "",
	})
	res := assemble(t, fs)
	doc := res.Doc
	if diff := cmp.Diff([]string{"Rock", "Desk"}, childNames(doc.Root())); diff != "" {
		t.Errorf("roots (-want +got):\n%s", diff)
	}
	if doc.Lookup("/Rock/proxy") == nil || doc.Lookup("/Rock/render") != nil {
		t.Errorf("bad rock %v", childNames(doc.Lookup("/Rock")))
	}
	want := []error{diag.ErrNesting, ErrAmbiguous, diag.ErrMalformed}
	if len(res.Phase.Problems) != len(want) {
		t.Fatalf("got problems %v", res.Phase.Problems)
	}
	for i, err := range want {
		var ve *diag.ValidationError
		if !errors.As(res.Phase.Problems[i], &ve) || !errors.Is(ve, err) {
			t.Errorf("problem %d: got %v, want %v", i, res.Phase.Problems[i], err)
		}
	}
}

func TestAssembleDefaultPrim(t *testing.T) {
	fs := exportDir(t, map[string]string{
		"Chair": "",
	})
	if err := afero.WriteFile(fs, "/export/export_stage.usda", []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	res := assemble(t, fs, WithDefaultPrim(" My Set "))
	doc := res.Doc
	set := doc.Lookup("/My_Set")
	if set == nil || set.Kind != "assembly" || doc.DefaultPrim != "My_Set" {
		t.Fatalf("bad default prim %+v", set)
	}
	if doc.Lookup("/My_Set/Chair") == nil {
		t.Error("content not under the default prim")
	}
	d, err := afero.ReadFile(fs, res.Output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(d), `defaultPrim = "My_Set"`) {
		t.Errorf("stale output kept:\n%s", d)
	}
}

func TestAssembleDryRun(t *testing.T) {
	fs := exportDir(t, map[string]string{"Chair": ""})
	a := New(fs, DryRun(true))
	res := a.Assemble("/export")
	if res.Doc.Lookup("/Chair") == nil {
		t.Fatal("no chair")
	}
	if docio.Exists(fs, res.Output) {
		t.Error("dry run wrote the output")
	}
	if res.Output != "/export/export_stage.usda" {
		t.Errorf("output %s", res.Output)
	}
}

func TestAssembleMissingDir(t *testing.T) {
	res := New(afero.NewMemMapFs()).Assemble("/nope")
	var ioe *diag.IOError
	if res.Phase.Status != diag.StatusFailed || !errors.As(res.Phase.Err, &ioe) {
		t.Fatalf("got %s %v", res.Phase.Status, res.Phase.Err)
	}
}

func TestReadMeta(t *testing.T) {
	doc := scene.NewDocument()
	doc.Define("/First", "Xform")
	named, _ := doc.Define("/Lamp", "Xform")
	named.Kind = "component"
	m, ok := ReadMeta(doc, "Lamp")
	if !ok || m.Entry != "/Lamp" || m.Kind != "component" {
		t.Errorf("got %+v", m)
	}
	if m, _ := ReadMeta(doc, "Other"); m.Entry != "/First" {
		t.Errorf("fallback to first root: got %s", m.Entry)
	}
	doc.DefaultPrim = "First"
	if m, _ := ReadMeta(doc, "Lamp"); m.Entry != "/First" {
		t.Errorf("default prim: got %s", m.Entry)
	}
	if _, ok := ReadMeta(scene.NewDocument(), "x"); ok {
		t.Error("empty document has an entry")
	}
}

func TestAssembleUnresolvedVariants(t *testing.T) {
	fs := exportDir(t, map[string]string{
		"_hierarchy.txt": "Set|\nLamp_VARIANTA|Set\nLamp_VARIANTB|Set\n",
	})
	res := New(fs).Assemble("/export")
	if res.Phase.Status != diag.StatusDegraded || len(res.Phase.Problems) != 2 {
		t.Fatalf("status %s problems %v", res.Phase.Status, res.Phase.Problems)
	}
	for _, err := range res.Phase.Problems {
		var re *diag.ReferenceError
		if !errors.As(err, &re) {
			t.Errorf("got %v, want a reference error", err)
		}
	}
	lamp := res.Doc.Lookup("/Set/Lamp")
	if lamp == nil {
		t.Fatal("no /Set/Lamp")
	}
	if len(lamp.VariantSets) != 0 || len(lamp.Arcs) != 0 || lamp.TypeName != "Xform" {
		t.Errorf("Lamp is not a plain container: %+v", lamp)
	}
	if res.Phase.Counts["variantSets"] != 0 {
		t.Errorf("counted %d variant sets", res.Phase.Counts["variantSets"])
	}
}
