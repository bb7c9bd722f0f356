package hook

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/diag"
	"github.com/cl0nazepamm/P-USDExporter/docio"
	"github.com/cl0nazepamm/P-USDExporter/nsedit"
	"github.com/cl0nazepamm/P-USDExporter/props"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

const exported = `#usda 1.0

def Xform "root"
{
    def Xform "Hero"
    {
        rel material:binding = </root/mtl/Skin>

        def Xform "Lamp_VARIANTA"
        {
        }

        def Xform "Lamp_VARIANTB"
        {
        }
    }

    def Scope "mtl"
    {
        def Material "Skin"
        {
        }
    }
}
`

func testHook() *Hook {
	return New(nsedit.DefaultSettings(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func statuses(rep *diag.Report) map[string]string {
	res := map[string]string{}
	for _, p := range rep.Phases {
		res[p.Phase] = p.Status.String()
	}
	return res
}

func exportedFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/out/Hero.usda", []byte(exported), 0o644); err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestPostExport(t *testing.T) {
	fs := exportedFs(t)
	doc, err := docio.ReadFile(fs, "/out/Hero.usda")
	if err != nil {
		t.Fatal(err)
	}
	handles := props.Handles{"/root/Hero": 1, "/root/mtl": 2}
	host := props.Table{1: {Kind: 4, Payload: true}, 2: nil}
	rep := testHook().PostExport(Input{Doc: doc, Handles: handles, Host: host})

	want := map[string]string{"properties": "ok", "strip": "ok", "variants": "ok"}
	if diff := cmp.Diff(want, statuses(rep)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	hero := doc.Lookup("/Hero")
	if hero == nil || hero.Kind != "component" || hero.CustomData["usePayload"] != true || doc.DefaultPrim != "Hero" {
		t.Fatalf("bad hero %+v", hero)
	}
	if got := hero.Rel("material:binding").Targets; !cmp.Equal(got, []scene.Path{"/Hero/mtl/Skin"}) {
		t.Errorf("binding %v", got)
	}
	vs := hero.VariantSet("modelVariant")
	if vs == nil || len(vs.Variants) != 2 || vs.Selection != "A" {
		t.Fatalf("bad variant set %+v", vs)
	}
	if doc.Lookup("/Hero/Lamp") == nil || hero.Child("Lamp_VARIANTA") != nil {
		t.Error("variant members not restructured")
	}
	if n := rep.Phase("variants").Counts["variants"]; n != 2 {
		t.Errorf("counted %d variants", n)
	}
}

type panicHost struct{}

func (panicHost) Holder(props.Handle) (*props.Holder, bool) {
	panic("host went away")
}

func TestPostExportIsolatesPhases(t *testing.T) {
	fs := exportedFs(t)
	doc, err := docio.ReadFile(fs, "/out/Hero.usda")
	if err != nil {
		t.Fatal(err)
	}
	rep := testHook().PostExport(Input{Doc: doc, Handles: props.Handles{"/root/Hero": 1}, Host: panicHost{}})
	want := map[string]string{"properties": "failed", "strip": "ok", "variants": "ok"}
	if diff := cmp.Diff(want, statuses(rep)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if !errors.Is(rep.Err(), diag.ErrPanic) {
		t.Errorf("got %v, want ErrPanic", rep.Err())
	}
	if doc.Lookup("/Hero/mtl") == nil {
		t.Error("strip did not run after a failed phase")
	}
}

func TestPostExportWithoutHostOrWrapper(t *testing.T) {
	doc := scene.NewDocument()
	doc.Define("/Hero", "Xform")
	rep := testHook().PostExport(Input{Doc: doc})
	want := map[string]string{"properties": "skipped", "strip": "skipped", "variants": "ok"}
	if diff := cmp.Diff(want, statuses(rep)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if rep.Err() != nil {
		t.Errorf("unexpected error %v", rep.Err())
	}
}

func TestFixupFile(t *testing.T) {
	fs := exportedFs(t)
	doc, rep := testHook().FixupFile(fs, "/out/Hero.usda", "/out/Hero.fixed.usda", nil, nil)
	if rep.Status() == diag.StatusFailed {
		t.Fatal(rep.Err())
	}
	if rep.Phase("write").Status != diag.StatusOK {
		t.Fatalf("write %s", rep.Phase("write").Status)
	}
	written, err := docio.ReadFile(fs, "/out/Hero.fixed.usda")
	if err != nil {
		t.Fatal(err)
	}
	if written.DefaultPrim != "Hero" || written.Lookup("/Hero/mtl/Skin") == nil || doc.Lookup("/root") != nil {
		t.Errorf("fixup not written, roots %v", written.RootNodes())
	}
}

func TestFixupFileUnreadable(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc, rep := testHook().FixupFile(fs, "/out/missing.usda", "/out/missing.usda", nil, nil)
	if doc != nil {
		t.Error("got a document")
	}
	want := map[string]string{"read": "failed", "properties": "skipped", "strip": "skipped", "variants": "skipped", "write": "skipped"}
	if diff := cmp.Diff(want, statuses(rep)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	var ioe *diag.IOError
	if !errors.As(rep.Err(), &ioe) || ioe.Op != "read" {
		t.Errorf("got %v, want a read IOError", rep.Err())
	}
}
