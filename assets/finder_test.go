package assets

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func memFs(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		if err := afero.WriteFile(fs, f, []byte("#usda 1.0\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func rels(files []File) []string {
	res := make([]string, len(files))
	for i, f := range files {
		res[i] = f.Rel
	}
	return res
}

func TestFinder(t *testing.T) {
	fs := memFs(t,
		"/export/Chair_RENDER.usda",
		"/export/Chair_PROXY.usda",
		"/export/props/Lamp.usda",
		"/export/props/deep/Lamp.usda",
		"/export/Table.json",
		"/export/Table.usda",
		"/export/export_stage.usda",
		"/export/notes.txt",
		"/export/_hierarchy.txt",
		"/export/_cache/Chair_RENDER.usda",
		"/export/.git/Lamp.usda",
	)
	f, err := NewFinder(fs, "/export")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Chair_PROXY.usda",
		"Chair_RENDER.usda",
		"Table.usda",
		"props/Lamp.usda",
	}
	if diff := cmp.Diff(want, rels(f.All())); diff != "" {
		t.Errorf("All (-want +got):\n%s", diff)
	}
	if f.Len() != 4 {
		t.Errorf("got %d names", f.Len())
	}
	lamp, ok := f.Find("Lamp")
	if !ok || lamp.Rel != "props/Lamp.usda" || lamp.Ref() != "./props/Lamp.usda" {
		t.Errorf("Lamp resolved to %+v", lamp)
	}
	if _, ok := f.Find("export_stage"); ok {
		t.Error("stage output was indexed")
	}
	if _, err := f.Lookup("Sofa"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestFinderOptions(t *testing.T) {
	fs := memFs(t,
		"/x/A.yaml",
		"/x/A.usda",
		"/x/_B.usda",
	)
	f, err := NewFinder(fs, "/x", Extensions("yaml", ".usda"), Ignore())
	if err != nil {
		t.Fatal(err)
	}
	a, _ := f.Find("A")
	if a.Rel != "A.yaml" {
		t.Errorf("got %s, want the yaml file", a.Rel)
	}
	if _, ok := f.Find("_B"); !ok {
		t.Error("_B ignored without ignore globs")
	}
}

func TestFinderErrors(t *testing.T) {
	fs := memFs(t, "/x/A.usda")
	if _, err := NewFinder(fs, "/x", Ignore("[")); !errors.Is(err, ErrBadPattern) {
		t.Errorf("got %v, want ErrBadPattern", err)
	}
	if _, err := NewFinder(fs, "/x/A.usda"); !errors.Is(err, ErrNotDir) {
		t.Errorf("got %v, want ErrNotDir", err)
	}
	if _, err := NewFinder(fs, "/nope"); err == nil {
		t.Error("missing root accepted")
	}
}

func TestScanPicksUpNewFiles(t *testing.T) {
	fs := memFs(t, "/x/A.usda")
	f, err := NewFinder(fs, "/x")
	if err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/x/B.usda", nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.Find("B"); ok {
		t.Fatal("found B before rescanning")
	}
	if err := f.Scan(); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.Find("B"); !ok {
		t.Error("B not found after rescanning")
	}
}
