package props

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cl0nazepamm/P-USDExporter/scene"
)

func TestTextureSource(t *testing.T) {
	tests := []struct {
		name string
		m    *TextureMap
		want TextureSource
		file string
	}{
		{"nil", nil, nil, ""},
		{"empty", &TextureMap{}, nil, ""},
		{"file", &TextureMap{Filename: "a.png"}, File{Filename: "a.png"}, "a.png"},
		{
			name: "file first",
			m:    &TextureMap{Filename: "a.png", HDRIMap: "sky.exr"},
			want: File{Filename: "a.png"},
			file: "a.png",
		},
		{
			name: "source map",
			m:    &TextureMap{SourceMap: &TextureMap{Filename: "b.png"}},
			want: SourceMap{Source: File{Filename: "b.png"}},
			file: "b.png",
		},
		{
			name: "empty source map falls through",
			m:    &TextureMap{SourceMap: &TextureMap{}, Bitmap: &TextureMap{Filename: "c.png"}},
			want: BitmapMap{Bitmap: File{Filename: "c.png"}},
			file: "c.png",
		},
		{"hdri", &TextureMap{HDRIMap: "sky.exr"}, HDRI{MapName: "sky.exr"}, "sky.exr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, ok := tt.m.Source()
			if ok != (tt.want != nil) {
				t.Fatalf("ok = %v", ok)
			}
			if diff := cmp.Diff(tt.want, src); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
			if !ok {
				return
			}
			if file, _ := FilePath(src); file != tt.file {
				t.Errorf("file %q, want %q", file, tt.file)
			}
		})
	}
}

func TestFilePathNested(t *testing.T) {
	deep := SourceMap{Source: SourceMap{Source: File{Filename: "a.png"}}}
	if p, ok := FilePath(deep); ok {
		t.Errorf("nested source map resolved to %q", p)
	}
	if _, ok := FilePath(nil); ok {
		t.Error("nil resolved")
	}
}

func TestHolderTexture(t *testing.T) {
	n := scene.NewNode("diffuse", "Shader")
	h := &Holder{Texture: &TextureMap{Bitmap: &TextureMap{Filename: "tex/wood.png"}}}
	if diff := cmp.Diff([]string{"texture=tex/wood.png"}, h.Apply(n)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	a := n.Attr(FileInput)
	if a == nil || a.Value != scene.Asset("tex/wood.png") || a.TypeName != "asset" {
		t.Errorf("file input %+v", a)
	}

	n = scene.NewNode("diffuse", "Shader")
	h = &Holder{Texture: &TextureMap{}}
	if set := h.Apply(n); len(set) != 0 || n.Attr(FileInput) != nil {
		t.Errorf("unresolved texture applied %v", set)
	}
}
