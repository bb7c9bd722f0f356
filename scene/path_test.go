package scene

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePath(t *testing.T) {
	good := []string{"/", "/a", "/a/b_1", "/a/b.prop", "/a.x:y", "/_1/B2"}
	for _, s := range good {
		if _, err := ParsePath(s); err != nil {
			t.Errorf("ParsePath(%q): %v", s, err)
		}
	}
	bad := []string{"", "a/b", "/a/", "/a//b", "/1a", "/a.", "/a-b"}
	for _, s := range bad {
		if _, err := ParsePath(s); !errors.Is(err, ErrBadPath) {
			t.Errorf("ParsePath(%q): got %v, want ErrBadPath", s, err)
		}
	}
}

func TestPathParts(t *testing.T) {
	tests := []struct {
		path     Path
		prim     Path
		prop     string
		name     string
		parent   Path
		elements []string
	}{
		{"/", "/", "", "", "/", nil},
		{"/a", "/a", "", "a", "/", []string{"a"}},
		{"/a/b", "/a/b", "", "b", "/a", []string{"a", "b"}},
		{"/a/b.outputs:rgb", "/a/b", "outputs:rgb", "b", "/a/b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.path), func(t *testing.T) {
			if got := tt.path.PrimPath(); got != tt.prim {
				t.Errorf("PrimPath: got %q want %q", got, tt.prim)
			}
			if got := tt.path.Property(); got != tt.prop {
				t.Errorf("Property: got %q want %q", got, tt.prop)
			}
			if got := tt.path.Name(); got != tt.name {
				t.Errorf("Name: got %q want %q", got, tt.name)
			}
			if got := tt.path.Parent(); got != tt.parent {
				t.Errorf("Parent: got %q want %q", got, tt.parent)
			}
			if diff := cmp.Diff(tt.elements, tt.path.Elements()); diff != "" {
				t.Errorf("Elements (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHasPrefix(t *testing.T) {
	tests := []struct {
		p, prefix Path
		want      bool
	}{
		{"/root/Hero", "/root", true},
		{"/root", "/root", true},
		{"/root.prop", "/root", true},
		{"/rootX", "/root", false},
		{"/roo", "/root", false},
		{"/anything", "/", true},
		{"/root/mtl/Mat.outputs:surface", "/root/mtl", true},
	}
	for _, tt := range tests {
		if got := tt.p.HasPrefix(tt.prefix); got != tt.want {
			t.Errorf("%q.HasPrefix(%q) = %v, want %v", tt.p, tt.prefix, got, tt.want)
		}
	}
}

func TestReplacePrefix(t *testing.T) {
	tests := []struct {
		p, from, to Path
		want        Path
		ok          bool
	}{
		{"/root/Hero/Body", "/root", "/", "/Hero/Body", true},
		{"/root", "/root", "/", "/", true},
		{"/root.x", "/root", "/", "/.x", true},
		{"/root/mtl/M", "/root/mtl", "/Hero/mtl", "/Hero/mtl/M", true},
		{"/Hero/Body", "/", "/root", "/root/Hero/Body", true},
		{"/other/a", "/root", "/", "/other/a", false},
		{"/rootling", "/root", "/x", "/rootling", false},
	}
	for _, tt := range tests {
		got, ok := tt.p.ReplacePrefix(tt.from, tt.to)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%q.ReplacePrefix(%q, %q) = %q, %v; want %q, %v", tt.p, tt.from, tt.to, got, ok, tt.want, tt.ok)
		}
	}
}
