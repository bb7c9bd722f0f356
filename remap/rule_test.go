package remap

import (
	"testing"

	"github.com/cl0nazepamm/P-USDExporter/scene"
)

func TestRemap(t *testing.T) {
	strip := Rule{StripPrefix: "/root"}
	nest := Rule{StripPrefix: "/root", NestTarget: "Hero", MaterialNames: []string{"mtl", "Looks"}}
	skel := Rule{StripPrefix: "/root/Scene_Hero", Replacement: "/root"}
	keep := Rule{StripPrefix: "/root", Keep: []scene.Path{"/root/Prop"}}
	tests := []struct {
		name string
		rule Rule
		in   scene.Path
		want scene.Path
		ok   bool
	}{
		{"under prefix", strip, "/root/Hero/Body", "/Hero/Body", true},
		{"prefix itself", strip, "/root", "/", true},
		{"property", strip, "/root/mtl/Skin/Tex.outputs:rgb", "/mtl/Skin/Tex.outputs:rgb", true},
		{"outside", strip, "/other/Hero", "/other/Hero", false},
		{"sibling with shared text", strip, "/rootless/Hero", "/rootless/Hero", false},
		{"nested material", nest, "/root/mtl/Skin", "/Hero/mtl/Skin", true},
		{"nested material scope", nest, "/root/Looks", "/Hero/Looks", true},
		{"nested material property", nest, "/root/mtl/Skin/Tex.outputs:rgb", "/Hero/mtl/Skin/Tex.outputs:rgb", true},
		{"material-like prefix", nest, "/root/mtlx/Skin", "/mtlx/Skin", true},
		{"content under nest rule", nest, "/root/Hero/Body", "/Hero/Body", true},
		{"replacement", skel, "/root/Scene_Hero/Hips", "/root/Hips", true},
		{"replacement exact", skel, "/root/Scene_Hero", "/root", true},
		{"replacement outside", skel, "/root/Bones", "/root/Bones", false},
		{"kept subtree", keep, "/root/Prop/Leg", "/root/Prop/Leg", false},
		{"kept node property", keep, "/root/Prop.size", "/root/Prop.size", false},
		{"beside kept subtree", keep, "/root/Props/Leg", "/Props/Leg", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.rule.Remap(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Remap(%s) = %s, %t; want %s, %t", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRemapToken(t *testing.T) {
	live := map[scene.Path]bool{
		"/Hero":           true,
		"/Hero/Hips":      true,
		"/Hero/Hips/Knee": true,
		"/Solo":           true,
	}
	exists := func(p scene.Path) bool { return live[p] }
	tests := []struct {
		name string
		rule Rule
		tok  string
		want string
	}{
		{"absolute", Rule{StripPrefix: "/root"}, "/root/Hero/Hips", "/Hero/Hips"},
		{"relative keeps style", Rule{StripPrefix: "/root"}, "root/Hero/Hips", "Hero/Hips"},
		{"relative prefix", Rule{StripPrefix: "/root/Scene_Hero", Replacement: "/root", RelativePrefix: "Scene_Hero"}, "Scene_Hero/Hips", "Hips"},
		{"content root", Rule{StripPrefix: "/root", ContentRoot: "Hero"}, "Hips/Knee", "Hero/Hips/Knee"},
		{"content root absolute", Rule{StripPrefix: "/root", ContentRoot: "Hero"}, "/Hips", "/Hero/Hips"},
		{"resolves already", Rule{StripPrefix: "/root", ContentRoot: "Hero"}, "Solo", "Solo"},
		{"unresolvable", Rule{StripPrefix: "/root", ContentRoot: "Hero"}, "Spine", "Spine"},
		{"no content root", Rule{StripPrefix: "/root"}, "Hips", "Hips"},
		{"empty", Rule{StripPrefix: "/root"}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.RemapToken(tt.tok, exists); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
