package props

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cl0nazepamm/P-USDExporter/debug"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

const (
	GeomTypeKey   = "geomType"
	UsePayloadKey = "usePayload"
	VersionKey    = "version"
)

var (
	GeomTypes = map[int]string{2: "Xform", 3: "Scope"}
	Kinds     = map[int]string{2: "assembly", 3: "group", 4: "component", 5: "subcomponent", 6: "model"}
	Purposes  = map[int]string{2: "render", 3: "proxy", 4: "guide"}
	DrawModes = map[int]string{2: "bounds", 3: "origin", 4: "cards"}
)

// Holder is the property holder of a host node.
type Holder struct {
	GeomType     int    `yaml:"geomType,omitempty" json:"geomType,omitempty"`
	Kind         int    `yaml:"kind,omitempty" json:"kind,omitempty"`
	Purpose      int    `yaml:"purpose,omitempty" json:"purpose,omitempty"`
	Instanceable bool   `yaml:"instanceable,omitempty" json:"instanceable,omitempty"`
	Hidden       bool   `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Active       *bool  `yaml:"active,omitempty" json:"active,omitempty"`
	AssetVersion string `yaml:"assetVersion,omitempty" json:"assetVersion,omitempty"`
	DrawMode     int    `yaml:"drawMode,omitempty" json:"drawMode,omitempty"`
	Payload      bool   `yaml:"payload,omitempty" json:"payload,omitempty"`

	// Texture is set on texture shader nodes.
	Texture *TextureMap `yaml:"texture,omitempty" json:"texture,omitempty"`
}

// Handle identifies a host node.
type Handle uint64

// Handles maps exported node paths to the host nodes they came from.
type Handles map[scene.Path]Handle

// Host resolves host nodes.
type Host interface {
	// Holder returns the holder of the node h. ok is false if the node no
	// longer exists; a nil holder with ok true means the node carries no
	// properties.
	Holder(h Handle) (holder *Holder, ok bool)
}

// Apply writes holder values onto n and returns the names of what it set.
func (h *Holder) Apply(n *scene.Node) []string {
	var set []string
	if v, ok := GeomTypes[h.GeomType]; ok {
		n.SetCustomData(GeomTypeKey, v)
		set = append(set, "geomType="+v)
	}
	if v, ok := Kinds[h.Kind]; ok {
		n.Kind = v
		set = append(set, "kind="+v)
	}
	if v, ok := Purposes[h.Purpose]; ok {
		n.SetPurpose(v)
		set = append(set, "purpose="+v)
	}
	if h.Instanceable {
		n.SetInstanceable(true)
		set = append(set, "instanceable")
	}
	if h.Hidden {
		n.SetAttr(&scene.Attribute{Name: "visibility", TypeName: "token", Value: "invisible"})
		set = append(set, "hidden")
	}
	if h.Active != nil && !*h.Active {
		n.SetActive(false)
		set = append(set, "inactive")
	}
	if v := strings.TrimSpace(h.AssetVersion); v != "" {
		n.SetAssetInfo(VersionKey, v)
		set = append(set, "version="+v)
	}
	if v, ok := DrawModes[h.DrawMode]; ok {
		if !slices.Contains(n.APISchemas, "GeomModelAPI") {
			n.APISchemas = append(n.APISchemas, "GeomModelAPI")
		}
		n.SetAttr(&scene.Attribute{Name: "model:drawMode", TypeName: "token", Uniform: true, Value: v})
		set = append(set, "drawMode="+v)
	}
	if h.Payload {
		n.SetCustomData(UsePayloadKey, true)
		set = append(set, "payload")
	}
	if p, ok := applyTexture(n, h.Texture); ok {
		set = append(set, "texture="+p)
	}
	return set
}

// Result counts what Apply did.
type Result struct {
	Processed int
	// NoHolder counts nodes whose host node carries no properties.
	NoHolder int
	// Missing lists paths whose node is absent from the document or whose
	// host node is gone.
	Missing []scene.Path
}

// Apply applies the holders of the host nodes behind handles to doc, in
// path order.
func Apply(doc *scene.Document, handles Handles, host Host) *Result {
	res := &Result{}
	for _, p := range slices.Sorted(maps.Keys(handles)) {
		n := doc.Lookup(p)
		if n == nil {
			res.Missing = append(res.Missing, p)
			continue
		}
		h, ok := host.Holder(handles[p])
		if !ok {
			res.Missing = append(res.Missing, p)
			continue
		}
		if h == nil {
			res.NoHolder++
			continue
		}
		set := h.Apply(n)
		if debug.Props() {
			debug.Logf("props: %s: %s\n", p, strings.Join(set, " "))
		}
		res.Processed++
	}
	return res
}

func (r *Result) String() string {
	return fmt.Sprintf("processed %d, without properties %d, missing %d", r.Processed, r.NoHolder, len(r.Missing))
}
