package assemble

import (
	"github.com/cl0nazepamm/P-USDExporter/props"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// Meta is what the assembly reads from the entry node of a source document.
type Meta struct {
	// Entry is the path of the node Meta was read from.
	Entry        scene.Path
	Kind         string
	Instanceable *bool
	CustomData   map[string]any
}

// GeomType returns the node type requested by the custom data, "Xform" or
// "Scope", or "".
func (m Meta) GeomType() string {
	s, _ := m.CustomData[props.GeomTypeKey].(string)
	switch s {
	case "Xform", "Scope":
		return s
	}
	return ""
}

// UsePayload reports whether the document asks to be loaded as a payload.
func (m Meta) UsePayload() bool {
	switch x := m.CustomData[props.UsePayloadKey].(type) {
	case bool:
		return x
	case int64:
		return x != 0
	}
	return false
}

// ReadMeta reads the metadata of the entry node of doc: the default prim,
// else the root node called name, else the first root node. ok is false if
// doc has no root node.
func ReadMeta(doc *scene.Document, name string) (m Meta, ok bool) {
	n := entry(doc, name)
	if n == nil {
		return Meta{}, false
	}
	return Meta{
		Entry:        n.Path(),
		Kind:         n.Kind,
		Instanceable: n.Instanceable,
		CustomData:   scene.CloneMap(n.CustomData),
	}, true
}

func entry(doc *scene.Document, name string) *scene.Node {
	if n := doc.DefaultNode(); n != nil {
		return n
	}
	if scene.ValidName(name) {
		if n := doc.Root().Child(name); n != nil {
			return n
		}
	}
	if roots := doc.RootNodes(); len(roots) != 0 {
		return roots[0]
	}
	return nil
}
