package docio

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/goccy/go-yaml"

	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// Patch applies an RFC 6902 JSON patch to the JSON tree form of doc and
// returns the patched document. doc is not modified. The patch may be given
// in JSON or YAML.
func Patch(doc *scene.Document, patch []byte) (*scene.Document, error) {
	pj, err := yaml.YAMLToJSON(patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPatch, err)
	}
	ops, err := jsonpatch.DecodePatch(pj)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPatch, err)
	}
	d, err := MarshalJSON(doc)
	if err != nil {
		return nil, err
	}
	out, err := ops.Apply(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPatch, err)
	}
	t := &Tree{}
	if err := yaml.Unmarshal(out, t); err != nil {
		return nil, fmt.Errorf("%w: patched document: %w", ErrBadDocument, err)
	}
	return FromTree(t)
}
