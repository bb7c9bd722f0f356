package props

import (
	"fmt"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// Table is a Host backed by a table of holders.
type Table map[Handle]*Holder

func (t Table) Holder(h Handle) (*Holder, bool) {
	holder, ok := t[h]
	return holder, ok
}

// Sidecar is a YAML file mapping node paths to holders, standing in for a
// host. A path mapped to null has a host node without properties.
type Sidecar map[string]*Holder

// Decode parses a sidecar.
func Decode(data []byte) (Sidecar, error) {
	s := Sidecar{}
	if err := yaml.UnmarshalWithOptions(data, &s, yaml.DisallowUnknownField()); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadSidecar reads the sidecar at path.
func ReadSidecar(fs afero.Fs, path string) (Sidecar, error) {
	d, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	s, err := Decode(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Host numbers the sidecar entries in path order and returns the handles
// and the host resolving them.
func (s Sidecar) Host() (Handles, Table, error) {
	handles := Handles{}
	table := Table{}
	for i, k := range slices.Sorted(maps.Keys(s)) {
		p, err := scene.ParsePath(k)
		if err != nil {
			return nil, nil, err
		}
		h := Handle(i + 1)
		handles[p] = h
		table[h] = s[k]
	}
	return handles, table, nil
}
