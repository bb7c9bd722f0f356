// Package docio reads and writes scene documents in every supported format
// over an afero.Fs.
//
// Text layers go through package usda. YAML and JSON use one tree form
// (prims with nested children) decoded with goccy/go-yaml; the JSON form is
// also the target of RFC 6902 patches (see Patch).
//
// Attribute values are restored to their scene types from the attribute
// type name when read from YAML or JSON. Values inside dictionaries (custom
// data, asset info) keep the generic types of the format.
package docio
