// Package format names the serializations a scene document can be read from
// and written to.
//
// # Related Packages
//
//   - github.com/cl0nazepamm/P-USDExporter/usda - the text layer codec
//   - github.com/cl0nazepamm/P-USDExporter/docio - reading and writing documents by format
package format
