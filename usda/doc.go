// Package usda reads and writes the text form of scene layers.
//
// The supported subset is what exporters and the assembler author:
//
//   - layer metadata (defaultPrim, upAxis, metersPerUnit, frame rates and
//     the time code range, doc, customLayerData),
//   - def, over and class prims with a type name,
//   - prim metadata: kind, instanceable, active, customData, assetInfo,
//     apiSchemas, references, payload, inherits, specializes, variant
//     selections and variant set names,
//   - attributes with default values, connections and time samples,
//   - relationships,
//   - variant sets whose variants hold metadata, properties and prims.
//
// Prim metadata outside this list is kept in Node.Metadata. Layer metadata
// outside it is dropped.
//
// # Usage
//
//	doc, err := usda.Parse(data, usda.ParseFile("Hero.usda"))
//	...
//	err = usda.Encode(doc, os.Stdout, usda.EncodeColors(usda.NewColors()))
//
// # Related Packages
//
//   - github.com/cl0nazepamm/P-USDExporter/scene - the document model
//   - github.com/cl0nazepamm/P-USDExporter/docio - format dispatch over a filesystem
package usda
