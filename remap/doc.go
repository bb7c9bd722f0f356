// Package remap rewrites the paths a document authors after part of its
// namespace has been relocated.
//
// Relocation moves nodes but leaves every path that pointed at them alone.
// A Rule describes where an old prefix went, and Apply rewrites
//
//   - relationship targets
//   - attribute connections
//   - inherit and specialize list-op entries, on class nodes too
//   - internal references and payloads (arcs without an asset)
//   - joint name tokens in skeleton joint arrays
//
// Lists are only re-authored when an entry actually changed.
package remap
