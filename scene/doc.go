// Package scene provides the in-memory model of a layered scene-description
// document: a tree of nodes (prims) addressed by absolute paths, together with
// the document-level metadata that is serialized with it.
//
// # Nodes
//
// A Node carries
//
//   - a specifier (def, over or class) and a type name such as "Xform",
//   - prim metadata: kind, instanceable, active, custom data, asset info,
//   - composition arcs: references and payloads to other documents, and
//     inherit/specialize list operations that point at nodes of the same
//     document,
//   - attributes (typed values with optional connections) and relationships
//     (named, ordered lists of target paths),
//   - variant sets, each variant owning an edit scope,
//   - ordered children.
//
// Custom data is sidecar metadata: it is carried through every edit and
// serialization without interpretation.
//
// # Variant edit scopes
//
// Content authored inside a variant lives in the variant's Scope, itself a
// Node. A scope composes onto the node that owns the variant set, so the path
// of a scope is the path of its owner and the paths of the scope's children
// are children of the owner. Document.Lookup resolves through the selected
// variant of each set after the authored children.
//
// # Namespace edits
//
// Document.Move applies a batch of relocations atomically: the whole batch is
// validated against a simulated namespace first and either every move is
// applied or none is. Moving keeps node identity, so handles a host holds to a
// moved node stay valid. Document.Copy deep-copies a subtree and produces new
// nodes.
//
// Moves and copies never rewrite paths stored in relationships, connections or
// list operations; see package remap for that.
//
// # Thread Safety
//
// Documents are not safe for concurrent use. A document is owned by one pass
// at a time.
package scene
