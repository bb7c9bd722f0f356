// Package nsedit relocates subtrees of a document and strips the synthetic
// wrapper node exporters put around their content.
//
// Relocation first tries the document's atomic batch move, which keeps node
// identity. When the batch is refused, each move is done as a deep copy
// followed by removal of the original. Copies are new nodes, so anything
// that relied on identity (shared instance encodings) is lost: results
// report this as degraded.
//
// Neither path rewrites the paths the document authors; StripWrapper runs
// a remap.Rule afterwards.
package nsedit
