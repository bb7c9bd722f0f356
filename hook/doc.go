// Package hook is the post-export entry point: it runs once per export on
// the exported document, in three isolated phases.
//
//   - properties: host node properties are applied to the exported nodes
//   - strip: the synthetic wrapper node is removed and paths are remapped
//   - variants: variant marked siblings become variant sets
//
// Each phase reports a diag.PhaseResult; a phase that fails or panics does
// not stop the phases after it, which run on the document as it was left.
package hook
