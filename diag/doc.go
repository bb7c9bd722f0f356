// Package diag holds the error kinds shared by the restructuring and
// assembly phases, and the report those phases add their results to.
//
// A ValidationError aborts only the branch it names, a ReferenceError
// degrades a node to an organizational container, and an IOError fails the
// enclosing phase. Phases run through Run, which turns panics into failed
// results so that later phases still run.
package diag
