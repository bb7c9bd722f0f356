// Package assets discovers the per-object documents of an export directory.
//
// A Finder walks the directory once and indexes every document by its file
// name stem, which is the name the hierarchy table and the suffix grammar
// talk about. Files and directories matching an ignore glob are skipped, as
// are the assembled outputs (stems ending in "_stage") so that a directory
// can be assembled repeatedly.
//
// When the same stem exists more than once, the shallowest file wins, then
// the earliest extension in the configured list, then the lexically first
// path.
package assets
