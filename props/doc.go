// Package props applies the properties an artist sets on host nodes to the
// nodes exported from them.
//
// The host hands over a map from exported node path to host node handle; a
// Host resolves a handle to the node's Holder, the attribute holder carrying
// the property values. Values use the host's enum codes: 0 and 1 mean
// "unset", the meaningful codes start at 2 (see the maps in props.go).
//
// GeomType and Payload are not scene properties: they are stored in custom
// data on the node for the assembler to read back.
package props
