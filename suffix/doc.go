// Package suffix decodes the naming convention exporters use to mark
// purpose, variant and payload members of a sibling group.
//
// Names are read right to left:
//
//	Base[_VARIANT<tag>][_RENDER|_PROXY|_GUIDE][_PAYLOAD]
//
// Markers are matched case-insensitively. The variant tag is alphanumeric
// and defaults to "1" when empty. The purpose marker is removed before the
// variant marker so that it is never taken as part of the tag.
package suffix
