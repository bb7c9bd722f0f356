// Package variants turns sibling nodes named with a variant marker into a
// variant set on their parent.
//
//	/Set/Teapot_VARIANTA
//	/Set/Teapot_VARIANTB
//
// becomes /Set with a variant set whose variants A and B each hold a copy
// of the corresponding member, renamed Teapot. The first member found is
// selected.
package variants
