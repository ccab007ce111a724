// Package keypath models logical paths into plain data and their canonical
// string keys.
//
// A logical path is a sequence of segments, each either a field name
// (keyed-container slot) or an index (ordered-container slot). The canonical
// encoding is stable and collision free:
//
//	$.spec.containers[0].name
//	$.'odd key'[2]
//	$.weights[NaN]
//
// Field segments always render with a leading '.', index segments always
// render bracketed, so a field named "NaN" ($.NaN) can never alias the
// non-finite index token ($[NaN]).
package keypath
