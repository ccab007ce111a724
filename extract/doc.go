// Package extract decodes a physical expression tree into plain data.
//
// Extraction applies per-container policies: ordered containers are strict
// (any non-resolving element or inline expansion collapses the whole
// container to non-static), keyed containers are partial (non-resolving
// slots are silently omitted, the container itself never fails). Slots whose
// static label is a configured preserved key are intercepted before
// resolution: the expression is recorded in a side channel keyed by the
// slot's canonical path and a branded placeholder takes its place in the
// result.
package extract
