// Package libdiff computes structural diffs between two plain-data trees.
//
// The result is an ordered list of Create/Change/Remove events with full
// logical paths. Within one level, removals and changes precede creations;
// keyed-container keys are visited in sorted order so output is
// deterministic.
//
//	events := libdiff.Diff(prev, next, nil)
//
// Ordered containers follow a configurable policy: recursed index-by-index,
// treated atomically (a single Change decided by reference or shallow
// equality), or ignored. The default, atomic with reference equality, pairs
// with the overlay merger's atomic array replacement; changing one side of
// that pairing silently breaks diff-target alignment.
package libdiff
