// Package treepatch applies a consolidated patch plan to the physical
// expression tree, leaf by leaf.
//
// Only existing slots are touched: a set overwrites a slot's value
// expression (or fills an array hole), a delete removes a keyed-container
// slot or clears an ordered-container slot to a hole. No structure is ever
// inserted. Preserved-key slots are never descended into. Patches that
// cannot be physically applied remain in the result for zero-tolerance
// reporting.
package treepatch
