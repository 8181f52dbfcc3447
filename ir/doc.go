// Package ir defines the intermediate representation for tensorir.
//
// The IR models programs as flat SSA lists of tensor values: a set of
// input declarations followed by operations, each producing exactly one
// value. The client-facing surface is the broadcasting elementwise
// binary operation, which tolerates operands of different rank and
// per-axis extent; the broadcast resolver decides legality and derives
// the result shape, the validator rejects ill-formed programs, and the
// legalize package rewrites broadcasting operations into the canonical
// same-shape form consumed by later compiler stages.
//
// Shapes, broadcast dimension maps, and operations are immutable once
// constructed. Result shapes are always derived through the resolver,
// never supplied independently; a stored result shape that disagrees
// with the resolver indicates a builder defect and aborts the pass.
package ir
