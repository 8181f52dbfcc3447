package ir

import (
	"fmt"

	"github.com/gomlx/exceptions"
)

// ValueID references one SSA value of a Program. Values are numbered
// with the inputs first, followed by one result per operation, in
// order.
type ValueID uint32

// Program is one compilation unit: input value declarations followed
// by an SSA-ordered list of operations. Operands always reference
// earlier values, so a single forward pass sees every definition
// before its uses.
type Program struct {
	// Inputs holds the shapes of the entry values.
	Inputs []Shape

	// Ops holds the operations; Ops[i] produces value
	// ValueID(len(Inputs)+i).
	Ops []Op

	// Outputs names the values the program yields.
	Outputs []ValueID
}

// NumValues returns the number of values the program defines.
func (p *Program) NumValues() int { return len(p.Inputs) + len(p.Ops) }

// ResultID returns the value produced by Ops[i].
func (p *Program) ResultID(i int) ValueID { return ValueID(len(p.Inputs) + i) }

// ValueShape returns the shape of the given value, or false when the
// id is out of range.
func (p *Program) ValueShape(id ValueID) (Shape, bool) {
	if int(id) < len(p.Inputs) {
		return p.Inputs[id], true
	}
	if int(id) < p.NumValues() {
		return p.Ops[int(id)-len(p.Inputs)].Result(), true
	}
	return Shape{}, false
}

// Op is one operation of a Program. Every op produces exactly one
// value whose shape was derived at construction time.
type Op interface {
	// Result returns the derived result shape stored on the op.
	Result() Shape
	// Operands returns the value ids the op consumes.
	Operands() []ValueID

	opNode()
}

// BinaryOp is the client-facing elementwise binary operation. Its
// operand shapes may disagree in rank and per-axis extent; Dims
// optionally states the axis correspondence for the lower-rank
// operand. After legalization every BinaryOp has nil Dims and
// shape-identical operands.
type BinaryOp struct {
	Kind     OpKind
	LHS, RHS ValueID
	Dims     BroadcastDims
	Out      Shape
}

func (o *BinaryOp) Result() Shape       { return o.Out }
func (o *BinaryOp) Operands() []ValueID { return []ValueID{o.LHS, o.RHS} }
func (*BinaryOp) opNode()               {}

// ReshapeOp reinterprets its operand under a new dimension list of the
// same element count. The legalizer emits it to insert degenerate axes
// at result positions the operand does not cover.
type ReshapeOp struct {
	Operand ValueID
	Out     Shape
}

func (o *ReshapeOp) Result() Shape       { return o.Out }
func (o *ReshapeOp) Operands() []ValueID { return []ValueID{o.Operand} }
func (*ReshapeOp) opNode()               {}

// BroadcastInDimOp expands its operand to the result shape: entry i of
// Dims names the result axis operand axis i maps to, and every
// operand extent must equal the target extent, be 1, or be dynamic.
// The legalizer emits it to materialize degenerate-axis expansion.
type BroadcastInDimOp struct {
	Operand ValueID
	Dims    BroadcastDims
	Out     Shape
}

func (o *BroadcastInDimOp) Result() Shape       { return o.Out }
func (o *BroadcastInDimOp) Operands() []ValueID { return []ValueID{o.Operand} }
func (*BroadcastInDimOp) opNode()               {}

// Builder constructs a Program. Result shapes are always derived
// through the resolver; a builder never stores a caller-supplied
// result shape. Misuse that no well-formed caller can trigger, such
// as referencing an undefined value, panics through the exceptions
// package rather than returning an error.
type Builder struct {
	p Program
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

// Input declares an entry value of the given shape. Inputs must be
// declared before any operation is added.
func (b *Builder) Input(s Shape) ValueID {
	if len(b.p.Ops) > 0 {
		exceptions.Panicf("ir.Builder: input declared after %d op(s)", len(b.p.Ops))
	}
	b.p.Inputs = append(b.p.Inputs, s.Clone())
	return ValueID(len(b.p.Inputs) - 1)
}

// Binary appends a broadcasting elementwise operation, deriving the
// result shape through the resolver. Resolver failures are returned
// to the caller, who may report the diagnostic and continue.
func (b *Builder) Binary(kind OpKind, lhs, rhs ValueID, dims BroadcastDims) (ValueID, error) {
	lhsShape := b.shapeOf(lhs)
	rhsShape := b.shapeOf(rhs)
	out, err := ResolveOp(kind, lhsShape, rhsShape, dims)
	if err != nil {
		return 0, err
	}
	return b.append(&BinaryOp{Kind: kind, LHS: lhs, RHS: rhs, Dims: dims.Clone(), Out: out}), nil
}

// Reshape appends a reshape to the given dimension list. The element
// count must be preserved; when dynamic extents are involved the
// dimension lists must agree after dropping degenerate axes.
func (b *Builder) Reshape(operand ValueID, dims ...Dim) (ValueID, error) {
	from := b.shapeOf(operand)
	to := MakeShape(from.DType, dims...)
	if err := CheckReshape(from, to); err != nil {
		return 0, err
	}
	return b.append(&ReshapeOp{Operand: operand, Out: to}), nil
}

// BroadcastInDim appends an expansion of the operand to the given
// dimension list, with Dims naming the result axis of each operand
// axis.
func (b *Builder) BroadcastInDim(operand ValueID, dims BroadcastDims, outDims ...Dim) (ValueID, error) {
	from := b.shapeOf(operand)
	to := MakeShape(from.DType, outDims...)
	if err := CheckBroadcastInDim(from, to, dims); err != nil {
		return 0, err
	}
	return b.append(&BroadcastInDimOp{Operand: operand, Dims: dims.Clone(), Out: to}), nil
}

// Output marks a value as a program result.
func (b *Builder) Output(id ValueID) {
	b.shapeOf(id) // range check
	b.p.Outputs = append(b.p.Outputs, id)
}

// Program returns the built program. The builder must not be used
// afterwards.
func (b *Builder) Program() *Program {
	p := b.p
	b.p = Program{}
	return &p
}

func (b *Builder) append(op Op) ValueID {
	b.p.Ops = append(b.p.Ops, op)
	return ValueID(b.p.NumValues() - 1)
}

func (b *Builder) shapeOf(id ValueID) Shape {
	s, ok := b.p.ValueShape(id)
	if !ok {
		exceptions.Panicf("ir.Builder: value %%%d is not defined (program has %d values)", id, b.p.NumValues())
	}
	return s
}

// CheckReshape verifies that a reshape preserves the element count.
// With dynamic extents the count is unknowable, so the rule tightens
// to what the legalizer needs: both sides must list the same non-1
// extents in the same order.
func CheckReshape(from, to Shape) error {
	if from.HasDynamic() || to.HasDynamic() {
		if !equalDims(dropDegenerate(from.Dims), dropDegenerate(to.Dims)) {
			return &InvalidReshapeError{From: from, To: to}
		}
		return nil
	}
	if elementCount(from.Dims) != elementCount(to.Dims) {
		return &InvalidReshapeError{From: from, To: to}
	}
	return nil
}

// CheckBroadcastInDim verifies the expansion map: one strictly
// increasing in-range entry per operand axis, and the operand extent
// at each mapped axis compatible with the target extent.
func CheckBroadcastInDim(from, to Shape, dims BroadcastDims) error {
	invalid := func(format string, args ...any) error {
		return &InvalidBroadcastDimsError{
			Op:     "broadcast_in_dim",
			LHS:    from,
			RHS:    to,
			Dims:   dims.Clone(),
			Reason: fmt.Sprintf(format, args...),
		}
	}
	if len(dims) != from.Rank() {
		return invalid("map length %d does not match operand rank %d", len(dims), from.Rank())
	}
	prev := -1
	for i, axis := range dims {
		if axis < 0 || axis >= to.Rank() {
			return invalid("entry %d (%d) is outside the result rank %d", i, axis, to.Rank())
		}
		if axis <= prev {
			return invalid("entries must be strictly increasing, got %d after %d", axis, prev)
		}
		prev = axis
		src, dst := from.Dims[i], to.Dims[axis]
		// An operand extent may pass through unchanged, expand from 1,
		// or stay unresolved when either side is dynamic. Shrinking a
		// static extent is never an expansion.
		if src != dst && !src.IsDegenerate() && !src.IsDynamic() && !dst.IsDynamic() {
			return invalid("operand dimension %s cannot expand to result axis %d (%s)", src, axis, dst)
		}
	}
	return nil
}

func elementCount(dims []Dim) int64 {
	n := int64(1)
	for _, d := range dims {
		n *= int64(d)
	}
	return n
}

func dropDegenerate(dims []Dim) []Dim {
	out := make([]Dim, 0, len(dims))
	for _, d := range dims {
		if !d.IsDegenerate() {
			out = append(out, d)
		}
	}
	return out
}

func equalDims(a, b []Dim) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
