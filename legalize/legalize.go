// Package legalize rewrites broadcasting elementwise operations into
// the canonical same-shape form.
//
// Each client-facing binary operation whose operand shapes are not
// already identical is replaced by an explicit two-step alignment per
// operand — a reshape inserting degenerate axes at the result
// positions the operand does not cover, then a broadcast expanding
// every degenerate axis to the result extent — followed by the same
// operator over the two aligned, shape-identical operands. Separating
// insertion from expansion keeps each step's legality independently
// checkable: a reshape never changes the element count, a broadcast
// never reorders axes.
//
// Legalization only runs on programs that already passed validation;
// any resolver failure found here is a defect in the pass itself and
// aborts the whole program rather than surfacing as a user error.
package legalize

import (
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"

	"github.com/gogpu/tensorir/ir"
)

// Program returns an equivalent program in canonical form: every
// elementwise binary operation has shape-identical operands and no
// explicit dimension map. Already-canonical operations pass through
// unchanged, so the rewrite is idempotent. Consumers of a rewritten
// operation are rebound to the canonical operation's result.
func Program(p *ir.Program) (out *ir.Program, err error) {
	if p == nil {
		return nil, exceptions.TryCatch[error](func() {
			exceptions.Panicf("legalize: program is nil")
		})
	}
	err = exceptions.TryCatch[error](func() {
		out = rewrite(p)
	})
	return out, err
}

type rewriter struct {
	src *ir.Program
	b   *ir.Builder

	// remap rebinds each source value to its value in the rewritten
	// program.
	remap []ir.ValueID

	cache alignCache

	rewritten int
	reused    int
}

func rewrite(p *ir.Program) *ir.Program {
	rw := &rewriter{
		src:   p,
		b:     ir.NewBuilder(),
		remap: make([]ir.ValueID, p.NumValues()),
		cache: newAlignCache(),
	}

	for _, in := range p.Inputs {
		rw.b.Input(in)
	}
	for i := range p.Inputs {
		rw.remap[i] = ir.ValueID(i)
	}

	for i, op := range p.Ops {
		id := p.ResultID(i)
		switch op := op.(type) {
		case *ir.BinaryOp:
			rw.remap[id] = rw.rewriteBinary(i, op)
		case *ir.ReshapeOp:
			rw.remap[id] = rw.must(rw.b.Reshape(rw.remap[op.Operand], op.Out.Dims...))
		case *ir.BroadcastInDimOp:
			rw.remap[id] = rw.must(rw.b.BroadcastInDim(rw.remap[op.Operand], op.Dims, op.Out.Dims...))
		default:
			exceptions.Panicf("legalize: op %d has unknown kind %T", i, op)
		}
	}

	for _, id := range p.Outputs {
		rw.b.Output(rw.remap[id])
	}

	klog.V(1).Infof("legalize: %d of %d ops rewritten, %d alignment chains reused",
		rw.rewritten, len(p.Ops), rw.reused)
	return rw.b.Program()
}

func (rw *rewriter) rewriteBinary(index int, op *ir.BinaryOp) ir.ValueID {
	lhs := rw.shapeOf(op.LHS)
	rhs := rw.shapeOf(op.RHS)

	if lhs.Same(rhs) {
		// Already canonical. An identity dimension map, legal on
		// equal ranks, is dropped here.
		return rw.must(rw.b.Binary(op.Kind, rw.remap[op.LHS], rw.remap[op.RHS], nil))
	}

	out := op.Out
	alignedLHS := rw.align(op.LHS, lhs, rw.axisMap(lhs, rhs, op.Dims, out), out)
	alignedRHS := rw.align(op.RHS, rhs, rw.axisMap(rhs, lhs, op.Dims, out), out)
	rw.rewritten++
	klog.V(2).Infof("legalize: op %d (%s) %s, %s -> %s", index, op.Kind, lhs, rhs, out)
	return rw.must(rw.b.Binary(op.Kind, alignedLHS, alignedRHS, nil))
}

// axisMap returns, for one operand, the result axis each of its axes
// aligns to: the identity when the operand already has full rank, the
// explicit map when one was given for the lower-rank operand, and
// trailing alignment otherwise.
func (rw *rewriter) axisMap(operand, other ir.Shape, dims ir.BroadcastDims, out ir.Shape) ir.BroadcastDims {
	if operand.Rank() == out.Rank() {
		return identityDims(out.Rank())
	}
	if dims != nil && operand.Rank() < other.Rank() {
		return dims
	}
	return trailingDims(operand.Rank(), out.Rank())
}

// align brings one operand to the result shape: a reshape inserting
// degenerate axes when the ranks differ, then a broadcast expanding
// every remaining mismatched axis. Either step is skipped when it
// would be the identity. Identical requests within one pass reuse the
// previously emitted chain.
func (rw *rewriter) align(src ir.ValueID, from ir.Shape, axes ir.BroadcastDims, out ir.Shape) ir.ValueID {
	target := ir.MakeShape(from.DType, out.Dims...)
	if from.Same(target) {
		return rw.remap[src]
	}

	key := alignKeyOf(rw.remap[src], axes, target)
	if id, ok := rw.cache.lookup(key); ok {
		rw.reused++
		return id
	}

	cur := rw.remap[src]
	curShape := from
	if from.Rank() < out.Rank() {
		expanded := make([]ir.Dim, out.Rank())
		for i := range expanded {
			expanded[i] = 1
		}
		for i, axis := range axes {
			expanded[axis] = from.Dims[i]
		}
		cur = rw.must(rw.b.Reshape(cur, expanded...))
		curShape = ir.MakeShape(from.DType, expanded...)
	}
	if !curShape.Same(target) {
		cur = rw.must(rw.b.BroadcastInDim(cur, identityDims(out.Rank()), out.Dims...))
	}

	rw.cache.insert(key, cur)
	return cur
}

func (rw *rewriter) shapeOf(id ir.ValueID) ir.Shape {
	s, ok := rw.src.ValueShape(id)
	if !ok {
		exceptions.Panicf("legalize: value %%%d is not defined", id)
	}
	return s
}

// must converts builder errors into pass aborts: by the time the
// legalizer runs, the program has been validated, so the builder can
// only fail if the pass synthesized an ill-formed op.
func (rw *rewriter) must(id ir.ValueID, err error) ir.ValueID {
	if err != nil {
		exceptions.Panicf("legalize: synthesized an ill-formed op: %v", err)
	}
	return id
}

func identityDims(rank int) ir.BroadcastDims {
	dims := make(ir.BroadcastDims, rank)
	for i := range dims {
		dims[i] = i
	}
	return dims
}

func trailingDims(rank, resultRank int) ir.BroadcastDims {
	dims := make(ir.BroadcastDims, rank)
	for i := range dims {
		dims[i] = resultRank - rank + i
	}
	return dims
}
