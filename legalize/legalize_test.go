package legalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/tensorir/ir"
)

func mustBinary(t *testing.T, b *ir.Builder, kind ir.OpKind, lhs, rhs ir.ValueID, dims ir.BroadcastDims) ir.ValueID {
	t.Helper()
	id, err := b.Binary(kind, lhs, rhs, dims)
	require.NoError(t, err)
	return id
}

func requireCanonical(t *testing.T, p *ir.Program) {
	t.Helper()
	errs, err := ir.ValidateCanonical(p)
	require.NoError(t, err)
	require.Empty(t, errs)
}

func TestProgram_NilInput(t *testing.T) {
	_, err := Program(nil)
	assert.Error(t, err)
}

func TestProgram_TrailingBroadcast(t *testing.T) {
	b := ir.NewBuilder()
	lhs := b.Input(ir.MakeShape(ir.Float32, 3, 4))
	rhs := b.Input(ir.MakeShape(ir.Float32, 4))
	sum := mustBinary(t, b, ir.OpAdd, lhs, rhs, nil)
	b.Output(sum)

	out, err := Program(b.Program())
	require.NoError(t, err)
	requireCanonical(t, out)

	// The rank-1 operand goes through reshape and broadcast before
	// the canonical add.
	require.Len(t, out.Ops, 3)
	reshape, ok := out.Ops[0].(*ir.ReshapeOp)
	require.True(t, ok)
	assert.True(t, reshape.Out.Same(ir.MakeShape(ir.Float32, 1, 4)))

	expand, ok := out.Ops[1].(*ir.BroadcastInDimOp)
	require.True(t, ok)
	assert.True(t, expand.Out.Same(ir.MakeShape(ir.Float32, 3, 4)))
	assert.Equal(t, ir.BroadcastDims{0, 1}, expand.Dims)

	add, ok := out.Ops[2].(*ir.BinaryOp)
	require.True(t, ok)
	assert.Nil(t, add.Dims)
	assert.True(t, add.Out.Same(ir.MakeShape(ir.Float32, 3, 4)))

	// The output tracks the rewritten op.
	require.Len(t, out.Outputs, 1)
	assert.Equal(t, out.ResultID(2), out.Outputs[0])
}

func TestProgram_DegenerateAxisExpansion(t *testing.T) {
	b := ir.NewBuilder()
	lhs := b.Input(ir.MakeShape(ir.Float32, 3, 1))
	rhs := b.Input(ir.MakeShape(ir.Float32, 3, 4))
	b.Output(mustBinary(t, b, ir.OpMultiply, lhs, rhs, nil))

	out, err := Program(b.Program())
	require.NoError(t, err)
	requireCanonical(t, out)

	// Full-rank operand skips the reshape: a broadcast alone expands
	// the degenerate axis.
	require.Len(t, out.Ops, 2)
	_, ok := out.Ops[0].(*ir.BroadcastInDimOp)
	assert.True(t, ok)
}

func TestProgram_ExplicitMapAlignment(t *testing.T) {
	// [3] aligns to the leading axis of [3,4] only through the map.
	b := ir.NewBuilder()
	lhs := b.Input(ir.MakeShape(ir.Float32, 3))
	rhs := b.Input(ir.MakeShape(ir.Float32, 3, 4))
	b.Output(mustBinary(t, b, ir.OpAdd, lhs, rhs, ir.BroadcastDims{0}))

	out, err := Program(b.Program())
	require.NoError(t, err)
	requireCanonical(t, out)

	require.Len(t, out.Ops, 3)
	reshape, ok := out.Ops[0].(*ir.ReshapeOp)
	require.True(t, ok)
	assert.True(t, reshape.Out.Same(ir.MakeShape(ir.Float32, 3, 1)))
}

func TestProgram_ScalarOperand(t *testing.T) {
	b := ir.NewBuilder()
	lhs := b.Input(ir.Scalar(ir.Float32))
	rhs := b.Input(ir.MakeShape(ir.Float32, 2, 3))
	b.Output(mustBinary(t, b, ir.OpMax, lhs, rhs, nil))

	out, err := Program(b.Program())
	require.NoError(t, err)
	requireCanonical(t, out)

	// Scalars take the same two-step chain: reshape to all-degenerate
	// rank, then expand.
	require.Len(t, out.Ops, 3)
	reshape, ok := out.Ops[0].(*ir.ReshapeOp)
	require.True(t, ok)
	assert.True(t, reshape.Out.Same(ir.MakeShape(ir.Float32, 1, 1)))
}

func TestProgram_CanonicalPassesThrough(t *testing.T) {
	b := ir.NewBuilder()
	lhs := b.Input(ir.MakeShape(ir.Float32, 3, 4))
	rhs := b.Input(ir.MakeShape(ir.Float32, 3, 4))
	b.Output(mustBinary(t, b, ir.OpAdd, lhs, rhs, nil))
	p := b.Program()

	out, err := Program(p)
	require.NoError(t, err)
	requireCanonical(t, out)
	require.Len(t, out.Ops, 1)

	// Idempotence: legalizing the canonical program changes nothing.
	again, err := Program(out)
	require.NoError(t, err)
	require.Len(t, again.Ops, 1)
}

func TestProgram_IdentityMapDropped(t *testing.T) {
	b := ir.NewBuilder()
	lhs := b.Input(ir.MakeShape(ir.Float32, 3, 4))
	rhs := b.Input(ir.MakeShape(ir.Float32, 3, 4))
	b.Output(mustBinary(t, b, ir.OpAdd, lhs, rhs, ir.BroadcastDims{0, 1}))

	out, err := Program(b.Program())
	require.NoError(t, err)
	requireCanonical(t, out)
	require.Len(t, out.Ops, 1)
	add, ok := out.Ops[0].(*ir.BinaryOp)
	require.True(t, ok)
	assert.Nil(t, add.Dims)
}

func TestProgram_AlignmentChainsReused(t *testing.T) {
	// Two adds broadcasting the same vector against the same matrix
	// shape reuse one reshape/broadcast chain.
	b := ir.NewBuilder()
	m := b.Input(ir.MakeShape(ir.Float32, 3, 4))
	v := b.Input(ir.MakeShape(ir.Float32, 4))
	first := mustBinary(t, b, ir.OpAdd, m, v, nil)
	second := mustBinary(t, b, ir.OpMultiply, first, v, nil)
	b.Output(second)

	out, err := Program(b.Program())
	require.NoError(t, err)
	requireCanonical(t, out)

	// One shared chain (reshape + broadcast) and two canonical ops.
	require.Len(t, out.Ops, 4)
	reshapes := 0
	for _, op := range out.Ops {
		if _, ok := op.(*ir.ReshapeOp); ok {
			reshapes++
		}
	}
	assert.Equal(t, 1, reshapes)
}

func TestProgram_DynamicDimsPreserved(t *testing.T) {
	b := ir.NewBuilder()
	lhs := b.Input(ir.MakeShape(ir.Float32, ir.DynamicDim, 4))
	rhs := b.Input(ir.MakeShape(ir.Float32, 4))
	b.Output(mustBinary(t, b, ir.OpAdd, lhs, rhs, nil))

	out, err := Program(b.Program())
	require.NoError(t, err)
	requireCanonical(t, out)

	last := out.Ops[len(out.Ops)-1].(*ir.BinaryOp)
	assert.True(t, last.Out.Same(ir.MakeShape(ir.Float32, ir.DynamicDim, 4)))
}

func TestProgram_DynamicSameShapeTerminates(t *testing.T) {
	// Two syntactically identical dynamic shapes are already
	// canonical; no alignment chain is emitted for them.
	b := ir.NewBuilder()
	lhs := b.Input(ir.MakeShape(ir.Float32, ir.DynamicDim, 4))
	rhs := b.Input(ir.MakeShape(ir.Float32, ir.DynamicDim, 4))
	b.Output(mustBinary(t, b, ir.OpAdd, lhs, rhs, nil))

	out, err := Program(b.Program())
	require.NoError(t, err)
	requireCanonical(t, out)
	require.Len(t, out.Ops, 1)
}

func TestProgram_SourceProgramUntouched(t *testing.T) {
	b := ir.NewBuilder()
	lhs := b.Input(ir.MakeShape(ir.Float32, 3, 4))
	rhs := b.Input(ir.MakeShape(ir.Float32, 4))
	b.Output(mustBinary(t, b, ir.OpAdd, lhs, rhs, nil))
	p := b.Program()

	_, err := Program(p)
	require.NoError(t, err)
	assert.Len(t, p.Ops, 1)
}
