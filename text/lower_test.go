package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/tensorir/ir"
)

func TestParse_BroadcastAdd(t *testing.T) {
	p, errs := Parse(broadcastAddSource)
	require.Nil(t, errs)
	require.Len(t, p.Inputs, 2)
	require.Len(t, p.Ops, 1)

	add, ok := p.Ops[0].(*ir.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ir.OpAdd, add.Kind)
	assert.Nil(t, add.Dims)
	assert.True(t, add.Out.Same(ir.MakeShape(ir.Float32, 3, 4)))
	assert.Equal(t, []ir.ValueID{2}, p.Outputs)
}

func TestParse_AlignmentOps(t *testing.T) {
	source := `input %0 : f32[4]
%1 = reshape(%0) : (f32[4]) -> f32[1,4]
%2 = broadcast_in_dim(%1) {broadcast_dims = [0,1]} : (f32[1,4]) -> f32[3,4]
output %2
`
	p, errs := Parse(source)
	require.Nil(t, errs)
	require.Len(t, p.Ops, 2)

	reshape, ok := p.Ops[0].(*ir.ReshapeOp)
	require.True(t, ok)
	assert.True(t, reshape.Out.Same(ir.MakeShape(ir.Float32, 1, 4)))

	expand, ok := p.Ops[1].(*ir.BroadcastInDimOp)
	require.True(t, ok)
	assert.Equal(t, ir.BroadcastDims{0, 1}, expand.Dims)
}

func TestParse_ExplicitDimsOnBinary(t *testing.T) {
	source := `input %0 : f32[3]
input %1 : f32[3,4]
%2 = add(%0, %1) {broadcast_dims = [0]} : (f32[3], f32[3,4]) -> f32[3,4]
output %2
`
	p, errs := Parse(source)
	require.Nil(t, errs)
	add := p.Ops[0].(*ir.BinaryOp)
	assert.Equal(t, ir.BroadcastDims{0}, add.Dims)
}

func TestParse_SemanticErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"unknown mnemonic",
			"input %0 : f32\n%1 = frobnicate(%0, %0) : (f32, f32) -> f32\noutput %1\n",
			"unknown operation",
		},
		{
			"undefined operand",
			"input %0 : f32\n%1 = add(%0, %9) : (f32, f32) -> f32\noutput %1\n",
			"not defined before its use",
		},
		{
			"declared operand type mismatch",
			"input %0 : f32[4]\n%1 = add(%0, %0) : (f32[4], f32[5]) -> f32[4]\noutput %1\n",
			"declares",
		},
		{
			"incompatible shapes",
			"input %0 : f32[3]\ninput %1 : f32[4]\n%2 = add(%0, %1) : (f32[3], f32[4]) -> f32[4]\noutput %2\n",
			"not broadcast-compatible",
		},
		{
			"declared result mismatch",
			"input %0 : f32[4]\n%1 = add(%0, %0) : (f32[4], f32[4]) -> f32[1,4]\noutput %1\n",
			"does not match the derived type",
		},
		{
			"reshape with dims attr",
			"input %0 : f32[4]\n%1 = reshape(%0) {broadcast_dims = [0]} : (f32[4]) -> f32[1,4]\noutput %1\n",
			"no broadcast_dims attribute",
		},
		{
			"reshape dtype change",
			"input %0 : f32[4]\n%1 = reshape(%0) : (f32[4]) -> i32[1,4]\noutput %1\n",
			"element type",
		},
		{
			"broadcast_in_dim without dims",
			"input %0 : f32[1,4]\n%1 = broadcast_in_dim(%0) : (f32[1,4]) -> f32[3,4]\noutput %1\n",
			"requires a broadcast_dims attribute",
		},
		{
			"undefined output",
			"input %0 : f32\noutput %4\n",
			"undefined value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := Parse(tt.source)
			require.NotNil(t, errs)
			assert.Contains(t, errs.Error(), tt.want)
		})
	}
}

func TestParse_ContinuesPastFailedOp(t *testing.T) {
	// The failed add is diagnosed, and the op after it is still
	// checked against the declared result type of the failed one.
	source := `input %0 : f32[3]
input %1 : f32[4]
%2 = add(%0, %1) : (f32[3], f32[4]) -> f32[4]
%3 = multiply(%2, %2) : (f32[5], f32[5]) -> f32[5]
output %3
`
	_, errs := Parse(source)
	require.NotNil(t, errs)
	assert.Len(t, errs, 3)
}
