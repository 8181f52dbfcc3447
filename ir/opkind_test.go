package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpKind_Commutative(t *testing.T) {
	commutative := map[OpKind]bool{
		OpAdd:      true,
		OpMultiply: true,
		OpMax:      true,
		OpMin:      true,
		OpAnd:      true,
		OpOr:       true,
		OpXor:      true,
	}
	for kind := OpKind(0); kind < numOpKinds; kind++ {
		assert.Equal(t, commutative[kind], kind.Commutative(), "operator %s", kind)
	}
}

func TestOpKind_Constraints(t *testing.T) {
	constraints := map[OpKind]DTypeConstraint{
		OpShiftLeft:            ConstraintInteger,
		OpShiftRightArithmetic: ConstraintInteger,
		OpShiftRightLogical:    ConstraintInteger,
		OpAnd:                  ConstraintIntegerOrBool,
		OpOr:                   ConstraintIntegerOrBool,
		OpXor:                  ConstraintIntegerOrBool,
	}
	for kind := OpKind(0); kind < numOpKinds; kind++ {
		// Arithmetic operators default to the numeric constraint.
		want, ok := constraints[kind]
		if !ok {
			want = ConstraintNumeric
		}
		assert.Equal(t, want, kind.Constraint(), "operator %s", kind)
	}
}

func TestOpKind_MnemonicRoundTrip(t *testing.T) {
	for kind := OpKind(0); kind < numOpKinds; kind++ {
		got, ok := OpKindFromMnemonic(kind.String())
		assert.True(t, ok, "mnemonic %s should resolve", kind)
		assert.Equal(t, kind, got)
	}
	_, ok := OpKindFromMnemonic("frobnicate")
	assert.False(t, ok)
	assert.Equal(t, "invalid", numOpKinds.String())
}

func TestResolveOp_SwapSymmetry(t *testing.T) {
	// Shape resolution is symmetric in its operands for every
	// operator, commutative or not; the flag describes value
	// semantics, never shape legality.
	lhs, rhs := sh(3, 1), sh(3, 4)
	for kind := OpKind(0); kind < numOpKinds; kind++ {
		dtype := Float32
		if kind.Constraint() != ConstraintNumeric {
			dtype = Int32
		}
		a := MakeShape(dtype, lhs.Dims...)
		b := MakeShape(dtype, rhs.Dims...)

		out, err := ResolveOp(kind, a, b, nil)
		assert.NoError(t, err, "operator %s", kind)
		swapped, err := ResolveOp(kind, b, a, nil)
		assert.NoError(t, err, "operator %s swapped", kind)
		assert.True(t, out.Same(swapped), "operator %s: %s vs %s", kind, out, swapped)
	}
}
