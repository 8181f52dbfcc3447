package ir

import "fmt"

// BroadcastDims is an explicit dimension correspondence for the
// lower-rank operand of a broadcasting binary operation: entry i names
// the result axis that axis i of the lower-rank operand aligns to.
// Entries must be strictly increasing. A nil map means implicit
// trailing alignment (the lower-rank operand is right-aligned under
// the higher-rank one).
type BroadcastDims []int

// Clone returns a copy of the map; nil stays nil.
func (d BroadcastDims) Clone() BroadcastDims {
	if d == nil {
		return nil
	}
	out := make(BroadcastDims, len(d))
	copy(out, d)
	return out
}

// IsIdentity reports whether the map is [0, 1, ..., len-1].
func (d BroadcastDims) IsIdentity() bool {
	for i, axis := range d {
		if axis != i {
			return false
		}
	}
	return true
}

// ResolveOp decides the legality of one broadcasting binary operation
// and derives its result shape. It is a pure function of its inputs:
// the operator kind fixes the element-type requirement, the two
// operand shapes and the optional dimension map fix the result
// extents. Errors are *DTypeMismatchError, *IncompatibleShapesError,
// or *InvalidBroadcastDimsError.
func ResolveOp(kind OpKind, lhs, rhs Shape, dims BroadcastDims) (Shape, error) {
	dtype, err := resolveDType(kind, lhs.DType, rhs.DType)
	if err != nil {
		return Shape{}, err
	}
	out, err := ResolveBroadcast(lhs, rhs, dims)
	if err != nil {
		// Diagnostics name the operator, not just the shapes.
		switch e := err.(type) {
		case *IncompatibleShapesError:
			e.Op = kind.String()
		case *InvalidBroadcastDimsError:
			e.Op = kind.String()
		}
		return Shape{}, err
	}
	out.DType = dtype
	return out, nil
}

// resolveDType checks the operator's element-type requirement. The
// two operand dtypes must be identical and admissible for the
// operator; the result dtype is the common input dtype.
func resolveDType(kind OpKind, lhs, rhs DType) (DType, error) {
	if lhs != rhs || !kind.Constraint().Admits(lhs) {
		return InvalidDType, &DTypeMismatchError{Op: kind, LHS: lhs, RHS: rhs}
	}
	return lhs, nil
}

// ResolveBroadcast computes the broadcast-combined shape of two
// operand shapes, ignoring element types (the result carries the lhs
// dtype). Two aligned dimensions are compatible when they are equal,
// either is dynamic, or either is 1; the combined extent is the
// non-degenerate one when exactly one is 1, the common extent when
// both agree, and dynamic when either side is dynamic.
func ResolveBroadcast(lhs, rhs Shape, dims BroadcastDims) (Shape, error) {
	small, large := lhs, rhs
	if lhs.Rank() > rhs.Rank() {
		small, large = rhs, lhs
	}
	var out []Dim
	var err error
	if dims == nil {
		out, err = broadcastTrailing(lhs, rhs, small, large)
	} else {
		out, err = broadcastMapped(lhs, rhs, small, large, dims)
	}
	if err != nil {
		return Shape{}, err
	}
	return Shape{DType: lhs.DType, Dims: out}, nil
}

// broadcastTrailing right-aligns the lower-rank operand under the
// higher-rank one and combines the aligned pairs. Leading axes of the
// higher-rank operand pass through unchanged.
func broadcastTrailing(lhs, rhs, small, large Shape) ([]Dim, error) {
	out := make([]Dim, large.Rank())
	copy(out, large.Dims)
	offset := large.Rank() - small.Rank()
	for i, d := range small.Dims {
		combined, ok := combineDims(d, large.Dims[offset+i])
		if !ok {
			return nil, &IncompatibleShapesError{LHS: lhs, RHS: rhs, Axis: offset + i}
		}
		out[offset+i] = combined
	}
	return out, nil
}

// broadcastMapped aligns the lower-rank operand through an explicit
// dimension map. Result axes not named by the map are taken verbatim
// from the higher-rank operand; every failure on this path, including
// a dimension mismatch at a mapped axis, is an invalid-map error.
func broadcastMapped(lhs, rhs, small, large Shape, dims BroadcastDims) ([]Dim, error) {
	invalid := func(format string, args ...any) error {
		return &InvalidBroadcastDimsError{
			LHS:    lhs,
			RHS:    rhs,
			Dims:   dims.Clone(),
			Reason: fmt.Sprintf(format, args...),
		}
	}
	if len(dims) != small.Rank() {
		return nil, invalid("map length %d does not match lower operand rank %d", len(dims), small.Rank())
	}
	if lhs.Rank() == rhs.Rank() && !dims.IsIdentity() {
		// Explicit correspondence is only meaningful when ranks
		// differ; for equal ranks only the identity map is accepted.
		return nil, invalid("equal-rank operands allow only the identity map")
	}
	out := make([]Dim, large.Rank())
	copy(out, large.Dims)
	prev := -1
	for i, axis := range dims {
		if axis < 0 || axis >= large.Rank() {
			return nil, invalid("entry %d (%d) is outside the result rank %d", i, axis, large.Rank())
		}
		if axis <= prev {
			return nil, invalid("entries must be strictly increasing, got %d after %d", axis, prev)
		}
		prev = axis
		combined, ok := combineDims(small.Dims[i], large.Dims[axis])
		if !ok {
			return nil, invalid("dimension %s of the lower operand is incompatible with result axis %d (%s)",
				small.Dims[i], axis, large.Dims[axis])
		}
		out[axis] = combined
	}
	return out, nil
}

// combineDims merges two aligned extents, reporting false when they
// are static, unequal, and neither is 1.
func combineDims(a, b Dim) (Dim, bool) {
	switch {
	case a == b:
		return a, true
	case a.IsDegenerate():
		return b, true
	case b.IsDegenerate():
		return a, true
	case a.IsDynamic() || b.IsDynamic():
		return DynamicDim, true
	default:
		return 0, false
	}
}
