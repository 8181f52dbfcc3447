package ir

import (
	"strconv"
	"strings"
)

// Dim is the extent of a tensor along one axis: a non-negative static
// size, or DynamicDim when the size is unknown until runtime.
type Dim int64

// DynamicDim marks an axis whose extent is unknown.
const DynamicDim Dim = -1

// IsDynamic reports whether the dimension is the dynamic marker.
func (d Dim) IsDynamic() bool { return d < 0 }

// IsDegenerate reports whether the dimension has static extent 1,
// making it eligible for implicit broadcast expansion.
func (d Dim) IsDegenerate() bool { return d == 1 }

// String prints the dimension, using "?" for dynamic extents.
func (d Dim) String() string {
	if d.IsDynamic() {
		return "?"
	}
	return strconv.FormatInt(int64(d), 10)
}

// Shape describes a tensor value: its element type and the ordered
// extents of its axes. Rank 0 is a scalar. Shapes are immutable once
// constructed; no operation on a single Shape fails. Legality is a
// property of a pair of shapes, decided by the broadcast resolver.
type Shape struct {
	DType DType
	Dims  []Dim
}

// MakeShape builds a shape from the given dtype and dimensions.
func MakeShape(dtype DType, dims ...Dim) Shape {
	s := Shape{DType: dtype}
	if len(dims) > 0 {
		s.Dims = make([]Dim, len(dims))
		copy(s.Dims, dims)
	}
	return s
}

// Scalar returns the rank-0 shape of the given dtype.
func Scalar(dtype DType) Shape { return Shape{DType: dtype} }

// Rank returns the number of axes.
func (s Shape) Rank() int { return len(s.Dims) }

// IsScalar reports whether the shape has rank 0.
func (s Shape) IsScalar() bool { return len(s.Dims) == 0 }

// Dim returns the extent of the given axis.
func (s Shape) Dim(axis int) Dim { return s.Dims[axis] }

// IsDynamic reports whether the extent of the given axis is unknown.
func (s Shape) IsDynamic(axis int) bool { return s.Dims[axis].IsDynamic() }

// HasDynamic reports whether any axis has unknown extent.
func (s Shape) HasDynamic() bool {
	for _, d := range s.Dims {
		if d.IsDynamic() {
			return true
		}
	}
	return false
}

// Equal compares dtype and dimensions structurally. Dynamic extents
// compare unequal to everything, themselves included, reflecting that
// two unknown sizes need not agree.
func (s Shape) Equal(other Shape) bool {
	if !s.Same(other) {
		return false
	}
	return !s.HasDynamic()
}

// Same compares dtype and dimensions syntactically: two dynamic
// markers at the same axis count as the same. This is the equality the
// legalizer and the canonical-form check use, where a value compared
// against itself must match.
func (s Shape) Same(other Shape) bool {
	if s.DType != other.DType || len(s.Dims) != len(other.Dims) {
		return false
	}
	for i, d := range s.Dims {
		if d != other.Dims[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	return MakeShape(s.DType, s.Dims...)
}

// String prints the shape as the dtype followed by the bracketed
// dimension list; scalars print as the bare dtype.
func (s Shape) String() string {
	if s.IsScalar() {
		return s.DType.String()
	}
	var sb strings.Builder
	sb.WriteString(s.DType.String())
	sb.WriteByte('[')
	for i, d := range s.Dims {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(d.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
