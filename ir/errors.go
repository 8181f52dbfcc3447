package ir

import "fmt"

// IncompatibleShapesError reports two operand shapes whose aligned
// dimensions cannot be broadcast together: at the offending result
// axis both extents are static, unequal, and neither is 1.
type IncompatibleShapesError struct {
	// Op names the operation the shapes belong to, when known.
	Op       string
	LHS, RHS Shape
	Axis     int // result axis where the mismatch was found
}

func (e *IncompatibleShapesError) Error() string {
	msg := fmt.Sprintf("shapes %s and %s are not broadcast-compatible at result axis %d",
		e.LHS, e.RHS, e.Axis)
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// InvalidBroadcastDimsError reports a malformed or inapplicable
// explicit broadcast dimension map.
type InvalidBroadcastDimsError struct {
	// Op names the operation the map was attached to, when known.
	Op       string
	LHS, RHS Shape
	Dims     BroadcastDims
	Reason   string
}

func (e *InvalidBroadcastDimsError) Error() string {
	msg := fmt.Sprintf("invalid broadcast dimensions %v for shapes %s and %s: %s",
		[]int(e.Dims), e.LHS, e.RHS, e.Reason)
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// InvalidReshapeError reports a reshape that cannot preserve the
// element count of its operand.
type InvalidReshapeError struct {
	From, To Shape
}

func (e *InvalidReshapeError) Error() string {
	return fmt.Sprintf("cannot reshape %s to %s", e.From, e.To)
}

// DTypeMismatchError reports operand element types that violate the
// operator's requirement: either the two dtypes differ, or the common
// dtype is outside the operator's admissible set.
type DTypeMismatchError struct {
	Op       OpKind
	LHS, RHS DType
}

func (e *DTypeMismatchError) Error() string {
	if e.LHS != e.RHS {
		return fmt.Sprintf("%s: operand dtypes %s and %s must be identical", e.Op, e.LHS, e.RHS)
	}
	return fmt.Sprintf("%s: operand dtype %s is not %s", e.Op, e.LHS, e.Op.Constraint())
}
