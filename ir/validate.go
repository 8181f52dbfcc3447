package ir

import (
	"fmt"

	"github.com/gomlx/exceptions"
)

// ValidationError represents one verification failure, with enough
// context to name the offending operation in diagnostics.
type ValidationError struct {
	Message string
	// Op is the index into Program.Ops, or -1 for program-level
	// errors.
	Op int
	// Cause holds the underlying resolver error, if any.
	Cause error
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Op >= 0 {
		return fmt.Sprintf("op %d: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap exposes the resolver error for errors.As.
func (e ValidationError) Unwrap() error { return e.Cause }

// Validate checks the program for well-formedness: operands reference
// earlier values, broadcasting binary operations resolve, and every
// synthesized alignment op obeys its own contract. Resolver failures
// are reported per op, so a caller can surface every diagnostic in
// one pass.
//
// A stored result shape that disagrees with the resolver is not a
// user error but a builder defect; it aborts verification with a
// panic through the exceptions package rather than being reported or
// silently corrected.
func Validate(p *Program) ([]ValidationError, error) {
	if p == nil {
		return nil, fmt.Errorf("program is nil")
	}

	v := &validator{p: p}
	v.run(false)

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateCanonical applies Validate and additionally enforces the
// canonical-form contract: every elementwise binary operation must
// have shape-identical operands and no explicit dimension map. The
// legalizer's output always satisfies this.
func ValidateCanonical(p *Program) ([]ValidationError, error) {
	if p == nil {
		return nil, fmt.Errorf("program is nil")
	}

	v := &validator{p: p}
	v.run(true)

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

type validator struct {
	p      *Program
	errors []ValidationError
}

func (v *validator) run(canonical bool) {
	for i, op := range v.p.Ops {
		v.validateOp(i, op, canonical)
	}
	for _, id := range v.p.Outputs {
		if int(id) >= v.p.NumValues() {
			v.addError(-1, nil, "output value %%%d does not exist", id)
		}
	}
}

func (v *validator) validateOp(index int, op Op, canonical bool) {
	limit := ValueID(len(v.p.Inputs) + index)
	for _, id := range op.Operands() {
		if id >= limit {
			v.addError(index, nil, "operand %%%d is not defined before its use", id)
			return
		}
	}

	switch op := op.(type) {
	case *BinaryOp:
		v.validateBinary(index, op, canonical)
	case *ReshapeOp:
		from, _ := v.p.ValueShape(op.Operand)
		if from.DType != op.Out.DType {
			v.addError(index, nil, "reshape changes the element type from %s to %s", from.DType, op.Out.DType)
			return
		}
		if err := CheckReshape(from, op.Out); err != nil {
			v.addError(index, err, "reshape: %s", err)
		}
	case *BroadcastInDimOp:
		from, _ := v.p.ValueShape(op.Operand)
		if from.DType != op.Out.DType {
			v.addError(index, nil, "broadcast_in_dim changes the element type from %s to %s", from.DType, op.Out.DType)
			return
		}
		if err := CheckBroadcastInDim(from, op.Out, op.Dims); err != nil {
			v.addError(index, err, "%s", err)
		}
	default:
		v.addError(index, nil, "unknown op kind %T", op)
	}
}

func (v *validator) validateBinary(index int, op *BinaryOp, canonical bool) {
	lhs, _ := v.p.ValueShape(op.LHS)
	rhs, _ := v.p.ValueShape(op.RHS)

	out, err := ResolveOp(op.Kind, lhs, rhs, op.Dims)
	if err != nil {
		v.addError(index, err, "%s", err)
		return
	}
	if !out.Same(op.Out) {
		// Never a user error: every construction path derives the
		// result through the resolver, so a mismatch means the
		// program was corrupted after construction.
		exceptions.Panicf("ir: op %d (%s) stores result shape %s but resolves to %s",
			index, op.Kind, op.Out, out)
	}

	if canonical {
		if op.Dims != nil {
			v.addError(index, nil, "%s: canonical form forbids explicit broadcast dimensions", op.Kind)
		}
		if !lhs.Same(rhs) {
			v.addError(index, nil, "%s: canonical form requires identical operand shapes, got %s and %s",
				op.Kind, lhs, rhs)
		}
	}
}

func (v *validator) addError(op int, cause error, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{
		Message: fmt.Sprintf(format, args...),
		Op:      op,
		Cause:   cause,
	})
}
