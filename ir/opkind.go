package ir

// OpKind identifies one elementwise binary operator.
type OpKind uint8

const (
	OpAdd OpKind = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpPower
	OpRemainder
	OpAtan2
	OpMax
	OpMin
	OpShiftLeft
	OpShiftRightArithmetic
	OpShiftRightLogical
	OpAnd
	OpOr
	OpXor

	numOpKinds // keep last
)

// DTypeConstraint is the element-type requirement an operator places
// on its two operands. All operators require the operand dtypes to be
// identical; the constraint restricts which dtypes are admissible.
type DTypeConstraint uint8

const (
	// ConstraintNumeric admits any integer or floating point dtype.
	ConstraintNumeric DTypeConstraint = iota
	// ConstraintInteger admits only integer dtypes.
	ConstraintInteger
	// ConstraintIntegerOrBool admits integer and boolean dtypes.
	ConstraintIntegerOrBool
)

// opInfo is one row of the operator catalog. The catalog is data, not
// syntax: the resolver and legalizer are generic over it, so adding an
// operator means adding a row, not a new code path.
type opInfo struct {
	mnemonic    string
	constraint  DTypeConstraint
	commutative bool
}

var opTable = [numOpKinds]opInfo{
	OpAdd:                  {"add", ConstraintNumeric, true},
	OpSubtract:             {"subtract", ConstraintNumeric, false},
	OpMultiply:             {"multiply", ConstraintNumeric, true},
	OpDivide:               {"divide", ConstraintNumeric, false},
	OpPower:                {"power", ConstraintNumeric, false},
	OpRemainder:            {"remainder", ConstraintNumeric, false},
	OpAtan2:                {"atan2", ConstraintNumeric, false},
	OpMax:                  {"max", ConstraintNumeric, true},
	OpMin:                  {"min", ConstraintNumeric, true},
	OpShiftLeft:            {"shift_left", ConstraintInteger, false},
	OpShiftRightArithmetic: {"shift_right_arithmetic", ConstraintInteger, false},
	OpShiftRightLogical:    {"shift_right_logical", ConstraintInteger, false},
	OpAnd:                  {"and", ConstraintIntegerOrBool, true},
	OpOr:                   {"or", ConstraintIntegerOrBool, true},
	OpXor:                  {"xor", ConstraintIntegerOrBool, true},
}

var opByMnemonic = func() map[string]OpKind {
	m := make(map[string]OpKind, numOpKinds)
	for kind := OpKind(0); kind < numOpKinds; kind++ {
		m[opTable[kind].mnemonic] = kind
	}
	return m
}()

// String returns the operator mnemonic.
func (k OpKind) String() string {
	if k >= numOpKinds {
		return "invalid"
	}
	return opTable[k].mnemonic
}

// Constraint returns the element-type requirement of the operator.
func (k OpKind) Constraint() DTypeConstraint { return opTable[k].constraint }

// Commutative reports whether swapping the operands preserves the
// operator's value semantics. Shape resolution is symmetric in the two
// shapes regardless of this flag.
func (k OpKind) Commutative() bool { return opTable[k].commutative }

// OpKindFromMnemonic returns the operator named by the given mnemonic.
func OpKindFromMnemonic(name string) (OpKind, bool) {
	kind, ok := opByMnemonic[name]
	return kind, ok
}

// Admits reports whether the constraint allows the given dtype.
func (c DTypeConstraint) Admits(d DType) bool {
	switch c {
	case ConstraintNumeric:
		return d.IsNumeric()
	case ConstraintInteger:
		return d.IsInteger()
	case ConstraintIntegerOrBool:
		return d.IsInteger() || d == Bool
	default:
		return false
	}
}

// String describes the constraint for diagnostics.
func (c DTypeConstraint) String() string {
	switch c {
	case ConstraintNumeric:
		return "numeric"
	case ConstraintInteger:
		return "integer"
	case ConstraintIntegerOrBool:
		return "integer or bool"
	default:
		return "invalid"
	}
}
