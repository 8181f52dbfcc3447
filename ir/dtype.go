package ir

// DType is the element type of a tensor value.
type DType uint8

const (
	InvalidDType DType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float16
	BFloat16
	Float32
	Float64
)

var dtypeNames = [...]string{
	InvalidDType: "invalid",
	Bool:         "bool",
	Int8:         "i8",
	Int16:        "i16",
	Int32:        "i32",
	Int64:        "i64",
	Uint8:        "u8",
	Uint16:       "u16",
	Uint32:       "u32",
	Uint64:       "u64",
	Float16:      "f16",
	BFloat16:     "bf16",
	Float32:      "f32",
	Float64:      "f64",
}

// String returns the textual mnemonic of the dtype.
func (d DType) String() string {
	if int(d) >= len(dtypeNames) {
		return "invalid"
	}
	return dtypeNames[d]
}

// DTypeFromString returns the dtype named by the given mnemonic.
func DTypeFromString(name string) (DType, bool) {
	for d, n := range dtypeNames {
		if DType(d) != InvalidDType && n == name {
			return DType(d), true
		}
	}
	return InvalidDType, false
}

// IsInteger reports whether the dtype is a signed or unsigned integer type.
func (d DType) IsInteger() bool {
	return d >= Int8 && d <= Uint64
}

// IsFloat reports whether the dtype is a floating point type.
func (d DType) IsFloat() bool {
	return d >= Float16 && d <= Float64
}

// IsNumeric reports whether the dtype is an integer or floating point type.
func (d DType) IsNumeric() bool {
	return d.IsInteger() || d.IsFloat()
}
