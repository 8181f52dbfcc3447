package text

import "github.com/gogpu/tensorir/ir"

// File is the syntactic form of one program: input declarations,
// then operations, then outputs. The parser checks syntax and value
// numbering only; shape legality is decided during lowering.
type File struct {
	Inputs  []InputDecl
	Ops     []OpDecl
	Outputs []OutputDecl
}

// InputDecl is one `input %N : type` line.
type InputDecl struct {
	ID    int
	Shape ir.Shape
	Span  Span
}

// OpDecl is one `%N = mnemonic(args) {attrs} : (argTypes) -> resultType` line.
type OpDecl struct {
	ID       int
	Mnemonic string
	Args     []int
	// Dims holds the broadcast_dims attribute; HasDims distinguishes
	// an absent attribute from an empty list (a scalar expansion).
	Dims       []int
	HasDims    bool
	ArgTypes   []ir.Shape
	ResultType ir.Shape
	Span       Span
}

// OutputDecl is one `output %N` line.
type OutputDecl struct {
	ID   int
	Span Span
}

// Mnemonics of the ops the legalizer synthesizes. The elementwise
// binary mnemonics come from the operator catalog in the ir package.
const (
	MnemonicReshape        = "reshape"
	MnemonicBroadcastInDim = "broadcast_in_dim"
)
