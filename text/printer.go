package text

import (
	"strconv"
	"strings"

	"github.com/gomlx/exceptions"

	"github.com/gogpu/tensorir/ir"
)

// Print renders a program in the canonical textual form. The output
// parses back to the same program, and printing that program again
// yields byte-identical text.
func Print(p *ir.Program) string {
	pr := &printer{program: p}
	return pr.print()
}

type printer struct {
	program *ir.Program
	sb      strings.Builder
	shapes  []ir.Shape
}

func (pr *printer) print() string {
	for i, in := range pr.program.Inputs {
		pr.shapes = append(pr.shapes, in)
		pr.sb.WriteString("input ")
		pr.value(i)
		pr.sb.WriteString(" : ")
		pr.sb.WriteString(in.String())
		pr.sb.WriteByte('\n')
	}
	for i, op := range pr.program.Ops {
		pr.op(len(pr.program.Inputs)+i, op)
	}
	for _, out := range pr.program.Outputs {
		pr.sb.WriteString("output ")
		pr.value(int(out))
		pr.sb.WriteByte('\n')
	}
	return pr.sb.String()
}

func (pr *printer) op(id int, op ir.Op) {
	pr.value(id)
	pr.sb.WriteString(" = ")

	var mnemonic string
	var dims ir.BroadcastDims
	var hasDims bool
	switch op := op.(type) {
	case *ir.BinaryOp:
		mnemonic = op.Kind.String()
		dims, hasDims = op.Dims, op.Dims != nil
	case *ir.ReshapeOp:
		mnemonic = MnemonicReshape
	case *ir.BroadcastInDimOp:
		mnemonic = MnemonicBroadcastInDim
		dims, hasDims = op.Dims, true
	default:
		exceptions.Panicf("text: cannot print op of type %T", op)
	}

	pr.sb.WriteString(mnemonic)
	pr.sb.WriteByte('(')
	operands := op.Operands()
	for i, arg := range operands {
		if i > 0 {
			pr.sb.WriteString(", ")
		}
		pr.value(int(arg))
	}
	pr.sb.WriteByte(')')

	if hasDims {
		pr.sb.WriteString(" {broadcast_dims = [")
		for i, d := range dims {
			if i > 0 {
				pr.sb.WriteByte(',')
			}
			pr.sb.WriteString(strconv.Itoa(d))
		}
		pr.sb.WriteString("]}")
	}

	pr.sb.WriteString(" : (")
	for i, arg := range operands {
		if i > 0 {
			pr.sb.WriteString(", ")
		}
		pr.sb.WriteString(pr.shapes[arg].String())
	}
	pr.sb.WriteString(") -> ")
	out := op.Result()
	pr.sb.WriteString(out.String())
	pr.sb.WriteByte('\n')

	pr.shapes = append(pr.shapes, out)
}

func (pr *printer) value(id int) {
	pr.sb.WriteByte('%')
	pr.sb.WriteString(strconv.Itoa(id))
}
