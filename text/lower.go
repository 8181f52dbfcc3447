package text

import (
	"github.com/gogpu/tensorir/ir"
)

// Parse parses and lowers source text into a validated-by-construction
// program. Every diagnostic found while parsing or lowering is
// reported; the program is returned only when there are none.
func Parse(source string) (*ir.Program, SourceErrors) {
	file, errs := NewParser(source).Parse()
	if errs != nil {
		return nil, errs
	}
	return Lower(file, source)
}

// Lower turns a syntactically valid File into a Program, checking the
// semantic contract of every operation: operand types must match the
// operation's declared types, broadcasting operations must resolve,
// and every declared result type must equal the derived one. Each
// failing operation is reported and skipped over using its declared
// result type, so a single error does not suppress diagnostics for
// the rest of the program.
func Lower(file *File, source string) (*ir.Program, SourceErrors) {
	l := &lowerer{file: file, source: source}
	return l.run()
}

type lowerer struct {
	file   *File
	source string
	errors SourceErrors

	shapes []ir.Shape
	ops    []ir.Op
}

func (l *lowerer) run() (*ir.Program, SourceErrors) {
	p := &ir.Program{}

	for _, in := range l.file.Inputs {
		p.Inputs = append(p.Inputs, in.Shape)
		l.shapes = append(l.shapes, in.Shape)
	}

	for i := range l.file.Ops {
		l.lowerOp(&l.file.Ops[i])
	}

	for _, out := range l.file.Outputs {
		if out.ID < 0 || out.ID >= len(l.shapes) {
			l.errorf(out.Span, "output references undefined value %%%d", out.ID)
			continue
		}
		p.Outputs = append(p.Outputs, ir.ValueID(out.ID))
	}

	if len(l.errors) > 0 {
		return nil, l.errors
	}
	p.Ops = l.ops
	return p, nil
}

func (l *lowerer) lowerOp(decl *OpDecl) {
	argShapes, ok := l.checkArgs(decl)

	var out ir.Shape
	var op ir.Op
	if ok {
		out, op = l.buildOp(decl, argShapes)
	}
	if op == nil {
		// The declared result type stands in for the failed
		// operation so later operations still get checked.
		out = decl.ResultType
	}
	l.shapes = append(l.shapes, out)
	l.ops = append(l.ops, op)
}

// checkArgs verifies operand references and their declared types.
func (l *lowerer) checkArgs(decl *OpDecl) ([]ir.Shape, bool) {
	ok := true
	argShapes := make([]ir.Shape, len(decl.Args))
	for i, arg := range decl.Args {
		if arg < 0 || arg >= decl.ID {
			l.errorf(decl.Span, "%s: operand %%%d is not defined before its use", decl.Mnemonic, arg)
			ok = false
			continue
		}
		argShapes[i] = l.shapes[arg]
		if !argShapes[i].Same(decl.ArgTypes[i]) {
			l.errorf(decl.Span, "%s: operand %%%d has type %s, but the operation declares %s",
				decl.Mnemonic, arg, argShapes[i], decl.ArgTypes[i])
			ok = false
		}
	}
	return argShapes, ok
}

// buildOp checks one operation's semantics and constructs its IR node.
// A nil op means a diagnostic was reported.
func (l *lowerer) buildOp(decl *OpDecl, argShapes []ir.Shape) (ir.Shape, ir.Op) {
	switch decl.Mnemonic {
	case MnemonicReshape:
		return l.buildReshape(decl, argShapes)
	case MnemonicBroadcastInDim:
		return l.buildBroadcastInDim(decl, argShapes)
	}

	kind, known := ir.OpKindFromMnemonic(decl.Mnemonic)
	if !known {
		l.errorf(decl.Span, "unknown operation %q", decl.Mnemonic)
		return ir.Shape{}, nil
	}
	if len(decl.Args) != 2 {
		l.errorf(decl.Span, "%s expects 2 operands, got %d", decl.Mnemonic, len(decl.Args))
		return ir.Shape{}, nil
	}

	var dims ir.BroadcastDims
	if decl.HasDims {
		dims = ir.BroadcastDims(decl.Dims)
	}
	out, err := ir.ResolveOp(kind, argShapes[0], argShapes[1], dims)
	if err != nil {
		l.errorf(decl.Span, "%s", err)
		return ir.Shape{}, nil
	}
	if !out.Same(decl.ResultType) {
		l.errorf(decl.Span, "%s: declared result type %s does not match the derived type %s",
			decl.Mnemonic, decl.ResultType, out)
		return ir.Shape{}, nil
	}
	return out, &ir.BinaryOp{
		Kind: kind,
		LHS:  ir.ValueID(decl.Args[0]),
		RHS:  ir.ValueID(decl.Args[1]),
		Dims: dims.Clone(),
		Out:  out,
	}
}

func (l *lowerer) buildReshape(decl *OpDecl, argShapes []ir.Shape) (ir.Shape, ir.Op) {
	if len(decl.Args) != 1 {
		l.errorf(decl.Span, "reshape expects 1 operand, got %d", len(decl.Args))
		return ir.Shape{}, nil
	}
	if decl.HasDims {
		l.errorf(decl.Span, "reshape takes no broadcast_dims attribute")
		return ir.Shape{}, nil
	}
	from, to := argShapes[0], decl.ResultType
	if from.DType != to.DType {
		l.errorf(decl.Span, "reshape cannot change the element type (%s to %s)", from.DType, to.DType)
		return ir.Shape{}, nil
	}
	if err := ir.CheckReshape(from, to); err != nil {
		l.errorf(decl.Span, "reshape: %s", err)
		return ir.Shape{}, nil
	}
	return to, &ir.ReshapeOp{Operand: ir.ValueID(decl.Args[0]), Out: to}
}

func (l *lowerer) buildBroadcastInDim(decl *OpDecl, argShapes []ir.Shape) (ir.Shape, ir.Op) {
	if len(decl.Args) != 1 {
		l.errorf(decl.Span, "broadcast_in_dim expects 1 operand, got %d", len(decl.Args))
		return ir.Shape{}, nil
	}
	if !decl.HasDims {
		l.errorf(decl.Span, "broadcast_in_dim requires a broadcast_dims attribute")
		return ir.Shape{}, nil
	}
	from, to := argShapes[0], decl.ResultType
	if from.DType != to.DType {
		l.errorf(decl.Span, "broadcast_in_dim cannot change the element type (%s to %s)", from.DType, to.DType)
		return ir.Shape{}, nil
	}
	dims := ir.BroadcastDims(decl.Dims)
	if err := ir.CheckBroadcastInDim(from, to, dims); err != nil {
		l.errorf(decl.Span, "%s", err)
		return ir.Shape{}, nil
	}
	return to, &ir.BroadcastInDimOp{Operand: ir.ValueID(decl.Args[0]), Dims: dims.Clone(), Out: to}
}

func (l *lowerer) errorf(span Span, format string, args ...any) {
	l.errors = append(l.errors, NewSourceErrorf(span, l.source, format, args...))
}
