// Package tensorir provides a tensor IR with implicit-broadcast
// resolution and legalization into canonical same-shape form.
//
// Programs are straight-line SSA: a list of typed inputs, a list of
// operations, and a list of outputs. Binary elementwise operations may
// take operands of different shapes; the broadcast resolver decides
// whether the combination is legal and what shape it produces. The
// legalizer rewrites every such operation into an explicit
// reshape/broadcast_in_dim pair followed by a same-shape binary
// operation, so downstream consumers never deal with implicit
// broadcasting.
//
// Example usage:
//
//	source := `
//	input %0 : f32[3,4]
//	input %1 : f32[4]
//	%2 = add(%0, %1) : (f32[3,4], f32[4]) -> f32[3,4]
//	output %2
//	`
//	canonical, err := tensorir.Run(source, tensorir.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For more control, use the individual Parse/Validate/Legalize/Print
// functions, or the ir and legalize packages directly.
package tensorir

import (
	"github.com/pkg/errors"

	"github.com/gogpu/tensorir/ir"
	"github.com/gogpu/tensorir/legalize"
	"github.com/gogpu/tensorir/text"
)

// Options configures the Run pipeline.
type Options struct {
	// Validate enables IR validation before and after legalization.
	Validate bool

	// Legalize rewrites broadcasting operations into canonical
	// same-shape form. When false, Run only parses, validates, and
	// reprints the program.
	Legalize bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Validate: true,
		Legalize: true,
	}
}

// Run executes the full pipeline on textual input: parse, validate,
// legalize, validate the canonical result, and print it back.
func Run(source string, opts Options) (string, error) {
	program, err := Parse(source)
	if err != nil {
		return "", err
	}

	if opts.Validate {
		if err := Validate(program); err != nil {
			return "", err
		}
	}

	if opts.Legalize {
		program, err = Legalize(program)
		if err != nil {
			return "", err
		}
		if opts.Validate {
			if err := ValidateCanonical(program); err != nil {
				return "", err
			}
		}
	}

	return Print(program), nil
}

// Parse parses textual form into a program. Diagnostics cover both
// syntax and operation semantics (operand types, broadcast legality,
// declared result types); use text.Parse directly to inspect them
// individually with source positions.
func Parse(source string) (*ir.Program, error) {
	program, errs := text.Parse(source)
	if errs != nil {
		return nil, errors.Wrap(errs, "parse failed")
	}
	return program, nil
}

// Validate checks a program for well-formedness: operand ordering,
// broadcast legality, and stored result shapes.
func Validate(p *ir.Program) error {
	validationErrors, err := ir.Validate(p)
	if err != nil {
		return errors.Wrap(err, "validation failed")
	}
	if len(validationErrors) > 0 {
		return errors.Wrap(&validationErrors[0], "validation failed")
	}
	return nil
}

// ValidateCanonical checks a program the way Validate does, and
// additionally rejects any binary operation whose operands are not
// already the same shape.
func ValidateCanonical(p *ir.Program) error {
	validationErrors, err := ir.ValidateCanonical(p)
	if err != nil {
		return errors.Wrap(err, "canonical validation failed")
	}
	if len(validationErrors) > 0 {
		return errors.Wrap(&validationErrors[0], "canonical validation failed")
	}
	return nil
}

// Legalize rewrites every broadcasting binary operation into a
// reshape/broadcast_in_dim alignment followed by a same-shape binary
// operation. The input program is left untouched.
func Legalize(p *ir.Program) (*ir.Program, error) {
	out, err := legalize.Program(p)
	if err != nil {
		return nil, errors.Wrap(err, "legalization failed")
	}
	return out, nil
}

// Print renders a program in canonical textual form. The output
// round-trips through Parse byte-identically.
func Print(p *ir.Program) string {
	return text.Print(p)
}
