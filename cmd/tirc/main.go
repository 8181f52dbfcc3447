// Command tirc is the tensor IR legalizer CLI.
//
// Usage:
//
//	tirc [options] <input>
//
// Examples:
//
//	tirc program.tir                     # Parse, validate, legalize
//	tirc -o canonical.tir program.tir    # Write canonical form to a file
//	tirc -legalize=false program.tir     # Parse and reprint only
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/gogpu/tensorir"
	"github.com/gogpu/tensorir/text"
)

var (
	output   = flag.String("o", "", "output file (default: stdout)")
	legalize = flag.Bool("legalize", true, "rewrite broadcasting ops into canonical form")
	validate = flag.Bool("validate", true, "validate IR before and after legalization")
	version  = flag.Bool("version", false, "print version")
)

const tircVersion = "0.1.0-dev"

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()
	defer klog.Flush()

	if *version {
		fmt.Printf("tirc version %s\n", tircVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	opts := tensorir.Options{
		Validate: *validate,
		Legalize: *legalize,
	}
	canonical, err := tensorir.Run(string(source), opts)
	if err != nil {
		// Source-level diagnostics get the caret display; anything
		// else prints as a plain error.
		var diags text.SourceErrors
		if errors.As(err, &diags) {
			fmt.Fprint(os.Stderr, diags.FormatAll())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(canonical), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Print(canonical)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: tirc [options] <input.tir>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  tirc program.tir                  Legalize to stdout\n")
	fmt.Fprintf(os.Stderr, "  tirc -o out.tir program.tir       Legalize to a file\n")
	fmt.Fprintf(os.Stderr, "  tirc -legalize=false program.tir  Parse and reprint only\n")
}
