// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"pine/internal/codegen"
	"pine/internal/errors"
	"pine/internal/parser"
)

const (
	exitOK      = 0
	exitCompile = 1
	exitIO      = 2
	exitUsage   = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("pine", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		output     string
		printOut   bool
		verbose    bool
		dumpTokens string
		dumpAST    string
	)
	fs.StringVar(&output, "o", "", "output assembly path (default: input with .s extension)")
	fs.StringVar(&output, "output", "", "output assembly path (default: input with .s extension)")
	fs.BoolVar(&printOut, "p", false, "write assembly to standard output instead of a file")
	fs.BoolVar(&printOut, "print", false, "write assembly to standard output instead of a file")
	fs.BoolVar(&verbose, "v", false, "emit phase-progress lines to standard error")
	fs.BoolVar(&verbose, "verbose", false, "emit phase-progress lines to standard error")
	fs.StringVar(&dumpTokens, "dump-tokens", "", "write the token stream to PATH")
	fs.StringVar(&dumpAST, "dump-ast", "", "write a typed AST dump to PATH")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pine [options] <file.pine>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}

	path := fs.Arg(0)
	if !strings.HasSuffix(path, ".pine") {
		fmt.Fprintf(os.Stderr, "input file must have the .pine extension: %s\n", path)
		return exitUsage
	}

	verbosity := 0
	if verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)
	logger := commonlog.GetLogger("pine.cli")

	startTime := time.Now()

	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", path, err)
		return exitIO
	}
	source := string(raw)
	reporter := errors.NewReporter(path, source)

	fail := func(compileErr error) int {
		if ce, ok := compileErr.(*errors.CompileError); ok {
			fmt.Fprint(os.Stderr, reporter.Format(ce))
		} else {
			fmt.Fprintln(os.Stderr, compileErr)
		}
		color.Red("Compilation failed after %s", formatDuration(time.Since(startTime)))
		return exitCompile
	}

	if dumpTokens != "" {
		logger.Infof("lexing %s", path)
		tokens, err := parser.NewScanner(source).ScanTokens()
		if err != nil {
			return fail(err)
		}
		if err := os.WriteFile(dumpTokens, []byte(formatTokens(tokens)), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", dumpTokens, err)
			return exitIO
		}
	}

	logger.Infof("parsing %s", path)
	program, symbols, pool, err := parser.ParseSource(source)
	if err != nil {
		return fail(err)
	}

	if dumpAST != "" {
		if err := os.WriteFile(dumpAST, []byte(program.String()), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", dumpAST, err)
			return exitIO
		}
	}

	logger.Infof("generating code for %d statements", len(program.Stmts))
	asm, err := codegen.NewGenerator(codegen.Venus).Generate(program, symbols, pool)
	if err != nil {
		return fail(err)
	}

	if printOut {
		fmt.Print(asm)
		return exitOK
	}

	outPath := output
	if outPath == "" {
		outPath = strings.TrimSuffix(path, ".pine") + ".s"
	}
	if err := os.WriteFile(outPath, []byte(asm), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", outPath, err)
		return exitIO
	}

	color.Green("Successfully compiled %s to %s in %s", path, outPath, formatDuration(time.Since(startTime)))
	return exitOK
}

func formatTokens(tokens []parser.Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		fmt.Fprintf(&b, "%s %q [%d:%d) line %d\n",
			tok.Type, tok.Lexeme, tok.Span.Start, tok.Span.End, tok.Span.Line)
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
