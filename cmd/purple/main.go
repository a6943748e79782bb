// Command purple is the host entry point: a script runner when given
// exactly one file argument, otherwise an interactive read-compile-
// eval-print loop. It is the only consumer of the embedding API in
// this repository that is not a test.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/purple-lang/purple"
)

const (
	exitOK         = 0
	exitUsageError = 64
	exitCompile    = 65
	exitRuntime    = 70
	exitIOError    = 74
)

var (
	cellCount = flag.Int("cells", 1<<16, "number of arena cells")
	spans     = flag.Bool("spans", false, "record source spans during compilation, for annotated error traces")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "purple: expected at most one script path, got %d\n", len(args))
		flag.Usage()
		os.Exit(exitUsageError)
	}

	ctx, err := purple.Open(*cellCount, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "purple: failed to open context: %v\n", err)
		os.Exit(exitIOError)
	}
	defer ctx.Close()

	if err := ctx.InstallStdlib(); err != nil {
		fmt.Fprintf(os.Stderr, "purple: failed to install standard library: %v\n", err)
		os.Exit(exitIOError)
	}

	if *spans {
		ctx.EnableSpans()
	}
	ctx.OnError(reportError)

	if len(args) == 1 {
		os.Exit(runFile(ctx, args[0]))
		return
	}
	runREPL(ctx)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Purple - an embeddable Core+Front-End scripting language\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [options] [script]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nWith no script argument, starts an interactive REPL.\n")
}

// runFile reads and runs a curly-brace script, returning the process
// exit code: 65 if the source fails to compile (a genuine SyntaxError
// from the front-end), 70 if compilation succeeds but evaluation fails
// (NameError, TypeError, ArityError, and the like), 74 if the file
// cannot be read, 0 otherwise. Run already routes both failure stages
// through the installed ErrorHandler; KindOf tells them apart here so
// the two stages don't collapse onto the same exit code.
func runFile(ctx *purple.Context, path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "purple: %v\n", err)
		return exitIOError
	}
	if _, err := ctx.Run(string(data)); err != nil {
		if kind, ok := purple.KindOf(err); ok && kind == purple.SyntaxError {
			return exitCompile
		}
		return exitRuntime
	}
	return exitOK
}

func runREPL(ctx *purple.Context) {
	fmt.Println("purple - type an expression, or 'quit' to exit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("purple> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}
		v, err := ctx.Run(line)
		if err != nil {
			// The installed handler already printed a trace; a
			// recovering host keeps its REPL state usable, so the
			// loop simply continues to the next line.
			continue
		}
		fmt.Println(ctx.Write(v))
	}
}

func reportError(ctx *purple.Context, message string, callTrace []purple.Value) {
	fmt.Fprintf(os.Stderr, "error: %s\n", message)
	for _, frame := range callTrace {
		if sp, ok := ctx.SpanFor(frame); ok {
			fmt.Fprintf(os.Stderr, "  => %s  (%d:%d)\n", ctx.Write(frame), sp.StartLine, sp.StartCol)
			continue
		}
		fmt.Fprintf(os.Stderr, "  => %s\n", ctx.Write(frame))
	}
}
