package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"nfamatch/internal/syntax"
	"nfamatch/pkg/regex"
)

const usage = "usage: nfamatch [-find] [-all] [-ast] [-q] [-v] PATTERN [TEXT...]"

// A completed run exits with exitOK whether or not anything matched. With -q
// nothing is printed and the exit code follows grep: exitOK when anything
// matched, exitNoMatch when nothing did.
const (
	exitOK      = 0
	exitNoMatch = 1
	exitError   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	find    bool
	all     bool
	ast     bool
	quiet   bool
	verbose bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("nfamatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.find, "find", false, "print the leftmost-longest match span instead of true/false")
	fs.BoolVar(&opts.all, "all", false, "with -find, print every non-overlapping match span")
	fs.BoolVar(&opts.ast, "ast", false, "print the parsed pattern and exit")
	fs.BoolVar(&opts.quiet, "q", false, "print nothing; exit 0 if any text matched, 1 otherwise")
	fs.BoolVar(&opts.verbose, "v", false, "enable debug logging on stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return exitError
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	pattern := fs.Arg(0)

	if opts.ast {
		node, err := syntax.Parse(pattern)
		if err != nil {
			reportPatternError(stderr, pattern, err)
			return exitError
		}
		fmt.Fprintln(stdout, node.String())
		return exitOK
	}

	re, err := regex.Compile(pattern)
	if err != nil {
		reportPatternError(stderr, pattern, err)
		return exitError
	}
	logger.Debug("pattern compiled", "pattern", pattern, "nfa_states", re.NumStates())

	out := stdout
	if opts.quiet {
		out = io.Discard
	}
	found := false
	emit := func(text string) {
		if matchText(out, re, text, opts) {
			found = true
		}
	}

	if texts := fs.Args()[1:]; len(texts) > 0 {
		for _, text := range texts {
			emit(text)
		}
	} else {
		logger.Debug("reading stdin")
		scanner := bufio.NewScanner(stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			emit(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			logger.Error("reading stdin failed", "error", err)
			return exitError
		}
	}

	if opts.quiet && !found {
		return exitNoMatch
	}
	return exitOK
}

// matchText writes the result for one text and reports whether it matched.
func matchText(w io.Writer, re *regex.Regexp, text string, opts options) bool {
	if !opts.find {
		matched := re.MatchString(text)
		fmt.Fprintln(w, matched)
		return matched
	}

	limit := 1
	if opts.all {
		limit = -1
	}
	spans := re.FindAllStringIndex(text, limit)
	if len(spans) == 0 {
		fmt.Fprintln(w, "-")
		return false
	}

	parts := make([]string, len(spans))
	for i, s := range spans {
		parts[i] = fmt.Sprintf("%d-%d %q", s[0], s[1], text[s[0]:s[1]])
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
	return true
}

// reportPatternError prints err followed by the pattern with a caret under
// the offending character.
func reportPatternError(w io.Writer, pattern string, err error) {
	fmt.Fprintf(w, "nfamatch: %v\n", err)
	pos, ok := syntax.Position(err)
	if !ok {
		return
	}
	if pos > len(pattern) {
		pos = len(pattern)
	}
	col := utf8.RuneCountInString(pattern[:pos])
	fmt.Fprintf(w, "  %s\n  %s^\n", pattern, strings.Repeat(" ", col))
}
