package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Logger carries the output mode flags and the two streams every command
// writes to: out for payload, err for commentary.
type Logger struct {
	out     io.Writer
	err     io.Writer
	json    bool
	quiet   bool
	verbose bool
}

type loggerKey struct{}

// DefaultLogger writes to the process streams with every mode flag off.
func DefaultLogger() Logger {
	return NewLogger(os.Stdout, os.Stderr, false, false, false)
}

func NewLogger(out, err io.Writer, json, quiet, verbose bool) Logger {
	return Logger{
		out:     out,
		err:     err,
		json:    json,
		quiet:   quiet,
		verbose: verbose,
	}
}

// Ctx returns the logger set for the current context.
// If no logger is currently set in ctx, the default logger is returned.
func Ctx(ctx context.Context) Logger {
	logger, ok := ctx.Value(loggerKey{}).(Logger)
	if !ok {
		return DefaultLogger()
	}
	return logger
}

// WithContext returns a new context with this logger associated with it.
func (l Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// IsJson reports whether payload output should be machine readable.
func (l Logger) IsJson() bool { return l.json }

func (l Logger) IsQuiet() bool { return l.quiet }

func (l Logger) IsVerbose() bool { return l.verbose }

// Out prints payload to the output stream, newline terminated.
func (l Logger) Out(f string, args ...interface{}) {
	fmt.Fprintf(l.out, f+"\n", args...)
}

// OutRaw prints payload to the output stream exactly as given.
func (l Logger) OutRaw(s string) {
	fmt.Fprintf(l.out, "%s", s)
}

// Info prints tagged commentary to the error stream unless quiet.
func (l Logger) Info(tag string, f string, args ...interface{}) {
	if l.quiet {
		return
	}
	print(l.err, color.New(color.FgHiGreen), tag, f, args...)
}

// Debug prints tagged commentary to the error stream when verbose.
func (l Logger) Debug(tag string, f string, args ...interface{}) {
	if !l.verbose || l.quiet {
		return
	}
	print(l.err, color.New(color.FgGreen), tag, f, args...)
}

func print(w io.Writer, tagColor *color.Color, tag, f string, args ...interface{}) {
	str := fmt.Sprintf(f, args...)
	for _, line := range strings.Split(str, "\n") {
		fmt.Fprintf(w, "%s  %s\n",
			tagColor.Sprint(tag),
			color.WhiteString(line))
	}
}
