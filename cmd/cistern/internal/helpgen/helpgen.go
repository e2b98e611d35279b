/*
Package helpgen contains our custom help text generators,
and wires them into `urfave/cli` at package init time.

We use templates which emit markdown.
When the destination is a terminal, the markdown is post-processed
into ANSI rendering by the render package; any other destination (a
pipe, a file, a test buffer) receives the markdown unchanged, which
keeps redirected help output diffable.

(The use of package init time is unfortunate,
but package sideeffects cannot be avoided:
package-scope vars are the only option for customizing help processing
that the `urfave/cli` package currently makes available.)
*/
package helpgen

import (
	"bytes"
	"io"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/urfave/cli/v2"

	"github.com/hydrotools/cistern/cmd/cistern/internal/render"
)

// printHelpCustom is the entrypoint for `urfave/cli`'s customization.
//
// See the function of the same name upstream for reference.
// This function is considerably derived from it.
func printHelpCustom(out io.Writer, tmpl string, data interface{}, customFuncs map[string]interface{}) {

	// Line wrapping is the terminal renderer's job; the template level
	// only keeps a backstop against degenerate single-line content.
	const hardwrap = 10000

	funcMap := template.FuncMap{
		"join":           strings.Join,
		"subtract":       subtract,
		"indent":         indent,
		"nindent":        nindent,
		"trim":           strings.TrimSpace,
		"wrap":           func(input string, offset int) string { return wrap(input, offset, hardwrap) },
		"offset":         offset,
		"offsetCommands": offsetCommands,
	}
	for key, value := range customFuncs {
		funcMap[key] = value
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 1, 8, 4, ' ', 0)
	t := template.Must(template.New("help").Funcs(funcMap).Parse(tmpl))
	template.Must(t.New("helpNameTemplate").Parse(helpNameTemplate))
	template.Must(t.New("usageTemplate").Parse(usageTemplate))
	template.Must(t.New("descriptionTemplate").Parse(descriptionTemplate))
	template.Must(t.New("visibleCommandTemplate").Parse(visibleCommandTemplate))
	template.Must(t.New("visibleFlagCategoryTemplate").Parse(visibleFlagCategoryTemplate))
	template.Must(t.New("visibleFlagTemplate").Parse(visibleFlagTemplate))
	template.Must(t.New("visibleGlobalFlagCategoryTemplate").Parse(strings.Replace(visibleFlagCategoryTemplate, "OPTIONS", "GLOBAL OPTIONS", -1)))
	template.Must(t.New("authorsTemplate").Parse(authorsTemplate))
	template.Must(t.New("visibleCommandCategoryTemplate").Parse(visibleCommandCategoryTemplate))

	if err := t.Execute(w, data); err != nil {
		panic(err)
	}
	_ = w.Flush()
	render.Emit(buf.Bytes(), out)
}

func init() {
	cli.HelpPrinterCustom = printHelpCustom
}

//
// Helpers used by the templates.  `urfave/cli` keeps its equivalents
// private, so the custom templates bring their own.
//

func subtract(a, b int) int {
	return a - b
}

func indent(spaces int, v string) string {
	pad := strings.Repeat(" ", spaces)
	return pad + strings.Replace(v, "\n", "\n"+pad, -1)
}

func nindent(spaces int, v string) string {
	return "\n" + indent(spaces, v)
}

// wrap greedily folds input at wrapAt columns, indenting continuation
// lines (and any lines after the first) by offset columns.
func wrap(input string, offset int, wrapAt int) string {
	lines := strings.Split(input, "\n")
	padding := strings.Repeat(" ", offset)
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if line == "" {
			out = append(out, line)
			continue
		}
		folded := foldLine(line, wrapAt-offset, padding)
		if i > 0 {
			folded = padding + folded
		}
		out = append(out, folded)
	}
	return strings.Join(out, "\n")
}

func foldLine(line string, width int, padding string) string {
	if width <= 0 || len(line) <= width {
		return line
	}
	words := strings.Fields(line)
	if len(words) == 0 {
		return line
	}
	folded := words[0]
	room := width - len(words[0])
	for _, word := range words[1:] {
		if len(word)+1 > room {
			folded += "\n" + padding + word
			room = width - len(word)
		} else {
			folded += " " + word
			room -= len(word) + 1
		}
	}
	return folded
}

func offset(input string, fixed int) int {
	return len(input) + fixed
}

// offsetCommands measures the widest command name column so usage text
// can align past it.
func offsetCommands(cmds []*cli.Command, fixed int) int {
	max := 0
	for _, cmd := range cmds {
		if s := strings.Join(cmd.Names(), ", "); len(s) > max {
			max = len(s)
		}
	}
	return max + fixed
}
