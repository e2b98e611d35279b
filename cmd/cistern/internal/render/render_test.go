package render

import (
	"bytes"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

const sampleHelp = "## NAME\ncistern - moving timeseries\n\n### catalog\nList every dataset path in a container file.\n"

func TestEmitToBufferPassesMarkdownThrough(t *testing.T) {
	var buf bytes.Buffer
	Emit([]byte(sampleHelp), &buf)
	qt.Check(t, buf.String(), qt.Equals, sampleHelp)
}

func TestRenderANSIColorsHeadings(t *testing.T) {
	var buf bytes.Buffer
	Render([]byte(sampleHelp), &buf, Mode_ANSI)
	out := buf.String()

	qt.Check(t, out, qt.Contains, "\x1b[1;95m") // level two: bold magenta
	qt.Check(t, out, qt.Contains, "\x1b[1;96m") // level three: bold cyan
	qt.Check(t, out, qt.Contains, "\x1b[0m")
	qt.Check(t, out, qt.Contains, "NAME")
	// The markdown annotations themselves are gone.
	qt.Check(t, strings.Contains(out, "##"), qt.IsFalse)
	// Prose indents four columns per level of its governing heading.
	qt.Check(t, out, qt.Contains, "\n        cistern - moving timeseries")
	qt.Check(t, out, qt.Contains, "\n            List every dataset path")
}

func TestRenderMarkdownKeepsAnnotations(t *testing.T) {
	var buf bytes.Buffer
	Render([]byte(sampleHelp), &buf, Mode_Markdown)
	out := buf.String()

	qt.Check(t, out, qt.Contains, "## NAME")
	qt.Check(t, out, qt.Contains, "### catalog")
	qt.Check(t, strings.Contains(out, "\x1b["), qt.IsFalse)
}
