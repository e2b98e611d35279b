// Package render turns the markdown emitted by our help templates into
// terminal output.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
	"golang.org/x/term"
)

type Mode uint8

const (
	Mode_Markdown Mode = iota // Plain, honorable, and indentation-free markdown.
	Mode_ANSI                 // Text annotated with terminal ANSI codes for color, and indented fearlessly.  The terminal size is also detected and used for wrapping.
)

// Emit writes help markdown to wr. A terminal gets the ANSI rendering;
// any other destination (a pipe, a file, a test buffer) gets the
// markdown bytes unchanged, which keeps redirected output diffable.
func Emit(markdown []byte, wr io.Writer) {
	if fd, ok := wr.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(fd.Fd())) {
		Render(markdown, wr, Mode_ANSI)
		return
	}
	wr.Write(markdown)
}

// Render does what it says on the tin.
//
// The writer may be subject to feature detection to see if it's a terminal,
// and if so what width it has, if the mode parameter requests any ANSI behaviors.
//
// Render in plain markdown mode can be used as a sort of fmt'er.
// (This may be handy if your markdown source was produced by golang templates,
// which are notoriously unhelpful when it comes to letting you control whitespace.)
func Render(markdown []byte, wr io.Writer, m Mode) {
	physicalWidth := -1
	if fd, ok := wr.(interface{ Fd() uintptr }); ok {
		physicalWidth, _, _ = term.GetSize(int(fd.Fd()))
		if physicalWidth > 0 && physicalWidth < 60 {
			physicalWidth = 60
		}
	}
	md := goldmark.New(
		goldmark.WithRenderer(renderer.NewRenderer(
			renderer.WithNodeRenderers(
				util.PrioritizedValue{Value: &mdRenderer{m, physicalWidth}, Priority: 1},
			),
		)),
	)
	if err := md.Convert(markdown, wr); err != nil {
		panic(err)
	}
}

type mdRenderer struct {
	mode  Mode
	width int
}

// RegisterFuncs is to meet `goldmark/renderer.NodeRenderer`, and goldmark calls it to get further configuration done.
//
// Kinds left unregistered pass through to their children, which is the
// behavior we want for everything our templates don't emit.
func (r *mdRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindParagraph, r.renderParagraph)
	reg.Register(ast.KindRawHTML, r.renderRawHTML) // Flag placeholders like "<VALUE>" parse as this; pass the text through.
	reg.Register(ast.KindText, r.renderText)
}

func panicUnsupportedMode(m Mode) { panic(fmt.Errorf("unsupported mode %d", m)) }

func (r *mdRenderer) renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	if entering {
		switch r.mode {
		case Mode_Markdown:
			w.WriteString(strings.Repeat("#", n.Level) + " ")
		case Mode_ANSI:
			switch n.Level {
			case 2:
				writeSGR(w, codeBold, codeFgHiMagenta)
			case 3:
				w.WriteString(strings.Repeat(" ", 4))
				writeSGR(w, codeBold, codeFgHiCyan)
			case 4:
				w.WriteString(strings.Repeat(" ", 8))
				writeSGR(w, codeBold, codeFgHiBlue)
			}
		default:
			panicUnsupportedMode(r.mode)
		}
	} else {
		if r.mode == Mode_ANSI {
			writeSGR(w, codeReset)
		}
		w.WriteByte('\n')
	}
	return ast.WalkContinue, nil
}

func (r *mdRenderer) renderParagraph(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Paragraph)
	if entering {
		switch r.mode {
		case Mode_Markdown:
			w.Write(n.Text(source))
			w.WriteByte('\n')
		case Mode_ANSI:
			// Prose sits one indent step under its nearest heading.
			left := 4 * headingLevelAbove(node)
			body := n.Text(source)
			if r.width > 0 {
				body = wordwrap.Bytes(body, r.width-2-left)
			}
			body = indent.Bytes(body, uint(left))
			w.Write(body)
			w.WriteByte('\n')
		default:
			panicUnsupportedMode(r.mode)
		}
	} else {
		w.WriteByte('\n')
	}
	return ast.WalkSkipChildren, nil
}

func (r *mdRenderer) renderText(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		w.Write(node.Text(source))
	}
	return ast.WalkContinue, nil
}

// In our domain this isn't generally actual HTML; it's just angle-bracketed
// runs like flag value placeholders.  Re-emit the raw text.
func (r *mdRenderer) renderRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		n := node.(*ast.RawHTML)
		for i := 0; i < n.Segments.Len(); i++ {
			segment := n.Segments.At(i)
			w.Write(segment.Value(source))
		}
	}
	return ast.WalkContinue, nil
}

// headingLevelAbove reports the level of the heading governing this
// node: the nearest previous sibling that is a heading, or zero when a
// thematic break (or nothing) intervenes.
func headingLevelAbove(node ast.Node) int {
	for sib := node.PreviousSibling(); sib != nil; sib = sib.PreviousSibling() {
		switch sib.Kind() {
		case ast.KindHeading:
			return sib.(*ast.Heading).Level
		case ast.KindThematicBreak:
			return 0
		}
	}
	return 0
}
