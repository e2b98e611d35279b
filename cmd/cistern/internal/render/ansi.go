package render

import (
	"io"
	"strconv"
	"strings"
)

// The styling needs of help output amount to a few bold colored
// headings, so the SGR codes are spelled here directly rather than
// through a styling framework.

type sgrCode int

// Attributes.
const (
	codeReset sgrCode = 0
	codeBold  sgrCode = 1
)

// High-intensity foreground colors.
const (
	codeFgHiBlue    sgrCode = 94
	codeFgHiMagenta sgrCode = 95
	codeFgHiCyan    sgrCode = 96
)

func writeSGR(wr io.Writer, codes ...sgrCode) {
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = strconv.Itoa(int(code))
	}
	io.WriteString(wr, "\x1b["+strings.Join(parts, ";")+"m")
}
