package logging

import (
	"context"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestQuietSuppressesCommentary(t *testing.T) {
	var out, errw strings.Builder
	logger := NewLogger(&out, &errw, false, true, true)

	logger.Info("tag", "hello %d", 1)
	logger.Debug("tag", "hush %d", 2)
	logger.Out("payload")

	qt.Check(t, errw.String(), qt.Equals, "")
	qt.Check(t, out.String(), qt.Equals, "payload\n")
}

func TestDebugGatedByVerbose(t *testing.T) {
	var out, errw strings.Builder
	logger := NewLogger(&out, &errw, false, false, false)
	logger.Debug("tag", "invisible")
	qt.Check(t, errw.String(), qt.Equals, "")

	logger = NewLogger(&out, &errw, false, false, true)
	logger.Debug("tag", "visible")
	qt.Check(t, errw.String(), qt.Contains, "visible")
}

func TestContextCarriesLogger(t *testing.T) {
	var out, errw strings.Builder
	logger := NewLogger(&out, &errw, true, false, false)
	ctx := logger.WithContext(context.Background())

	got := Ctx(ctx)
	qt.Check(t, got.IsJson(), qt.IsTrue)

	// an unadorned context yields the default logger rather than a nil one
	got = Ctx(context.Background())
	qt.Check(t, got.IsJson(), qt.IsFalse)
}
