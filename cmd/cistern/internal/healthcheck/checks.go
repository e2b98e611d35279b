package healthcheck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/serum-errors/go-serum"

	"github.com/hydrotools/cistern/csapi"
	"github.com/hydrotools/cistern/pkg/config"
	"github.com/hydrotools/cistern/pkg/engine"
	"github.com/hydrotools/cistern/pkg/session"
	"github.com/hydrotools/cistern/pkg/vessel"
)

// ConfigState reports the process-level configuration the other checks
// depend on: environment overrides, directories, the executable path.
type ConfigState struct{}

func (c *ConfigState) String() string {
	return "Config state"
}

// Run executes the checker
// Errors:
//
//    - cistern-error-healthcheck-run-fail -- config state cannot be copied
//    - cistern-error-healthcheck-run-ambiguous -- returns config info
func (c *ConfigState) Run(ctx context.Context) error {
	state, err := config.NewState()
	if err != nil {
		return serum.Errorf(CodeRunFailure, "could not copy config state: %w", err)
	}
	return serum.Errorf(CodeRunAmbiguous, "%s", configInfoString(state))
}

func configInfoString(s config.State) string {
	f := strings.Repeat("\t%10s: %s\n", 4)
	f = strings.TrimRightFunc(f, unicode.IsSpace)
	return fmt.Sprintf("\n"+f,
		"Executable", s.ExecutablePath,
		"WorkingDir", s.WorkingDirectory,
		"HomeDir", s.HomeDirectory,
		"TempDir", s.TempDir,
	)
}

// EngineDefault verifies that the engine the configuration selects is
// actually registered.
type EngineDefault struct {
	// Name overrides the configured default when set.
	Name string
}

func (c *EngineDefault) String() string {
	return "Default engine"
}

// Run checks that the default engine name resolves to a registered factory
// Errors:
//
//    - cistern-error-healthcheck-run-okay -- when the engine is registered
//    - cistern-error-healthcheck-run-fail -- when the engine is unknown or config is unreadable
func (c *EngineDefault) Run(ctx context.Context) error {
	name := c.Name
	if name == "" {
		state, err := config.NewState()
		if err != nil {
			return serum.Errorf(CodeRunFailure, "could not copy config state: %w", err)
		}
		name = state.DefaultEngine()
	}
	if _, err := engine.Resolve(name); err != nil {
		return serum.Errorf(CodeRunFailure, "default engine does not resolve: %w", err)
	}
	return serum.Errorf(CodeRunOkay, "engine %q is registered (known: %s)", name, strings.Join(engine.Names(), ", "))
}

// VesselRoundTrip writes a small series into a vessel in a temporary
// directory, reads it back, and compares. It exercises the same write and
// read paths every other command uses.
type VesselRoundTrip struct {
	// The directory where a temporary directory will be created
	BasePath string
	// Prefix for the temporary directory
	TmpDirPrefix string
	// Engine overrides the engine under test when set; cask otherwise.
	Engine string
}

func (e *VesselRoundTrip) String() string {
	path := e.BasePath
	if path == "" {
		path = DefaultBasePath
	}
	return fmt.Sprintf("Round trip: %s", path)
}

// Run will write and re-read a series through a temporary vessel to check for errors
//
// Errors:
//
//    - cistern-error-healthcheck-run-okay --
//    - cistern-error-healthcheck-run-fail --
func (e *VesselRoundTrip) Run(ctx context.Context) error {
	if e.BasePath == "" {
		e.BasePath = DefaultBasePath
	}
	if e.TmpDirPrefix == "" {
		e.TmpDirPrefix = DefaultTmpPrefix
	}
	if e.Engine == "" {
		e.Engine = vessel.Cask
	}

	dir, xerr := os.MkdirTemp(e.BasePath, e.TmpDirPrefix)
	if xerr != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(xerr),
			serum.WithMessageTemplate("failed to make temporary directory inside path, {{basepath|q}}"),
			serum.WithDetail("basepath", e.BasePath),
		)
	}
	defer os.RemoveAll(dir)

	path, err := csapi.ParseDatasetPath("/HEALTH/ROUNDTRIP/FLOW//1MON/CHECK/")
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageLiteral("failed to parse the probe path"),
		)
	}
	interval, err := csapi.ParseInterval("1MON")
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageLiteral("failed to parse the probe interval"),
		)
	}
	dates := []time.Time{
		time.Date(2000, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC),
	}
	rts, err := csapi.NewRegularTimeseries(path, []float64{1.5, 2.5}, dates, csapi.PeriodInstVal, "CFS", interval)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageLiteral("failed to build the probe series"),
		)
	}

	source := filepath.Join(dir, "roundtrip"+vessel.Suffix)
	ses, err := session.New(e.Engine, source)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageLiteral("failed to bind a session"),
		)
	}
	if err := ses.Open(ctx); err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageLiteral("failed to open the session"),
		)
	}
	defer ses.Close()
	if err := ses.WriteSeries(ctx, path, rts); err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageLiteral("write failed"),
		)
	}
	got, err := ses.ReadSeries(ctx, path)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageLiteral("read-back failed"),
		)
	}
	if !got.Equal(rts) {
		return serum.Errorf(CodeRunFailure, "read back a different series than was written: %s", got.Path)
	}
	return serum.Errorf(CodeRunOkay, "wrote and re-read %d values through %s", got.Len(), e.Engine)
}

// MirrorsConfig checks whether a mirror push configuration is present and
// parses when it is.
type MirrorsConfig struct{}

func (c *MirrorsConfig) String() string {
	return "Mirrors config"
}

// Run parses the mirrors config if one is configured
// Errors:
//
//    - cistern-error-healthcheck-run-okay -- when the config parses
//    - cistern-error-healthcheck-run-fail -- when the config exists but does not parse
//    - cistern-error-healthcheck-run-ambiguous -- when no config is present
func (c *MirrorsConfig) Run(ctx context.Context) error {
	state, err := config.NewState()
	if err != nil {
		return serum.Errorf(CodeRunFailure, "could not copy config state: %w", err)
	}
	path := state.MirrorsPath()
	if !filepath.IsAbs(path) {
		path = filepath.Join(state.WorkingDirectory, path)
	}
	if _, err := os.Stat(path); err != nil {
		return serum.Errorf(CodeRunAmbiguous, "no mirrors config at %s; mirror push is disabled", path)
	}
	cfg, err := config.MirroringConfigFromFile(os.DirFS("/"), path)
	if err != nil {
		return serum.Errorf(CodeRunFailure, "mirrors config does not parse: %w", err)
	}
	return serum.Errorf(CodeRunOkay, "%d mirrors configured", len(cfg.Mirrors.Keys))
}
