package main

import (
	"github.com/urfave/cli/v2"

	"github.com/hydrotools/cistern/cmd/cistern/internal/healthcheck"
	"github.com/hydrotools/cistern/cmd/cistern/internal/util"
	"github.com/hydrotools/cistern/pkg/logging"
)

var healthCmdDef = cli.Command{
	Name:  "health",
	Usage: "Check for potential errors in system configuration",
	Action: util.ChainCmdMiddleware(cmdHealth,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdHealth(c *cli.Context) error {
	ctx := c.Context
	log := logging.Ctx(ctx)
	// Check config state
	// Check that the default engine resolves
	// Attempt a write/read round trip through a temporary vessel
	hc := &healthcheck.HealthCheck{
		Runners: []healthcheck.Runner{
			&healthcheck.ConfigState{},
			&healthcheck.EngineDefault{},
			&healthcheck.VesselRoundTrip{},
			&healthcheck.MirrorsConfig{},
		},
	}
	if err := hc.Run(ctx); err != nil {
		log.Info("", "health check critical error: %s", err)
		return err
	}

	log.Debug("", "runners=%d, results=%d", len(hc.Runners), len(hc.Results))

	if err := hc.Fprint(c.App.Writer); err != nil {
		return err
	}
	return nil
}
