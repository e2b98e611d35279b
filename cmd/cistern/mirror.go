package main

import (
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"

	"github.com/hydrotools/cistern/cmd/cistern/internal/util"
	"github.com/hydrotools/cistern/csapi"
	"github.com/hydrotools/cistern/pkg/config"
	"github.com/hydrotools/cistern/pkg/logging"
	"github.com/hydrotools/cistern/pkg/mirroring"
)

var mirrorCmdDef = cli.Command{
	Name:      "mirror",
	Usage:     "Push a container file to its configured mirrors",
	ArgsUsage: "[file]",
	Description: heredoc.Doc(`
		Pushes the container to every destination in the mirrors config,
		keyed by the container's content ID so unchanged files are not
		re-uploaded. The config location comes from --mirrors, CISTERN_MIRRORS,
		or mirrors.json in the working directory.
	`),
	Flags: []cli.Flag{
		&cli.PathFlag{
			Name:  "mirrors",
			Usage: "Path to the mirrors config (overrides CISTERN_MIRRORS)",
		},
	},
	Action: util.ChainCmdMiddleware(cmdMirror,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdMirror(c *cli.Context) error {
	if c.Args().Len() != 1 {
		cli.ShowCommandHelp(c, "mirror")
		return serum.Error(csapi.ECodeArgument,
			serum.WithMessageLiteral("mirror takes exactly one container file"),
		)
	}
	ctx := c.Context
	log := logging.Ctx(ctx)
	source := c.Args().First()

	mirrorsPath := c.Path("mirrors")
	if mirrorsPath == "" {
		state, err := config.NewState()
		if err != nil {
			return err
		}
		mirrorsPath = state.MirrorsPath()
	}
	abs, err := filepath.Abs(mirrorsPath)
	if err != nil {
		return csapi.ErrorIo("cannot resolve mirrors config path", mirrorsPath, err)
	}
	cfg, err := config.MirroringConfigFromFile(os.DirFS("/"), abs)
	if err != nil {
		return err
	}

	if err := mirroring.Push(ctx, &cfg, source); err != nil {
		return err
	}
	log.Out("pushed %s to %d mirrors", source, len(cfg.Mirrors.Keys))
	return nil
}
