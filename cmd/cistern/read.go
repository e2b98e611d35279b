package main

import (
	"encoding/json"

	"github.com/MakeNowJust/heredoc"
	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"

	"github.com/hydrotools/cistern/cmd/cistern/internal/util"
	"github.com/hydrotools/cistern/csapi"
	"github.com/hydrotools/cistern/pkg/logging"
	"github.com/hydrotools/cistern/pkg/session"
	"github.com/hydrotools/cistern/pkg/transfer"
)

var readCmdDef = cli.Command{
	Name:      "read",
	Usage:     "Read datasets from a container file and print them as JSON documents",
	ArgsUsage: "[file] [path]",
	Description: heredoc.Doc(`
		The path may be concrete or carry regular-expression fields.
		A concrete path prints exactly one document; a pattern prints one
		document per matching dataset, in canonical catalog order.
	`),
	Action: util.ChainCmdMiddleware(cmdRead,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdRead(c *cli.Context) error {
	if c.Args().Len() != 2 {
		cli.ShowCommandHelp(c, "read")
		return serum.Error(csapi.ECodeArgument,
			serum.WithMessageLiteral("read takes a container file and a dataset path"),
		)
	}
	ctx := c.Context
	log := logging.Ctx(ctx)
	source := c.Args().Get(0)

	path, err := csapi.ParseDatasetPath(c.Args().Get(1))
	if err != nil {
		return err
	}
	engineName, err := util.EngineName(c)
	if err != nil {
		return err
	}

	if !path.HasAnyWildcard() {
		ses, err := session.New(engineName, source)
		if err != nil {
			return err
		}
		if err := ses.Open(ctx); err != nil {
			return err
		}
		defer ses.Close()
		rts, err := ses.ReadSeries(ctx, path)
		if err != nil {
			return err
		}
		return printSeries(log, rts)
	}

	iter, err := transfer.ReadMultiple(ctx, source, engineName, path)
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.Next() {
		if err := printSeries(log, iter.Series()); err != nil {
			return err
		}
	}
	return iter.Err()
}

func printSeries(log logging.Logger, rts *csapi.RegularTimeseries) error {
	serial, err := json.Marshal(rts)
	if err != nil {
		return csapi.ErrorSerialization("cannot serialize series", err)
	}
	log.Out("%s", serial)
	return nil
}
