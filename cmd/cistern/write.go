package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"

	"github.com/hydrotools/cistern/cmd/cistern/internal/util"
	"github.com/hydrotools/cistern/csapi"
	"github.com/hydrotools/cistern/pkg/logging"
	"github.com/hydrotools/cistern/pkg/session"
)

var writeCmdDef = cli.Command{
	Name:      "write",
	Usage:     "Write a series document into a container file",
	ArgsUsage: "[file] [series.json|-]",
	Description: heredoc.Doc(`
		Reads one series document (JSON, as printed by read) and stores it
		under its own path, creating the container when absent and replacing
		any series already stored under that path. Pass - to read the
		document from stdin.
	`),
	Action: util.ChainCmdMiddleware(cmdWrite,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdWrite(c *cli.Context) error {
	if c.Args().Len() != 2 {
		cli.ShowCommandHelp(c, "write")
		return serum.Error(csapi.ECodeArgument,
			serum.WithMessageLiteral("write takes a container file and a series document"),
		)
	}
	ctx := c.Context
	log := logging.Ctx(ctx)
	source := c.Args().Get(0)
	docArg := c.Args().Get(1)

	var raw []byte
	var err error
	if docArg == "-" {
		raw, err = io.ReadAll(c.App.Reader)
		if err != nil {
			return csapi.ErrorIo("cannot read series document from stdin", "-", err)
		}
	} else {
		raw, err = os.ReadFile(docArg)
		if err != nil {
			return csapi.ErrorIo("cannot read series document", docArg, err)
		}
	}

	var rts csapi.RegularTimeseries
	if err := json.Unmarshal(raw, &rts); err != nil {
		if _, ok := err.(serum.ErrorInterface); ok {
			return err
		}
		return csapi.ErrorSerialization("cannot parse series document", err)
	}

	engineName, err := util.EngineName(c)
	if err != nil {
		return err
	}
	ses, err := session.New(engineName, source)
	if err != nil {
		return err
	}
	if err := ses.Open(ctx); err != nil {
		return err
	}
	defer ses.Close()
	if err := ses.WriteSeries(ctx, rts.Path, &rts); err != nil {
		return err
	}
	log.Out("wrote %s to %s (%d values)", rts.Path, source, rts.Len())
	return nil
}
