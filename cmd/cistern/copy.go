package main

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"

	"github.com/hydrotools/cistern/cmd/cistern/internal/util"
	"github.com/hydrotools/cistern/csapi"
	"github.com/hydrotools/cistern/pkg/logging"
	"github.com/hydrotools/cistern/pkg/transfer"
)

var copyCmdDef = cli.Command{
	Name:      "copy",
	Usage:     "Copy datasets from one container file to another",
	ArgsUsage: "[src] [dst] [FROM=TO]...",
	Description: heredoc.Doc(`
		Each FROM=TO pair names a dataset in the source and the path it takes
		in the destination. FROM may be a pattern as long as it matches exactly
		one dataset; TO must be concrete. All pairs are validated before the
		first write, and a failure partway through leaves earlier copies in
		place. The source and destination may be the same file.
	`),
	Action: util.ChainCmdMiddleware(cmdCopy,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdCopy(c *cli.Context) error {
	if c.Args().Len() < 3 {
		cli.ShowCommandHelp(c, "copy")
		return serum.Error(csapi.ECodeArgument,
			serum.WithMessageLiteral("copy takes a source file, a destination file, and at least one FROM=TO pair"),
		)
	}
	ctx := c.Context
	log := logging.Ctx(ctx)
	args := c.Args().Slice()
	src, dst := args[0], args[1]

	pairs := make([]transfer.Pair, 0, len(args)-2)
	for _, raw := range args[2:] {
		fromText, toText, ok := strings.Cut(raw, "=")
		if !ok {
			return serum.Error(csapi.ECodeArgument,
				serum.WithMessageLiteral(fmt.Sprintf("pair %q does not have the form FROM=TO", raw)),
			)
		}
		from, err := csapi.ParseDatasetPath(fromText)
		if err != nil {
			return err
		}
		to, err := csapi.ParseDatasetPath(toText)
		if err != nil {
			return err
		}
		pairs = append(pairs, transfer.Pair{From: from, To: to})
	}

	engineName, err := util.EngineName(c)
	if err != nil {
		return err
	}
	if err := transfer.CopyMultiple(ctx, src, dst, engineName, pairs); err != nil {
		return err
	}
	log.Out("copied %d series from %s to %s", len(pairs), src, dst)
	return nil
}
