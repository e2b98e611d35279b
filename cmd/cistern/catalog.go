package main

import (
	"encoding/json"

	"github.com/MakeNowJust/heredoc"
	"github.com/facette/natsort"
	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"

	"github.com/hydrotools/cistern/cmd/cistern/internal/util"
	"github.com/hydrotools/cistern/csapi"
	"github.com/hydrotools/cistern/pkg/cataloghtml"
	"github.com/hydrotools/cistern/pkg/logging"
	"github.com/hydrotools/cistern/pkg/session"
)

var catalogCmdDef = cli.Command{
	Name:      "catalog",
	Usage:     "List every dataset path in a container file",
	ArgsUsage: "[file]",
	Description: heredoc.Doc(`
		Prints one dataset path per line, in canonical order (ascending by
		field tuple). Patterns are not applied here; filtering happens in
		read and copy.
	`),
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "natural",
			Usage: "Sort path text naturally (CH10 after CH9) instead of canonically",
		},
		&cli.BoolFlag{
			Name:  "collapse-dates",
			Usage: "Drop the date field, collapsing series that differ only by date range",
		},
		&cli.PathFlag{
			Name:  "html",
			Usage: "Also render the catalog as a static HTML site into the given directory",
		},
	},
	Action: util.ChainCmdMiddleware(cmdCatalog,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdCatalog(c *cli.Context) error {
	if c.Args().Len() != 1 {
		cli.ShowCommandHelp(c, "catalog")
		return serum.Error(csapi.ECodeArgument,
			serum.WithMessageLiteral("catalog takes exactly one container file"),
		)
	}
	ctx := c.Context
	log := logging.Ctx(ctx)
	source := c.Args().First()

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

	cat, err := ses.ReadCatalog(ctx, c.Bool("collapse-dates"))
	if err != nil {
		return err
	}

	if dir := c.Path("html"); dir != "" {
		siteCfg := cataloghtml.SiteConfig{
			Ctx: ctx,
			Cat: *cat,
			LoadSeries: func(p csapi.DatasetPath) (*csapi.RegularTimeseries, error) {
				return ses.ReadSeries(ctx, p)
			},
			OutputPath: dir,
			URLPrefix:  "",
		}
		if err := siteCfg.CatalogAndChildrenToHtml(); err != nil {
			return err
		}
		log.Info("", "rendered %d dataset pages into %s", cat.Len(), dir)
	}

	texts := make([]string, 0, cat.Len())
	for _, p := range cat.Paths() {
		texts = append(texts, p.String())
	}
	if c.Bool("natural") {
		natsort.Sort(texts)
	}
	if log.IsJson() {
		serial, err := json.Marshal(texts)
		if err != nil {
			return csapi.ErrorSerialization("cannot serialize catalog", err)
		}
		log.Out("%s", serial)
		return nil
	}
	for _, text := range texts {
		log.Out("%s", text)
	}
	return nil
}
