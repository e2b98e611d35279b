package main

import (
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"
	"github.com/warpfork/go-fsx/osfs"

	"github.com/hydrotools/cistern/cmd/cistern/internal/util"
	"github.com/hydrotools/cistern/csapi"
	"github.com/hydrotools/cistern/pkg/logging"
	"github.com/hydrotools/cistern/pkg/vessel"
)

var checkCmdDef = cli.Command{
	Name:      "check",
	Usage:     "Check container file(s) for syntax and sanity",
	ArgsUsage: "[file|dir]...",
	Description: heredoc.Doc(`
		Decodes each named container without opening a session. Directories
		are walked for vessel files. Prints one line per container naming its
		format version and dataset count.
	`),
	Action: util.ChainCmdMiddleware(cmdCheck,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdCheck(c *cli.Context) error {
	if !c.Args().Present() {
		return serum.Error(csapi.ECodeArgument,
			serum.WithMessageLiteral("no input files provided"),
		)
	}
	ctx := c.Context
	log := logging.Ctx(ctx)

	files := []string{}
	for _, arg := range c.Args().Slice() {
		info, err := os.Stat(arg)
		if err != nil {
			return csapi.ErrorSourceUnavailable(arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := vessel.FindVessels(osfs.DirFS(arg), ".")
		if err != nil {
			return err
		}
		for _, rel := range found {
			files = append(files, filepath.Join(arg, rel))
		}
	}

	for _, file := range files {
		capsule, err := vessel.Load(file)
		if err != nil {
			return err
		}
		log.Out("ok %s %s (datasets: %d)", capsule.Version(), file, capsuleLen(capsule))
	}
	return nil
}

func capsuleLen(capsule *csapi.VesselCapsule) int {
	switch {
	case capsule.Vessel != nil:
		return len(capsule.Vessel.Datasets.Keys)
	case capsule.VesselV2 != nil:
		return len(capsule.VesselV2.Datasets.Keys)
	}
	return 0
}
