package util

import (
	"github.com/urfave/cli/v2"

	"github.com/hydrotools/cistern/pkg/config"
)

// EngineName resolves which engine this invocation uses to open container
// files: the --engine flag when given, otherwise the configured default.
//
// Errors:
//
//    - cistern-error-serialization -- when the config state cannot be copied
func EngineName(c *cli.Context) (string, error) {
	if name := c.String("engine"); name != "" {
		return name, nil
	}
	state, err := config.NewState()
	if err != nil {
		return "", err
	}
	return state.DefaultEngine(), nil
}
