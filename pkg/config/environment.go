package config

const (
	// EnvCisternEngine selects the engine used when no --engine flag is given.
	EnvCisternEngine = "CISTERN_ENGINE"
	// EnvCisternMirrors points at the mirror push configuration file.
	EnvCisternMirrors = "CISTERN_MIRRORS"
)

// NOTE: keep this up to date or the config loader won't load them
var envKeys = []string{
	EnvCisternEngine,
	EnvCisternMirrors,
}
