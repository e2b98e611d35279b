package vessel

import (
	"github.com/hydrotools/cistern/pkg/engine"
)

// Cask is the registry name of the current-generation engine.  cask reads
// both capsule versions and always writes v2, so any v1 file it writes
// through gets upgraded in place.
const Cask = "cask"

func init() {
	engine.MustRegister(Cask, NewCask)
}

// NewCask binds a cask engine to a source file.  No IO happens until Open.
func NewCask(source string) engine.Engine {
	return newEngine(Cask, source, formatSpec{readsV2: true, writesV2: true})
}
