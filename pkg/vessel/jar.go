package vessel

import (
	"github.com/hydrotools/cistern/pkg/engine"
)

// Jar is the registry name of the v1-only engine.  jar refuses v2 files
// outright, and cannot store irregular intervals or nonstandard period
// types, because the v1 capsule has no representation for them.
const Jar = "jar"

func init() {
	engine.MustRegister(Jar, NewJar)
}

// NewJar binds a jar engine to a source file.  No IO happens until Open.
func NewJar(source string) engine.Engine {
	return newEngine(Jar, source, formatSpec{readsV2: false, writesV2: false})
}
