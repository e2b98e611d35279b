package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/serum-errors/go-serum"

	"github.com/hydrotools/cistern/csapi"
)

var (
	mu        sync.Mutex
	factories = map[string]Factory{}
)

// Register claims a name for an engine factory.
//
// Errors:
//
// 	- cistern-error-initialization -- when the name was already claimed
func Register(name string, fab Factory) error {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[name]; exists {
		return serum.Errorf(csapi.ECodeInitialization, "engine name %q is already registered", name)
	}
	factories[name] = fab
	return nil
}

// MustRegister is Register for package init blocks; a name collision there
// is a programming error, so it panics.
func MustRegister(name string, fab Factory) {
	if err := Register(name, fab); err != nil {
		panic(fmt.Sprintf("engine registration failed: %s", err))
	}
}

// Resolve maps an engine name to its factory.
//
// Errors:
//
// 	- cistern-error-engine-unknown -- when no engine has the given name
func Resolve(name string) (Factory, error) {
	mu.Lock()
	defer mu.Unlock()
	fab, ok := factories[name]
	if !ok {
		return nil, csapi.ErrorEngineUnknown(name, names())
	}
	return fab, nil
}

// Names reports every registered engine name, sorted.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	return names()
}

func names() []string {
	result := make([]string, 0, len(factories))
	for name := range factories {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
