package scenario

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Scenario)
)

// Register adds a scenario factory to the global registry. Scenario
// packages call it from init. Registering the same name twice panics.
func Register(name string, factory func() Scenario) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[name]; ok {
		panic("scenario " + name + " registered twice")
	}

	registry[name] = factory
}

// Names lists the registered scenario names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// New instantiates a registered scenario.
func New(name string) (Scenario, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("scenario %s is not registered", name)
	}

	return factory(), nil
}
