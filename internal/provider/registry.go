package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnregisteredProvider is returned by New when no factory is
// registered for the requested type name.
var ErrUnregisteredProvider = errors.New("provider type not registered")

// Factory constructs an unconnected Repository; the facade calls
// Init on it with the resolved candidate's configuration.
type Factory func() Repository

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds a factory for a provider type name. Registration is
// explicit and happens once at process startup, before any resolution;
// re-registering a name replaces the previous factory.
func Register(typeName string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[typeName] = f
}

// New constructs a Repository for the given type name.
func New(typeName string) (Repository, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnregisteredProvider, typeName)
	}
	return f(), nil
}

// Registered returns the sorted provider type names.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
