package adapter

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Registration)
)

// Registration describes an engine: its factory and the file extensions
// that select it.
type Registration struct {
	Name       string
	Extensions []string
	Factory    func(*slog.Logger) Adapter
}

// Register adds an engine to the registry.
// Called by engine implementations in their init() functions.
func Register(reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Name] = reg
}

// Get retrieves an engine registration by name.
func Get(name string) (Registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[name]
	return r, ok
}

// NewAdapter creates a new adapter instance for the named engine.
// The logger parameter is passed to the adapter constructor (nil uses discard logger).
func NewAdapter(engine string, logger *slog.Logger) (Adapter, error) {
	if engine == "" {
		return nil, fmt.Errorf("database engine not specified")
	}

	reg, ok := Get(engine)
	if !ok {
		return nil, &UnknownAdapterError{
			Type:      engine,
			Available: ListAdapters(),
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return reg.Factory(logger), nil
}

// ListAdapters returns all registered engine names (sorted).
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if an engine is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownAdapterError is returned when an unknown engine is requested.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown database engine %q\nAvailable engines: %v\nHint: Check the engine setting in dbmitra.yaml or the --engine flag", e.Type, e.Available)
}
