package bindz

import (
	"context"
	"sync"
)

var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewRegistry()
})

// Default returns the process-wide registry used by the package-level
// functions. It is created with default options on first use and lives
// until the process exits.
func Default() *Registry {
	return defaultRegistry()
}

// GetEventManager returns the default registry's manager for handle.
func GetEventManager(handle string) *EventManager {
	return Default().EventManager(handle)
}

// GetKeyListener returns the default registry's listener for handle.
func GetKeyListener(handle string) *KeyListener {
	return Default().KeyListener(handle)
}

// NotifyEventManagers forwards ev to every manager of the default registry.
func NotifyEventManagers(ctx context.Context, ev Event) error {
	return Default().NotifyEventManagers(ctx, ev)
}

// NotifyKeyListeners forwards ev to every listener of the default registry.
func NotifyKeyListeners(ctx context.Context, ev KeyEvent) error {
	return Default().NotifyKeyListeners(ctx, ev)
}
