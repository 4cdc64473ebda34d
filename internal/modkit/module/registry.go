package module

import "sync"

// process-global registry so mains can wire one module's ports into
// another during bootstrap
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register stores a module's port set under its name.
func Register(name string, ports any) {
	mu.Lock()
	reg[name] = ports
	mu.Unlock()
}

// PortsAs fetches the port set registered under name and asserts it to T.
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := reg[name]
	mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// Reset clears the registry between tests.
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}
