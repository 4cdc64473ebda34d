package module

import "reflect"

// PortSet marks the value a module hands back from Ports(). A module
// declares its own port interfaces (a runner, a queue reader) and returns
// either one of them directly or a struct bundling several.
type PortSet = any

// PortsOf extracts an implementation of T from a module's Ports() value.
// The value may satisfy T itself or carry T in an exported struct field.
// ok is false when neither holds.
func PortsOf[T any](m Module) (t T, ok bool) {
	bundle := m.Ports()
	if bundle == nil {
		return t, false
	}
	if v, hit := bundle.(T); hit {
		return v, true
	}
	rv := reflect.ValueOf(bundle)
	if rv.Kind() != reflect.Struct {
		return t, false
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanInterface() { // unexported
			continue
		}
		if v, hit := f.Interface().(T); hit {
			return v, true
		}
	}
	return t, false
}

// MustPortsOf panics when the module does not expose T. Wiring code uses it
// where a missing port means the build is wrong, not that the request is.
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic("module: requested port not found on module " + m.Name())
	}
	return v
}
