package module

import (
	"testing"

	"newshound/internal/modkit/httpkit"
	pstrings "newshound/internal/platform/strings"
)

// RunnerPort mirrors the kind of interface modules expose through Ports()
type RunnerPort interface {
	Workers() int
}

type runnerStub struct{ n int }

func (r runnerStub) Workers() int { return r.n }

// fakeModule carries just enough to feed PortsOf
type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) Name() string               { return m.name }
func (m fakeModule) Ports() any                 { return m.ports }
func (m fakeModule) MountRoutes(httpkit.Router) {} // routes never matter here

func TestPortsOf_NilPorts(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "nilPorts", ports: nil}
	if _, ok := PortsOf[RunnerPort](m); ok {
		t.Fatalf("expected ok=false when Ports() is nil")
	}
}

func TestPortsOf_DirectInterfaceMatch(t *testing.T) {
	t.Parallel()

	want := runnerStub{n: 4}
	m := fakeModule{name: "direct", ports: RunnerPort(want)}

	got, ok := PortsOf[RunnerPort](m)
	if !ok {
		t.Fatalf("expected ok=true for direct interface match")
	}
	if got.Workers() != 4 {
		t.Fatalf("unexpected Workers value, got %d want 4", got.Workers())
	}
}

func TestPortsOf_StructBundle_ExportedField(t *testing.T) {
	t.Parallel()

	// PortsOf walks exported bundle fields looking for the interface
	type Ports struct {
		Runner RunnerPort
		Extra  int
	}
	want := runnerStub{n: 7}
	m := fakeModule{
		name:  "bundle",
		ports: Ports{Runner: want, Extra: 1},
	}

	got, ok := PortsOf[RunnerPort](m)
	if !ok {
		t.Fatalf("expected ok=true when bundle has exported Runner field")
	}
	if got.Workers() != 7 {
		t.Fatalf("unexpected Workers value, got %d want 7", got.Workers())
	}
}

func TestPortsOf_StructBundle_UnexportedField_Ignored(t *testing.T) {
	t.Parallel()

	// unexported fields are invisible to it, even matching ones
	type ports struct {
		runner RunnerPort // unexported
		extra  int
	}
	m := fakeModule{
		name:  "unexported",
		ports: ports{runner: runnerStub{n: 1}, extra: 2},
	}

	if _, ok := PortsOf[RunnerPort](m); ok {
		t.Fatalf("expected ok=false when only unexported field implements T")
	}
}

func TestMustPortsOf_PanicsWithModuleName(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "enrich", ports: nil}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic from MustPortsOf when port missing")
		}
		msg, _ := r.(string)
		if msg == "" || !pstrings.Contains(msg, "enrich") || !pstrings.Contains(msg, "requested port not found") {
			t.Fatalf("panic message should include module name and hint, got %q", msg)
		}
	}()

	_ = MustPortsOf[RunnerPort](m) // should panic
}

func TestMustPortsOf_ReturnsValue(t *testing.T) {
	t.Parallel()

	m := fakeModule{
		name:  "ok",
		ports: RunnerPort(runnerStub{n: 9}), // direct match so PortsOf succeeds
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("did not expect panic, got %v", r)
		}
	}()

	got := MustPortsOf[RunnerPort](m) // should not panic; should return the value
	if got.Workers() != 9 {
		t.Fatalf("unexpected Workers value from MustPortsOf, got %d want 9", got.Workers())
	}
}
