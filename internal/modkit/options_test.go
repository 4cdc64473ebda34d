package modkit

import (
	"net/http"
	"testing"

	phttp "newshound/internal/platform/net/http"
)

func TestWithName(t *testing.T) {
	t.Parallel()
	var c buildCfg
	WithName("review")(&c)
	if c.name != "review" {
		t.Fatalf("expected name=review got=%q", c.name)
	}
}

func TestWithPrefix(t *testing.T) {
	t.Parallel()
	var c buildCfg
	WithPrefix("/review")(&c)
	if c.prefix != "/review" {
		t.Fatalf("expected prefix=/review got=%q", c.prefix)
	}
}

func TestWithMiddlewares_AccumulatesAndOrder(t *testing.T) {
	t.Parallel()

	var order []string
	tagged := func(tag string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, tag)
				if next != nil {
					next.ServeHTTP(w, r)
				}
			})
		}
	}

	var c buildCfg
	WithMiddlewares(tagged("reqid"), tagged("auth"))(&c)
	WithMiddlewares(tagged("nocache"))(&c)

	if len(c.mw) != 3 {
		t.Fatalf("middleware count = %d, want 3", len(c.mw))
	}

	// chain so the first registered middleware runs first
	var h http.Handler = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for i := len(c.mw) - 1; i >= 0; i-- {
		h = c.mw[i](h)
	}

	h.ServeHTTP(nil, nil)

	want := []string{"reqid", "auth", "nocache"}
	if len(order) != len(want) {
		t.Fatalf("middleware calls = %d, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("position %d ran %q, want %q", i, order[i], want[i])
		}
	}
}

func TestWithPorts_GenericStoresConcreteType(t *testing.T) {
	t.Parallel()

	type Ports struct {
		Runner  string
		Workers int
	}

	var c buildCfg
	WithPorts(Ports{Runner: "batch", Workers: 4})(&c)

	ps, ok := c.ports.(Ports)
	if !ok {
		t.Fatalf("ports stored as %T, want Ports", c.ports)
	}
	if ps.Runner != "batch" || ps.Workers != 4 {
		t.Fatalf("unexpected ports value: %+v", ps)
	}
}

func TestWithSwagger(t *testing.T) {
	t.Parallel()
	var c buildCfg
	if c.swaggerOn {
		t.Fatal("zero-value swaggerOn should be false")
	}
	WithSwagger(true)(&c)
	if !c.swaggerOn {
		t.Fatal("expected swaggerOn=true after option")
	}
	WithSwagger(false)(&c)
	if c.swaggerOn {
		t.Fatal("expected swaggerOn=false after toggle")
	}
}

func TestWithSubrouter_SetsFactory(t *testing.T) {
	t.Parallel()

	called := false
	var got phttp.Router

	// factory records the call and hands the router straight back
	factory := func(r phttp.Router) phttp.Router {
		called = true
		got = r
		return r
	}

	var c buildCfg
	WithSubrouter(factory)(&c)

	if c.subrouter == nil {
		t.Fatal("expected subrouter to be set")
	}

	var r phttp.Router = nil
	out := c.subrouter(r)

	if !called {
		t.Fatal("expected subrouter factory to be called")
	}
	if got != r || out != r {
		t.Fatalf("subrouter factory not identity: got=%v out=%v want=%v", got, out, r)
	}
}

func TestOptions_Compose(t *testing.T) {
	t.Parallel()

	noop := func(next http.Handler) http.Handler { return next }

	opts := []Option{
		WithName("enrich"),
		WithPrefix("/enrich"),
		WithSwagger(true),
		WithMiddlewares(noop),
		WithPorts(map[string]int{"workers": 4}),
	}

	var c buildCfg
	for _, opt := range opts {
		opt(&c)
	}

	if c.name != "enrich" || c.prefix != "/enrich" || !c.swaggerOn {
		t.Fatalf("unexpected cfg: %+v", c)
	}
	if len(c.mw) != 1 {
		t.Fatalf("middleware count = %d, want 1", len(c.mw))
	}
	if _, ok := c.ports.(map[string]int); !ok {
		t.Fatalf("ports stored as %T, want map[string]int", c.ports)
	}
}

func TestWithRegister_SetsAndCalls(t *testing.T) {
	t.Parallel()

	var c buildCfg
	called := false
	var got phttp.Router

	fn := func(r phttp.Router) {
		called = true
		got = r
	}

	WithRegister(fn)(&c)

	if c.register == nil {
		t.Fatal("expected register to be set")
	}

	var r phttp.Router
	c.register(r)

	if !called {
		t.Fatal("expected register function to be called")
	}
	if got != r {
		t.Fatalf("register saw a different router than the one passed")
	}
}
