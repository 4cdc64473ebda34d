package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "newshound/internal/platform/errors"
)

type resolveIn struct {
	Disposition string `json:"disposition"`
	Note        string `json:"note"`
}

func postJSON(t *testing.T, h Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestJSONHandler_DecodesBodyAndWrapsResult(t *testing.T) {
	t.Parallel()

	h := JSONHandler[resolveIn](func(_ *http.Request, in resolveIn) (any, error) {
		return map[string]any{"resolved": true, "disposition": in.Disposition}, nil
	})

	rr := postJSON(t, h, "/review/resolve", `{"disposition":"confirmed","note":"matches KHOU piece"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"disposition":"confirmed"`) {
		t.Fatalf("body %q missing echoed disposition", body)
	}
	if !strings.Contains(body, `"status_code":200`) {
		t.Fatalf("body %q missing envelope status", body)
	}
}

func TestJSONHandler_MalformedBodySkipsHandler(t *testing.T) {
	t.Parallel()

	h := JSONHandler[resolveIn](func(_ *http.Request, _ resolveIn) (any, error) {
		t.Fatal("handler must not run when the body fails to decode")
		return nil, nil
	})

	rr := postJSON(t, h, "/review/resolve", `{"disposition":`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for malformed JSON", rr.Code)
	}
	if !strings.Contains(strings.ToLower(rr.Body.String()), "json") {
		t.Fatalf("expected decode error in body, got %q", rr.Body.String())
	}
}

func TestJSONHandler_HandlerErrorMapsStatus(t *testing.T) {
	t.Parallel()

	h := JSONHandler[resolveIn](func(_ *http.Request, _ resolveIn) (any, error) {
		return nil, perr.NotFoundf("incident 2016-00042 not found")
	})

	rr := postJSON(t, h, "/review/resolve", `{"disposition":"rejected"}`)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 from handler error", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "incident 2016-00042 not found") {
		t.Fatalf("expected error message in body, got %q", rr.Body.String())
	}
}

func TestJSONHandlerNoBody_PassesRequestThrough(t *testing.T) {
	t.Parallel()

	h := JSONHandlerNoBody(func(r *http.Request) (any, error) {
		return map[string]string{"dataset": r.URL.Query().Get("dataset")}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/review/queue?dataset=civilians_shot", nil)
	rr := httptest.NewRecorder()
	h(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"dataset":"civilians_shot"`) {
		t.Fatalf("body %q missing dataset echo", rr.Body.String())
	}
}
