package observe

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewServer_ServesMetricsEndpoint(t *testing.T) {
	m, _, _ := testSetup(t)
	s := NewServer("127.0.0.1:0", m)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want Prometheus text exposition", ct)
	}
}

func TestNewServer_RegistersExtraRoutes(t *testing.T) {
	m, _, _ := testSetup(t)
	s := NewServer("127.0.0.1:0", m, func(mux *http.ServeMux) {
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestNewServer_UnknownRouteIs404(t *testing.T) {
	m, _, _ := testSetup(t)
	s := NewServer("127.0.0.1:0", m)

	req := httptest.NewRequest("GET", "/nope", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /nope status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
