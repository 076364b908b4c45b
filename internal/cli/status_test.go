package cli

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusUnreachable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FV_SERVER_URL", "http://127.0.0.1:1")

	if err := runStatus(); err != nil {
		t.Fatalf("status: %v", err)
	}
}

func TestStatusWithServer(t *testing.T) {
	var hit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			hit = true
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("FV_SERVER_URL", srv.URL)
	t.Setenv("FV_USER", "U1")

	if err := runStatus(); err != nil {
		t.Fatalf("status: %v", err)
	}
	if !hit {
		t.Error("expected /health to be requested")
	}
}
