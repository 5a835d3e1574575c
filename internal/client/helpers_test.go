package client_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quillpost/gateway-client/pkg/gateway"
)

const freshToken = "fresh"

// writeEnvelope writes a backend envelope with the given HTTP status.
func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeExpired(w http.ResponseWriter) {
	writeEnvelope(w, http.StatusUnauthorized, map[string]any{
		"success":    false,
		"message":    "Access token expired",
		"statusCode": http.StatusUnauthorized,
		"errors":     map[string]any{"errorCode": gateway.ErrorCodeAccessTokenExpired},
	})
}

// fakeGateway is an httptest backend that rejects requests without a fresh
// accessToken cookie and hands one out on the refresh endpoint.
type fakeGateway struct {
	*httptest.Server

	mu    sync.Mutex
	calls map[string]int

	refreshes atomic.Int32
	expired   atomic.Int32

	// refreshGate, when set, runs before the refresh endpoint answers.
	refreshGate func()
	// refreshDrop closes the refresh connection without an answer.
	refreshDrop bool
	// refreshFailure, when set, is returned by the refresh endpoint.
	refreshFailure gateway.ErrorCode
	// routes answer authenticated requests by path.
	routes map[string]http.HandlerFunc
	// open answer requests by path without checking the cookie.
	open map[string]http.HandlerFunc
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()

	fake := &fakeGateway{
		calls:  map[string]int{},
		routes: map[string]http.HandlerFunc{},
		open:   map[string]http.HandlerFunc{},
	}

	fake.Server = httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(fake.Close)

	return fake
}

func (f *fakeGateway) handle(path string, handler http.HandlerFunc) {
	f.routes[path] = handler
}

func (f *fakeGateway) handleOpen(path string, handler http.HandlerFunc) {
	f.open[path] = handler
}

func (f *fakeGateway) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[path]
}

func (f *fakeGateway) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls[r.URL.Path]++
	f.mu.Unlock()

	if r.URL.Path == "/auth/refresh-token" {
		f.refresh(w)

		return
	}

	if handler, ok := f.open[r.URL.Path]; ok {
		handler(w, r)

		return
	}

	cookie, err := r.Cookie("accessToken")
	if err != nil || cookie.Value != freshToken {
		f.expired.Add(1)
		writeExpired(w)

		return
	}

	handler, ok := f.routes[r.URL.Path]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, map[string]any{
			"success": false,
			"message": "Route not found",
		})

		return
	}

	handler(w, r)
}

func (f *fakeGateway) refresh(w http.ResponseWriter) {
	f.refreshes.Add(1)

	if f.refreshGate != nil {
		f.refreshGate()
	}

	if f.refreshDrop {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_ = conn.Close()
		}

		return
	}

	if f.refreshFailure != gateway.ErrorCodeNone {
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{
			"success":    false,
			"message":    "Refresh token missing",
			"statusCode": http.StatusUnauthorized,
			"errorCode":  f.refreshFailure,
		})

		return
	}

	http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: freshToken, Path: "/"})
	writeEnvelope(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Token refreshed",
	})
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(cond func() bool) {
	deadline := time.Now().Add(5 * time.Second)
	for !cond() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
}

func profileRoute(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "ok",
		"data": map[string]any{
			"id":   "u1",
			"name": "Ada",
		},
	})
}
