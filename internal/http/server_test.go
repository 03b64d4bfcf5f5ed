package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"fanlink/internal/core"
	"fanlink/pkg/platlink"
)

// Registered once; the default Prometheus registry rejects duplicates.
var testMetrics = NewMetrics()

type fakeResolver struct {
	lastReq *core.ResolutionRequest
	result  *core.ResolutionResult
	panics  bool
	calls   int
}

func (f *fakeResolver) Resolve(_ context.Context, req *core.ResolutionRequest) *core.ResolutionResult {
	f.calls++
	f.lastReq = req
	if f.panics {
		panic("resolver blew up")
	}
	if f.result != nil {
		return f.result
	}
	return &core.ResolutionResult{
		Success:      true,
		ResolverPath: core.PathFallbackOnly,
		Links:        core.PlatformLinkSet{platlink.Spotify: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC"},
		Confidence:   0.30,
	}
}

func newTestServer(t *testing.T, resolver *fakeResolver) *Server {
	t.Helper()
	cfg := &core.ServerConfig{Host: "127.0.0.1", Port: 0}
	return NewServer(cfg, resolver, testMetrics, zap.NewNop())
}

func postResolve(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resolve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleResolve_EmptyRequestRejectedBeforePipeline(t *testing.T) {
	resolver := &fakeResolver{}
	srv := newTestServer(t, resolver)

	rec := postResolve(t, srv, `{}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resolver.calls != 0 {
		t.Errorf("resolver calls = %d, empty requests must not reach the pipeline", resolver.calls)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestHandleResolve_MalformedBody(t *testing.T) {
	resolver := &fakeResolver{}
	srv := newTestServer(t, resolver)

	rec := postResolve(t, srv, `{"isrc": `)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resolver.calls != 0 {
		t.Errorf("resolver calls = %d, want 0", resolver.calls)
	}
}

func TestHandleResolve_OptionsPreflight(t *testing.T) {
	srv := newTestServer(t, &fakeResolver{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/resolve", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}

func TestHandleResolve_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resolve", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestHandleResolve_CamelCaseAliases(t *testing.T) {
	resolver := &fakeResolver{}
	srv := newTestServer(t, resolver)

	rec := postResolve(t, srv, `{
		"spotifyUrl": "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
		"hintTitle": "Never Gonna Give You Up",
		"hintArtist": "Rick Astley",
		"forceRefresh": true
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resolver.calls != 1 {
		t.Fatalf("resolver calls = %d, want 1", resolver.calls)
	}

	got := resolver.lastReq
	if got.SpotifyURL != "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC" {
		t.Errorf("SpotifyURL = %q", got.SpotifyURL)
	}
	if got.HintTitle != "Never Gonna Give You Up" || got.HintArtist != "Rick Astley" {
		t.Errorf("hints = %q / %q", got.HintTitle, got.HintArtist)
	}
	if !got.ForceRefresh {
		t.Error("ForceRefresh not decoded from alias")
	}
}

func TestHandleResolve_CanonicalSpellingWins(t *testing.T) {
	resolver := &fakeResolver{}
	srv := newTestServer(t, resolver)

	rec := postResolve(t, srv, `{
		"hint_title": "Canonical",
		"hintTitle": "Alias",
		"hint_artist": "Artist"
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resolver.lastReq.HintTitle != "Canonical" {
		t.Errorf("HintTitle = %q, canonical spelling must win", resolver.lastReq.HintTitle)
	}
}

func TestHandleResolve_FailureCarriedInBody(t *testing.T) {
	resolver := &fakeResolver{result: core.EmptyResult()}
	srv := newTestServer(t, resolver)

	rec := postResolve(t, srv, `{"isrc": "GBARL9300135"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, pipeline failure must still be 200", rec.Code)
	}

	var body struct {
		Success      bool   `json:"success"`
		ResolverPath string `json:"resolver_path"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if body.Success {
		t.Error("expected success = false in body")
	}
	if body.ResolverPath != "none" {
		t.Errorf("resolver_path = %q, want none", body.ResolverPath)
	}
}

func TestHandleResolve_PanicYieldsCleanError(t *testing.T) {
	srv := newTestServer(t, &fakeResolver{panics: true})

	rec := postResolve(t, srv, `{"isrc": "GBARL9300135"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body not JSON: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, &fakeResolver{})

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}
