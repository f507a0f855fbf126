package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.HandleFunc("/api/ghl/*", h.Proxy)
	return r
}

func TestProxyPreflightShortCircuits(t *testing.T) {
	upstreamCalled := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalled = true
	}))
	defer ts.Close()

	h := NewHandler(Config{UpstreamBaseURL: ts.URL, Token: "secret"}, nil, nil)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodOptions, "/api/ghl/contacts/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if upstreamCalled {
		t.Error("preflight must not reach the upstream")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Version") {
		t.Errorf("Allow-Headers missing Version: %q", got)
	}
}

func TestProxyForwardsWithServerCredential(t *testing.T) {
	var gotAuth, gotVersion, gotPath, gotQuery string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Version")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "contact-1"})
	}))
	defer ts.Close()

	h := NewHandler(Config{UpstreamBaseURL: ts.URL, Token: "secret", LocationID: "loc-1"}, nil, nil)
	router := newTestRouter(h)

	body := strings.NewReader(`{"email":"jane@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ghl/contacts/?limit=5", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotVersion != "2021-07-28" {
		t.Errorf("Version = %q", gotVersion)
	}
	if gotPath != "/contacts/" || gotQuery != "limit=5" {
		t.Errorf("target = %s?%s", gotPath, gotQuery)
	}
	if gotBody["locationId"] != "loc-1" {
		t.Errorf("locationId not injected: %v", gotBody)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp["id"] != "contact-1" {
		t.Errorf("response not relayed: %s", rec.Body.String())
	}
}

func TestProxyInboundAuthWinsOverConfigured(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("{}"))
	}))
	defer ts.Close()

	h := NewHandler(Config{UpstreamBaseURL: ts.URL, Token: "server-token"}, nil, nil)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/ghl/contacts/", nil)
	req.Header.Set("Authorization", "Bearer browser-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if gotAuth != "Bearer browser-token" {
		t.Errorf("Authorization = %q, want inbound token", gotAuth)
	}
}

func TestProxyRejectsJunkAuthWithoutFallback(t *testing.T) {
	upstreamCalled := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalled = true
	}))
	defer ts.Close()

	h := NewHandler(Config{UpstreamBaseURL: ts.URL, Token: ""}, nil, nil)
	router := newTestRouter(h)

	for _, auth := range []string{"", "Bearer undefined", "Bearer null", "Bearer", "Bearer   "} {
		req := httptest.NewRequest(http.MethodGet, "/api/ghl/contacts/", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("auth %q: status = %d, want 401", auth, rec.Code)
		}
		var resp map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["hint"] == nil {
			t.Errorf("auth %q: missing hint in %s", auth, rec.Body.String())
		}
	}
	if upstreamCalled {
		t.Error("junk credentials must never reach the upstream")
	}
}

func TestProxyUpstreamUnreachableMapsTo502(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connections now refused

	h := NewHandler(Config{UpstreamBaseURL: ts.URL, Token: "secret"}, nil, nil)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/ghl/contacts/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body not JSON: %s", rec.Body.String())
	}
	for _, key := range []string{"error", "details", "url", "method"} {
		if resp[key] == nil {
			t.Errorf("502 body missing %q: %v", key, resp)
		}
	}
}

func TestProxyWrapsNonJSONUpstreamBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream maintenance page")
	}))
	defer ts.Close()

	h := NewHandler(Config{UpstreamBaseURL: ts.URL, Token: "secret"}, nil, nil)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/ghl/contacts/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want relayed 502", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body not JSON: %s", rec.Body.String())
	}
	if resp["message"] != "upstream maintenance page" {
		t.Errorf("message = %q", resp["message"])
	}
}

func TestNormalizeBody(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		locationID string
		check      func(t *testing.T, out []byte)
	}{
		{
			name:       "injects locationId",
			raw:        `{"email":"a@b.com"}`,
			locationID: "loc-1",
			check: func(t *testing.T, out []byte) {
				var m map[string]any
				_ = json.Unmarshal(out, &m)
				if m["locationId"] != "loc-1" {
					t.Errorf("locationId not injected: %s", out)
				}
			},
		},
		{
			name:       "preserves explicit locationId",
			raw:        `{"locationId":"other"}`,
			locationID: "loc-1",
			check: func(t *testing.T, out []byte) {
				var m map[string]any
				_ = json.Unmarshal(out, &m)
				if m["locationId"] != "other" {
					t.Errorf("client locationId overwritten: %s", out)
				}
			},
		},
		{
			name:       "unwraps double-encoded JSON string",
			raw:        `"{\"email\":\"a@b.com\"}"`,
			locationID: "",
			check: func(t *testing.T, out []byte) {
				var m map[string]any
				if err := json.Unmarshal(out, &m); err != nil || m["email"] != "a@b.com" {
					t.Errorf("double-encoded body not unwrapped: %s", out)
				}
			},
		},
		{
			name:       "non-JSON passes through untouched",
			raw:        `not json at all`,
			locationID: "loc-1",
			check: func(t *testing.T, out []byte) {
				if string(out) != "not json at all" {
					t.Errorf("raw body modified: %s", out)
				}
			},
		},
		{
			name:       "array passes through untouched",
			raw:        `[1,2,3]`,
			locationID: "loc-1",
			check: func(t *testing.T, out []byte) {
				if string(out) != "[1,2,3]" {
					t.Errorf("array body modified: %s", out)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, normalizeBody([]byte(tt.raw), tt.locationID))
		})
	}
}

func TestResolveAuth(t *testing.T) {
	tests := []struct {
		inbound    string
		configured string
		want       string
	}{
		{"Bearer abc", "srv", "Bearer abc"},
		{"", "srv", "Bearer srv"},
		{"Bearer undefined", "srv", "Bearer srv"},
		{"Bearer null", "srv", "Bearer srv"},
		{"Bearer", "srv", "Bearer srv"},
		{"", "", ""},
		{"Bearer undefined", "", ""},
	}
	for _, tt := range tests {
		if got := resolveAuth(tt.inbound, tt.configured); got != tt.want {
			t.Errorf("resolveAuth(%q, %q) = %q, want %q", tt.inbound, tt.configured, got, tt.want)
		}
	}
}
