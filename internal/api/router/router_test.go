package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wattleads/funnel-api/internal/booking"
	"github.com/wattleads/funnel-api/internal/gateway"
	"github.com/wattleads/funnel-api/internal/leads"
)

func newTestConfig(upstreamURL string) *Config {
	return &Config{
		LeadsHandler: leads.NewHandler(
			leads.NewBuilder(nil),
			nil,
			leads.NewRecentStore(10),
			booking.NewWidget(""),
			nil, nil, nil,
		),
		GatewayHandler:  gateway.NewHandler(gateway.Config{UpstreamBaseURL: upstreamURL, Token: "secret"}, nil, nil),
		AdminAuthSecret: "admin-secret",
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := New(newTestConfig("http://unused.invalid"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["status"] != "ok" {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLeadSubmissionRoute(t *testing.T) {
	h := New(newTestConfig("http://unused.invalid"))

	body := `{"name":"Jane Doe","email":"jane@example.com","phone":"5551234567"}`
	req := httptest.NewRequest(http.MethodPost, "/leads/web", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestScoreRoute(t *testing.T) {
	h := New(newTestConfig("http://unused.invalid"))

	req := httptest.NewRequest(http.MethodGet, "/leads/score?avgProjectValue=%2450k%2B", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGatewayRouteForwards(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contacts/" {
			t.Errorf("upstream path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"contacts":[]}`))
	}))
	defer ts.Close()

	h := New(newTestConfig(ts.URL))

	req := httptest.NewRequest(http.MethodGet, "/api/ghl/contacts/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestGatewayRoutePreflight(t *testing.T) {
	h := New(newTestConfig("http://unused.invalid"))

	req := httptest.NewRequest(http.MethodOptions, "/api/ghl/contacts/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preflight status = %d", rec.Code)
	}
}

func TestAdminRouteRequiresJWT(t *testing.T) {
	h := New(newTestConfig("http://unused.invalid"))

	req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated admin status = %d", rec.Code)
	}

	claims := jwt.RegisteredClaims{
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("admin-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated admin status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitRateLimit(t *testing.T) {
	cfg := newTestConfig("http://unused.invalid")
	cfg.SubmitRatePerSec = 0.001
	cfg.SubmitBurst = 1
	h := New(cfg)

	body := `{"name":"Jane Doe","email":"jane@example.com","phone":"5551234567"}`
	statuses := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/leads/web", strings.NewReader(body))
		req.Header.Set("X-Real-Ip", "203.0.113.7")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}
	if statuses[0] != http.StatusCreated || statuses[1] != http.StatusTooManyRequests {
		t.Fatalf("statuses = %v", statuses)
	}
}
