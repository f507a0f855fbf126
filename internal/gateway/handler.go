// Package gateway is the server-side forwarding boundary between browser
// funnel pages and the GoHighLevel API. It exists so the bearer credential
// never reaches the browser and so funnel pages are not blocked by
// cross-origin restrictions on the CRM host.
package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wattleads/funnel-api/internal/observability/metrics"
	"github.com/wattleads/funnel-api/pkg/logging"
)

const (
	defaultUpstreamBase = "https://services.leadconnectorhq.com/"
	apiVersion          = "2021-07-28"
	defaultTimeout      = 15 * time.Second

	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, Version"
)

// Config holds the gateway's upstream settings, resolved once at startup.
type Config struct {
	UpstreamBaseURL string
	Token           string // server-held credential, used when the browser sends none
	LocationID      string // injected into JSON bodies that omit it
	Timeout         time.Duration
}

// Handler forwards /api/ghl/* requests to the CRM. It is stateless per
// request and safe for concurrent use.
type Handler struct {
	upstreamBase string
	token        string
	locationID   string
	httpClient   *http.Client
	logger       *logging.Logger
	metrics      *metrics.FunnelMetrics
}

// NewHandler creates a proxy gateway handler.
func NewHandler(cfg Config, logger *logging.Logger, m *metrics.FunnelMetrics) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	base := cfg.UpstreamBaseURL
	if strings.TrimSpace(base) == "" {
		base = defaultUpstreamBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Handler{
		upstreamBase: base,
		token:        cfg.Token,
		locationID:   cfg.LocationID,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
		metrics:      m,
	}
}

// Proxy handles one gateway request. Mount with a chi wildcard route so the
// trailing path segments identify the target CRM resource.
func (h *Handler) Proxy(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")

	// The gateway must never surface an unhandled failure to the caller.
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("gateway panic", "panic", rec, "path", path, "method", r.Method)
			writeCORS(w)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error":   "Proxy server error",
				"details": fmt.Sprint(rec),
				"url":     r.URL.String(),
				"method":  r.Method,
				"path":    path,
			})
		}
	}()

	writeCORS(w)

	// Preflight short-circuits before auth or body handling.
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	auth := resolveAuth(r.Header.Get("Authorization"), h.token)
	if auth == "" {
		h.logger.Warn("gateway rejected unauthenticated request", "path", path, "method", r.Method)
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": "missing credentials",
			"hint":  "send an Authorization header or configure GHL_PRIVATE_INTEGRATION_KEY / GHL_API_KEY",
		})
		return
	}

	var body []byte
	if r.Method != http.MethodGet {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unreadable request body", "details": err.Error()})
			return
		}
		body = normalizeBody(raw, h.locationID)
	}

	target := h.upstreamBase + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, bytes.NewReader(body))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Proxy server error",
			"details": err.Error(),
			"url":     target,
			"method":  r.Method,
			"path":    path,
		})
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	version := strings.TrimSpace(r.Header.Get("Version"))
	if version == "" {
		version = apiVersion
	}
	req.Header.Set("Version", version)

	start := time.Now()
	resp, err := h.httpClient.Do(req)
	if err != nil {
		// Upstream unreachable is a distinct condition from a gateway bug.
		h.logger.Error("gateway upstream unreachable", "error", err, "url", target, "method", r.Method)
		h.metrics.ObserveGatewayRequest(r.Method, "502", time.Since(start).Seconds())
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":   "upstream unreachable",
			"details": err.Error(),
			"url":     target,
			"method":  r.Method,
		})
		return
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	h.metrics.ObserveGatewayRequest(r.Method, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())
	h.logger.Info("gateway relayed response", "status", resp.StatusCode, "path", path, "method", r.Method)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if json.Valid(respBody) && len(bytes.TrimSpace(respBody)) > 0 {
		_, _ = w.Write(respBody)
		return
	}
	// Non-JSON upstream bodies are wrapped so the browser always gets JSON.
	_ = json.NewEncoder(w).Encode(map[string]any{"message": string(respBody)})
}

// resolveAuth picks the outbound Authorization header: an inbound value is
// forwarded verbatim unless it is obviously junk (blank, a literal
// "undefined"/"null" from a broken client, or "Bearer" with no token), in
// which case the server-held credential is substituted.
func resolveAuth(inbound, configured string) string {
	tok := strings.TrimSpace(inbound)
	if usableAuth(tok) {
		return tok
	}
	if strings.TrimSpace(configured) != "" {
		return "Bearer " + strings.TrimSpace(configured)
	}
	return ""
}

func usableAuth(tok string) bool {
	if tok == "" {
		return false
	}
	lower := strings.ToLower(tok)
	if strings.Contains(lower, "undefined") || strings.Contains(lower, "null") {
		return false
	}
	if strings.TrimSpace(strings.TrimPrefix(tok, "Bearer")) == "" {
		return false
	}
	return true
}

// normalizeBody prepares an inbound body for forwarding. JSON-encoded
// strings are unwrapped first (some funnel pages double-encode); parse
// failures forward the raw bytes untouched. When the decoded body is an
// object missing locationId and a server default exists, the default is
// injected so browsers need not know the tenant id.
func normalizeBody(raw []byte, locationID string) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return raw
	}

	candidate := trimmed
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err == nil {
			candidate = []byte(inner)
		}
	}

	var obj map[string]any
	if err := json.Unmarshal(candidate, &obj); err != nil {
		return raw
	}

	if locationID != "" {
		if _, ok := obj["locationId"]; !ok {
			obj["locationId"] = locationID
		}
	}

	out, err := json.Marshal(obj)
	if err != nil {
		return raw
	}
	return out
}

func writeCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
