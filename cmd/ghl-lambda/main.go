// Command ghl-lambda runs the CRM proxy gateway as an AWS Lambda behind an
// API Gateway HTTP API, for deployments where the funnel pages are static
// and no long-running server exists.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/go-chi/chi/v5"
	"github.com/wattleads/funnel-api/internal/gateway"
	"github.com/wattleads/funnel-api/pkg/logging"
)

type config struct {
	upstreamBaseURL string
	token           string
	locationID      string
	upstreamTimeout time.Duration
}

func loadConfig() (config, error) {
	token := strings.TrimSpace(os.Getenv("GHL_PRIVATE_INTEGRATION_KEY"))
	if token == "" {
		token = strings.TrimSpace(os.Getenv("GHL_API_KEY"))
	}

	timeout := 15 * time.Second
	if raw := strings.TrimSpace(os.Getenv("GHL_TIMEOUT")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return config{}, fmt.Errorf("invalid GHL_TIMEOUT: %w", err)
		}
		timeout = parsed
	}

	return config{
		upstreamBaseURL: strings.TrimSpace(os.Getenv("GHL_BASE_URL")),
		token:           token,
		locationID:      strings.TrimSpace(os.Getenv("GHL_LOCATION_ID")),
		upstreamTimeout: timeout,
	}, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	logger := logging.New(os.Getenv("LOG_LEVEL"))
	router := newRouter(cfg, logger)

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, router, evt)
	})
}

func newRouter(cfg config, logger *logging.Logger) http.Handler {
	h := gateway.NewHandler(gateway.Config{
		UpstreamBaseURL: cfg.upstreamBaseURL,
		Token:           cfg.token,
		LocationID:      cfg.locationID,
		Timeout:         cfg.upstreamTimeout,
	}, logger, nil)

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.HandleFunc("/api/ghl/*", h.Proxy)
	return r
}

// handle translates one API Gateway event into a plain HTTP exchange
// against the in-process router and translates the result back.
func handle(ctx context.Context, router http.Handler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}
	if path == "" {
		path = "/"
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid body"}, nil
	}

	url := path
	if qs := strings.TrimSpace(evt.RawQueryString); qs != "" {
		url += "?" + qs
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}

	rec := newResponseBuffer()
	router.ServeHTTP(rec, req)

	out := events.APIGatewayV2HTTPResponse{
		StatusCode: rec.status,
		Body:       rec.body.String(),
		Headers:    map[string]string{},
	}
	for k := range rec.header {
		out.Headers[strings.ToLower(k)] = rec.header.Get(k)
	}
	return out, nil
}

// responseBuffer is a minimal in-memory http.ResponseWriter for bridging
// the router to the Lambda response shape.
type responseBuffer struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: http.Header{}, status: http.StatusOK}
}

func (r *responseBuffer) Header() http.Header { return r.header }

func (r *responseBuffer) Write(p []byte) (int, error) { return r.body.Write(p) }

func (r *responseBuffer) WriteHeader(status int) { r.status = status }

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}
