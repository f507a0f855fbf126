package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wattleads/funnel-api/internal/api/router"
	"github.com/wattleads/funnel-api/internal/booking"
	appconfig "github.com/wattleads/funnel-api/internal/config"
	"github.com/wattleads/funnel-api/internal/gateway"
	"github.com/wattleads/funnel-api/internal/ghl"
	"github.com/wattleads/funnel-api/internal/leads"
	"github.com/wattleads/funnel-api/internal/notify"
	"github.com/wattleads/funnel-api/internal/observability/metrics"
	"github.com/wattleads/funnel-api/internal/scoring"
	"github.com/wattleads/funnel-api/pkg/logging"
)

func main() {
	// .env is a local-dev convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting wattleads funnel API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	funnelMetrics := metrics.NewFunnelMetrics(nil)

	scorer := scoring.New(scoring.Strategy(cfg.LeadScoringStrategy))
	builder := leads.NewBuilder(scorer)
	store := leads.NewRecentStore(100)
	widget := booking.NewWidget(cfg.BookingWidgetURL)

	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	}
	alerts := notify.NewAlerts(sender, cfg.AlertEmailTo, logger)

	var submitter leads.CRMSubmitter
	if token := cfg.GHLBearerToken(); token != "" {
		submitter = ghl.NewClient(ghl.Config{
			BaseURL:    cfg.GHLBaseURL,
			Token:      token,
			LocationID: cfg.GHLLocationID,
			PipelineID: cfg.GHLPipelineID,
			StageID:    cfg.GHLStageID,
			Timeout:    cfg.GHLTimeout,
		}, logger, funnelMetrics)
	} else {
		logger.Warn("no GoHighLevel credential configured; leads will score but not sync")
	}

	leadsHandler := leads.NewHandler(builder, submitter, store, widget, alerts, funnelMetrics, logger)
	gatewayHandler := gateway.NewHandler(gateway.Config{
		UpstreamBaseURL: cfg.GHLBaseURL,
		Token:           cfg.GHLBearerToken(),
		LocationID:      cfg.GHLLocationID,
		Timeout:         cfg.GHLTimeout,
	}, logger, funnelMetrics)

	r := router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leadsHandler,
		GatewayHandler:     gatewayHandler,
		MetricsHandler:     promhttp.Handler(),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SubmitRatePerSec:   1,
		SubmitBurst:        5,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
