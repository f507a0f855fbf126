package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// GoHighLevel CRM configuration
	GHLBaseURL               string
	GHLPrivateIntegrationKey string
	GHLAPIKey                string
	GHLUsePrivateIntegration bool
	GHLLocationID            string
	GHLPipelineID            string
	GHLStageID               string
	GHLTimeout               time.Duration

	// Lead scoring
	LeadScoringStrategy string

	// Booking widget
	BookingWidgetURL string

	// Admin surface
	AdminJWTSecret string

	// Ops alerting
	AlertEmailTo      string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		GHLBaseURL:               getEnv("GHL_BASE_URL", "https://services.leadconnectorhq.com/"),
		GHLPrivateIntegrationKey: getEnv("GHL_PRIVATE_INTEGRATION_KEY", ""),
		GHLAPIKey:                getEnv("GHL_API_KEY", ""),
		GHLUsePrivateIntegration: getEnvAsBool("GHL_USE_PRIVATE_INTEGRATION", false),
		GHLLocationID:            getEnv("GHL_LOCATION_ID", ""),
		GHLPipelineID:            getEnv("GHL_PIPELINE_ID", ""),
		GHLStageID:               getEnv("GHL_STAGE_ID", ""),
		GHLTimeout:               getEnvAsDuration("GHL_TIMEOUT", 15*time.Second),

		LeadScoringStrategy: strings.ToLower(strings.TrimSpace(getEnv("LEAD_SCORING_STRATEGY", "premium"))),

		BookingWidgetURL: getEnv("BOOKING_WIDGET_URL", ""),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		AlertEmailTo:      getEnv("ALERT_EMAIL_TO", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "WattLeads Funnel"),
	}
}

// GHLBearerToken resolves the CRM credential once, with documented precedence.
// When the private-integration flow is enabled the private key is the only
// credential considered; otherwise the private key still wins over the legacy
// API key when both are set.
func (c *Config) GHLBearerToken() string {
	if c.GHLUsePrivateIntegration {
		return c.GHLPrivateIntegrationKey
	}
	if c.GHLPrivateIntegrationKey != "" {
		return c.GHLPrivateIntegrationKey
	}
	return c.GHLAPIKey
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
