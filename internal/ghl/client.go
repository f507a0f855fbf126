// Package ghl is a client for the GoHighLevel v2 REST API
// (services.leadconnectorhq.com). It delivers normalized funnel leads as a
// contact plus best-effort enrichment: a pipeline opportunity, quiz-answer
// notes, and ad-tracking custom fields.
package ghl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wattleads/funnel-api/internal/leads"
	"github.com/wattleads/funnel-api/internal/observability/metrics"
	"github.com/wattleads/funnel-api/pkg/logging"
)

const (
	defaultBaseURL = "https://services.leadconnectorhq.com/"
	apiVersion     = "2021-07-28"
	defaultTimeout = 15 * time.Second

	companyType = "Smart Home / Electrical"
	funnelStage = "Quiz Completed"
)

var defaultTags = []string{"Smart Home Lead", "Quiz Completed", "WattLeads"}

// Config holds the CRM connection settings resolved at startup.
type Config struct {
	BaseURL    string
	Token      string
	LocationID string
	PipelineID string
	StageID    string
	Timeout    time.Duration
}

// Client submits leads to GoHighLevel. A single submission is a sequential
// pipeline of steps; only the first (contact creation) is fatal, everything
// after is enrichment that must never block the visitor's journey.
type Client struct {
	baseURL    string
	token      string
	locationID string
	pipelineID string
	stageID    string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.FunnelMetrics
}

// NewClient creates a GoHighLevel client.
func NewClient(cfg Config, logger *logging.Logger, m *metrics.FunnelMetrics) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := cfg.BaseURL
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		token:      cfg.Token,
		locationID: cfg.LocationID,
		pipelineID: cfg.PipelineID,
		stageID:    cfg.StageID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    m,
	}
}

// submission carries the transient state threaded through one pipeline run.
type submission struct {
	rec           *leads.LeadRecord
	contactID     string
	opportunityID string
}

// step is one unit of the submission pipeline. Non-fatal steps log their
// failure and let the pipeline continue.
type step struct {
	name  string
	fatal bool
	run   func(ctx context.Context, st *submission) error
}

// SubmitLead delivers a lead to the CRM. The returned error is non-nil only
// when contact creation fails; enrichment failures are logged and counted
// but the call still succeeds.
func (c *Client) SubmitLead(ctx context.Context, rec *leads.LeadRecord) (*leads.SubmitResult, error) {
	if strings.TrimSpace(c.token) == "" {
		return nil, &SubmissionError{Step: "create_contact", Message: "missing bearer credential"}
	}

	st := &submission{rec: rec}
	pipeline := []step{
		{name: "create_contact", fatal: true, run: c.createContact},
		{name: "create_opportunity", run: c.createOpportunity},
		{name: "attach_notes", run: c.attachNotes},
		{name: "update_custom_fields", run: c.updateCustomFields},
	}

	for _, s := range pipeline {
		if err := s.run(ctx, st); err != nil {
			if s.fatal {
				return nil, err
			}
			c.logger.Error("ghl enrichment step failed", "step", s.name, "error", err, "contact_id", st.contactID)
			c.metrics.ObserveEnrichmentFailure(s.name)
		}
	}

	return &leads.SubmitResult{ContactID: st.contactID, OpportunityID: st.opportunityID}, nil
}

func (c *Client) createContact(ctx context.Context, st *submission) error {
	rec := st.rec
	payload := contactPayload{
		Email:        rec.Email,
		FirstName:    rec.FirstName,
		LastName:     rec.LastName,
		Phone:        rec.Phone,
		LocationID:   c.locationID,
		Source:       rec.Source,
		Tags:         defaultTags,
		CustomFields: contactCustomFields(rec),
	}

	body, status, err := c.do(ctx, http.MethodPost, "contacts/", payload)
	if err != nil {
		return &SubmissionError{Step: "create_contact", Message: err.Error()}
	}
	if status < 200 || status >= 300 {
		return &SubmissionError{Step: "create_contact", StatusCode: status, Message: upstreamMessage(body)}
	}

	st.contactID = extractContactID(body)
	if st.contactID == "" {
		return &SubmissionError{Step: "create_contact", StatusCode: status, Message: "response contained no contact id"}
	}
	c.logger.Info("ghl contact created", "contact_id", st.contactID, "email", rec.Email)
	return nil
}

func (c *Client) createOpportunity(ctx context.Context, st *submission) error {
	// Both ids must be configured; a partial pipeline config means the
	// account has no sales pipeline wired up yet.
	if c.pipelineID == "" || c.stageID == "" {
		return nil
	}
	payload := opportunityPayload{
		ContactID:       st.contactID,
		LocationID:      c.locationID,
		PipelineID:      c.pipelineID,
		PipelineStageID: c.stageID,
		Name:            st.rec.FullName() + " - Smart Home Lead Generation",
		Status:          "open",
		MonetaryValue:   0,
	}

	body, status, err := c.do(ctx, http.MethodPost, "opportunities/", payload)
	if err != nil {
		return fmt.Errorf("create opportunity: %w", err)
	}
	if status < 200 || status >= 300 {
		return &SubmissionError{Step: "create_opportunity", StatusCode: status, Message: upstreamMessage(body)}
	}

	st.opportunityID = extractOpportunityID(body)
	c.logger.Info("ghl opportunity created", "opportunity_id", st.opportunityID, "contact_id", st.contactID)
	return nil
}

func (c *Client) attachNotes(ctx context.Context, st *submission) error {
	if st.opportunityID == "" {
		return nil
	}
	note := notePayload{Body: noteBody(st.rec), UserID: "system"}

	var firstErr error
	for _, path := range []string{
		"opportunities/" + st.opportunityID + "/notes",
		"contacts/" + st.contactID + "/notes",
	} {
		body, status, err := c.do(ctx, http.MethodPost, path, note)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("attach note %s: %w", path, err)
			}
			continue
		}
		if status < 200 || status >= 300 {
			if firstErr == nil {
				firstErr = &SubmissionError{Step: "attach_notes", StatusCode: status, Message: upstreamMessage(body)}
			}
		}
	}
	return firstErr
}

func (c *Client) updateCustomFields(ctx context.Context, st *submission) error {
	attr := st.rec.Attribution
	fields := []customField{
		{Key: "c_ad_id", Value: attr.Get("ad_id")},
		{Key: "c_adset_id", Value: attr.Get("adset_id")},
		{Key: "c_campaign_id", Value: attr.Get("campaign_id")},
		{Key: "c_fbclid", Value: attr.Get("fbclid")},
	}

	body, status, err := c.do(ctx, http.MethodPut, "contacts/"+st.contactID, map[string]any{"customFields": fields})
	if err != nil {
		return fmt.Errorf("update custom fields: %w", err)
	}
	if status < 200 || status >= 300 {
		return &SubmissionError{Step: "update_custom_fields", StatusCode: status, Message: upstreamMessage(body)}
	}
	return nil
}

// do issues one CRM call and returns the decoded response body and status.
// Transport errors are returned as-is so callers can distinguish them from
// upstream rejections.
func (c *Client) do(ctx context.Context, method, path string, payload any) (map[string]any, int, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	var decoded map[string]any
	if len(respBody) > 0 {
		// Non-JSON upstream bodies are tolerated; the status code is what
		// drives success/failure.
		_ = json.Unmarshal(respBody, &decoded)
	}
	return decoded, resp.StatusCode, nil
}

// extractContactID probes the known response shapes: id, then contact.id,
// then contactId.
func extractContactID(body map[string]any) string {
	if id, ok := body["id"].(string); ok && id != "" {
		return id
	}
	if contact, ok := body["contact"].(map[string]any); ok {
		if id, ok := contact["id"].(string); ok && id != "" {
			return id
		}
	}
	if id, ok := body["contactId"].(string); ok && id != "" {
		return id
	}
	return ""
}

func extractOpportunityID(body map[string]any) string {
	if id, ok := body["id"].(string); ok && id != "" {
		return id
	}
	if opp, ok := body["opportunity"].(map[string]any); ok {
		if id, ok := opp["id"].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// upstreamMessage pulls a human-readable message out of an error body.
func upstreamMessage(body map[string]any) string {
	if body == nil {
		return "unknown error"
	}
	switch msg := body["message"].(type) {
	case string:
		if msg != "" {
			return msg
		}
	case []any:
		parts := make([]string, 0, len(msg))
		for _, m := range msg {
			if s, ok := m.(string); ok {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}
	if errMsg, ok := body["error"].(string); ok && errMsg != "" {
		return errMsg
	}
	return "unknown error"
}

func contactCustomFields(rec *leads.LeadRecord) []customField {
	attr := rec.Attribution
	return []customField{
		{Key: "c_services", Value: strings.Join(rec.Services, ", ")},
		{Key: "c_monthly_projects", Value: rec.MonthlyProjects},
		{Key: "c_avg_project_value", Value: rec.AvgProjectValue},
		{Key: "c_marketing_spend", Value: rec.MarketingSpend},
		{Key: "c_source", Value: rec.Source},
		{Key: "c_utm_source", Value: attr.Get("utm_source")},
		{Key: "c_utm_medium", Value: attr.Get("utm_medium")},
		{Key: "c_utm_campaign", Value: attr.Get("utm_campaign")},
		{Key: "c_lead_qualification", Value: fmt.Sprintf("%d", rec.Score)},
		{Key: "c_company_type", Value: companyType},
		{Key: "c_funnel_stage", Value: funnelStage},
	}
}

// noteBody renders the quiz answers, score, and ad-tracking identifiers as
// a note readable by the sales team.
func noteBody(rec *leads.LeadRecord) string {
	var b strings.Builder
	b.WriteString("Smart Home Lead - Quiz Results\n\n")
	fmt.Fprintf(&b, "Services: %s\n", strings.Join(rec.Services, ", "))
	fmt.Fprintf(&b, "Monthly Projects: %s\n", rec.MonthlyProjects)
	fmt.Fprintf(&b, "Avg Project Value: %s\n", rec.AvgProjectValue)
	fmt.Fprintf(&b, "Marketing Spend: %s\n", rec.MarketingSpend)
	fmt.Fprintf(&b, "Lead Score: %d/100\n", rec.Score)
	fmt.Fprintf(&b, "Source: %s\n", rec.Source)

	attr := rec.Attribution
	labels := []struct{ key, label string }{
		{"utm_source", "UTM Source"},
		{"utm_medium", "UTM Medium"},
		{"utm_campaign", "UTM Campaign"},
		{"ad_id", "Ad ID"},
		{"adset_id", "AdSet ID"},
		{"campaign_id", "Campaign ID"},
		{"fbclid", "Facebook Click ID"},
	}
	wroteHeader := false
	for _, l := range labels {
		if v := attr.Get(l.key); v != "" {
			if !wroteHeader {
				b.WriteString("\n")
				wroteHeader = true
			}
			fmt.Fprintf(&b, "%s: %s\n", l.label, v)
		}
	}
	return b.String()
}
