package leads

import (
	"context"
	"strings"
	"time"

	"github.com/wattleads/funnel-api/internal/attribution"
)

// LeadInput is the raw answer set a funnel page submits. Enum-valued fields
// are fail-open: anything outside the known buckets scores as the lowest
// tier instead of erroring.
type LeadInput struct {
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	Services        []string           `json:"services"`
	MonthlyProjects string             `json:"monthlyProjects"`
	AvgProjectValue string             `json:"avgProjectValue"`
	MarketingSpend  string             `json:"marketingSpend"`
	Source          string             `json:"source"`
	Attribution     attribution.Params `json:"attribution"`
}

// LeadRecord is the normalized, submission-ready form of a lead. It is
// constructed once per funnel completion, submitted once, and never
// persisted here — durable storage is the CRM's job.
type LeadRecord struct {
	FirstName       string             `json:"firstName"`
	LastName        string             `json:"lastName"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"` // E.164-ish, via NormalizePhone
	Services        []string           `json:"services"`
	MonthlyProjects string             `json:"monthlyProjects"`
	AvgProjectValue string             `json:"avgProjectValue"`
	MarketingSpend  string             `json:"marketingSpend"`
	Source          string             `json:"source"`
	Attribution     attribution.Params `json:"attribution"`
	Score           int                `json:"score"`
	Qualified       bool               `json:"qualified"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// FullName reassembles the display name used for CRM opportunity titles.
func (r *LeadRecord) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// SubmitResult carries the transient CRM references produced by one
// submission flow. The ids are discarded once the flow completes.
type SubmitResult struct {
	ContactID     string `json:"contactId"`
	OpportunityID string `json:"opportunityId,omitempty"`
}

// CRMSubmitter delivers a LeadRecord to the external CRM. Only contact
// creation failure is reported as an error; enrichment steps are
// best-effort inside the implementation.
type CRMSubmitter interface {
	SubmitLead(ctx context.Context, rec *LeadRecord) (*SubmitResult, error)
}
