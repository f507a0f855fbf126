package leads

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wattleads/funnel-api/internal/attribution"
	"github.com/wattleads/funnel-api/internal/booking"
	"github.com/wattleads/funnel-api/internal/notify"
	"github.com/wattleads/funnel-api/internal/observability/metrics"
	"github.com/wattleads/funnel-api/internal/scoring"
	"github.com/wattleads/funnel-api/pkg/logging"
)

// Handler serves the funnel's lead endpoints: submission, stateless
// scoring, and the recent-submissions admin view.
type Handler struct {
	builder   *Builder
	submitter CRMSubmitter
	store     *RecentStore
	widget    *booking.Widget
	alerts    *notify.Alerts
	metrics   *metrics.FunnelMetrics
	logger    *logging.Logger
}

// NewHandler wires the lead endpoints. submitter may be nil when no CRM
// credential is configured; submissions then score and advance without
// delivery.
func NewHandler(builder *Builder, submitter CRMSubmitter, store *RecentStore, widget *booking.Widget, alerts *notify.Alerts, m *metrics.FunnelMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if widget == nil {
		widget = booking.NewWidget("")
	}
	return &Handler{
		builder:   builder,
		submitter: submitter,
		store:     store,
		widget:    widget,
		alerts:    alerts,
		metrics:   m,
		logger:    logger,
	}
}

// submissionResponse is the body for a completed funnel submission. The
// visitor advances to booking regardless of CRM delivery, so the page needs
// the score, the verdict, and the pre-filled widget URL in one round trip.
type submissionResponse struct {
	Lead         *LeadRecord `json:"lead"`
	Score        int         `json:"score"`
	Qualified    bool        `json:"qualified"`
	ContactID    string      `json:"contactId,omitempty"`
	BookingURL   string      `json:"bookingUrl"`
	CRMDelivered bool        `json:"crmDelivered"`
}

// CreateWebLead handles POST /leads/web. Validation failures are the only
// 4xx path; a CRM outage still returns 201 with crmDelivered=false because
// losing the visitor is worse than losing the sync.
func (h *Handler) CreateWebLead(w http.ResponseWriter, r *http.Request) {
	var input LeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.metrics.ObserveSubmission("invalid")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.builder.Build(input, attribution.FromQuery(r.URL.Query()))
	if err != nil {
		h.metrics.ObserveSubmission("invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := submissionResponse{
		Lead:       rec,
		Score:      rec.Score,
		Qualified:  rec.Qualified,
		BookingURL: h.widget.PrefillURL(rec.FirstName, rec.LastName, rec.Email, rec.FullName()),
	}

	if h.submitter != nil {
		result, err := h.submitter.SubmitLead(r.Context(), rec)
		if err != nil {
			h.logger.Error("crm delivery failed", "error", err, "email", rec.Email)
			h.metrics.ObserveSubmission("crm_failed")
			h.alerts.LeadDeliveryFailure(r.Context(), rec.FullName(), rec.Email, err)
		} else {
			resp.ContactID = result.ContactID
			resp.CRMDelivered = true
			h.metrics.ObserveSubmission("delivered")
		}
	} else {
		h.logger.Warn("no CRM submitter configured, lead not delivered", "email", rec.Email)
		h.metrics.ObserveSubmission("skipped")
	}

	if h.store != nil {
		h.store.Add(rec)
	}

	h.logger.Info("lead submitted",
		"email", rec.Email,
		"score", rec.Score,
		"qualified", rec.Qualified,
		"crmDelivered", resp.CRMDelivered)

	writeJSON(w, http.StatusCreated, resp)
}

// scoreResponse is the stateless preview body for GET /leads/score.
type scoreResponse struct {
	Score     int  `json:"score"`
	Qualified bool `json:"qualified"`
}

// ScoreLead handles GET /leads/score. It scores the query-string answers
// without creating a record, so results pages can render a live score while
// the visitor is still mid-quiz.
func (h *Handler) ScoreLead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := scoring.Input{
		MonthlyProjects: q.Get("monthlyProjects"),
		AvgProjectValue: q.Get("avgProjectValue"),
		MarketingSpend:  q.Get("marketingSpend"),
	}
	if raw := q.Get("services"); raw != "" {
		for _, svc := range strings.Split(raw, ",") {
			if svc = strings.TrimSpace(svc); svc != "" {
				in.Services = append(in.Services, svc)
			}
		}
	}

	scorer := h.builder.Scorer()
	writeJSON(w, http.StatusOK, scoreResponse{
		Score:     scorer.Score(in),
		Qualified: scorer.Qualifies(in),
	})
}

// ListRecent handles GET /admin/leads, returning the in-memory window of
// recent submissions newest first.
func (h *Handler) ListRecent(w http.ResponseWriter, r *http.Request) {
	records := []*LeadRecord{}
	if h.store != nil {
		records = h.store.List()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"leads": records,
		"count": len(records),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
