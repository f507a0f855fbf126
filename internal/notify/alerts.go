package notify

import (
	"context"
	"fmt"

	"github.com/wattleads/funnel-api/pkg/logging"
)

// Alerts sends operational alerts to the configured ops mailbox. All
// methods are best-effort and nil-safe: a nil *Alerts silently does
// nothing, which keeps alerting strictly out of the visitor's path.
type Alerts struct {
	sender EmailSender
	to     string
	logger *logging.Logger
}

// NewAlerts wires an alert service. Returns nil unless both a sender and a
// destination address are configured.
func NewAlerts(sender EmailSender, to string, logger *logging.Logger) *Alerts {
	if sender == nil || to == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Alerts{sender: sender, to: to, logger: logger}
}

// LeadDeliveryFailure reports a lead that reached the confirmation page but
// was not delivered to the CRM, so ops can re-enter it by hand.
func (a *Alerts) LeadDeliveryFailure(ctx context.Context, name, email string, cause error) {
	if a == nil {
		return
	}
	msg := EmailMessage{
		To:      a.to,
		Subject: "Lead delivery to CRM failed",
		Body: fmt.Sprintf(
			"A funnel lead was not delivered to GoHighLevel and needs manual entry.\n\nName: %s\nEmail: %s\nError: %v\n",
			name, email, cause,
		),
	}
	if err := a.sender.Send(ctx, msg); err != nil {
		a.logger.Error("failed to send lead delivery alert", "error", err)
	}
}
