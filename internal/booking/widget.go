// Package booking builds pre-filled URLs for the external GoHighLevel
// booking widget shown on the confirmation pages.
package booking

import (
	"net/url"
	"strings"
)

const defaultWidgetBaseURL = "https://link.wattleads.com/widget/booking/ZvHsKSU1VayvObZkyBHA"

// Widget builds pre-filled booking URLs from contact fields.
type Widget struct {
	baseURL string
}

// NewWidget creates a Widget. An empty baseURL selects the production
// booking widget.
func NewWidget(baseURL string) *Widget {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultWidgetBaseURL
	}
	return &Widget{baseURL: baseURL}
}

// PrefillURL returns the widget URL with name and email pre-filled. The
// widget only honors name/email parameters; phone is deliberately omitted
// because the hosted widget ignores it.
func (w *Widget) PrefillURL(firstName, lastName, email, fullName string) string {
	params := url.Values{}
	if firstName != "" {
		params.Set("first_name", firstName)
	}
	if lastName != "" {
		params.Set("last_name", lastName)
	}
	if email != "" {
		params.Set("email", email)
	}
	if fullName != "" {
		params.Set("name", fullName)
	}
	if len(params) == 0 {
		return w.baseURL
	}
	return w.baseURL + "?" + params.Encode()
}
