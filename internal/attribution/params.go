// Package attribution captures marketing tracking identifiers from a
// landing-page URL. The values are read once at page load and threaded
// through the submission flow as an explicit argument, never re-read from
// ambient request state.
package attribution

import "net/url"

// Keys recognized on the landing URL. Anything else is ignored.
var recognizedKeys = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"ad_id",
	"adset_id",
	"campaign_id",
	"fbclid",
}

// Params maps a recognized tracking key to its captured value. Missing
// keys are absent from the map, never present as empty strings, so a later
// merge cannot clobber real data with placeholders.
type Params map[string]string

// FromQuery extracts the recognized tracking keys from a query string.
func FromQuery(q url.Values) Params {
	p := Params{}
	for _, key := range recognizedKeys {
		if v := q.Get(key); v != "" {
			p[key] = v
		}
	}
	return p
}

// Merge overlays other onto p, returning a new Params. Values in other win.
func (p Params) Merge(other Params) Params {
	out := Params{}
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Get returns the value for key, or "" when absent.
func (p Params) Get(key string) string {
	return p[key]
}
