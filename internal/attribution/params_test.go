package attribution

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromQueryCapturesRecognizedKeys(t *testing.T) {
	q := url.Values{}
	q.Set("utm_source", "facebook")
	q.Set("utm_campaign", "smart-home-q3")
	q.Set("fbclid", "abc123")
	q.Set("gclid", "should-be-ignored")

	p := FromQuery(q)

	assert.Equal(t, "facebook", p.Get("utm_source"))
	assert.Equal(t, "smart-home-q3", p.Get("utm_campaign"))
	assert.Equal(t, "abc123", p.Get("fbclid"))
	assert.NotContains(t, p, "gclid", "unrecognized key should not be captured")
}

func TestFromQueryOmitsMissingKeys(t *testing.T) {
	p := FromQuery(url.Values{"utm_medium": {""}})

	assert.Empty(t, p)
	assert.NotContains(t, p, "utm_medium", "empty values must be absent, not empty strings")
}

func TestMergePrefersNonEmptyOverlay(t *testing.T) {
	base := Params{"utm_source": "facebook", "ad_id": "ad-1"}
	overlay := Params{"ad_id": "ad-2", "adset_id": "as-9", "campaign_id": ""}

	merged := base.Merge(overlay)

	assert.Equal(t, "facebook", merged.Get("utm_source"))
	assert.Equal(t, "ad-2", merged.Get("ad_id"), "overlay should win")
	assert.Equal(t, "as-9", merged.Get("adset_id"))
	assert.NotContains(t, merged, "campaign_id", "empty overlay values must not clobber")
	assert.NotContains(t, base, "adset_id", "Merge must not mutate the receiver")
}
