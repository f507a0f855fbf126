package booking

import (
	"net/url"
	"strings"
	"testing"
)

func TestPrefillURL(t *testing.T) {
	w := NewWidget("https://link.example.com/widget/booking/abc")

	got := w.PrefillURL("Jane", "Doe", "jane@example.com", "Jane Doe")

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("invalid URL: %v", err)
	}
	q := u.Query()
	if q.Get("first_name") != "Jane" || q.Get("last_name") != "Doe" {
		t.Errorf("name params wrong: %v", q)
	}
	if q.Get("email") != "jane@example.com" {
		t.Errorf("email param wrong: %v", q)
	}
	if q.Get("name") != "Jane Doe" {
		t.Errorf("name param wrong: %v", q)
	}
	if q.Get("phone") != "" {
		t.Error("phone must not be pre-filled, the widget ignores it")
	}
}

func TestPrefillURLOmitsEmptyFields(t *testing.T) {
	w := NewWidget("https://link.example.com/widget/booking/abc")

	got := w.PrefillURL("Jane", "", "", "Jane")
	if strings.Contains(got, "last_name") || strings.Contains(got, "email") {
		t.Errorf("empty fields must be omitted: %s", got)
	}
}

func TestPrefillURLNoFields(t *testing.T) {
	w := NewWidget("https://link.example.com/widget/booking/abc")
	if got := w.PrefillURL("", "", "", ""); got != "https://link.example.com/widget/booking/abc" {
		t.Errorf("expected bare base URL, got %s", got)
	}
}

func TestDefaultBaseURL(t *testing.T) {
	w := NewWidget("")
	if !strings.HasPrefix(w.PrefillURL("", "", "", ""), "https://link.wattleads.com/widget/booking/") {
		t.Error("expected production widget base URL")
	}
}
