package leads

import "strings"

// NormalizePhone converts free-text phone input into E.164-like form for
// outbound CRM submission. It is best-effort and never fails: a 10-digit
// number is assumed North American, an explicit leading "+" preserves
// international intent, and anything else gets the +1 fallback even if the
// result is not a dialable number.
func NormalizePhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch {
	case len(d) == 10:
		return "+1" + d
	case len(d) == 11 && d[0] == '1':
		return "+" + d
	case strings.HasPrefix(strings.TrimSpace(raw), "+"):
		return "+" + d
	default:
		return "+1" + d
	}
}
