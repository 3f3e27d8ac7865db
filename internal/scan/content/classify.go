package content

import (
	"regexp"
	"strings"
)

// phonePattern accepts an optional leading '+' followed by digits, spaces,
// hyphens, and parentheses. A digit is required separately.
var phonePattern = regexp.MustCompile(`^\+?[0-9\-\s()]+$`)

// rule matches a lowercased payload. Rules are evaluated in slice order and
// the first match wins.
type rule struct {
	kind  Type
	match func(lower string) bool
}

var rules = []rule{
	// URL and WiFi prefixes come before the loose email heuristic so that
	// "http://user@host.example" stays a URL.
	{URL, hasAnyPrefix("http://", "https://", "www.")},
	{WiFi, hasAnyPrefix("wifi:")},
	{Email, func(s string) bool {
		return strings.HasPrefix(s, "mailto:") || (strings.Contains(s, "@") && strings.Contains(s, "."))
	}},
	{SMS, hasAnyPrefix("sms:", "smsto:")},
	{Phone, func(s string) bool {
		return strings.HasPrefix(s, "tel:") || isPhoneNumber(s)
	}},
	{VCard, hasAnyPrefix("begin:vcard", "mecard:")},
	{Geo, hasAnyPrefix("geo:")},
}

// Classify assigns exactly one Type to a decoded payload. It depends on
// nothing but the text.
func Classify(text string) Type {
	if text == "" {
		return Text
	}

	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.match(lower) {
			return r.kind
		}
	}
	return Text
}

func isPhoneNumber(s string) bool {
	return phonePattern.MatchString(s) && strings.ContainsAny(s, "0123456789")
}

func hasAnyPrefix(prefixes ...string) func(string) bool {
	return func(s string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
		return false
	}
}
