package content

import "strings"

// Fields holds the values extracted from a structured payload. Keys absent
// from the payload are absent from the map.
type Fields map[string]string

// Field keys.
const (
	FieldSecurity     = "Security"
	FieldSSID         = "SSID"
	FieldPassword     = "Password"
	FieldHidden       = "Hidden"
	FieldName         = "Name"
	FieldPhone        = "Phone"
	FieldEmail        = "Email"
	FieldOrganization = "Organization"
	FieldAddress      = "Address"
	FieldNumber       = "Number"
	FieldMessage      = "Message"
)

// Get returns the value for key, or fallback when it is missing.
func (f Fields) Get(key, fallback string) string {
	if v, ok := f[key]; ok {
		return v
	}
	return fallback
}

// Details returns the structured fields for payload types that carry them
// (WiFi and contact cards) and nil for every other type.
func Details(t Type, text string) Fields {
	switch t {
	case WiFi:
		return ParseWiFi(text)
	case VCard:
		return ParseContact(text)
	case URL, Email, SMS, Phone, Geo, Text:
		return nil
	}
	return nil
}

// hasPrefixFold is strings.HasPrefix ignoring ASCII case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// trimPrefixFold removes prefix from s ignoring ASCII case.
func trimPrefixFold(s, prefix string) string {
	if hasPrefixFold(s, prefix) {
		return s[len(prefix):]
	}
	return s
}

// splitSegments splits a MECARD-style body on ';'. A backslash escapes the
// following character, so "P:a\;b" stays one segment with value "a;b".
func splitSegments(body string) []string {
	var (
		segments []string
		cur      strings.Builder
		escaped  bool
	)
	for _, r := range body {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ';':
			segments = append(segments, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		cur.WriteRune('\\')
	}
	if cur.Len() > 0 {
		segments = append(segments, cur.String())
	}
	return segments
}

// keyValue splits "KEY:VALUE" at the first colon and trims both halves.
func keyValue(segment string) (key, value string, ok bool) {
	k, v, found := strings.Cut(segment, ":")
	if !found {
		return "", "", false
	}
	return strings.ToUpper(strings.TrimSpace(k)), strings.TrimSpace(v), true
}
