// Package content classifies decoded QR payloads and extracts the structured
// fields of the payload formats the scanner understands.
package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type is the semantic category of a decoded payload.
type Type int

const (
	// Text is the fallback for payloads no other rule matches.
	Text Type = iota
	URL
	WiFi
	Email
	SMS
	Phone
	VCard
	Geo
)

var typeNames = [...]string{
	Text:  "text",
	URL:   "url",
	WiFi:  "wifi",
	Email: "email",
	SMS:   "sms",
	Phone: "phone",
	VCard: "vcard",
	Geo:   "geo",
}

// Types lists every content type in declaration order.
func Types() []Type {
	return []Type{Text, URL, WiFi, Email, SMS, Phone, VCard, Geo}
}

// String returns the lowercase name used in logs, JSON, and filters.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType is the inverse of String. It is case-insensitive.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(i), nil
		}
	}
	return Text, fmt.Errorf("unknown content type %q", s)
}

// MarshalJSON encodes the type by name.
func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a type name.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
