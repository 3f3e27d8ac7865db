// Package dispatch turns decoded records into user-facing actions and
// performs them.
package dispatch

import (
	"net/url"
	"strings"

	"github.com/coral-mesh/qrscan/internal/scan"
	"github.com/coral-mesh/qrscan/internal/scan/content"
)

// Kind names an action.
type Kind string

const (
	KindCopy         Kind = "copy"
	KindOpenURL      Kind = "open_url"
	KindShowWiFi     Kind = "show_wifi"
	KindShowContact  Kind = "show_contact"
	KindComposeSMS   Kind = "compose_sms"
	KindComposeEmail Kind = "compose_email"
	KindDial         Kind = "dial"
	KindOpenMaps     Kind = "open_maps"
)

// mapsURL is the base of map links built from geo payloads.
const mapsURL = "https://www.google.com/maps?q="

// Action is one thing the user can do with a detection. Text is always the
// raw payload. Fields is only set for WiFi and contact actions.
type Action struct {
	Kind   Kind           `json:"kind"`
	Label  string         `json:"label"`
	Type   content.Type   `json:"type"`
	Text   string         `json:"text"`
	Fields content.Fields `json:"fields,omitempty"`
}

// Target returns the URI an external handler should open, or "" for actions
// that are shown or copied instead.
func (a Action) Target() string {
	switch a.Kind {
	case KindOpenURL:
		if hasScheme(a.Text) {
			return a.Text
		}
		return "http://" + a.Text
	case KindDial:
		return "tel:" + content.StripPhone(a.Text)
	case KindComposeEmail:
		return "mailto:" + content.StripEmail(a.Text)
	case KindComposeSMS:
		f := content.ParseSMS(a.Text)
		target := "sms:" + f[content.FieldNumber]
		if msg := f[content.FieldMessage]; msg != "" {
			target += "?body=" + strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
		}
		return target
	case KindOpenMaps:
		return mapsURL + content.StripGeo(a.Text)
	case KindCopy, KindShowWiFi, KindShowContact:
		return ""
	}
	return ""
}

func hasScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// typeActions maps each payload type to its type-specific action. Text has
// none; copying is its only action.
var typeActions = map[content.Type]struct {
	kind  Kind
	label string
}{
	content.URL:   {KindOpenURL, "Open Link"},
	content.WiFi:  {KindShowWiFi, "WiFi Details"},
	content.Email: {KindComposeEmail, "Send Email"},
	content.SMS:   {KindComposeSMS, "Send SMS"},
	content.Phone: {KindDial, "Call"},
	content.VCard: {KindShowContact, "Contact Details"},
	content.Geo:   {KindOpenMaps, "Open in Maps"},
}

// Plan returns the actions for a record: copy first, then the type-specific
// action if the type has one.
func Plan(record scan.DecodedRecord) []Action {
	actions := []Action{{
		Kind:  KindCopy,
		Label: "Copy",
		Type:  record.Type,
		Text:  record.Text,
	}}

	entry, ok := typeActions[record.Type]
	if !ok {
		return actions
	}
	return append(actions, Action{
		Kind:   entry.kind,
		Label:  entry.label,
		Type:   record.Type,
		Text:   record.Text,
		Fields: content.Details(record.Type, record.Text),
	})
}

// Primary returns the action a single activation performs: the
// type-specific one when present, otherwise copy.
func Primary(record scan.DecodedRecord) Action {
	actions := Plan(record)
	return actions[len(actions)-1]
}
