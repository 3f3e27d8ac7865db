package content

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Type
	}{
		{"empty", "", Text},
		{"plain text", "hello world", Text},
		{"http", "http://example.com", URL},
		{"https", "https://example.com/path?q=1", URL},
		{"www", "www.example.com", URL},
		{"url with userinfo stays url", "http://user@host.example", URL},
		{"wifi", "WIFI:T:WPA;S:MyNet;P:secret;;", WiFi},
		{"mailto", "mailto:someone", Email},
		{"bare address", "jane@x.com", Email},
		{"at sign without dot", "user@localhost", Text},
		{"sms", "sms:+15550100", SMS},
		{"smsto", "SMSTO:+15550100:hi", SMS},
		{"tel", "tel:+1-555-0100", Phone},
		{"formatted number", "+1 (555) 010-0100", Phone},
		{"digits only", "5551234", Phone},
		{"separators without digits", "- ( )", Text},
		{"plus only", "+", Text},
		{"vcard", "BEGIN:VCARD\nVERSION:3.0\nFN:Jane Doe\nEND:VCARD", VCard},
		{"mecard", "MECARD:N:Jane Doe;TEL:5551234;;", VCard},
		{"geo", "geo:37.7749,-122.4194", Geo},
		{"decimal number", "37.7749", Text},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassify_URLPrefixesAnyCase(t *testing.T) {
	for _, prefix := range []string{"http://", "https://", "www."} {
		for _, variant := range []string{prefix, strings.ToUpper(prefix), mixedCase(prefix)} {
			text := variant + "Example.COM/a@b.c"
			assert.Equal(t, URL, Classify(text), text)
		}
	}
}

func TestClassify_EmailHeuristicPrecedesContactCards(t *testing.T) {
	// Rule order is fixed: a contact card that contains an address is
	// claimed by the email heuristic before the card prefixes are checked.
	assert.Equal(t, Email, Classify("MECARD:N:Jane Doe;TEL:5551234;EMAIL:jane@x.com;;"))
	assert.Equal(t, Email, Classify("BEGIN:VCARD\nEMAIL:jane@x.com\nEND:VCARD"))
}

func TestClassify_IsDeterministic(t *testing.T) {
	text := "tel:+1-555-0100"
	first := Classify(text)
	for range 10 {
		require.Equal(t, first, Classify(text))
	}
}

func TestType_StringAndParse(t *testing.T) {
	for _, typ := range Types() {
		parsed, err := ParseType(strings.ToUpper(typ.String()))
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	_, err := ParseType("barcode")
	assert.Error(t, err)
	assert.Equal(t, "type(42)", Type(42).String())
}

func TestType_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Type Type `json:"type"`
	}{Type: WiFi})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"wifi"}`, string(data))

	var out struct {
		Type Type `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"geo"}`), &out))
	assert.Equal(t, Geo, out.Type)
	assert.Error(t, json.Unmarshal([]byte(`{"type":"nope"}`), &out))
}

func mixedCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i%2 == 0 {
			b.WriteString(strings.ToUpper(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
