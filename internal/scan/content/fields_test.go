package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWiFi(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Fields
	}{
		{
			name: "full payload",
			text: "WIFI:T:WPA;S:MyNet;P:secret;H:true;;",
			want: Fields{FieldSecurity: "WPA", FieldSSID: "MyNet", FieldPassword: "secret", FieldHidden: "Yes"},
		},
		{
			name: "hidden false",
			text: "WIFI:S:Cafe;H:false;;",
			want: Fields{FieldSSID: "Cafe", FieldHidden: "No"},
		},
		{
			name: "lowercase prefix and keys",
			text: "wifi:s:Home;t:WEP;",
			want: Fields{FieldSSID: "Home", FieldSecurity: "WEP"},
		},
		{
			name: "unknown keys and malformed segments ignored",
			text: "WIFI:X:1;garbage;S:Net;;",
			want: Fields{FieldSSID: "Net"},
		},
		{
			name: "escaped separator in password",
			text: `WIFI:S:Net;P:pa\;ss\:word;;`,
			want: Fields{FieldSSID: "Net", FieldPassword: "pa;ss:word"},
		},
		{
			name: "value keeps inner colons",
			text: "WIFI:S:a:b;;",
			want: Fields{FieldSSID: "a:b"},
		},
		{
			name: "not a wifi payload",
			text: "S:Net;P:secret",
			want: Fields{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseWiFi(tt.text))
		})
	}
}

func TestParseContact(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Fields
	}{
		{
			name: "mecard",
			text: "MECARD:N:Jane Doe;TEL:5551234;EMAIL:jane@x.com;;",
			want: Fields{FieldName: "Jane Doe", FieldPhone: "5551234", FieldEmail: "jane@x.com"},
		},
		{
			name: "mecard with organization and address",
			text: "mecard:N:Doe,John;ORG:Acme;ADR:1 Main St;NOTE:ignored;;",
			want: Fields{FieldName: "Doe,John", FieldOrganization: "Acme", FieldAddress: "1 Main St"},
		},
		{
			name: "vcard with parameters",
			text: "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Jane Doe\r\nTEL;TYPE=CELL:+1 555 0100\r\n" +
				"EMAIL;TYPE=WORK:jane@x.com\r\nORG:Acme\r\nADR;TYPE=HOME:;;1 Main St;Town\r\nEND:VCARD",
			want: Fields{
				FieldName:         "Jane Doe",
				FieldPhone:        "+1 555 0100",
				FieldEmail:        "jane@x.com",
				FieldOrganization: "Acme",
				FieldAddress:      ";;1 Main St;Town",
			},
		},
		{
			name: "vcard partial",
			text: "BEGIN:VCARD\nFN:Only Name\nEND:VCARD",
			want: Fields{FieldName: "Only Name"},
		},
		{
			name: "vcard property names are not prefixes of others",
			text: "BEGIN:VCARD\nFNX:nope\nTELEX:nope\nEND:VCARD",
			want: Fields{},
		},
		{
			name: "unknown format",
			text: "Jane Doe 5551234",
			want: Fields{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseContact(tt.text))
		})
	}
}

func TestParseSMS(t *testing.T) {
	tests := []struct {
		text    string
		number  string
		message string
	}{
		{"smsto:+15550100:Hello there", "+15550100", "Hello there"},
		{"SMS:+15550100", "+15550100", ""},
		{"smsto:+15550100:time: 10:30", "+15550100", "time: 10:30"},
		{"sms:+15550100?body=hi", "+15550100", "hi"},
		{"+15550100", "+15550100", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseSMS(tt.text)
			assert.Equal(t, tt.number, got[FieldNumber])
			assert.Equal(t, tt.message, got[FieldMessage])
		})
	}
}

func TestStripPrefixes(t *testing.T) {
	assert.Equal(t, "+1-555-0100", StripPhone("tel:+1-555-0100"))
	assert.Equal(t, "+1-555-0100", StripPhone("TEL:+1-555-0100"))
	assert.Equal(t, "5551234", StripPhone("5551234"))
	assert.Equal(t, "jane@x.com", StripEmail("MAILTO:jane@x.com"))
	assert.Equal(t, "jane@x.com", StripEmail("jane@x.com"))
	assert.Equal(t, "37.7749,-122.4194", StripGeo("geo:37.7749,-122.4194"))
}

func TestDetails(t *testing.T) {
	assert.Equal(t, "MyNet", Details(WiFi, "WIFI:S:MyNet;;")[FieldSSID])
	assert.Equal(t, "Jane", Details(VCard, "MECARD:N:Jane;;")[FieldName])
	assert.Nil(t, Details(URL, "https://example.com"))
	assert.Nil(t, Details(Text, "hello"))
}

func TestFields_Get(t *testing.T) {
	f := Fields{FieldSSID: "Net"}
	assert.Equal(t, "Net", f.Get(FieldSSID, "N/A"))
	assert.Equal(t, "N/A", f.Get(FieldPassword, "N/A"))
}
