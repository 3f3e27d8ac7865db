package content

import (
	"regexp"
	"strings"
)

const (
	vcardPrefix  = "BEGIN:VCARD"
	mecardPrefix = "MECARD:"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// vcardProperties maps a vCard property name to its field. Properties may
// carry parameters ("TEL;TYPE=CELL:...") except FN and ORG.
var vcardProperties = []struct {
	name   string
	field  string
	params bool
}{
	{"FN", FieldName, false},
	{"TEL", FieldPhone, true},
	{"EMAIL", FieldEmail, true},
	{"ORG", FieldOrganization, false},
	{"ADR", FieldAddress, true},
}

var mecardKeys = map[string]string{
	"N":     FieldName,
	"TEL":   FieldPhone,
	"EMAIL": FieldEmail,
	"ORG":   FieldOrganization,
	"ADR":   FieldAddress,
}

// ParseContact extracts contact details from a vCard or MECARD payload.
// Fields missing from the payload are missing from the result; any other
// payload yields an empty map.
func ParseContact(text string) Fields {
	switch {
	case hasPrefixFold(text, vcardPrefix):
		return parseVCard(text)
	case hasPrefixFold(text, mecardPrefix):
		return parseMECARD(text[len(mecardPrefix):])
	}
	return Fields{}
}

func parseVCard(text string) Fields {
	fields := Fields{}
	for _, line := range lineBreak.Split(text, -1) {
		for _, prop := range vcardProperties {
			if value, ok := vcardValue(line, prop.name, prop.params); ok {
				fields[prop.field] = value
				break
			}
		}
	}
	return fields
}

// vcardValue returns the value of line when it is the named property. The
// value starts after the first colon, so parameters are dropped.
func vcardValue(line, name string, params bool) (string, bool) {
	if !hasPrefixFold(line, name) {
		return "", false
	}
	rest := line[len(name):]
	switch {
	case strings.HasPrefix(rest, ":"):
		return rest[1:], true
	case params && strings.HasPrefix(rest, ";"):
		_, value, found := strings.Cut(rest, ":")
		return value, found
	}
	return "", false
}

func parseMECARD(body string) Fields {
	fields := Fields{}
	for _, segment := range splitSegments(body) {
		key, value, ok := keyValue(segment)
		if !ok {
			continue
		}
		if field, known := mecardKeys[key]; known {
			fields[field] = value
		}
	}
	return fields
}
