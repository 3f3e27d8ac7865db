package content

import "strings"

// ParseSMS splits an "smsto:NUMBER:MESSAGE" or "sms:NUMBER" payload into its
// number and message. The message defaults to empty. The "sms:NUMBER?body=X"
// form is accepted as well. Text without an SMS scheme is returned whole as
// the number.
func ParseSMS(text string) Fields {
	fields := Fields{FieldNumber: text, FieldMessage: ""}
	if !hasPrefixFold(text, "sms:") && !hasPrefixFold(text, "smsto:") {
		return fields
	}

	parts := strings.SplitN(text, ":", 3)
	if len(parts) < 2 {
		return fields
	}
	number := parts[1]
	if len(parts) == 3 {
		fields[FieldMessage] = parts[2]
	} else if n, body, found := strings.Cut(number, "?body="); found {
		number = n
		fields[FieldMessage] = body
	}
	fields[FieldNumber] = number
	return fields
}

// StripPhone removes a leading "tel:" scheme.
func StripPhone(text string) string {
	return trimPrefixFold(text, "tel:")
}

// StripEmail removes a leading "mailto:" scheme.
func StripEmail(text string) string {
	return trimPrefixFold(text, "mailto:")
}

// StripGeo removes a leading "geo:" scheme, leaving "lat,lon[,alt]".
func StripGeo(text string) string {
	return trimPrefixFold(text, "geo:")
}
