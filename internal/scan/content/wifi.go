package content

import "strings"

const wifiPrefix = "WIFI:"

// ParseWiFi extracts network settings from a "WIFI:T:WPA;S:ssid;P:pass;H:true;;"
// payload. Unknown keys and segments without a colon are ignored. A payload
// without the WIFI: prefix yields an empty map.
func ParseWiFi(text string) Fields {
	fields := Fields{}
	if !hasPrefixFold(text, wifiPrefix) {
		return fields
	}

	for _, segment := range splitSegments(text[len(wifiPrefix):]) {
		key, value, ok := keyValue(segment)
		if !ok {
			continue
		}
		switch key {
		case "T":
			fields[FieldSecurity] = value
		case "S":
			fields[FieldSSID] = value
		case "P":
			fields[FieldPassword] = value
		case "H":
			fields[FieldHidden] = yesNo(value)
		}
	}
	return fields
}

func yesNo(v string) string {
	if strings.EqualFold(v, "true") {
		return "Yes"
	}
	return "No"
}
