package logging

import (
	"strconv"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
)

// Fingerprint returns a short stable identifier for a decoded payload so
// detections can be correlated in logs without writing credentials or
// contact details at info level.
func Fingerprint(payload string) string {
	return strconv.FormatUint(xxh3.HashString(payload), 16)
}

// Payload adds the payload fingerprint to e, and the full text when the
// logger is at debug level or lower.
func Payload(e *zerolog.Event, logger zerolog.Logger, payload string) *zerolog.Event {
	e = e.Str("payload_id", Fingerprint(payload)).Int("payload_len", len(payload))
	if logger.GetLevel() <= zerolog.DebugLevel {
		e = e.Str("payload", payload)
	}
	return e
}
