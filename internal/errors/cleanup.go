// Package errors provides small error-handling helpers shared by the scanner
// packages.
package errors

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/rs/zerolog"
)

// DeferClose closes an io.Closer and logs a failure at warn level.
// Use this in defer statements and release paths where the close error has
// nowhere else to go.
func DeferClose(logger zerolog.Logger, closer io.Closer, msg string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Err(err).Msg(msg)
	}
}

// IsCanceled reports whether err stems from a cancelled or expired context.
// Such errors are expected during shutdown and are not logged as failures.
func IsCanceled(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
