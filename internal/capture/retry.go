package capture

import (
	"context"
	stderrors "errors"
	"io/fs"
	"time"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/qrscan/internal/retry"
	"github.com/coral-mesh/qrscan/internal/scan"
)

// RetryCamera retries a camera's Open with exponential backoff.
type RetryCamera struct {
	camera scan.Camera
	cfg    retry.Config
	logger zerolog.Logger
}

// WithRetry wraps camera so that transient Open failures are retried.
// Missing paths and empty sources fail at once.
func WithRetry(camera scan.Camera, attempts int, initial time.Duration, logger zerolog.Logger) *RetryCamera {
	rc := &RetryCamera{
		camera: camera,
		logger: logger,
		cfg: retry.Config{
			MaxAttempts:    attempts,
			InitialBackoff: initial,
			MaxBackoff:     5 * time.Second,
			Jitter:         0.2,
		},
	}
	rc.cfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		rc.logger.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("Retrying camera open")
	}
	return rc
}

func (c *RetryCamera) Open(ctx context.Context) (scan.Capture, error) {
	var capture scan.Capture
	err := retry.Do(ctx, c.cfg, func(ctx context.Context) error {
		var err error
		capture, err = c.camera.Open(ctx)
		return err
	}, isTransient)
	if err != nil {
		return nil, err
	}
	return capture, nil
}

func isTransient(err error) bool {
	return !stderrors.Is(err, ErrEmptySource) &&
		!stderrors.Is(err, fs.ErrNotExist) &&
		!stderrors.Is(err, fs.ErrPermission)
}
