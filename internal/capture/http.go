package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/qrscan/internal/errors"
	"github.com/coral-mesh/qrscan/internal/scan"
)

// maxSnapshotBytes caps a single snapshot body.
const maxSnapshotBytes = 16 << 20

// SnapshotCamera fetches stills from an HTTP endpoint such as an IP camera's
// snapshot URL.
type SnapshotCamera struct {
	URL string
	// FrameTimeout bounds each request. Default: DefaultFrameTimeout.
	FrameTimeout time.Duration
	// Client defaults to a client without a global timeout.
	Client *http.Client
	Logger zerolog.Logger
}

// Open fetches one snapshot to confirm the endpoint serves images.
func (c *SnapshotCamera) Open(ctx context.Context) (scan.Capture, error) {
	capture := &snapshotCapture{
		url:     c.URL,
		timeout: c.FrameTimeout,
		client:  c.Client,
		logger:  c.Logger,
	}
	if capture.timeout <= 0 {
		capture.timeout = DefaultFrameTimeout
	}
	if capture.client == nil {
		capture.client = &http.Client{}
	}

	if _, err := capture.fetch(ctx); err != nil {
		return nil, err
	}

	c.Logger.Debug().Str("url", c.URL).Msg("Opened snapshot source")
	return capture, nil
}

type snapshotCapture struct {
	url     string
	timeout time.Duration
	client  *http.Client
	logger  zerolog.Logger

	mu     sync.Mutex
	seq    sequence
	closed bool
}

// TryFrame fetches a snapshot within the frame timeout. A failed request
// yields no frame; the next tick tries again.
func (c *snapshotCapture) TryFrame(ctx context.Context) (scan.Frame, bool) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return scan.Frame{}, false
	}

	frame, err := c.fetch(ctx)
	if err != nil {
		if !errors.IsCanceled(ctx.Err()) {
			c.logger.Debug().Err(err).Msg("Snapshot fetch failed")
		}
		return scan.Frame{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	frame.Seq = c.seq.next()
	return frame, true
}

func (c *snapshotCapture) fetch(ctx context.Context) (scan.Frame, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return scan.Frame{}, fmt.Errorf("build snapshot request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := c.client.Do(req)
	if err != nil {
		return scan.Frame{}, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer errors.DeferClose(c.logger, resp.Body, "Failed to close snapshot body")

	if resp.StatusCode != http.StatusOK {
		return scan.Frame{}, fmt.Errorf("fetch snapshot: unexpected status %s", resp.Status)
	}

	img, err := DecodeImage(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return scan.Frame{}, err
	}

	return scan.Frame{Image: img, CapturedAt: time.Now()}, nil
}

func (c *snapshotCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.client.CloseIdleConnections()
	return nil
}
