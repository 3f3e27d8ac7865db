package capture

import (
	"context"
	"time"

	"github.com/coral-mesh/qrscan/internal/errors"
	"github.com/coral-mesh/qrscan/internal/scan"
)

// ProbeResult describes a reachable source.
type ProbeResult struct {
	Width   int
	Height  int
	Elapsed time.Duration
}

// Probe opens camera, pulls one frame, and releases it. It reports whether
// the source is available before a scan session is started.
func Probe(ctx context.Context, camera scan.Camera) (ProbeResult, error) {
	started := time.Now()

	capture, err := camera.Open(ctx)
	if err != nil {
		return ProbeResult{}, &scan.CameraError{Op: "open", Err: err}
	}
	defer errors.DeferClose(nopLogger, capture, "Failed to release probe capture")

	frame, ok := capture.TryFrame(ctx)
	if !ok {
		return ProbeResult{}, &scan.CameraError{Op: "read", Err: ErrNoFrame}
	}

	b := frame.Bounds()
	return ProbeResult{Width: b.Dx(), Height: b.Dy(), Elapsed: time.Since(started)}, nil
}
