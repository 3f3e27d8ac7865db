package capture

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/coral-mesh/qrscan/internal/scan"
)

// FileCamera repeats a single still image.
type FileCamera struct {
	Path string
}

// Open decodes the image once.
func (c *FileCamera) Open(ctx context.Context) (scan.Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := LoadImage(c.Path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.Path, err)
	}
	return NewStill(img), nil
}

// Still is a capture that yields the same image on every call.
type Still struct {
	mu     sync.Mutex
	img    image.Image
	seq    sequence
	closed bool
}

// NewStill wraps img as a capture.
func NewStill(img image.Image) *Still {
	return &Still{img: img}
}

func (s *Still) TryFrame(ctx context.Context) (scan.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.img == nil || ctx.Err() != nil {
		return scan.Frame{}, false
	}
	return scan.Frame{Image: s.img, Seq: s.seq.next(), CapturedAt: time.Now()}, true
}

func (s *Still) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
