package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/qrscan/internal/scan"
)

var nopLogger = zerolog.Nop()

// DirCamera plays the images of a directory in name order, one per frame.
type DirCamera struct {
	Dir    string
	Loop   bool
	Logger zerolog.Logger
}

// Open lists the directory. Files are decoded lazily, one per TryFrame.
func (c *DirCamera) Open(ctx context.Context) (scan.Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.Dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsImageFile(e.Name()) {
			files = append(files, filepath.Join(c.Dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", c.Dir, ErrEmptySource)
	}
	sort.Strings(files)

	c.Logger.Debug().Str("dir", c.Dir).Int("images", len(files)).Msg("Opened directory source")

	return &dirCapture{files: files, loop: c.Loop, logger: c.Logger}, nil
}

type dirCapture struct {
	mu     sync.Mutex
	files  []string
	next   int
	loop   bool
	seq    sequence
	closed bool
	logger zerolog.Logger
}

// TryFrame decodes the next image. Unreadable files are skipped; once the
// directory is exhausted without Loop, no further frames are produced.
func (c *dirCapture) TryFrame(ctx context.Context) (scan.Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for attempts := 0; attempts < len(c.files); attempts++ {
		if c.closed || ctx.Err() != nil {
			return scan.Frame{}, false
		}
		if c.next >= len(c.files) {
			if !c.loop {
				return scan.Frame{}, false
			}
			c.next = 0
		}

		path := c.files[c.next]
		c.next++

		img, err := LoadImage(path)
		if err != nil {
			c.logger.Warn().Err(err).Str("file", path).Msg("Skipping unreadable image")
			continue
		}
		return scan.Frame{Image: img, Seq: c.seq.next(), CapturedAt: time.Now()}, true
	}
	return scan.Frame{}, false
}

func (c *dirCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
