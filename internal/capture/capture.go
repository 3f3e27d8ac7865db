// Package capture provides frame sources for the scanner.
//
// A directory of images stands in for a live feed during development, a
// single image repeats one frame forever, and an HTTP snapshot source pulls
// JPEG stills from an IP camera. All of them implement scan.Camera.
package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/qrscan/internal/scan"
)

// Source kinds accepted by New.
const (
	KindDir  = "dir"
	KindFile = "file"
	KindHTTP = "http"
)

// DefaultFrameTimeout bounds a single snapshot request.
const DefaultFrameTimeout = 2 * time.Second

var (
	// ErrEmptySource is returned by Open when a source holds no images.
	ErrEmptySource = errors.New("source has no images")
	// ErrNoFrame is returned by Probe when an opened source yields nothing.
	ErrNoFrame = errors.New("source produced no frame")
)

// Options selects and configures a frame source.
type Options struct {
	Kind string
	// Path is the directory or image file for dir and file sources.
	Path string
	// URL is the snapshot endpoint for http sources.
	URL string
	// Loop restarts a directory source at the first image when it runs out.
	Loop bool
	// FrameTimeout bounds each snapshot request. Default: DefaultFrameTimeout.
	FrameTimeout time.Duration
}

// New builds the camera described by opts.
func New(opts Options, logger zerolog.Logger) (scan.Camera, error) {
	logger = logger.With().Str("component", "capture").Str("kind", opts.Kind).Logger()

	switch opts.Kind {
	case KindDir:
		if opts.Path == "" {
			return nil, errors.New("dir source requires a path")
		}
		return &DirCamera{Dir: opts.Path, Loop: opts.Loop, Logger: logger}, nil
	case KindFile:
		if opts.Path == "" {
			return nil, errors.New("file source requires a path")
		}
		return &FileCamera{Path: opts.Path}, nil
	case KindHTTP:
		if opts.URL == "" {
			return nil, errors.New("http source requires a url")
		}
		return &SnapshotCamera{URL: opts.URL, FrameTimeout: opts.FrameTimeout, Logger: logger}, nil
	}
	return nil, fmt.Errorf("unknown camera kind %q (want %s, %s or %s)", opts.Kind, KindDir, KindFile, KindHTTP)
}

// sequence hands out monotonically increasing frame numbers starting at 1.
type sequence struct {
	n uint64
}

func (s *sequence) next() uint64 {
	s.n++
	return s.n
}
