// Package scan runs the scanning lifecycle: it acquires a capture from a
// camera, pulls frames at a fixed cadence, decodes them, and reports
// detections as events.
//
// Example usage:
//
//	ctrl := scan.NewController(camera, decoder, scan.Options{
//	    Interval: 100 * time.Millisecond,
//	    OnEvent:  func(ev scan.Event) { events <- ev },
//	})
//	if err := <-ctrl.Start(ctx); err != nil {
//	    return err
//	}
//	defer ctrl.Stop()
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/coral-mesh/qrscan/internal/scan/content"
	"github.com/coral-mesh/qrscan/internal/scan/geometry"
)

// Frame is one raster image handed over by a capture. The controller owns it
// for the duration of a single tick and does not keep it afterwards.
type Frame struct {
	Image image.Image
	// Seq is assigned by the capture and increases monotonically.
	Seq uint64
	// CapturedAt is the source time of the frame.
	CapturedAt time.Time
}

// Bounds returns the frame's image bounds, or an empty rectangle.
func (f Frame) Bounds() image.Rectangle {
	if f.Image == nil {
		return image.Rectangle{}
	}
	return f.Image.Bounds()
}

// Camera acquires the capture resource. Open may block; the controller
// always calls it off the cadence loop.
type Camera interface {
	Open(ctx context.Context) (Capture, error)
}

// Capture yields frames from an open camera.
type Capture interface {
	// TryFrame returns the next frame, or false when none is ready. It must
	// return within a short bounded time.
	TryFrame(ctx context.Context) (Frame, bool)
	// Close releases the underlying device.
	Close() error
}

// Decoder attempts to locate and decode one symbol in a frame. Each call
// must be independent of the previous ones.
type Decoder interface {
	Decode(frame Frame) DecodeResult
}

// Outcome tags which variant of a DecodeResult is active.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeFound
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFound:
		return "found"
	case OutcomeError:
		return "error"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// DecodeResult is the outcome of one decode attempt. Build it with Found,
// NotFound, or Failed so exactly one variant carries data.
type DecodeResult struct {
	Outcome Outcome
	// Text and Points are set for OutcomeFound. Points may contain nil
	// entries for locators the decoder could not place.
	Text   string
	Points []*geometry.Point
	// Err is set for OutcomeError.
	Err error
}

// Found reports a decoded symbol.
func Found(text string, points []*geometry.Point) DecodeResult {
	return DecodeResult{Outcome: OutcomeFound, Text: text, Points: points}
}

// NotFound reports that no symbol was located. It is not an error.
func NotFound() DecodeResult {
	return DecodeResult{Outcome: OutcomeNotFound}
}

// Failed reports an unexpected decoder error.
func Failed(err error) DecodeResult {
	return DecodeResult{Outcome: OutcomeError, Err: err}
}

// DecodedRecord is a classified detection. It is only built from a Found
// result, with the box already padded and clamped.
type DecodedRecord struct {
	Text string               `json:"text"`
	Type content.Type         `json:"type"`
	Box  geometry.BoundingBox `json:"box"`
}

// NewRecord builds the record for a Found result. The second return value
// is false for any other outcome.
func NewRecord(res DecodeResult, padding int) (DecodedRecord, bool) {
	if res.Outcome != OutcomeFound {
		return DecodedRecord{}, false
	}
	return DecodedRecord{
		Text: res.Text,
		Type: content.Classify(res.Text),
		Box:  geometry.Resolve(res.Points, padding),
	}, true
}

// State is the controller lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateActive
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateStopping:
		return "stopping"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ClearMode selects when Cleared events are emitted.
type ClearMode int

const (
	// ClearLevel emits Cleared on every tick that finds no symbol.
	ClearLevel ClearMode = iota
	// ClearEdge emits Cleared once, on the first empty tick after a detection.
	ClearEdge
)

// ParseClearMode accepts "level" or "edge".
func ParseClearMode(s string) (ClearMode, error) {
	switch s {
	case "", "level":
		return ClearLevel, nil
	case "edge":
		return ClearEdge, nil
	}
	return ClearLevel, fmt.Errorf("unknown clear mode %q (want level or edge)", s)
}

func (m ClearMode) String() string {
	if m == ClearEdge {
		return "edge"
	}
	return "level"
}
