package scan

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of controller counters.
type Stats struct {
	State      State  `json:"state"`
	Sessions   uint64 `json:"sessions"`
	Ticks      uint64 `json:"ticks"`
	Frames     uint64 `json:"frames"`
	EmptyTicks uint64 `json:"empty_ticks"`
	Detections uint64 `json:"detections"`
	Clears     uint64 `json:"clears"`
	Faults     uint64 `json:"faults"`
	// LastDecode is the duration of the most recent decode call.
	LastDecode time.Duration `json:"last_decode_ns"`
}

type counters struct {
	sessions   atomic.Uint64
	ticks      atomic.Uint64
	frames     atomic.Uint64
	emptyTicks atomic.Uint64
	detections atomic.Uint64
	clears     atomic.Uint64
	faults     atomic.Uint64
	lastDecode atomic.Int64
}

func (c *counters) observeDecode(d time.Duration) {
	c.lastDecode.Store(int64(d))
}

// Stats returns current counters. Counters are cumulative across sessions.
func (c *Controller) Stats() Stats {
	return Stats{
		State:      c.State(),
		Sessions:   c.stats.sessions.Load(),
		Ticks:      c.stats.ticks.Load(),
		Frames:     c.stats.frames.Load(),
		EmptyTicks: c.stats.emptyTicks.Load(),
		Detections: c.stats.detections.Load(),
		Clears:     c.stats.clears.Load(),
		Faults:     c.stats.faults.Load(),
		LastDecode: time.Duration(c.stats.lastDecode.Load()),
	}
}
