package scan

import "image"

// Event is emitted by the controller. The concrete types are
// EventStateChanged, EventDetected, EventCleared, EventDecodeFault, and
// EventCameraFailed.
type Event interface {
	isEvent()
}

// EventHandler receives controller events. It runs on the goroutine that
// produced the event, with the controller's lock held, so it must return
// quickly and must not call Start or Stop directly.
type EventHandler func(Event)

// EventStateChanged reports a lifecycle transition.
type EventStateChanged struct {
	State State
	// Session is the start session the transition belongs to.
	Session uint64
}

// EventDetected reports a decoded and classified symbol.
type EventDetected struct {
	Record DecodedRecord
	// Frame is the bounds of the frame the symbol was found in, for mapping
	// Record.Box onto a display.
	Frame image.Rectangle
	Seq   uint64
}

// EventCleared reports that the last frame contained no symbol.
type EventCleared struct{}

// EventDecodeFault reports a decoder error for one frame. Scanning continues.
type EventDecodeFault struct {
	Err error
}

// EventCameraFailed reports that a start attempt could not acquire the
// camera. The controller is back to StateIdle.
type EventCameraFailed struct {
	Err *CameraError
}

func (EventStateChanged) isEvent() {}
func (EventDetected) isEvent()     {}
func (EventCleared) isEvent()      {}
func (EventDecodeFault) isEvent()  {}
func (EventCameraFailed) isEvent() {}
