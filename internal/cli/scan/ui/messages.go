package ui

import (
	"github.com/coral-mesh/qrscan/internal/dispatch"
	"github.com/coral-mesh/qrscan/internal/scan"
)

// eventMsg carries one controller event.
type eventMsg struct {
	event scan.Event
}

// eventsClosedMsg reports that the event stream has ended.
type eventsClosedMsg struct{}

// startResultMsg is the outcome of a start request.
type startResultMsg struct {
	err error
}

// stoppedMsg reports that a stop request completed.
type stoppedMsg struct {
	quit bool
}

// actionDoneMsg reports that an action was performed.
type actionDoneMsg struct {
	action dispatch.Action
	err    error
}
