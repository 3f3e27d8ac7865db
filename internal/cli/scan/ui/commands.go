package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/coral-mesh/qrscan/internal/dispatch"
	"github.com/coral-mesh/qrscan/internal/scan"
)

// waitForEvent returns the next controller event as a message. Update
// re-arms it after each event.
func waitForEvent(events <-chan scan.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

// startCmd starts the controller and waits for the acquisition outcome.
func startCmd(ctrl Controller, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return startResultMsg{err: <-ctrl.Start(ctx)}
	}
}

// stopCmd stops the controller off the UI goroutine.
func stopCmd(ctrl Controller, quit bool) tea.Cmd {
	return func() tea.Msg {
		ctrl.Stop()
		return stoppedMsg{quit: quit}
	}
}

// performCmd runs action through performer.
func performCmd(performer dispatch.Performer, action dispatch.Action) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: performer.Perform(context.Background(), action)}
	}
}
