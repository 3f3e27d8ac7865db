package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/coral-mesh/qrscan/internal/dispatch"
	"github.com/coral-mesh/qrscan/internal/scan"
)

// Update handles messages and updates the model (Bubbletea interface).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m.handleEvent(msg.event)
		return m, waitForEvent(m.opts.Events)

	case eventsClosedMsg:
		return m, nil

	case startResultMsg:
		if msg.err != nil && !errors.Is(msg.err, scan.ErrStartAborted) {
			m.lastError = msg.err
		}
		return m, nil

	case stoppedMsg:
		if msg.quit {
			return m, tea.Quit
		}
		m.status = "Scanning stopped"
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.status = fmt.Sprintf("%s done", msg.action.Label)
		return m, nil
	}

	return m, nil
}

// handleEvent folds a controller event into the model.
func (m *Model) handleEvent(ev scan.Event) {
	switch e := ev.(type) {
	case scan.EventStateChanged:
		m.state = e.State
		if e.State == scan.StateStarting {
			m.lastError = nil
			m.status = ""
		}
		if e.State == scan.StateIdle {
			m.clearDetection()
		}

	case scan.EventDetected:
		record := e.Record
		m.record = &record
		m.frame = e.Frame
		m.plan = dispatch.Plan(record)
		m.detections++
		m.lastError = nil

	case scan.EventCleared:
		m.clearDetection()

	case scan.EventDecodeFault:
		m.lastError = e.Err

	case scan.EventCameraFailed:
		m.lastError = e.Err
	}
}

func (m *Model) clearDetection() {
	m.record = nil
	m.plan = nil
	m.detail = ""
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		if m.state == scan.StateIdle {
			return m, tea.Quit
		}
		return m, stopCmd(m.ctrl, true)

	case "s", " ":
		switch m.state {
		case scan.StateIdle:
			m.lastError = nil
			return m, startCmd(m.ctrl, m.opts.OpenTimeout)
		case scan.StateStarting, scan.StateActive:
			return m, stopCmd(m.ctrl, false)
		case scan.StateStopping:
		}
		return m, nil

	case "enter":
		if m.record == nil {
			return m, nil
		}
		return m.perform(dispatch.Primary(*m.record))

	case "c":
		if len(m.plan) == 0 {
			return m, nil
		}
		return m.perform(m.plan[0])

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(key[0] - '1')
		if idx >= len(m.plan) {
			return m, nil
		}
		return m.perform(m.plan[idx])
	}

	return m, nil
}

// perform shows action's card and hands it to the performer, if any.
func (m Model) perform(action dispatch.Action) (tea.Model, tea.Cmd) {
	card := dispatch.Markdown(action)
	rendered, err := m.renderer.Render(card)
	if err != nil {
		rendered = card
	}
	m.detail = rendered

	if m.opts.Performer == nil {
		m.status = fmt.Sprintf("%s shown", action.Label)
		return m, nil
	}
	return m, performCmd(m.opts.Performer, action)
}
