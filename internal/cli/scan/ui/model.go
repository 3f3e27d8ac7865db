// Package ui is the interactive terminal front end for a scan session.
package ui

import (
	"context"
	"image"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/coral-mesh/qrscan/internal/dispatch"
	"github.com/coral-mesh/qrscan/internal/scan"
)

// Controller is the part of scan.Controller the UI drives.
type Controller interface {
	Start(ctx context.Context) <-chan error
	Stop()
	State() scan.State
}

// Options configures the model.
type Options struct {
	// Events is the controller's event stream. The UI reads it until closed.
	Events <-chan scan.Event
	// OpenTimeout bounds camera acquisition. Zero means no bound.
	OpenTimeout time.Duration
	// Performer runs actions the user picks. Nil only shows them.
	Performer dispatch.Performer
	// Source describes the frame source in the header.
	Source string
	// AutoStart starts scanning as soon as the program runs.
	AutoStart bool
}

// Model is the Bubbletea model for an interactive scan session.
type Model struct {
	ctrl Controller
	opts Options

	state   scan.State
	spinner spinner.Model

	// Last detection, kept while it is shown.
	record  *scan.DecodedRecord
	frame   image.Rectangle
	plan    []dispatch.Action

	detections int
	detail     string
	status     string
	lastError  error

	renderer *glamour.TermRenderer
	width    int
	height   int

	quitting bool
}

// NewModel creates a model driving ctrl.
func NewModel(ctrl Controller, opts Options) (Model, error) {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	rendererOpts := []glamour.TermRendererOption{glamour.WithWordWrap(60)}
	if os.Getenv("NO_COLOR") != "" {
		rendererOpts = append(rendererOpts, glamour.WithStylePath("notty"))
	} else {
		rendererOpts = append(rendererOpts, glamour.WithAutoStyle())
	}

	renderer, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return Model{}, err
	}

	return Model{
		ctrl:     ctrl,
		opts:     opts,
		state:    ctrl.State(),
		spinner:  s,
		renderer: renderer,
		width:    80,
		height:   24,
	}, nil
}

// Init initializes the model (Bubbletea interface).
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, waitForEvent(m.opts.Events)}
	if m.opts.AutoStart {
		cmds = append(cmds, startCmd(m.ctrl, m.opts.OpenTimeout))
	}
	return tea.Batch(cmds...)
}
