// Package scan implements the scan command.
package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/qrscan/internal/capture"
	"github.com/coral-mesh/qrscan/internal/cli/app"
	"github.com/coral-mesh/qrscan/internal/cli/helpers"
	"github.com/coral-mesh/qrscan/internal/cli/scan/ui"
	"github.com/coral-mesh/qrscan/internal/config"
	"github.com/coral-mesh/qrscan/internal/constants"
	"github.com/coral-mesh/qrscan/internal/dispatch"
	"github.com/coral-mesh/qrscan/internal/scan"
)

// Output formats for the event stream.
const (
	formatText  = "text"
	formatJSONL = "jsonl"
)

type options struct {
	format   string
	tui      bool
	check    bool
	once     bool
	duration time.Duration

	kind      string
	path      string
	url       string
	loop      bool
	interval  time.Duration
	clearMode string

	auto   bool
	filter string
	open   bool
}

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan frames for QR codes",
		Long: `Acquire the configured camera and decode frames at a fixed cadence until
interrupted. Each detection is classified (URL, WiFi, email, SMS, phone,
contact card, geo location or text) and reported as it appears.

Frame sources:
  dir   - images in a directory, one per tick (--path)
  file  - a single still image (--path)
  http  - a snapshot endpoint polled once per tick (--url)

Examples:
  qrscan scan --path ./frames --loop
  qrscan scan --kind http --url http://cam.local/snapshot.jpg --format jsonl
  qrscan scan --path ./frames --auto --filter 'type == "url"'
  qrscan scan --tui
  qrscan scan --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "o", formatText, "Event output format (text, jsonl)")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "Run the interactive terminal UI")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Check that the camera delivers a frame and exit")
	cmd.Flags().BoolVar(&opts.once, "once", false, "Stop after the first detection")
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "Stop after this long (0 runs until interrupted)")

	cmd.Flags().StringVar(&opts.kind, "kind", "", "Frame source kind (dir, file, http)")
	cmd.Flags().StringVar(&opts.path, "path", "", "Image directory or file")
	cmd.Flags().StringVar(&opts.url, "url", "", "Snapshot URL")
	cmd.Flags().BoolVar(&opts.loop, "loop", false, "Restart a directory source when it runs out of images")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "Decode interval")
	cmd.Flags().StringVar(&opts.clearMode, "clear-mode", "", "When to report cleared frames (level, edge)")

	cmd.Flags().BoolVar(&opts.auto, "auto", false, "Perform the primary action of each detection")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "CEL expression selecting detections to act on")
	cmd.Flags().BoolVar(&opts.open, "open", false, "Open links, numbers and addresses with the system handler")

	return cmd
}

// applyFlags overrides configuration with the flags that were set.
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("kind") {
		cfg.Camera.Kind = opts.kind
	}
	if flags.Changed("path") {
		cfg.Camera.Path = opts.path
	}
	if flags.Changed("url") {
		cfg.Camera.URL = opts.url
		if !flags.Changed("kind") {
			cfg.Camera.Kind = capture.KindHTTP
		}
	}
	if flags.Changed("loop") {
		cfg.Camera.Loop = opts.loop
	}
	if flags.Changed("interval") {
		cfg.Scan.Interval = opts.interval
	}
	if flags.Changed("clear-mode") {
		cfg.Scan.ClearMode = opts.clearMode
	}
	if flags.Changed("auto") {
		cfg.Dispatch.Auto = opts.auto
	}
	if flags.Changed("filter") {
		cfg.Dispatch.Filter = opts.filter
		cfg.Dispatch.Auto = true
	}
	if flags.Changed("open") {
		cfg.Dispatch.Open = opts.open
	}
}

func run(cmd *cobra.Command, opts *options) error {
	if opts.format != formatText && opts.format != formatJSONL {
		return fmt.Errorf("unsupported format: %s (supported: %s, %s)", opts.format, formatText, formatJSONL)
	}

	env, err := app.Load(cmd)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, env.Config)
	if err := env.Config.Validate(); err != nil {
		return err
	}

	camera, err := app.NewCamera(env.Config.Camera, env.Logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.check {
		return runCheck(ctx, cmd.OutOrStdout(), camera, env.Config.Camera.OpenTimeout)
	}

	events := make(chan scan.Event, constants.DefaultEventBuffer)
	ctrl, err := app.NewController(env, camera, app.NewDecoder(env.Config.Decoder), forward(events, env.Logger))
	if err != nil {
		return err
	}

	if opts.tui {
		return runTUI(ctx, ctrl, events, env.Config)
	}

	var dispatcher *dispatch.Dispatcher
	if env.Config.Dispatch.Auto {
		dispatcher, err = app.NewDispatcher(env.Config.Dispatch, cmd.OutOrStdout(), env.Logger)
		if err != nil {
			return err
		}
	}

	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	startCtx, cancelStart := context.WithTimeout(ctx, env.Config.Camera.OpenTimeout)
	defer cancelStart()
	if err := <-ctrl.Start(startCtx); err != nil {
		if errors.Is(err, scan.ErrStartAborted) || ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer ctrl.Stop()

	printer := &eventPrinter{out: cmd.OutOrStdout(), format: opts.format}
	return consume(ctx, events, printer, dispatcher, opts.once, env.Logger)
}

// forward returns a handler that queues events without blocking the
// controller. Events are dropped when the queue is full.
func forward(events chan<- scan.Event, logger zerolog.Logger) scan.EventHandler {
	return func(ev scan.Event) {
		select {
		case events <- ev:
		default:
			logger.Warn().Msg("Event queue full, dropping event")
		}
	}
}

// consume prints events and dispatches detections until ctx is done or,
// with once set, after the first detection.
func consume(
	ctx context.Context,
	events <-chan scan.Event,
	printer *eventPrinter,
	dispatcher *dispatch.Dispatcher,
	once bool,
	logger zerolog.Logger,
) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if err := printer.print(ev); err != nil {
				return err
			}

			detected, ok := ev.(scan.EventDetected)
			if !ok {
				continue
			}
			if dispatcher != nil {
				if _, err := dispatcher.Dispatch(ctx, detected.Record); err != nil {
					logger.Error().Err(err).Msg("Failed to dispatch action")
				}
			}
			if once {
				return nil
			}
		}
	}
}

func runCheck(ctx context.Context, out io.Writer, camera scan.Camera, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := capture.Probe(ctx, camera)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Camera OK: %dx%d frame in %s\n", res.Width, res.Height, helpers.FormatDuration(res.Elapsed))
	return err
}

func runTUI(ctx context.Context, ctrl *scan.Controller, events <-chan scan.Event, cfg *config.Config) error {
	var performer dispatch.Performer
	if cfg.Dispatch.Open {
		// Cards are already shown by the UI; only URI targets need handling.
		performer = &dispatch.SystemOpener{
			Fallback: dispatch.PerformerFunc(func(context.Context, dispatch.Action) error { return nil }),
		}
	}

	model, err := ui.NewModel(ctrl, ui.Options{
		Events:      events,
		OpenTimeout: cfg.Camera.OpenTimeout,
		Performer:   performer,
		Source:      describeSource(cfg.Camera),
		AutoStart:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to create UI: %w", err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	ctrl.Stop()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func describeSource(cfg config.CameraConfig) string {
	if cfg.Kind == capture.KindHTTP {
		return cfg.Kind + ":" + cfg.URL
	}
	return cfg.Kind + ":" + cfg.Path
}

// eventPrinter writes events as text lines or JSON lines.
type eventPrinter struct {
	out    io.Writer
	format string
	now    func() time.Time
}

func (p *eventPrinter) print(ev scan.Event) error {
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	msg := scan.NewMessage(ev, now())

	if p.format == formatJSONL {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
		_, err = fmt.Fprintln(p.out, string(data))
		return err
	}

	line := textLine(msg)
	if line == "" {
		return nil
	}
	_, err := fmt.Fprintln(p.out, line)
	return err
}

// textLine renders a message for humans. Cleared events are not printed.
func textLine(msg scan.Message) string {
	switch msg.Event {
	case scan.MessageDetected:
		r := msg.Record
		line := fmt.Sprintf("[%s] %s  (box %d,%d %dx%d)", r.Type, r.Text, r.Box.X, r.Box.Y, r.Box.Width, r.Box.Height)
		for _, key := range slices.Sorted(maps.Keys(msg.Fields)) {
			line += fmt.Sprintf("\n    %s: %s", key, msg.Fields[key])
		}
		return line
	case scan.MessageStateChanged:
		return "scanner " + msg.State
	case scan.MessageDecodeFault:
		return "decode fault: " + msg.Error
	case scan.MessageCameraFailed:
		return "camera failed: " + msg.Error
	}
	return ""
}
