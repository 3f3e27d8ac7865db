package scan

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/qrscan/internal/errors"
	"github.com/coral-mesh/qrscan/internal/logging"
	"github.com/coral-mesh/qrscan/internal/scan/geometry"
)

// DefaultInterval is the cadence at which frames are pulled and decoded.
const DefaultInterval = 100 * time.Millisecond

// Options tunes the controller.
type Options struct {
	// Interval is the tick cadence. Default: DefaultInterval.
	Interval time.Duration
	// Padding is added around located symbols. Nil selects
	// geometry.DefaultPadding; negative values are treated as zero.
	Padding *int
	// ClearMode selects level- or edge-triggered Cleared events.
	ClearMode ClearMode
	// OnEvent receives every event. Nil discards events.
	OnEvent EventHandler
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

func (o *Options) defaults() {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
}

// padding resolves the configured margin.
func (o *Options) padding() int {
	switch {
	case o.Padding == nil:
		return geometry.DefaultPadding
	case *o.Padding < 0:
		return 0
	default:
		return *o.Padding
	}
}

// Controller owns the scanning lifecycle. It is safe for concurrent use.
//
// State transitions happen only in Start, Stop, and the acquisition
// completion handler, all under mu. Every start bumps session; work that
// belongs to an older session is discarded when it completes.
type Controller struct {
	camera  Camera
	decoder Decoder
	opts    Options
	padding int
	logger  zerolog.Logger

	mu      sync.Mutex
	state   State
	session uint64
	// shown is true between a Detected event and the next Cleared event.
	shown bool

	// Starting: pending receives the outcome, cancelAcquire aborts Open.
	pending       chan error
	cancelAcquire context.CancelFunc

	// Active: the capture handle and the cadence loop.
	capture    Capture
	cancelLoop context.CancelFunc
	loopDone   chan struct{}

	// Stopping: closed when the in-progress Stop completes.
	stopped chan struct{}

	stats counters
}

// NewController creates an idle controller.
func NewController(camera Camera, decoder Decoder, opts Options) *Controller {
	opts.defaults()
	return &Controller{
		camera:  camera,
		decoder: decoder,
		opts:    opts,
		padding: opts.padding(),
		logger:  opts.Logger.With().Str("component", "scan").Logger(),
	}
}

// Padding returns the margin added around located symbols.
func (c *Controller) Padding() int {
	return c.padding
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Interval returns the configured tick cadence.
func (c *Controller) Interval() time.Duration {
	return c.opts.Interval
}

// Start begins acquiring the camera in the background and returns at once.
// The returned channel receives nil once scanning is active, a *CameraError
// if acquisition failed, or ErrStartAborted if Stop won the race; it is then
// closed. ctx bounds the acquisition only.
//
// Calling Start while not idle does nothing; the returned channel is already
// closed.
func (c *Controller) Start(ctx context.Context) <-chan error {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(chan error, 1)
	if c.state != StateIdle {
		close(result)
		return result
	}

	c.session++
	session := c.session
	acquireCtx, cancel := context.WithCancel(ctx)
	c.pending = result
	c.cancelAcquire = cancel
	c.stats.sessions.Add(1)
	c.setState(StateStarting)

	c.logger.Info().Uint64("session", session).Msg("Acquiring camera")

	go c.acquire(acquireCtx, session)
	return result
}

// acquire opens the camera and applies the outcome if the session is still
// current. A capture opened for a stale session is released immediately.
func (c *Controller) acquire(ctx context.Context, session uint64) {
	capture, err := c.camera.Open(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != session || c.state != StateStarting {
		if err == nil {
			c.logger.Debug().Uint64("session", session).Msg("Releasing capture acquired after stop")
			errors.DeferClose(c.logger, capture, "Failed to release stale capture")
		}
		return
	}

	c.cancelAcquire()
	c.cancelAcquire = nil
	result := c.pending
	c.pending = nil

	if err != nil {
		camErr := &CameraError{Op: "open", Err: err}
		c.logger.Error().Err(err).Uint64("session", session).Msg("Camera acquisition failed")
		c.emit(EventCameraFailed{Err: camErr})
		c.setState(StateIdle)
		result <- camErr
		close(result)
		return
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	c.capture = capture
	c.cancelLoop = cancel
	c.loopDone = make(chan struct{})
	c.shown = false
	c.setState(StateActive)

	c.logger.Info().
		Uint64("session", session).
		Dur("interval", c.opts.Interval).
		Str("clear_mode", c.opts.ClearMode.String()).
		Msg("Scanning started")

	go c.run(loopCtx, session, capture, c.loopDone)

	result <- nil
	close(result)
}

// Stop ends scanning from any state and releases the capture. It is safe to
// call at any time, including while a Start is pending, and does nothing when
// already idle. It returns once the cadence loop has exited and the capture
// is closed. It must not be called from an EventHandler.
func (c *Controller) Stop() {
	c.mu.Lock()
	switch c.state {
	case StateIdle:
		c.mu.Unlock()
		return
	case StateStopping:
		stopped := c.stopped
		c.mu.Unlock()
		<-stopped
		return
	}

	c.session++
	c.stopped = make(chan struct{})
	stopped := c.stopped
	c.setState(StateStopping)

	if c.cancelAcquire != nil {
		c.cancelAcquire()
		c.cancelAcquire = nil
	}
	if c.pending != nil {
		c.pending <- ErrStartAborted
		close(c.pending)
		c.pending = nil
	}

	cancel, done, capture := c.cancelLoop, c.loopDone, c.capture
	c.cancelLoop, c.loopDone, c.capture = nil, nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	errors.DeferClose(c.logger, capture, "Failed to release capture")

	c.mu.Lock()
	c.shown = false
	c.setState(StateIdle)
	c.stopped = nil
	c.mu.Unlock()
	close(stopped)

	c.logger.Info().Msg("Scanning stopped")
}

// run drives ticks for one session. It ticks immediately, then on every
// interval. Ticks run on this goroutine only, so decodes never overlap; a
// slow decode delays the next tick.
func (c *Controller) run(ctx context.Context, session uint64, capture Capture, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	c.tick(ctx, session, capture)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx, session, capture)
		}
	}
}

// tick runs one frame through the decoder and emits the outcome.
func (c *Controller) tick(ctx context.Context, session uint64, capture Capture) {
	if ctx.Err() != nil {
		return
	}
	c.stats.ticks.Add(1)

	frame, ok := capture.TryFrame(ctx)
	if !ok {
		c.stats.emptyTicks.Add(1)
		return
	}
	c.stats.frames.Add(1)

	started := time.Now()
	result := c.decoder.Decode(frame)
	c.stats.observeDecode(time.Since(started))

	c.mu.Lock()
	defer c.mu.Unlock()

	// Stop may have run while the decoder was busy.
	if c.session != session || c.state != StateActive {
		return
	}

	switch result.Outcome {
	case OutcomeFound:
		record, _ := NewRecord(result, c.padding)
		c.shown = true
		c.stats.detections.Add(1)
		logging.Payload(c.logger.Debug(), c.logger, record.Text).
			Str("type", record.Type.String()).
			Uint64("seq", frame.Seq).
			Msg("Symbol detected")
		c.emit(EventDetected{Record: record, Frame: frame.Bounds(), Seq: frame.Seq})

	case OutcomeNotFound:
		if c.opts.ClearMode == ClearEdge && !c.shown {
			return
		}
		c.shown = false
		c.stats.clears.Add(1)
		c.emit(EventCleared{})

	case OutcomeError:
		c.stats.faults.Add(1)
		c.logger.Warn().Err(result.Err).Uint64("seq", frame.Seq).Msg("Decode fault")
		c.emit(EventDecodeFault{Err: result.Err})
	}
}

// setState records a transition and emits StateChanged. Callers hold mu.
func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.state = s
	c.emit(EventStateChanged{State: s, Session: c.session})
}

// emit delivers ev to the handler. Callers hold mu.
func (c *Controller) emit(ev Event) {
	if c.opts.OnEvent != nil {
		c.opts.OnEvent(ev)
	}
}
