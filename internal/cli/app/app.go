// Package app wires configuration into the scanner components for the
// command-line hosts.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/qrscan/internal/capture"
	"github.com/coral-mesh/qrscan/internal/config"
	"github.com/coral-mesh/qrscan/internal/constants"
	"github.com/coral-mesh/qrscan/internal/decoder"
	"github.com/coral-mesh/qrscan/internal/dispatch"
	"github.com/coral-mesh/qrscan/internal/logging"
	"github.com/coral-mesh/qrscan/internal/scan"
)

// Env is the loaded configuration and the root logger.
type Env struct {
	Config *config.Config
	Logger zerolog.Logger
}

// Load reads the configuration named by the --config flag (or the default
// location), applies the --log-level flag, and builds the logger. Logs go to
// stderr so stdout stays clean for event output.
func Load(cmd *cobra.Command) (*Env, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.NewLoader().Load(path)
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	return &Env{Config: cfg, Logger: NewLogger(cfg.Logging, os.Stderr)}, nil
}

// NewLogger builds the root logger for a logging section.
func NewLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Level,
		Pretty: logging.ResolvePretty(cfg.Pretty, out),
		Output: out,
	})
}

// NewCamera builds the configured frame source with open retries.
func NewCamera(cfg config.CameraConfig, logger zerolog.Logger) (scan.Camera, error) {
	camera, err := capture.New(capture.Options{
		Kind:         cfg.Kind,
		Path:         cfg.Path,
		URL:          cfg.URL,
		Loop:         cfg.Loop,
		FrameTimeout: cfg.FrameTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	if cfg.OpenRetries <= 1 {
		return camera, nil
	}
	return capture.WithRetry(camera, cfg.OpenRetries, constants.DefaultCameraRetryBackoff, logger), nil
}

// NewDecoder builds the QR decoder.
func NewDecoder(cfg config.DecoderConfig) *decoder.QR {
	return decoder.New(decoder.Options{
		TryHarder:   cfg.TryHarder,
		PureBarcode: cfg.PureBarcode,
	})
}

// NewController builds a controller for the scan section.
func NewController(env *Env, camera scan.Camera, dec scan.Decoder, onEvent scan.EventHandler) (*scan.Controller, error) {
	mode, err := scan.ParseClearMode(env.Config.Scan.ClearMode)
	if err != nil {
		return nil, err
	}
	logger := env.Logger
	padding := env.Config.Scan.Padding
	return scan.NewController(camera, dec, scan.Options{
		Interval:  env.Config.Scan.Interval,
		Padding:   &padding,
		ClearMode: mode,
		OnEvent:   onEvent,
		Logger:    &logger,
	}), nil
}

// NewDispatcher builds the auto-dispatch pipeline. Actions are printed to out,
// or handed to the system opener when cfg.Open is set.
func NewDispatcher(cfg config.DispatchConfig, out io.Writer, logger zerolog.Logger) (*dispatch.Dispatcher, error) {
	var filter *dispatch.Filter
	if cfg.Filter != "" {
		f, err := dispatch.NewFilter(cfg.Filter)
		if err != nil {
			return nil, err
		}
		filter = f
	}

	terminal, err := dispatch.NewTerminalPerformer(out)
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal performer: %w", err)
	}

	var performer dispatch.Performer = terminal
	if cfg.Open {
		performer = &dispatch.SystemOpener{Fallback: terminal}
	}
	return dispatch.NewDispatcher(performer, filter, logger), nil
}
