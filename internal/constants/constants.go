// Package constants defines shared configuration constants and defaults.
package constants

import "time"

const (
	// ConfigFile is the configuration file name inside DefaultDir.
	ConfigFile = "config.yaml"

	// DefaultDir is the per-user directory under the home directory.
	DefaultDir = ".qrscan"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "QRSCAN_"

	// ConfigDirEnv overrides the base directory holding DefaultDir.
	ConfigDirEnv = "QRSCAN_CONFIG"
)

// Scanning defaults.
const (
	// DefaultScanInterval is the cadence at which frames are decoded.
	DefaultScanInterval = 100 * time.Millisecond

	// DefaultPadding is added around located symbols, in pixels.
	DefaultPadding = 10

	DefaultClearMode = "level"
)

// Camera defaults.
const (
	DefaultCameraKind = "dir"

	DefaultCameraOpenTimeout = 10 * time.Second

	// DefaultCameraOpenRetries is the total number of open attempts.
	DefaultCameraOpenRetries = 3

	DefaultCameraRetryBackoff = 250 * time.Millisecond

	DefaultCameraFrameTimeout = 2 * time.Second
)

// Server defaults.
const (
	DefaultServerListen = "127.0.0.1:8765"

	// DefaultServerMaxClients caps concurrent HTTP connections.
	DefaultServerMaxClients = 64

	// DefaultEventBuffer is the per-client websocket send queue length.
	DefaultEventBuffer = 32

	DefaultShutdownTimeout = 5 * time.Second
)
