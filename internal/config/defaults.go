package config

import (
	"github.com/coral-mesh/qrscan/internal/constants"
)

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Version: SchemaVersion,
		Scan: ScanConfig{
			Interval:  constants.DefaultScanInterval,
			Padding:   constants.DefaultPadding,
			ClearMode: constants.DefaultClearMode,
		},
		Camera: CameraConfig{
			Kind:         constants.DefaultCameraKind,
			Path:         ".",
			OpenTimeout:  constants.DefaultCameraOpenTimeout,
			OpenRetries:  constants.DefaultCameraOpenRetries,
			FrameTimeout: constants.DefaultCameraFrameTimeout,
		},
		Decoder: DecoderConfig{
			TryHarder: true,
		},
		Server: ServerConfig{
			Listen:     constants.DefaultServerListen,
			MaxClients: constants.DefaultServerMaxClients,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: "auto",
		},
	}
}
