package config

import "time"

// SchemaVersion is the current configuration schema version.
const SchemaVersion = "1"

// Config is the scanner configuration stored in ~/.qrscan/config.yaml.
type Config struct {
	Version  string         `yaml:"version"`
	Scan     ScanConfig     `yaml:"scan"`
	Camera   CameraConfig   `yaml:"camera"`
	Decoder  DecoderConfig  `yaml:"decoder"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ScanConfig controls the scan loop.
type ScanConfig struct {
	// Interval between frame decodes.
	Interval time.Duration `yaml:"interval" env:"QRSCAN_SCAN_INTERVAL"`

	// Padding in pixels added around located symbols.
	Padding int `yaml:"padding" env:"QRSCAN_SCAN_PADDING"`

	// ClearMode is "level" (clear on every empty frame) or "edge" (clear once
	// after a detection).
	ClearMode string `yaml:"clear_mode" env:"QRSCAN_SCAN_CLEAR_MODE"`
}

// CameraConfig selects the frame source.
type CameraConfig struct {
	// Kind is "dir", "file" or "http".
	Kind string `yaml:"kind" env:"QRSCAN_CAMERA_KIND"`

	// Path is the image directory or file for dir and file sources.
	Path string `yaml:"path,omitempty" env:"QRSCAN_CAMERA_PATH"`

	// URL is the snapshot endpoint for http sources.
	URL string `yaml:"url,omitempty" env:"QRSCAN_CAMERA_URL"`

	// Loop restarts a directory source when it runs out of images.
	Loop bool `yaml:"loop" env:"QRSCAN_CAMERA_LOOP"`

	OpenTimeout  time.Duration `yaml:"open_timeout" env:"QRSCAN_CAMERA_OPEN_TIMEOUT"`
	OpenRetries  int           `yaml:"open_retries" env:"QRSCAN_CAMERA_OPEN_RETRIES"`
	FrameTimeout time.Duration `yaml:"frame_timeout" env:"QRSCAN_CAMERA_FRAME_TIMEOUT"`
}

// DecoderConfig tunes symbol detection.
type DecoderConfig struct {
	TryHarder   bool `yaml:"try_harder" env:"QRSCAN_DECODER_TRY_HARDER"`
	PureBarcode bool `yaml:"pure_barcode" env:"QRSCAN_DECODER_PURE_BARCODE"`
}

// DispatchConfig controls automatic actions on detections.
type DispatchConfig struct {
	// Auto performs the primary action of every matching detection.
	Auto bool `yaml:"auto" env:"QRSCAN_DISPATCH_AUTO"`

	// Filter is a CEL expression over type, text and fields.
	Filter string `yaml:"filter,omitempty" env:"QRSCAN_DISPATCH_FILTER"`

	// Open hands links, numbers and addresses to the system handler instead
	// of printing them.
	Open bool `yaml:"open" env:"QRSCAN_DISPATCH_OPEN"`
}

// ServerConfig controls the HTTP host.
type ServerConfig struct {
	Listen     string `yaml:"listen" env:"QRSCAN_SERVER_LISTEN"`
	MaxClients int    `yaml:"max_clients" env:"QRSCAN_SERVER_MAX_CLIENTS"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level" env:"QRSCAN_LOG_LEVEL"`

	// Pretty is "auto", "true" or "false".
	Pretty string `yaml:"pretty" env:"QRSCAN_LOG_PRETTY"`
}
