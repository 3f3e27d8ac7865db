package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/coral-mesh/qrscan/internal/capture"
	"github.com/coral-mesh/qrscan/internal/dispatch"
	"github.com/coral-mesh/qrscan/internal/scan"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiValidationError represents multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		builder.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []ValidationError
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Scan.Interval <= 0 {
		add("scan.interval", "interval must be positive")
	}
	if c.Scan.Padding < 0 {
		add("scan.padding", "padding cannot be negative")
	}
	if _, err := scan.ParseClearMode(c.Scan.ClearMode); err != nil {
		add("scan.clear_mode", "clear mode must be 'level' or 'edge'")
	}

	switch c.Camera.Kind {
	case capture.KindDir, capture.KindFile:
		if c.Camera.Path == "" {
			add("camera.path", "path is required for %s sources", c.Camera.Kind)
		}
	case capture.KindHTTP:
		if u, err := url.Parse(c.Camera.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("camera.url", "url must be an http(s) URL")
		}
	default:
		add("camera.kind", "camera kind must be 'dir', 'file' or 'http'")
	}
	if c.Camera.OpenTimeout <= 0 {
		add("camera.open_timeout", "open timeout must be positive")
	}
	if c.Camera.OpenRetries < 1 {
		add("camera.open_retries", "open retries must be at least 1")
	}
	if c.Camera.FrameTimeout <= 0 {
		add("camera.frame_timeout", "frame timeout must be positive")
	}

	if c.Dispatch.Filter != "" {
		if _, err := dispatch.NewFilter(c.Dispatch.Filter); err != nil {
			add("dispatch.filter", "%v", err)
		}
	}

	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		add("server.listen", "listen address must be host:port")
	}
	if c.Server.MaxClients < 1 {
		add("server.max_clients", "max clients must be at least 1")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled", "off":
	default:
		add("logging.level", "unknown log level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Pretty) {
	case "", "auto", "true", "false", "yes", "no", "on", "off":
	default:
		add("logging.pretty", "pretty must be 'auto', 'true' or 'false'")
	}

	if len(errs) > 0 {
		return &MultiValidationError{Errors: errs}
	}
	return nil
}
