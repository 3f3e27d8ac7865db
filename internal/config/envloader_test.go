package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestApplyEnv_Config(t *testing.T) {
	cfg := Default()

	err := ApplyEnvFrom(cfg, mapLookup(map[string]string{
		"QRSCAN_SCAN_INTERVAL":        "250ms",
		"QRSCAN_SCAN_PADDING":         "4",
		"QRSCAN_SCAN_CLEAR_MODE":      "edge",
		"QRSCAN_CAMERA_KIND":          "http",
		"QRSCAN_CAMERA_URL":           "http://10.0.0.5/snapshot.jpg",
		"QRSCAN_CAMERA_LOOP":          "true",
		"QRSCAN_CAMERA_OPEN_RETRIES":  "5",
		"QRSCAN_DECODER_PURE_BARCODE": "1",
		"QRSCAN_DISPATCH_FILTER":      `type == "url"`,
		"QRSCAN_SERVER_MAX_CLIENTS":   " 8 ",
		"QRSCAN_LOG_LEVEL":            "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Scan.Interval)
	assert.Equal(t, 4, cfg.Scan.Padding)
	assert.Equal(t, "edge", cfg.Scan.ClearMode)
	assert.Equal(t, "http", cfg.Camera.Kind)
	assert.Equal(t, "http://10.0.0.5/snapshot.jpg", cfg.Camera.URL)
	assert.True(t, cfg.Camera.Loop)
	assert.Equal(t, 5, cfg.Camera.OpenRetries)
	assert.True(t, cfg.Decoder.PureBarcode)
	assert.Equal(t, `type == "url"`, cfg.Dispatch.Filter)
	assert.Equal(t, 8, cfg.Server.MaxClients)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched fields keep their defaults.
	assert.True(t, cfg.Decoder.TryHarder)
	assert.Equal(t, Default().Server.Listen, cfg.Server.Listen)
}

func TestApplyEnv_EmptyValueIgnored(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyEnvFrom(cfg, mapLookup(map[string]string{
		"QRSCAN_CAMERA_KIND": "",
	})))
	assert.Equal(t, Default().Camera.Kind, cfg.Camera.Kind)
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		envVar string
		value  string
	}{
		{"QRSCAN_SCAN_INTERVAL", "fast"},
		{"QRSCAN_SCAN_PADDING", "ten"},
		{"QRSCAN_CAMERA_LOOP", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			err := ApplyEnvFrom(Default(), mapLookup(map[string]string{tt.envVar: tt.value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.envVar)
		})
	}
}

func TestApplyEnv_FieldKinds(t *testing.T) {
	type nested struct {
		Ratio float64  `env:"T_RATIO"`
		Count uint     `env:"T_COUNT"`
		Tags  []string `env:"T_TAGS"`
	}
	type sample struct {
		Inner  nested
		Ignore string
		hidden string `env:"T_HIDDEN"`
	}

	s := &sample{}
	err := ApplyEnvFrom(s, mapLookup(map[string]string{
		"T_RATIO":  "0.5",
		"T_COUNT":  "7",
		"T_TAGS":   "a, b ,c",
		"T_HIDDEN": "x",
	}))
	require.NoError(t, err)

	assert.Equal(t, 0.5, s.Inner.Ratio)
	assert.Equal(t, uint(7), s.Inner.Count)
	assert.Equal(t, []string{"a", "b", "c"}, s.Inner.Tags)
	assert.Empty(t, s.hidden)
}

func TestApplyEnv_NilAndNonStruct(t *testing.T) {
	var cfg *Config
	assert.NoError(t, ApplyEnvFrom(cfg, mapLookup(nil)))

	n := 3
	assert.NoError(t, ApplyEnvFrom(&n, mapLookup(nil)))
}
