package scan

import (
	"encoding/json"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/qrscan/internal/scan/content"
	"github.com/coral-mesh/qrscan/internal/scan/geometry"
)

func TestNewMessage(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	detected := NewMessage(EventDetected{
		Record: DecodedRecord{
			Text: "WIFI:T:WPA;S:Home;P:pw;;",
			Type: content.WiFi,
			Box:  geometry.BoundingBox{X: 1, Y: 2, Width: 3, Height: 4},
		},
		Frame: image.Rect(0, 0, 640, 480),
		Seq:   7,
	}, at)

	data, err := json.Marshal(detected)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"event": "detected",
		"time": "2026-03-01T12:00:00Z",
		"record": {
			"text": "WIFI:T:WPA;S:Home;P:pw;;",
			"type": "wifi",
			"box": {"x": 1, "y": 2, "width": 3, "height": 4}
		},
		"fields": {"Security": "WPA", "SSID": "Home", "Password": "pw"},
		"frame": {"width": 640, "height": 480},
		"seq": 7
	}`, string(data))

	state := NewMessage(EventStateChanged{State: StateActive, Session: 2}, at)
	assert.Equal(t, MessageStateChanged, state.Event)
	assert.Equal(t, "active", state.State)
	assert.Equal(t, uint64(2), state.Session)

	assert.Equal(t, MessageCleared, NewMessage(EventCleared{}, at).Event)

	fault := NewMessage(EventDecodeFault{Err: errors.New("bad frame")}, at)
	assert.Equal(t, "bad frame", fault.Error)

	failed := NewMessage(EventCameraFailed{Err: &CameraError{Op: "open", Err: errors.New("busy")}}, at)
	assert.Equal(t, MessageCameraFailed, failed.Event)
	assert.Equal(t, "camera open failed: busy", failed.Error)
}
