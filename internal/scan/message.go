package scan

import (
	"time"

	"github.com/coral-mesh/qrscan/internal/scan/content"
)

// Event names used in Message.Event.
const (
	MessageStateChanged = "state_changed"
	MessageDetected     = "detected"
	MessageCleared      = "cleared"
	MessageDecodeFault  = "decode_fault"
	MessageCameraFailed = "camera_failed"
)

// Message is the JSON form of an Event, used for JSON-lines output and the
// websocket stream.
type Message struct {
	Event   string         `json:"event"`
	Time    time.Time      `json:"time"`
	State   string         `json:"state,omitempty"`
	Session uint64         `json:"session,omitempty"`
	Record  *DecodedRecord `json:"record,omitempty"`
	// Fields holds parsed WiFi or contact details for detections.
	Fields content.Fields `json:"fields,omitempty"`
	Frame  *FrameSize     `json:"frame,omitempty"`
	Seq    uint64         `json:"seq,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// FrameSize is the size of the frame a detection came from.
type FrameSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewMessage converts ev for the wire.
func NewMessage(ev Event, at time.Time) Message {
	m := Message{Time: at.UTC()}

	switch e := ev.(type) {
	case EventStateChanged:
		m.Event = MessageStateChanged
		m.State = e.State.String()
		m.Session = e.Session
	case EventDetected:
		record := e.Record
		m.Event = MessageDetected
		m.Record = &record
		m.Fields = content.Details(record.Type, record.Text)
		m.Frame = &FrameSize{Width: e.Frame.Dx(), Height: e.Frame.Dy()}
		m.Seq = e.Seq
	case EventCleared:
		m.Event = MessageCleared
	case EventDecodeFault:
		m.Event = MessageDecodeFault
		if e.Err != nil {
			m.Error = e.Err.Error()
		}
	case EventCameraFailed:
		m.Event = MessageCameraFailed
		if e.Err != nil {
			m.Error = e.Err.Error()
		}
	}
	return m
}
