package biobdriver

import (
	"go-biobase-guidance-driver/guidance"

	"github.com/google/uuid"
)

type DeviceState string

const (
	StateNotConnected       DeviceState = "not_connected"
	StateConnectedNotOpened DeviceState = "connected_not_opened"
	StateOpening            DeviceState = "opening"
	StateOpenedNotLive      DeviceState = "opened_not_live"
	StateOpenedLive         DeviceState = "opened_live"
	StateImageCaptured      DeviceState = "opened_image_captured"
	StateCaptureCancelled   DeviceState = "opened_capture_cancelled"
)

// Opened reports whether the device handle is open in state s.
func (s DeviceState) Opened() bool {
	switch s {
	case StateOpenedNotLive, StateOpenedLive, StateImageCaptured, StateCaptureCancelled:
		return true
	}
	return false
}

type EventKind string

// Gateway events.
const (
	EventDeviceCount         EventKind = "device_count"
	EventPreview             EventKind = "preview"
	EventQuality             EventKind = "quality"
	EventObjectCount         EventKind = "object_count"
	EventAcquisitionStart    EventKind = "acquisition_start"
	EventAcquisitionComplete EventKind = "acquisition_complete"
	EventDataAvailable       EventKind = "data_available"
	EventUserInput           EventKind = "user_input"
	EventOutputAck           EventKind = "output_ack"
	EventInitProgress        EventKind = "init_progress"
)

// Internal events, posted by the operator API, the open worker and the
// template watcher.
const (
	EventOpenResult       EventKind = "open_result"
	EventCmdOpen          EventKind = "cmd_open"
	EventCmdClose         EventKind = "cmd_close"
	EventCmdAcquire       EventKind = "cmd_acquire"
	EventCmdCancel        EventKind = "cmd_cancel"
	EventCmdOverride      EventKind = "cmd_override"
	EventCmdBeep          EventKind = "cmd_beep"
	EventCmdOverlay       EventKind = "cmd_overlay"
	EventTemplatesChanged EventKind = "templates_changed"
)

// PreviewFrame is a raw 8-bit grayscale preview image.
type PreviewFrame struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   []byte `json:"data"`
}

// Event is one message for the device loop. Only the fields of its kind
// are set.
type Event struct {
	Kind EventKind `json:"kind"`

	DeviceCount int                     `json:"device_count,omitempty"`
	Qualities   []guidance.QualityState `json:"qualities,omitempty"`
	ObjectCount int                     `json:"object_count,omitempty"`
	Frame       *PreviewFrame           `json:"frame,omitempty"`

	// data available
	Final    bool                `json:"final,omitempty"`
	Status   guidance.ReturnCode `json:"status,omitempty"`
	PADScore float64             `json:"pad_score,omitempty"`

	Key      string `json:"key,omitempty"`
	Progress int    `json:"progress,omitempty"`

	Position   guidance.Position   `json:"position,omitempty"`
	Impression guidance.Impression `json:"impression,omitempty"`
	Text       string              `json:"text,omitempty"`

	Guidance guidance.GuidanceType `json:"-"`
	Err      error                 `json:"-"`
	reply    chan error
}

// StateMessage is the snapshot published after every state change.
type StateMessage struct {
	State      DeviceState         `json:"state"`
	Guidance   string              `json:"guidance"`
	SessionID  uuid.UUID           `json:"session_id"`
	Position   guidance.Position   `json:"position"`
	Impression guidance.Impression `json:"impression"`
	Keys       string              `json:"keys"`
	Indicators []guidance.Color    `json:"indicators"`
	Status     int32               `json:"status"`
	Awaiting   bool                `json:"awaiting_decision"`
}

// Publisher receives state snapshots and encoded preview frames.
type Publisher interface {
	PublishState(msg StateMessage) error
	PublishPreview(jpeg []byte) error
}
