// Package streaming defines the messages of the remote host bridge. Every
// authoring call becomes one message; handles are UUIDs chosen by the client.
package streaming

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Message type constants of the bridge protocol.
const (
	TypeBeginProject          = "begin_project"
	TypeEndProject            = "end_project"
	TypeCreateFolder          = "create_folder"
	TypeCreateComp            = "create_comp"
	TypeNewSolidFootage       = "new_solid_footage"
	TypeNewFileFootage        = "new_file_footage"
	TypeNewPlaceholderFootage = "new_placeholder_footage"
	TypeAddLayer              = "add_layer"
	TypeSetLayerFlag          = "set_layer_flag"
	TypeSetLayerQuality       = "set_layer_quality"
	TypeSetLayerTransferMode  = "set_layer_transfer_mode"
	TypeSetLayerOffset        = "set_layer_offset"
	TypeSetLayerInPoint       = "set_layer_in_point"
	TypeSetLayerStretch       = "set_layer_stretch"
	TypeSetLayerName          = "set_layer_name"
	TypeSetLayerParent        = "set_layer_parent"
	TypeLayerStream           = "layer_stream"
	TypeSetStreamValue        = "set_stream_value"
	TypeInsertKeyframe        = "insert_keyframe"
	TypeSetKeyframeValue      = "set_keyframe_value"
)

// TypeAck is the type of server acknowledgements.
const TypeAck = "ack"

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement. A non-empty Error rejects
// the acknowledged message.
type AckMessage struct {
	Type  string `json:"type"`
	For   string `json:"for"`
	Error string `json:"error,omitempty"`
}

// Time is a rational host time.
type Time struct {
	Value int64  `json:"value"`
	Scale uint64 `json:"scale"`
}

// Ratio is a rational number.
type Ratio struct {
	Num int64  `json:"num"`
	Den uint64 `json:"den"`
}

// Value is a one- or two-dimensional stream value.
type Value struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type BeginProjectPayload struct {
	Name       string    `json:"name"`
	SourcePath string    `json:"sourcePath"`
	Root       uuid.UUID `json:"root"`
}

type CreateFolderPayload struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Parent uuid.UUID `json:"parent"`
}

type CreateCompPayload struct {
	ID          uuid.UUID `json:"id"`
	ItemID      uuid.UUID `json:"itemId"`
	Parent      uuid.UUID `json:"parent"`
	Name        string    `json:"name"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	PixelAspect Ratio     `json:"pixelAspect"`
	Duration    Time      `json:"duration"`
	FrameRate   Ratio     `json:"frameRate"`
}

// FootagePayload creates a solid, file or placeholder footage item. Only
// the fields of its kind are set.
type FootagePayload struct {
	ID       uuid.UUID `json:"id"`
	Folder   uuid.UUID `json:"folder"`
	Name     string    `json:"name,omitempty"`
	Path     string    `json:"path,omitempty"`
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Color    []float64 `json:"color,omitempty"`
	ColorHex string    `json:"colorHex,omitempty"`
	Duration *Time     `json:"duration,omitempty"`
}

type AddLayerPayload struct {
	ID   uuid.UUID `json:"id"`
	Item uuid.UUID `json:"item"`
	Comp uuid.UUID `json:"comp"`
}

// LayerPayload sets one layer attribute. Only the attribute of the message
// type is set.
type LayerPayload struct {
	Layer      uuid.UUID  `json:"layer"`
	Flag       string     `json:"flag,omitempty"`
	On         *bool      `json:"on,omitempty"`
	Quality    *int       `json:"quality,omitempty"`
	BlendMode  *int       `json:"blendMode,omitempty"`
	Flags      *uint8     `json:"flags,omitempty"`
	TrackMatte *int       `json:"trackMatte,omitempty"`
	Offset     *Time      `json:"offset,omitempty"`
	InPoint    *Time      `json:"inPoint,omitempty"`
	Duration   *Time      `json:"duration,omitempty"`
	Stretch    *Ratio     `json:"stretch,omitempty"`
	Name       *string    `json:"name,omitempty"`
	Parent     *uuid.UUID `json:"parent,omitempty"`
}

type LayerStreamPayload struct {
	ID     uuid.UUID `json:"id"`
	Layer  uuid.UUID `json:"layer"`
	Stream string    `json:"stream"`
}

type StreamValuePayload struct {
	Stream uuid.UUID `json:"stream"`
	Value  Value     `json:"value"`
}

type InsertKeyframePayload struct {
	Stream uuid.UUID `json:"stream"`
	Time   Time      `json:"time"`
	Index  int       `json:"index"`
}

type KeyframeValuePayload struct {
	Stream uuid.UUID `json:"stream"`
	Index  int       `json:"index"`
	Value  Value     `json:"value"`
	Curve  float64   `json:"curve"`
}
