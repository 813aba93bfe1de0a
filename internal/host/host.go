// Package host defines the animation authoring interface an Aet scene is
// translated into, and the value types exchanged with it.
package host

import (
	"errors"
	"time"

	"github.com/gfox0104/AetPlugin/internal/timeconv"
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrUnknownHandle is returned when a handle does not name an object of the expected kind.
var ErrUnknownHandle = errors.New("unknown handle")

// ErrInvalidArgument is returned for values the host does not accept.
var ErrInvalidArgument = errors.New("invalid argument")

// ItemHandle names a project item: folder, footage or composition item.
type ItemHandle uuid.UUID

// CompHandle names a composition.
type CompHandle uuid.UUID

// LayerHandle names a layer inside a composition.
type LayerHandle uuid.UUID

// StreamHandle names an animated property stream of a layer.
type StreamHandle uuid.UUID

func (h ItemHandle) IsZero() bool   { return h == ItemHandle{} }
func (h CompHandle) IsZero() bool   { return h == CompHandle{} }
func (h LayerHandle) IsZero() bool  { return h == LayerHandle{} }
func (h StreamHandle) IsZero() bool { return h == StreamHandle{} }

func (h ItemHandle) String() string   { return uuid.UUID(h).String() }
func (h CompHandle) String() string   { return uuid.UUID(h).String() }
func (h LayerHandle) String() string  { return uuid.UUID(h).String() }
func (h StreamHandle) String() string { return uuid.UUID(h).String() }

// Color is a floating point RGBA color in [0,1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

func (c Color) rgb() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

// Valid reports whether every channel lies in [0,1].
func (c Color) Valid() bool {
	return c.rgb().IsValid() && c.A >= 0 && c.A <= 1
}

// Hex returns the "#rrggbb" form of the color, clamped to the valid range.
func (c Color) Hex() string {
	return c.rgb().Clamped().Hex()
}

// CompSpec describes a composition shell.
type CompSpec struct {
	Name        string                `json:"name"`
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	PixelAspect timeconv.Ratio        `json:"pixelAspect"`
	Duration    timeconv.RationalTime `json:"duration"`
	FrameRate   timeconv.Ratio        `json:"frameRate"`
}

// SolidSpec describes a solid color footage item.
type SolidSpec struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Color  Color  `json:"color"`
}

// PlaceholderSpec describes footage whose media is missing.
type PlaceholderSpec struct {
	Name     string                `json:"name"`
	Width    int                   `json:"width"`
	Height   int                   `json:"height"`
	Duration timeconv.RationalTime `json:"duration"`
}

// Quality is the host layer quality.
type Quality int

const (
	QualityWireframe Quality = 0
	QualityDraft     Quality = 1
	QualityBest      Quality = 2
)

// BlendMode is the host transfer mode numbering.
type BlendMode int

const (
	BlendNone     BlendMode = -1
	BlendCopy     BlendMode = 0
	BlendBehind   BlendMode = 1
	BlendInFront  BlendMode = 2
	BlendDissolve BlendMode = 3
	BlendAdd      BlendMode = 4
	BlendMultiply BlendMode = 5
	BlendScreen   BlendMode = 6

	blendModeLast BlendMode = 40
)

// Valid reports whether the host knows the mode.
func (m BlendMode) Valid() bool {
	return m >= BlendNone && m <= blendModeLast
}

// TrackMatte is the host track matte mode.
type TrackMatte int

const (
	TrackMatteNone     TrackMatte = 0
	TrackMatteAlpha    TrackMatte = 1
	TrackMatteNotAlpha TrackMatte = 2
	TrackMatteLuma     TrackMatte = 3
	TrackMatteNotLuma  TrackMatte = 4
)

// TransferMode is the compositing rule of a layer.
type TransferMode struct {
	Mode       BlendMode  `json:"mode"`
	Flags      uint8      `json:"flags"`
	TrackMatte TrackMatte `json:"trackMatte"`
}

// Stream identifies an animated layer property.
type Stream int

const (
	StreamAnchorPoint Stream = iota
	StreamPosition
	StreamRotation
	StreamScale
	StreamOpacity
	StreamTimeRemap
)

func (s Stream) String() string {
	switch s {
	case StreamAnchorPoint:
		return "anchorPoint"
	case StreamPosition:
		return "position"
	case StreamRotation:
		return "rotation"
	case StreamScale:
		return "scale"
	case StreamOpacity:
		return "opacity"
	case StreamTimeRemap:
		return "timeRemap"
	default:
		return "unknown"
	}
}

// Dimensions returns 2 for spatial streams and 1 for scalar streams.
func (s Stream) Dimensions() int {
	switch s {
	case StreamAnchorPoint, StreamPosition, StreamScale:
		return 2
	default:
		return 1
	}
}

// StreamValue is a stream value. Scalar streams only use X.
type StreamValue struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Host is the authoring interface of the target application. Calls are
// synchronous and every call may fail on its own.
type Host interface {
	ProjectRoot() (ItemHandle, error)
	CreateFolder(name string, parent ItemHandle) (ItemHandle, error)
	CreateComp(parent ItemHandle, spec CompSpec) (CompHandle, ItemHandle, error)

	NewSolidFootage(folder ItemHandle, spec SolidSpec) (ItemHandle, error)
	NewFileFootage(folder ItemHandle, path string) (ItemHandle, error)
	NewPlaceholderFootage(folder ItemHandle, spec PlaceholderSpec) (ItemHandle, error)

	// AddLayer places item in comp above all previously added layers.
	AddLayer(item ItemHandle, comp CompHandle) (LayerHandle, error)
	SetLayerFlag(layer LayerHandle, flag LayerFlag, on bool) error
	SetLayerQuality(layer LayerHandle, quality Quality) error
	SetLayerTransferMode(layer LayerHandle, mode TransferMode) error
	SetLayerOffset(layer LayerHandle, offset timeconv.RationalTime) error
	SetLayerInPointAndDuration(layer LayerHandle, in, duration timeconv.RationalTime) error
	SetLayerStretch(layer LayerHandle, stretch timeconv.Ratio) error
	SetLayerName(layer LayerHandle, name string) error
	SetLayerParent(layer, parent LayerHandle) error

	LayerStream(layer LayerHandle, stream Stream) (StreamHandle, error)
	SetStreamValue(stream StreamHandle, value StreamValue) error
	InsertKeyframe(stream StreamHandle, at timeconv.RationalTime) (int, error)
	SetKeyframeValue(stream StreamHandle, index int, value StreamValue, curve float64) error
}

// ProjectInfo describes one import session.
type ProjectInfo struct {
	Name       string    `json:"name"`
	SourcePath string    `json:"sourcePath"`
	StartTime  time.Time `json:"startTime"`
}

// Backend is a Host with a lifecycle, selected by configuration.
type Backend interface {
	Host

	Init() error
	Close() error

	BeginProject(info ProjectInfo) error
	EndProject() error
}

// Exportable is implemented by backends that write a project file.
type Exportable interface {
	ExportedFilePath() string
}
