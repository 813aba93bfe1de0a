package aet

import "fmt"

// ItemType is the kind of item a layer references.
type ItemType uint8

const (
	ItemTypeNone        ItemType = 0
	ItemTypeVideo       ItemType = 1
	ItemTypeAudio       ItemType = 2
	ItemTypeComposition ItemType = 3
)

func (t ItemType) String() string {
	switch t {
	case ItemTypeVideo:
		return "video"
	case ItemTypeAudio:
		return "audio"
	case ItemTypeComposition:
		return "composition"
	default:
		return "none"
	}
}

// LayerFlags is the 16-bit layer flag word.
type LayerFlags uint16

const (
	FlagVideoActive LayerFlags = 1 << iota
	FlagAudioActive
	FlagEffectsActive
	FlagMotionBlur
	FlagFrameBlending
	FlagLocked
	FlagShy
	FlagCollapse
	FlagAutoOrientRotation
	FlagAdjustmentLayer
	FlagTimeRemapping
	FlagLayerIs3D
	FlagLookAtCamera
	FlagLookAtPointOfInterest
	FlagSolo
	FlagMarkersLocked
)

// Has reports whether every bit of f is set.
func (l LayerFlags) Has(f LayerFlags) bool {
	return l&f == f
}

// LayerQuality is the source render quality level.
type LayerQuality uint8

const (
	QualityNone      LayerQuality = 0
	QualityWireframe LayerQuality = 1
	QualityDraft     LayerQuality = 2
	QualityBest      LayerQuality = 3
)

// BlendMode is the source blend mode numbering.
type BlendMode uint8

const (
	BlendNone              BlendMode = 0
	BlendCopy              BlendMode = 1
	BlendBehind            BlendMode = 2
	BlendNormal            BlendMode = 3
	BlendDissolve          BlendMode = 4
	BlendAdd               BlendMode = 5
	BlendMultiply          BlendMode = 6
	BlendScreen            BlendMode = 7
	BlendOverlay           BlendMode = 8
	BlendSoftLight         BlendMode = 9
	BlendHardLight         BlendMode = 10
	BlendDarken            BlendMode = 11
	BlendLighten           BlendMode = 12
	BlendClassicDifference BlendMode = 13
	BlendHue               BlendMode = 14
	BlendSaturation        BlendMode = 15
	BlendColor             BlendMode = 16
	BlendLuminosity        BlendMode = 17
)

// TransferFlags are per-channel blend flags.
type TransferFlags uint8

const (
	TransferPreserveAlpha     TransferFlags = 1 << 0
	TransferRandomizeDissolve TransferFlags = 1 << 1
)

// TrackMatte is the layer's track matte mode.
type TrackMatte uint8

const (
	TrackMatteNone     TrackMatte = 0
	TrackMatteAlpha    TrackMatte = 1
	TrackMatteNotAlpha TrackMatte = 2
	TrackMatteLuma     TrackMatte = 3
	TrackMatteNotLuma  TrackMatte = 4
)

// TransferMode groups blending and matte settings of a video layer.
type TransferMode struct {
	BlendMode  BlendMode
	Flags      TransferFlags
	TrackMatte TrackMatte
}

// LayerRef references a layer of the same composition by storage index.
type LayerRef struct {
	Index int
	Valid bool
}

// LayerAt returns a valid reference to index i.
func LayerAt(i int) LayerRef {
	return LayerRef{Index: i, Valid: true}
}

// LayerVideo carries the visual part of a layer.
type LayerVideo struct {
	TransferMode TransferMode
	Transform    Transform
}

// LayerAudio carries the audio part of a layer. The source format stores
// four unused tracks here; nothing is translated from it.
type LayerAudio struct{}

// Layer is a timed instance of an item inside a composition.
type Layer struct {
	Name        string
	StartFrame  float64
	EndFrame    float64
	StartOffset float64
	TimeScale   float64
	Flags       LayerFlags
	Quality     LayerQuality

	ItemType    ItemType
	Video       *Video
	Audio       *Audio
	Composition *Composition

	Parent LayerRef

	LayerVideo *LayerVideo
	LayerAudio *LayerAudio
}

// ParentLayer resolves the parent reference against the owning composition.
func (l *Layer) ParentLayer(owner *Composition) (*Layer, error) {
	if !l.Parent.Valid {
		return nil, nil
	}
	if l.Parent.Index < 0 || l.Parent.Index >= len(owner.Layers) {
		return nil, fmt.Errorf("parent index %d out of range [0,%d)", l.Parent.Index, len(owner.Layers))
	}
	return owner.Layers[l.Parent.Index], nil
}
