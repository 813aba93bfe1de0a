package host

import "math/bits"

// LayerFlag is one individually toggleable host layer flag. Values are
// single bits so a source flag word maps onto them bit by bit.
type LayerFlag uint16

const (
	LayerFlagVideoActive LayerFlag = 1 << iota
	LayerFlagAudioActive
	LayerFlagEffectsActive
	LayerFlagMotionBlur
	LayerFlagFrameBlending
	LayerFlagLocked
	LayerFlagShy
	LayerFlagCollapse
	LayerFlagAutoOrientRotation
	LayerFlagAdjustmentLayer
	LayerFlagTimeRemapping
	LayerFlagLayerIs3D
	LayerFlagLookAtCamera
	LayerFlagLookAtPOI
	LayerFlagSolo
	LayerFlagMarkersLocked
)

var layerFlagNames = [...]string{
	"videoActive",
	"audioActive",
	"effectsActive",
	"motionBlur",
	"frameBlending",
	"locked",
	"shy",
	"collapse",
	"autoOrientRotation",
	"adjustmentLayer",
	"timeRemapping",
	"layerIs3D",
	"lookAtCamera",
	"lookAtPOI",
	"solo",
	"markersLocked",
}

// Valid reports whether f is exactly one known flag bit.
func (f LayerFlag) Valid() bool {
	return bits.OnesCount16(uint16(f)) == 1
}

func (f LayerFlag) String() string {
	if !f.Valid() {
		return "invalid"
	}
	return layerFlagNames[bits.TrailingZeros16(uint16(f))]
}

// AllLayerFlags lists every flag from the lowest bit up.
func AllLayerFlags() []LayerFlag {
	flags := make([]LayerFlag, len(layerFlagNames))
	for i := range flags {
		flags[i] = LayerFlag(1 << i)
	}
	return flags
}
