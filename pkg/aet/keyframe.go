package aet

import "math"

// frameThreshold is the tolerance used when comparing frame positions.
const frameThreshold = 0.001

// FramesEqual reports whether two frame positions denote the same frame.
func FramesEqual(a, b float64) bool {
	return math.Abs(a-b) < frameThreshold
}

// KeyFrame is a (frame, value, curve) sample of a 1D animation curve.
// Curve is the tangent used by the segment following the key.
type KeyFrame struct {
	Frame float64
	Value float64
	Curve float64
}

// Property1D is a time-ordered keyframe track of one scalar channel.
type Property1D struct {
	Keys []KeyFrame
}

// Len returns the number of keyframes.
func (p *Property1D) Len() int {
	return len(p.Keys)
}

// IsAnimated reports whether the track has at least two keyframes.
func (p *Property1D) IsAnimated() bool {
	return len(p.Keys) > 1
}

// Initial returns the first keyframe value, 0 for an empty track.
func (p *Property1D) Initial() float64 {
	if len(p.Keys) == 0 {
		return 0
	}
	return p.Keys[0].Value
}

// KeyAt returns the keyframe placed exactly at frame.
func (p *Property1D) KeyAt(frame float64) (KeyFrame, bool) {
	for _, k := range p.Keys {
		if FramesEqual(k.Frame, frame) {
			return k, true
		}
	}
	return KeyFrame{}, false
}

// ValueAt evaluates the track at frame.
func (p *Property1D) ValueAt(frame float64) float64 {
	if len(p.Keys) == 0 {
		return 0
	}

	first, last := p.Keys[0], p.Keys[len(p.Keys)-1]
	if len(p.Keys) == 1 || frame <= first.Frame {
		return first.Value
	}
	if frame >= last.Frame {
		return last.Value
	}

	for i := 0; i < len(p.Keys)-1; i++ {
		start, end := p.Keys[i], p.Keys[i+1]
		if frame >= start.Frame && frame < end.Frame {
			return interpolate(start, end, frame)
		}
	}
	return last.Value
}

// interpolate evaluates the cubic Hermite segment between start and end,
// using the keys' curves as tangents scaled by the segment length.
func interpolate(start, end KeyFrame, frame float64) float64 {
	r := end.Frame - start.Frame
	t := (frame - start.Frame) / r
	t2 := t * t
	t3 := t2 * t

	return (t3-2*t2+t)*start.Curve*r +
		(t3-t2)*end.Curve*r +
		(3*t2-2*t3)*end.Value +
		(2*t3-3*t2+1)*start.Value
}

// PropertyType addresses one of the eight transform tracks.
type PropertyType int

const (
	OriginX PropertyType = iota
	OriginY
	PositionX
	PositionY
	Rotation
	ScaleX
	ScaleY
	Opacity

	propertyTypeCount
)

var propertyTypeNames = [...]string{
	OriginX:   "originX",
	OriginY:   "originY",
	PositionX: "positionX",
	PositionY: "positionY",
	Rotation:  "rotation",
	ScaleX:    "scaleX",
	ScaleY:    "scaleY",
	Opacity:   "opacity",
}

func (p PropertyType) String() string {
	if p < 0 || p >= propertyTypeCount {
		return "unknown"
	}
	return propertyTypeNames[p]
}

// PropertyTypes lists all transform tracks in storage order.
func PropertyTypes() []PropertyType {
	types := make([]PropertyType, propertyTypeCount)
	for i := range types {
		types[i] = PropertyType(i)
	}
	return types
}

// Transform holds the eight keyframe tracks of a video layer.
type Transform struct {
	properties [propertyTypeCount]Property1D
}

// Property returns the track of the given type. The returned pointer is
// stable for the lifetime of the Transform and identifies the track.
func (t *Transform) Property(p PropertyType) *Property1D {
	return &t.properties[p]
}

// SetKeys replaces the keys of a track.
func (t *Transform) SetKeys(p PropertyType, keys ...KeyFrame) {
	t.properties[p].Keys = keys
}
