// Package aet holds the in-memory scene graph of a parsed Aet set.
// Values of this package are treated as read-only by the importer.
package aet

// Size is a pixel size.
type Size struct {
	Width  int
	Height int
}

// Set is a loaded Aet document. Importers read the first scene.
type Set struct {
	Name   string
	Scenes []*Scene
}

// Scene is a top-level animation document
type Scene struct {
	Name            string
	FrameRate       float64
	Resolution      Size
	StartFrame      float64
	EndFrame        float64
	RootComposition *Composition
	Compositions    []*Composition
	Videos          []*Video
	Audios          []*Audio
}

// Composition is an ordered stack of layers. Index 0 is the topmost layer.
type Composition struct {
	Name   string
	Layers []*Layer
}

// Duration returns the content extent of the composition: the latest layer
// end frame, never less than one frame.
func (c *Composition) Duration() float64 {
	latest := 1.0
	for _, layer := range c.Layers {
		if layer.EndFrame > latest {
			latest = layer.EndFrame
		}
	}
	return latest
}

// IndexOf returns the storage index of the layer or -1.
func (c *Composition) IndexOf(layer *Layer) int {
	for i, l := range c.Layers {
		if l == layer {
			return i
		}
	}
	return -1
}

// Source is a named image source of a video item.
type Source struct {
	Name string
	ID   uint32
}

// Video is a footage item: an image sequence or a solid color.
type Video struct {
	Size Size
	// Color is RGBA8 with red in the low byte.
	Color   uint32
	Sources []Source
}

// RGBA splits Color into its channels.
func (v *Video) RGBA() (r, g, b, a uint8) {
	return uint8(v.Color), uint8(v.Color >> 8), uint8(v.Color >> 16), uint8(v.Color >> 24)
}

// FrontSourceName returns the name used for asset lookup, or "" for solids.
func (v *Video) FrontSourceName() string {
	if len(v.Sources) == 0 {
		return ""
	}
	return v.Sources[0].Name
}

// Audio is a sound item.
type Audio struct {
	SoundID uint32
}

// IndexOfVideo returns the position of v in the scene's video list or -1.
func (s *Scene) IndexOfVideo(v *Video) int {
	for i, item := range s.Videos {
		if item == v {
			return i
		}
	}
	return -1
}

// HasComposition reports whether comp is the root or one of the nested compositions.
func (s *Scene) HasComposition(comp *Composition) bool {
	if comp == nil {
		return false
	}
	if comp == s.RootComposition {
		return true
	}
	for _, c := range s.Compositions {
		if c == comp {
			return true
		}
	}
	return false
}

// AllCompositions returns the root followed by the nested compositions.
func (s *Scene) AllCompositions() []*Composition {
	comps := make([]*Composition, 0, len(s.Compositions)+1)
	if s.RootComposition != nil {
		comps = append(comps, s.RootComposition)
	}
	return append(comps, s.Compositions...)
}
