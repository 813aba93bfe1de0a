// Package scenefile reads Aet sets rendered as YAML or JSON documents.
//
// Items are referenced by their position in the scene's video, audio and
// composition lists; a composition index of -1 names the root composition.
// Parents are layer indexes inside the same composition.
package scenefile

// File is the document root.
type File struct {
	Name   string      `yaml:"name" json:"name"`
	Scenes []SceneFile `yaml:"scenes" json:"scenes"`
}

// SceneFile is one scene of a set.
type SceneFile struct {
	Name         string            `yaml:"name" json:"name"`
	FrameRate    float64           `yaml:"frameRate" json:"frameRate"`
	Resolution   SizeFile          `yaml:"resolution" json:"resolution"`
	StartFrame   float64           `yaml:"startFrame" json:"startFrame"`
	EndFrame     float64           `yaml:"endFrame" json:"endFrame"`
	Root         CompositionFile   `yaml:"root" json:"root"`
	Compositions []CompositionFile `yaml:"compositions,omitempty" json:"compositions,omitempty"`
	Videos       []VideoFile       `yaml:"videos,omitempty" json:"videos,omitempty"`
	Audios       []AudioFile       `yaml:"audios,omitempty" json:"audios,omitempty"`
}

// SizeFile is a width/height pair.
type SizeFile struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// CompositionFile is a named layer stack.
type CompositionFile struct {
	Name   string      `yaml:"name,omitempty" json:"name,omitempty"`
	Layers []LayerFile `yaml:"layers,omitempty" json:"layers,omitempty"`
}

// VideoFile is a footage item. A video without sources is a solid of Color.
type VideoFile struct {
	Size    SizeFile     `yaml:"size" json:"size"`
	Color   uint32       `yaml:"color,omitempty" json:"color,omitempty"`
	Sources []SourceFile `yaml:"sources,omitempty" json:"sources,omitempty"`
}

// SourceFile is one frame of an image sequence.
type SourceFile struct {
	Name string `yaml:"name" json:"name"`
	ID   uint32 `yaml:"id,omitempty" json:"id,omitempty"`
}

// AudioFile is a sound item.
type AudioFile struct {
	SoundID uint32 `yaml:"soundId" json:"soundId"`
}

// ItemRef points at a video, audio or composition of the scene.
type ItemRef struct {
	Type  string `yaml:"type" json:"type"`
	Index int    `yaml:"index" json:"index"`
}

// Item reference types.
const (
	ItemVideo       = "video"
	ItemAudio       = "audio"
	ItemComposition = "composition"
)

// RootIndex is the composition index naming the root composition.
const RootIndex = -1

// LayerFile is one layer of a composition.
type LayerFile struct {
	Name        string   `yaml:"name" json:"name"`
	StartFrame  float64  `yaml:"startFrame" json:"startFrame"`
	EndFrame    float64  `yaml:"endFrame" json:"endFrame"`
	StartOffset float64  `yaml:"startOffset,omitempty" json:"startOffset,omitempty"`
	TimeScale   *float64 `yaml:"timeScale,omitempty" json:"timeScale,omitempty"`
	Flags       uint16   `yaml:"flags,omitempty" json:"flags,omitempty"`
	Quality     uint8    `yaml:"quality,omitempty" json:"quality,omitempty"`
	Item        *ItemRef `yaml:"item,omitempty" json:"item,omitempty"`
	Parent      *int     `yaml:"parent,omitempty" json:"parent,omitempty"`

	Video *LayerVideoFile `yaml:"video,omitempty" json:"video,omitempty"`
	Audio *struct{}       `yaml:"audio,omitempty" json:"audio,omitempty"`
}

// LayerVideoFile holds the compositing and transform data of a video layer.
type LayerVideoFile struct {
	TransferMode TransferModeFile `yaml:"transferMode" json:"transferMode"`
	Transform    TransformFile    `yaml:"transform" json:"transform"`
}

// TransferModeFile is the compositing rule of a layer.
type TransferModeFile struct {
	BlendMode  uint8 `yaml:"blendMode" json:"blendMode"`
	Flags      uint8 `yaml:"flags,omitempty" json:"flags,omitempty"`
	TrackMatte uint8 `yaml:"trackMatte,omitempty" json:"trackMatte,omitempty"`
}

// TransformFile holds the eight keyframe tracks. Each key is
// [frame, value] or [frame, value, curve].
type TransformFile struct {
	OriginX   [][]float64 `yaml:"originX,omitempty" json:"originX,omitempty"`
	OriginY   [][]float64 `yaml:"originY,omitempty" json:"originY,omitempty"`
	PositionX [][]float64 `yaml:"positionX,omitempty" json:"positionX,omitempty"`
	PositionY [][]float64 `yaml:"positionY,omitempty" json:"positionY,omitempty"`
	Rotation  [][]float64 `yaml:"rotation,omitempty" json:"rotation,omitempty"`
	ScaleX    [][]float64 `yaml:"scaleX,omitempty" json:"scaleX,omitempty"`
	ScaleY    [][]float64 `yaml:"scaleY,omitempty" json:"scaleY,omitempty"`
	Opacity   [][]float64 `yaml:"opacity,omitempty" json:"opacity,omitempty"`
}
