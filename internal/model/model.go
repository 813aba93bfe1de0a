// Package model holds the GORM rows an authored project is persisted as.
package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels lists every table of the schema in migration order.
var DatabaseModels = []interface{}{
	&Project{},
	&Folder{},
	&Footage{},
	&Comp{},
	&Layer{},
	&Stream{},
	&Keyframe{},
}

// Time is a rational host time stored as two columns.
type Time struct {
	Value int64  `json:"value"`
	Scale uint64 `json:"scale"`
}

// Ratio is a rational number stored as two columns.
type Ratio struct {
	Num int64  `json:"num"`
	Den uint64 `json:"den"`
}

// Project is one imported scene.
type Project struct {
	gorm.Model
	Name       string    `json:"name" gorm:"size:255;index:idx_project_name"`
	SourcePath string    `json:"sourcePath" gorm:"size:1024"`
	StartTime  time.Time `json:"startTime"`
	RootID     string    `json:"rootId" gorm:"size:36"`

	Folders []Folder  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Footage []Footage `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Comps   []Comp    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (*Project) TableName() string {
	return "projects"
}

// Folder is a project folder. Position keeps creation order.
type Folder struct {
	ID        string `json:"id" gorm:"primaryKey;size:36"`
	ProjectID uint   `json:"projectId" gorm:"index:idx_folder_project_id"`
	Position  int    `json:"position"`
	Name      string `json:"name" gorm:"size:255"`
	ParentID  string `json:"parentId" gorm:"size:36"`
}

func (*Folder) TableName() string {
	return "folders"
}

// Footage is a footage item. Color holds the solid color as JSON and is
// NULL for other kinds; ColorHex is its "#rrggbb" form for queries.
type Footage struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	ProjectID uint           `json:"projectId" gorm:"index:idx_footage_project_id"`
	Position  int            `json:"position"`
	FolderID  string         `json:"folderId" gorm:"size:36"`
	Kind      string         `json:"kind" gorm:"size:16"`
	Name      string         `json:"name" gorm:"size:255"`
	Path      string         `json:"path" gorm:"size:1024"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Color     datatypes.JSON `json:"color"`
	ColorHex  string         `json:"colorHex" gorm:"size:7"`
	Duration  Time           `json:"duration" gorm:"embedded;embeddedPrefix:duration_"`
}

func (*Footage) TableName() string {
	return "footage"
}

// Comp is a composition.
type Comp struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	ProjectID   uint   `json:"projectId" gorm:"index:idx_comp_project_id"`
	Position    int    `json:"position"`
	ItemID      string `json:"itemId" gorm:"size:36"`
	FolderID    string `json:"folderId" gorm:"size:36"`
	Name        string `json:"name" gorm:"size:255"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	PixelAspect Ratio  `json:"pixelAspect" gorm:"embedded;embeddedPrefix:pixel_aspect_"`
	Duration    Time   `json:"duration" gorm:"embedded;embeddedPrefix:duration_"`
	FrameRate   Ratio  `json:"frameRate" gorm:"embedded;embeddedPrefix:frame_rate_"`

	Layers []Layer `gorm:"foreignKey:CompID;constraint:OnDelete:CASCADE"`
}

func (*Comp) TableName() string {
	return "comps"
}

// Layer is a composition layer. Position 0 is the topmost layer. Flags is
// the JSON list of flag names that are on.
type Layer struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	CompID       string         `json:"compId" gorm:"size:36;index:idx_layer_comp_id"`
	Position     int            `json:"position"`
	SourceID     string         `json:"sourceId" gorm:"size:36"`
	ParentID     string         `json:"parentId" gorm:"size:36"`
	Name         string         `json:"name" gorm:"size:255"`
	Flags        datatypes.JSON `json:"flags"`
	Quality      int            `json:"quality"`
	TransferMode datatypes.JSON `json:"transferMode"`
	Offset       Time           `json:"offset" gorm:"embedded;embeddedPrefix:offset_"`
	InPoint      Time           `json:"inPoint" gorm:"embedded;embeddedPrefix:in_point_"`
	Duration     Time           `json:"duration" gorm:"embedded;embeddedPrefix:duration_"`
	Stretch      Ratio          `json:"stretch" gorm:"embedded;embeddedPrefix:stretch_"`

	Streams []Stream `gorm:"foreignKey:LayerID;constraint:OnDelete:CASCADE"`
}

func (*Layer) TableName() string {
	return "layers"
}

// Stream is an animated layer property and its base value.
type Stream struct {
	ID       string  `json:"id" gorm:"primaryKey;size:36"`
	LayerID  string  `json:"layerId" gorm:"size:36;index:idx_stream_layer_id"`
	Position int     `json:"position"`
	Property string  `json:"property" gorm:"size:32"`
	ValueX   float64 `json:"valueX"`
	ValueY   float64 `json:"valueY"`

	Keyframes []Keyframe `gorm:"foreignKey:StreamID;constraint:OnDelete:CASCADE"`
}

func (*Stream) TableName() string {
	return "streams"
}

// Keyframe is one keyframe of a stream. Ordinal is its position in time order.
type Keyframe struct {
	ID       uint    `json:"id" gorm:"primarykey"`
	StreamID string  `json:"streamId" gorm:"size:36;index:idx_keyframe_stream_id"`
	Ordinal  int     `json:"ordinal"`
	Time     Time    `json:"time" gorm:"embedded;embeddedPrefix:time_"`
	ValueX   float64 `json:"valueX"`
	ValueY   float64 `json:"valueY"`
	Curve    float64 `json:"curve"`
}

func (*Keyframe) TableName() string {
	return "keyframes"
}
