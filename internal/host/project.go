package host

import (
	"github.com/gfox0104/AetPlugin/internal/timeconv"
	"github.com/google/uuid"
)

// FootageKind tells how a footage item was created.
type FootageKind string

const (
	FootageSolid       FootageKind = "solid"
	FootageFile        FootageKind = "file"
	FootagePlaceholder FootageKind = "placeholder"
)

// Project is a point-in-time copy of an authored project, shared by the
// backends that store or export what a translation produced.
type Project struct {
	Info    ProjectInfo `json:"info"`
	Root    uuid.UUID   `json:"root"`
	Folders []Folder    `json:"folders"`
	Footage []Footage   `json:"footage"`
	Comps   []Comp      `json:"comps"`
}

// Folder is a project folder. Parent is the project root for top-level folders.
type Folder struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Parent uuid.UUID `json:"parent"`
}

// Footage is a footage item.
type Footage struct {
	ID       uuid.UUID             `json:"id"`
	Folder   uuid.UUID             `json:"folder"`
	Kind     FootageKind           `json:"kind"`
	Name     string                `json:"name"`
	Path     string                `json:"path,omitempty"`
	Width    int                   `json:"width"`
	Height   int                   `json:"height"`
	Color    *Color                `json:"color,omitempty"`
	Duration timeconv.RationalTime `json:"duration"`
}

// Comp is a composition with its layers, topmost first.
type Comp struct {
	ID     uuid.UUID `json:"id"`
	ItemID uuid.UUID `json:"itemId"`
	Folder uuid.UUID `json:"folder"`
	Spec   CompSpec  `json:"spec"`
	Layers []Layer   `json:"layers"`
}

// Layer is a layer and everything set on it.
type Layer struct {
	ID           uuid.UUID             `json:"id"`
	Source       uuid.UUID             `json:"source"`
	Name         string                `json:"name"`
	Flags        LayerFlag             `json:"flags"`
	Quality      Quality               `json:"quality"`
	TransferMode TransferMode          `json:"transferMode"`
	Offset       timeconv.RationalTime `json:"offset"`
	InPoint      timeconv.RationalTime `json:"inPoint"`
	Duration     timeconv.RationalTime `json:"duration"`
	Stretch      timeconv.Ratio        `json:"stretch"`
	Parent       uuid.UUID             `json:"parent"`
	Streams      []StreamData          `json:"streams"`
}

// HasFlag reports whether the flag is on.
func (l *Layer) HasFlag(f LayerFlag) bool {
	return l.Flags&f != 0
}

// Stream returns the stream data of the given property, if it was acquired.
func (l *Layer) Stream(s Stream) (StreamData, bool) {
	for _, sd := range l.Streams {
		if sd.Stream == s {
			return sd, true
		}
	}
	return StreamData{}, false
}

// StreamData is an animated property and its keyframes in time order.
type StreamData struct {
	ID        uuid.UUID   `json:"id"`
	Stream    Stream      `json:"stream"`
	Value     StreamValue `json:"value"`
	Keyframes []Keyframe  `json:"keyframes"`
}

// Keyframe is a stream keyframe.
type Keyframe struct {
	Time  timeconv.RationalTime `json:"time"`
	Value StreamValue           `json:"value"`
	Curve float64               `json:"curve"`
}

// FindComp returns the composition with the given name.
func (p *Project) FindComp(name string) (*Comp, bool) {
	for i := range p.Comps {
		if p.Comps[i].Spec.Name == name {
			return &p.Comps[i], true
		}
	}
	return nil, false
}

// FindFootage returns the footage item with the given ID.
func (p *Project) FindFootage(id uuid.UUID) (*Footage, bool) {
	for i := range p.Footage {
		if p.Footage[i].ID == id {
			return &p.Footage[i], true
		}
	}
	return nil, false
}

// FindFolder returns the folder with the given name.
func (p *Project) FindFolder(name string) (*Folder, bool) {
	for i := range p.Folders {
		if p.Folders[i].Name == name {
			return &p.Folders[i], true
		}
	}
	return nil, false
}
