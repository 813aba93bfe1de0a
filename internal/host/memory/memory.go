// Package memory implements a host that builds the project in memory and
// exports it as JSON when the project ends.
package memory

import (
	"fmt"
	"sync"

	"github.com/gfox0104/AetPlugin/internal/config"
	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/internal/timeconv"
	"github.com/google/uuid"
)

// compRecord groups a composition with its layers, topmost first
type compRecord struct {
	comp   host.Comp
	layers []*layerRecord
}

// layerRecord groups a layer with its acquired streams
type layerRecord struct {
	layer   host.Layer
	comp    uuid.UUID
	streams []*host.StreamData
}

// Backend builds a project in memory and exports it to JSON
type Backend struct {
	cfg  config.MemoryConfig
	info host.ProjectInfo
	root uuid.UUID

	folders     map[uuid.UUID]*host.Folder
	folderOrder []uuid.UUID
	footage     map[uuid.UUID]*host.Footage
	footOrder   []uuid.UUID
	comps       map[uuid.UUID]*compRecord
	compItems   map[uuid.UUID]uuid.UUID // item ID -> comp ID
	compOrder   []uuid.UUID
	layers      map[uuid.UUID]*layerRecord
	streams     map[uuid.UUID]*host.StreamData

	lastExportPath string
	mu             sync.RWMutex
}

var _ host.Backend = (*Backend)(nil)
var _ host.Exportable = (*Backend)(nil)

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	b := &Backend{cfg: cfg}
	b.reset()
	return b
}

func (b *Backend) reset() {
	b.root = uuid.New()
	b.folders = make(map[uuid.UUID]*host.Folder)
	b.folderOrder = nil
	b.footage = make(map[uuid.UUID]*host.Footage)
	b.footOrder = nil
	b.comps = make(map[uuid.UUID]*compRecord)
	b.compItems = make(map[uuid.UUID]uuid.UUID)
	b.compOrder = nil
	b.layers = make(map[uuid.UUID]*layerRecord)
	b.streams = make(map[uuid.UUID]*host.StreamData)
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// BeginProject starts a new, empty project
func (b *Backend) BeginProject(info host.ProjectInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.info = info
	b.reset()
	return nil
}

// EndProject finalizes the project and exports it when an output directory is set
func (b *Backend) EndProject() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cfg.OutputDir == "" {
		return nil
	}
	return b.exportJSON()
}

// ExportedFilePath returns the path of the last exported project file
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// ProjectRoot returns the root folder of the project
func (b *Backend) ProjectRoot() (host.ItemHandle, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return host.ItemHandle(b.root), nil
}

// isContainer reports whether id names the root or a folder. Caller holds the lock.
func (b *Backend) isContainer(id uuid.UUID) bool {
	if id == b.root {
		return true
	}
	_, ok := b.folders[id]
	return ok
}

// CreateFolder adds a folder under parent
func (b *Backend) CreateFolder(name string, parent host.ItemHandle) (host.ItemHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isContainer(uuid.UUID(parent)) {
		return host.ItemHandle{}, fmt.Errorf("%w: folder parent %s", host.ErrUnknownHandle, parent)
	}

	f := &host.Folder{ID: uuid.New(), Name: name, Parent: uuid.UUID(parent)}
	b.folders[f.ID] = f
	b.folderOrder = append(b.folderOrder, f.ID)
	return host.ItemHandle(f.ID), nil
}

// CreateComp adds a composition under parent
func (b *Backend) CreateComp(parent host.ItemHandle, spec host.CompSpec) (host.CompHandle, host.ItemHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isContainer(uuid.UUID(parent)) {
		return host.CompHandle{}, host.ItemHandle{}, fmt.Errorf("%w: comp parent %s", host.ErrUnknownHandle, parent)
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return host.CompHandle{}, host.ItemHandle{}, fmt.Errorf("%w: comp size %dx%d", host.ErrInvalidArgument, spec.Width, spec.Height)
	}
	if spec.Duration.Value <= 0 || spec.Duration.Scale == 0 {
		return host.CompHandle{}, host.ItemHandle{}, fmt.Errorf("%w: comp duration %s", host.ErrInvalidArgument, spec.Duration)
	}
	if spec.FrameRate.Num <= 0 || spec.FrameRate.Den == 0 {
		return host.CompHandle{}, host.ItemHandle{}, fmt.Errorf("%w: comp frame rate %d/%d", host.ErrInvalidArgument, spec.FrameRate.Num, spec.FrameRate.Den)
	}

	rec := &compRecord{comp: host.Comp{
		ID:     uuid.New(),
		ItemID: uuid.New(),
		Folder: uuid.UUID(parent),
		Spec:   spec,
	}}
	b.comps[rec.comp.ID] = rec
	b.compItems[rec.comp.ItemID] = rec.comp.ID
	b.compOrder = append(b.compOrder, rec.comp.ID)
	return host.CompHandle(rec.comp.ID), host.ItemHandle(rec.comp.ItemID), nil
}

func (b *Backend) addFootage(folder host.ItemHandle, f *host.Footage) (host.ItemHandle, error) {
	if !b.isContainer(uuid.UUID(folder)) {
		return host.ItemHandle{}, fmt.Errorf("%w: footage folder %s", host.ErrUnknownHandle, folder)
	}
	f.ID = uuid.New()
	f.Folder = uuid.UUID(folder)
	b.footage[f.ID] = f
	b.footOrder = append(b.footOrder, f.ID)
	return host.ItemHandle(f.ID), nil
}

// NewSolidFootage adds a solid color footage item
func (b *Backend) NewSolidFootage(folder host.ItemHandle, spec host.SolidSpec) (host.ItemHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if spec.Width <= 0 || spec.Height <= 0 {
		return host.ItemHandle{}, fmt.Errorf("%w: solid size %dx%d", host.ErrInvalidArgument, spec.Width, spec.Height)
	}
	if !spec.Color.Valid() {
		return host.ItemHandle{}, fmt.Errorf("%w: solid color %+v", host.ErrInvalidArgument, spec.Color)
	}
	color := spec.Color
	return b.addFootage(folder, &host.Footage{
		Kind:   host.FootageSolid,
		Name:   spec.Name,
		Width:  spec.Width,
		Height: spec.Height,
		Color:  &color,
	})
}

// NewFileFootage adds footage backed by a file on disk
func (b *Backend) NewFileFootage(folder host.ItemHandle, path string) (host.ItemHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if path == "" {
		return host.ItemHandle{}, fmt.Errorf("%w: empty footage path", host.ErrInvalidArgument)
	}
	return b.addFootage(folder, &host.Footage{
		Kind: host.FootageFile,
		Name: path,
		Path: path,
	})
}

// NewPlaceholderFootage adds footage whose media is missing
func (b *Backend) NewPlaceholderFootage(folder host.ItemHandle, spec host.PlaceholderSpec) (host.ItemHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if spec.Width <= 0 || spec.Height <= 0 {
		return host.ItemHandle{}, fmt.Errorf("%w: placeholder size %dx%d", host.ErrInvalidArgument, spec.Width, spec.Height)
	}
	return b.addFootage(folder, &host.Footage{
		Kind:     host.FootagePlaceholder,
		Name:     spec.Name,
		Width:    spec.Width,
		Height:   spec.Height,
		Duration: spec.Duration,
	})
}

// AddLayer places item on top of comp
func (b *Backend) AddLayer(item host.ItemHandle, comp host.CompHandle) (host.LayerHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.comps[uuid.UUID(comp)]
	if !ok {
		return host.LayerHandle{}, fmt.Errorf("%w: comp %s", host.ErrUnknownHandle, comp)
	}

	itemID := uuid.UUID(item)
	_, isFootage := b.footage[itemID]
	_, isComp := b.compItems[itemID]
	if !isFootage && !isComp {
		return host.LayerHandle{}, fmt.Errorf("%w: layer source %s", host.ErrUnknownHandle, item)
	}
	if itemID == rec.comp.ItemID {
		return host.LayerHandle{}, fmt.Errorf("%w: comp %s cannot contain itself", host.ErrInvalidArgument, comp)
	}

	lr := &layerRecord{
		layer: host.Layer{
			ID:           uuid.New(),
			Source:       itemID,
			Flags:        host.LayerFlagVideoActive,
			Quality:      host.QualityBest,
			TransferMode: host.TransferMode{Mode: host.BlendCopy},
			Stretch:      timeconv.OneToOne,
		},
		comp: rec.comp.ID,
	}
	b.layers[lr.layer.ID] = lr
	rec.layers = append([]*layerRecord{lr}, rec.layers...)
	return host.LayerHandle(lr.layer.ID), nil
}

func (b *Backend) layer(h host.LayerHandle) (*layerRecord, error) {
	lr, ok := b.layers[uuid.UUID(h)]
	if !ok {
		return nil, fmt.Errorf("%w: layer %s", host.ErrUnknownHandle, h)
	}
	return lr, nil
}

// SetLayerFlag turns a single layer flag on or off
func (b *Backend) SetLayerFlag(layer host.LayerHandle, flag host.LayerFlag, on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	lr, err := b.layer(layer)
	if err != nil {
		return err
	}
	if !flag.Valid() {
		return fmt.Errorf("%w: layer flag %#x", host.ErrInvalidArgument, uint16(flag))
	}
	if on {
		lr.layer.Flags |= flag
	} else {
		lr.layer.Flags &^= flag
	}
	return nil
}

// SetLayerQuality sets the layer quality
func (b *Backend) SetLayerQuality(layer host.LayerHandle, quality host.Quality) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	lr, err := b.layer(layer)
	if err != nil {
		return err
	}
	if quality < host.QualityWireframe || quality > host.QualityBest {
		return fmt.Errorf("%w: quality %d", host.ErrInvalidArgument, quality)
	}
	lr.layer.Quality = quality
	return nil
}

// SetLayerTransferMode sets blend mode, transfer flags and track matte
func (b *Backend) SetLayerTransferMode(layer host.LayerHandle, mode host.TransferMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	lr, err := b.layer(layer)
	if err != nil {
		return err
	}
	if !mode.Mode.Valid() {
		return fmt.Errorf("%w: blend mode %d", host.ErrInvalidArgument, mode.Mode)
	}
	if mode.TrackMatte < host.TrackMatteNone || mode.TrackMatte > host.TrackMatteNotLuma {
		return fmt.Errorf("%w: track matte %d", host.ErrInvalidArgument, mode.TrackMatte)
	}
	lr.layer.TransferMode = mode
	return nil
}

// SetLayerOffset sets the layer start time
func (b *Backend) SetLayerOffset(layer host.LayerHandle, offset timeconv.RationalTime) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	lr, err := b.layer(layer)
	if err != nil {
		return err
	}
	if offset.Scale == 0 {
		return fmt.Errorf("%w: offset %s", host.ErrInvalidArgument, offset)
	}
	lr.layer.Offset = offset
	return nil
}

// SetLayerInPointAndDuration sets the layer in point and duration
func (b *Backend) SetLayerInPointAndDuration(layer host.LayerHandle, in, duration timeconv.RationalTime) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	lr, err := b.layer(layer)
	if err != nil {
		return err
	}
	if in.Scale == 0 || duration.Scale == 0 {
		return fmt.Errorf("%w: in point %s duration %s", host.ErrInvalidArgument, in, duration)
	}
	if duration.Value < 0 {
		return fmt.Errorf("%w: negative duration %s", host.ErrInvalidArgument, duration)
	}
	lr.layer.InPoint = in
	lr.layer.Duration = duration
	return nil
}

// SetLayerStretch sets the layer stretch factor
func (b *Backend) SetLayerStretch(layer host.LayerHandle, stretch timeconv.Ratio) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	lr, err := b.layer(layer)
	if err != nil {
		return err
	}
	if stretch.Den == 0 || stretch.Num == 0 {
		return fmt.Errorf("%w: stretch %d/%d", host.ErrInvalidArgument, stretch.Num, stretch.Den)
	}
	lr.layer.Stretch = stretch
	return nil
}

// SetLayerName renames a layer
func (b *Backend) SetLayerName(layer host.LayerHandle, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	lr, err := b.layer(layer)
	if err != nil {
		return err
	}
	lr.layer.Name = name
	return nil
}

// SetLayerParent links layer to a parent layer of the same composition
func (b *Backend) SetLayerParent(layer, parent host.LayerHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	lr, err := b.layer(layer)
	if err != nil {
		return err
	}
	pr, err := b.layer(parent)
	if err != nil {
		return err
	}
	if lr == pr {
		return fmt.Errorf("%w: layer %s cannot parent itself", host.ErrInvalidArgument, layer)
	}
	if lr.comp != pr.comp {
		return fmt.Errorf("%w: parent %s is in another composition", host.ErrInvalidArgument, parent)
	}
	for p := pr; p != nil; {
		if p == lr {
			return fmt.Errorf("%w: parenting %s to %s creates a cycle", host.ErrInvalidArgument, layer, parent)
		}
		if p.layer.Parent == uuid.Nil {
			break
		}
		p = b.layers[p.layer.Parent]
	}
	lr.layer.Parent = pr.layer.ID
	return nil
}

// LayerStream returns the stream of a layer property, acquiring it on first use
func (b *Backend) LayerStream(layer host.LayerHandle, stream host.Stream) (host.StreamHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	lr, err := b.layer(layer)
	if err != nil {
		return host.StreamHandle{}, err
	}
	if stream < host.StreamAnchorPoint || stream > host.StreamTimeRemap {
		return host.StreamHandle{}, fmt.Errorf("%w: stream %d", host.ErrInvalidArgument, stream)
	}
	for _, sd := range lr.streams {
		if sd.Stream == stream {
			return host.StreamHandle(sd.ID), nil
		}
	}

	sd := &host.StreamData{ID: uuid.New(), Stream: stream, Value: defaultStreamValue(stream)}
	lr.streams = append(lr.streams, sd)
	b.streams[sd.ID] = sd
	return host.StreamHandle(sd.ID), nil
}

func defaultStreamValue(s host.Stream) host.StreamValue {
	switch s {
	case host.StreamScale:
		return host.StreamValue{X: 100, Y: 100}
	case host.StreamOpacity:
		return host.StreamValue{X: 100}
	default:
		return host.StreamValue{}
	}
}

func (b *Backend) stream(h host.StreamHandle) (*host.StreamData, error) {
	sd, ok := b.streams[uuid.UUID(h)]
	if !ok {
		return nil, fmt.Errorf("%w: stream %s", host.ErrUnknownHandle, h)
	}
	return sd, nil
}

// SetStreamValue sets the static value of a stream
func (b *Backend) SetStreamValue(stream host.StreamHandle, value host.StreamValue) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sd, err := b.stream(stream)
	if err != nil {
		return err
	}
	sd.Value = value
	return nil
}

// InsertKeyframe adds a keyframe at the given time and returns its index.
// A keyframe already at that time is reused.
func (b *Backend) InsertKeyframe(stream host.StreamHandle, at timeconv.RationalTime) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sd, err := b.stream(stream)
	if err != nil {
		return 0, err
	}
	if at.Scale == 0 {
		return 0, fmt.Errorf("%w: keyframe time %s", host.ErrInvalidArgument, at)
	}

	i := 0
	for ; i < len(sd.Keyframes); i++ {
		k := sd.Keyframes[i].Time
		if !k.Less(at) && !at.Less(k) {
			return i, nil
		}
		if at.Less(k) {
			break
		}
	}

	sd.Keyframes = append(sd.Keyframes, host.Keyframe{})
	copy(sd.Keyframes[i+1:], sd.Keyframes[i:])
	sd.Keyframes[i] = host.Keyframe{Time: at, Value: sd.Value}
	return i, nil
}

// SetKeyframeValue sets the value and curve of an existing keyframe
func (b *Backend) SetKeyframeValue(stream host.StreamHandle, index int, value host.StreamValue, curve float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sd, err := b.stream(stream)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(sd.Keyframes) {
		return fmt.Errorf("%w: keyframe index %d of %d", host.ErrInvalidArgument, index, len(sd.Keyframes))
	}
	sd.Keyframes[index].Value = value
	sd.Keyframes[index].Curve = curve
	return nil
}

// Snapshot returns a deep copy of the current project
func (b *Backend) Snapshot() host.Project {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot()
}

func (b *Backend) snapshot() host.Project {
	p := host.Project{
		Info:    b.info,
		Root:    b.root,
		Folders: make([]host.Folder, 0, len(b.folderOrder)),
		Footage: make([]host.Footage, 0, len(b.footOrder)),
		Comps:   make([]host.Comp, 0, len(b.compOrder)),
	}

	for _, id := range b.folderOrder {
		p.Folders = append(p.Folders, *b.folders[id])
	}
	for _, id := range b.footOrder {
		f := *b.footage[id]
		if f.Color != nil {
			c := *f.Color
			f.Color = &c
		}
		p.Footage = append(p.Footage, f)
	}
	for _, id := range b.compOrder {
		rec := b.comps[id]
		c := rec.comp
		c.Layers = make([]host.Layer, 0, len(rec.layers))
		for _, lr := range rec.layers {
			l := lr.layer
			l.Streams = make([]host.StreamData, 0, len(lr.streams))
			for _, sd := range lr.streams {
				s := *sd
				s.Keyframes = append([]host.Keyframe(nil), sd.Keyframes...)
				l.Streams = append(l.Streams, s)
			}
			c.Layers = append(c.Layers, l)
		}
		p.Comps = append(p.Comps, c)
	}
	return p
}
