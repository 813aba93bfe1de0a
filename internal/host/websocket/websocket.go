// Package websocket drives a remote host over a WebSocket bridge. Calls are
// validated against a local memory mirror, which also assigns handles and
// keyframe indexes, then streamed to the bridge in call order.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gfox0104/AetPlugin/internal/config"
	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/internal/host/memory"
	"github.com/gfox0104/AetPlugin/internal/timeconv"
	"github.com/gfox0104/AetPlugin/pkg/streaming"
	"github.com/google/uuid"
)

const ackTimeout = 10 * time.Second

// Backend streams authoring calls to a remote host.
type Backend struct {
	*memory.Backend
	conn       *connection
	cfg        config.WebSocketConfig
	ackTimeout time.Duration
	announced  map[host.StreamHandle]struct{}
	// lost is the first message the bridge never received; once set the
	// mirror and the bridge disagree and the project can only fail.
	lost       error
}

var _ host.Backend = (*Backend)(nil)

// New creates a WebSocket backend.
func New(cfg config.WebSocketConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		Backend:    memory.New(config.MemoryConfig{}),
		conn:       newConnection(logger),
		cfg:        cfg,
		ackTimeout: ackTimeout,
		announced:  make(map[host.StreamHandle]struct{}),
	}
}

// Init connects to the bridge.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the bridge.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(streaming.Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

func (b *Backend) send(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err == nil {
		err = b.conn.send(data)
	}
	if err != nil {
		b.lost = fmt.Errorf("%s not delivered, project abandoned: %w", msgType, err)
		return b.lost
	}
	return nil
}

func wireTime(t timeconv.RationalTime) streaming.Time {
	return streaming.Time{Value: t.Value, Scale: t.Scale}
}

func wireRatio(r timeconv.Ratio) streaming.Ratio {
	return streaming.Ratio{Num: r.Num, Den: r.Den}
}

func ptr[T any](v T) *T {
	return &v
}

// BeginProject resets the mirror and waits for the bridge to open the project.
func (b *Backend) BeginProject(info host.ProjectInfo) error {
	if err := b.Backend.BeginProject(info); err != nil {
		return err
	}
	b.announced = make(map[host.StreamHandle]struct{})
	b.lost = nil
	root, err := b.Backend.ProjectRoot()
	if err != nil {
		return err
	}

	data, err := marshalEnvelope(streaming.TypeBeginProject, streaming.BeginProjectPayload{
		Name:       info.Name,
		SourcePath: info.SourcePath,
		Root:       uuid.UUID(root),
	})
	if err != nil {
		return err
	}

	b.conn.mu.Lock()
	b.conn.cachedBegin = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeBeginProject, b.ackTimeout)
}

// EndProject waits until the bridge has applied every queued call.
func (b *Backend) EndProject() error {
	if b.lost != nil {
		b.clearBegin()
		return b.lost
	}
	data, err := marshalEnvelope(streaming.TypeEndProject, nil)
	if err == nil {
		err = b.conn.sendAndWait(data, streaming.TypeEndProject, b.ackTimeout)
	}

	b.clearBegin()
	return err
}

func (b *Backend) clearBegin() {
	b.conn.mu.Lock()
	b.conn.cachedBegin = nil
	b.conn.mu.Unlock()
}

func (b *Backend) CreateFolder(name string, parent host.ItemHandle) (host.ItemHandle, error) {
	if b.lost != nil {
		return host.ItemHandle{}, b.lost
	}
	id, err := b.Backend.CreateFolder(name, parent)
	if err != nil {
		return id, err
	}
	return id, b.send(streaming.TypeCreateFolder, streaming.CreateFolderPayload{
		ID: uuid.UUID(id), Name: name, Parent: uuid.UUID(parent),
	})
}

func (b *Backend) CreateComp(parent host.ItemHandle, spec host.CompSpec) (host.CompHandle, host.ItemHandle, error) {
	if b.lost != nil {
		return host.CompHandle{}, host.ItemHandle{}, b.lost
	}
	comp, item, err := b.Backend.CreateComp(parent, spec)
	if err != nil {
		return comp, item, err
	}
	return comp, item, b.send(streaming.TypeCreateComp, streaming.CreateCompPayload{
		ID:          uuid.UUID(comp),
		ItemID:      uuid.UUID(item),
		Parent:      uuid.UUID(parent),
		Name:        spec.Name,
		Width:       spec.Width,
		Height:      spec.Height,
		PixelAspect: wireRatio(spec.PixelAspect),
		Duration:    wireTime(spec.Duration),
		FrameRate:   wireRatio(spec.FrameRate),
	})
}

func (b *Backend) NewSolidFootage(folder host.ItemHandle, spec host.SolidSpec) (host.ItemHandle, error) {
	if b.lost != nil {
		return host.ItemHandle{}, b.lost
	}
	id, err := b.Backend.NewSolidFootage(folder, spec)
	if err != nil {
		return id, err
	}
	c := spec.Color
	return id, b.send(streaming.TypeNewSolidFootage, streaming.FootagePayload{
		ID: uuid.UUID(id), Folder: uuid.UUID(folder),
		Name: spec.Name, Width: spec.Width, Height: spec.Height,
		Color: []float64{c.R, c.G, c.B, c.A}, ColorHex: c.Hex(),
	})
}

func (b *Backend) NewFileFootage(folder host.ItemHandle, path string) (host.ItemHandle, error) {
	if b.lost != nil {
		return host.ItemHandle{}, b.lost
	}
	id, err := b.Backend.NewFileFootage(folder, path)
	if err != nil {
		return id, err
	}
	return id, b.send(streaming.TypeNewFileFootage, streaming.FootagePayload{
		ID: uuid.UUID(id), Folder: uuid.UUID(folder), Path: path,
	})
}

func (b *Backend) NewPlaceholderFootage(folder host.ItemHandle, spec host.PlaceholderSpec) (host.ItemHandle, error) {
	if b.lost != nil {
		return host.ItemHandle{}, b.lost
	}
	id, err := b.Backend.NewPlaceholderFootage(folder, spec)
	if err != nil {
		return id, err
	}
	return id, b.send(streaming.TypeNewPlaceholderFootage, streaming.FootagePayload{
		ID: uuid.UUID(id), Folder: uuid.UUID(folder),
		Name: spec.Name, Width: spec.Width, Height: spec.Height,
		Duration: ptr(wireTime(spec.Duration)),
	})
}

func (b *Backend) AddLayer(item host.ItemHandle, comp host.CompHandle) (host.LayerHandle, error) {
	if b.lost != nil {
		return host.LayerHandle{}, b.lost
	}
	id, err := b.Backend.AddLayer(item, comp)
	if err != nil {
		return id, err
	}
	return id, b.send(streaming.TypeAddLayer, streaming.AddLayerPayload{
		ID: uuid.UUID(id), Item: uuid.UUID(item), Comp: uuid.UUID(comp),
	})
}

func (b *Backend) SetLayerFlag(layer host.LayerHandle, flag host.LayerFlag, on bool) error {
	if b.lost != nil {
		return b.lost
	}
	if err := b.Backend.SetLayerFlag(layer, flag, on); err != nil {
		return err
	}
	return b.send(streaming.TypeSetLayerFlag, streaming.LayerPayload{
		Layer: uuid.UUID(layer), Flag: flag.String(), On: ptr(on),
	})
}

func (b *Backend) SetLayerQuality(layer host.LayerHandle, quality host.Quality) error {
	if b.lost != nil {
		return b.lost
	}
	if err := b.Backend.SetLayerQuality(layer, quality); err != nil {
		return err
	}
	return b.send(streaming.TypeSetLayerQuality, streaming.LayerPayload{
		Layer: uuid.UUID(layer), Quality: ptr(int(quality)),
	})
}

func (b *Backend) SetLayerTransferMode(layer host.LayerHandle, mode host.TransferMode) error {
	if b.lost != nil {
		return b.lost
	}
	if err := b.Backend.SetLayerTransferMode(layer, mode); err != nil {
		return err
	}
	return b.send(streaming.TypeSetLayerTransferMode, streaming.LayerPayload{
		Layer:      uuid.UUID(layer),
		BlendMode:  ptr(int(mode.Mode)),
		Flags:      ptr(mode.Flags),
		TrackMatte: ptr(int(mode.TrackMatte)),
	})
}

func (b *Backend) SetLayerOffset(layer host.LayerHandle, offset timeconv.RationalTime) error {
	if b.lost != nil {
		return b.lost
	}
	if err := b.Backend.SetLayerOffset(layer, offset); err != nil {
		return err
	}
	return b.send(streaming.TypeSetLayerOffset, streaming.LayerPayload{
		Layer: uuid.UUID(layer), Offset: ptr(wireTime(offset)),
	})
}

func (b *Backend) SetLayerInPointAndDuration(layer host.LayerHandle, in, duration timeconv.RationalTime) error {
	if b.lost != nil {
		return b.lost
	}
	if err := b.Backend.SetLayerInPointAndDuration(layer, in, duration); err != nil {
		return err
	}
	return b.send(streaming.TypeSetLayerInPoint, streaming.LayerPayload{
		Layer: uuid.UUID(layer), InPoint: ptr(wireTime(in)), Duration: ptr(wireTime(duration)),
	})
}

func (b *Backend) SetLayerStretch(layer host.LayerHandle, stretch timeconv.Ratio) error {
	if b.lost != nil {
		return b.lost
	}
	if err := b.Backend.SetLayerStretch(layer, stretch); err != nil {
		return err
	}
	return b.send(streaming.TypeSetLayerStretch, streaming.LayerPayload{
		Layer: uuid.UUID(layer), Stretch: ptr(wireRatio(stretch)),
	})
}

func (b *Backend) SetLayerName(layer host.LayerHandle, name string) error {
	if b.lost != nil {
		return b.lost
	}
	if err := b.Backend.SetLayerName(layer, name); err != nil {
		return err
	}
	return b.send(streaming.TypeSetLayerName, streaming.LayerPayload{
		Layer: uuid.UUID(layer), Name: ptr(name),
	})
}

func (b *Backend) SetLayerParent(layer, parent host.LayerHandle) error {
	if b.lost != nil {
		return b.lost
	}
	if err := b.Backend.SetLayerParent(layer, parent); err != nil {
		return err
	}
	return b.send(streaming.TypeSetLayerParent, streaming.LayerPayload{
		Layer: uuid.UUID(layer), Parent: ptr(uuid.UUID(parent)),
	})
}

// LayerStream announces a stream handle the first time it is acquired.
func (b *Backend) LayerStream(layer host.LayerHandle, stream host.Stream) (host.StreamHandle, error) {
	if b.lost != nil {
		return host.StreamHandle{}, b.lost
	}
	id, err := b.Backend.LayerStream(layer, stream)
	if err != nil {
		return id, err
	}
	if _, ok := b.announced[id]; ok {
		return id, nil
	}
	b.announced[id] = struct{}{}
	return id, b.send(streaming.TypeLayerStream, streaming.LayerStreamPayload{
		ID: uuid.UUID(id), Layer: uuid.UUID(layer), Stream: stream.String(),
	})
}

func (b *Backend) SetStreamValue(stream host.StreamHandle, value host.StreamValue) error {
	if b.lost != nil {
		return b.lost
	}
	if err := b.Backend.SetStreamValue(stream, value); err != nil {
		return err
	}
	return b.send(streaming.TypeSetStreamValue, streaming.StreamValuePayload{
		Stream: uuid.UUID(stream), Value: streaming.Value{X: value.X, Y: value.Y},
	})
}

// InsertKeyframe sends the index the mirror assigned so both sides agree
// on keyframe positions.
func (b *Backend) InsertKeyframe(stream host.StreamHandle, at timeconv.RationalTime) (int, error) {
	if b.lost != nil {
		return 0, b.lost
	}
	index, err := b.Backend.InsertKeyframe(stream, at)
	if err != nil {
		return index, err
	}
	return index, b.send(streaming.TypeInsertKeyframe, streaming.InsertKeyframePayload{
		Stream: uuid.UUID(stream), Time: wireTime(at), Index: index,
	})
}

func (b *Backend) SetKeyframeValue(stream host.StreamHandle, index int, value host.StreamValue, curve float64) error {
	if b.lost != nil {
		return b.lost
	}
	if err := b.Backend.SetKeyframeValue(stream, index, value, curve); err != nil {
		return err
	}
	return b.send(streaming.TypeSetKeyframeValue, streaming.KeyframeValuePayload{
		Stream: uuid.UUID(stream), Index: index,
		Value: streaming.Value{X: value.X, Y: value.Y}, Curve: curve,
	})
}
