package importer

import (
	"fmt"
	"strings"

	"github.com/gfox0104/AetPlugin/internal/config"
	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/internal/host/memory"
	"github.com/gfox0104/AetPlugin/internal/timeconv"
)

// recordingHost wraps the memory host, records every call and can be told
// to reject calls by method name.
type recordingHost struct {
	*memory.Backend

	calls []string
	fail  map[string]error

	// item handle -> footage or comp name, to label AddLayer calls
	names map[host.ItemHandle]string
}

var _ host.Host = (*recordingHost)(nil)

func newRecordingHost() *recordingHost {
	return &recordingHost{
		Backend: memory.New(config.MemoryConfig{}),
		fail:    make(map[string]error),
		names:   make(map[host.ItemHandle]string),
	}
}

func (h *recordingHost) record(method string, args ...any) error {
	call := method
	if len(args) > 0 {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		call += "(" + strings.Join(parts, ",") + ")"
	}
	h.calls = append(h.calls, call)
	return h.fail[method]
}

// callsOf returns the recorded calls of one method, in order.
func (h *recordingHost) callsOf(method string) []string {
	var out []string
	for _, c := range h.calls {
		if c == method || strings.HasPrefix(c, method+"(") {
			out = append(out, c)
		}
	}
	return out
}

func (h *recordingHost) ProjectRoot() (host.ItemHandle, error) {
	if err := h.record("ProjectRoot"); err != nil {
		return host.ItemHandle{}, err
	}
	return h.Backend.ProjectRoot()
}

func (h *recordingHost) CreateFolder(name string, parent host.ItemHandle) (host.ItemHandle, error) {
	if err := h.record("CreateFolder", name); err != nil {
		return host.ItemHandle{}, err
	}
	return h.Backend.CreateFolder(name, parent)
}

func (h *recordingHost) CreateComp(parent host.ItemHandle, spec host.CompSpec) (host.CompHandle, host.ItemHandle, error) {
	if err := h.record("CreateComp", spec.Name); err != nil {
		return host.CompHandle{}, host.ItemHandle{}, err
	}
	c, item, err := h.Backend.CreateComp(parent, spec)
	if err == nil {
		h.names[item] = spec.Name
	}
	return c, item, err
}

func (h *recordingHost) NewSolidFootage(folder host.ItemHandle, spec host.SolidSpec) (host.ItemHandle, error) {
	if err := h.record("NewSolidFootage", spec.Name); err != nil {
		return host.ItemHandle{}, err
	}
	item, err := h.Backend.NewSolidFootage(folder, spec)
	if err == nil {
		h.names[item] = spec.Name
	}
	return item, err
}

func (h *recordingHost) NewFileFootage(folder host.ItemHandle, path string) (host.ItemHandle, error) {
	if err := h.record("NewFileFootage", path); err != nil {
		return host.ItemHandle{}, err
	}
	item, err := h.Backend.NewFileFootage(folder, path)
	if err == nil {
		h.names[item] = path
	}
	return item, err
}

func (h *recordingHost) NewPlaceholderFootage(folder host.ItemHandle, spec host.PlaceholderSpec) (host.ItemHandle, error) {
	if err := h.record("NewPlaceholderFootage", spec.Name); err != nil {
		return host.ItemHandle{}, err
	}
	item, err := h.Backend.NewPlaceholderFootage(folder, spec)
	if err == nil {
		h.names[item] = spec.Name
	}
	return item, err
}

func (h *recordingHost) AddLayer(item host.ItemHandle, comp host.CompHandle) (host.LayerHandle, error) {
	if err := h.record("AddLayer", h.names[item]); err != nil {
		return host.LayerHandle{}, err
	}
	return h.Backend.AddLayer(item, comp)
}

func (h *recordingHost) SetLayerFlag(layer host.LayerHandle, flag host.LayerFlag, on bool) error {
	if err := h.record("SetLayerFlag", flag, on); err != nil {
		return err
	}
	return h.Backend.SetLayerFlag(layer, flag, on)
}

func (h *recordingHost) SetLayerQuality(layer host.LayerHandle, quality host.Quality) error {
	if err := h.record("SetLayerQuality", int(quality)); err != nil {
		return err
	}
	return h.Backend.SetLayerQuality(layer, quality)
}

func (h *recordingHost) SetLayerTransferMode(layer host.LayerHandle, mode host.TransferMode) error {
	if err := h.record("SetLayerTransferMode", int(mode.Mode)); err != nil {
		return err
	}
	return h.Backend.SetLayerTransferMode(layer, mode)
}

func (h *recordingHost) SetLayerOffset(layer host.LayerHandle, offset timeconv.RationalTime) error {
	if err := h.record("SetLayerOffset", offset); err != nil {
		return err
	}
	return h.Backend.SetLayerOffset(layer, offset)
}

func (h *recordingHost) SetLayerInPointAndDuration(layer host.LayerHandle, in, duration timeconv.RationalTime) error {
	if err := h.record("SetLayerInPointAndDuration", in, duration); err != nil {
		return err
	}
	return h.Backend.SetLayerInPointAndDuration(layer, in, duration)
}

func (h *recordingHost) SetLayerStretch(layer host.LayerHandle, stretch timeconv.Ratio) error {
	if err := h.record("SetLayerStretch", stretch.Num, stretch.Den); err != nil {
		return err
	}
	return h.Backend.SetLayerStretch(layer, stretch)
}

func (h *recordingHost) SetLayerName(layer host.LayerHandle, name string) error {
	if err := h.record("SetLayerName", name); err != nil {
		return err
	}
	return h.Backend.SetLayerName(layer, name)
}

func (h *recordingHost) SetLayerParent(layer, parent host.LayerHandle) error {
	if err := h.record("SetLayerParent"); err != nil {
		return err
	}
	return h.Backend.SetLayerParent(layer, parent)
}

func (h *recordingHost) LayerStream(layer host.LayerHandle, stream host.Stream) (host.StreamHandle, error) {
	if err := h.record("LayerStream", stream); err != nil {
		return host.StreamHandle{}, err
	}
	return h.Backend.LayerStream(layer, stream)
}

func (h *recordingHost) SetStreamValue(stream host.StreamHandle, value host.StreamValue) error {
	if err := h.record("SetStreamValue", value.X, value.Y); err != nil {
		return err
	}
	return h.Backend.SetStreamValue(stream, value)
}

func (h *recordingHost) InsertKeyframe(stream host.StreamHandle, at timeconv.RationalTime) (int, error) {
	if err := h.record("InsertKeyframe", at); err != nil {
		return 0, err
	}
	return h.Backend.InsertKeyframe(stream, at)
}

func (h *recordingHost) SetKeyframeValue(stream host.StreamHandle, index int, value host.StreamValue, curve float64) error {
	if err := h.record("SetKeyframeValue", index); err != nil {
		return err
	}
	return h.Backend.SetKeyframeValue(stream, index, value, curve)
}
