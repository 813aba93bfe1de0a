package importer

import (
	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/pkg/aet"
)

// compHandles are the two handles a composition shell is known by.
type compHandles struct {
	comp host.CompHandle
	item host.ItemHandle
}

// handles records the host object created for each scene entity, keyed by
// entity identity. Each slot is written once by the step creating the entity.
type handles struct {
	videos map[*aet.Video]host.ItemHandle
	audios map[*aet.Audio]host.ItemHandle
	comps  map[*aet.Composition]compHandles
	layers map[*aet.Layer]host.LayerHandle
}

func newHandles() *handles {
	return &handles{
		videos: make(map[*aet.Video]host.ItemHandle),
		audios: make(map[*aet.Audio]host.ItemHandle),
		comps:  make(map[*aet.Composition]compHandles),
		layers: make(map[*aet.Layer]host.LayerHandle),
	}
}

// sourceItem returns the footage or composition item a layer places.
func (h *handles) sourceItem(layer *aet.Layer) (host.ItemHandle, bool) {
	switch layer.ItemType {
	case aet.ItemTypeVideo:
		if layer.Video == nil {
			return host.ItemHandle{}, false
		}
		item, ok := h.videos[layer.Video]
		return item, ok
	case aet.ItemTypeAudio:
		if layer.Audio == nil {
			return host.ItemHandle{}, false
		}
		item, ok := h.audios[layer.Audio]
		return item, ok
	case aet.ItemTypeComposition:
		if layer.Composition == nil {
			return host.ItemHandle{}, false
		}
		ch, ok := h.comps[layer.Composition]
		return ch.item, ok
	default:
		return host.ItemHandle{}, false
	}
}

func (h *handles) layer(l *aet.Layer) (host.LayerHandle, bool) {
	if l == nil {
		return host.LayerHandle{}, false
	}
	lh, ok := h.layers[l]
	return lh, ok
}
