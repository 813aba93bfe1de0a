package importer

import (
	"log/slog"

	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/pkg/aet"
)

// attributeFailed records a host call rejected for one layer attribute.
func (r *run) attributeFailed(log *slog.Logger, attr string, err error) {
	log.Warn("Failed to set layer attribute", "attribute", attr, "error", err)
	r.report.AttributeFailures++
	r.metrics.attributeFailed(attr)
}

func (r *run) applyTransferMode(log *slog.Logger, lh host.LayerHandle, tm aet.TransferMode) {
	mode := host.TransferMode{
		Mode:       host.BlendMode(int(tm.BlendMode) - 1),
		Flags:      uint8(tm.Flags),
		TrackMatte: host.TrackMatte(tm.TrackMatte),
	}
	if err := r.host.SetLayerTransferMode(lh, mode); err != nil {
		r.attributeFailed(log, "transferMode", err)
	}
}

// applyAttributes sets everything but the transform of a layer. Each
// attribute is independent of the others.
func (r *run) applyAttributes(log *slog.Logger, lh host.LayerHandle, layer *aet.Layer) {
	r.applyFlags(log, lh, layer.Flags)
	r.applyQuality(log, lh, layer.Quality)
	r.applyTimeRemap(log, lh, layer)
	r.applyPlacement(log, lh, layer)

	if err := r.host.SetLayerName(lh, layer.Name); err != nil {
		r.attributeFailed(log, "name", err)
	}

	// stretch goes last, the host moves in and out points when it changes
	r.applyStretch(log, lh, layer.TimeScale)
}

// applyFlags transfers the flag word one bit at a time.
func (r *run) applyFlags(log *slog.Logger, lh host.LayerHandle, flags aet.LayerFlags) {
	for _, f := range host.AllLayerFlags() {
		on := flags.Has(aet.LayerFlags(f))
		if err := r.host.SetLayerFlag(lh, f, on); err != nil {
			r.attributeFailed(log, "flag "+f.String(), err)
		}
	}
}

func (r *run) applyQuality(log *slog.Logger, lh host.LayerHandle, q aet.LayerQuality) {
	if q == aet.QualityNone {
		log.Debug("Layer has no quality, keeping host default")
		return
	}
	if err := r.host.SetLayerQuality(lh, host.Quality(int(q)-1)); err != nil {
		r.attributeFailed(log, "quality", err)
	}
}

// applyTimeRemap shifts layer time by a constant StartOffset. Only a single
// remap value is set, no remap keyframes.
func (r *run) applyTimeRemap(log *slog.Logger, lh host.LayerHandle, layer *aet.Layer) {
	if layer.StartOffset == 0 {
		return
	}

	if err := r.host.SetLayerFlag(lh, host.LayerFlagTimeRemapping, true); err != nil {
		r.attributeFailed(log, "timeRemap", err)
		return
	}
	stream, err := r.host.LayerStream(lh, host.StreamTimeRemap)
	if err != nil {
		r.attributeFailed(log, "timeRemap", err)
		return
	}
	value := host.StreamValue{X: r.sess.Time.FrameToSeconds(layer.StartOffset)}
	if err := r.host.SetStreamValue(stream, value); err != nil {
		r.attributeFailed(log, "timeRemap", err)
	}
}

// applyPlacement positions the layer in time. Composition layers are offset
// and collapsed so nested blend modes survive; all others get in point and
// duration.
func (r *run) applyPlacement(log *slog.Logger, lh host.LayerHandle, layer *aet.Layer) {
	start := r.sess.Time.FrameToTime(layer.StartFrame)

	if layer.ItemType == aet.ItemTypeComposition {
		if err := r.host.SetLayerOffset(lh, start); err != nil {
			r.attributeFailed(log, "offset", err)
		}
		if err := r.host.SetLayerFlag(lh, host.LayerFlagCollapse, true); err != nil {
			r.attributeFailed(log, "flag "+host.LayerFlagCollapse.String(), err)
		}
		return
	}

	duration := r.sess.Time.FrameToTime(layer.EndFrame - layer.StartFrame)
	if err := r.host.SetLayerInPointAndDuration(lh, start, duration); err != nil {
		r.attributeFailed(log, "inPoint", err)
	}
}

func (r *run) applyStretch(log *slog.Logger, lh host.LayerHandle, timeScale float64) {
	stretch, err := r.sess.Time.Stretch(timeScale)
	if err != nil {
		r.attributeFailed(log, "stretch", err)
		return
	}
	if err := r.host.SetLayerStretch(lh, stretch); err != nil {
		r.attributeFailed(log, "stretch", err)
	}
}
