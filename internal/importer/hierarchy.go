package importer

import (
	"fmt"
	"math"

	"github.com/gfox0104/AetPlugin/internal/footage"
	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/internal/timeconv"
	"github.com/gfox0104/AetPlugin/internal/util"
	"github.com/gfox0104/AetPlugin/pkg/aet"
)

// folders are the project folders footage and shells are placed in.
type folders struct {
	root  host.ItemHandle
	data  host.ItemHandle
	video host.ItemHandle
	audio host.ItemHandle
	comp  host.ItemHandle
}

func (r *run) buildHierarchy() error {
	f, err := r.createFolders()
	if err != nil {
		return err
	}

	r.importFootage(f)

	if err := r.createShells(f); err != nil {
		return err
	}

	scene := r.sess.Scene
	for i := len(scene.Compositions) - 1; i >= 0; i-- {
		if err := r.populate(scene.Compositions[i]); err != nil {
			return err
		}
	}
	return r.populate(scene.RootComposition)
}

func (r *run) createFolders() (folders, error) {
	var f folders

	project, err := r.host.ProjectRoot()
	if err != nil {
		return f, fmt.Errorf("failed to get project root: %w", err)
	}

	create := func(name string, parent host.ItemHandle) (host.ItemHandle, error) {
		h, err := r.host.CreateFolder(name, parent)
		if err != nil {
			return host.ItemHandle{}, fmt.Errorf("failed to create folder %q: %w", name, err)
		}
		return h, nil
	}

	if f.root, err = create("root", project); err != nil {
		return f, err
	}
	if f.data, err = create("data", f.root); err != nil {
		return f, err
	}
	if f.video, err = create("video", f.data); err != nil {
		return f, err
	}
	if f.audio, err = create("audio", f.data); err != nil {
		return f, err
	}
	if f.comp, err = create("comp", f.data); err != nil {
		return f, err
	}
	return f, nil
}

// importFootage creates an item for every video then every audio. An item
// that fails to be created is left out and layers placing it are skipped.
func (r *run) importFootage(f folders) {
	for i, v := range r.sess.Scene.Videos {
		if v == nil {
			continue
		}
		item, res, err := r.resolver.ResolveVideo(r.host, f.video, v)
		if err != nil {
			r.logger.Warn("Failed to create video footage", "index", i, "error", err)
			continue
		}
		r.handles.videos[v] = item
		r.footageCreated(res)
		r.logger.Debug("Video footage created", "index", i, "source", v.FrontSourceName(), "resolution", res.String())
	}

	for i, a := range r.sess.Scene.Audios {
		if a == nil {
			continue
		}
		item, res, err := r.resolver.ResolveAudio(r.host, f.audio, a)
		if err != nil {
			r.logger.Warn("Failed to create audio footage", "index", i, "error", err)
			continue
		}
		r.handles.audios[a] = item
		r.footageCreated(res)
	}
}

func (r *run) footageCreated(res footage.Resolution) {
	r.report.Footage[res]++
	r.metrics.footageCreated(res)
}

// createShells creates every composition before any layer is added, so a
// layer placing a composition always finds its item.
func (r *run) createShells(f folders) error {
	scene := r.sess.Scene

	rootName := util.FormatSceneName(r.sess.SetName, scene.Name)
	rootDuration := math.Max(scene.EndFrame, scene.RootComposition.Duration())
	if err := r.createShell(scene.RootComposition, rootName, f.root, rootDuration); err != nil {
		return err
	}
	r.report.RootComp = rootName

	for _, comp := range scene.Compositions {
		if err := r.createShell(comp, comp.Name, f.comp, comp.Duration()); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) createShell(comp *aet.Composition, name string, folder host.ItemHandle, duration float64) error {
	spec := host.CompSpec{
		Name:        name,
		Width:       r.sess.Resolution.Width,
		Height:      r.sess.Resolution.Height,
		PixelAspect: timeconv.OneToOne,
		Duration:    r.sess.Time.FrameToTime(duration),
		FrameRate:   r.sess.Time.FrameRateRatio(),
	}

	ch, item, err := r.host.CreateComp(folder, spec)
	if err != nil {
		return fmt.Errorf("failed to create composition %q: %w", name, err)
	}
	r.handles.comps[comp] = compHandles{comp: ch, item: item}
	r.report.Compositions++
	return nil
}

// populate adds the layers of comp bottom-up so the host stack ends with
// index 0 on top, then links parents once every layer exists.
func (r *run) populate(comp *aet.Composition) error {
	ch, ok := r.handles.comps[comp]
	if !ok {
		return fmt.Errorf("composition %q has no shell", comp.Name)
	}

	for i := len(comp.Layers) - 1; i >= 0; i-- {
		if err := r.importLayer(comp, ch.comp, i); err != nil {
			return err
		}
	}

	r.linkParents(comp)
	return nil
}

func (r *run) importLayer(comp *aet.Composition, ch host.CompHandle, index int) error {
	layer := comp.Layers[index]
	if layer == nil {
		return nil
	}
	log := r.logger.With("comp", comp.Name, "layer", index, "name", layer.Name)

	item, ok := r.handles.sourceItem(layer)
	if !ok {
		r.report.LayersSkipped++
		log.Warn("Layer source has no footage, skipping", "itemType", layer.ItemType.String())
		return nil
	}

	lh, err := r.host.AddLayer(item, ch)
	if err != nil {
		r.report.LayersSkipped++
		log.Warn("Failed to add layer", "error", err)
		return nil
	}
	r.handles.layers[layer] = lh
	r.report.Layers++
	r.metrics.layerAdded()

	if layer.LayerVideo != nil {
		r.applyTransferMode(log, lh, layer.LayerVideo.TransferMode)

		n, err := r.translateProperties(log, lh, &layer.LayerVideo.Transform)
		r.report.Keyframes += n
		r.metrics.keyframesEmitted(n)
		if err != nil {
			return fmt.Errorf("composition %q layer %d (%s): %w", comp.Name, index, layer.Name, err)
		}
	}

	r.applyAttributes(log, lh, layer)
	return nil
}

func (r *run) linkParents(comp *aet.Composition) {
	for i, layer := range comp.Layers {
		if layer == nil || !layer.Parent.Valid {
			continue
		}
		lh, ok := r.handles.layer(layer)
		if !ok {
			continue
		}

		parent, err := layer.ParentLayer(comp)
		if err != nil {
			r.logger.Warn("Invalid parent reference", "comp", comp.Name, "layer", i, "error", err)
			continue
		}
		ph, ok := r.handles.layer(parent)
		if !ok {
			continue
		}

		if err := r.host.SetLayerParent(lh, ph); err != nil {
			r.attributeFailed(r.logger.With("comp", comp.Name, "layer", i), "parent", err)
		}
	}
}
