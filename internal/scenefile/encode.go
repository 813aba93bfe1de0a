package scenefile

import (
	"fmt"

	"github.com/gfox0104/AetPlugin/pkg/aet"
)

// FromSet converts a scene graph back into its document form. Every
// referenced item must be part of the scene.
func FromSet(set *aet.Set) (*File, error) {
	f := &File{Name: set.Name, Scenes: make([]SceneFile, 0, len(set.Scenes))}
	for i, scene := range set.Scenes {
		sf, err := fromScene(scene)
		if err != nil {
			return nil, fmt.Errorf("scene %d (%s): %w", i, scene.Name, err)
		}
		f.Scenes = append(f.Scenes, sf)
	}
	return f, nil
}

type sceneIndex struct {
	videos map[*aet.Video]int
	audios map[*aet.Audio]int
	comps  map[*aet.Composition]int
}

func fromScene(scene *aet.Scene) (SceneFile, error) {
	sf := SceneFile{
		Name:       scene.Name,
		FrameRate:  scene.FrameRate,
		Resolution: SizeFile{Width: scene.Resolution.Width, Height: scene.Resolution.Height},
		StartFrame: scene.StartFrame,
		EndFrame:   scene.EndFrame,
	}
	idx := sceneIndex{
		videos: make(map[*aet.Video]int),
		audios: make(map[*aet.Audio]int),
		comps:  map[*aet.Composition]int{scene.RootComposition: RootIndex},
	}

	for i, v := range scene.Videos {
		idx.videos[v] = i
		vf := VideoFile{Size: SizeFile{Width: v.Size.Width, Height: v.Size.Height}, Color: v.Color}
		for _, s := range v.Sources {
			vf.Sources = append(vf.Sources, SourceFile{Name: s.Name, ID: s.ID})
		}
		sf.Videos = append(sf.Videos, vf)
	}
	for i, a := range scene.Audios {
		idx.audios[a] = i
		sf.Audios = append(sf.Audios, AudioFile{SoundID: a.SoundID})
	}
	for i, c := range scene.Compositions {
		idx.comps[c] = i
	}

	if scene.RootComposition == nil {
		return sf, fmt.Errorf("missing root composition")
	}
	root, err := idx.composition(scene.RootComposition)
	if err != nil {
		return sf, err
	}
	sf.Root = root

	for _, c := range scene.Compositions {
		cf, err := idx.composition(c)
		if err != nil {
			return sf, err
		}
		sf.Compositions = append(sf.Compositions, cf)
	}
	return sf, nil
}

func (idx *sceneIndex) composition(c *aet.Composition) (CompositionFile, error) {
	cf := CompositionFile{Name: c.Name}
	for i, l := range c.Layers {
		lf, err := idx.layer(l)
		if err != nil {
			return cf, fmt.Errorf("composition %q layer %d: %w", c.Name, i, err)
		}
		cf.Layers = append(cf.Layers, lf)
	}
	return cf, nil
}

func (idx *sceneIndex) layer(l *aet.Layer) (LayerFile, error) {
	timeScale := l.TimeScale
	lf := LayerFile{
		Name:        l.Name,
		StartFrame:  l.StartFrame,
		EndFrame:    l.EndFrame,
		StartOffset: l.StartOffset,
		TimeScale:   &timeScale,
		Flags:       uint16(l.Flags),
		Quality:     uint8(l.Quality),
	}

	ref, err := idx.item(l)
	if err != nil {
		return lf, err
	}
	lf.Item = ref

	if l.Parent.Valid {
		p := l.Parent.Index
		lf.Parent = &p
	}

	if l.LayerVideo != nil {
		lv := &LayerVideoFile{TransferMode: TransferModeFile{
			BlendMode:  uint8(l.LayerVideo.TransferMode.BlendMode),
			Flags:      uint8(l.LayerVideo.TransferMode.Flags),
			TrackMatte: uint8(l.LayerVideo.TransferMode.TrackMatte),
		}}
		for _, p := range aet.PropertyTypes() {
			keys := l.LayerVideo.Transform.Property(p).Keys
			if len(keys) == 0 {
				continue
			}
			rows := make([][]float64, 0, len(keys))
			for _, k := range keys {
				if k.Curve == 0 {
					rows = append(rows, []float64{k.Frame, k.Value})
				} else {
					rows = append(rows, []float64{k.Frame, k.Value, k.Curve})
				}
			}
			lv.Transform.set(p, rows)
		}
		lf.Video = lv
	}
	if l.LayerAudio != nil {
		lf.Audio = &struct{}{}
	}
	return lf, nil
}

func (idx *sceneIndex) item(l *aet.Layer) (*ItemRef, error) {
	switch l.ItemType {
	case aet.ItemTypeVideo:
		i, ok := idx.videos[l.Video]
		if !ok {
			return nil, fmt.Errorf("%w: video outside the scene", ErrInvalidReference)
		}
		return &ItemRef{Type: ItemVideo, Index: i}, nil
	case aet.ItemTypeAudio:
		i, ok := idx.audios[l.Audio]
		if !ok {
			return nil, fmt.Errorf("%w: audio outside the scene", ErrInvalidReference)
		}
		return &ItemRef{Type: ItemAudio, Index: i}, nil
	case aet.ItemTypeComposition:
		i, ok := idx.comps[l.Composition]
		if !ok {
			return nil, fmt.Errorf("%w: composition outside the scene", ErrInvalidReference)
		}
		return &ItemRef{Type: ItemComposition, Index: i}, nil
	default:
		return nil, nil
	}
}
