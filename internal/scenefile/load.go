package scenefile

import (
	"errors"
	"fmt"
	"io"

	"github.com/gfox0104/AetPlugin/pkg/aet"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrInvalidReference is returned when an item or parent reference points nowhere.
var ErrInvalidReference = errors.New("invalid reference")

// Load reads and resolves a scene file.
func Load(fs afero.Fs, path string) (*aet.Set, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer f.Close()

	set, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Decode reads a YAML or JSON document and resolves it into a scene graph.
func Decode(r io.Reader) (*aet.Set, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty scene file")
		}
		return nil, fmt.Errorf("failed to decode scene file: %w", err)
	}
	return file.Resolve()
}

// Write encodes set as YAML into path.
func Write(fs afero.Fs, path string, set *aet.Set) error {
	file, err := FromSet(set)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode scene file: %w", err)
	}
	return afero.WriteFile(fs, path, data, 0644)
}

// Resolve turns the document into a scene graph with every reference bound.
func (f *File) Resolve() (*aet.Set, error) {
	set := &aet.Set{Name: f.Name, Scenes: make([]*aet.Scene, 0, len(f.Scenes))}
	for i := range f.Scenes {
		scene, err := f.Scenes[i].resolve()
		if err != nil {
			return nil, fmt.Errorf("scene %d (%s): %w", i, f.Scenes[i].Name, err)
		}
		set.Scenes = append(set.Scenes, scene)
	}
	return set, nil
}

func (sf *SceneFile) resolve() (*aet.Scene, error) {
	scene := &aet.Scene{
		Name:       sf.Name,
		FrameRate:  sf.FrameRate,
		Resolution: aet.Size{Width: sf.Resolution.Width, Height: sf.Resolution.Height},
		StartFrame: sf.StartFrame,
		EndFrame:   sf.EndFrame,
	}

	for _, v := range sf.Videos {
		video := &aet.Video{
			Size:  aet.Size{Width: v.Size.Width, Height: v.Size.Height},
			Color: v.Color,
		}
		for _, s := range v.Sources {
			video.Sources = append(video.Sources, aet.Source{Name: s.Name, ID: s.ID})
		}
		scene.Videos = append(scene.Videos, video)
	}
	for _, a := range sf.Audios {
		scene.Audios = append(scene.Audios, &aet.Audio{SoundID: a.SoundID})
	}

	// shells first so layers can point at any composition
	scene.RootComposition = &aet.Composition{Name: sf.Root.Name}
	for _, c := range sf.Compositions {
		scene.Compositions = append(scene.Compositions, &aet.Composition{Name: c.Name})
	}

	if err := resolveLayers(scene, scene.RootComposition, sf.Root.Layers); err != nil {
		return nil, err
	}
	for i, c := range sf.Compositions {
		if err := resolveLayers(scene, scene.Compositions[i], c.Layers); err != nil {
			return nil, err
		}
	}
	return scene, nil
}

func resolveLayers(scene *aet.Scene, comp *aet.Composition, layers []LayerFile) error {
	comp.Layers = make([]*aet.Layer, 0, len(layers))
	for i := range layers {
		layer, err := resolveLayer(scene, &layers[i], len(layers))
		if err != nil {
			return fmt.Errorf("composition %q layer %d: %w", comp.Name, i, err)
		}
		comp.Layers = append(comp.Layers, layer)
	}
	return nil
}

func resolveLayer(scene *aet.Scene, lf *LayerFile, siblings int) (*aet.Layer, error) {
	layer := &aet.Layer{
		Name:        lf.Name,
		StartFrame:  lf.StartFrame,
		EndFrame:    lf.EndFrame,
		StartOffset: lf.StartOffset,
		TimeScale:   1,
		Flags:       aet.LayerFlags(lf.Flags),
		Quality:     aet.LayerQuality(lf.Quality),
	}
	if lf.TimeScale != nil {
		layer.TimeScale = *lf.TimeScale
	}

	if lf.Item != nil {
		if err := bindItem(scene, layer, lf.Item); err != nil {
			return nil, err
		}
	}

	if lf.Parent != nil {
		p := *lf.Parent
		if p < 0 || p >= siblings {
			return nil, fmt.Errorf("%w: parent %d out of range [0,%d)", ErrInvalidReference, p, siblings)
		}
		layer.Parent = aet.LayerAt(p)
	}

	if lf.Video != nil {
		lv := &aet.LayerVideo{
			TransferMode: aet.TransferMode{
				BlendMode:  aet.BlendMode(lf.Video.TransferMode.BlendMode),
				Flags:      aet.TransferFlags(lf.Video.TransferMode.Flags),
				TrackMatte: aet.TrackMatte(lf.Video.TransferMode.TrackMatte),
			},
		}
		tracks := lf.Video.Transform.tracks()
		for _, p := range aet.PropertyTypes() {
			keys, err := decodeKeys(tracks[p])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
			lv.Transform.SetKeys(p, keys...)
		}
		layer.LayerVideo = lv
	}
	if lf.Audio != nil {
		layer.LayerAudio = &aet.LayerAudio{}
	}
	return layer, nil
}

func bindItem(scene *aet.Scene, layer *aet.Layer, ref *ItemRef) error {
	outOfRange := func(n int) error {
		return fmt.Errorf("%w: %s %d out of range [0,%d)", ErrInvalidReference, ref.Type, ref.Index, n)
	}

	switch ref.Type {
	case ItemVideo:
		if ref.Index < 0 || ref.Index >= len(scene.Videos) {
			return outOfRange(len(scene.Videos))
		}
		layer.ItemType = aet.ItemTypeVideo
		layer.Video = scene.Videos[ref.Index]
	case ItemAudio:
		if ref.Index < 0 || ref.Index >= len(scene.Audios) {
			return outOfRange(len(scene.Audios))
		}
		layer.ItemType = aet.ItemTypeAudio
		layer.Audio = scene.Audios[ref.Index]
	case ItemComposition:
		layer.ItemType = aet.ItemTypeComposition
		if ref.Index == RootIndex {
			layer.Composition = scene.RootComposition
			return nil
		}
		if ref.Index < 0 || ref.Index >= len(scene.Compositions) {
			return outOfRange(len(scene.Compositions))
		}
		layer.Composition = scene.Compositions[ref.Index]
	default:
		return fmt.Errorf("%w: unknown item type %q", ErrInvalidReference, ref.Type)
	}
	return nil
}

func decodeKeys(rows [][]float64) ([]aet.KeyFrame, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	keys := make([]aet.KeyFrame, 0, len(rows))
	for i, row := range rows {
		switch len(row) {
		case 2:
			keys = append(keys, aet.KeyFrame{Frame: row[0], Value: row[1]})
		case 3:
			keys = append(keys, aet.KeyFrame{Frame: row[0], Value: row[1], Curve: row[2]})
		default:
			return nil, fmt.Errorf("key %d has %d fields, want 2 or 3", i, len(row))
		}
	}
	return keys, nil
}

// tracks returns the rows of each track by property.
func (t *TransformFile) tracks() map[aet.PropertyType][][]float64 {
	return map[aet.PropertyType][][]float64{
		aet.OriginX:   t.OriginX,
		aet.OriginY:   t.OriginY,
		aet.PositionX: t.PositionX,
		aet.PositionY: t.PositionY,
		aet.Rotation:  t.Rotation,
		aet.ScaleX:    t.ScaleX,
		aet.ScaleY:    t.ScaleY,
		aet.Opacity:   t.Opacity,
	}
}

func (t *TransformFile) set(p aet.PropertyType, rows [][]float64) {
	switch p {
	case aet.OriginX:
		t.OriginX = rows
	case aet.OriginY:
		t.OriginY = rows
	case aet.PositionX:
		t.PositionX = rows
	case aet.PositionY:
		t.PositionY = rows
	case aet.Rotation:
		t.Rotation = rows
	case aet.ScaleX:
		t.ScaleX = rows
	case aet.ScaleY:
		t.ScaleY = rows
	case aet.Opacity:
		t.Opacity = rows
	}
}
