// Package convert converts authored project snapshots to GORM rows and back.
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/internal/model"
	"github.com/gfox0104/AetPlugin/internal/timeconv"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func timeToGorm(t timeconv.RationalTime) model.Time {
	return model.Time{Value: t.Value, Scale: t.Scale}
}

func ratioToGorm(r timeconv.Ratio) model.Ratio {
	return model.Ratio{Num: r.Num, Den: r.Den}
}

// idString renders a handle ID, leaving unset IDs empty.
func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

// flagsToJSON lists the names of the flags that are on.
func flagsToJSON(flags host.LayerFlag) datatypes.JSON {
	names := []string{}
	for _, f := range host.AllLayerFlags() {
		if flags&f != 0 {
			names = append(names, f.String())
		}
	}
	data, _ := json.Marshal(names)
	return datatypes.JSON(data)
}

// ProjectToGorm converts a project snapshot to its rows.
func ProjectToGorm(p host.Project) (model.Project, error) {
	row := model.Project{
		Name:       p.Info.Name,
		SourcePath: p.Info.SourcePath,
		StartTime:  p.Info.StartTime,
		RootID:     idString(p.Root),
	}

	for i, f := range p.Folders {
		row.Folders = append(row.Folders, model.Folder{
			ID:       f.ID.String(),
			Position: i,
			Name:     f.Name,
			ParentID: idString(f.Parent),
		})
	}

	for i, f := range p.Footage {
		fr := model.Footage{
			ID:       f.ID.String(),
			Position: i,
			FolderID: idString(f.Folder),
			Kind:     string(f.Kind),
			Name:     f.Name,
			Path:     f.Path,
			Width:    f.Width,
			Height:   f.Height,
			Duration: timeToGorm(f.Duration),
		}
		if f.Color != nil {
			data, err := json.Marshal(f.Color)
			if err != nil {
				return row, fmt.Errorf("footage %q color: %w", f.Name, err)
			}
			fr.Color = datatypes.JSON(data)
			fr.ColorHex = f.Color.Hex()
		}
		row.Footage = append(row.Footage, fr)
	}

	for i, c := range p.Comps {
		cr := model.Comp{
			ID:          c.ID.String(),
			Position:    i,
			ItemID:      c.ItemID.String(),
			FolderID:    idString(c.Folder),
			Name:        c.Spec.Name,
			Width:       c.Spec.Width,
			Height:      c.Spec.Height,
			PixelAspect: ratioToGorm(c.Spec.PixelAspect),
			Duration:    timeToGorm(c.Spec.Duration),
			FrameRate:   ratioToGorm(c.Spec.FrameRate),
		}
		for j, l := range c.Layers {
			lr, err := layerToGorm(l)
			if err != nil {
				return row, fmt.Errorf("comp %q layer %q: %w", c.Spec.Name, l.Name, err)
			}
			lr.CompID = cr.ID
			lr.Position = j
			cr.Layers = append(cr.Layers, lr)
		}
		row.Comps = append(row.Comps, cr)
	}
	return row, nil
}

func layerToGorm(l host.Layer) (model.Layer, error) {
	mode, err := json.Marshal(l.TransferMode)
	if err != nil {
		return model.Layer{}, err
	}

	lr := model.Layer{
		ID:           l.ID.String(),
		SourceID:     l.Source.String(),
		ParentID:     idString(l.Parent),
		Name:         l.Name,
		Flags:        flagsToJSON(l.Flags),
		Quality:      int(l.Quality),
		TransferMode: datatypes.JSON(mode),
		Offset:       timeToGorm(l.Offset),
		InPoint:      timeToGorm(l.InPoint),
		Duration:     timeToGorm(l.Duration),
		Stretch:      ratioToGorm(l.Stretch),
	}

	for i, s := range l.Streams {
		sr := model.Stream{
			ID:       s.ID.String(),
			LayerID:  lr.ID,
			Position: i,
			Property: s.Stream.String(),
			ValueX:   s.Value.X,
			ValueY:   s.Value.Y,
		}
		for k, kf := range s.Keyframes {
			sr.Keyframes = append(sr.Keyframes, model.Keyframe{
				StreamID: sr.ID,
				Ordinal:  k,
				Time:     timeToGorm(kf.Time),
				ValueX:   kf.Value.X,
				ValueY:   kf.Value.Y,
				Curve:    kf.Curve,
			})
		}
		lr.Streams = append(lr.Streams, sr)
	}
	return lr, nil
}
