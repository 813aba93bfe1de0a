package convert

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/internal/model"
	"github.com/gfox0104/AetPlugin/internal/timeconv"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var streams = []host.Stream{
	host.StreamAnchorPoint,
	host.StreamPosition,
	host.StreamRotation,
	host.StreamScale,
	host.StreamOpacity,
	host.StreamTimeRemap,
}

func timeFromGorm(t model.Time) timeconv.RationalTime {
	return timeconv.RationalTime{Value: t.Value, Scale: t.Scale}
}

func ratioFromGorm(r model.Ratio) timeconv.Ratio {
	return timeconv.Ratio{Num: r.Num, Den: r.Den}
}

// parseID parses a stored ID; an empty string is the nil UUID.
func parseID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

func streamFromName(name string) (host.Stream, error) {
	for _, s := range streams {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stream %q", name)
}

func flagsFromJSON(data datatypes.JSON) (host.LayerFlag, error) {
	if len(data) == 0 {
		return 0, nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return 0, err
	}
	var flags host.LayerFlag
	for _, f := range host.AllLayerFlags() {
		if slices.Contains(names, f.String()) {
			flags |= f
		}
	}
	return flags, nil
}

// idParser collects the first parse failure so conversions stay linear.
type idParser struct {
	err error
}

func (p *idParser) parse(what, s string) uuid.UUID {
	id, err := parseID(s)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s %q: %w", what, s, err)
	}
	return id
}

// GormToProject converts stored rows back to a project snapshot. Children
// are ordered by their Position and keyframes by Ordinal.
func GormToProject(row model.Project) (host.Project, error) {
	var ids idParser
	p := host.Project{
		Info: host.ProjectInfo{
			Name:       row.Name,
			SourcePath: row.SourcePath,
			StartTime:  row.StartTime,
		},
		Root: ids.parse("root", row.RootID),
	}

	folders := slices.Clone(row.Folders)
	slices.SortStableFunc(folders, func(a, b model.Folder) int { return a.Position - b.Position })
	for _, f := range folders {
		p.Folders = append(p.Folders, host.Folder{
			ID:     ids.parse("folder", f.ID),
			Name:   f.Name,
			Parent: ids.parse("folder parent", f.ParentID),
		})
	}

	items := slices.Clone(row.Footage)
	slices.SortStableFunc(items, func(a, b model.Footage) int { return a.Position - b.Position })
	for _, f := range items {
		fp := host.Footage{
			ID:       ids.parse("footage", f.ID),
			Folder:   ids.parse("footage folder", f.FolderID),
			Kind:     host.FootageKind(f.Kind),
			Name:     f.Name,
			Path:     f.Path,
			Width:    f.Width,
			Height:   f.Height,
			Duration: timeFromGorm(f.Duration),
		}
		if len(f.Color) > 0 {
			var c host.Color
			if err := json.Unmarshal(f.Color, &c); err != nil {
				return p, fmt.Errorf("footage %q color: %w", f.Name, err)
			}
			fp.Color = &c
		}
		p.Footage = append(p.Footage, fp)
	}

	comps := slices.Clone(row.Comps)
	slices.SortStableFunc(comps, func(a, b model.Comp) int { return a.Position - b.Position })
	for _, c := range comps {
		cp := host.Comp{
			ID:     ids.parse("comp", c.ID),
			ItemID: ids.parse("comp item", c.ItemID),
			Folder: ids.parse("comp folder", c.FolderID),
			Spec: host.CompSpec{
				Name:        c.Name,
				Width:       c.Width,
				Height:      c.Height,
				PixelAspect: ratioFromGorm(c.PixelAspect),
				Duration:    timeFromGorm(c.Duration),
				FrameRate:   ratioFromGorm(c.FrameRate),
			},
		}

		layers := slices.Clone(c.Layers)
		slices.SortStableFunc(layers, func(a, b model.Layer) int { return a.Position - b.Position })
		for _, l := range layers {
			lp, err := layerFromGorm(l, &ids)
			if err != nil {
				return p, fmt.Errorf("comp %q layer %q: %w", c.Name, l.Name, err)
			}
			cp.Layers = append(cp.Layers, lp)
		}
		p.Comps = append(p.Comps, cp)
	}

	return p, ids.err
}

func layerFromGorm(l model.Layer, ids *idParser) (host.Layer, error) {
	flags, err := flagsFromJSON(l.Flags)
	if err != nil {
		return host.Layer{}, fmt.Errorf("flags: %w", err)
	}

	var mode host.TransferMode
	if len(l.TransferMode) > 0 {
		if err := json.Unmarshal(l.TransferMode, &mode); err != nil {
			return host.Layer{}, fmt.Errorf("transfer mode: %w", err)
		}
	}

	lp := host.Layer{
		ID:           ids.parse("layer", l.ID),
		Source:       ids.parse("layer source", l.SourceID),
		Parent:       ids.parse("layer parent", l.ParentID),
		Name:         l.Name,
		Flags:        flags,
		Quality:      host.Quality(l.Quality),
		TransferMode: mode,
		Offset:       timeFromGorm(l.Offset),
		InPoint:      timeFromGorm(l.InPoint),
		Duration:     timeFromGorm(l.Duration),
		Stretch:      ratioFromGorm(l.Stretch),
	}

	rows := slices.Clone(l.Streams)
	slices.SortStableFunc(rows, func(a, b model.Stream) int { return a.Position - b.Position })
	for _, s := range rows {
		stream, err := streamFromName(s.Property)
		if err != nil {
			return lp, err
		}
		sd := host.StreamData{
			ID:     ids.parse("stream", s.ID),
			Stream: stream,
			Value:  host.StreamValue{X: s.ValueX, Y: s.ValueY},
		}

		keys := slices.Clone(s.Keyframes)
		slices.SortStableFunc(keys, func(a, b model.Keyframe) int { return a.Ordinal - b.Ordinal })
		for _, k := range keys {
			sd.Keyframes = append(sd.Keyframes, host.Keyframe{
				Time:  timeFromGorm(k.Time),
				Value: host.StreamValue{X: k.ValueX, Y: k.ValueY},
				Curve: k.Curve,
			})
		}
		lp.Streams = append(lp.Streams, sd)
	}
	return lp, nil
}
