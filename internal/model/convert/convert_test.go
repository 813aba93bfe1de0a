package convert

import (
	"testing"
	"time"

	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/internal/model"
	"github.com/gfox0104/AetPlugin/internal/timeconv"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func sampleProject() host.Project {
	root, folder := uuid.New(), uuid.New()
	solid, comp, compItem := uuid.New(), uuid.New(), uuid.New()
	top, bottom, stream := uuid.New(), uuid.New(), uuid.New()

	return host.Project{
		Info: host.ProjectInfo{
			Name:       "gam_cmn_main",
			SourcePath: "/scenes/aet_gam_cmn.yaml",
			StartTime:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		Root:    root,
		Folders: []host.Folder{{ID: folder, Name: "AetSet", Parent: root}},
		Footage: []host.Footage{{
			ID:       solid,
			Folder:   folder,
			Kind:     host.FootageSolid,
			Name:     "Placeholder (8x8)",
			Width:    8,
			Height:   8,
			Color:    &host.Color{R: 1, A: 1},
			Duration: timeconv.RationalTime{Value: 1, Scale: 1},
		}},
		Comps: []host.Comp{{
			ID:     comp,
			ItemID: compItem,
			Folder: root,
			Spec: host.CompSpec{
				Name:        "gam_cmn_main",
				Width:       1280,
				Height:      720,
				PixelAspect: timeconv.OneToOne,
				Duration:    timeconv.RationalTime{Value: 2, Scale: 1},
				FrameRate:   timeconv.Ratio{Num: 60, Den: 1},
			},
			Layers: []host.Layer{
				{
					ID:           top,
					Source:       solid,
					Name:         "top",
					Flags:        host.LayerFlagVideoActive | host.LayerFlagShy,
					Quality:      host.QualityBest,
					TransferMode: host.TransferMode{Mode: host.BlendAdd, TrackMatte: host.TrackMatteAlpha},
					InPoint:      timeconv.RationalTime{Value: 0, Scale: 60},
					Duration:     timeconv.RationalTime{Value: 60, Scale: 60},
					Stretch:      timeconv.Ratio{Num: 1, Den: 1},
					Parent:       bottom,
					Streams: []host.StreamData{{
						ID:     stream,
						Stream: host.StreamPosition,
						Value:  host.StreamValue{X: 10, Y: 20},
						Keyframes: []host.Keyframe{
							{Time: timeconv.RationalTime{Value: 0, Scale: 60}, Value: host.StreamValue{X: 10, Y: 20}},
							{Time: timeconv.RationalTime{Value: 30, Scale: 60}, Value: host.StreamValue{X: 50, Y: 20}, Curve: 0.5},
						},
					}},
				},
				{ID: bottom, Source: solid, Name: "bottom", Stretch: timeconv.OneToOne},
			},
		}},
	}
}

func TestProjectToGorm(t *testing.T) {
	p := sampleProject()
	row, err := ProjectToGorm(p)
	require.NoError(t, err)

	assert.Equal(t, "gam_cmn_main", row.Name)
	assert.Equal(t, p.Root.String(), row.RootID)
	require.Len(t, row.Footage, 1)
	assert.JSONEq(t, `{"r":1,"g":0,"b":0,"a":1}`, string(row.Footage[0].Color))
	assert.Equal(t, "#ff0000", row.Footage[0].ColorHex)

	require.Len(t, row.Comps, 1)
	layers := row.Comps[0].Layers
	require.Len(t, layers, 2)
	assert.Equal(t, 0, layers[0].Position)
	assert.Equal(t, 1, layers[1].Position)
	assert.Equal(t, row.Comps[0].ID, layers[0].CompID)
	assert.JSONEq(t, `["videoActive","shy"]`, string(layers[0].Flags))
	assert.JSONEq(t, `[]`, string(layers[1].Flags))
	assert.Equal(t, "", layers[1].ParentID)

	require.Len(t, layers[0].Streams, 1)
	assert.Equal(t, "position", layers[0].Streams[0].Property)
	require.Len(t, layers[0].Streams[0].Keyframes, 2)
	assert.Equal(t, 1, layers[0].Streams[0].Keyframes[1].Ordinal)
	assert.Equal(t, model.Time{Value: 30, Scale: 60}, layers[0].Streams[0].Keyframes[1].Time)
}

func TestRoundTrip(t *testing.T) {
	p := sampleProject()
	row, err := ProjectToGorm(p)
	require.NoError(t, err)

	// storage does not preserve slice order
	row.Comps[0].Layers[0], row.Comps[0].Layers[1] = row.Comps[0].Layers[1], row.Comps[0].Layers[0]

	back, err := GormToProject(row)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestGormToProject_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  model.Project
	}{
		{"bad root id", model.Project{RootID: "not-a-uuid"}},
		{"bad flags", model.Project{Comps: []model.Comp{{
			ID:     uuid.NewString(),
			Layers: []model.Layer{{ID: uuid.NewString(), Flags: datatypes.JSON(`{}`)}},
		}}}},
		{"unknown stream", model.Project{Comps: []model.Comp{{
			ID: uuid.NewString(),
			Layers: []model.Layer{{
				ID:      uuid.NewString(),
				Streams: []model.Stream{{ID: uuid.NewString(), Property: "skew"}},
			}},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GormToProject(tt.row)
			assert.Error(t, err)
		})
	}
}

func TestFlagsJSON(t *testing.T) {
	for _, f := range host.AllLayerFlags() {
		got, err := flagsFromJSON(flagsToJSON(f))
		require.NoError(t, err)
		assert.Equal(t, f, got, f.String())
	}

	got, err := flagsFromJSON(nil)
	require.NoError(t, err)
	assert.Zero(t, got)
}
