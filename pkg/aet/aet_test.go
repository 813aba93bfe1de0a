package aet

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramesEqual(t *testing.T) {
	assert.True(t, FramesEqual(15, 15))
	assert.True(t, FramesEqual(0.1+0.2, 0.3))
	assert.False(t, FramesEqual(15, 15.01))
}

func TestValueAt(t *testing.T) {
	linear := Property1D{Keys: []KeyFrame{
		{Frame: 0, Value: 0, Curve: 100.0 / 30.0},
		{Frame: 30, Value: 100, Curve: 100.0 / 30.0},
	}}

	tests := []struct {
		name  string
		prop  Property1D
		frame float64
		want  float64
	}{
		{"empty", Property1D{}, 10, 0},
		{"single", Property1D{Keys: []KeyFrame{{Frame: 15, Value: 50}}}, 0, 50},
		{"before first", linear, -5, 0},
		{"after last", linear, 45, 100},
		{"on first", linear, 0, 0},
		{"midpoint with matching tangents is linear", linear, 15, 50},
		{"quarter", linear, 7.5, 25},
		{"flat tangents ease", Property1D{Keys: []KeyFrame{{Frame: 0, Value: 0}, {Frame: 10, Value: 10}}}, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.prop.ValueAt(tt.frame), 1e-9)
		})
	}
}

func TestValueAt_FlatTangentsAreNotLinear(t *testing.T) {
	p := Property1D{Keys: []KeyFrame{{Frame: 0, Value: 0}, {Frame: 10, Value: 10}}}
	// smoothstep at t=0.25: 3t^2-2t^3 = 0.15625
	assert.InDelta(t, 1.5625, p.ValueAt(2.5), 1e-9)
}

func TestKeyAt(t *testing.T) {
	p := Property1D{Keys: []KeyFrame{{Frame: 0, Value: 1}, {Frame: 10.0004, Value: 2}}}

	k, ok := p.KeyAt(10)
	require.True(t, ok)
	assert.Equal(t, 2.0, k.Value)

	_, ok = p.KeyAt(5)
	assert.False(t, ok)
}

func TestPropertyHelpers(t *testing.T) {
	var p Property1D
	assert.Equal(t, 0.0, p.Initial())
	assert.False(t, p.IsAnimated())

	p.Keys = []KeyFrame{{Frame: 0, Value: 3}, {Frame: 1, Value: 4}}
	assert.Equal(t, 3.0, p.Initial())
	assert.True(t, p.IsAnimated())
	assert.Equal(t, 2, p.Len())
}

func TestTransformPropertyIdentity(t *testing.T) {
	var tr Transform
	tr.SetKeys(Rotation, KeyFrame{Frame: 0, Value: 90})

	assert.Same(t, tr.Property(Rotation), tr.Property(Rotation))
	assert.NotSame(t, tr.Property(PositionX), tr.Property(PositionY))
	assert.Equal(t, 90.0, tr.Property(Rotation).Initial())
	assert.Equal(t, "positionY", PositionY.String())
	assert.Len(t, PropertyTypes(), 8)
}

func TestCompositionDuration(t *testing.T) {
	assert.Equal(t, 1.0, (&Composition{}).Duration())

	comp := &Composition{Layers: []*Layer{{EndFrame: 40}, {EndFrame: 120.5}, {EndFrame: 0.5}}}
	assert.Equal(t, 120.5, comp.Duration())
}

func TestVideoRGBA(t *testing.T) {
	v := &Video{Color: 0x80FF4020}
	r, g, b, a := v.RGBA()
	assert.Equal(t, uint8(0x20), r)
	assert.Equal(t, uint8(0x40), g)
	assert.Equal(t, uint8(0xFF), b)
	assert.Equal(t, uint8(0x80), a)
}

func TestParentLayer(t *testing.T) {
	a, b := &Layer{Name: "a"}, &Layer{Name: "b", Parent: LayerAt(0)}
	comp := &Composition{Layers: []*Layer{a, b}}

	parent, err := b.ParentLayer(comp)
	require.NoError(t, err)
	assert.Same(t, a, parent)

	parent, err = a.ParentLayer(comp)
	require.NoError(t, err)
	assert.Nil(t, parent)

	_, err = (&Layer{Parent: LayerAt(5)}).ParentLayer(comp)
	assert.Error(t, err)
}

func validScene() *Scene {
	nested := &Composition{Name: "nested", Layers: []*Layer{{Name: "n0", EndFrame: 10, TimeScale: 1}}}
	root := &Composition{Name: "root", Layers: []*Layer{
		{Name: "child", EndFrame: 10, TimeScale: 1, Parent: LayerAt(1), LayerVideo: &LayerVideo{}},
		{Name: "parent", EndFrame: 10, TimeScale: 1, ItemType: ItemTypeComposition, Composition: nested},
	}}
	return &Scene{FrameRate: 60, RootComposition: root, Compositions: []*Composition{nested}}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validScene().Validate())

	tests := []struct {
		name   string
		mutate func(s *Scene)
	}{
		{"zero frame rate", func(s *Scene) { s.FrameRate = 0 }},
		{"negative frame rate", func(s *Scene) { s.FrameRate = -30 }},
		{"nan frame rate", func(s *Scene) { s.FrameRate = math.NaN() }},
		{"missing root", func(s *Scene) { s.RootComposition = nil }},
		{"parent out of range", func(s *Scene) { s.RootComposition.Layers[0].Parent = LayerAt(7) }},
		{"self parent", func(s *Scene) { s.RootComposition.Layers[0].Parent = LayerAt(0) }},
		{"foreign composition", func(s *Scene) { s.RootComposition.Layers[1].Composition = &Composition{Name: "stray"} }},
		{"nan key", func(s *Scene) {
			s.RootComposition.Layers[0].LayerVideo.Transform.SetKeys(Opacity, KeyFrame{Frame: 0, Value: math.NaN()})
		}},
		{"non-increasing keys", func(s *Scene) {
			s.RootComposition.Layers[0].LayerVideo.Transform.SetKeys(PositionX, KeyFrame{Frame: 10}, KeyFrame{Frame: 10})
		}},
		{"infinite time scale", func(s *Scene) { s.RootComposition.Layers[0].TimeScale = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScene()
			tt.mutate(s)

			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedScene))

			var verr *ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	s := validScene()
	s.RootComposition.Layers[0].LayerVideo.Transform.SetKeys(ScaleY, KeyFrame{Frame: 5}, KeyFrame{Frame: 1})

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `composition "root" layer 0 scaleY`)
}
