package aet

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedScene is wrapped by every validation failure.
var ErrMalformedScene = errors.New("malformed scene")

// ValidationError locates a malformed part of a scene.
type ValidationError struct {
	Composition string
	Layer       int
	Property    string
	Reason      string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Composition == "":
		return fmt.Sprintf("%s: %s", ErrMalformedScene, e.Reason)
	case e.Property != "":
		return fmt.Sprintf("%s: composition %q layer %d %s: %s", ErrMalformedScene, e.Composition, e.Layer, e.Property, e.Reason)
	case e.Layer >= 0:
		return fmt.Sprintf("%s: composition %q layer %d: %s", ErrMalformedScene, e.Composition, e.Layer, e.Reason)
	default:
		return fmt.Sprintf("%s: composition %q: %s", ErrMalformedScene, e.Composition, e.Reason)
	}
}

func (e *ValidationError) Unwrap() error {
	return ErrMalformedScene
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks the preconditions a translation relies on.
func (s *Scene) Validate() error {
	if !finite(s.FrameRate) || s.FrameRate <= 0 {
		return &ValidationError{Layer: -1, Reason: fmt.Sprintf("frame rate %v must be positive", s.FrameRate)}
	}
	if s.RootComposition == nil {
		return &ValidationError{Layer: -1, Reason: "missing root composition"}
	}

	for _, comp := range s.AllCompositions() {
		if comp == nil {
			return &ValidationError{Layer: -1, Reason: "nil composition"}
		}
		if err := s.validateComposition(comp); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) validateComposition(comp *Composition) error {
	fail := func(i int, format string, args ...any) error {
		return &ValidationError{Composition: comp.Name, Layer: i, Reason: fmt.Sprintf(format, args...)}
	}

	for i, layer := range comp.Layers {
		if layer == nil {
			return fail(i, "nil layer")
		}
		if !finite(layer.StartFrame) || !finite(layer.EndFrame) || !finite(layer.StartOffset) {
			return fail(i, "non-finite timing")
		}
		if !finite(layer.TimeScale) {
			return fail(i, "non-finite time scale")
		}
		if layer.Parent.Valid {
			if layer.Parent.Index < 0 || layer.Parent.Index >= len(comp.Layers) {
				return fail(i, "parent index %d out of range", layer.Parent.Index)
			}
			if layer.Parent.Index == i {
				return fail(i, "layer is its own parent")
			}
		}
		if layer.ItemType == ItemTypeComposition && layer.Composition != nil && !s.HasComposition(layer.Composition) {
			return fail(i, "references composition %q outside the scene", layer.Composition.Name)
		}

		if layer.LayerVideo == nil {
			continue
		}
		for _, p := range PropertyTypes() {
			if err := validateTrack(layer.LayerVideo.Transform.Property(p)); err != "" {
				return &ValidationError{Composition: comp.Name, Layer: i, Property: p.String(), Reason: err}
			}
		}
	}
	return nil
}

func validateTrack(p *Property1D) string {
	for i, k := range p.Keys {
		if !finite(k.Frame) || !finite(k.Value) || !finite(k.Curve) {
			return fmt.Sprintf("key %d is not finite", i)
		}
		if i > 0 && k.Frame <= p.Keys[i-1].Frame {
			return fmt.Sprintf("key %d frame %v does not increase", i, k.Frame)
		}
	}
	return ""
}
