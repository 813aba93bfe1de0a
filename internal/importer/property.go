package importer

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/pkg/aet"
)

// binding ties a host stream to the transform tracks feeding its axes.
// Scalar streams use the same track for both axes.
type binding struct {
	stream host.Stream
	x, y   aet.PropertyType
	factor float64
}

var bindings = [...]binding{
	{host.StreamAnchorPoint, aet.OriginX, aet.OriginY, 1},
	{host.StreamPosition, aet.PositionX, aet.PositionY, 1},
	{host.StreamRotation, aet.Rotation, aet.Rotation, 1},
	{host.StreamScale, aet.ScaleX, aet.ScaleY, 100},
	{host.StreamOpacity, aet.Opacity, aet.Opacity, 100},
}

// mergedKey is one entry of a combined two-axis keyframe sequence.
type mergedKey struct {
	Frame float64
	X, Y  float64
	Curve float64
}

// mergeTracks combines two tracks into one sequence holding a key at every
// frame either track has a key at. The axis without a key at that frame is
// sampled from its own curve. A key keeps the curve of the track it came
// from; when both tracks have a key at the same frame the X key's curve wins.
func mergeTracks(x, y *aet.Property1D) ([]mergedKey, error) {
	merged := make([]mergedKey, 0, x.Len()+y.Len())

	for _, xk := range x.Keys {
		yv, err := valueAt(y, xk.Frame, "y")
		if err != nil {
			return nil, err
		}
		merged = append(merged, mergedKey{Frame: xk.Frame, X: xk.Value, Y: yv, Curve: xk.Curve})
	}

	for _, yk := range y.Keys {
		if slices.ContainsFunc(merged, func(m mergedKey) bool { return aet.FramesEqual(m.Frame, yk.Frame) }) {
			continue
		}
		xv, err := valueAt(x, yk.Frame, "x")
		if err != nil {
			return nil, err
		}
		merged = append(merged, mergedKey{Frame: yk.Frame, X: xv, Y: yk.Value, Curve: yk.Curve})
	}

	slices.SortStableFunc(merged, func(a, b mergedKey) int {
		return cmp.Compare(a.Frame, b.Frame)
	})
	return merged, nil
}

// valueAt returns the key value at frame, or the track sampled there.
func valueAt(p *aet.Property1D, frame float64, axis string) (float64, error) {
	if k, ok := p.KeyAt(frame); ok {
		return k.Value, nil
	}
	if p.Len() == 0 {
		return 0, fmt.Errorf("%w: cannot sample empty %s track at frame %v", ErrMalformedKeyFrames, axis, frame)
	}
	return p.ValueAt(frame), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// translateProperties sets the base value and keyframes of every transform
// stream of a layer. It returns the number of keyframes emitted. Host
// rejections are logged and skipped; malformed keyframe data stops the layer.
func (r *run) translateProperties(log *slog.Logger, lh host.LayerHandle, t *aet.Transform) (int, error) {
	total := 0
	for _, b := range bindings {
		n, err := r.translateBinding(log, lh, t, b)
		total += n
		if err != nil {
			return total, fmt.Errorf("%s: %w", b.stream, err)
		}
	}
	return total, nil
}

func (r *run) translateBinding(log *slog.Logger, lh host.LayerHandle, t *aet.Transform, b binding) (int, error) {
	x, y := t.Property(b.x), t.Property(b.y)

	keys, err := keyframesFor(x, y, b.factor)
	if err != nil {
		return 0, err
	}

	stream, err := r.host.LayerStream(lh, b.stream)
	if err != nil {
		r.attributeFailed(log, b.stream.String(), err)
		return 0, nil
	}

	base := host.StreamValue{X: x.Initial() * b.factor}
	if x != y {
		base.Y = y.Initial() * b.factor
	}
	if err := r.host.SetStreamValue(stream, base); err != nil {
		r.attributeFailed(log, b.stream.String(), err)
	}

	emitted := 0
	for _, k := range keys {
		idx, err := r.host.InsertKeyframe(stream, r.sess.Time.FrameToTime(k.Frame))
		if err != nil {
			r.attributeFailed(log, b.stream.String()+" keyframe", err)
			continue
		}
		if err := r.host.SetKeyframeValue(stream, idx, host.StreamValue{X: k.X, Y: k.Y}, k.Curve); err != nil {
			r.attributeFailed(log, b.stream.String()+" keyframe", err)
			continue
		}
		emitted++
	}
	return emitted, nil
}

// keyframesFor computes the host keyframes of one stream, already scaled by
// factor. A stream whose tracks all hold fewer than two keys is constant and
// gets none. Values are checked before anything reaches the host.
func keyframesFor(x, y *aet.Property1D, factor float64) ([]mergedKey, error) {
	var keys []mergedKey

	if x == y {
		if !x.IsAnimated() {
			return nil, nil
		}
		keys = make([]mergedKey, 0, x.Len())
		for _, k := range x.Keys {
			keys = append(keys, mergedKey{Frame: k.Frame, X: k.Value * factor, Curve: k.Curve})
		}
	} else {
		if !x.IsAnimated() && !y.IsAnimated() {
			return nil, nil
		}
		merged, err := mergeTracks(x, y)
		if err != nil {
			return nil, err
		}
		if len(merged) <= 1 {
			return nil, nil
		}
		keys = merged
		for i := range keys {
			keys[i].X *= factor
			keys[i].Y *= factor
		}
	}

	for _, k := range keys {
		if !finite(k.Frame) || !finite(k.X) || !finite(k.Y) || !finite(k.Curve) {
			return nil, fmt.Errorf("%w: non-finite keyframe at frame %v", ErrMalformedKeyFrames, k.Frame)
		}
	}
	return keys, nil
}
