package footage

import (
	"fmt"

	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/internal/timeconv"
	"github.com/gfox0104/AetPlugin/pkg/aet"
	"golang.org/x/text/cases"
)

// Resolution tells which kind of footage a video or audio became.
type Resolution int

const (
	ResolutionSolid Resolution = iota
	ResolutionAsset
	ResolutionPlaceholder
)

func (r Resolution) String() string {
	switch r {
	case ResolutionSolid:
		return "solid"
	case ResolutionAsset:
		return "asset"
	case ResolutionPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// placeholderDuration is the length given to footage whose media is missing.
var placeholderDuration = timeconv.RationalTime{Value: 1, Scale: 1}

// Resolver turns scene footage into host footage items.
type Resolver struct {
	Assets []Asset
}

// NewResolver returns a resolver over the given assets.
func NewResolver(assets []Asset) *Resolver {
	return &Resolver{Assets: assets}
}

// Match finds the first asset whose key equals name, ignoring case.
func (r *Resolver) Match(name string) (Asset, bool) {
	if name == "" {
		return Asset{}, false
	}
	fold := cases.Fold()
	want := fold.String(name)
	for _, a := range r.Assets {
		if fold.String(a.Key) == want {
			return a, true
		}
	}
	return Asset{}, false
}

// SolidName is the item name of a solid color video.
func SolidName(size aet.Size) string {
	return fmt.Sprintf("Placeholder (%dx%d)", size.Width, size.Height)
}

// SolidColor converts an RGBA8 video color into an opaque host color.
// The source alpha byte is ignored so a solid is never invisible.
func SolidColor(v *aet.Video) host.Color {
	r, g, b, _ := v.RGBA()
	return host.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}
}

// ResolveVideo creates the footage item for a video inside folder.
func (r *Resolver) ResolveVideo(h host.Host, folder host.ItemHandle, v *aet.Video) (host.ItemHandle, Resolution, error) {
	if len(v.Sources) == 0 {
		item, err := h.NewSolidFootage(folder, host.SolidSpec{
			Name:   SolidName(v.Size),
			Width:  v.Size.Width,
			Height: v.Size.Height,
			Color:  SolidColor(v),
		})
		if err != nil {
			return host.ItemHandle{}, ResolutionSolid, fmt.Errorf("failed to create solid: %w", err)
		}
		return item, ResolutionSolid, nil
	}

	name := v.FrontSourceName()
	if asset, ok := r.Match(name); ok {
		item, err := h.NewFileFootage(folder, asset.Path)
		if err != nil {
			return host.ItemHandle{}, ResolutionAsset, fmt.Errorf("failed to import %s: %w", asset.Path, err)
		}
		return item, ResolutionAsset, nil
	}

	item, err := h.NewPlaceholderFootage(folder, host.PlaceholderSpec{
		Name:     name,
		Width:    v.Size.Width,
		Height:   v.Size.Height,
		Duration: placeholderDuration,
	})
	if err != nil {
		return host.ItemHandle{}, ResolutionPlaceholder, fmt.Errorf("failed to create placeholder %q: %w", name, err)
	}
	return item, ResolutionPlaceholder, nil
}

// ResolveAudio creates a stand-in footage item for a sound.
func (r *Resolver) ResolveAudio(h host.Host, folder host.ItemHandle, a *aet.Audio) (host.ItemHandle, Resolution, error) {
	name := fmt.Sprintf("Sound %d", a.SoundID)
	item, err := h.NewPlaceholderFootage(folder, host.PlaceholderSpec{
		Name:     name,
		Width:    1,
		Height:   1,
		Duration: placeholderDuration,
	})
	if err != nil {
		return host.ItemHandle{}, ResolutionPlaceholder, fmt.Errorf("failed to create %q: %w", name, err)
	}
	return item, ResolutionPlaceholder, nil
}
