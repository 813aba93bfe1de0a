package importer

import (
	"fmt"

	"github.com/gfox0104/AetPlugin/internal/footage"
	"github.com/gfox0104/AetPlugin/internal/timeconv"
	"github.com/gfox0104/AetPlugin/pkg/aet"
)

// Session is the immutable context of one translation: the scene being
// translated, its time base and the assets footage may resolve to.
type Session struct {
	SetName    string
	Scene      *aet.Scene
	FrameRate  float64
	Time       timeconv.Converter
	Resolution aet.Size
	Assets     []footage.Asset
}

// NewSession prepares the translation of scene, which belongs to set.
func NewSession(set *aet.Set, scene *aet.Scene, assets []footage.Asset) (*Session, error) {
	conv, err := timeconv.New(scene.FrameRate)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", scene.Name, err)
	}
	return &Session{
		SetName:    set.Name,
		Scene:      scene,
		FrameRate:  scene.FrameRate,
		Time:       conv,
		Resolution: scene.Resolution,
		Assets:     assets,
	}, nil
}
