package footage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/gfox0104/AetPlugin/internal/config"
	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/internal/host/memory"
	"github.com/gfox0104/AetPlugin/pkg/aet"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFs(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work/sub", 0755))
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join("/work", f), []byte("x"), 0644))
	}
	return fs
}

func TestList_FiltersByConvention(t *testing.T) {
	fs := memFs(t, "spr_gam_cmn_0.png", "SPR_Logo.PNG", "readme.txt", "spr_.png", "img_a.png", "spr_b.jpg")
	l := &Lister{Fs: fs}

	assets, err := l.List("/work")
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, Asset{Key: "Logo", Path: "/work/SPR_Logo.PNG"}, assets[0])
	assert.Equal(t, Asset{Key: "gam_cmn_0", Path: "/work/spr_gam_cmn_0.png"}, assets[1])
}

func TestList_CustomConvention(t *testing.T) {
	fs := memFs(t, "tex_a.dds", "spr_b.png")
	l := &Lister{Fs: fs, Prefix: "tex_", Extension: ".dds"}

	assets, err := l.List("/work")
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "a", assets[0].Key)
}

func TestList_EmptyAndMissing(t *testing.T) {
	l := &Lister{Fs: memFs(t)}

	assets, err := l.List("/work")
	require.NoError(t, err)
	assert.Empty(t, assets)

	_, err = l.List("/nope")
	assert.Error(t, err)
}

func TestMatch_CaseInsensitiveFirstWins(t *testing.T) {
	r := NewResolver([]Asset{
		{Key: "Logo", Path: "a"},
		{Key: "logo", Path: "b"},
	})

	a, ok := r.Match("LOGO")
	require.True(t, ok)
	assert.Equal(t, "a", a.Path)

	_, ok = r.Match("other")
	assert.False(t, ok)
	_, ok = r.Match("")
	assert.False(t, ok)
}

func newHost(t *testing.T) (*memory.Backend, host.ItemHandle) {
	t.Helper()
	b := memory.New(config.MemoryConfig{})
	root, err := b.ProjectRoot()
	require.NoError(t, err)
	return b, root
}

func TestResolveVideo_Solid(t *testing.T) {
	b, root := newHost(t)
	r := NewResolver(nil)

	v := &aet.Video{Size: aet.Size{Width: 64, Height: 32}, Color: 0x80FF0000}
	item, res, err := r.ResolveVideo(b, root, v)
	require.NoError(t, err)
	assert.Equal(t, ResolutionSolid, res)

	snap := b.Snapshot()
	f, ok := snap.FindFootage([16]byte(item))
	require.True(t, ok)
	assert.Equal(t, host.FootageSolid, f.Kind)
	assert.Equal(t, "Placeholder (64x32)", f.Name)
	require.NotNil(t, f.Color)
	assert.InDelta(t, 0.0, f.Color.R, 1e-9)
	assert.InDelta(t, 0.0, f.Color.G, 1e-9)
	assert.InDelta(t, 1.0, f.Color.B, 1e-9)
	assert.Equal(t, 1.0, f.Color.A, "solids are always opaque")
	assert.Equal(t, "#0000ff", f.Color.Hex())
}

func TestResolveVideo_Asset(t *testing.T) {
	b, root := newHost(t)
	r := NewResolver([]Asset{{Key: "logo", Path: "/work/spr_logo.png"}})

	v := &aet.Video{Size: aet.Size{Width: 8, Height: 8}, Sources: []aet.Source{{Name: "LOGO"}, {Name: "other"}}}
	item, res, err := r.ResolveVideo(b, root, v)
	require.NoError(t, err)
	assert.Equal(t, ResolutionAsset, res)

	snap := b.Snapshot()
	f, ok := snap.FindFootage([16]byte(item))
	require.True(t, ok)
	assert.Equal(t, host.FootageFile, f.Kind)
	assert.Equal(t, "/work/spr_logo.png", f.Path)
}

func TestResolveVideo_Placeholder(t *testing.T) {
	b, root := newHost(t)
	r := NewResolver(nil)

	v := &aet.Video{Size: aet.Size{Width: 100, Height: 50}, Sources: []aet.Source{{Name: "missing_sprite"}}}
	item, res, err := r.ResolveVideo(b, root, v)
	require.NoError(t, err)
	assert.Equal(t, ResolutionPlaceholder, res)

	snap := b.Snapshot()
	f, ok := snap.FindFootage([16]byte(item))
	require.True(t, ok)
	assert.Equal(t, host.FootagePlaceholder, f.Kind)
	assert.Equal(t, "missing_sprite", f.Name)
	assert.Equal(t, 100, f.Width)
	assert.InDelta(t, 1.0, f.Duration.Seconds(), 1e-12)
}

func TestResolveVideo_HostFailure(t *testing.T) {
	b, _ := newHost(t)
	r := NewResolver(nil)

	_, _, err := r.ResolveVideo(b, host.ItemHandle{7}, &aet.Video{Size: aet.Size{Width: 1, Height: 1}})
	assert.True(t, errors.Is(err, host.ErrUnknownHandle))
}

func TestResolveAudio(t *testing.T) {
	b, root := newHost(t)
	r := NewResolver(nil)

	item, res, err := r.ResolveAudio(b, root, &aet.Audio{SoundID: 12})
	require.NoError(t, err)
	assert.Equal(t, ResolutionPlaceholder, res)

	snap := b.Snapshot()
	f, ok := snap.FindFootage([16]byte(item))
	require.True(t, ok)
	assert.Equal(t, "Sound 12", f.Name)
}

func TestResolutionString(t *testing.T) {
	assert.Equal(t, "solid", ResolutionSolid.String())
	assert.Equal(t, "asset", ResolutionAsset.String())
	assert.Equal(t, "placeholder", ResolutionPlaceholder.String())
	assert.Equal(t, "unknown", Resolution(9).String())
}
