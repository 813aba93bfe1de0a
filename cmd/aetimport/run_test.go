package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gfox0104/AetPlugin/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scene = `
name: AET_GAM_CMN
scenes:
  - name: MAIN
    frameRate: 60
    resolution: {width: 320, height: 240}
    endFrame: 60
    videos:
      - size: {width: 16, height: 16}
        sources: [{name: gam_cmn_logo, id: 1}]
    root:
      layers:
        - name: logo
          endFrame: 60
          item: {type: video, index: 0}
          video:
            transform:
              positionX: [[0, 0], [30, 100]]
`

// workspace writes a scene, an asset and a config into fresh directories.
func workspace(t *testing.T) (configDir, scenePath, outDir string) {
	t.Helper()
	t.Cleanup(viper.Reset)

	root := t.TempDir()
	configDir = filepath.Join(root, "config")
	sceneDir := filepath.Join(root, "scenes")
	outDir = filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.MkdirAll(sceneDir, 0755))

	scenePath = filepath.Join(sceneDir, "aet_gam_cmn.yaml")
	require.NoError(t, os.WriteFile(scenePath, []byte(scene), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(sceneDir, "spr_gam_cmn_logo.png"), []byte{0x89}, 0644))

	cfg := map[string]any{
		"logsDir": filepath.Join(root, "logs"),
		"host":    map[string]any{"type": "memory", "memory": map[string]any{"outputDir": outDir}},
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(configDir, config.ConfigFileName), data, 0644))
	return configDir, scenePath, outDir
}

func TestRun_ImportsSceneFile(t *testing.T) {
	configDir, scenePath, outDir := workspace(t)

	code := run([]string{"--config", configDir, scenePath})
	require.Equal(t, exitOK, code)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".json"))

	data, err := os.ReadFile(filepath.Join(outDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "gam_cmn_main")
	assert.Contains(t, string(data), "spr_gam_cmn_logo.png")

	logs, err := filepath.Glob(filepath.Join(filepath.Dir(configDir), "logs", AppName+".*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestRun_OutFlagOverridesConfig(t *testing.T) {
	configDir, scenePath, _ := workspace(t)
	out := t.TempDir()

	code := run([]string{"--config", configDir, "--out", out, scenePath})
	require.Equal(t, exitOK, code)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRun_RejectsUnimportableFile(t *testing.T) {
	configDir, scenePath, outDir := workspace(t)
	bad := filepath.Join(filepath.Dir(scenePath), "spr_gam_cmn.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(scene), 0644))

	code := run([]string{"--config", configDir, bad})
	assert.Equal(t, exitFailed, code)

	_, err := os.Stat(outDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_FatalSceneError(t *testing.T) {
	configDir, scenePath, _ := workspace(t)
	broken := strings.Replace(scene, "frameRate: 60", "frameRate: 0", 1)
	require.NoError(t, afero.WriteFile(afero.NewOsFs(), scenePath, []byte(broken), 0644))

	assert.Equal(t, exitFailed, run([]string{"--config", configDir, scenePath}))
}

func TestRun_Usage(t *testing.T) {
	t.Cleanup(viper.Reset)
	assert.Equal(t, exitUsage, run(nil))
	assert.Equal(t, exitUsage, run([]string{"--no-such-flag"}))
	assert.Equal(t, exitOK, run([]string{"--version"}))
}

func TestRun_UnknownHost(t *testing.T) {
	configDir, scenePath, _ := workspace(t)
	assert.Equal(t, exitFailed, run([]string{"--config", configDir, "--host", "nope", scenePath}))
}
