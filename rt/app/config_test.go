package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gekko3d/hellocube/rt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hellocube.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Render.PoolSize)
	assert.Equal(t, float32(85), cfg.Camera.FovDeg)
	assert.Equal(t, float32(4), cfg.Camera.Distance)
	assert.Equal(t, core.DefaultLight(), cfg.Light)
	assert.InDelta(t, 104.0/255.0, cfg.Render.ClearColor[1], 1e-9)
	assert.Equal(t, 6.0, cfg.Render.AnimatePeriod)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Overlay(t *testing.T) {
	path := writeConfig(t, `
window:
  title: Spinning
render:
  pool_size: 2
  acquire_timeout: 250ms
  texture: cube.png
light:
  shininess: 32
debug: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Spinning", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width, "missing keys keep defaults")
	assert.Equal(t, 2, cfg.Render.PoolSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Render.AcquireTimeout)
	assert.Equal(t, "cube.png", cfg.Render.Texture)
	assert.Equal(t, float32(32), cfg.Light.Shininess)
	assert.Equal(t, float32(0.8), cfg.Light.DiffuseIntensity)
	assert.True(t, cfg.Debug)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "render: [1, 2"))
	assert.Error(t, err)

	cases := map[string]string{
		"pool":    "render:\n  pool_size: 0\n",
		"fov":     "camera:\n  fov_deg: 180\n",
		"clip":    "camera:\n  near: 10\n  far: 1\n",
		"window":  "window:\n  width: -1\n",
		"timeout": "render:\n  acquire_timeout: -1s\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
