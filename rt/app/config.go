package app

import (
	"os"
	"time"

	"github.com/gekko3d/hellocube/rt/core"
	"github.com/gekko3d/hellocube/rt/gpu"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type CameraConfig struct {
	FovDeg   float32 `yaml:"fov_deg"`
	Near     float32 `yaml:"near"`
	Far      float32 `yaml:"far"`
	Distance float32 `yaml:"distance"`
	TiltDeg  float32 `yaml:"tilt_deg"`
}

type RenderConfig struct {
	PoolSize int `yaml:"pool_size"`
	// How long a node waits for a uniform slot before its frame is dropped.
	// 0 waits without bound.
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
	ClearColor     [4]float64    `yaml:"clear_color"`
	Texture        string        `yaml:"texture"`
	MaxTextureSize int           `yaml:"max_texture_size"`
	// Seconds per oscillation of the cube, 0 keeps it still.
	AnimatePeriod float64 `yaml:"animate_period"`
}

type InputConfig struct {
	DragSensitivity float32 `yaml:"drag_sensitivity"`
	ScrollStep      float32 `yaml:"scroll_step"`
}

type Config struct {
	Window WindowConfig `yaml:"window"`
	Camera CameraConfig `yaml:"camera"`
	Render RenderConfig `yaml:"render"`
	Input  InputConfig  `yaml:"input"`
	Light  core.Light   `yaml:"light"`
	Debug  bool         `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Title:  "Hello Cube",
		},
		Camera: CameraConfig{
			FovDeg:   core.DefaultFovDeg,
			Near:     core.DefaultNear,
			Far:      core.DefaultFar,
			Distance: core.DefaultDistance,
			TiltDeg:  core.DefaultTiltDeg,
		},
		Render: RenderConfig{
			PoolSize:       gpu.DefaultRingSize,
			AcquireTimeout: 100 * time.Millisecond,
			ClearColor:     [4]float64{0, 104.0 / 255.0, 5.0 / 255.0, 1},
			MaxTextureSize: 1024,
			AnimatePeriod:  6,
		},
		Input: InputConfig{
			DragSensitivity: DefaultDragSensitivity,
			ScrollStep:      DefaultScrollStep,
		},
		Light: core.DefaultLight(),
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the
// file keep their default value. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return errors.Errorf("window size %dx%d", c.Window.Width, c.Window.Height)
	case c.Render.PoolSize < 1:
		return errors.Errorf("pool_size must be at least 1, got %d", c.Render.PoolSize)
	case c.Render.AcquireTimeout < 0:
		return errors.Errorf("negative acquire_timeout %s", c.Render.AcquireTimeout)
	case c.Camera.FovDeg <= 0 || c.Camera.FovDeg >= 180:
		return errors.Errorf("fov_deg %g out of range", c.Camera.FovDeg)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return errors.Errorf("clip planes near=%g far=%g", c.Camera.Near, c.Camera.Far)
	case c.Render.AnimatePeriod < 0:
		return errors.Errorf("negative animate_period %g", c.Render.AnimatePeriod)
	}
	return nil
}
