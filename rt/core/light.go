package core

import (
	"github.com/gekko3d/hellocube/rt/gpu"
)

// Light is a single directional light with Phong-style terms.
// Shininess belongs to the material but travels with the light block.
type Light struct {
	Color             [3]float32 `yaml:"color"`
	AmbientIntensity  float32    `yaml:"ambient_intensity"`
	Direction         [3]float32 `yaml:"direction"`
	DiffuseIntensity  float32    `yaml:"diffuse_intensity"`
	Shininess         float32    `yaml:"shininess"`
	SpecularIntensity float32    `yaml:"specular_intensity"`
}

func DefaultLight() Light {
	return Light{
		Color:             [3]float32{1, 1, 1},
		AmbientIntensity:  0.1,
		Direction:         [3]float32{0, 0, 1},
		DiffuseIntensity:  0.8,
		Shininess:         10,
		SpecularIntensity: 2,
	}
}

// Record packs the light in uniform order.
func (l Light) Record() gpu.LightRecord {
	return gpu.LightRecord{
		l.Color[0], l.Color[1], l.Color[2],
		l.AmbientIntensity,
		l.Direction[0], l.Direction[1], l.Direction[2],
		l.DiffuseIntensity,
		l.Shininess,
		l.SpecularIntensity,
	}
}
