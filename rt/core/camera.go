package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultFovDeg   = 85.0
	DefaultNear     = 0.01
	DefaultFar      = 100.0
	DefaultDistance = 4.0
	DefaultTiltDeg  = 25.0
)

// Projection builds the perspective matrix. A non-positive aspect falls back to 1.
func Projection(fovDeg, aspect, near, far float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(fovDeg), aspect, near, far)
}

// WorldMatrix pushes the scene distance units away and tilts it towards the viewer.
func WorldMatrix(distance, tiltDeg float32) mgl32.Mat4 {
	return mgl32.Translate3D(0, 0, -distance).Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(tiltDeg)))
}
