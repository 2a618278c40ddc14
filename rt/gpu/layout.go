package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Uniform slot layout. Must match the Uniforms struct in shaders/cube.wgsl.
//
//	struct Uniforms {
//	  model_view: mat4x4<f32>;  -- 0
//	  projection: mat4x4<f32>;  -- 64
//	  light:      Light;        -- 128 (lit pools only, 40 bytes)
//	}
const (
	FloatSize   = 4
	MatrixSize  = 16 * FloatSize
	LightFloats = 10
	LightSize   = LightFloats * FloatSize

	ModelViewOffset  = 0
	ProjectionOffset = ModelViewOffset + MatrixSize
	LightOffset      = ProjectionOffset + MatrixSize

	SlotSizeUnlit = LightOffset
	SlotSizeLit   = LightOffset + LightSize

	// WGSL rounds uniform struct sizes up to 16 bytes.
	uniformAlign = 16
)

// LightRecord is the packed light block:
// color.rgb, ambient, direction.xyz, diffuse, shininess, specular.
type LightRecord [LightFloats]float32

// SlotSize returns the byte size of one uniform slot.
func SlotSize(lit bool) int {
	if lit {
		return SlotSizeLit
	}
	return SlotSizeUnlit
}

// AlignedSize rounds size up to the uniform struct alignment.
func AlignedSize(size int) int {
	if rem := size % uniformAlign; rem != 0 {
		size += uniformAlign - rem
	}
	return size
}

func putFloats(dst []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*FloatSize:], math.Float32bits(v))
	}
}

func encodeUniforms(dst []byte, modelView, projection mgl32.Mat4, light *LightRecord) {
	putFloats(dst[ModelViewOffset:ProjectionOffset], modelView[:])
	putFloats(dst[ProjectionOffset:LightOffset], projection[:])
	if light != nil {
		putFloats(dst[LightOffset:SlotSizeLit], light[:])
	}
}

// ReadMatrix decodes a column-major matrix stored at offset.
func ReadMatrix(src []byte, offset int) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[offset+i*FloatSize:]))
	}
	return m
}

// ReadLight decodes the light record stored at LightOffset.
func ReadLight(src []byte) LightRecord {
	var l LightRecord
	for i := range l {
		l[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[LightOffset+i*FloatSize:]))
	}
	return l
}
