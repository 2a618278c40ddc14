package core

// Interleaved vertex layout consumed by the cube pipeline.
const (
	VertexFloats = 12
	VertexStride = VertexFloats * 4

	PositionOffset = 0
	ColorOffset    = 12
	TexCoordOffset = 28
	NormalOffset   = 36
)

type Vertex struct {
	X, Y, Z    float32 // position
	R, G, B, A float32 // color
	S, T       float32 // texture coordinate
	NX, NY, NZ float32 // normal
}

func (v Vertex) FloatBuffer() [VertexFloats]float32 {
	return [VertexFloats]float32{v.X, v.Y, v.Z, v.R, v.G, v.B, v.A, v.S, v.T, v.NX, v.NY, v.NZ}
}

func flatten(vertices []Vertex) []float32 {
	data := make([]float32, 0, len(vertices)*VertexFloats)
	for _, v := range vertices {
		f := v.FloatBuffer()
		data = append(data, f[:]...)
	}
	return data
}
