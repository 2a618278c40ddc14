package core

import (
	"math"
)

// CubeVertices returns a 2x2x2 cube as 36 triangle-list vertices. Texture
// coordinates address a 4x4 cross-shaped atlas.
func CubeVertices() []Vertex {
	// Front
	a := Vertex{X: -1, Y: 1, Z: 1, R: 1, G: 0, B: 0, A: 1, S: 0.25, T: 0.25, NX: 0, NY: 0, NZ: 1}
	b := Vertex{X: -1, Y: -1, Z: 1, R: 0, G: 1, B: 0, A: 1, S: 0.25, T: 0.50, NX: 0, NY: 0, NZ: 1}
	c := Vertex{X: 1, Y: -1, Z: 1, R: 0, G: 0, B: 1, A: 1, S: 0.50, T: 0.50, NX: 0, NY: 0, NZ: 1}
	d := Vertex{X: 1, Y: 1, Z: 1, R: 0.1, G: 0.6, B: 0.4, A: 1, S: 0.50, T: 0.25, NX: 0, NY: 0, NZ: 1}

	// Left
	e := Vertex{X: -1, Y: 1, Z: -1, R: 1, G: 0, B: 0, A: 1, S: 0.00, T: 0.25, NX: -1, NY: 0, NZ: 0}
	f := Vertex{X: -1, Y: -1, Z: -1, R: 0, G: 1, B: 0, A: 1, S: 0.00, T: 0.50, NX: -1, NY: 0, NZ: 0}
	g := Vertex{X: -1, Y: -1, Z: 1, R: 0, G: 0, B: 1, A: 1, S: 0.25, T: 0.50, NX: -1, NY: 0, NZ: 0}
	h := Vertex{X: -1, Y: 1, Z: 1, R: 0.1, G: 0.6, B: 0.4, A: 1, S: 0.25, T: 0.25, NX: -1, NY: 0, NZ: 0}

	// Right
	i := Vertex{X: 1, Y: 1, Z: 1, R: 1, G: 0, B: 0, A: 1, S: 0.50, T: 0.25, NX: 1, NY: 0, NZ: 0}
	j := Vertex{X: 1, Y: -1, Z: 1, R: 0, G: 1, B: 0, A: 1, S: 0.50, T: 0.50, NX: 1, NY: 0, NZ: 0}
	k := Vertex{X: 1, Y: -1, Z: -1, R: 0, G: 0, B: 1, A: 1, S: 0.75, T: 0.50, NX: 1, NY: 0, NZ: 0}
	l := Vertex{X: 1, Y: 1, Z: -1, R: 0.1, G: 0.6, B: 0.4, A: 1, S: 0.75, T: 0.25, NX: 1, NY: 0, NZ: 0}

	// Top
	m := Vertex{X: -1, Y: 1, Z: -1, R: 1, G: 0, B: 0, A: 1, S: 0.25, T: 0.00, NX: 0, NY: 1, NZ: 0}
	n := Vertex{X: -1, Y: 1, Z: 1, R: 0, G: 1, B: 0, A: 1, S: 0.25, T: 0.25, NX: 0, NY: 1, NZ: 0}
	o := Vertex{X: 1, Y: 1, Z: 1, R: 0, G: 0, B: 1, A: 1, S: 0.50, T: 0.25, NX: 0, NY: 1, NZ: 0}
	p := Vertex{X: 1, Y: 1, Z: -1, R: 0.1, G: 0.6, B: 0.4, A: 1, S: 0.50, T: 0.00, NX: 0, NY: 1, NZ: 0}

	// Bottom
	q := Vertex{X: -1, Y: -1, Z: 1, R: 1, G: 0, B: 0, A: 1, S: 0.25, T: 0.50, NX: 0, NY: -1, NZ: 0}
	r := Vertex{X: -1, Y: -1, Z: -1, R: 0, G: 1, B: 0, A: 1, S: 0.25, T: 0.75, NX: 0, NY: -1, NZ: 0}
	s := Vertex{X: 1, Y: -1, Z: -1, R: 0, G: 0, B: 1, A: 1, S: 0.50, T: 0.75, NX: 0, NY: -1, NZ: 0}
	t := Vertex{X: 1, Y: -1, Z: 1, R: 0.1, G: 0.6, B: 0.4, A: 1, S: 0.50, T: 0.50, NX: 0, NY: -1, NZ: 0}

	// Back
	u := Vertex{X: 1, Y: 1, Z: -1, R: 1, G: 0, B: 0, A: 1, S: 0.75, T: 0.25, NX: 0, NY: 0, NZ: -1}
	v := Vertex{X: 1, Y: -1, Z: -1, R: 0, G: 1, B: 0, A: 1, S: 0.75, T: 0.50, NX: 0, NY: 0, NZ: -1}
	w := Vertex{X: -1, Y: -1, Z: -1, R: 0, G: 0, B: 1, A: 1, S: 1.00, T: 0.50, NX: 0, NY: 0, NZ: -1}
	x := Vertex{X: -1, Y: 1, Z: -1, R: 0.1, G: 0.6, B: 0.4, A: 1, S: 1.00, T: 0.25, NX: 0, NY: 0, NZ: -1}

	return []Vertex{
		a, b, c, a, c, d, // front
		e, f, g, e, g, h, // left
		i, j, k, i, k, l, // right
		m, n, o, m, o, p, // top
		q, r, s, q, s, t, // bottom
		u, v, w, u, w, x, // back
	}
}

// NewCube builds a cube node from CubeVertices.
func NewCube(opts ...NodeOption) (*TransformNode, error) {
	return NewTransformNode("Cube", CubeVertices(), opts...)
}

// Oscillate swings rotation X and Y through [-1, 1] radians once every
// secsPerMove seconds of node time.
func Oscillate(n *TransformNode, secsPerMove float64) {
	if secsPerMove <= 0 {
		return
	}
	angle := float32(math.Sin(n.Time() * 2 * math.Pi / secsPerMove))
	n.Rotation[0] = angle
	n.Rotation[1] = angle
}
