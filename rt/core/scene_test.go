package core

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/gekko3d/hellocube/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScene_DropsFrameOnTimeout(t *testing.T) {
	n, err := NewTransformNode("tri", triangle(), WithPoolSize(1))
	require.NoError(t, err)

	scene := NewScene(mgl32.Ident4(), mgl32.Ident4(), nil)
	scene.Add(n, nil)

	frame, err := scene.Render(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, frame, 1)

	// GPU has not completed the first frame yet.
	frame2, err := scene.Render(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, frame2)
	assert.Equal(t, 1, scene.Dropped())
	assert.Equal(t, 1, scene.Active())

	frame[0].Complete()
	frame3, err := scene.Render(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, frame3, 1)
}

func TestScene_UnschedulesClosedNodes(t *testing.T) {
	a, err := NewTransformNode("a", triangle())
	require.NoError(t, err)
	b, err := NewTransformNode("b", triangle())
	require.NoError(t, err)

	scene := NewScene(mgl32.Ident4(), mgl32.Ident4(), nil)
	scene.Add(a, nil)
	scene.Add(b, nil)

	b.Destroy()
	frame, err := scene.Render(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, frame, 1)
	assert.Equal(t, "a", frame[0].NodeName)
	assert.Equal(t, 1, scene.Active())
	assert.Len(t, scene.Nodes(), 2)

	scene.Destroy()
	assert.Equal(t, 0, scene.Active())
}

func TestScene_AbandonsOnCancel(t *testing.T) {
	a, err := NewTransformNode("a", triangle(), WithPoolSize(1))
	require.NoError(t, err)
	b, err := NewTransformNode("b", triangle(), WithPoolSize(1))
	require.NoError(t, err)

	scene := NewScene(mgl32.Ident4(), mgl32.Ident4(), nil)
	scene.Add(a, nil)
	scene.Add(b, nil)

	// Whichever node trips over the cancelled context, no slot stays checked out.
	_, err = b.RenderFrame(mgl32.Ident4(), mgl32.Ident4())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = scene.Render(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, a.Ring().Available(), "a's slot is returned when the frame is abandoned")
}

func TestScene_UpdateAnimates(t *testing.T) {
	n, err := NewCube()
	require.NoError(t, err)

	scene := NewScene(WorldMatrix(DefaultDistance, DefaultTiltDeg), Projection(DefaultFovDeg, 1, DefaultNear, DefaultFar), nil)
	scene.Add(n, func(n *TransformNode) { Oscillate(n, 6) })

	scene.Update(1.5)
	assert.InDelta(t, 1.5, n.Time(), 1e-12)
	assert.InDelta(t, 1.0, n.Rotation.X(), 1e-6)
	assert.InDelta(t, 1.0, n.Rotation.Y(), 1e-6)

	scene.Update(1.5)
	assert.InDelta(t, math.Sin(math.Pi), float64(n.Rotation.X()), 1e-6)
}

func TestCubeVertices(t *testing.T) {
	vertices := CubeVertices()
	require.Len(t, vertices, 36)

	for i := 0; i < len(vertices); i += 3 {
		a := mgl32.Vec3{vertices[i].X, vertices[i].Y, vertices[i].Z}
		b := mgl32.Vec3{vertices[i+1].X, vertices[i+1].Y, vertices[i+1].Z}
		c := mgl32.Vec3{vertices[i+2].X, vertices[i+2].Y, vertices[i+2].Z}
		normal := mgl32.Vec3{vertices[i].NX, vertices[i].NY, vertices[i].NZ}
		// Counter-clockwise winding faces along the stored normal.
		face := b.Sub(a).Cross(c.Sub(a)).Normalize()
		assert.True(t, face.ApproxEqual(normal), "triangle %d winding %v, normal %v", i/3, face, normal)
	}

	f := vertices[0].FloatBuffer()
	assert.Equal(t, [VertexFloats]float32{-1, 1, 1, 1, 0, 0, 1, 0.25, 0.25, 0, 0, 1}, f)

	n, err := NewCube()
	require.NoError(t, err)
	assert.Len(t, n.VertexData(), 36*VertexFloats)
	assert.Equal(t, f[:], n.VertexData()[:VertexFloats])
}

func TestCameraDefaults(t *testing.T) {
	world := WorldMatrix(4, 0)
	p := world.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.Equal(t, mgl32.Vec4{0, 0, -4, 1}, p)

	assert.Equal(t, Projection(85, 1, 0.01, 100), Projection(85, 0, 0.01, 100))
}

func TestScene_SetProjection(t *testing.T) {
	n, err := NewTransformNode("tri", triangle())
	require.NoError(t, err)

	scene := NewScene(mgl32.Ident4(), Projection(85, 1, 0.01, 100), nil)
	scene.Add(n, nil)

	wide := Projection(85, 2, 0.01, 100)
	scene.SetProjection(wide)

	frame, err := scene.Render(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, frame, 1)
	assert.Equal(t, wide, gpu.ReadMatrix(frame[0].Uniforms, gpu.ProjectionOffset))
	frame[0].Complete()
}
