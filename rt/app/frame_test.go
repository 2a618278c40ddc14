package app

import (
	"testing"

	"github.com/gekko3d/hellocube/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingsStarved(t *testing.T) {
	a, err := core.NewCube(core.WithPoolSize(1))
	require.NoError(t, err)
	b, err := core.NewCube(core.WithPoolSize(2))
	require.NoError(t, err)
	nodes := []*core.TransformNode{a, b}

	assert.False(t, ringsStarved(nodes))

	cmdsB, err := b.RenderFrame(mgl32.Ident4(), mgl32.Ident4())
	require.NoError(t, err)
	assert.False(t, ringsStarved(nodes), "b still has a free slot")

	cmdsA, err := a.RenderFrame(mgl32.Ident4(), mgl32.Ident4())
	require.NoError(t, err)
	assert.True(t, ringsStarved(nodes), "a's only slot is in flight")

	cmdsA.Complete()
	assert.False(t, ringsStarved(nodes))

	cmdsB.Complete()
	_, err = a.RenderFrame(mgl32.Ident4(), mgl32.Ident4())
	require.NoError(t, err)
	a.Destroy()
	assert.False(t, ringsStarved(nodes), "closed rings are skipped, not waited on")

	b.Destroy()
}
