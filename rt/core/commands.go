package core

import (
	"sync"

	"github.com/gekko3d/hellocube/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameCommands is one node's draw for one frame: the vertex buffer, the
// uniform slot and a non-indexed triangle-list draw.
type FrameCommands struct {
	NodeID   string
	NodeName string

	Slot      gpu.Slot
	Uniforms  []byte
	ModelView mgl32.Mat4

	VertexCount   uint32
	InstanceCount uint32
	Texture       any

	release func()
	once    sync.Once
}

// Complete is the GPU completion callback. It returns the slot to the ring;
// extra calls are no-ops.
func (c *FrameCommands) Complete() {
	c.once.Do(c.release)
}

// Abandon returns the slot of a frame that was never submitted.
func (c *FrameCommands) Abandon() {
	c.Complete()
}
