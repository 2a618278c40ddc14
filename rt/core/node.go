package core

import (
	"context"
	"time"

	"github.com/gekko3d/hellocube"
	"github.com/gekko3d/hellocube/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrMissingResource = errors.New("missing resource")
)

// Requirements lists what the pipeline reads besides vertices and uniforms.
type Requirements struct {
	Texture bool
	Light   bool
}

// TransformNode places a flat triangle-list mesh in the world and renders it
// through its own uniform ring.
type TransformNode struct {
	ID   string
	Name string

	Position mgl32.Vec3
	Rotation mgl32.Vec3 // per-axis Euler angles, radians
	Scale    float32

	light   *Light
	texture any

	vertexCount int
	vertexData  []float32
	time        float64

	ring   *gpu.UniformRing
	logger hellocube.Logger
}

type nodeConfig struct {
	light    *Light
	texture  any
	poolSize int
	alloc    gpu.BackingAllocator
	logger   hellocube.Logger
}

type NodeOption func(*nodeConfig)

// WithLight makes the node lit; its ring then carries the light record.
func WithLight(light Light) NodeOption {
	return func(c *nodeConfig) {
		c.light = &light
	}
}

// WithTexture binds an externally owned texture handle.
func WithTexture(texture any) NodeOption {
	return func(c *nodeConfig) {
		c.texture = texture
	}
}

func WithPoolSize(size int) NodeOption {
	return func(c *nodeConfig) {
		c.poolSize = size
	}
}

// WithBacking allocates GPU buffers for the node's uniform slots.
func WithBacking(alloc gpu.BackingAllocator) NodeOption {
	return func(c *nodeConfig) {
		c.alloc = alloc
	}
}

func WithLogger(logger hellocube.Logger) NodeOption {
	return func(c *nodeConfig) {
		c.logger = logger
	}
}

func NewTransformNode(name string, vertices []Vertex, opts ...NodeOption) (*TransformNode, error) {
	if len(vertices) == 0 {
		return nil, errors.Wrapf(ErrInvalidGeometry, "%s: no vertices", name)
	}
	if len(vertices)%3 != 0 {
		return nil, errors.Wrapf(ErrInvalidGeometry, "%s: %d vertices is not a triangle list", name, len(vertices))
	}

	cfg := nodeConfig{poolSize: gpu.DefaultRingSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := hellocube.OrNop(cfg.logger)

	ringOpts := []gpu.RingOption{
		gpu.WithLabel(name + " uniforms"),
		gpu.WithRingLogger(logger),
	}
	if cfg.alloc != nil {
		ringOpts = append(ringOpts, gpu.WithBacking(cfg.alloc))
	}
	ring, err := gpu.NewUniformRing(cfg.poolSize, cfg.light != nil, ringOpts...)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}

	n := &TransformNode{
		ID:          uuid.NewString(),
		Name:        name,
		Scale:       1,
		light:       cfg.light,
		texture:     cfg.texture,
		vertexCount: len(vertices),
		vertexData:  flatten(vertices),
		ring:        ring,
		logger:      logger.With(name),
	}
	n.logger.Debugf("node %s: %d vertices, lit=%t", n.ID, n.vertexCount, n.light != nil)
	return n, nil
}

// Validate reports ErrMissingResource when the pipeline needs something the
// node was not constructed with. Called once at setup, not per frame.
func (n *TransformNode) Validate(req Requirements) error {
	if req.Texture && n.texture == nil {
		return errors.Wrapf(ErrMissingResource, "%s: pipeline samples a texture but none is bound", n.Name)
	}
	if req.Light && n.light == nil {
		return errors.Wrapf(ErrMissingResource, "%s: pipeline is lit but node has no light", n.Name)
	}
	return nil
}

// ModelMatrix returns T * Rx * Ry * Rz * S. The order is fixed.
func (n *TransformNode) ModelMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z()).
		Mul4(mgl32.HomogRotate3DX(n.Rotation.X())).
		Mul4(mgl32.HomogRotate3DY(n.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(n.Rotation.Z())).
		Mul4(mgl32.Scale3D(n.Scale, n.Scale, n.Scale))
}

// Advance accumulates elapsed seconds.
func (n *TransformNode) Advance(dt float64) {
	n.time += dt
}

// Time returns the accumulated seconds.
func (n *TransformNode) Time() float64 { return n.time }

func (n *TransformNode) Light() (Light, bool) {
	if n.light == nil {
		return Light{}, false
	}
	return *n.light, true
}

// SetLight updates the light of a lit node. Unlit nodes ignore it, their
// uniform layout has no light block.
func (n *TransformNode) SetLight(light Light) {
	if n.light == nil {
		n.logger.Warnf("SetLight on unlit node ignored")
		return
	}
	*n.light = light
}

func (n *TransformNode) Texture() any { return n.texture }

func (n *TransformNode) VertexCount() int { return n.vertexCount }

// VertexData returns a copy of the interleaved vertex floats.
func (n *TransformNode) VertexData() []float32 {
	return append([]float32(nil), n.vertexData...)
}

func (n *TransformNode) Ring() *gpu.UniformRing { return n.ring }

// RenderFrame is RenderFrameContext without a deadline.
func (n *TransformNode) RenderFrame(parent, projection mgl32.Mat4) (*FrameCommands, error) {
	return n.RenderFrameContext(context.Background(), parent, projection)
}

// RenderFrameTimeout bounds the wait for a uniform slot by timeout.
func (n *TransformNode) RenderFrameTimeout(timeout time.Duration, parent, projection mgl32.Mat4) (*FrameCommands, error) {
	if timeout <= 0 {
		return n.RenderFrame(parent, projection)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return n.RenderFrameContext(ctx, parent, projection)
}

// RenderFrameContext composes parent * model, fills the next uniform slot and
// returns the draw for the driver. The slot stays checked out until the
// driver calls Complete on the returned commands.
func (n *TransformNode) RenderFrameContext(ctx context.Context, parent, projection mgl32.Mat4) (*FrameCommands, error) {
	modelView := parent.Mul4(n.ModelMatrix())

	slot, err := n.ring.AcquireContext(ctx)
	if err != nil {
		return nil, err
	}

	var light *gpu.LightRecord
	if n.light != nil {
		record := n.light.Record()
		light = &record
	}
	if err := n.ring.Write(slot, modelView, projection, light); err != nil {
		n.ring.Release(slot)
		return nil, errors.Wrapf(err, "node %s", n.Name)
	}
	if err := n.ring.Submit(slot); err != nil {
		n.ring.Release(slot)
		return nil, errors.Wrapf(err, "node %s", n.Name)
	}

	return &FrameCommands{
		NodeID:        n.ID,
		NodeName:      n.Name,
		Slot:          slot,
		Uniforms:      n.ring.Bytes(slot),
		ModelView:     modelView,
		VertexCount:   uint32(n.vertexCount),
		InstanceCount: uint32(n.vertexCount / 3),
		Texture:       n.texture,
		release:       func() { n.ring.Release(slot) },
	}, nil
}

// Destroy closes the ring, waking any waiter with gpu.ErrPoolClosed.
func (n *TransformNode) Destroy() {
	n.ring.Close()
}
