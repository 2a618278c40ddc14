package core

import (
	"context"
	"time"

	"github.com/gekko3d/hellocube"
	"github.com/gekko3d/hellocube/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Animation runs after a node's time advanced.
type Animation func(n *TransformNode)

type sceneNode struct {
	node    *TransformNode
	animate Animation
	stopped bool
}

// Scene is the per-frame driver policy: every node renders under the world
// matrix once per tick. A node that times out waiting for a uniform slot
// skips the frame; a node whose ring was closed is no longer scheduled.
type Scene struct {
	World      mgl32.Mat4
	Projection mgl32.Mat4

	nodes   []*sceneNode
	dropped int
	logger  hellocube.Logger
}

func NewScene(world, projection mgl32.Mat4, logger hellocube.Logger) *Scene {
	return &Scene{
		World:      world,
		Projection: projection,
		logger:     hellocube.OrNop(logger),
	}
}

// SetProjection replaces the projection, e.g. after a resize.
func (s *Scene) SetProjection(projection mgl32.Mat4) {
	s.Projection = projection
}

// Add schedules n. animate may be nil.
func (s *Scene) Add(n *TransformNode, animate Animation) {
	s.nodes = append(s.nodes, &sceneNode{node: n, animate: animate})
}

func (s *Scene) Nodes() []*TransformNode {
	nodes := make([]*TransformNode, 0, len(s.nodes))
	for _, sn := range s.nodes {
		nodes = append(nodes, sn.node)
	}
	return nodes
}

// Active returns the number of nodes still scheduled.
func (s *Scene) Active() int {
	n := 0
	for _, sn := range s.nodes {
		if !sn.stopped {
			n++
		}
	}
	return n
}

// Dropped returns the number of node frames skipped on slot timeouts.
func (s *Scene) Dropped() int { return s.dropped }

func (s *Scene) Update(dt float64) {
	for _, sn := range s.nodes {
		if sn.stopped {
			continue
		}
		sn.node.Advance(dt)
		if sn.animate != nil {
			sn.animate(sn.node)
		}
	}
}

// Render collects this frame's commands. Each node waits at most timeout for
// a slot (0 waits without bound). Any other failure abandons the frame.
func (s *Scene) Render(ctx context.Context, timeout time.Duration) ([]*FrameCommands, error) {
	var frame []*FrameCommands
	for _, sn := range s.nodes {
		if sn.stopped {
			continue
		}

		cmds, err := s.renderNode(ctx, sn.node, timeout)
		switch {
		case err == nil:
			frame = append(frame, cmds)
		case errors.Is(err, gpu.ErrSlotTimeout):
			s.dropped++
			s.logger.Debugf("node %s: no free uniform slot, frame dropped", sn.node.Name)
		case errors.Is(err, gpu.ErrPoolClosed):
			sn.stopped = true
			s.logger.Warnf("node %s: uniform ring closed, unscheduled", sn.node.Name)
		default:
			for _, c := range frame {
				c.Abandon()
			}
			return nil, err
		}
	}
	return frame, nil
}

func (s *Scene) renderNode(ctx context.Context, n *TransformNode, timeout time.Duration) (*FrameCommands, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return n.RenderFrameContext(ctx, s.World, s.Projection)
}

func (s *Scene) Destroy() {
	for _, sn := range s.nodes {
		sn.node.Destroy()
		sn.stopped = true
	}
}
