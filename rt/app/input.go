package app

import (
	"github.com/gekko3d/hellocube/rt/core"
)

const (
	DefaultDragSensitivity = 5.0
	DefaultScrollStep      = 0.1

	MinScale = 0.1
	MaxScale = 5.0
)

// Gestures turns pointer input into node rotation and scale. A drag across
// the full window width turns the node by Sensitivity radians.
type Gestures struct {
	Sensitivity float32
	ScrollStep  float32

	target   *core.TransformNode
	dragging bool
	lastX    float64
	lastY    float64
}

func NewGestures(target *core.TransformNode, cfg InputConfig) *Gestures {
	return &Gestures{
		Sensitivity: cfg.DragSensitivity,
		ScrollStep:  cfg.ScrollStep,
		target:      target,
	}
}

func (g *Gestures) Dragging() bool { return g.dragging }

func (g *Gestures) Press(x, y float64) {
	g.dragging = true
	g.lastX, g.lastY = x, y
}

func (g *Gestures) Release() {
	g.dragging = false
}

// Move applies the pointer delta since the last event. width and height are
// the window size in the same units as x and y.
func (g *Gestures) Move(x, y float64, width, height int) {
	if !g.dragging || g.target == nil || width <= 0 || height <= 0 {
		return
	}
	dx := float32((g.lastX-x)/float64(width)) * g.Sensitivity
	dy := float32((g.lastY-y)/float64(height)) * g.Sensitivity
	g.lastX, g.lastY = x, y

	g.target.Rotation[1] -= dx
	g.target.Rotation[0] -= dy
}

// Scroll scales the target, one ScrollStep per wheel notch.
func (g *Gestures) Scroll(offset float64) {
	if g.target == nil {
		return
	}
	scale := g.target.Scale * (1 + float32(offset)*g.ScrollStep)
	g.target.Scale = min(max(scale, MinScale), MaxScale)
}
