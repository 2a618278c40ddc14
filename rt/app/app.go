package app

import (
	"context"
	"image/color"

	"github.com/gekko3d/hellocube"
	"github.com/gekko3d/hellocube/rt/core"
	"github.com/gekko3d/hellocube/rt/gpu"
	"github.com/gekko3d/hellocube/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// drawable is the GPU side of one scene node.
type drawable struct {
	vertexBuffer *wgpu.Buffer
	// one per ring slot, indexed by slot
	bindGroups []*wgpu.BindGroup
}

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Surf     *wgpu.SurfaceConfiguration

	Config Config
	Logger hellocube.Logger

	Pipeline    *wgpu.RenderPipeline
	Sampler     *wgpu.Sampler
	TextureView *wgpu.TextureView

	Scene    *core.Scene
	Cube     *core.TransformNode
	Gestures *Gestures

	drawables map[string]*drawable

	LastTime float64

	FrameCount int
	FPS        float64
	FPSTime    float64
}

func NewApp(window *glfw.Window, cfg Config, logger hellocube.Logger) *App {
	return &App{
		Window:    window,
		Config:    cfg,
		Logger:    hellocube.OrNop(logger),
		drawables: make(map[string]*drawable),
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return errors.Wrap(err, "request adapter")
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return errors.Wrap(err, "request device")
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	a.Surf = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Surf)

	if err := a.setupPipeline(); err != nil {
		return err
	}
	if err := a.setupTexture(); err != nil {
		return err
	}

	a.Cube, err = core.NewCube(
		core.WithLight(a.Config.Light),
		core.WithTexture(a.TextureView),
		core.WithPoolSize(a.Config.Render.PoolSize),
		core.WithBacking(gpu.NewWgpuAllocator(a.Device, "Cube Uniforms")),
		core.WithLogger(a.Logger),
	)
	if err != nil {
		return err
	}
	if err := a.Cube.Validate(core.Requirements{Texture: true, Light: true}); err != nil {
		return err
	}
	if err := a.setupDrawable(a.Cube); err != nil {
		return err
	}

	cam := a.Config.Camera
	a.Scene = core.NewScene(
		core.WorldMatrix(cam.Distance, cam.TiltDeg),
		core.Projection(cam.FovDeg, aspect(width, height), cam.Near, cam.Far),
		a.Logger,
	)
	a.Gestures = NewGestures(a.Cube, a.Config.Input)
	var animate core.Animation
	if period := a.Config.Render.AnimatePeriod; period > 0 {
		// the user owns the rotation while dragging
		animate = func(n *core.TransformNode) {
			if !a.Gestures.Dragging() {
				core.Oscillate(n, period)
			}
		}
	}
	a.Scene.Add(a.Cube, animate)

	a.LastTime = glfw.GetTime()
	a.Logger.Infof("initialized %dx%d, %d uniform slots per node", width, height, a.Cube.Ring().Size())
	return nil
}

func (a *App) setupPipeline() error {
	module, err := a.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Cube VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.CubeWGSL},
	})
	if err != nil {
		return errors.Wrap(err, "cube shader")
	}
	defer module.Release()

	a.Pipeline, err = a.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Cube Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: shaders.VertexEntry,
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: core.VertexStride,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x3, Offset: core.PositionOffset, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x4, Offset: core.ColorOffset, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x2, Offset: core.TexCoordOffset, ShaderLocation: 2},
					{Format: wgpu.VertexFormatFloat32x3, Offset: core.NormalOffset, ShaderLocation: 3},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: shaders.FragmentEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    a.Surf.Format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return errors.Wrap(err, "cube pipeline")
	}

	a.Sampler, err = a.Device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	return errors.Wrap(err, "sampler")
}

func (a *App) setupTexture() error {
	img := gpu.CheckerImage(256, 8, color.RGBA{255, 255, 255, 255}, color.RGBA{200, 200, 200, 255})
	if path := a.Config.Render.Texture; path != "" {
		loaded, err := gpu.LoadPNG(path, a.Config.Render.MaxTextureSize)
		if err != nil {
			return err
		}
		img = loaded
	}

	view, err := gpu.UploadTexture(a.Device, a.Queue, img, "Cube Texture")
	if err != nil {
		return err
	}
	a.TextureView = view
	return nil
}

// setupDrawable uploads the node's vertices and builds one bind group per
// ring slot so a frame binds exactly the slot it wrote.
func (a *App) setupDrawable(n *core.TransformNode) error {
	vb, err := a.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    n.Name + " Vertices",
		Contents: wgpu.ToBytes(n.VertexData()),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return errors.Wrapf(err, "%s vertex buffer", n.Name)
	}
	d := &drawable{vertexBuffer: vb}
	a.drawables[n.ID] = d

	view, ok := n.Texture().(*wgpu.TextureView)
	if !ok {
		return errors.Wrapf(core.ErrMissingResource, "%s: texture is not a wgpu view", n.Name)
	}

	layout := a.Pipeline.GetBindGroupLayout(0)
	defer layout.Release()

	ring := n.Ring()
	for i := 0; i < ring.Size(); i++ {
		backing, ok := ring.Backing(i).(*gpu.WgpuBacking)
		if !ok {
			return errors.Errorf("%s: slot %d has no uniform buffer", n.Name, i)
		}
		bg, err := a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Layout: layout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: backing.Buffer(), Size: wgpu.WholeSize},
				{Binding: 1, TextureView: view},
				{Binding: 2, Sampler: a.Sampler},
			},
		})
		if err != nil {
			return errors.Wrapf(err, "%s bind group %d", n.Name, i)
		}
		d.bindGroups = append(d.bindGroups, bg)
	}
	return nil
}

func (a *App) Resize(w, h int) {
	if w > 0 && h > 0 {
		a.Surf.Width = uint32(w)
		a.Surf.Height = uint32(h)
		a.Surface.Configure(a.Adapter, a.Device, a.Surf)

		cam := a.Config.Camera
		a.Scene.SetProjection(core.Projection(cam.FovDeg, aspect(w, h), cam.Near, cam.Far))
	}
}

// Frame advances the scene by the wall time since the last call, renders it
// and pumps completion callbacks.
func (a *App) Frame() {
	now := glfw.GetTime()
	dt := now - a.LastTime
	a.LastTime = now

	a.Scene.Update(dt)
	// Completion callbacks only run inside Poll on this thread, so a node
	// whose ring is exhausted would wait on releases that cannot arrive.
	if ringsStarved(a.Scene.Nodes()) {
		a.Device.Poll(true, nil)
	}
	a.Render()
	a.Device.Poll(false, nil)

	a.FrameCount++
	a.FPSTime += dt
	if a.FPSTime >= 1.0 {
		a.FPS = float64(a.FrameCount) / a.FPSTime
		a.FrameCount = 0
		a.FPSTime = 0
		a.Logger.Debugf("%.1f fps, %d frames dropped", a.FPS, a.Scene.Dropped())
	}
}

func (a *App) Render() {
	frame, err := a.Scene.Render(context.Background(), a.Config.Render.AcquireTimeout)
	if err != nil {
		a.Logger.Errorf("scene render: %v", err)
		return
	}
	if len(frame) == 0 {
		return
	}

	// Every exit before Submit hands the slots back.
	submitted := false
	defer func() {
		if !submitted {
			for _, cmds := range frame {
				cmds.Abandon()
			}
		}
	}()

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Logger.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Logger.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.Logger.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}

	cc := a.Config.Render.ClearColor
	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]},
		}},
	})
	rPass.SetPipeline(a.Pipeline)
	for _, cmds := range frame {
		d := a.drawables[cmds.NodeID]
		if d == nil {
			a.Logger.Warnf("node %s has no GPU resources", cmds.NodeName)
			continue
		}
		rPass.SetVertexBuffer(0, d.vertexBuffer, 0, d.vertexBuffer.GetSize())
		rPass.SetBindGroup(0, d.bindGroups[cmds.Slot.Index()], nil)
		rPass.Draw(cmds.VertexCount, cmds.InstanceCount, 0, 0)
	}
	if err := rPass.End(); err != nil {
		a.Logger.Errorf("render pass End failed: %v", err)
		return
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.Logger.Errorf("encoder Finish failed: %v", err)
		return
	}
	a.Queue.Submit(cmd)
	submitted = true

	a.Queue.OnSubmittedWorkDone(func(status wgpu.QueueWorkDoneStatus) {
		if status != wgpu.QueueWorkDoneStatusSuccess {
			a.Logger.Warnf("submitted work finished with status %v", status)
		}
		for _, cmds := range frame {
			cmds.Complete()
		}
	})
	a.Surface.Present()
}

// AttachInput routes glfw pointer events to the gesture handler.
func (a *App) AttachInput() {
	a.Window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		switch action {
		case glfw.Press:
			x, y := w.GetCursorPos()
			a.Gestures.Press(x, y)
		case glfw.Release:
			a.Gestures.Release()
		}
	})
	a.Window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		width, height := w.GetSize()
		a.Gestures.Move(x, y, width, height)
	})
	a.Window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		a.Gestures.Scroll(yoff)
	})
}

// Release waits for in-flight frames, then frees GPU objects. Closing the
// scene closes every ring, which releases the uniform buffers.
func (a *App) Release() {
	if a.Device != nil {
		a.Device.Poll(true, nil)
	}
	for _, d := range a.drawables {
		for _, bg := range d.bindGroups {
			bg.Release()
		}
		d.vertexBuffer.Release()
	}
	a.drawables = map[string]*drawable{}
	if a.Scene != nil {
		a.Scene.Destroy()
	}

	if a.TextureView != nil {
		a.TextureView.Release()
	}
	if a.Sampler != nil {
		a.Sampler.Release()
	}
	if a.Pipeline != nil {
		a.Pipeline.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}

// ringsStarved reports whether any node's next slot acquire would block.
func ringsStarved(nodes []*core.TransformNode) bool {
	for _, n := range nodes {
		if n.Ring().WouldBlock() {
			return true
		}
	}
	return false
}

func aspect(w, h int) float32 {
	if h <= 0 {
		return 1
	}
	return float32(w) / float32(h)
}
