package repel

import (
	"time"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/repel/fieldrt/rt/app"
	"github.com/gekko3d/repel/fieldrt/rt/gpu"
)

const (
	rendererName = "repel"

	defaultViewportWidth  = 800
	defaultViewportHeight = 600
)

// RepelModule wires the particle renderer to the window, input and asset
// server. Install it after PlatformWindowModule, InputModule and
// AssetServerModule.
type RepelModule struct {
	Config *Config
}

// RepelState is the renderer resource and the shader asset it draws with.
type RepelState struct {
	Renderer *app.Renderer
	Shader   AssetId
	Debug    bool
}

func (mod RepelModule) Install(a *App, cmd *Commands) {
	cfg := mod.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ensureSingleRenderer(a, rendererName)

	windowState, ok := Resource[WindowState](a)
	if !ok {
		panic("RepelModule requires PlatformWindowModule")
	}
	assets, ok := Resource[AssetServer](a)
	if !ok {
		panic("RepelModule requires AssetServerModule")
	}

	ctx, err := gpu.NewContext(windowState.Glfw())
	if err != nil {
		panic(err)
	}
	cc := cfg.Render.ClearColor
	ctx.ClearColor = wgpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}

	device, err := app.NewWGPUDevice(ctx, cfg.Particles.Count)
	if err != nil {
		ctx.Release()
		panic(err)
	}

	width, height := windowState.FramebufferSize()
	state, err := newRepelState(device, assets, cfg, cmd.Logger(), clockFor(a, cfg), width, height)
	if err != nil {
		cmd.Logger().Errorf("initial program: %v", err)
	}
	cmd.AddResources(state)

	if input, ok := Resource[Input](a); ok {
		input.setFramebufferSize(width, height)
	}

	a.UseSystem(
		System(repelInputSystem).
			InStage(Update),
	)
	a.UseSystem(
		System(repelRenderSystem).
			InStage(Render),
	)
	a.UseSystem(
		System(repelShutdownSystem).
			InStage(Shutdown),
	)
}

// newRepelState builds the renderer over device, seeds it for the given
// framebuffer size and compiles the configured shader.
func newRepelState(device app.Device, assets *AssetServer, cfg *Config, log Logger, clock func() float32, width, height int) (*RepelState, error) {
	renderer := app.NewRenderer(device, app.Options{
		ParticleCount:     cfg.Particles.Count,
		RepulsionRadius:   cfg.Repulsion.Radius,
		RepulsionStrength: cfg.Repulsion.Strength,
		Clock:             clock,
		Logger:            log,
	})

	if width <= 0 || height <= 0 {
		width, height = defaultViewportWidth, defaultViewportHeight
	}
	renderer.Resize(width, height)

	state := &RepelState{
		Renderer: renderer,
		Shader:   assets.LoadShader(cfg.Shaders.Main, cfg.Shaders.Header),
		Debug:    cfg.Debug,
	}
	err := state.reload(assets)
	return state, err
}

func (s *RepelState) reload(assets *AssetServer) error {
	return s.Renderer.Reload(assets.Label(s.Shader), func() (string, error) {
		return assets.Source(s.Shader)
	})
}

// clockFor returns nil unless the config asks for a running clock, keeping
// Uniforms.Time at 0.
func clockFor(a *App, cfg *Config) func() float32 {
	if !cfg.Simulation.UseClock {
		return nil
	}
	if t, ok := Resource[Time](a); ok {
		return t.Seconds
	}
	start := time.Now()
	return func() float32 { return float32(time.Since(start).Seconds()) }
}

func repelInputSystem(cmd *Commands, state *RepelState, input *Input, assets *AssetServer) {
	state.Renderer.SetPointer(input.PointerX, input.PointerY)

	if input.Resized {
		state.Renderer.Resize(input.FramebufferWidth, input.FramebufferHeight)
		cmd.Logger().Debugf("resized to %dx%d", input.FramebufferWidth, input.FramebufferHeight)
	}

	if input.JustPressed[KeyR] {
		if err := state.reload(assets); err != nil {
			cmd.Logger().Warnf("reload kept previous program")
		}
	}
}

func repelRenderSystem(state *RepelState) {
	state.Renderer.Render()
}

func repelShutdownSystem(cmd *Commands, state *RepelState) {
	if state.Debug {
		cmd.Logger().Debugf("%s", state.Renderer.Profiler.GetStatsString())
	}
	p := state.Renderer.Profiler
	cmd.Logger().Infof("rendered %d frames (%d skipped, %d resets)",
		p.Count("frames"), p.Count("skipped"), p.Count("resets"))
	state.Renderer.Release()
}
