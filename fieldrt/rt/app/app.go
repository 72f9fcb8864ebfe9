package app

import (
	"sync"

	"github.com/gekko3d/repel/fieldrt/rt/core"
	"github.com/gekko3d/repel/fieldrt/rt/gpu"
)

// Logger is the subset of the engine logger the renderer writes to.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Program is a compiled particle program. A stage that failed to build
// reports false and is skipped each frame.
type Program interface {
	HasCompute() bool
	HasRender() bool
	ThreadExecutionWidth() uint32
	Release()
}

// Frame records one tick of GPU work. Calls are encoded in order.
type Frame interface {
	WriteUniforms(u core.Uniforms) error
	Dispatch(p Program, groups uint32) error
	Draw(p Program, vertexCount uint32) error
	Present() error
}

// Device is the GPU context the renderer draws with.
type Device interface {
	// CompileProgram may return a program together with an error when only
	// some stages built. A nil program means nothing usable was produced.
	CompileProgram(label, source string) (Program, error)
	WriteParticles(data []byte) error
	Configure(width, height int)
	// NextFrame returns an error when no drawable is available this tick.
	NextFrame() (Frame, error)
	Release()
}

type Options struct {
	ParticleCount     int
	RepulsionRadius   float32
	RepulsionStrength float32

	// Clock supplies Uniforms.Time. Nil keeps time at 0.
	Clock func() float32

	Logger Logger
}

// Renderer drives the particle field: it owns the particle seed, the pointer
// and viewport state and the current program, and schedules one compute
// dispatch and one draw per frame.
type Renderer struct {
	Device   Device
	Store    *core.ParticleStore
	Pointer  core.Pointer
	Viewport core.Viewport
	Profiler *Profiler

	RepulsionRadius   float32
	RepulsionStrength float32
	Clock             func() float32

	log Logger

	mu      sync.Mutex
	program Program
}

func NewRenderer(device Device, opts Options) *Renderer {
	if opts.ParticleCount <= 0 {
		opts.ParticleCount = 10000
	}
	if opts.RepulsionRadius == 0 {
		opts.RepulsionRadius = core.DefaultRepulsionRadius
	}
	if opts.RepulsionStrength == 0 {
		opts.RepulsionStrength = core.DefaultRepulsionStrength
	}
	var log Logger = nopLogger{}
	if opts.Logger != nil {
		log = opts.Logger
	}
	return &Renderer{
		Device:            device,
		Store:             core.NewParticleStore(opts.ParticleCount),
		Profiler:          NewProfiler(),
		RepulsionRadius:   opts.RepulsionRadius,
		RepulsionStrength: opts.RepulsionStrength,
		Clock:             opts.Clock,
		log:               log,
	}
}

// Program returns the current program, or nil if none compiled yet.
func (r *Renderer) Program() Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.program
}

func (r *Renderer) SetPointer(x, y float32) {
	r.Pointer.Set(x, y)
}

// Resize records the new drawable size and re-seeds every particle for it.
// Velocities and positions from before the resize are discarded.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.Viewport.Set(float32(width), float32(height))
	r.Device.Configure(width, height)

	r.Store.Reset(float32(width), float32(height))
	if err := r.Device.WriteParticles(r.Store.Bytes()); err != nil {
		r.log.Errorf("particle upload failed: %v", err)
	}
	r.Profiler.Inc("resets")
}

// LoadProgram compiles source and makes it current. When compilation yields
// no program at all the previous one stays in use. Partial programs replace
// it; the missing stage is skipped at draw time.
func (r *Renderer) LoadProgram(label, source string) error {
	prog, err := r.Device.CompileProgram(label, source)
	if err != nil {
		r.log.Errorf("%v", err)
	}
	if prog == nil {
		return err
	}

	r.mu.Lock()
	prev := r.program
	r.program = prog
	r.mu.Unlock()

	if prev != nil {
		prev.Release()
	}
	r.log.Infof("program %q ready (compute=%v render=%v width=%d)",
		label, prog.HasCompute(), prog.HasRender(), prog.ThreadExecutionWidth())
	return err
}

// Reload reads the source through load and compiles it. A read failure
// leaves the current program untouched.
func (r *Renderer) Reload(label string, load func() (string, error)) error {
	src, err := load()
	if err != nil {
		r.log.Errorf("%v", err)
		return err
	}
	return r.LoadProgram(label, src)
}

// Uniforms builds this frame's parameters.
func (r *Renderer) Uniforms() core.Uniforms {
	var t float32
	if r.Clock != nil {
		t = r.Clock()
	}
	return core.Uniforms{
		PointerPosition:   r.Pointer.Get(),
		Time:              t,
		Resolution:        r.Viewport.Resolution(),
		RepulsionRadius:   r.RepulsionRadius,
		RepulsionStrength: r.RepulsionStrength,
	}
}

// Render runs one frame. If no drawable is available the frame is skipped.
// Missing compute or render stages are skipped individually.
func (r *Renderer) Render() {
	r.Profiler.BeginScope("Frame")
	defer r.Profiler.EndScope("Frame")

	frame, err := r.Device.NextFrame()
	if err != nil || frame == nil {
		r.Profiler.Inc("skipped")
		r.log.Debugf("frame skipped: %v", err)
		return
	}

	if err := frame.WriteUniforms(r.Uniforms()); err != nil {
		r.log.Errorf("uniform upload failed: %v", err)
	}

	prog := r.Program()
	n := r.Store.Len()

	if prog != nil && prog.HasCompute() {
		groups := gpu.ThreadGroups(n, prog.ThreadExecutionWidth())
		if err := frame.Dispatch(prog, groups); err != nil {
			r.log.Errorf("compute pass: %v", err)
		}
	}

	if prog != nil && prog.HasRender() {
		if err := frame.Draw(prog, uint32(n)); err != nil {
			r.log.Errorf("render pass: %v", err)
		}
	}

	if err := frame.Present(); err != nil {
		r.log.Errorf("present: %v", err)
	}
	r.Profiler.Inc("frames")
}

func (r *Renderer) Release() {
	r.mu.Lock()
	prog := r.program
	r.program = nil
	r.mu.Unlock()

	if prog != nil {
		prog.Release()
	}
	if r.Device != nil {
		r.Device.Release()
	}
}
