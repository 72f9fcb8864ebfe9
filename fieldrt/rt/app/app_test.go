package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/repel/fieldrt/rt/core"
	"github.com/gekko3d/repel/fieldrt/rt/shaders"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProgram struct {
	compute, render bool
	width           uint32
	released        bool
}

func (p *fakeProgram) HasCompute() bool             { return p.compute }
func (p *fakeProgram) HasRender() bool              { return p.render }
func (p *fakeProgram) ThreadExecutionWidth() uint32 { return p.width }
func (p *fakeProgram) Release()                     { p.released = true }

type call struct {
	op     string
	groups uint32
	count  uint32
}

type fakeFrame struct {
	dev      *fakeDevice
	uniforms []core.Uniforms
}

func (f *fakeFrame) WriteUniforms(u core.Uniforms) error {
	f.uniforms = append(f.uniforms, u)
	f.dev.calls = append(f.dev.calls, call{op: "uniforms"})
	return nil
}

func (f *fakeFrame) Dispatch(p Program, groups uint32) error {
	f.dev.calls = append(f.dev.calls, call{op: "dispatch", groups: groups})
	return nil
}

func (f *fakeFrame) Draw(p Program, n uint32) error {
	f.dev.calls = append(f.dev.calls, call{op: "draw", count: n})
	// the render stage reads whatever the store last uploaded
	f.dev.drawnFrom = append([]byte(nil), f.dev.uploaded...)
	return nil
}

func (f *fakeFrame) Present() error {
	f.dev.calls = append(f.dev.calls, call{op: "present"})
	return nil
}

type fakeDevice struct {
	unavailable bool
	compile     func(label, src string) (Program, error)
	compiled    []string

	calls      []call
	frames     []*fakeFrame
	uploaded   []byte
	uploads    int
	drawnFrom  []byte
	configured [][2]int
	released   bool
}

func (d *fakeDevice) CompileProgram(label, src string) (Program, error) {
	d.compiled = append(d.compiled, src)
	if d.compile != nil {
		return d.compile(label, src)
	}
	return &fakeProgram{compute: true, render: true, width: 32}, nil
}

func (d *fakeDevice) WriteParticles(data []byte) error {
	d.uploaded = data
	d.uploads++
	return nil
}

func (d *fakeDevice) Configure(w, h int) { d.configured = append(d.configured, [2]int{w, h}) }

func (d *fakeDevice) NextFrame() (Frame, error) {
	if d.unavailable {
		return nil, errors.New("surface not ready")
	}
	f := &fakeFrame{dev: d}
	d.frames = append(d.frames, f)
	return f, nil
}

func (d *fakeDevice) Release() { d.released = true }

func ops(calls []call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.op
	}
	return out
}

func TestRender_FullFrameOrder(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRenderer(dev, Options{ParticleCount: 10000})
	require.NoError(t, r.LoadProgram("particles", shaders.Default()))
	r.Resize(800, 600)
	r.SetPointer(100, 200)

	r.Render()

	assert.Equal(t, []string{"uniforms", "dispatch", "draw", "present"}, ops(dev.calls))
	assert.Equal(t, uint32(313), dev.calls[1].groups)
	assert.Equal(t, uint32(10000), dev.calls[2].count)

	require.Len(t, dev.frames, 1)
	u := dev.frames[0].uniforms[0]
	assert.Equal(t, mgl32.Vec2{100, 200}, u.PointerPosition)
	assert.Equal(t, mgl32.Vec2{800, 600}, u.Resolution)
	assert.Equal(t, float32(300), u.RepulsionRadius)
	assert.Equal(t, float32(2), u.RepulsionStrength)
	assert.Equal(t, float32(0), u.Time)
	assert.Equal(t, 1, r.Profiler.Count("frames"))
}

func TestRender_SkipsWhenNoDrawable(t *testing.T) {
	dev := &fakeDevice{unavailable: true}
	r := NewRenderer(dev, Options{ParticleCount: 100})
	require.NoError(t, r.LoadProgram("particles", "src"))

	r.Render()
	r.Render()

	assert.Empty(t, dev.calls)
	assert.Equal(t, 2, r.Profiler.Count("skipped"))
	assert.Equal(t, 0, r.Profiler.Count("frames"))

	// recovers on the next tick
	dev.unavailable = false
	r.Render()
	assert.Equal(t, []string{"uniforms", "dispatch", "draw", "present"}, ops(dev.calls))
}

func TestRender_WithoutComputeStillDrawsSeedPositions(t *testing.T) {
	dev := &fakeDevice{compile: func(string, string) (Program, error) {
		return &fakeProgram{render: true, width: 64}, errors.New("compute stage rejected")
	}}
	r := NewRenderer(dev, Options{ParticleCount: 400})
	err := r.LoadProgram("particles", "src")
	require.Error(t, err)
	require.NotNil(t, r.Program())

	r.Resize(640, 480)
	seed := r.Store.Bytes()

	r.Render()

	assert.Equal(t, []string{"uniforms", "draw", "present"}, ops(dev.calls))
	assert.Equal(t, seed, dev.drawnFrom)
}

func TestRender_WithoutAnyProgramPresentsBlank(t *testing.T) {
	dev := &fakeDevice{compile: func(string, string) (Program, error) {
		return nil, errors.New("module rejected")
	}}
	r := NewRenderer(dev, Options{ParticleCount: 10})
	assert.Error(t, r.LoadProgram("particles", "garbage"))
	assert.Nil(t, r.Program())

	assert.NotPanics(t, r.Render)
	assert.Equal(t, []string{"uniforms", "present"}, ops(dev.calls))
}

func TestRender_WithoutRenderStillDispatches(t *testing.T) {
	dev := &fakeDevice{compile: func(string, string) (Program, error) {
		return &fakeProgram{compute: true, width: 64}, errors.New("render stage rejected")
	}}
	r := NewRenderer(dev, Options{ParticleCount: 10000})
	_ = r.LoadProgram("particles", "src")

	r.Render()

	assert.Equal(t, []string{"uniforms", "dispatch", "present"}, ops(dev.calls))
	assert.Equal(t, uint32(157), dev.calls[1].groups)
}

func TestRender_ClockFeedsTime(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRenderer(dev, Options{ParticleCount: 10, Clock: func() float32 { return 2.5 }})
	r.Render()
	assert.Equal(t, float32(2.5), dev.frames[0].uniforms[0].Time)
}

func TestResize_ReseedsAndUploads(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRenderer(dev, Options{ParticleCount: 100})

	sizes := [][2]int{{800, 600}, {1024, 768}, {300, 300}}
	for i, sz := range sizes {
		r.Resize(sz[0], sz[1])

		want := core.NewParticleStore(100)
		want.Reset(float32(sz[0]), float32(sz[1]))
		assert.Equal(t, want.Bytes(), dev.uploaded, "resize %d", i)
		assert.Equal(t, i+1, dev.uploads)
	}
	assert.Equal(t, sizes, dev.configured)

	w, h := r.Viewport.Size()
	assert.Equal(t, float32(300), w)
	assert.Equal(t, float32(300), h)
}

func TestResize_IgnoresEmptySize(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRenderer(dev, Options{ParticleCount: 100})
	r.Resize(800, 600)
	r.Resize(0, 0)
	r.Resize(-1, 600)

	assert.Equal(t, 1, dev.uploads)
	assert.Len(t, dev.configured, 1)
}

func TestReload_MissingHeaderKeepsNoProgram(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "particles.wgsl")
	require.NoError(t, os.WriteFile(mainPath, []byte(shaders.ParticlesWGSL), 0o644))
	headerPath := filepath.Join(dir, "definitions.wgsl")

	dev := &fakeDevice{}
	r := NewRenderer(dev, Options{ParticleCount: 10})
	err := r.Reload("particles", func() (string, error) { return shaders.Load(mainPath, headerPath) })

	assert.ErrorIs(t, err, shaders.ErrIO)
	assert.Nil(t, r.Program())
	assert.Empty(t, dev.compiled)
}

func TestReload_FailureKeepsPreviousProgram(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRenderer(dev, Options{ParticleCount: 10})
	require.NoError(t, r.LoadProgram("particles", "v1"))
	first := r.Program()

	err := r.Reload("particles", func() (string, error) { return "", &shaders.IOError{Path: "x"} })
	assert.Error(t, err)
	assert.Same(t, first, r.Program())

	require.NoError(t, r.Reload("particles", func() (string, error) { return "v2", nil }))
	assert.NotSame(t, first, r.Program())
	assert.True(t, first.(*fakeProgram).released)
	assert.Equal(t, []string{"v1", "v2"}, dev.compiled)
}

func TestRelease(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRenderer(dev, Options{})
	require.NoError(t, r.LoadProgram("particles", "src"))
	prog := r.Program().(*fakeProgram)

	r.Release()

	assert.True(t, prog.released)
	assert.True(t, dev.released)
	assert.Nil(t, r.Program())
	assert.Equal(t, 10000, r.Store.Len())
}
