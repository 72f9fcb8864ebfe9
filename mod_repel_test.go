package repel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/repel/fieldrt/rt/app"
	"github.com/gekko3d/repel/fieldrt/rt/core"
	"github.com/gekko3d/repel/fieldrt/rt/shaders"
)

type stubProgram struct{ released bool }

func (p *stubProgram) HasCompute() bool             { return true }
func (p *stubProgram) HasRender() bool              { return true }
func (p *stubProgram) ThreadExecutionWidth() uint32 { return 64 }
func (p *stubProgram) Release()                     { p.released = true }

type stubFrame struct{ d *stubDevice }

func (f *stubFrame) WriteUniforms(u core.Uniforms) error {
	f.d.uniforms = append(f.d.uniforms, u)
	return nil
}
func (f *stubFrame) Dispatch(p app.Program, groups uint32) error { return nil }
func (f *stubFrame) Draw(p app.Program, n uint32) error          { return nil }
func (f *stubFrame) Present() error                              { return nil }

type stubDevice struct {
	sources    []string
	configured [][2]int
	uploads    int
	uniforms   []core.Uniforms
	released   bool
}

func (d *stubDevice) CompileProgram(label, src string) (app.Program, error) {
	d.sources = append(d.sources, src)
	return &stubProgram{}, nil
}
func (d *stubDevice) WriteParticles(data []byte) error { d.uploads++; return nil }
func (d *stubDevice) Configure(w, h int)               { d.configured = append(d.configured, [2]int{w, h}) }
func (d *stubDevice) NextFrame() (app.Frame, error)    { return &stubFrame{d: d}, nil }
func (d *stubDevice) Release()                         { d.released = true }

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Particles.Count = 100
	return cfg
}

func TestNewRepelState_SeedsAndCompilesEmbeddedShader(t *testing.T) {
	dev := &stubDevice{}
	assets := newAssetServer(shaders.Embedded)

	state, err := newRepelState(dev, assets, testConfig(t), NewNopLogger(), nil, 1024, 768)
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{1024, 768}}, dev.configured)
	assert.Equal(t, 1, dev.uploads)
	require.Len(t, dev.sources, 1)
	assert.Equal(t, shaders.Default(), dev.sources[0])
	assert.NotNil(t, state.Renderer.Program())
}

func TestNewRepelState_DefaultViewport(t *testing.T) {
	dev := &stubDevice{}
	state, err := newRepelState(dev, newAssetServer(shaders.Embedded), testConfig(t), NewNopLogger(), nil, 0, 0)
	require.NoError(t, err)

	w, h := state.Renderer.Viewport.Size()
	assert.Equal(t, float32(800), w)
	assert.Equal(t, float32(600), h)
}

func TestNewRepelState_MissingShaderLeavesNoProgram(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.Shaders.Main = filepath.Join(dir, "main.wgsl")
	cfg.Shaders.Header = filepath.Join(dir, "defs.wgsl")
	require.NoError(t, os.WriteFile(cfg.Shaders.Main, []byte("fn a() {}"), 0o644))

	dev := &stubDevice{}
	state, err := newRepelState(dev, newAssetServer(shaders.Embedded), cfg, NewNopLogger(), nil, 800, 600)

	require.Error(t, err)
	assert.True(t, errors.Is(err, shaders.ErrIO))
	assert.Empty(t, dev.sources, "nothing compiled")
	assert.Nil(t, state.Renderer.Program())
}

func TestRepelInputSystem(t *testing.T) {
	dev := &stubDevice{}
	assets := newAssetServer(shaders.Embedded)
	state, err := newRepelState(dev, assets, testConfig(t), NewNopLogger(), nil, 800, 600)
	require.NoError(t, err)
	first := state.Renderer.Program().(*stubProgram)

	input := &Input{PointerX: 12, PointerY: 34}
	input.setFramebufferSize(800, 600)
	input.setFramebufferSize(1600, 1200)
	input.setKey(KeyR, true)

	cmd := newApp().Commands()
	repelInputSystem(cmd, state, input, assets)

	assert.Equal(t, float32(12), state.Renderer.Pointer.Get().X())
	assert.Equal(t, float32(34), state.Renderer.Pointer.Get().Y())
	assert.Equal(t, [2]int{1600, 1200}, dev.configured[len(dev.configured)-1])
	assert.Equal(t, 2, dev.uploads)
	assert.Len(t, dev.sources, 2, "R reloads")
	assert.True(t, first.released)
}

func TestRepelRenderAndShutdown(t *testing.T) {
	dev := &stubDevice{}
	state, err := newRepelState(dev, newAssetServer(shaders.Embedded), testConfig(t), NewNopLogger(), nil, 800, 600)
	require.NoError(t, err)

	repelRenderSystem(state)
	require.Len(t, dev.uniforms, 1)
	assert.Equal(t, float32(0), dev.uniforms[0].Time)
	assert.Equal(t, float32(300), dev.uniforms[0].RepulsionRadius)

	state.Debug = true
	repelShutdownSystem(newApp().Commands(), state)
	assert.True(t, dev.released)
	assert.Equal(t, 1, state.Renderer.Profiler.Count("frames"))
}

func TestClockFor(t *testing.T) {
	cfg := testConfig(t)
	a := newApp()
	assert.Nil(t, clockFor(a, cfg))

	cfg.Simulation.UseClock = true
	clock := clockFor(a, cfg)
	require.NotNil(t, clock)
	assert.GreaterOrEqual(t, clock(), float32(0))
}
