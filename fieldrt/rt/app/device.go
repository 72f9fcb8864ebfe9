package app

import (
	"errors"
	"fmt"

	"github.com/gekko3d/repel/fieldrt/rt/core"
	"github.com/gekko3d/repel/fieldrt/rt/gpu"
)

// WGPUDevice is the Device backed by a gpu.Context and its particle buffers.
type WGPUDevice struct {
	Ctx     *gpu.Context
	Buffers *gpu.ParticleBuffers
}

func NewWGPUDevice(ctx *gpu.Context, particleCount int) (*WGPUDevice, error) {
	buffers, err := gpu.NewParticleBuffers(ctx, particleCount, core.ParticleStride, core.UniformsSize)
	if err != nil {
		return nil, err
	}
	return &WGPUDevice{Ctx: ctx, Buffers: buffers}, nil
}

func (d *WGPUDevice) CompileProgram(label, source string) (Program, error) {
	p, err := d.Ctx.CompileProgram(label, source)
	if p == nil {
		return nil, err
	}
	if bindErr := d.Buffers.Bind(p); bindErr != nil {
		p.Release()
		return nil, errors.Join(err, bindErr)
	}
	if !p.HasCompute() && !p.HasRender() {
		p.Release()
		return nil, err
	}
	return &wgpuProgram{p: p}, err
}

func (d *WGPUDevice) WriteParticles(data []byte) error {
	return d.Buffers.WriteParticles(data)
}

func (d *WGPUDevice) Configure(width, height int) {
	d.Ctx.Resize(width, height)
}

func (d *WGPUDevice) NextFrame() (Frame, error) {
	f, err := d.Ctx.NextFrame(d.Buffers)
	if err != nil {
		return nil, err
	}
	return &wgpuFrame{f: f}, nil
}

func (d *WGPUDevice) Release() {
	if d.Buffers != nil {
		d.Buffers.Release()
		d.Buffers = nil
	}
	if d.Ctx != nil {
		d.Ctx.Release()
		d.Ctx = nil
	}
}

type wgpuProgram struct {
	p *gpu.Program
}

func (w *wgpuProgram) HasCompute() bool             { return w.p.HasCompute() }
func (w *wgpuProgram) HasRender() bool              { return w.p.HasRender() }
func (w *wgpuProgram) ThreadExecutionWidth() uint32 { return w.p.WorkgroupWidth }
func (w *wgpuProgram) Release()                     { w.p.Release() }

type wgpuFrame struct {
	f *gpu.Frame
}

func unwrapProgram(p Program) (*gpu.Program, error) {
	wp, ok := p.(*wgpuProgram)
	if !ok {
		return nil, fmt.Errorf("app: program %T was not compiled by this device", p)
	}
	return wp.p, nil
}

func (w *wgpuFrame) WriteUniforms(u core.Uniforms) error {
	return w.f.WriteUniforms(u.Bytes())
}

func (w *wgpuFrame) Dispatch(p Program, groups uint32) error {
	gp, err := unwrapProgram(p)
	if err != nil {
		return err
	}
	return w.f.Dispatch(gp, groups)
}

func (w *wgpuFrame) Draw(p Program, vertexCount uint32) error {
	gp, err := unwrapProgram(p)
	if err != nil {
		return err
	}
	return w.f.Draw(gp, vertexCount)
}

func (w *wgpuFrame) Present() error {
	return w.f.Present()
}
