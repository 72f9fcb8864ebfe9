package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ParticleBuffers holds the storage buffer shared by the compute (writer) and
// render (reader) stages plus the per-frame uniform buffer. Both are allocated
// once; the particle count never changes.
type ParticleBuffers struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue

	ParticleBuf *wgpu.Buffer
	UniformBuf  *wgpu.Buffer

	Count int
}

func NewParticleBuffers(c *Context, count, stride, uniformSize int) (*ParticleBuffers, error) {
	b := &ParticleBuffers{
		Device: c.Device,
		Queue:  c.Queue,
		Count:  count,
	}
	if err := b.createBuffer("Particles", &b.ParticleBuf, count*stride, wgpu.BufferUsageStorage); err != nil {
		return nil, err
	}
	if err := b.createBuffer("Uniforms", &b.UniformBuf, uniformSize, wgpu.BufferUsageUniform); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

func (b *ParticleBuffers) createBuffer(name string, buf **wgpu.Buffer, size int, usage wgpu.BufferUsage) error {
	neededSize := uint64(size)
	if neededSize%4 != 0 {
		neededSize += 4 - (neededSize % 4)
	}
	newBuf, err := b.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            name,
		Size:             neededSize,
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("gpu: create %s buffer: %w", name, err)
	}
	*buf = newBuf
	return nil
}

// WriteParticles replaces the whole particle buffer.
func (b *ParticleBuffers) WriteParticles(data []byte) error {
	if uint64(len(data)) > b.ParticleBuf.GetSize() {
		return fmt.Errorf("gpu: particle data %d bytes exceeds buffer %d", len(data), b.ParticleBuf.GetSize())
	}
	return b.Queue.WriteBuffer(b.ParticleBuf, 0, data)
}

func (b *ParticleBuffers) WriteUniforms(data []byte) error {
	return b.Queue.WriteBuffer(b.UniformBuf, 0, data)
}

// Bind creates the bind groups of prog's pipelines against these buffers.
//
// compute: @group(0) { 0: particles rw, 1: uniforms }
// render:  @group(0) { 1: uniforms }, @group(1) { 0: particles ro }
func (b *ParticleBuffers) Bind(prog *Program) error {
	prog.releaseBindGroups()

	var err error
	if prog.Compute != nil {
		prog.ComputeBindGroup, err = b.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  prog.Label + " compute bg0",
			Layout: prog.Compute.GetBindGroupLayout(0),
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: b.ParticleBuf, Size: wgpu.WholeSize},
				{Binding: 1, Buffer: b.UniformBuf, Size: wgpu.WholeSize},
			},
		})
		if err != nil {
			return fmt.Errorf("gpu: compute bind group: %w", err)
		}
	}

	if prog.Render != nil {
		prog.RenderBindGroup0, err = b.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  prog.Label + " render bg0",
			Layout: prog.Render.GetBindGroupLayout(0),
			Entries: []wgpu.BindGroupEntry{
				{Binding: 1, Buffer: b.UniformBuf, Size: wgpu.WholeSize},
			},
		})
		if err != nil {
			return fmt.Errorf("gpu: render bind group 0: %w", err)
		}
		prog.RenderBindGroup1, err = b.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  prog.Label + " render bg1",
			Layout: prog.Render.GetBindGroupLayout(1),
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: b.ParticleBuf, Size: wgpu.WholeSize},
			},
		})
		if err != nil {
			return fmt.Errorf("gpu: render bind group 1: %w", err)
		}
	}
	return nil
}

func (b *ParticleBuffers) Release() {
	if b.ParticleBuf != nil {
		b.ParticleBuf.Release()
		b.ParticleBuf = nil
	}
	if b.UniformBuf != nil {
		b.UniformBuf.Release()
		b.UniformBuf = nil
	}
}
