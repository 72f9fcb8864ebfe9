package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Frame records one tick's work against the acquired surface texture.
// Passes are recorded in call order, so a Dispatch before Draw is seen by it.
type Frame struct {
	ctx     *Context
	buffers *ParticleBuffers

	texture *wgpu.Texture
	view    *wgpu.TextureView
	encoder *wgpu.CommandEncoder

	drawn bool
}

// NextFrame acquires the next surface texture. An error means the surface is
// not ready and the caller should skip this tick.
func (c *Context) NextFrame(buffers *ParticleBuffers) (*Frame, error) {
	texture, err := c.Surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	if texture == nil {
		return nil, fmt.Errorf("gpu: no surface texture")
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, err
	}

	encoder, err := c.Device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		texture.Release()
		return nil, err
	}

	return &Frame{
		ctx:     c,
		buffers: buffers,
		texture: texture,
		view:    view,
		encoder: encoder,
	}, nil
}

func (f *Frame) WriteUniforms(data []byte) error {
	return f.buffers.WriteUniforms(data)
}

// Dispatch records the compute pass over groups workgroups.
func (f *Frame) Dispatch(p *Program, groups uint32) error {
	pass := f.encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: p.Label + " compute"})
	pass.SetPipeline(p.Compute)
	pass.SetBindGroup(0, p.ComputeBindGroup, nil)
	pass.DispatchWorkgroups(groups, 1, 1)
	err := pass.End()
	pass.Release()
	return err
}

// Draw records the render pass: clear, then vertexCount points when p has a
// render pipeline.
func (f *Frame) Draw(p *Program, vertexCount uint32) error {
	pass := f.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       f.view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: f.ctx.ClearColor,
		}},
	})
	if p.HasRender() {
		pass.SetPipeline(p.Render)
		pass.SetBindGroup(0, p.RenderBindGroup0, nil)
		pass.SetBindGroup(1, p.RenderBindGroup1, nil)
		pass.Draw(vertexCount, 1, 0, 0)
	}
	err := pass.End()
	pass.Release()
	f.drawn = true
	return err
}

// Present submits the recorded commands and presents the surface texture.
// A frame that recorded no render pass is still cleared.
func (f *Frame) Present() error {
	defer f.release()

	if !f.drawn {
		if err := f.Draw(nil, 0); err != nil {
			return err
		}
	}

	cmd, err := f.encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("gpu: encoder finish: %w", err)
	}
	defer cmd.Release()

	f.ctx.Queue.Submit(cmd)
	f.ctx.Surface.Present()
	return nil
}

func (f *Frame) release() {
	if f.encoder != nil {
		f.encoder.Release()
		f.encoder = nil
	}
	if f.view != nil {
		f.view.Release()
		f.view = nil
	}
	if f.texture != nil {
		f.texture.Release()
		f.texture = nil
	}
}
