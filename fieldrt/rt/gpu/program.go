package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrCompile is wrapped by every CompileError.
var ErrCompile = errors.New("gpu: shader program rejected")

// CompileError carries the diagnostic for a module or stage that failed to build.
type CompileError struct {
	Label      string
	Stage      string
	Diagnostic string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("gpu: compile %s (%s): %s", e.Label, e.Stage, e.Diagnostic)
}

func (e *CompileError) Unwrap() error { return ErrCompile }

// Program is a compiled particle program. Either pipeline may be nil when its
// stage failed to build.
type Program struct {
	Label          string
	Compute        *wgpu.ComputePipeline
	Render         *wgpu.RenderPipeline
	WorkgroupWidth uint32

	ComputeBindGroup *wgpu.BindGroup
	RenderBindGroup0 *wgpu.BindGroup // uniforms
	RenderBindGroup1 *wgpu.BindGroup // particles (read-only)
}

func (p *Program) HasCompute() bool { return p != nil && p.Compute != nil }
func (p *Program) HasRender() bool  { return p != nil && p.Render != nil }

// CompileProgram builds the shader module for source and then the compute and
// render pipelines independently. A module failure returns no program. A stage
// failure returns the program with that stage missing, plus the error.
func (c *Context) CompileProgram(label, source string) (*Program, error) {
	module, err := c.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
	})
	if err != nil {
		return nil, &CompileError{Label: label, Stage: "module", Diagnostic: err.Error()}
	}
	defer module.Release()

	prog := &Program{Label: label}
	var errs []error

	if err := c.buildCompute(prog, module, source); err != nil {
		errs = append(errs, err)
	}
	if err := c.buildRender(prog, module, source); err != nil {
		errs = append(errs, err)
	}

	return prog, errors.Join(errs...)
}

func (c *Context) buildCompute(prog *Program, module *wgpu.ShaderModule, source string) error {
	if !HasEntryPoint(source, ComputeEntryPoint) {
		return &CompileError{Label: prog.Label, Stage: "compute", Diagnostic: "missing entry point " + ComputeEntryPoint}
	}

	width, ok := WorkgroupWidth(source, ComputeEntryPoint)
	if !ok {
		width = DefaultWorkgroupWidth
	}

	pipeline, err := c.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: prog.Label + " compute",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: ComputeEntryPoint,
		},
	})
	if err != nil {
		return &CompileError{Label: prog.Label, Stage: "compute", Diagnostic: err.Error()}
	}
	prog.Compute = pipeline
	prog.WorkgroupWidth = width
	return nil
}

func (c *Context) buildRender(prog *Program, module *wgpu.ShaderModule, source string) error {
	for _, entry := range []string{VertexEntryPoint, FragmentEntryPoint} {
		if !HasEntryPoint(source, entry) {
			return &CompileError{Label: prog.Label, Stage: "render", Diagnostic: "missing entry point " + entry}
		}
	}

	pipeline, err := c.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: prog.Label + " render",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: VertexEntryPoint,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    c.Config.Format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyPointList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return &CompileError{Label: prog.Label, Stage: "render", Diagnostic: err.Error()}
	}
	prog.Render = pipeline
	return nil
}

func (p *Program) releaseBindGroups() {
	for _, bg := range []**wgpu.BindGroup{&p.ComputeBindGroup, &p.RenderBindGroup0, &p.RenderBindGroup1} {
		if *bg != nil {
			(*bg).Release()
			*bg = nil
		}
	}
}

func (p *Program) Release() {
	if p == nil {
		return
	}
	p.releaseBindGroups()
	if p.Compute != nil {
		p.Compute.Release()
		p.Compute = nil
	}
	if p.Render != nil {
		p.Render.Release()
		p.Render = nil
	}
}
