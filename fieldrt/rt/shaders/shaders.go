package shaders

import "embed"

const (
	ParticlesFile   = "particles.wgsl"
	DefinitionsFile = "definitions.wgsl"
)

//go:embed particles.wgsl
var ParticlesWGSL string

//go:embed definitions.wgsl
var DefinitionsWGSL string

// Embedded exposes the bundled shader files for LoadFS.
//
//go:embed *.wgsl
var Embedded embed.FS
