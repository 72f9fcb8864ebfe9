package core

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultRepulsionRadius   float32 = 300
	DefaultRepulsionStrength float32 = 2

	// UniformsSize is the WGSL uniform-buffer size of Uniforms.
	UniformsSize = 32
)

// Uniforms are the per-frame parameters shared by the compute and render stages.
type Uniforms struct {
	PointerPosition   mgl32.Vec2
	Time              float32
	Resolution        mgl32.Vec2
	RepulsionRadius   float32
	RepulsionStrength float32
}

// Bytes packs the uniforms using WGSL uniform layout rules.
func (u Uniforms) Bytes() []byte {
	// struct Uniforms {
	//   pointerPosition: vec2<f32>;   -- 0
	//   time: f32;                    -- 8
	//   (pad)                         -- 12
	//   resolution: vec2<f32>;        -- 16
	//   repulsionRadius: f32;         -- 24
	//   repulsionStrength: f32;       -- 28
	// } -> 32 bytes
	buf := make([]byte, UniformsSize)
	putVec2(buf[0:], u.PointerPosition)
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(u.Time))
	putVec2(buf[16:], u.Resolution)
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(u.RepulsionRadius))
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(u.RepulsionStrength))
	return buf
}
