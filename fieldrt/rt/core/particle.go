package core

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ParticleStride is the byte size of one Particle in the WGSL storage buffer.
// struct Particle { position: vec2<f32>, velocity: vec2<f32>, originalPosition: vec2<f32> }
const ParticleStride = 24

// Particle matches the WGSL layout in definitions.wgsl.
type Particle struct {
	Position         mgl32.Vec2
	Velocity         mgl32.Vec2
	OriginalPosition mgl32.Vec2
}

// GridLayout is the column/row split used to seed particles.
// Cols*Rows may be less than Count; the remaining indices keep counting
// rows past the last one.
type GridLayout struct {
	Count int
	Cols  int
	Rows  int
}

func NewGridLayout(count int) GridLayout {
	if count < 1 {
		count = 1
	}
	cols := int(math.Sqrt(float64(count)))
	if cols < 1 {
		cols = 1
	}
	return GridLayout{
		Count: count,
		Cols:  cols,
		Rows:  count / cols,
	}
}

// Excess is the number of particles that fall outside cols*rows.
func (g GridLayout) Excess() int {
	return g.Count - g.Cols*g.Rows
}

// Spacing returns the cell size for a viewport of the given size.
func (g GridLayout) Spacing(width, height float32) (float32, float32) {
	return width / float32(g.Cols), height / float32(g.Rows)
}

// Cell returns the min/max corners of the cell that index i is seeded into.
func (g GridLayout) Cell(i int, width, height float32) (mgl32.Vec2, mgl32.Vec2) {
	sx, sy := g.Spacing(width, height)
	col := i % g.Cols
	row := i / g.Cols
	lo := mgl32.Vec2{float32(col) * sx, float32(row) * sy}
	return lo, lo.Add(mgl32.Vec2{sx, sy})
}

// ParticleStore is the CPU-side seed for the particle storage buffer.
// Capacity is fixed at construction.
type ParticleStore struct {
	particles []Particle
	layout    GridLayout
}

func NewParticleStore(capacity int) *ParticleStore {
	layout := NewGridLayout(capacity)
	return &ParticleStore{
		particles: make([]Particle, layout.Count),
		layout:    layout,
	}
}

func (s *ParticleStore) Len() int              { return len(s.particles) }
func (s *ParticleStore) Layout() GridLayout    { return s.layout }
func (s *ParticleStore) Particles() []Particle { return s.particles }

// Reset places every particle at the centre of its grid cell for the given
// viewport, zeroes velocity and anchors OriginalPosition to the new position.
func (s *ParticleStore) Reset(width, height float32) {
	sx, sy := s.layout.Spacing(width, height)
	cols := s.layout.Cols

	for i := range s.particles {
		col := i % cols
		row := i / cols

		pos := mgl32.Vec2{
			float32(col)*sx + sx*0.5,
			float32(row)*sy + sy*0.5,
		}
		s.particles[i] = Particle{
			Position:         pos,
			Velocity:         mgl32.Vec2{},
			OriginalPosition: pos,
		}
	}
}

// Bytes packs the store into the little-endian storage buffer image.
func (s *ParticleStore) Bytes() []byte {
	buf := make([]byte, len(s.particles)*ParticleStride)
	for i, p := range s.particles {
		off := i * ParticleStride
		putVec2(buf[off:], p.Position)
		putVec2(buf[off+8:], p.Velocity)
		putVec2(buf[off+16:], p.OriginalPosition)
	}
	return buf
}

func putVec2(buf []byte, v mgl32.Vec2) {
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v[1]))
}
