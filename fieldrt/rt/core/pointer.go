package core

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Pointer holds the latest pointer position in framebuffer pixels.
// Writes overwrite; there is no queue.
type Pointer struct {
	mu  sync.Mutex
	pos mgl32.Vec2
}

func (p *Pointer) Set(x, y float32) {
	p.mu.Lock()
	p.pos = mgl32.Vec2{x, y}
	p.mu.Unlock()
}

func (p *Pointer) Get() mgl32.Vec2 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

// Viewport is the drawable size in pixels.
type Viewport struct {
	mu     sync.Mutex
	width  float32
	height float32
}

func (v *Viewport) Set(width, height float32) {
	v.mu.Lock()
	v.width = width
	v.height = height
	v.mu.Unlock()
}

func (v *Viewport) Size() (float32, float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

func (v *Viewport) Resolution() mgl32.Vec2 {
	w, h := v.Size()
	return mgl32.Vec2{w, h}
}
