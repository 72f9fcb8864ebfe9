package repel

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyR int = iota
	KeyEscape
	KeySpace
	MouseButtonLeft
	keyCount
)

type InputModule struct{}

type Input struct {
	Pressed [keyCount]bool

	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	// Pointer position in framebuffer pixels, origin top-left.
	PointerX, PointerY float32

	FramebufferWidth, FramebufferHeight int
	// Resized is set for the step in which the framebuffer size changed.
	Resized bool
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate),
	)
}

func inputSystem(s *WindowState, input *Input) {
	glfw.PollEvents()

	for key, glfwKey := range keyToGlfw {
		input.setKey(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
	input.setKey(MouseButtonLeft, s.windowGlfw.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press)

	fbW, fbH := s.windowGlfw.GetFramebufferSize()
	input.setFramebufferSize(fbW, fbH)

	winW, winH := s.windowGlfw.GetSize()
	cx, cy := s.windowGlfw.GetCursorPos()
	input.PointerX, input.PointerY = scalePointer(cx, cy, winW, winH, fbW, fbH)

	if input.JustPressed[KeyEscape] {
		s.windowGlfw.SetShouldClose(true)
	}
}

func (input *Input) setKey(key int, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

func (input *Input) setFramebufferSize(width, height int) {
	input.Resized = width != input.FramebufferWidth || height != input.FramebufferHeight
	input.FramebufferWidth = width
	input.FramebufferHeight = height
}

// scalePointer maps a cursor position in window coordinates to framebuffer
// pixels. A zero-sized window yields the unscaled position.
func scalePointer(x, y float64, winW, winH, fbW, fbH int) (float32, float32) {
	sx, sy := 1.0, 1.0
	if winW > 0 && winH > 0 {
		sx = float64(fbW) / float64(winW)
		sy = float64(fbH) / float64(winH)
	}
	return float32(x * sx), float32(y * sy)
}

var keyToGlfw = map[int]glfw.Key{
	KeyR:      glfw.KeyR,
	KeyEscape: glfw.KeyEscape,
	KeySpace:  glfw.KeySpace,
}
