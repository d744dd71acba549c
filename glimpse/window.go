package glimpse

import (
	"time"

	"github.com/cogentcore/webgpu/wgpu"
)

// Size is the size of a window, either in points or in framebuffer pixels.
type Size struct {
	Width  uint32
	Height uint32
}

func (s Size) IsEmpty() bool {
	return s.Width == 0 || s.Height == 0
}

// Position of a window on the screen.
type Position struct {
	X, Y int
}

// Window is the capability set a window back-end needs to provide.
type Window interface {
	ShouldClose() bool
	SetShouldClose(value bool)

	// Size returns the size of the window in points.
	Size() Size

	// DrawSize returns the size of the framebuffer in pixels.
	DrawSize() Size

	SwapBuffers()

	// PollEvent returns the next pending input without blocking.
	PollEvent() (Input, bool)

	// WaitEvent blocks until input is available.
	WaitEvent() Input

	// WaitEventTimeout blocks until input is available or the timeout elapsed.
	WaitEventTimeout(timeout time.Duration) (Input, bool)

	Title() string
	SetTitle(title string)

	ExitOnEsc() bool
	SetExitOnEsc(value bool)

	AutomaticClose() bool
	SetAutomaticClose(value bool)

	SetCaptureCursor(value bool)

	Show()
	Hide()

	Position() (Position, bool)
	SetPosition(pos Position)

	SetSize(size Size)

	// SurfaceDescriptor returns the descriptor to create a wgpu surface
	// presenting to this window.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Terminate destroys the window.
	Terminate()
}
