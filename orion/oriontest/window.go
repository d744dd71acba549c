// Package oriontest provides in memory implementations of the window, gpu
// and renderer backends to test code driving an orion.Window without a
// display or a gpu.
package oriontest

import (
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/pistonwindow/glimpse"
)

// FakeClock is a manually advanced clock.
type FakeClock struct {
	now time.Time
}

func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// FakeWindow is a glimpse.Window with a scripted input queue.
type FakeWindow struct {
	// Clock is advanced while waiting for input, if set
	Clock *FakeClock

	SwapCount int

	size     glimpse.Size
	drawSize glimpse.Size

	inputs []glimpse.Input

	shouldClose    bool
	title          string
	exitOnEsc      bool
	automaticClose bool
	captureCursor  bool
	visible        bool
	position       glimpse.Position
}

var _ glimpse.Window = (*FakeWindow)(nil)

func NewFakeWindow(width, height uint32) *FakeWindow {
	size := glimpse.Size{Width: width, Height: height}

	return &FakeWindow{
		size:           size,
		drawSize:       size,
		title:          "piston",
		automaticClose: true,
		visible:        true,
	}
}

// Push queues raw input.
func (w *FakeWindow) Push(inputs ...glimpse.Input) {
	w.inputs = append(w.inputs, inputs...)
}

// Resize changes the size of the window and queues a resize input.
func (w *FakeWindow) Resize(width, height uint32) {
	w.size = glimpse.Size{Width: width, Height: height}
	w.drawSize = w.size

	w.Push(glimpse.ResizeInput{Size: w.size, DrawSize: w.drawSize})
}

// SetDrawSize changes the framebuffer size without queueing any input.
func (w *FakeWindow) SetDrawSize(size glimpse.Size) {
	w.drawSize = size
}

func (w *FakeWindow) Pending() int {
	return len(w.inputs)
}

func (w *FakeWindow) ShouldClose() bool {
	return w.shouldClose
}

func (w *FakeWindow) SetShouldClose(value bool) {
	w.shouldClose = value
}

func (w *FakeWindow) Size() glimpse.Size {
	return w.size
}

func (w *FakeWindow) DrawSize() glimpse.Size {
	return w.drawSize
}

func (w *FakeWindow) SwapBuffers() {
	w.SwapCount++
}

func (w *FakeWindow) PollEvent() (glimpse.Input, bool) {
	if len(w.inputs) == 0 {
		return nil, false
	}

	input := w.inputs[0]
	w.inputs = w.inputs[1:]

	return input, true
}

// WaitEvent returns the next queued input. If the queue is empty the
// window is closed instead of blocking forever.
func (w *FakeWindow) WaitEvent() glimpse.Input {
	if input, ok := w.PollEvent(); ok {
		return input
	}

	w.shouldClose = true
	return glimpse.CloseInput{}
}

func (w *FakeWindow) WaitEventTimeout(timeout time.Duration) (glimpse.Input, bool) {
	if input, ok := w.PollEvent(); ok {
		return input, true
	}

	if w.Clock != nil {
		w.Clock.Advance(timeout)
	}

	return nil, false
}

func (w *FakeWindow) Title() string {
	return w.title
}

func (w *FakeWindow) SetTitle(title string) {
	w.title = title
}

func (w *FakeWindow) ExitOnEsc() bool {
	return w.exitOnEsc
}

func (w *FakeWindow) SetExitOnEsc(value bool) {
	w.exitOnEsc = value
}

func (w *FakeWindow) AutomaticClose() bool {
	return w.automaticClose
}

func (w *FakeWindow) SetAutomaticClose(value bool) {
	w.automaticClose = value
}

func (w *FakeWindow) SetCaptureCursor(value bool) {
	w.captureCursor = value
}

func (w *FakeWindow) CaptureCursor() bool {
	return w.captureCursor
}

func (w *FakeWindow) Show() {
	w.visible = true
}

func (w *FakeWindow) Hide() {
	w.visible = false
}

func (w *FakeWindow) Visible() bool {
	return w.visible
}

func (w *FakeWindow) Position() (glimpse.Position, bool) {
	return w.position, true
}

func (w *FakeWindow) SetPosition(pos glimpse.Position) {
	w.position = pos
}

// SetSize resizes the window and queues a resize input, like a real
// window would report it.
func (w *FakeWindow) SetSize(size glimpse.Size) {
	w.Resize(size.Width, size.Height)
}

func (w *FakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}

func (w *FakeWindow) Terminate() {
	w.shouldClose = true
}
