package orion

import (
	"fmt"

	"github.com/oliverbestmann/pistonwindow/glimpse"
	"github.com/oliverbestmann/pistonwindow/graphics"
)

// Event is produced by Events.Next. It is one of Input, Update, Render,
// AfterRender, Idle, Resize or Close.
type Event interface {
	isEvent()
}

// Input wraps raw window input that has no dedicated event type.
type Input struct {
	Input glimpse.Input
}

// Update is a fixed time step tick.
type Update struct {
	// Dt is the time step in seconds.
	Dt float64
}

// Render requests a new frame.
type Render struct {
	// ExtDt is the time since the last update in seconds, used
	// to extrapolate state between updates.
	ExtDt float64

	WindowSize glimpse.Size
	DrawSize   glimpse.Size
}

// Viewport of the frame to render.
func (r Render) Viewport() graphics.Viewport {
	return graphics.ViewportOf(
		[2]float64{float64(r.WindowSize.Width), float64(r.WindowSize.Height)},
		[2]uint32{r.DrawSize.Width, r.DrawSize.Height},
	)
}

// AfterRender follows every Render event, after the buffers were swapped.
type AfterRender struct{}

// Idle is emitted once while waiting for the next update or render.
type Idle struct {
	// Dt is the time until the next scheduled event in seconds.
	Dt float64
}

type Resize struct {
	Size     glimpse.Size
	DrawSize glimpse.Size
}

type Close struct{}

func (Input) isEvent()       {}
func (Update) isEvent()      {}
func (Render) isEvent()      {}
func (AfterRender) isEvent() {}
func (Idle) isEvent()        {}
func (Resize) isEvent()      {}
func (Close) isEvent()       {}

// EventOf converts raw window input into an event.
func EventOf(input glimpse.Input) Event {
	switch input := input.(type) {
	case glimpse.ResizeInput:
		return Resize{Size: input.Size, DrawSize: input.DrawSize}

	case glimpse.CloseInput:
		return Close{}

	default:
		return Input{Input: input}
	}
}

func (e Input) String() string {
	return fmt.Sprintf("Input(%T)", e.Input)
}

func (e Render) String() string {
	return fmt.Sprintf("Render(%dx%d)", e.DrawSize.Width, e.DrawSize.Height)
}

func (e Resize) String() string {
	return fmt.Sprintf("Resize(%dx%d)", e.DrawSize.Width, e.DrawSize.Height)
}
