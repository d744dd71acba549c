package glimpse

import "fmt"

type MouseButton uint32

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Button is either a keyboard key or a mouse button.
type Button struct {
	Key   Key
	Mouse MouseButton

	// IsMouse is true if this button refers to a mouse button
	IsMouse bool
}

func (b Button) String() string {
	if b.IsMouse {
		return fmt.Sprintf("Mouse(%d)", b.Mouse)
	}

	return b.Key.String()
}

// Input is a raw event produced by the window back-end.
type Input interface {
	isInput()
}

type ButtonInput struct {
	Button  Button
	Pressed bool
}

type MotionInput struct {
	X, Y float64
}

type ScrollInput struct {
	DX, DY float64
}

type TextInput struct {
	Text string
}

type ResizeInput struct {
	Size     Size
	DrawSize Size
}

type FocusInput struct {
	Focused bool
}

type CursorInput struct {
	Inside bool
}

type CloseInput struct{}

func (ButtonInput) isInput() {}
func (MotionInput) isInput() {}
func (ScrollInput) isInput() {}
func (TextInput) isInput()   {}
func (ResizeInput) isInput() {}
func (FocusInput) isInput()  {}
func (CursorInput) isInput() {}
func (CloseInput) isInput()  {}
