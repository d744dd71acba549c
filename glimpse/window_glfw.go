//go:build !js

package glimpse

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type glfwWindow struct {
	win *glfw.Window

	title          string
	exitOnEsc      bool
	automaticClose bool

	// input collected by the glfw callbacks, drained by PollEvent
	pending []Input
}

// NewWindow opens a glfw window without a client api. Rendering is done
// by a wgpu surface created from SurfaceDescriptor.
func NewWindow(settings Settings) (Window, error) {
	settings = settings.WithDefaults()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("window settings: %w", err)
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfwBool(!settings.NoResize))
	glfw.WindowHint(glfw.Decorated, glfwBool(!settings.NoDecorated))

	window, err := glfw.CreateWindow(
		int(settings.Size.Width),
		int(settings.Size.Height),
		settings.Title,
		nil, nil,
	)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	w := &glfwWindow{
		win:            window,
		title:          settings.Title,
		exitOnEsc:      settings.ExitOnEsc,
		automaticClose: !settings.NoAutomaticClose,
	}

	w.configureInput()

	slog.Info("Window created",
		slog.String("title", settings.Title),
		slog.Int("width", int(settings.Size.Width)),
		slog.Int("height", int(settings.Size.Height)),
	)

	return w, nil
}

func (g *glfwWindow) ShouldClose() bool {
	return g.win.ShouldClose()
}

func (g *glfwWindow) SetShouldClose(value bool) {
	g.win.SetShouldClose(value)
}

func (g *glfwWindow) Size() Size {
	width, height := g.win.GetSize()
	return Size{Width: uint32(width), Height: uint32(height)}
}

func (g *glfwWindow) DrawSize() Size {
	width, height := g.win.GetFramebufferSize()
	return Size{Width: uint32(width), Height: uint32(height)}
}

func (g *glfwWindow) SwapBuffers() {
	// presenting is done by the wgpu surface, the window has no
	// client api that would need a buffer swap
}

func (g *glfwWindow) PollEvent() (Input, bool) {
	if len(g.pending) == 0 {
		glfw.PollEvents()
	}

	return g.pop()
}

func (g *glfwWindow) WaitEvent() Input {
	for {
		if input, ok := g.pop(); ok {
			return input
		}

		glfw.WaitEvents()
	}
}

func (g *glfwWindow) WaitEventTimeout(timeout time.Duration) (Input, bool) {
	if input, ok := g.pop(); ok {
		return input, true
	}

	glfw.WaitEventsTimeout(timeout.Seconds())

	return g.pop()
}

func (g *glfwWindow) Title() string {
	return g.title
}

func (g *glfwWindow) SetTitle(title string) {
	g.title = title
	g.win.SetTitle(title)
}

func (g *glfwWindow) ExitOnEsc() bool {
	return g.exitOnEsc
}

func (g *glfwWindow) SetExitOnEsc(value bool) {
	g.exitOnEsc = value
}

func (g *glfwWindow) AutomaticClose() bool {
	return g.automaticClose
}

func (g *glfwWindow) SetAutomaticClose(value bool) {
	g.automaticClose = value
}

func (g *glfwWindow) SetCaptureCursor(value bool) {
	mode := glfw.CursorNormal
	if value {
		mode = glfw.CursorDisabled
	}

	g.win.SetInputMode(glfw.CursorMode, mode)
}

func (g *glfwWindow) Show() {
	g.win.Show()
}

func (g *glfwWindow) Hide() {
	g.win.Hide()
}

func (g *glfwWindow) Position() (Position, bool) {
	x, y := g.win.GetPos()
	return Position{X: x, Y: y}, true
}

func (g *glfwWindow) SetPosition(pos Position) {
	g.win.SetPos(pos.X, pos.Y)
}

func (g *glfwWindow) SetSize(size Size) {
	g.win.SetSize(int(size.Width), int(size.Height))
}

func (g *glfwWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(g.win)
}

func (g *glfwWindow) Terminate() {
	g.win.Destroy()
	glfw.Terminate()
}

func (g *glfwWindow) push(input Input) {
	g.pending = append(g.pending, input)
}

func (g *glfwWindow) pop() (Input, bool) {
	if len(g.pending) == 0 {
		return nil, false
	}

	input := g.pending[0]
	g.pending[0] = nil
	g.pending = g.pending[1:]

	return input, true
}

func (g *glfwWindow) configureInput() {
	g.win.SetKeyCallback(func(_win *glfw.Window, glfwKey glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}

		key := keyOf(glfwKey)

		if key == KeyEscape && action == glfw.Press && g.exitOnEsc {
			g.win.SetShouldClose(true)
		}

		g.push(ButtonInput{
			Button:  Button{Key: key},
			Pressed: action == glfw.Press,
		})
	})

	g.win.SetMouseButtonCallback(func(_win *glfw.Window, btn glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		g.push(ButtonInput{
			Button:  Button{Mouse: MouseButton(btn), IsMouse: true},
			Pressed: action == glfw.Press,
		})
	})

	g.win.SetCursorPosCallback(func(_win *glfw.Window, xpos float64, ypos float64) {
		g.push(MotionInput{X: xpos, Y: ypos})
	})

	g.win.SetScrollCallback(func(_win *glfw.Window, xoff float64, yoff float64) {
		g.push(ScrollInput{DX: xoff, DY: yoff})
	})

	g.win.SetCharCallback(func(_win *glfw.Window, char rune) {
		g.push(TextInput{Text: string(char)})
	})

	g.win.SetFocusCallback(func(_win *glfw.Window, focused bool) {
		g.push(FocusInput{Focused: focused})
	})

	g.win.SetCursorEnterCallback(func(_win *glfw.Window, entered bool) {
		g.push(CursorInput{Inside: entered})
	})

	g.win.SetFramebufferSizeCallback(func(_win *glfw.Window, width int, height int) {
		g.push(ResizeInput{
			Size:     g.Size(),
			DrawSize: Size{Width: uint32(width), Height: uint32(height)},
		})
	})

	g.win.SetCloseCallback(func(_win *glfw.Window) {
		if !g.automaticClose {
			g.win.SetShouldClose(false)
		}

		g.push(CloseInput{})
	})
}

func glfwBool(value bool) int {
	if value {
		return glfw.True
	}

	return glfw.False
}

var glfwToKey = map[glfw.Key]Key{
	glfw.KeySpace:        KeySpace,
	glfw.KeyEnter:        KeyEnter,
	glfw.KeyEscape:       KeyEscape,
	glfw.KeyTab:          KeyTab,
	glfw.KeyBackspace:    KeyBackspace,
	glfw.KeyLeft:         KeyLeft,
	glfw.KeyRight:        KeyRight,
	glfw.KeyUp:           KeyUp,
	glfw.KeyDown:         KeyDown,
	glfw.KeyLeftShift:    KeyLeftShift,
	glfw.KeyRightShift:   KeyRightShift,
	glfw.KeyLeftControl:  KeyLeftControl,
	glfw.KeyRightControl: KeyRightControl,
}

func keyOf(glfwKey glfw.Key) Key {
	switch {
	case glfwKey >= glfw.Key0 && glfwKey <= glfw.Key9:
		return Key0 + Key(glfwKey-glfw.Key0)

	case glfwKey >= glfw.KeyA && glfwKey <= glfw.KeyZ:
		return KeyA + Key(glfwKey-glfw.KeyA)
	}

	key, ok := glfwToKey[glfwKey]
	if !ok {
		slog.Debug(
			"Unknown key code",
			slog.String("key", glfw.GetKeyName(glfwKey, 0)),
		)

		return KeyUnknown
	}

	return key
}
