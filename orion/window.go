package orion

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/pistonwindow/glimpse"
	"github.com/oliverbestmann/pistonwindow/graphics"
	"github.com/oliverbestmann/pistonwindow/pulse"
)

var ErrNoGPUContext = errors.New("window has no wgpu context")

type Settings struct {
	Window glimpse.Settings

	// Events configures the ticker, DefaultEventSettings are used if nil.
	Events *EventSettings
}

// Window bundles a platform window, the gpu surface, a 2D renderer and
// the event ticker. Next drives the ticker and keeps the surface in sync
// with the window, Draw2D and Draw3D only do work for render events.
type Window struct {
	window   glimpse.Window
	gpu      GPU
	renderer Renderer
	events   *Events

	// only available when created with New
	view     *pulse.View
	textures *pulse.TextureContext

	// the most recent event returned by Next
	current Event

	// the frame acquired during Draw3D
	frame Frame

	stats FrameTimes

	// last error that could not be returned to the caller
	err error

	// release functions in order of creation
	closers []func()
}

// New opens a window and initializes wgpu to render into it.
func New(settings Settings) (w *Window, err error) {
	eventSettings := DefaultEventSettings()
	if settings.Events != nil {
		eventSettings = *settings.Events
	}

	events, err := NewEvents(eventSettings)
	if err != nil {
		return nil, fmt.Errorf("create events: %w", err)
	}

	var closers []func()

	defer func() {
		if err != nil {
			runClosers(closers)
		}
	}()

	win, err := glimpse.NewWindow(settings.Window)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	closers = append(closers, win.Terminate)

	ctx, err := pulse.New(win.SurfaceDescriptor())
	if err != nil {
		return nil, fmt.Errorf("initializing wgpu: %w", err)
	}

	closers = append(closers, ctx.Release)

	view := pulse.NewView(ctx, pulse.ViewOptions{
		Samples: settings.Window.Samples,
		NoVSync: settings.Window.NoVSync,
	})

	closers = append(closers, view.Release)

	renderer, err := pulse.NewRenderer2D(ctx)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	closers = append(closers, renderer.Release)

	backend := &wgpuBackend{view: view, renderer: renderer}

	w, err = NewWithBackends(win, backend, backend, events)
	if err != nil {
		return nil, err
	}

	w.view = view
	w.textures = pulse.NewTextureContext(view)
	w.closers = closers

	return w, nil
}

// NewWithBackends creates a coordinator from existing backends. The
// surface is configured to the current draw size of the window. The
// backends stay owned by the caller, Close does not release them.
func NewWithBackends(win glimpse.Window, gpu GPU, renderer Renderer, events *Events) (*Window, error) {
	w := &Window{
		window:   win,
		gpu:      gpu,
		renderer: renderer,
		events:   events,
	}

	drawSize := win.DrawSize()
	if err := gpu.Configure(drawSize.Width, drawSize.Height); err != nil {
		return nil, fmt.Errorf("configure surface: %w", err)
	}

	return w, nil
}

// Next returns the next event of the ticker, after applying its side
// effects. It returns false once the window should close.
func (w *Window) Next() (Event, bool) {
	event, ok := w.events.Next(w.window)
	if !ok {
		w.current = nil
		return nil, false
	}

	w.HandleEvent(event)
	w.current = event

	return event, true
}

// HandleEvent applies the side effects of an event: a Resize reconfigures
// the surface, an AfterRender reclaims per frame resources. It is called
// by Next, callers that pump the ticker themselves can call it directly.
func (w *Window) HandleEvent(event Event) {
	switch event.(type) {
	case Resize:
		drawSize := w.window.DrawSize()

		if err := w.gpu.Configure(drawSize.Width, drawSize.Height); err != nil {
			slog.Error("Failed to reconfigure surface",
				slog.Int("width", int(drawSize.Width)),
				slog.Int("height", int(drawSize.Height)),
				slog.String("err", err.Error()),
			)

			w.err = fmt.Errorf("reconfigure surface: %w", err)
		}

	case Render:
		w.stats.Tick(w.events.clock.Now())

	case AfterRender:
		w.gpu.Cleanup()
	}
}

// Current returns the most recent event returned by Next.
func (w *Window) Current() Event {
	return w.current
}

// Draw2D renders a frame using fn if event is a render event. For any other
// event it does nothing and returns false. The error of fn is returned after
// the frame was submitted and presented. Failing to acquire a frame is
// returned as is, the caller decides whether to try again on the next frame.
// If the renderer fails to record a command buffer, the frame is released
// without being presented and false is returned.
func (w *Window) Draw2D(event Event, fn pulse.DrawFunc) (bool, error) {
	render, ok := event.(Render)
	if !ok {
		return false, nil
	}

	frame, err := w.acquireFrame()
	if err != nil {
		return false, fmt.Errorf("draw 2d: %w", err)
	}

	defer frame.Release()

	buf, err := w.renderer.Draw(w.gpu.SurfaceConfig(), frame, render.Viewport(), fn)
	if buf == nil {
		// nothing was recorded, the frame is dropped without presenting
		return false, err
	}

	w.gpu.Submit(buf)
	w.gpu.Present(frame)

	return true, err
}

// Draw3D hands the whole window to fn if event is a render event. fn can
// get the current frame using Frame and submit its own command buffers.
// The frame is presented after fn returns.
func (w *Window) Draw3D(event Event, fn func(w *Window) error) (bool, error) {
	if _, ok := event.(Render); !ok {
		return false, nil
	}

	frame, err := w.acquireFrame()
	if err != nil {
		return false, fmt.Errorf("draw 3d: %w", err)
	}

	w.frame = frame

	defer func() {
		w.frame = nil
		frame.Release()
	}()

	err = fn(w)

	w.gpu.Present(frame)

	return true, err
}

func (w *Window) acquireFrame() (Frame, error) {
	config := w.gpu.SurfaceConfig()
	drawSize := w.window.DrawSize()

	// the surface must match the window, even if no resize event was seen
	if config.Width != drawSize.Width || config.Height != drawSize.Height {
		slog.Debug("Surface size diverged from window",
			slog.Int("surfaceWidth", int(config.Width)),
			slog.Int("surfaceHeight", int(config.Height)),
		)

		if err := w.gpu.Configure(drawSize.Width, drawSize.Height); err != nil {
			return nil, fmt.Errorf("reconfigure surface: %w", err)
		}
	}

	return w.gpu.AcquireFrame()
}

// Frame returns the frame acquired for Draw3D, nil outside of Draw3D.
func (w *Window) Frame() Frame {
	return w.frame
}

// Submit submits a command buffer recorded during Draw3D.
func (w *Window) Submit(buf CommandBuffer) {
	w.gpu.Submit(buf)
}

func (w *Window) GPU() GPU {
	return w.gpu
}

// Context returns the wgpu context, nil if the window was not created by New.
func (w *Window) Context() *pulse.Context {
	if w.view == nil {
		return nil
	}

	return w.view.Context()
}

func (w *Window) SurfaceConfig() pulse.SurfaceConfig {
	return w.gpu.SurfaceConfig()
}

func (w *Window) CreateTextureContext() (*pulse.TextureContext, error) {
	if w.textures == nil {
		return nil, ErrNoGPUContext
	}

	return w.textures, nil
}

func (w *Window) LoadFont(path string) (graphics.GlyphCache, error) {
	textures, err := w.CreateTextureContext()
	if err != nil {
		return nil, err
	}

	return textures.LoadFont(path)
}

func (w *Window) LoadBuiltinFont(font pulse.BuiltinFont) (graphics.GlyphCache, error) {
	textures, err := w.CreateTextureContext()
	if err != nil {
		return nil, err
	}

	return textures.BuiltinFont(font)
}

func (w *Window) Stats() FrameTimes {
	return w.stats
}

// Err returns the last error that happened while handling an event.
func (w *Window) Err() error {
	return w.err
}

func (w *Window) EventSettings() EventSettings {
	return w.events.Settings()
}

func (w *Window) SetEventSettings(settings EventSettings) error {
	return w.events.SetSettings(settings)
}

func (w *Window) Window() glimpse.Window {
	return w.window
}

func (w *Window) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *Window) SetShouldClose(value bool) {
	w.window.SetShouldClose(value)
}

func (w *Window) Size() glimpse.Size {
	return w.window.Size()
}

func (w *Window) DrawSize() glimpse.Size {
	return w.window.DrawSize()
}

func (w *Window) Title() string {
	return w.window.Title()
}

func (w *Window) SetTitle(title string) {
	w.window.SetTitle(title)
}

func (w *Window) ExitOnEsc() bool {
	return w.window.ExitOnEsc()
}

func (w *Window) SetExitOnEsc(value bool) {
	w.window.SetExitOnEsc(value)
}

func (w *Window) SetCaptureCursor(value bool) {
	w.window.SetCaptureCursor(value)
}

func (w *Window) Show() {
	w.window.Show()
}

func (w *Window) Hide() {
	w.window.Hide()
}

func (w *Window) Position() (glimpse.Position, bool) {
	return w.window.Position()
}

func (w *Window) SetPosition(pos glimpse.Position) {
	w.window.SetPosition(pos)
}

func (w *Window) SetSize(size glimpse.Size) {
	w.window.SetSize(size)
}

// Close releases the renderer, the gpu context and the window in
// reverse order of creation. It is safe to call Close multiple times.
func (w *Window) Close() {
	runClosers(w.closers)
	w.closers = nil
}

func runClosers(closers []func()) {
	for idx := len(closers) - 1; idx >= 0; idx-- {
		closers[idx]()
	}
}
