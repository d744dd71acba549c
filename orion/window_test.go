package orion_test

import (
	"errors"
	"testing"

	"github.com/oliverbestmann/pistonwindow/glimpse"
	"github.com/oliverbestmann/pistonwindow/graphics"
	"github.com/oliverbestmann/pistonwindow/orion"
	"github.com/oliverbestmann/pistonwindow/orion/oriontest"
)

type testSetup struct {
	window   *orion.Window
	win      *oriontest.FakeWindow
	gpu      *oriontest.FakeGPU
	renderer *oriontest.FakeRenderer
}

func newTestWindow(t *testing.T) testSetup {
	t.Helper()

	events, win := newTestEvents(t, orion.DefaultEventSettings())

	gpu := &oriontest.FakeGPU{}
	renderer := &oriontest.FakeRenderer{}

	window, err := orion.NewWithBackends(win, gpu, renderer, events)
	if err != nil {
		t.Fatalf("NewWithBackends() = %v", err)
	}

	t.Cleanup(window.Close)

	return testSetup{window: window, win: win, gpu: gpu, renderer: renderer}
}

// nextRender pumps events until the next render event.
func nextRender(t *testing.T, window *orion.Window) orion.Render {
	t.Helper()

	for range 100 {
		event, ok := window.Next()
		if !ok {
			t.Fatal("event stream ended")
		}

		if render, ok := event.(orion.Render); ok {
			return render
		}
	}

	t.Fatal("no render event within 100 events")
	return orion.Render{}
}

func clearTo(color graphics.Color) func(graphics.Context, graphics.Graphics) error {
	return func(ctx graphics.Context, g graphics.Graphics) error {
		g.Clear(color)
		return nil
	}
}

func TestNewWithBackendsConfiguresSurface(t *testing.T) {
	s := newTestWindow(t)

	config := s.gpu.SurfaceConfig()
	if config.Width != 640 || config.Height != 480 {
		t.Errorf("surface configured to %dx%d, want 640x480", config.Width, config.Height)
	}
}

func TestDraw2DFirstRender(t *testing.T) {
	s := newTestWindow(t)

	event, ok := s.window.Next()
	if !ok {
		t.Fatal("Next() returned no event")
	}

	if _, ok := event.(orion.Render); !ok {
		t.Fatalf("first event is %T, want Render", event)
	}

	red := graphics.Color{1, 0, 0, 1}

	drawn, err := s.window.Draw2D(event, clearTo(red))
	if !drawn || err != nil {
		t.Fatalf("Draw2D() = %v, %v, want true, nil", drawn, err)
	}

	if len(s.renderer.Draws) != 1 {
		t.Fatalf("renderer recorded %d draws, want 1", len(s.renderer.Draws))
	}

	viewport := s.renderer.Draws[0].Viewport
	if viewport.Rect != [4]int32{0, 0, 640, 480} {
		t.Errorf("viewport %v, want 640x480", viewport.Rect)
	}

	ops := s.renderer.Graphics.Ops
	if len(ops) != 1 || ops[0].Name != "clear" || ops[0].Color != red {
		t.Errorf("unexpected ops %+v", ops)
	}

	if len(s.gpu.Submitted) != 1 || len(s.gpu.Presented) != 1 {
		t.Errorf("submitted %d, presented %d, want 1 each", len(s.gpu.Submitted), len(s.gpu.Presented))
	}

	buf := s.gpu.Submitted[0].(*oriontest.FakeCommandBuffer)
	if !buf.Released {
		t.Errorf("command buffer was not released")
	}

	if !s.gpu.Frames[0].Released {
		t.Errorf("frame was not released")
	}
}

func TestDraw2DIgnoresOtherEvents(t *testing.T) {
	s := newTestWindow(t)

	events := []orion.Event{
		orion.Update{Dt: 0.1},
		orion.AfterRender{},
		orion.Idle{Dt: 0.1},
		orion.Input{Input: glimpse.MotionInput{}},
		orion.Resize{},
		orion.Close{},
	}

	for _, event := range events {
		called := false

		drawn, err := s.window.Draw2D(event, func(graphics.Context, graphics.Graphics) error {
			called = true
			return nil
		})

		if drawn || err != nil || called {
			t.Errorf("Draw2D(%T) = %v, %v, called=%v", event, drawn, err, called)
		}

		drawn, err = s.window.Draw3D(event, func(*orion.Window) error {
			called = true
			return nil
		})

		if drawn || err != nil || called {
			t.Errorf("Draw3D(%T) = %v, %v, called=%v", event, drawn, err, called)
		}
	}

	if len(s.renderer.Draws) != 0 || len(s.gpu.Frames) != 0 {
		t.Errorf("gpu work for non render events")
	}
}

func TestResizeReconfiguresBeforeReturning(t *testing.T) {
	s := newTestWindow(t)

	render := nextRender(t, s.window)
	if _, err := s.window.Draw2D(render, clearTo(graphics.ColorBlack)); err != nil {
		t.Fatalf("Draw2D() = %v", err)
	}

	event, _ := s.window.Next()
	if _, ok := event.(orion.AfterRender); !ok {
		t.Fatalf("got %T, want AfterRender", event)
	}

	if s.gpu.Cleanups != 1 {
		t.Errorf("cleanup ran %d times, want 1", s.gpu.Cleanups)
	}

	s.win.Resize(800, 600)

	event, _ = s.window.Next()
	if _, ok := event.(orion.Resize); !ok {
		t.Fatalf("got %T, want Resize", event)
	}

	config := s.gpu.SurfaceConfig()
	if config.Width != 800 || config.Height != 600 {
		t.Fatalf("surface is %dx%d after resize, want 800x600", config.Width, config.Height)
	}

	render = nextRender(t, s.window)
	if _, err := s.window.Draw2D(render, clearTo(graphics.ColorBlack)); err != nil {
		t.Fatalf("Draw2D() = %v", err)
	}

	last := s.renderer.Draws[len(s.renderer.Draws)-1]
	if last.Config.Width != 800 || last.Config.Height != 600 {
		t.Errorf("draw used surface %dx%d, want 800x600", last.Config.Width, last.Config.Height)
	}

	if last.Viewport.Rect != [4]int32{0, 0, 800, 600} {
		t.Errorf("viewport %v, want 800x600", last.Viewport.Rect)
	}
}

func TestDraw2DReconfiguresDivergedSurface(t *testing.T) {
	s := newTestWindow(t)

	render := nextRender(t, s.window)

	// the framebuffer changed without a resize event
	s.win.SetDrawSize(glimpse.Size{Width: 1024, Height: 768})

	if _, err := s.window.Draw2D(render, clearTo(graphics.ColorBlack)); err != nil {
		t.Fatalf("Draw2D() = %v", err)
	}

	if got := s.renderer.Draws[0].Config; got.Width != 1024 || got.Height != 768 {
		t.Errorf("draw used surface %dx%d, want 1024x768", got.Width, got.Height)
	}
}

func TestDraw2DPropagatesAcquireError(t *testing.T) {
	s := newTestWindow(t)

	errLost := errors.New("surface lost")
	s.gpu.AcquireErr = errLost

	render := nextRender(t, s.window)

	drawn, err := s.window.Draw2D(render, clearTo(graphics.ColorBlack))
	if drawn || !errors.Is(err, errLost) {
		t.Fatalf("Draw2D() = %v, %v, want false, surface lost", drawn, err)
	}

	if len(s.renderer.Draws) != 0 || len(s.gpu.Presented) != 0 {
		t.Errorf("gpu work after failed acquire")
	}

	// no retry, the next render event tries again
	s.gpu.AcquireErr = nil

	render = nextRender(t, s.window)
	if drawn, err := s.window.Draw2D(render, clearTo(graphics.ColorBlack)); !drawn || err != nil {
		t.Errorf("Draw2D() = %v, %v after recovery", drawn, err)
	}
}

func TestDraw2DReturnsCallbackError(t *testing.T) {
	s := newTestWindow(t)

	errDraw := errors.New("draw failed")
	render := nextRender(t, s.window)

	drawn, err := s.window.Draw2D(render, func(graphics.Context, graphics.Graphics) error {
		return errDraw
	})

	if !drawn || !errors.Is(err, errDraw) {
		t.Fatalf("Draw2D() = %v, %v, want true, draw failed", drawn, err)
	}

	if len(s.gpu.Presented) != 1 {
		t.Errorf("frame was not presented")
	}
}

func TestDraw2DSkipsPresentWithoutCommandBuffer(t *testing.T) {
	s := newTestWindow(t)

	errEncode := errors.New("encode failed")
	s.renderer.EncodeErr = errEncode

	render := nextRender(t, s.window)

	drawn, err := s.window.Draw2D(render, clearTo(graphics.ColorBlack))
	if drawn || !errors.Is(err, errEncode) {
		t.Fatalf("Draw2D() = %v, %v, want false, encode failed", drawn, err)
	}

	if len(s.gpu.Submitted) != 0 || len(s.gpu.Presented) != 0 {
		t.Errorf("submitted %d, presented %d, want nothing", len(s.gpu.Submitted), len(s.gpu.Presented))
	}

	if len(s.gpu.Frames) != 1 || !s.gpu.Frames[0].Released {
		t.Errorf("acquired frame was not released")
	}
}

func TestDraw3DHandsOverWindow(t *testing.T) {
	s := newTestWindow(t)

	render := nextRender(t, s.window)

	drawn, err := s.window.Draw3D(render, func(w *orion.Window) error {
		if w != s.window {
			t.Errorf("Draw3D passed a different window")
		}

		if w.Frame() == nil {
			t.Errorf("no frame available during Draw3D")
		}

		w.Submit(&oriontest.FakeCommandBuffer{})
		return nil
	})

	if !drawn || err != nil {
		t.Fatalf("Draw3D() = %v, %v", drawn, err)
	}

	if s.window.Frame() != nil {
		t.Errorf("frame still available after Draw3D")
	}

	if len(s.gpu.Submitted) != 1 || len(s.gpu.Presented) != 1 {
		t.Errorf("submitted %d, presented %d, want 1 each", len(s.gpu.Submitted), len(s.gpu.Presented))
	}
}

func TestNextRecordsConfigureFailure(t *testing.T) {
	s := newTestWindow(t)

	s.gpu.ConfigureErr = errors.New("device lost")
	s.win.Resize(100, 100)

	event, ok := s.window.Next()
	if !ok {
		t.Fatal("Next() returned no event")
	}

	// the first event is always a render
	if _, ok := event.(orion.Render); ok {
		event, _ = s.window.Next()
		event, _ = s.window.Next()
	}

	if _, ok := event.(orion.Resize); !ok {
		t.Fatalf("got %T, want Resize", event)
	}

	if s.window.Err() == nil {
		t.Errorf("configure failure was not recorded")
	}
}

func TestNextEndsWhenWindowShouldClose(t *testing.T) {
	s := newTestWindow(t)
	nextRender(t, s.window)

	s.window.SetShouldClose(true)

	if event, ok := s.window.Next(); ok {
		t.Errorf("Next() = %v after close", event)
	}

	if s.window.Current() != nil {
		t.Errorf("current event not reset")
	}
}

func TestPassThroughs(t *testing.T) {
	s := newTestWindow(t)

	s.window.SetTitle("hello")
	if s.window.Title() != "hello" || s.win.Title() != "hello" {
		t.Errorf("title not forwarded")
	}

	s.window.SetExitOnEsc(true)
	if !s.window.ExitOnEsc() {
		t.Errorf("exit on esc not forwarded")
	}

	s.window.SetPosition(glimpse.Position{X: 3, Y: 4})
	if pos, _ := s.window.Position(); pos != (glimpse.Position{X: 3, Y: 4}) {
		t.Errorf("position = %v", pos)
	}

	s.window.Hide()
	if s.win.Visible() {
		t.Errorf("hide not forwarded")
	}

	if _, err := s.window.CreateTextureContext(); !errors.Is(err, orion.ErrNoGPUContext) {
		t.Errorf("CreateTextureContext() = %v, want ErrNoGPUContext", err)
	}
}

func TestStatsCountsRenders(t *testing.T) {
	s := newTestWindow(t)

	for range 3 {
		nextRender(t, s.window)
	}

	if got := s.window.Stats().FrameCount; got != 3 {
		t.Errorf("FrameCount = %d, want 3", got)
	}
}
