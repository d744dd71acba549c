package oriontest

import (
	"errors"

	"github.com/oliverbestmann/pistonwindow/glimpse"
	"github.com/oliverbestmann/pistonwindow/graphics"
	"github.com/oliverbestmann/pistonwindow/orion"
	"github.com/oliverbestmann/pistonwindow/pulse"
)

var _ orion.GPU = (*FakeGPU)(nil)
var _ orion.Renderer = (*FakeRenderer)(nil)

type FakeFrame struct {
	ID       int
	Released bool
}

func (f *FakeFrame) Release() {
	f.Released = true
}

type FakeCommandBuffer struct {
	Released bool
}

func (b *FakeCommandBuffer) Release() {
	b.Released = true
}

// FakeGPU records the calls made by the coordinator.
type FakeGPU struct {
	Config pulse.SurfaceConfig

	// AcquireErr is returned by AcquireFrame if set
	AcquireErr error

	// ConfigureErr is returned by Configure if set
	ConfigureErr error

	Configured []glimpse.Size
	Frames     []*FakeFrame
	Submitted  []any
	Presented  []any
	Cleanups   int
}

func (g *FakeGPU) SurfaceConfig() pulse.SurfaceConfig {
	return g.Config
}

func (g *FakeGPU) Configure(width, height uint32) error {
	if g.ConfigureErr != nil {
		return g.ConfigureErr
	}

	g.Config.Width = width
	g.Config.Height = height
	g.Configured = append(g.Configured, glimpse.Size{Width: width, Height: height})

	return nil
}

func (g *FakeGPU) AcquireFrame() (orion.Frame, error) {
	if g.AcquireErr != nil {
		return nil, g.AcquireErr
	}

	frame := &FakeFrame{ID: len(g.Frames)}
	g.Frames = append(g.Frames, frame)

	return frame, nil
}

func (g *FakeGPU) Submit(buf orion.CommandBuffer) {
	g.Submitted = append(g.Submitted, buf)
	buf.Release()
}

func (g *FakeGPU) Present(frame orion.Frame) {
	g.Presented = append(g.Presented, frame)
}

func (g *FakeGPU) Cleanup() {
	g.Cleanups++
}

type DrawCall struct {
	Config   pulse.SurfaceConfig
	Frame    orion.Frame
	Viewport graphics.Viewport
}

// FakeRenderer runs draw callbacks against a RecordingGraphics.
type FakeRenderer struct {
	Draws    []DrawCall
	Graphics RecordingGraphics

	// EncodeErr fails encoding after fn ran, no command buffer is returned
	EncodeErr error
}

func (r *FakeRenderer) Draw(config pulse.SurfaceConfig, frame orion.Frame, viewport graphics.Viewport, fn pulse.DrawFunc) (orion.CommandBuffer, error) {
	r.Draws = append(r.Draws, DrawCall{Config: config, Frame: frame, Viewport: viewport})

	err := fn(graphics.NewContext(viewport), &r.Graphics)

	if r.EncodeErr != nil {
		return nil, errors.Join(err, r.EncodeErr)
	}

	return &FakeCommandBuffer{}, err
}
