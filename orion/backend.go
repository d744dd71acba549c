package orion

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/pistonwindow/graphics"
	"github.com/oliverbestmann/pistonwindow/pulse"
)

// Frame is a presentable surface texture acquired for one frame.
type Frame interface {
	Release()
}

// CommandBuffer holds recorded gpu commands ready for submission.
type CommandBuffer interface {
	Release()
}

// GPU is the part of the gpu context the coordinator drives.
type GPU interface {
	SurfaceConfig() pulse.SurfaceConfig

	// Configure reconfigures the surface to the given size in pixels.
	Configure(width, height uint32) error

	AcquireFrame() (Frame, error)
	Submit(buf CommandBuffer)
	Present(frame Frame)

	// Cleanup reclaims resources of frames that finished rendering.
	Cleanup()
}

// Renderer records the drawing of fn into a command buffer targeting frame.
type Renderer interface {
	Draw(config pulse.SurfaceConfig, frame Frame, viewport graphics.Viewport, fn pulse.DrawFunc) (CommandBuffer, error)
}

var errForeignFrame = errors.New("frame was not acquired from this gpu")

// wgpuBackend implements GPU and Renderer on top of a pulse view.
type wgpuBackend struct {
	view     *pulse.View
	renderer *pulse.Renderer2D
}

func (b *wgpuBackend) SurfaceConfig() pulse.SurfaceConfig {
	return b.view.SurfaceConfig()
}

func (b *wgpuBackend) Configure(width, height uint32) error {
	return b.view.Configure(width, height)
}

func (b *wgpuBackend) AcquireFrame() (Frame, error) {
	frame, err := b.view.AcquireFrame()
	if err != nil {
		return nil, err
	}

	return frame, nil
}

func (b *wgpuBackend) Submit(buf CommandBuffer) {
	if cmd, ok := buf.(*wgpu.CommandBuffer); ok {
		b.view.Submit(cmd)
	}

	buf.Release()
}

func (b *wgpuBackend) Present(frame Frame) {
	if frame, ok := frame.(*pulse.Frame); ok {
		b.view.Present(frame)
	}
}

func (b *wgpuBackend) Cleanup() {
	b.view.Cleanup()
}

func (b *wgpuBackend) Draw(config pulse.SurfaceConfig, frame Frame, viewport graphics.Viewport, fn pulse.DrawFunc) (CommandBuffer, error) {
	pf, ok := frame.(*pulse.Frame)
	if !ok {
		return nil, fmt.Errorf("draw: %w", errForeignFrame)
	}

	buf, err := b.renderer.Draw(pf.Target, viewport, fn)
	if buf == nil {
		return nil, err
	}

	return buf, err
}
