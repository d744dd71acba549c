package pulse

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

var ErrAcquireFrame = errors.New("acquire frame")

// SurfaceConfig is the current configuration of the presentation surface.
type SurfaceConfig struct {
	Width       uint32
	Height      uint32
	Format      wgpu.TextureFormat
	PresentMode wgpu.PresentMode
}

type ViewOptions struct {
	// Samples per pixel, values greater than one enable msaa
	Samples uint32

	NoVSync bool
}

// View owns the configuration of the surface and the per frame
// render targets derived from it.
type View struct {
	ctx *Context

	surfaceConfig wgpu.SurfaceConfiguration

	// only configured if we have a multisample texture configured
	msaaTexture *Texture

	sampleCount uint32
}

func NewView(ctx *Context, opts ViewOptions) *View {
	caps := ctx.Surface.GetCapabilities(ctx.Adapter)
	slog.Info("Available surface formats", slog.Any("formats", caps.Formats))

	// prefer a plain unorm surface, fall back to whatever the surface supports
	format := wgpu.TextureFormatBGRA8Unorm
	if !slices.Contains(caps.Formats, format) && len(caps.Formats) > 0 {
		format = caps.Formats[0]
	}

	presentMode := wgpu.PresentModeFifo
	if opts.NoVSync && slices.Contains(caps.PresentModes, wgpu.PresentModeImmediate) {
		presentMode = wgpu.PresentModeImmediate
	}

	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(caps.AlphaModes) > 0 {
		alphaMode = caps.AlphaModes[0]
	}

	return &View{
		ctx:         ctx,
		sampleCount: max(1, opts.Samples),

		surfaceConfig: wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      format,
			PresentMode: presentMode,
			AlphaMode:   alphaMode,
		},
	}
}

func (v *View) Context() *Context {
	return v.ctx
}

func (v *View) MSAA() bool {
	return v.sampleCount > 1
}

func (v *View) SurfaceConfig() SurfaceConfig {
	return SurfaceConfig{
		Width:       v.surfaceConfig.Width,
		Height:      v.surfaceConfig.Height,
		Format:      v.surfaceConfig.Format,
		PresentMode: v.surfaceConfig.PresentMode,
	}
}

// Configure reconfigures the surface to the given size in pixels. A surface
// of size zero can not be configured, the size is only recorded in that case.
func (v *View) Configure(width, height uint32) error {
	v.surfaceConfig.Width = width
	v.surfaceConfig.Height = height

	v.releaseTargets()

	if width == 0 || height == 0 {
		slog.Debug("Skip configuring empty surface")
		return nil
	}

	slog.Debug("Configure surface",
		slog.Int("width", int(width)),
		slog.Int("height", int(height)),
	)

	v.ctx.Surface.Configure(v.ctx.Adapter, v.ctx.Device, &v.surfaceConfig)

	if v.MSAA() {
		msaaTexture, err := NewTextureFromDesc(v.ctx, &wgpu.TextureDescriptor{
			Label: "MultisampleRenderTarget",
			Usage: wgpu.TextureUsageRenderAttachment,
			Size: wgpu.Extent3D{
				Width:              width,
				Height:             height,
				DepthOrArrayLayers: 1,
			},
			Format:        v.surfaceConfig.Format,
			Dimension:     wgpu.TextureDimension2D,
			SampleCount:   v.sampleCount,
			MipLevelCount: 1,
		})

		if err != nil {
			return fmt.Errorf("create multisample texture: %w", err)
		}

		v.msaaTexture = msaaTexture
	}

	return nil
}

// AcquireFrame gets the next texture of the surface. The frame must
// either be presented or released.
func (v *View) AcquireFrame() (*Frame, error) {
	if v.surfaceConfig.Width == 0 || v.surfaceConfig.Height == 0 {
		return nil, fmt.Errorf("%w: surface is not configured", ErrAcquireFrame)
	}

	texture, err := v.ctx.Surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcquireFrame, err)
	}

	textureView, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("%w: create view: %w", ErrAcquireFrame, err)
	}

	target := RenderTarget{
		View:        textureView,
		Format:      v.surfaceConfig.Format,
		Width:       v.surfaceConfig.Width,
		Height:      v.surfaceConfig.Height,
		SampleCount: 1,
	}

	if v.msaaTexture != nil {
		// render into the msaa texture and resolve into the surface
		target.View = v.msaaTexture.textureView
		target.ResolveTarget = textureView
		target.SampleCount = v.sampleCount
	}

	frame := &Frame{
		texture:     texture,
		textureView: textureView,
		Target:      target,
	}

	return frame, nil
}

func (v *View) Submit(buf *wgpu.CommandBuffer) {
	v.ctx.Queue.Submit(buf)
}

func (v *View) Present(frame *Frame) {
	v.ctx.Surface.Present()
	frame.presented = true
}

// Cleanup polls the device without blocking, this lets wgpu reclaim
// resources of frames that finished rendering.
func (v *View) Cleanup() {
	v.ctx.Device.Poll(false, nil)
}

func (v *View) releaseTargets() {
	if v.msaaTexture != nil {
		v.msaaTexture.Release()
		v.msaaTexture = nil
	}
}

func (v *View) Release() {
	v.releaseTargets()
}

// RenderTarget holds all the information of something that can be rendered to.
type RenderTarget struct {
	View *wgpu.TextureView

	// In case of multisample rendering, this holds the
	// texture the multisampled fragment is resolved to.
	ResolveTarget *wgpu.TextureView

	// Texture format of View
	Format wgpu.TextureFormat

	Width  uint32
	Height uint32

	// The number of samples of the View texture
	SampleCount uint32
}

// Frame is a surface texture acquired for a single frame.
type Frame struct {
	texture     *wgpu.Texture
	textureView *wgpu.TextureView

	Target RenderTarget

	presented bool
}

// Texture returns the surface texture of this frame.
func (f *Frame) Texture() *wgpu.Texture {
	return f.texture
}

func (f *Frame) Release() {
	if f.textureView != nil {
		f.textureView.Release()
		f.textureView = nil
	}

	// a presented texture is owned by the surface again
	if f.texture != nil && !f.presented {
		f.texture.Release()
	}

	f.texture = nil
}
