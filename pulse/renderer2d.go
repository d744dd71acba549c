package pulse

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/pistonwindow/graphics"
)

// DrawFunc draws a frame using the 2D primitives of Graphics.
type DrawFunc func(ctx graphics.Context, g graphics.Graphics) error

// Renderer2D records the primitives of a draw callback and encodes
// them into a single render pass.
type Renderer2D struct {
	ctx *Context

	meshPipelines   *PipelineCache[mesh2dPipelineConfig]
	spritePipelines *PipelineCache[sprite2dPipelineConfig]
	samplers        *samplerCache

	vertices   dynamicBuffer
	instances  dynamicBuffer
	bufIndices *wgpu.Buffer

	list drawList
}

func NewRenderer2D(ctx *Context) (*Renderer2D, error) {
	bufIndices, err := ctx.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Sprite.Indices",
		Contents: wgpu.ToBytes([]uint16{2, 0, 1, 1, 3, 2}),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		return nil, fmt.Errorf("create index buffer: %w", err)
	}

	r := &Renderer2D{
		ctx:             ctx,
		meshPipelines:   NewPipelineCache[mesh2dPipelineConfig](ctx),
		spritePipelines: NewPipelineCache[sprite2dPipelineConfig](ctx),
		samplers:        newSamplerCache(ctx),
		bufIndices:      bufIndices,

		vertices: dynamicBuffer{
			label: "Mesh2D.Vertices",
			usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		},

		instances: dynamicBuffer{
			label: "Sprite.Instances",
			usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		},
	}

	return r, nil
}

// Draw runs fn and encodes everything it has drawn into a command buffer
// targeting target. If fn fails, the primitives drawn up to that point are
// still encoded and the error of fn is returned together with the buffer.
func (r *Renderer2D) Draw(target RenderTarget, viewport graphics.Viewport, fn DrawFunc) (*wgpu.CommandBuffer, error) {
	r.list.reset(colorSpaceOf(target.Format))

	fnErr := fn(graphics.NewContext(viewport), &r.list)

	buf, err := r.encode(target, viewport)
	if err != nil {
		return nil, errors.Join(fnErr, fmt.Errorf("encode frame: %w", err))
	}

	return buf, fnErr
}

func (r *Renderer2D) encode(target RenderTarget, viewport graphics.Viewport) (*wgpu.CommandBuffer, error) {
	list := &r.list

	slog.Debug("Encode frame",
		slog.Int("batches", len(list.batches)),
		slog.Int("vertices", len(list.vertices)),
		slog.Int("instances", len(list.instances)),
	)

	if len(list.vertices) > 0 {
		if err := r.vertices.write(r.ctx, wgpu.ToBytes(list.vertices)); err != nil {
			return nil, fmt.Errorf("update vertex buffer: %w", err)
		}
	}

	if len(list.instances) > 0 {
		if err := r.instances.write(r.ctx, wgpu.ToBytes(list.instances)); err != nil {
			return nil, fmt.Errorf("update instance buffer: %w", err)
		}
	}

	encoder, err := r.ctx.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "Frame2D"})
	if err != nil {
		return nil, err
	}

	defer encoder.Release()

	attachment := wgpu.RenderPassColorAttachment{
		View:          target.View,
		ResolveTarget: target.ResolveTarget,
		LoadOp:        wgpu.LoadOpLoad,
		StoreOp:       wgpu.StoreOpStore,
	}

	if list.cleared {
		attachment.LoadOp = wgpu.LoadOpClear
		attachment.ClearValue = list.colors.clearValue(list.clearColor)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            "RenderPass2D",
		ColorAttachments: []wgpu.RenderPassColorAttachment{attachment},
	})

	passGuard := NewReleaseGuard(pass)
	defer passGuard.Release()

	// bind groups must stay alive until the pass is finished
	var bindGroups []*wgpu.BindGroup
	defer func() {
		for _, bindGroup := range bindGroups {
			bindGroup.Release()
		}
	}()

	vx, vy, vw, vh := viewportRect(viewport, target)
	if vw > 0 && vh > 0 {
		pass.SetViewport(vx, vy, vw, vh, 0, 1)
	}

	for _, batch := range list.batches {
		switch batch.kind {
		case batchMesh:
			pipeline, err := r.meshPipelines.Get(mesh2dPipelineConfig{
				TargetFormat:      target.Format,
				TargetSampleCount: target.SampleCount,
			})
			if err != nil {
				return nil, err
			}

			pass.SetPipeline(pipeline.Pipeline)
			pass.SetVertexBuffer(0, r.vertices.buffer, 0, wgpu.WholeSize)
			pass.Draw(batch.count, 1, batch.first, 0)

		case batchSprite:
			pipeline, err := r.spritePipelines.Get(sprite2dPipelineConfig{
				TargetFormat:      target.Format,
				TargetSampleCount: target.SampleCount,
			})
			if err != nil {
				return nil, err
			}

			bindGroup, err := r.spriteBindGroup(pipeline, batch.texture)
			if err != nil {
				return nil, err
			}

			bindGroups = append(bindGroups, bindGroup)

			pass.SetPipeline(pipeline.Pipeline)
			pass.SetBindGroup(0, bindGroup, nil)
			pass.SetVertexBuffer(0, r.instances.buffer, 0, wgpu.WholeSize)
			pass.SetIndexBuffer(r.bufIndices, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
			pass.DrawIndexed(6, batch.count, 0, 0, batch.first)
		}
	}

	if err := pass.End(); err != nil {
		return nil, err
	}

	// must release pass before finishing the encoder
	passGuard.Release()

	return encoder.Finish(&wgpu.CommandBufferDescriptor{Label: "Frame2D"})
}

func (r *Renderer2D) spriteBindGroup(pipeline *CachedPipeline, texture *Texture) (*wgpu.BindGroup, error) {
	sampler, err := r.samplers.Get(wgpu.SamplerDescriptor{
		Label:         "Sprite.Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, err
	}

	bindGroup, err := r.ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Sprite.BindGroup",
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{
				Binding:     0,
				TextureView: texture.View(),
			},
			{
				Binding: 1,
				Sampler: sampler,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}

	return bindGroup, nil
}

func (r *Renderer2D) Release() {
	r.meshPipelines.Purge()
	r.spritePipelines.Purge()
	r.samplers.Purge()

	r.vertices.release()
	r.instances.release()

	if r.bufIndices != nil {
		r.bufIndices.Release()
		r.bufIndices = nil
	}
}

// viewportRect clamps the draw rect of the viewport to the target.
func viewportRect(viewport graphics.Viewport, target RenderTarget) (x, y, w, h float32) {
	rx, ry := max(0, viewport.Rect[0]), max(0, viewport.Rect[1])
	rw, rh := max(0, viewport.Rect[2]), max(0, viewport.Rect[3])

	x = float32(min(uint32(rx), target.Width))
	y = float32(min(uint32(ry), target.Height))
	w = min(float32(rw), float32(target.Width)-x)
	h = min(float32(rh), float32(target.Height)-y)
	return
}

// dynamicBuffer is a gpu buffer that grows to fit the data written to it.
type dynamicBuffer struct {
	label  string
	usage  wgpu.BufferUsage
	buffer *wgpu.Buffer
	size   uint64
}

func (b *dynamicBuffer) write(ctx *Context, data []byte) error {
	required := uint64(len(data))

	if required > b.size {
		size := max(64*1024, b.size)
		for size < required {
			size *= 2
		}

		buffer, err := ctx.CreateBuffer(&wgpu.BufferDescriptor{
			Label: b.label,
			Usage: b.usage,
			Size:  size,
		})
		if err != nil {
			return fmt.Errorf("create buffer %q: %w", b.label, err)
		}

		b.release()

		b.buffer = buffer
		b.size = size
	}

	return ctx.WriteBuffer(b.buffer, 0, data)
}

func (b *dynamicBuffer) release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
		b.size = 0
	}
}
