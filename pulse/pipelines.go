package pulse

import (
	_ "embed"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed mesh2d.wgsl
var mesh2dShaderCode string

//go:embed sprite2d.wgsl
var sprite2dShaderCode string

type mesh2dPipelineConfig struct {
	TargetFormat      wgpu.TextureFormat
	TargetSampleCount uint32
}

func (conf mesh2dPipelineConfig) Specialize(dev *wgpu.Device) (*wgpu.RenderPipeline, error) {
	slog.Info(
		"Create RenderPipeline for mesh2d",
		slog.Any("format", conf.TargetFormat),
		slog.Any("sampleCount", conf.TargetSampleCount),
	)

	return createPipeline(dev, pipelineDesc{
		label:        "Mesh2D",
		shader:       mesh2dShaderCode,
		format:       conf.TargetFormat,
		sampleCount:  conf.TargetSampleCount,
		stepMode:     wgpu.VertexStepModeVertex,
		vertexStride: uint64(unsafe.Sizeof(meshVertex{})),
		attributes: []wgpu.VertexAttribute{
			{
				// position
				Format:         wgpu.VertexFormatFloat32x2,
				Offset:         uint64(unsafe.Offsetof(meshVertex{}.Position)),
				ShaderLocation: 0,
			},
			{
				// color
				Format:         wgpu.VertexFormatFloat32x4,
				Offset:         uint64(unsafe.Offsetof(meshVertex{}.Color)),
				ShaderLocation: 1,
			},
		},
	})
}

type sprite2dPipelineConfig struct {
	TargetFormat      wgpu.TextureFormat
	TargetSampleCount uint32
}

func (conf sprite2dPipelineConfig) Specialize(dev *wgpu.Device) (*wgpu.RenderPipeline, error) {
	slog.Info(
		"Create RenderPipeline for sprites",
		slog.Any("format", conf.TargetFormat),
		slog.Any("sampleCount", conf.TargetSampleCount),
	)

	return createPipeline(dev, pipelineDesc{
		label:        "Sprite2D",
		shader:       sprite2dShaderCode,
		format:       conf.TargetFormat,
		sampleCount:  conf.TargetSampleCount,
		stepMode:     wgpu.VertexStepModeInstance,
		vertexStride: uint64(unsafe.Sizeof(spriteInstance{})),
		attributes: []wgpu.VertexAttribute{
			{
				// color
				Format:         wgpu.VertexFormatFloat32x4,
				Offset:         uint64(unsafe.Offsetof(spriteInstance{}.Color)),
				ShaderLocation: 0,
			},
			{
				// uv offset
				Format:         wgpu.VertexFormatFloat32x2,
				Offset:         uint64(unsafe.Offsetof(spriteInstance{}.UVOffset)),
				ShaderLocation: 1,
			},
			{
				// uv scale
				Format:         wgpu.VertexFormatFloat32x2,
				Offset:         uint64(unsafe.Offsetof(spriteInstance{}.UVScale)),
				ShaderLocation: 2,
			},
			{
				// transform, row0
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         uint64(unsafe.Offsetof(spriteInstance{}.Row0)),
				ShaderLocation: 3,
			},
			{
				// transform, row1
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         uint64(unsafe.Offsetof(spriteInstance{}.Row1)),
				ShaderLocation: 4,
			},
		},
	})
}

type pipelineDesc struct {
	label        string
	shader       string
	format       wgpu.TextureFormat
	sampleCount  uint32
	stepMode     wgpu.VertexStepMode
	vertexStride uint64
	attributes   []wgpu.VertexAttribute
}

func createPipeline(dev *wgpu.Device, desc pipelineDesc) (*wgpu.RenderPipeline, error) {
	shader, err := dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:      desc.label + ".ShaderSource",
		WGSLSource: &wgpu.ShaderSourceWGSL{Code: desc.shader},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", desc.label, err)
	}

	defer shader.Release()

	blend := wgpu.BlendStateAlphaBlending

	pipeline, err := dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: fmt.Sprintf("%s.%s", desc.label, desc.format),
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: desc.vertexStride,
					StepMode:    desc.stepMode,
					Attributes:  desc.attributes,
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    desc.format,
					Blend:     &blend,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count:                  desc.sampleCount,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})

	if err != nil {
		return nil, fmt.Errorf("build %s pipeline: %w", desc.label, err)
	}

	return pipeline, nil
}
