package pulse

import (
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/pistonwindow/graphics"
)

// colorSpace converts user colors into the values written to a
// render target. Colors are given in srgb, the same values a color
// picker or an image would give. If the target format performs srgb
// encoding by itself, the colors need to be linearized first.
type colorSpace struct {
	linear bool
}

func colorSpaceOf(format wgpu.TextureFormat) colorSpace {
	return colorSpace{linear: isSRGB(format)}
}

func (cs colorSpace) convert(color graphics.Color) graphics.Color {
	if !cs.linear {
		return color
	}

	return graphics.Color{
		degamma(color[0]),
		degamma(color[1]),
		degamma(color[2]),
		color[3],
	}
}

func (cs colorSpace) clearValue(color graphics.Color) wgpu.Color {
	color = cs.convert(color)

	return wgpu.Color{
		R: float64(color[0]),
		G: float64(color[1]),
		B: float64(color[2]),
		A: float64(color[3]),
	}
}

// textureFormat is the format used for textures sampled while
// drawing to a target in this color space.
func (cs colorSpace) textureFormat() wgpu.TextureFormat {
	if cs.linear {
		return wgpu.TextureFormatRGBA8UnormSrgb
	}

	return wgpu.TextureFormatRGBA8Unorm
}

func isSRGB(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatRGBA8UnormSrgb:
		return true
	default:
		return false
	}
}

func degamma(value float32) float32 {
	x := float64(value)

	// https://www.w3.org/TR/css-color-4/#color-conversion-code
	sign := math.Copysign(1, x)
	abs := math.Abs(x)
	if abs <= 0.04045 {
		return float32(x / 12.92)
	}

	return float32(sign * math.Pow((abs+0.055)/1.055, 2.4))
}
