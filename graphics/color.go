package graphics

import (
	"fmt"
	"strconv"
)

var ColorWhite = Color{1, 1, 1, 1}
var ColorBlack = Color{0, 0, 0, 1}
var ColorTransparent = Color{0, 0, 0, 0}

// Color is a straight (not premultiplied) rgba color.
type Color [4]float32

// ColorHex parses colors in the form "rrggbb" or "rrggbbaa",
// with an optional leading '#'.
func ColorHex(hex string) (Color, error) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}

	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", hex)
	}

	if len(hex) == 6 {
		hex += "ff"
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}

	return Color{
		float32(value>>24&0xff) / 255,
		float32(value>>16&0xff) / 255,
		float32(value>>8&0xff) / 255,
		float32(value&0xff) / 255,
	}, nil
}

func (c Color) Alpha() float32 {
	return c[3]
}

// Premultiplied returns the color with rgb multiplied by alpha.
func (c Color) Premultiplied() Color {
	return Color{c[0] * c[3], c[1] * c[3], c[2] * c[3], c[3]}
}
