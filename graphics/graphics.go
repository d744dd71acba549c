// Package graphics holds the backend independent values that are passed
// between the window coordinator and a 2D renderer: the viewport of the
// current frame, the drawing context and the set of primitives a renderer
// must support.
package graphics

import (
	"golang.org/x/image/math/f32"
)

// Graphics is implemented by a 2D backend. All coordinates are in the
// coordinate space of the draw rect and are mapped through the transform
// before rasterization.
type Graphics interface {
	// Clear fills the whole target with the given color.
	Clear(color Color)

	// Rectangle fills rect with the given color.
	Rectangle(color Color, rect Rect, transform f32.Aff3)

	// Ellipse fills the ellipse inscribed in rect.
	Ellipse(color Color, rect Rect, transform f32.Aff3)

	// Polygon fills the polygon given by its outline. The polygon
	// does not need to be convex.
	Polygon(color Color, polygon [][2]float32, transform f32.Aff3)

	// Line draws a line from (x1, y1) to (x2, y2) with round caps.
	Line(color Color, radius float32, line [4]float32, transform f32.Aff3)

	// Image draws the texture stretched to rect.
	Image(texture Texture, rect Rect, transform f32.Aff3)

	// Text draws text using the glyph cache. The baseline of the first
	// character is placed at the origin of the transform.
	Text(glyphs GlyphCache, size uint32, color Color, text string, transform f32.Aff3) error
}

// Texture is a GPU texture that can be drawn by a Graphics backend.
type Texture interface {
	Width() uint32
	Height() uint32
}

// GlyphCache rasterizes glyphs of a single font on demand.
type GlyphCache interface {
	// Width returns the advance of text rendered at the given size.
	Width(size uint32, text string) (float32, error)
}

// Rect is an axis aligned rectangle given as x, y, width, height.
type Rect [4]float32

func (r Rect) XYWH() (x, y, w, h float32) {
	return r[0], r[1], r[2], r[3]
}
