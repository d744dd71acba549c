package graphics

import "golang.org/x/image/math/f32"

// Viewport describes the region of the window a frame is drawn to.
type Viewport struct {
	// Rect is the draw rect in framebuffer pixels: x, y, width, height.
	Rect [4]int32

	// DrawSize is the size of the framebuffer in pixels.
	DrawSize [2]uint32

	// WindowSize is the size of the window in points. This differs
	// from DrawSize on high dpi displays.
	WindowSize [2]float64
}

// ViewportOf returns a viewport covering the whole framebuffer.
func ViewportOf(windowSize [2]float64, drawSize [2]uint32) Viewport {
	return Viewport{
		Rect:       [4]int32{0, 0, int32(drawSize[0]), int32(drawSize[1])},
		DrawSize:   drawSize,
		WindowSize: windowSize,
	}
}

// AbsTransform maps window coordinates (in points, y pointing down) to
// normalized device coordinates of the draw rect.
func (v Viewport) AbsTransform() f32.Aff3 {
	w, h := float32(v.WindowSize[0]), float32(v.WindowSize[1])
	if w == 0 || h == 0 {
		return Identity()
	}

	return f32.Aff3{
		2 / w, 0, -1,
		0, -2 / h, 1,
	}
}

// Context is handed to a draw callback together with the Graphics backend.
type Context struct {
	Viewport Viewport

	// View maps coordinates used by the draw callback into device
	// coordinates. It starts out as Viewport.AbsTransform().
	View f32.Aff3

	// Transform is View combined with the current model transform.
	Transform f32.Aff3
}

// NewContext creates a context for the viewport without any model transform.
func NewContext(viewport Viewport) Context {
	view := viewport.AbsTransform()
	return Context{
		Viewport:  viewport,
		View:      view,
		Transform: view,
	}
}

// Trans returns a copy of the context translated by x, y.
func (c Context) Trans(x, y float32) Context {
	c.Transform = Mul(c.Transform, Translation(x, y))
	return c
}

// Scale returns a copy of the context scaled by sx, sy.
func (c Context) Scale(sx, sy float32) Context {
	c.Transform = Mul(c.Transform, Scaling(sx, sy))
	return c
}
