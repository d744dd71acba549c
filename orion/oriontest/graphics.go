package oriontest

import (
	"github.com/oliverbestmann/pistonwindow/graphics"
	"golang.org/x/image/math/f32"
)

// Op is a primitive recorded by RecordingGraphics.
type Op struct {
	Name      string
	Color     graphics.Color
	Rect      graphics.Rect
	Line      [4]float32
	Points    [][2]float32
	Radius    float32
	Texture   graphics.Texture
	Glyphs    graphics.GlyphCache
	Size      uint32
	Text      string
	Transform f32.Aff3
}

// RecordingGraphics implements graphics.Graphics by recording every call.
type RecordingGraphics struct {
	Ops []Op

	// TextErr is returned by Text if set
	TextErr error
}

var _ graphics.Graphics = (*RecordingGraphics)(nil)

func (g *RecordingGraphics) Clear(color graphics.Color) {
	g.Ops = append(g.Ops, Op{Name: "clear", Color: color})
}

func (g *RecordingGraphics) Rectangle(color graphics.Color, rect graphics.Rect, transform f32.Aff3) {
	g.Ops = append(g.Ops, Op{Name: "rectangle", Color: color, Rect: rect, Transform: transform})
}

func (g *RecordingGraphics) Ellipse(color graphics.Color, rect graphics.Rect, transform f32.Aff3) {
	g.Ops = append(g.Ops, Op{Name: "ellipse", Color: color, Rect: rect, Transform: transform})
}

func (g *RecordingGraphics) Polygon(color graphics.Color, polygon [][2]float32, transform f32.Aff3) {
	g.Ops = append(g.Ops, Op{Name: "polygon", Color: color, Points: polygon, Transform: transform})
}

func (g *RecordingGraphics) Line(color graphics.Color, radius float32, line [4]float32, transform f32.Aff3) {
	g.Ops = append(g.Ops, Op{Name: "line", Color: color, Radius: radius, Line: line, Transform: transform})
}

func (g *RecordingGraphics) Image(texture graphics.Texture, rect graphics.Rect, transform f32.Aff3) {
	g.Ops = append(g.Ops, Op{Name: "image", Texture: texture, Rect: rect, Transform: transform})
}

func (g *RecordingGraphics) Text(glyphs graphics.GlyphCache, size uint32, color graphics.Color, text string, transform f32.Aff3) error {
	if g.TextErr != nil {
		return g.TextErr
	}

	g.Ops = append(g.Ops, Op{Name: "text", Glyphs: glyphs, Size: size, Color: color, Text: text, Transform: transform})
	return nil
}

// FakeTexture is a texture without any gpu backing.
type FakeTexture struct {
	W, H uint32

	// Updates counts calls to UpdateTexture
	Updates int

	Released bool

	// OnRelease is called by Release, if set
	OnRelease func()
}

func (t *FakeTexture) Release() {
	t.Released = true

	if t.OnRelease != nil {
		t.OnRelease()
	}
}

func (t *FakeTexture) Width() uint32 {
	return t.W
}

func (t *FakeTexture) Height() uint32 {
	return t.H
}
