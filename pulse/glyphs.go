package pulse

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"os"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oliverbestmann/pistonwindow/graphics"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const atlasSize = 1024

var ErrNoGPU = errors.New("no gpu context available")

// BuiltinFont names a font that is embedded into the binary.
type BuiltinFont uint8

const (
	FontRegular BuiltinFont = iota
	FontMono
)

func (f BuiltinFont) data() []byte {
	if f == FontMono {
		return gomono.TTF
	}

	return goregular.TTF
}

type glyphKey struct {
	size uint32
	char rune
}

type glyph struct {
	// region within the atlas, nil for glyphs without pixels
	texture *Texture

	// bounds of the glyph relative to the dot
	bounds image.Rectangle
}

type glyphQuad struct {
	texture *Texture
	rect    graphics.Rect
}

// GlyphCache rasterizes the glyphs of one font into a texture atlas.
// Faces are created per font size and kept in a small lru cache.
type GlyphCache struct {
	ctx *Context

	font  *opentype.Font
	faces *lru.Cache[uint32, font.Face]

	atlas  *Texture
	glyphs map[glyphKey]glyph

	// full atlases, quads of the current frame may still point into them
	retired  []*Texture
	newAtlas func() (*Texture, error)

	// shelf packing state of the atlas
	cursorX, cursorY, shelfHeight int
}

var _ graphics.GlyphCache = (*GlyphCache)(nil)

// NewGlyphCache parses a TrueType or OpenType font. The gpu context may
// be nil, in that case text can be measured but not drawn.
func NewGlyphCache(ctx *Context, data []byte) (*GlyphCache, error) {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	faces, _ := lru.NewWithEvict[uint32, font.Face](8, func(_ uint32, face font.Face) {
		_ = face.Close()
	})

	return &GlyphCache{
		ctx:    ctx,
		font:   parsed,
		faces:  faces,
		glyphs: map[glyphKey]glyph{},

		newAtlas: func() (*Texture, error) {
			return newGlyphAtlas(ctx)
		},
	}, nil
}

func LoadGlyphCache(ctx *Context, path string) (*GlyphCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %q: %w", path, err)
	}

	return NewGlyphCache(ctx, data)
}

func NewBuiltinGlyphCache(ctx *Context, builtin BuiltinFont) (*GlyphCache, error) {
	return NewGlyphCache(ctx, builtin.data())
}

// Width returns the horizontal advance of text at the given size in pixels.
func (g *GlyphCache) Width(size uint32, text string) (float32, error) {
	face, err := g.face(size)
	if err != nil {
		return 0, err
	}

	return fixedToFloat(font.MeasureString(face, text)), nil
}

func (g *GlyphCache) face(size uint32) (font.Face, error) {
	if face, ok := g.faces.Get(size); ok {
		return face, nil
	}

	face, err := opentype.NewFace(g.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face of size %d: %w", size, err)
	}

	g.faces.Add(size, face)

	return face, nil
}

// layout places the glyphs of text on a baseline starting at the origin.
func (g *GlyphCache) layout(size uint32, text string) ([]glyphQuad, error) {
	if g.ctx == nil {
		return nil, ErrNoGPU
	}

	face, err := g.face(size)
	if err != nil {
		return nil, err
	}

	var quads []glyphQuad

	var dot fixed.Int26_6
	prev := rune(-1)

	for _, char := range text {
		if prev >= 0 {
			dot += face.Kern(prev, char)
		}

		gl, err := g.glyph(face, size, char)
		if err != nil {
			return nil, err
		}

		if gl.texture != nil {
			x := fixedToFloat(dot) + float32(gl.bounds.Min.X)

			quads = append(quads, glyphQuad{
				texture: gl.texture,
				rect: graphics.Rect{
					x,
					float32(gl.bounds.Min.Y),
					float32(gl.bounds.Dx()),
					float32(gl.bounds.Dy()),
				},
			})
		}

		advance, _ := face.GlyphAdvance(char)
		dot += advance
		prev = char
	}

	return quads, nil
}

func (g *GlyphCache) glyph(face font.Face, size uint32, char rune) (glyph, error) {
	key := glyphKey{size: size, char: char}
	if cached, ok := g.glyphs[key]; ok {
		return cached, nil
	}

	bounds, mask, maskp, _, ok := face.Glyph(fixed.Point26_6{}, char)
	if !ok || bounds.Empty() {
		g.glyphs[key] = glyph{}
		return glyph{}, nil
	}

	pos, err := g.allocate(bounds.Dx(), bounds.Dy())
	if err != nil {
		return glyph{}, err
	}

	// white pixels with the coverage of the glyph as alpha
	pixels := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.DrawMask(pixels, pixels.Bounds(), image.White, image.Point{}, mask, maskp, draw.Src)

	region := RectangleFromXYWH(uint32(pos.X), uint32(pos.Y), uint32(bounds.Dx()), uint32(bounds.Dy()))

	err = g.atlas.WritePixelsToRect(g.ctx, WritePixelsOptions{
		Pixels: pixels.Pix,
		Region: region,
		Stride: uint32(pixels.Stride),
	})
	if err != nil {
		return glyph{}, fmt.Errorf("upload glyph %q: %w", char, err)
	}

	gl := glyph{
		texture: g.atlas.SubTexture(region.Min, region.Size()),
		bounds:  bounds,
	}

	g.glyphs[key] = gl

	return gl, nil
}

// allocate reserves space in the atlas using simple shelf packing.
func (g *GlyphCache) allocate(width, height int) (image.Point, error) {
	const padding = 1

	if width+padding > atlasSize || height+padding > atlasSize {
		return image.Point{}, fmt.Errorf("glyph of size %dx%d does not fit into atlas", width, height)
	}

	if g.atlas == nil {
		atlas, err := g.newAtlas()
		if err != nil {
			return image.Point{}, err
		}

		g.atlas = atlas
	}

	if g.cursorX+width+padding > atlasSize {
		// start a new shelf
		g.cursorX = 0
		g.cursorY += g.shelfHeight
		g.shelfHeight = 0
	}

	if g.cursorY+height+padding > atlasSize {
		slog.Warn("Glyph atlas is full, starting a new one")

		atlas, err := g.newAtlas()
		if err != nil {
			return image.Point{}, err
		}

		g.retired = append(g.retired, g.atlas)
		g.atlas = atlas

		g.glyphs = map[glyphKey]glyph{}
		g.cursorX, g.cursorY, g.shelfHeight = 0, 0, 0
	}

	pos := image.Point{X: g.cursorX, Y: g.cursorY}

	g.cursorX += width + padding
	g.shelfHeight = max(g.shelfHeight, height+padding)

	return pos, nil
}

func newGlyphAtlas(ctx *Context) (*Texture, error) {
	atlas, err := NewTexture(ctx, NewTextureOptions{
		Label:  "GlyphAtlas",
		Format: wgpu.TextureFormatRGBA8Unorm,
		Width:  atlasSize,
		Height: atlasSize,
	})
	if err != nil {
		return nil, fmt.Errorf("create glyph atlas: %w", err)
	}

	return atlas, nil
}

func (g *GlyphCache) Release() {
	runtime.SetFinalizer(g, nil)

	g.faces.Purge()

	for _, atlas := range g.retired {
		atlas.Release()
	}

	g.retired = nil

	if g.atlas != nil {
		g.atlas.Release()
		g.atlas = nil
	}
}

func fixedToFloat(value fixed.Int26_6) float32 {
	return float32(value) / 64
}
