package pulse

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/pistonwindow/graphics"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// TextureContext creates textures and glyph caches that can be drawn
// to the surface of a View.
type TextureContext struct {
	ctx    *Context
	format wgpu.TextureFormat
}

func NewTextureContext(view *View) *TextureContext {
	colors := colorSpaceOf(view.SurfaceConfig().Format)

	return &TextureContext{
		ctx:    view.Context(),
		format: colors.textureFormat(),
	}
}

// CreateTexture uploads img into a new texture. The texture is released
// once it is garbage collected.
func (tc *TextureContext) CreateTexture(img image.Image) (graphics.Texture, error) {
	texture, err := NewTextureFromImage(tc.ctx, img, tc.format)
	if err != nil {
		return nil, err
	}

	return releaseWithGC(texture), nil
}

func (tc *TextureContext) UpdateTexture(texture graphics.Texture, img image.Image) error {
	tex, ok := texture.(*Texture)
	if !ok {
		return fmt.Errorf("unsupported texture %T", texture)
	}

	return tex.Update(tc.ctx, img)
}

func (tc *TextureContext) LoadFont(path string) (graphics.GlyphCache, error) {
	glyphs, err := LoadGlyphCache(tc.ctx, path)
	if err != nil {
		return nil, err
	}

	return releaseWithGC(glyphs), nil
}

func (tc *TextureContext) BuiltinFont(builtin BuiltinFont) (graphics.GlyphCache, error) {
	glyphs, err := NewBuiltinGlyphCache(tc.ctx, builtin)
	if err != nil {
		return nil, err
	}

	return releaseWithGC(glyphs), nil
}

// DecodeImageFile decodes png, jpeg, gif, bmp and webp images.
func DecodeImageFile(path string) (image.Image, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer fp.Close()

	img, _, err := image.Decode(fp)
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", path, err)
	}

	return img, nil
}
