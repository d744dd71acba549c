package pulse

import (
	"fmt"
	"image"
	"image/draw"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Texture wraps a wgpu.Texture and an identity wgpu.TextureView.
// A Texture can represent a sub region of another texture.
type Texture struct {
	// point to root Texture this texture is a part of.
	root *Texture

	texture     *wgpu.Texture
	textureView *wgpu.TextureView

	// equal to texture.GetFormat()
	format wgpu.TextureFormat

	// sub texture
	region Rectangle2u
}

type NewTextureOptions struct {
	Format wgpu.TextureFormat
	Width  uint32
	Height uint32
	Label  string
}

func NewTexture(ctx *Context, opts NewTextureOptions) (*Texture, error) {
	return NewTextureFromDesc(ctx, &wgpu.TextureDescriptor{
		Label:         opts.Label,
		Format:        opts.Format,
		SampleCount:   1,
		MipLevelCount: 1,

		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              opts.Width,
			Height:             opts.Height,
			DepthOrArrayLayers: 1,
		},

		Usage: wgpu.TextureUsageTextureBinding |
			wgpu.TextureUsageCopyDst,
	})
}

// NewTextureFromDesc gives you full control and creates a texture directly from
// a texture descriptor
func NewTextureFromDesc(ctx *Context, desc *wgpu.TextureDescriptor) (*Texture, error) {
	texture, err := ctx.Device.CreateTexture(desc)
	if err != nil {
		return nil, err
	}

	textureView, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, err
	}

	t := &Texture{
		texture:     texture,
		textureView: textureView,
		format:      desc.Format,
		region:      RectangleFromXYWH(0, 0, desc.Size.Width, desc.Size.Height),
	}

	// texture itself is the root
	t.root = t

	return t, nil
}

// NewTextureFromImage uploads the pixels of src into a new texture.
func NewTextureFromImage(ctx *Context, src image.Image, format wgpu.TextureFormat) (*Texture, error) {
	rgba := toRGBA(src)

	t, err := NewTexture(ctx, NewTextureOptions{
		Format: format,
		Width:  uint32(rgba.Rect.Dx()),
		Height: uint32(rgba.Rect.Dy()),
		Label:  "Image",
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}

	err = t.WritePixels(ctx, rgba.Pix)
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("upload texture: %w", err)
	}

	return t, nil
}

// SubTexture returns a view on a region of this texture. pos is relative
// to the region of t.
func (t *Texture) SubTexture(pos Vec2[uint32], size Vec2[uint32]) *Texture {
	sub := *t
	sub.region = RectangleFromSize(t.region.Min.Add(pos), size)
	return &sub
}

func (t *Texture) Root() *Texture {
	return t.root
}

func (t *Texture) IsSubTexture() bool {
	return t != t.root
}

func (t *Texture) Width() uint32 {
	return t.region.Width()
}

func (t *Texture) Height() uint32 {
	return t.region.Height()
}

func (t *Texture) Region() Rectangle2u {
	return t.region
}

// UV returns the uv offset and scale of this textures region within
// the root texture.
func (t *Texture) UV() (offset, scale [2]float32) {
	rw, rh := float32(t.root.Width()), float32(t.root.Height())
	x, y, w, h := t.region.XYWH()

	offset = [2]float32{float32(x) / rw, float32(y) / rh}
	scale = [2]float32{float32(w) / rw, float32(h) / rh}
	return
}

func (t *Texture) Format() wgpu.TextureFormat {
	return t.format
}

func (t *Texture) View() *wgpu.TextureView {
	return t.textureView
}

// Release releases the texture view. This only works for the root texture,
// not for a sub texture. You must be sure to not use the texture after
// calling release.
func (t *Texture) Release() {
	if t.root == t && t.texture != nil {
		runtime.SetFinalizer(t, nil)

		t.textureView.Release()
		t.texture.Release()

		t.textureView = nil
		t.texture = nil
	}
}

func (t *Texture) WritePixels(ctx *Context, pixels []byte) error {
	return t.WritePixelsToRect(ctx, WritePixelsOptions{
		Pixels: pixels,
		Region: t.region,
	})
}

type WritePixelsOptions struct {
	Pixels []byte
	Region Rectangle2u
	Stride uint32
}

func (t *Texture) WritePixelsToRect(ctx *Context, opts WritePixelsOptions) error {
	if !t.region.Contains(opts.Region) {
		return fmt.Errorf("target rect %s not in texture region %s", opts.Region, t.region)
	}

	if opts.Stride == 0 {
		opts.Stride = opts.Region.Width() * 4
	}

	layout := &wgpu.TexelCopyBufferLayout{
		Offset:       0,
		BytesPerRow:  opts.Stride,
		RowsPerImage: opts.Region.Height(),
	}

	size := &wgpu.Extent3D{
		Width:              opts.Region.Width(),
		Height:             opts.Region.Height(),
		DepthOrArrayLayers: 1,
	}

	dest := &wgpu.TexelCopyTextureInfo{
		Texture: t.texture,
		Origin: wgpu.Origin3D{
			X: opts.Region.Min[0],
			Y: opts.Region.Min[1],
		},
		Aspect: wgpu.TextureAspectAll,
	}

	err := ctx.WriteTexture(dest, opts.Pixels, layout, size)
	if err != nil {
		return fmt.Errorf("copy image data to texture: %w", err)
	}

	return nil
}

// Update replaces the content of the texture with src. The image must
// have the same size as the texture.
func (t *Texture) Update(ctx *Context, src image.Image) error {
	bounds := src.Bounds()
	if uint32(bounds.Dx()) != t.Width() || uint32(bounds.Dy()) != t.Height() {
		return fmt.Errorf("image size %dx%d does not match texture size %dx%d",
			bounds.Dx(), bounds.Dy(), t.Width(), t.Height())
	}

	return t.WritePixels(ctx, toRGBA(src).Pix)
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}

	iw, ih := src.Bounds().Dx(), src.Bounds().Dy()
	rgba := image.NewRGBA(image.Rect(0, 0, iw, ih))
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)

	return rgba
}
