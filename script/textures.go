package script

import (
	"errors"
	"fmt"
	"image"

	"github.com/oliverbestmann/pistonwindow/graphics"
	"github.com/oliverbestmann/pistonwindow/pulse"
)

var (
	ErrImageOutOfBounds   = errors.New("image id out of bounds")
	ErrTextureOutOfBounds = errors.New("texture id out of bounds")
	ErrFontOutOfBounds    = errors.New("font id out of bounds")
	ErrExpectedImage      = errors.New("expected image")
	ErrExpectedTexture    = errors.New("expected texture")
	ErrExpectedFont       = errors.New("expected font")
	ErrCreateTexture      = errors.New("could not create texture")
	ErrUpdateTexture      = errors.New("could not update texture")
)

// ImageRef refers to an image either by its id in the image table or
// directly. Exactly one of the two is used.
type ImageRef struct {
	ID    int
	Image image.Image
}

// TextureRef refers to a texture either by id or directly.
type TextureRef struct {
	ID      int
	Texture graphics.Texture
}

func (s *Session) image(ref ImageRef) (image.Image, error) {
	if ref.Image != nil {
		return ref.Image, nil
	}

	if ref.ID < 0 || ref.ID >= len(s.images) {
		return nil, fmt.Errorf("image %d: %w", ref.ID, ErrImageOutOfBounds)
	}

	return s.images[ref.ID], nil
}

func (s *Session) texture(ref TextureRef) (graphics.Texture, error) {
	if ref.Texture != nil {
		return ref.Texture, nil
	}

	if ref.ID < 0 || ref.ID >= len(s.textures) {
		return nil, fmt.Errorf("texture %d: %w", ref.ID, ErrTextureOutOfBounds)
	}

	return s.textures[ref.ID], nil
}

func (s *Session) font(id int) (graphics.GlyphCache, error) {
	if id < 0 || id >= len(s.fonts) {
		return nil, fmt.Errorf("font %d: %w", id, ErrFontOutOfBounds)
	}

	return s.fonts[id], nil
}

// LoadImage decodes the image file and appends it to the image table.
func (s *Session) LoadImage(file string) (int, error) {
	img, err := s.LoadImageObject(file)
	if err != nil {
		return 0, err
	}

	return s.AddImage(file, img), nil
}

// LoadImageObject decodes the image file without adding it to the table.
func (s *Session) LoadImageObject(file string) (image.Image, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	return pulse.DecodeImageFile(file)
}

// ImageSize returns the size of the referenced image.
func (s *Session) ImageSize(ref ImageRef) (width, height int, err error) {
	img, err := s.image(ref)
	if err != nil {
		return 0, 0, err
	}

	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}

// CreateTexture uploads the image table entry id into a new texture and
// appends it to the texture table.
func (s *Session) CreateTexture(id int) (int, error) {
	texture, err := s.createTexture(ImageRef{ID: id})
	if err != nil {
		return 0, err
	}

	s.textures = append(s.textures, texture)
	return len(s.textures) - 1, nil
}

// CreateTextureObject uploads the referenced image into a texture that
// is not added to the texture table. It is still released with the session.
func (s *Session) CreateTextureObject(ref ImageRef) (graphics.Texture, error) {
	texture, err := s.createTexture(ref)
	if err != nil {
		return nil, err
	}

	s.objects = append(s.objects, texture)
	return texture, nil
}

func (s *Session) createTexture(ref ImageRef) (graphics.Texture, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	img, err := s.image(ref)
	if err != nil {
		return nil, err
	}

	texture, err := s.textureContext.CreateTexture(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateTexture, err)
	}

	return texture, nil
}

// UpdateTexture replaces the content of the texture with the image.
func (s *Session) UpdateTexture(textureRef TextureRef, imageRef ImageRef) error {
	if s.closed {
		return ErrSessionClosed
	}

	img, err := s.image(imageRef)
	if err != nil {
		return err
	}

	texture, err := s.texture(textureRef)
	if err != nil {
		return err
	}

	if err := s.textureContext.UpdateTexture(texture, img); err != nil {
		return fmt.Errorf("%w: %w", ErrUpdateTexture, err)
	}

	return nil
}

// LoadFont loads a font file into a new glyph cache and appends it to the
// font table.
func (s *Session) LoadFont(file string) (int, error) {
	glyphs, err := s.loadFont(file)
	if err != nil {
		return 0, err
	}

	return s.AddFont(file, glyphs), nil
}

// LoadFontObject loads a font file into a glyph cache that is not added
// to the font table. It is still released with the session.
func (s *Session) LoadFontObject(file string) (graphics.GlyphCache, error) {
	glyphs, err := s.loadFont(file)
	if err != nil {
		return nil, err
	}

	s.objects = append(s.objects, glyphs)
	return glyphs, nil
}

func (s *Session) loadFont(file string) (graphics.GlyphCache, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	return s.textureContext.LoadFont(file)
}

// FontName returns the name the font was added with.
func (s *Session) FontName(id int) (string, error) {
	if _, err := s.font(id); err != nil {
		return "", err
	}

	return s.fontNames[id], nil
}

// ImageName returns the name the image was added with.
func (s *Session) ImageName(id int) (string, error) {
	if _, err := s.image(ImageRef{ID: id}); err != nil {
		return "", err
	}

	return s.imageNames[id], nil
}
