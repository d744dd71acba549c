package pulse

import (
	"errors"
	"testing"
)

func TestGlyphCacheWidth(t *testing.T) {
	glyphs, err := NewBuiltinGlyphCache(nil, FontMono)
	if err != nil {
		t.Fatalf("NewBuiltinGlyphCache() = %v", err)
	}

	empty, err := glyphs.Width(16, "")
	if err != nil || empty != 0 {
		t.Fatalf("Width(\"\") = %v, %v", empty, err)
	}

	one, _ := glyphs.Width(16, "a")
	four, _ := glyphs.Width(16, "abcd")

	if one <= 0 {
		t.Fatalf("width of a single glyph is %v", one)
	}

	// monospace font
	if four != 4*one {
		t.Errorf("Width(abcd) = %v, want %v", four, 4*one)
	}

	larger, _ := glyphs.Width(32, "a")
	if larger <= one {
		t.Errorf("width does not grow with size: %v <= %v", larger, one)
	}
}

func TestGlyphCacheLayoutWithoutGPU(t *testing.T) {
	glyphs, err := NewBuiltinGlyphCache(nil, FontRegular)
	if err != nil {
		t.Fatalf("NewBuiltinGlyphCache() = %v", err)
	}

	_, err = glyphs.layout(12, "hello")
	if !errors.Is(err, ErrNoGPU) {
		t.Errorf("layout() = %v, want ErrNoGPU", err)
	}
}

func TestGlyphCacheFullAtlasKeepsOldOne(t *testing.T) {
	glyphs, err := NewBuiltinGlyphCache(nil, FontMono)
	if err != nil {
		t.Fatalf("NewBuiltinGlyphCache() = %v", err)
	}

	var atlases []*Texture
	glyphs.newAtlas = func() (*Texture, error) {
		atlas := newTestTexture(atlasSize, atlasSize)
		atlases = append(atlases, atlas)
		return atlas, nil
	}

	glyphs.glyphs[glyphKey{size: 12, char: 'a'}] = glyph{}

	for range 2 {
		pos, err := glyphs.allocate(600, 600)
		if err != nil {
			t.Fatalf("allocate() = %v", err)
		}

		if pos.X != 0 || pos.Y != 0 {
			t.Errorf("allocate() = %v, want origin of a fresh atlas", pos)
		}
	}

	if len(atlases) != 2 {
		t.Fatalf("created %d atlases, want 2", len(atlases))
	}

	if glyphs.atlas != atlases[1] {
		t.Errorf("glyphs are not placed into the new atlas")
	}

	if len(glyphs.retired) != 1 || glyphs.retired[0] != atlases[0] {
		t.Errorf("full atlas was not retired: %v", glyphs.retired)
	}

	if len(glyphs.glyphs) != 0 {
		t.Errorf("glyphs of the full atlas are still cached")
	}

	glyphs.Release()

	if glyphs.atlas != nil || glyphs.retired != nil {
		t.Errorf("atlases not released")
	}
}

func TestNewGlyphCacheInvalidFont(t *testing.T) {
	if _, err := NewGlyphCache(nil, []byte("not a font")); err == nil {
		t.Errorf("NewGlyphCache() accepted garbage")
	}
}

func TestRectangleContains(t *testing.T) {
	outer := RectangleFromXYWH[uint32](0, 0, 10, 10)

	if !outer.Contains(RectangleFromXYWH[uint32](2, 2, 8, 8)) {
		t.Errorf("expected inner rect to be contained")
	}

	if outer.Contains(RectangleFromXYWH[uint32](2, 2, 9, 8)) {
		t.Errorf("rect reaching outside must not be contained")
	}
}
