package script

import (
	"errors"
	"image"
	"testing"

	"github.com/oliverbestmann/pistonwindow/graphics"
	"github.com/oliverbestmann/pistonwindow/orion"
	"github.com/oliverbestmann/pistonwindow/orion/oriontest"
)

func TestDrawWithoutEvent(t *testing.T) {
	ts := newTestSession(t)

	if err := ts.Draw(nil); !errors.Is(err, ErrNoEvent) {
		t.Fatalf("expected ErrNoEvent, got %v", err)
	}
}

func TestDrawIgnoresOtherEvents(t *testing.T) {
	ts := newTestSession(t)
	ts.event = orion.Update{Dt: 1.0 / 120}

	if err := ts.Draw([]Instruction{{Op: OpClear}}); err != nil {
		t.Fatal(err)
	}

	if len(ts.renderer.Draws) != 0 {
		t.Fatalf("expected no draw, got %d", len(ts.renderer.Draws))
	}
}

func TestDrawReplaysInstructions(t *testing.T) {
	ts := newTestSession(t)

	if _, err := ts.NextEvent(); err != nil {
		t.Fatal(err)
	}

	texture := &oriontest.FakeTexture{W: 16, H: 8}
	glyphs := &fakeGlyphs{name: "font"}
	offset := graphics.Translation(10, 20)

	list := []Instruction{
		{Op: OpClear, Color: graphics.Color{0, 0, 0, 1}},
		{Op: OpRectangle, Color: graphics.Color{1, 0, 0, 1}, Rect: graphics.Rect{1, 2, 3, 4}, Transform: &offset},
		{Op: OpImage, Texture: texture},
		{Op: OpText, Font: glyphs, Size: 12, Text: "hi", Pos: [2]float32{5, 6}},
	}

	if err := ts.Draw(list); err != nil {
		t.Fatal(err)
	}

	if len(ts.renderer.Draws) != 1 {
		t.Fatalf("expected one draw, got %d", len(ts.renderer.Draws))
	}

	ops := ts.renderer.Graphics.Ops
	if len(ops) != 4 {
		t.Fatalf("expected 4 ops, got %d", len(ops))
	}

	ctx := graphics.NewContext(ts.renderer.Draws[0].Viewport)

	if ops[1].Transform != graphics.Mul(ctx.Transform, offset) {
		t.Errorf("rectangle transform %v", ops[1].Transform)
	}

	if ops[2].Rect != (graphics.Rect{0, 0, 16, 8}) {
		t.Errorf("image without rect drawn at %v", ops[2].Rect)
	}

	if ops[3].Transform != graphics.Mul(ctx.Transform, graphics.Translation(5, 6)) {
		t.Errorf("text not moved to its position: %v", ops[3].Transform)
	}

	if len(ts.gpu.Presented) != 1 {
		t.Errorf("frame not presented")
	}
}

func TestDrawPolygon(t *testing.T) {
	ts := newTestSession(t)
	_, _ = ts.NextEvent()

	outline := [][2]float32{{0, 0}, {4, 0}, {4, 1}, {1, 1}, {1, 4}, {0, 4}}

	err := ts.Draw([]Instruction{{Op: OpPolygon, Color: graphics.ColorWhite, Points: outline}})
	if err != nil {
		t.Fatal(err)
	}

	ops := ts.renderer.Graphics.Ops
	if len(ops) != 1 || ops[0].Name != "polygon" || len(ops[0].Points) != len(outline) {
		t.Fatalf("unexpected ops %+v", ops)
	}

	err = ts.Draw([]Instruction{{Op: OpPolygon, Points: outline[:2]}})
	if !errors.Is(err, ErrInvalidDraw) {
		t.Errorf("polygon with two points = %v, want ErrInvalidDraw", err)
	}
}

func TestDrawFailure(t *testing.T) {
	ts := newTestSession(t)
	_, _ = ts.NextEvent()

	ts.renderer.Graphics.TextErr = errors.New("glyph missing")

	err := ts.Draw([]Instruction{{Op: OpText, Font: &fakeGlyphs{}, Text: "x"}})
	if !errors.Is(err, ErrDrawFailed) {
		t.Fatalf("expected ErrDrawFailed, got %v", err)
	}

	ts.gpu.AcquireErr = errors.New("surface lost")

	if err := ts.Draw(nil); !errors.Is(err, ErrDrawFailed) {
		t.Fatalf("expected ErrDrawFailed, got %v", err)
	}
}

func TestTextureTable(t *testing.T) {
	ts := newTestSession(t)

	if _, err := ts.CreateTexture(0); !errors.Is(err, ErrImageOutOfBounds) {
		t.Fatalf("expected ErrImageOutOfBounds, got %v", err)
	}

	imageID := ts.AddImage("sprite", image.NewRGBA(image.Rect(0, 0, 4, 2)))

	textureID, err := ts.CreateTexture(imageID)
	if err != nil {
		t.Fatal(err)
	}

	if textureID != 0 || len(ts.textures.created) != 1 {
		t.Fatalf("unexpected texture id %d", textureID)
	}

	if err := ts.UpdateTexture(TextureRef{ID: textureID}, ImageRef{ID: imageID}); err != nil {
		t.Fatal(err)
	}

	texture := ts.Session.textures[textureID].(*oriontest.FakeTexture)
	if texture.Updates != 1 {
		t.Fatalf("expected one update, got %d", texture.Updates)
	}

	if err := ts.UpdateTexture(TextureRef{ID: 7}, ImageRef{ID: imageID}); !errors.Is(err, ErrTextureOutOfBounds) {
		t.Fatalf("expected ErrTextureOutOfBounds, got %v", err)
	}

	if err := ts.UpdateTexture(TextureRef{ID: textureID}, ImageRef{ID: -1}); !errors.Is(err, ErrImageOutOfBounds) {
		t.Fatalf("expected ErrImageOutOfBounds, got %v", err)
	}

	width, height, err := ts.ImageSize(ImageRef{ID: imageID})
	if err != nil || width != 4 || height != 2 {
		t.Fatalf("ImageSize() = %d, %d, %v", width, height, err)
	}
}

func TestTextureErrors(t *testing.T) {
	ts := newTestSession(t)

	imageID := ts.AddImage("sprite", image.NewRGBA(image.Rect(0, 0, 1, 1)))

	ts.textures.createErr = errors.New("out of memory")
	if _, err := ts.CreateTexture(imageID); !errors.Is(err, ErrCreateTexture) {
		t.Fatalf("expected ErrCreateTexture, got %v", err)
	}

	ts.textures.createErr = nil
	textureID, _ := ts.CreateTexture(imageID)

	ts.textures.updateErr = errors.New("size mismatch")
	if err := ts.UpdateTexture(TextureRef{ID: textureID}, ImageRef{ID: imageID}); !errors.Is(err, ErrUpdateTexture) {
		t.Fatalf("expected ErrUpdateTexture, got %v", err)
	}

	ts.textures.fontErr = errors.New("not a font")
	if _, err := ts.LoadFont("broken.ttf"); err == nil {
		t.Fatal("expected font error")
	}

	if len(ts.fonts) != 0 {
		t.Fatal("failed font was added to the table")
	}
}

func TestLoadFontAppendsToTable(t *testing.T) {
	ts := newTestSession(t)

	id, err := ts.LoadFont("fonts/a.ttf")
	if err != nil || id != 0 {
		t.Fatalf("LoadFont() = %d, %v", id, err)
	}

	id, _ = ts.LoadFont("fonts/b.ttf")
	if name, _ := ts.FontName(id); name != "fonts/b.ttf" {
		t.Fatalf("unexpected font name %q", name)
	}

	glyphs, err := ts.LoadFontObject("fonts/c.ttf")
	if err != nil || glyphs == nil {
		t.Fatalf("LoadFontObject() = %v, %v", glyphs, err)
	}

	if len(ts.fonts) != 2 {
		t.Fatalf("font objects must not be added to the table")
	}

	if _, err := ts.FontName(5); !errors.Is(err, ErrFontOutOfBounds) {
		t.Fatalf("expected ErrFontOutOfBounds, got %v", err)
	}
}

func TestOpString(t *testing.T) {
	if OpEllipse.String() != "ellipse" {
		t.Errorf("unexpected name %q", OpEllipse.String())
	}

	if Op(42).String() != "Op(42)" {
		t.Errorf("unexpected name %q", Op(42).String())
	}
}

func TestDrawAfterResize(t *testing.T) {
	ts := newTestSession(t)

	ts.win.Resize(800, 600)

	for {
		ok, err := ts.NextEvent()
		if !ok || err != nil {
			t.Fatal("event stream ended")
		}

		if _, ok := ts.Event().(orion.Render); ok {
			break
		}
	}

	if err := ts.Draw([]Instruction{{Op: OpClear}}); err != nil {
		t.Fatal(err)
	}

	config := ts.renderer.Draws[0].Config
	if config.Width != 800 || config.Height != 600 {
		t.Fatalf("drawn with surface %dx%d", config.Width, config.Height)
	}
}
