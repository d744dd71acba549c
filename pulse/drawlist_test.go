package pulse

import (
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/pistonwindow/graphics"
)

func newTestTexture(width, height uint32) *Texture {
	t := &Texture{region: RectangleFromXYWH(0, 0, width, height)}
	t.root = t
	return t
}

func TestDrawListRectangle(t *testing.T) {
	var list drawList
	list.reset(colorSpace{})

	red := graphics.Color{1, 0, 0, 1}
	list.Rectangle(red, graphics.Rect{0, 0, 10, 20}, graphics.Translation(5, 5))

	if len(list.vertices) != 6 {
		t.Fatalf("got %d vertices, want 6", len(list.vertices))
	}

	if got := list.vertices[0].Position; got != [2]float32{5, 5} {
		t.Errorf("first vertex at %v, want [5 5]", got)
	}

	if got := list.vertices[2].Position; got != [2]float32{15, 25} {
		t.Errorf("third vertex at %v, want [15 25]", got)
	}

	if len(list.batches) != 1 || list.batches[0].count != 6 {
		t.Fatalf("unexpected batches %+v", list.batches)
	}

	if list.vertices[0].Color != red {
		t.Errorf("vertex color %v, want %v", list.vertices[0].Color, red)
	}
}

func TestDrawListConcavePolygon(t *testing.T) {
	var list drawList
	list.reset(colorSpace{})

	// an L shape with an area of 7
	outline := [][2]float32{{0, 0}, {4, 0}, {4, 1}, {1, 1}, {1, 4}, {0, 4}}
	list.Polygon(graphics.ColorWhite, outline, graphics.Translation(10, 0))

	if len(list.vertices) != 3*(len(outline)-2) {
		t.Fatalf("got %d vertices, want %d", len(list.vertices), 3*(len(outline)-2))
	}

	var area float32
	for idx := 0; idx < len(list.vertices); idx += 3 {
		a, b, c := list.vertices[idx].Position, list.vertices[idx+1].Position, list.vertices[idx+2].Position
		area += float32(math.Abs(float64((b[0]-a[0])*(c[1]-a[1])-(c[0]-a[0])*(b[1]-a[1])))) / 2
	}

	if math.Abs(float64(area-7)) > 1e-4 {
		t.Errorf("triangles cover an area of %v, want 7", area)
	}

	for _, vertex := range list.vertices {
		if vertex.Position[0] < 10 || vertex.Position[0] > 14 {
			t.Fatalf("vertex %v not translated", vertex.Position)
		}
	}

	if len(list.batches) != 1 || list.batches[0].count != uint32(len(list.vertices)) {
		t.Errorf("unexpected batches %+v", list.batches)
	}

	// degenerate outlines draw nothing
	list.Polygon(graphics.ColorWhite, outline[:2], graphics.Identity())
	if len(list.batches) != 1 {
		t.Errorf("degenerate polygon added a batch")
	}
}

func TestDrawListMergesBatches(t *testing.T) {
	var list drawList
	list.reset(colorSpace{})

	a := newTestTexture(4, 4)
	b := newTestTexture(4, 4)

	list.Rectangle(graphics.ColorWhite, graphics.Rect{0, 0, 1, 1}, graphics.Identity())
	list.Ellipse(graphics.ColorWhite, graphics.Rect{0, 0, 1, 1}, graphics.Identity())
	list.Image(a, graphics.Rect{0, 0, 4, 4}, graphics.Identity())
	list.Image(a.SubTexture(Vec2[uint32]{1, 1}, Vec2[uint32]{2, 2}), graphics.Rect{0, 0, 4, 4}, graphics.Identity())
	list.Image(b, graphics.Rect{0, 0, 4, 4}, graphics.Identity())
	list.Rectangle(graphics.ColorWhite, graphics.Rect{0, 0, 1, 1}, graphics.Identity())

	want := []batch{
		{kind: batchMesh, first: 0, count: 6 + 3*(ellipseSegments-2)},
		{kind: batchSprite, texture: a, first: 0, count: 2},
		{kind: batchSprite, texture: b, first: 2, count: 1},
		{kind: batchMesh, first: 6 + 3*(ellipseSegments-2), count: 6},
	}

	if len(list.batches) != len(want) {
		t.Fatalf("got %d batches, want %d: %+v", len(list.batches), len(want), list.batches)
	}

	for idx := range want {
		if list.batches[idx] != want[idx] {
			t.Errorf("batch %d = %+v, want %+v", idx, list.batches[idx], want[idx])
		}
	}
}

func TestDrawListClearDiscardsPrevious(t *testing.T) {
	var list drawList
	list.reset(colorSpace{})

	list.Rectangle(graphics.ColorWhite, graphics.Rect{0, 0, 1, 1}, graphics.Identity())
	list.Clear(graphics.ColorBlack)

	if !list.cleared || list.clearColor != graphics.ColorBlack {
		t.Errorf("clear not recorded")
	}

	if len(list.batches) != 0 || len(list.vertices) != 0 {
		t.Errorf("primitives drawn before clear were kept")
	}

	list.reset(colorSpace{})
	if list.cleared {
		t.Errorf("reset did not forget the clear")
	}
}

func TestDrawListLineWithoutLength(t *testing.T) {
	var list drawList
	list.reset(colorSpace{})

	list.Line(graphics.ColorWhite, 2, [4]float32{1, 1, 1, 1}, graphics.Identity())

	// only the two round caps
	if want := 2 * 3 * (ellipseSegments - 2); len(list.vertices) != want {
		t.Errorf("got %d vertices, want %d", len(list.vertices), want)
	}
}

func TestSpriteInstanceTransform(t *testing.T) {
	var list drawList
	list.reset(colorSpace{})

	tex := newTestTexture(8, 8)
	sub := tex.SubTexture(Vec2[uint32]{4, 0}, Vec2[uint32]{4, 8})

	list.Image(sub, graphics.Rect{10, 20, 30, 40}, graphics.Identity())

	inst := list.instances[0]
	if inst.Row0 != [3]float32{30, 0, 10} || inst.Row1 != [3]float32{0, 40, 20} {
		t.Errorf("unexpected transform rows %v %v", inst.Row0, inst.Row1)
	}

	if inst.UVOffset != [2]float32{0.5, 0} || inst.UVScale != [2]float32{0.5, 1} {
		t.Errorf("unexpected uv %v %v", inst.UVOffset, inst.UVScale)
	}
}

func TestColorSpaceLinearizes(t *testing.T) {
	cs := colorSpaceOf(wgpu.TextureFormatBGRA8UnormSrgb)

	got := cs.convert(graphics.Color{0.5, 0, 1, 0.5})
	if got[0] < 0.21 || got[0] > 0.22 {
		t.Errorf("red channel %f not linearized", got[0])
	}

	if got[1] != 0 || got[2] != 1 || got[3] != 0.5 {
		t.Errorf("unexpected conversion %v", got)
	}

	plain := colorSpaceOf(wgpu.TextureFormatBGRA8Unorm)
	if c := (graphics.Color{0.5, 0.5, 0.5, 1}); plain.convert(c) != c {
		t.Errorf("unorm target must not convert colors")
	}
}

func TestViewportRectClampsToTarget(t *testing.T) {
	viewport := graphics.Viewport{Rect: [4]int32{-5, 10, 800, 600}}
	target := RenderTarget{Width: 640, Height: 480}

	x, y, w, h := viewportRect(viewport, target)
	if x != 0 || y != 10 || w != 640 || h != 470 {
		t.Errorf("viewportRect = %v %v %v %v", x, y, w, h)
	}
}
