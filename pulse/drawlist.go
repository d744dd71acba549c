package pulse

import (
	"fmt"
	"log/slog"
	"math"
	"structs"

	"github.com/oliverbestmann/earcut-go"
	"github.com/oliverbestmann/pistonwindow/graphics"
	"golang.org/x/image/math/f32"
	mf32 "golang.org/x/mobile/exp/f32"
)

// number of segments used to approximate a full ellipse
const ellipseSegments = 64

type meshVertex struct {
	_ structs.HostLayout

	// position in normalized device coordinates
	Position [2]float32
	Color    graphics.Color
}

type spriteInstance struct {
	_ structs.HostLayout

	// Color to tint the sprite with
	Color graphics.Color

	UVOffset [2]float32
	UVScale  [2]float32

	// first and second row of the affine transform mapping
	// the unit square into normalized device coordinates
	Row0 [3]float32
	Row1 [3]float32
}

type batchKind uint8

const (
	batchMesh batchKind = iota
	batchSprite
)

// batch is a consecutive range of vertices or instances that can be
// drawn with a single draw call.
type batch struct {
	kind batchKind

	// root texture of all sprites in this batch
	texture *Texture

	first uint32
	count uint32
}

// drawList records the primitives of one frame. It implements
// graphics.Graphics, geometry is transformed on the cpu.
type drawList struct {
	colors colorSpace

	cleared    bool
	clearColor graphics.Color

	vertices  []meshVertex
	instances []spriteInstance
	batches   []batch
}

var _ graphics.Graphics = (*drawList)(nil)

func (d *drawList) reset(colors colorSpace) {
	d.colors = colors
	d.cleared = false
	d.clearColor = graphics.Color{}
	d.vertices = d.vertices[:0]
	d.instances = d.instances[:0]
	d.batches = d.batches[:0]
}

func (d *drawList) Clear(color graphics.Color) {
	// everything drawn so far would be overwritten anyway
	d.vertices = d.vertices[:0]
	d.instances = d.instances[:0]
	d.batches = d.batches[:0]

	d.cleared = true
	d.clearColor = color
}

func (d *drawList) Rectangle(color graphics.Color, rect graphics.Rect, transform f32.Aff3) {
	x, y, w, h := rect.XYWH()

	d.convex(color, transform, [][2]float32{
		{x, y},
		{x + w, y},
		{x + w, y + h},
		{x, y + h},
	})
}

func (d *drawList) Ellipse(color graphics.Color, rect graphics.Rect, transform f32.Aff3) {
	x, y, w, h := rect.XYWH()
	d.ellipse(color, x+w/2, y+h/2, w/2, h/2, transform)
}

// Polygon fills a simple polygon that may be concave. It is split into
// triangles using ear clipping.
func (d *drawList) Polygon(color graphics.Color, polygon [][2]float32, transform f32.Aff3) {
	if len(polygon) < 3 {
		return
	}

	outline := make([]earcut.Point[float32], len(polygon))
	for idx, p := range polygon {
		outline[idx] = earcut.Point[float32]{X: p[0], Y: p[1]}
	}

	points, indices := earcut.Triangulate(outline, nil)
	if len(indices) == 0 {
		return
	}

	color = d.colors.convert(color)

	for _, idx := range indices {
		x, y := graphics.Apply(transform, points[idx].X, points[idx].Y)
		d.vertices = append(d.vertices, meshVertex{Position: [2]float32{x, y}, Color: color})
	}

	d.extend(batchMesh, nil, uint32(len(indices)))
}

func (d *drawList) Line(color graphics.Color, radius float32, line [4]float32, transform f32.Aff3) {
	x1, y1, x2, y2 := line[0], line[1], line[2], line[3]

	dx, dy := x2-x1, y2-y1
	length := mf32.Sqrt(dx*dx + dy*dy)

	if length > 0 {
		// normal scaled to the radius of the line
		nx, ny := -dy/length*radius, dx/length*radius

		d.convex(color, transform, [][2]float32{
			{x1 + nx, y1 + ny},
			{x2 + nx, y2 + ny},
			{x2 - nx, y2 - ny},
			{x1 - nx, y1 - ny},
		})
	}

	// round caps
	d.ellipse(color, x1, y1, radius, radius, transform)
	d.ellipse(color, x2, y2, radius, radius, transform)
}

func (d *drawList) Image(texture graphics.Texture, rect graphics.Rect, transform f32.Aff3) {
	tex, ok := texture.(*Texture)
	if !ok {
		slog.Warn("Can not draw foreign texture", slog.String("type", fmt.Sprintf("%T", texture)))
		return
	}

	d.sprite(tex, graphics.ColorWhite, rect, transform)
}

func (d *drawList) Text(glyphs graphics.GlyphCache, size uint32, color graphics.Color, text string, transform f32.Aff3) error {
	cache, ok := glyphs.(*GlyphCache)
	if !ok {
		return fmt.Errorf("unsupported glyph cache %T", glyphs)
	}

	quads, err := cache.layout(size, text)
	if err != nil {
		return fmt.Errorf("layout text: %w", err)
	}

	for _, quad := range quads {
		d.sprite(quad.texture, color, quad.rect, transform)
	}

	return nil
}

func (d *drawList) ellipse(color graphics.Color, cx, cy, rx, ry float32, transform f32.Aff3) {
	points := make([][2]float32, ellipseSegments)

	for idx := range points {
		angle := 2 * math.Pi * float32(idx) / ellipseSegments
		points[idx] = [2]float32{
			cx + rx*mf32.Cos(angle),
			cy + ry*mf32.Sin(angle),
		}
	}

	d.convex(color, transform, points)
}

// convex adds a convex polygon as a triangle fan.
func (d *drawList) convex(color graphics.Color, transform f32.Aff3, points [][2]float32) {
	if len(points) < 3 {
		return
	}

	color = d.colors.convert(color)

	vertex := func(p [2]float32) meshVertex {
		x, y := graphics.Apply(transform, p[0], p[1])
		return meshVertex{Position: [2]float32{x, y}, Color: color}
	}

	first := vertex(points[0])
	prev := vertex(points[1])

	for _, point := range points[2:] {
		next := vertex(point)
		d.vertices = append(d.vertices, first, prev, next)
		prev = next
	}

	d.extend(batchMesh, nil, uint32(3*(len(points)-2)))
}

func (d *drawList) sprite(texture *Texture, color graphics.Color, rect graphics.Rect, transform f32.Aff3) {
	x, y, w, h := rect.XYWH()

	// map the unit square onto rect
	model := graphics.Mul(transform, graphics.Mul(graphics.Translation(x, y), graphics.Scaling(w, h)))

	uvOffset, uvScale := texture.UV()

	d.instances = append(d.instances, spriteInstance{
		Color:    d.colors.convert(color),
		UVOffset: uvOffset,
		UVScale:  uvScale,
		Row0:     [3]float32{model[0], model[1], model[2]},
		Row1:     [3]float32{model[3], model[4], model[5]},
	})

	d.extend(batchSprite, texture.Root(), 1)
}

// extend appends count elements to the last batch if it is compatible,
// otherwise a new batch is started.
func (d *drawList) extend(kind batchKind, texture *Texture, count uint32) {
	if n := len(d.batches); n > 0 {
		last := &d.batches[n-1]
		if last.kind == kind && last.texture == texture {
			last.count += count
			return
		}
	}

	var first uint32
	switch kind {
	case batchMesh:
		first = uint32(len(d.vertices)) - count
	case batchSprite:
		first = uint32(len(d.instances)) - count
	}

	d.batches = append(d.batches, batch{
		kind:    kind,
		texture: texture,
		first:   first,
		count:   count,
	})
}
