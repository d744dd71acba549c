package script

import (
	"errors"
	"fmt"

	"github.com/oliverbestmann/pistonwindow/graphics"
	"github.com/oliverbestmann/pistonwindow/orion"
	"golang.org/x/image/math/f32"
)

var (
	ErrNoEvent     = errors.New("no current event")
	ErrDrawFailed  = errors.New("drawing failed")
	ErrInvalidDraw = errors.New("invalid draw instruction")
)

type Op uint8

const (
	OpClear Op = iota
	OpRectangle
	OpEllipse
	OpLine
	OpImage
	OpText
	OpPolygon
)

var opNames = map[string]Op{
	"clear":     OpClear,
	"rectangle": OpRectangle,
	"ellipse":   OpEllipse,
	"line":      OpLine,
	"image":     OpImage,
	"text":      OpText,
	"polygon":   OpPolygon,
}

func (op Op) String() string {
	for name, value := range opNames {
		if value == op {
			return name
		}
	}

	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Instruction is a single primitive of a draw list. Only the fields used
// by Op are read.
type Instruction struct {
	Op    Op
	Color graphics.Color

	// Rect of rectangle, ellipse and image. An image without a rect is
	// drawn at its natural size.
	Rect    graphics.Rect
	HasRect bool

	// Line and Radius of a line
	Line   [4]float32
	Radius float32

	// Points is the outline of a polygon
	Points [][2]float32

	Texture graphics.Texture

	// Font, Size and Text of a text, drawn with its baseline at Pos
	Font graphics.GlyphCache
	Size uint32
	Text string
	Pos  [2]float32

	// Transform is applied before the transform of the draw context
	Transform *f32.Aff3
}

func (in Instruction) apply(ctx graphics.Context, g graphics.Graphics) error {
	transform := ctx.Transform
	if in.Transform != nil {
		transform = graphics.Mul(transform, *in.Transform)
	}

	switch in.Op {
	case OpClear:
		g.Clear(in.Color)

	case OpRectangle:
		g.Rectangle(in.Color, in.Rect, transform)

	case OpEllipse:
		g.Ellipse(in.Color, in.Rect, transform)

	case OpLine:
		g.Line(in.Color, in.Radius, in.Line, transform)

	case OpPolygon:
		if len(in.Points) < 3 {
			return fmt.Errorf("%w: polygon needs at least 3 points, got %d", ErrInvalidDraw, len(in.Points))
		}

		g.Polygon(in.Color, in.Points, transform)

	case OpImage:
		rect := in.Rect
		if !in.HasRect {
			rect = graphics.Rect{0, 0, float32(in.Texture.Width()), float32(in.Texture.Height())}
		}

		g.Image(in.Texture, rect, transform)

	case OpText:
		transform = graphics.Mul(transform, graphics.Translation(in.Pos[0], in.Pos[1]))
		return g.Text(in.Font, in.Size, in.Color, in.Text, transform)

	default:
		return fmt.Errorf("%w: unknown op %d", ErrInvalidDraw, in.Op)
	}

	return nil
}

// Draw replays the instructions if the current event is a render event.
// For any other event it does nothing.
func (s *Session) Draw(list []Instruction) error {
	if s.closed {
		return ErrSessionClosed
	}

	if s.event == nil {
		return ErrNoEvent
	}

	if _, ok := s.event.(orion.Render); !ok {
		return nil
	}

	drawn, err := s.window.Draw2D(s.event, func(ctx graphics.Context, g graphics.Graphics) error {
		for idx, in := range list {
			if err := in.apply(ctx, g); err != nil {
				return fmt.Errorf("instruction %d (%s): %w", idx, in.Op, err)
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("%w: %w", ErrDrawFailed, err)
	}

	if !drawn {
		return ErrDrawFailed
	}

	return nil
}
