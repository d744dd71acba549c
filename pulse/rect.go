package pulse

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

type numeric interface {
	constraints.Integer | constraints.Float
}

type Vec2[T numeric] [2]T

func (v Vec2[T]) Add(other Vec2[T]) Vec2[T] {
	return Vec2[T]{v[0] + other[0], v[1] + other[1]}
}

func (v Vec2[T]) Sub(other Vec2[T]) Vec2[T] {
	return Vec2[T]{v[0] - other[0], v[1] - other[1]}
}

type Rectangle2f = Rectangle2[float32]
type Rectangle2u = Rectangle2[uint32]

type Rectangle2[T numeric] struct {
	Min Vec2[T]
	Max Vec2[T]
}

func RectangleFromXYWH[T numeric](x, y, w, h T) Rectangle2[T] {
	return RectangleFromSize(Vec2[T]{x, y}, Vec2[T]{w, h})
}

func RectangleFromSize[T numeric](pos Vec2[T], size Vec2[T]) Rectangle2[T] {
	return RectangleFromPoints(pos, pos.Add(size))
}

func RectangleFromPoints[T numeric](a, b Vec2[T]) Rectangle2[T] {
	return Rectangle2[T]{
		Min: Vec2[T]{min(a[0], b[0]), min(a[1], b[1])},
		Max: Vec2[T]{max(a[0], b[0]), max(a[1], b[1])},
	}
}

func (r Rectangle2[T]) Size() Vec2[T] {
	return r.Max.Sub(r.Min)
}

func (r Rectangle2[T]) Width() T {
	return r.Max[0] - r.Min[0]
}

func (r Rectangle2[T]) Height() T {
	return r.Max[1] - r.Min[1]
}

func (r Rectangle2[T]) XYWH() (T, T, T, T) {
	size := r.Size()
	return r.Min[0], r.Min[1], size[0], size[1]
}

// Contains returns true, if other lies completely within r.
func (r Rectangle2[T]) Contains(other Rectangle2[T]) bool {
	return other.Min[0] >= r.Min[0] && other.Min[1] >= r.Min[1] &&
		other.Max[0] <= r.Max[0] && other.Max[1] <= r.Max[1]
}

func (r Rectangle2[T]) String() string {
	x, y, w, h := r.XYWH()
	return fmt.Sprintf("Rect(x=%v, y=%v, w=%v, h=%v)", x, y, w, h)
}
