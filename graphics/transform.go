package graphics

import "golang.org/x/image/math/f32"

func Identity() f32.Aff3 {
	return f32.Aff3{1, 0, 0, 0, 1, 0}
}

func Translation(x, y float32) f32.Aff3 {
	return f32.Aff3{1, 0, x, 0, 1, y}
}

func Scaling(sx, sy float32) f32.Aff3 {
	return f32.Aff3{sx, 0, 0, 0, sy, 0}
}

// Mul returns the affine transform a*b, b is applied first.
func Mul(a, b f32.Aff3) f32.Aff3 {
	return f32.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

// Apply transforms the point x, y.
func Apply(m f32.Aff3, x, y float32) (float32, float32) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}
