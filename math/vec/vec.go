// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"github.com/chewxy/math32"

	qmath "q3cm/math"
)

type Vec3 [3]float32

var (
	Up = Vec3{0, 0, 1}
)

// Length returns the length of the vector
func (v Vec3) Length() float32 {
	return math32.Sqrt(Dot(v, v))
}

// LengthSquared returns the squared length of the vector
func (v Vec3) LengthSquared() float32 {
	return Dot(v, v)
}

// Add returns a + b
func Add(a, b Vec3) Vec3 {
	return Vec3{
		a[0] + b[0],
		a[1] + b[1],
		a[2] + b[2],
	}
}

// Sub returns a - b
func Sub(a, b Vec3) Vec3 {
	return Vec3{
		a[0] - b[0],
		a[1] - b[1],
		a[2] - b[2],
	}
}

// Scale returns the vector multiplied by the skalar s
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{
		v[0] * s,
		v[1] * s,
		v[2] * s,
	}
}

// Negate returns -v
func (v Vec3) Negate() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

// Normalize returns the normalized vector
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Abs returns the component wise absolute value
func (v Vec3) Abs() Vec3 {
	return Vec3{
		math32.Abs(v[0]),
		math32.Abs(v[1]),
		math32.Abs(v[2]),
	}
}

// MA returns a + s*b
func MA(a Vec3, s float32, b Vec3) Vec3 {
	return Vec3{
		a[0] + s*b[0],
		a[1] + s*b[1],
		a[2] + s*b[2],
	}
}

// Dot returns a dot b
func Dot(a Vec3, b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// DoublePrecDot return a dot b calculated in double precision
func DoublePrecDot(a Vec3, b Vec3) float64 {
	p := func(x, y float32) float64 {
		return float64(x) * float64(y)
	}
	return p(a[0], b[0]) + p(a[1], b[1]) + p(a[2], b[2])
}

// Cross returns a cross b
func Cross(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Lerp computes a weighted average between two points
func Lerp(a, b Vec3, frac float32) Vec3 {
	return Vec3{
		qmath.Lerp(a[0], b[0], frac),
		qmath.Lerp(a[1], b[1], frac),
		qmath.Lerp(a[2], b[2], frac),
	}
}

// Equal returns a == b within eps per component
func Equal(a, b Vec3, eps float32) bool {
	for i := range 3 {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func minmax(a, b float32) (float32, float32) {
	if a < b {
		return a, b
	}
	return b, a
}

func MinMax(a, b Vec3) (Vec3, Vec3) {
	var r, s Vec3
	r[0], s[0] = minmax(a[0], b[0])
	r[1], s[1] = minmax(a[1], b[1])
	r[2], s[2] = minmax(a[2], b[2])
	return r, s
}

// AddPointToBounds grows mins/maxs so that they contain p.
func AddPointToBounds(p Vec3, mins, maxs *Vec3) {
	for i := range 3 {
		if p[i] < mins[i] {
			mins[i] = p[i]
		}
		if p[i] > maxs[i] {
			maxs[i] = p[i]
		}
	}
}

// ClearBounds returns inverted bounds, ready for AddPointToBounds.
func ClearBounds() (Vec3, Vec3) {
	const bogus = 99999
	return Vec3{bogus, bogus, bogus}, Vec3{-bogus, -bogus, -bogus}
}

// BoundsIntersect reports whether the two boxes overlap or touch.
func BoundsIntersect(mins, maxs, mins2, maxs2 Vec3) bool {
	return maxs[0] >= mins2[0] && mins[0] <= maxs2[0] &&
		maxs[1] >= mins2[1] && mins[1] <= maxs2[1] &&
		maxs[2] >= mins2[2] && mins[2] <= maxs2[2]
}

// PointInBounds reports whether p lies inside or on the box.
func PointInBounds(p, mins, maxs Vec3) bool {
	return p[0] >= mins[0] && p[0] <= maxs[0] &&
		p[1] >= mins[1] && p[1] <= maxs[1] &&
		p[2] >= mins[2] && p[2] <= maxs[2]
}

func AngleVectors(angles Vec3) (forward, right, up Vec3) {
	deg := math32.Pi * 2 / 360
	sp, cp := math32.Sincos(angles[0] * deg) // PITCH
	sy, cy := math32.Sincos(angles[1] * deg) // YAW
	sr, cr := math32.Sincos(angles[2] * deg) // ROLL

	forward = Vec3{cp * cy, cp * sy, -sp}
	right = Vec3{
		(-1*sr*sp*cy + -1*cr*-sy),
		(-1*sr*sp*sy + -1*cr*cy),
		-1 * sr * cp,
	}
	up = Vec3{
		(cr*sp*cy + -sr*-sy),
		(cr*sp*sy + -sr*cy),
		cr * cp,
	}
	return
}
