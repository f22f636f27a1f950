// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"github.com/go-gl/mathgl/mgl32"

	"q3cm/math/vec"
)

// rotation returns the model to world rotation for pitch, yaw and roll in
// degrees.
func rotation(angles vec.Vec3) mgl32.Mat3 {
	pitch := mgl32.DegToRad(angles[0])
	yaw := mgl32.DegToRad(angles[1])
	roll := mgl32.DegToRad(angles[2])
	return mgl32.Rotate3DZ(yaw).Mul3(mgl32.Rotate3DY(pitch)).Mul3(mgl32.Rotate3DX(roll))
}

// centered splits the shape into its center and the same shape around the
// origin.
func centered(shape Shape) (vec.Vec3, Shape) {
	switch s := shape.(type) {
	case Box:
		c := vec.Lerp(s.Mins, s.Maxs, 0.5)
		return c, Box{Mins: vec.Sub(s.Mins, c), Maxs: vec.Sub(s.Maxs, c)}
	case Capsule:
		c := s.Center
		s.Center = vec.Vec3{}
		return c, s
	}
	return vec.Vec3{}, Point{}
}

// TransformedTrace traces against a model placed at origin and rotated by
// angles. Boxes keep their world orientation, so rotated models are traced
// with a box that is only approximately right. Capsules always stay
// upright.
func (cm *ClipMap) TransformedTrace(start, end vec.Vec3, shape Shape, h Handle, mask Contents, origin, angles vec.Vec3) (Trace, error) {
	if shape == nil {
		shape = Point{}
	}
	center, shape := centered(shape)
	lstart := vec.Sub(vec.Add(start, center), origin)
	lend := vec.Sub(vec.Add(end, center), origin)

	rotated := !h.IsTemp() && angles != (vec.Vec3{})
	var rot mgl32.Mat3
	if rotated {
		rot = rotation(angles)
		inv := rot.Transpose()
		lstart = vec.Vec3(inv.Mul3x1(mgl32.Vec3(lstart)))
		lend = vec.Vec3(inv.Mul3x1(mgl32.Vec3(lend)))
	}

	tr, err := cm.Trace(lstart, lend, shape, h, mask)
	if err != nil {
		tr.EndPos = end
		return tr, err
	}
	if tr.Fraction != 1 {
		n := tr.Plane.Normal
		if rotated {
			n = vec.Vec3(rot.Mul3x1(mgl32.Vec3(n)))
		}
		tr.Plane = NewPlane(n, tr.Plane.Dist+vec.Dot(n, origin))
	}
	if tr.Fraction == 1 {
		tr.EndPos = end
	} else {
		tr.EndPos = vec.Lerp(start, end, tr.Fraction)
	}
	return tr, nil
}

// TransformedPointContents returns the contents at p of a model placed at
// origin and rotated by angles.
func (cm *ClipMap) TransformedPointContents(p vec.Vec3, h Handle, origin, angles vec.Vec3) (Contents, error) {
	l := vec.Sub(p, origin)
	if !h.IsTemp() && angles != (vec.Vec3{}) {
		l = vec.Vec3(rotation(angles).Transpose().Mul3x1(mgl32.Vec3(l)))
	}
	return cm.PointContents(l, h)
}
