// SPDX-License-Identifier: GPL-2.0-or-later

// Package winding implements convex polygons used while preparing collision
// geometry: brush faces and patch facets.
package winding

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"q3cm/math/vec"
)

const (
	MaxPointsOnWinding = 64
	// OnEpsilon is the default distance within which a point is on a plane.
	OnEpsilon = 0.1
	// MaxMapBounds is the half size of the quad built by BaseForPlane.
	MaxMapBounds = 65535
	// pointEpsilon is the distance below which two points are the same.
	pointEpsilon = 0.001
)

var (
	ErrMaxPoints = errors.New("winding: MaxPointsOnWinding exceeded")
)

const (
	sideFront = iota
	sideBack
	sideOn
)

type Winding struct {
	Points []vec.Vec3
}

func New(points ...vec.Vec3) *Winding {
	w := &Winding{Points: make([]vec.Vec3, len(points))}
	copy(w.Points, points)
	return w
}

func (w *Winding) Copy() *Winding {
	return New(w.Points...)
}

// Reverse returns the winding with the point order flipped.
func (w *Winding) Reverse() *Winding {
	n := len(w.Points)
	r := &Winding{Points: make([]vec.Vec3, n)}
	for i, p := range w.Points {
		r.Points[n-1-i] = p
	}
	return r
}

// Area is the sum of the fan triangles around the first point.
func (w *Winding) Area() float32 {
	var total float32
	for i := 2; i < len(w.Points); i++ {
		d1 := vec.Sub(w.Points[i-1], w.Points[0])
		d2 := vec.Sub(w.Points[i], w.Points[0])
		total += 0.5 * vec.Cross(d1, d2).Length()
	}
	return total
}

func (w *Winding) Bounds() (mins, maxs vec.Vec3) {
	mins, maxs = vec.ClearBounds()
	for _, p := range w.Points {
		vec.AddPointToBounds(p, &mins, &maxs)
	}
	return mins, maxs
}

func (w *Winding) Center() vec.Vec3 {
	var c vec.Vec3
	if len(w.Points) == 0 {
		return c
	}
	for _, p := range w.Points {
		c = vec.Add(c, p)
	}
	return c.Scale(1 / float32(len(w.Points)))
}

// Plane returns the plane through the first three non collinear points.
// ok is false for windings that do not span a plane.
func (w *Winding) Plane() (normal vec.Vec3, dist float32, ok bool) {
	n := len(w.Points)
	if n < 3 {
		return normal, 0, false
	}
	p0 := w.Points[0]
	for i := 1; i < n-1; i++ {
		v1 := vec.Sub(w.Points[i], p0)
		for j := i + 1; j < n; j++ {
			v2 := vec.Sub(w.Points[j], p0)
			c := vec.Cross(v2, v1)
			if c.Length() > 1e-6 {
				normal = c.Normalize()
				return normal, vec.Dot(p0, normal), true
			}
		}
	}
	return normal, 0, false
}

// RemoveColinearPoints drops points that do not change the shape of the
// polygon. Coincident points are merged first.
func (w *Winding) RemoveColinearPoints() {
	w.removeDuplicatePoints()
	n := len(w.Points)
	if n < 3 {
		return
	}
	kept := make([]vec.Vec3, 0, n)
	for i := range n {
		j := (i + 1) % n
		k := (i + n - 1) % n
		v1 := vec.Sub(w.Points[j], w.Points[i]).Normalize()
		v2 := vec.Sub(w.Points[i], w.Points[k]).Normalize()
		if vec.Dot(v1, v2) < 0.999 {
			kept = append(kept, w.Points[i])
		}
	}
	w.Points = kept
}

func (w *Winding) removeDuplicatePoints() {
	kept := make([]vec.Vec3, 0, len(w.Points))
	for _, p := range w.Points {
		if len(kept) > 0 && vec.Sub(p, kept[len(kept)-1]).Length() < pointEpsilon {
			continue
		}
		kept = append(kept, p)
	}
	for len(kept) > 1 && vec.Sub(kept[0], kept[len(kept)-1]).Length() < pointEpsilon {
		kept = kept[:len(kept)-1]
	}
	w.Points = kept
}

// BaseForPlane returns a huge quad lying on the plane, to be cut down by
// Clip or Chop.
func BaseForPlane(normal vec.Vec3, dist float32) *Winding {
	x := -1
	max := float32(-MaxMapBounds)
	for i := range 3 {
		v := math32.Abs(normal[i])
		if v > max {
			x = i
			max = v
		}
	}
	var vup vec.Vec3
	switch x {
	case 0, 1:
		vup[2] = 1
	case 2:
		vup[0] = 1
	default:
		return nil
	}
	v := vec.Dot(vup, normal)
	vup = vec.MA(vup, -v, normal).Normalize()
	org := normal.Scale(dist)
	vright := vec.Cross(vup, normal)

	vup = vup.Scale(MaxMapBounds)
	vright = vright.Scale(MaxMapBounds)

	return &Winding{Points: []vec.Vec3{
		vec.Add(vec.Sub(org, vright), vup),
		vec.Add(vec.Add(org, vright), vup),
		vec.Sub(vec.Add(org, vright), vup),
		vec.Sub(vec.Sub(org, vright), vup),
	}}
}

func (w *Winding) classify(normal vec.Vec3, dist, epsilon float32) ([]float64, []int, [3]int) {
	n := len(w.Points)
	dists := make([]float64, n+1)
	sides := make([]int, n+1)
	var counts [3]int
	for i, p := range w.Points {
		d := vec.DoublePrecDot(p, normal) - float64(dist)
		dists[i] = d
		switch {
		case d > float64(epsilon):
			sides[i] = sideFront
		case d < -float64(epsilon):
			sides[i] = sideBack
		default:
			sides[i] = sideOn
		}
		counts[sides[i]]++
	}
	dists[n] = dists[0]
	sides[n] = sides[0]
	return dists, sides, counts
}

func splitPoint(p1, p2 vec.Vec3, d1, d2 float64, normal vec.Vec3, dist float32) vec.Vec3 {
	dot := d1 / (d1 - d2)
	var mid vec.Vec3
	for j := range 3 {
		// avoid round off error when possible
		switch normal[j] {
		case 1:
			mid[j] = dist
		case -1:
			mid[j] = -dist
		default:
			mid[j] = float32(float64(p1[j]) + dot*(float64(p2[j])-float64(p1[j])))
		}
	}
	return mid
}

func degenerate(w *Winding) *Winding {
	if w == nil || len(w.Points) < 3 {
		return nil
	}
	return w
}

// ClipEpsilon splits the winding by the plane. Points within epsilon of
// the plane go to both sides. Either result may be nil; results with less
// than three points are dropped.
func (w *Winding) ClipEpsilon(normal vec.Vec3, dist, epsilon float32) (front, back *Winding, err error) {
	dists, sides, counts := w.classify(normal, dist, epsilon)
	if counts[sideFront] == 0 {
		return nil, degenerate(w.Copy()), nil
	}
	if counts[sideBack] == 0 {
		return degenerate(w.Copy()), nil, nil
	}

	n := len(w.Points)
	maxpts := n + 4
	f := &Winding{Points: make([]vec.Vec3, 0, maxpts)}
	b := &Winding{Points: make([]vec.Vec3, 0, maxpts)}
	for i := range n {
		p1 := w.Points[i]
		if sides[i] == sideOn {
			f.Points = append(f.Points, p1)
			b.Points = append(b.Points, p1)
			continue
		}
		if sides[i] == sideFront {
			f.Points = append(f.Points, p1)
		} else {
			b.Points = append(b.Points, p1)
		}
		if sides[i+1] == sideOn || sides[i+1] == sides[i] {
			continue
		}
		p2 := w.Points[(i+1)%n]
		mid := splitPoint(p1, p2, dists[i], dists[i+1], normal, dist)
		f.Points = append(f.Points, mid)
		b.Points = append(b.Points, mid)
	}
	if len(f.Points) > MaxPointsOnWinding || len(b.Points) > MaxPointsOnWinding {
		return nil, nil, errors.Wrapf(ErrMaxPoints, "ClipEpsilon: %d/%d points", len(f.Points), len(b.Points))
	}
	return degenerate(f), degenerate(b), nil
}

// ChopEpsilon returns the part of the winding in front of the plane.
func (w *Winding) ChopEpsilon(normal vec.Vec3, dist, epsilon float32) (*Winding, error) {
	dists, sides, counts := w.classify(normal, dist, epsilon)
	if counts[sideFront] == 0 {
		return nil, nil
	}
	if counts[sideBack] == 0 {
		return w, nil
	}

	n := len(w.Points)
	f := &Winding{Points: make([]vec.Vec3, 0, n+4)}
	for i := range n {
		p1 := w.Points[i]
		if sides[i] == sideOn {
			f.Points = append(f.Points, p1)
			continue
		}
		if sides[i] == sideFront {
			f.Points = append(f.Points, p1)
		}
		if sides[i+1] == sideOn || sides[i+1] == sides[i] {
			continue
		}
		p2 := w.Points[(i+1)%n]
		f.Points = append(f.Points, splitPoint(p1, p2, dists[i], dists[i+1], normal, dist))
	}
	if len(f.Points) > MaxPointsOnWinding {
		return nil, errors.Wrapf(ErrMaxPoints, "ChopEpsilon: %d points", len(f.Points))
	}
	return degenerate(f), nil
}

// Chop is ChopEpsilon with OnEpsilon.
func (w *Winding) Chop(normal vec.Vec3, dist float32) (*Winding, error) {
	return w.ChopEpsilon(normal, dist, OnEpsilon)
}
