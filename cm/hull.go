// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"math"

	"github.com/chewxy/math32"

	qmath "q3cm/math"
	"q3cm/math/vec"
	"q3cm/winding"
)

const (
	hullPointEpsilon  = 0.01
	hullNormalEpsilon = 0.00001
)

type hullPlane struct {
	normal vec.Vec3
	dist   float32
}

type hullFace struct {
	hullPlane
	points      []vec.Vec3
	edgeNormals []vec.Vec3
	edgeDists   []float32
}

type hullEdge struct {
	a, b vec.Vec3
}

// convexHull is the boundary of a convex volume: face polygons, their
// edges and corners. A hull without faces is a segment or a point.
type convexHull struct {
	faces      []hullFace
	edges      []hullEdge
	verts      []vec.Vec3
	mins, maxs vec.Vec3
}

// buildHull intersects the back half spaces of the planes. It returns nil
// if the volume is empty.
func buildHull(planes []hullPlane, eps float32) (*convexHull, error) {
	h := &convexHull{}
	h.mins, h.maxs = vec.ClearBounds()
	for i, p := range planes {
		w := winding.BaseForPlane(p.normal, p.dist)
		if w == nil {
			continue
		}
		var err error
		for j, q := range planes {
			if i == j {
				continue
			}
			w, err = w.ChopEpsilon(q.normal.Negate(), -q.dist, eps)
			if err != nil {
				return nil, err
			}
			if w == nil {
				break
			}
		}
		if w == nil {
			continue
		}
		w.RemoveColinearPoints()
		if len(w.Points) < 3 {
			continue
		}
		h.addFace(p, w.Points)
	}
	if len(h.faces) == 0 {
		return nil, nil
	}
	return h, nil
}

func (h *convexHull) addFace(p hullPlane, points []vec.Vec3) {
	f := hullFace{hullPlane: p, points: points}
	var c vec.Vec3
	for _, v := range points {
		c = vec.Add(c, v)
	}
	c = c.Scale(1 / float32(len(points)))
	for i, a := range points {
		b := points[(i+1)%len(points)]
		n := vec.Cross(vec.Sub(b, a), p.normal).Normalize()
		if vec.Dot(n, c) > vec.Dot(n, a) {
			n = n.Negate()
		}
		f.edgeNormals = append(f.edgeNormals, n)
		f.edgeDists = append(f.edgeDists, vec.Dot(n, a))
		h.addEdge(a, b)
		h.addVert(a)
	}
	h.faces = append(h.faces, f)
}

func (h *convexHull) addVert(v vec.Vec3) {
	for _, o := range h.verts {
		if vec.Equal(o, v, hullPointEpsilon) {
			return
		}
	}
	h.verts = append(h.verts, v)
	vec.AddPointToBounds(v, &h.mins, &h.maxs)
}

func (h *convexHull) addEdge(a, b vec.Vec3) {
	if vec.Equal(a, b, hullPointEpsilon) {
		return
	}
	for _, e := range h.edges {
		if (vec.Equal(e.a, a, hullPointEpsilon) && vec.Equal(e.b, b, hullPointEpsilon)) ||
			(vec.Equal(e.a, b, hullPointEpsilon) && vec.Equal(e.b, a, hullPointEpsilon)) {
			return
		}
	}
	h.edges = append(h.edges, hullEdge{a, b})
}

// segmentHull is the vertical segment of half length offset around center.
func segmentHull(center vec.Vec3, offset float32) *convexHull {
	h := &convexHull{}
	top := vec.MA(center, offset, vec.Up)
	bottom := vec.MA(center, -offset, vec.Up)
	h.mins, h.maxs = bottom, top
	h.verts = append(h.verts, top)
	if offset > 0 {
		h.verts = append(h.verts, bottom)
		h.edges = append(h.edges, hullEdge{bottom, top})
	}
	return h
}

func (f *hullFace) contains(p vec.Vec3) bool {
	for i, n := range f.edgeNormals {
		if vec.Dot(n, p)-f.edgeDists[i] > hullPointEpsilon {
			return false
		}
	}
	return true
}

func (h *convexHull) support(n vec.Vec3) float32 {
	s := float32(-math32.MaxFloat32)
	for _, v := range h.verts {
		s = max(s, vec.Dot(n, v))
	}
	return s
}

func appendHullPlane(planes []hullPlane, p hullPlane) []hullPlane {
	for _, q := range planes {
		if vec.Dot(p.normal, q.normal) > 1-hullNormalEpsilon && math32.Abs(p.dist-q.dist) < hullPointEpsilon {
			return planes
		}
	}
	return append(planes, p)
}

// sweptHull returns the volume covered by the hull moving along the
// vertical segment [-offset, offset]. base are the planes the hull was
// built from.
func (h *convexHull) sweptHull(base []hullPlane, offset, eps float32) (*convexHull, error) {
	if offset <= 0 {
		return h, nil
	}
	planes := make([]hullPlane, 0, len(base)+len(h.edges))
	for _, p := range base {
		planes = appendHullPlane(planes, hullPlane{p.normal, p.dist + offset*math32.Abs(p.normal[2])})
	}
	for _, e := range h.edges {
		m := vec.Cross(vec.Sub(e.b, e.a).Normalize(), vec.Up)
		if m.Length() < 0.01 {
			// vertical edges only stretch the faces next to them
			continue
		}
		m = m.Normalize()
		for _, n := range [2]vec.Vec3{m, m.Negate()} {
			d := vec.Dot(n, e.a)
			if h.support(n) > d+hullPointEpsilon {
				continue
			}
			planes = appendHullPlane(planes, hullPlane{n, d})
		}
	}
	return buildHull(planes, eps)
}

// inside reports whether p is behind all face planes.
func (h *convexHull) inside(p vec.Vec3) bool {
	if len(h.faces) == 0 {
		return false
	}
	for i := range h.faces {
		f := &h.faces[i]
		if vec.Dot(f.normal, p)-f.dist > 0 {
			return false
		}
	}
	return true
}

// distance returns the distance of p to the hull, zero inside.
func (h *convexHull) distance(p vec.Vec3) float32 {
	if h.inside(p) {
		return 0
	}
	best := float32(math32.MaxFloat32)
	for i := range h.faces {
		f := &h.faces[i]
		d := vec.Dot(f.normal, p) - f.dist
		if d <= 0 || d >= best {
			continue
		}
		if f.contains(vec.MA(p, -d, f.normal)) {
			best = d
		}
	}
	for _, e := range h.edges {
		best = min(best, segmentDistance(p, e.a, e.b))
	}
	for _, v := range h.verts {
		best = min(best, vec.Sub(p, v).Length())
	}
	return best
}

func segmentDistance(p, a, b vec.Vec3) float32 {
	ab := vec.Sub(b, a)
	l := ab.LengthSquared()
	if l == 0 {
		return vec.Sub(p, a).Length()
	}
	t := vec.Dot(vec.Sub(p, a), ab) / l
	t = qmath.Clamp(0, t, 1)
	return vec.Sub(p, vec.MA(a, t, ab)).Length()
}

// sweep moves a sphere of radius r from s to e and returns the fraction of
// the first contact with the hull and the contact normal.
func (h *convexHull) sweep(s, e vec.Vec3, r float32) (frac float32, normal vec.Vec3, ok bool) {
	best := float32(2)
	d := vec.Sub(e, s)
	for i := range h.faces {
		f := &h.faces[i]
		d1 := vec.Dot(f.normal, s) - f.dist - r
		d2 := vec.Dot(f.normal, e) - f.dist - r
		if d1 <= 0 || d2 >= 0 {
			continue
		}
		t := d1 / (d1 - d2)
		if t >= best {
			continue
		}
		if f.contains(vec.MA(vec.MA(s, t, d), -r, f.normal)) {
			best, normal = t, f.normal
		}
	}
	if r > 0 {
		for _, ed := range h.edges {
			if t, n, hit := sweepCylinder(s, d, ed.a, ed.b, r); hit && t < best {
				best, normal = t, n
			}
		}
		for _, v := range h.verts {
			if t, n, hit := sweepSphere(s, d, v, r); hit && t < best {
				best, normal = t, n
			}
		}
	}
	if best > 1 {
		return 0, vec.Vec3{}, false
	}
	return best, normal, true
}

type dvec [3]float64

func toD(v vec.Vec3) dvec {
	return dvec{float64(v[0]), float64(v[1]), float64(v[2])}
}

func (a dvec) sub(b dvec) dvec {
	return dvec{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func (a dvec) ma(s float64, b dvec) dvec {
	return dvec{a[0] + s*b[0], a[1] + s*b[1], a[2] + s*b[2]}
}

func (a dvec) dot(b dvec) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (a dvec) normal() vec.Vec3 {
	l := math.Sqrt(a.dot(a))
	if l == 0 {
		return vec.Vec3{}
	}
	return vec.Vec3{float32(a[0] / l), float32(a[1] / l), float32(a[2] / l)}
}

// firstRoot returns the smaller root of a*t*t + b*t + c if it lies in [0, 1].
func firstRoot(a, b, c float64) (float64, bool) {
	if a < 1e-12 || c <= 0 {
		return 0, false
	}
	disc := qmath.Square(b) - 4*a*c
	if disc < 0 {
		return 0, false
	}
	t := (-b - math.Sqrt(disc)) / (2 * a)
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}

// sweepCylinder finds where a sphere moving from s along d touches the
// edge a-b.
func sweepCylinder(s, d, a, b vec.Vec3, r float32) (float32, vec.Vec3, bool) {
	ds, dd, da := toD(s), toD(d), toD(a)
	axis := toD(b).sub(da)
	length := math.Sqrt(axis.dot(axis))
	if length < 1e-6 {
		return 0, vec.Vec3{}, false
	}
	u := dvec{axis[0] / length, axis[1] / length, axis[2] / length}
	w := ds.sub(da)
	dp := dd.ma(-dd.dot(u), u)
	wp := w.ma(-w.dot(u), u)
	rr := float64(r)
	t, ok := firstRoot(dp.dot(dp), 2*wp.dot(dp), wp.dot(wp)-qmath.Square(rr))
	if !ok {
		return 0, vec.Vec3{}, false
	}
	along := w.dot(u) + t*dd.dot(u)
	if along < 0 || along > length {
		return 0, vec.Vec3{}, false
	}
	return float32(t), wp.ma(t, dp).normal(), true
}

// sweepSphere finds where a sphere moving from s along d touches the point v.
func sweepSphere(s, d, v vec.Vec3, r float32) (float32, vec.Vec3, bool) {
	dd := toD(d)
	w := toD(s).sub(toD(v))
	rr := float64(r)
	t, ok := firstRoot(dd.dot(dd), 2*w.dot(dd), w.dot(w)-qmath.Square(rr))
	if !ok {
		return 0, vec.Vec3{}, false
	}
	return float32(t), w.ma(t, dd).normal(), true
}
