// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"github.com/chewxy/math32"

	"q3cm/math/vec"
)

const (
	PlaneX = iota
	PlaneY
	PlaneZ
	PlaneNonAxial
)

type Plane struct {
	Normal   vec.Vec3
	Dist     float32
	Type     byte // PlaneX, PlaneY, PlaneZ for positive axial normals, else PlaneNonAxial
	SignBits byte // bit n set when Normal[n] < 0
}

func NewPlane(normal vec.Vec3, dist float32) Plane {
	p := Plane{Normal: normal, Dist: dist, Type: PlaneNonAxial}
	for i := range 3 {
		if normal[i] == 1 {
			p.Type = byte(i)
		}
		if normal[i] < 0 {
			p.SignBits |= 1 << i
		}
	}
	return p
}

// Flip returns the same plane facing the other way.
func (p Plane) Flip() Plane {
	return NewPlane(p.Normal.Negate(), -p.Dist)
}

// Distance returns the signed distance of v to the plane.
func (p *Plane) Distance(v vec.Vec3) float32 {
	if p.Type < 3 {
		return v[p.Type] - p.Dist
	}
	return vec.Dot(p.Normal, v) - p.Dist
}

// BoxOnPlaneSide returns 1 if the box is in front of the plane, 2 if it is
// behind and 3 if it straddles the plane.
func (p *Plane) BoxOnPlaneSide(mins, maxs vec.Vec3) int {
	if p.Type < 3 {
		if p.Dist <= mins[int(p.Type)] {
			return 1
		}
		if p.Dist >= maxs[int(p.Type)] {
			return 2
		}
		return 3
	}
	n := p.Normal
	var d1, d2 float32
	switch p.SignBits {
	case 0:
		d1 = n[0]*maxs[0] + n[1]*maxs[1] + n[2]*maxs[2]
		d2 = n[0]*mins[0] + n[1]*mins[1] + n[2]*mins[2]
	case 1:
		d1 = n[0]*mins[0] + n[1]*maxs[1] + n[2]*maxs[2]
		d2 = n[0]*maxs[0] + n[1]*mins[1] + n[2]*mins[2]
	case 2:
		d1 = n[0]*maxs[0] + n[1]*mins[1] + n[2]*maxs[2]
		d2 = n[0]*mins[0] + n[1]*maxs[1] + n[2]*mins[2]
	case 3:
		d1 = n[0]*mins[0] + n[1]*mins[1] + n[2]*maxs[2]
		d2 = n[0]*maxs[0] + n[1]*maxs[1] + n[2]*mins[2]
	case 4:
		d1 = n[0]*maxs[0] + n[1]*maxs[1] + n[2]*mins[2]
		d2 = n[0]*mins[0] + n[1]*mins[1] + n[2]*maxs[2]
	case 5:
		d1 = n[0]*mins[0] + n[1]*maxs[1] + n[2]*mins[2]
		d2 = n[0]*maxs[0] + n[1]*mins[1] + n[2]*maxs[2]
	case 6:
		d1 = n[0]*maxs[0] + n[1]*mins[1] + n[2]*mins[2]
		d2 = n[0]*mins[0] + n[1]*maxs[1] + n[2]*maxs[2]
	default:
		d1 = n[0]*mins[0] + n[1]*mins[1] + n[2]*mins[2]
		d2 = n[0]*maxs[0] + n[1]*maxs[1] + n[2]*maxs[2]
	}
	sides := 0
	if d1 >= p.Dist {
		sides = 1
	}
	if d2 < p.Dist {
		sides |= 2
	}
	return sides
}

const (
	normalEpsilon = 0.0001
	distEpsilon   = 0.02
)

// snapPlane turns nearly axial normals into axial ones and nearly integral
// distances into integral ones.
func snapPlane(normal vec.Vec3, dist float32) (vec.Vec3, float32) {
	for i := range 3 {
		if math32.Abs(normal[i]-1) < normalEpsilon {
			normal = vec.Vec3{}
			normal[i] = 1
			break
		}
		if math32.Abs(normal[i]+1) < normalEpsilon {
			normal = vec.Vec3{}
			normal[i] = -1
			break
		}
	}
	if r := math32.Round(dist); math32.Abs(dist-r) < distEpsilon {
		dist = r
	}
	return normal, dist
}

func planeEqual(p *Plane, normal vec.Vec3, dist float32) bool {
	return math32.Abs(p.Normal[0]-normal[0]) < normalEpsilon &&
		math32.Abs(p.Normal[1]-normal[1]) < normalEpsilon &&
		math32.Abs(p.Normal[2]-normal[2]) < normalEpsilon &&
		math32.Abs(p.Dist-dist) < distEpsilon
}

// planeSet deduplicates planes, so that equal planes share one index.
type planeSet struct {
	planes []Plane
	hash   map[int][]int
}

func newPlaneSet() *planeSet {
	return &planeSet{hash: make(map[int][]int)}
}

func (s *planeSet) lookup(normal vec.Vec3, dist float32) (int, bool) {
	h := int(math32.Floor(dist))
	for _, k := range [3]int{h - 1, h, h + 1} {
		for _, i := range s.hash[k] {
			if planeEqual(&s.planes[i], normal, dist) {
				return i, true
			}
		}
	}
	return 0, false
}

// find returns the index of the plane, adding it if needed.
func (s *planeSet) find(normal vec.Vec3, dist float32) int {
	normal, dist = snapPlane(normal, dist)
	if i, ok := s.lookup(normal, dist); ok {
		return i
	}
	i := len(s.planes)
	s.planes = append(s.planes, NewPlane(normal, dist))
	h := int(math32.Floor(dist))
	s.hash[h] = append(s.hash[h], i)
	return i
}

// findFlipped is like find but also matches the plane facing the other way,
// reported by flipped.
func (s *planeSet) findFlipped(normal vec.Vec3, dist float32) (i int, flipped bool) {
	normal, dist = snapPlane(normal, dist)
	if i, ok := s.lookup(normal, dist); ok {
		return i, false
	}
	if i, ok := s.lookup(normal.Negate(), -dist); ok {
		return i, true
	}
	return s.find(normal, dist), false
}
