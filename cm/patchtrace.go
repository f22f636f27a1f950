// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"q3cm/math/vec"
)

// expandPlane moves the plane out by the trace size and returns the start
// and end points to test against it.
func (tw *traceWork) expandPlane(p Plane) (dist float32, start, end vec.Vec3) {
	if tw.sphere != nil {
		dist = p.Dist + tw.sphere.radius
		offset := vec.Vec3{0, 0, tw.sphere.offset}
		if vec.Dot(p.Normal, offset) > 0 {
			return dist, vec.Sub(tw.start, offset), vec.Sub(tw.end, offset)
		}
		return dist, vec.Add(tw.start, offset), vec.Add(tw.end, offset)
	}
	// the box is centered, so this holds for flipped planes too
	return p.Dist + vec.Dot(tw.size[1], p.Normal.Abs()), tw.start, tw.end
}

// checkFacetPlane returns false if the move is completely in front of the
// plane. hit is set if the plane became the new enter plane.
func checkFacetPlane(normal vec.Vec3, dist float32, start, end vec.Vec3, enterFrac, leaveFrac *float32) (ok, hit bool) {
	d1 := vec.Dot(start, normal) - dist
	d2 := vec.Dot(end, normal) - dist

	// if completely in front of face, no intersection with the entire facet
	if d1 > 0 && (d2 >= SurfaceClipEpsilon || d2 >= d1) {
		return false, false
	}
	// if it doesn't cross the plane, the plane isn't relevant
	if d1 <= 0 && d2 <= 0 {
		return true, false
	}
	if d1 > d2 {
		// enter
		f := max(0, (d1-SurfaceClipEpsilon)/(d1-d2))
		// always favor previous plane hits and thus also the surface plane hit
		if f > *enterFrac {
			*enterFrac = f
			hit = true
		}
	} else {
		// leave
		f := min(1, (d1+SurfaceClipEpsilon)/(d1-d2))
		if f < *leaveFrac {
			*leaveFrac = f
		}
	}
	return true, hit
}

func (tw *traceWork) traceThroughPatch(pc *patchCollide) {
	if !vec.BoundsIntersect(tw.bounds[0], tw.bounds[1], pc.mins, pc.maxs) {
		return
	}
	for fi := range pc.facets {
		f := &pc.facets[fi]
		enterFrac := float32(-1)
		leaveFrac := float32(1)
		hitnum := -1

		p := pc.plane(f.surface)
		dist, startp, endp := tw.expandPlane(p)
		ok, hit := checkFacetPlane(p.Normal, dist, startp, endp, &enterFrac, &leaveFrac)
		if !ok {
			continue
		}
		var best Plane
		if hit {
			best = p
		}
		borders := f.borders
		if f.back && tw.isPoint {
			// a point can not be caught between the two sides
			borders = borders[:len(borders)-1]
		}
		crossed := true
		for j, b := range borders {
			bp := pc.plane(b)
			dist, startp, endp := tw.expandPlane(bp)
			ok, hit := checkFacetPlane(bp.Normal, dist, startp, endp, &enterFrac, &leaveFrac)
			if !ok {
				crossed = false
				break
			}
			if hit {
				hitnum = j
				best = bp
			}
		}
		if !crossed {
			continue
		}
		// never clip against the back side
		if f.back && hitnum == len(f.borders)-1 {
			continue
		}
		if enterFrac < leaveFrac && enterFrac >= 0 && enterFrac < tw.trace.Fraction {
			tw.trace.Fraction = enterFrac
			tw.trace.Plane = best
		}
	}
}

// positionTestInPatch reports whether the trace start is inside any facet
// volume of the patch.
func (tw *traceWork) positionTestInPatch(pc *patchCollide) bool {
	if !vec.BoundsIntersect(tw.bounds[0], tw.bounds[1], pc.mins, pc.maxs) {
		return false
	}
facets:
	for fi := range pc.facets {
		f := &pc.facets[fi]
		p := pc.plane(f.surface)
		dist, startp, _ := tw.expandPlane(p)
		if vec.Dot(p.Normal, startp)-dist > 0 {
			continue
		}
		for _, b := range f.borders {
			bp := pc.plane(b)
			dist, startp, _ := tw.expandPlane(bp)
			if vec.Dot(bp.Normal, startp)-dist > 0 {
				continue facets
			}
		}
		// inside this patch facet
		return true
	}
	return false
}
