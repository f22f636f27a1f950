// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"github.com/pkg/errors"

	qmath "q3cm/math"
	"q3cm/math/vec"
	"q3cm/winding"
)

const (
	maxPatchVerts     = 1024
	maxGridSize       = 129
	maxFacets         = 1024
	maxPatchPlanes    = 2048
	subdivideDistance = 16 // never more than this units away from curve
	pointEpsilon      = 0.1
	// facet windings are checked against this size
	maxFacetBounds = winding.MaxMapBounds
)

// facetPlane references a patch plane, flip selects its back side.
type facetPlane struct {
	plane int
	flip  bool
}

// facet is convex: the surface plane bounded by its border planes, which
// face away from the facet.
type facet struct {
	surface facetPlane
	borders []facetPlane
	// back is set when the last border is the surface plane flipped.
	back bool
}

type patchCollide struct {
	mins, maxs vec.Vec3
	planes     []Plane
	facets     []facet
}

func (pc *patchCollide) plane(fp facetPlane) Plane {
	return resolvePlane(pc.planes, fp)
}

// grid holds the control points, cols[i][j] is column i of row j.
type grid struct {
	cols [][]vec.Vec3
}

func newGrid(width, height int, points []vec.Vec3) *grid {
	g := &grid{cols: make([][]vec.Vec3, width)}
	for i := range width {
		g.cols[i] = make([]vec.Vec3, height)
		for j := range height {
			g.cols[i][j] = points[j*width+i]
		}
	}
	return g
}

func (g *grid) width() int {
	return len(g.cols)
}

func (g *grid) height() int {
	return len(g.cols[0])
}

func needsSubdivision(a, b, c vec.Vec3) bool {
	// midpoint of the curve
	cmid := vec.Lerp(vec.Lerp(a, b, 0.5), vec.Lerp(b, c, 0.5), 0.5)
	// midpoint of the line
	lmid := vec.Lerp(a, c, 0.5)
	return vec.Sub(cmid, lmid).Length() >= subdivideDistance
}

// subdivide splits the quadratic curve a, b, c into a, out1, out2 and
// out2, out3, c.
func subdivide(a, b, c vec.Vec3) (out1, out2, out3 vec.Vec3) {
	out1 = vec.Lerp(a, b, 0.5)
	out3 = vec.Lerp(b, c, 0.5)
	out2 = vec.Lerp(out1, out3, 0.5)
	return
}

// subdivideColumns adds columns until the grid is close to the curve and
// drops the approximating columns that are no longer needed.
func (g *grid) subdivideColumns() {
	for i := 0; i < g.width()-2; {
		// cols[i] and cols[i+2] are interpolating, cols[i+1] approximating
		need := false
		for j := range g.height() {
			if needsSubdivision(g.cols[i][j], g.cols[i+1][j], g.cols[i+2][j]) {
				need = true
				break
			}
		}
		if !need {
			// the approximating column is close enough
			g.cols = append(g.cols[:i+1], g.cols[i+2:]...)
			i++
			continue
		}
		if g.width()+2 > maxGridSize {
			i++
			continue
		}
		h := g.height()
		c1, c2, c3 := make([]vec.Vec3, h), make([]vec.Vec3, h), make([]vec.Vec3, h)
		for j := range h {
			c1[j], c2[j], c3[j] = subdivide(g.cols[i][j], g.cols[i+1][j], g.cols[i+2][j])
		}
		cols := make([][]vec.Vec3, 0, g.width()+2)
		cols = append(cols, g.cols[:i+1]...)
		cols = append(cols, c1, c2, c3)
		cols = append(cols, g.cols[i+2:]...)
		g.cols = cols
		// the new approximating column c1 is checked next
	}
}

func comparePoints(a, b vec.Vec3) bool {
	return vec.Equal(a, b, pointEpsilon)
}

// removeDegenerateColumns drops columns equal to their predecessor.
func (g *grid) removeDegenerateColumns() {
	for i := 0; i < g.width()-1; i++ {
		same := true
		for j := range g.height() {
			if !comparePoints(g.cols[i][j], g.cols[i+1][j]) {
				same = false
				break
			}
		}
		if !same {
			continue
		}
		g.cols = append(g.cols[:i+1], g.cols[i+2:]...)
		// check against the next column
		i--
	}
}

func (g *grid) transpose() {
	w, h := g.width(), g.height()
	cols := make([][]vec.Vec3, h)
	for j := range h {
		cols[j] = make([]vec.Vec3, w)
		for i := range w {
			cols[j][i] = g.cols[i][j]
		}
	}
	g.cols = cols
}

// planeFromPoints returns the plane through a, b and c.
func planeFromPoints(a, b, c vec.Vec3) (vec.Vec3, float32, bool) {
	n := vec.Cross(vec.Sub(c, a), vec.Sub(b, a))
	if n.Length() < 1e-6 {
		return vec.Vec3{}, 0, false
	}
	n = n.Normalize()
	return n, vec.Dot(a, n), true
}

// generatePatchCollide tessellates the control grid and returns its facets
// together with the number of degenerate triangles that were dropped.
func generatePatchCollide(width, height int, points []vec.Vec3, opts Options) (*patchCollide, int, error) {
	if width <= 2 || height <= 2 || len(points) < width*height {
		return nil, 0, errors.Wrapf(ErrBadPatch, "bad parameters %dx%d, %d points", width, height, len(points))
	}
	if width&1 == 0 || height&1 == 0 {
		return nil, 0, errors.Wrapf(ErrBadPatch, "even sizes are invalid for quadratic meshes: %dx%d", width, height)
	}
	if width > maxGridSize || height > maxGridSize {
		return nil, 0, errors.Wrapf(ErrBadPatch, "source is > %d", maxGridSize)
	}
	g := newGrid(width, height, points)
	g.subdivideColumns()
	g.removeDegenerateColumns()
	g.transpose()
	g.subdivideColumns()
	g.removeDegenerateColumns()

	pc := &patchCollide{}
	pc.mins, pc.maxs = vec.ClearBounds()
	for _, col := range g.cols {
		for _, p := range col {
			vec.AddPointToBounds(p, &pc.mins, &pc.maxs)
		}
	}
	degenerate, err := pc.fromGrid(g, opts)
	if err != nil {
		return nil, 0, err
	}
	// expand by one unit for epsilon purposes
	for i := range 3 {
		pc.mins[i] -= 1
		pc.maxs[i] += 1
	}
	return pc, degenerate, nil
}

func (pc *patchCollide) fromGrid(g *grid, opts Options) (int, error) {
	set := newPlaneSet()
	degenerate := 0
	add := func(n vec.Vec3, d float32, poly ...vec.Vec3) error {
		ok, err := pc.addFacet(set, n, d, poly, opts)
		if err != nil {
			return err
		}
		if !ok {
			degenerate++
		}
		return nil
	}
	for i := 0; i < g.width()-1; i++ {
		for j := 0; j < g.height()-1; j++ {
			p1 := g.cols[i][j]
			p2 := g.cols[i+1][j]
			p3 := g.cols[i+1][j+1]
			p4 := g.cols[i][j+1]
			n1, d1, ok1 := planeFromPoints(p1, p2, p3)
			n2, d2, ok2 := planeFromPoints(p3, p4, p1)
			if ok1 && ok2 && vec.Dot(n1, n2) > 0 && qmath.Abs(vec.Dot(n1, p4)-d1) < opts.PlaneEpsilon {
				if err := add(n1, d1, p1, p2, p3, p4); err != nil {
					return 0, err
				}
				continue
			}
			if !ok1 {
				degenerate++
			} else if err := add(n1, d1, p1, p2, p3); err != nil {
				return 0, err
			}
			if !ok2 {
				degenerate++
			} else if err := add(n2, d2, p3, p4, p1); err != nil {
				return 0, err
			}
		}
	}
	if len(pc.facets) > maxFacets {
		return 0, errors.Wrapf(ErrBadPatch, "%d facets, max %d", len(pc.facets), maxFacets)
	}
	if len(set.planes) > maxPatchPlanes {
		return 0, errors.Wrapf(ErrBadPatch, "%d planes, max %d", len(set.planes), maxPatchPlanes)
	}
	pc.planes = set.planes
	return degenerate, nil
}

func appendBorder(borders []facetPlane, fp facetPlane) []facetPlane {
	for _, b := range borders {
		if b.plane == fp.plane {
			return borders
		}
	}
	return append(borders, fp)
}

// addFacet adds the convex polygon poly lying on plane (normal, dist). It
// reports false for polygons without area.
func (pc *patchCollide) addFacet(set *planeSet, normal vec.Vec3, dist float32, poly []vec.Vec3, opts Options) (bool, error) {
	var f facet
	i, flip := set.findFlipped(normal, dist)
	f.surface = facetPlane{i, flip}
	var center vec.Vec3
	for _, p := range poly {
		center = vec.Add(center, p)
	}
	center = center.Scale(1 / float32(len(poly)))
	for k, a := range poly {
		b := poly[(k+1)%len(poly)]
		bn, bd, ok := planeFromPoints(a, b, vec.MA(a, 4, normal))
		if !ok {
			return false, nil
		}
		if vec.Dot(bn, center)-bd > 0 {
			bn, bd = bn.Negate(), -bd
		}
		bi, bflip := set.findFlipped(bn, bd)
		f.borders = appendBorder(f.borders, facetPlane{bi, bflip})
	}
	w, err := facetWinding(set.planes, &f)
	if err != nil || w == nil {
		return false, err
	}
	if opts.PatchBevels {
		f.addBevels(set, w)
	}
	pc.facets = append(pc.facets, f)
	return true, nil
}

func resolvePlane(planes []Plane, fp facetPlane) Plane {
	if fp.flip {
		return planes[fp.plane].Flip()
	}
	return planes[fp.plane]
}

// facetWinding returns the polygon of the facet, nil if it is empty or
// unreasonably large.
func facetWinding(planes []Plane, f *facet) (*winding.Winding, error) {
	sp := resolvePlane(planes, f.surface)
	w := winding.BaseForPlane(sp.Normal, sp.Dist)
	if w == nil {
		return nil, nil
	}
	for _, b := range f.borders {
		if b.plane == f.surface.plane {
			continue
		}
		p := resolvePlane(planes, b)
		var err error
		w, err = w.ChopEpsilon(p.Normal.Negate(), -p.Dist, 0.1)
		if err != nil {
			return nil, err
		}
		if w == nil {
			return nil, nil
		}
	}
	mins, maxs := w.Bounds()
	for j := range 3 {
		if maxs[j]-mins[j] > maxFacetBounds || mins[j] >= maxFacetBounds || maxs[j] <= -maxFacetBounds {
			return nil, nil
		}
	}
	return w, nil
}

func (f *facet) uses(set *planeSet, normal vec.Vec3, dist float32) bool {
	normal, dist = snapPlane(normal, dist)
	i, ok := set.lookup(normal, dist)
	if !ok {
		i, ok = set.lookup(normal.Negate(), -dist)
	}
	if !ok {
		return false
	}
	if i == f.surface.plane {
		return true
	}
	for _, b := range f.borders {
		if b.plane == i {
			return true
		}
	}
	return false
}

// addBevels closes the facet with axial planes at its bounds, planes along
// its non axial edges and its own back side.
func (f *facet) addBevels(set *planeSet, w *winding.Winding) {
	add := func(normal vec.Vec3, dist float32) {
		i, flip := set.findFlipped(normal, dist)
		f.borders = append(f.borders, facetPlane{i, flip})
	}
	mins, maxs := w.Bounds()
	for axis := range 3 {
		for _, dir := range [2]float32{-1, 1} {
			var n vec.Vec3
			n[axis] = dir
			d := -mins[axis]
			if dir > 0 {
				d = maxs[axis]
			}
			if !f.uses(set, n, d) {
				add(n, d)
			}
		}
	}
	for j, p := range w.Points {
		e := vec.Sub(p, w.Points[(j+1)%len(w.Points)])
		if e.Length() < 0.5 {
			continue
		}
		e, _ = snapPlane(e.Normalize(), 0)
		if e[0] == 1 || e[0] == -1 || e[1] == 1 || e[1] == -1 || e[2] == 1 || e[2] == -1 {
			// axial edges are covered by the axial bevels
			continue
		}
		for axis := range 3 {
			for _, dir := range [2]float32{-1, 1} {
				var up vec.Vec3
				up[axis] = dir
				n := vec.Cross(e, up)
				if n.Length() < 0.5 {
					continue
				}
				n = n.Normalize()
				d := vec.Dot(p, n)
				front := false
				for _, q := range w.Points {
					if vec.Dot(q, n)-d > 0.1 {
						front = true
						break
					}
				}
				if front || f.uses(set, n, d) {
					continue
				}
				add(n, d)
			}
		}
	}
	f.borders = append(f.borders, facetPlane{f.surface.plane, !f.surface.flip})
	f.back = true
}
