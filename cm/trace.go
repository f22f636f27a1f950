// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"q3cm/conlog"
	qmath "q3cm/math"
	"q3cm/math/vec"
)

// SurfaceClipEpsilon is the distance traces stop short of surfaces.
const SurfaceClipEpsilon = 0.125

type sphere struct {
	radius float32
	offset float32 // half length of the core segment
}

type traceWork struct {
	cm *ClipMap
	s  *scratch

	// start and end of the shape center
	start, end vec.Vec3
	// size of the box, made symmetric around the center
	size [2]vec.Vec3
	// box corners indexed by plane sign bits
	offsets   [8]vec.Vec3
	maxOffset float32
	extents   vec.Vec3
	// enclosing box of the whole move
	bounds   [2]vec.Vec3
	contents Contents
	isPoint  bool
	sphere   *sphere

	trace Trace
}

func (cm *ClipMap) newTraceWork(s *scratch, start, end vec.Vec3, shape Shape, mask Contents) *traceWork {
	tw := &traceWork{cm: cm, s: s, contents: mask}
	tw.trace.Fraction = 1
	mins, maxs := shape.bounds()
	// adjust so that mins and maxs are always symmetric, which avoids some
	// complications with plane expanding of rotated bmodels
	for i := range 3 {
		offset := (mins[i] + maxs[i]) * 0.5
		tw.size[0][i] = mins[i] - offset
		tw.size[1][i] = maxs[i] - offset
		tw.start[i] = start[i] + offset
		tw.end[i] = end[i] + offset
	}
	if c, ok := shape.(Capsule); ok {
		tw.sphere = &sphere{radius: c.Radius, offset: max(0, c.HalfHeight-c.Radius)}
	}
	for i := range 8 {
		tw.offsets[i] = vec.Vec3{
			tw.size[i&1][0],
			tw.size[(i>>1)&1][1],
			tw.size[(i>>2)&1][2],
		}
	}
	tw.maxOffset = tw.size[1].Length()
	tw.extents = tw.size[1]
	tw.isPoint = tw.sphere == nil && tw.size[0] == vec.Vec3{} && tw.size[1] == vec.Vec3{}
	for i := range 3 {
		lo, hi := min(tw.start[i], tw.end[i]), max(tw.start[i], tw.end[i])
		tw.bounds[0][i] = lo + tw.size[0][i]
		tw.bounds[1][i] = hi + tw.size[1][i]
	}
	return tw
}

// Trace sweeps the shape from start to end through the model and returns
// the first collision with anything in mask. A nil shape is a point.
func (cm *ClipMap) Trace(start, end vec.Vec3, shape Shape, h Handle, mask Contents) (Trace, error) {
	model, err := cm.resolve(h)
	if err != nil {
		return Trace{Fraction: 1, EndPos: end}, err
	}
	if shape == nil {
		shape = Point{}
	}
	cm.stats.traces.Add(1)
	s := cm.getScratch()
	defer cm.putScratch(s)

	tw := cm.newTraceWork(s, start, end, shape, mask)
	position := tw.start == tw.end
	switch {
	case h.IsTemp():
		tw.traceTemp(h)
	case h.index != 0:
		if position {
			tw.testInLeaf(&model.Leaf)
		} else {
			tw.traceThroughLeaf(&model.Leaf)
		}
	case position:
		tw.positionTest()
	default:
		tw.traceThroughTree(cm.root(), 0, 1, tw.start, tw.end)
	}

	if tw.trace.Fraction == 1 {
		tw.trace.EndPos = end
	} else {
		tw.trace.EndPos = vec.Lerp(start, end, tw.trace.Fraction)
	}
	return tw.trace, nil
}

func (tw *traceWork) positionTest() {
	var mins, maxs vec.Vec3
	for i := range 3 {
		mins[i] = tw.start[i] + tw.size[0][i] - 1
		maxs[i] = tw.start[i] + tw.size[1][i] + 1
	}
	tw.cm.boxLeafnums(mins, maxs, tw.cm.root(), func(leaf int) bool {
		tw.testInLeaf(&tw.cm.leafs[leaf])
		return !tw.trace.AllSolid
	})
}

func (tw *traceWork) skipPatch(p *Patch) bool {
	if p == nil || tw.cm.opts.NoCurves {
		return true
	}
	if p.Contents&tw.contents == 0 {
		return true
	}
	if !tw.cm.opts.PlayerCurveClip && p.Contents&ContentsPlayerClip != 0 && p.Contents&ContentsSolid == 0 {
		return true
	}
	return false
}

func (tw *traceWork) testInLeaf(leaf *Leaf) {
	cm := tw.cm
	for k := range leaf.NumLeafBrushes {
		bi := cm.leafBrushes[leaf.FirstLeafBrush+k]
		if !tw.s.visitBrush(bi) {
			continue
		}
		b := &cm.brushes[bi]
		if b.Contents&tw.contents == 0 {
			continue
		}
		tw.testBoxInBrush(b, cm.BrushSides(b), cm.planes, SurfaceRef{SurfaceBrush, bi})
		if tw.trace.AllSolid {
			return
		}
	}
	// points never start inside a patch
	if tw.isPoint {
		return
	}
	for k := range leaf.NumLeafSurfaces {
		si := cm.leafSurfaces[leaf.FirstLeafSurface+k]
		p := cm.surfaces[si]
		if tw.skipPatch(p) || !tw.s.visitPatch(si) {
			continue
		}
		if tw.positionTestInPatch(p.pc) {
			tw.trace.StartSolid = true
			tw.trace.AllSolid = true
			tw.trace.Fraction = 0
			tw.trace.Contents = p.Contents
			tw.trace.Surface = SurfaceRef{SurfacePatch, si}
			return
		}
	}
}

func (tw *traceWork) testBoxInBrush(b *Brush, sides []BrushSide, planes []Plane, ref SurfaceRef) {
	if len(sides) == 0 {
		return
	}
	if !vec.BoundsIntersect(tw.bounds[0], tw.bounds[1], b.Mins, b.Maxs) {
		return
	}
	if tw.sphere != nil {
		if q := tw.capsuleHull(b, sides, planes); q != nil {
			tw.clipHull(q, tw.sphere.radius, b.Contents, ref)
		}
		return
	}
	for k := range sides {
		plane := &planes[sides[k].PlaneNum]
		// adjust the plane distance appropriately for mins/maxs
		dist := plane.Dist - vec.Dot(tw.offsets[plane.SignBits], plane.Normal)
		if vec.Dot(tw.start, plane.Normal)-dist > 0 {
			return
		}
	}
	// inside this brush
	tw.trace.StartSolid = true
	tw.trace.AllSolid = true
	tw.trace.Fraction = 0
	tw.trace.Contents = b.Contents
	tw.trace.Surface = ref
}

func (tw *traceWork) traceThroughTree(num int, p1f, p2f float32, p1, p2 vec.Vec3) {
	cm := tw.cm
	if tw.trace.Fraction <= p1f {
		// already hit something nearer
		return
	}
	if num < 0 {
		tw.traceThroughLeaf(&cm.leafs[-1-num])
		return
	}
	node := &cm.nodes[num]
	plane := &cm.planes[node.PlaneNum]

	var t1, t2, offset float32
	if plane.Type < 3 {
		t1 = p1[plane.Type] - plane.Dist
		t2 = p2[plane.Type] - plane.Dist
		offset = tw.extents[plane.Type]
	} else {
		t1 = vec.Dot(plane.Normal, p1) - plane.Dist
		t2 = vec.Dot(plane.Normal, p2) - plane.Dist
		if !tw.isPoint {
			offset = tw.maxOffset
		}
	}

	// see which sides we need to consider
	if t1 >= offset+1 && t2 >= offset+1 {
		tw.traceThroughTree(node.Children[0], p1f, p2f, p1, p2)
		return
	}
	if t1 < -offset-1 && t2 < -offset-1 {
		tw.traceThroughTree(node.Children[1], p1f, p2f, p1, p2)
		return
	}

	// put the crosspoint SurfaceClipEpsilon pixels on the near side
	var side int
	var frac, frac2 float32
	switch {
	case t1 < t2:
		idist := 1 / (t1 - t2)
		side = 1
		frac2 = (t1 + offset + SurfaceClipEpsilon) * idist
		frac = (t1 - offset + SurfaceClipEpsilon) * idist
	case t1 > t2:
		idist := 1 / (t1 - t2)
		side = 0
		frac2 = (t1 - offset - SurfaceClipEpsilon) * idist
		frac = (t1 + offset + SurfaceClipEpsilon) * idist
	default:
		side = 0
		frac = 1
		frac2 = 0
	}
	frac = qmath.Clamp(0, frac, 1)
	frac2 = qmath.Clamp(0, frac2, 1)

	// move up to the node
	midf := p1f + (p2f-p1f)*frac
	mid := vec.Lerp(p1, p2, frac)
	tw.traceThroughTree(node.Children[side], p1f, midf, p1, mid)

	// go past the node
	midf = p1f + (p2f-p1f)*frac2
	mid = vec.Lerp(p1, p2, frac2)
	tw.traceThroughTree(node.Children[side^1], midf, p2f, mid, p2)
}

func (tw *traceWork) traceThroughLeaf(leaf *Leaf) {
	cm := tw.cm
	for k := range leaf.NumLeafBrushes {
		bi := cm.leafBrushes[leaf.FirstLeafBrush+k]
		if !tw.s.visitBrush(bi) {
			continue
		}
		b := &cm.brushes[bi]
		if b.Contents&tw.contents == 0 {
			continue
		}
		if !vec.BoundsIntersect(tw.bounds[0], tw.bounds[1], b.Mins, b.Maxs) {
			continue
		}
		tw.traceThroughBrush(b, cm.BrushSides(b), cm.planes, SurfaceRef{SurfaceBrush, bi})
		if tw.trace.Fraction == 0 {
			return
		}
	}
	for k := range leaf.NumLeafSurfaces {
		si := cm.leafSurfaces[leaf.FirstLeafSurface+k]
		p := cm.surfaces[si]
		if tw.skipPatch(p) || !tw.s.visitPatch(si) {
			continue
		}
		cm.stats.patchTraces.Add(1)
		old := tw.trace.Fraction
		tw.traceThroughPatch(p.pc)
		if tw.trace.Fraction < old {
			tw.trace.SurfaceFlags = p.SurfaceFlags
			tw.trace.Contents = p.Contents
			tw.trace.Surface = SurfaceRef{SurfacePatch, si}
		}
		if tw.trace.Fraction == 0 {
			return
		}
	}
}

func (tw *traceWork) traceThroughBrush(b *Brush, sides []BrushSide, planes []Plane, ref SurfaceRef) {
	if len(sides) == 0 {
		return
	}
	tw.cm.stats.brushTraces.Add(1)
	if tw.sphere != nil {
		tw.traceCapsuleThroughBrush(b, sides, planes, ref)
		return
	}

	enterFrac := float32(-1)
	leaveFrac := float32(1)
	var clipPlane *Plane
	var leadSide *BrushSide
	getout, startout := false, false

	// compare the trace against all planes of the brush, find the latest
	// time the trace crosses a plane towards the interior and the earliest
	// time the trace crosses a plane towards the exterior
	for k := range sides {
		side := &sides[k]
		plane := &planes[side.PlaneNum]
		// adjust the plane distance appropriately for mins/maxs
		dist := plane.Dist - vec.Dot(tw.offsets[plane.SignBits], plane.Normal)
		d1 := vec.Dot(tw.start, plane.Normal) - dist
		d2 := vec.Dot(tw.end, plane.Normal) - dist

		if d2 > 0 {
			getout = true // endpoint is not in solid
		}
		if d1 > 0 {
			startout = true
		}

		// if completely in front of face, no intersection with the entire brush
		if d1 > 0 && (d2 >= SurfaceClipEpsilon || d2 >= d1) {
			return
		}
		// if it doesn't cross the plane, the plane isn't relevant
		if d1 <= 0 && d2 <= 0 {
			continue
		}
		if d1 > d2 {
			// enter
			f := max(0, (d1-SurfaceClipEpsilon)/(d1-d2))
			if f > enterFrac {
				enterFrac = f
				clipPlane = plane
				leadSide = side
			}
		} else {
			// leave
			f := min(1, (d1+SurfaceClipEpsilon)/(d1-d2))
			if f < leaveFrac {
				leaveFrac = f
			}
		}
	}

	// all planes have been checked, and the trace was not completely
	// outside the brush
	if !startout {
		// original point was inside brush
		tw.trace.StartSolid = true
		if !getout {
			tw.trace.AllSolid = true
			tw.trace.Fraction = 0
			tw.trace.Contents = b.Contents
			tw.trace.Surface = ref
		}
		return
	}
	if enterFrac < leaveFrac && enterFrac > -1 && enterFrac < tw.trace.Fraction {
		tw.trace.Fraction = max(0, enterFrac)
		tw.trace.Plane = *clipPlane
		tw.trace.SurfaceFlags = leadSide.SurfaceFlags
		tw.trace.Contents = b.Contents
		tw.trace.Surface = ref
	}
}

// capsuleHull returns the volume the capsule core point must stay outside
// of by the capsule radius: the brush swept along the core segment.
func (tw *traceWork) capsuleHull(b *Brush, sides []BrushSide, planes []Plane) *convexHull {
	if b.hull == nil {
		return nil
	}
	q, err := b.hull.sweptHull(brushHullPlanes(sides, planes), tw.sphere.offset, tw.cm.opts.PlaneEpsilon)
	if err != nil {
		conlog.Warnf("capsule hull: %v", err)
		return nil
	}
	return q
}

func (tw *traceWork) traceCapsuleThroughBrush(b *Brush, sides []BrushSide, planes []Plane, ref SurfaceRef) {
	q := tw.capsuleHull(b, sides, planes)
	if q == nil {
		return
	}
	n, ok := tw.clipHull(q, tw.sphere.radius, b.Contents, ref)
	if !ok {
		return
	}
	// take the flags of the side facing the contact
	best := float32(-2)
	for k := range sides {
		if d := vec.Dot(n, planes[sides[k].PlaneNum].Normal); d > best {
			best = d
			tw.trace.SurfaceFlags = sides[k].SurfaceFlags
		}
	}
}

// support returns how far the moving shape reaches along n.
func (tw *traceWork) support(n vec.Vec3) float32 {
	if tw.sphere != nil {
		return tw.sphere.radius + tw.sphere.offset*qmath.Abs(n[2])
	}
	return vec.Dot(tw.size[1], n.Abs())
}

// clipHull clips the move of the trace center against the hull grown by r.
// It reports the contact normal if the trace got shorter.
func (tw *traceWork) clipHull(q *convexHull, r float32, contents Contents, ref SurfaceRef) (vec.Vec3, bool) {
	if q.distance(tw.start) <= r {
		tw.trace.StartSolid = true
		if q.distance(tw.end) <= r {
			tw.trace.AllSolid = true
			tw.trace.Fraction = 0
			tw.trace.Contents = contents
			tw.trace.Surface = ref
		}
		return vec.Vec3{}, false
	}
	t, n, ok := q.sweep(tw.start, tw.end, r)
	if !ok {
		return vec.Vec3{}, false
	}
	return n, tw.setHit(t, n, contents, ref)
}

// setHit records a contact at fraction t of the move, backed off along the
// path to stay SurfaceClipEpsilon away from the surface.
func (tw *traceWork) setHit(t float32, n vec.Vec3, contents Contents, ref SurfaceRef) bool {
	delta := vec.Sub(tw.end, tw.start)
	frac := t
	if approach := -vec.Dot(n, delta); approach > 0 {
		frac -= SurfaceClipEpsilon / approach
	}
	frac = max(0, frac)
	if frac >= tw.trace.Fraction {
		return false
	}
	c := vec.MA(tw.start, t, delta)
	tw.trace.Fraction = frac
	tw.trace.Plane = NewPlane(n, vec.Dot(n, c)-tw.support(n))
	tw.trace.SurfaceFlags = 0
	tw.trace.Contents = contents
	tw.trace.Surface = ref
	return true
}

// traceTemp traces against a box or capsule model.
func (tw *traceWork) traceTemp(h Handle) {
	if tw.contents&ContentsBody == 0 {
		return
	}
	ref := SurfaceRef{SurfaceTemp, h.Index()}
	if h.kind == kindBox {
		bb := newBoxBrush(h.mins, h.maxs)
		if tw.sphere != nil {
			hull, err := buildHull(brushHullPlanes(bb.sides[:], bb.planes[:]), tw.cm.opts.PlaneEpsilon)
			if err != nil {
				conlog.Warnf("box hull: %v", err)
				return
			}
			bb.brush.hull = hull
		}
		if tw.start == tw.end {
			tw.testBoxInBrush(&bb.brush, bb.sides[:], bb.planes[:], ref)
		} else {
			tw.traceThroughBrush(&bb.brush, bb.sides[:], bb.planes[:], ref)
		}
		return
	}

	radius, offset, center := capsuleParams(h.mins, h.maxs)
	switch {
	case tw.sphere != nil:
		// capsule against capsule: the core point against both cores
		// combined, grown by both radii
		q := segmentHull(center, offset+tw.sphere.offset)
		tw.clipHull(q, radius+tw.sphere.radius, ContentsBody, ref)
	case tw.isPoint:
		tw.clipHull(segmentHull(center, offset), radius, ContentsBody, ref)
	default:
		tw.clipBoxAgainstCapsule(radius, offset, center, ref)
	}
}

// clipBoxAgainstCapsule swaps roles: the capsule moves against the box
// standing still at the origin.
func (tw *traceWork) clipBoxAgainstCapsule(radius, offset float32, center vec.Vec3, ref SurfaceRef) {
	ext := tw.size[1]
	ext[2] += offset
	planes := make([]hullPlane, 0, 6)
	for i := range 3 {
		var n vec.Vec3
		n[i] = 1
		e := max(ext[i], 1.0/64)
		planes = append(planes, hullPlane{n, e}, hullPlane{n.Negate(), e})
	}
	q, err := buildHull(planes, tw.cm.opts.PlaneEpsilon)
	if err != nil || q == nil {
		return
	}
	s := vec.Sub(center, tw.start)
	e := vec.Sub(center, tw.end)
	if q.distance(s) <= radius {
		tw.trace.StartSolid = true
		if q.distance(e) <= radius {
			tw.trace.AllSolid = true
			tw.trace.Fraction = 0
			tw.trace.Contents = ContentsBody
			tw.trace.Surface = ref
		}
		return
	}
	t, n, ok := q.sweep(s, e, radius)
	if !ok {
		return
	}
	tw.setHit(t, n.Negate(), ContentsBody, ref)
}
