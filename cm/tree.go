// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"q3cm/math/vec"
)

func (cm *ClipMap) root() int {
	if len(cm.nodes) == 0 {
		return -1
	}
	return 0
}

// PointLeafnum returns the leaf containing p. Points on a node plane belong
// to the front child.
func (cm *ClipMap) PointLeafnum(p vec.Vec3) int {
	return cm.pointLeafnum(p, cm.root())
}

func (cm *ClipMap) pointLeafnum(p vec.Vec3, num int) int {
	for num >= 0 {
		node := &cm.nodes[num]
		plane := &cm.planes[node.PlaneNum]
		if plane.Distance(p) < 0 {
			num = node.Children[1]
		} else {
			num = node.Children[0]
		}
	}
	return -1 - num
}

// LeafList is the result of BoxLeafnums.
type LeafList struct {
	Leafs []int
	// Overflowed is set when more leafs touched the box than fit.
	Overflowed bool
	// LastLeaf is the last leaf with a cluster touching the box, also
	// when the list overflowed.
	LastLeaf int
}

// BoxLeafnums lists up to capacity leafs touching the box, the default
// capacity is used when capacity is not positive.
func (cm *ClipMap) BoxLeafnums(mins, maxs vec.Vec3, capacity int) LeafList {
	if capacity <= 0 {
		capacity = cm.opts.BoxLeafCapacity
	}
	ll := LeafList{Leafs: make([]int, 0, min(capacity, 64))}
	cm.boxLeafnums(mins, maxs, cm.root(), func(leaf int) bool {
		if cm.leafs[leaf].Cluster != -1 {
			ll.LastLeaf = leaf
		}
		if len(ll.Leafs) >= capacity {
			// keep walking so LastLeaf covers the whole box
			ll.Overflowed = true
			return true
		}
		ll.Leafs = append(ll.Leafs, leaf)
		return true
	})
	return ll
}

// boxLeafnums calls f for every leaf touching the box until f returns false.
func (cm *ClipMap) boxLeafnums(mins, maxs vec.Vec3, num int, f func(int) bool) bool {
	for num >= 0 {
		node := &cm.nodes[num]
		plane := &cm.planes[node.PlaneNum]
		switch plane.BoxOnPlaneSide(mins, maxs) {
		case 1:
			num = node.Children[0]
		case 2:
			num = node.Children[1]
		default:
			if !cm.boxLeafnums(mins, maxs, node.Children[0], f) {
				return false
			}
			num = node.Children[1]
		}
	}
	return f(-1 - num)
}

// BoxBrushes returns up to limit brushes whose bounds touch the box and
// whether more were found. A limit that is not positive means no limit.
func (cm *ClipMap) BoxBrushes(mins, maxs vec.Vec3, limit int) ([]int, bool) {
	if limit <= 0 {
		limit = len(cm.brushes)
	}
	s := cm.getScratch()
	defer cm.putScratch(s)
	var list []int
	overflowed := false
	cm.boxLeafnums(mins, maxs, cm.root(), func(leafnum int) bool {
		leaf := &cm.leafs[leafnum]
		for k := range leaf.NumLeafBrushes {
			bi := cm.leafBrushes[leaf.FirstLeafBrush+k]
			if !s.visitBrush(bi) {
				continue
			}
			b := &cm.brushes[bi]
			if !vec.BoundsIntersect(mins, maxs, b.Mins, b.Maxs) {
				continue
			}
			if len(list) >= limit {
				overflowed = true
				return false
			}
			list = append(list, bi)
		}
		return true
	})
	return list, overflowed
}

// PointContents returns the contents of all brushes of the model that
// contain p. Patches have no volume and never contribute.
func (cm *ClipMap) PointContents(p vec.Vec3, h Handle) (Contents, error) {
	m, err := cm.resolve(h)
	if err != nil {
		return 0, err
	}
	cm.stats.pointContents.Add(1)
	switch h.kind {
	case kindBox:
		if vec.PointInBounds(p, h.mins, h.maxs) {
			return ContentsBody, nil
		}
		return 0, nil
	case kindCapsule:
		r, o, c := capsuleParams(h.mins, h.maxs)
		if segmentHull(c, o).distance(p) <= r {
			return ContentsBody, nil
		}
		return 0, nil
	}
	var leaf *Leaf
	if h.index == 0 {
		leaf = &cm.leafs[cm.PointLeafnum(p)]
	} else {
		leaf = &m.Leaf
	}
	var contents Contents
	for k := range leaf.NumLeafBrushes {
		b := &cm.brushes[cm.leafBrushes[leaf.FirstLeafBrush+k]]
		if cm.pointInBrush(p, b) {
			contents |= b.Contents
		}
	}
	return contents, nil
}

func (cm *ClipMap) pointInBrush(p vec.Vec3, b *Brush) bool {
	if !vec.PointInBounds(p, b.Mins, b.Maxs) {
		return false
	}
	for _, side := range cm.BrushSides(b) {
		if cm.planes[side.PlaneNum].Distance(p) > 0 {
			return false
		}
	}
	return true
}
