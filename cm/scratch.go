// SPDX-License-Identifier: GPL-2.0-or-later

package cm

// scratch is the per query state. It marks brushes and patches already
// tested, so that objects shared by several leafs are only tested once.
type scratch struct {
	gen     uint32
	brushes []uint32
	patches []uint32
	leafs   []int
}

func newScratch(numBrushes, numSurfaces int) *scratch {
	return &scratch{
		brushes: make([]uint32, numBrushes),
		patches: make([]uint32, numSurfaces),
	}
}

func (s *scratch) reset() {
	s.gen++
	if s.gen == 0 {
		clear(s.brushes)
		clear(s.patches)
		s.gen = 1
	}
	s.leafs = s.leafs[:0]
}

// visitBrush reports whether brush i was not yet seen and marks it.
func (s *scratch) visitBrush(i int) bool {
	if s.brushes[i] == s.gen {
		return false
	}
	s.brushes[i] = s.gen
	return true
}

func (s *scratch) visitPatch(i int) bool {
	if s.patches[i] == s.gen {
		return false
	}
	s.patches[i] = s.gen
	return true
}

func (cm *ClipMap) initScratch() {
	nb, ns := len(cm.brushes), len(cm.surfaces)
	cm.scratch.New = func() any {
		return newScratch(nb, ns)
	}
}

func (cm *ClipMap) getScratch() *scratch {
	s := cm.scratch.Get().(*scratch)
	s.reset()
	return s
}

func (cm *ClipMap) putScratch(s *scratch) {
	cm.scratch.Put(s)
}
