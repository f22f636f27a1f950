// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"github.com/pkg/errors"
)

func (cm *ClipMap) initAreas() {
	n := len(cm.areas)
	cm.areaPortals = make([]int, n*n)
	cm.floodAreaConnections()
}

func (cm *ClipMap) AreaCount() int {
	return len(cm.areas)
}

func (cm *ClipMap) checkArea(a int) error {
	if a >= len(cm.areas) {
		return errors.Wrapf(ErrAreaOutOfRange, "area %d of %d", a, len(cm.areas))
	}
	return nil
}

// floodArea marks all areas reachable from start through open portals.
func (cm *ClipMap) floodArea(start, floodNum int) {
	n := len(cm.areas)
	stack := []int{start}
	cm.areas[start].floodValid = cm.floodValid
	cm.areas[start].floodNum = floodNum
	for len(stack) > 0 {
		a := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i := range n {
			if cm.areaPortals[a*n+i] <= 0 {
				continue
			}
			o := &cm.areas[i]
			if o.floodValid == cm.floodValid {
				continue
			}
			o.floodValid = cm.floodValid
			o.floodNum = floodNum
			stack = append(stack, i)
		}
	}
}

// floodAreaConnections recomputes the connected components. The caller
// holds the portal lock.
func (cm *ClipMap) floodAreaConnections() {
	// all current floods are now invalid
	cm.floodValid++
	floodNum := 0
	for i := range cm.areas {
		if cm.areas[i].floodValid == cm.floodValid {
			continue // already flooded into
		}
		floodNum++
		cm.floodArea(i, floodNum)
	}
}

// AdjustAreaPortalState changes the reference count of the portal between
// two areas, a portal is open while its count is positive. Negative areas
// are ignored.
func (cm *ClipMap) AdjustAreaPortalState(area1, area2, delta int) error {
	if area1 < 0 || area2 < 0 {
		return nil
	}
	if err := cm.checkArea(area1); err != nil {
		return err
	}
	if err := cm.checkArea(area2); err != nil {
		return err
	}
	cm.portalMu.Lock()
	defer cm.portalMu.Unlock()
	n := len(cm.areas)
	old := cm.areaPortals[area1*n+area2]
	count := old + delta
	if count < 0 {
		return errors.Wrapf(ErrNegativePortalCount, "areas %d and %d: %d%+d", area1, area2, old, delta)
	}
	cm.areaPortals[area1*n+area2] = count
	cm.areaPortals[area2*n+area1] = count
	if (old == 0) != (count == 0) {
		cm.floodAreaConnections()
	}
	return nil
}

// AreasConnected reports whether the areas are connected through open
// portals. Negative areas are never connected.
func (cm *ClipMap) AreasConnected(area1, area2 int) (bool, error) {
	if cm.opts.NoAreas {
		return true, nil
	}
	if area1 < 0 || area2 < 0 {
		return false, nil
	}
	if err := cm.checkArea(area1); err != nil {
		return false, err
	}
	if err := cm.checkArea(area2); err != nil {
		return false, err
	}
	cm.portalMu.RLock()
	defer cm.portalMu.RUnlock()
	return cm.areas[area1].floodNum == cm.areas[area2].floodNum, nil
}

// WriteAreaBits returns a bit vector of all areas connected to area. A
// negative area reports every area, as an entity sitting on a node
// boundary does.
func (cm *ClipMap) WriteAreaBits(area int) ([]byte, error) {
	n := len(cm.areas)
	bits := make([]byte, (n+7)>>3)
	if cm.opts.NoAreas || area < 0 {
		for i := range n {
			bits[i>>3] |= 1 << (i & 7)
		}
		return bits, nil
	}
	if err := cm.checkArea(area); err != nil {
		return nil, err
	}
	cm.portalMu.RLock()
	defer cm.portalMu.RUnlock()
	floodNum := cm.areas[area].floodNum
	for i := range n {
		if cm.areas[i].floodNum == floodNum {
			bits[i>>3] |= 1 << (i & 7)
		}
	}
	return bits, nil
}

// portalCount returns the reference count of the portal between the areas.
func (cm *ClipMap) portalCount(area1, area2 int) int {
	cm.portalMu.RLock()
	defer cm.portalMu.RUnlock()
	return cm.areaPortals[area1*len(cm.areas)+area2]
}
