// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"q3cm/math/vec"
)

type handleKind uint8

const (
	kindInvalid handleKind = iota
	kindInline
	kindBox
	kindCapsule
)

// Handle names a collision model: the world, an inline model of a specific
// map or a temporary box or capsule. The zero Handle is invalid.
type Handle struct {
	kind       handleKind
	index      int
	mapID      uuid.UUID
	mins, maxs vec.Vec3
}

// Index returns the model index, BoxModelHandle or CapsuleModelHandle.
func (h Handle) Index() int {
	switch h.kind {
	case kindBox:
		return BoxModelHandle
	case kindCapsule:
		return CapsuleModelHandle
	}
	return h.index
}

func (h Handle) IsTemp() bool {
	return h.kind == kindBox || h.kind == kindCapsule
}

func (h Handle) IsCapsule() bool {
	return h.kind == kindCapsule
}

// World returns the handle of the world model.
func (cm *ClipMap) World() Handle {
	return Handle{kind: kindInline, index: 0, mapID: cm.id}
}

func (cm *ClipMap) InlineModel(index int) (Handle, error) {
	if index < 0 || index >= len(cm.models) {
		return Handle{}, errors.Wrapf(ErrBadModelHandle, "inline model %d of %d", index, len(cm.models))
	}
	return Handle{kind: kindInline, index: index, mapID: cm.id}, nil
}

// TempBoxModel returns a handle to a solid box or, if capsule is set, a
// capsule filling the box. It can be used with any map.
func TempBoxModel(mins, maxs vec.Vec3, capsule bool) Handle {
	h := Handle{kind: kindBox, mins: mins, maxs: maxs}
	if capsule {
		h.kind = kindCapsule
	}
	return h
}

func (cm *ClipMap) resolve(h Handle) (*Model, error) {
	switch h.kind {
	case kindBox, kindCapsule:
		return nil, nil
	case kindInline:
		if h.mapID != cm.id {
			return nil, errors.Wrapf(ErrBadModelHandle, "handle of map %v used with %v", h.mapID, cm.id)
		}
		if h.index < 0 || h.index >= len(cm.models) {
			return nil, errors.Wrapf(ErrBadModelHandle, "inline model %d", h.index)
		}
		return &cm.models[h.index], nil
	}
	return nil, ErrBadModelHandle
}

func (cm *ClipMap) ModelBounds(h Handle) (mins, maxs vec.Vec3, err error) {
	if h.IsTemp() {
		return h.mins, h.maxs, nil
	}
	m, err := cm.resolve(h)
	if err != nil {
		return mins, maxs, err
	}
	return m.Mins, m.Maxs, nil
}

// boxBrush is the temporary brush standing in for a box model.
type boxBrush struct {
	planes [6]Plane
	sides  [6]BrushSide
	brush  Brush
}

func newBoxBrush(mins, maxs vec.Vec3) *boxBrush {
	b := &boxBrush{}
	for i := range 3 {
		var n vec.Vec3
		n[i] = 1
		b.planes[i*2] = NewPlane(n, maxs[i])
		b.planes[i*2+1] = NewPlane(n.Negate(), -mins[i])
		b.sides[i*2].PlaneNum = i * 2
		b.sides[i*2+1].PlaneNum = i*2 + 1
	}
	b.brush = Brush{
		Contents: ContentsBody,
		Mins:     mins,
		Maxs:     maxs,
		NumSides: 6,
	}
	return b
}

// capsuleParams derives radius and core half length of the capsule filling
// the box, together with its center.
func capsuleParams(mins, maxs vec.Vec3) (radius, offset float32, center vec.Vec3) {
	center = vec.Lerp(mins, maxs, 0.5)
	half := vec.Sub(maxs, center)
	radius = min(half[0], half[2])
	offset = half[2] - radius
	return radius, offset, center
}
