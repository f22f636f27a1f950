// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"q3cm/math/vec"
)

// Shape is the volume swept by a trace: Point, Box or Capsule.
type Shape interface {
	bounds() (mins, maxs vec.Vec3)
}

type Point struct{}

// Box is an axis aligned box relative to the trace origin.
type Box struct {
	Mins, Maxs vec.Vec3
}

// Capsule is an upright capsule: a vertical segment of half length
// HalfHeight-Radius around Center, grown by Radius. Center is relative to
// the trace origin.
type Capsule struct {
	Radius     float32
	HalfHeight float32
	Center     vec.Vec3
}

// CapsuleFromBounds returns the capsule filling the box.
func CapsuleFromBounds(mins, maxs vec.Vec3) Capsule {
	r, o, c := capsuleParams(mins, maxs)
	return Capsule{Radius: r, HalfHeight: o + r, Center: c}
}

func (Point) bounds() (mins, maxs vec.Vec3) {
	return
}

func (b Box) bounds() (mins, maxs vec.Vec3) {
	return b.Mins, b.Maxs
}

func (c Capsule) bounds() (mins, maxs vec.Vec3) {
	h := vec.Vec3{c.Radius, c.Radius, max(c.HalfHeight, c.Radius)}
	return vec.Sub(c.Center, h), vec.Add(c.Center, h)
}

type SurfaceKind uint8

const (
	SurfaceNone SurfaceKind = iota
	SurfaceBrush
	SurfacePatch
	SurfaceTemp
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfaceBrush:
		return "brush"
	case SurfacePatch:
		return "patch"
	case SurfaceTemp:
		return "temp"
	}
	return "none"
}

// SurfaceRef names what a trace hit. Index is a brush or surface number,
// or the temporary model handle.
type SurfaceRef struct {
	Kind  SurfaceKind
	Index int
}

type Trace struct {
	// AllSolid is set if the trace never left solid.
	AllSolid bool
	// StartSolid is set if the trace started in solid.
	StartSolid bool
	// Fraction of the path that was completed, 1 if nothing was hit.
	Fraction float32
	// EndPos is the origin at Fraction.
	EndPos vec.Vec3
	// Plane of the hit surface, valid if Fraction < 1.
	Plane        Plane
	SurfaceFlags SurfaceFlags
	Contents     Contents
	Surface      SurfaceRef
}
