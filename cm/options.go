// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"q3cm/cvars"
)

// Options are the tunables a ClipMap is loaded with. They are fixed for
// the lifetime of the map.
type Options struct {
	// NoAreas makes every pair of areas connected.
	NoAreas bool
	// NoCurves ignores patches for all traces.
	NoCurves bool
	// PlayerCurveClip lets player clip patches block traces. When false,
	// patches whose contents are player clip but not solid are skipped.
	PlayerCurveClip bool
	// PatchBevels adds axial and edge bevels plus a back plane to each patch
	// facet, closing the facet into a thin convex slab.
	PatchBevels bool
	// PlaneEpsilon is the on-plane distance used for winding clipping and
	// patch facet merging.
	PlaneEpsilon float32
	// BoxLeafCapacity is the default capacity of BoxLeafnums.
	BoxLeafCapacity int
}

func DefaultOptions() Options {
	return Options{
		PlayerCurveClip: true,
		PlaneEpsilon:    0.1,
		BoxLeafCapacity: 1024,
	}
}

func (o *Options) fill() {
	if o.PlaneEpsilon <= 0 {
		o.PlaneEpsilon = 0.1
	}
	if o.BoxLeafCapacity <= 0 {
		o.BoxLeafCapacity = 1024
	}
}

// OptionsFromCvars builds the options from the cm_* console variables.
func OptionsFromCvars() Options {
	o := Options{
		NoAreas:         cvars.CMNoAreas.Bool(),
		NoCurves:        cvars.CMNoCurves.Bool(),
		PlayerCurveClip: cvars.CMPlayerCurveClip.Bool(),
		PatchBevels:     cvars.CMPatchBevels.Bool(),
		PlaneEpsilon:    cvars.CMPlaneEpsilon.Value(),
		BoxLeafCapacity: cvars.CMBoxLeafCapacity.Int(),
	}
	o.fill()
	return o
}
