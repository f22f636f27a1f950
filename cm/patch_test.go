// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"testing"

	"q3cm/math/vec"
)

func TestFlatPatch(t *testing.T) {
	points := make([]vec.Vec3, 0, 9)
	for j := range 3 {
		for i := range 3 {
			points = append(points, vec.Vec3{-64 + 64*float32(i), -64 + 64*float32(j), 0})
		}
	}
	for _, bevels := range []bool{false, true} {
		opts := DefaultOptions()
		opts.PatchBevels = bevels
		pc, degenerate, err := generatePatchCollide(3, 3, points, opts)
		if err != nil {
			t.Fatalf("generatePatchCollide(bevels %v): %v", bevels, err)
		}
		if degenerate != 0 {
			t.Errorf("bevels %v: %d degenerate facets, want 0", bevels, degenerate)
		}
		// the flat grid collapses to a single quad
		if len(pc.facets) != 1 {
			t.Fatalf("bevels %v: %d facets, want 1", bevels, len(pc.facets))
		}
		f := pc.facets[0]
		if n := pc.plane(f.surface).Normal; n != (vec.Vec3{0, 0, 1}) {
			t.Errorf("bevels %v: facet normal = %v, want (0 0 1)", bevels, n)
		}
		if f.back != bevels {
			t.Errorf("bevels %v: back = %v", bevels, f.back)
		}
		if want := (vec.Vec3{-65, -65, -1}); pc.mins != want {
			t.Errorf("bevels %v: mins = %v, want %v", bevels, pc.mins, want)
		}
	}
}

func TestCurvedPatch(t *testing.T) {
	// a half pipe bending up 64 units along x
	var points []vec.Vec3
	for j := range 3 {
		for _, p := range [3][2]float32{{-64, 64}, {0, -64}, {64, 64}} {
			points = append(points, vec.Vec3{p[0], -64 + 64*float32(j), p[1]})
		}
	}
	pc, _, err := generatePatchCollide(3, 3, points, DefaultOptions())
	if err != nil {
		t.Fatalf("generatePatchCollide: %v", err)
	}
	if len(pc.facets) < 4 {
		t.Errorf("%d facets, want the curve subdivided", len(pc.facets))
	}
	for i := range pc.facets {
		n := pc.plane(pc.facets[i].surface).Normal
		if n[2] <= 0 {
			t.Errorf("facet %d normal %v points down", i, n)
		}
	}
}

func TestPatchErrors(t *testing.T) {
	points := make([]vec.Vec3, 25)
	for _, tc := range []struct {
		w, h int
	}{
		{2, 3}, {3, 4}, {1, 1}, {5, 6},
	} {
		if _, _, err := generatePatchCollide(tc.w, tc.h, points, DefaultOptions()); err == nil {
			t.Errorf("generatePatchCollide(%d, %d) succeeded", tc.w, tc.h)
		}
	}
}

func TestPatchTrace(t *testing.T) {
	box := Box{Mins: vec.Vec3{-8, -8, -8}, Maxs: vec.Vec3{8, 8, 8}}
	capsule := Capsule{Radius: 16, HalfHeight: 24}
	for _, bevels := range []bool{false, true} {
		opts := DefaultOptions()
		opts.PatchBevels = bevels
		cm := loadTestMap(t, testMap(), opts)
		for _, tc := range []struct {
			name       string
			start, end vec.Vec3
			shape      Shape
			fraction   float32
		}{
			{"point from above", vec.Vec3{132, -32, 50}, vec.Vec3{132, -32, -50}, Point{}, (50 - SurfaceClipEpsilon) / 100},
			{"point from below", vec.Vec3{132, -32, -50}, vec.Vec3{132, -32, 50}, Point{}, 1},
			{"point beside", vec.Vec3{300, -32, 50}, vec.Vec3{300, -32, -50}, Point{}, 1},
			{"box from above", vec.Vec3{132, -32, 50}, vec.Vec3{132, -32, -50}, box, (42 - SurfaceClipEpsilon) / 100},
			{"capsule from above", vec.Vec3{132, -32, 100}, vec.Vec3{132, -32, -100}, capsule, (76 - SurfaceClipEpsilon) / 200},
		} {
			tr, err := cm.Trace(tc.start, tc.end, tc.shape, cm.World(), MaskSolid)
			if err != nil {
				t.Fatalf("%s: Trace: %v", tc.name, err)
			}
			if !nearly(tr.Fraction, tc.fraction, 1e-5) {
				t.Errorf("bevels %v, %s: Fraction = %v, want %v", bevels, tc.name, tr.Fraction, tc.fraction)
			}
			if tc.fraction == 1 {
				continue
			}
			if !vec.Equal(tr.Plane.Normal, vec.Vec3{0, 0, 1}, 1e-5) {
				t.Errorf("bevels %v, %s: Normal = %v, want (0 0 1)", bevels, tc.name, tr.Plane.Normal)
			}
			if tr.Surface != (SurfaceRef{SurfacePatch, 0}) {
				t.Errorf("bevels %v, %s: Surface = %v, want patch 0", bevels, tc.name, tr.Surface)
			}
			if tr.Contents != ContentsSolid {
				t.Errorf("bevels %v, %s: Contents = %#x, want %#x", bevels, tc.name, tr.Contents, ContentsSolid)
			}
		}
	}
}

func TestPatchPosition(t *testing.T) {
	cm := loadTestMap(t, testMap(), DefaultOptions())
	box := Box{Mins: vec.Vec3{-8, -8, -8}, Maxs: vec.Vec3{8, 8, 8}}
	for _, tc := range []struct {
		name  string
		p     vec.Vec3
		shape Shape
		solid bool
	}{
		{"box on the patch", vec.Vec3{132, -32, 0}, box, true},
		{"box above the patch", vec.Vec3{132, -32, 20}, box, false},
		{"point on the patch", vec.Vec3{132, -32, 0}, Point{}, false},
		{"capsule on the patch", vec.Vec3{132, -32, 20}, Capsule{Radius: 16, HalfHeight: 24}, true},
	} {
		tr, err := cm.Trace(tc.p, tc.p, tc.shape, cm.World(), MaskSolid)
		if err != nil {
			t.Fatalf("%s: Trace: %v", tc.name, err)
		}
		if tr.AllSolid != tc.solid {
			t.Errorf("%s: AllSolid = %v, want %v", tc.name, tr.AllSolid, tc.solid)
		}
		if tc.solid && tr.Surface != (SurfaceRef{SurfacePatch, 0}) {
			t.Errorf("%s: Surface = %v, want patch 0", tc.name, tr.Surface)
		}
	}
}

func TestPatchOptions(t *testing.T) {
	start := vec.Vec3{132, -32, 50}
	end := vec.Vec3{132, -32, -50}
	hit := float32(50-SurfaceClipEpsilon) / 100
	for _, tc := range []struct {
		name   string
		clip   bool
		modify func(o *Options)
		mask   Contents
		want   float32
	}{
		{"no curves", false, func(o *Options) { o.NoCurves = true }, MaskSolid, 1},
		{"clip patch", true, func(o *Options) {}, MaskPlayerSolid, hit},
		{"clip patch without player curve clip", true, func(o *Options) { o.PlayerCurveClip = false }, MaskPlayerSolid, 1},
		{"clip patch with a shot", true, func(o *Options) {}, MaskShot, 1},
	} {
		m := testMap()
		if tc.clip {
			m.Surfaces[0].ShaderNum = shaderClip
		}
		opts := DefaultOptions()
		tc.modify(&opts)
		cm := loadTestMap(t, m, opts)
		tr, err := cm.Trace(start, end, Point{}, cm.World(), tc.mask)
		if err != nil {
			t.Fatalf("%s: Trace: %v", tc.name, err)
		}
		if !nearly(tr.Fraction, tc.want, 1e-5) {
			t.Errorf("%s: Fraction = %v, want %v", tc.name, tr.Fraction, tc.want)
		}
		if tc.want < 1 && tr.SurfaceFlags != SurfaceNoDraw {
			t.Errorf("%s: SurfaceFlags = %#x, want %#x", tc.name, tr.SurfaceFlags, SurfaceNoDraw)
		}
	}
}
