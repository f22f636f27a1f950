// SPDX-License-Identifier: GPL-2.0-or-later

package winding

import (
	"testing"

	"github.com/pkg/errors"

	"q3cm/math/vec"
)

func square(size float32) *Winding {
	return New(
		vec.Vec3{-size, -size, 0},
		vec.Vec3{size, -size, 0},
		vec.Vec3{size, size, 0},
		vec.Vec3{-size, size, 0},
	)
}

func TestArea(t *testing.T) {
	w := square(2)
	if got := w.Area(); got != 16 {
		t.Errorf("Area(%v) = %v, want 16", w.Points, got)
	}
	line := New(vec.Vec3{0, 0, 0}, vec.Vec3{1, 0, 0})
	if got := line.Area(); got != 0 {
		t.Errorf("Area of two points = %v, want 0", got)
	}
}

func TestBounds(t *testing.T) {
	mins, maxs := square(3).Bounds()
	if mins != (vec.Vec3{-3, -3, 0}) || maxs != (vec.Vec3{3, 3, 0}) {
		t.Errorf("Bounds = %v %v", mins, maxs)
	}
}

func TestPlane(t *testing.T) {
	w := New(
		vec.Vec3{0, 0, 5},
		vec.Vec3{1, 0, 5}, // collinear with the next point and p0
		vec.Vec3{2, 0, 5},
		vec.Vec3{2, 2, 5},
	)
	n, d, ok := w.Plane()
	if !ok {
		t.Fatalf("Plane() not ok")
	}
	if !vec.Equal(n, vec.Vec3{0, 0, -1}, 1e-6) || d != -5 {
		t.Errorf("Plane() = %v %v, want (0,0,-1) -5", n, d)
	}
	if _, _, ok := New(vec.Vec3{}, vec.Vec3{1, 1, 1}, vec.Vec3{2, 2, 2}).Plane(); ok {
		t.Errorf("Plane() of collinear points is ok")
	}
}

func TestClipPartition(t *testing.T) {
	tests := []struct {
		name   string
		normal vec.Vec3
		dist   float32
	}{
		{"axial", vec.Vec3{1, 0, 0}, 0.5},
		{"diagonal", vec.Vec3{1, 1, 0}.Normalize(), 0.3},
		{"negative", vec.Vec3{0, -1, 0}, -1},
	}
	const eps = 0.01
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := square(2)
			front, back, err := w.ClipEpsilon(tt.normal, tt.dist, eps)
			if err != nil {
				t.Fatalf("ClipEpsilon: %v", err)
			}
			if front == nil || back == nil {
				t.Fatalf("ClipEpsilon = %v, %v, want two pieces", front, back)
			}
			for _, p := range front.Points {
				if d := vec.Dot(p, tt.normal) - tt.dist; d < -eps {
					t.Errorf("front point %v is behind the plane (%v)", p, d)
				}
			}
			for _, p := range back.Points {
				if d := vec.Dot(p, tt.normal) - tt.dist; d > eps {
					t.Errorf("back point %v is in front of the plane (%v)", p, d)
				}
			}
			if got, want := front.Area()+back.Area(), w.Area(); got < want-0.01 || got > want+0.01 {
				t.Errorf("area of pieces = %v, want %v", got, want)
			}
		})
	}
}

func TestClipOneSided(t *testing.T) {
	w := square(1)
	front, back, err := w.ClipEpsilon(vec.Vec3{1, 0, 0}, -5, OnEpsilon)
	if err != nil {
		t.Fatal(err)
	}
	if back != nil || front == nil || len(front.Points) != len(w.Points) {
		t.Errorf("ClipEpsilon in front = %v, %v", front, back)
	}
	front, back, err = w.ClipEpsilon(vec.Vec3{1, 0, 0}, 5, OnEpsilon)
	if err != nil {
		t.Fatal(err)
	}
	if front != nil || back == nil || back.Area() != w.Area() {
		t.Errorf("ClipEpsilon behind = %v, %v", front, back)
	}
}

func TestChopNoIntersection(t *testing.T) {
	w := square(1)
	tests := []struct {
		dist    float32
		wantNil bool
	}{
		{-10, false},
		{10, true},
	}
	for _, tt := range tests {
		got, err := w.Chop(vec.Vec3{0, 1, 0}, tt.dist)
		if err != nil {
			t.Fatal(err)
		}
		if tt.wantNil {
			if got != nil {
				t.Errorf("Chop(%v) = %v, want nil", tt.dist, got.Points)
			}
			continue
		}
		if got == nil || len(got.Points) != len(w.Points) {
			t.Errorf("Chop(%v) changed the winding: %v", tt.dist, got)
		}
	}
}

func TestChopDegenerate(t *testing.T) {
	// all points on the plane
	got, err := square(1).Chop(vec.Vec3{0, 0, 1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("Chop on plane = %v, want nil", got.Points)
	}
}

func TestBaseForPlane(t *testing.T) {
	normal := vec.Vec3{0, 0, 1}
	w := BaseForPlane(normal, 32)
	if len(w.Points) != 4 {
		t.Fatalf("BaseForPlane has %d points", len(w.Points))
	}
	for _, p := range w.Points {
		if p[2] != 32 {
			t.Errorf("point %v not on plane", p)
		}
	}
	n, d, ok := w.Plane()
	if !ok || !vec.Equal(n, normal, 1e-5) || d != 32 {
		t.Errorf("BaseForPlane plane = %v %v %v", n, d, ok)
	}
	// cut it down to a 64 unit square
	for _, c := range []struct {
		n vec.Vec3
		d float32
	}{
		{vec.Vec3{-1, 0, 0}, -32},
		{vec.Vec3{1, 0, 0}, -32},
		{vec.Vec3{0, -1, 0}, -32},
		{vec.Vec3{0, 1, 0}, -32},
	} {
		var err error
		w, err = w.Chop(c.n, c.d)
		if err != nil || w == nil {
			t.Fatalf("Chop(%v,%v) = %v, %v", c.n, c.d, w, err)
		}
	}
	if got := w.Area(); got != 64*64 {
		t.Errorf("Area = %v, want %v", got, 64*64)
	}
}

func TestRemoveColinearPoints(t *testing.T) {
	w := New(
		vec.Vec3{0, 0, 0},
		vec.Vec3{1, 0, 0},
		vec.Vec3{2, 0, 0},
		vec.Vec3{2, 2, 0},
		vec.Vec3{0, 2, 0},
	)
	w.RemoveColinearPoints()
	if len(w.Points) != 4 {
		t.Errorf("RemoveColinearPoints left %v", w.Points)
	}
}

func TestRemoveDuplicatePoints(t *testing.T) {
	w := New(
		vec.Vec3{0, 0, 0},
		vec.Vec3{2, 0, 0},
		vec.Vec3{2, 0, 0.0001},
		vec.Vec3{2, 2, 0},
		vec.Vec3{0, 2, 0},
		vec.Vec3{0, 0, 0},
	)
	w.RemoveColinearPoints()
	want := []vec.Vec3{{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0}}
	if len(w.Points) != len(want) {
		t.Fatalf("RemoveColinearPoints left %v, want %v", w.Points, want)
	}
	for i := range want {
		if w.Points[i] != want[i] {
			t.Errorf("Points[%d] = %v, want %v", i, w.Points[i], want[i])
		}
	}
}

func TestMaxPoints(t *testing.T) {
	pts := make([]vec.Vec3, MaxPointsOnWinding)
	for i := range pts {
		// a zigzag around the x axis, each edge crosses y == 0
		y := float32(1)
		if i%2 == 1 {
			y = -1
		}
		pts[i] = vec.Vec3{float32(i), y, 0}
	}
	_, _, err := New(pts...).ClipEpsilon(vec.Vec3{0, 1, 0}, 0, OnEpsilon)
	if !errors.Is(err, ErrMaxPoints) {
		t.Errorf("ClipEpsilon err = %v, want ErrMaxPoints", err)
	}
}
