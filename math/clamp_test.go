// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"testing"
)

func TestClampMin(t *testing.T) {
	v := Clamp(1, 0, 10)
	if v != 1 {
		t.Errorf("Clamp(1,0,10) = %v", v)
	}
}

func TestClampMan(t *testing.T) {
	v := Clamp(1, 100, 10)
	if v != 10 {
		t.Errorf("Clamp(1,100,10) = %v", v)
	}
}

func TestClampVal(t *testing.T) {
	v := Clamp(1, 5, 10)
	if v != 5 {
		t.Errorf("Clamp(1,5,10) = %v", v)
	}
}

func TestClampFloat(t *testing.T) {
	v := Clamp(float32(0), float32(1.25), float32(1))
	if v != 1 {
		t.Errorf("Clamp(0,1.25,1) = %v", v)
	}
}

func TestAbs(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{-2, 2},
		{0, 0},
		{3.5, 3.5},
	}
	for _, tt := range tests {
		if got := Abs(tt.in); got != tt.want {
			t.Errorf("Abs(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(100, -100, 0.25); got != 50 {
		t.Errorf("Lerp(100,-100,0.25) = %v, want 50", got)
	}
	if !NearlyEqual(0.1+0.2, 0.3, 1e-6) {
		t.Errorf("NearlyEqual(0.1+0.2, 0.3) = false")
	}
}
