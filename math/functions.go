// SPDX-License-Identifier: GPL-2.0-or-later

package math

// Lerp returns the value between a and b at frac
func Lerp(a, b, frac float32) float32 {
	return a + (b-a)*frac
}

// NearlyEqual reports whether a and b differ by at most eps.
func NearlyEqual(a, b, eps float32) bool {
	return Abs(a-b) <= eps
}
