// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package dsp

import "math"

// Lowpass designs a linear-phase FIR low-pass filter with the given cutoff
// frequency in Hz, using a Hamming-windowed sinc. The kernel has unit DC gain
// and odd length. If taps <= 0 a length is chosen from the cutoff; an even
// taps value is rounded up.
func Lowpass(cutoff, rate float64, taps int) []float64 {
	taps = normalizeTaps(taps, cutoff, rate)
	m := taps / 2
	fc := cutoff / rate // cycles per sample

	h := make([]float64, taps)
	var sum float64
	for i := range h {
		d := float64(i - m)
		w := 0.54 + 0.46*math.Cos(math.Pi*d/float64(m+1))
		h[i] = 2 * fc * sinc(2*fc*d) * w
		sum += h[i]
	}
	for i := range h {
		h[i] /= sum
	}
	return h
}

// Bandpass designs a linear-phase FIR band-pass filter for the band
// [low, high] Hz as the difference of two low-pass kernels. The kernel has
// odd length; if taps <= 0 a length is chosen from the lower band edge.
func Bandpass(low, high, rate float64, taps int) []float64 {
	taps = normalizeTaps(taps, low, rate)
	hi := Lowpass(high, rate, taps)
	lo := Lowpass(low, rate, taps)
	h := make([]float64, taps)
	for i := range h {
		h[i] = hi[i] - lo[i]
	}
	return h
}

// ZeroPhase filters x with a symmetric odd-length kernel and compensates the
// group delay, yielding a zero-phase result of the same length as x. The
// signal is reflected at both boundaries.
func ZeroPhase(x, kernel []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	m := (len(kernel) - 1) / 2

	xp := reflectPad(x, m)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		var acc float64
		for j, h := range kernel {
			acc += h * xp[i+j]
		}
		y[i] = acc
	}
	return y
}

// reflectPad returns x padded with m reflected samples on each side. The edge
// sample is not repeated (x[1] mirrors to the left of x[0]).
func reflectPad(x []float64, m int) []float64 {
	n := len(x)
	xp := make([]float64, n+2*m)
	for i := range xp {
		xp[i] = x[reflectIndex(i-m, n)]
	}
	return xp
}

func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func normalizeTaps(taps int, edge, rate float64) int {
	if taps <= 0 {
		// Roughly four periods of the band edge; enough rolloff for
		// artifact-band filtering without excessive kernel cost.
		taps = int(4 * rate / edge)
		if taps < 31 {
			taps = 31
		}
		if taps > 2001 {
			taps = 2001
		}
	}
	if taps%2 == 0 {
		taps++
	}
	return taps
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}
