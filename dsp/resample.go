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

// resampleLobes is the number of sinc zero crossings kept on each side of
// the interpolation kernel.
const resampleLobes = 16

// resampleCutoff returns the anti-alias cutoff in cycles per input sample.
func resampleCutoff(from, to float64) float64 {
	r := to / from
	if r > 1 {
		r = 1
	}
	return 0.45 * r
}

// ResampledLen returns the number of output samples produced by resampling n
// samples from rate `from` to rate `to`.
func ResampledLen(n int, from, to float64) int {
	return int(math.Round(float64(n) * to / from))
}

// ResampleSupport returns the half-width, in input samples, of the
// interpolation kernel used by Resample. Lazy slicing uses it to size the
// surrounding context that must be read around a requested window.
func ResampleSupport(from, to float64) int {
	w := resampleCutoff(from, to)
	return int(math.Ceil(resampleLobes / (2 * w)))
}

// Resample converts x from sampling rate `from` to rate `to` using
// band-limited windowed-sinc interpolation with a low-pass cutoff just below
// min(from, to)/2. The signal is reflected at the boundaries. Output sample m
// corresponds to time m/to, so annotations rescale exactly by to/from.
func Resample(x []float64, from, to float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	if from == to {
		out := make([]float64, n)
		copy(out, x)
		return out
	}
	return ResampleWindow(x, from, to, 0, 0, ResampledLen(n, from, to))
}

// ResampleWindow evaluates output samples of the full resampled signal from a
// window of its input. x holds input samples at global indices
// [start, start+len(x)); the result holds output samples at global indices
// [outStart, outStart+outN), where output sample m sits at input position
// m*from/to. Outputs therefore land on the same grid as Resample applied to
// the whole signal, for any rate ratio. Kernel taps falling outside the
// window reflect at the window edges, so callers must pad the window by
// ResampleSupport input samples beyond the span whose outputs they keep.
func ResampleWindow(x []float64, from, to float64, start, outStart, outN int) []float64 {
	n := len(x)
	if n == 0 || outN <= 0 {
		return nil
	}
	if from == to {
		out := make([]float64, outN)
		for m := range out {
			out[m] = x[reflectIndex(outStart+m-start, n)]
		}
		return out
	}

	w := resampleCutoff(from, to)
	half := float64(ResampleSupport(from, to))

	y := make([]float64, outN)
	for m := 0; m < outN; m++ {
		c := float64(outStart+m)*from/to - float64(start)
		lo := int(math.Ceil(c - half))
		hi := int(math.Floor(c + half))

		var acc, wsum float64
		for k := lo; k <= hi; k++ {
			d := float64(k) - c
			wgt := 2 * w * sinc(2*w*d) * (0.54 + 0.46*math.Cos(math.Pi*d/(half+1)))
			acc += wgt * x[reflectIndex(k, n)]
			wsum += wgt
		}
		// Normalizing by the kernel sum keeps unit DC gain for any
		// fractional rate ratio.
		if wsum != 0 {
			y[m] = acc / wsum
		}
	}
	return y
}
