// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package dsp_test

import (
	"math"
	"testing"

	"github.com/OpenPSG/sigproc/dsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, rate float64, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}
	return x
}

func addTo(dst, src []float64) {
	for i := range dst {
		dst[i] += src[i]
	}
}

// rms over the middle half of the signal, away from boundary effects.
func midRMS(x []float64) float64 {
	var sum float64
	lo, hi := len(x)/4, 3*len(x)/4
	for _, v := range x[lo:hi] {
		sum += v * v
	}
	return math.Sqrt(sum / float64(hi-lo))
}

func TestLowpassKeepsSlowComponent(t *testing.T) {
	const rate = 1000.0
	n := 4000

	x := sine(5, rate, n)
	addTo(x, sine(200, rate, n))

	y := dsp.ZeroPhase(x, dsp.Lowpass(30, rate, 0))

	// Compare against the 5 Hz component alone, away from the edges.
	want := sine(5, rate, n)
	for i := n / 4; i < 3*n/4; i++ {
		assert.InDelta(t, want[i], y[i], 0.05)
	}
}

func TestBandpassRejectsOutOfBand(t *testing.T) {
	const rate = 1000.0
	n := 4000

	low := sine(5, rate, n)
	mid := sine(60, rate, n)

	x := make([]float64, n)
	addTo(x, low)
	addTo(x, mid)

	y := dsp.ZeroPhase(x, dsp.Bandpass(30, 110, rate, 0))

	// The 60 Hz component survives, the 5 Hz component does not.
	inBand := dsp.ZeroPhase(mid, dsp.Bandpass(30, 110, rate, 0))
	require.InDelta(t, math.Sqrt(0.5), midRMS(inBand), 0.05)

	resid := make([]float64, n)
	for i := range resid {
		resid[i] = y[i] - inBand[i]
	}
	assert.Less(t, midRMS(resid), 0.05)
}

func TestZeroPhaseNoShift(t *testing.T) {
	const rate = 500.0
	x := sine(8, rate, 2000)

	y := dsp.ZeroPhase(x, dsp.Lowpass(50, rate, 101))

	// A passband signal comes through with no delay.
	for i := 500; i < 1500; i++ {
		assert.InDelta(t, x[i], y[i], 0.02)
	}
}

func TestResamplePreservesWaveform(t *testing.T) {
	const from, to = 1000.0, 250.0
	n := 5000

	x := sine(10, from, n)
	y := dsp.Resample(x, from, to)

	require.Len(t, y, dsp.ResampledLen(n, from, to))
	for m := len(y) / 4; m < 3*len(y)/4; m++ {
		want := math.Sin(2 * math.Pi * 10 * float64(m) / to)
		assert.InDelta(t, want, y[m], 0.02)
	}
}

func TestResampleUpThenLen(t *testing.T) {
	x := sine(3, 100, 1000)
	y := dsp.Resample(x, 100, 300)

	require.Len(t, y, 3000)
	for m := 1000; m < 2000; m++ {
		want := math.Sin(2 * math.Pi * 3 * float64(m) / 300)
		assert.InDelta(t, want, y[m], 0.02)
	}
}

func TestResampleSameRateIsCopy(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := dsp.Resample(x, 128, 128)

	require.Equal(t, x, y)
	y[0] = 99
	assert.Equal(t, 1.0, x[0])
}

func TestResampledLenRounds(t *testing.T) {
	assert.Equal(t, 5000, dsp.ResampledLen(10000, 1000, 500))
	assert.Equal(t, 333, dsp.ResampledLen(1000, 300, 100))
	assert.Equal(t, 1, dsp.ResampledLen(1, 100, 90))
}
