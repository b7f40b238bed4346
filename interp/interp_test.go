// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package interp_test

import (
	"math"
	"testing"

	"github.com/OpenPSG/sigproc/interp"
	"github.com/OpenPSG/sigproc/raw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleRecording builds three good HbO channels at the vertices of an
// equilateral triangle and one bad HbO channel at its centroid, which is
// equidistant from all three vertices.
func triangleRecording(t *testing.T) *raw.Raw {
	t.Helper()

	const side = 0.02
	vertices := [][3]float64{
		{0, 0, 0},
		{side, 0, 0},
		{side / 2, side * math.Sqrt(3) / 2, 0},
	}
	centroid := [3]float64{side / 2, side * math.Sqrt(3) / 6, 0}

	channels := []raw.Channel{
		{Name: "HbO 1", Type: raw.NIRSHbO, Pos: vertices[0], HasPos: true},
		{Name: "HbO 2", Type: raw.NIRSHbO, Pos: vertices[1], HasPos: true},
		{Name: "HbO 3", Type: raw.NIRSHbO, Pos: vertices[2], HasPos: true},
		{Name: "HbO 4", Type: raw.NIRSHbO, Pos: centroid, HasPos: true, Bad: true},
	}

	n := 500
	data := make([][]float64, 4)
	for i := range data {
		row := make([]float64, n)
		for j := range row {
			tt := float64(j) / 10
			row[j] = math.Sin(2*math.Pi*0.1*tt+float64(i)) + float64(i)
		}
		data[i] = row
	}

	rec, err := raw.New(channels, 10, data)
	require.NoError(t, err)
	return rec
}

func TestInterpolateEquidistantAverage(t *testing.T) {
	rec := triangleRecording(t)

	provs, err := interp.Interpolate(rec, interp.DefaultConfig())
	require.NoError(t, err)

	require.Len(t, provs, 1)
	assert.Equal(t, "HbO 4", provs[0].Channel)
	assert.ElementsMatch(t, []string{"HbO 1", "HbO 2", "HbO 3"}, provs[0].Neighbors)
	for _, w := range provs[0].Weights {
		assert.InDelta(t, 1.0/3, w, 1e-12)
	}

	// Equidistant neighbors interpolate to the plain average.
	data, err := rec.Data()
	require.NoError(t, err)
	for j := range data[3] {
		want := (data[0][j] + data[1][j] + data[2][j]) / 3
		require.InDelta(t, want, data[3][j], 1e-12)
	}

	// The bad flag was cleared.
	assert.Empty(t, rec.BadChannels())
}

func TestInterpolateAllBadFails(t *testing.T) {
	rec := triangleRecording(t)
	require.NoError(t, rec.SetBad("HbO 1", "HbO 2", "HbO 3"))

	before, err := rec.Slice(0, rec.NSamples)
	require.NoError(t, err)

	_, err = interp.Interpolate(rec, interp.DefaultConfig())
	require.ErrorIs(t, err, raw.ErrNoNeighbors)

	// No mutation: bad set and samples are unchanged.
	assert.ElementsMatch(t, []string{"HbO 1", "HbO 2", "HbO 3", "HbO 4"}, rec.BadChannels())
	after, err := rec.Slice(0, rec.NSamples)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestInterpolateRespectsRadius(t *testing.T) {
	rec := triangleRecording(t)

	cfg := interp.DefaultConfig()
	cfg.MaxNeighborDistance = 0.001 // tighter than the optode spacing
	_, err := interp.Interpolate(rec, cfg)
	require.ErrorIs(t, err, raw.ErrNoNeighbors)
	assert.Equal(t, []string{"HbO 4"}, rec.BadChannels())
}

func TestInterpolateDoesNotMixTypes(t *testing.T) {
	// A bad HbO channel surrounded only by HbR channels has no usable
	// neighbors even though they are well inside the radius.
	channels := []raw.Channel{
		{Name: "HbO 1", Type: raw.NIRSHbO, Pos: [3]float64{0.01, 0, 0}, HasPos: true, Bad: true},
		{Name: "HbR 1", Type: raw.NIRSHbR, Pos: [3]float64{0, 0, 0}, HasPos: true},
		{Name: "HbR 2", Type: raw.NIRSHbR, Pos: [3]float64{0.02, 0, 0}, HasPos: true},
	}
	data := [][]float64{{1, 1}, {2, 2}, {3, 3}}
	rec, err := raw.New(channels, 10, data)
	require.NoError(t, err)

	_, err = interp.Interpolate(rec, interp.DefaultConfig())
	require.ErrorIs(t, err, raw.ErrNoNeighbors)
}

func TestInterpolateInverseDistanceWeighting(t *testing.T) {
	// Two neighbors at 1 cm and 2 cm: with power 2 the close neighbor gets
	// 4x the weight.
	channels := []raw.Channel{
		{Name: "OD 1", Type: raw.NIRSOD, Pos: [3]float64{0, 0, 0}, HasPos: true, Bad: true},
		{Name: "OD 2", Type: raw.NIRSOD, Pos: [3]float64{0.01, 0, 0}, HasPos: true},
		{Name: "OD 3", Type: raw.NIRSOD, Pos: [3]float64{0, 0.02, 0}, HasPos: true},
	}
	data := [][]float64{{0}, {10}, {20}}
	rec, err := raw.New(channels, 10, data)
	require.NoError(t, err)

	provs, err := interp.Interpolate(rec, interp.DefaultConfig())
	require.NoError(t, err)

	require.Len(t, provs, 1)
	values, err := rec.Data()
	require.NoError(t, err)
	// (0.8 * 10) + (0.2 * 20) = 12
	assert.InDelta(t, 12.0, values[0][0], 1e-12)
}

func TestInterpolateIgnoresNonNIRSBads(t *testing.T) {
	channels := []raw.Channel{
		{Name: "EEG A", Type: raw.EEG, Bad: true},
		{Name: "HbO 1", Type: raw.NIRSHbO, Pos: [3]float64{0, 0, 0}, HasPos: true},
	}
	data := [][]float64{{1, 2}, {3, 4}}
	rec, err := raw.New(channels, 10, data)
	require.NoError(t, err)

	provs, err := interp.Interpolate(rec, interp.DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, provs)
	assert.Equal(t, []string{"EEG A"}, rec.BadChannels())
}
