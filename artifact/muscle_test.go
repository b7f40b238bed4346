// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package artifact_test

import (
	"math/rand"
	"testing"

	"github.com/OpenPSG/sigproc/artifact"
	"github.com/OpenPSG/sigproc/raw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// burstRecording builds a 10-channel 1 kHz 10 s recording of unit white
// noise, with extra broadband noise of the given amplitude injected between
// seconds 3 and 4 on every channel.
func burstRecording(t *testing.T, burstAmplitude float64) *raw.Raw {
	t.Helper()

	const (
		rate = 1000.0
		n    = 10000
		nch  = 10
	)
	rng := rand.New(rand.NewSource(42))

	channels := make([]raw.Channel, nch)
	data := make([][]float64, nch)
	for i := range channels {
		channels[i] = raw.Channel{Name: "EEG " + string(rune('A'+i)), Type: raw.EEG, Unit: "uV"}
		row := make([]float64, n)
		for j := range row {
			row[j] = rng.NormFloat64()
			if j >= 3000 && j < 4000 {
				row[j] += burstAmplitude * rng.NormFloat64()
			}
		}
		data[i] = row
	}

	rec, err := raw.New(channels, rate, data)
	require.NoError(t, err)
	return rec
}

func TestAnnotateMuscleDetectsBurst(t *testing.T) {
	rec := burstRecording(t, 5)

	anns, err := artifact.AnnotateMuscle(rec, artifact.DefaultMuscleConfig())
	require.NoError(t, err)

	require.Len(t, anns, 1)
	assert.Equal(t, artifact.MuscleDescription, anns[0].Description)
	assert.InDelta(t, 3.0, anns[0].OnsetSeconds(rec.Rate), 0.3)
	assert.InDelta(t, 1.0, anns[0].DurationSeconds(rec.Rate), 0.4)

	// The annotation was attached to the recording.
	require.Len(t, rec.Annotations, 1)
}

func TestAnnotateMuscleQuietBurst(t *testing.T) {
	rec := burstRecording(t, 1)

	anns, err := artifact.AnnotateMuscle(rec, artifact.DefaultMuscleConfig())
	require.NoError(t, err)
	assert.Empty(t, anns)
	assert.Empty(t, rec.Annotations)
}

func TestAnnotateMuscleDoesNotMutateSamples(t *testing.T) {
	rec := burstRecording(t, 5)
	data, err := rec.Data()
	require.NoError(t, err)
	before := append([]float64(nil), data[0]...)

	_, err = artifact.AnnotateMuscle(rec, artifact.DefaultMuscleConfig())
	require.NoError(t, err)

	after, err := rec.Data()
	require.NoError(t, err)
	assert.Equal(t, before, after[0])
}

func TestAnnotateMuscleExcludesBadChannels(t *testing.T) {
	rec := burstRecording(t, 5)
	require.NoError(t, rec.SetBad("EEG A", "EEG B"))

	anns, err := artifact.AnnotateMuscle(rec, artifact.DefaultMuscleConfig())
	require.NoError(t, err)
	require.Len(t, anns, 1)
}

func TestAnnotateMuscleInsufficientChannels(t *testing.T) {
	rec := burstRecording(t, 5)
	names := rec.ChannelNames()
	require.NoError(t, rec.SetBad(names[:len(names)-1]...))

	_, err := artifact.AnnotateMuscle(rec, artifact.DefaultMuscleConfig())
	require.ErrorIs(t, err, raw.ErrInsufficientChannels)
	assert.Empty(t, rec.Annotations)
}

func TestAnnotateMuscleMeanStdScoring(t *testing.T) {
	rec := burstRecording(t, 5)

	// Mean/std statistics are inflated by the burst itself (unlike
	// median/MAD), so the usable threshold is lower.
	cfg := artifact.DefaultMuscleConfig()
	cfg.Robust = false
	cfg.ZThreshold = 2.5
	anns, err := artifact.AnnotateMuscle(rec, cfg)
	require.NoError(t, err)

	require.Len(t, anns, 1)
	assert.InDelta(t, 3.0, anns[0].OnsetSeconds(rec.Rate), 0.3)
}

func TestAnnotateMuscleInvalidBand(t *testing.T) {
	rec := burstRecording(t, 5)

	cfg := artifact.DefaultMuscleConfig()
	cfg.FreqBand = [2]float64{110, 30}
	_, err := artifact.AnnotateMuscle(rec, cfg)
	require.Error(t, err)
}

func TestAnnotateMuscleMergesNearbyRuns(t *testing.T) {
	const (
		rate = 500.0
		n    = 5000
		nch  = 4
	)
	rng := rand.New(rand.NewSource(7))

	channels := make([]raw.Channel, nch)
	data := make([][]float64, nch)
	for i := range channels {
		channels[i] = raw.Channel{Name: "EEG " + string(rune('A'+i)), Type: raw.EEG}
		row := make([]float64, n)
		for j := range row {
			row[j] = rng.NormFloat64()
			// Two bursts separated by a 30 ms lull, within the default
			// 100 ms merge gap.
			sec := float64(j) / rate
			if (sec >= 4 && sec < 5) || (sec >= 5.03 && sec < 6) {
				row[j] += 6 * rng.NormFloat64()
			}
		}
		data[i] = row
	}
	rec, err := raw.New(channels, rate, data)
	require.NoError(t, err)

	anns, err := artifact.AnnotateMuscle(rec, artifact.DefaultMuscleConfig())
	require.NoError(t, err)

	require.Len(t, anns, 1)
	assert.InDelta(t, 4.0, anns[0].OnsetSeconds(rec.Rate), 0.3)
	assert.InDelta(t, 2.0, anns[0].DurationSeconds(rec.Rate), 0.5)
}

func TestAnnotateMuscleStimChannelIgnored(t *testing.T) {
	channels := []raw.Channel{
		{Name: "EEG A", Type: raw.EEG},
		{Name: "EEG B", Type: raw.EEG},
		{Name: "Marker", Type: raw.Stim},
	}
	rng := rand.New(rand.NewSource(3))
	data := make([][]float64, 3)
	for i := range data {
		row := make([]float64, 4000)
		for j := range row {
			row[j] = rng.NormFloat64()
		}
		data[i] = row
	}
	// A stim channel full of huge square pulses must not trigger anything.
	for j := range data[2] {
		if j%500 < 250 {
			data[2][j] = 1e6
		}
	}
	rec, err := raw.New(channels, 400, data)
	require.NoError(t, err)

	anns, err := artifact.AnnotateMuscle(rec, artifact.DefaultMuscleConfig())
	require.NoError(t, err)
	assert.Empty(t, anns)

	// With only stim channels left, statistics are impossible.
	require.NoError(t, rec.SetBad("EEG A", "EEG B"))
	_, err = artifact.AnnotateMuscle(rec, artifact.DefaultMuscleConfig())
	require.ErrorIs(t, err, raw.ErrInsufficientChannels)
}

func TestAnnotateMuscleHighEdgeClamped(t *testing.T) {
	// 200 Hz recording: the default 110 Hz upper edge exceeds Nyquist and
	// must be clamped rather than rejected.
	rng := rand.New(rand.NewSource(9))
	data := make([][]float64, 3)
	channels := make([]raw.Channel, 3)
	for i := range data {
		channels[i] = raw.Channel{Name: "EEG " + string(rune('A'+i)), Type: raw.EEG}
		row := make([]float64, 2000)
		for j := range row {
			row[j] = rng.NormFloat64()
		}
		data[i] = row
	}
	rec, err := raw.New(channels, 200, data)
	require.NoError(t, err)

	_, err = artifact.AnnotateMuscle(rec, artifact.DefaultMuscleConfig())
	require.NoError(t, err)
}
