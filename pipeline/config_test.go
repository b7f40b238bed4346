// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pipeline_test

import (
	"strings"
	"testing"

	"github.com/OpenPSG/sigproc/pipeline"
	"github.com/OpenPSG/sigproc/raw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := pipeline.ParseConfig(strings.NewReader(""))
	require.NoError(t, err)

	assert.True(t, cfg.Muscle.Enabled)
	assert.Equal(t, 4.0, cfg.Muscle.ZThreshold)
	assert.Equal(t, []float64{30, 110}, cfg.Muscle.FreqBand)
	assert.True(t, cfg.Repair.Enabled)
	assert.Equal(t, 5.0, cfg.Repair.SpreadMultiplier)
	assert.False(t, cfg.Resample.Enabled)
}

func TestParseConfigOverrides(t *testing.T) {
	doc := `
resample:
  enabled: true
  target_rate: 100
muscle_annotate:
  z_threshold: 3
  min_duration_seconds: 0.5
interpolate:
  max_neighbor_distance: 0.04
`
	cfg, err := pipeline.ParseConfig(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 100.0, cfg.Resample.TargetRate)
	assert.Equal(t, 3.0, cfg.Muscle.ZThreshold)
	assert.Equal(t, 0.5, cfg.Muscle.MinDurationSeconds)
	assert.Equal(t, 0.04, cfg.Interpolate.MaxNeighborDistance)

	// Untouched keys keep their defaults.
	assert.Equal(t, []float64{30, 110}, cfg.Muscle.FreqBand)
}

func TestParseConfigUnknownOption(t *testing.T) {
	doc := `
muscle_annotate:
  z_thresh: 3
`
	_, err := pipeline.ParseConfig(strings.NewReader(doc))
	require.ErrorIs(t, err, raw.ErrUnknownOption)
	assert.Contains(t, err.Error(), "z_thresh")
}

func TestParseConfigUnknownTopLevelOption(t *testing.T) {
	_, err := pipeline.ParseConfig(strings.NewReader("resmaple:\n  enabled: true\n"))
	require.ErrorIs(t, err, raw.ErrUnknownOption)
}

func TestParseConfigValidation(t *testing.T) {
	for name, doc := range map[string]string{
		"resample without rate":  "resample:\n  enabled: true\n",
		"negative threshold":     "muscle_annotate:\n  z_threshold: -1\n",
		"descending band":        "muscle_annotate:\n  freq_band: [110, 30]\n",
		"band wrong length":      "muscle_annotate:\n  freq_band: [30]\n",
		"zero spread multiplier": "temporal_derivative_repair:\n  spread_multiplier: 0.5\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := pipeline.ParseConfig(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}
