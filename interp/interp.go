// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package interp reconstructs bad NIRS channels from spatially neighboring
// good channels of the same optical or hemoglobin type.
package interp

import (
	"fmt"
	"math"

	"github.com/OpenPSG/sigproc/raw"
)

// Config parameterizes bad-channel interpolation.
type Config struct {
	// MaxNeighborDistance is the neighbor search radius in meters.
	MaxNeighborDistance float64

	// Power is the inverse-distance weighting exponent. Neighbors at equal
	// distance receive equal weight for any exponent.
	Power float64
}

// DefaultConfig returns the recommended interpolation parameters. The 6 cm
// radius covers adjacent optodes at typical 3 cm source-detector spacing.
func DefaultConfig() Config {
	return Config{
		MaxNeighborDistance: 0.06,
		Power:               2,
	}
}

// Provenance records which neighbors a channel was reconstructed from, for
// auditability.
type Provenance struct {
	Channel   string
	Neighbors []string
	Weights   []float64
}

// Interpolate replaces every bad NIRS channel with an inverse-distance
// weighted combination of good channels of the same type within the
// configured radius, clears their bad flags, and returns provenance records.
//
// Atomic: replacements for all bad channels are computed before any sample
// or flag is written, so a channel without usable neighbors fails the whole
// call with raw.ErrNoNeighbors and leaves the recording unchanged. Bad
// channels of non-NIRS types are left untouched.
func Interpolate(r *raw.Raw, cfg Config) ([]Provenance, error) {
	if cfg.MaxNeighborDistance <= 0 {
		return nil, fmt.Errorf("non-positive neighbor radius %v", cfg.MaxNeighborDistance)
	}
	if cfg.Power <= 0 {
		return nil, fmt.Errorf("non-positive distance power %v", cfg.Power)
	}

	var targets []int
	for i, ch := range r.Channels {
		if !ch.Bad {
			continue
		}
		switch ch.Type {
		case raw.NIRSOD, raw.NIRSHbO, raw.NIRSHbR:
			targets = append(targets, i)
		case raw.EEG, raw.MEG, raw.Stim, raw.Misc:
			// Not an optical channel; out of this interpolator's remit.
		}
	}
	if len(targets) == 0 {
		return nil, nil
	}

	data, err := r.Data()
	if err != nil {
		return nil, err
	}

	type plan struct {
		target  int
		samples []float64
		prov    Provenance
	}
	plans := make([]plan, 0, len(targets))
	for _, t := range targets {
		target := r.Channels[t]
		if !target.HasPos {
			return nil, fmt.Errorf("%w: channel %q has no position", raw.ErrNoNeighbors, target.Name)
		}

		var idx []int
		var dist []float64
		for j, ch := range r.Channels {
			if j == t || ch.Bad || ch.Type != target.Type || !ch.HasPos {
				continue
			}
			if d := distance(target.Pos, ch.Pos); d <= cfg.MaxNeighborDistance {
				idx = append(idx, j)
				dist = append(dist, d)
			}
		}
		if len(idx) == 0 {
			return nil, fmt.Errorf("%w: channel %q within %v m", raw.ErrNoNeighbors, target.Name, cfg.MaxNeighborDistance)
		}

		weights := neighborWeights(dist, cfg.Power)
		samples := make([]float64, r.NSamples)
		names := make([]string, len(idx))
		for k, j := range idx {
			names[k] = r.Channels[j].Name
			w := weights[k]
			for s, v := range data[j] {
				samples[s] += w * v
			}
		}
		plans = append(plans, plan{
			target:  t,
			samples: samples,
			prov:    Provenance{Channel: target.Name, Neighbors: names, Weights: weights},
		})
	}

	// All targets resolved; apply.
	provs := make([]Provenance, 0, len(plans))
	for _, p := range plans {
		copy(data[p.target], p.samples)
		r.Channels[p.target].Bad = false
		provs = append(provs, p.prov)
	}
	return provs, nil
}

// neighborWeights converts distances into normalized inverse-distance
// weights. Co-located neighbors (distance ~0) take the full weight, split
// equally among themselves.
func neighborWeights(dist []float64, power float64) []float64 {
	const eps = 1e-9

	weights := make([]float64, len(dist))
	var zero int
	for _, d := range dist {
		if d < eps {
			zero++
		}
	}
	if zero > 0 {
		for i, d := range dist {
			if d < eps {
				weights[i] = 1 / float64(zero)
			}
		}
		return weights
	}

	var sum float64
	for i, d := range dist {
		weights[i] = 1 / math.Pow(d, power)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

func distance(a, b [3]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
