// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package artifact detects and repairs motion and muscle artifacts in
// materialized recordings. Detection annotates; it never mutates sample
// data. Repair mutates channels in place.
package artifact

import (
	"fmt"
	"math"

	"github.com/OpenPSG/sigproc/dsp"
	"github.com/OpenPSG/sigproc/raw"
)

// MuscleDescription is the annotation label produced by AnnotateMuscle.
const MuscleDescription = "muscle artifact"

// MuscleConfig parameterizes muscle-artifact annotation.
type MuscleConfig struct {
	// FreqBand is the band dominated by muscle activity, in Hz. The upper
	// edge is clamped below the recording's Nyquist frequency.
	FreqBand [2]float64

	// ZThreshold is the combined z-score above which a sample is considered
	// artifactual.
	ZThreshold float64

	// MinDurationSeconds drops over-threshold runs shorter than this.
	MinDurationSeconds float64

	// MinGapSeconds merges accepted runs separated by less than this.
	MinGapSeconds float64

	// EnvelopeCutoff is the low-pass cutoff in Hz used to smooth the
	// rectified band-limited signal into a power envelope. Specifying it as
	// a frequency keeps the smoothing time constant independent of the
	// sampling rate.
	EnvelopeCutoff float64

	// Robust selects median/MAD scoring instead of mean/standard deviation.
	Robust bool

	// MinChannels is the minimum number of good data channels required for
	// a meaningful combined score.
	MinChannels int
}

// DefaultMuscleConfig returns the recommended annotation parameters.
func DefaultMuscleConfig() MuscleConfig {
	return MuscleConfig{
		FreqBand:           [2]float64{30, 110},
		ZThreshold:         4,
		MinDurationSeconds: 0.2,
		MinGapSeconds:      0.1,
		EnvelopeCutoff:     4,
		Robust:             true,
		MinChannels:        2,
	}
}

// AnnotateMuscle scans the recording for intervals of broadband
// high-frequency activity typical of muscle contraction. Each good data
// channel is band-pass filtered, rectified and smoothed into a power
// envelope, z-scored against its own statistics, and the per-channel scores
// are averaged into a single scalar trace which is thresholded.
//
// The resulting annotations are appended to the recording and returned.
// Sample data is never modified. Channels flagged bad and non-data channels
// are excluded; if fewer than MinChannels remain the call fails with
// raw.ErrInsufficientChannels.
func AnnotateMuscle(r *raw.Raw, cfg MuscleConfig) ([]raw.Annotation, error) {
	if err := validateMuscleConfig(cfg, r.Rate); err != nil {
		return nil, err
	}

	var good []int
	for i, ch := range r.Channels {
		if ch.Type.IsData() && !ch.Bad {
			good = append(good, i)
		}
	}
	minCh := cfg.MinChannels
	if minCh < 1 {
		minCh = 1
	}
	if len(good) < minCh {
		return nil, fmt.Errorf("%w: %d good data channels, need %d", raw.ErrInsufficientChannels, len(good), minCh)
	}

	data, err := r.Data()
	if err != nil {
		return nil, err
	}
	n := r.NSamples
	if n == 0 {
		return nil, nil
	}

	high := cfg.FreqBand[1]
	if nyq := 0.45 * r.Rate; high > nyq {
		high = nyq
	}
	band := dsp.Bandpass(cfg.FreqBand[0], high, r.Rate, 0)
	smooth := dsp.Lowpass(cfg.EnvelopeCutoff, r.Rate, 0)

	score := make([]float64, n)
	scored := 0
	for _, i := range good {
		filtered := dsp.ZeroPhase(data[i], band)
		for j, v := range filtered {
			filtered[j] = math.Abs(v)
		}
		env := dsp.ZeroPhase(filtered, smooth)

		var center, spread float64
		if cfg.Robust {
			center = median(env)
			spread = madScale * mad(env)
		} else {
			center, spread = meanStd(env)
		}
		if spread == 0 {
			// Flat envelope carries no information.
			continue
		}
		for j, v := range env {
			score[j] += (v - center) / spread
		}
		scored++
	}
	if scored < minCh {
		return nil, fmt.Errorf("%w: %d channels with usable envelope statistics, need %d", raw.ErrInsufficientChannels, scored, minCh)
	}
	for j := range score {
		score[j] /= float64(scored)
	}

	anns := thresholdRuns(score, cfg, r.Rate)
	r.Annotate(anns...)
	return anns, nil
}

// thresholdRuns converts the scalar score trace into annotations: contiguous
// over-threshold runs, minus runs shorter than the minimum duration, with
// runs closer than the minimum gap merged.
func thresholdRuns(score []float64, cfg MuscleConfig, rate float64) []raw.Annotation {
	minDur := int(math.Round(cfg.MinDurationSeconds * rate))
	minGap := int(math.Round(cfg.MinGapSeconds * rate))

	type run struct{ start, end int }
	var runs []run
	start := -1
	for i, v := range score {
		switch {
		case v >= cfg.ZThreshold && start < 0:
			start = i
		case v < cfg.ZThreshold && start >= 0:
			runs = append(runs, run{start, i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, run{start, len(score)})
	}

	var kept []run
	for _, u := range runs {
		if u.end-u.start < minDur {
			continue
		}
		if len(kept) > 0 && u.start-kept[len(kept)-1].end <= minGap {
			kept[len(kept)-1].end = u.end
			continue
		}
		kept = append(kept, u)
	}

	anns := make([]raw.Annotation, 0, len(kept))
	for _, u := range kept {
		anns = append(anns, raw.Annotation{
			Onset:       float64(u.start),
			Duration:    float64(u.end - u.start),
			Description: MuscleDescription,
		})
	}
	return anns
}

func validateMuscleConfig(cfg MuscleConfig, rate float64) error {
	low, high := cfg.FreqBand[0], cfg.FreqBand[1]
	if low <= 0 || high <= low {
		return fmt.Errorf("invalid frequency band [%v, %v]", low, high)
	}
	if low >= 0.45*rate {
		return fmt.Errorf("band edge %v Hz is at or above the usable range for rate %v Hz", low, rate)
	}
	if cfg.ZThreshold <= 0 {
		return fmt.Errorf("non-positive z threshold %v", cfg.ZThreshold)
	}
	if cfg.MinDurationSeconds < 0 || cfg.MinGapSeconds < 0 {
		return fmt.Errorf("negative duration parameters")
	}
	if cfg.EnvelopeCutoff <= 0 {
		return fmt.Errorf("non-positive envelope cutoff %v", cfg.EnvelopeCutoff)
	}
	return nil
}
