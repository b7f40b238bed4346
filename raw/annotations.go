// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package raw

import "sort"

// Annotation is a labeled time interval attached to a recording,
// independent of any particular channel.
//
// Onset and Duration are denominated in samples at the recording's current
// sampling rate, so resampling a recording rescales them exactly by the rate
// ratio and annotated intervals keep covering the same real-world time span.
// Use OnsetSeconds and DurationSeconds for display.
type Annotation struct {
	Onset       float64 // Start of the interval, in samples
	Duration    float64 // Length of the interval, in samples
	Description string  // Label, e.g. "muscle artifact"
}

// OnsetSeconds returns the annotation onset in seconds at the given rate.
func (a Annotation) OnsetSeconds(rate float64) float64 {
	return a.Onset / rate
}

// DurationSeconds returns the annotation duration in seconds at the given rate.
func (a Annotation) DurationSeconds(rate float64) float64 {
	return a.Duration / rate
}

// SortAnnotations orders annotations by onset, then duration. Annotations are
// a set; sorting is only for stable display and tests.
func SortAnnotations(anns []Annotation) {
	sort.Slice(anns, func(i, j int) bool {
		if anns[i].Onset != anns[j].Onset {
			return anns[i].Onset < anns[j].Onset
		}
		return anns[i].Duration < anns[j].Duration
	})
}

// rescaleAnnotations multiplies all onsets and durations by k. Called when
// the sampling rate changes by factor k.
func rescaleAnnotations(anns []Annotation, k float64) {
	for i := range anns {
		anns[i].Onset *= k
		anns[i].Duration *= k
	}
}
