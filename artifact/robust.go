// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package artifact

import (
	"math"
	"sort"
)

// madScale makes the median absolute deviation a consistent estimator of the
// standard deviation for normally distributed data.
const madScale = 1.4826

func median(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// mad returns the raw median absolute deviation of x. Multiply by madScale
// for a robust standard-deviation estimate.
func mad(x []float64) float64 {
	med := median(x)
	dev := make([]float64, len(x))
	for i, v := range x {
		dev[i] = math.Abs(v - med)
	}
	return median(dev)
}

func meanStd(x []float64) (mean, std float64) {
	if len(x) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean = sum / float64(len(x))
	var sq float64
	for _, v := range x {
		d := v - mean
		sq += d * d
	}
	if len(x) > 1 {
		std = math.Sqrt(sq / float64(len(x)-1))
	}
	return mean, std
}
