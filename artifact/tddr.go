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
	"fmt"
	"math"

	"github.com/OpenPSG/sigproc/raw"
)

// TDDRConfig parameterizes temporal derivative distribution repair.
type TDDRConfig struct {
	// SpreadMultiplier: derivative samples exceeding this multiple of the
	// robust spread (scaled MAD) are treated as artifact steps.
	SpreadMultiplier float64
}

// DefaultTDDRConfig returns the recommended repair parameters.
func DefaultTDDRConfig() TDDRConfig {
	return TDDRConfig{SpreadMultiplier: 5}
}

// RepairTDDR suppresses step-like motion artifacts in every data channel,
// in place. The channel's first differences are compared against their robust
// spread; outlier steps are clipped to one spread and the signal is rebuilt
// by cumulative summation from the original first sample. Non-spike regions
// are reproduced exactly up to floating-point rounding, and no discontinuity
// is introduced at spike boundaries.
//
// The method assumes artifacts manifest as step-like jumps, typical of
// optical-sensor motion; it is not a general denoiser.
func RepairTDDR(r *raw.Raw, cfg TDDRConfig) error {
	if cfg.SpreadMultiplier <= 1 {
		return fmt.Errorf("spread multiplier %v must be greater than 1", cfg.SpreadMultiplier)
	}
	data, err := r.Data()
	if err != nil {
		return err
	}
	for i, ch := range r.Channels {
		if ch.Type.IsData() {
			repairChannel(data[i], cfg.SpreadMultiplier)
		}
	}
	return nil
}

func repairChannel(x []float64, multiplier float64) {
	if len(x) < 3 {
		return
	}
	diff := make([]float64, len(x)-1)
	for i := range diff {
		diff[i] = x[i+1] - x[i]
	}

	spread := madScale * mad(diff)
	if spread == 0 {
		return
	}
	threshold := multiplier * spread

	// Clip artifact steps to the estimated non-artifact spread and
	// reconstruct. Untouched steps accumulate back to the original samples.
	acc := x[0]
	for i, d := range diff {
		if math.Abs(d) > threshold {
			if d > 0 {
				d = spread
			} else {
				d = -spread
			}
		}
		acc += d
		x[i+1] = acc
	}
}
