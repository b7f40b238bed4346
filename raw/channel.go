// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package raw

// ChannelType identifies what a channel measures. The set is closed;
// algorithms switch exhaustively on it rather than inspecting names.
type ChannelType int

const (
	// Misc is a catch-all for auxiliary channels (body position, events
	// encoded as samples, etc). Misc channels are excluded from artifact
	// statistics and interpolation.
	Misc ChannelType = iota
	// EEG is an electroencephalography channel.
	EEG
	// MEG is a magnetoencephalography channel.
	MEG
	// NIRSOD is a near-infrared spectroscopy optical density channel.
	NIRSOD
	// NIRSHbO is an oxygenated hemoglobin concentration channel.
	NIRSHbO
	// NIRSHbR is a deoxygenated hemoglobin concentration channel.
	NIRSHbR
	// Stim is a stimulus/trigger channel.
	Stim
)

// String returns the conventional short name for the channel type.
func (t ChannelType) String() string {
	switch t {
	case EEG:
		return "eeg"
	case MEG:
		return "meg"
	case NIRSOD:
		return "fnirs_od"
	case NIRSHbO:
		return "hbo"
	case NIRSHbR:
		return "hbr"
	case Stim:
		return "stim"
	default:
		return "misc"
	}
}

// IsData reports whether the channel type carries physiological signal, as
// opposed to stimulus or auxiliary data.
func (t ChannelType) IsData() bool {
	switch t {
	case EEG, MEG, NIRSOD, NIRSHbO, NIRSHbR:
		return true
	case Stim, Misc:
		return false
	default:
		return false
	}
}

// Channel describes a single channel of a recording.
type Channel struct {
	Name   string      // Unique within a recording (e.g. "EEG Fpz-Cz")
	Type   ChannelType // What the channel measures
	Unit   string      // Physical unit of the samples (e.g. "uV")
	Pos    [3]float64  // Sensor position in meters, head coordinates
	HasPos bool        // Whether Pos is defined
	Bad    bool        // Marked unusable by the user or an upstream check
}
