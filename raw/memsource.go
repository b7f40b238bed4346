// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package raw

import "fmt"

// MemSource is a Source backed by an in-memory matrix. It is useful for
// synthetic recordings in tests and for adapting data that is already
// resident in memory to the lazy recording model.
type MemSource struct {
	info SourceInfo
	data [][]float64

	// Reads counts ReadRange calls per channel index. Tests use it to assert
	// that unselected channels are never read.
	Reads []int
}

// NewMemSource creates a MemSource over the given channel x sample matrix.
// The matrix is not copied.
func NewMemSource(channels []Channel, rate float64, data [][]float64) (*MemSource, error) {
	if len(channels) != len(data) {
		return nil, fmt.Errorf("channel count %d does not match matrix rows %d", len(channels), len(data))
	}
	n := 0
	if len(data) > 0 {
		n = len(data[0])
	}
	for i, row := range data {
		if len(row) != n {
			return nil, fmt.Errorf("channel %d has %d samples, expected %d", i, len(row), n)
		}
	}
	return &MemSource{
		info: SourceInfo{
			Channels: channels,
			Rate:     rate,
			NSamples: n,
		},
		data:  data,
		Reads: make([]int, len(channels)),
	}, nil
}

// Info returns the source's channel metadata and shape.
func (s *MemSource) Info() (SourceInfo, error) {
	return s.info, nil
}

// ReadRange returns a copy of samples [start, end) of the given channel.
func (s *MemSource) ReadRange(channel, start, end int) ([]float64, error) {
	if channel < 0 || channel >= len(s.data) {
		return nil, fmt.Errorf("%w: channel index %d of %d", ErrOutOfRange, channel, len(s.data))
	}
	if start < 0 || end > s.info.NSamples || start > end {
		return nil, fmt.Errorf("%w: samples [%d, %d) of %d", ErrOutOfRange, start, end, s.info.NSamples)
	}
	s.Reads[channel]++
	out := make([]float64, end-start)
	copy(out, s.data[channel][start:end])
	return out, nil
}
