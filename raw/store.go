// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package raw

import (
	"errors"
	"fmt"
	"math"

	"github.com/OpenPSG/sigproc/dsp"
)

// store is the two-state sample store: either lazy (a recipe for producing
// samples from a Source) or materialized (the dense matrix). Raw switches
// from lazyStore to memStore exactly once, at first materialization; every
// consumer goes through Raw methods that handle both states.
type store interface {
	materialized() bool

	// materialize produces the full channel x sample matrix. For a lazy
	// store this reads the picked channels from the source and replays the
	// pending resample chain; for a materialized store it returns the
	// matrix as-is.
	materialize() ([][]float64, error)

	// slice returns a copy of samples [start, end) per channel without
	// changing the store's state. Bounds are validated by the caller.
	slice(start, end int) ([][]float64, error)
}

// memStore holds the materialized matrix.
type memStore struct {
	data [][]float64
}

func (s *memStore) materialized() bool { return true }

func (s *memStore) materialize() ([][]float64, error) { return s.data, nil }

func (s *memStore) slice(start, end int) ([][]float64, error) {
	out := make([][]float64, len(s.data))
	for i, row := range s.data {
		out[i] = make([]float64, end-start)
		copy(out[i], row[start:end])
	}
	return out, nil
}

// lazyStore defers sample production. picks holds source channel indices in
// output order; chain holds pending resample target rates, applied in order
// after reading at the source rate.
type lazyStore struct {
	src     Source
	picks   []int
	srcRate float64
	srcN    int
	chain   []float64
}

func newLazyStore(src Source, info SourceInfo) *lazyStore {
	picks := make([]int, len(info.Channels))
	for i := range picks {
		picks[i] = i
	}
	return &lazyStore{
		src:     src,
		picks:   picks,
		srcRate: info.Rate,
		srcN:    info.NSamples,
	}
}

func (s *lazyStore) materialized() bool { return false }

// rate returns the store's effective sampling rate after pending resamples.
func (s *lazyStore) rate() float64 {
	if len(s.chain) == 0 {
		return s.srcRate
	}
	return s.chain[len(s.chain)-1]
}

// nsamples returns the sample count the materialized matrix will have.
func (s *lazyStore) nsamples() int {
	n, f := s.srcN, s.srcRate
	for _, t := range s.chain {
		n = dsp.ResampledLen(n, f, t)
		f = t
	}
	return n
}

// pick returns a derived store restricted to the given channel indices
// (relative to the current view). Pure metadata; no samples are read.
func (s *lazyStore) pick(idx []int) *lazyStore {
	picks := make([]int, len(idx))
	for i, j := range idx {
		picks[i] = s.picks[j]
	}
	return &lazyStore{
		src:     s.src,
		picks:   picks,
		srcRate: s.srcRate,
		srcN:    s.srcN,
		chain:   append([]float64(nil), s.chain...),
	}
}

// resample returns a derived store with the target rate appended to the
// pending chain.
func (s *lazyStore) resample(target float64) *lazyStore {
	chain := make([]float64, 0, len(s.chain)+1)
	chain = append(chain, s.chain...)
	chain = append(chain, target)
	return &lazyStore{
		src:     s.src,
		picks:   append([]int(nil), s.picks...),
		srcRate: s.srcRate,
		srcN:    s.srcN,
		chain:   chain,
	}
}

func (s *lazyStore) materialize() ([][]float64, error) {
	data := make([][]float64, len(s.picks))
	for i, p := range s.picks {
		x, err := s.readChannel(p, 0, s.srcN)
		if err != nil {
			return nil, err
		}
		f := s.srcRate
		for _, t := range s.chain {
			x = dsp.Resample(x, f, t)
			f = t
		}
		data[i] = x
	}
	return data, nil
}

func (s *lazyStore) slice(start, end int) ([][]float64, error) {
	if len(s.chain) == 0 {
		out := make([][]float64, len(s.picks))
		for i, p := range s.picks {
			x, err := s.readChannel(p, start, end)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	}

	// A pending resample needs surrounding context: the interpolation
	// kernel's support at every stage, converted to source samples.
	var margin float64
	f := s.srcRate
	for _, t := range s.chain {
		margin += float64(dsp.ResampleSupport(f, t)) / f
		f = t
	}
	ratio := s.rate() / s.srcRate
	srcMargin := int(math.Ceil(margin*s.srcRate)) + 2

	s0 := int(math.Floor(float64(start)/ratio)) - srcMargin
	s1 := int(math.Ceil(float64(end)/ratio)) + srcMargin
	if s0 < 0 {
		s0 = 0
	}
	if s1 > s.srcN {
		s1 = s.srcN
	}

	want := end - start
	out := make([][]float64, len(s.picks))
	for i, p := range s.picks {
		x, err := s.readChannel(p, s0, s1)
		if err != nil {
			return nil, err
		}
		// Every stage is evaluated on the global output grid, so the window
		// samples land on exactly the indices materialization produces, for
		// any rate ratio. a0 tracks the global index of x[0] per stage.
		a0 := s0
		g := s.srcRate
		for _, t := range s.chain {
			r := t / g
			m0 := int(math.Ceil(float64(a0) * r))
			m1 := int(math.Ceil(float64(a0+len(x)) * r))
			x = dsp.ResampleWindow(x, g, t, a0, m0, m1-m0)
			a0 = m0
			g = t
		}
		off := start - a0
		if off < 0 || off+want > len(x) {
			return nil, fmt.Errorf("%w: window [%d, %d) does not cover slice [%d, %d)", ErrSourceRead, s0, s1, start, end)
		}
		row := make([]float64, want)
		copy(row, x[off:off+want])
		out[i] = row
	}
	return out, nil
}

// readChannel reads [start, end) of a source channel and normalizes failures
// into the module's error taxonomy.
func (s *lazyStore) readChannel(channel, start, end int) ([]float64, error) {
	x, err := s.src.ReadRange(channel, start, end)
	if err != nil {
		if errors.Is(err, ErrSourceRead) || errors.Is(err, ErrOutOfRange) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: channel %d samples [%d, %d): %v", ErrSourceRead, channel, start, end, err)
	}
	if len(x) != end-start {
		return nil, fmt.Errorf("%w: channel %d returned %d samples, want %d", ErrSourceRead, channel, len(x), end-start)
	}
	return x, nil
}
