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
	"fmt"
	"sort"

	"github.com/OpenPSG/sigproc/dsp"
)

// Raw is a multichannel recording: ordered channels, a nominal sampling
// rate, annotations, and a sample store that may not be materialized yet.
//
// Pick and Resample return derived recordings and leave the receiver
// untouched. Materialize, SetBad and the in-place artifact operations mutate
// the receiver. A Raw must not be used from multiple goroutines without
// external synchronization; materialization swaps internal state.
type Raw struct {
	Channels    []Channel
	Rate        float64 // Sampling rate in Hz
	NSamples    int     // Samples per channel
	Annotations []Annotation

	store store
}

// NewFromSource opens a recording over a Source without reading any sample
// data. Channel selection and resampling applied before the first slice or
// materialization are deferred and replayed on demand.
func NewFromSource(src Source) (*Raw, error) {
	info, err := src.Info()
	if err != nil {
		return nil, fmt.Errorf("reading source info: %w", err)
	}
	if info.Rate <= 0 {
		return nil, fmt.Errorf("source reports non-positive rate %v", info.Rate)
	}
	channels := make([]Channel, len(info.Channels))
	copy(channels, info.Channels)
	return &Raw{
		Channels: channels,
		Rate:     info.Rate,
		NSamples: info.NSamples,
		store:    newLazyStore(src, info),
	}, nil
}

// New creates a materialized recording over the given channel x sample
// matrix. The matrix is owned by the recording afterwards.
func New(channels []Channel, rate float64, data [][]float64) (*Raw, error) {
	if len(channels) != len(data) {
		return nil, fmt.Errorf("channel count %d does not match matrix rows %d", len(channels), len(data))
	}
	if rate <= 0 {
		return nil, fmt.Errorf("non-positive rate %v", rate)
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
	chs := make([]Channel, len(channels))
	copy(chs, channels)
	return &Raw{
		Channels: chs,
		Rate:     rate,
		NSamples: n,
		store:    &memStore{data: data},
	}, nil
}

// IsMaterialized reports whether the sample matrix is resident in memory.
func (r *Raw) IsMaterialized() bool {
	return r.store.materialized()
}

// Materialize produces the in-memory sample matrix, reading from the source
// and replaying pending transforms if needed. Idempotent: a second call does
// not re-run already-applied transforms.
func (r *Raw) Materialize() error {
	if r.store.materialized() {
		return nil
	}
	data, err := r.store.materialize()
	if err != nil {
		return err
	}
	r.store = &memStore{data: data}
	return nil
}

// Data materializes the recording if necessary and returns its backing
// matrix, one row per channel. The matrix is the recording's own storage:
// in-place algorithms write through it, and other callers must treat it as
// read-only. Use Slice for an independent copy.
func (r *Raw) Data() ([][]float64, error) {
	if err := r.Materialize(); err != nil {
		return nil, err
	}
	return r.store.materialize()
}

// Slice returns a copy of samples [start, end) for every channel. It never
// changes the recording's materialization state: on a lazy recording only the
// requested range (plus the context pending transforms require) is read.
func (r *Raw) Slice(start, end int) ([][]float64, error) {
	if start < 0 || end > r.NSamples || start > end {
		return nil, fmt.Errorf("%w: samples [%d, %d) of %d", ErrOutOfRange, start, end, r.NSamples)
	}
	return r.store.slice(start, end)
}

// PickOption configures Pick.
type PickOption func(*pickOptions)

type pickOptions struct {
	originalOrder bool
}

// OriginalOrder makes Pick keep the recording's channel order instead of the
// requested order.
func OriginalOrder() PickOption {
	return func(o *pickOptions) { o.originalOrder = true }
}

// Pick returns a recording restricted to the named channels, in the order
// requested (or the original order with OriginalOrder). Duplicate names are
// collapsed onto their first occurrence, so each channel appears at most
// once. On a lazy recording this is a metadata-only edit; on a materialized
// one the selected rows are copied, so the result never aliases the
// receiver's samples.
func (r *Raw) Pick(names []string, opts ...PickOption) (*Raw, error) {
	var o pickOptions
	for _, opt := range opts {
		opt(&o)
	}

	byName := make(map[string]int, len(r.Channels))
	for i, ch := range r.Channels {
		byName[ch.Name] = i
	}

	idx := make([]int, 0, len(names))
	seen := make(map[int]bool, len(names))
	for _, name := range names {
		i, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
		}
		if !seen[i] {
			seen[i] = true
			idx = append(idx, i)
		}
	}
	if o.originalOrder {
		sort.Ints(idx)
	}
	return r.derive(idx)
}

// PickTypes returns a recording restricted to channels of the given types,
// keeping the original channel order.
func (r *Raw) PickTypes(types ...ChannelType) (*Raw, error) {
	want := make(map[ChannelType]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var idx []int
	for i, ch := range r.Channels {
		if want[ch.Type] {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: no channels of requested types", ErrUnknownChannel)
	}
	return r.derive(idx)
}

// derive builds the selected recording for the given channel indices.
func (r *Raw) derive(idx []int) (*Raw, error) {
	channels := make([]Channel, len(idx))
	for i, j := range idx {
		channels[i] = r.Channels[j]
	}

	var st store
	switch s := r.store.(type) {
	case *lazyStore:
		st = s.pick(idx)
	case *memStore:
		data := make([][]float64, len(idx))
		for i, j := range idx {
			row := make([]float64, r.NSamples)
			copy(row, s.data[j])
			data[i] = row
		}
		st = &memStore{data: data}
	default:
		return nil, fmt.Errorf("unhandled store state %T", r.store)
	}

	return &Raw{
		Channels:    channels,
		Rate:        r.Rate,
		NSamples:    r.NSamples,
		Annotations: append([]Annotation(nil), r.Annotations...),
		store:       st,
	}, nil
}

// Resample returns a recording converted to the target sampling rate. On a
// lazy recording the conversion is recorded and applied at the first slice or
// materialization, so chained selection and resampling never read unselected
// channels at the original rate. Annotation onsets and durations are rescaled
// by target/current so the annotated time spans stay aligned.
func (r *Raw) Resample(target float64) (*Raw, error) {
	if target <= 0 {
		return nil, fmt.Errorf("non-positive target rate %v", target)
	}

	k := target / r.Rate
	anns := append([]Annotation(nil), r.Annotations...)
	rescaleAnnotations(anns, k)

	out := &Raw{
		Channels:    append([]Channel(nil), r.Channels...),
		Rate:        target,
		Annotations: anns,
	}

	switch s := r.store.(type) {
	case *lazyStore:
		ls := s.resample(target)
		out.store = ls
		out.NSamples = ls.nsamples()
	case *memStore:
		data := make([][]float64, len(s.data))
		for i, row := range s.data {
			data[i] = dsp.Resample(row, r.Rate, target)
		}
		out.store = &memStore{data: data}
		out.NSamples = dsp.ResampledLen(r.NSamples, r.Rate, target)
	default:
		return nil, fmt.Errorf("unhandled store state %T", r.store)
	}
	return out, nil
}

// SetBad flags the named channels as bad. Atomic: an unknown name leaves the
// bad-channel set unchanged.
func (r *Raw) SetBad(names ...string) error {
	idx := make([]int, 0, len(names))
	for _, name := range names {
		i, err := r.ChannelIndex(name)
		if err != nil {
			return err
		}
		idx = append(idx, i)
	}
	for _, i := range idx {
		r.Channels[i].Bad = true
	}
	return nil
}

// BadChannels returns the names of channels currently flagged bad.
func (r *Raw) BadChannels() []string {
	var bads []string
	for _, ch := range r.Channels {
		if ch.Bad {
			bads = append(bads, ch.Name)
		}
	}
	return bads
}

// ChannelIndex returns the index of the named channel.
func (r *Raw) ChannelIndex(name string) (int, error) {
	for i, ch := range r.Channels {
		if ch.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
}

// ChannelNames returns the channel names in order.
func (r *Raw) ChannelNames() []string {
	names := make([]string, len(r.Channels))
	for i, ch := range r.Channels {
		names[i] = ch.Name
	}
	return names
}

// Annotate appends annotations to the recording.
func (r *Raw) Annotate(anns ...Annotation) {
	r.Annotations = append(r.Annotations, anns...)
}
