// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/OpenPSG/sigproc/raw"
)

// Source adapts an EDF/EDF+ file to the raw.Source contract. Samples are
// read on demand by seeking to the byte range of the requested channel span;
// opening a file reads only the header.
//
// All signals must share one sampling rate, since a recording has a single
// nominal rate. EDF files with mixed per-signal rates are rejected.
type Source struct {
	r          io.ReadSeeker
	hdr        *Header
	recordSize int   // Bytes per data record
	offsets    []int // Byte offset of each signal within a record
	rate       float64
	nsamples   int
}

// Open parses the header of an EDF/EDF+ file. No sample data is read.
func Open(r io.ReadSeeker) (*Source, error) {
	hdr, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", raw.ErrSourceRead, err)
	}
	if hdr.DataRecords < 0 {
		return nil, fmt.Errorf("%w: unknown data record count", raw.ErrSourceRead)
	}
	if hdr.SignalCount == 0 {
		return nil, fmt.Errorf("%w: no signals", raw.ErrSourceRead)
	}

	spr := hdr.Signals[0].SamplesPerRecord
	recordSize := 0
	offsets := make([]int, hdr.SignalCount)
	for i, sig := range hdr.Signals {
		if sig.SamplesPerRecord != spr {
			return nil, fmt.Errorf("mixed sampling rates: signal %q has %d samples per record, %q has %d",
				sig.Label, sig.SamplesPerRecord, hdr.Signals[0].Label, spr)
		}
		offsets[i] = recordSize
		recordSize += sig.SamplesPerRecord * bytesPerSample
	}
	if spr <= 0 || hdr.DataRecordDuration <= 0 {
		return nil, fmt.Errorf("%w: invalid record geometry", raw.ErrSourceRead)
	}

	return &Source{
		r:          r,
		hdr:        hdr,
		recordSize: recordSize,
		offsets:    offsets,
		rate:       float64(spr) / hdr.DataRecordDuration.Seconds(),
		nsamples:   hdr.DataRecords * spr,
	}, nil
}

// Header returns the parsed EDF header.
func (s *Source) Header() *Header {
	return s.hdr
}

// Info returns channel metadata derived from the signal headers. Channel
// types are inferred from the conventional label prefixes; EDF carries no
// sensor positions, so HasPos is false throughout.
func (s *Source) Info() (raw.SourceInfo, error) {
	channels := make([]raw.Channel, s.hdr.SignalCount)
	for i, sig := range s.hdr.Signals {
		channels[i] = raw.Channel{
			Name: sig.Label,
			Type: typeForLabel(sig.Label),
			Unit: sig.PhysicalDimension,
		}
	}
	return raw.SourceInfo{
		Channels: channels,
		Rate:     s.rate,
		NSamples: s.nsamples,
	}, nil
}

// ReadRange returns physical samples [start, end) of the given signal,
// reading each data record's contribution with a single seek and read.
func (s *Source) ReadRange(channel, start, end int) ([]float64, error) {
	if channel < 0 || channel >= s.hdr.SignalCount {
		return nil, fmt.Errorf("%w: signal index %d of %d", raw.ErrOutOfRange, channel, s.hdr.SignalCount)
	}
	if start < 0 || end > s.nsamples || start > end {
		return nil, fmt.Errorf("%w: samples [%d, %d) of %d", raw.ErrOutOfRange, start, end, s.nsamples)
	}

	sig := s.hdr.Signals[channel]
	spr := sig.SamplesPerRecord
	out := make([]float64, 0, end-start)
	buf := make([]byte, spr*bytesPerSample)

	for pos := start; pos < end; {
		record := pos / spr
		within := pos % spr
		take := spr - within
		if pos+take > end {
			take = end - pos
		}

		off := int64(s.hdr.HeaderBytes) + int64(record)*int64(s.recordSize) +
			int64(s.offsets[channel]) + int64(within*bytesPerSample)
		if _, err := s.r.Seek(off, io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w: seeking record %d: %v", raw.ErrSourceRead, record, err)
		}
		b := buf[:take*bytesPerSample]
		if _, err := io.ReadFull(s.r, b); err != nil {
			return nil, fmt.Errorf("%w: reading record %d: %v", raw.ErrSourceRead, record, err)
		}
		for i := 0; i < take; i++ {
			digital := int16(binary.LittleEndian.Uint16(b[i*bytesPerSample:]))
			out = append(out, convertDigitalToPhysical(digital,
				sig.DigitalMin, sig.DigitalMax, sig.PhysicalMin, sig.PhysicalMax))
		}
		pos += take
	}
	return out, nil
}

// readHeader parses the fixed 256-byte header followed by the column-major
// signal header block.
func readHeader(r io.ReadSeeker) (*Header, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	br := bufio.NewReader(r)

	b := make([]byte, 256)
	if _, err := io.ReadFull(br, b); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	hdr := &Header{}
	hdr.Version = Version(strings.TrimSpace(string(b[0:8])))
	hdr.PatientID = strings.TrimSpace(string(b[8:88]))
	hdr.RecordingID = strings.TrimSpace(string(b[88:168]))

	startDate, err := time.Parse("02.01.06", strings.TrimSpace(string(b[168:176])))
	if err != nil {
		return nil, fmt.Errorf("parsing start date: %w", err)
	}
	startTime, err := time.Parse("15.04.05", strings.TrimSpace(string(b[176:184])))
	if err != nil {
		return nil, fmt.Errorf("parsing start time: %w", err)
	}
	hdr.StartTime = time.Date(startDate.Year(), startDate.Month(), startDate.Day(),
		startTime.Hour(), startTime.Minute(), startTime.Second(), 0, time.UTC)

	hdr.HeaderBytes, err = parseRequiredInt(string(b[184:192]), "header byte count")
	if err != nil {
		return nil, err
	}
	hdr.DataRecords, err = parseRequiredInt(string(b[236:244]), "data record count")
	if err != nil {
		return nil, err
	}
	hdr.DataRecordDuration, err = time.ParseDuration(strings.TrimSpace(string(b[244:252])) + "s")
	if err != nil {
		return nil, fmt.Errorf("parsing data record duration: %w", err)
	}
	hdr.SignalCount, err = parseRequiredInt(string(b[252:256]), "signal count")
	if err != nil {
		return nil, err
	}
	if hdr.SignalCount < 0 {
		return nil, fmt.Errorf("negative signal count %d", hdr.SignalCount)
	}

	hdr.Signals = make([]Signal, hdr.SignalCount)
	for _, col := range []struct {
		width int
		set   func(*Signal, string)
	}{
		{16, func(s *Signal, v string) { s.Label = v }},
		{80, func(s *Signal, v string) { s.TransducerType = v }},
		{8, func(s *Signal, v string) { s.PhysicalDimension = v }},
		{8, func(s *Signal, v string) { s.PhysicalMin = parseFloatField(v) }},
		{8, func(s *Signal, v string) { s.PhysicalMax = parseFloatField(v) }},
		{8, func(s *Signal, v string) { s.DigitalMin = parseIntField(v) }},
		{8, func(s *Signal, v string) { s.DigitalMax = parseIntField(v) }},
		{80, func(s *Signal, v string) { s.Prefiltering = v }},
		{8, func(s *Signal, v string) { s.SamplesPerRecord = parseIntField(v) }},
		{32, func(s *Signal, v string) { s.Reserved = v }},
	} {
		field := make([]byte, col.width)
		for i := range hdr.Signals {
			if _, err := io.ReadFull(br, field); err != nil {
				return nil, fmt.Errorf("reading signal headers: %w", err)
			}
			col.set(&hdr.Signals[i], strings.TrimSpace(string(field)))
		}
	}
	return hdr, nil
}

// typeForLabel infers the channel type from the conventional EDF label
// prefix ("EEG Fpz-Cz", "MEG 0113", ...).
func typeForLabel(label string) raw.ChannelType {
	upper := strings.ToUpper(label)
	switch {
	case strings.HasPrefix(upper, "EEG"):
		return raw.EEG
	case strings.HasPrefix(upper, "MEG"):
		return raw.MEG
	case strings.Contains(upper, "HBO"):
		return raw.NIRSHbO
	case strings.Contains(upper, "HBR"):
		return raw.NIRSHbR
	case strings.HasPrefix(upper, "NIRS"), strings.Contains(upper, " OD"):
		return raw.NIRSOD
	case strings.HasPrefix(upper, "STIM"), strings.HasPrefix(upper, "MARKER"), strings.HasPrefix(upper, "EVENT"):
		return raw.Stim
	default:
		return raw.Misc
	}
}
