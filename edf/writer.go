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
	"math"
	"time"

	"github.com/OpenPSG/sigproc/raw"
)

// SaveOptions carries the recording-session metadata EDF requires but the
// recording model does not.
type SaveOptions struct {
	PatientID   string
	RecordingID string
	StartTime   time.Time
}

// Save serializes a recording as an EDF file. A recording with pending
// transforms is materialized first. Each channel becomes one signal,
// calibrated over its own physical range; records are one second long, so
// the rate is rounded to a whole number of samples per record. Annotations
// are not serialized.
func Save(w io.Writer, rec *raw.Raw, opts SaveOptions) error {
	data, err := rec.Data()
	if err != nil {
		return err
	}

	spr := int(math.Round(rec.Rate))
	if spr < 1 {
		return fmt.Errorf("rate %v Hz is below one sample per record", rec.Rate)
	}

	hdr := Header{
		Version:            Version0,
		PatientID:          opts.PatientID,
		RecordingID:        opts.RecordingID,
		StartTime:          opts.StartTime,
		DataRecordDuration: time.Second,
		SignalCount:        len(rec.Channels),
		Signals:            make([]Signal, len(rec.Channels)),
	}
	if hdr.StartTime.IsZero() {
		hdr.StartTime = time.Unix(0, 0).UTC()
	}
	hdr.DataRecords = (rec.NSamples + spr - 1) / spr
	hdr.HeaderBytes = 256 + hdr.SignalCount*256

	for i, ch := range rec.Channels {
		pmin, pmax := physicalRange(data[i])
		hdr.Signals[i] = Signal{
			Label:             ch.Name,
			PhysicalDimension: ch.Unit,
			PhysicalMin:       pmin,
			PhysicalMax:       pmax,
			DigitalMin:        -32768,
			DigitalMax:        32767,
			SamplesPerRecord:  spr,
		}
	}

	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, &hdr); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	// Data records: signals interleaved record by record. The final partial
	// record is padded by repeating each channel's last sample, which keeps
	// a re-read free of artificial steps.
	for record := 0; record < hdr.DataRecords; record++ {
		for i, sig := range hdr.Signals {
			row := data[i]
			for k := 0; k < spr; k++ {
				pos := record*spr + k
				var v float64
				if pos < len(row) {
					v = row[pos]
				} else if len(row) > 0 {
					v = row[len(row)-1]
				}
				digital := convertPhysicalToDigital(v, sig.PhysicalMin, sig.PhysicalMax, sig.DigitalMin, sig.DigitalMax)
				if err := binary.Write(bw, binary.LittleEndian, digital); err != nil {
					return fmt.Errorf("writing record %d: %w", record, err)
				}
			}
		}
	}
	return bw.Flush()
}

// physicalRange returns the calibration range for a channel, widened when the
// signal is constant so the digital scale stays well defined.
func physicalRange(x []float64) (pmin, pmax float64) {
	pmin, pmax = math.Inf(1), math.Inf(-1)
	for _, v := range x {
		pmin = math.Min(pmin, v)
		pmax = math.Max(pmax, v)
	}
	if len(x) == 0 || pmin > pmax {
		return -1, 1
	}
	if pmin == pmax {
		pmin--
		pmax++
	}
	return pmin, pmax
}

func writeHeader(bw *bufio.Writer, hdr *Header) error {
	writePadded(bw, string(hdr.Version), 8)
	writePadded(bw, hdr.PatientID, 80)
	writePadded(bw, hdr.RecordingID, 80)
	writePadded(bw, hdr.StartTime.Format("02.01.06"), 8)
	writePadded(bw, hdr.StartTime.Format("15.04.05"), 8)
	writePadded(bw, fmt.Sprintf("%d", hdr.HeaderBytes), 8)
	writePadded(bw, "", 44) // Reserved
	writePadded(bw, fmt.Sprintf("%d", hdr.DataRecords), 8)
	writePadded(bw, fmt.Sprintf("%d", int(math.Ceil(hdr.DataRecordDuration.Seconds()))), 8)
	writePadded(bw, fmt.Sprintf("%d", hdr.SignalCount), 4)

	for _, col := range []struct {
		width int
		get   func(Signal) string
	}{
		{16, func(s Signal) string { return s.Label }},
		{80, func(s Signal) string { return s.TransducerType }},
		{8, func(s Signal) string { return s.PhysicalDimension }},
		{8, func(s Signal) string { return formatPhysicalValue(s.PhysicalMin) }},
		{8, func(s Signal) string { return formatPhysicalValue(s.PhysicalMax) }},
		{8, func(s Signal) string { return fmt.Sprintf("%d", s.DigitalMin) }},
		{8, func(s Signal) string { return fmt.Sprintf("%d", s.DigitalMax) }},
		{80, func(s Signal) string { return s.Prefiltering }},
		{8, func(s Signal) string { return fmt.Sprintf("%d", s.SamplesPerRecord) }},
		{32, func(s Signal) string { return s.Reserved }},
	} {
		for _, sig := range hdr.Signals {
			writePadded(bw, col.get(sig), col.width)
		}
	}
	return nil
}

// writePadded writes s space-padded (and truncated) to exactly width bytes.
// bufio errors are surfaced by the final Flush.
func writePadded(bw *bufio.Writer, s string, width int) {
	if len(s) > width {
		s = s[:width]
	}
	bw.WriteString(s)
	for i := len(s); i < width; i++ {
		bw.WriteByte(' ')
	}
}

func formatPhysicalValue(val float64) string {
	s := fmt.Sprintf("%.2f", val)
	if len(s) > 8 {
		s = fmt.Sprintf("%.0f", val)
	}
	return s
}
