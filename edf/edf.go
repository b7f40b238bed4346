// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package edf backs recordings with EDF/EDF+ files: Open adapts an EDF file
// to the raw.Source contract (samples are read lazily, by byte range), and
// Save serializes a recording, materializing it first.
package edf

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Version of the EDF/EDF+ standard.
type Version string

// Version0 is the only published version ("0").
const Version0 Version = "0"

// Header is the EDF/EDF+ file header.
type Header struct {
	Version            Version
	PatientID          string
	RecordingID        string
	StartTime          time.Time
	HeaderBytes        int
	DataRecordDuration time.Duration
	DataRecords        int // -1 while unknown
	SignalCount        int
	Signals            []Signal
}

// Signal describes one signal within each data record.
type Signal struct {
	Label             string  // e.g. "EEG Fpz-Cz"
	TransducerType    string  // e.g. "AgAgCl electrode"
	PhysicalDimension string  // e.g. "uV"
	PhysicalMin       float64 // Calibration: physical range
	PhysicalMax       float64
	DigitalMin        int // Calibration: digital range
	DigitalMax        int
	Prefiltering      string
	SamplesPerRecord  int
	Reserved          string
}

// bytesPerSample is fixed by the EDF standard (16-bit little-endian).
const bytesPerSample = 2

// convertDigitalToPhysical applies the signal's calibration factors.
func convertDigitalToPhysical(digital int16, dmin, dmax int, pmin, pmax float64) float64 {
	if dmax == dmin {
		return 0
	}
	return pmin + (float64(digital)-float64(dmin))*(pmax-pmin)/float64(dmax-dmin)
}

// convertPhysicalToDigital inverts the calibration.
func convertPhysicalToDigital(physical float64, pmin, pmax float64, dmin, dmax int) int16 {
	if pmax == pmin {
		return 0
	}
	digital := (physical-pmin)*float64(dmax-dmin)/(pmax-pmin) + float64(dmin)
	return int16(digital)
}

func parseFloatField(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseIntField(s string) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return i
}

// parseRequiredInt is for the header fields that define the file's layout;
// a garbage value there cannot be papered over with a zero.
func parseRequiredInt(s, field string) (int, error) {
	v := strings.TrimSpace(s)
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", field, v, err)
	}
	return i, nil
}
