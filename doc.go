// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package sigproc provides lazy raw-signal processing and artifact correction
// for multichannel physiological recordings (EEG/MEG/NIRS).
//
// Recordings are opened against a Source without reading any sample data.
// Channel selection and resampling can be applied to an unmaterialized
// recording as cheap metadata edits; the pending transforms are replayed the
// first time samples are actually needed, so unselected channels are never
// read or filtered at the original rate.
//
// # Packages
//
//   - raw: the recording data model, the two-state (lazy/materialized) sample
//     store, annotations, and the Source contract for format readers
//   - dsp: FIR filter design, zero-phase filtering, and band-limited
//     resampling primitives
//   - artifact: muscle-artifact annotation and temporal derivative
//     distribution repair
//   - interp: bad-channel interpolation for NIRS optodes
//   - pipeline: a configurable multi-recording processing pipeline
//   - edf: an EDF/EDF+ backed Source and writer
//
// # Quick start
//
//	src, err := edf.Open(f)
//	rec, err := raw.NewFromSource(src)
//	rec, err = rec.Pick([]string{"EEG Fpz-Cz", "EEG Pz-Oz"})
//	rec, err = rec.Resample(100) // still nothing read from disk
//	anns, err := artifact.AnnotateMuscle(rec, artifact.DefaultMuscleConfig())
//
// A recording must not be used from multiple goroutines concurrently;
// different recordings are fully independent.
package sigproc
