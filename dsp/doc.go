// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package dsp provides the numeric primitives used by the recording
// transforms: windowed-sinc FIR design, zero-phase filtering, and
// band-limited resampling.
//
// All functions operate on plain []float64 sample slices and are pure: they
// never modify their inputs. Boundary handling is by signal reflection, not
// zero padding, so filtering does not introduce edge discontinuities that
// downstream artifact detection could mistake for real events.
package dsp
