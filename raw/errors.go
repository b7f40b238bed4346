// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package raw

import "errors"

// Sentinel errors shared across the module. Wrap with fmt.Errorf("...: %w")
// and test with errors.Is. None of these represent transient conditions;
// nothing is retried internally.
var (
	// ErrUnknownChannel indicates a channel name not present in the recording.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrOutOfRange indicates a sample index beyond the declared sample count.
	ErrOutOfRange = errors.New("sample index out of range")

	// ErrSourceRead indicates a corrupt or truncated underlying source.
	// Fatal: the source is a fixed artifact, not a retriable resource.
	ErrSourceRead = errors.New("source read failed")

	// ErrInsufficientChannels indicates too few good channels remain for a
	// statistically meaningful result.
	ErrInsufficientChannels = errors.New("insufficient good channels")

	// ErrNoNeighbors indicates a bad channel with no usable good neighbor
	// within the configured radius.
	ErrNoNeighbors = errors.New("no good neighbors in range")

	// ErrUnknownOption indicates an unrecognized configuration key.
	ErrUnknownOption = errors.New("unknown option")
)
