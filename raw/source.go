// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package raw

// SourceInfo describes the shape and channel metadata of a source, available
// without reading any sample data.
type SourceInfo struct {
	Channels []Channel
	Rate     float64 // Nominal sampling rate in Hz
	NSamples int     // Total samples per channel
}

// Source is the contract a format reader must satisfy to back an
// unmaterialized recording. Implementations must support partial reads so
// that pending channel selections never force unselected channels to be read.
//
// A Source is assumed to be a fixed artifact: read failures are fatal
// (wrapped in ErrSourceRead) and are not retried. Implementations need not be
// safe for concurrent use; a recording serializes access to its source.
type Source interface {
	// Info returns the source's channel metadata and shape.
	Info() (SourceInfo, error)

	// ReadRange returns samples [start, end) of the given channel index, in
	// physical units. Implementations should read only the byte range
	// covering the request.
	ReadRange(channel, start, end int) ([]float64, error)
}
