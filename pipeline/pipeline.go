// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package pipeline applies a configured sequence of recording transforms
// (channel selection, resampling, artifact annotation, derivative repair,
// bad-channel interpolation) across many recordings.
//
// Each recording is processed on a single goroutine end to end; parallelism
// is only across recordings, which share no mutable state.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/OpenPSG/sigproc/artifact"
	"github.com/OpenPSG/sigproc/interp"
	"github.com/OpenPSG/sigproc/raw"
)

// Result is the outcome of processing one recording.
type Result struct {
	// Recording is the processed recording. When selection or resampling is
	// configured this is a derived recording; the input is left untouched.
	Recording *raw.Raw

	// Annotations produced by muscle-artifact annotation, if enabled.
	Annotations []raw.Annotation

	// Interpolated holds provenance for every reconstructed channel.
	Interpolated []interp.Provenance
}

// Pipeline runs a validated configuration over recordings.
type Pipeline struct {
	cfg Config
	log *slog.Logger
}

// New creates a pipeline from the given configuration.
func New(cfg Config, log *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{cfg: cfg, log: log}, nil
}

// Run processes the recordings, at most Workers at a time, and returns one
// result per input in order. The first failure cancels outstanding work and
// is returned; already-finished results are discarded.
func (p *Pipeline) Run(ctx context.Context, recs []*raw.Raw) ([]Result, error) {
	results := make([]Result, len(recs))

	workers := p.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := p.process(i, rec)
			if err != nil {
				return fmt.Errorf("recording %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) process(idx int, rec *raw.Raw) (Result, error) {
	var err error

	if len(p.cfg.Channels) > 0 {
		rec, err = rec.Pick(p.cfg.Channels)
		if err != nil {
			return Result{}, err
		}
	}

	if p.cfg.Resample.Enabled {
		rec, err = rec.Resample(p.cfg.Resample.TargetRate)
		if err != nil {
			return Result{}, err
		}
		p.log.Debug("resampled recording",
			"recording", idx, "rate", rec.Rate, "samples", rec.NSamples)
	}

	res := Result{Recording: rec}

	if p.cfg.Muscle.Enabled {
		res.Annotations, err = artifact.AnnotateMuscle(rec, p.cfg.Muscle.artifactConfig())
		if err != nil {
			return Result{}, err
		}
		p.log.Info("annotated muscle artifacts",
			"recording", idx, "annotations", len(res.Annotations))
	}

	if p.cfg.Repair.Enabled {
		if err := artifact.RepairTDDR(rec, artifact.TDDRConfig{
			SpreadMultiplier: p.cfg.Repair.SpreadMultiplier,
		}); err != nil {
			return Result{}, err
		}
	}

	if p.cfg.Interpolate.Enabled && len(rec.BadChannels()) > 0 {
		res.Interpolated, err = interp.Interpolate(rec, p.cfg.Interpolate.interpConfig())
		if err != nil {
			return Result{}, err
		}
		p.log.Info("interpolated bad channels",
			"recording", idx, "channels", len(res.Interpolated))
	}

	return res, nil
}
