// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 The OpenPSG Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pipeline

import (
	"errors"
	"fmt"
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/OpenPSG/sigproc/artifact"
	"github.com/OpenPSG/sigproc/interp"
	"github.com/OpenPSG/sigproc/raw"
)

// Config is the pipeline's option surface. Every value is explicit; nothing
// is read from process-wide state. Unrecognized keys in a YAML document fail
// with raw.ErrUnknownOption rather than being silently ignored.
type Config struct {
	// Workers bounds how many recordings are processed concurrently.
	// Zero means one worker per CPU.
	Workers int `yaml:"workers"`

	// Channels restricts processing to the named channels. Empty keeps all.
	Channels []string `yaml:"channels"`

	Resample    ResampleSection `yaml:"resample"`
	Muscle      MuscleSection   `yaml:"muscle_annotate"`
	Repair      RepairSection   `yaml:"temporal_derivative_repair"`
	Interpolate InterpSection   `yaml:"interpolate"`
}

// ResampleSection configures the optional rate conversion step.
type ResampleSection struct {
	Enabled    bool    `yaml:"enabled"`
	TargetRate float64 `yaml:"target_rate"`
}

// Validate validates the resample section.
func (c ResampleSection) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TargetRate,
			validation.When(c.Enabled, validation.Required, validation.Min(0.0).Exclusive())),
	)
}

// MuscleSection configures muscle-artifact annotation.
type MuscleSection struct {
	Enabled            bool      `yaml:"enabled"`
	ZThreshold         float64   `yaml:"z_threshold"`
	MinDurationSeconds float64   `yaml:"min_duration_seconds"`
	MinGapSeconds      float64   `yaml:"min_gap_seconds"`
	FreqBand           []float64 `yaml:"freq_band"`
	EnvelopeCutoff     float64   `yaml:"envelope_cutoff"`
	Robust             bool      `yaml:"robust"`
	MinChannels        int       `yaml:"min_channels"`
}

// Validate validates the muscle annotation section.
func (c MuscleSection) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ZThreshold,
			validation.When(c.Enabled, validation.Required, validation.Min(0.0).Exclusive())),
		validation.Field(&c.MinDurationSeconds, validation.Min(0.0)),
		validation.Field(&c.MinGapSeconds, validation.Min(0.0)),
		validation.Field(&c.FreqBand,
			validation.When(c.Enabled, validation.Required, validation.Length(2, 2), validation.By(ascendingBand))),
		validation.Field(&c.EnvelopeCutoff,
			validation.When(c.Enabled, validation.Required, validation.Min(0.0).Exclusive())),
		validation.Field(&c.MinChannels, validation.Min(1)),
	)
}

func ascendingBand(value interface{}) error {
	band, ok := value.([]float64)
	if !ok || len(band) != 2 {
		return errors.New("must be a [low, high] pair")
	}
	if band[0] <= 0 || band[1] <= band[0] {
		return fmt.Errorf("band [%v, %v] must satisfy 0 < low < high", band[0], band[1])
	}
	return nil
}

func (c MuscleSection) artifactConfig() artifact.MuscleConfig {
	return artifact.MuscleConfig{
		FreqBand:           [2]float64{c.FreqBand[0], c.FreqBand[1]},
		ZThreshold:         c.ZThreshold,
		MinDurationSeconds: c.MinDurationSeconds,
		MinGapSeconds:      c.MinGapSeconds,
		EnvelopeCutoff:     c.EnvelopeCutoff,
		Robust:             c.Robust,
		MinChannels:        c.MinChannels,
	}
}

// RepairSection configures temporal derivative distribution repair.
type RepairSection struct {
	Enabled          bool    `yaml:"enabled"`
	SpreadMultiplier float64 `yaml:"spread_multiplier"`
}

// Validate validates the repair section.
func (c RepairSection) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SpreadMultiplier,
			validation.When(c.Enabled, validation.Required, validation.Min(1.0).Exclusive())),
	)
}

// InterpSection configures bad-channel interpolation.
type InterpSection struct {
	Enabled             bool    `yaml:"enabled"`
	MaxNeighborDistance float64 `yaml:"max_neighbor_distance"`
	Power               float64 `yaml:"power"`
}

// Validate validates the interpolation section.
func (c InterpSection) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxNeighborDistance,
			validation.When(c.Enabled, validation.Required, validation.Min(0.0).Exclusive())),
		validation.Field(&c.Power,
			validation.When(c.Enabled, validation.Required, validation.Min(0.0).Exclusive())),
	)
}

func (c InterpSection) interpConfig() interp.Config {
	return interp.Config{
		MaxNeighborDistance: c.MaxNeighborDistance,
		Power:               c.Power,
	}
}

// DefaultConfig returns a pipeline configuration matching each algorithm's
// recommended defaults, with annotation, repair and interpolation enabled and
// resampling disabled.
func DefaultConfig() Config {
	muscle := artifact.DefaultMuscleConfig()
	ip := interp.DefaultConfig()
	return Config{
		Muscle: MuscleSection{
			Enabled:            true,
			ZThreshold:         muscle.ZThreshold,
			MinDurationSeconds: muscle.MinDurationSeconds,
			MinGapSeconds:      muscle.MinGapSeconds,
			FreqBand:           []float64{muscle.FreqBand[0], muscle.FreqBand[1]},
			EnvelopeCutoff:     muscle.EnvelopeCutoff,
			Robust:             muscle.Robust,
			MinChannels:        muscle.MinChannels,
		},
		Repair: RepairSection{
			Enabled:          true,
			SpreadMultiplier: artifact.DefaultTDDRConfig().SpreadMultiplier,
		},
		Interpolate: InterpSection{
			Enabled:             true,
			MaxNeighborDistance: ip.MaxNeighborDistance,
			Power:               ip.Power,
		},
	}
}

// ParseConfig decodes a YAML configuration on top of the defaults.
// Unrecognized keys fail with raw.ErrUnknownOption.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			for _, msg := range typeErr.Errors {
				if strings.Contains(msg, "not found") {
					return Config{}, fmt.Errorf("%w: %s", raw.ErrUnknownOption, strings.Join(typeErr.Errors, "; "))
				}
			}
		}
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the whole configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Workers, validation.Min(0)),
		validation.Field(&c.Resample),
		validation.Field(&c.Muscle),
		validation.Field(&c.Repair),
		validation.Field(&c.Interpolate),
	)
}
