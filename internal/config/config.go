// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config builds the pipeline configuration: built-in defaults,
// overlaid by an optional YAML file, then validated. An invalid
// configuration fails the run before any network lookup is spent.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/listing-finder/internal/score"
	"github.com/pdiddy/listing-finder/pkg/types"
)

// weightTolerance bounds the allowed drift of the weight sum from 1.
const weightTolerance = 1e-6

// Load returns the defaults overlaid with the YAML file at path, when
// path is non-empty. The result is validated either way.
func Load(path string) (types.PipelineConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the cross-field invariants the stages rely on.
func Validate(cfg types.PipelineConfig) error {
	var errs []error

	errs = append(errs, validateScore(cfg.Score, cfg.Geo)...)

	if cfg.Scrape.BaseURL == "" {
		errs = append(errs, errors.New("scrape: base URL is empty"))
	}
	if len(cfg.Scrape.Regions) == 0 {
		errs = append(errs, errors.New("scrape: no regions configured"))
	}
	if cfg.Scrape.MaxAttempts <= 0 {
		errs = append(errs, errors.New("scrape: max attempts must be positive"))
	}
	if cfg.Scrape.DelayMax < cfg.Scrape.DelayMin {
		errs = append(errs, errors.New("scrape: delay range is inverted"))
	}

	if cfg.Geo.GeocodeInterval <= 0 || cfg.Geo.RouteInterval <= 0 {
		errs = append(errs, errors.New("geo: lookup intervals must be positive"))
	}
	if cfg.Geo.Workers <= 0 {
		errs = append(errs, errors.New("geo: worker count must be positive"))
	}
	if cfg.Geo.PrefilterKm <= 0 {
		errs = append(errs, errors.New("geo: pre-filter distance must be positive"))
	}
	for _, d := range cfg.Geo.Destinations {
		if len(d.Points) == 0 {
			errs = append(errs, fmt.Errorf("geo: destination %q has no points", d.Key))
		}
	}

	if cfg.Cost.LoanTermYears <= 0 {
		errs = append(errs, errors.New("cost: loan term must be positive"))
	}
	if cfg.Cost.DownPaymentPct < 0 || cfg.Cost.DownPaymentPct >= 1 {
		errs = append(errs, errors.New("cost: down payment fraction must be in [0,1)"))
	}

	return errors.Join(errs...)
}

func validateScore(sc types.ScoreConfig, geo types.GeoConfig) []error {
	var errs []error

	var sum float64
	for _, w := range sc.Weights {
		if w < 0 {
			errs = append(errs, errors.New("score: weights must be non-negative"))
			break
		}
		sum += w
	}
	if math.Abs(sum-1) > weightTolerance {
		errs = append(errs, fmt.Errorf("score: weights sum to %.6f, want 1", sum))
	}

	destinations := map[string]bool{}
	for _, d := range geo.Destinations {
		destinations[d.Key] = true
	}

	for key := range sc.Weights {
		if score.Boolean(key) {
			continue
		}

		if !knownFactor(key) && !destinations[key] {
			errs = append(errs, fmt.Errorf("score: factor %q matches no destination", key))
			continue
		}

		t, ok := sc.Thresholds[key]
		if !ok {
			errs = append(errs, fmt.Errorf("score: factor %q has no thresholds", key))
			continue
		}
		if score.HigherIsBetter(key) {
			if t.Good <= t.Bad {
				errs = append(errs, fmt.Errorf("score: factor %q thresholds inverted (good must exceed bad)", key))
			}
		} else if t.Good >= t.Bad {
			errs = append(errs, fmt.Errorf("score: factor %q thresholds inverted (good must be below bad)", key))
		}
	}

	if sc.TierHigh <= sc.TierLow {
		errs = append(errs, fmt.Errorf("score: tier cutoffs inverted (%.2f <= %.2f)", sc.TierHigh, sc.TierLow))
	}
	if sc.TierHigh > 1 || sc.TierLow < 0 {
		errs = append(errs, errors.New("score: tier cutoffs must lie in [0,1]"))
	}

	return errs
}

func knownFactor(key string) bool {
	switch key {
	case score.FactorPrice, score.FactorFee, score.FactorNetMonthlyCost, score.FactorSize:
		return true
	}
	return false
}
