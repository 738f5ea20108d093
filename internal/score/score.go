// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score rates enriched listings: each configured factor is
// normalized to a sub-score in [0,1], the weighted sum gives the aggregate,
// and the aggregate maps to a Green/Yellow/Red tier.
package score

import (
	"sort"
	"strings"

	"github.com/pdiddy/listing-finder/pkg/types"
)

// Factor keys with fixed semantics. Any other key in the weight map is a
// commute factor matched against the listing's destination results.
const (
	FactorPrice          = "price"
	FactorFee            = "fee"
	FactorNetMonthlyCost = "net_monthly_cost"
	FactorLaundry        = "laundry"
	FactorParking        = "parking"
	FactorSize           = "size"
)

// neutral is the sub-score for missing or unknown inputs. Keeping unknowns
// at the midpoint keeps every listing comparable under the same weights.
const neutral = 0.5

// Boolean reports whether a factor scores a yes/no attribute and therefore
// needs no thresholds.
func Boolean(key string) bool {
	return key == FactorLaundry || key == FactorParking
}

// HigherIsBetter reports whether larger raw values score higher for the
// given factor. All commute factors and cost factors are lower-is-better.
func HigherIsBetter(key string) bool {
	return key == FactorSize
}

// lowerBetter maps v onto [0,1]: 1 at or below Good, 0 at or above Bad,
// linear in between.
func lowerBetter(v float64, t types.Threshold) float64 {
	switch {
	case v <= t.Good:
		return 1
	case v >= t.Bad:
		return 0
	default:
		return (t.Bad - v) / (t.Bad - t.Good)
	}
}

// higherBetter is the mirror image: 1 at or above Good, 0 at or below Bad.
func higherBetter(v float64, t types.Threshold) float64 {
	switch {
	case v >= t.Good:
		return 1
	case v <= t.Bad:
		return 0
	default:
		return (v - t.Bad) / (t.Good - t.Bad)
	}
}

func boolScore(v *bool) float64 {
	if v == nil {
		return neutral
	}
	if *v {
		return 1
	}
	return 0
}

// parkingScore reads the free-text parking description: empty or "none"
// variants score 0, "unknown" scores neutral, anything else counts as
// having parking.
func parkingScore(parking string) float64 {
	switch strings.TrimSpace(strings.ToLower(parking)) {
	case "", "none", "none listed", "no":
		return 0
	case "unknown":
		return neutral
	default:
		return 1
	}
}

// sizeScore rates unit size on square footage; when sqft is unreported a
// two-bedroom-or-larger unit counts as good and anything else is unknown.
func sizeScore(l types.EnrichedListing, t types.Threshold) float64 {
	if l.Sqft != nil && *l.Sqft > 0 {
		return higherBetter(float64(*l.Sqft), t)
	}
	if l.Beds != nil && *l.Beds >= 2 {
		return 1
	}
	return neutral
}

func subScore(key string, l types.EnrichedListing, cfg types.ScoreConfig) float64 {
	t := cfg.Thresholds[key]

	switch key {
	case FactorPrice:
		return lowerBetter(float64(l.Price), t)
	case FactorFee:
		return lowerBetter(float64(l.Fee), t)
	case FactorNetMonthlyCost:
		return lowerBetter(l.NetMonthlyCost, t)
	case FactorLaundry:
		return boolScore(l.InUnitLaundry)
	case FactorParking:
		return parkingScore(l.Parking)
	case FactorSize:
		return sizeScore(l, t)
	default:
		// Commute factor keyed by destination.
		res, ok := l.Commutes[key]
		if !ok || res.Minutes == nil {
			return neutral
		}
		return lowerBetter(*res.Minutes, t)
	}
}

// Score rates one enriched listing. It is deterministic: identical input
// and configuration always produce identical sub-scores, aggregate, and
// tier. Weight validity (sum to 1, thresholds ordered) is the config
// loader's responsibility.
func Score(l types.EnrichedListing, cfg types.ScoreConfig) types.ScoredListing {
	subs := make(map[string]float64, len(cfg.Weights))
	var aggregate float64

	for key, weight := range cfg.Weights {
		s := subScore(key, l, cfg)
		subs[key] = s
		aggregate += weight * s
	}

	return types.ScoredListing{
		EnrichedListing: l,
		SubScores:       subs,
		Score:           aggregate,
		Tier:            tier(aggregate, cfg),
	}
}

func tier(aggregate float64, cfg types.ScoreConfig) types.Tier {
	switch {
	case aggregate >= cfg.TierHigh:
		return types.TierGreen
	case aggregate <= cfg.TierLow:
		return types.TierRed
	default:
		return types.TierYellow
	}
}

// SortBest orders scored listings best-first: by tier (Green, Yellow, Red)
// and by aggregate score within a tier. Ties keep input order so repeated
// runs produce identical reports.
func SortBest(batch []types.ScoredListing) {
	rank := map[types.Tier]int{types.TierGreen: 0, types.TierYellow: 1, types.TierRed: 2}
	sort.SliceStable(batch, func(i, j int) bool {
		if rank[batch[i].Tier] != rank[batch[j].Tier] {
			return rank[batch[i].Tier] < rank[batch[j].Tier]
		}
		return batch[i].Score > batch[j].Score
	})
}
