// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Listing is one real-estate unit observation as produced by acquisition.
// Nullable attributes use pointers so a genuine zero can be told apart
// from "provider did not report it".
type Listing struct {
	// ID is the stable provider-assigned identifier. Unique across the
	// dedup store.
	ID string `json:"id" yaml:"id"`

	// Address is the full street address as reported by the provider.
	Address string `json:"address" yaml:"address"`

	// URL links back to the provider's listing page.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Town is the canonical town name, when known. Acquisition fills it
	// from the region searched; the filter stage can resolve it from the
	// address otherwise.
	Town string `json:"town,omitempty" yaml:"town,omitempty"`

	// Price is the asking price in whole dollars. Zero means unreported;
	// such listings never pass the filter stage.
	Price int `json:"price" yaml:"price"`

	// Fee is the recurring monthly fee (HOA/condo) in dollars. Zero means
	// none or unreported, both of which are acceptable.
	Fee int `json:"fee" yaml:"fee"`

	Beds  *int `json:"beds,omitempty" yaml:"beds,omitempty"`
	Baths *int `json:"baths,omitempty" yaml:"baths,omitempty"`
	Sqft  *int `json:"sqft,omitempty" yaml:"sqft,omitempty"`

	// InUnitLaundry is nil when the provider does not report laundry.
	InUnitLaundry *bool `json:"in_unit_laundry,omitempty" yaml:"in_unit_laundry,omitempty"`

	// Parking is a free-text parking description ("2 spaces", "none", ...).
	Parking string `json:"parking,omitempty" yaml:"parking,omitempty"`

	// RentEstimate is the provider's monthly rent estimate in dollars,
	// zero when unavailable.
	RentEstimate int `json:"rent_estimate,omitempty" yaml:"rent_estimate,omitempty"`

	// Coordinate is the provider-reported location, nil when the provider
	// returns only an address. Enrichment geocodes in that case.
	Coordinate *Coordinate `json:"coordinate,omitempty" yaml:"coordinate,omitempty"`
}

// TravelResult is one destination's resolved travel time.
type TravelResult struct {
	// Minutes is the driving duration, nil when the lookup failed or the
	// listing could not be located.
	Minutes *float64 `json:"minutes" yaml:"minutes"`

	// Via names the candidate point that produced the minimum duration
	// when the destination is a candidate set (e.g. the nearest station).
	Via string `json:"via,omitempty" yaml:"via,omitempty"`
}

// EnrichedListing is a Listing plus externally-sourced measurements.
// Every destination key configured for the run has an entry in Commutes,
// with a nil Minutes standing in for a failed lookup.
type EnrichedListing struct {
	Listing `yaml:",inline"`

	// Resolved is the coordinate used for travel-time lookups: the
	// provider's when present, otherwise the geocoder's. Nil when both
	// are unavailable.
	Resolved *Coordinate `json:"resolved,omitempty" yaml:"resolved,omitempty"`

	// Commutes maps destination key to travel result.
	Commutes map[string]TravelResult `json:"commutes" yaml:"commutes"`

	// RentOffset is the estimated monthly roommate rent in dollars.
	RentOffset int `json:"rent_offset" yaml:"rent_offset"`

	// NetMonthlyCost is the estimated all-in monthly cost after the rent
	// offset, in dollars.
	NetMonthlyCost float64 `json:"net_monthly_cost" yaml:"net_monthly_cost"`
}

// Tier is the discrete rating bucket derived from the aggregate score.
type Tier string

const (
	TierGreen  Tier = "Green"
	TierYellow Tier = "Yellow"
	TierRed    Tier = "Red"
)

// ScoredListing is an EnrichedListing plus its rating.
type ScoredListing struct {
	EnrichedListing `yaml:",inline"`

	// SubScores holds each factor's normalized sub-score in [0,1].
	SubScores map[string]float64 `json:"sub_scores" yaml:"sub_scores"`

	// Score is the weighted aggregate in [0,1].
	Score float64 `json:"score" yaml:"score"`

	Tier Tier `json:"tier" yaml:"tier"`
}
