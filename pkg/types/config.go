// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "listing-finder/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Region identifies one provider search region.
type Region struct {
	// ID is the provider's region identifier.
	ID string `json:"id" yaml:"id"`

	// Type is the provider's region type code ("2" = ZIP-based search).
	Type string `json:"type" yaml:"type"`
}

// ScrapeConfig holds settings for the acquisition stage.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the provider's search endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Regions maps town name to provider region.
	Regions map[string]Region `json:"regions" yaml:"regions"`

	// MaxPrice caps the search server-side, in dollars.
	MaxPrice int `json:"max_price" yaml:"max_price"`

	// DelayMin/DelayMax bound the randomized pause between region queries.
	DelayMin time.Duration `json:"delay_min" yaml:"delay_min"`
	DelayMax time.Duration `json:"delay_max" yaml:"delay_max"`

	// MaxAttempts bounds retries per region query.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// Town is an allow-listed town with its known ZIP codes.
type Town struct {
	Name string   `json:"name" yaml:"name"`
	ZIPs []string `json:"zips" yaml:"zips"`
}

// FilterConfig holds the bounds and allow/deny sets for the filter stage.
type FilterConfig struct {
	// MaxPrice is the maximum acceptable asking price in dollars.
	MaxPrice int `json:"max_price" yaml:"max_price"`

	// MaxFee is the maximum acceptable recurring monthly fee in dollars.
	MaxFee int `json:"max_fee" yaml:"max_fee"`

	// AllowedTowns is the authoritative allow-list: a listing that matches
	// none of these is rejected.
	AllowedTowns []Town `json:"allowed_towns" yaml:"allowed_towns"`

	// BlockedNeighborhoods are lowercase neighborhood names that reject a
	// listing when they appear in its address or town hint.
	BlockedNeighborhoods []string `json:"blocked_neighborhoods" yaml:"blocked_neighborhoods"`

	// BlockedZIPs reject regardless of the allow-list.
	BlockedZIPs []string `json:"blocked_zips" yaml:"blocked_zips"`
}

// Point is a named candidate destination coordinate.
type Point struct {
	Name string  `json:"name" yaml:"name"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Lng  float64 `json:"lng" yaml:"lng"`

	// Line tags transit candidates with their service line; informational.
	Line string `json:"line,omitempty" yaml:"line,omitempty"`
}

// Destination is a travel-time target: a single point, or a candidate set
// resolved to the nearest member ("nearest station").
type Destination struct {
	// Key names the destination and its scoring factor (e.g. "seaport").
	Key string `json:"key" yaml:"key"`

	// Label is the human-readable description used in reports.
	Label string `json:"label" yaml:"label"`

	// Points holds one entry for a fixed destination, several for a
	// nearest-of-set destination.
	Points []Point `json:"points" yaml:"points"`
}

// GeoConfig holds settings for the enrichment stage.
type GeoConfig struct {
	HTTPConfig `yaml:",inline"`

	// GeocodeBaseURL is the address-search endpoint (Nominatim-compatible).
	GeocodeBaseURL string `json:"geocode_base_url" yaml:"geocode_base_url"`

	// RouteBaseURL is the routing service root (OSRM-compatible), without
	// the /route or /table suffix.
	RouteBaseURL string `json:"route_base_url" yaml:"route_base_url"`

	// GeocodeInterval and RouteInterval set the minimum spacing between
	// requests to each service. The gates are shared across all lookups
	// in a run.
	GeocodeInterval time.Duration `json:"geocode_interval" yaml:"geocode_interval"`
	RouteInterval   time.Duration `json:"route_interval" yaml:"route_interval"`

	// MaxAttempts bounds retries for transient lookup failures.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// Workers bounds the enrichment fan-out across listings.
	Workers int `json:"workers" yaml:"workers"`

	// PrefilterKm is the straight-line cutoff for nearest-of-set
	// candidates; candidates beyond it get no routing call.
	PrefilterKm float64 `json:"prefilter_km" yaml:"prefilter_km"`

	// Destinations are the travel-time targets for every listing.
	Destinations []Destination `json:"destinations" yaml:"destinations"`
}

// Threshold is a factor's (good, bad) pair. For lower-is-better factors
// Good < Bad; for higher-is-better factors Good > Bad.
type Threshold struct {
	Good float64 `json:"good" yaml:"good"`
	Bad  float64 `json:"bad" yaml:"bad"`
}

// ScoreConfig holds the weights and thresholds for the scoring engine.
type ScoreConfig struct {
	// Weights maps factor key to weight. Weights must sum to 1.
	Weights map[string]float64 `json:"weights" yaml:"weights"`

	// Thresholds maps factor key to its (good, bad) pair. Boolean factors
	// need no entry.
	Thresholds map[string]Threshold `json:"thresholds" yaml:"thresholds"`

	// TierHigh and TierLow cut the aggregate into tiers: >= TierHigh is
	// Green, <= TierLow is Red.
	TierHigh float64 `json:"tier_high" yaml:"tier_high"`
	TierLow  float64 `json:"tier_low" yaml:"tier_low"`
}

// CostConfig holds the assumptions behind the net-monthly-cost estimate.
type CostConfig struct {
	InterestRate     float64 `json:"interest_rate" yaml:"interest_rate"`
	DownPaymentPct   float64 `json:"down_payment_pct" yaml:"down_payment_pct"`
	LoanTermYears    int     `json:"loan_term_years" yaml:"loan_term_years"`
	PropertyTaxRate  float64 `json:"property_tax_rate" yaml:"property_tax_rate"`
	InsuranceMonthly int     `json:"insurance_monthly" yaml:"insurance_monthly"`
	UtilitiesMonthly int     `json:"utilities_monthly" yaml:"utilities_monthly"`
	InternetMonthly  int     `json:"internet_monthly" yaml:"internet_monthly"`

	// FallbackRents maps town name to median one-bedroom rent, used for
	// the roommate offset when the provider has no rent estimate.
	FallbackRents map[string]int `json:"fallback_rents" yaml:"fallback_rents"`

	// MetroRent is the last-resort rent when the town is unknown.
	MetroRent int `json:"metro_rent" yaml:"metro_rent"`
}

// StoreConfig holds paths for persisted state.
type StoreConfig struct {
	// SeenPath is the dedup store file (JSON array of listing IDs).
	SeenPath string `json:"seen_path" yaml:"seen_path"`

	// ArchiveDir is the directory holding the scored-listing archive.
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir"`
}

// ReportConfig holds settings for the reporting sinks.
type ReportConfig struct {
	// OutputDir receives the workbook and CSV exports.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// PostgresDSN enables the Postgres sink when non-empty.
	PostgresDSN string `json:"postgres_dsn,omitempty" yaml:"postgres_dsn,omitempty"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Scrape ScrapeConfig `json:"scrape" yaml:"scrape"`
	Filter FilterConfig `json:"filter" yaml:"filter"`
	Geo    GeoConfig    `json:"geo" yaml:"geo"`
	Score  ScoreConfig  `json:"score" yaml:"score"`
	Cost   CostConfig   `json:"cost" yaml:"cost"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Report ReportConfig `json:"report" yaml:"report"`
}
