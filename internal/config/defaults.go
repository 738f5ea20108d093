// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"maps"
	"slices"
	"time"

	"github.com/pdiddy/listing-finder/internal/score"
	"github.com/pdiddy/listing-finder/pkg/types"
)

// Region IDs for the GIS endpoint, region_type 2 (ZIP based search).
var defaultRegions = map[string]types.Region{
	"Allston":    {ID: "639", Type: "2"},
	"Arlington":  {ID: "769", Type: "2"},
	"Belmont":    {ID: "773", Type: "2"},
	"Brighton":   {ID: "640", Type: "2"},
	"Brookline":  {ID: "747", Type: "2"},
	"Cambridge":  {ID: "643", Type: "2"},
	"Medford":    {ID: "657", Type: "2"},
	"Newton":     {ID: "757", Type: "2"},
	"Quincy":     {ID: "660", Type: "2"},
	"Somerville": {ID: "648", Type: "2"},
	"Waltham":    {ID: "750", Type: "2"},
	"Watertown":  {ID: "767", Type: "2"},
}

var defaultTowns = []types.Town{
	{Name: "Quincy", ZIPs: []string{"02169", "02170", "02171"}},
	{Name: "Waltham", ZIPs: []string{"02451", "02452", "02453", "02454"}},
	{Name: "Newton", ZIPs: []string{"02458", "02459", "02460", "02461", "02462", "02464", "02465", "02466", "02467", "02468"}},
	{Name: "Watertown", ZIPs: []string{"02471", "02472"}},
	{Name: "Brighton", ZIPs: []string{"02135"}},
	{Name: "Allston", ZIPs: []string{"02134"}},
	{Name: "Somerville", ZIPs: []string{"02143", "02144", "02145"}},
	{Name: "Cambridge", ZIPs: []string{"02138", "02139", "02140", "02141", "02142"}},
	{Name: "Brookline", ZIPs: []string{"02445", "02446", "02447"}},
	{Name: "Medford", ZIPs: []string{"02155", "02156"}},
	{Name: "Arlington", ZIPs: []string{"02474", "02476"}},
	{Name: "Belmont", ZIPs: []string{"02478"}},
}

var defaultBlockedNeighborhoods = []string{
	"dorchester",
	"jamaica plain",
	"east boston",
	"revere",
	"roxbury",
	"mattapan",
	"hyde park",
}

var defaultBlockedZIPs = []string{
	"02121", "02122", "02124", "02125", // Dorchester
	"02130", // Jamaica Plain
	"02128", // East Boston
	"02151", // Revere
	"02119", "02120", // Roxbury
	"02126", // Mattapan
	"02136", // Hyde Park
}

// Rapid transit stations used for the nearest-station commute factor.
// Coordinates are approximate station centroids.
var defaultStations = []types.Point{
	// Red Line
	{Name: "Alewife", Lat: 42.3954, Lng: -71.1425, Line: "Red"},
	{Name: "Davis", Lat: 42.3967, Lng: -71.1218, Line: "Red"},
	{Name: "Porter", Lat: 42.3884, Lng: -71.1191, Line: "Red"},
	{Name: "Harvard", Lat: 42.3734, Lng: -71.1189, Line: "Red"},
	{Name: "Central", Lat: 42.3653, Lng: -71.1037, Line: "Red"},
	{Name: "Kendall/MIT", Lat: 42.3625, Lng: -71.0862, Line: "Red"},
	{Name: "Charles/MGH", Lat: 42.3613, Lng: -71.0707, Line: "Red"},
	{Name: "Park Street", Lat: 42.3564, Lng: -71.0624, Line: "Red"},
	{Name: "Downtown Crossing", Lat: 42.3555, Lng: -71.0602, Line: "Red"},
	{Name: "South Station", Lat: 42.3523, Lng: -71.0553, Line: "Red"},
	{Name: "Broadway", Lat: 42.3426, Lng: -71.0569, Line: "Red"},
	{Name: "Andrew", Lat: 42.3302, Lng: -71.0570, Line: "Red"},
	{Name: "JFK/UMass", Lat: 42.3209, Lng: -71.0524, Line: "Red"},
	{Name: "North Quincy", Lat: 42.2754, Lng: -71.0300, Line: "Red"},
	{Name: "Wollaston", Lat: 42.2665, Lng: -71.0198, Line: "Red"},
	{Name: "Quincy Center", Lat: 42.2516, Lng: -71.0052, Line: "Red"},
	{Name: "Quincy Adams", Lat: 42.2330, Lng: -71.0073, Line: "Red"},
	{Name: "Braintree", Lat: 42.2078, Lng: -71.0011, Line: "Red"},
	// Orange Line
	{Name: "Oak Grove", Lat: 42.4367, Lng: -71.0710, Line: "Orange"},
	{Name: "Malden Center", Lat: 42.4268, Lng: -71.0740, Line: "Orange"},
	{Name: "Wellington", Lat: 42.4046, Lng: -71.0770, Line: "Orange"},
	{Name: "Assembly", Lat: 42.3924, Lng: -71.0770, Line: "Orange"},
	{Name: "Sullivan Square", Lat: 42.3840, Lng: -71.0770, Line: "Orange"},
	{Name: "North Station", Lat: 42.3655, Lng: -71.0614, Line: "Orange"},
	{Name: "Haymarket", Lat: 42.3630, Lng: -71.0583, Line: "Orange"},
	{Name: "Back Bay", Lat: 42.3474, Lng: -71.0753, Line: "Orange"},
	{Name: "Forest Hills", Lat: 42.3006, Lng: -71.1139, Line: "Orange"},
	// Green Line trunk
	{Name: "Lechmere", Lat: 42.3708, Lng: -71.0769, Line: "Green"},
	{Name: "Government Center", Lat: 42.3594, Lng: -71.0592, Line: "Green"},
	{Name: "Copley", Lat: 42.3500, Lng: -71.0774, Line: "Green"},
	{Name: "Kenmore", Lat: 42.3487, Lng: -71.0952, Line: "Green"},
	// Green B
	{Name: "Harvard Avenue", Lat: 42.3504, Lng: -71.1312, Line: "Green-B"},
	{Name: "Boston College", Lat: 42.3396, Lng: -71.1664, Line: "Green-B"},
	// Green C
	{Name: "Coolidge Corner", Lat: 42.3387, Lng: -71.1209, Line: "Green-C"},
	{Name: "Cleveland Circle", Lat: 42.3362, Lng: -71.1511, Line: "Green-C"},
	// Green D
	{Name: "Brookline Village", Lat: 42.3326, Lng: -71.1168, Line: "Green-D"},
	{Name: "Reservoir", Lat: 42.3352, Lng: -71.1488, Line: "Green-D"},
	{Name: "Newton Centre", Lat: 42.3293, Lng: -71.1921, Line: "Green-D"},
	{Name: "Newton Highlands", Lat: 42.3219, Lng: -71.2060, Line: "Green-D"},
	{Name: "Riverside", Lat: 42.3372, Lng: -71.2523, Line: "Green-D"},
	// Green Line Extension
	{Name: "East Somerville", Lat: 42.3793, Lng: -71.0870, Line: "Green-Ext"},
	{Name: "Gilman Square", Lat: 42.3880, Lng: -71.0960, Line: "Green-Ext"},
	{Name: "Ball Square", Lat: 42.3987, Lng: -71.1107, Line: "Green-Ext"},
	{Name: "Medford/Tufts", Lat: 42.4074, Lng: -71.1166, Line: "Green-Ext"},
	{Name: "Union Square", Lat: 42.3770, Lng: -71.0930, Line: "Green-Ext"},
}

var defaultDestinations = []types.Destination{
	{
		Key:    "seaport",
		Label:  "200 Pier 4 Blvd (Seaport)",
		Points: []types.Point{{Name: "Seaport", Lat: 42.3519, Lng: -71.0446}},
	},
	{
		Key:    "google_cambridge",
		Label:  "Google Cambridge",
		Points: []types.Point{{Name: "Google Cambridge", Lat: 42.3625, Lng: -71.0847}},
	},
	{
		Key:    "transit",
		Label:  "Nearest rapid transit station",
		Points: defaultStations,
	},
}

var defaultWeights = map[string]float64{
	score.FactorPrice:          0.20,
	score.FactorFee:            0.10,
	score.FactorNetMonthlyCost: 0.20,
	"seaport":                  0.15,
	"google_cambridge":         0.10,
	"transit":                  0.10,
	score.FactorLaundry:        0.05,
	score.FactorParking:        0.05,
	score.FactorSize:           0.05,
}

var defaultThresholds = map[string]types.Threshold{
	score.FactorPrice:          {Good: 400000, Bad: 500000},
	score.FactorFee:            {Good: 200, Bad: 400},
	score.FactorNetMonthlyCost: {Good: 2000, Bad: 3000},
	"seaport":                  {Good: 15, Bad: 30},
	"google_cambridge":         {Good: 15, Bad: 25},
	"transit":                  {Good: 5, Bad: 15},
	score.FactorSize:           {Good: 900, Bad: 500},
}

// Fallback 1BR rents by town, discounted downstream for shared rooms.
var defaultFallbackRents = map[string]int{
	"Quincy":     1800,
	"Waltham":    1900,
	"Newton":     2200,
	"Watertown":  2100,
	"Brighton":   2000,
	"Allston":    1900,
	"Somerville": 2300,
	"Cambridge":  2500,
	"Brookline":  2400,
	"Medford":    1900,
	"Arlington":  2000,
	"Belmont":    2100,
}

// Default returns the full built-in configuration. A YAML config file
// overlays these values field by field. Maps and slices are copied so
// callers can adjust their config without bleeding into later calls.
func Default() types.PipelineConfig {
	return types.PipelineConfig{
		Scrape: types.ScrapeConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   20 * time.Second,
				UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			},
			BaseURL:     "https://www.redfin.com/stingray/api/gis",
			Regions:     maps.Clone(defaultRegions),
			MaxPrice:    600000,
			DelayMin:    3 * time.Second,
			DelayMax:    8 * time.Second,
			MaxAttempts: 3,
		},
		Filter: types.FilterConfig{
			MaxPrice:             600000,
			MaxFee:               500,
			AllowedTowns:         slices.Clone(defaultTowns),
			BlockedNeighborhoods: slices.Clone(defaultBlockedNeighborhoods),
			BlockedZIPs:          slices.Clone(defaultBlockedZIPs),
		},
		Geo: types.GeoConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   15 * time.Second,
				UserAgent: "listing-finder/1.0",
			},
			GeocodeBaseURL:  "https://nominatim.openstreetmap.org/search",
			RouteBaseURL:    "https://router.project-osrm.org",
			GeocodeInterval: 1100 * time.Millisecond,
			RouteInterval:   1100 * time.Millisecond,
			MaxAttempts:     3,
			Workers:         4,
			PrefilterKm:     8,
			Destinations:    slices.Clone(defaultDestinations),
		},
		Score: types.ScoreConfig{
			Weights:    maps.Clone(defaultWeights),
			Thresholds: maps.Clone(defaultThresholds),
			TierHigh:   0.65,
			TierLow:    0.35,
		},
		Cost: types.CostConfig{
			InterestRate:     0.065,
			DownPaymentPct:   0.20,
			LoanTermYears:    30,
			PropertyTaxRate:  0.012,
			InsuranceMonthly: 150,
			UtilitiesMonthly: 250,
			InternetMonthly:  60,
			FallbackRents:    maps.Clone(defaultFallbackRents),
			MetroRent:        1800,
		},
		Store: types.StoreConfig{
			SeenPath:   "data/seen_ids.json",
			ArchiveDir: "data",
		},
		Report: types.ReportConfig{
			OutputDir: "data/reports",
		},
	}
}
