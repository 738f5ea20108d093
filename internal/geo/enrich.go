// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geo

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/pdiddy/listing-finder/pkg/types"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates
// in kilometers.
func HaversineKm(a, b types.Coordinate) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// nearestCandidates applies the cheap geometric pre-filter: candidates
// within cutoffKm by straight line survive; when nothing survives the
// single nearest candidate does, so a set destination always gets at
// least one routing call.
func nearestCandidates(origin types.Coordinate, points []types.Point, cutoffKm float64) []types.Point {
	if len(points) <= 1 {
		return points
	}

	var survivors []types.Point
	nearest := points[0]
	nearestDist := math.Inf(1)

	for _, p := range points {
		d := HaversineKm(origin, types.Coordinate{Lat: p.Lat, Lng: p.Lng})
		if d < nearestDist {
			nearestDist = d
			nearest = p
		}
		if d <= cutoffKm {
			survivors = append(survivors, p)
		}
	}

	if len(survivors) == 0 {
		return []types.Point{nearest}
	}
	return survivors
}

// Enrich resolves one listing: coordinate first (provider's, or geocoded),
// then a travel result per configured destination. Every destination key
// gets an entry; lookups that fail leave nil minutes and never abort the
// listing, let alone the run.
func (c *Client) Enrich(ctx context.Context, l types.Listing) types.EnrichedListing {
	e := types.EnrichedListing{
		Listing:  l,
		Commutes: make(map[string]types.TravelResult, len(c.cfg.Destinations)),
	}

	coord := l.Coordinate
	if coord == nil {
		resolved, err := c.Geocode(ctx, l.Address)
		if err != nil {
			fmt.Fprintf(c.w, "warning: geocode failed for %s: %v\n", l.Address, err)
		} else {
			coord = &resolved
		}
	}
	e.Resolved = coord

	for _, dest := range c.cfg.Destinations {
		if coord == nil {
			e.Commutes[dest.Key] = types.TravelResult{}
			continue
		}
		e.Commutes[dest.Key] = c.resolveDestination(ctx, *coord, dest)
	}

	return e
}

// resolveDestination routes to the destination's surviving candidates and
// keeps the minimum duration.
func (c *Client) resolveDestination(ctx context.Context, origin types.Coordinate, dest types.Destination) types.TravelResult {
	candidates := nearestCandidates(origin, dest.Points, c.cfg.PrefilterKm)
	if len(candidates) == 0 {
		return types.TravelResult{}
	}

	minutes, err := c.TravelTimes(ctx, origin, candidates)
	if err != nil {
		fmt.Fprintf(c.w, "warning: travel time to %s failed: %v\n", dest.Key, err)
		return types.TravelResult{}
	}

	var best *float64
	var via string
	for i, m := range minutes {
		if m == nil {
			continue
		}
		if best == nil || *m < *best {
			best = m
			via = candidates[i].Name
		}
	}
	if best == nil {
		return types.TravelResult{}
	}
	if len(dest.Points) == 1 {
		via = ""
	}
	return types.TravelResult{Minutes: best, Via: via}
}

// EnrichBatch enriches listings with a bounded worker fan-out. Order is
// preserved. The rate gates inside the client are shared, so adding
// workers never raises the outgoing request rate.
func (c *Client) EnrichBatch(ctx context.Context, listings []types.Listing) []types.EnrichedListing {
	out := make([]types.EnrichedListing, len(listings))
	if len(listings) == 0 {
		return out
	}

	workers := c.cfg.Workers
	if workers > len(listings) {
		workers = len(listings)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = c.Enrich(ctx, listings[i])
			}
		}()
	}

	// No mid-listing cancellation: once the context ends, the lookups
	// inside Enrich fail fast and the remaining listings come back with
	// unknown travel results, which keeps every entry well-formed.
	for i := range listings {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}
