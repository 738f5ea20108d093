// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geo enriches listings with externally-sourced measurements:
// address geocoding and driving durations to configured destinations.
// All outgoing requests pass a per-service rate gate shared across the
// whole run, and identical lookups are answered from a run-scoped cache.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/listing-finder/internal/httputil"
	"github.com/pdiddy/listing-finder/pkg/types"
)

const (
	defaultGeocodeInterval = 1100 * time.Millisecond
	defaultRouteInterval   = 1100 * time.Millisecond
	defaultPrefilterKm     = 8.0
	defaultWorkers         = 4
)

// Client resolves geocoding and routing lookups against
// Nominatim/OSRM-compatible services.
type Client struct {
	cfg       types.GeoConfig
	http      *http.Client
	geoGate   *rate.Limiter
	routeGate *rate.Limiter
	cache     *lookupCache
	w         io.Writer
}

// NewClient builds a Client for one pipeline run. The rate gates and the
// lookup cache live as long as the Client, so every lookup in the run
// shares them.
func NewClient(cfg types.GeoConfig, w io.Writer) *Client {
	if cfg.GeocodeInterval <= 0 {
		cfg.GeocodeInterval = defaultGeocodeInterval
	}
	if cfg.RouteInterval <= 0 {
		cfg.RouteInterval = defaultRouteInterval
	}
	if cfg.PrefilterKm <= 0 {
		cfg.PrefilterKm = defaultPrefilterKm
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: timeout},
		geoGate:   rate.NewLimiter(rate.Every(cfg.GeocodeInterval), 1),
		routeGate: rate.NewLimiter(rate.Every(cfg.RouteInterval), 1),
		cache:     newLookupCache(),
		w:         w,
	}
}

// nominatimResult is one entry of a Nominatim search response.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves an address to a coordinate. Identical addresses within
// a run hit the external service at most once; resolved failures are
// cached the same as successes.
func (c *Client) Geocode(ctx context.Context, address string) (types.Coordinate, error) {
	if strings.TrimSpace(address) == "" {
		return types.Coordinate{}, fmt.Errorf("geocode: empty address")
	}

	key := "geocode\x00" + address
	if v, ok := c.cache.get(key); ok {
		e := v.(geocodeEntry)
		return e.coord, e.err
	}

	coord, err := c.geocodeRemote(ctx, address)
	// Context cancellation is not a resolution; leave it uncached so a
	// later run segment can retry.
	if ctx.Err() == nil {
		c.cache.put(key, geocodeEntry{coord: coord, err: err})
	}
	return coord, err
}

func (c *Client) geocodeRemote(ctx context.Context, address string) (types.Coordinate, error) {
	if err := c.geoGate.Wait(ctx); err != nil {
		return types.Coordinate{}, err
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("countrycodes", "us")

	req, err := http.NewRequest(http.MethodGet, c.cfg.GeocodeBaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return types.Coordinate{}, fmt.Errorf("geocode: creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxAttempts)
	if err != nil {
		return types.Coordinate{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Coordinate{}, fmt.Errorf("geocode %q: HTTP %d", address, resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return types.Coordinate{}, fmt.Errorf("geocode %q: parsing response: %w", address, err)
	}
	if len(results) == 0 {
		return types.Coordinate{}, fmt.Errorf("geocode %q: no results", address)
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lng, lngErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lngErr != nil {
		return types.Coordinate{}, fmt.Errorf("geocode %q: malformed coordinates in response", address)
	}

	return types.Coordinate{Lat: lat, Lng: lng}, nil
}

// osrmTableResponse is the routing service's duration-matrix response.
type osrmTableResponse struct {
	Code      string       `json:"code"`
	Durations [][]*float64 `json:"durations"`
}

// TravelTime resolves the driving duration in minutes from origin to a
// single destination. A nil result means the service found no route.
func (c *Client) TravelTime(ctx context.Context, origin types.Coordinate, dest types.Point) (*float64, error) {
	minutes, err := c.TravelTimes(ctx, origin, []types.Point{dest})
	if err != nil {
		return nil, err
	}
	return minutes[0], nil
}

// TravelTimes resolves driving durations in minutes from origin to each
// destination. One matrix request covers all cache misses, so N
// destinations cost at most one routing call. A nil entry means the
// service found no route.
func (c *Client) TravelTimes(ctx context.Context, origin types.Coordinate, dests []types.Point) ([]*float64, error) {
	minutes := make([]*float64, len(dests))
	var missIdx []int

	for i, d := range dests {
		key := routeKey(origin, d)
		if v, ok := c.cache.get(key); ok {
			minutes[i] = v.(*float64)
			continue
		}
		missIdx = append(missIdx, i)
	}
	if len(missIdx) == 0 {
		return minutes, nil
	}

	missPoints := make([]types.Point, len(missIdx))
	for i, idx := range missIdx {
		missPoints[i] = dests[idx]
	}

	durations, err := c.tableRemote(ctx, origin, missPoints)
	if err != nil {
		if ctx.Err() == nil {
			for _, idx := range missIdx {
				c.cache.put(routeKey(origin, dests[idx]), (*float64)(nil))
			}
		}
		return minutes, err
	}

	for i, idx := range missIdx {
		var m *float64
		if durations[i] != nil {
			v := math.Round(*durations[i]/60*10) / 10
			m = &v
		}
		minutes[idx] = m
		c.cache.put(routeKey(origin, dests[idx]), m)
	}
	return minutes, nil
}

func (c *Client) tableRemote(ctx context.Context, origin types.Coordinate, dests []types.Point) ([]*float64, error) {
	if err := c.routeGate.Wait(ctx); err != nil {
		return nil, err
	}

	// The routing service wants lng,lat pairs with the origin first.
	coords := make([]string, 0, len(dests)+1)
	coords = append(coords, fmt.Sprintf("%f,%f", origin.Lng, origin.Lat))
	destIdx := make([]string, 0, len(dests))
	for i, d := range dests {
		coords = append(coords, fmt.Sprintf("%f,%f", d.Lng, d.Lat))
		destIdx = append(destIdx, strconv.Itoa(i+1))
	}

	q := url.Values{}
	q.Set("sources", "0")
	q.Set("destinations", strings.Join(destIdx, ";"))
	q.Set("annotations", "duration")

	endpoint := fmt.Sprintf("%s/table/v1/driving/%s?%s",
		strings.TrimRight(c.cfg.RouteBaseURL, "/"), strings.Join(coords, ";"), q.Encode())

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("route table: creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("route table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("route table: HTTP %d", resp.StatusCode)
	}

	var table osrmTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("route table: parsing response: %w", err)
	}
	if table.Code != "Ok" {
		return nil, fmt.Errorf("route table: service returned code %q", table.Code)
	}
	if len(table.Durations) == 0 || len(table.Durations[0]) != len(dests) {
		return nil, fmt.Errorf("route table: unexpected matrix shape")
	}

	return table.Durations[0], nil
}

func routeKey(origin types.Coordinate, d types.Point) string {
	return fmt.Sprintf("route\x00%.5f,%.5f\x00%.5f,%.5f", origin.Lat, origin.Lng, d.Lat, d.Lng)
}

type geocodeEntry struct {
	coord types.Coordinate
	err   error
}
