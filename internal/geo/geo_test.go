// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geo

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/listing-finder/internal/httputil"
	"github.com/pdiddy/listing-finder/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

// kendall and southStation are real station coordinates; downtown is a
// plausible listing location between them.
var (
	downtown     = types.Coordinate{Lat: 42.3555, Lng: -71.0605}
	kendall      = types.Point{Name: "Kendall/MIT", Lat: 42.3625, Lng: -71.0862}
	southStation = types.Point{Name: "South Station", Lat: 42.3523, Lng: -71.0553}
	braintree    = types.Point{Name: "Braintree", Lat: 42.2078, Lng: -71.0011}
)

func testClient(t *testing.T, geocodeURL, routeURL string, interval time.Duration) *Client {
	t.Helper()
	return NewClient(types.GeoConfig{
		HTTPConfig:      types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "listing-finder/test"},
		GeocodeBaseURL:  geocodeURL,
		RouteBaseURL:    routeURL,
		GeocodeInterval: interval,
		RouteInterval:   interval,
		MaxAttempts:     2,
		Workers:         3,
		PrefilterKm:     8,
		Destinations: []types.Destination{
			{Key: "seaport", Label: "Seaport", Points: []types.Point{{Name: "Seaport", Lat: 42.3519, Lng: -71.0446}}},
			{Key: "transit", Label: "Nearest station", Points: []types.Point{kendall, southStation, braintree}},
		},
	}, io.Discard)
}

func geocodeServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if strings.Contains(r.URL.Query().Get("q"), "nowhere") {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `[{"lat":"42.3555","lon":"-71.0605"}]`)
	}))
}

// tableServer answers every duration query with 600 s per destination.
func tableServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		n := len(strings.Split(r.URL.Query().Get("destinations"), ";"))
		durs := make([]string, n)
		for i := range durs {
			durs[i] = "600"
		}
		fmt.Fprintf(w, `{"code":"Ok","durations":[[%s]]}`, strings.Join(durs, ","))
	}))
}

func TestGeocode(t *testing.T) {
	var calls int32
	ts := geocodeServer(t, &calls)
	defer ts.Close()

	c := testClient(t, ts.URL, "", time.Millisecond)

	coord, err := c.Geocode(context.Background(), "10 Main St, Quincy, MA 02169")
	require.NoError(t, err)
	assert.InDelta(t, 42.3555, coord.Lat, 1e-9)
	assert.InDelta(t, -71.0605, coord.Lng, 1e-9)
}

func TestGeocodeCachesWithinRun(t *testing.T) {
	var calls int32
	ts := geocodeServer(t, &calls)
	defer ts.Close()

	c := testClient(t, ts.URL, "", time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := c.Geocode(ctx, "10 Main St, Quincy, MA 02169")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGeocodeNoResultsCachedAsFailure(t *testing.T) {
	var calls int32
	ts := geocodeServer(t, &calls)
	defer ts.Close()

	c := testClient(t, ts.URL, "", time.Millisecond)
	ctx := context.Background()

	_, err := c.Geocode(ctx, "nowhere at all")
	require.Error(t, err)
	_, err = c.Geocode(ctx, "nowhere at all")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTravelTimes(t *testing.T) {
	var calls int32
	ts := tableServer(t, &calls)
	defer ts.Close()

	c := testClient(t, "", ts.URL, time.Millisecond)

	minutes, err := c.TravelTimes(context.Background(), downtown, []types.Point{kendall, southStation})
	require.NoError(t, err)
	require.Len(t, minutes, 2)
	require.NotNil(t, minutes[0])
	assert.InDelta(t, 10.0, *minutes[0], 1e-9) // 600 s
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "both destinations in one matrix call")
}

func TestTravelTimeSingleDestination(t *testing.T) {
	var calls int32
	ts := tableServer(t, &calls)
	defer ts.Close()

	c := testClient(t, "", ts.URL, time.Millisecond)

	m, err := c.TravelTime(context.Background(), downtown, kendall)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.InDelta(t, 10.0, *m, 1e-9)
}

func TestTravelTimesCachesPerPair(t *testing.T) {
	var calls int32
	ts := tableServer(t, &calls)
	defer ts.Close()

	c := testClient(t, "", ts.URL, time.Millisecond)
	ctx := context.Background()

	_, err := c.TravelTimes(ctx, downtown, []types.Point{kendall, southStation})
	require.NoError(t, err)

	// Second query overlaps on kendall: only southStation-less pairs miss.
	_, err = c.TravelTimes(ctx, downtown, []types.Point{kendall, braintree})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	// Fully cached query issues nothing.
	_, err = c.TravelTimes(ctx, downtown, []types.Point{kendall, southStation, braintree})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRateLimitSpacing(t *testing.T) {
	const interval = 60 * time.Millisecond

	var mu sync.Mutex
	var stamps []time.Time
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		fmt.Fprint(w, `[{"lat":"42.0","lon":"-71.0"}]`)
	}))
	defer ts.Close()

	c := testClient(t, ts.URL, "", interval)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Geocode(ctx, fmt.Sprintf("address %d", i))
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, stamps, 4)
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		// Allow a small scheduling tolerance below the configured gate.
		assert.GreaterOrEqual(t, gap, interval-10*time.Millisecond,
			"requests %d and %d spaced %v apart", i-1, i, gap)
	}
}

func TestNearestCandidates(t *testing.T) {
	// Kendall and South Station are within 8 km of downtown; Braintree
	// (≈17 km away) must be pre-filtered out.
	got := nearestCandidates(downtown, []types.Point{kendall, southStation, braintree}, 8)
	require.Len(t, got, 2)
	names := []string{got[0].Name, got[1].Name}
	assert.Contains(t, names, "Kendall/MIT")
	assert.Contains(t, names, "South Station")
}

func TestNearestCandidatesFallsBackToClosest(t *testing.T) {
	got := nearestCandidates(downtown, []types.Point{braintree, kendall}, 0.001)
	require.Len(t, got, 1)
	assert.Equal(t, "Kendall/MIT", got[0].Name)
}

func TestHaversineKm(t *testing.T) {
	// Downtown Boston to Braintree is roughly 17 km.
	d := HaversineKm(downtown, types.Coordinate{Lat: braintree.Lat, Lng: braintree.Lng})
	assert.InDelta(t, 17, d, 2)

	zero := HaversineKm(downtown, downtown)
	assert.Less(t, math.Abs(zero), 1e-9)
}
