// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape acquires for-sale listings from the GIS JSON endpoint,
// one query per configured region.
package scrape

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/pdiddy/listing-finder/internal/httputil"
	"github.com/pdiddy/listing-finder/pkg/types"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultAttempts = 3
	numHomes        = 350
	siteBase        = "https://www.redfin.com"
)

// Backoff window for re-querying a region after a block or a mangled
// payload. Vars so tests can shrink them.
var (
	retryDelayLo = 3 * time.Second
	retryDelayHi = 8 * time.Second
)

// Client queries the GIS endpoint for configured regions.
type Client struct {
	cfg  types.ScrapeConfig
	http *http.Client
	w    io.Writer
}

// NewClient builds a scrape client from configuration.
func NewClient(cfg types.ScrapeConfig, w io.Writer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultAttempts
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		w:    w,
	}
}

// SearchRegion queries one region and returns its mapped listings.
// Blocks (HTTP 403) and malformed payloads are retried with a randomized
// backoff; other client errors are permanent.
func (c *Client) SearchRegion(ctx context.Context, town string, region types.Region) ([]types.Listing, error) {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.delay(ctx, retryDelayLo, retryDelayHi); err != nil {
				return nil, err
			}
		}

		homes, err := c.searchOnce(ctx, region)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			fmt.Fprintf(c.w, "warning: %s attempt %d/%d: %v\n", town, attempt, c.cfg.MaxAttempts, err)
			continue
		}

		listings := make([]types.Listing, 0, len(homes))
		for _, h := range homes {
			if l, ok := mapHome(h, town, siteBase); ok {
				listings = append(listings, l)
			}
		}
		fmt.Fprintf(c.w, "%s (region %s): %d listings\n", town, region.ID, len(listings))
		return listings, nil
	}

	return nil, fmt.Errorf("all %d attempts failed for %s: %w", c.cfg.MaxAttempts, town, lastErr)
}

func (c *Client) searchOnce(ctx context.Context, region types.Region) ([]gisHome, error) {
	req, err := c.newRequest(ctx, region)
	if err != nil {
		return nil, err
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("GIS request: %w", err)
	}
	defer resp.Body.Close()

	// The endpoint answers blocks with 403 rather than 429.
	if resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("GIS endpoint returned HTTP 403")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GIS endpoint returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading GIS response: %w", err)
	}
	return parsePayload(body)
}

func (c *Client) newRequest(ctx context.Context, region types.Region) (*http.Request, error) {
	regionType := region.Type
	if regionType == "" {
		regionType = "2"
	}

	q := url.Values{
		"al":          {"1"},
		"num_homes":   {strconv.Itoa(numHomes)},
		"region_id":   {region.ID},
		"region_type": {regionType},
		"status":      {"9"},
		"v":           {"8"},
	}
	if c.cfg.MaxPrice > 0 {
		q.Set("max_price", strconv.Itoa(c.cfg.MaxPrice))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating GIS request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", siteBase+"/")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	return req, nil
}

// ScrapeAll queries every configured region in stable name order, with a
// polite randomized delay between regions. A region that fails after all
// retries is logged and skipped; the run keeps going.
func (c *Client) ScrapeAll(ctx context.Context) ([]types.Listing, error) {
	towns := make([]string, 0, len(c.cfg.Regions))
	for name := range c.cfg.Regions {
		towns = append(towns, name)
	}
	sort.Strings(towns)

	var all []types.Listing
	failed := 0

	for i, town := range towns {
		if i > 0 {
			if err := c.delay(ctx, c.cfg.DelayMin, c.cfg.DelayMax); err != nil {
				return all, err
			}
		}

		listings, err := c.SearchRegion(ctx, town, c.cfg.Regions[town])
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			fmt.Fprintf(c.w, "warning: skipping %s: %v\n", town, err)
			failed++
			continue
		}
		all = append(all, listings...)
	}

	fmt.Fprintf(c.w, "\nscraped %d listings from %d regions (%d failed)\n",
		len(all), len(towns)-failed, failed)
	return all, nil
}

// delay sleeps a uniformly random duration in [lo, hi], honoring the
// context.
func (c *Client) delay(ctx context.Context, lo, hi time.Duration) error {
	if hi < lo {
		hi = lo
	}
	d := lo
	if hi > lo {
		d = lo + time.Duration(rand.Int64N(int64(hi-lo)))
	}
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
