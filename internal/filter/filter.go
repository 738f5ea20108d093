// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter applies price, fee, and location rules to listings.
// It is pure: no state, no network, same inputs always give the same answer.
package filter

import (
	"regexp"
	"strings"

	"github.com/pdiddy/listing-finder/pkg/types"
)

var (
	zipRe   = regexp.MustCompile(`\b(\d{5})\b`)
	spaceRe = regexp.MustCompile(`\s+`)
)

func normalize(s string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
}

// ExtractZIP pulls a 5-digit ZIP code from an address string, or returns "".
func ExtractZIP(address string) string {
	if m := zipRe.FindStringSubmatch(address); m != nil {
		return m[1]
	}
	return ""
}

// Accept reports whether a listing passes all filters: price within budget,
// fee acceptable, and location admitted by the allow/block sets.
func Accept(l types.Listing, cfg types.FilterConfig) bool {
	if l.Price <= 0 || l.Price > cfg.MaxPrice {
		return false
	}
	if l.Fee > cfg.MaxFee {
		return false
	}
	return locationAllowed(l.Address, l.Town, cfg)
}

// locationAllowed checks the allow/block sets:
//
//  1. address or town hint contains a blocked neighborhood name → reject
//  2. ZIP in the block-list → reject
//  3. ZIP in the allow-list → accept
//  4. town hint matches an allowed town → accept
//  5. address text contains an allowed town name → accept
//  6. otherwise reject — the allow-list is authoritative
func locationAllowed(address, townHint string, cfg types.FilterConfig) bool {
	addr := normalize(address)
	town := normalize(townHint)

	for _, blocked := range cfg.BlockedNeighborhoods {
		b := normalize(blocked)
		if b != "" && (strings.Contains(addr, b) || (town != "" && strings.Contains(town, b))) {
			return false
		}
	}

	zip := ExtractZIP(address)
	if zip != "" {
		for _, bz := range cfg.BlockedZIPs {
			if zip == bz {
				return false
			}
		}
		for _, t := range cfg.AllowedTowns {
			for _, az := range t.ZIPs {
				if zip == az {
					return true
				}
			}
		}
	}

	for _, t := range cfg.AllowedTowns {
		name := normalize(t.Name)
		if town != "" && town == name {
			return true
		}
		if strings.Contains(addr, name) {
			return true
		}
	}

	return false
}

// ResolveTown maps a listing to the canonical allowed-town name: ZIP match
// first (most reliable), then the town hint, then address text. Returns ""
// when the listing matches no allowed town.
func ResolveTown(address, townHint string, cfg types.FilterConfig) string {
	addr := normalize(address)
	town := normalize(townHint)
	zip := ExtractZIP(address)

	if zip != "" {
		for _, t := range cfg.AllowedTowns {
			for _, az := range t.ZIPs {
				if zip == az {
					return t.Name
				}
			}
		}
	}

	for _, t := range cfg.AllowedTowns {
		if town != "" && town == normalize(t.Name) {
			return t.Name
		}
	}

	for _, t := range cfg.AllowedTowns {
		if strings.Contains(addr, normalize(t.Name)) {
			return t.Name
		}
	}

	return ""
}
