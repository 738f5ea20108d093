// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/listing-finder/pkg/types"
)

// The GIS payload wraps many scalar fields as {"value": X}, and some
// fields appear bare in older payload versions. A wrapper object without
// a "value" key (the {"level": N} shape) counts as missing.

// gisInt decodes a bare-or-wrapped numeric field. String renditions such
// as "$450,000" are normalized.
type gisInt struct {
	Val int
	OK  bool
}

func (g *gisInt) UnmarshalJSON(data []byte) error {
	data = unwrapValue(data)
	if data == nil {
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		g.Val = int(math.Round(n))
		g.OK = true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
		if v, err := strconv.Atoi(s); err == nil {
			g.Val = v
			g.OK = true
		}
	}
	return nil
}

// gisString decodes a bare-or-wrapped string field.
type gisString struct {
	Val string
}

func (g *gisString) UnmarshalJSON(data []byte) error {
	data = unwrapValue(data)
	if data == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		g.Val = s
	}
	return nil
}

// gisLatLong decodes the location block, wrapped or direct.
type gisLatLong struct {
	Lat float64
	Lng float64
	OK  bool
}

func (g *gisLatLong) UnmarshalJSON(data []byte) error {
	var loc struct {
		Value *struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"value"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil
	}

	lat, lng := loc.Latitude, loc.Longitude
	if loc.Value != nil {
		lat, lng = loc.Value.Latitude, loc.Value.Longitude
	}
	if lat == nil || lng == nil {
		return nil
	}
	g.Lat, g.Lng, g.OK = *lat, *lng, true
	return nil
}

// unwrapValue strips the {"value": X} wrapper when present. It returns
// nil when the field is a wrapper object with no usable value.
func unwrapValue(data []byte) []byte {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if !strings.HasPrefix(trimmed, "{") {
		return data
	}

	var wrap struct {
		Value *json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &wrap); err != nil || wrap.Value == nil {
		return nil
	}
	return *wrap.Value
}

// gisHome is one entry of the payload's homes array.
type gisHome struct {
	PropertyID    json.Number `json:"propertyId"`
	Price         gisInt      `json:"price"`
	HOA           gisInt      `json:"hoa"`
	Beds          gisInt      `json:"beds"`
	Baths         gisInt      `json:"baths"`
	SqFt          gisInt      `json:"sqFt"`
	StreetLine    gisString   `json:"streetLine"`
	City          gisString   `json:"city"`
	State         gisString   `json:"state"`
	Zip           gisString   `json:"zip"`
	URL           gisString   `json:"url"`
	LatLong       gisLatLong  `json:"latLong"`
	ParkingSpaces gisInt      `json:"skParkingSpaces"`
}

type gisResponse struct {
	Payload struct {
		Homes []gisHome `json:"homes"`
	} `json:"payload"`
}

const jsonPrefix = "{}&&"

// parsePayload strips the endpoint's anti-hijacking prefix and decodes
// the homes array.
func parsePayload(body []byte) ([]gisHome, error) {
	text := strings.TrimPrefix(string(body), jsonPrefix)

	var resp gisResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("parsing GIS payload: %w", err)
	}
	return resp.Payload.Homes, nil
}

// mapHome converts one GIS home record into a listing. Records without a
// property ID or asking price carry nothing worth evaluating and are
// dropped.
func mapHome(h gisHome, town, siteBase string) (types.Listing, bool) {
	id := h.PropertyID.String()
	if id == "" || id == "0" || !h.Price.OK {
		return types.Listing{}, false
	}

	l := types.Listing{
		ID:      id,
		Address: buildAddress(h),
		Town:    town,
		Price:   h.Price.Val,
		Parking: "Unknown",
	}

	if h.URL.Val != "" {
		l.URL = siteBase + h.URL.Val
	}
	if h.HOA.OK {
		l.Fee = h.HOA.Val
	}
	if h.Beds.OK {
		v := h.Beds.Val
		l.Beds = &v
	}
	if h.Baths.OK {
		v := h.Baths.Val
		l.Baths = &v
	}
	if h.SqFt.OK {
		v := h.SqFt.Val
		l.Sqft = &v
	}
	if h.ParkingSpaces.OK {
		n := h.ParkingSpaces.Val
		if n == 1 {
			l.Parking = "1 space"
		} else {
			l.Parking = fmt.Sprintf("%d spaces", n)
		}
	}
	if h.LatLong.OK {
		l.Coordinate = &types.Coordinate{Lat: h.LatLong.Lat, Lng: h.LatLong.Lng}
	}
	return l, true
}

func buildAddress(h gisHome) string {
	var parts []string
	if h.StreetLine.Val != "" {
		parts = append(parts, h.StreetLine.Val)
	}
	if h.City.Val != "" {
		parts = append(parts, h.City.Val)
	}
	tail := strings.TrimSpace(h.State.Val + " " + h.Zip.Val)
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}
