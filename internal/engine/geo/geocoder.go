// Package geo resolves a free-form location string to a map point and
// annotates businesses with their distance from the search center.
package geo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/lcolaco/placetap/internal/model"
)

// nominatimBase is a var so tests can substitute an httptest server.
var nominatimBase = "https://nominatim.openstreetmap.org/search"

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode returns the center point for a location string using the OSM
// Nominatim API. Points are orb's lng/lat order.
func Geocode(location string) (orb.Point, error) {
	u := nominatimBase + "?" + url.Values{
		"q":      {location},
		"format": {"json"},
		"limit":  {"1"},
	}.Encode()

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return orb.Point{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "placetap/0.1 (business directory scraper)")

	resp, err := client.Do(req)
	if err != nil {
		return orb.Point{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return orb.Point{}, fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return orb.Point{}, fmt.Errorf("decoding geocoding response: %w", err)
	}

	if len(results) == 0 {
		return orb.Point{}, fmt.Errorf("location %q not found", location)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid latitude from geocoder: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid longitude from geocoder: %w", err)
	}

	return orb.Point{lng, lat}, nil
}

// Distance returns the great-circle distance in meters between the search
// center and a business's coordinates. Zero coordinates mean the API sent
// none; no distance is reported for those.
func Distance(center orb.Point, b model.Business) float64 {
	if b.Lat == 0 && b.Lng == 0 {
		return 0
	}
	return orbgeo.DistanceHaversine(center, orb.Point{b.Lng, b.Lat})
}
