package geo

import (
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb"

	"github.com/lcolaco/placetap/internal/model"
)

func swapNominatimBase(t *testing.T, url string) {
	t.Helper()
	old := nominatimBase
	nominatimBase = url
	t.Cleanup(func() { nominatimBase = old })
}

func TestGeocode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "New York" {
			t.Errorf("q = %q", q)
		}
		fmt.Fprint(w, `[{"lat":"40.7128","lon":"-74.0060","display_name":"New York, USA"}]`)
	}))
	defer ts.Close()
	swapNominatimBase(t, ts.URL)

	p, err := Geocode("New York")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if math.Abs(p.Lat()-40.7128) > 1e-9 || math.Abs(p.Lon()+74.0060) > 1e-9 {
		t.Errorf("point = %v", p)
	}
}

func TestGeocodeNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer ts.Close()
	swapNominatimBase(t, ts.URL)

	if _, err := Geocode("Nowhereville-x"); err == nil {
		t.Fatal("expected error for empty result")
	}
}

func TestGeocodeStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()
	swapNominatimBase(t, ts.URL)

	if _, err := Geocode("New York"); err == nil {
		t.Fatal("expected error for non-200")
	}
}

func TestDistance(t *testing.T) {
	center := orb.Point{-74.0060, 40.7128}

	// One degree of latitude is about 111 km.
	b := model.Business{Lat: 41.7128, Lng: -74.0060}
	d := Distance(center, b)
	if math.Abs(d-111000) > 1000 {
		t.Errorf("Distance = %v, want ~111000", d)
	}

	// Zero coordinates mean the API sent none.
	if d := Distance(center, model.Business{}); d != 0 {
		t.Errorf("Distance = %v, want 0 for missing coordinates", d)
	}
}
