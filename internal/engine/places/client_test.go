package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func shortenPageTokenDelay(t *testing.T) {
	t.Helper()
	old := pageTokenDelay
	pageTokenDelay = time.Millisecond
	t.Cleanup(func() { pageTokenDelay = old })
}

func swapSearchBase(t *testing.T, url string) {
	t.Helper()
	old := textSearchBase
	textSearchBase = url
	t.Cleanup(func() { textSearchBase = old })
}

func swapDetailsBase(t *testing.T, url string) {
	t.Helper()
	old := detailsBase
	detailsBase = url
	t.Cleanup(func() { detailsBase = old })
}

func searchPage(names []string, token string) string {
	type loc struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	type result struct {
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		PlaceID          string `json:"place_id"`
		Geometry         struct {
			Location loc `json:"location"`
		} `json:"geometry"`
	}
	page := struct {
		Results       []result `json:"results"`
		NextPageToken string   `json:"next_page_token,omitempty"`
		Status        string   `json:"status"`
	}{Status: "OK", NextPageToken: token}

	for i, n := range names {
		r := result{
			Name:             n,
			FormattedAddress: n + " street",
			PlaceID:          "pid-" + n,
		}
		r.Geometry.Location = loc{Lat: 40.7 + float64(i)*0.01, Lng: -74.0}
		page.Results = append(page.Results, r)
	}
	data, _ := json.Marshal(page)
	return string(data)
}

func TestTextSearchPagination(t *testing.T) {
	shortenPageTokenDelay(t)

	pages := map[string]string{
		"":     searchPage([]string{"A", "B"}, "tok2"),
		"tok2": searchPage([]string{"C"}, "tok3"),
		"tok3": searchPage([]string{"D"}, ""),
	}

	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		q := r.URL.Query()
		if q.Get("query") != "restaurants in New York" {
			t.Errorf("query param = %q", q.Get("query"))
		}
		if q.Get("key") != "test-key" {
			t.Errorf("key param = %q", q.Get("key"))
		}
		if q.Get("radius") != "5000" {
			t.Errorf("radius param = %q", q.Get("radius"))
		}
		body, ok := pages[q.Get("pagetoken")]
		if !ok {
			t.Errorf("unexpected pagetoken %q", q.Get("pagetoken"))
			body = searchPage(nil, "")
		}
		fmt.Fprint(w, body)
	}))
	defer ts.Close()
	swapSearchBase(t, ts.URL)

	c := NewClient("test-key")
	hits, err := c.TextSearch(context.Background(), "restaurants in New York", 5000)
	if err != nil {
		t.Fatalf("TextSearch: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	wantNames := []string{"A", "B", "C", "D"}
	if len(hits) != len(wantNames) {
		t.Fatalf("len(hits) = %d, want %d", len(hits), len(wantNames))
	}
	for i, want := range wantNames {
		if hits[i].Name != want {
			t.Errorf("hits[%d].Name = %q, want %q", i, hits[i].Name, want)
		}
		if hits[i].PlaceID != "pid-"+want {
			t.Errorf("hits[%d].PlaceID = %q", i, hits[i].PlaceID)
		}
		if hits[i].Address != want+" street" {
			t.Errorf("hits[%d].Address = %q", i, hits[i].Address)
		}
	}
	if hits[0].Lat == 0 || hits[0].Lng == 0 {
		t.Errorf("hits[0] coordinates = (%v, %v), want non-zero", hits[0].Lat, hits[0].Lng)
	}
}

func TestTextSearchKeepsPartialOnStatusError(t *testing.T) {
	shortenPageTokenDelay(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pagetoken") == "" {
			fmt.Fprint(w, searchPage([]string{"A", "B"}, "tok2"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()
	swapSearchBase(t, ts.URL)

	c := NewClient("test-key")
	hits, err := c.TextSearch(context.Background(), "cafes in Madrid", 2000)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", se.StatusCode)
	}
	// First page survives the failed second page.
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].Name != "A" || hits[1].Name != "B" {
		t.Errorf("hits = %v", hits)
	}
}

func TestTextSearchSinglePage(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, searchPage([]string{"Only"}, ""))
	}))
	defer ts.Close()
	swapSearchBase(t, ts.URL)

	c := NewClient("k")
	hits, err := c.TextSearch(context.Background(), "bars in Lisbon", 5000)
	if err != nil {
		t.Fatalf("TextSearch: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no token, no second request)", calls)
	}
	if len(hits) != 1 || hits[0].Name != "Only" {
		t.Errorf("hits = %v", hits)
	}
}

func TestDetails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("place_id") != "pid-1" {
			t.Errorf("place_id = %q", q.Get("place_id"))
		}
		if q.Get("fields") != "name,website,formatted_phone_number" {
			t.Errorf("fields = %q", q.Get("fields"))
		}
		fmt.Fprint(w, `{"result":{"name":"A","website":"https://a.example","formatted_phone_number":"(212) 555-0100"},"status":"OK"}`)
	}))
	defer ts.Close()
	swapDetailsBase(t, ts.URL)

	c := NewClient("k")
	website, phone, err := c.Details(context.Background(), "pid-1")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if website != "https://a.example" {
		t.Errorf("website = %q", website)
	}
	if phone != "(212) 555-0100" {
		t.Errorf("phone = %q", phone)
	}
}

func TestDetailsMissingFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":{"name":"A"},"status":"OK"}`)
	}))
	defer ts.Close()
	swapDetailsBase(t, ts.URL)

	c := NewClient("k")
	website, phone, err := c.Details(context.Background(), "pid-1")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if website != "" || phone != "" {
		t.Errorf("website, phone = %q, %q, want empty", website, phone)
	}
}

func TestDetailsStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()
	swapDetailsBase(t, ts.URL)

	c := NewClient("k")
	website, phone, err := c.Details(context.Background(), "pid-1")

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", se.StatusCode)
	}
	if website != "" || phone != "" {
		t.Errorf("website, phone = %q, %q, want empty", website, phone)
	}
}
