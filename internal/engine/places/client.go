// Package places wraps the Google Places text-search and details endpoints.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Endpoint bases are vars so tests can substitute an httptest server.
var (
	textSearchBase = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	detailsBase    = "https://maps.googleapis.com/maps/api/place/details/json"
)

// pageTokenDelay is how long a next_page_token needs before it becomes
// valid upstream. Shortened in tests.
var pageTokenDelay = 2 * time.Second

// detailsFields limits the details payload to what the pipeline uses.
const detailsFields = "name,website,formatted_phone_number"

// StatusError indicates a non-200 response from the API.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// Hit is one raw text-search result.
type Hit struct {
	Name    string
	Address string
	PlaceID string
	Lat     float64
	Lng     float64
}

type Client struct {
	http *http.Client
	key  string
}

// NewClient returns a Places client. No client timeout is set: search and
// details calls wait on the upstream for as long as it takes.
func NewClient(key string) *Client {
	return &Client{
		http: &http.Client{},
		key:  key,
	}
}

// TextSearch runs a paginated text search and returns all hits in page
// order. Pagination follows next_page_token until the API stops returning
// one, sleeping between pages because a fresh token is not valid
// immediately. A non-200 response ends pagination; hits collected so far
// are returned alongside the error, not discarded.
func (c *Client) TextSearch(ctx context.Context, query string, radius int) ([]Hit, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.key)
	params.Set("radius", strconv.Itoa(radius))

	var hits []Hit
	for {
		var page textSearchResponse
		if err := c.getJSON(ctx, textSearchBase+"?"+params.Encode(), &page); err != nil {
			return hits, err
		}

		for _, r := range page.Results {
			hits = append(hits, Hit{
				Name:    r.Name,
				Address: r.FormattedAddress,
				PlaceID: r.PlaceID,
				Lat:     r.Geometry.Location.Lat,
				Lng:     r.Geometry.Location.Lng,
			})
		}

		if page.NextPageToken == "" {
			return hits, nil
		}
		params.Set("pagetoken", page.NextPageToken)

		select {
		case <-time.After(pageTokenDelay):
		case <-ctx.Done():
			return hits, ctx.Err()
		}
	}
}

// Details looks up the website and phone for one place. A failure of any
// kind comes back as empty values plus the error; the caller substitutes
// placeholders and keeps going.
func (c *Client) Details(ctx context.Context, placeID string) (website, phone string, err error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)
	params.Set("key", c.key)

	var resp detailsResponse
	if err := c.getJSON(ctx, detailsBase+"?"+params.Encode(), &resp); err != nil {
		return "", "", err
	}
	return resp.Result.Website, resp.Result.FormattedPhoneNumber, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Google Places API JSON structures. Only the fields the pipeline reads.
type textSearchResponse struct {
	Results       []searchResult `json:"results"`
	NextPageToken string         `json:"next_page_token"`
	Status        string         `json:"status"`
}

type searchResult struct {
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
	PlaceID          string `json:"place_id"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type detailsResponse struct {
	Result struct {
		Name                 string `json:"name"`
		Website              string `json:"website"`
		FormattedPhoneNumber string `json:"formatted_phone_number"`
	} `json:"result"`
	Status string `json:"status"`
}
