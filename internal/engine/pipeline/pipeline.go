// Package pipeline runs the fetch → enrich → harvest → aggregate flow.
package pipeline

import (
	"context"
	"errors"
	"log"
	"sync/atomic"

	"github.com/paulmach/orb"

	"github.com/lcolaco/placetap/internal/engine/geo"
	"github.com/lcolaco/placetap/internal/engine/harvest"
	"github.com/lcolaco/placetap/internal/engine/places"
	"github.com/lcolaco/placetap/internal/engine/storage"
	"github.com/lcolaco/placetap/internal/model"
)

// Stats tracks run progress. Fields are atomic so a TUI goroutine can read
// them while the pipeline runs.
type Stats struct {
	HitsFound     atomic.Int64
	Processed     atomic.Int64
	DetailsErrors atomic.Int64
	EmailsFound   atomic.Int64
	Stored        atomic.Int64
	SearchStopped atomic.Bool // search ended on a non-200 status
}

// EmailFinder is what the pipeline needs from the harvester.
type EmailFinder interface {
	Emails(pageURL string) string
}

// PlacesAPI is what the pipeline needs from the search client.
type PlacesAPI interface {
	TextSearch(ctx context.Context, query string, radius int) ([]places.Hit, error)
	Details(ctx context.Context, placeID string) (website, phone string, err error)
}

// RunOptions provides optional hooks for the pipeline.
type RunOptions struct {
	// OnBusiness is called for each assembled record, in order. Used by
	// the TUI to render results as they arrive.
	OnBusiness func(model.Business)
	// Stats allows passing an external Stats object for live progress.
	// If nil, Run creates its own.
	Stats *Stats
	// Harvester overrides the default website harvester (tests).
	Harvester EmailFinder
	// Client overrides the default places client (tests).
	Client PlacesAPI
	// Geocode overrides the default geocoder (tests). Returning an error
	// is fine: distance annotation is skipped, nothing else changes.
	Geocode func(location string) (orb.Point, error)
}

// Run executes one sequential pipeline pass: text search with pagination,
// a details lookup per hit, an optional email harvest per website, and a
// batch insert into the store. Requests happen strictly one at a time.
//
// Upstream failures stay contained: a non-200 search response ends
// pagination but the hits collected so far are still processed; a failed
// details lookup yields placeholder contact fields for that hit only.
// Run returns an error only for cancellation or a storage fault.
func Run(ctx context.Context, params model.SearchParams, store *storage.Store, logger *log.Logger, opts *RunOptions) ([]model.Business, error) {
	if opts == nil {
		opts = &RunOptions{}
	}

	stats := opts.Stats
	if stats == nil {
		stats = &Stats{}
	}

	var harvester EmailFinder = opts.Harvester
	if harvester == nil && params.HarvestEmails {
		harvester = harvest.New()
	}

	geocode := opts.Geocode
	if geocode == nil {
		geocode = geo.Geocode
	}

	params.Normalize()
	query := params.Query()

	center, centerErr := geocode(params.Location)
	if centerErr != nil {
		logger.Printf("GEOCODE_SKIP location=%q err=%v", params.Location, centerErr)
	}

	var client PlacesAPI = opts.Client
	if client == nil {
		client = places.NewClient(params.APIKey)
	}

	hits, err := client.TextSearch(ctx, query, params.Radius)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		var se *places.StatusError
		if errors.As(err, &se) {
			logger.Printf("SEARCH_STOP status=%d query=%q hits=%d", se.StatusCode, query, len(hits))
		} else {
			logger.Printf("SEARCH_STOP query=%q hits=%d err=%v", query, len(hits), err)
		}
		stats.SearchStopped.Store(true)
	}
	stats.HitsFound.Store(int64(len(hits)))

	var businesses []model.Business
	for _, hit := range hits {
		select {
		case <-ctx.Done():
			return businesses, ctx.Err()
		default:
		}

		website, phone, derr := client.Details(ctx, hit.PlaceID)
		if derr != nil {
			if errors.Is(derr, context.Canceled) {
				return businesses, derr
			}
			logger.Printf("DETAILS_FALLBACK place_id=%s err=%v", hit.PlaceID, derr)
			stats.DetailsErrors.Add(1)
			website, phone = "", ""
		}

		email := ""
		if derr == nil && params.HarvestEmails && website != "" {
			email = harvester.Emails(website)
			if email != model.NoEmail {
				stats.EmailsFound.Add(1)
			}
		}

		b := model.NewBusiness(hit.Name, hit.Address, website, phone, email)
		b.PlaceID = hit.PlaceID
		b.Lat = hit.Lat
		b.Lng = hit.Lng
		b.Query = query
		if centerErr == nil {
			b.DistanceM = geo.Distance(center, b)
		}

		businesses = append(businesses, b)
		stats.Processed.Add(1)

		if opts.OnBusiness != nil {
			opts.OnBusiness(b)
		}
	}

	if store != nil && len(businesses) > 0 {
		inserted, serr := store.InsertBatch(businesses)
		if serr != nil {
			return businesses, serr
		}
		stats.Stored.Add(int64(inserted))
	}

	return businesses, nil
}
