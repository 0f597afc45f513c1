package scraper

import (
	"context"
	"fmt"
	"time"

	"bfcfeed/models"
)

// Query describes one search against a platform API.
type Query struct {
	Keyword        string
	PageSize       int
	PageToken      string
	Order          string
	PublishedAfter time.Time
}

// RawItem is a single undecoded platform item. The author is exposed before
// normalization so the exclusion filter can gate items on the raw shape,
// author field names differ per platform.
type RawItem interface {
	Author() string
}

// Page is one page of raw platform items. NextPageToken is empty when the
// upstream has no more results.
type Page struct {
	Items         []RawItem
	NextPageToken string
}

// Source is one scrapeable platform: it fetches raw pages and maps raw
// items into canonical content records.
type Source interface {
	Platform() models.Platform
	Fetch(ctx context.Context, query Query) (*Page, error)
	// Map normalizes one raw item. ok is false when the item lacks a
	// required field and must be skipped whole.
	Map(item RawItem) (content models.Content, ok bool)
}

// SourceOptions carries credentials and endpoint overrides for a Source.
type SourceOptions struct {
	// APIKey is the YouTube Data API key or the Apify token
	APIKey string
	// Dataset is the Apify dataset holding scraped Instagram posts
	Dataset string
	// BaseURL overrides the platform endpoint, used by tests
	BaseURL string
	Client  *Client
}

// Sources are registered per platform so adding one is a localized change.
var sourceFactories = map[models.Platform]func(opts SourceOptions) Source{
	models.PlatformYouTube:   newYouTubeSource,
	models.PlatformInstagram: newInstagramSource,
}

// NewSource builds the Source for a platform.
func NewSource(platform models.Platform, opts SourceOptions) (Source, error) {
	factory, ok := sourceFactories[platform]
	if !ok {
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}
	if opts.Client == nil {
		opts.Client = NewClient()
	}
	return factory(opts), nil
}
