package models

import "time"

// Platform identifies the upstream service a piece of content was scraped from.
type Platform string

const (
	PlatformInstagram Platform = "INSTA"
	PlatformYouTube   Platform = "YOUTUBE"
)

// Valid reports whether the platform is one we know how to scrape.
func (p Platform) Valid() bool {
	return p == PlatformInstagram || p == PlatformYouTube
}

// ContentType describes the kind of media behind a content record. It is
// informational only, the feed treats all kinds the same.
type ContentType string

const (
	ContentTypeVideo ContentType = "VIDEO"
	ContentTypeImage ContentType = "IMAGE"
)

// Content is the canonical record every scraped post is normalized into,
// one row per (platform, external_id).
type Content struct {
	Id          int64          `json:"id"`
	ExternalId  string         `json:"external_id"`
	Platform    Platform       `json:"platform"`
	Type        ContentType    `json:"type"`
	Title       *string        `json:"title,omitempty"`
	Caption     *string        `json:"caption,omitempty"`
	MediaUri    string         `json:"media_uri"`
	OriginUrl   string         `json:"origin_url"`
	PublishedAt time.Time      `json:"published_at"`
	Username    string         `json:"username"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// FeedMeta describes the pagination state of a feed response.
type FeedMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// FeedResponse is the shape consumed by the web frontend.
type FeedResponse struct {
	Items []Content `json:"items"`
	Meta  FeedMeta  `json:"meta"`
}

// SyncReport summarizes one sync run.
type SyncReport struct {
	Candidates int `json:"candidates"`
	Synced     int `json:"synced"`
	Inserted   int `json:"inserted"`
	Updated    int `json:"updated"`
}

type ContentsAggregatedByTime struct {
	Time  time.Time `json:"time"`
	Count int64     `json:"count"`
}
