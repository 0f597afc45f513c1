package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"bfcfeed/models"
)

const defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// Thumbnail variants by decreasing quality, the mapper picks the first one
// the item actually has.
var youtubeThumbnailPreference = []string{"maxres", "standard", "high", "medium", "default"}

type youtubeSource struct {
	client  *Client
	apiKey  string
	baseURL string
}

func newYouTubeSource(opts SourceOptions) Source {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultYouTubeBaseURL
	}
	return &youtubeSource{
		client:  opts.Client,
		apiKey:  opts.APIKey,
		baseURL: baseURL,
	}
}

type youtubeThumbnail struct {
	Url    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type youtubeSnippet struct {
	PublishedAt  string                      `json:"publishedAt"`
	ChannelId    string                      `json:"channelId"`
	Title        string                      `json:"title"`
	Description  string                      `json:"description"`
	ChannelTitle string                      `json:"channelTitle"`
	Thumbnails   map[string]youtubeThumbnail `json:"thumbnails"`
}

type youtubeItem struct {
	Id struct {
		VideoId string `json:"videoId"`
	} `json:"id"`
	Snippet youtubeSnippet `json:"snippet"`
}

func (i *youtubeItem) Author() string {
	return i.Snippet.ChannelTitle
}

type youtubeErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type youtubeSearchResponse struct {
	Items         []*youtubeItem       `json:"items"`
	NextPageToken string               `json:"nextPageToken"`
	Error         *youtubeErrorPayload `json:"error"`
}

func (s *youtubeSource) Platform() models.Platform {
	return models.PlatformYouTube
}

func (s *youtubeSource) Fetch(ctx context.Context, query Query) (*Page, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query.Keyword)
	params.Set("maxResults", strconv.Itoa(query.PageSize))
	params.Set("type", "video")
	params.Set("key", s.apiKey)
	if query.Order != "" {
		params.Set("order", query.Order)
	}
	if !query.PublishedAfter.IsZero() {
		params.Set("publishedAfter", query.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if query.PageToken != "" {
		params.Set("pageToken", query.PageToken)
	}

	var response youtubeSearchResponse
	if err := s.client.GetJSON(ctx, s.baseURL+"/search?"+params.Encode(), &response); err != nil {
		return nil, err
	}

	if response.Error != nil {
		return nil, &UpstreamError{Code: response.Error.Code, Message: response.Error.Message}
	}

	page := &Page{NextPageToken: response.NextPageToken}
	for _, item := range response.Items {
		page.Items = append(page.Items, item)
	}

	return page, nil
}

func (s *youtubeSource) Map(raw RawItem) (models.Content, bool) {
	item, ok := raw.(*youtubeItem)
	if !ok {
		return models.Content{}, false
	}

	videoId := item.Id.VideoId
	if videoId == "" {
		return models.Content{}, false
	}

	publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	if err != nil {
		return models.Content{}, false
	}

	mediaUri := bestYouTubeThumbnail(item.Snippet.Thumbnails)
	if mediaUri == "" {
		return models.Content{}, false
	}

	content := models.Content{
		ExternalId:  videoId,
		Platform:    models.PlatformYouTube,
		Type:        models.ContentTypeVideo,
		MediaUri:    mediaUri,
		OriginUrl:   fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoId),
		PublishedAt: publishedAt,
		Username:    item.Snippet.ChannelTitle,
		Metadata: map[string]any{
			"channel_id": item.Snippet.ChannelId,
			"videoId":    videoId,
		},
	}

	if item.Snippet.Title != "" {
		title := item.Snippet.Title
		content.Title = &title
	}
	if item.Snippet.Description != "" {
		caption := item.Snippet.Description
		content.Caption = &caption
	}

	return content, true
}

func bestYouTubeThumbnail(thumbnails map[string]youtubeThumbnail) string {
	for _, quality := range youtubeThumbnailPreference {
		if thumbnail, ok := thumbnails[quality]; ok && thumbnail.Url != "" {
			return thumbnail.Url
		}
	}
	return ""
}
