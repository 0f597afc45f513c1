package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"bfcfeed/models"
)

const defaultApifyBaseURL = "https://api.apify.com/v2"

// instagramSource reads hashtag posts from an Apify dataset kept fresh by a
// scheduled instagram-hashtag-scraper actor run. The dataset items endpoint
// paginates by offset, which the adapter normalizes into an opaque page
// token so the sync engine can treat all platforms the same.
type instagramSource struct {
	client  *Client
	token   string
	dataset string
	baseURL string
}

func newInstagramSource(opts SourceOptions) Source {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultApifyBaseURL
	}
	return &instagramSource{
		client:  opts.Client,
		token:   opts.APIKey,
		dataset: opts.Dataset,
		baseURL: baseURL,
	}
}

// Apify emits both camelCase and snake_case field names depending on actor
// version, so both are decoded and the accessors pick whichever is set.
type instagramItem struct {
	ShortCode      string  `json:"shortCode"`
	Shortcode      string  `json:"shortcode"`
	Type           string  `json:"type"`
	Caption        string  `json:"caption"`
	DisplayUrl     string  `json:"displayUrl"`
	DisplayUrlOld  string  `json:"display_url"`
	Url            string  `json:"url"`
	Timestamp      any     `json:"timestamp"`
	TakenAt        float64 `json:"taken_at_timestamp"`
	OwnerUsername  string  `json:"ownerUsername"`
	OwnerUsernameO string  `json:"owner_username"`
	LikesCount     int64   `json:"likesCount"`
	LikesCountOld  int64   `json:"likes_count"`
	CommentsCount  int64   `json:"commentsCount"`
	CommentsOld    int64   `json:"comments_count"`
}

func (i *instagramItem) Author() string {
	if i.OwnerUsername != "" {
		return i.OwnerUsername
	}
	return i.OwnerUsernameO
}

func (i *instagramItem) shortcode() string {
	if i.ShortCode != "" {
		return i.ShortCode
	}
	return i.Shortcode
}

func (i *instagramItem) displayUrl() string {
	if i.DisplayUrl != "" {
		return i.DisplayUrl
	}
	return i.DisplayUrlOld
}

type apifyErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type apifyItemsResponse struct {
	Items []*instagramItem   `json:"items"`
	Error *apifyErrorPayload `json:"error"`
}

func (s *instagramSource) Platform() models.Platform {
	return models.PlatformInstagram
}

func (s *instagramSource) Fetch(ctx context.Context, query Query) (*Page, error) {
	offset := parseOffsetToken(query.PageToken)

	params := url.Values{}
	params.Set("token", s.token)
	params.Set("limit", strconv.Itoa(query.PageSize))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("hashtag", query.Keyword)

	endpoint := fmt.Sprintf("%s/datasets/%s/items?%s", s.baseURL, s.dataset, params.Encode())

	var response apifyItemsResponse
	if err := s.client.GetJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	if response.Error != nil {
		return nil, &UpstreamError{Message: fmt.Sprintf("%s: %s", response.Error.Type, response.Error.Message)}
	}

	log.Infof("fetched %d instagram items from dataset %s at offset %d", len(response.Items), s.dataset, offset)

	page := &Page{}
	for _, item := range response.Items {
		page.Items = append(page.Items, item)
	}
	// A full page means the dataset may hold more, expose the next offset
	// as the page token
	if len(response.Items) == query.PageSize {
		page.NextPageToken = strconv.Itoa(offset + len(response.Items))
	}

	return page, nil
}

func (s *instagramSource) Map(raw RawItem) (models.Content, bool) {
	item, ok := raw.(*instagramItem)
	if !ok {
		return models.Content{}, false
	}

	shortcode := item.shortcode()
	if shortcode == "" {
		return models.Content{}, false
	}

	publishedAt, ok := parseInstagramTimestamp(item)
	if !ok {
		return models.Content{}, false
	}

	mediaUri := item.displayUrl()
	if mediaUri == "" {
		return models.Content{}, false
	}

	contentType := models.ContentTypeImage
	if strings.EqualFold(item.Type, "video") {
		contentType = models.ContentTypeVideo
	}

	originUrl := item.Url
	if originUrl == "" {
		originUrl = fmt.Sprintf("https://www.instagram.com/p/%s/", shortcode)
	}

	username := item.Author()
	if username == "" {
		username = "instagram_user"
	}

	content := models.Content{
		ExternalId:  shortcode,
		Platform:    models.PlatformInstagram,
		Type:        contentType,
		MediaUri:    mediaUri,
		OriginUrl:   originUrl,
		PublishedAt: publishedAt,
		Username:    username,
		Metadata: map[string]any{
			"shortcode": shortcode,
			"likes":     firstNonZero(item.LikesCount, item.LikesCountOld),
			"comments":  firstNonZero(item.CommentsCount, item.CommentsOld),
		},
	}

	if item.Caption != "" {
		caption := item.Caption
		content.Caption = &caption
	}

	return content, true
}

// parseInstagramTimestamp handles the two shapes the actor emits: an ISO
// 8601 string or a unix epoch number.
func parseInstagramTimestamp(item *instagramItem) (time.Time, bool) {
	switch value := item.Timestamp.(type) {
	case string:
		publishedAt, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, false
		}
		return publishedAt, true
	case float64:
		if value <= 0 {
			return time.Time{}, false
		}
		return time.Unix(int64(value), 0).UTC(), true
	}
	if item.TakenAt > 0 {
		return time.Unix(int64(item.TakenAt), 0).UTC(), true
	}
	return time.Time{}, false
}

func firstNonZero(values ...int64) int64 {
	for _, value := range values {
		if value != 0 {
			return value
		}
	}
	return 0
}

func parseOffsetToken(token string) int {
	if token == "" {
		return 0
	}
	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
