package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bfcfeed/db"
	"bfcfeed/feeds"
	"bfcfeed/models"
	"bfcfeed/server"
)

func newTestApp(t *testing.T, contents []models.Content) *fiber.App {
	t.Helper()
	database := filepath.Join(t.TempDir(), "feed.db")
	require.NoError(t, db.Migrate(database))

	writer, err := db.NewWriter(database)
	require.NoError(t, err)
	defer writer.Close()
	if len(contents) > 0 {
		_, err = writer.UpsertContents(context.Background(), contents)
		require.NoError(t, err)
	}

	reader, err := db.NewReader(database)
	require.NoError(t, err)
	t.Cleanup(func() { reader.Close() })

	return server.Server(&server.ServerConfig{
		Reader: reader,
		Feeds:  feeds.NewService(reader),
	})
}

func seedContents(count int, platform models.Platform) []models.Content {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	contents := make([]models.Content, 0, count)
	for i := 0; i < count; i++ {
		title := fmt.Sprintf("post %d", i)
		contents = append(contents, models.Content{
			ExternalId:  fmt.Sprintf("%s-%02d", platform, i),
			Platform:    platform,
			Type:        models.ContentTypeImage,
			Title:       &title,
			MediaUri:    "https://cdn.example.com/x.jpg",
			OriginUrl:   "https://example.com/p/x",
			PublishedAt: base.Add(time.Duration(i) * time.Minute),
			Username:    "부천FC1995",
		})
	}
	return contents
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, nil)

	res, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
}

func TestGetFeed(t *testing.T) {
	app := newTestApp(t, seedContents(12, models.PlatformInstagram))

	res, err := app.Test(httptest.NewRequest("GET", "/api/feed?page=1&limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var feed models.FeedResponse
	require.NoError(t, json.Unmarshal(body, &feed))

	assert.Len(t, feed.Items, 5)
	assert.Equal(t, int64(12), feed.Meta.Total)
	assert.Equal(t, int64(3), feed.Meta.TotalPages)

	// Newest first
	assert.Equal(t, "INSTA-11", feed.Items[0].ExternalId)
}

func TestGetFeedPlatformFilter(t *testing.T) {
	contents := append(seedContents(4, models.PlatformYouTube), seedContents(6, models.PlatformInstagram)...)
	app := newTestApp(t, contents)

	res, err := app.Test(httptest.NewRequest("GET", "/api/feed?platform=YOUTUBE", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)

	var feed models.FeedResponse
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &feed))

	assert.Equal(t, int64(4), feed.Meta.Total)
	for _, item := range feed.Items {
		assert.Equal(t, models.PlatformYouTube, item.Platform)
	}
}

func TestGetFeedInvalidPlatform(t *testing.T) {
	app := newTestApp(t, nil)

	res, err := app.Test(httptest.NewRequest("GET", "/api/feed?platform=TIKTOK", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, res.StatusCode)
}

func TestGetFeedBadParametersFallBack(t *testing.T) {
	app := newTestApp(t, seedContents(3, models.PlatformInstagram))

	// Unparseable page and limit fall back to defaults instead of erroring
	res, err := app.Test(httptest.NewRequest("GET", "/api/feed?page=abc&limit=-5", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)

	var feed models.FeedResponse
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &feed))

	assert.Equal(t, 1, feed.Meta.Page)
	assert.Equal(t, feeds.DefaultLimit, feed.Meta.Limit)
}

func TestGetFeedEmptyStore(t *testing.T) {
	app := newTestApp(t, nil)

	res, err := app.Test(httptest.NewRequest("GET", "/api/feed", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"items":[]`)
}

func TestGetContentsPerTime(t *testing.T) {
	app := newTestApp(t, seedContents(5, models.PlatformYouTube))

	res, err := app.Test(httptest.NewRequest("GET", "/api/stats/contents-per-time?time=day", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)

	var counts []models.ContentsAggregatedByTime
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &counts))

	require.Len(t, counts, 1)
	assert.Equal(t, int64(5), counts[0].Count)
}

func TestGetContentsPerTimeInvalidTime(t *testing.T) {
	app := newTestApp(t, nil)

	res, err := app.Test(httptest.NewRequest("GET", "/api/stats/contents-per-time?time=month", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, res.StatusCode)
}
