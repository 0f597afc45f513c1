package feeds_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bfcfeed/db"
	"bfcfeed/feeds"
	"bfcfeed/models"
)

func newTestService(t *testing.T, contents []models.Content) *feeds.Service {
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

	return feeds.NewService(reader)
}

func seedContents(count int, platform models.Platform) []models.Content {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	contents := make([]models.Content, 0, count)
	for i := 0; i < count; i++ {
		contents = append(contents, models.Content{
			ExternalId:  fmt.Sprintf("%s-%02d", platform, i),
			Platform:    platform,
			Type:        models.ContentTypeImage,
			MediaUri:    "https://cdn.example.com/x.jpg",
			OriginUrl:   "https://example.com/p/x",
			PublishedAt: base.Add(time.Duration(i) * time.Minute),
			Username:    "부천FC1995",
		})
	}
	return contents
}

func TestGetFeedComputesTotalPages(t *testing.T) {
	service := newTestService(t, seedContents(12, models.PlatformInstagram))

	response, err := service.GetFeed(1, 5, "")
	require.NoError(t, err)

	assert.Len(t, response.Items, 5)
	assert.Equal(t, int64(12), response.Meta.Total)
	assert.Equal(t, 1, response.Meta.Page)
	assert.Equal(t, 5, response.Meta.Limit)
	// 12 items in pages of 5 rounds up to 3 pages
	assert.Equal(t, int64(3), response.Meta.TotalPages)
}

func TestGetFeedEmptyStore(t *testing.T) {
	service := newTestService(t, nil)

	response, err := service.GetFeed(1, 20, "")
	require.NoError(t, err)

	// Empty feed serializes as [] rather than null
	assert.NotNil(t, response.Items)
	assert.Len(t, response.Items, 0)
	assert.Equal(t, int64(0), response.Meta.Total)
	assert.Equal(t, int64(0), response.Meta.TotalPages)
}

func TestGetFeedClampsParameters(t *testing.T) {
	service := newTestService(t, seedContents(3, models.PlatformYouTube))

	response, err := service.GetFeed(0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, response.Meta.Page)
	assert.Equal(t, feeds.DefaultLimit, response.Meta.Limit)

	response, err = service.GetFeed(1, 5000, "")
	require.NoError(t, err)
	assert.Equal(t, feeds.MaxLimit, response.Meta.Limit)
}

func TestGetFeedPlatformFilter(t *testing.T) {
	contents := append(seedContents(4, models.PlatformYouTube), seedContents(6, models.PlatformInstagram)...)
	service := newTestService(t, contents)

	response, err := service.GetFeed(1, 20, models.PlatformYouTube)
	require.NoError(t, err)

	assert.Len(t, response.Items, 4)
	assert.Equal(t, int64(4), response.Meta.Total)
	for _, item := range response.Items {
		assert.Equal(t, models.PlatformYouTube, item.Platform)
	}
}

func TestGetFeedStoreFailure(t *testing.T) {
	database := filepath.Join(t.TempDir(), "feed.db")
	require.NoError(t, db.Migrate(database))

	reader, err := db.NewReader(database)
	require.NoError(t, err)
	require.NoError(t, reader.Close())

	service := feeds.NewService(reader)
	_, err = service.GetFeed(1, 20, "")

	// The store detail stays out of the returned error
	require.ErrorIs(t, err, feeds.ErrQueryFailed)
	assert.Equal(t, "feed query failed", err.Error())
}

func TestGetFeedPageBeyondEnd(t *testing.T) {
	service := newTestService(t, seedContents(3, models.PlatformInstagram))

	response, err := service.GetFeed(5, 20, "")
	require.NoError(t, err)

	assert.NotNil(t, response.Items)
	assert.Len(t, response.Items, 0)
	assert.Equal(t, int64(3), response.Meta.Total)
}
