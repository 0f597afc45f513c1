// Package feeds implements the feed query service consumed by the web
// frontend: paginated, filtered, sorted read access over stored contents.
package feeds

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"bfcfeed/db"
	"bfcfeed/models"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrQueryFailed is what callers see when the store misbehaves. Store
// details stay in the logs, never in the response.
var ErrQueryFailed = errors.New("feed query failed")

type Service struct {
	reader *db.Reader
}

func NewService(reader *db.Reader) *Service {
	return &Service{reader: reader}
}

// GetFeed returns one page of the feed, newest first, optionally restricted
// to a single platform. meta.total is counted independently of the page
// query so it holds for the whole matching set.
func (s *Service) GetFeed(page int, limit int, platform models.Platform) (*models.FeedResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	items, err := s.reader.GetFeed(platform, page, limit)
	if err != nil {
		log.WithFields(log.Fields{
			"page":     page,
			"limit":    limit,
			"platform": platform,
		}).WithError(err).Error("Error getting feed")
		return nil, ErrQueryFailed
	}

	total, err := s.reader.CountContents(platform)
	if err != nil {
		log.WithField("platform", platform).WithError(err).Error("Error counting contents")
		return nil, ErrQueryFailed
	}

	if items == nil {
		items = []models.Content{}
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return &models.FeedResponse{
		Items: items,
		Meta: models.FeedMeta{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}, nil
}
