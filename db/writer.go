package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"bfcfeed/models"
)

// Writer owns the single write connection to the database. Sync runs and
// maintenance jobs go through it; the web tier uses Reader instead.
type Writer struct {
	db *sql.DB
}

func NewWriter(database string) (*Writer, error) {
	db, err := connection(database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return &Writer{db: db}, nil
}

func (writer *Writer) Close() error {
	return writer.db.Close()
}

// UpsertContents writes the batch keyed by (platform, external_id): unseen
// records are inserted, known records have every field replaced. updated_at
// is refreshed either way. The batch is not transactional; on failure the
// number of rows already applied is returned alongside the error so partial
// progress is reported, not swallowed.
func (writer *Writer) UpsertContents(ctx context.Context, contents []models.Content) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	applied := 0
	now := time.Now()

	for _, content := range contents {
		metadata, err := json.Marshal(content.Metadata)
		if err != nil {
			return applied, fmt.Errorf("marshal metadata for %s: %w", content.ExternalId, err)
		}

		log.WithFields(log.Fields{
			"externalId":  content.ExternalId,
			"platform":    content.Platform,
			"username":    content.Username,
			"publishedAt": content.PublishedAt.Format(time.RFC3339),
		}).Debug("Upserting content")

		_, err = writer.db.ExecContext(ctx, `
			INSERT INTO contents (external_id, platform, type, title, caption, media_uri, origin_url, published_at, username, metadata, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (platform, external_id) DO UPDATE SET
				type = excluded.type,
				title = excluded.title,
				caption = excluded.caption,
				media_uri = excluded.media_uri,
				origin_url = excluded.origin_url,
				published_at = excluded.published_at,
				username = excluded.username,
				metadata = excluded.metadata,
				updated_at = excluded.updated_at`,
			content.ExternalId,
			string(content.Platform),
			string(content.Type),
			content.Title,
			content.Caption,
			content.MediaUri,
			content.OriginUrl,
			content.PublishedAt.UnixMilli(),
			content.Username,
			string(metadata),
			now.UnixMilli(),
		)
		if err != nil {
			return applied, fmt.Errorf("upsert error for %s/%s: %w", content.Platform, content.ExternalId, err)
		}
		applied++
	}

	return applied, nil
}

// CountContents returns the total number of stored records. The sync engine
// derives its inserted count from the delta around a batch.
func (writer *Writer) CountContents(ctx context.Context) (int64, error) {
	var count int64
	err := writer.db.QueryRowContext(ctx, "SELECT count(*) FROM contents").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count error: %w", err)
	}
	return count, nil
}
