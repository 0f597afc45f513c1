package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"

	"bfcfeed/models"
)

type Reader struct {
	db *sql.DB
}

func NewReader(database string) (*Reader, error) {
	// Open in read-only mode with optimized settings
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?mode=ro&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", database))
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// Set connection pool settings for reader
	db.SetMaxOpenConns(4)            // Allow multiple concurrent readers
	db.SetMaxIdleConns(2)            // Keep some connections ready
	db.SetConnMaxLifetime(time.Hour) // Recreate connections after an hour
	db.SetConnMaxIdleTime(time.Hour) // Close idle connections after an hour

	// Configure additional pragmas for better read performance
	if _, err := db.Exec(`
		PRAGMA busy_timeout = 5000;
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -32000; -- 32MB cache
		PRAGMA temp_store = MEMORY;
		PRAGMA mmap_size = 268435456; -- 256MB memory mapped I/O
		PRAGMA page_size = 4096;      -- Optimal page size for most systems
		PRAGMA read_uncommitted = 1;   -- Allow dirty reads for better concurrency
	`); err != nil {
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	return &Reader{
		db: db,
	}, nil
}

func (reader *Reader) Close() error {
	return reader.db.Close()
}

// Ping verifies the database file is reachable and the schema exists.
func (reader *Reader) Ping() error {
	var count int64
	return reader.db.QueryRow("SELECT count(*) FROM contents").Scan(&count)
}

// GetFeed returns one page of contents, newest first. Ties on published_at
// are broken by id descending so that pagination stays stable across pages
// while records are being upserted.
func (reader *Reader) GetFeed(platform models.Platform, page int, limit int) ([]models.Content, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "external_id", "platform", "type", "title", "caption",
		"media_uri", "origin_url", "published_at", "username", "metadata", "updated_at")
	sb.From("contents")

	if platform != "" {
		sb.Where(sb.Equal("platform", string(platform)))
	}

	sb.OrderBy("published_at DESC", "id DESC")
	sb.Limit(limit)
	sb.Offset((page - 1) * limit)

	sql, args := sb.BuildWithFlavor(sqlbuilder.Flavor(sqlbuilder.SQLite))

	rows, err := reader.db.Query(sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var contents []models.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		contents = append(contents, content)
	}

	return contents, rows.Err()
}

// CountContents counts all records matching the platform filter. It is
// computed independently of the page query so meta.total never depends on
// the returned page size.
func (reader *Reader) CountContents(platform models.Platform) (int64, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("count(*)").From("contents")
	if platform != "" {
		sb.Where(sb.Equal("platform", string(platform)))
	}

	sql, args := sb.BuildWithFlavor(sqlbuilder.Flavor(sqlbuilder.SQLite))

	var count int64
	if err := reader.db.QueryRow(sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count error: %w", err)
	}
	return count, nil
}

// Returns the number of contents per time bucket, optionally per platform
func (reader *Reader) GetContentCountPerTime(platform models.Platform, timeAgg string) ([]models.ContentsAggregatedByTime, error) {
	var sqlFormat string
	var timeParse func(string) (time.Time, error)

	switch timeAgg {
	case "day":
		sqlFormat = `STRFTIME('%Y-%m-%d', published_at / 1000, 'unixepoch')`
		timeParse = func(str string) (time.Time, error) {
			return time.Parse("2006-01-02", str)
		}
	case "week":
		sqlFormat = `STRFTIME('%Y-%W', published_at / 1000, 'unixepoch')`
		timeParse = func(str string) (time.Time, error) {
			// Manually parse year and week number as separate integers
			year, err := time.Parse("2006", str[:4])
			if err != nil {
				return time.Time{}, err
			}
			week, err := strconv.ParseInt(str[5:], 10, 64)
			if err != nil {
				return time.Time{}, err
			}

			_, weekOffset := year.ISOWeek()
			weekOffset = weekOffset - 1
			firstDay := year.AddDate(0, 0, -int(year.Weekday())+weekOffset*7)

			// Add the number of weeks to the first day of the week
			return firstDay.AddDate(0, 0, int(week)*7), nil
		}
	default:
		sqlFormat = `STRFTIME('%Y-%m-%d-%H', published_at / 1000, 'unixepoch')`
		timeParse = func(str string) (time.Time, error) {
			return time.Parse("2006-01-02-15", str)
		}
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(sqlFormat, "count(*) as count").From("contents")
	if platform != "" {
		sb.Where(sb.Equal("platform", string(platform)))
	}
	sb.GroupBy(sqlFormat)
	sb.OrderBy("published_at").Asc()

	sql, args := sb.BuildWithFlavor(sqlbuilder.Flavor(sqlbuilder.SQLite))

	rows, err := reader.db.Query(sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.ContentsAggregatedByTime

	for rows.Next() {
		var sqlTime string
		var count models.ContentsAggregatedByTime

		if err := rows.Scan(&sqlTime, &count.Count); err != nil {
			continue // Skip this row
		}

		bucketTime, err := timeParse(sqlTime)
		if err == nil {
			count.Time = bucketTime
		}
		counts = append(counts, count)
	}

	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (models.Content, error) {
	var content models.Content
	var title, caption sql.NullString
	var metadata string
	var publishedAt, updatedAt int64

	if err := row.Scan(
		&content.Id,
		&content.ExternalId,
		&content.Platform,
		&content.Type,
		&title,
		&caption,
		&content.MediaUri,
		&content.OriginUrl,
		&publishedAt,
		&content.Username,
		&metadata,
		&updatedAt,
	); err != nil {
		return content, err
	}

	if title.Valid {
		content.Title = &title.String
	}
	if caption.Valid {
		content.Caption = &caption.String
	}
	content.PublishedAt = time.UnixMilli(publishedAt).UTC()
	content.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	if metadata != "" && metadata != "{}" {
		if err := json.Unmarshal([]byte(metadata), &content.Metadata); err != nil {
			return content, fmt.Errorf("metadata decode error: %w", err)
		}
	}

	return content, nil
}
