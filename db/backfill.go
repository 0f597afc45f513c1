package db

import (
	"database/sql"
	"time"

	log "github.com/sirupsen/logrus"
)

// BackfillPublishedAt rewrites legacy rows whose published_at was stored as
// an ISO 8601 string into the canonical unix millisecond representation.
// Runs once after upgrading from the pre-normalization data; the feed query
// never branches on the column type, so mixed-type rows would sort wrong
// until this has been run.
func BackfillPublishedAt(database string) (int64, error) {
	db, err := connection(database)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return backfillPublishedAt(db)
}

func backfillPublishedAt(db *sql.DB) (int64, error) {
	rows, err := db.Query("SELECT id, published_at FROM contents WHERE typeof(published_at) = 'text'")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	type legacyRow struct {
		id    int64
		value string
	}

	var legacy []legacyRow
	for rows.Next() {
		var row legacyRow
		if err := rows.Scan(&row.id, &row.value); err != nil {
			return 0, err
		}
		legacy = append(legacy, row)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	var migrated int64
	for _, row := range legacy {
		publishedAt, err := time.Parse(time.RFC3339, row.value)
		if err != nil {
			log.WithFields(log.Fields{
				"id":    row.id,
				"value": row.value,
			}).WithError(err).Error("Skipping row with unparseable published_at")
			continue
		}

		if _, err := db.Exec("UPDATE contents SET published_at = ? WHERE id = ?", publishedAt.UnixMilli(), row.id); err != nil {
			return migrated, err
		}
		migrated++
	}

	return migrated, nil
}
