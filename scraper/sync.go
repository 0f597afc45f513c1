package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"bfcfeed/db"
	"bfcfeed/models"
)

// SyncConfig tunes one sync run.
type SyncConfig struct {
	Query      Query
	PageBudget int
	Denylist   Denylist
}

// Sync runs one fetch → filter → map → upsert pass for a single query.
// Adapter failures abort the run with nothing written; a store failure
// returns the partial report alongside the error, the scheduler re-invokes
// the job on its own cadence.
func Sync(ctx context.Context, source Source, writer *db.Writer, cfg SyncConfig) (models.SyncReport, error) {
	report := models.SyncReport{}
	platform := source.Platform()

	logger := log.WithFields(log.Fields{
		"runId":    uuid.New().String(),
		"platform": platform,
		"keyword":  cfg.Query.Keyword,
	})
	logger.Info("Starting sync run")

	items, err := fetchAll(ctx, source, cfg, logger)
	if err != nil {
		syncRunsTotal.WithLabelValues(string(platform), "fetch_error").Inc()
		return report, err
	}
	report.Candidates = len(items)

	kept := lo.Filter(items, func(item RawItem, _ int) bool {
		if cfg.Denylist.IsExcluded(item.Author()) {
			logger.WithField("author", item.Author()).Info("Skipping denylisted author")
			syncExcludedTotal.WithLabelValues(string(platform)).Inc()
			return false
		}
		return true
	})

	contents := make([]models.Content, 0, len(kept))
	for _, item := range kept {
		content, ok := source.Map(item)
		if !ok {
			logger.WithField("author", item.Author()).Warn("Skipping item missing required fields")
			continue
		}
		contents = append(contents, content)
	}

	before, err := writer.CountContents(ctx)
	if err != nil {
		syncRunsTotal.WithLabelValues(string(platform), "store_error").Inc()
		return report, fmt.Errorf("store count failed: %w", err)
	}

	applied, writeErr := writer.UpsertContents(ctx, contents)
	report.Synced = applied

	after, err := writer.CountContents(ctx)
	if err == nil {
		report.Inserted = int(after - before)
		report.Updated = applied - report.Inserted
	}
	syncContentsTotal.WithLabelValues(string(platform)).Add(float64(applied))

	if writeErr != nil {
		logger.WithFields(log.Fields{
			"applied":    applied,
			"candidates": report.Candidates,
		}).WithError(writeErr).Error("Store write failed, run aborted with partial results")
		syncRunsTotal.WithLabelValues(string(platform), "store_error").Inc()
		return report, fmt.Errorf("store write failed after %d upserts: %w", applied, writeErr)
	}

	logger.WithFields(log.Fields{
		"candidates": report.Candidates,
		"synced":     report.Synced,
		"inserted":   report.Inserted,
		"updated":    report.Updated,
	}).Info("Sync run complete")
	syncRunsTotal.WithLabelValues(string(platform), "ok").Inc()

	return report, nil
}

// fetchAll accumulates raw items across pages up to the page budget,
// stopping early on an empty page or a missing next-page token.
func fetchAll(ctx context.Context, source Source, cfg SyncConfig, logger *log.Entry) ([]RawItem, error) {
	var items []RawItem
	query := cfg.Query

	for page := 0; page < cfg.PageBudget; page++ {
		start := time.Now()
		result, err := source.Fetch(ctx, query)
		if err != nil {
			return nil, err
		}
		fetchDuration.WithLabelValues(string(source.Platform())).Observe(time.Since(start).Seconds())

		if len(result.Items) == 0 {
			break
		}

		items = append(items, result.Items...)

		logger.WithFields(log.Fields{
			"page":  page + 1,
			"items": len(result.Items),
		}).Info("Fetched page")

		if result.NextPageToken == "" {
			break
		}
		query.PageToken = result.NextPageToken
	}

	return items, nil
}
