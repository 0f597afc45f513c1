package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"bfcfeed/config"
	"bfcfeed/db"
	"bfcfeed/models"
	"bfcfeed/scraper"
)

func syncCmd() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run one scrape-and-store pass for a platform",
		Description: `Fetches recent posts for the configured keywords from one
platform, drops denylisted authors, normalizes the rest into the canonical
record shape and upserts them into the database.

Meant to be invoked on a schedule (cron, GitHub Actions). The run has no
internal retry loop, a failed run exits non-zero and the scheduler decides
when to try again.

Use --order viewCount for the one-off popular-videos backfill that seeds an
empty database with the most watched club videos.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Value:   "feed.db",
				Usage:   "SQLite database file location",
				EnvVars: []string{"BFCFEED_DATABASE"},
			},
			&cli.StringFlag{
				Name:     "platform",
				Aliases:  []string{"s"},
				Usage:    "Platform to sync: YOUTUBE or INSTA",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.toml",
				Usage:   "Path to the application configuration file",
				EnvVars: []string{"BFCFEED_CONFIG"},
			},
			&cli.StringSliceFlag{
				Name:    "keyword",
				Aliases: []string{"k"},
				Usage:   "Search keyword, repeatable; defaults to the configured list",
			},
			&cli.StringFlag{
				Name:  "order",
				Value: "date",
				Usage: "Result ordering: date or viewCount",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "YouTube Data API key",
				EnvVars: []string{"YOUTUBE_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "apify-token",
				Usage:   "Apify API token",
				EnvVars: []string{"APIFY_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "apify-dataset",
				Usage:   "Apify dataset id holding scraped Instagram posts",
				EnvVars: []string{"APIFY_DATASET"},
			},
			&cli.IntFlag{
				Name:  "pages",
				Usage: "Page budget per keyword, overrides the configured value",
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				return err
			}

			platform := models.Platform(strings.ToUpper(ctx.String("platform")))
			if !platform.Valid() {
				return fmt.Errorf("invalid platform: %s", ctx.String("platform"))
			}

			opts, err := sourceOptions(ctx, platform)
			if err != nil {
				return err
			}

			source, err := scraper.NewSource(platform, opts)
			if err != nil {
				return err
			}

			database := ctx.String("database")
			if err := db.Migrate(database); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			writer, err := db.NewWriter(database)
			if err != nil {
				return err
			}
			defer writer.Close()

			keywords := ctx.StringSlice("keyword")
			if len(keywords) == 0 {
				keywords = cfg.Keywords
			}

			pageBudget := cfg.Sync.PageBudget
			if ctx.Int("pages") > 0 {
				pageBudget = ctx.Int("pages")
			}

			order := ctx.String("order")
			var publishedAfter time.Time
			if order == "date" {
				publishedAfter = time.Now().UTC().Add(-time.Duration(cfg.Sync.WindowHours) * time.Hour)
			}

			total := models.SyncReport{}
			for _, keyword := range keywords {
				report, err := scraper.Sync(ctx.Context, source, writer, scraper.SyncConfig{
					Query: scraper.Query{
						Keyword:        keyword,
						PageSize:       cfg.Sync.PageSize,
						Order:          order,
						PublishedAfter: publishedAfter,
					},
					PageBudget: pageBudget,
					Denylist:   scraper.Denylist(cfg.Denylist),
				})
				total.Candidates += report.Candidates
				total.Synced += report.Synced
				total.Inserted += report.Inserted
				total.Updated += report.Updated
				if err != nil {
					return err
				}
			}

			log.WithFields(log.Fields{
				"platform":   platform,
				"candidates": total.Candidates,
				"synced":     total.Synced,
				"inserted":   total.Inserted,
				"updated":    total.Updated,
			}).Info("All keywords synced")
			fmt.Printf("Synced %d of %d candidates (%d inserted, %d updated)\n",
				total.Synced, total.Candidates, total.Inserted, total.Updated)

			return nil
		},
	}
}

// sourceOptions validates the credentials a platform needs. Missing
// credentials are fatal before any work starts.
func sourceOptions(ctx *cli.Context, platform models.Platform) (scraper.SourceOptions, error) {
	switch platform {
	case models.PlatformYouTube:
		apiKey := ctx.String("api-key")
		if apiKey == "" {
			return scraper.SourceOptions{}, errors.New("YOUTUBE_API_KEY is not set")
		}
		return scraper.SourceOptions{APIKey: apiKey}, nil
	case models.PlatformInstagram:
		token := ctx.String("apify-token")
		dataset := ctx.String("apify-dataset")
		if token == "" || dataset == "" {
			return scraper.SourceOptions{}, errors.New("APIFY_TOKEN or APIFY_DATASET is not set")
		}
		return scraper.SourceOptions{APIKey: token, Dataset: dataset}, nil
	}
	return scraper.SourceOptions{}, fmt.Errorf("invalid platform: %s", platform)
}
