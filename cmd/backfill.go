package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"bfcfeed/db"
)

func backfillCmd() *cli.Command {
	return &cli.Command{
		Name:  "backfill",
		Usage: "Rewrite legacy string published_at values",
		Description: `Rewrites rows whose published_at was stored as an ISO 8601
string by an earlier scraper version into the canonical integer timestamp.

The feed sorts on published_at and never branches on the stored type, so run
this once after importing pre-normalization data.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Value:   "feed.db",
				Usage:   "SQLite database file location",
				EnvVars: []string{"BFCFEED_DATABASE"},
			},
		},
		Action: func(ctx *cli.Context) error {
			database := ctx.String("database")
			fmt.Println("Database configured: ", database)

			migrated, err := db.BackfillPublishedAt(database)
			if err != nil {
				return err
			}

			fmt.Printf("Backfilled %d rows.\n", migrated)
			return nil
		},
	}
}
