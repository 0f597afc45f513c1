package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"bfcfeed/config"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "bfcfeed",
		Usage: "A fan feed aggregator for Bucheon FC 1995",
		Description: `Aggregates Bucheon FC 1995 fan content from Instagram
		and YouTube into one feed.

		Scraper jobs run on an external schedule, normalize platform posts
		into one canonical record and upsert them into an SQLite database.
		The serve command exposes the feed over an HTTP API consumed by the
		web frontend.

		Flags can generally be set via environment variables, e.g.:

		--database => BFCFEED_DATABASE=feed.db
		--port => BFCFEED_PORT=8080
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level: debug, info, warn or error",
				EnvVars: []string{"BFCFEED_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Usage:   "Log as JSON instead of text",
				EnvVars: []string{"BFCFEED_LOG_JSON"},
			},
		},
		Before: func(ctx *cli.Context) error {
			// Secrets come from .env files locally, from the environment in CI
			config.LoadDotEnv()

			level, err := log.ParseLevel(ctx.String("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			if ctx.Bool("log-json") {
				log.SetFormatter(&log.JSONFormatter{})
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			syncCmd(),
			cleanupCmd(),
			backfillCmd(),
			migrateCmd(),
			rollbackCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
