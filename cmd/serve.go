package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"bfcfeed/db"
	"bfcfeed/feeds"
	"bfcfeed/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the fan feed HTTP API",
		Description: `Starts the feed HTTP server.

Runs pending database migrations, then serves the paginated feed and stats
endpoints consumed by the web frontend. Sync and cleanup jobs run out of
process and write to the same database file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Value:   "feed.db",
				Usage:   "SQLite database file location",
				EnvVars: []string{"BFCFEED_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "hostname",
				Aliases: []string{"n"},
				Value:   "localhost",
				Usage:   "The host address to bind to, set 0.0.0.0 in containers",
				EnvVars: []string{"BFCFEED_HOSTNAME"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   8080,
				Usage:   "Port to listen on",
				EnvVars: []string{"BFCFEED_PORT"},
			},
			&cli.StringFlag{
				Name:    "allow-origins",
				Value:   "*",
				Usage:   "CORS origins allowed to call the API",
				EnvVars: []string{"BFCFEED_ALLOW_ORIGINS"},
			},
		},
		Action: func(ctx *cli.Context) error {
			database := ctx.String("database")

			if err := db.Migrate(database); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			reader, err := db.NewReader(database)
			if err != nil {
				return err
			}
			defer reader.Close()

			// Another job may hold the write lock while migrating, retry the
			// first ping before giving up
			ping := backoff.NewExponentialBackOff()
			ping.InitialInterval = 100 * time.Millisecond
			ping.MaxInterval = 5 * time.Second
			ping.MaxElapsedTime = 30 * time.Second
			if err := backoff.Retry(reader.Ping, ping); err != nil {
				return fmt.Errorf("database never became readable: %w", err)
			}

			app := server.Server(&server.ServerConfig{
				AllowOrigins: ctx.String("allow-origins"),
				Reader:       reader,
				Feeds:        feeds.NewService(reader),
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			go func() {
				<-c
				fmt.Println("Gracefully shutting down...")
				app.ShutdownWithTimeout(60 * time.Second)
			}()

			address := fmt.Sprintf("%s:%d", ctx.String("hostname"), ctx.Int("port"))
			log.WithFields(log.Fields{
				"address": address,
			}).Info("Starting server")
			if err := app.Listen(address); err != nil {
				return err
			}

			fmt.Println("Done!")
			return nil
		},
	}
}
