package cmd

import (
	"fmt"

	"github.com/cqroot/prompt"
	"github.com/urfave/cli/v2"

	"bfcfeed/config"
	"bfcfeed/db"
)

func cleanupCmd() *cli.Command {
	return &cli.Command{
		Name:  "cleanup",
		Usage: "Delete stored contents from denylisted authors",
		Description: `Deletes every record whose author matches the denylist.

The sync job already refuses denylisted authors at write time; this removes
records that slipped in before an author was added to the list. Matching is
the same case-insensitive substring match the sync filter uses.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Value:   "feed.db",
				Usage:   "SQLite database file location",
				EnvVars: []string{"BFCFEED_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.toml",
				Usage:   "Path to the application configuration file",
				EnvVars: []string{"BFCFEED_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				return err
			}

			database := ctx.String("database")
			fmt.Println("Database configured: ", database)

			if !ctx.Bool("yes") {
				answer, err := prompt.New().
					Ask(fmt.Sprintf("Delete all contents matching %d denylist patterns?", len(cfg.Denylist))).
					Choose([]string{"Yes", "No"})
				if err != nil {
					return err
				}
				if answer != "Yes" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			deleted, err := db.DeleteExcluded(database, cfg.Denylist)
			if err != nil {
				return err
			}

			if deleted > 0 {
				fmt.Printf("Deleted %d denylisted contents.\n", deleted)
			} else {
				fmt.Println("Nothing to delete, the database is clean.")
			}
			return nil
		},
	}
}
