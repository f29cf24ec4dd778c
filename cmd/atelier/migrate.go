package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atelierhq/atelier"
)

var migrateDatabaseURL string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy file-backed data into Postgres",
	Long: `migrate reads the local JSON snapshot and copies every record
into the target Postgres database, preserving ids, timestamps and
counters. Run it once against an empty database, then restart the
server with DATABASE_URL set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := atelier.LoadConfig(configPath)
		if err != nil {
			return err
		}

		url := migrateDatabaseURL
		if url == "" {
			url = os.Getenv("DATABASE_URL")
		}
		if url == "" {
			return errors.New("migrate: --database-url or DATABASE_URL is required")
		}

		ctx := cmd.Context()

		src, err := atelier.NewFileStore(cfg.DataDir, cfg.UploadsDir)
		if err != nil {
			return err
		}
		defer src.Close()

		dst, err := atelier.NewPGStore(ctx, url)
		if err != nil {
			return err
		}
		defer dst.Close()

		report, err := atelier.MigrateToPostgres(ctx, src, dst)
		if err != nil {
			return err
		}
		fmt.Printf("migrated %d essays, %d works, %d projects, %d blog posts, %d quotes, %d reactions, %d analytics days\n",
			report.Essays, report.Works, report.Projects, report.BlogPosts,
			report.Quotes, report.Reactions, report.Analytics)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "database-url", "", "Postgres connection URL (falls back to DATABASE_URL)")
}
