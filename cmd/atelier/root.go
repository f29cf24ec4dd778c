package main

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "atelier",
	Short: "Content backend for a personal website",
	Long: `atelier serves the JSON API behind a personal website: essays,
academic works, blog posts, quotes and projects, with an admin surface
for content management, media uploads and analytics.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default atelier.yaml if present)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}
