// Package main provides the entry point for the searchd daemon.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/paon-social/searchd/internal/app"
	"github.com/paon-social/searchd/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "searchd",
		Short:   "Full-text status search daemon",
		Long:    "searchd serves the status search API, maintains the Meilisearch index and the per-account bookmark feed cache.",
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.New().Run()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the indexing loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.New().Run()
		},
	})

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search index maintenance",
	}
	searchCmd.AddCommand(&cobra.Command{
		Use:   "deploy",
		Short: "Rebuild the whole status index from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.New().Deploy()
		},
	})
	root.AddCommand(searchCmd)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
