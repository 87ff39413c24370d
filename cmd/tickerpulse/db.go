package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/tickerpulse/internal/pipeline"
	"github.com/seenimoa/tickerpulse/internal/ui"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the SQLite sentiment store",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and apply migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		n, err := store.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Database ready at %s (%d rows)\n", store.Path(), n)
		return nil
	},
}

var dbImportCmd = &cobra.Command{
	Use:   "import <processed.jsonl>...",
	Short: "Insert processed rows; rows already stored are skipped",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		p := pipeline.New(nil, nil, cfg.Data.ProcessedDir, pipeline.WithStore(store), pipeline.WithLogger(logger))
		for _, path := range args {
			report, err := p.Import(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("importing %s: %w", path, err)
			}
			fmt.Println(ui.RunSummary(report))
		}
		return nil
	},
}

var dbSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show stored rows per ticker",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		sums, err := store.TickerSummaries(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(ui.TickerSummaries(sums))
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbImportCmd)
	dbCmd.AddCommand(dbSummaryCmd)
}
