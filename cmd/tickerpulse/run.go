package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/tickerpulse/internal/ingest"
	"github.com/seenimoa/tickerpulse/internal/pipeline"
	"github.com/seenimoa/tickerpulse/internal/store/sqlite"
	"github.com/seenimoa/tickerpulse/internal/ui"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch headlines from all sources into data/raw",
	RunE: func(cmd *cobra.Command, args []string) error {
		suffix, _ := cmd.Flags().GetString("suffix")
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.Ingest.LimitPerSource
		}

		rps := cfg.Ingest.RequestsPerSecond
		sources := []ingest.Source{
			ingest.NewRSSSource(ingest.TechCrunchFeed, ingest.WithLimiter(ingest.NewLimiter(rps))),
			ingest.NewNewsAPISource(cfg.Ingest.NewsAPIKey, cfg.Ingest.NewsAPICountry, ingest.WithLimiter(ingest.NewLimiter(rps))),
			ingest.NewRSSSource(ingest.GoogleNewsAIFeed, ingest.WithLimiter(ingest.NewLimiter(rps))),
		}
		res, err := ingest.NewFetcher(sources, limit, logger).FetchAll(cmd.Context())
		if err != nil {
			return err
		}

		path, err := ingest.WriteRaw(cfg.Data.RawDir, res.Records, suffix, time.Now())
		if err != nil {
			return err
		}
		for _, s := range res.Sources {
			detail := fmt.Sprintf("%d records in %s", s.Records, s.Duration.Round(time.Millisecond))
			if s.Err != nil {
				detail = s.Err.Error()
			}
			fmt.Println(ui.Status(s.Name, s.Err == nil, detail))
		}
		fmt.Printf("Fetched %d headlines (%d after de-duplication) → %s\n", res.Fetched, len(res.Records), path)
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("suffix", "", "suffix appended to the raw file date, e.g. _15")
	fetchCmd.Flags().Int("limit", 0, "max headlines per source (default from config)")
}

// --- Master Command ---

var masterCmd = &cobra.Command{
	Use:   "master [raw-glob...]",
	Short: "Merge raw headline files into the de-duplicated master file",
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns := args
		if len(patterns) == 0 {
			patterns = []string{filepath.Join(cfg.Data.RawDir, utils.RawPrefix+"*.jsonl")}
		}
		paths, err := utils.ExpandGlobs(patterns)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("%w: %s", pipeline.ErrNoInput, strings.Join(patterns, ", "))
		}
		res, err := ingest.MergeMaster(paths, cfg.Data.MasterPath)
		if err != nil {
			return err
		}
		fmt.Printf("Merged %d files: %d new headlines, %d total → %s\n", res.Files, res.Added, res.Total, cfg.Data.MasterPath)
		return nil
	},
}

// --- Match Command ---

var matchCmd = &cobra.Command{
	Use:   "match [raw-glob...]",
	Short: "Match raw headlines to tickers (writes matched_<suffix>.jsonl)",
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := pipeline.ResolveInputs(cfg.Data.RawDir, args)
		if err != nil {
			return err
		}
		p, err := newPipeline(nil, nil)
		if err != nil {
			return err
		}
		report, err := p.Match(cmd.Context(), inputs)
		if err != nil {
			return err
		}
		fmt.Println(ui.RunSummary(report))
		return nil
	},
}

// --- Score Command ---

var scoreCmd = &cobra.Command{
	Use:   "score <matched.jsonl>",
	Short: "Score a matched file (writes sentiment_<suffix>.jsonl)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(backendsFlag(cmd), nil)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			suffix := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			suffix = strings.Replace(suffix, utils.MatchedPrefix, "", 1)
			output = filepath.Join(cfg.Data.ProcessedDir, utils.StageFileName(utils.SentimentPrefix, suffix))
		}
		report, err := p.Score(cmd.Context(), args[0], output)
		if err != nil {
			return err
		}
		fmt.Println(ui.RunSummary(report))
		return nil
	},
}

func init() {
	scoreCmd.Flags().String("backends", "", "comma-separated backend ids (default from config)")
	scoreCmd.Flags().StringP("output", "o", "", "output file (default data/processed/sentiment_<suffix>.jsonl)")
}

// --- Process Command ---

var processCmd = &cobra.Command{
	Use:   "process [raw-glob...]",
	Short: "Match and score raw headlines in one pass (writes processed_<suffix>.jsonl)",
	Long: `Runs matching and sentiment scoring over the latest data/raw/headlines_*.jsonl
(or the given globs) and writes one processed file. With --db or
storage.enabled the rows are also inserted into the SQLite store; rows
already stored are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := pipeline.ResolveInputs(cfg.Data.RawDir, args)
		if err != nil {
			return err
		}

		var store *sqlite.Store
		if db, _ := cmd.Flags().GetBool("db"); db || cfg.Storage.Enabled {
			if store, err = openStore(); err != nil {
				return err
			}
			defer store.Close()
		}

		backends := backendsFlag(cmd)
		p, err := newPipeline(backends, store)
		if err != nil {
			return err
		}
		if len(backends) == 1 && backends[0] == "vader" {
			logger.Info("lexical-only run; omit --backends for LLM scores")
		}
		report, err := p.Process(cmd.Context(), inputs)
		if err != nil {
			return err
		}
		fmt.Println(ui.RunSummary(report))
		return nil
	},
}

func init() {
	processCmd.Flags().String("backends", "", "comma-separated backend ids (default from config)")
	processCmd.Flags().Bool("db", false, "insert the processed rows into the SQLite store")
}

// backendsFlag parses --backends into ids; empty means the config default.
func backendsFlag(cmd *cobra.Command) []string {
	raw, _ := cmd.Flags().GetString("backends")
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
