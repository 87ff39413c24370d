package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/tickerpulse/api"
	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/internal/knowledge"
	"github.com/seenimoa/tickerpulse/internal/llm"
	"github.com/seenimoa/tickerpulse/internal/ui"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		ix, err := buildIndex()
		if err != nil {
			return err
		}

		var reader api.ScoreReader
		if cfg.Storage.Enabled {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			reader = store
		}

		srv := api.NewServer(cfg, ix, reader, logger)
		fmt.Printf("Serving %d tickers on http://%s\n", ix.Len(), cfg.API.Addr())
		return srv.ListenAndServe(cmd.Context(), cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
}

// --- Index Command ---

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Show the compiled knowledge index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := buildIndex()
		if err != nil {
			return err
		}
		if t, _ := cmd.Flags().GetString("ticker"); t != "" {
			p, ok := ix.Profile(utils.NormalizeTicker(t))
			if !ok {
				return fmt.Errorf("ticker %s is not in the index", utils.NormalizeTicker(t))
			}
			fmt.Println(ui.TickerProfile(p))
			return nil
		}
		fmt.Println(ui.IndexSummary(ix))
		return nil
	},
}

func init() {
	indexCmd.Flags().String("ticker", "", "dump the keyword sets of one ticker")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, API key and backend status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.TitleStyle.Render("tickerpulse " + version))

		for _, k := range config.CheckAPIKeys(cfg) {
			detail := "not set"
			if k.IsSet {
				detail = fmt.Sprintf("%s (%s)", k.Masked, k.Source)
			}
			fmt.Println(ui.Status(k.Name, k.IsSet, detail))
		}

		src, err := knowledge.DiscoverSources(cfg.Knowledge.GlobalPath, cfg.Knowledge.RelationshipsDir)
		if err != nil {
			return err
		}
		_, vocabErr := knowledge.LoadGlobalVocabulary(src.GlobalPath)
		detail := fmt.Sprintf("%s, %d relationship files", src.GlobalPath, len(src.TickerPaths))
		if vocabErr != nil {
			detail = vocabErr.Error()
		}
		fmt.Println(ui.Status("Knowledge base", vocabErr == nil, detail))

		ollama, err := llm.NewOllamaProvider(cfg.LLM.OllamaURL)
		if err != nil {
			return err
		}
		models, err := ollama.Models(cmd.Context())
		if err != nil {
			fmt.Println(ui.Status("Ollama", false, err.Error()))
		} else {
			fmt.Println(ui.Status("Ollama", true, fmt.Sprintf("%s, %d models", ollama.BaseURL(), len(models))))
		}

		fmt.Println(ui.Status("Storage", cfg.Storage.Enabled, cfg.Storage.Path))
		fmt.Println(ui.DimStyle.Render("backends: " + fmt.Sprint(cfg.Sentiment.Backends)))
		return nil
	},
}
