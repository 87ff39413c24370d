package main

import (
	"fmt"

	"github.com/seenimoa/tickerpulse/internal/infra"
	"github.com/seenimoa/tickerpulse/internal/knowledge"
	"github.com/seenimoa/tickerpulse/internal/llm"
	"github.com/seenimoa/tickerpulse/internal/matching"
	"github.com/seenimoa/tickerpulse/internal/pipeline"
	"github.com/seenimoa/tickerpulse/internal/sentiment"
	"github.com/seenimoa/tickerpulse/internal/store/sqlite"
)

// buildIndex compiles the knowledge base named in the config.
func buildIndex() (*knowledge.Index, error) {
	src, err := knowledge.DiscoverSources(cfg.Knowledge.GlobalPath, cfg.Knowledge.RelationshipsDir)
	if err != nil {
		return nil, err
	}
	ix, err := knowledge.NewBuilder(logger).Build(src)
	if err != nil {
		return nil, fmt.Errorf("building knowledge index: %w", err)
	}
	return ix, nil
}

// newAggregator wires the sentiment registry, the Ollama backend and the
// index used for prompt context.
func newAggregator(ix *knowledge.Index) (*sentiment.Aggregator, error) {
	reg, err := cfg.SentimentRegistry()
	if err != nil {
		return nil, err
	}
	ollama, err := llm.NewOllamaProvider(cfg.LLM.OllamaURL)
	if err != nil {
		return nil, err
	}
	return sentiment.NewAggregator(reg,
		sentiment.WithIndex(ix),
		sentiment.WithGenerator(ollama,
			sentiment.WithTimeout(cfg.LLM.Timeout()),
			sentiment.WithTemperature(cfg.LLM.Temperature),
			sentiment.WithPacer(infra.NewPacer(cfg.LLM.Delay())),
		),
		sentiment.WithPromptContext(cfg.Sentiment.UseContext),
		sentiment.WithConcurrency(cfg.Sentiment.Concurrency),
		sentiment.WithLogger(logger),
	), nil
}

// openStore opens the SQLite store at the configured path.
func openStore() (*sqlite.Store, error) {
	s, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", cfg.Storage.Path, err)
	}
	return s, nil
}

// newPipeline builds the batch pipeline. A non-nil store enables inserts
// and run records.
func newPipeline(backends []string, store *sqlite.Store) (*pipeline.Pipeline, error) {
	ix, err := buildIndex()
	if err != nil {
		return nil, err
	}
	agg, err := newAggregator(ix)
	if err != nil {
		return nil, err
	}
	if len(backends) == 0 {
		backends = cfg.Sentiment.Backends
	}
	opts := []pipeline.Option{pipeline.WithBackends(backends), pipeline.WithLogger(logger)}
	if store != nil {
		opts = append(opts, pipeline.WithStore(store))
	}
	return pipeline.New(matching.New(ix), agg, cfg.Data.ProcessedDir, opts...), nil
}
