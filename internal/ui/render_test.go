package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/seenimoa/tickerpulse/internal/knowledge"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

func TestRunSummary(t *testing.T) {
	start := time.Date(2026, 2, 26, 10, 0, 0, 0, time.UTC)
	out := RunSummary(&models.RunReport{
		Stage:         models.StageProcess,
		Inputs:        []string{"data/raw/headlines_20260226.jsonl"},
		Backends:      []string{"vader", "phi3"},
		RecordsRead:   12,
		RowsMatched:   5,
		RowsWritten:   5,
		RowsInserted:  4,
		ScoreFailures: 1,
		Output:        "data/processed/processed_20260226.jsonl",
		StartedAt:     start,
		FinishedAt:    start.Add(1500 * time.Millisecond),
	})
	assert.Contains(t, out, "PROCESS run")
	assert.Contains(t, out, "Records read:")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "Rows inserted:")
	assert.Contains(t, out, "Score failures:")
	assert.Contains(t, out, "vader, phi3")
	assert.Contains(t, out, "took 1.5s")
}

func TestRunSummary_MatchOmitsInserted(t *testing.T) {
	out := RunSummary(&models.RunReport{Stage: models.StageMatch, RecordsRead: 3})
	assert.NotContains(t, out, "Rows inserted:")
	assert.NotContains(t, out, "Score failures:")
}

func TestTickerSummaries(t *testing.T) {
	assert.Contains(t, TickerSummaries(nil), "No stored rows")

	out := TickerSummaries([]models.TickerSummary{
		{Ticker: "NVDA", Rows: 3, AIRelated: 2, ProxyRows: 1, AvgLexical: models.Float(0.25), LastPosted: "2026-02-26"},
		{Ticker: "MSFT", Rows: 1},
	})
	assert.Contains(t, out, "NVDA")
	assert.Contains(t, out, "+0.250")
	assert.Contains(t, out, "MSFT")
}

func TestIndexSummaryAndProfile(t *testing.T) {
	p := &knowledge.TickerProfile{
		Ticker:          "NVDA",
		Keywords:        []string{"Blackwell", "Nvidia"},
		PartnerKeywords: []string{"OpenAI"},
		KeywordContexts: []knowledge.KeywordContext{{Keyword: "Blackwell", Context: "NVDA's primary 2026 catalyst"}},
	}
	ix := knowledge.NewIndex(knowledge.GlobalVocabulary{BuzzPhrases: []string{"generative ai"}}, p)
	ix.Skipped = append(ix.Skipped, knowledge.SkippedFile{Path: "bad.yaml", Reason: "no target_ticker"})

	out := IndexSummary(ix)
	assert.Contains(t, out, "1 tickers, 1 buzz phrases, 0 buzz entities")
	assert.Contains(t, out, "keywords=2 partners=1 contexts=1")
	assert.Contains(t, out, "skipped bad.yaml")

	dump := TickerProfile(p)
	assert.Contains(t, dump, "Blackwell, Nvidia")
	assert.Contains(t, dump, "NVDA's primary 2026 catalyst")
}

func TestStatus(t *testing.T) {
	assert.Contains(t, Status("NewsAPI key", true, "abcd****"), "abcd****")
	assert.Contains(t, Status("Ollama", false, ""), "✗")
}
