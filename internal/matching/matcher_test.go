package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/tickerpulse/internal/knowledge"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

func testIndex() *knowledge.Index {
	return knowledge.NewIndex(
		knowledge.GlobalVocabulary{
			BuzzPhrases:  []string{"generative ai", "artificial intelligence"},
			BuzzEntities: []string{"OpenAI", "ChatGPT"},
		},
		&knowledge.TickerProfile{
			Ticker:   "NVDA",
			Keywords: []string{"Nvidia", "Blackwell", "Jensen Huang"},
			KeywordContexts: []knowledge.KeywordContext{
				{Keyword: "Blackwell", Context: "NVDA's primary 2026 catalyst"},
			},
		},
		&knowledge.TickerProfile{
			Ticker:   "AAPL",
			Keywords: []string{"Apple", "iOS", "ARM"},
		},
		&knowledge.TickerProfile{
			Ticker:          "MSFT",
			Keywords:        []string{"Microsoft", "OpenAI", "ChatGPT"},
			PartnerKeywords: []string{"OpenAI", "ChatGPT"},
		},
	)
}

func record(headline string) models.HeadlineRecord {
	return models.HeadlineRecord{
		Source:    "TechCrunch",
		FetchedAt: "2026-02-26T15:00:00Z",
		Headline:  headline,
		PostedAt:  "2026-02-26T14:00:00Z",
		Reporter:  "TechCrunch",
		URL:       "https://example.com/a",
	}
}

func TestMatch_SingleTicker(t *testing.T) {
	rows := New(testIndex()).Match(record("Nvidia announces new Blackwell shipment delays"))
	require.Len(t, rows, 1)
	assert.Equal(t, "NVDA", rows[0].Ticker)
	assert.False(t, rows[0].IsAIRelated)
	assert.False(t, rows[0].IsProxyPartnership)
	assert.Equal(t, "https://example.com/a", rows[0].URL)
	assert.Equal(t, "TechCrunch", rows[0].Reporter)
}

func TestMatch_NoTickers(t *testing.T) {
	m := New(testIndex())
	assert.Empty(t, m.Match(record("Local bakery wins award")))
	// AI relevant but associated with no ticker.
	assert.Empty(t, m.Match(record("Generative AI is everywhere this year")))
	assert.Empty(t, m.Match(record("   ")))
}

func TestMatch_MultipleTickers(t *testing.T) {
	rows := New(testIndex()).Match(record("Apple integrates OpenAI's ChatGPT into iOS 18"))
	require.Len(t, rows, 2)

	assert.Equal(t, "AAPL", rows[0].Ticker)
	assert.Equal(t, "MSFT", rows[1].Ticker)
	assert.Equal(t, rows[0].Headline, rows[1].Headline)
	assert.True(t, rows[0].IsAIRelated)
	assert.Equal(t, rows[0].IsAIRelated, rows[1].IsAIRelated)
	assert.False(t, rows[0].IsProxyPartnership)
	assert.True(t, rows[1].IsProxyPartnership)
}

func TestMatch_WordBoundaries(t *testing.T) {
	m := New(testIndex())
	assert.Empty(t, m.Match(record("Harmful chemicals found in river")))
	rows := m.Match(record("SoftBank sells ARM stake"))
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", rows[0].Ticker)
}

func TestMatch_PhraseAndWhitespace(t *testing.T) {
	rows := New(testIndex()).Match(record("  JENSEN\t\tHUANG   keynote  "))
	require.Len(t, rows, 1)
	assert.Equal(t, "NVDA", rows[0].Ticker)
}

func TestMatch_Idempotent(t *testing.T) {
	m := New(testIndex())
	rec := record("Microsoft and Nvidia expand artificial intelligence deal")
	first := m.Match(rec)
	assert.Equal(t, first, m.Match(rec))
	require.Len(t, first, 2)
	assert.True(t, first[0].IsAIRelated)
}

func TestMatchAll(t *testing.T) {
	rows := New(testIndex()).MatchAll([]models.HeadlineRecord{
		record("Nvidia earnings"),
		record("Local bakery wins award"),
		record("Apple and Microsoft talk"),
	})
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"NVDA", "AAPL", "MSFT"}, []string{rows[0].Ticker, rows[1].Ticker, rows[2].Ticker})
}

func TestTickers(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, New(testIndex()).Tickers("Apple integrates ChatGPT"))
	assert.Empty(t, New(testIndex()).Tickers("nothing here"))
}
