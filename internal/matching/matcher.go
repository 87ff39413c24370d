// Package matching associates normalized headline records with watch-list
// tickers using a compiled knowledge index.
package matching

import (
	"github.com/seenimoa/tickerpulse/internal/knowledge"
	"github.com/seenimoa/tickerpulse/internal/textmatch"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

// Matcher matches headlines against an Index. It holds no mutable state
// and is safe for concurrent use.
type Matcher struct {
	index *knowledge.Index
}

// New creates a Matcher over ix.
func New(ix *knowledge.Index) *Matcher {
	return &Matcher{index: ix}
}

// Match returns one row per ticker whose keywords occur in the headline,
// in ticker order. A headline that associates with no ticker yields no
// rows, whatever its AI relevance.
func (m *Matcher) Match(rec models.HeadlineRecord) []models.MatchedRow {
	text := textmatch.Normalize(rec.Headline)
	if text == "" {
		return nil
	}

	var rows []models.MatchedRow
	aiRelated, aiDone := false, false
	for _, sym := range m.index.Symbols() {
		p, _ := m.index.Profile(sym)
		if !textmatch.ContainsAny(text, p.Keywords) {
			continue
		}
		if !aiDone {
			aiRelated = m.IsAIRelated(text)
			aiDone = true
		}
		proxy := textmatch.ContainsAny(text, p.PartnerKeywords)
		rows = append(rows, models.NewMatchedRow(rec, sym, aiRelated, proxy))
	}
	return rows
}

// IsAIRelated reports whether normalized text mentions a global buzz
// phrase or entity.
func (m *Matcher) IsAIRelated(text string) bool {
	return textmatch.ContainsAny(text, m.index.BuzzPhrases) ||
		textmatch.ContainsAny(text, m.index.BuzzEntities)
}

// Tickers returns the tickers a headline associates with, without
// building rows.
func (m *Matcher) Tickers(headline string) []string {
	text := textmatch.Normalize(headline)
	var out []string
	for _, sym := range m.index.Symbols() {
		p, _ := m.index.Profile(sym)
		if textmatch.ContainsAny(text, p.Keywords) {
			out = append(out, sym)
		}
	}
	return out
}

// MatchAll matches every record in order and concatenates the rows.
func (m *Matcher) MatchAll(records []models.HeadlineRecord) []models.MatchedRow {
	var rows []models.MatchedRow
	for _, rec := range records {
		rows = append(rows, m.Match(rec)...)
	}
	return rows
}

// Match is a convenience wrapper for a single record.
func Match(rec models.HeadlineRecord, ix *knowledge.Index) []models.MatchedRow {
	return New(ix).Match(rec)
}
