// Package knowledge compiles the watch-list knowledge base (a global AI
// vocabulary plus one relationship file per ticker) into an in-memory Index
// used for headline matching and LLM prompt context.
package knowledge

import (
	"sort"
	"strings"

	"github.com/seenimoa/tickerpulse/internal/textmatch"
)

// PartnerCategories are the ecosystem categories whose entities flag a
// headline as a proxy partnership.
var PartnerCategories = []string{"lab_partners", "partners", "infra_partners"}

// EcosystemCategories are all ecosystem categories that associate a
// headline with the ticker, partners first.
var EcosystemCategories = []string{"lab_partners", "partners", "infra_partners", "suppliers", "competitors"}

// KeywordContext annotates a product or subsidiary keyword with the reason
// it matters for the ticker (e.g. "NVDA's primary 2026 catalyst").
type KeywordContext struct {
	Keyword string `json:"keyword"`
	Context string `json:"context"`
}

// TickerProfile is the compiled view of one relationship file.
type TickerProfile struct {
	Ticker string `json:"ticker"`
	// Keywords associate a headline with the ticker: identity, subsidiaries,
	// products and every ecosystem category.
	Keywords []string `json:"ticker_keywords"`
	// PartnerKeywords come only from PartnerCategories.
	PartnerKeywords []string `json:"partner_keywords"`
	// KeywordContexts are kept in declaration order, products first.
	KeywordContexts []KeywordContext `json:"keyword_contexts"`
	SourcePath      string           `json:"source_path,omitempty"`
}

// GlobalVocabulary decides AI relevance independently of any ticker.
type GlobalVocabulary struct {
	BuzzPhrases  []string `json:"ai_buzz_phrases"`
	BuzzEntities []string `json:"ai_buzz_entities"`
}

// SkippedFile records a ticker file that did not contribute to the index.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Index is the compiled knowledge base. It is read-only once built and safe
// for concurrent readers.
type Index struct {
	GlobalVocabulary
	Tickers map[string]*TickerProfile `json:"tickers"`
	Skipped []SkippedFile             `json:"skipped,omitempty"`

	symbols []string
}

// NewIndex assembles an Index from a vocabulary and profiles. Later
// profiles replace earlier ones with the same ticker.
func NewIndex(vocab GlobalVocabulary, profiles ...*TickerProfile) *Index {
	ix := &Index{
		GlobalVocabulary: vocab,
		Tickers:          make(map[string]*TickerProfile, len(profiles)),
	}
	for _, p := range profiles {
		ix.Tickers[p.Ticker] = p
	}
	ix.refresh()
	return ix
}

func (ix *Index) refresh() {
	ix.symbols = ix.symbols[:0]
	for t := range ix.Tickers {
		ix.symbols = append(ix.symbols, t)
	}
	sort.Strings(ix.symbols)
}

// Symbols returns the indexed tickers in sorted order.
func (ix *Index) Symbols() []string {
	out := make([]string, len(ix.symbols))
	copy(out, ix.symbols)
	return out
}

// Profile returns the profile for ticker (upper-case symbol).
func (ix *Index) Profile(ticker string) (*TickerProfile, bool) {
	p, ok := ix.Tickers[ticker]
	return p, ok
}

// Len returns the number of indexed tickers.
func (ix *Index) Len() int { return len(ix.Tickers) }

// ContextFor builds the prompt context for a headline associated with
// tickers: every keyword context of those tickers whose keyword occurs in
// the headline, joined as "This news relates to A; B.". Every matching
// keyword contributes, so a product named with its alias repeats its
// context. It returns "" when nothing applies.
func (ix *Index) ContextFor(headline string, tickers []string) string {
	text := textmatch.Normalize(headline)
	var parts []string
	for _, t := range tickers {
		p, ok := ix.Tickers[t]
		if !ok {
			continue
		}
		for _, kc := range p.KeywordContexts {
			if kc.Keyword == "" || kc.Context == "" {
				continue
			}
			if !textmatch.ContainsKeyword(text, kc.Keyword) && !textmatch.ContainsPadded(text, kc.Keyword) {
				continue
			}
			parts = append(parts, kc.Context)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "This news relates to " + strings.Join(parts, "; ") + "."
}

// ContextMap returns the keyword contexts as a map, for inspection.
func (p *TickerProfile) ContextMap() map[string]string {
	m := make(map[string]string, len(p.KeywordContexts))
	for _, kc := range p.KeywordContexts {
		m[kc.Keyword] = kc.Context
	}
	return m
}
