// Package models defines the core data structures used throughout tickerpulse.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ScoreColumnPrefix prefixes every sentiment column in scored rows.
const ScoreColumnPrefix = "sentiment_"

// HeadlineRecord is one normalized headline produced by ingestion.
// All fields are always present on the wire, possibly as empty strings.
type HeadlineRecord struct {
	Source    string `json:"source"`     // pipeline source, e.g. "TechCrunch", "Google News RSS"
	FetchedAt string `json:"fetched_at"` // e.g. "2026-02-26T15:04:05Z"
	Headline  string `json:"headline"`
	PostedAt  string `json:"posted_at"`
	Reporter  string `json:"reporter"` // outlet name, e.g. "The Verge"
	URL       string `json:"url"`
}

// MatchedRow is a headline associated with exactly one ticker.
// A headline that maps to N tickers yields N rows with identical record fields.
type MatchedRow struct {
	PostedAt           string `json:"posted_at"`
	FetchedAt          string `json:"fetched_at"`
	Headline           string `json:"headline"`
	URL                string `json:"url"`
	Source             string `json:"source"`
	Reporter           string `json:"reporter"`
	Ticker             string `json:"ticker"`
	IsAIRelated        bool   `json:"is_ai_related"`
	IsProxyPartnership bool   `json:"is_proxy_partnership"`
}

// NewMatchedRow copies the record fields of rec into a row for ticker.
func NewMatchedRow(rec HeadlineRecord, ticker string, aiRelated, proxy bool) MatchedRow {
	return MatchedRow{
		PostedAt:           rec.PostedAt,
		FetchedAt:          rec.FetchedAt,
		Headline:           rec.Headline,
		URL:                rec.URL,
		Source:             rec.Source,
		Reporter:           rec.Reporter,
		Ticker:             ticker,
		IsAIRelated:        aiRelated,
		IsProxyPartnership: proxy,
	}
}

// Key returns the persistence uniqueness key (headline, url, ticker).
func (r MatchedRow) Key() RowKey {
	return RowKey{Headline: r.Headline, URL: r.URL, Ticker: r.Ticker}
}

// RowKey identifies a stored row.
type RowKey struct {
	Headline string
	URL      string
	Ticker   string
}

// ScoredRow is a MatchedRow plus one nullable score per enabled backend.
// Scores is keyed by output column (e.g. "sentiment_vader"); a nil value
// means the backend could not score the headline.
type ScoredRow struct {
	MatchedRow
	Scores map[string]*float64 `json:"-"`
}

// Score returns the score for column and whether the column is present.
func (r ScoredRow) Score(column string) (*float64, bool) {
	v, ok := r.Scores[column]
	return v, ok
}

// Columns returns the score columns present on the row in sorted order.
func (r ScoredRow) Columns() []string {
	cols := make([]string, 0, len(r.Scores))
	for c := range r.Scores {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// MarshalJSON flattens the scores next to the matched-row fields so the
// wire form is a single object: {..., "ticker": "NVDA", "sentiment_vader": 0.42}.
func (r ScoredRow) MarshalJSON() ([]byte, error) {
	var base bytes.Buffer
	enc := json.NewEncoder(&base)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.MatchedRow); err != nil {
		return nil, err
	}
	fields := bytes.TrimRight(base.Bytes(), "\n")
	if len(r.Scores) == 0 {
		return fields, nil
	}

	var buf bytes.Buffer
	buf.Write(fields[:len(fields)-1])
	for _, col := range r.Columns() {
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		if v := r.Scores[col]; v != nil {
			num, err := json.Marshal(*v)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			buf.Write(num)
		} else {
			buf.WriteString("null")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the matched-row fields and collects every
// "sentiment_*" field into Scores.
func (r *ScoredRow) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &r.MatchedRow); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	r.Scores = nil
	for k, raw := range fields {
		if !strings.HasPrefix(k, ScoreColumnPrefix) {
			continue
		}
		if r.Scores == nil {
			r.Scores = make(map[string]*float64)
		}
		var v *float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("column %s: %w", k, err)
		}
		r.Scores[k] = v
	}
	return nil
}

// Float returns a pointer to v, for building score maps.
func Float(v float64) *float64 {
	return &v
}
