package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleScoredRow() ScoredRow {
	rec := HeadlineRecord{
		Source:    "TechCrunch",
		FetchedAt: "2026-02-26T15:04:05Z",
		Headline:  "Nvidia & Microsoft expand <AI> deal",
		PostedAt:  "2026-02-26T14:00:00Z",
		Reporter:  "TechCrunch",
		URL:       "https://example.com/a?x=1&y=2",
	}
	return ScoredRow{
		MatchedRow: NewMatchedRow(rec, "NVDA", true, true),
		Scores: map[string]*float64{
			"sentiment_vader":    Float(0.42),
			"sentiment_llm_phi3": nil,
		},
	}
}

func TestScoredRowMarshalFlattensScores(t *testing.T) {
	data, err := json.Marshal(sampleScoredRow())
	if err != nil {
		t.Fatalf("json.Marshal(ScoredRow) error: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("json.Unmarshal error: %v", err)
	}
	if fields["ticker"] != "NVDA" {
		t.Errorf("ticker = %v, want NVDA", fields["ticker"])
	}
	if fields["sentiment_vader"] != 0.42 {
		t.Errorf("sentiment_vader = %v, want 0.42", fields["sentiment_vader"])
	}
	v, ok := fields["sentiment_llm_phi3"]
	if !ok || v != nil {
		t.Errorf("sentiment_llm_phi3 = %v (present %v), want null", v, ok)
	}
	if _, ok := fields["Scores"]; ok {
		t.Error("Scores map leaked into the wire form")
	}
}

func TestScoredRowMarshalKeepsHTMLCharacters(t *testing.T) {
	data, err := json.Marshal(sampleScoredRow())
	if err != nil {
		t.Fatalf("json.Marshal error: %v", err)
	}
	s := string(data)
	for _, want := range []string{"Nvidia & Microsoft", "<AI>", "x=1&y=2"} {
		if !strings.Contains(s, want) {
			t.Errorf("output %s does not contain %q", s, want)
		}
	}
}

func TestScoredRowRoundTrip(t *testing.T) {
	row := sampleScoredRow()
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("json.Marshal error: %v", err)
	}
	var got ScoredRow
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("json.Unmarshal error: %v", err)
	}
	if got.MatchedRow != row.MatchedRow {
		t.Errorf("MatchedRow = %+v, want %+v", got.MatchedRow, row.MatchedRow)
	}
	if v, ok := got.Score("sentiment_vader"); !ok || v == nil || *v != 0.42 {
		t.Errorf("sentiment_vader = %v, %v", v, ok)
	}
	if v, ok := got.Score("sentiment_llm_phi3"); !ok || v != nil {
		t.Errorf("sentiment_llm_phi3 = %v, %v; want present and nil", v, ok)
	}
}

func TestScoredRowWithoutScores(t *testing.T) {
	row := ScoredRow{MatchedRow: MatchedRow{Headline: "h", Ticker: "AAPL"}}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("json.Marshal error: %v", err)
	}
	var got ScoredRow
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("json.Unmarshal error: %v", err)
	}
	if got.Scores != nil {
		t.Errorf("Scores = %v, want nil", got.Scores)
	}
	if cols := got.Columns(); len(cols) != 0 {
		t.Errorf("Columns() = %v, want empty", cols)
	}
}

func TestScoredRowColumnsSorted(t *testing.T) {
	cols := sampleScoredRow().Columns()
	if len(cols) != 2 || cols[0] != "sentiment_llm_phi3" || cols[1] != "sentiment_vader" {
		t.Errorf("Columns() = %v", cols)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	var row ScoredRow
	data := `{"headline":"h","ticker":"MSFT","extra":1,"sentiment_vader":-0.5}`
	if err := json.Unmarshal([]byte(data), &row); err != nil {
		t.Fatalf("json.Unmarshal error: %v", err)
	}
	if len(row.Scores) != 1 || *row.Scores["sentiment_vader"] != -0.5 {
		t.Errorf("Scores = %v", row.Scores)
	}
}

func TestUnmarshalRejectsNonNumericScore(t *testing.T) {
	var row ScoredRow
	if err := json.Unmarshal([]byte(`{"sentiment_vader":"high"}`), &row); err == nil {
		t.Error("expected error for non-numeric score")
	}
}

func TestMatchedRowKey(t *testing.T) {
	row := sampleScoredRow().MatchedRow
	want := RowKey{Headline: row.Headline, URL: row.URL, Ticker: "NVDA"}
	if row.Key() != want {
		t.Errorf("Key() = %+v, want %+v", row.Key(), want)
	}
}

func TestRunReportDuration(t *testing.T) {
	start := time.Date(2026, 2, 26, 15, 0, 0, 0, time.UTC)
	r := RunReport{StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond)}
	if r.Duration() != 1500*time.Millisecond {
		t.Errorf("Duration() = %v", r.Duration())
	}
	if (RunReport{StartedAt: start}).Duration() != 0 {
		t.Error("unfinished run should report zero duration")
	}
}
