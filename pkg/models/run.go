package models

import "time"

// RunStage identifies which pipeline stages a run executed.
type RunStage string

const (
	StageIngest  RunStage = "ingest"
	StageMatch   RunStage = "match"
	StageScore   RunStage = "score"
	StageProcess RunStage = "process"
	StageImport  RunStage = "import"
)

// RunReport summarizes one pipeline run. Counts are reported to the user
// and recorded in the run audit table when persistence is enabled.
type RunReport struct {
	ID            string    `json:"id"`
	Stage         RunStage  `json:"stage"`
	Inputs        []string  `json:"inputs,omitempty"`
	Output        string    `json:"output,omitempty"`
	Backends      []string  `json:"backends,omitempty"`
	RecordsRead   int       `json:"records_read"`
	RowsMatched   int       `json:"rows_matched"`
	RowsWritten   int       `json:"rows_written"`
	RowsInserted  int       `json:"rows_inserted"`
	ScoreFailures int       `json:"score_failures"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// Duration returns how long the run took.
func (r RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// TickerSummary is a per-ticker aggregate over stored rows.
type TickerSummary struct {
	Ticker     string   `json:"ticker"`
	Rows       int      `json:"rows"`
	AIRelated  int      `json:"ai_related"`
	ProxyRows  int      `json:"proxy_partnership"`
	AvgLexical *float64 `json:"avg_sentiment_vader,omitempty"`
	LastPosted string   `json:"last_posted_at,omitempty"`
}
