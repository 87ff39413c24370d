package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

// RecordRun stores a run report, assigning a new ID when it has none.
func (s *Store) RecordRun(ctx context.Context, r *models.RunReport) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	inputs, err := json.Marshal(nonNil(r.Inputs))
	if err != nil {
		return fmt.Errorf("marshalling inputs: %w", err)
	}
	backends, err := json.Marshal(nonNil(r.Backends))
	if err != nil {
		return fmt.Errorf("marshalling backends: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs (id, stage, inputs, output, backends, records_read, rows_matched,
			rows_written, rows_inserted, score_failures, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			output = excluded.output,
			records_read = excluded.records_read,
			rows_matched = excluded.rows_matched,
			rows_written = excluded.rows_written,
			rows_inserted = excluded.rows_inserted,
			score_failures = excluded.score_failures,
			finished_at = excluded.finished_at
	`, r.ID, string(r.Stage), string(inputs), r.Output, string(backends),
		r.RecordsRead, r.RowsMatched, r.RowsWritten, r.RowsInserted, r.ScoreFailures,
		formatTime(r.StartedAt), formatTime(r.FinishedAt))
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]models.RunReport, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, stage, inputs, output, backends, records_read, rows_matched, rows_written,
		       rows_inserted, score_failures, started_at, finished_at
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []models.RunReport
	for rows.Next() {
		var (
			r                 models.RunReport
			stage             string
			inputs, backends  string
			output            sql.NullString
			started, finished sql.NullString
		)
		if err := rows.Scan(&r.ID, &stage, &inputs, &output, &backends, &r.RecordsRead, &r.RowsMatched,
			&r.RowsWritten, &r.RowsInserted, &r.ScoreFailures, &started, &finished); err != nil {
			return nil, err
		}
		r.Stage = models.RunStage(stage)
		r.Output = output.String
		_ = json.Unmarshal([]byte(inputs), &r.Inputs)
		_ = json.Unmarshal([]byte(backends), &r.Backends)
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
