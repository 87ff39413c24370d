package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

var baseColumns = []string{
	"posted_at", "fetched_at", "headline", "url", "source", "reporter",
	"ticker", "is_ai_related", "is_proxy_partnership",
}

// InsertRows stores rows with INSERT OR IGNORE and returns how many rows
// were actually added. Rows whose (headline, url, ticker) already exists
// are skipped silently.
func (s *Store) InsertRows(ctx context.Context, rows []models.ScoredRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	colSet := make(map[string]struct{})
	for _, r := range rows {
		for c := range r.Scores {
			colSet[c] = struct{}{}
		}
	}
	scoreCols := make([]string, 0, len(colSet))
	for c := range colSet {
		scoreCols = append(scoreCols, c)
	}
	sort.Strings(scoreCols)
	if err := s.EnsureScoreColumns(ctx, scoreCols); err != nil {
		return 0, err
	}

	cols := append(append([]string{}, baseColumns...), scoreCols...)
	query := fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		scoreTable, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var before int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+scoreTable).Scan(&before); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for _, r := range rows {
		args[0] = r.PostedAt
		args[1] = r.FetchedAt
		args[2] = r.Headline
		args[3] = r.URL
		args[4] = r.Source
		args[5] = r.Reporter
		args[6] = r.Ticker
		args[7] = boolInt(r.IsAIRelated)
		args[8] = boolInt(r.IsProxyPartnership)
		for i, c := range scoreCols {
			if v := r.Scores[c]; v != nil {
				args[len(baseColumns)+i] = *v
			} else {
				args[len(baseColumns)+i] = nil
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("inserting row: %w", err)
		}
	}

	var after int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+scoreTable).Scan(&after); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return after - before, nil
}

// ScoreQuery filters ScoresByTicker.
type ScoreQuery struct {
	Ticker string
	AIOnly bool
	// Since keeps rows posted at or after this ISO timestamp prefix.
	Since string
	Limit int
}

// ScoresByTicker returns stored rows for one ticker, newest first.
func (s *Store) ScoresByTicker(ctx context.Context, q ScoreQuery) ([]models.ScoredRow, error) {
	scoreCols, err := s.ScoreColumns(ctx)
	if err != nil {
		return nil, err
	}
	cols := append(append([]string{}, baseColumns...), scoreCols...)

	var (
		where = []string{"ticker = ?"}
		args  = []any{q.Ticker}
	)
	if q.AIOnly {
		where = append(where, "is_ai_related = 1")
	}
	if q.Since != "" {
		where = append(where, "posted_at >= ?")
		args = append(args, q.Since)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY posted_at DESC, id DESC LIMIT ?",
		strings.Join(cols, ", "), scoreTable, strings.Join(where, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scores: %w", err)
	}
	defer rows.Close()

	var out []models.ScoredRow
	for rows.Next() {
		var (
			posted, fetched, source, reporter sql.NullString
			ai, proxy                         sql.NullInt64
			r                                 models.ScoredRow
		)
		scores := make([]sql.NullFloat64, len(scoreCols))
		dest := []any{&posted, &fetched, &r.Headline, &r.URL, &source, &reporter, &r.Ticker, &ai, &proxy}
		for i := range scores {
			dest = append(dest, &scores[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		r.PostedAt, r.FetchedAt = posted.String, fetched.String
		r.Source, r.Reporter = source.String, reporter.String
		r.IsAIRelated = ai.Int64 == 1
		r.IsProxyPartnership = proxy.Int64 == 1
		r.Scores = make(map[string]*float64, len(scoreCols))
		for i, c := range scoreCols {
			if scores[i].Valid {
				r.Scores[c] = models.Float(scores[i].Float64)
			} else {
				r.Scores[c] = nil
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TickerSummaries aggregates stored rows per ticker.
func (s *Store) TickerSummaries(ctx context.Context) ([]models.TickerSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker,
		       COUNT(*),
		       COALESCE(SUM(is_ai_related), 0),
		       COALESCE(SUM(is_proxy_partnership), 0),
		       AVG(sentiment_vader),
		       MAX(posted_at)
		FROM sentiment_scores
		GROUP BY ticker
		ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("summarizing tickers: %w", err)
	}
	defer rows.Close()

	var out []models.TickerSummary
	for rows.Next() {
		var (
			t    models.TickerSummary
			avg  sql.NullFloat64
			last sql.NullString
		)
		if err := rows.Scan(&t.Ticker, &t.Rows, &t.AIRelated, &t.ProxyRows, &avg, &last); err != nil {
			return nil, err
		}
		if avg.Valid {
			t.AvgLexical = models.Float(avg.Float64)
		}
		t.LastPosted = last.String
		out = append(out, t)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
