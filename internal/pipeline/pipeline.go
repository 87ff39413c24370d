// Package pipeline wires ingestion output, matching, sentiment scoring and
// persistence into the batch runs exposed by the CLI.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/seenimoa/tickerpulse/internal/jsonl"
	"github.com/seenimoa/tickerpulse/internal/matching"
	"github.com/seenimoa/tickerpulse/internal/sentiment"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// ErrNoInput is returned when no raw or matched input file can be found.
var ErrNoInput = errors.New("pipeline: no input files")

// Store is the persistence collaborator.
type Store interface {
	InsertRows(ctx context.Context, rows []models.ScoredRow) (int, error)
	RecordRun(ctx context.Context, r *models.RunReport) error
}

// Pipeline runs the batch stages over files.
type Pipeline struct {
	matcher      *matching.Matcher
	aggregator   *sentiment.Aggregator
	processedDir string
	backends     []string
	store        Store
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBackends sets the sentiment backend ids to score with.
func WithBackends(ids []string) Option {
	return func(p *Pipeline) { p.backends = ids }
}

// WithStore enables persistence of scored rows and run reports.
func WithStore(s Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline writing its outputs under processedDir.
func New(m *matching.Matcher, agg *sentiment.Aggregator, processedDir string, opts ...Option) *Pipeline {
	p := &Pipeline{
		matcher:      m,
		aggregator:   agg,
		processedDir: processedDir,
		logger:       slog.New(slog.DiscardHandler),
		now:          time.Now,
	}
	if agg != nil {
		p.backends = agg.Registry().IDs()
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ResolveInputs picks the raw files for a run. With no patterns the most
// recently modified headlines_*.jsonl in rawDir is used. A pattern that
// matches nothing is retried by base name inside rawDir.
func ResolveInputs(rawDir string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		latest, err := utils.LatestFile(filepath.Join(rawDir, utils.RawPrefix+"*.jsonl"))
		if err != nil {
			return nil, err
		}
		if latest == "" {
			return nil, fmt.Errorf("%w: no %s*.jsonl in %s", ErrNoInput, utils.RawPrefix, rawDir)
		}
		return []string{latest}, nil
	}

	paths, err := utils.ExpandGlobs(patterns)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		fallback := make([]string, len(patterns))
		for i, pat := range patterns {
			fallback[i] = filepath.Join(rawDir, filepath.Base(pat))
		}
		if paths, err = utils.ExpandGlobs(fallback); err != nil {
			return nil, err
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoInput, strings.Join(patterns, ", "))
	}
	return paths, nil
}

// Match reads raw files, matches every record and writes
// matched_<suffix>.jsonl.
func (p *Pipeline) Match(ctx context.Context, inputs []string) (*models.RunReport, error) {
	report := p.newReport(models.StageMatch, inputs)
	records, err := p.readRaw(inputs)
	if err != nil {
		return nil, err
	}
	report.RecordsRead = len(records)

	rows := p.matcher.MatchAll(records)
	report.RowsMatched = len(rows)
	report.Output = filepath.Join(p.processedDir, utils.StageFileName(utils.MatchedPrefix, utils.SuffixFromPath(inputs[0])))
	if err := jsonl.WriteFile(report.Output, rows); err != nil {
		return nil, fmt.Errorf("writing matched rows: %w", err)
	}
	report.RowsWritten = len(rows)
	return p.finish(ctx, report), nil
}

// Score reads matched rows from input and writes scored rows to output.
// An empty input still produces an (empty) output file.
func (p *Pipeline) Score(ctx context.Context, input, output string) (*models.RunReport, error) {
	report := p.newReport(models.StageScore, []string{input})
	if _, err := os.Stat(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoInput, err)
	}
	rows, err := jsonl.Read[models.MatchedRow](input)
	if err != nil {
		return nil, err
	}
	report.RecordsRead = len(rows)
	report.RowsMatched = len(rows)

	scored, stats, err := p.aggregator.Score(ctx, rows, p.backends)
	if err != nil {
		return nil, err
	}
	report.Backends = stats.Backends
	report.ScoreFailures = stats.Failures

	report.Output = output
	if err := jsonl.WriteFile(output, scored); err != nil {
		return nil, fmt.Errorf("writing scored rows: %w", err)
	}
	report.RowsWritten = len(scored)
	return p.finish(ctx, report), nil
}

// Process runs match and score in memory and writes
// processed_<suffix>.jsonl, then inserts the rows when a store is set.
func (p *Pipeline) Process(ctx context.Context, inputs []string) (*models.RunReport, error) {
	report := p.newReport(models.StageProcess, inputs)
	records, err := p.readRaw(inputs)
	if err != nil {
		return nil, err
	}
	report.RecordsRead = len(records)

	rows := p.matcher.MatchAll(records)
	report.RowsMatched = len(rows)
	p.logger.Info("headlines matched", "records", len(records), "rows", len(rows))

	scored, stats, err := p.aggregator.Score(ctx, rows, p.backends)
	if err != nil {
		return nil, err
	}
	report.Backends = stats.Backends
	report.ScoreFailures = stats.Failures

	report.Output = filepath.Join(p.processedDir, utils.StageFileName(utils.ProcessedPrefix, utils.SuffixFromPath(inputs[0])))
	if err := jsonl.WriteFile(report.Output, scored); err != nil {
		return nil, fmt.Errorf("writing processed rows: %w", err)
	}
	report.RowsWritten = len(scored)

	if p.store != nil {
		n, err := p.store.InsertRows(ctx, scored)
		if err != nil {
			return nil, fmt.Errorf("storing rows: %w", err)
		}
		report.RowsInserted = n
	}
	return p.finish(ctx, report), nil
}

// Import inserts the rows of a processed file into the store.
func (p *Pipeline) Import(ctx context.Context, input string) (*models.RunReport, error) {
	if p.store == nil {
		return nil, errors.New("pipeline: no store configured")
	}
	report := p.newReport(models.StageImport, []string{input})
	rows, err := jsonl.Read[models.ScoredRow](input)
	if err != nil {
		return nil, err
	}
	report.RecordsRead = len(rows)
	n, err := p.store.InsertRows(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("storing rows: %w", err)
	}
	report.RowsInserted = n
	return p.finish(ctx, report), nil
}

func (p *Pipeline) readRaw(inputs []string) ([]models.HeadlineRecord, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}
	records, err := jsonl.ReadFiles[models.HeadlineRecord](inputs)
	if err != nil {
		return nil, fmt.Errorf("reading raw headlines: %w", err)
	}
	return records, nil
}

func (p *Pipeline) newReport(stage models.RunStage, inputs []string) *models.RunReport {
	return &models.RunReport{Stage: stage, Inputs: inputs, StartedAt: p.now()}
}

func (p *Pipeline) finish(ctx context.Context, r *models.RunReport) *models.RunReport {
	r.FinishedAt = p.now()
	if p.store != nil {
		if err := p.store.RecordRun(ctx, r); err != nil {
			p.logger.Warn("failed to record run", "stage", r.Stage, "error", err)
		}
	}
	p.logger.Info("run complete",
		"stage", r.Stage,
		"records_read", r.RecordsRead,
		"rows_matched", r.RowsMatched,
		"rows_written", r.RowsWritten,
		"rows_inserted", r.RowsInserted,
		"output", r.Output)
	return r
}
