package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/tickerpulse/internal/textmatch"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// SourceResult reports what one source contributed to a fetch.
type SourceResult struct {
	Name     string        `json:"name"`
	Records  int           `json:"records"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// FetchResult is the outcome of FetchAll.
type FetchResult struct {
	Records []models.HeadlineRecord
	Sources []SourceResult
	// Fetched counts records before de-duplication.
	Fetched int
}

// Fetcher runs a set of sources.
type Fetcher struct {
	sources []Source
	limit   int
	logger  *slog.Logger
}

// NewFetcher creates a fetcher reading at most limitPerSource records
// from each source.
func NewFetcher(sources []Source, limitPerSource int, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{sources: sources, limit: limitPerSource, logger: logger}
}

// FetchAll queries every source concurrently. A failing source contributes
// nothing and is reported in Sources; it never fails the whole fetch.
// Records keep source order and are de-duplicated.
func (f *Fetcher) FetchAll(ctx context.Context) (*FetchResult, error) {
	perSource := make([][]models.HeadlineRecord, len(f.sources))
	results := make([]SourceResult, len(f.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range f.sources {
		g.Go(func() error {
			start := time.Now()
			recs, err := src.Fetch(gctx, f.limit)
			results[i] = SourceResult{Name: src.Name(), Records: len(recs), Err: err, Duration: time.Since(start)}
			switch {
			case errors.Is(err, ErrNoAPIKey):
				f.logger.Warn("source skipped, no API key", "source", src.Name())
			case err != nil:
				f.logger.Warn("source failed", "source", src.Name(), "error", err)
			default:
				f.logger.Info("source fetched", "source", src.Name(), "records", len(recs))
			}
			perSource[i] = recs
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &FetchResult{Sources: results}
	var all []models.HeadlineRecord
	for _, recs := range perSource {
		all = append(all, recs...)
	}
	res.Fetched = len(all)
	res.Records = Dedupe(all)
	f.logger.Info("fetch complete", "before_dedup", res.Fetched, "after_dedup", len(res.Records))
	return res, nil
}

// Dedupe drops records that repeat (reporter, posted date, normalized
// headline), keeping the first occurrence.
func Dedupe(records []models.HeadlineRecord) []models.HeadlineRecord {
	type key struct{ reporter, date, headline string }
	seen := make(map[key]struct{}, len(records))
	out := make([]models.HeadlineRecord, 0, len(records))
	for _, r := range records {
		k := key{r.Reporter, utils.DatePrefix(r.PostedAt), textmatch.Normalize(r.Headline)}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// DefaultSources returns the built-in sources: TechCrunch, NewsAPI and the
// Google News AI topic, sharing one limiter.
func DefaultSources(newsAPIKey, country string, opts ...Option) []Source {
	return []Source{
		NewRSSSource(TechCrunchFeed, opts...),
		NewNewsAPISource(newsAPIKey, country, opts...),
		NewRSSSource(GoogleNewsAIFeed, opts...),
	}
}
