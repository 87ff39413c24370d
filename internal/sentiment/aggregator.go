package sentiment

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/tickerpulse/internal/knowledge"
	"github.com/seenimoa/tickerpulse/internal/llm"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

// Request is the input to one scoring call.
type Request struct {
	Headline string
	// Context is an optional annotation sentence for LLM prompts.
	Context string
}

// Scorer scores one headline. An error means the score is unavailable.
type Scorer interface {
	Score(ctx context.Context, req Request) (float64, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, req Request) (float64, error)

// Score calls f.
func (f ScorerFunc) Score(ctx context.Context, req Request) (float64, error) { return f(ctx, req) }

// Stats counts the work done by one Score call.
type Stats struct {
	Rows      int      `json:"rows"`
	Headlines int      `json:"headlines"`
	Backends  []string `json:"backends"`
	Unknown   []string `json:"unknown,omitempty"`
	Calls     int      `json:"calls"`
	Failures  int      `json:"failures"`
}

// Aggregator deduplicates headlines, scores each unique headline once per
// backend and broadcasts the scores onto every row.
type Aggregator struct {
	registry    *Registry
	index       *knowledge.Index
	gen         llm.Generator
	llmOpts     []LLMOption
	overrides   map[string]Scorer
	useContext  bool
	concurrency int
	logger      *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithIndex supplies the knowledge index used for prompt context.
func WithIndex(ix *knowledge.Index) Option {
	return func(a *Aggregator) { a.index = ix }
}

// WithGenerator sets the LLM backend used by every LLM-kind backend.
func WithGenerator(g llm.Generator, opts ...LLMOption) Option {
	return func(a *Aggregator) {
		a.gen = g
		a.llmOpts = opts
	}
}

// WithScorer replaces the scorer for one backend id.
func WithScorer(id string, s Scorer) Option {
	return func(a *Aggregator) { a.overrides[id] = s }
}

// WithPromptContext toggles keyword-context enrichment of LLM prompts.
func WithPromptContext(on bool) Option {
	return func(a *Aggregator) { a.useContext = on }
}

// WithConcurrency bounds parallel scoring calls. Values below 2 score
// sequentially.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) { a.concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// NewAggregator creates an aggregator over reg. A nil registry means the
// built-in one.
func NewAggregator(reg *Registry, opts ...Option) *Aggregator {
	if reg == nil {
		reg = DefaultRegistry()
	}
	a := &Aggregator{
		registry:    reg,
		overrides:   make(map[string]Scorer),
		useContext:  true,
		concurrency: 1,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Registry returns the registry the aggregator resolves backends with.
func (a *Aggregator) Registry() *Registry { return a.registry }

func (a *Aggregator) scorerFor(b Backend) Scorer {
	if s, ok := a.overrides[b.ID]; ok {
		return s
	}
	switch b.Kind {
	case KindLexical:
		return Lexical{}
	case KindLLM:
		if a.gen == nil {
			return nil
		}
		return NewLLMScorer(a.gen, b.Model, a.llmOpts...)
	}
	return nil
}

type job struct {
	backend  int
	headline int
}

// Score returns one ScoredRow per input row, in input order. Unknown
// backend ids produce no column. A failed call leaves a nil score for
// that headline and backend. The only error is cancellation of ctx.
func (a *Aggregator) Score(ctx context.Context, rows []models.MatchedRow, backendIDs []string) ([]models.ScoredRow, Stats, error) {
	backends, unknown := a.registry.Resolve(backendIDs)
	stats := Stats{Rows: len(rows), Unknown: unknown}
	for _, b := range backends {
		stats.Backends = append(stats.Backends, b.ID)
	}
	if len(unknown) > 0 {
		a.logger.Warn("ignoring unknown sentiment backends", "backends", unknown)
	}
	if len(rows) == 0 {
		return []models.ScoredRow{}, stats, nil
	}

	headlines, tickers := uniqueHeadlines(rows)
	stats.Headlines = len(headlines)

	contexts := make([]string, len(headlines))
	if a.useContext && a.index != nil && hasKind(backends, KindLLM) {
		for i, h := range headlines {
			contexts[i] = a.index.ContextFor(h, tickers[h])
		}
	}

	scores := make([][]*float64, len(backends))
	scorers := make([]Scorer, len(backends))
	var jobs []job
	for bi, b := range backends {
		scores[bi] = make([]*float64, len(headlines))
		scorers[bi] = a.scorerFor(b)
		if scorers[bi] == nil {
			a.logger.Warn("no scorer available, backend column will be null", "backend", b.ID)
			stats.Failures += len(headlines)
			continue
		}
		for hi := range headlines {
			jobs = append(jobs, job{backend: bi, headline: hi})
		}
	}

	var calls, failures atomic.Int64
	run := func(ctx context.Context, j job) {
		b := backends[j.backend]
		req := Request{Headline: headlines[j.headline]}
		if b.Kind == KindLLM {
			req.Context = contexts[j.headline]
		}
		calls.Add(1)
		v, err := scorers[j.backend].Score(ctx, req)
		if err != nil {
			failures.Add(1)
			a.logger.Debug("score unavailable", "backend", b.ID, "headline", req.Headline, "error", err)
			return
		}
		scores[j.backend][j.headline] = models.Float(v)
	}

	if a.concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.concurrency)
		for _, j := range jobs {
			g.Go(func() error {
				run(gctx, j)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, j := range jobs {
			if ctx.Err() != nil {
				break
			}
			run(ctx, j)
		}
	}

	stats.Calls = int(calls.Load())
	stats.Failures += int(failures.Load())
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	index := make(map[string]int, len(headlines))
	for i, h := range headlines {
		index[h] = i
	}
	out := make([]models.ScoredRow, len(rows))
	for i, r := range rows {
		hi := index[r.Headline]
		sr := models.ScoredRow{MatchedRow: r, Scores: make(map[string]*float64, len(backends))}
		for bi, b := range backends {
			sr.Scores[b.Column] = scores[bi][hi]
		}
		out[i] = sr
	}

	a.logger.Info("sentiment scored",
		"rows", stats.Rows,
		"headlines", stats.Headlines,
		"backends", stats.Backends,
		"calls", stats.Calls,
		"failures", stats.Failures)
	return out, stats, nil
}

// uniqueHeadlines returns distinct headlines in first-occurrence order and
// the distinct tickers of each headline in first-occurrence order.
func uniqueHeadlines(rows []models.MatchedRow) ([]string, map[string][]string) {
	var headlines []string
	tickers := make(map[string][]string)
	seenTicker := make(map[string]map[string]struct{})
	for _, r := range rows {
		set, ok := seenTicker[r.Headline]
		if !ok {
			headlines = append(headlines, r.Headline)
			set = make(map[string]struct{})
			seenTicker[r.Headline] = set
		}
		if r.Ticker == "" {
			continue
		}
		if _, dup := set[r.Ticker]; dup {
			continue
		}
		set[r.Ticker] = struct{}{}
		tickers[r.Headline] = append(tickers[r.Headline], r.Ticker)
	}
	return headlines, tickers
}

func hasKind(backends []Backend, k Kind) bool {
	for _, b := range backends {
		if b.Kind == k {
			return true
		}
	}
	return false
}
