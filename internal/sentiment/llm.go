package sentiment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/tickerpulse/internal/infra"
	"github.com/seenimoa/tickerpulse/internal/llm"
)

// ErrNoScore is returned when a response carries no parseable number.
var ErrNoScore = errors.New("sentiment: no score in response")

// ErrBlankHeadline is returned by the LLM scorer for empty input.
var ErrBlankHeadline = errors.New("sentiment: blank headline")

const promptTemplate = `### SYSTEM PROMPT ###
You are a Senior Equity Research Analyst specializing in the AI Sector.
Your task is to analyze the sentiment of a financial headline on a scale of [-1.0, 1.0].

SCORING CRITERIA:
- [-1.0 to -0.6]: Critical negative impact (e.g., massive fine, model failure, key partner loss).
- [-0.5 to -0.1]: Minor headwinds (e.g., supply chain delays, increased competition).
- [0.0]: Neutral/Routine corporate news.
- [0.1 to 0.5]: Incremental positives (e.g., routine software update, minor partnership).
- [0.6 to 1.0]: Major breakthroughs (e.g., AGI milestone, huge CapEx expansion, new chip lead).

### EXAMPLES ###
Headline: "FTC launches antitrust investigation into Microsoft's OpenAI partnership."
Score: -0.8

Headline: "Nvidia announces new Blackwell shipment delays due to server rack overheating."
Score: -0.5

Headline: "Apple integrates OpenAI's ChatGPT into iOS 18 with local processing."
Score: 0.7

Headline: "Meta releases Llama 4 with 10x efficiency gains over previous generation."
Score: 0.9

### TASK ###
%sHeadline: "%s"
Score:

Response must be a single float value only. No prose.`

// BuildPrompt renders the scoring prompt. A non-blank context is placed
// in a "Context:" block ahead of the headline.
func BuildPrompt(headline, context string) string {
	block := ""
	if c := strings.TrimSpace(context); c != "" {
		block = "Context: " + c + "\n\n"
	}
	return fmt.Sprintf(promptTemplate, block, strings.TrimSpace(headline))
}

var numberPattern = regexp.MustCompile(`-?\d+\.?\d*`)

// ParseScore extracts the last number in text and clamps it to [-1, 1].
// Reasoning models print intermediate numbers first, so only the final
// one counts.
func ParseScore(text string) (float64, error) {
	matches := numberPattern.FindAllString(strings.TrimSpace(text), -1)
	if len(matches) == 0 {
		return 0, ErrNoScore
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(matches[len(matches)-1], "."), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoScore, err)
	}
	return clamp(v), nil
}

// LLMScorer scores headlines with one model over a Generator.
type LLMScorer struct {
	gen         llm.Generator
	model       string
	timeout     time.Duration
	temperature float64
	pacer       *infra.Pacer
}

// LLMOption configures an LLMScorer.
type LLMOption func(*LLMScorer)

// WithTimeout bounds each call. Zero disables the bound.
func WithTimeout(d time.Duration) LLMOption {
	return func(s *LLMScorer) { s.timeout = d }
}

// WithTemperature sets the sampling temperature (default 0).
func WithTemperature(t float64) LLMOption {
	return func(s *LLMScorer) { s.temperature = t }
}

// WithPacer pauses after each successful call.
func WithPacer(p *infra.Pacer) LLMOption {
	return func(s *LLMScorer) { s.pacer = p }
}

// NewLLMScorer creates a scorer for model.
func NewLLMScorer(gen llm.Generator, model string, opts ...LLMOption) *LLMScorer {
	s := &LLMScorer{gen: gen, model: model, timeout: 60 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model returns the model identifier.
func (s *LLMScorer) Model() string { return s.model }

// Score implements Scorer. Any failure, including a timeout, is returned
// as an error and becomes a null score upstream.
func (s *LLMScorer) Score(ctx context.Context, req Request) (float64, error) {
	if strings.TrimSpace(req.Headline) == "" {
		return 0, ErrBlankHeadline
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.gen.Generate(callCtx, llm.GenerateRequest{
		Model:       s.model,
		Prompt:      BuildPrompt(req.Headline, req.Context),
		Temperature: s.temperature,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.model, err)
	}
	// The pause follows every answered call, parseable or not.
	if err := s.pacer.Pause(ctx); err != nil {
		return 0, err
	}
	return ParseScore(resp.Text)
}
