package sentiment

import (
	"context"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

// ------------------------------------------------------------------
// VADER headline scorer (offline, no LLM needed).
// ------------------------------------------------------------------

// analyzer loads the VADER lexicon once. The analyzer is read-only after
// construction, so one instance serves every goroutine.
var analyzer = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// Lexical is the deterministic VADER scorer. It has no state.
type Lexical struct{}

// Score implements Scorer. It never fails.
func (Lexical) Score(_ context.Context, req Request) (float64, error) {
	return ScoreText(req.Headline), nil
}

// ScoreText returns the VADER compound score of text in [-1, 1].
// Empty or blank text scores exactly 0.
func ScoreText(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	return clamp(analyzer().PolarityScores(text).Compound)
}

func clamp(v float64) float64 {
	switch {
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}
