// Package sentiment scores matched headlines with a set of backends (a
// lexical scorer and one LLM backend per model) and merges the scores back
// onto every row that shares a headline.
package sentiment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

// Kind selects how a backend scores text.
type Kind string

const (
	// KindLexical scores with the built-in lexicon.
	KindLexical Kind = "lexical"
	// KindLLM scores by prompting a model over the LLM backend.
	KindLLM Kind = "llm"
)

var columnPattern = regexp.MustCompile(`^sentiment_[a-z0-9_]+$`)

// Backend maps a backend identifier to its output column and scorer.
type Backend struct {
	ID     string `mapstructure:"id" json:"id"`
	Column string `mapstructure:"column" json:"column"`
	Kind   Kind   `mapstructure:"kind" json:"kind"`
	Model  string `mapstructure:"model" json:"model,omitempty"`
}

// ValidColumn reports whether name is usable as a score column.
func ValidColumn(name string) bool {
	return columnPattern.MatchString(name)
}

// ColumnFor derives a column name for an LLM model id, e.g.
// "llama3.2:3b" → "sentiment_llm_llama3_2_3b".
func ColumnFor(model string) string {
	var b strings.Builder
	b.WriteString(models.ScoreColumnPrefix + "llm_")
	underscore := false
	for _, r := range strings.ToLower(model) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// Registry is an immutable set of known backends.
type Registry struct {
	byID  map[string]Backend
	order []string
}

// DefaultBackends are the built-in backends.
var DefaultBackends = []Backend{
	{ID: "vader", Column: "sentiment_vader", Kind: KindLexical},
	{ID: "phi3", Column: "sentiment_llm_phi3", Kind: KindLLM, Model: "phi3"},
	{ID: "llama3.2:3b", Column: "sentiment_llm_llama3_2", Kind: KindLLM, Model: "llama3.2:3b"},
	{ID: "deepseek-r1:1.5b", Column: "sentiment_llm_deepseek_r1", Kind: KindLLM, Model: "deepseek-r1:1.5b"},
}

// DefaultRegistry returns the built-in registry.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultBackends...)
	if err != nil {
		panic(err)
	}
	return r
}

// NewRegistry validates backends and builds a registry. Identifiers and
// columns must be unique. An LLM backend without a model uses its ID.
func NewRegistry(backends ...Backend) (*Registry, error) {
	r := &Registry{byID: make(map[string]Backend, len(backends))}
	columns := make(map[string]string, len(backends))
	for _, b := range backends {
		b, err := normalizeBackend(b)
		if err != nil {
			return nil, err
		}
		if _, dup := r.byID[b.ID]; dup {
			return nil, fmt.Errorf("sentiment: duplicate backend %q", b.ID)
		}
		if other, dup := columns[b.Column]; dup {
			return nil, fmt.Errorf("sentiment: backends %q and %q share column %s", other, b.ID, b.Column)
		}
		columns[b.Column] = b.ID
		r.byID[b.ID] = b
		r.order = append(r.order, b.ID)
	}
	return r, nil
}

func normalizeBackend(b Backend) (Backend, error) {
	b.ID = strings.TrimSpace(b.ID)
	if b.ID == "" {
		return b, fmt.Errorf("sentiment: backend without id")
	}
	if b.Kind == "" {
		b.Kind = KindLLM
	}
	switch b.Kind {
	case KindLexical:
	case KindLLM:
		if b.Model == "" {
			b.Model = b.ID
		}
	default:
		return b, fmt.Errorf("sentiment: backend %q: unknown kind %q", b.ID, b.Kind)
	}
	if b.Column == "" {
		b.Column = ColumnFor(b.Model)
	}
	if !ValidColumn(b.Column) {
		return b, fmt.Errorf("sentiment: backend %q: invalid column %q", b.ID, b.Column)
	}
	return b, nil
}

// Extend returns a new registry with extra backends added. An extra
// backend replaces a built-in one with the same ID.
func (r *Registry) Extend(extra ...Backend) (*Registry, error) {
	merged := make([]Backend, 0, len(r.order)+len(extra))
	replaced := make(map[string]Backend, len(extra))
	for _, b := range extra {
		replaced[strings.TrimSpace(b.ID)] = b
	}
	for _, id := range r.order {
		if b, ok := replaced[id]; ok {
			merged = append(merged, b)
			delete(replaced, id)
			continue
		}
		merged = append(merged, r.byID[id])
	}
	for _, b := range extra {
		if _, pending := replaced[strings.TrimSpace(b.ID)]; pending {
			merged = append(merged, b)
		}
	}
	return NewRegistry(merged...)
}

// Lookup returns the backend registered under id.
func (r *Registry) Lookup(id string) (Backend, bool) {
	b, ok := r.byID[id]
	return b, ok
}

// IDs returns backend identifiers in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Backends returns every backend in registration order.
func (r *Registry) Backends() []Backend {
	out := make([]Backend, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Columns returns every output column in registration order.
func (r *Registry) Columns() []string {
	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Column)
	}
	return out
}

// Resolve maps requested ids to backends, dropping unknown ids and
// repeats. The second result lists the ids that were not recognized.
func (r *Registry) Resolve(ids []string) ([]Backend, []string) {
	var (
		out     []Backend
		unknown []string
	)
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		b, ok := r.byID[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		out = append(out, b)
	}
	return out, unknown
}
