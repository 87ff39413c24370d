package knowledge

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrGlobalVocabulary is returned when the global vocabulary file is
	// missing, unreadable or malformed. It is fatal to a run.
	ErrGlobalVocabulary = errors.New("knowledge: global vocabulary unavailable")

	// ErrNoTicker marks a ticker file without metadata.target_ticker.
	ErrNoTicker = errors.New("knowledge: metadata.target_ticker not declared")

	// ErrMalformed marks a ticker file whose sections have the wrong shape.
	ErrMalformed = errors.New("knowledge: malformed relationship file")
)

// Sources names the files an Index is built from.
type Sources struct {
	GlobalPath  string
	TickerPaths []string
}

// DiscoverSources lists the *.yaml and *.yml files in relationshipsDir in
// sorted order. A missing directory yields no ticker files.
func DiscoverSources(globalPath, relationshipsDir string) (Sources, error) {
	src := Sources{GlobalPath: globalPath}
	if relationshipsDir == "" {
		return src, nil
	}
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(relationshipsDir, pattern))
		if err != nil {
			return Sources{}, fmt.Errorf("listing %s: %w", relationshipsDir, err)
		}
		src.TickerPaths = append(src.TickerPaths, matches...)
	}
	sort.Strings(src.TickerPaths)
	return src, nil
}

// Builder compiles Sources into an Index.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a builder. A nil logger discards output.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{logger: logger}
}

// Build loads the global vocabulary (required) and every ticker file.
// Unreadable, malformed or ticker-less files are skipped and recorded in
// Index.Skipped; only a global vocabulary failure returns an error.
func Build(src Sources) (*Index, error) {
	return NewBuilder(nil).Build(src)
}

// Build is the method form of the package-level Build.
func (b *Builder) Build(src Sources) (*Index, error) {
	vocab, err := LoadGlobalVocabulary(src.GlobalPath)
	if err != nil {
		return nil, err
	}

	ix := NewIndex(vocab)
	for _, path := range src.TickerPaths {
		p, err := LoadTickerProfile(path)
		if err != nil {
			b.logger.Warn("skipping relationship file", "path", path, "error", err)
			ix.Skipped = append(ix.Skipped, SkippedFile{Path: path, Reason: err.Error()})
			continue
		}
		if prev, dup := ix.Tickers[p.Ticker]; dup {
			b.logger.Warn("ticker declared twice, later file wins",
				"ticker", p.Ticker, "previous", prev.SourcePath, "path", path)
		}
		ix.Tickers[p.Ticker] = p
	}
	ix.refresh()

	b.logger.Info("knowledge index built",
		"tickers", ix.Len(),
		"skipped", len(ix.Skipped),
		"ai_phrases", len(vocab.BuzzPhrases),
		"ai_entities", len(vocab.BuzzEntities))
	return ix, nil
}

// LoadGlobalVocabulary reads the global vocabulary file.
func LoadGlobalVocabulary(path string) (GlobalVocabulary, error) {
	if path == "" {
		return GlobalVocabulary{}, fmt.Errorf("%w: no path configured", ErrGlobalVocabulary)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return GlobalVocabulary{}, fmt.Errorf("%w: %v", ErrGlobalVocabulary, err)
	}
	vocab, err := ParseGlobalVocabulary(data)
	if err != nil {
		return GlobalVocabulary{}, fmt.Errorf("%w: %s: %v", ErrGlobalVocabulary, path, err)
	}
	return vocab, nil
}

// ParseGlobalVocabulary decodes a global vocabulary document.
func ParseGlobalVocabulary(data []byte) (GlobalVocabulary, error) {
	root, err := Decode(data)
	if err != nil {
		return GlobalVocabulary{}, err
	}
	if root.Kind != Keyed && root.Kind != Null {
		return GlobalVocabulary{}, fmt.Errorf("top level is %s, want mapping", root.Kind)
	}
	return GlobalVocabulary{
		BuzzPhrases:  Collect(root.Field("ai_buzz_phrases")),
		BuzzEntities: Collect(root.Field("ai_buzz_entities")),
	}, nil
}

// LoadTickerProfile reads and compiles one relationship file.
func LoadTickerProfile(path string) (*TickerProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParseTickerProfile(data)
	if err != nil {
		return nil, err
	}
	p.SourcePath = path
	return p, nil
}

// ParseTickerProfile compiles one relationship document.
func ParseTickerProfile(data []byte) (*TickerProfile, error) {
	root, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := expectKeyed(root, "document"); err != nil {
		return nil, err
	}
	meta := root.Field("metadata")
	if err := expectKeyed(meta, "metadata"); err != nil {
		return nil, err
	}
	ticker := strings.ToUpper(strings.TrimSpace(meta.Field("target_ticker").String()))
	if ticker == "" {
		return nil, ErrNoTicker
	}

	identity := root.Field("identity")
	subsidiaries := root.Field("subsidiaries")
	products := root.Field("products")
	ecosystem := root.Field("ecosystem")
	for name, v := range map[string]Value{
		"identity":     identity,
		"subsidiaries": subsidiaries,
		"products":     products,
		"ecosystem":    ecosystem,
	} {
		if err := expectKeyed(v, name); err != nil {
			return nil, err
		}
	}

	var keywords []string
	keywords = append(keywords, Collect(identity.Field("company_name"))...)
	keywords = append(keywords, Collect(identity.Field("aliases"))...)
	keywords = append(keywords, Collect(identity.Field("key_people"))...)
	keywords = append(keywords, sectionKeywords(subsidiaries)...)
	keywords = append(keywords, sectionKeywords(products)...)
	keywords = append(keywords, ecosystemKeywords(ecosystem, EcosystemCategories)...)

	p := &TickerProfile{
		Ticker:          ticker,
		Keywords:        uniqueSorted(keywords),
		PartnerKeywords: uniqueSorted(ecosystemKeywords(ecosystem, PartnerCategories)),
	}

	ctx := contextSet{profile: p, pos: make(map[string]int)}
	ctx.addSection(products)
	ctx.addSection(subsidiaries)
	return p, nil
}

// expectKeyed accepts a mapping or an absent section.
func expectKeyed(v Value, section string) error {
	if v.Kind == Keyed || v.Kind == Null {
		return nil
	}
	return fmt.Errorf("%w: %s is %s, want mapping", ErrMalformed, section, v.Kind)
}

// sectionKeywords returns entry names and their aliases for the
// subsidiaries and products sections.
func sectionKeywords(section Value) []string {
	var out []string
	for _, key := range section.Keys {
		appendTrimmed(&out, displayName(key))
		if entry := section.Fields[key]; entry.Kind == Keyed {
			out = append(out, Collect(entry.Field("aliases"))...)
		}
	}
	return out
}

// ecosystemKeywords returns names and aliases (or keywords) for the given
// ecosystem categories. A category may be a mapping of name → entry or a
// list of entries carrying a "name" field (plain strings are accepted too).
func ecosystemKeywords(ecosystem Value, categories []string) []string {
	var out []string
	for _, cat := range categories {
		block := ecosystem.Field(cat)
		switch block.Kind {
		case Keyed:
			for _, name := range block.Keys {
				appendTrimmed(&out, displayName(name))
				if entry := block.Fields[name]; entry.Kind == Keyed {
					out = append(out, Collect(aliasesOrKeywords(entry))...)
				}
			}
		case Sequence:
			for _, item := range block.Items {
				switch item.Kind {
				case Keyed:
					appendTrimmed(&out, item.Field("name").String())
					out = append(out, Collect(aliasesOrKeywords(item))...)
				case Scalar:
					appendTrimmed(&out, item.Text)
				}
			}
		}
	}
	return out
}

// contextSet fills TickerProfile.KeywordContexts keeping first-declaration
// order; a later section overrides the context of an existing keyword.
type contextSet struct {
	profile *TickerProfile
	pos     map[string]int
}

func (c *contextSet) addSection(section Value) {
	for _, key := range section.Keys {
		entry := section.Fields[key]
		if entry.Kind != Keyed {
			continue
		}
		context := strings.TrimSpace(entry.Field("context").String())
		if context == "" {
			context = strings.TrimSpace(entry.Field("catalyst").String())
		}
		if context == "" {
			continue
		}
		c.set(displayName(key), context)
		for _, alias := range Collect(entry.Field("aliases")) {
			c.set(alias, context)
		}
	}
}

func (c *contextSet) set(keyword, context string) {
	if keyword == "" {
		return
	}
	if i, ok := c.pos[keyword]; ok {
		c.profile.KeywordContexts[i].Context = context
		return
	}
	c.pos[keyword] = len(c.profile.KeywordContexts)
	c.profile.KeywordContexts = append(c.profile.KeywordContexts, KeywordContext{Keyword: keyword, Context: context})
}

func uniqueSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
