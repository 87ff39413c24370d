package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const globalYAML = `
ai_buzz_phrases:
  - generative ai
  - large language model
ai_buzz_entities:
  labs:
    - OpenAI
    - Anthropic
  chips: GPU
`

const nvdaYAML = `
metadata:
  target_ticker: nvda
identity:
  company_name: Nvidia
  aliases: [NVIDIA Corp, Team Green]
  key_people:
    - Jensen Huang
subsidiaries:
  mellanox_technologies:
    aliases: [Mellanox]
    catalyst: NVDA's networking moat
products:
  blackwell:
    aliases: [B200, GB200]
    context: NVDA's primary 2026 catalyst
  cuda:
    aliases: []
ecosystem:
  lab_partners:
    - name: OpenAI
      aliases: [ChatGPT]
  infra_partners:
    oracle_cloud:
      keywords: [OCI]
  suppliers:
    - name: TSMC
  competitors:
    - AMD
    - name: Intel
      keywords: [Gaudi]
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCollect(t *testing.T) {
	v, err := Decode([]byte(`
plain: "  spaced  "
list: [a, "", [b, c]]
shaped:
  aliases: [d]
kw:
  keywords: e
named:
  name: f
  keywords: [g]
ignored:
  other: h
number: 42
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"spaced", "a", "b", "c", "d", "e", "f", "g"}, Collect(v))
}

func TestCollect_NullAndLiteral(t *testing.T) {
	assert.Empty(t, Collect(Value{}))
	assert.Empty(t, Collect(Value{Kind: Literal, Text: "3"}))
	assert.Equal(t, []string{"x"}, Collect(Value{Kind: Scalar, Text: " x "}))
}

func TestDecode_Kinds(t *testing.T) {
	v, err := Decode([]byte("a: ~\nb: text\nc: 1.5\nd: [1]\ne: {f: g}\n"))
	require.NoError(t, err)
	assert.Equal(t, Keyed, v.Kind)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, v.Keys)
	assert.Equal(t, Null, v.Field("a").Kind)
	assert.True(t, v.Has("a"))
	assert.Equal(t, Scalar, v.Field("b").Kind)
	assert.Equal(t, Literal, v.Field("c").Kind)
	assert.Equal(t, Sequence, v.Field("d").Kind)
	assert.Equal(t, "g", v.Field("e").Field("f").String())

	empty, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, Null, empty.Kind)
}

func TestParseTickerProfile(t *testing.T) {
	p, err := ParseTickerProfile([]byte(nvdaYAML))
	require.NoError(t, err)

	assert.Equal(t, "NVDA", p.Ticker)
	for _, kw := range []string{
		"Nvidia", "NVIDIA Corp", "Team Green", "Jensen Huang",
		"mellanox technologies", "Mellanox", "blackwell", "B200", "GB200", "cuda",
		"OpenAI", "ChatGPT", "oracle cloud", "OCI", "TSMC", "AMD", "Intel", "Gaudi",
	} {
		assert.Contains(t, p.Keywords, kw)
	}
	assert.Equal(t, []string{"ChatGPT", "OCI", "OpenAI", "oracle cloud"}, p.PartnerKeywords)

	ctx := p.ContextMap()
	assert.Equal(t, "NVDA's primary 2026 catalyst", ctx["blackwell"])
	assert.Equal(t, "NVDA's primary 2026 catalyst", ctx["GB200"])
	assert.Equal(t, "NVDA's networking moat", ctx["Mellanox"])
	assert.NotContains(t, ctx, "cuda")
	assert.Equal(t, "blackwell", p.KeywordContexts[0].Keyword)
}

func TestParseTickerProfile_Errors(t *testing.T) {
	_, err := ParseTickerProfile([]byte("identity:\n  company_name: X\n"))
	assert.ErrorIs(t, err, ErrNoTicker)

	_, err = ParseTickerProfile([]byte("metadata:\n  target_ticker: X\nproducts: [a, b]\n"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseTickerProfile([]byte("metadata: [\n"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	rel := filepath.Join(dir, "relationships")
	require.NoError(t, os.Mkdir(rel, 0o755))

	global := writeFile(t, dir, "entities_global.yaml", globalYAML)
	writeFile(t, rel, "nvda.yaml", nvdaYAML)
	writeFile(t, rel, "broken.yaml", "metadata: [\n")
	writeFile(t, rel, "noticker.yml", "identity:\n  company_name: Nobody\n")
	writeFile(t, rel, "notes.txt", "ignored")

	src, err := DiscoverSources(global, rel)
	require.NoError(t, err)
	assert.Len(t, src.TickerPaths, 3)

	ix, err := Build(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA"}, ix.Symbols())
	assert.Len(t, ix.Skipped, 2)
	assert.Equal(t, []string{"generative ai", "large language model"}, ix.BuzzPhrases)
	assert.Equal(t, []string{"OpenAI", "Anthropic", "GPU"}, ix.BuzzEntities)

	p, ok := ix.Profile("NVDA")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(rel, "nvda.yaml"), p.SourcePath)
}

func TestBuild_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	global := writeFile(t, dir, "global.yaml", globalYAML)
	a := writeFile(t, dir, "a.yaml", "metadata: {target_ticker: NVDA}\nidentity: {company_name: First}\n")
	b := writeFile(t, dir, "b.yaml", "metadata: {target_ticker: NVDA}\nidentity: {company_name: Second}\n")

	ix, err := Build(Sources{GlobalPath: global, TickerPaths: []string{a, b}})
	require.NoError(t, err)
	p, _ := ix.Profile("NVDA")
	assert.Equal(t, []string{"Second"}, p.Keywords)
}

func TestBuild_MissingGlobalIsFatal(t *testing.T) {
	_, err := Build(Sources{GlobalPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorIs(t, err, ErrGlobalVocabulary)

	dir := t.TempDir()
	bad := writeFile(t, dir, "global.yaml", "- just\n- a list\n")
	_, err = Build(Sources{GlobalPath: bad})
	assert.ErrorIs(t, err, ErrGlobalVocabulary)
}

func TestDiscoverSources_MissingDir(t *testing.T) {
	src, err := DiscoverSources("g.yaml", filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, src.TickerPaths)
}

func TestContextFor(t *testing.T) {
	p, err := ParseTickerProfile([]byte(nvdaYAML))
	require.NoError(t, err)
	ix := NewIndex(GlobalVocabulary{}, p)

	assert.Equal(t, "This news relates to NVDA's primary 2026 catalyst.",
		ix.ContextFor("Nvidia announces new Blackwell shipment delays", []string{"NVDA"}))

	// blackwell and its alias GB200 each contribute their shared context.
	assert.Equal(t, "This news relates to NVDA's primary 2026 catalyst; NVDA's primary 2026 catalyst; NVDA's networking moat.",
		ix.ContextFor("Blackwell GB200 racks ship with Mellanox switches", []string{"NVDA"}))

	assert.Empty(t, ix.ContextFor("Nvidia earnings beat", []string{"NVDA"}))
	assert.Empty(t, ix.ContextFor("Blackwell ramps", []string{"AMD"}))
}

func TestContextForPunctuatedKeyword(t *testing.T) {
	msft := &TickerProfile{
		Ticker:          "MSFT",
		KeywordContexts: []KeywordContext{{Keyword: "Copilot+", Context: "MSFT's AI PC push"}},
	}
	ix := NewIndex(GlobalVocabulary{}, msft)

	// The trailing "+" defeats the word-boundary test; the space-padded
	// test still finds it.
	assert.Equal(t, "This news relates to MSFT's AI PC push.",
		ix.ContextFor("Microsoft ships Copilot+ laptops", []string{"MSFT"}))
	assert.Equal(t, "This news relates to MSFT's AI PC push.",
		ix.ContextFor("Copilot+", []string{"MSFT"}))
}
