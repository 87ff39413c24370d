package jsonl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

func TestDecodeSkipsBlankAndInvalid(t *testing.T) {
	in := `{"headline":"a","url":"u1"}

not json
{"headline":"b","url":"u2"}
`
	recs, invalid, err := Decode[models.HeadlineRecord](strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1, invalid)
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[1].Headline)
}

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.jsonl")
	rows := []models.ScoredRow{{
		MatchedRow: models.MatchedRow{Headline: "AT&T <AI>", URL: "u", Ticker: "T"},
		Scores:     map[string]*float64{"sentiment_vader": models.Float(0.5), "sentiment_llm_phi3": nil},
	}}
	require.NoError(t, WriteFile(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"AT&T <AI>"`)
	assert.Contains(t, string(data), `"sentiment_llm_phi3":null`)

	back, err := Read[models.ScoredRow](path)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, 0.5, *back[0].Scores["sentiment_vader"])
	assert.Nil(t, back[0].Scores["sentiment_llm_phi3"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	require.NoError(t, WriteFile[models.MatchedRow](path, nil))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestReadMissing(t *testing.T) {
	recs, err := Read[models.HeadlineRecord](filepath.Join(t.TempDir(), "nope.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jsonl")
	b := filepath.Join(dir, "b.jsonl")
	require.NoError(t, WriteFile(a, []models.HeadlineRecord{{Headline: "1"}}))
	require.NoError(t, WriteFile(b, []models.HeadlineRecord{{Headline: "2"}, {Headline: "3"}}))

	recs, err := ReadFiles[models.HeadlineRecord]([]string{a, filepath.Join(dir, "missing"), b})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "3", recs[2].Headline)
}
