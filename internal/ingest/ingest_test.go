package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/tickerpulse/internal/jsonl"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

const googleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>AI</title>
<item>
  <title>OpenAI unveils new &lt;b&gt;reasoning&lt;/b&gt; model - The Verge</title>
  <link>https://news.example.com/1</link>
  <pubDate>Thu, 26 Feb 2026 14:05:00 GMT</pubDate>
  <source url="https://www.theverge.com">The Verge</source>
</item>
<item>
  <title>Nvidia ships Blackwell</title>
  <link>https://news.example.com/2</link>
  <pubDate>Thu, 26 Feb 2026 09:00:00 +0000</pubDate>
</item>
<item>
  <title></title>
  <link>https://news.example.com/3</link>
</item>
<item>
  <title>Third story</title>
  <link>https://news.example.com/4</link>
</item>
</channel></rss>`

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRSSSourceItemSource(t *testing.T) {
	srv := feedServer(t, googleFeed)
	src := NewRSSSource(GoogleNewsAIFeed, WithBaseURL(srv.URL), WithLimiter(NewLimiter(0)))

	recs, err := src.Fetch(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "OpenAI unveils new reasoning model - The Verge", recs[0].Headline)
	assert.Equal(t, "The Verge", recs[0].Reporter)
	assert.Equal(t, "Google News RSS", recs[0].Source)
	assert.Equal(t, "2026-02-26T14:05:00Z", recs[0].PostedAt)
	assert.Equal(t, "google_news_ai", recs[1].Reporter)
	assert.Equal(t, "2026-02-26T09:00:00Z", recs[1].PostedAt)
	assert.Empty(t, recs[0].FetchedAt)
}

func TestRSSSourceLimitAndReporter(t *testing.T) {
	srv := feedServer(t, googleFeed)
	src := NewRSSSource(TechCrunchFeed, WithBaseURL(srv.URL), WithLimiter(NewLimiter(0)))

	recs, err := src.Fetch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "TechCrunch", recs[0].Reporter)
	assert.Equal(t, "TechCrunch", src.Name())
}

func TestRSSSourceHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRSSSource(TechCrunchFeed, WithBaseURL(srv.URL)).Fetch(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNewsAPISource(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/top-headlines", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "technology", r.URL.Query().Get("category"))
		assert.Equal(t, "us", r.URL.Query().Get("country"))
		pages = append(pages, r.URL.Query().Get("page"))
		w.Write([]byte(`{"status":"ok","articles":[
			{"source":{"name":"Wired"},"title":"Apple &amp; OpenAI","url":"https://w/1","publishedAt":"2026-02-26T10:00:00Z"},
			{"source":{"name":""},"title":"No reporter","url":"https://w/2","publishedAt":"2026-02-26"},
			{"source":{"name":"X"},"title":"","url":"https://w/3"}
		]}`))
	}))
	defer srv.Close()

	src := NewNewsAPISource("secret", "", WithBaseURL(srv.URL), WithLimiter(NewLimiter(0)))
	recs, err := src.Fetch(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, pages, "short page stops paging")
	require.Len(t, recs, 2)
	assert.Equal(t, "Apple & OpenAI", recs[0].Headline)
	assert.Equal(t, "Wired", recs[0].Reporter)
	assert.Equal(t, "NewsAPI Tech", recs[0].Source)
	assert.Equal(t, "newsapi_tech", recs[1].Reporter)
	assert.Equal(t, "2026-02-26T12:00:00Z", recs[1].PostedAt)
}

func TestNewsAPISourceErrors(t *testing.T) {
	_, err := NewNewsAPISource("  ", "us").Fetch(context.Background(), 10)
	assert.ErrorIs(t, err, ErrNoAPIKey)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"bad key"}`))
	}))
	defer srv.Close()
	_, err = NewNewsAPISource("k", "us", WithBaseURL(srv.URL)).Fetch(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apiKeyInvalid")
}

type fakeSource struct {
	name string
	recs []models.HeadlineRecord
	err  error
}

func (f fakeSource) Name() string { return f.name }
func (f fakeSource) Fetch(context.Context, int) ([]models.HeadlineRecord, error) {
	return f.recs, f.err
}

func TestFetchAll(t *testing.T) {
	a := fakeSource{name: "A", recs: []models.HeadlineRecord{
		{Headline: "Nvidia ships", Reporter: "R", PostedAt: "2026-02-26T10:00:00Z", URL: "u1"},
	}}
	b := fakeSource{name: "B", err: ErrNoAPIKey}
	c := fakeSource{name: "C", recs: []models.HeadlineRecord{
		{Headline: "  NVIDIA   ships ", Reporter: "R", PostedAt: "2026-02-26T18:00:00Z", URL: "u2"},
		{Headline: "Nvidia ships", Reporter: "Other", PostedAt: "2026-02-26T10:00:00Z", URL: "u3"},
	}}
	d := fakeSource{name: "D", err: errors.New("boom")}

	res, err := NewFetcher([]Source{a, b, c, d}, 100, nil).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Fetched)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "u1", res.Records[0].URL)
	assert.Equal(t, "u3", res.Records[1].URL)
	require.Len(t, res.Sources, 4)
	assert.ErrorIs(t, res.Sources[1].Err, ErrNoAPIKey)
	assert.Equal(t, 2, res.Sources[2].Records)
}

func TestWriteRawAndMergeMaster(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 2, 26, 15, 4, 5, 0, time.UTC)

	first, err := WriteRaw(dir, []models.HeadlineRecord{
		{Headline: "b", URL: "u2", PostedAt: "2026-02-26T10:00:00Z", Source: "TechCrunch"},
		{Headline: "a", URL: "u1", PostedAt: "2026-02-25T10:00:00Z"},
	}, "_15", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "headlines_20260226_15.jsonl"), first)

	recs, err := jsonl.Read[models.HeadlineRecord](first)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-26T15:04:05Z", recs[0].FetchedAt)
	assert.Equal(t, "unknown", recs[1].Source)

	master := filepath.Join(dir, "cleaned", "master.jsonl")
	res, err := MergeMaster([]string{first, first}, master)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, 2, res.Added)

	// Created master keeps first-seen order.
	recs, _ = jsonl.Read[models.HeadlineRecord](master)
	assert.Equal(t, "b", recs[0].Headline)

	second, err := WriteRaw(dir, []models.HeadlineRecord{
		{Headline: "c", URL: "u3", PostedAt: "2026-02-24T10:00:00Z"},
		{Headline: "a", URL: "u1", PostedAt: "2026-02-25T10:00:00Z"},
	}, "_16", now)
	require.NoError(t, err)

	res, err = MergeMaster([]string{first, second}, master)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 3, res.Total)

	recs, _ = jsonl.Read[models.HeadlineRecord](master)
	var order []string
	for _, r := range recs {
		order = append(order, r.Headline)
	}
	assert.Equal(t, "c,a,b", strings.Join(order, ","))

	res, err = MergeMaster([]string{second}, master)
	require.NoError(t, err)
	assert.Zero(t, res.Added)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "A & B", cleanText(" A &amp; B "))
	assert.Equal(t, "bold text", cleanText("<b>bold</b>\n text"))
	assert.Equal(t, "", cleanText("   "))
}
