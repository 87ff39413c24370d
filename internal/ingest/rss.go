package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed/rss"

	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// Feed URLs of the built-in RSS sources.
const (
	TechCrunchFeedURL   = "https://techcrunch.com/feed/"
	GoogleNewsAIFeedURL = "https://news.google.com/rss/topics/CAAqIAgKIhpDQkFTRFFvSEwyMHZNRzFyZWhJQ1pXNG9BQVAB?hl=en-US&gl=US&ceid=US:en"
)

// RSSFeed describes an RSS source.
type RSSFeed struct {
	// Name is the pipeline source written to HeadlineRecord.Source.
	Name string
	URL  string
	// Reporter is the outlet name used when an item names none.
	Reporter string
	// ItemSource takes the reporter from each item's <source> element
	// (aggregator feeds such as Google News).
	ItemSource bool
}

// TechCrunchFeed is the TechCrunch main feed.
var TechCrunchFeed = RSSFeed{Name: "TechCrunch", URL: TechCrunchFeedURL, Reporter: "TechCrunch"}

// GoogleNewsAIFeed is the Google News "Artificial intelligence" topic.
var GoogleNewsAIFeed = RSSFeed{
	Name:       "Google News RSS",
	URL:        GoogleNewsAIFeedURL,
	Reporter:   "google_news_ai",
	ItemSource: true,
}

// RSSSource fetches one RSS feed.
type RSSSource struct {
	feed   RSSFeed
	http   httpOptions
	parser *rss.Parser
}

// NewRSSSource creates a source for feed.
func NewRSSSource(feed RSSFeed, opts ...Option) *RSSSource {
	o := newHTTPOptions(feed.URL, opts)
	feed.URL = o.baseURL
	return &RSSSource{feed: feed, http: o, parser: &rss.Parser{}}
}

// Name returns the pipeline source name.
func (s *RSSSource) Name() string { return s.feed.Name }

// Fetch downloads and parses the feed. Items without a title or link are
// dropped; at most limit items are read (limit <= 0 reads all).
func (s *RSSSource) Fetch(ctx context.Context, limit int) ([]models.HeadlineRecord, error) {
	resp, err := s.http.get(ctx, s.feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.feed.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s: HTTP %d: %s", s.feed.Name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", s.feed.Name, err)
	}

	out := make([]models.HeadlineRecord, 0, len(feed.Items))
	for i, item := range feed.Items {
		if limit > 0 && i >= limit {
			break
		}
		title := cleanText(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		out = append(out, models.HeadlineRecord{
			Source:   s.feed.Name,
			Headline: title,
			PostedAt: itemDate(item),
			Reporter: s.reporter(item),
			URL:      link,
		})
	}
	return out, nil
}

func (s *RSSSource) reporter(item *rss.Item) string {
	if s.feed.ItemSource && item.Source != nil {
		if name := strings.TrimSpace(item.Source.Title); name != "" {
			return name
		}
	}
	return s.feed.Reporter
}

// itemDate keeps the wall-clock time printed in the feed; zone suffixes
// are dropped, not applied.
func itemDate(item *rss.Item) string {
	if item.PubDate != "" {
		return utils.ParseFeedDate(item.PubDate)
	}
	if item.PubDateParsed != nil {
		return utils.FormatISO(*item.PubDateParsed)
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Date) > 0 {
		return utils.ParseFeedDate(item.DublinCoreExt.Date[0])
	}
	return utils.FormatISO(utils.NowUTC())
}
