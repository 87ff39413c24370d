package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// NewsAPI defaults.
const (
	NewsAPIBaseURL  = "https://newsapi.org"
	newsAPIName     = "NewsAPI Tech"
	newsAPIReporter = "newsapi_tech"
	newsAPIMaxPages = 10
	newsAPIMaxPage  = 100
)

// NewsAPISource reads NewsAPI top headlines in the technology category.
type NewsAPISource struct {
	apiKey  string
	country string
	http    httpOptions
}

// NewNewsAPISource creates the source. An empty country means "us".
func NewNewsAPISource(apiKey, country string, opts ...Option) *NewsAPISource {
	if country == "" {
		country = "us"
	}
	return &NewsAPISource{
		apiKey:  strings.TrimSpace(apiKey),
		country: country,
		http:    newHTTPOptions(NewsAPIBaseURL, opts),
	}
}

// Name returns the pipeline source name.
func (s *NewsAPISource) Name() string { return newsAPIName }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Fetch pages through top headlines until limit records are collected, a
// short page arrives, or the page cap is reached.
func (s *NewsAPISource) Fetch(ctx context.Context, limit int) ([]models.HeadlineRecord, error) {
	if s.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if limit <= 0 {
		limit = newsAPIMaxPage
	}
	pageSize := min(newsAPIMaxPage, max(limit, 20))

	var out []models.HeadlineRecord
	for page := 1; page <= newsAPIMaxPages; page++ {
		resp, err := s.fetchPage(ctx, page, pageSize)
		if err != nil {
			if len(out) > 0 {
				break
			}
			return nil, err
		}
		for _, a := range resp.Articles {
			title := cleanText(a.Title)
			link := strings.TrimSpace(a.URL)
			if title == "" || link == "" {
				continue
			}
			reporter := strings.TrimSpace(a.Source.Name)
			if reporter == "" {
				reporter = newsAPIReporter
			}
			out = append(out, models.HeadlineRecord{
				Source:   newsAPIName,
				Headline: title,
				PostedAt: utils.NormalizeAPITimestamp(a.PublishedAt),
				Reporter: reporter,
				URL:      link,
			})
			if len(out) >= limit {
				return out, nil
			}
		}
		if len(resp.Articles) < pageSize {
			break
		}
	}
	return out, nil
}

func (s *NewsAPISource) fetchPage(ctx context.Context, page, pageSize int) (*newsAPIResponse, error) {
	q := url.Values{}
	q.Set("category", "technology")
	q.Set("country", s.country)
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("page", strconv.Itoa(page))
	endpoint := strings.TrimRight(s.http.baseURL, "/") + "/v2/top-headlines?" + q.Encode()

	resp, err := s.http.get(ctx, endpoint, http.Header{"X-Api-Key": {s.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	defer resp.Body.Close()

	var body newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("newsapi: decode page %d: %w", page, err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return nil, fmt.Errorf("newsapi: HTTP %d %s: %s", resp.StatusCode, body.Code, body.Message)
	}
	return &body, nil
}
