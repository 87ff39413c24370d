package utils

import (
	"regexp"
	"strings"
	"time"
)

// ISOLayout is the timestamp layout used for fetched_at and posted_at.
const ISOLayout = "2006-01-02T15:04:05Z"

// feedLayouts are tried in order after zone suffixes are stripped.
var feedLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05",
	"Mon, 02 Jan 2006 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var (
	gmtSuffix    = regexp.MustCompile(`\s*GMT$`)
	offsetSuffix = regexp.MustCompile(`\s*[+-]\d{4}$`)
)

// NowUTC returns the current time in UTC. Overridable in tests.
var NowUTC = func() time.Time {
	return time.Now().UTC()
}

// FormatISO formats t as UTC "2006-01-02T15:04:05Z".
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseFeedDate converts a feed date string to ISOLayout. Zone suffixes
// ("GMT", "+0000") are discarded rather than applied. Unparseable or empty
// input yields the current time.
func ParseFeedDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return FormatISO(NowUTC())
	}
	clean := strings.TrimSpace(offsetSuffix.ReplaceAllString(gmtSuffix.ReplaceAllString(s, ""), ""))
	for _, layout := range feedLayouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t.Format(ISOLayout)
		}
	}
	if len(clean) >= 10 {
		if t, err := time.Parse("2006-01-02", clean[:10]); err == nil {
			return t.Format(ISOLayout)
		}
	}
	return FormatISO(NowUTC())
}

// NormalizeAPITimestamp normalizes an API timestamp (e.g. NewsAPI
// publishedAt) to end in "Z". Date-only values are pinned to noon.
func NormalizeAPITimestamp(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return FormatISO(NowUTC())
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return FormatISO(t)
	}
	if strings.Contains(s, "T") {
		return strings.TrimSuffix(s, "Z") + "Z"
	}
	if len(s) >= 10 {
		return s[:10] + "T12:00:00Z"
	}
	return FormatISO(NowUTC())
}

// DatePrefix returns the "YYYY-MM-DD" part of an ISO timestamp, or the
// whole string when it is shorter.
func DatePrefix(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
