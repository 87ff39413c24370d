package utils

import (
	"testing"
	"time"
)

func withFixedNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := NowUTC
	NowUTC = func() time.Time { return now }
	t.Cleanup(func() { NowUTC = prev })
}

func TestParseFeedDate(t *testing.T) {
	withFixedNow(t, time.Date(2026, 2, 26, 15, 0, 0, 0, time.UTC))

	tests := []struct {
		input    string
		expected string
	}{
		{"Thu, 26 Feb 2026 09:30:00 +0000", "2026-02-26T09:30:00Z"},
		{"Thu, 26 Feb 2026 09:30:00 GMT", "2026-02-26T09:30:00Z"},
		{"Mon, 2 Feb 2026 07:05:09 -0500", "2026-02-02T07:05:09Z"},
		{"2026-02-25T11:00:00", "2026-02-25T11:00:00Z"},
		{"2026-02-25T11:00:00Z", "2026-02-25T11:00:00Z"},
		{"2026-02-25 11:00:00", "2026-02-25T11:00:00Z"},
		{"2026-02-25", "2026-02-25T00:00:00Z"},
		{"2026-02-25 and some junk", "2026-02-25T00:00:00Z"},
		{"", "2026-02-26T15:00:00Z"},
		{"not a date", "2026-02-26T15:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFeedDate(tt.input); got != tt.expected {
				t.Errorf("ParseFeedDate(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeAPITimestamp(t *testing.T) {
	withFixedNow(t, time.Date(2026, 2, 26, 15, 0, 0, 0, time.UTC))

	tests := []struct {
		input    string
		expected string
	}{
		{"2026-02-26T08:00:00Z", "2026-02-26T08:00:00Z"},
		{"2026-02-26T08:00:00+02:00", "2026-02-26T06:00:00Z"},
		{"2026-02-26T08:00:00", "2026-02-26T08:00:00Z"},
		{"2026-02-26", "2026-02-26T12:00:00Z"},
		{"", "2026-02-26T15:00:00Z"},
	}
	for _, tt := range tests {
		if got := NormalizeAPITimestamp(tt.input); got != tt.expected {
			t.Errorf("NormalizeAPITimestamp(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDatePrefix(t *testing.T) {
	if got := DatePrefix("2026-02-26T08:00:00Z"); got != "2026-02-26" {
		t.Errorf("DatePrefix = %q", got)
	}
	if got := DatePrefix("2026"); got != "2026" {
		t.Errorf("DatePrefix short = %q", got)
	}
}
