package utils

import "strings"

// NormalizeTicker normalizes a user-input ticker symbol to its canonical
// upper-case form. It handles whitespace and a leading "$" (common in chat
// and social posts).
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	return strings.TrimPrefix(ticker, "$")
}

// NormalizeTickers normalizes a list of tickers, dropping blanks and
// duplicates while keeping first-occurrence order.
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		n := NormalizeTicker(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
