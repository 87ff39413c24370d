package utils

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// RawPrefix and ProcessedPrefix name the files written by each stage.
const (
	RawPrefix       = "headlines_"
	MatchedPrefix   = "matched_"
	SentimentPrefix = "sentiment_"
	ProcessedPrefix = "processed_"
)

// RawFileName returns "headlines_YYYYMMDD<suffix>.jsonl" for t.
func RawFileName(t time.Time, suffix string) string {
	return RawPrefix + t.UTC().Format("20060102") + suffix + ".jsonl"
}

// SuffixFromPath derives the run suffix from an input file name:
// "data/raw/headlines_20260226_15.jsonl" → "20260226_15".
func SuffixFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.Replace(stem, RawPrefix, "", 1)
}

// StageFileName returns "<prefix><suffix>.jsonl".
func StageFileName(prefix, suffix string) string {
	return prefix + suffix + ".jsonl"
}

// LatestFile returns the most recently modified file matching pattern,
// or "" when nothing matches.
func LatestFile(pattern string) (string, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	type entry struct {
		path string
		mod  time.Time
	}
	var files []entry
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, entry{p, info.ModTime()})
	}
	if len(files) == 0 {
		return "", nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.After(files[j].mod) })
	return files[0].path, nil
}

// ExpandGlobs expands each pattern and returns the matching regular files,
// sorted and de-duplicated. Patterns that match nothing are skipped.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, pat := range patterns {
		matches, err := filepath.Glob(pat)
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}
