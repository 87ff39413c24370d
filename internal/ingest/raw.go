package ingest

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/seenimoa/tickerpulse/internal/jsonl"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// WriteRaw stamps every record with one fetched_at and writes them to
// dir/headlines_YYYYMMDD<suffix>.jsonl. It returns the file path.
func WriteRaw(dir string, records []models.HeadlineRecord, suffix string, now time.Time) (string, error) {
	fetchedAt := utils.FormatISO(now)
	stamped := make([]models.HeadlineRecord, len(records))
	for i, r := range records {
		r.FetchedAt = fetchedAt
		if r.Source == "" {
			r.Source = "unknown"
		}
		stamped[i] = r
	}
	path := filepath.Join(dir, utils.RawFileName(now, suffix))
	if err := jsonl.WriteFile(path, stamped); err != nil {
		return "", fmt.Errorf("writing raw headlines: %w", err)
	}
	return path, nil
}

// MergeResult reports a master merge.
type MergeResult struct {
	Files   int  `json:"files"`
	Added   int  `json:"added"`
	Total   int  `json:"total"`
	Created bool `json:"created"`
}

// MergeMaster folds raw files into the master file, keyed by
// (headline, url). A new master keeps first-seen order; an existing one
// gets only unseen rows appended and is then sorted by (posted_at,
// headline). An unchanged master is not rewritten.
func MergeMaster(rawPaths []string, masterPath string) (*MergeResult, error) {
	res := &MergeResult{Files: len(rawPaths)}
	raw, err := jsonl.ReadFiles[models.HeadlineRecord](rawPaths)
	if err != nil {
		return nil, err
	}

	type key struct{ headline, url string }
	existing, err := jsonl.Read[models.HeadlineRecord](masterPath)
	if err != nil {
		return nil, err
	}
	res.Created = existing == nil && !fileExists(masterPath)

	seen := make(map[key]struct{}, len(existing)+len(raw))
	for _, r := range existing {
		seen[key{r.Headline, r.URL}] = struct{}{}
	}
	merged := existing
	for _, r := range raw {
		k := key{r.Headline, r.URL}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, r)
		res.Added++
	}
	res.Total = len(merged)

	if res.Added == 0 && !res.Created {
		return res, nil
	}
	if !res.Created {
		slices.SortStableFunc(merged, func(a, b models.HeadlineRecord) int {
			return cmp.Or(cmp.Compare(a.PostedAt, b.PostedAt), cmp.Compare(a.Headline, b.Headline))
		})
	}
	if err := jsonl.WriteFile(masterPath, merged); err != nil {
		return nil, err
	}
	return res, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
