// Package output turns scrape results into the CSV deliverable.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/venuescout/venuescout/internal/crawler"
)

// Deduplicate collapses results that share the same canonical job page URL
// (fragment-insensitive), preferring the record with the shorter homepage
// URL. Branch locations usually carry longer URLs than the main one.
// Results without a job page URL are never collapsed.
func Deduplicate(results []crawler.ScrapeResult) []crawler.ScrapeResult {
	out := make([]crawler.ScrapeResult, 0, len(results))
	byJobPage := make(map[string]int)

	for _, result := range results {
		if result.JobPageURL == "" {
			out = append(out, result)
			continue
		}
		key := crawler.CanonicalizeURL(result.JobPageURL)
		if key == "" {
			key = result.JobPageURL
		}
		if idx, seen := byJobPage[key]; seen {
			if len(result.Venue.Website) < len(out[idx].Venue.Website) {
				out[idx] = result
			}
			continue
		}
		byJobPage[key] = len(out)
		out = append(out, result)
	}
	return out
}

// Write emits one row per result: name, category, homepage_url, job_page_url.
// The job page column is empty when the venue is not hiring or unresolved.
func Write(w io.Writer, results []crawler.ScrapeResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"name", "category", "homepage_url", "job_page_url"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, result := range results {
		row := []string{
			result.Venue.Name,
			result.Venue.Category,
			result.Venue.Website,
			result.JobPageURL,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row for %q: %w", result.Venue.Name, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteFile deduplicates and writes results to path, creating parent
// directories as needed.
func WriteFile(path string, results []crawler.ScrapeResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Write(f, Deduplicate(results))
}
