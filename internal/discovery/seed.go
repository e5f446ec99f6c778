package discovery

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/venuescout/venuescout/internal/crawler"
)

// SeedFile reads venues from a CSV seed list (name,category,website) so a
// crawl can run without the map-data API. Area and categories are ignored.
type SeedFile struct {
	Path string
}

// Discover implements Discoverer.
func (s *SeedFile) Discover(_ context.Context, _ string, _ []string) ([]crawler.Venue, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("open seed file: %w", err)}
	}
	defer func() {
		_ = f.Close()
	}()
	venues, err := readSeed(f)
	if err != nil {
		return nil, &Error{Err: err}
	}
	return venues, nil
}

func readSeed(r io.Reader) ([]crawler.Venue, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var venues []crawler.Venue
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read seed row: %w", err)
		}
		line++
		if len(record) < 3 {
			return nil, fmt.Errorf("seed row %d: want name,category,website", line)
		}
		name := strings.TrimSpace(record[0])
		website := strings.TrimSpace(record[2])
		if line == 1 && strings.EqualFold(name, "name") {
			continue
		}
		if name == "" || website == "" {
			continue
		}
		venues = append(venues, crawler.Venue{
			ID:       fmt.Sprintf("seed/%d", line),
			Name:     name,
			Category: strings.TrimSpace(record[1]),
			Website:  normalizeWebsite(website),
		})
	}
	return venues, nil
}
