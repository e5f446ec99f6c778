package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/venuescout/venuescout/internal/crawler"
)

// websiteTagKeys lists the OSM tags that may carry a venue's website, in
// preference order.
var websiteTagKeys = []string{"website", "contact:website", "url"}

// OverpassClient discovers venues through the Overpass map-data API. Multiple
// endpoints are tried in order; the first successful response wins.
type OverpassClient struct {
	endpoints []string
	client    *http.Client
	logger    *zap.Logger
}

// NewOverpassClient builds a client over the given endpoints.
func NewOverpassClient(endpoints []string, logger *zap.Logger) *OverpassClient {
	return &OverpassClient{
		endpoints: endpoints,
		client:    &http.Client{Timeout: 60 * time.Second},
		logger:    logger,
	}
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Discover queries Overpass for venues of the given categories within the
// named area, keeping only elements that expose a website. Venues are
// deduplicated by normalized website URL.
func (c *OverpassClient) Discover(ctx context.Context, area string, categories []string) ([]crawler.Venue, error) {
	query, err := buildQuery(area, categories)
	if err != nil {
		return nil, &Error{Err: err}
	}

	payload, endpoint, err := c.post(ctx, query)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("overpass query succeeded",
		zap.String("endpoint", endpoint), zap.Int("elements", len(payload.Elements)))

	venues := make([]crawler.Venue, 0, len(payload.Elements))
	seenWebsites := make(map[string]struct{})

	for _, element := range payload.Elements {
		website := selectWebsite(element.Tags)
		if website == "" {
			continue
		}

		lat, lon := element.Lat, element.Lon
		if lat == 0 && lon == 0 {
			if element.Center == nil {
				continue
			}
			lat, lon = element.Center.Lat, element.Center.Lon
		}

		name := element.Tags["name"]
		if name == "" {
			name = fmt.Sprintf("%s %d", capitalize(element.Type), element.ID)
		}
		category := element.Tags["amenity"]
		if category == "" {
			category = "unknown"
		}

		venue := crawler.Venue{
			ID:       fmt.Sprintf("%s/%d", element.Type, element.ID),
			Name:     name,
			Category: category,
			Lat:      lat,
			Lon:      lon,
			Website:  normalizeWebsite(website),
		}

		dedupKey := strings.TrimRight(strings.ToLower(venue.Website), "/")
		if _, dup := seenWebsites[dedupKey]; dup {
			continue
		}
		seenWebsites[dedupKey] = struct{}{}
		venues = append(venues, venue)
	}

	return venues, nil
}

func (c *OverpassClient) post(ctx context.Context, query string) (*overpassResponse, string, error) {
	var lastErr error
	for _, endpoint := range c.endpoints {
		form := url.Values{"data": {query}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
			strings.NewReader(form.Encode()))
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.client.Do(req)
		if err != nil {
			c.logger.Debug("overpass endpoint failed",
				zap.String("endpoint", endpoint), zap.Error(err))
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
			c.logger.Debug("overpass endpoint failed",
				zap.String("endpoint", endpoint), zap.Error(lastErr))
			continue
		}

		var payload overpassResponse
		err = json.NewDecoder(resp.Body).Decode(&payload)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return &payload, endpoint, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no endpoints configured")
	}
	return nil, "", &Error{Err: lastErr}
}

// buildQuery assembles an Overpass QL query selecting the categories within
// the named area.
func buildQuery(area string, categories []string) (string, error) {
	patterns := make([]string, 0, len(categories))
	seen := make(map[string]struct{})
	for _, category := range categories {
		category = strings.TrimSpace(category)
		if category == "" {
			continue
		}
		if _, dup := seen[category]; dup {
			continue
		}
		seen[category] = struct{}{}
		patterns = append(patterns, category)
	}
	if len(patterns) == 0 {
		return "", fmt.Errorf("at least one category must be provided")
	}
	sort.Strings(patterns)
	regex := strings.Join(patterns, "|")

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:60];\n")
	fmt.Fprintf(&b, "area[\"name\"=%q]->.searchArea;\n", area)
	fmt.Fprintf(&b, "(\n")
	for _, kind := range []string{"node", "way", "relation"} {
		fmt.Fprintf(&b, "  %s[\"amenity\"~\"^(%s)$\"](area.searchArea);\n", kind, regex)
	}
	fmt.Fprintf(&b, ");\nout center tags;\n")
	return b.String(), nil
}

// selectWebsite returns the best website URL from the element tags. Entries
// holding several URLs keep only the first.
func selectWebsite(tags map[string]string) string {
	for _, key := range websiteTagKeys {
		value := strings.TrimSpace(tags[key])
		if value == "" {
			continue
		}
		for _, delimiter := range []string{";", ",", " "} {
			if idx := strings.Index(value, delimiter); idx >= 0 {
				value = strings.TrimSpace(value[:idx])
			}
		}
		if value != "" {
			return value
		}
	}
	return ""
}

func capitalize(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

// normalizeWebsite ensures the URL carries a scheme.
func normalizeWebsite(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		return raw
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	return "https://" + raw
}
