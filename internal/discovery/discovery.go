// Package discovery resolves venues for a geographic area. The crawl core
// treats this as an external collaborator behind the Discoverer interface.
package discovery

import (
	"context"
	"fmt"

	"github.com/venuescout/venuescout/internal/crawler"
)

// Discoverer produces the venues to inspect for an area.
type Discoverer interface {
	Discover(ctx context.Context, area string, categories []string) ([]crawler.Venue, error)
}

// Error marks a discovery failure; the caller may respond by retrying with a
// coarser strategy or another endpoint.
type Error struct {
	Endpoint string
	Err      error
}

func (e *Error) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("discovery via %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("discovery: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
