package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts HTTP request attempts dispatched by the fetcher.
	requestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "venuescout_requests_total",
		Help: "The total number of HTTP request attempts sent.",
	})
	// requestErrors counts attempts that ended in a transport error.
	requestErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "venuescout_request_errors_total",
		Help: "The total number of HTTP request attempts that failed at the transport level.",
	})
	// rateLimitHits counts HTTP 429 responses.
	rateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "venuescout_rate_limit_hits_total",
		Help: "The total number of times a host rate limited the crawler.",
	})
	// robotsDenials counts fetches short-circuited by robots.txt.
	robotsDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "venuescout_robots_denials_total",
		Help: "The total number of fetches denied by robots policy.",
	})
	// venuesScraped counts completed venue pipelines.
	venuesScraped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "venuescout_venues_scraped_total",
		Help: "The total number of venues fully processed.",
	})
	// hiringFound counts venues that produced a hiring signal.
	hiringFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "venuescout_hiring_found_total",
		Help: "The total number of venues classified as hiring.",
	})
)
