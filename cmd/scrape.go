package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/venuescout/venuescout/internal/config"
	"github.com/venuescout/venuescout/internal/crawler"
	"github.com/venuescout/venuescout/internal/discovery"
	"github.com/venuescout/venuescout/internal/logging"
	"github.com/venuescout/venuescout/internal/output"
	"github.com/venuescout/venuescout/internal/runner"
)

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Discovers venues and crawls their websites for hiring signals",
		Long: `Resolves venues for the configured area, crawls each website within the
configured politeness limits, classifies hiring signals, and writes the
deduplicated results as CSV.`,
		RunE: runScrapeCommand,
	}
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	venues, err := discoverVenues(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if cfg.Discovery.Limit > 0 && len(venues) > cfg.Discovery.Limit {
		venues = venues[:cfg.Discovery.Limit]
	}
	if len(venues) == 0 {
		logger.Warn("no venues found for the selected criteria")
		return nil
	}
	logger.Info("discovered venues to inspect", zap.Int("count", len(venues)))

	var robots *crawler.RobotsGate
	if cfg.Crawler.RespectRobots {
		robots = crawler.NewRobotsGate(cfg.Crawler.UserAgent, cfg.Crawler.ConnectTimeout, logger)
	}
	fetcher := crawler.NewFetcher(crawler.FetcherConfig{
		UserAgent:       cfg.Crawler.UserAgent,
		AcceptLanguage:  cfg.Crawler.AcceptLanguage,
		Concurrency:     cfg.Crawler.Concurrency,
		PerHostMax:      cfg.Crawler.PerHostMax,
		HostMinInterval: cfg.Crawler.HostMinInterval,
		JitterMin:       cfg.Crawler.JitterMin,
		JitterMax:       cfg.Crawler.JitterMax,
		MaxAttempts:     cfg.Crawler.MaxAttempts,
		ConnectTimeout:  cfg.Crawler.ConnectTimeout,
		ReadTimeout:     cfg.Crawler.ReadTimeout,
		MaxPageBytes:    cfg.Crawler.MaxPageBytes,
	}, robots, logger)

	processor := crawler.NewProcessor(fetcher, cfg.Crawler.MaxJobLinks, logger)
	results := runner.New(processor, cfg.Crawler.Concurrency, logger).Run(ctx, venues)

	if err := output.WriteFile(cfg.Output.Path, results); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	logger.Info("wrote results",
		zap.String("path", cfg.Output.Path), zap.Int("rows", len(results)))
	return nil
}

func buildLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Logging.Development)
}

func discoverVenues(ctx context.Context, cfg config.Config, logger *zap.Logger) ([]crawler.Venue, error) {
	var discoverer discovery.Discoverer
	if cfg.Discovery.SeedFile != "" {
		discoverer = &discovery.SeedFile{Path: cfg.Discovery.SeedFile}
	} else {
		discoverer = discovery.NewOverpassClient(cfg.Discovery.Endpoints, logger)
	}

	venues, err := discoverer.Discover(ctx, cfg.Discovery.Area, cfg.Discovery.Categories)
	if err != nil {
		return nil, fmt.Errorf("discover venues: %w", err)
	}
	return venues, nil
}
