// Package config loads and validates venuescout configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// CrawlerConfig governs politeness, retries, and candidate probing.
type CrawlerConfig struct {
	UserAgent       string        `mapstructure:"user_agent"`
	AcceptLanguage  string        `mapstructure:"accept_language"`
	Concurrency     int           `mapstructure:"concurrency"`
	PerHostMax      int           `mapstructure:"per_host_max"`
	HostMinInterval time.Duration `mapstructure:"host_min_interval"`
	JitterMin       time.Duration `mapstructure:"jitter_min"`
	JitterMax       time.Duration `mapstructure:"jitter_max"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	RespectRobots   bool          `mapstructure:"respect_robots"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	MaxJobLinks     int           `mapstructure:"max_job_links"`
	MaxPageBytes    int           `mapstructure:"max_page_bytes"`
}

// DiscoveryConfig selects where venues come from.
type DiscoveryConfig struct {
	Area       string   `mapstructure:"area"`
	Categories []string `mapstructure:"categories"`
	Endpoints  []string `mapstructure:"endpoints"`
	SeedFile   string   `mapstructure:"seed_file"`
	Limit      int      `mapstructure:"limit"`
}

// OutputConfig sets the CSV destination.
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VENUESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.user_agent", "venuescout/0.1 (+https://venuescout.example/contact)")
	v.SetDefault("crawler.accept_language", "de-DE,de;q=0.9,en;q=0.8")
	v.SetDefault("crawler.concurrency", 5)
	v.SetDefault("crawler.per_host_max", 2)
	v.SetDefault("crawler.host_min_interval", "1s")
	v.SetDefault("crawler.jitter_min", "200ms")
	v.SetDefault("crawler.jitter_max", "800ms")
	v.SetDefault("crawler.max_attempts", 3)
	v.SetDefault("crawler.respect_robots", true)
	v.SetDefault("crawler.connect_timeout", "10s")
	v.SetDefault("crawler.read_timeout", "20s")
	v.SetDefault("crawler.max_job_links", 12)
	v.SetDefault("crawler.max_page_bytes", 2<<20)
	v.SetDefault("discovery.area", "Bezirk Mitte, Berlin")
	v.SetDefault("discovery.categories", []string{
		"cafe", "restaurant", "bar", "pub", "fast_food",
		"bakery", "ice_cream", "biergarten", "food_court",
	})
	v.SetDefault("discovery.endpoints", []string{"https://overpass-api.de/api/interpreter"})
	v.SetDefault("discovery.limit", 0)
	v.SetDefault("output.path", "output/venues.csv")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.Crawler.PerHostMax <= 0 {
		return fmt.Errorf("crawler.per_host_max must be > 0")
	}
	if c.Crawler.MaxAttempts <= 0 {
		return fmt.Errorf("crawler.max_attempts must be > 0")
	}
	if c.Crawler.JitterMax < c.Crawler.JitterMin {
		return fmt.Errorf("crawler.jitter_max must be >= crawler.jitter_min")
	}
	if c.Crawler.ConnectTimeout <= 0 || c.Crawler.ReadTimeout <= 0 {
		return fmt.Errorf("crawler timeouts must be > 0")
	}
	if c.Crawler.MaxPageBytes <= 0 {
		return fmt.Errorf("crawler.max_page_bytes must be > 0")
	}
	if c.Discovery.SeedFile == "" {
		if c.Discovery.Area == "" {
			return fmt.Errorf("discovery.area must be set when no seed file is used")
		}
		if len(c.Discovery.Categories) == 0 {
			return fmt.Errorf("discovery.categories must include at least one category")
		}
		if len(c.Discovery.Endpoints) == 0 {
			return fmt.Errorf("discovery.endpoints must include at least one endpoint")
		}
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path must be set")
	}
	return nil
}
