// Package config loads and validates the crawl configuration: the seed
// pages, the geographic area, the time window, and the crawl limits.
// Values come from a YAML file with environment overrides, matching how the
// pipeline is deployed across areas without rebuilding.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the pipeline's entry-point configuration.
type Config struct {
	// Seeds are the listing pages the crawl starts from.
	Seeds []string `yaml:"seeds"`

	// Geofence center and radius.
	CenterLat   float64 `yaml:"center_lat"`
	CenterLon   float64 `yaml:"center_lon"`
	RadiusMiles float64 `yaml:"radius_miles"`

	// Area names, used by the geofence text fallback and the digest.
	Neighborhood string `yaml:"neighborhood"`
	City         string `yaml:"city"`
	State        string `yaml:"state"`
	Timezone     string `yaml:"timezone"`

	// FutureDaysLimit is the forward horizon of the time window, in days.
	FutureDaysLimit int `yaml:"future_days_limit"`

	// MaxEvents caps the final list; MaxFollowPerSeed caps detail links
	// followed per seed page.
	MaxEvents        int `yaml:"max_events"`
	MaxFollowPerSeed int `yaml:"max_follow_per_seed"`

	// Crawl behavior.
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"`
	CrawlPauseMillis    int `yaml:"crawl_pause_ms"`
	Concurrency         int `yaml:"concurrency"`
}

// Default returns the configuration for the reference area (Pacific Beach,
// San Diego) with conservative crawl limits.
func Default() *Config {
	return &Config{
		CenterLat:           32.7941,
		CenterLon:           -117.2544,
		RadiusMiles:         5,
		Neighborhood:        "Pacific Beach",
		City:                "San Diego",
		State:               "California",
		Timezone:            "America/Los_Angeles",
		FutureDaysLimit:     14,
		MaxEvents:           40,
		MaxFollowPerSeed:    10,
		FetchTimeoutSeconds: 12,
		CrawlPauseMillis:    500,
		Concurrency:         1,
	}
}

// Load reads the configuration file at path (optional) and applies
// environment overrides. An empty path loads defaults plus environment only.
// Callers apply their own overrides (CLI flags) and then call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv applies the same environment overrides the original deployment
// used: area names, timezone, and the time window.
func (c *Config) applyEnv() {
	if v := os.Getenv("NEIGHBORHOOD"); v != "" {
		c.Neighborhood = v
	}
	if v := os.Getenv("CITY"); v != "" {
		c.City = v
	}
	if v := os.Getenv("STATE"); v != "" {
		c.State = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("TIME_WINDOW_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			c.FutureDaysLimit = days
		}
	}
}

// Validate fails fast on configurations that could never produce a crawl.
func (c *Config) Validate() error {
	if len(c.NormalizedSeeds()) == 0 {
		return fmt.Errorf("no seed pages configured")
	}
	if c.RadiusMiles <= 0 {
		return fmt.Errorf("radius_miles must be positive, got %v", c.RadiusMiles)
	}
	if c.FutureDaysLimit <= 0 {
		return fmt.Errorf("future_days_limit must be positive, got %d", c.FutureDaysLimit)
	}
	if c.MaxEvents <= 0 {
		return fmt.Errorf("max_events must be positive, got %d", c.MaxEvents)
	}
	if c.MaxFollowPerSeed < 0 {
		return fmt.Errorf("max_follow_per_seed must not be negative, got %d", c.MaxFollowPerSeed)
	}
	return nil
}

// NormalizedSeeds returns the seed list with URLs normalized, empties
// dropped, and case-insensitive duplicates removed, preserving order.
func (c *Config) NormalizedSeeds() []string {
	seen := make(map[string]bool, len(c.Seeds))
	out := make([]string, 0, len(c.Seeds))
	for _, seed := range c.Seeds {
		u := NormalizeURL(seed)
		if u == "" {
			continue
		}
		low := strings.ToLower(u)
		if seen[low] {
			continue
		}
		seen[low] = true
		out = append(out, u)
	}
	return out
}

// NormalizeURL trims a configured URL and supplies the scheme for bare
// "www." entries. Anything else is passed through as written.
func NormalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if strings.HasPrefix(u, "www.") {
		return "https://" + u
	}
	return u
}

// Location resolves the configured timezone, falling back to UTC when the
// name is empty or unknown.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FetchTimeout returns the per-request timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// CrawlPause returns the polite inter-request delay as a duration.
func (c *Config) CrawlPause() time.Duration {
	return time.Duration(c.CrawlPauseMillis) * time.Millisecond
}

// DateWindow computes the crawl's local date window: midnight today in the
// configured zone through FutureDaysLimit days ahead.
func (c *Config) DateWindow(now time.Time) (start, end time.Time) {
	loc := c.Location()
	local := now.In(loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end = start.AddDate(0, 0, c.FutureDaysLimit)
	return start, end
}
