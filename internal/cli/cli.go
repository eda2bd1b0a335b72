package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/charliewiggs/den/internal/calendar"
	"github.com/charliewiggs/den/internal/config"
	"github.com/charliewiggs/den/internal/crawler"
	"github.com/charliewiggs/den/internal/digest"
	"github.com/charliewiggs/den/internal/event"
	"github.com/charliewiggs/den/internal/fetch"
	"github.com/charliewiggs/den/internal/filter"
	"github.com/charliewiggs/den/internal/logger"
	"github.com/charliewiggs/den/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig      string
	flagSeeds       []string
	flagMaxEvents   int
	flagDaysAhead   int
	flagRadiusMiles float64
	flagConcurrency int
	flagFormat      string
	flagOut         string
	flagGzip        bool
	flagS3Bucket    string
	flagICS         string
	flagDryRun      bool
	flagVerbose     bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "den-events",
		Short: "Aggregate upcoming local events from neighborhood sites",
		Long: `Crawls a configured list of local event pages, extracts schema.org
event markup, filters to the configured area and time window, and writes a
deduplicated, chronologically sorted report.`,
		RunE:          runCrawl,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	cmd.Flags().StringSliceVar(&flagSeeds, "seeds", nil, "Seed page URLs (overrides config file)")
	cmd.Flags().IntVar(&flagMaxEvents, "max-events", 0, "Cap on the final event list (overrides config)")
	cmd.Flags().IntVar(&flagDaysAhead, "days-ahead", 0, "Forward window in days (overrides config)")
	cmd.Flags().Float64Var(&flagRadiusMiles, "radius-miles", 0, "Geofence radius in miles (overrides config)")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Seed workers; above 1 crawls seeds in parallel")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagOut, "out", "data/events", "Data directory for the report file (empty disables the report)")
	cmd.Flags().BoolVar(&flagGzip, "gzip", false, "Gzip-compress the report")
	cmd.Flags().StringVar(&flagS3Bucket, "s3-bucket", os.Getenv("EVENTS_S3_BUCKET"), "Upload the report to this S3 bucket (or env: EVENTS_S3_BUCKET)")
	cmd.Flags().StringVar(&flagICS, "ics", "", "Also write an iCalendar file to this path")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Crawl and filter but skip the model call and write nothing")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	return cmd
}

// runCrawl is the main command logic
func runCrawl(cmd *cobra.Command, args []string) error {
	// Local .env files carry the same variables the deployment sets.
	_ = godotenv.Load()

	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}

	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	loc := cfg.Location()
	now := time.Now().In(loc)
	windowStart, windowEnd := cfg.DateWindow(now)

	logger.Info("starting crawl", logger.Fields{
		"seeds":        len(cfg.NormalizedSeeds()),
		"neighborhood": cfg.Neighborhood,
		"window_start": windowStart.Format("2006-01-02"),
		"window_end":   windowEnd.Format("2006-01-02"),
	})

	events, seeds, err := crawl(cmd, cfg)
	if err != nil {
		return err
	}

	pipeline := &filter.Pipeline{
		Geofence: &filter.Geofence{
			Lat:          cfg.CenterLat,
			Lon:          cfg.CenterLon,
			RadiusMiles:  cfg.RadiusMiles,
			Neighborhood: cfg.Neighborhood,
			City:         cfg.City,
		},
		Window: &filter.TimeWindow{
			DaysAhead: cfg.FutureDaysLimit,
			Location:  loc,
		},
		MaxEvents: cfg.MaxEvents,
		Location:  loc,
	}
	final := pipeline.Run(events)

	logger.Info("events filtered", logger.Fields{
		"raw_events":   len(events),
		"final_events": len(final),
	})

	digestText := buildDigest(cmd, cfg, windowStart, windowEnd, final)

	report := storage.NewReport(
		storage.Area{
			Neighborhood: cfg.Neighborhood,
			City:         cfg.City,
			State:        cfg.State,
			Timezone:     cfg.Timezone,
		},
		storage.DateWindow{
			Start: windowStart.Format("2006-01-02T15:04"),
			End:   windowEnd.Format("2006-01-02T15:04"),
		},
		cfg.NormalizedSeeds(),
		final,
	)
	report.Digest = digestText

	if !flagDryRun {
		if err := persist(cmd, report, final, loc); err != nil {
			return err
		}
	}

	result := &OutputResult{
		GeneratedAt: now,
		Area:        fmt.Sprintf("%s, %s", cfg.Neighborhood, cfg.City),
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Events:      final,
		EventCount:  len(final),
		Seeds:       seeds,
		Digest:      digestText,
	}
	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if flagVerbose {
		logger.Debug("run metrics", logger.MetricsSnapshot())
	}
	return nil
}

// loadConfig layers flag overrides on top of the file and environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if len(flagSeeds) > 0 {
		cfg.Seeds = flagSeeds
	}
	if flagMaxEvents > 0 {
		cfg.MaxEvents = flagMaxEvents
	}
	if flagDaysAhead > 0 {
		cfg.FutureDaysLimit = flagDaysAhead
	}
	if flagRadiusMiles > 0 {
		cfg.RadiusMiles = flagRadiusMiles
	}
	if flagConcurrency > 0 {
		cfg.Concurrency = flagConcurrency
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func crawl(cmd *cobra.Command, cfg *config.Config) ([]*event.Event, map[string]crawler.PageState, error) {
	client := fetch.New(cfg.FetchTimeout())
	cr := crawler.New(client, crawler.Options{
		MaxEvents:        cfg.MaxEvents,
		MaxFollowPerSeed: cfg.MaxFollowPerSeed,
		Concurrency:      cfg.Concurrency,
		Pause:            cfg.CrawlPause(),
	})

	result, err := cr.Crawl(cmd.Context(), cfg.NormalizedSeeds())
	if err != nil {
		return nil, nil, fmt.Errorf("crawling seeds: %w", err)
	}
	return result.Events, result.Seeds, nil
}

// buildDigest formats the final list, through the OpenAI formatter when a key
// is configured and falling back to the plain formatter otherwise.
func buildDigest(cmd *cobra.Command, cfg *config.Config, windowStart, windowEnd time.Time, events []*event.Event) string {
	req := digest.Request{
		Area: digest.Area{
			Neighborhood: cfg.Neighborhood,
			City:         cfg.City,
			State:        cfg.State,
		},
		WindowStart: windowStart.Format("2006-01-02"),
		WindowEnd:   windowEnd.Format("2006-01-02"),
		Events:      events,
	}

	// Dry runs never call out to the model.
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" || flagDryRun {
		return digest.FormatPlain(req)
	}

	client, err := digest.New(apiKey)
	if err != nil {
		logger.Warn("digest client unavailable", logger.Fields{"error": err.Error()})
		return digest.FormatPlain(req)
	}

	text, err := client.Summarize(cmd.Context(), req)
	if err != nil {
		logger.Warn("digest request failed, using plain format", logger.Fields{"error": err.Error()})
		return digest.FormatPlain(req)
	}
	return text
}

// persist writes the report locally, uploads it to S3, and writes the
// calendar file, per the configured destinations.
func persist(cmd *cobra.Command, report *storage.Report, events []*event.Event, loc *time.Location) error {
	if flagOut != "" {
		store, err := storage.New(flagOut)
		if err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
		path, err := store.WriteReport(report, flagGzip)
		if err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info("report written", logger.Fields{"path": path})
	}

	if flagS3Bucket != "" {
		sink, err := storage.NewS3Sink(cmd.Context(), flagS3Bucket)
		if err != nil {
			return fmt.Errorf("initializing S3 sink: %w", err)
		}
		key := report.Filename(time.Now())
		if flagGzip {
			key += ".gz"
		}
		if err := sink.UploadReport(cmd.Context(), key, report, flagGzip); err != nil {
			return fmt.Errorf("uploading report: %w", err)
		}
		logger.Info("report uploaded", logger.Fields{"bucket": flagS3Bucket, "key": key})
	}

	if flagICS != "" {
		ics := calendar.GenerateICS(events, loc)
		if err := os.WriteFile(flagICS, []byte(ics), 0644); err != nil {
			return fmt.Errorf("writing calendar file: %w", err)
		}
		logger.Info("calendar written", logger.Fields{"path": flagICS})
	}

	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
