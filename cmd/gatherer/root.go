package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/maltedev/gatherer-scraper/internal/browser"
	"github.com/maltedev/gatherer-scraper/internal/cache"
	"github.com/maltedev/gatherer-scraper/internal/config"
	"github.com/maltedev/gatherer-scraper/internal/crawler"
	"github.com/maltedev/gatherer-scraper/internal/fetcher"
	"github.com/maltedev/gatherer-scraper/internal/parser"
	"github.com/maltedev/gatherer-scraper/pkg/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gatherer",
	Short: "Scrape card lists and card details from Gatherer",
	Long: `gatherer crawls the Gatherer card database.

It can print every card of a set, print the faces of a single card with
their printed wording, or run as an HTTP service with background crawl jobs.

Examples:
  gatherer set "Magic 2014 Core Set" --output table
  gatherer card 27165 --cache --expire 24h
  gatherer serve`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings(cmd)
	},
}

// settings holds the env configuration with command line overrides applied.
var settings struct {
	cfg    *config.Config
	logger *slog.Logger
	output string
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("output", "o", outputJSON, "output format: json, yaml or table")
	flags.String("fetcher", "", "page fetcher: http or browser (default from FETCHER_TYPE)")
	flags.String("base-url", "", "Gatherer pages base URL (default from GATHERER_BASE_URL)")
	flags.Bool("cache", false, "cache fetched pages in redis")
	flags.Bool("ignore-cache", false, "always fetch and overwrite cached pages")
	flags.Duration("expire", 0, "time-to-live of cached pages, 0 keeps them forever")
	flags.String("log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(setCmd, cardCmd, serveCmd)
}

func loadSettings(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("fetcher"); v != "" {
		cfg.Fetcher.Type = v
	}
	if v, _ := flags.GetString("base-url"); v != "" {
		cfg.Fetcher.BaseURL = v
	}
	if v, _ := flags.GetBool("cache"); v {
		cfg.Cache.Enabled = true
	}
	if v, _ := flags.GetBool("ignore-cache"); v {
		cfg.Cache.IgnoreCache = true
	}
	if flags.Changed("expire") {
		cfg.Cache.Expire, _ = flags.GetDuration("expire")
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	output, _ := flags.GetString("output")
	if !validOutput(output) {
		return fmt.Errorf("unknown output format %q", output)
	}

	// stdout carries command output, so the CLI logs to stderr.
	var logWriter io.Writer = os.Stderr
	if cmd.Name() == serveCmd.Name() {
		logWriter = os.Stdout
	}

	settings.cfg = cfg
	settings.output = output
	settings.logger = logger.NewWithWriter(logWriter, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(settings.logger)

	return nil
}

// newCrawler assembles the fetcher chain from cfg. The returned cleanup
// releases the browser and cache connections.
func newCrawler(cfg *config.Config, log *slog.Logger) (*crawler.Crawler, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("cleanup failed", "error", err)
			}
		}
	}

	var f fetcher.Fetcher
	switch cfg.Fetcher.Type {
	case config.FetcherBrowser:
		b, err := browser.New(&browser.Options{
			Headless:       cfg.Browser.Headless,
			Timeout:        cfg.Browser.Timeout,
			UserAgent:      userAgent(cfg),
			ViewportWidth:  cfg.Browser.ViewportWidth,
			ViewportHeight: cfg.Browser.ViewportHeight,
			Locale:         cfg.Browser.Locale,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize browser: %w", err)
		}
		closers = append(closers, b.Close)
		f = fetcher.NewBrowserFetcher(b, log)
	default:
		f = fetcher.NewHTTPFetcher(&fetcher.HTTPOptions{
			Timeout:   cfg.Fetcher.Timeout,
			UserAgent: userAgent(cfg),
		}, log)
	}

	if cfg.Cache.Enabled {
		cached := cache.New(f, &cache.Options{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			IgnoreCache: cfg.Cache.IgnoreCache,
			Expire:      cfg.Cache.Expire,
		}, log)
		closers = append(closers, cached.Close)
		f = cached
	}

	c := crawler.New(f, parser.NewGathererParser(), &crawler.Options{BaseURL: cfg.Fetcher.BaseURL}, log)
	return c, cleanup, nil
}

func userAgent(cfg *config.Config) string {
	if cfg.Fetcher.UserAgent != "" {
		return cfg.Fetcher.UserAgent
	}
	return fetcher.DefaultHTTPOptions().UserAgent
}

func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
