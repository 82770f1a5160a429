package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/feedrewriter/pkg/config"
	"github.com/umputun/feedrewriter/pkg/content"
	"github.com/umputun/feedrewriter/pkg/feed"
	"github.com/umputun/feedrewriter/pkg/filter"
	"github.com/umputun/feedrewriter/pkg/llm"
	"github.com/umputun/feedrewriter/pkg/repository"
	"github.com/umputun/feedrewriter/pkg/scheduler"
	"github.com/umputun/feedrewriter/pkg/service"
	"github.com/umputun/feedrewriter/pkg/wordpress"
	"github.com/umputun/feedrewriter/server"
)

// Opts with all CLI options
type Opts struct {
	Config  string `short:"c" long:"config" env:"CONFIG" default:"feedrewriter.yml" description:"config file"`
	RunOnce bool   `long:"run-once" description:"run one manual pass and exit"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

const cleanupInterval = time.Hour

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)
	log.Printf("[INFO] starting feedrewriter version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run wires everything from config and serves until ctx is canceled. With RunOnce it
// does a single manual pass instead.
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	setupLog(opts.Debug, opts.NoColor, secrets(cfg)...)

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		MaxProcessed:    cfg.Processing.MaxProcessedURLs,
		MaxJournal:      cfg.Journal.MaxEntries,
	})
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.Printf("[WARN] failed to close database: %v", err)
		}
	}()

	stores := service.NewStores(repos)
	seeded, err := stores.SeedFeeds(ctx, cfg.Feeds)
	if err != nil {
		return fmt.Errorf("failed to seed feeds: %w", err)
	}
	if seeded > 0 {
		log.Printf("[INFO] seeded %d feeds from config", seeded)
	}
	if err := stores.Cleanup(ctx, time.Now()); err != nil {
		log.Printf("[WARN] cache cleanup failed: %v", err)
	}

	sched := scheduler.New(makeParams(cfg, repos, stores), makeSchedulerConfig(cfg))

	if opts.RunOnce {
		res, err := sched.RunNow(ctx)
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}
		if res.Skipped != "" {
			log.Printf("[INFO] run skipped, %s", res.Skipped)
			return nil
		}
		log.Printf("[INFO] run done, %d feeds checked, %d published", res.FeedsChecked, res.Published)
		return nil
	}

	sched.Start(ctx)
	defer sched.Stop()
	go cleanupLoop(ctx, stores)

	srv := server.New(cfg, stores, sched, revision, opts.Debug)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// makeParams builds pipeline components from config
func makeParams(cfg *config.Config, repos *repository.Repositories, stores *service.Stores) scheduler.Params {
	fetcher := content.NewFetcher(content.FetcherOpts{
		PageTimeout:      cfg.Extraction.Timeout,
		ImageTimeout:     cfg.Extraction.ImageTimeout,
		UserAgent:        cfg.Extraction.UserAgent,
		ImageInsecureTLS: cfg.Extraction.ImageInsecureTLS,
	})
	extractor := content.NewExtractor(content.ExtractorOpts{
		MinTextLength: cfg.Extraction.MinTextLength,
		Trafilatura:   *cfg.Extraction.Trafilatura,
	})

	params := scheduler.Params{
		Store:     stores,
		Loader:    feed.NewLoader(feed.NewFetcher(cfg.Extraction.FeedTimeout, cfg.Extraction.UserAgent), feed.NewParser()),
		Fetcher:   fetcher,
		Extractor: extractor,
		Images:    content.NewImageExtractor(cfg.Extraction.ImageSelector),
		Rewriter:  llm.NewRewriter(cfg.LLM),
		Publisher: makePublisher(cfg, repos.Post),
		Filter:    filter.New(cfg.Processing.KeywordFilter, cfg.Processing.ExcludeKeywordFilter),
	}
	if params.Filter.Empty() {
		log.Printf("[DEBUG] no keyword filters, all entries pass")
	}

	// research stays a nil interface when disabled
	if cfg.Research.Enabled {
		params.Research = content.NewResearcher(fetcher, extractor, stores, content.ResearcherOpts{
			MaxLinks:   cfg.Research.MaxLinks,
			MaxExcerpt: cfg.Research.MaxExcerpt,
			CacheTTL:   cfg.Research.CacheTTL,
		})
	}
	return params
}

// makePublisher returns local publisher or wordpress publisher mirrored into the local store
func makePublisher(cfg *config.Config, posts service.PostStore) scheduler.Publisher {
	local := service.NewLocalPublisher(posts, cfg.Publisher.Local.ImagesDir)
	if cfg.Publisher.Type != "wordpress" {
		log.Printf("[INFO] publishing to local store, images in %s", cfg.Publisher.Local.ImagesDir)
		return local
	}

	wp := cfg.Publisher.WordPress
	log.Printf("[INFO] publishing to wordpress %s as %s", wp.URL, wp.Username)
	remote := wordpress.New(wordpress.Opts{
		URL:         wp.URL,
		Username:    wp.Username,
		AppPassword: wp.AppPassword,
		Status:      wp.Status,
		Timeout:     wp.Timeout,
	})
	return service.NewMirrorPublisher(remote, local)
}

func makeSchedulerConfig(cfg *config.Config) scheduler.Config {
	return scheduler.Config{
		LockTTL:                cfg.Schedule.LockTTL,
		MinTick:                cfg.Schedule.MinTick,
		ManualBypassesInterval: *cfg.Schedule.ManualBypassesInterval,
		ManualBypassesPause:    *cfg.Schedule.ManualBypassesPause,
		MaxEntriesPerFeed:      cfg.Schedule.MaxEntriesPerFeed,
		IgnoreProcessedURLs:    *cfg.Processing.IgnoreProcessedURLs,
		IgnoreNoImage:          cfg.Processing.IgnoreNoImage,
		EnableTOC:              cfg.Processing.EnableTOC,
		GenerateTags:           *cfg.LLM.Tags.Enabled,
		JournalDedup:           cfg.Journal.DedupWindow,
		RunOnStart:             cfg.Schedule.RunOnStart,
	}
}

// cleanupLoop drops expired research cache records periodically
func cleanupLoop(ctx context.Context, stores *service.Stores) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := stores.Cleanup(ctx, now); err != nil {
				log.Printf("[WARN] cache cleanup failed: %v", err)
			}
		}
	}
}

// secrets returns non-empty credentials to be masked in logs
func secrets(cfg *config.Config) []string {
	var res []string
	for _, s := range []string{cfg.LLM.APIKey, cfg.Publisher.WordPress.AppPassword, cfg.Server.AuthPassword} {
		if s != "" {
			res = append(res, s)
		}
	}
	return res
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
