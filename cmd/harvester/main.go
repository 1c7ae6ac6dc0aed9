// Command harvester runs the legal-news harvest pipeline, either once or on
// a cron schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/Nyaya-Manch/kanoon-khabar/internal/config"
	"github.com/Nyaya-Manch/kanoon-khabar/internal/dedup"
	"github.com/Nyaya-Manch/kanoon-khabar/internal/ingest"
	"github.com/Nyaya-Manch/kanoon-khabar/internal/logger"
	"github.com/Nyaya-Manch/kanoon-khabar/internal/store"
	"github.com/Nyaya-Manch/kanoon-khabar/pkg/blobstore"
	"github.com/Nyaya-Manch/kanoon-khabar/pkg/images"
	"github.com/Nyaya-Manch/kanoon-khabar/pkg/publishers"
	"github.com/Nyaya-Manch/kanoon-khabar/pkg/sources"
)

func main() {
	once := flag.Bool("once", false, "run a single harvest cycle and exit")
	recent := flag.Int("recent", 0, "print the N newest stored articles and exit")
	flag.Parse()

	if err := run(*once, *recent); err != nil {
		fmt.Fprintln(os.Stderr, "harvester:", err)
		os.Exit(1)
	}
}

func run(once bool, recent int) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if recent > 0 {
		return printRecent(cfg, recent)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ingestor, cleanup, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if once {
		ingestor.Run(ctx)
		return nil
	}

	sched := cron.New()
	if _, err := sched.AddFunc(cfg.CronSpec, func() {
		cycleCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()
		ingestor.Run(cycleCtx)
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", cfg.CronSpec, err)
	}

	log.InfoObj("harvester scheduled", "startup", map[string]any{
		"cron":  cfg.CronSpec,
		"limit": cfg.TotalLimit,
	})
	sched.Start()

	<-ctx.Done()
	log.InfoObj("shutting down", "shutdown", nil)
	<-sched.Stop().Done()
	return nil
}

// printRecent lists the newest stored articles, for inspecting what the
// harvester has collected.
func printRecent(cfg *config.Config, limit int) error {
	articles, err := store.New(cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("open article store: %w", err)
	}

	records, err := articles.Recent(limit)
	if err != nil {
		return err
	}
	for _, rec := range records {
		fmt.Printf("%s  %-14s  %s\n    %s\n",
			rec.PublishedAt.Format("2006-01-02 15:04"), rec.Category, rec.Title, rec.URL)
	}
	return nil
}

// buildPipeline assembles the manager, stores, extractor and publishers from
// the loaded configuration. The returned cleanup closes what was opened.
func buildPipeline(ctx context.Context, cfg *config.Config, log logger.Logger) (*ingest.Ingestor, func(), error) {
	manager := sources.NewManager(sources.Config{
		SourceWeights:   cfg.SourceWeights,
		FallbackEnabled: cfg.FallbackEnabled,
		TimeoutSeconds:  cfg.TimeoutSeconds,
		RetryAttempts:   cfg.RetryAttempts,
	}, log)

	client := sources.DefaultHTTPClient()
	for _, src := range []sources.Source{
		sources.NewIndianKanoonSource(client, log),
		sources.NewLiveLawSource(client, log),
		sources.NewBarBenchSource(client, log),
	} {
		manager.AddSource(src.ID(), src, cfg.SourceWeights[src.ID()])
	}

	seen, err := dedup.Open(cfg.DedupPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open dedup store: %w", err)
	}

	articles, err := store.New(cfg.PostgresDSN)
	if err != nil {
		seen.Close()
		return nil, nil, fmt.Errorf("open article store: %w", err)
	}

	blobs, err := blobstore.New(ctx, cfg.Blob)
	if err != nil {
		seen.Close()
		return nil, nil, fmt.Errorf("init blob storage: %w", err)
	}
	extractor := images.NewExtractor(blobs, log)

	var pubs []publishers.Publisher
	if cfg.PublishersFile != "" {
		reg, err := publishers.LoadRegistry(cfg.PublishersFile)
		if err != nil {
			seen.Close()
			return nil, nil, fmt.Errorf("load publishers: %w", err)
		}
		pubs, err = publishers.BuildAll(ctx, publishers.DefaultRegistry(), reg.Enabled(), log)
		if err != nil {
			seen.Close()
			return nil, nil, fmt.Errorf("build publishers: %w", err)
		}
	}

	ingestor := ingest.New(ingest.Config{
		TotalLimit:        cfg.TotalLimit,
		ImageWorkers:      cfg.ImageWorkers,
		ImageRequestDelay: cfg.ImageRequestDelay,
	}, manager, seen, articles, extractor, pubs, log)

	cleanup := func() {
		if err := seen.Close(); err != nil {
			log.WarnObj("dedup store close failed", "shutdown_error", map[string]any{
				"error": err.Error(),
			})
		}
	}
	return ingestor, cleanup, nil
}
