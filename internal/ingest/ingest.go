// Package ingest runs one harvest cycle end to end: fetch articles from the
// registered sources, drop already-seen URLs, persist the rest, resolve a
// featured image for each new article, and publish events downstream.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/Nyaya-Manch/kanoon-khabar/internal/domain"
	"github.com/Nyaya-Manch/kanoon-khabar/internal/logger"
	"github.com/Nyaya-Manch/kanoon-khabar/internal/store"
	"github.com/Nyaya-Manch/kanoon-khabar/pkg/publishers"
)

const maxImageWorkers = 10

// Fetcher is the source aggregation surface the pipeline consumes;
// sources.Manager satisfies it.
type Fetcher interface {
	FetchAllNews(ctx context.Context, totalLimit int) []domain.Article
}

// SeenStore tracks already-harvested URLs; internal/dedup satisfies it.
type SeenStore interface {
	Seen(url string) (bool, error)
	MarkSeen(url string) error
}

// ArticleStore persists articles; internal/store satisfies it.
type ArticleStore interface {
	SaveNew(art domain.Article) (*store.ArticleRecord, bool, error)
	UpdateImage(id, imageURL string) error
}

// ImageResolver resolves and stores a featured image for one article;
// pkg/images satisfies it.
type ImageResolver interface {
	ExtractAndStore(ctx context.Context, articleURL, articleID, source, category string) string
}

// Config tunes a harvest cycle.
type Config struct {
	TotalLimit        int
	ImageWorkers      int
	ImageRequestDelay time.Duration
}

// Stats summarizes one completed cycle.
type Stats struct {
	Fetched    int
	New        int
	Duplicates int
	Failures   int
	Images     int
	Published  int
}

// Ingestor wires the pipeline stages together.
type Ingestor struct {
	cfg       Config
	manager   Fetcher
	seen      SeenStore
	articles  ArticleStore
	extractor ImageResolver
	pubs      []publishers.Publisher
	log       logger.Logger
}

// New creates an Ingestor. The extractor and publishers are optional; the
// image and publish stages are skipped when they are absent.
func New(
	cfg Config,
	manager Fetcher,
	seen SeenStore,
	articles ArticleStore,
	extractor ImageResolver,
	pubs []publishers.Publisher,
	log logger.Logger,
) *Ingestor {
	if log == nil {
		log = logger.NopLogger{}
	}
	if cfg.ImageWorkers <= 0 {
		cfg.ImageWorkers = 4
	}
	if cfg.ImageWorkers > maxImageWorkers {
		cfg.ImageWorkers = maxImageWorkers
	}
	return &Ingestor{
		cfg:       cfg,
		manager:   manager,
		seen:      seen,
		articles:  articles,
		extractor: extractor,
		pubs:      pubs,
		log:       log,
	}
}

// Run executes one harvest cycle and reports what happened.
func (in *Ingestor) Run(ctx context.Context) Stats {
	stats := Stats{}

	fetched := in.manager.FetchAllNews(ctx, in.cfg.TotalLimit)
	stats.Fetched = len(fetched)

	fresh := make([]domain.Article, 0, len(fetched))
	for _, art := range fetched {
		if ctx.Err() != nil {
			break
		}
		switch kept, err := in.persist(art); {
		case err != nil:
			stats.Failures++
			in.log.WarnObj("article persist failed", "persist_error", map[string]any{
				"url":    art.URL,
				"source": art.Source,
				"error":  err.Error(),
			})
		case kept.URL != "":
			fresh = append(fresh, kept)
		default:
			stats.Duplicates++
		}
	}
	stats.New = len(fresh)

	stats.Images = in.resolveImages(ctx, fresh)
	stats.Published = in.publish(ctx, fresh)

	in.log.InfoObj("harvest cycle complete", "cycle_done", map[string]any{
		"fetched":    stats.Fetched,
		"new":        stats.New,
		"duplicates": stats.Duplicates,
		"failures":   stats.Failures,
		"images":     stats.Images,
		"published":  stats.Published,
	})
	return stats
}

// persist stores one article unless it was seen before. It returns the stored
// article with its record ID filled in, or a zero article for duplicates.
func (in *Ingestor) persist(art domain.Article) (domain.Article, error) {
	already, err := in.seen.Seen(art.URL)
	if err != nil {
		return domain.Article{}, err
	}
	if already {
		return domain.Article{}, nil
	}

	rec, inserted, err := in.articles.SaveNew(art)
	if err != nil {
		return domain.Article{}, err
	}
	if err := in.seen.MarkSeen(art.URL); err != nil {
		in.log.WarnObj("mark seen failed", "dedup_error", map[string]any{
			"url":   art.URL,
			"error": err.Error(),
		})
	}
	if !inserted {
		return domain.Article{}, nil
	}

	art.ID = rec.ID
	return art, nil
}

// resolveImages runs the image extractor over the new articles through a
// bounded worker pool, updating each stored record when an image is found.
// The rate limiter, when configured, spaces out page fetches across workers.
func (in *Ingestor) resolveImages(ctx context.Context, fresh []domain.Article) int {
	if in.extractor == nil || len(fresh) == 0 {
		return 0
	}

	workerCount := min(len(fresh), in.cfg.ImageWorkers)

	var limiter <-chan time.Time
	if in.cfg.ImageRequestDelay > 0 {
		ticker := time.NewTicker(in.cfg.ImageRequestDelay)
		limiter = ticker.C
		defer ticker.Stop()
	}

	var resolved int
	var mu sync.Mutex
	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := range workerCount {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range jobCh {
				if ctx.Err() != nil {
					return
				}
				if limiter != nil {
					select {
					case <-ctx.Done():
						return
					case <-limiter:
					}
				}
				if in.resolveOne(ctx, &fresh[idx], workerID) {
					mu.Lock()
					resolved++
					mu.Unlock()
				}
			}
		}(workerID)
	}

feed:
	for idx := range fresh {
		select {
		case jobCh <- idx:
		case <-ctx.Done():
			// cancelled workers stop reading jobCh
			break feed
		}
	}
	close(jobCh)

	wg.Wait()
	return resolved
}

func (in *Ingestor) resolveOne(ctx context.Context, art *domain.Article, workerID int) bool {
	imageURL := in.extractor.ExtractAndStore(ctx, art.URL, art.ID, art.Source, art.Category)
	if imageURL == "" {
		return false
	}

	if err := in.articles.UpdateImage(art.ID, imageURL); err != nil {
		in.log.WarnObj("image update failed", "image_store_error", map[string]any{
			"worker_id":  workerID,
			"article_id": art.ID,
			"error":      err.Error(),
		})
		return false
	}

	art.FeaturedImageURL = imageURL
	art.ThumbnailURL = imageURL
	return true
}

// publish fans each new article out to every configured publisher. A failing
// publisher never blocks the others.
func (in *Ingestor) publish(ctx context.Context, fresh []domain.Article) int {
	if len(in.pubs) == 0 || len(fresh) == 0 {
		return 0
	}

	published := 0
	for _, art := range fresh {
		if ctx.Err() != nil {
			break
		}
		evt := publishers.Event{
			ArticleID:   art.ID,
			Title:       art.Title,
			URL:         art.URL,
			Source:      art.Source,
			Category:    art.Category,
			ImageURL:    art.FeaturedImageURL,
			PublishedAt: art.PublishedAt,
		}
		delivered := false
		for _, pub := range in.pubs {
			if err := pub.Publish(ctx, evt); err != nil {
				in.log.WarnObj("publish failed", "publish_error", map[string]any{
					"publisher_id": pub.ID(),
					"article_id":   art.ID,
					"error":        err.Error(),
				})
				continue
			}
			delivered = true
		}
		if delivered {
			published++
		}
	}
	return published
}
