package sources

import (
	"context"
	"fmt"
	"sort"

	"github.com/Nyaya-Manch/kanoon-khabar/internal/domain"
	"github.com/Nyaya-Manch/kanoon-khabar/internal/logger"
	"github.com/Nyaya-Manch/kanoon-khabar/pkg/httpclient"
)

const (
	indianKanoonSourceID = "indian_kanoon_rss"
	indianKanoonName     = "Indian Kanoon"
	indianKanoonBaseURL  = "https://indiankanoon.org"
)

// kanoonFeed is one per-court RSS endpoint with its stock image.
type kanoonFeed struct {
	name       string
	url        string
	stockImage string
}

// indianKanoonSource fans out across the Indian Kanoon per-court RSS feeds,
// fetching a proportional share from each and merging by date.
type indianKanoonSource struct {
	client httpclient.Client
	log    logger.Logger
	feeds  []kanoonFeed
}

// NewIndianKanoonSource builds the multi-feed Indian Kanoon RSS source.
func NewIndianKanoonSource(client httpclient.Client, log logger.Logger) Source {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &indianKanoonSource{
		client: client,
		log:    log,
		feeds: []kanoonFeed{
			{
				name:       "Supreme Court",
				url:        indianKanoonBaseURL + "/feeds/latest/supremecourt/",
				stockImage: "https://images.unsplash.com/photo-1589829545856-d10d557cf95f?w=800&h=400&fit=crop",
			},
			{
				name:       "All Judgments",
				url:        indianKanoonBaseURL + "/feeds/latest/judgments/",
				stockImage: "https://images.unsplash.com/photo-1589994965851-a8f479c573a9?w=800&h=400&fit=crop",
			},
			{
				name:       "Delhi HC",
				url:        indianKanoonBaseURL + "/feeds/latest/delhi/",
				stockImage: "https://images.unsplash.com/photo-1521587760476-6c12a4b040da?w=800&h=400&fit=crop",
			},
			{
				name:       "Bombay HC",
				url:        indianKanoonBaseURL + "/feeds/latest/bombay/",
				stockImage: "https://images.unsplash.com/photo-1589216532372-59a850b1db90?w=800&h=400&fit=crop",
			},
		},
	}
}

func (s *indianKanoonSource) ID() string   { return indianKanoonSourceID }
func (s *indianKanoonSource) Name() string { return indianKanoonName }

func (s *indianKanoonSource) Categories() []string {
	return []string{domain.CategoryConstitutional, domain.CategoryJudicial, domain.CategoryCivil}
}

func (s *indianKanoonSource) Weight() float64 { return 1.0 }

// FetchNews pulls a share of limit from every configured feed, merges the
// results newest first and truncates to limit. A single failing feed only
// shrinks the batch; all feeds failing yields an error so the manager can
// redistribute the quota.
func (s *indianKanoonSource) FetchNews(ctx context.Context, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		return nil, nil
	}

	perFeed := max(1, limit/len(s.feeds))

	var all []domain.Article
	var failed int
	seen := make(map[string]struct{})
	for _, feed := range s.feeds {
		articles, err := s.fetchSingleFeed(ctx, feed, perFeed)
		if err != nil {
			failed++
			s.log.WarnObj("indian kanoon feed failed", "source_feed_error", map[string]any{
				"feed":  feed.name,
				"error": err.Error(),
			})
			continue
		}
		// The same judgment can appear in both a court feed and the
		// all-judgments feed; keep the first occurrence.
		for _, art := range articles {
			if _, dup := seen[art.URL]; dup {
				continue
			}
			seen[art.URL] = struct{}{}
			all = append(all, art)
		}
	}

	if failed == len(s.feeds) {
		return nil, fmt.Errorf("all %d indian kanoon feeds failed", failed)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *indianKanoonSource) fetchSingleFeed(ctx context.Context, fd kanoonFeed, limit int) ([]domain.Article, error) {
	feed, err := fetchFeed(ctx, s.client, fd.url)
	if err != nil {
		return nil, err
	}

	sourceName := fmt.Sprintf("%s - %s", indianKanoonName, fd.name)
	caption := fmt.Sprintf("%s %s article", indianKanoonName, fd.name)

	articles := make([]domain.Article, 0, limit)
	for _, item := range feed.Items {
		if len(articles) >= limit {
			break
		}
		art, ok := articleFromItem(item, sourceName, fd.stockImage, caption)
		if !ok {
			continue
		}
		art.ImageAltText = fmt.Sprintf("%s: %s", fd.name, art.Title)
		articles = append(articles, art)
	}
	return articles, nil
}
