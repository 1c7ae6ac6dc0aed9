package sources

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/Nyaya-Manch/kanoon-khabar/internal/domain"
	"github.com/Nyaya-Manch/kanoon-khabar/internal/logger"
	"github.com/Nyaya-Manch/kanoon-khabar/pkg/httpclient"
)

const (
	barBenchSourceID = "bar_bench"
	barBenchName     = "Bar & Bench"
	barBenchBaseURL  = "https://www.barandbench.com"
	barBenchStock    = "https://images.unsplash.com/photo-1589216532372-59a850b1db90?w=800&h=400&fit=crop"
)

// barBenchSource scrapes the Bar & Bench homepage for article cards.
type barBenchSource struct {
	client httpclient.Client
	log    logger.Logger
}

// NewBarBenchSource builds the Bar & Bench homepage source.
func NewBarBenchSource(client httpclient.Client, log logger.Logger) Source {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &barBenchSource{client: client, log: log}
}

func (s *barBenchSource) ID() string   { return barBenchSourceID }
func (s *barBenchSource) Name() string { return barBenchName }

func (s *barBenchSource) Categories() []string {
	return []string{
		domain.CategoryConstitutional,
		domain.CategoryJudicial,
		domain.CategoryLegislative,
		domain.CategoryCivil,
		domain.CategoryGeneral,
	}
}

func (s *barBenchSource) Weight() float64 { return 0.7 }

func (s *barBenchSource) FetchNews(ctx context.Context, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		return nil, nil
	}

	body := safeGet(ctx, s.client, barBenchBaseURL, nil, nil)
	if body == nil {
		return nil, fmt.Errorf("bar & bench homepage unavailable")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse bar & bench homepage: %w", err)
	}

	articles := scrapeArticleContainers(doc, scrapeOpts{
		baseURL:        barBenchBaseURL,
		sourceName:     barBenchName,
		stockImage:     barBenchStock,
		containerMatch: []string{"post", "article", "news"},
		minTitleLen:    1,
		limit:          limit,
	})
	if len(articles) == 0 {
		return nil, fmt.Errorf("bar & bench returned no parseable articles")
	}

	s.log.DebugObj("bar & bench fetch complete", "source_fetch", map[string]any{
		"count": len(articles),
	})
	return articles, nil
}
