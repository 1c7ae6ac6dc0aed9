package sources

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Nyaya-Manch/kanoon-khabar/internal/domain"
	"github.com/Nyaya-Manch/kanoon-khabar/internal/logger"
	"github.com/Nyaya-Manch/kanoon-khabar/pkg/httpclient"
)

const (
	liveLawSourceID = "livelaw_api"
	liveLawName     = "Live Law"
	liveLawBaseURL  = "https://www.livelaw.in"
	liveLawStock    = "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800&h=400&fit=crop"

	// Containers shorter than this are navigation fragments, not headlines.
	liveLawMinTitleLen = 10
)

// liveLawSource scrapes the Live Law XHR endpoint, which returns an HTML
// fragment of article cards.
type liveLawSource struct {
	client httpclient.Client
	log    logger.Logger
	apiURL string
}

// NewLiveLawSource builds the Live Law source.
func NewLiveLawSource(client httpclient.Client, log logger.Logger) Source {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &liveLawSource{
		client: client,
		log:    log,
		apiURL: liveLawBaseURL + "/xhr/getNewsMixin",
	}
}

func (s *liveLawSource) ID() string   { return liveLawSourceID }
func (s *liveLawSource) Name() string { return liveLawName }

func (s *liveLawSource) Categories() []string {
	return []string{
		domain.CategoryConstitutional,
		domain.CategoryJudicial,
		domain.CategoryLegislative,
		domain.CategoryGeneral,
	}
}

func (s *liveLawSource) Weight() float64 { return 0.8 }

func (s *liveLawSource) FetchNews(ctx context.Context, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		return nil, nil
	}

	params := map[string]string{
		"newsCount":    strconv.Itoa(limit),
		"element_type": "CONTENT",
		"content_type": "CATEGORY_NEWS",
		"partner":      "livelaw",
		"page":         "all",
	}
	headers := map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"Referer":          liveLawBaseURL + "/",
	}

	body := safeGet(ctx, s.client, s.apiURL, params, headers)
	if body == nil {
		return nil, fmt.Errorf("livelaw endpoint unavailable")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse livelaw response: %w", err)
	}

	articles := scrapeArticleContainers(doc, scrapeOpts{
		baseURL:        liveLawBaseURL,
		sourceName:     liveLawName,
		stockImage:     liveLawStock,
		containerMatch: []string{"news", "article", "post", "card"},
		minTitleLen:    liveLawMinTitleLen,
		limit:          limit,
	})
	if len(articles) == 0 {
		return nil, fmt.Errorf("livelaw returned no parseable articles")
	}

	s.log.DebugObj("livelaw fetch complete", "source_fetch", map[string]any{
		"count": len(articles),
	})
	return articles, nil
}

// scrapeOpts parameterizes the generic container walk shared by the
// HTML-scraping sources.
type scrapeOpts struct {
	baseURL        string
	sourceName     string
	stockImage     string
	containerMatch []string
	minTitleLen    int
	limit          int
}

// scrapeArticleContainers walks article/div containers whose class mentions
// one of the match terms and maps each into an Article, skipping containers
// that lack a usable title or URL.
func scrapeArticleContainers(doc *goquery.Document, opts scrapeOpts) []domain.Article {
	var articles []domain.Article
	seen := make(map[string]struct{})

	doc.Find("article, div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		if !classMatches(class, opts.containerMatch) {
			return true
		}

		art, ok := extractArticle(sel, opts)
		if !ok {
			return true
		}
		if _, dup := seen[art.URL]; dup {
			return true
		}
		seen[art.URL] = struct{}{}

		articles = append(articles, art)
		return len(articles) < opts.limit
	})

	return articles
}

func classMatches(class string, terms []string) bool {
	if class == "" {
		return false
	}
	class = strings.ToLower(class)
	for _, term := range terms {
		if strings.Contains(class, term) {
			return true
		}
	}
	return false
}

// extractArticle pulls title, url, image and description out of one
// container. Missing required fields mean "skip this item".
func extractArticle(sel *goquery.Selection, opts scrapeOpts) (domain.Article, bool) {
	titleSel := sel.Find("h1, h2, h3, h4, a").First()
	if titleSel.Length() == 0 {
		return domain.Article{}, false
	}

	title := strings.TrimSpace(titleSel.Text())
	if title == "" || len(title) < opts.minTitleLen {
		return domain.Article{}, false
	}

	href := firstHref(titleSel, sel)
	if href == "" {
		return domain.Article{}, false
	}
	url := resolveURL(href, opts.baseURL)

	image := opts.stockImage
	alt := title
	if img := sel.Find("img").First(); img.Length() > 0 {
		src, _ := img.Attr("src")
		if src == "" {
			src, _ = img.Attr("data-src")
		}
		if src != "" && src != "/images/placeholder.svg" {
			image = resolveURL(src, opts.baseURL)
			if a, ok := img.Attr("alt"); ok && strings.TrimSpace(a) != "" {
				alt = strings.TrimSpace(a)
			}
		}
	}

	description := title
	sel.Find("p, div").EachWithBreak(func(_ int, d *goquery.Selection) bool {
		class, _ := d.Attr("class")
		if classMatches(class, []string{"desc", "excerpt", "summary"}) {
			if text := strings.TrimSpace(d.Text()); text != "" {
				description = text
				return false
			}
		}
		return true
	})

	art := domain.Article{
		Title:            title,
		URL:              url,
		Description:      description,
		Source:           opts.sourceName,
		Category:         Categorize(title, description),
		PublishedAt:      time.Now(),
		FeaturedImageURL: image,
		ImageCaption:     fmt.Sprintf("%s legal news", opts.sourceName),
		ImageAltText:     alt,
		Keywords:         LegalKeywords(title, description),
	}
	art.Normalize()
	return art, true
}

// firstHref prefers the title element's own link, then any link inside the
// container.
func firstHref(titleSel, container *goquery.Selection) string {
	if goquery.NodeName(titleSel) == "a" {
		if href, ok := titleSel.Attr("href"); ok {
			return strings.TrimSpace(href)
		}
	}
	if a := titleSel.Find("a").First(); a.Length() > 0 {
		if href, ok := a.Attr("href"); ok {
			return strings.TrimSpace(href)
		}
	}
	if a := container.Find("a").First(); a.Length() > 0 {
		if href, ok := a.Attr("href"); ok {
			return strings.TrimSpace(href)
		}
	}
	return ""
}
