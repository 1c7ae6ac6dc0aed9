// Package images resolves a representative image for an article through an
// ordered chain of discovery strategies and persists the winner to blob
// storage.
package images

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // content-derived filenames, not crypto
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Nyaya-Manch/kanoon-khabar/internal/logger"
	"github.com/Nyaya-Manch/kanoon-khabar/pkg/blobstore"
	"github.com/Nyaya-Manch/kanoon-khabar/pkg/httpclient"
)

const (
	// Content fetches and downloads get the longer timeout; HEAD validation
	// the shorter one.
	pageTimeout = 10 * time.Second
	headTimeout = 5 * time.Second

	maxImageBytes = 5 * 1024 * 1024
	// Downloads under this size are error pages, not images.
	minImageBytes = 1024
)

// defaultFallbackImages maps categories (and a few court names) to stock
// images used when no article image can be resolved.
var defaultFallbackImages = map[string]string{
	"supreme court":  "https://images.unsplash.com/photo-1589829545856-d10d557cf95f?w=800&h=400&fit=crop",
	"high court":     "https://images.unsplash.com/photo-1521587760476-6c12a4b040da?w=800&h=400&fit=crop",
	"judicial":       "https://images.unsplash.com/photo-1589216532372-59a850b1db90?w=800&h=400&fit=crop",
	"constitutional": "https://images.unsplash.com/photo-1555374018-13a8994ab246?w=800&h=400&fit=crop",
	"legislative":    "https://images.unsplash.com/photo-1589994965851-a8f479c573a9?w=800&h=400&fit=crop",
	"business":       "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800&h=400&fit=crop",
	"general":        "https://images.unsplash.com/photo-1589216532372-59a850b1db90?w=800&h=400&fit=crop",
}

// fallbackImageOrder fixes the priority of partial category matches against
// the stock table.
var fallbackImageOrder = []string{
	"supreme court",
	"high court",
	"judicial",
	"constitutional",
	"legislative",
	"business",
	"general",
}

// sourceFallbackCategories maps known source-name substrings to a fallback
// image category.
var sourceFallbackCategories = []struct {
	match    string
	category string
}{
	{"supreme court", "supreme court"},
	{"bombay hc", "high court"},
	{"delhi hc", "high court"},
	{"high court", "high court"},
	{"bar and bench", "judicial"},
	{"bar & bench", "judicial"},
}

var featuredSelectors = []string{
	".featured-image img",
	".post-thumbnail img",
	".entry-image img",
	".article-image img",
	".hero-image img",
}

var contentSelectors = []string{
	"article img",
	".post-content img",
	".entry-content img",
	".article-content img",
	"main img",
}

var skipPatterns = []string{"logo", "icon", "avatar", "ad", "banner", "header", "footer"}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// Extractor resolves and stores article images. Safe for sequential reuse;
// it holds no per-article state.
type Extractor struct {
	store          blobstore.Store
	pageClient     httpclient.Client
	headClient     httpclient.Client
	log            logger.Logger
	fallbackImages map[string]string
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithClients overrides the content and HEAD-validation HTTP clients.
func WithClients(page, head httpclient.Client) Option {
	return func(e *Extractor) {
		if page != nil {
			e.pageClient = page
		}
		if head != nil {
			e.headClient = head
		}
	}
}

// WithFallbackImages replaces the stock-image table.
func WithFallbackImages(images map[string]string) Option {
	return func(e *Extractor) {
		if len(images) > 0 {
			e.fallbackImages = images
		}
	}
}

// NewExtractor builds an extractor that persists images through store.
func NewExtractor(store blobstore.Store, log logger.Logger, opts ...Option) *Extractor {
	if log == nil {
		log = logger.NopLogger{}
	}

	e := &Extractor{
		store:          store,
		pageClient:     httpclient.NewRestyClient(pageTimeout),
		headClient:     httpclient.NewRestyClient(headTimeout),
		log:            log,
		fallbackImages: defaultFallbackImages,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractAndStore runs the strategy chain for the article at articleURL and
// returns the storage URL of the persisted image, or "" when every strategy
// is exhausted. It never fails: each internal step degrades to the next
// strategy.
func (e *Extractor) ExtractAndStore(ctx context.Context, articleURL, articleID, source, category string) string {
	strategies := []struct {
		name string
		find func(ctx context.Context) string
	}{
		{"article_page", func(ctx context.Context) string { return e.fromArticlePage(ctx, articleURL) }},
		{"category_fallback", func(context.Context) string { return e.categoryFallback(category) }},
		{"source_fallback", func(context.Context) string { return e.sourceFallback(source, category) }},
		{"default_fallback", func(context.Context) string { return e.fallbackImages["general"] }},
	}

	for _, strategy := range strategies {
		candidate := strategy.find(ctx)
		if candidate == "" {
			continue
		}

		stored := e.downloadAndStore(ctx, candidate, articleID, strategy.name)
		if stored != "" {
			e.log.InfoObj("article image stored", "image_stored", map[string]any{
				"article_id": articleID,
				"strategy":   strategy.name,
				"url":        stored,
			})
			return stored
		}

		e.log.DebugObj("image strategy failed", "image_strategy_failed", map[string]any{
			"article_id": articleID,
			"strategy":   strategy.name,
		})
	}

	e.log.WarnObj("all image strategies exhausted", "image_exhausted", map[string]any{
		"article_id": articleID,
		"url":        articleURL,
	})
	return ""
}

// fromArticlePage fetches the article HTML and tries the in-page discovery
// sub-chain: og:image, twitter:image, featured-image selectors, qualifying
// content images, then schema.org JSON-LD.
func (e *Extractor) fromArticlePage(ctx context.Context, articleURL string) string {
	resp, err := e.pageClient.Get(ctx, articleURL, nil)
	if err != nil || resp.StatusCode() != 200 {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return ""
	}

	finders := []func(*goquery.Document, string) string{
		findOGImage,
		findTwitterImage,
		findFeaturedImage,
		findContentImage,
		findSchemaImage,
	}

	for _, find := range finders {
		if candidate := find(doc, articleURL); candidate != "" && e.isValidImageURL(ctx, candidate) {
			return candidate
		}
	}
	return ""
}

func findOGImage(doc *goquery.Document, base string) string {
	if content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
		return resolveAgainst(base, content)
	}
	return ""
}

func findTwitterImage(doc *goquery.Document, base string) string {
	if content, ok := doc.Find(`meta[name="twitter:image"]`).First().Attr("content"); ok {
		return resolveAgainst(base, content)
	}
	return ""
}

func findFeaturedImage(doc *goquery.Document, base string) string {
	for _, selector := range featuredSelectors {
		if src, ok := doc.Find(selector).First().Attr("src"); ok && src != "" {
			return resolveAgainst(base, src)
		}
	}
	return ""
}

func findContentImage(doc *goquery.Document, base string) string {
	for _, selector := range contentSelectors {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, img *goquery.Selection) bool {
			src, _ := img.Attr("src")
			if src == "" {
				src, _ = img.Attr("data-src")
			}
			if src != "" && isContentImage(img) {
				found = resolveAgainst(base, src)
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func findSchemaImage(doc *goquery.Document, base string) string {
	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, script *goquery.Selection) bool {
		var data map[string]any
		if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
			return true
		}

		switch image := data["image"].(type) {
		case string:
			found = resolveAgainst(base, image)
		case map[string]any:
			if u, ok := image["url"].(string); ok {
				found = resolveAgainst(base, u)
			}
		case []any:
			if len(image) > 0 {
				switch first := image[0].(type) {
				case string:
					found = resolveAgainst(base, first)
				case map[string]any:
					if u, ok := first["url"].(string); ok {
						found = resolveAgainst(base, u)
					}
				}
			}
		}
		return found == ""
	})
	return found
}

// isContentImage rejects images that look like chrome rather than content:
// explicitly small dimensions, or logo/icon/ad patterns in the src or class.
func isContentImage(img *goquery.Selection) bool {
	width, wok := img.Attr("width")
	height, hok := img.Attr("height")
	if wok && hok {
		if w, err := strconv.Atoi(strings.TrimSpace(width)); err == nil {
			if h, err := strconv.Atoi(strings.TrimSpace(height)); err == nil {
				if w < 200 || h < 100 {
					return false
				}
			}
		}
	}

	src, _ := img.Attr("src")
	class, _ := img.Attr("class")
	haystack := strings.ToLower(src + " " + class)
	for _, pattern := range skipPatterns {
		if strings.Contains(haystack, pattern) {
			return false
		}
	}
	return true
}

// isValidImageURL checks that the candidate has a scheme and host and either
// carries a recognized image extension or answers a HEAD request with an
// image content type.
func (e *Extractor) isValidImageURL(ctx context.Context, candidate string) bool {
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}

	path := strings.ToLower(parsed.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	resp, err := e.headClient.Head(ctx, candidate, nil)
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(resp.Header("Content-Type")), "image/")
}

// categoryFallback resolves a stock image by exact then substring category
// match.
func (e *Extractor) categoryFallback(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return ""
	}

	if img, ok := e.fallbackImages[category]; ok {
		return img
	}
	for _, key := range e.fallbackKeys() {
		if strings.Contains(category, key) || strings.Contains(key, category) {
			return e.fallbackImages[key]
		}
	}
	return ""
}

// fallbackKeys returns the stock table's keys in fallbackImageOrder, with
// keys from a replaced table appended in sorted order so partial matches
// resolve the same way on every call.
func (e *Extractor) fallbackKeys() []string {
	keys := make([]string, 0, len(e.fallbackImages))
	known := make(map[string]bool, len(fallbackImageOrder))
	for _, key := range fallbackImageOrder {
		if _, ok := e.fallbackImages[key]; ok {
			keys = append(keys, key)
			known[key] = true
		}
	}
	extra := make([]string, 0, len(e.fallbackImages))
	for key := range e.fallbackImages {
		if !known[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// sourceFallback maps known source-name substrings to a fallback category,
// delegating to the category table when nothing matches.
func (e *Extractor) sourceFallback(source, category string) string {
	lower := strings.ToLower(source)
	for _, m := range sourceFallbackCategories {
		if strings.Contains(lower, m.match) {
			if img, ok := e.fallbackImages[m.category]; ok {
				return img
			}
		}
	}
	return e.categoryFallback(category)
}

// downloadAndStore fetches the candidate image, applies the size and
// content-type guards and uploads it under the article's namespace.
// Returns "" on any rejection or upload failure.
func (e *Extractor) downloadAndStore(ctx context.Context, imageURL, articleID, strategy string) string {
	resp, err := e.pageClient.Get(ctx, imageURL, nil)
	if err != nil || resp.StatusCode() != 200 {
		return ""
	}

	contentType := strings.ToLower(resp.Header("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		e.log.DebugObj("candidate is not an image", "image_rejected", map[string]any{
			"url":          imageURL,
			"content_type": contentType,
		})
		return ""
	}

	if lengthHeader := resp.Header("Content-Length"); lengthHeader != "" {
		if length, err := strconv.Atoi(lengthHeader); err == nil && length > maxImageBytes {
			e.log.DebugObj("image too large", "image_rejected", map[string]any{
				"url":   imageURL,
				"bytes": length,
			})
			return ""
		}
	}

	data := resp.Body()
	if len(data) > maxImageBytes {
		return ""
	}
	if len(data) < minImageBytes {
		return ""
	}

	blobName := fmt.Sprintf("news/%s/%s", articleID, imageFilename(imageURL, strategy, contentType))

	stored, err := e.store.Upload(ctx, blobName, data, contentType)
	if err != nil {
		e.log.WarnObj("image upload failed", "image_upload_error", map[string]any{
			"blob":  blobName,
			"error": err.Error(),
		})
		return ""
	}
	return stored
}

// imageFilename derives a stable name from the source URL hash, a truncated
// strategy prefix and the inferred extension, so duplicate uploads of the
// same image are idempotent.
func imageFilename(imageURL, strategy, contentType string) string {
	sum := md5.Sum([]byte(imageURL)) //nolint:gosec
	hash := hex.EncodeToString(sum[:])[:8]

	prefix := strings.ReplaceAll(strategy, "_", "")
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}

	return fmt.Sprintf("image_%s_%s%s", prefix, hash, fileExtension(contentType, imageURL))
}

func fileExtension(contentType, imageURL string) string {
	switch {
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return ".jpg"
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	}

	if parsed, err := url.Parse(imageURL); err == nil {
		path := strings.ToLower(parsed.Path)
		for _, ext := range imageExtensions {
			if strings.HasSuffix(path, ext) {
				return ext
			}
		}
	}
	return ".jpg"
}

// resolveAgainst resolves a possibly relative reference against base.
func resolveAgainst(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(parsed).String()
}
