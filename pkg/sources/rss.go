package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/Nyaya-Manch/kanoon-khabar/internal/domain"
	"github.com/Nyaya-Manch/kanoon-khabar/pkg/httpclient"
)

// fetchFeed downloads and parses one RSS/Atom feed.
func fetchFeed(ctx context.Context, client httpclient.Client, url string) (*gofeed.Feed, error) {
	body := safeGet(ctx, client, url, nil, nil)
	if body == nil {
		return nil, fmt.Errorf("feed %s unavailable", url)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}
	return feed, nil
}

// itemPublishedAt returns the item's parsed timestamp, defaulting to now so
// ordering degrades gracefully instead of failing the fetch.
func itemPublishedAt(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Now()
}

// articleFromItem maps one feed entry into the standardized shape. stockImage
// is substituted when the entry carries no image of its own.
func articleFromItem(item *gofeed.Item, sourceName, stockImage, caption string) (domain.Article, bool) {
	url := strings.TrimSpace(item.Link)
	if url == "" {
		return domain.Article{}, false
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Untitled"
	}

	description := strings.TrimSpace(item.Description)
	if description == "" {
		description = title
	}

	image := stockImage
	if item.Image != nil && strings.TrimSpace(item.Image.URL) != "" {
		image = strings.TrimSpace(item.Image.URL)
	}

	art := domain.Article{
		Title:            title,
		URL:              url,
		Description:      description,
		Source:           sourceName,
		Category:         Categorize(title, description),
		PublishedAt:      itemPublishedAt(item),
		FeaturedImageURL: image,
		ImageCaption:     caption,
		Keywords:         LegalKeywords(title, description),
	}
	art.Normalize()
	return art, true
}
