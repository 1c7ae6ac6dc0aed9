// Package sources contains the legal news source implementations and the
// manager that aggregates them into a single weighted fetch.
package sources

import (
	"context"
	"time"

	"github.com/Nyaya-Manch/kanoon-khabar/internal/domain"
	"github.com/Nyaya-Manch/kanoon-khabar/pkg/httpclient"
)

const fetchTimeout = 10 * time.Second

// Source is one external legal news feed or site. FetchNews returns at most
// limit standardized articles, newest first where the upstream provides
// ordering. A non-nil error marks the whole fetch as failed so the manager
// can redistribute the quota; partial per-entry failures are skipped inside
// the source and never surface as errors.
type Source interface {
	ID() string
	Name() string
	FetchNews(ctx context.Context, limit int) ([]domain.Article, error)
	Categories() []string
	Weight() float64
}

// DefaultHTTPClient returns the tuned client sources use when none is injected.
func DefaultHTTPClient() httpclient.Client {
	return httpclient.NewRestyClient(fetchTimeout)
}

// safeGet performs an HTTP GET and returns the body, or nil on any transport
// error or non-200 status. Callers treat nil as "skip this fetch".
func safeGet(ctx context.Context, client httpclient.Client, url string, params, headers map[string]string) []byte {
	resp, err := client.GetWithParams(ctx, url, params, headers)
	if err != nil {
		return nil
	}
	if resp.StatusCode() != 200 {
		return nil
	}
	return resp.Body()
}

// resolveURL turns a possibly relative href into an absolute URL against base.
func resolveURL(href, base string) string {
	if href == "" {
		return ""
	}
	if len(href) >= 4 && href[:4] == "http" {
		return href
	}
	if len(href) > 0 && href[0] != '/' {
		return base + "/" + href
	}
	return base + href
}
