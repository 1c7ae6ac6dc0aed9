package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Browser-like default User-Agent; several legal news sites reject the Go
// default agent outright.
const DefaultUserAgent = "Mozilla/5.0 (Linux; Android 6.0; Nexus 5 Build/MRA58N) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Mobile Safari/537.36"

// Response is the subset of an HTTP response the pipeline consumes.
type Response interface {
	StatusCode() int
	Body() []byte
	Header(key string) string
}

// Client issues outbound HTTP requests with a bounded timeout.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	GetWithParams(ctx context.Context, url string, params, headers map[string]string) (Response, error)
	Head(ctx context.Context, url string, headers map[string]string) (Response, error)
}

type restyClient struct {
	client *resty.Client
}

// NewRestyClient returns a Client backed by resty with the given timeout and a
// browser-like User-Agent.
func NewRestyClient(timeout time.Duration) Client {
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", DefaultUserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return &restyClient{client: c}
}

type restyResponse struct {
	resp *resty.Response
}

func (r *restyResponse) StatusCode() int          { return r.resp.StatusCode() }
func (r *restyResponse) Body() []byte             { return r.resp.Body() }
func (r *restyResponse) Header(key string) string { return r.resp.Header().Get(key) }

func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return c.GetWithParams(ctx, url, nil, headers)
}

func (c *restyClient) GetWithParams(ctx context.Context, url string, params, headers map[string]string) (Response, error) {
	req := c.client.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return &restyResponse{resp: resp}, nil
}

func (c *restyClient) Head(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := c.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Head(url)
	if err != nil {
		return nil, fmt.Errorf("head %s: %w", url, err)
	}
	return &restyResponse{resp: resp}, nil
}
