package images

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nyaya-Manch/kanoon-khabar/pkg/httpclient"
)

type fakeResponse struct {
	status  int
	body    []byte
	headers map[string]string
}

func (r fakeResponse) StatusCode() int          { return r.status }
func (r fakeResponse) Body() []byte             { return r.body }
func (r fakeResponse) Header(key string) string { return r.headers[key] }

type fakeClient struct {
	responses map[string]fakeResponse
}

func (c *fakeClient) lookup(url string) (httpclient.Response, error) {
	if resp, ok := c.responses[url]; ok {
		return resp, nil
	}
	return fakeResponse{status: 404}, nil
}

func (c *fakeClient) Get(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	return c.lookup(url)
}

func (c *fakeClient) GetWithParams(_ context.Context, url string, _, _ map[string]string) (httpclient.Response, error) {
	return c.lookup(url)
}

func (c *fakeClient) Head(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	return c.lookup(url)
}

type upload struct {
	blobName    string
	contentType string
	size        int
}

type fakeBlobStore struct {
	uploads []upload
}

func (s *fakeBlobStore) Upload(_ context.Context, blobName string, data []byte, contentType string) (string, error) {
	s.uploads = append(s.uploads, upload{blobName: blobName, contentType: contentType, size: len(data)})
	return "https://blobs.test/" + blobName, nil
}

func htmlPage(head, body string) fakeResponse {
	page := "<html><head>" + head + "</head><body>" + body + "</body></html>"
	return fakeResponse{
		status:  200,
		body:    []byte(page),
		headers: map[string]string{"Content-Type": "text/html"},
	}
}

func imageResponse(size int, contentType string) fakeResponse {
	return fakeResponse{
		status:  200,
		body:    bytes.Repeat([]byte{0xAB}, size),
		headers: map[string]string{"Content-Type": contentType},
	}
}

func newTestExtractor(client *fakeClient, store *fakeBlobStore, fallbacks map[string]string) *Extractor {
	opts := []Option{WithClients(client, client)}
	if fallbacks != nil {
		opts = append(opts, WithFallbackImages(fallbacks))
	}
	return NewExtractor(store, nil, opts...)
}

const articleURL = "https://news.test/story/1"

func TestExtractor_OGImageWins(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		articleURL: htmlPage(
			`<meta property="og:image" content="https://cdn.test/photo.jpg">`, ""),
		"https://cdn.test/photo.jpg": imageResponse(2048, "image/jpeg"),
	}}
	store := &fakeBlobStore{}

	e := newTestExtractor(client, store, nil)
	got := e.ExtractAndStore(context.Background(), articleURL, "art-1", "LiveLaw", "judicial")

	require.Len(t, store.uploads, 1)
	up := store.uploads[0]
	assert.True(t, strings.HasPrefix(up.blobName, "news/art-1/image_art_"))
	assert.True(t, strings.HasSuffix(up.blobName, ".jpg"))
	assert.Equal(t, "image/jpeg", up.contentType)
	assert.Equal(t, 2048, up.size)
	assert.Equal(t, "https://blobs.test/"+up.blobName, got)
}

func TestExtractor_RelativeOGImageResolved(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		articleURL: htmlPage(
			`<meta property="og:image" content="/static/photo.png">`, ""),
		"https://news.test/static/photo.png": imageResponse(4096, "image/png"),
	}}
	store := &fakeBlobStore{}

	e := newTestExtractor(client, store, nil)
	got := e.ExtractAndStore(context.Background(), articleURL, "art-2", "LiveLaw", "judicial")

	require.NotEmpty(t, got)
	assert.True(t, strings.HasSuffix(store.uploads[0].blobName, ".png"))
}

func TestExtractor_ExtensionlessCandidateValidatedByHead(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		articleURL: htmlPage(
			`<meta property="og:image" content="https://cdn.test/photo">`, ""),
		"https://cdn.test/photo": imageResponse(2048, "image/png"),
	}}
	store := &fakeBlobStore{}

	e := newTestExtractor(client, store, nil)
	got := e.ExtractAndStore(context.Background(), articleURL, "art-3", "LiveLaw", "judicial")

	require.NotEmpty(t, got)
	assert.True(t, strings.HasSuffix(store.uploads[0].blobName, ".png"))
}

func TestExtractor_ContentImageSkipsChrome(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		articleURL: htmlPage("", `
			<article>
				<img src="https://cdn.test/site-logo.jpg">
				<img src="https://cdn.test/story-photo.jpg">
			</article>`),
		"https://cdn.test/story-photo.jpg": imageResponse(2048, "image/jpeg"),
	}}
	store := &fakeBlobStore{}

	e := newTestExtractor(client, store, nil)
	got := e.ExtractAndStore(context.Background(), articleURL, "art-4", "LiveLaw", "judicial")

	require.NotEmpty(t, got)
	require.Len(t, store.uploads, 1)
	assert.NotContains(t, store.uploads[0].blobName, "logo")
}

func TestExtractor_ContentImageSkipsSmallDimensions(t *testing.T) {
	fallbacks := map[string]string{
		"judicial": "https://stock.test/judicial.jpg",
	}
	client := &fakeClient{responses: map[string]fakeResponse{
		articleURL: htmlPage("", `
			<article>
				<img src="https://cdn.test/story-photo.jpg" width="50" height="50">
			</article>`),
		"https://stock.test/judicial.jpg": imageResponse(2048, "image/jpeg"),
	}}
	store := &fakeBlobStore{}

	e := newTestExtractor(client, store, fallbacks)
	got := e.ExtractAndStore(context.Background(), articleURL, "art-10", "LiveLaw", "judicial")

	require.NotEmpty(t, got)
	require.Len(t, store.uploads, 1)
	// the 50x50 image is rejected by the dimension heuristic
	assert.Contains(t, store.uploads[0].blobName, "image_cat_")
}

func TestExtractor_CategoryFallbackPartialMatchOrder(t *testing.T) {
	fallbacks := map[string]string{
		"judicial":       "https://stock.test/judicial.jpg",
		"constitutional": "https://stock.test/constitutional.jpg",
	}
	client := &fakeClient{responses: map[string]fakeResponse{
		// both stock candidates resolve; the higher-priority key must win
		// on every call
		"https://stock.test/judicial.jpg":       imageResponse(2048, "image/jpeg"),
		"https://stock.test/constitutional.jpg": imageResponse(4096, "image/jpeg"),
	}}
	store := &fakeBlobStore{}

	e := newTestExtractor(client, store, fallbacks)
	got := e.ExtractAndStore(context.Background(), articleURL, "art-11",
		"LiveLaw", "judicial constitutional bench")

	require.NotEmpty(t, got)
	require.Len(t, store.uploads, 1)
	assert.Equal(t, 2048, store.uploads[0].size)
	assert.Contains(t, store.uploads[0].blobName, "image_cat_")
}

func TestExtractor_TinyDownloadFallsThrough(t *testing.T) {
	fallbacks := map[string]string{
		"judicial": "https://stock.test/judicial.jpg",
		"general":  "https://stock.test/general.jpg",
	}
	client := &fakeClient{responses: map[string]fakeResponse{
		articleURL: htmlPage(
			`<meta property="og:image" content="https://cdn.test/photo.jpg">`, ""),
		// under 1 KiB, so it is treated as an error page
		"https://cdn.test/photo.jpg":      imageResponse(500, "image/jpeg"),
		"https://stock.test/judicial.jpg": imageResponse(2048, "image/jpeg"),
	}}
	store := &fakeBlobStore{}

	e := newTestExtractor(client, store, fallbacks)
	got := e.ExtractAndStore(context.Background(), articleURL, "art-5", "LiveLaw", "judicial")

	require.NotEmpty(t, got)
	require.Len(t, store.uploads, 1)
	// stored via the category fallback, not the article page
	assert.Contains(t, store.uploads[0].blobName, "image_cat_")
}

func TestExtractor_OversizeRejected(t *testing.T) {
	fallbacks := map[string]string{
		"judicial": "https://stock.test/judicial.jpg",
		"general":  "https://stock.test/general.jpg",
	}
	client := &fakeClient{responses: map[string]fakeResponse{
		articleURL: htmlPage(
			`<meta property="og:image" content="https://cdn.test/huge.jpg">`, ""),
		"https://cdn.test/huge.jpg": {
			status: 200,
			body:   bytes.Repeat([]byte{0xAB}, 2048),
			headers: map[string]string{
				"Content-Type":   "image/jpeg",
				"Content-Length": "10000000",
			},
		},
		"https://stock.test/judicial.jpg": imageResponse(2048, "image/jpeg"),
	}}
	store := &fakeBlobStore{}

	e := newTestExtractor(client, store, fallbacks)
	got := e.ExtractAndStore(context.Background(), articleURL, "art-6", "LiveLaw", "judicial")

	require.NotEmpty(t, got)
	assert.Contains(t, store.uploads[0].blobName, "image_cat_")
}

func TestExtractor_NonImageContentTypeRejected(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		articleURL: htmlPage(
			`<meta property="og:image" content="https://cdn.test/photo.jpg">`, ""),
		"https://cdn.test/photo.jpg": {
			status:  200,
			body:    bytes.Repeat([]byte{0xAB}, 2048),
			headers: map[string]string{"Content-Type": "text/html"},
		},
	}}
	store := &fakeBlobStore{}

	e := newTestExtractor(client, store, map[string]string{"none": "https://stock.test/none.jpg"})
	got := e.ExtractAndStore(context.Background(), articleURL, "art-7", "LiveLaw", "unrelated")

	assert.Empty(t, got)
	assert.Empty(t, store.uploads)
}

func TestExtractor_SourceFallback(t *testing.T) {
	fallbacks := map[string]string{
		"supreme court": "https://stock.test/sc.jpg",
		"general":       "https://stock.test/general.jpg",
	}
	client := &fakeClient{responses: map[string]fakeResponse{
		// article page is unreachable, category has no stock entry
		"https://stock.test/sc.jpg": imageResponse(2048, "image/jpeg"),
	}}
	store := &fakeBlobStore{}

	e := newTestExtractor(client, store, fallbacks)
	got := e.ExtractAndStore(context.Background(), articleURL, "art-8",
		"Indian Kanoon - Supreme Court", "unrelated")

	require.NotEmpty(t, got)
	assert.Contains(t, store.uploads[0].blobName, "image_sou_")
}

func TestExtractor_ExhaustedReturnsEmpty(t *testing.T) {
	// every candidate 404s, including the default fallback
	client := &fakeClient{responses: map[string]fakeResponse{}}
	store := &fakeBlobStore{}

	e := newTestExtractor(client, store, map[string]string{"general": "https://stock.test/general.jpg"})
	got := e.ExtractAndStore(context.Background(), articleURL, "art-9", "", "")

	assert.Empty(t, got)
	assert.Empty(t, store.uploads)
}

func TestImageFilename(t *testing.T) {
	name := imageFilename("https://cdn.test/photo.jpg", "article_page", "image/jpeg")

	assert.True(t, strings.HasPrefix(name, "image_art_"))
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	// md5 prefix keeps the name stable for the same URL
	assert.Equal(t, name, imageFilename("https://cdn.test/photo.jpg", "article_page", "image/jpeg"))
}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, ".jpg", fileExtension("image/jpeg", ""))
	assert.Equal(t, ".png", fileExtension("image/png", ""))
	assert.Equal(t, ".webp", fileExtension("image/webp", ""))
	assert.Equal(t, ".gif", fileExtension("image/gif", ""))
	assert.Equal(t, ".png", fileExtension("application/octet-stream", "https://x.test/pic.png"))
	assert.Equal(t, ".jpg", fileExtension("", "https://x.test/unknown"))
}
