package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarBench_FetchNews(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		"https://www.barandbench.com": {
			status: 200,
			body: []byte(`<html><body>
				<div class="post-card">
					<h2><a href="/news/sc-collegium-recommendations">Collegium recommends two judges</a></h2>
					<img src="https://cdn.barandbench.com/photo.jpg" alt="Collegium">
				</div>
				<div class="unrelated-widget">Subscribe now</div>
			</body></html>`),
		},
	}}

	src := NewBarBenchSource(client, nil)
	got, err := src.FetchNews(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)

	art := got[0]
	assert.Equal(t, "Collegium recommends two judges", art.Title)
	assert.Equal(t, "https://www.barandbench.com/news/sc-collegium-recommendations", art.URL)
	assert.Equal(t, "https://cdn.barandbench.com/photo.jpg", art.FeaturedImageURL)
	assert.Equal(t, "Bar & Bench", art.Source)
	assert.Equal(t, "bar_bench", src.ID())
	assert.Equal(t, 0.7, src.Weight())
}

func TestBarBench_HomepageDown(t *testing.T) {
	src := NewBarBenchSource(&fakeClient{}, nil)
	_, err := src.FetchNews(context.Background(), 5)
	assert.Error(t, err)
}
