package sources

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liveLawEndpoint = "https://www.livelaw.in/xhr/getNewsMixin"

func liveLawFragment(cards ...string) fakeResponse {
	return fakeResponse{
		status: 200,
		body:   []byte("<div>" + strings.Join(cards, "") + "</div>"),
	}
}

func TestLiveLaw_FetchNews(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		liveLawEndpoint: liveLawFragment(
			`<div class="news-card">
				<h2><a href="/top-stories/sc-judgment-123">Supreme Court delivers landmark judgment</a></h2>
				<img src="/media/photo.jpg" alt="Court building">
				<p class="news-desc">The bench held the provision unconstitutional.</p>
			</div>`,
			`<article class="post-item">
				<h3><a href="https://www.livelaw.in/news/hc-order-456">High Court restrains demolition drive</a></h3>
				<img src="/images/placeholder.svg">
			</article>`,
		),
	}}

	src := NewLiveLawSource(client, nil)
	got, err := src.FetchNews(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "Supreme Court delivers landmark judgment", first.Title)
	assert.Equal(t, "https://www.livelaw.in/top-stories/sc-judgment-123", first.URL)
	assert.Equal(t, "https://www.livelaw.in/media/photo.jpg", first.FeaturedImageURL)
	assert.Equal(t, "Court building", first.ImageAltText)
	assert.Equal(t, "The bench held the provision unconstitutional.", first.Description)
	assert.Equal(t, "Live Law", first.Source)

	second := got[1]
	assert.Equal(t, "https://www.livelaw.in/news/hc-order-456", second.URL)
	// placeholder image falls back to the stock image
	assert.Contains(t, second.FeaturedImageURL, "images.unsplash.com")
}

func TestLiveLaw_SkipsNavigationFragments(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		liveLawEndpoint: liveLawFragment(
			`<div class="news-card"><h2><a href="/a">Home</a></h2></div>`,
			`<div class="news-card">
				<h2><a href="/b">Tribunal upholds arbitration award</a></h2>
			</div>`,
		),
	}}

	src := NewLiveLawSource(client, nil)
	got, err := src.FetchNews(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "Tribunal upholds arbitration award", got[0].Title)
}

func TestLiveLaw_DeduplicatesByURL(t *testing.T) {
	card := `<div class="news-card">
		<h2><a href="/same-story">Parliament passes amendment bill today</a></h2>
	</div>`
	client := &fakeClient{responses: map[string]fakeResponse{
		liveLawEndpoint: liveLawFragment(card, card),
	}}

	src := NewLiveLawSource(client, nil)
	got, err := src.FetchNews(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLiveLaw_RespectsLimit(t *testing.T) {
	cards := make([]string, 6)
	for i := range cards {
		cards[i] = `<div class="news-card"><h2><a href="/story-` +
			string(rune('a'+i)) + `">A sufficiently long headline here</a></h2></div>`
	}
	client := &fakeClient{responses: map[string]fakeResponse{
		liveLawEndpoint: liveLawFragment(cards...),
	}}

	src := NewLiveLawSource(client, nil)
	got, err := src.FetchNews(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestLiveLaw_EndpointDown(t *testing.T) {
	src := NewLiveLawSource(&fakeClient{}, nil)
	_, err := src.FetchNews(context.Background(), 10)
	assert.Error(t, err)
}

func TestLiveLaw_NoParseableArticles(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		liveLawEndpoint: liveLawFragment(`<div class="sidebar">nothing here</div>`),
	}}

	src := NewLiveLawSource(client, nil)
	_, err := src.FetchNews(context.Background(), 10)
	assert.Error(t, err)
}
