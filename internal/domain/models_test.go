package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArticle_Normalize(t *testing.T) {
	t.Run("defaults category and keywords", func(t *testing.T) {
		art := Article{Title: "Untitled"}
		art.Normalize()

		assert.Equal(t, CategoryGeneral, art.Category)
		assert.NotNil(t, art.Keywords)
		assert.Empty(t, art.Keywords)
	})

	t.Run("featured image implies thumbnail and alt text", func(t *testing.T) {
		art := Article{
			Title:            "Court reserves verdict",
			FeaturedImageURL: "https://cdn.test/photo.jpg",
		}
		art.Normalize()

		assert.Equal(t, "https://cdn.test/photo.jpg", art.ThumbnailURL)
		assert.Equal(t, "Image for Court reserves verdict", art.ImageAltText)
	})

	t.Run("existing values are kept", func(t *testing.T) {
		art := Article{
			Title:            "Some story",
			Category:         CategoryJudicial,
			FeaturedImageURL: "https://cdn.test/a.jpg",
			ThumbnailURL:     "https://cdn.test/thumb.jpg",
			ImageAltText:     "custom alt",
			Keywords:         []string{"court"},
		}
		art.Normalize()

		assert.Equal(t, CategoryJudicial, art.Category)
		assert.Equal(t, "https://cdn.test/thumb.jpg", art.ThumbnailURL)
		assert.Equal(t, "custom alt", art.ImageAltText)
		assert.Equal(t, []string{"court"}, art.Keywords)
	})
}

func TestCategories(t *testing.T) {
	cats := Categories()
	assert.Contains(t, cats, CategoryGeneral)
	assert.Contains(t, cats, CategoryConstitutional)
	assert.Len(t, cats, 7)
}
