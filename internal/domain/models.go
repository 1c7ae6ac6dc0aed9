package domain

import "time"

// Domain contains the core models shared by sources, ingestion and publishing.

// Article categories form a closed set; Categorize in pkg/sources always
// returns one of these, defaulting to CategoryGeneral.
const (
	CategoryJudicial       = "judicial"
	CategoryConstitutional = "constitutional"
	CategoryLegislative    = "legislative"
	CategoryCivil          = "civil"
	CategoryBusiness       = "business"
	CategoryEnvironmental  = "environmental"
	CategoryGeneral        = "general"
)

// Categories lists every valid article category.
func Categories() []string {
	return []string{
		CategoryJudicial,
		CategoryConstitutional,
		CategoryLegislative,
		CategoryCivil,
		CategoryBusiness,
		CategoryEnvironmental,
		CategoryGeneral,
	}
}

// Article is the standardized record every source produces. URL is the
// external identity key used for dedup downstream.
type Article struct {
	ID               string
	Title            string
	URL              string
	Description      string
	Source           string
	Category         string
	PublishedAt      time.Time
	FeaturedImageURL string
	ThumbnailURL     string
	ImageCaption     string
	ImageAltText     string
	Keywords         []string
}

// Normalize fills derived fields: a featured image implies a thumbnail and an
// alt text, and the category always falls back to general. Sources call this
// on every article they emit.
func (a *Article) Normalize() {
	if a.Category == "" {
		a.Category = CategoryGeneral
	}
	if a.Keywords == nil {
		a.Keywords = []string{}
	}
	if a.FeaturedImageURL != "" {
		if a.ThumbnailURL == "" {
			a.ThumbnailURL = a.FeaturedImageURL
		}
		if a.ImageAltText == "" {
			a.ImageAltText = "Image for " + a.Title
		}
	}
}
