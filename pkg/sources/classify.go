package sources

import (
	"strings"

	"github.com/Nyaya-Manch/kanoon-khabar/internal/domain"
	"github.com/Nyaya-Manch/kanoon-khabar/pkg/textutil"
)

// maxArticleKeywords caps the keyword list every source attaches.
const maxArticleKeywords = 6

// categoryBuckets are checked in priority order; the first bucket with a
// matching term wins.
var categoryBuckets = []struct {
	category string
	terms    []string
}{
	{domain.CategoryConstitutional, []string{"supreme court", "chief justice", "constitution"}},
	{domain.CategoryJudicial, []string{"high court", "district court", "tribunal"}},
	{domain.CategoryLegislative, []string{"parliament", "legislation", "bill", "act"}},
	{domain.CategoryCivil, []string{"corporate", "commercial", "business", "company"}},
	{domain.CategoryEnvironmental, []string{"environment", "pollution", "green", "climate"}},
}

// Categorize buckets an article by keyword matches on title and content,
// falling back to general.
func Categorize(title, content string) string {
	text := strings.ToLower(title + " " + content)

	for _, bucket := range categoryBuckets {
		for _, term := range bucket.terms {
			if strings.Contains(text, term) {
				return bucket.category
			}
		}
	}
	return domain.CategoryGeneral
}

// LegalKeywords extracts up to six legal vocabulary terms from the combined
// title and content.
func LegalKeywords(title, content string) []string {
	return textutil.Keywords(title+" "+content, maxArticleKeywords)
}
