package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Nyaya-Manch/kanoon-khabar/internal/domain"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		want    string
	}{
		{
			name:  "supreme court is constitutional",
			title: "Supreme Court stays execution of order",
			want:  domain.CategoryConstitutional,
		},
		{
			name:  "high court is judicial",
			title: "Delhi High Court quashes FIR",
			want:  domain.CategoryJudicial,
		},
		{
			name:    "parliament is legislative",
			title:   "New data protection framework",
			content: "Parliament passed the amendment in the monsoon session.",
			want:    domain.CategoryLegislative,
		},
		{
			name:  "company matters are civil",
			title: "NCLT admits insolvency plea against company",
			want:  domain.CategoryCivil,
		},
		{
			name:  "pollution is environmental",
			title: "NGT fines steel plant for river pollution",
			want:  domain.CategoryEnvironmental,
		},
		{
			name:  "constitutional outranks judicial",
			title: "Supreme Court overturns High Court ruling",
			want:  domain.CategoryConstitutional,
		},
		{
			name:  "no match falls back to general",
			title: "Weekly legal news roundup",
			want:  domain.CategoryGeneral,
		},
		{
			name: "empty input is general",
			want: domain.CategoryGeneral,
		},
		{
			name:  "matching is case insensitive",
			title: "SUPREME COURT ISSUES NOTICE",
			want:  domain.CategoryConstitutional,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.title, tt.content))
		})
	}
}

func TestLegalKeywords(t *testing.T) {
	got := LegalKeywords(
		"Supreme Court allows appeal",
		"The judgment set aside the high court order after a final hearing of the writ petition in the case.",
	)

	assert.LessOrEqual(t, len(got), 6)
	assert.Contains(t, got, "supreme court")
	assert.Contains(t, got, "judgment")
	assert.Contains(t, got, "appeal")
}
