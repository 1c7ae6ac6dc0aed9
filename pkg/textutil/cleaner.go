// Package textutil normalizes source-supplied markup into plain text and
// derives summaries and keyword lists from it. All functions are pure and
// never fail on malformed input.
package textutil

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const defaultSummaryLength = 300

var (
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	newlineRunRe = regexp.MustCompile(`\n{3,}`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	sentenceRe   = regexp.MustCompile(`[.!?]+`)

	romanPointRe  = regexp.MustCompile(`\b([ivx]{2,})\)\s*`)
	letterPointRe = regexp.MustCompile(`\b([a-z])\)\s*`)
	numberPointRe = regexp.MustCompile(`(\d+)\.\s*`)
)

// legalVocabulary is matched by Keywords in this exact order.
var legalVocabulary = []string{
	"supreme court", "high court", "judgment", "appeal", "petition",
	"writ", "constitution", "tribunal", "magistrate", "justice",
	"order", "hearing", "case", "court", "law", "legal",
}

// CleanHTML strips markup from raw and returns normalized plain text.
// Non-content tags (script, style, nav, header, footer) are dropped before
// text extraction. If the HTML parser chokes, a regex tag-stripper plus
// entity decode takes over; the function never fails.
func CleanHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return stripTags(raw)
	}

	doc.Find("script, style, nav, header, footer").Remove()
	text := doc.Text()

	text = normalizeWhitespace(text)
	text = fixLegalFormatting(text)
	return strings.TrimSpace(text)
}

// stripTags is the parse-failure fallback: remove anything tag-shaped,
// decode entities, normalize whitespace.
func stripTags(raw string) string {
	text := tagRe.ReplaceAllString(raw, "")
	text = html.UnescapeString(text)
	text = normalizeWhitespace(text)
	return strings.TrimSpace(text)
}

// normalizeWhitespace collapses runs of spaces, trims every line and caps
// consecutive blank lines at one.
func normalizeWhitespace(text string) string {
	text = spaceRunRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	return newlineRunRe.ReplaceAllString(text, "\n\n")
}

// fixLegalFormatting inserts paragraph breaks before the list markers common
// in judgments and orders: numbered points, lettered sub-points and lowercase
// roman-numeral sub-points.
func fixLegalFormatting(text string) string {
	text = numberPointRe.ReplaceAllString(text, "\n\n$1. ")
	text = romanPointRe.ReplaceAllString(text, "\n  $1) ")
	text = letterPointRe.ReplaceAllString(text, "\n  $1) ")

	text = strings.TrimLeft(text, "\n")
	return newlineRunRe.ReplaceAllString(text, "\n\n")
}

// Summary cleans content and accumulates leading sentences until appending
// the next one would push the result past maxLen. maxLen <= 0 selects the
// default of 300.
func Summary(content string, maxLen int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if maxLen <= 0 {
		maxLen = defaultSummaryLength
	}

	clean := CleanHTML(content)

	var b strings.Builder
	for _, sentence := range sentenceRe.Split(clean, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if b.Len()+len(sentence) > maxLen {
			break
		}
		b.WriteString(sentence)
		b.WriteString(". ")
	}

	return strings.TrimSpace(b.String())
}

// Keywords returns the legal vocabulary terms contained in content, in
// vocabulary order, capped at max (<= 0 selects 10). Pure substring
// containment, no stemming.
func Keywords(content string, max int) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	if max <= 0 {
		max = 10
	}

	lower := strings.ToLower(CleanHTML(content))

	var found []string
	for _, term := range legalVocabulary {
		if strings.Contains(lower, term) {
			found = append(found, term)
			if len(found) >= max {
				break
			}
		}
	}
	return found
}
