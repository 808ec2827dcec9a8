package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

const maxAppliedTimeLen = 40

var (
	applyControlSelectors = []string{
		".jobs-apply-button--top-card",
		".jobs-apply-button",
		`button[aria-label*="Apply"]`,
	}
	appliedMarkerRegex = regexp.MustCompile(`(?i)application submitted|applied on`)
)

// applyType reports EASY_APPLY when a visible apply control says so
func applyType(doc *Document) models.ApplyType {
	for _, selector := range applyControlSelectors {
		easy := false
		doc.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if !isVisible(el) {
				return true
			}
			label := el.Text() + " " + el.AttrOr("aria-label", "")
			easy = strings.Contains(utils.NormalizeText(label), "Easy Apply")
			return !easy
		})
		if easy {
			return models.ApplyTypeEasyApply
		}
	}
	return models.ApplyTypeExternal
}

// appliedTime finds the "Application submitted" marker and returns the
// relative time shown next to it, e.g. "3 weeks ago".
func appliedTime(doc *Document) string {
	var marker *goquery.Selection
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if appliedMarkerRegex.MatchString(p.Text()) {
			marker = p
			return false
		}
		return true
	})
	if marker == nil {
		return ""
	}

	next := marker.Next()
	if next.Length() == 0 {
		next = marker.Parent().Find("p:nth-child(2)").First()
	}
	if !next.Is("p") {
		return ""
	}

	text := utils.NormalizeText(next.Text())
	if text == "" || utf8.RuneCountInString(text) >= maxAppliedTimeLen {
		return ""
	}
	return text
}
