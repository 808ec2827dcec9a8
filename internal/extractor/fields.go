package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"jobscribe/pkg/utils"
)

const (
	maxTitleLen   = 150
	maxCompanyLen = 120
)

var unreadCountRegex = regexp.MustCompile(`^\(\d+\)\s*`)

// chains holds the strategy chain of every plain text or link field
type chains struct {
	title             Chain
	companyName       Chain
	location          Chain
	postedTime        Chain
	applicationsCount Chain
	companyURL        Chain
	companyLogoURL    Chain
	descriptionHTML   Chain
}

func defaultChains() chains {
	return chains{
		title: Chain{
			Field: "title",
			Strategies: append(texts(".top-card-layout__title", ".topcard__title"),
				Func{Label: "document-title", Fn: titleFromDocumentTitle}),
		},
		companyName: Chain{
			Field: "companyName",
			Strategies: append(texts(".topcard__org-name-link", ".topcard__flavor a"),
				Func{Label: "main-company-link", Fn: companyFromMainLinks}),
		},
		location: Chain{
			Field:      "location",
			Strategies: append(texts(".topcard__flavor--bullet"), CompositePart{Index: 0}),
		},
		postedTime: Chain{
			Field:      "postedTime",
			Strategies: append(texts(".posted-time-ago__text"), CompositePart{Index: 1}),
		},
		applicationsCount: Chain{
			Field:      "applicationsCount",
			Strategies: append(texts(".num-applicants__caption", ".num-applicants__figure"), CompositePart{Index: 2}),
		},
		companyURL: Chain{
			Field: "companyUrl",
			Strategies: []Strategy{
				SelectorAttr{Selector: ".topcard__org-name-link", Attr: "href", Resolve: true},
				SelectorAttr{Selector: `a[href*="/company/"]`, Attr: "href", Resolve: true},
			},
			Normalize: strings.TrimSpace,
		},
		companyLogoURL: Chain{
			Field:      "companyLogoUrl",
			Strategies: logoStrategies(),
			Normalize:  strings.TrimSpace,
		},
		descriptionHTML: Chain{
			Field: "descriptionHtml",
			Strategies: []Strategy{
				SelectorHTML{Selector: ".description__text"},
				SelectorHTML{Selector: "#job-details"},
				SelectorHTML{Selector: `[data-testid="expandable-text-box"]`},
				SelectorHTML{Selector: ".jobs-description"},
			},
			Normalize: strings.TrimSpace,
		},
	}
}

// titleFromDocumentTitle reads "(3) Job Title | Company | Site" style titles
func titleFromDocumentTitle(doc *Document) string {
	title := utils.NormalizeText(doc.Find("title").First().Text())
	title = unreadCountRegex.ReplaceAllString(title, "")

	parts := strings.Split(title, "|")
	if len(parts) < 2 {
		return ""
	}

	first := strings.TrimSpace(parts[0])
	if first == "" || utf8.RuneCountInString(first) >= maxTitleLen {
		return ""
	}
	return first
}

// companyFromMainLinks takes the first short company link in the main region
func companyFromMainLinks(doc *Document) string {
	return firstMatch(doc.Main().Find(`a[href*="/company/"]`), func(a *goquery.Selection) string {
		text := utils.NormalizeText(a.Text())
		if text == "" || utf8.RuneCountInString(text) >= maxCompanyLen || strings.Contains(text, "•") {
			return ""
		}
		return text
	})
}
