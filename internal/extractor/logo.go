package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var entityImageSelectors = []string{
	"img.EntityPhoto-square-2",
	"img.EntityPhoto-square-3",
	"img.EntityPhoto-square-4",
	"img.ivm-view-attr__img--centered",
	".top-card-layout__entity-image img",
	".topcard__org-name-link img",
	"img.artdeco-entity-image",
}

var lazyImageAttrs = []string{"data-delayed-url", "data-src", "data-ghost-url"}

// ImageSource takes the src of the first matching image when it is absolute
type ImageSource struct {
	Selector string
}

func (s ImageSource) Name() string { return "img:" + s.Selector }

func (s ImageSource) Attempt(doc *Document) Result {
	if src := absoluteSrc(doc.Find(s.Selector).First()); src != "" {
		return Found(src)
	}
	return NotFound
}

func logoStrategies() []Strategy {
	out := []Strategy{
		ImageSource{Selector: `.top-card-layout__entity-image img[alt*="logo"]`},
		ImageSource{Selector: `img[alt*="logo"]`},
	}
	for _, sel := range entityImageSelectors {
		out = append(out, ImageSource{Selector: sel})
	}
	return append(out,
		Func{Label: "logo-src-pattern", Fn: logoBySourcePattern},
		Func{Label: "logo-lazy-attr", Fn: logoByLazyAttr},
	)
}

func logoBySourcePattern(doc *Document) string {
	return firstMatch(doc.Find("img"), func(img *goquery.Selection) string {
		src := img.AttrOr("src", "")
		if src == "" {
			return ""
		}
		alt := strings.ToLower(img.AttrOr("alt", ""))
		if strings.Contains(src, "company-logo") || strings.Contains(src, "/company/") || strings.Contains(alt, "logo") {
			return src
		}
		return ""
	})
}

func logoByLazyAttr(doc *Document) string {
	return firstMatch(doc.Find("img"), func(img *goquery.Selection) string {
		for _, attr := range lazyImageAttrs {
			if v := strings.TrimSpace(img.AttrOr(attr, "")); strings.HasPrefix(v, "http") {
				return v
			}
		}
		return ""
	})
}

func absoluteSrc(img *goquery.Selection) string {
	if img.Length() == 0 {
		return ""
	}
	if src := strings.TrimSpace(img.AttrOr("src", "")); strings.HasPrefix(src, "http") {
		return src
	}
	for _, attr := range lazyImageAttrs {
		if v := strings.TrimSpace(img.AttrOr(attr, "")); strings.HasPrefix(v, "http") {
			return v
		}
	}
	return ""
}
