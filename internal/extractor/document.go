package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"jobscribe/pkg/utils"
)

const infoLineDelimiter = "·"

var relativeAgoRegex = regexp.MustCompile(`(?i)\d+\s+(day|week|month|hour|minute|year)s?\s+ago`)

// Document is a parsed snapshot of a rendered listing page
type Document struct {
	doc *goquery.Document
	url string

	infoOnce  sync.Once
	infoParts []string
}

// NewDocument parses rawHTML taken from the page at pageURL
func NewDocument(rawHTML, pageURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc, url: pageURL}, nil
}

// URL returns the address the snapshot was taken from
func (d *Document) URL() string {
	return d.url
}

// Find runs a CSS query over the whole document
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Main returns the main content region, or body when the page has none
func (d *Document) Main() *goquery.Selection {
	if main := d.doc.Find("main").First(); main.Length() > 0 {
		return main
	}
	return d.doc.Find("body").First()
}

// InfoParts returns the pieces of the "Location · 2 days ago · 40 applicants"
// line shown by the signed-in layout. The line is located and split once.
func (d *Document) InfoParts() []string {
	d.infoOnce.Do(func() {
		line := d.infoLine()
		if line == "" {
			return
		}
		for _, part := range strings.Split(line, infoLineDelimiter) {
			d.infoParts = append(d.infoParts, strings.TrimSpace(part))
		}
	})
	return d.infoParts
}

func (d *Document) infoLine() string {
	scope := d.doc.Find(`[data-view-name="job-detail-page"]`).First()
	if scope.Length() == 0 {
		scope = d.Main()
	}

	var line string
	scope.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := utils.NormalizeText(p.Text())
		if strings.Contains(text, infoLineDelimiter) && relativeAgoRegex.MatchString(text) {
			line = text
			return false
		}
		return true
	})
	return line
}

// isVisible approximates rendered visibility on a static snapshot: the
// element and its ancestors carry no hidden attribute, aria-hidden or
// inline style that hides them.
func isVisible(sel *goquery.Selection) bool {
	if sel.Length() == 0 {
		return false
	}

	for n := sel.First(); n.Length() > 0; n = n.Parent() {
		if _, hidden := n.Attr("hidden"); hidden {
			return false
		}
		if strings.EqualFold(strings.TrimSpace(n.AttrOr("aria-hidden", "")), "true") {
			return false
		}
		style := strings.ToLower(strings.ReplaceAll(n.AttrOr("style", ""), " ", ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}
